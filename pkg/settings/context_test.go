package settings

import (
	"context"
	"testing"
)

func TestRunRoundTripsThroughContext(t *testing.T) {
	run := NewCliParams()
	run.ConfigFile = "/tmp/keytree/config.yaml"
	run.InputPath = "-"
	run.Output = "mermaid"
	run.MinLogLevel = LogLevel(true)

	got, ok := FromContext(IntoContext(context.Background(), run))
	if !ok {
		t.Fatal("FromContext() did not find the stored run")
	}
	if got != run {
		t.Error("FromContext() should return the stored pointer")
	}
	if got.InputPath != "-" || got.ConfigFile != "/tmp/keytree/config.yaml" || got.MinLogLevel != -1 {
		t.Errorf("FromContext() = %+v", got)
	}
}

func TestFromContextMissing(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
	}{
		{name: "empty", ctx: context.Background()},
		{name: "wrong_type", ctx: context.WithValue(context.Background(), settingsContextKey, "tree")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, ok := FromContext(tt.ctx); ok || got != nil {
				t.Errorf("FromContext() = %v, %v; want nil, false", got, ok)
			}
		})
	}
}

func TestFromContextOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		ctx        context.Context
		wantOutput string
	}{
		{name: "no_run", ctx: context.Background(), wantOutput: "tree"},
		{name: "nil_run", ctx: IntoContext(context.Background(), nil), wantOutput: "tree"},
		{name: "stored_run", ctx: IntoContext(context.Background(), &Run{Output: "yaml"}), wantOutput: "yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromContextOrDefault(tt.ctx)
			if got == nil {
				t.Fatal("FromContextOrDefault() returned nil")
			}
			if got.Output != tt.wantOutput {
				t.Errorf("Output = %q, want %q", got.Output, tt.wantOutput)
			}
		})
	}
}

func TestFromContextOrDefaultReturnsFreshDefaults(t *testing.T) {
	a := FromContextOrDefault(context.Background())
	a.Output = "json"
	b := FromContextOrDefault(context.Background())
	if b.Output != "tree" || !b.ExitOnError {
		t.Errorf("defaults leaked between calls: %+v", b)
	}
}
