package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const sampleForest = `- title: Inbox
  key: 0-0
  data:
    owner: ann
  children:
    - title: Today
      key: 0-0-0
- title: Archive
  key: 0-1
`

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	fn()
	_ = w.Close()
	os.Stdout = orig
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("copy: %v", err)
	}
	_ = r.Close()
	return buf.String()
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func resetRootCmdState() {
	configFile = ""
	debug = false
	output = ""
	showSelect = ""
	evalExpression = ""
	expression = ""
	listFunctions = false
	limitRecords = 0
	offsetRecords = 0
	tailRecords = 0
	scriptFile = ""
	inlineSteps = nil
	showTrace = false
	writePath = ""
	rootCmd.SetArgs(nil)
	rootCmd.SetIn(nil)
	rootCmd.SetErr(nil)
	resetFlags(rootCmd)
}

// TestMain points XDG_CONFIG_HOME at an empty directory so user config never
// leaks into the tests. Tests that need a config file override it.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "keytree-cmd")
	if err != nil {
		panic(err)
	}
	_ = os.Setenv("XDG_CONFIG_HOME", dir)
	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// runCLIErr runs the CLI with args (args[0] is the binary name) and returns
// stdout and the command error.
func runCLIErr(t *testing.T, args []string) (string, error) {
	t.Helper()
	resetRootCmdState()
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = args

	var runErr error
	out := captureOutput(t, func() {
		runErr = Execute()
	})
	return out, runErr
}

func runCLI(t *testing.T, args []string) string {
	t.Helper()
	out, err := runCLIErr(t, args)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	return out
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func sampleFile(t *testing.T) string {
	t.Helper()
	return writeFile(t, t.TempDir(), "forest.yaml", sampleForest)
}

func TestCLI_InvalidOutput(t *testing.T) {
	_, err := runCLIErr(t, []string{"keytree", "show", sampleFile(t), "-o", "csv"})
	if err == nil || !strings.Contains(err.Error(), "tree, list, mermaid, yaml, json, toml, markdown, html") {
		t.Fatalf("expected invalid output error, got %v", err)
	}
}

func TestCLI_Version(t *testing.T) {
	out := runCLI(t, []string{"keytree", "version"})
	if !strings.HasPrefix(out, "keytree v0.0.0-nightly (commit unknown") {
		t.Fatalf("unexpected version output: %q", out)
	}

	out = runCLI(t, []string{"keytree", "version", "-o", "json"})
	if !strings.Contains(out, `"version": "v0.0.0-nightly"`) {
		t.Fatalf("expected JSON version info, got %q", out)
	}
}

func TestCLI_ConfigFromXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	writeFile(t, xdg, filepath.Join("keytree", "config.yaml"), "output:\n  default: list\n")

	out := runCLI(t, []string{"keytree", "config", "get", "-o", "json"})
	if !strings.Contains(out, `"default": "list"`) {
		t.Fatalf("expected merged config with list default, got:\n%s", out)
	}

	out = runCLI(t, []string{"keytree", "show", sampleFile(t)})
	if !strings.HasPrefix(out, "0-0") {
		t.Fatalf("expected list output from config default, got:\n%s", out)
	}

	out = runCLI(t, []string{"keytree", "config", "path"})
	if strings.TrimSpace(out) != filepath.Join(xdg, "keytree", "config.yaml") {
		t.Fatalf("unexpected config path %q", out)
	}
}

func TestCLI_ConfigFileErrors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.yaml", "output:\n  defualt: list\n")
	if _, err := runCLIErr(t, []string{"keytree", "show", sampleFile(t), "--config-file", bad}); err == nil {
		t.Fatal("expected error for unknown config field")
	}

	invalid := writeFile(t, dir, "invalid.yaml", "mermaid:\n  direction: up\n")
	_, err := runCLIErr(t, []string{"keytree", "show", sampleFile(t), "--config-file", invalid})
	if err == nil || !strings.Contains(err.Error(), "mermaid.direction") {
		t.Fatalf("expected mermaid.direction error, got %v", err)
	}
}

func TestCLI_ConfigDefault(t *testing.T) {
	out := runCLI(t, []string{"keytree", "config", "default"})
	if !strings.Contains(out, "default: tree") {
		t.Fatalf("expected embedded defaults, got:\n%s", out)
	}
}

func TestTitleLimit(t *testing.T) {
	tests := []struct {
		configured, width, want int
	}{
		{configured: 12, width: 200, want: 12},
		{configured: -1, width: 200, want: 0},
		{configured: 0, width: 0, want: 0},
		{configured: 0, width: 120, want: 60},
		{configured: 0, width: 30, want: minAutoTitleWidth},
	}
	for _, tt := range tests {
		if got := titleLimit(tt.configured, tt.width); got != tt.want {
			t.Errorf("titleLimit(%d, %d) = %d, want %d", tt.configured, tt.width, got, tt.want)
		}
	}
}
