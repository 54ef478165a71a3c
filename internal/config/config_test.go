package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "keytree", cfg.App.Name)
	assert.Equal(t, "tree", cfg.Output.Default)
	assert.Equal(t, 2, IntValue(cfg.Output.YAMLIndent, -1))
	assert.True(t, BoolValue(cfg.Output.LiteralBlocks, false))
	assert.Equal(t, 0, IntValue(cfg.Tree.MaxDepth, -1))
	assert.False(t, BoolValue(cfg.Tree.ShowData, true))
	assert.Equal(t, 2, IntValue(cfg.List.Indent, -1))
	assert.Equal(t, "TD", cfg.Mermaid.Direction)
}

func TestDefaultYAMLIsCopy(t *testing.T) {
	a := DefaultYAML()
	require.NotEmpty(t, a)
	a[0] = 'X'
	assert.NotEqual(t, a[0], DefaultYAML()[0])
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte("tree:\n  max_depth: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, IntValue(cfg.Tree.MaxDepth, 0))
	assert.Nil(t, cfg.Tree.ShowData)

	cfg, err = Parse([]byte("  \n"))
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)

	_, err = Parse([]byte("tree:\n  max_dept: 3\n"))
	require.Error(t, err, "unknown fields are rejected")
}

func TestMerge(t *testing.T) {
	base, err := Default()
	require.NoError(t, err)

	showData := true
	depth := 4
	over := Config{
		Output:  OutputConfig{Default: "mermaid"},
		Tree:    TreeConfig{ShowData: &showData, MaxDepth: &depth},
		Mermaid: MermaidConfig{Direction: "LR"},
	}
	merged := Merge(base, over)

	assert.Equal(t, "mermaid", merged.Output.Default)
	assert.True(t, *merged.Tree.ShowData)
	assert.Equal(t, 4, *merged.Tree.MaxDepth)
	assert.Equal(t, "LR", merged.Mermaid.Direction)
	// untouched fields keep defaults
	assert.Equal(t, "keytree", merged.App.Name)
	assert.Equal(t, 2, *merged.List.Indent)

	// merged pointers do not alias the override
	depth = 9
	assert.Equal(t, 4, *merged.Tree.MaxDepth)
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "tree", cfg.Output.Default)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  default: json\ntree:\n  hide_keys: true\n"), 0o600))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.Default)
	assert.True(t, BoolValue(cfg.Tree.HideKeys, false))
	assert.Equal(t, "TD", cfg.Mermaid.Direction)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "bad output", content: "output:\n  default: csv\n", wantErr: "output.default"},
		{name: "bad direction", content: "mermaid:\n  direction: UP\n", wantErr: "mermaid.direction"},
		{name: "negative depth", content: "tree:\n  max_depth: -1\n", wantErr: "tree.max_depth"},
		{name: "bad yaml", content: "tree: [\n", wantErr: "decode config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "/explicit.yaml", ResolvePath("/explicit.yaml"))

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	assert.Equal(t, "", ResolvePath(""))

	path := filepath.Join(xdg, AppName, "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o600))
	assert.Equal(t, path, ResolvePath(""))
}
