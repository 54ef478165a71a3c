package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/keytree/internal/formatter"
)

// AppName names the config directory under $XDG_CONFIG_HOME.
const AppName = "keytree"

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

var (
	embeddedConfigOnce sync.Once
	embeddedConfig     Config
	embeddedConfigErr  error
)

// DefaultYAML returns a copy of the embedded default config YAML bytes.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default parses and returns the embedded default configuration.
func Default() (Config, error) {
	embeddedConfigOnce.Do(func() {
		embeddedConfig, embeddedConfigErr = Parse(embeddedDefaultConfig)
		if embeddedConfigErr != nil {
			embeddedConfigErr = fmt.Errorf("decode embedded default config: %w", embeddedConfigErr)
		}
	})
	return embeddedConfig, embeddedConfigErr
}

// Parse decodes a config document. Unknown fields are errors so typos in a
// user file are reported instead of silently ignored.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, err
	}
	return cfg, nil
}

// Load returns the embedded defaults with the file at path merged on top.
// An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	user, err := Parse(data)
	if err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg = Merge(cfg, user)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Merge returns base with every field set in over replacing base's value.
func Merge(base, over Config) Config {
	out := base
	if over.App.Name != "" {
		out.App.Name = over.App.Name
	}
	if over.App.Description != "" {
		out.App.Description = over.App.Description
	}

	if over.Output.Default != "" {
		out.Output.Default = over.Output.Default
	}
	out.Output.YAMLIndent = pick(out.Output.YAMLIndent, over.Output.YAMLIndent)
	out.Output.LiteralBlocks = pick(out.Output.LiteralBlocks, over.Output.LiteralBlocks)
	out.Output.OmitValues = pick(out.Output.OmitValues, over.Output.OmitValues)

	out.Tree.MaxDepth = pick(out.Tree.MaxDepth, over.Tree.MaxDepth)
	out.Tree.ShowData = pick(out.Tree.ShowData, over.Tree.ShowData)
	out.Tree.HideKeys = pick(out.Tree.HideKeys, over.Tree.HideKeys)
	out.Tree.MaxTitle = pick(out.Tree.MaxTitle, over.Tree.MaxTitle)

	out.List.Indent = pick(out.List.Indent, over.List.Indent)
	out.List.ShowData = pick(out.List.ShowData, over.List.ShowData)

	if over.Mermaid.Direction != "" {
		out.Mermaid.Direction = over.Mermaid.Direction
	}
	out.Mermaid.ShowData = pick(out.Mermaid.ShowData, over.Mermaid.ShowData)
	return out
}

func pick[V any](base, over *V) *V {
	if over != nil {
		v := *over
		return &v
	}
	return base
}

// Validate reports values no output can honor.
func (c Config) Validate() error {
	if err := formatter.ValidateOutput(c.Output.Default); err != nil {
		return fmt.Errorf("output.default: %w", err)
	}
	if err := formatter.ValidateMermaidDirection(c.Mermaid.Direction); err != nil {
		return fmt.Errorf("mermaid.direction: %w", err)
	}
	if v := IntValue(c.Tree.MaxDepth, 0); v < 0 {
		return fmt.Errorf("tree.max_depth: must be >= 0, got %d", v)
	}
	if v := IntValue(c.Output.YAMLIndent, 2); v < 0 {
		return fmt.Errorf("output.yaml_indent: must be >= 0, got %d", v)
	}
	return nil
}

// ResolvePath returns explicit if set, otherwise the XDG path
// ($XDG_CONFIG_HOME/keytree/config.yaml) or ~/.config/keytree/config.yaml
// when that file exists. It returns "" when there is no config file.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate = filepath.Join(xdg, AppName, "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", AppName, "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}
