package config

// Config is the keytree configuration file. Pointer fields distinguish
// "unset" from the zero value so a user file only overrides what it names.
type Config struct {
	App     AppConfig     `yaml:"app" json:"app"`
	Output  OutputConfig  `yaml:"output" json:"output"`
	Tree    TreeConfig    `yaml:"tree" json:"tree"`
	List    ListConfig    `yaml:"list" json:"list"`
	Mermaid MermaidConfig `yaml:"mermaid" json:"mermaid"`
}

// AppConfig describes the application for help and version output.
type AppConfig struct {
	Name        string `yaml:"name,omitempty" json:"name,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// OutputConfig selects and tunes the output format.
type OutputConfig struct {
	Default       string `yaml:"default,omitempty" json:"default,omitempty"`
	YAMLIndent    *int   `yaml:"yaml_indent,omitempty" json:"yaml_indent,omitempty"`
	LiteralBlocks *bool  `yaml:"literal_blocks,omitempty" json:"literal_blocks,omitempty"`
	OmitValues    *bool  `yaml:"omit_values,omitempty" json:"omit_values,omitempty"`
}

// TreeConfig tunes tree output.
type TreeConfig struct {
	MaxDepth *int  `yaml:"max_depth,omitempty" json:"max_depth,omitempty"`
	ShowData *bool `yaml:"show_data,omitempty" json:"show_data,omitempty"`
	HideKeys *bool `yaml:"hide_keys,omitempty" json:"hide_keys,omitempty"`
	MaxTitle *int  `yaml:"max_title,omitempty" json:"max_title,omitempty"`
}

// ListConfig tunes list output.
type ListConfig struct {
	Indent   *int  `yaml:"indent,omitempty" json:"indent,omitempty"`
	ShowData *bool `yaml:"show_data,omitempty" json:"show_data,omitempty"`
}

// MermaidConfig tunes Mermaid output.
type MermaidConfig struct {
	Direction string `yaml:"direction,omitempty" json:"direction,omitempty"`
	ShowData  *bool  `yaml:"show_data,omitempty" json:"show_data,omitempty"`
}

// IntValue dereferences p, or returns def when p is nil.
func IntValue(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// BoolValue dereferences p, or returns def when p is nil.
func BoolValue(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
