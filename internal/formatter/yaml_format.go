package formatter

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLFormatOptions control YAML rendering.
type YAMLFormatOptions struct {
	Indent int
	// LiteralBlockStrings emits multi-line titles and payload strings as "|" blocks.
	LiteralBlockStrings bool
	// OmitValues drops "value" fields that only repeat the node key.
	OmitValues bool
}

// FormatYAML renders v, usually a forest or an engine state. A forest
// renders as a YAML list of nodes that loads back through the loader
// package unchanged.
func FormatYAML(v any, opts YAMLFormatOptions) (string, error) {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return "", err
	}

	if opts.OmitValues {
		dropRedundantValues(&node)
	}
	if opts.LiteralBlockStrings {
		applyLiteralStyle(&node)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	indent := opts.Indent
	if indent <= 0 {
		indent = 2
	}
	enc.SetIndent(indent)
	if err := enc.Encode(&node); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func applyLiteralStyle(n *yaml.Node) {
	if n == nil {
		return
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" && strings.Contains(n.Value, "\n") {
		n.Style = yaml.LiteralStyle
	}
	for _, c := range n.Content {
		applyLiteralStyle(c)
	}
}

// dropRedundantValues removes "value" entries equal to the sibling "key"
// entry from every node mapping.
func dropRedundantValues(n *yaml.Node) {
	if n == nil {
		return
	}
	if n.Kind == yaml.MappingNode {
		key, value := -1, -1
		for i := 0; i+1 < len(n.Content); i += 2 {
			switch n.Content[i].Value {
			case "key":
				key = i
			case "value":
				value = i
			}
		}
		if key >= 0 && value >= 0 && n.Content[key+1].Value == n.Content[value+1].Value {
			n.Content = append(n.Content[:value], n.Content[value+2:]...)
		}
	}
	for _, c := range n.Content {
		dropRedundantValues(c)
	}
}
