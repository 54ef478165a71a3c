package formatter

import (
	"bytes"

	"github.com/pelletier/go-toml/v2"

	"github.com/oakwood-commons/keytree/pkg/tree"
)

// tomlDocument wraps a forest since a TOML document must be a table.
type tomlDocument[T any] struct {
	Selected string         `toml:"selected,omitempty"`
	Nodes    tree.Forest[T] `toml:"nodes"`
}

// FormatTOML renders forest as a TOML document with a "nodes" array of
// tables, the shape the loader reads back. A non-empty selected key is
// written as a top-level "selected" entry.
func FormatTOML[T any](forest tree.Forest[T], selected string) (string, error) {
	if forest == nil {
		forest = tree.Forest[T]{}
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(tomlDocument[T]{Selected: selected, Nodes: forest}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
