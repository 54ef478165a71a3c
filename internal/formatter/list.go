package formatter

import (
	"strings"

	"github.com/oakwood-commons/keytree/pkg/tree"
)

// ListOptions controls list output formatting.
type ListOptions struct {
	// Indent is the number of spaces per depth level (default 2).
	Indent int
	// ShowData appends the payload after the title.
	ShowData bool
	// MaxTitleLen truncates titles to this many display columns (0 = unlimited).
	MaxTitleLen int
	// Selected marks the node with this key.
	Selected string
}

// FormatList renders forest as one "key  title" line per node, indented by
// depth, in depth-first order.
func FormatList[T any](forest tree.Forest[T], opts ListOptions) string {
	indent := opts.Indent
	if indent <= 0 {
		indent = 2
	}

	width := 0
	tree.Walk(forest, func(n *tree.Node[T], depth int) bool {
		if w := (depth-1)*indent + len(n.Key); w > width {
			width = w
		}
		return true
	})

	var b strings.Builder
	tree.Walk(forest, func(n *tree.Node[T], depth int) bool {
		prefix := strings.Repeat(" ", (depth-1)*indent) + n.Key
		b.WriteString(prefix)
		b.WriteString(strings.Repeat(" ", width-len(prefix)+2))
		if opts.Selected != "" && n.Key == opts.Selected {
			b.WriteString(SelectedMarker)
		}
		b.WriteString(truncate(flatten(n.Title), opts.MaxTitleLen))
		if opts.ShowData && n.Data != nil {
			if s := Stringify(*n.Data); s != "" {
				b.WriteString("  ")
				b.WriteString(s)
			}
		}
		b.WriteString("\n")
		return true
	})
	return b.String()
}
