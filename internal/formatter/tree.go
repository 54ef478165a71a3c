package formatter

import (
	"strings"

	"github.com/xlab/treeprint"

	"github.com/oakwood-commons/keytree/pkg/tree"
)

// SelectedMarker prefixes the label of the selected node.
const SelectedMarker = "* "

// TreeOptions controls tree output formatting.
type TreeOptions struct {
	// MaxDepth limits tree depth (0 = unlimited). Hidden subtrees show "...".
	MaxDepth int
	// ShowData appends the payload to each label.
	ShowData bool
	// HideKeys drops the "[key]" suffix from labels.
	HideKeys bool
	// MaxTitleLen truncates titles to this many display columns (0 = unlimited).
	MaxTitleLen int
	// Selected marks the node with this key.
	Selected string
}

// FormatTree renders forest as an ASCII tree, one line per node:
//
//	.
//	├── Inbox [0-0]
//	│   └── Today [0-0-0]
//	└── Archive [0-1]
func FormatTree[T any](forest tree.Forest[T], opts TreeOptions) string {
	root := treeprint.New()
	addBranches[T](root, forest, opts, 1)
	return root.String()
}

func addBranches[T any](branch treeprint.Tree, nodes []*tree.Node[T], opts TreeOptions, depth int) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		label := nodeLabel(n, opts.ShowData, opts.HideKeys, opts.MaxTitleLen, opts.Selected)
		if len(n.Children) == 0 {
			branch.AddNode(label)
			continue
		}
		child := branch.AddBranch(label)
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			child.AddNode("...")
			continue
		}
		addBranches(child, n.Children, opts, depth+1)
	}
}

// nodeLabel builds "title [key] data" with the optional pieces.
func nodeLabel[T any](n *tree.Node[T], showData, hideKeys bool, maxTitle int, selected string) string {
	var b strings.Builder
	if selected != "" && n.Key == selected {
		b.WriteString(SelectedMarker)
	}
	title := flatten(n.Title)
	if title == "" {
		title = "(untitled)"
	}
	b.WriteString(truncate(title, maxTitle))
	if !hideKeys {
		b.WriteString(" [")
		b.WriteString(n.Key)
		b.WriteString("]")
	}
	if showData && n.Data != nil {
		if s := Stringify(*n.Data); s != "" {
			b.WriteString(" ")
			b.WriteString(s)
		}
	}
	return b.String()
}
