package formatter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oakwood-commons/keytree/pkg/tree"
)

// ValidMermaidDirections lists accepted flowchart directions.
var ValidMermaidDirections = []string{"TD", "LR", "BT", "RL"}

// MermaidOptions controls Mermaid diagram output formatting.
type MermaidOptions struct {
	// Direction sets the diagram direction: TD (default), LR, BT, RL.
	Direction string
	// MaxDepth limits tree depth (0 = unlimited).
	MaxDepth int
	// ShowData appends the payload to each label.
	ShowData bool
	// MaxTitleLen truncates titles to this many display columns (0 = unlimited).
	MaxTitleLen int
	// Selected highlights the node with this key.
	Selected string
}

type mermaidBuilder struct {
	lines    []string
	ellipsis int
	opts     MermaidOptions
}

// FormatMermaid renders forest as a Mermaid flowchart. Node ids derive from
// keys ("0-1-2" becomes "k0_1_2"), so diagrams of the same forest are stable.
func FormatMermaid[T any](forest tree.Forest[T], opts MermaidOptions) string {
	if opts.Direction == "" {
		opts.Direction = "TD"
	}
	b := &mermaidBuilder{
		lines: []string{fmt.Sprintf("graph %s", opts.Direction)},
		opts:  opts,
	}
	buildMermaid[T](b, "", forest, 1)
	if opts.Selected != "" && tree.Resolve(forest, opts.Selected) != nil {
		b.lines = append(b.lines,
			"    classDef selected stroke-width:3px",
			fmt.Sprintf("    class %s selected", MermaidID(opts.Selected)))
	}
	return strings.Join(b.lines, "\n") + "\n"
}

// ValidateMermaidDirection returns an error for unknown directions.
func ValidateMermaidDirection(dir string) error {
	if dir == "" {
		return nil
	}
	for _, d := range ValidMermaidDirections {
		if strings.EqualFold(d, dir) {
			return nil
		}
	}
	return fmt.Errorf("invalid mermaid direction %q: valid values are %s", dir, strings.Join(ValidMermaidDirections, ", "))
}

func buildMermaid[T any](b *mermaidBuilder, parentID string, nodes []*tree.Node[T], depth int) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		id := MermaidID(n.Key)
		label := nodeLabel(n, b.opts.ShowData, false, b.opts.MaxTitleLen, "")
		b.lines = append(b.lines, fmt.Sprintf("    %s[%q]", id, escapeMermaid(label)))
		if parentID != "" {
			b.lines = append(b.lines, fmt.Sprintf("    %s --> %s", parentID, id))
		}
		if len(n.Children) == 0 {
			continue
		}
		if b.opts.MaxDepth > 0 && depth >= b.opts.MaxDepth {
			b.ellipsis++
			more := fmt.Sprintf("more%d", b.ellipsis)
			b.lines = append(b.lines,
				fmt.Sprintf("    %s[%q]", more, "..."),
				fmt.Sprintf("    %s --> %s", id, more))
			continue
		}
		buildMermaid(b, id, n.Children, depth+1)
	}
}

// Mermaid uses quotes around labels, so swap internal quotes.
func escapeMermaid(label string) string {
	label = strings.ReplaceAll(label, `"`, `'`)
	return strings.ReplaceAll(label, `\n`, " ")
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// MermaidID turns a key into a valid Mermaid node id.
func MermaidID(key string) string {
	return "k" + nonAlphanumeric.ReplaceAllString(key, "_")
}
