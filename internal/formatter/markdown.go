package formatter

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/oakwood-commons/keytree/pkg/tree"
)

// MarkdownOptions controls Markdown and HTML output.
type MarkdownOptions struct {
	// ShowData appends the payload as inline code.
	ShowData bool
	// MaxTitleLen truncates titles to this many display columns (0 = unlimited).
	MaxTitleLen int
	// Selected renders the node with this key in bold.
	Selected string
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`,
	"[", `\[`, "]", `\]`, "<", `\<`, "#", `\#`,
)

// FormatMarkdown renders forest as a nested bullet list, one item per node,
// indented four spaces per level:
//
//	- Inbox `0-0`
//	    - **Today** `0-0-0`
func FormatMarkdown[T any](forest tree.Forest[T], opts MarkdownOptions) string {
	var b strings.Builder
	tree.Walk(forest, func(n *tree.Node[T], depth int) bool {
		b.WriteString(strings.Repeat("    ", depth-1))
		b.WriteString("- ")
		title := markdownEscaper.Replace(truncate(flatten(n.Title), opts.MaxTitleLen))
		if title == "" {
			title = "(untitled)"
		}
		if opts.Selected != "" && n.Key == opts.Selected {
			title = "**" + title + "**"
		}
		b.WriteString(title)
		b.WriteString(" `")
		b.WriteString(n.Key)
		b.WriteString("`")
		if opts.ShowData && n.Data != nil {
			if s := Stringify(*n.Data); s != "" {
				b.WriteString(" `")
				b.WriteString(strings.ReplaceAll(s, "`", "'"))
				b.WriteString("`")
			}
		}
		b.WriteString("\n")
		return true
	})
	return b.String()
}

// FormatHTML renders the Markdown list of forest as an HTML fragment.
func FormatHTML[T any](forest tree.Forest[T], opts MarkdownOptions) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	doc := p.Parse([]byte(FormatMarkdown(forest, opts)))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.Render(doc, renderer))
}
