package formatter

import (
	"strings"
	"testing"

	"github.com/oakwood-commons/keytree/pkg/tree"
)

func TestFormatMarkdown(t *testing.T) {
	result := FormatMarkdown(sample(), MarkdownOptions{Selected: "0-0-0"})
	expected := "- Inbox `0-0`\n" +
		"    - **Today** `0-0-0`\n" +
		"        - Call `0-0-0-0`\n" +
		"- Archive `0-1`\n"
	if result != expected {
		t.Fatalf("unexpected markdown:\n%q\nwant:\n%q", result, expected)
	}
}

func TestFormatMarkdownEscapesAndData(t *testing.T) {
	forest := tree.Forest[payload]{
		{Title: "a_b *c*", Key: "0-0", Data: &payload{"n": 1}},
		{Title: "", Key: "0-1"},
	}
	result := FormatMarkdown(forest, MarkdownOptions{ShowData: true})
	if !strings.Contains(result, "- a\\_b \\*c\\* `0-0` `{\"n\":1}`\n") {
		t.Errorf("expected escaped title and data, got:\n%s", result)
	}
	if !strings.Contains(result, "- (untitled) `0-1`\n") {
		t.Errorf("expected untitled placeholder, got:\n%s", result)
	}
}

func TestFormatHTML(t *testing.T) {
	result := FormatHTML(sample(), MarkdownOptions{Selected: "0-1"})
	for _, want := range []string{"<ul>", "<li>", "<code>0-0-0-0</code>", "<strong>Archive</strong>"} {
		if !strings.Contains(result, want) {
			t.Errorf("html output missing %q:\n%s", want, result)
		}
	}
	if strings.Count(result, "<ul>") != 3 {
		t.Errorf("expected one list per level, got:\n%s", result)
	}
}
