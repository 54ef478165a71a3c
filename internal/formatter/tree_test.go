package formatter

import (
	"strings"
	"testing"

	"github.com/oakwood-commons/keytree/pkg/tree"
)

type payload = map[string]int

func sample() tree.Forest[payload] {
	return tree.Forest[payload]{
		{
			Title: "Inbox", Key: "0-0", Value: "0-0",
			Data: &payload{"n": 1},
			Children: []*tree.Node[payload]{
				{
					Title: "Today", Key: "0-0-0", Value: "0-0-0",
					Children: []*tree.Node[payload]{
						{Title: "Call", Key: "0-0-0-0", Value: "0-0-0-0", Children: []*tree.Node[payload]{}},
					},
				},
			},
		},
		{Title: "Archive", Key: "0-1", Value: "0-1", Children: []*tree.Node[payload]{}},
	}
}

func TestFormatTree_Basic(t *testing.T) {
	result := FormatTree(sample(), TreeOptions{})

	if !strings.HasPrefix(result, ".") {
		t.Error("expected tree to start with root marker '.'")
	}
	for _, want := range []string{"Inbox [0-0]", "Today [0-0-0]", "Call [0-0-0-0]", "Archive [0-1]"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected %q in output, got:\n%s", want, result)
		}
	}
	if strings.Contains(result, `{"n":1}`) {
		t.Errorf("data should be hidden by default, got:\n%s", result)
	}
	if strings.Index(result, "Inbox") > strings.Index(result, "Archive") {
		t.Errorf("expected roots in order, got:\n%s", result)
	}
}

func TestFormatTree_ShowData(t *testing.T) {
	result := FormatTree(sample(), TreeOptions{ShowData: true})
	if !strings.Contains(result, `Inbox [0-0] {"n":1}`) {
		t.Errorf("expected payload after label, got:\n%s", result)
	}
}

func TestFormatTree_HideKeys(t *testing.T) {
	result := FormatTree(sample(), TreeOptions{HideKeys: true})
	if strings.Contains(result, "[0-0]") {
		t.Errorf("expected keys hidden, got:\n%s", result)
	}
	if !strings.Contains(result, "Inbox") {
		t.Errorf("expected titles, got:\n%s", result)
	}
}

func TestFormatTree_MaxDepth(t *testing.T) {
	result := FormatTree(sample(), TreeOptions{MaxDepth: 1})
	if strings.Contains(result, "Today") {
		t.Errorf("expected depth 2 hidden, got:\n%s", result)
	}
	if !strings.Contains(result, "...") {
		t.Errorf("expected ellipsis for hidden children, got:\n%s", result)
	}
	if strings.Count(result, "...") != 1 {
		t.Errorf("expected exactly one ellipsis (Archive is a leaf), got:\n%s", result)
	}
}

func TestFormatTree_Selected(t *testing.T) {
	result := FormatTree(sample(), TreeOptions{Selected: "0-0-0"})
	if !strings.Contains(result, SelectedMarker+"Today [0-0-0]") {
		t.Errorf("expected selection marker, got:\n%s", result)
	}
	if strings.Count(result, SelectedMarker) != 1 {
		t.Errorf("expected one marker, got:\n%s", result)
	}
}

func TestFormatTree_MaxTitleLen(t *testing.T) {
	forest := tree.Forest[payload]{{Title: "a very long title indeed", Key: "0-0"}}
	result := FormatTree(forest, TreeOptions{MaxTitleLen: 10})
	if !strings.Contains(result, "a very ... [0-0]") {
		t.Errorf("expected truncated title, got:\n%s", result)
	}
}

func TestFormatTree_Empty(t *testing.T) {
	result := FormatTree(tree.Forest[payload]{}, TreeOptions{})
	if strings.TrimSpace(result) != "." {
		t.Errorf("expected bare root marker, got %q", result)
	}
}

func TestFormatTree_UntitledAndMultiline(t *testing.T) {
	forest := tree.Forest[payload]{
		{Key: "0-0"},
		{Title: "two\nlines", Key: "0-1"},
	}
	result := FormatTree(forest, TreeOptions{})
	if !strings.Contains(result, "(untitled) [0-0]") {
		t.Errorf("expected untitled placeholder, got:\n%s", result)
	}
	if !strings.Contains(result, `two\nlines [0-1]`) {
		t.Errorf("expected flattened title, got:\n%s", result)
	}
}
