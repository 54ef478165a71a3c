package script

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/keytree/pkg/tree"
)

type payload = map[string]any

func seed() tree.Forest[payload] {
	return tree.Forest[payload]{
		{
			Title: "Inbox", Key: "0-0", Value: "0-0",
			Children: []*tree.Node[payload]{
				{Title: "a", Key: "0-0-0", Value: "0-0-0", Children: []*tree.Node[payload]{}},
				{Title: "b", Key: "0-0-1", Value: "0-0-1", Children: []*tree.Node[payload]{}},
				{Title: "c", Key: "0-0-2", Value: "0-0-2", Children: []*tree.Node[payload]{}},
			},
		},
		{Title: "Archive", Key: "0-1", Value: "0-1", Children: []*tree.Node[payload]{}},
	}
}

func titles(nodes []*tree.Node[payload]) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Title
	}
	return out
}

func TestParse(t *testing.T) {
	input := `
- op: select
  key: 0-0
- op: add
  title: d
  data:
    due: friday
- op: sort
  order: [0-0-2, 0-0-0]
- op: modify
  data: {done: true}
- op: remove
- op: clear
`
	steps, err := Parse[payload]([]byte(input))
	require.NoError(t, err)
	require.Len(t, steps, 6)
	assert.Equal(t, Step[payload]{Op: OpSelect, Key: "0-0"}, steps[0])
	assert.Equal(t, "d", steps[1].Title)
	require.NotNil(t, steps[1].Data)
	assert.Equal(t, "friday", (*steps[1].Data)["due"])
	assert.Equal(t, []string{"0-0-2", "0-0-0"}, steps[2].Order)
	assert.Equal(t, true, (*steps[3].Data)["done"])
	assert.Equal(t, OpRemove, steps[4].Op)
	assert.Equal(t, OpClear, steps[5].Op)
}

func TestParseStepsMappingAndJSON(t *testing.T) {
	steps, err := Parse[payload]([]byte(`{"steps": [{"op": "select", "key": "0-1"}, {"op": "clear"}]}`))
	require.NoError(t, err)
	assert.Len(t, steps, 2)

	steps, err = Parse[payload]([]byte(`[{"op": "add", "title": "x"}]`))
	require.NoError(t, err)
	assert.Equal(t, "x", steps[0].Title)
}

func TestParseTypedPayload(t *testing.T) {
	type task struct {
		Due  string `json:"due"`
		Done bool   `json:"done"`
	}
	steps, err := Parse[task]([]byte("- op: add\n  title: t\n  data: {due: monday, done: true}\n"))
	require.NoError(t, err)
	assert.Equal(t, &task{Due: "monday", Done: true}, steps[0].Data)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "empty", input: "  ", wantErr: "no steps"},
		{name: "empty list", input: "[]", wantErr: "no steps"},
		{name: "scalar", input: "hello", wantErr: "list of steps"},
		{name: "mapping without steps", input: "op: add", wantErr: "steps list"},
		{name: "unknown op", input: "- op: explode", wantErr: `step 1: unknown op "explode"`},
		{name: "missing op", input: "- key: 0-0", wantErr: "op is required"},
		{name: "select without key", input: "- op: select", wantErr: "key is required"},
		{name: "add without title", input: "- op: clear\n- op: add", wantErr: "step 2: add: title is required"},
		{name: "modify without args", input: "- op: modify", wantErr: "title or data"},
		{name: "sort without order", input: "- op: sort", wantErr: "order is required"},
		{name: "bad yaml", input: "- op: [", wantErr: "failed to parse script"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse[payload]([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseInline(t *testing.T) {
	steps, err := ParseInline[payload]([]string{"select:0-0", "add:New item", "SORT: 0-0-2, 0-0-1", "modify:Renamed", "remove", "clear"})
	require.NoError(t, err)
	require.Len(t, steps, 6)
	assert.Equal(t, "0-0", steps[0].Key)
	assert.Equal(t, "New item", steps[1].Title)
	assert.Equal(t, []string{"0-0-2", "0-0-1"}, steps[2].Order)
	assert.Equal(t, "Renamed", steps[3].Title)
	assert.Equal(t, OpRemove, steps[4].Op)

	for _, s := range steps {
		again, err := ParseInline[payload]([]string{s.String()})
		require.NoError(t, err)
		assert.Equal(t, s, again[0])
	}
}

func TestParseInlineErrors(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"select"},
		{"add:"},
		{"remove:0-0"},
		{"sort:,"},
		{"jump:0-0"},
	} {
		_, err := ParseInline[payload](args)
		assert.Error(t, err, "args %v", args)
	}
}

func TestRun(t *testing.T) {
	e := tree.New(tree.WithForest(seed()))
	steps, err := ParseInline[payload]([]string{
		"select:0-0",
		"add:d",
		"sort:0-0-3,0-0-1",
		"select:0-0-0",
		"remove",
		"add:root",
	})
	require.NoError(t, err)

	res, err := Run(context.Background(), e, steps)
	require.NoError(t, err)

	inbox := tree.Resolve(res.State.Forest, "0-0")
	require.NotNil(t, inbox)
	assert.Equal(t, []string{"d", "b", "c"}, titles(inbox.Children))
	assert.Equal(t, []string{"Inbox", "Archive", "root"}, titles(res.State.Forest))
	assert.Equal(t, "0-2", res.State.Forest[2].Key)

	require.Len(t, res.Trace, 6)
	assert.Equal(t, Trace{Step: "select:0-0", Selected: "0-0", Resolved: true}, res.Trace[0])
	assert.Equal(t, Trace{Step: "remove", Selected: "", Resolved: false}, res.Trace[4])
}

func TestRunSortRoots(t *testing.T) {
	e := tree.New(tree.WithForest(seed()))
	steps := []Step[payload]{{Op: OpSort, Order: []string{"0-1"}}}
	res, err := Run(context.Background(), e, steps)
	require.NoError(t, err)
	assert.Equal(t, []string{"Archive", "Inbox"}, titles(res.State.Forest))
}

func TestRunStaleSelection(t *testing.T) {
	e := tree.New(tree.WithForest(seed()))
	steps, err := ParseInline[payload]([]string{"select:0-9", "add:ghost", "sort:0-0", "modify:ghost"})
	require.NoError(t, err)

	res, err := Run(context.Background(), e, steps)
	require.NoError(t, err)
	assert.Equal(t, seed(), res.State.Forest)
	assert.Equal(t, "0-9", res.State.SelectedKey)
	for _, tr := range res.Trace {
		assert.False(t, tr.Resolved)
	}
}

func TestRunModifyMergesData(t *testing.T) {
	e := tree.New(tree.WithForest(seed()))
	steps, err := Parse[payload]([]byte(`
- {op: select, key: 0-1}
- {op: modify, data: {a: 1}}
- {op: modify, title: Old, data: {b: 2}}
`))
	require.NoError(t, err)

	res, err := Run(context.Background(), e, steps)
	require.NoError(t, err)
	n := tree.Resolve(res.State.Forest, "0-1")
	require.NotNil(t, n.Data)
	assert.Equal(t, "Old", n.Title)
	assert.Equal(t, payload{"a": float64(1), "b": float64(2)}, *n.Data)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := tree.New(tree.WithForest(seed()))
	res, err := Run(ctx, e, []Step[payload]{{Op: OpSelect, Key: "0-0"}})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Trace)
	assert.Equal(t, "", res.State.SelectedKey)
}

func TestRunRejectsInvalidStep(t *testing.T) {
	e := tree.New(tree.WithForest(seed()))
	_, err := Run(context.Background(), e, []Step[payload]{{Op: "jump"}})
	require.Error(t, err)
}

func TestReorder(t *testing.T) {
	nodes := seed()[0].Children
	tests := []struct {
		name  string
		order []string
		want  []string
	}{
		{name: "full", order: []string{"0-0-2", "0-0-1", "0-0-0"}, want: []string{"c", "b", "a"}},
		{name: "partial", order: []string{"0-0-1"}, want: []string{"b", "a", "c"}},
		{name: "unknown and repeated", order: []string{"0-9", "0-0-2", "0-0-2"}, want: []string{"c", "a", "b"}},
		{name: "none", order: nil, want: []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titles(Reorder(nodes, tt.order)))
		})
	}
}
