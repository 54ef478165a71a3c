package script

import (
	"context"
	"fmt"

	"github.com/oakwood-commons/keytree/pkg/logger"
	"github.com/oakwood-commons/keytree/pkg/tree"
)

// Trace records the selection after one step ran.
type Trace struct {
	Step     string `json:"step" yaml:"step"`
	Selected string `json:"selected" yaml:"selected"`
	Resolved bool   `json:"resolved" yaml:"resolved"`
}

// Result is the outcome of a script run.
type Result[T any] struct {
	State tree.State[T] `json:"-" yaml:"-"`
	Trace []Trace       `json:"trace" yaml:"trace"`
}

// Run applies steps to e in order. It stops early only when ctx is done;
// engine operations themselves never fail.
func Run[T any](ctx context.Context, e *tree.Engine[T], steps []Step[T]) (Result[T], error) {
	lgr := logger.FromContext(ctx).WithName("script")
	res := Result[T]{Trace: make([]Trace, 0, len(steps))}

	for i, s := range steps {
		if err := ctx.Err(); err != nil {
			res.State = e.State()
			return res, fmt.Errorf("step %d: %w", i+1, err)
		}
		if err := s.Validate(); err != nil {
			res.State = e.State()
			return res, fmt.Errorf("step %d: %w", i+1, err)
		}

		lgr.V(1).Info("applying step", "index", i+1, "step", s.String(), "selected", e.SelectedKey())
		apply(e, s)

		selected := e.SelectedKey()
		res.Trace = append(res.Trace, Trace{
			Step:     s.String(),
			Selected: selected,
			Resolved: selected != "" && e.Lookup(selected) != nil,
		})
	}
	res.State = e.State()
	return res, nil
}

func apply[T any](e *tree.Engine[T], s Step[T]) {
	switch s.Op {
	case OpSelect:
		e.Select(s.Key)
	case OpAdd:
		e.Add(s.Title, s.Data)
	case OpRemove:
		e.Remove()
	case OpModify:
		e.Modify(s.Title, s.Data)
	case OpSort:
		e.Sort(Reorder(currentChildren(e), s.Order))
	case OpClear:
		e.Clear()
	}
}

// currentChildren returns the sibling list a sort applies to: the selected
// node's children, or the roots when nothing is selected. The selection is
// looked up in the live forest since Add does not refresh the cached node.
func currentChildren[T any](e *tree.Engine[T]) []*tree.Node[T] {
	key := e.SelectedKey()
	if key == "" {
		return e.Forest()
	}
	if n := e.Lookup(key); n != nil {
		return n.Children
	}
	return nil
}

// Reorder returns nodes with those whose key appears in order moved to the
// front, in that order. The rest keep their relative order after them.
// Unknown and repeated keys in order are ignored.
func Reorder[T any](nodes []*tree.Node[T], order []string) []*tree.Node[T] {
	out := make([]*tree.Node[T], 0, len(nodes))
	placed := make(map[string]bool, len(order))
	for _, key := range order {
		if placed[key] {
			continue
		}
		for _, n := range nodes {
			if n != nil && n.Key == key {
				out = append(out, n)
				placed[key] = true
				break
			}
		}
	}
	for _, n := range nodes {
		if n != nil && !placed[n.Key] {
			out = append(out, n)
		}
	}
	return out
}
