package loader

import "github.com/oakwood-commons/keytree/pkg/tree"

// Normalize makes hand-written snapshots consistent without overriding
// keys that are already present:
//
//   - a node with only one of Key/Value gets the other filled in
//   - a node with neither gets a key from its position under its parent
//   - nil Children become empty lists
//
// Nil entries are dropped. The forest is modified in place and returned.
func Normalize[T any](forest tree.Forest[T]) tree.Forest[T] {
	return normalizeLevel[T](forest, tree.RootMarker)
}

func normalizeLevel[T any](nodes []*tree.Node[T], parentKey string) []*tree.Node[T] {
	out := nodes[:0]
	for i, n := range nodes {
		if n == nil {
			continue
		}
		switch {
		case n.Key == "" && n.Value == "":
			n.Key = tree.JoinKey(parentKey, i)
			n.Value = n.Key
		case n.Key == "":
			n.Key = n.Value
		case n.Value == "":
			n.Value = n.Key
		}
		if n.Children == nil {
			n.Children = []*tree.Node[T]{}
		}
		n.Children = normalizeLevel(n.Children, n.Key)
		out = append(out, n)
	}
	if out == nil {
		return []*tree.Node[T]{}
	}
	return out
}
