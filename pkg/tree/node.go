package tree

// Node is one item in a forest. Key and Value always carry the same
// path-encoded identifier; Data is an optional caller-defined payload.
type Node[T any] struct {
	Title    string     `json:"title" yaml:"title" toml:"title"`
	Key      string     `json:"key" yaml:"key" toml:"key"`
	Value    string     `json:"value" yaml:"value" toml:"value"`
	Children []*Node[T] `json:"children" yaml:"children" toml:"children"`
	Data     *T         `json:"data,omitempty" yaml:"data,omitempty" toml:"data,omitempty"`
}

// Forest is the ordered list of root nodes.
type Forest[T any] []*Node[T]

// Resolve walks forest along key and returns the matching node, or nil.
//
// Each level is matched by key equality against the partial key rebuilt so
// far ("0-2", "0-2-5", ...), not by array position, so sibling gaps left by
// removals are tolerated. The returned node belongs to forest.
func Resolve[T any](forest Forest[T], key string) *Node[T] {
	indices, ok := ParseKey(key)
	if !ok {
		return nil
	}
	level := []*Node[T](forest)
	partial := RootMarker
	var node *Node[T]
	for _, idx := range indices {
		partial = JoinKey(partial, idx)
		node = findByKey(level, partial)
		if node == nil {
			return nil
		}
		level = node.Children
	}
	return node
}

func findByKey[T any](nodes []*Node[T], key string) *Node[T] {
	for _, n := range nodes {
		if n != nil && n.Key == key {
			return n
		}
	}
	return nil
}

// Walk visits every node depth-first in sibling order. Roots have depth 1.
// Returning false from fn stops the walk.
func Walk[T any](forest Forest[T], fn func(n *Node[T], depth int) bool) {
	walk([]*Node[T](forest), 1, fn)
}

func walk[T any](nodes []*Node[T], depth int, fn func(*Node[T], int) bool) bool {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if !fn(n, depth) {
			return false
		}
		if !walk(n.Children, depth+1, fn) {
			return false
		}
	}
	return true
}

// Len counts the nodes in forest.
func Len[T any](forest Forest[T]) int {
	count := 0
	Walk(forest, func(*Node[T], int) bool {
		count++
		return true
	})
	return count
}

// Keys lists every key in forest depth-first.
func Keys[T any](forest Forest[T]) []string {
	var keys []string
	Walk(forest, func(n *Node[T], _ int) bool {
		keys = append(keys, n.Key)
		return true
	})
	return keys
}
