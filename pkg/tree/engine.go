// Package tree implements a mutable in-memory forest whose nodes carry
// stable path-encoded keys ("0-2-0-5"), together with a selection and the
// structural edits a tree editor needs: select, add, remove, modify, sort
// and clear.
//
// Every mutation works on a deep copy of the current forest and publishes
// the edited copy in a single assignment. Operations never fail: stale
// selections, malformed keys and empty forests turn edits into no-ops.
// An Engine is not safe for concurrent use; see Locked.
package tree

import (
	"strings"

	"github.com/go-logr/logr"
)

// State is a read-only snapshot of an engine.
type State[T any] struct {
	Forest       Forest[T] `json:"forest" yaml:"forest"`
	SelectedKey  string    `json:"selectedKey,omitempty" yaml:"selectedKey,omitempty"`
	SelectedNode *Node[T]  `json:"selectedNode,omitempty" yaml:"selectedNode,omitempty"`
}

// Engine owns a forest and the current selection.
//
// The selection is a key plus a cached copy of the node it resolved to when
// it was last refreshed. The cache is refreshed by Select, Modify and Sort;
// Add leaves it untouched and Remove clears it.
type Engine[T any] struct {
	forest       Forest[T]
	selectedKey  string
	selectedNode *Node[T]

	// issued records the highest sibling index ever handed out under a
	// parent key (RootMarker for roots), so removals never cause reuse.
	issued map[string]int

	log   logr.Logger
	clone CloneFunc[T]
	merge MergeFunc[T]
}

// Option configures an Engine.
type Option[T any] func(*Engine[T])

// WithForest seeds the engine with a deep copy of forest.
func WithForest[T any](forest Forest[T]) Option[T] {
	return func(e *Engine[T]) {
		e.forest = forest
	}
}

// WithLogger sets the logger used for no-op diagnostics.
func WithLogger[T any](lgr logr.Logger) Option[T] {
	return func(e *Engine[T]) {
		e.log = lgr
	}
}

// WithCloner replaces the default JSON round-trip payload copy.
func WithCloner[T any](fn CloneFunc[T]) Option[T] {
	return func(e *Engine[T]) {
		e.clone = fn
	}
}

// WithMerger replaces ShallowMerge as the payload merge used by Modify.
func WithMerger[T any](fn MergeFunc[T]) Option[T] {
	return func(e *Engine[T]) {
		e.merge = fn
	}
}

// New creates an Engine. Without WithForest the forest starts empty.
func New[T any](opts ...Option[T]) *Engine[T] {
	e := &Engine[T]{
		issued: make(map[string]int),
		log:    logr.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.merge == nil {
		e.merge = ShallowMerge[T]
	}
	e.forest = e.cloneForest(e.forest)
	if e.forest == nil {
		e.forest = Forest[T]{}
	}
	return e
}

// Initialize replaces the forest with a deep copy of forest. The selection
// is left as is and is not re-resolved. Index allocation starts over from
// the new forest.
func (e *Engine[T]) Initialize(forest Forest[T]) {
	next := e.cloneForest(forest)
	if next == nil {
		next = Forest[T]{}
	}
	e.forest = next
	e.issued = make(map[string]int)
}

// State returns a deep copy of the forest and selection.
func (e *Engine[T]) State() State[T] {
	return State[T]{
		Forest:       e.cloneForest(e.forest),
		SelectedKey:  e.selectedKey,
		SelectedNode: e.cloneNode(e.selectedNode),
	}
}

// Forest returns a deep copy of the current forest.
func (e *Engine[T]) Forest() Forest[T] {
	return e.cloneForest(e.forest)
}

// SelectedKey returns the selected key, or "" when nothing is selected.
func (e *Engine[T]) SelectedKey() string {
	return e.selectedKey
}

// SelectedNode returns a copy of the cached selected node, or nil.
func (e *Engine[T]) SelectedNode() *Node[T] {
	return e.cloneNode(e.selectedNode)
}

// Lookup returns a copy of the node at key in the current forest, or nil.
func (e *Engine[T]) Lookup(key string) *Node[T] {
	return e.cloneNode(Resolve(e.forest, key))
}

// Select makes key the current selection and returns a copy of the node it
// resolves to. An empty key clears the selection. A key that does not
// resolve is still kept as the selected key, with no cached node.
func (e *Engine[T]) Select(key string) *Node[T] {
	if key == "" {
		e.Clear()
		return nil
	}
	node := Resolve(e.cloneForest(e.forest), key)
	if node == nil {
		e.log.V(1).Info("selected key does not resolve", "key", key)
	}
	e.selectedKey = key
	e.selectedNode = node
	return e.cloneNode(node)
}

// Clear drops the selection.
func (e *Engine[T]) Clear() {
	e.selectedKey = ""
	e.selectedNode = nil
}

// Add appends a node titled title. With no selection it becomes a new root;
// otherwise it becomes the last child of the selected node. A selection
// that no longer resolves makes Add a no-op.
func (e *Engine[T]) Add(title string, data *T) {
	next := e.cloneForest(e.forest)
	node := &Node[T]{
		Title:    title,
		Children: []*Node[T]{},
		Data:     e.clonePayload(data),
	}

	if e.selectedKey == "" {
		index := e.allocate(RootMarker, next)
		node.Key = RootKey(index)
		node.Value = node.Key
		next = append(next, node)
	} else {
		parent := Resolve(next, e.selectedKey)
		if parent == nil {
			e.log.V(1).Info("add skipped, selection does not resolve", "key", e.selectedKey)
			return
		}
		index := e.allocate(parent.Key, parent.Children)
		node.Key = JoinKey(parent.Key, index)
		node.Value = node.Key
		parent.Children = append(parent.Children, node)
	}

	e.forest = next
}

// Remove deletes the selected node and its subtree, then clears the
// selection. The selection is cleared even when nothing was removed.
func (e *Engine[T]) Remove() {
	if e.selectedKey == "" {
		return
	}
	defer e.Clear()

	key := e.selectedKey
	parentKey, ok := ParentKey(key)
	if !ok {
		e.log.V(1).Info("remove skipped, malformed key", "key", key)
		return
	}

	next := e.cloneForest(e.forest)
	if parentKey == RootMarker {
		roots, removed := without[T](next, key)
		if !removed {
			e.log.V(1).Info("remove skipped, key not found", "key", key)
			return
		}
		next = roots
	} else {
		parent := Resolve(next, parentKey)
		if parent == nil {
			e.log.V(1).Info("remove skipped, ancestor not found", "key", key, "parent", parentKey)
			return
		}
		children, removed := without(parent.Children, key)
		if !removed {
			e.log.V(1).Info("remove skipped, key not found", "key", key)
			return
		}
		parent.Children = children
	}

	e.forgetSubtree(key)
	e.forest = next
}

// Modify updates the selected node's title and payload and returns a copy
// of the resulting forest. An empty title keeps the current one. When the
// node already carries data the new data is merged into it; otherwise the
// new data is stored as is. Without a resolvable selection Modify changes
// nothing and returns the current forest.
func (e *Engine[T]) Modify(title string, data *T) Forest[T] {
	next := e.cloneForest(e.forest)
	if e.selectedKey == "" {
		return next
	}
	node := Resolve(next, e.selectedKey)
	if node == nil {
		e.log.V(1).Info("modify skipped, selection does not resolve", "key", e.selectedKey)
		return next
	}

	if title != "" {
		node.Title = title
	}
	if update := e.clonePayload(data); update != nil {
		if node.Data != nil {
			merged := e.merge(*node.Data, *update)
			node.Data = &merged
		} else {
			node.Data = update
		}
	}

	e.forest = next
	e.selectedNode = node
	return e.cloneForest(next)
}

// Sort replaces the selected node's children with children, or the whole
// root list when nothing is selected. The supplied nodes are copied and
// their keys are kept exactly as given. A selection that no longer
// resolves makes Sort a no-op. Sorting the roots keeps the allocation
// records, so indices of removed roots stay retired.
func (e *Engine[T]) Sort(children []*Node[T]) {
	replacement := e.cloneForest(children)
	if replacement == nil {
		replacement = Forest[T]{}
	}

	if e.selectedKey == "" {
		e.forest = replacement
		return
	}

	next := e.cloneForest(e.forest)
	node := Resolve(next, e.selectedKey)
	if node == nil {
		e.log.V(1).Info("sort skipped, selection does not resolve", "key", e.selectedKey)
		return
	}
	node.Children = replacement
	e.forest = next
	e.selectedNode = node
}

// allocate picks the next sibling index under parentKey: one past the
// highest index among siblings, and never one already handed out.
func (e *Engine[T]) allocate(parentKey string, siblings []*Node[T]) int {
	index := 0
	if top, ok := maxSuffix(siblings); ok {
		index = top + 1
	}
	if last, ok := e.issued[parentKey]; ok && last >= index {
		index = last + 1
	}
	e.issued[parentKey] = index
	return index
}

// forgetSubtree drops allocation records for key and its descendants. The
// record of key's own parent is kept so key is not issued again.
func (e *Engine[T]) forgetSubtree(key string) {
	prefix := key + KeySeparator
	for k := range e.issued {
		if k == key || strings.HasPrefix(k, prefix) {
			delete(e.issued, k)
		}
	}
}

func without[T any](nodes []*Node[T], key string) ([]*Node[T], bool) {
	out := make([]*Node[T], 0, len(nodes))
	removed := false
	for _, n := range nodes {
		if n != nil && n.Key == key {
			removed = true
			continue
		}
		out = append(out, n)
	}
	return out, removed
}

func (e *Engine[T]) cloneForest(forest []*Node[T]) Forest[T] {
	if forest == nil {
		return nil
	}
	out := make(Forest[T], 0, len(forest))
	for _, n := range forest {
		if n == nil {
			continue
		}
		out = append(out, e.cloneNode(n))
	}
	return out
}

func (e *Engine[T]) cloneNode(n *Node[T]) *Node[T] {
	if n == nil {
		return nil
	}
	out := &Node[T]{
		Title: n.Title,
		Key:   n.Key,
		Value: n.Value,
		Data:  e.clonePayload(n.Data),
	}
	if n.Children != nil {
		out.Children = e.cloneForest(n.Children)
	}
	return out
}

func (e *Engine[T]) clonePayload(data *T) *T {
	if data == nil {
		return nil
	}
	if e.clone != nil {
		v := e.clone(*data)
		return &v
	}
	v, err := jsonClone(*data)
	if err != nil {
		e.log.V(1).Info("payload copy fell back to a shallow copy", "error", err.Error())
		v = *data
	}
	return &v
}
