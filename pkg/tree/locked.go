package tree

import "sync"

// Locked serializes access to an Engine so it can be shared between
// goroutines. Each call holds the lock for the whole operation.
type Locked[T any] struct {
	mu     sync.Mutex
	engine *Engine[T]
}

// NewLocked wraps a new Engine built from opts.
func NewLocked[T any](opts ...Option[T]) *Locked[T] {
	return &Locked[T]{engine: New(opts...)}
}

// Update runs fn with exclusive access to the engine, for sequences of
// operations that must not interleave with other callers (select then add).
func (l *Locked[T]) Update(fn func(e *Engine[T])) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.engine)
}

// Initialize replaces the forest; see Engine.Initialize.
func (l *Locked[T]) Initialize(forest Forest[T]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.engine.Initialize(forest)
}

// State returns a deep copy of the forest and selection.
func (l *Locked[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.State()
}

// Lookup returns a copy of the node at key, or nil.
func (l *Locked[T]) Lookup(key string) *Node[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.Lookup(key)
}

// Select changes the selection; see Engine.Select.
func (l *Locked[T]) Select(key string) *Node[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.Select(key)
}

// Clear drops the selection.
func (l *Locked[T]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.engine.Clear()
}

// Add appends a node under the selection, or as a new root.
func (l *Locked[T]) Add(title string, data *T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.engine.Add(title, data)
}

// Remove deletes the selected subtree and clears the selection.
func (l *Locked[T]) Remove() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.engine.Remove()
}

// Modify updates the selected node and returns a copy of the forest.
func (l *Locked[T]) Modify(title string, data *T) Forest[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.Modify(title, data)
}

// Sort replaces the selected node's children, or the roots.
func (l *Locked[T]) Sort(children []*Node[T]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.engine.Sort(children)
}
