// Package core ties the tree engine to loading, querying, scripting and
// rendering behind one Workspace, the API the CLI is built on.
package core

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/keytree/internal/formatter"
	"github.com/oakwood-commons/keytree/internal/query"
	"github.com/oakwood-commons/keytree/internal/script"
	"github.com/oakwood-commons/keytree/pkg/loader"
	"github.com/oakwood-commons/keytree/pkg/tree"
)

// Matcher selects the keys of nodes matching an expression.
type Matcher[T any] interface {
	Match(expr string, forest tree.Forest[T]) ([]string, error)
}

// Renderer renders an engine state in a named output format.
type Renderer[T any] interface {
	Render(state tree.State[T], output formatter.Output) (string, error)
}

// RenderOptions carries per-format options for the default renderer. The
// Selected fields are filled from the state being rendered.
type RenderOptions struct {
	Tree     formatter.TreeOptions
	List     formatter.ListOptions
	Mermaid  formatter.MermaidOptions
	Markdown formatter.MarkdownOptions
	YAML     formatter.YAMLFormatOptions
}

// Workspace owns one engine and the collaborators that act on it.
type Workspace[T any] struct {
	engine   *tree.Engine[T]
	matcher  Matcher[T]
	renderer Renderer[T]
	log      logr.Logger
}

// Option configures a Workspace.
type Option[T any] func(*Workspace[T])

// WithMatcher sets a custom matcher.
func WithMatcher[T any](m Matcher[T]) Option[T] {
	return func(w *Workspace[T]) {
		w.matcher = m
	}
}

// WithRenderer sets a custom renderer.
func WithRenderer[T any](r Renderer[T]) Option[T] {
	return func(w *Workspace[T]) {
		w.renderer = r
	}
}

// WithRenderOptions configures the default renderer.
func WithRenderOptions[T any](opts RenderOptions) Option[T] {
	return func(w *Workspace[T]) {
		w.renderer = defaultRenderer[T]{opts: opts}
	}
}

// WithLogger sets the logger used by the workspace and its engine.
func WithLogger[T any](lgr logr.Logger) Option[T] {
	return func(w *Workspace[T]) {
		w.log = lgr
	}
}

// New creates a Workspace over a copy of forest.
func New[T any](forest tree.Forest[T], opts ...Option[T]) (*Workspace[T], error) {
	w, err := build(opts)
	if err != nil {
		return nil, err
	}
	w.attach(forest)
	return w, nil
}

// Open loads the forest file at path and creates a Workspace over it.
func Open[T any](path string, opts ...Option[T]) (*Workspace[T], error) {
	w, err := build(opts)
	if err != nil {
		return nil, err
	}
	forest, err := loader.LoadFileWithLogger[T](path, w.log)
	if err != nil {
		return nil, err
	}
	w.log.V(1).Info("loaded forest", "path", path, "nodes", tree.Len(forest))
	w.attach(forest)
	return w, nil
}

func build[T any](opts []Option[T]) (*Workspace[T], error) {
	w := &Workspace[T]{log: logr.Discard()}
	for _, opt := range opts {
		opt(w)
	}
	if w.matcher == nil {
		eval, err := query.NewEvaluator()
		if err != nil {
			return nil, err
		}
		w.matcher = celMatcher[T]{eval: eval}
	}
	if w.renderer == nil {
		w.renderer = defaultRenderer[T]{}
	}
	return w, nil
}

func (w *Workspace[T]) attach(forest tree.Forest[T]) {
	w.engine = tree.New(tree.WithForest(forest), tree.WithLogger[T](w.log.WithName("engine")))
}

// Engine exposes the underlying engine.
func (w *Workspace[T]) Engine() *tree.Engine[T] {
	return w.engine
}

// State returns a copy of the forest and selection.
func (w *Workspace[T]) State() tree.State[T] {
	return w.engine.State()
}

// Resolve returns a copy of the node at key.
func (w *Workspace[T]) Resolve(key string) (*tree.Node[T], error) {
	if _, ok := tree.ParseKey(key); !ok {
		return nil, fmt.Errorf("malformed key %q", key)
	}
	n := w.engine.Lookup(key)
	if n == nil {
		return nil, fmt.Errorf("no node with key %q", key)
	}
	return n, nil
}

// Query returns the keys of nodes matching expr in depth-first order.
func (w *Workspace[T]) Query(expr string) ([]string, error) {
	if w.matcher == nil {
		return nil, fmt.Errorf("matcher is not configured")
	}
	return w.matcher.Match(expr, w.engine.Forest())
}

// Apply runs steps against the engine.
func (w *Workspace[T]) Apply(ctx context.Context, steps []script.Step[T]) (script.Result[T], error) {
	return script.Run(ctx, w.engine, steps)
}

// Render renders the current state in output.
func (w *Workspace[T]) Render(output formatter.Output) (string, error) {
	if w.renderer == nil {
		return "", fmt.Errorf("renderer is not configured")
	}
	return w.renderer.Render(w.engine.State(), output)
}

type celMatcher[T any] struct {
	eval *query.Evaluator
}

func (m celMatcher[T]) Match(expr string, forest tree.Forest[T]) ([]string, error) {
	return query.Match(m.eval, expr, forest)
}

type defaultRenderer[T any] struct {
	opts RenderOptions
}

// Render draws the forest for the text outputs. For yaml and json
// it encodes the forest alone, or the whole state when something is
// selected. TOML always carries the selection as a top-level entry.
func (r defaultRenderer[T]) Render(state tree.State[T], output formatter.Output) (string, error) {
	switch output {
	case formatter.OutputTree, "":
		opts := r.opts.Tree
		opts.Selected = state.SelectedKey
		return formatter.FormatTree(state.Forest, opts), nil
	case formatter.OutputList:
		opts := r.opts.List
		opts.Selected = state.SelectedKey
		return formatter.FormatList(state.Forest, opts), nil
	case formatter.OutputMermaid:
		opts := r.opts.Mermaid
		opts.Selected = state.SelectedKey
		return formatter.FormatMermaid(state.Forest, opts), nil
	case formatter.OutputMarkdown, formatter.OutputHTML:
		opts := r.opts.Markdown
		opts.Selected = state.SelectedKey
		if output == formatter.OutputHTML {
			return formatter.FormatHTML(state.Forest, opts), nil
		}
		return formatter.FormatMarkdown(state.Forest, opts), nil
	case formatter.OutputYAML:
		return formatter.FormatYAML(encodable(state), r.opts.YAML)
	case formatter.OutputJSON:
		return formatter.FormatJSON(encodable(state))
	case formatter.OutputTOML:
		return formatter.FormatTOML(state.Forest, state.SelectedKey)
	default:
		return "", formatter.ValidateOutput(string(output))
	}
}

func encodable[T any](state tree.State[T]) any {
	if state.Forest == nil {
		state.Forest = tree.Forest[T]{}
	}
	if state.SelectedKey == "" {
		return state.Forest
	}
	return state
}
