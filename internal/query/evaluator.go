// Package query evaluates CEL predicates against the nodes of a forest.
package query

import (
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/decls"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/keytree/pkg/tree"
)

// Variable is the name predicates use to reference the current node.
const Variable = "_"

// Evaluator compiles and evaluates CEL expressions.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates a new CEL evaluator with the strings, encoders,
// lists and math extensions loaded.
func NewEvaluator(opts ...cel.EnvOption) (*Evaluator, error) {
	env, err := newStandardCELEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Environment returns the CEL environment for introspection.
func (e *Evaluator) Environment() *cel.Env {
	return e.env
}

func newStandardCELEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 5+len(opts))
	allOpts = append(allOpts,
		cel.Variable(Variable, cel.DynType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}

// Program is a compiled node predicate.
type Program struct {
	expr string
	prg  cel.Program
}

// Compile parses and type checks a predicate. Expressions whose static type
// is known and not bool are rejected here; dynamic ones are checked per node.
func (e *Evaluator) Compile(expr string) (*Program, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("empty expression")
	}
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression %q returns %s, want bool", expr, typeLabel(out))
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// Test evaluates the predicate with vars bound to "_".
func (p *Program) Test(vars any) (bool, error) {
	result, _, err := p.prg.Eval(map[string]any{Variable: vars})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	b, ok := result.(types.Bool)
	if !ok {
		return false, fmt.Errorf("expression %q returned %s, want bool", p.expr, result.Type().TypeName())
	}
	return bool(b), nil
}

// Evaluate evaluates an arbitrary expression with data bound to "_" and
// converts the result to Go values.
func (e *Evaluator) Evaluate(expr string, data any) (any, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	result, _, err := prg.Eval(map[string]any{Variable: data})
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}
	return ToGo(result), nil
}

// Match returns the keys of every node in forest for which expr holds, in
// depth-first order. The node is bound to "_" as a map with fields title,
// key, depth (roots are 1), children (the child count) and data (the payload
// as decoded JSON, or null).
func Match[T any](e *Evaluator, expr string, forest tree.Forest[T]) ([]string, error) {
	prg, err := e.Compile(expr)
	if err != nil {
		return nil, err
	}
	var (
		keys    []string
		walkErr error
	)
	tree.Walk(forest, func(n *tree.Node[T], depth int) bool {
		vars, err := View(n, depth)
		if err != nil {
			walkErr = err
			return false
		}
		ok, err := prg.Test(vars)
		if err != nil {
			walkErr = fmt.Errorf("node %s: %w", n.Key, err)
			return false
		}
		if ok {
			keys = append(keys, n.Key)
		}
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return keys, nil
}

// View builds the value bound to "_" for one node.
func View[T any](n *tree.Node[T], depth int) (map[string]any, error) {
	var data any
	if n.Data != nil {
		b, err := json.Marshal(n.Data)
		if err != nil {
			return nil, fmt.Errorf("node %s: encode data: %w", n.Key, err)
		}
		if err := json.Unmarshal(b, &data); err != nil {
			return nil, fmt.Errorf("node %s: decode data: %w", n.Key, err)
		}
	}
	return map[string]any{
		"title":    n.Title,
		"key":      n.Key,
		"depth":    depth,
		"children": len(n.Children),
		"data":     data,
	}, nil
}

// ToGo converts CEL values to Go values recursively.
func ToGo(val ref.Val) any {
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	case types.Null:
		return nil
	}

	valuer, ok := val.(interface{ Value() any })
	if !ok {
		return val
	}
	switch inner := valuer.Value().(type) {
	case []ref.Val:
		out := make([]any, len(inner))
		for i, elem := range inner {
			out[i] = ToGo(elem)
		}
		return out
	case []any:
		out := make([]any, len(inner))
		for i, elem := range inner {
			out[i] = convertValue(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(inner))
		for k, v := range inner {
			out[k] = convertValue(v)
		}
		return out
	case map[ref.Val]ref.Val:
		out := make(map[string]any, len(inner))
		for k, v := range inner {
			out[fmt.Sprintf("%v", ToGo(k))] = ToGo(v)
		}
		return out
	default:
		return inner
	}
}

func convertValue(v any) any {
	switch t := v.(type) {
	case ref.Val:
		return ToGo(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = convertValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = convertValue(inner)
		}
		return out
	default:
		return v
	}
}

// Functions lists the functions and macros available to predicates as
// "name() - usage" entries, sorted.
func (e *Evaluator) Functions() []string {
	seen := make(map[string]bool)
	out := make([]string, 0, 100)

	for _, fn := range e.env.Functions() {
		if isOperator(fn.Name()) {
			continue
		}
		for _, o := range fn.OverloadDecls() {
			entry := fn.Name() + "() - " + usageFromOverload(fn.Name(), o)
			if seen[entry] {
				continue
			}
			seen[entry] = true
			out = append(out, entry)
		}
	}
	for _, m := range e.env.Macros() {
		name := m.Function()
		if isOperator(name) {
			continue
		}
		entry := name + "() - macro"
		if seen[entry] {
			continue
		}
		seen[entry] = true
		out = append(out, entry)
	}

	sort.Strings(out)
	return out
}

var operators = map[string]bool{
	"!_": true, "-_": true, "@in": true,
	"_!=_": true, "_%_": true, "_&&_": true,
	"_*_": true, "_+_": true, "_-_": true,
	"_/_": true, "_<=_": true, "_<_": true,
	"_==_": true, "_>=_": true, "_>_": true,
	"_?_:_": true, "_[_]": true, "_||_": true,
	"_in_": true,
}

func isOperator(name string) bool {
	if strings.HasPrefix(name, "@") {
		return true
	}
	if strings.HasPrefix(name, "_") && strings.HasSuffix(name, "_") {
		return true
	}
	return operators[name]
}

func typeLabel(t *types.Type) string {
	if t == nil {
		return "any"
	}
	if name := t.DeclaredTypeName(); name != "" {
		return name
	}
	if name := t.TypeName(); name != "" {
		return name
	}
	return "any"
}

func usageFromOverload(name string, o *decls.OverloadDecl) string {
	params := o.ArgTypes()
	args := params
	call := name
	if o.IsMemberFunction() && len(params) > 0 {
		call = typeLabel(params[0]) + "." + name
		args = params[1:]
	}
	labels := make([]string, len(args))
	for i, p := range args {
		labels[i] = typeLabel(p)
	}
	usage := call + "(" + strings.Join(labels, ", ") + ")"
	if r := o.ResultType(); r != nil {
		usage += " -> " + typeLabel(r)
	}
	return usage
}
