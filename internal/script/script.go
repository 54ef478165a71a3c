// Package script decodes and runs ordered lists of engine operations.
//
// A script is a YAML or JSON list of steps:
//
//	- op: select
//	  key: 0-0
//	- op: add
//	  title: Groceries
//	  data: {due: friday}
//	- op: sort
//	  order: [0-0-2, 0-0-0]
//
// Steps may also be given inline as "op:arg" strings, see ParseInline.
package script

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Op names an engine operation.
type Op string

const (
	OpSelect Op = "select"
	OpAdd    Op = "add"
	OpRemove Op = "remove"
	OpModify Op = "modify"
	OpSort   Op = "sort"
	OpClear  Op = "clear"
)

// Ops lists every supported operation.
var Ops = []Op{OpSelect, OpAdd, OpRemove, OpModify, OpSort, OpClear}

// ErrNoSteps is returned when a script decodes to an empty list.
var ErrNoSteps = errors.New("script has no steps")

// Step is one operation with its arguments. Which fields apply depends on Op.
type Step[T any] struct {
	Op    Op       `json:"op" yaml:"op"`
	Key   string   `json:"key,omitempty" yaml:"key,omitempty"`
	Title string   `json:"title,omitempty" yaml:"title,omitempty"`
	Data  *T       `json:"data,omitempty" yaml:"data,omitempty"`
	Order []string `json:"order,omitempty" yaml:"order,omitempty"`
}

// String renders the step in inline form.
func (s Step[T]) String() string {
	switch s.Op {
	case OpSelect:
		return string(s.Op) + ":" + s.Key
	case OpAdd, OpModify:
		if s.Title != "" {
			return string(s.Op) + ":" + s.Title
		}
	case OpSort:
		return string(s.Op) + ":" + strings.Join(s.Order, ",")
	}
	return string(s.Op)
}

// Validate checks that the step names a known op and carries the arguments
// that op needs.
func (s Step[T]) Validate() error {
	switch s.Op {
	case OpSelect:
		if s.Key == "" {
			return fmt.Errorf("%s: key is required", s.Op)
		}
	case OpAdd:
		if s.Title == "" {
			return fmt.Errorf("%s: title is required", s.Op)
		}
	case OpModify:
		if s.Title == "" && s.Data == nil {
			return fmt.Errorf("%s: title or data is required", s.Op)
		}
	case OpSort:
		if len(s.Order) == 0 {
			return fmt.Errorf("%s: order is required", s.Op)
		}
	case OpRemove, OpClear:
	case "":
		return errors.New("op is required")
	default:
		return fmt.Errorf("unknown op %q", s.Op)
	}
	return nil
}

// Parse decodes a script. The input is YAML (JSON being a subset) holding
// either a list of steps or a mapping with a "steps" list. Payloads are
// decoded into T through their JSON form, so T only needs json tags.
func Parse[T any](input []byte) ([]Step[T], error) {
	if len(bytes.TrimSpace(input)) == 0 {
		return nil, ErrNoSteps
	}
	var doc any
	if err := yaml.Unmarshal(input, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if m, ok := doc.(map[string]any); ok {
		list, found := m["steps"]
		if !found {
			return nil, errors.New("script must be a list of steps or a mapping with a steps list")
		}
		doc = list
	}
	list, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("script must be a list of steps, got %T", doc)
	}
	if len(list) == 0 {
		return nil, ErrNoSteps
	}

	encoded, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("failed to encode script: %w", err)
	}
	var steps []Step[T]
	if err := json.Unmarshal(encoded, &steps); err != nil {
		return nil, fmt.Errorf("failed to decode steps: %w", err)
	}
	for i, s := range steps {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return steps, nil
}

// ParseInline parses "op[:arg]" shorthands:
//
//	select:0-1       select the node at 0-1
//	add:Title        add a node under the selection
//	modify:Title     retitle the selection
//	sort:0-1,0-0     reorder the selection's children
//	remove, clear
func ParseInline[T any](args []string) ([]Step[T], error) {
	if len(args) == 0 {
		return nil, ErrNoSteps
	}
	steps := make([]Step[T], 0, len(args))
	for i, arg := range args {
		name, value, _ := strings.Cut(arg, ":")
		s := Step[T]{Op: Op(strings.ToLower(strings.TrimSpace(name)))}
		value = strings.TrimSpace(value)
		switch s.Op {
		case OpSelect:
			s.Key = value
		case OpAdd, OpModify:
			s.Title = value
		case OpSort:
			for _, k := range strings.Split(value, ",") {
				if k = strings.TrimSpace(k); k != "" {
					s.Order = append(s.Order, k)
				}
			}
		case OpRemove, OpClear:
			if value != "" {
				return nil, fmt.Errorf("step %d: %s takes no argument", i+1, s.Op)
			}
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		steps = append(steps, s)
	}
	return steps, nil
}
