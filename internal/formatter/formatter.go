package formatter

import (
	"fmt"
	"reflect"
	"strings"

	json "github.com/goccy/go-json"
	runewidth "github.com/mattn/go-runewidth"
)

// Output names a rendering of a forest.
type Output string

const (
	OutputTree     Output = "tree"
	OutputList     Output = "list"
	OutputMermaid  Output = "mermaid"
	OutputYAML     Output = "yaml"
	OutputJSON     Output = "json"
	OutputTOML     Output = "toml"
	OutputMarkdown Output = "markdown"
	OutputHTML     Output = "html"
)

// ValidOutputs lists every supported output, default first.
var ValidOutputs = []Output{OutputTree, OutputList, OutputMermaid, OutputYAML, OutputJSON, OutputTOML, OutputMarkdown, OutputHTML}

// ValidateOutput returns an error if name is not a supported output.
// The empty string is accepted and means "use the default".
func ValidateOutput(name string) error {
	if name == "" {
		return nil
	}
	for _, o := range ValidOutputs {
		if string(o) == name {
			return nil
		}
	}
	names := make([]string, len(ValidOutputs))
	for i, o := range ValidOutputs {
		names[i] = string(o)
	}
	return fmt.Errorf("invalid output %q: valid values are %s", name, strings.Join(names, ", "))
}

// Stringify renders a payload on a single line: strings as is, scalars via
// fmt, and maps, slices and structs as compact JSON.
func Stringify(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return flatten(t)
	case bool, int, int64, float64:
		return fmt.Sprint(t)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	switch rv.Kind() { //nolint:exhaustive // only composite kinds need JSON
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if b, err := json.Marshal(rv.Interface()); err == nil {
			return string(b)
		}
	case reflect.String:
		return flatten(rv.String())
	}
	return fmt.Sprintf("%v", rv.Interface())
}

// flatten keeps labels on one line.
func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", "\\n")
}

// truncate shortens s to maxWidth display columns, ending in "..." when
// there is room for it. maxWidth <= 0 disables truncation.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 || runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth < 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}
