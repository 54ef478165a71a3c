// Package loader decodes forest snapshots from JSON, NDJSON, YAML and TOML
// documents into tree.Forest values ready to seed an engine.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-logr/logr"
	json "github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/keytree/pkg/tree"
)

// NodesField is the top-level field holding the root list in documents
// that cannot be a bare list (TOML) or that carry metadata next to it.
const NodesField = "nodes"

// Format names a snapshot encoding.
type Format string

const (
	FormatAuto   Format = ""
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatYAML   Format = "yaml"
	FormatTOML   Format = "toml"
)

// ErrEmptyInput is returned when a snapshot has no content.
var ErrEmptyInput = errors.New("empty input")

// LoadForest decodes a snapshot, auto-detecting its format.
//
// Accepted shapes: a list of nodes, a single node object, or an object
// with a "nodes" list. Multi-document YAML and NDJSON contribute one root
// (or list of roots) per document.
func LoadForest[T any](input []byte) (tree.Forest[T], error) {
	return LoadForestWithLogger[T](input, logr.Discard())
}

// LoadForestWithLogger is like LoadForest but records the detected format
// and fallback attempts on lgr.
func LoadForestWithLogger[T any](input []byte, lgr logr.Logger) (tree.Forest[T], error) {
	return decodeForest[T](input, FormatAuto, lgr)
}

// LoadFile reads and decodes a snapshot file. The extension selects the
// decoder; unknown extensions fall back to content detection.
func LoadFile[T any](path string) (tree.Forest[T], error) {
	return LoadFileWithLogger[T](path, logr.Discard())
}

// LoadFileWithLogger is like LoadFile but logs decoder selection on lgr.
func LoadFileWithLogger[T any](path string, lgr logr.Logger) (tree.Forest[T], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	format := FormatFromPath(path)
	lgr.V(1).Info("loading snapshot", "path", path, "format", string(format))
	forest, err := decodeForest[T](data, format, lgr)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return forest, nil
}

// LoadReader reads all of r and decodes it with auto-detection.
func LoadReader[T any](r io.Reader, lgr logr.Logger) (tree.Forest[T], error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return LoadForestWithLogger[T](data, lgr)
}

// FormatFromPath maps a file extension to a Format.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatAuto
	}
}

func decodeForest[T any](input []byte, format Format, lgr logr.Logger) (tree.Forest[T], error) {
	text := strings.TrimSpace(string(input))
	if text == "" {
		return nil, ErrEmptyInput
	}
	if format == FormatAuto {
		format = DetectFormat(text)
		lgr.V(1).Info("detected snapshot format", "format", string(format))
	}

	docs, err := decodeDocuments(text, format)
	if err != nil && format == FormatJSON {
		// YAML is a superset of JSON; retry for relaxed JSON-ish input.
		lgr.V(1).Info("JSON decode failed, retrying as YAML", "error", err.Error())
		docs, err = decodeDocuments(text, FormatYAML)
	}
	if err != nil {
		return nil, err
	}

	var roots []any
	for i, doc := range docs {
		nodes, err := rootsOf(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		roots = append(roots, nodes...)
	}

	forest, err := convert[T](roots)
	if err != nil {
		return nil, err
	}
	return Normalize(forest), nil
}

// DetectFormat guesses the encoding of a trimmed snapshot.
func DetectFormat(input string) Format {
	if strings.Contains(input, "\n---") || strings.HasPrefix(input, "---") {
		return FormatYAML
	}
	if lines := strings.Split(input, "\n"); len(lines) > 1 && isLikelyNDJSON(lines) {
		return FormatNDJSON
	}
	// TOML [section] headers look like JSON arrays, so check TOML first.
	if isLikelyTOML(input) {
		return FormatTOML
	}
	if strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[") {
		return FormatJSON
	}
	return FormatYAML
}

func decodeDocuments(input string, format Format) ([]any, error) {
	switch format {
	case FormatJSON:
		var data any
		if err := json.Unmarshal([]byte(input), &data); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return []any{data}, nil
	case FormatNDJSON:
		return decodeNDJSON(input)
	case FormatTOML:
		var data map[string]any
		if err := toml.Unmarshal([]byte(input), &data); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
		return []any{data}, nil
	default:
		return decodeYAML(input)
	}
}

// decodeYAML handles single and multi-document YAML (separated by ---).
func decodeYAML(input string) ([]any, error) {
	var docs []any
	decoder := yaml.NewDecoder(strings.NewReader(input))
	for {
		var doc any
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents found in YAML input")
	}
	return docs, nil
}

func decodeNDJSON(input string) ([]any, error) {
	lines := strings.Split(input, "\n")
	docs := make([]any, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var doc any
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			return nil, fmt.Errorf("invalid NDJSON at line %d: %w", i+1, err)
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, ErrEmptyInput
	}
	return docs, nil
}

// rootsOf extracts the root node list from one decoded document.
func rootsOf(doc any) ([]any, error) {
	switch v := doc.(type) {
	case []any:
		return v, nil
	case map[string]any:
		if nodes, ok := v[NodesField]; ok {
			list, ok := nodes.([]any)
			if !ok {
				return nil, fmt.Errorf("%q must be a list, got %T", NodesField, nodes)
			}
			return list, nil
		}
		return []any{v}, nil
	default:
		return nil, fmt.Errorf("expected a node, a list of nodes or a %q list, got %T", NodesField, doc)
	}
}

// convert re-encodes generic documents into typed nodes, so payloads use
// the caller's json tags regardless of the source format.
func convert[T any](roots []any) (tree.Forest[T], error) {
	raw, err := json.Marshal(roots)
	if err != nil {
		return nil, fmt.Errorf("encode nodes: %w", err)
	}
	var forest tree.Forest[T]
	if err := json.Unmarshal(raw, &forest); err != nil {
		return nil, fmt.Errorf("decode nodes: %w", err)
	}
	return forest, nil
}

// isLikelyNDJSON reports whether most non-empty lines start with '{' or '['.
func isLikelyNDJSON(lines []string) bool {
	jsonCount := 0
	nonEmptyCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmptyCount++
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			jsonCount++
		}
	}
	return nonEmptyCount > 1 && jsonCount > nonEmptyCount/2
}

var (
	// [section], [[array]], ["quoted"], [dotted.name]; JSON arrays like [1, 2] do not match.
	tomlSectionPattern  = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	tomlKeyValuePattern = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// isLikelyTOML looks for section headers or a majority of key = value lines.
func isLikelyTOML(input string) bool {
	sectionCount := 0
	keyValueCount := 0
	nonEmptyCount := 0
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmptyCount++
		if tomlSectionPattern.MatchString(line) {
			sectionCount++
		}
		if tomlKeyValuePattern.MatchString(line) {
			keyValueCount++
		}
	}
	if sectionCount > 0 {
		return true
	}
	return nonEmptyCount > 0 && keyValueCount > nonEmptyCount/2
}
