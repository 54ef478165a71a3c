package formatter

import (
	json "github.com/goccy/go-json"
)

// FormatJSON renders v, usually a forest or an engine state, as indented
// JSON followed by a newline.
func FormatJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
