package tree

import (
	"strconv"
	"strings"
)

const (
	// RootMarker is the leading segment shared by every key in a forest.
	RootMarker = "0"
	// KeySeparator joins key segments.
	KeySeparator = "-"
)

// ParseKey splits a key like "0-2-0-5" into its sibling index chain
// ([2 0 5]). The leading root marker is required and discarded.
// Malformed keys (wrong marker, empty or non-numeric segments, negative
// indices, leading zeros, or the bare marker with no segments) report
// false. Only the canonical spelling of an index is accepted, so "0-01"
// never names the node "0-1".
func ParseKey(key string) ([]int, bool) {
	parts := strings.Split(key, KeySeparator)
	if len(parts) < 2 || parts[0] != RootMarker {
		return nil, false
	}
	indices := make([]int, 0, len(parts)-1)
	for _, p := range parts[1:] {
		if p == "" || p[0] == '+' || (len(p) > 1 && p[0] == '0') {
			return nil, false
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, false
		}
		indices = append(indices, n)
	}
	return indices, true
}

// JoinKey appends a sibling index to a parent key.
func JoinKey(parent string, index int) string {
	return parent + KeySeparator + strconv.Itoa(index)
}

// RootKey returns the key of the root at the given index.
func RootKey(index int) string {
	return JoinKey(RootMarker, index)
}

// ParentKey returns the key of the parent of key. Roots report RootMarker.
func ParentKey(key string) (string, bool) {
	if _, ok := ParseKey(key); !ok {
		return "", false
	}
	return key[:strings.LastIndex(key, KeySeparator)], true
}

// Depth returns the number of index segments in key (1 for roots).
func Depth(key string) int {
	indices, ok := ParseKey(key)
	if !ok {
		return 0
	}
	return len(indices)
}

// suffix returns the last sibling index encoded in key.
func suffix(key string) (int, bool) {
	indices, ok := ParseKey(key)
	if !ok {
		return 0, false
	}
	return indices[len(indices)-1], true
}

// maxSuffix returns the highest sibling index among nodes, ignoring keys
// that do not end in a valid index.
func maxSuffix[T any](nodes []*Node[T]) (int, bool) {
	best, found := 0, false
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if idx, ok := suffix(n.Key); ok && (!found || idx > best) {
			best, found = idx, true
		}
	}
	return best, found
}
