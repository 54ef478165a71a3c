package tree

import (
	"fmt"
	"reflect"

	json "github.com/goccy/go-json"
)

// CloneFunc deep-copies a payload.
type CloneFunc[T any] func(T) T

// MergeFunc merges src into dst and returns the result. dst is always an
// engine-owned copy and may be modified in place.
type MergeFunc[T any] func(dst, src T) T

// jsonClone deep-copies v through a JSON round trip. Payloads must be JSON
// representable and acyclic.
func jsonClone[T any](v T) (T, error) {
	var out T
	raw, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("marshal payload: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("unmarshal payload: %w", err)
	}
	return out, nil
}

// ShallowMerge overlays src onto dst one level deep.
//
//   - maps: every key of src overwrites the same key of dst
//   - structs: every non-zero exported field of src overwrites dst
//   - pointers to structs and interfaces holding maps or structs: merged
//     through the pointer or interface
//   - anything else: src replaces dst
//
// Nested values are replaced, never merged.
func ShallowMerge[T any](dst, src T) T {
	dv := reflect.ValueOf(&dst).Elem()
	merged := mergeValue(dv, reflect.ValueOf(&src).Elem())
	out, ok := merged.Interface().(T)
	if !ok {
		return src
	}
	return out
}

func mergeValue(dst, src reflect.Value) reflect.Value {
	if !src.IsValid() {
		return dst
	}
	if !dst.IsValid() {
		return src
	}
	switch dst.Kind() {
	case reflect.Interface:
		if src.Kind() != reflect.Interface || src.IsNil() {
			return dst
		}
		if dst.IsNil() {
			return src
		}
		inner := mergeValue(dst.Elem(), src.Elem())
		out := reflect.New(dst.Type()).Elem()
		out.Set(inner)
		return out
	case reflect.Map:
		if dst.Type() != src.Type() {
			return src
		}
		if src.IsNil() {
			return dst
		}
		if dst.IsNil() {
			return src
		}
		iter := src.MapRange()
		for iter.Next() {
			dst.SetMapIndex(iter.Key(), iter.Value())
		}
		return dst
	case reflect.Pointer:
		if dst.Type() != src.Type() {
			return src
		}
		if src.IsNil() {
			return dst
		}
		if dst.IsNil() || dst.Elem().Kind() != reflect.Struct {
			return src
		}
		mergeStruct(dst.Elem(), src.Elem())
		return dst
	case reflect.Struct:
		if dst.Type() != src.Type() {
			return src
		}
		out := reflect.New(dst.Type()).Elem()
		out.Set(dst)
		mergeStruct(out, src)
		return out
	default:
		return src
	}
}

// mergeStruct copies non-zero exported fields of src into the addressable
// struct dst.
func mergeStruct(dst, src reflect.Value) {
	for i := 0; i < dst.NumField(); i++ {
		field := dst.Field(i)
		if !field.CanSet() {
			continue
		}
		if v := src.Field(i); !v.IsZero() {
			field.Set(v)
		}
	}
}
