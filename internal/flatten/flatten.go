// Package flatten expands arbitrarily nested sequences into one flat list.
package flatten

import (
	"reflect"

	"github.com/KaramelBytes/datapipe-cli/internal/value"
)

// Flatten returns the leaves of items depth-first in order. Any slice or
// array element is expanded recursively; empty ones contribute nothing.
// Records, maps and scalars are leaves.
func Flatten(items []any) []any {
	out := make([]any, 0, len(items))
	return appendFlat(out, items)
}

func appendFlat(out []any, items []any) []any {
	for _, it := range items {
		out = appendItem(out, it)
	}
	return out
}

func appendItem(out []any, it any) []any {
	switch v := it.(type) {
	case []any:
		return appendFlat(out, v)
	case []value.Value:
		for _, x := range v {
			out = append(out, x)
		}
		return out
	case []*value.Record:
		for _, r := range v {
			out = append(out, r)
		}
		return out
	case string, []byte, nil:
		return append(out, it)
	}
	rv := reflect.ValueOf(it)
	if k := rv.Kind(); k == reflect.Slice || k == reflect.Array {
		for i := 0; i < rv.Len(); i++ {
			out = appendItem(out, rv.Index(i).Interface())
		}
		return out
	}
	return append(out, it)
}

// Values flattens items and converts each leaf with value.Of.
func Values(items []any) []value.Value {
	flat := Flatten(items)
	out := make([]value.Value, len(flat))
	for i, x := range flat {
		out[i] = value.Of(x)
	}
	return out
}
