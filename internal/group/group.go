// Package group partitions sequences by a derived key.
package group

import "github.com/KaramelBytes/datapipe-cli/internal/value"

// Group is one partition: its key and its members in original order.
type Group[T any] struct {
	Key   value.Value
	Items []T
}

// By partitions items by key(item). Groups appear in first-seen key order.
// Keys compare structurally; all NaN keys share one group.
func By[T any](items []T, key func(T) value.Value) []Group[T] {
	index := make(map[string]int)
	var groups []Group[T]
	var buf []byte
	for _, it := range items {
		k := key(it)
		buf, _ = value.AppendCanonical(buf[:0], k)
		gi, ok := index[string(buf)]
		if !ok {
			gi = len(groups)
			index[string(buf)] = gi
			groups = append(groups, Group[T]{Key: k})
		}
		groups[gi].Items = append(groups[gi].Items, it)
	}
	return groups
}

// Records partitions records with a selector.
func Records(records []*value.Record, sel value.Selector) []Group[*value.Record] {
	return By(records, sel.Select)
}

// CountBy maps each stringified key to the number of items producing it,
// keys in first-seen order.
func CountBy[T any](items []T, key func(T) value.Value) *value.Record {
	counts := make(map[string]int)
	var order []string
	for _, it := range items {
		k := key(it).String()
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}
	out := value.NewRecord()
	for _, k := range order {
		out.Set(k, value.Int(counts[k]))
	}
	return out
}

// Unique drops structurally equal repeats, keeping first occurrences.
func Unique(values []value.Value) []value.Value {
	seen := make(map[string]struct{}, len(values))
	out := make([]value.Value, 0, len(values))
	var buf []byte
	for _, v := range values {
		buf, _ = value.AppendCanonical(buf[:0], v)
		if _, ok := seen[string(buf)]; ok {
			continue
		}
		seen[string(buf)] = struct{}{}
		out = append(out, v)
	}
	return out
}
