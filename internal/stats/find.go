package stats

// Count returns len(items) without a predicate, otherwise the number of
// items satisfying pred. ok is false only for a nil slice.
func Count[T any](items []T, pred func(T) bool) (int, bool) {
	if items == nil {
		return 0, false
	}
	if pred == nil {
		return len(items), true
	}
	n := 0
	for _, it := range items {
		if pred(it) {
			n++
		}
	}
	return n, true
}

// First returns the first item satisfying pred, or the first item when
// pred is nil. ok is false when nothing matches.
func First[T any](items []T, pred func(T) bool) (T, bool) {
	for _, it := range items {
		if pred == nil || pred(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Last returns the last item satisfying pred, or the last item when pred
// is nil. ok is false when nothing matches.
func Last[T any](items []T, pred func(T) bool) (T, bool) {
	for i := len(items) - 1; i >= 0; i-- {
		if pred == nil || pred(items[i]) {
			return items[i], true
		}
	}
	var zero T
	return zero, false
}
