// Package join implements relational joins and a keyed merge over record
// sequences.
//
// The right-hand side is indexed once by a 64-bit xxh3 hash of each
// record's canonical key encoding; every bucket hit is confirmed against the
// full encoding, so hash collisions never produce a match. Output order
// follows the left sequence, and within one left record the right sequence.
package join

import (
	"bytes"
	"fmt"

	"github.com/KaramelBytes/datapipe-cli/internal/value"
	"github.com/zeebo/xxh3"
)

// Combiner builds an output record from a left and a right record. A nil
// argument means that side had no match.
type Combiner func(left, right *value.Record) *value.Record

// Combine is the default Combiner: a shallow merge where right fields come
// first and left fields win on conflicts.
func Combine(left, right *value.Record) *value.Record {
	return value.Merge(right, left)
}

// KeyMismatchError reports composite keys with different component counts.
type KeyMismatchError struct {
	Left, Right int
}

func (e *KeyMismatchError) Error() string {
	return fmt.Sprintf("composite key mismatch: left has %d fields, right has %d", e.Left, e.Right)
}

func validate(lk, rk value.Key) error {
	if err := lk.Validate(); err != nil {
		return fmt.Errorf("left key: %w", err)
	}
	if err := rk.Validate(); err != nil {
		return fmt.Errorf("right key: %w", err)
	}
	if la, ra := lk.Arity(), rk.Arity(); la > 0 && ra > 0 && la != ra {
		return &KeyMismatchError{Left: la, Right: ra}
	}
	return nil
}

type index struct {
	buckets map[uint64][]int
	keys    [][]byte
}

func buildIndex(records []*value.Record, key value.Key) *index {
	ix := &index{buckets: make(map[uint64][]int, len(records)), keys: make([][]byte, len(records))}
	for i, r := range records {
		enc, ok := key.Encode(nil, r)
		if !ok {
			continue
		}
		ix.keys[i] = enc
		h := xxh3.Hash(enc)
		ix.buckets[h] = append(ix.buckets[h], i)
	}
	return ix
}

// lookup returns the indexes of records whose key encodes to enc, in order.
func (ix *index) lookup(enc []byte) []int {
	bucket := ix.buckets[xxh3.Hash(enc)]
	if len(bucket) == 0 {
		return nil
	}
	hits := bucket[:0:0]
	for _, i := range bucket {
		if bytes.Equal(ix.keys[i], enc) {
			hits = append(hits, i)
		}
	}
	return hits
}

type mode int

const (
	modeInner mode = iota
	modeLeft
	modeFull
)

func run(left, right []*value.Record, lk, rk value.Key, combine Combiner, m mode) ([]*value.Record, error) {
	if err := validate(lk, rk); err != nil {
		return nil, err
	}
	if combine == nil {
		combine = Combine
	}
	ix := buildIndex(right, rk)
	var matched []bool
	if m == modeFull {
		matched = make([]bool, len(right))
	}
	out := make([]*value.Record, 0, len(left))
	var buf []byte
	for _, l := range left {
		var ok bool
		var hits []int
		buf, ok = lk.Encode(buf[:0], l)
		if ok {
			hits = ix.lookup(buf)
		}
		for _, ri := range hits {
			out = append(out, combine(l, right[ri]))
			if matched != nil {
				matched[ri] = true
			}
		}
		if len(hits) == 0 && m != modeInner {
			out = append(out, combine(l, nil))
		}
	}
	for ri, r := range right {
		if matched != nil && !matched[ri] {
			out = append(out, combine(nil, r))
		}
	}
	return out, nil
}

// Inner emits one combined record per matching (left, right) pair.
func Inner(left, right []*value.Record, leftKey, rightKey value.Key, combine Combiner) ([]*value.Record, error) {
	return run(left, right, leftKey, rightKey, combine, modeInner)
}

// Left is Inner plus one combine(left, nil) record for every left record
// without a match, in that record's position.
func Left(left, right []*value.Record, leftKey, rightKey value.Key, combine Combiner) ([]*value.Record, error) {
	return run(left, right, leftKey, rightKey, combine, modeLeft)
}

// Full is Left followed by one combine(nil, right) record for every right
// record that matched nothing, in right order.
func Full(left, right []*value.Record, leftKey, rightKey value.Key, combine Combiner) ([]*value.Record, error) {
	return run(left, right, leftKey, rightKey, combine, modeFull)
}

// Merge overlays source fields onto each target record that has exactly
// one matching source record; source fields win and new fields are
// appended. Targets with no match or several matches pass through
// unchanged and unmatched sources are ignored, so the result has the
// target's length and order. Inputs are not modified.
func Merge(target, source []*value.Record, targetKey, sourceKey value.Key) ([]*value.Record, error) {
	if err := validate(targetKey, sourceKey); err != nil {
		return nil, err
	}
	ix := buildIndex(source, sourceKey)
	out := make([]*value.Record, len(target))
	var buf []byte
	for i, t := range target {
		out[i] = t
		var ok bool
		buf, ok = targetKey.Encode(buf[:0], t)
		if !ok {
			continue
		}
		if hits := ix.lookup(buf); len(hits) == 1 {
			out[i] = value.Merge(t, source[hits[0]])
		}
	}
	return out, nil
}
