// Package sorting orders record sequences in place by several fields.
package sorting

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/datapipe-cli/internal/value"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrInvalidSpec is wrapped by every spec parsing failure.
var ErrInvalidSpec = errors.New("invalid sort spec")

// Spec is one sort key: a field and a direction.
type Spec struct {
	Field string
	Desc  bool
}

func (s Spec) String() string {
	if s.Desc {
		return s.Field + " DESC"
	}
	return s.Field + " ASC"
}

// ParseSpec reads "field", "field ASC" or "field DESC" (direction is
// case-insensitive).
func ParseSpec(raw string) (Spec, error) {
	parts := strings.Fields(raw)
	switch len(parts) {
	case 1:
		return Spec{Field: parts[0]}, nil
	case 2:
		switch strings.ToUpper(parts[1]) {
		case "ASC":
			return Spec{Field: parts[0]}, nil
		case "DESC":
			return Spec{Field: parts[0], Desc: true}, nil
		}
		return Spec{}, fmt.Errorf("%w: %q: direction must be ASC or DESC", ErrInvalidSpec, raw)
	case 0:
		return Spec{}, fmt.Errorf("%w: empty", ErrInvalidSpec)
	}
	return Spec{}, fmt.Errorf("%w: %q", ErrInvalidSpec, raw)
}

// Sorter holds comparison settings. The zero Sorter compares strings
// byte-wise.
type Sorter struct {
	coll *collate.Collator
}

// Option configures a Sorter.
type Option func(*Sorter)

// WithLocale compares strings with the collation rules of tag.
func WithLocale(tag language.Tag) Option {
	return func(s *Sorter) { s.coll = collate.New(tag) }
}

// New builds a Sorter.
func New(opts ...Option) *Sorter {
	s := &Sorter{}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Sort orders records in place with the default Sorter and returns them.
func Sort(records []*value.Record, specs ...string) ([]*value.Record, error) {
	return New().Sort(records, specs...)
}

// Sort orders records in place, stable, by each spec in turn. Missing
// values go last in ascending order and first in descending order. Specs
// are validated before anything moves.
func (s *Sorter) Sort(records []*value.Record, specs ...string) ([]*value.Record, error) {
	parsed := make([]Spec, 0, len(specs))
	for _, raw := range specs {
		sp, err := ParseSpec(raw)
		if err != nil {
			return records, err
		}
		parsed = append(parsed, sp)
	}
	s.SortSpecs(records, parsed...)
	return records, nil
}

// SortSpecs is Sort with pre-parsed specs.
func (s *Sorter) SortSpecs(records []*value.Record, specs ...Spec) {
	if len(specs) == 0 || len(records) < 2 {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		for _, sp := range specs {
			c := s.compare(records[i].Get(sp.Field), records[j].Get(sp.Field))
			if sp.Desc {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})
}

func (s *Sorter) compare(a, b value.Value) int {
	if s.coll != nil {
		as, aok := a.Text()
		bs, bok := b.Text()
		if aok && bok {
			return s.coll.CompareString(as, bs)
		}
	}
	return value.Compare(a, b)
}
