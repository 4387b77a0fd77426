// Package pivot reshapes record sequences: Pivot turns distinct values of
// one field into columns, Transpose swaps records and fields.
package pivot

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/KaramelBytes/datapipe-cli/internal/stats"
	"github.com/KaramelBytes/datapipe-cli/internal/value"
)

var (
	// ErrNoColumnField is returned when the pivot column field is empty.
	ErrNoColumnField = errors.New("pivot: column field is required")
	// ErrNoDataField is returned when the pivot data field is empty.
	ErrNoDataField = errors.New("pivot: data field is required")
	// ErrColumnConflict is returned when a column value names a row field.
	ErrColumnConflict = errors.New("pivot: column value collides with a row field")
)

type options struct {
	agg     stats.Aggregator
	columns []string
}

// Option configures Pivot.
type Option func(*options)

// WithAggregator sets the cell aggregator. The default is stats.Sum.
func WithAggregator(agg stats.Aggregator) Option {
	return func(o *options) {
		if agg != nil {
			o.agg = agg
		}
	}
}

// WithColumns fixes the output columns and their order instead of deriving
// them from the data.
func WithColumns(columns ...string) Option {
	return func(o *options) { o.columns = append([]string(nil), columns...) }
}

type rowGroup struct {
	first *value.Record
	items []*value.Record
}

// Pivot groups records by the tuple of rowFields values and emits one
// record per group: the row fields, then one field per column value
// holding the aggregate of dataField over the group's records with that
// column value. Cells with no records are Null. A column value equal to a
// row field name fails with ErrColumnConflict.
func Pivot(records []*value.Record, rowFields []string, columnField, dataField string, opts ...Option) ([]*value.Record, error) {
	if columnField == "" {
		return nil, ErrNoColumnField
	}
	if dataField == "" {
		return nil, ErrNoDataField
	}
	o := options{agg: stats.SumAggregator}
	for _, opt := range opts {
		opt(&o)
	}

	index := make(map[string]int)
	var groups []*rowGroup
	seenCol := make(map[string]bool)
	var derived []string
	var buf []byte
	for _, r := range records {
		buf = buf[:0]
		for _, f := range rowFields {
			buf, _ = value.AppendCanonical(buf, r.Get(f))
		}
		gi, ok := index[string(buf)]
		if !ok {
			gi = len(groups)
			index[string(buf)] = gi
			groups = append(groups, &rowGroup{first: r})
		}
		groups[gi].items = append(groups[gi].items, r)

		if c := r.Get(columnField).String(); !seenCol[c] {
			seenCol[c] = true
			derived = append(derived, c)
		}
	}
	columns := o.columns
	if columns == nil {
		columns = derived
	}
	for _, c := range columns {
		for _, f := range rowFields {
			if c == f {
				return nil, fmt.Errorf("%w: %q", ErrColumnConflict, c)
			}
		}
	}

	out := make([]*value.Record, 0, len(groups))
	for _, g := range groups {
		row := value.NewRecord()
		for _, f := range rowFields {
			row.Set(f, g.first.Get(f))
		}
		for _, c := range columns {
			var cell []value.Value
			for _, r := range g.items {
				if r.Get(columnField).String() == c {
					cell = append(cell, value.ParseFloat(r.Get(dataField)))
				}
			}
			if len(cell) == 0 {
				row.Set(c, value.Null())
				continue
			}
			agg, err := o.agg(cell)
			if err != nil {
				return nil, fmt.Errorf("pivot column %q: %w", c, err)
			}
			row.Set(c, agg)
		}
		out = append(out, row)
	}
	return out, nil
}

// Transpose emits one record per distinct field name across records, in
// first-seen order. Each has "field" set to the name and one field per
// source record, named by its index, holding that record's value or Null.
func Transpose(records []*value.Record) []*value.Record {
	var names []string
	seen := make(map[string]bool)
	for _, r := range records {
		for _, f := range r.Fields() {
			if !seen[f] {
				seen[f] = true
				names = append(names, f)
			}
		}
	}
	out := make([]*value.Record, 0, len(names))
	for _, name := range names {
		row := value.NewRecord().Set("field", value.String(name))
		for i, r := range records {
			v, ok := r.Lookup(name)
			if !ok {
				v = value.Null()
			}
			row.Set(strconv.Itoa(i), v)
		}
		out = append(out, row)
	}
	return out
}
