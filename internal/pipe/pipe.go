// Package pipe chains record operations over one owned collection.
//
// Every transformation replaces the collection and returns the same Pipe.
// The first failing step records its error; later steps do nothing and
// terminal operations return that error.
package pipe

import (
	"fmt"
	"sort"

	"github.com/KaramelBytes/datapipe-cli/internal/dataio"
	"github.com/KaramelBytes/datapipe-cli/internal/group"
	"github.com/KaramelBytes/datapipe-cli/internal/join"
	"github.com/KaramelBytes/datapipe-cli/internal/pivot"
	"github.com/KaramelBytes/datapipe-cli/internal/sorting"
	"github.com/KaramelBytes/datapipe-cli/internal/stats"
	"github.com/KaramelBytes/datapipe-cli/internal/value"
)

// Pipe is a record collection with a sticky error.
type Pipe struct {
	records []*value.Record
	sorter  *sorting.Sorter
	err     error
}

// From starts a pipe over a copy of the records slice. The records
// themselves are shared until a step replaces them.
func From(records []*value.Record) *Pipe {
	return &Pipe{records: append([]*value.Record{}, records...), sorter: sorting.New()}
}

// FromTable starts a pipe from columnar data.
func FromTable(t dataio.Table) *Pipe {
	recs, err := dataio.FromTable(t)
	p := From(recs)
	p.fail("from table", err)
	return p
}

func (p *Pipe) fail(step string, err error) {
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: %w", step, err)
	}
}

// WithSorter replaces the sorter used by Sort, e.g. for locale collation.
func (p *Pipe) WithSorter(s *sorting.Sorter) *Pipe {
	if s != nil {
		p.sorter = s
	}
	return p
}

// Where keeps the records matching pred.
func (p *Pipe) Where(pred func(*value.Record) bool) *Pipe {
	if p.err != nil {
		return p
	}
	out := p.records[:0:0]
	for _, r := range p.records {
		if pred(r) {
			out = append(out, r)
		}
	}
	p.records = out
	return p
}

// Select sets field name on every record to sel's value.
func (p *Pipe) Select(name string, sel value.Selector) *Pipe {
	if p.err != nil {
		return p
	}
	if name == "" {
		p.fail("select", value.ErrEmptyKey)
		return p
	}
	for i, r := range p.records {
		p.records[i] = r.Clone().Set(name, sel.Select(r))
	}
	return p
}

// Map replaces every record with fn(record).
func (p *Pipe) Map(fn func(*value.Record) *value.Record) *Pipe {
	if p.err != nil {
		return p
	}
	out := make([]*value.Record, len(p.records))
	for i, r := range p.records {
		out[i] = fn(r)
	}
	p.records = out
	return p
}

// Sort orders the collection by sort specs such as "age DESC".
func (p *Pipe) Sort(specs ...string) *Pipe {
	if p.err != nil {
		return p
	}
	_, err := p.sorter.Sort(p.records, specs...)
	p.fail("sort", err)
	return p
}

func (p *Pipe) joinWith(step string, fn func() ([]*value.Record, error)) *Pipe {
	if p.err != nil {
		return p
	}
	out, err := fn()
	if err != nil {
		p.fail(step, err)
		return p
	}
	p.records = out
	return p
}

// InnerJoin joins the collection (left) with right.
func (p *Pipe) InnerJoin(right []*value.Record, leftKey, rightKey value.Key, combine join.Combiner) *Pipe {
	return p.joinWith("inner join", func() ([]*value.Record, error) {
		return join.Inner(p.records, right, leftKey, rightKey, combine)
	})
}

// LeftJoin keeps every record of the collection.
func (p *Pipe) LeftJoin(right []*value.Record, leftKey, rightKey value.Key, combine join.Combiner) *Pipe {
	return p.joinWith("left join", func() ([]*value.Record, error) {
		return join.Left(p.records, right, leftKey, rightKey, combine)
	})
}

// FullJoin keeps every record of both sides.
func (p *Pipe) FullJoin(right []*value.Record, leftKey, rightKey value.Key, combine join.Combiner) *Pipe {
	return p.joinWith("full join", func() ([]*value.Record, error) {
		return join.Full(p.records, right, leftKey, rightKey, combine)
	})
}

// Merge overlays uniquely matching source records onto the collection.
func (p *Pipe) Merge(source []*value.Record, targetKey, sourceKey value.Key) *Pipe {
	return p.joinWith("merge", func() ([]*value.Record, error) {
		return join.Merge(p.records, source, targetKey, sourceKey)
	})
}

// Pivot reshapes the collection; see pivot.Pivot.
func (p *Pipe) Pivot(rowFields []string, columnField, dataField string, opts ...pivot.Option) *Pipe {
	return p.joinWith("pivot", func() ([]*value.Record, error) {
		return pivot.Pivot(p.records, rowFields, columnField, dataField, opts...)
	})
}

// Transpose swaps records and fields.
func (p *Pipe) Transpose() *Pipe {
	if p.err != nil {
		return p
	}
	p.records = pivot.Transpose(p.records)
	return p
}

// Unique drops records whose named fields equal an earlier record's.
// With no fields the whole record, field order included, is compared.
func (p *Pipe) Unique(fields ...string) *Pipe {
	if p.err != nil {
		return p
	}
	groups := group.By(p.records, func(r *value.Record) value.Value {
		var buf []byte
		names := fields
		if len(names) == 0 {
			names = r.Fields()
			for _, n := range names {
				buf, _ = value.AppendCanonical(buf, value.String(n))
			}
			buf = append(buf, 0)
		}
		for _, n := range names {
			buf, _ = value.AppendCanonical(buf, r.Get(n))
		}
		return value.String(string(buf))
	})
	out := make([]*value.Record, len(groups))
	for i, g := range groups {
		out[i] = g.Items[0]
	}
	p.records = out
	return p
}

// Project keeps only the named fields of every record, in that order.
func (p *Pipe) Project(fields ...string) *Pipe {
	if p.err != nil {
		return p
	}
	if len(fields) == 0 {
		p.fail("project", value.ErrEmptyKey)
		return p
	}
	out := make([]*value.Record, len(p.records))
	for i, r := range p.records {
		out[i] = r.Project(fields...)
	}
	p.records = out
	return p
}

// Err returns the first error recorded by a step.
func (p *Pipe) Err() error { return p.err }

// Records returns the collection and the sticky error.
func (p *Pipe) Records() ([]*value.Record, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.records, nil
}

// Len is the current collection size.
func (p *Pipe) Len() int { return len(p.records) }

// Values projects the collection through sel.
func (p *Pipe) Values(sel value.Selector) ([]value.Value, error) {
	if p.err != nil {
		return nil, p.err
	}
	return value.Pluck(p.records, sel), nil
}

// Distinct returns sel's values with repeats removed, first occurrences
// in order.
func (p *Pipe) Distinct(sel value.Selector) ([]value.Value, error) {
	vals, err := p.Values(sel)
	if err != nil {
		return nil, err
	}
	return group.Unique(vals), nil
}

func (p *Pipe) reduce(sel value.Selector, agg stats.Aggregator) (value.Value, error) {
	vals, err := p.Values(sel)
	if err != nil {
		return value.Null(), err
	}
	return agg(vals)
}

// Aggregate applies a named aggregator, e.g. "median", to sel's values.
func (p *Pipe) Aggregate(name string, sel value.Selector) (value.Value, error) {
	agg, err := stats.Lookup(name)
	if err != nil {
		return value.Null(), err
	}
	return p.reduce(sel, agg)
}

func (p *Pipe) Sum(sel value.Selector) (value.Value, error) { return p.Aggregate("sum", sel) }
func (p *Pipe) Avg(sel value.Selector) (value.Value, error) { return p.Aggregate("avg", sel) }
func (p *Pipe) Min(sel value.Selector) (value.Value, error) { return p.Aggregate("min", sel) }
func (p *Pipe) Max(sel value.Selector) (value.Value, error) { return p.Aggregate("max", sel) }

func (p *Pipe) Mean(sel value.Selector) (value.Value, error)     { return p.reduce(sel, stats.Mean) }
func (p *Pipe) Median(sel value.Selector) (value.Value, error)   { return p.reduce(sel, stats.Median) }
func (p *Pipe) Variance(sel value.Selector) (value.Value, error) { return p.reduce(sel, stats.Variance) }
func (p *Pipe) Stdev(sel value.Selector) (value.Value, error)    { return p.reduce(sel, stats.Stdev) }

// Quantile is the q-quantile of sel's values. The values are sorted
// ascending first; the collection itself keeps its order.
func (p *Pipe) Quantile(sel value.Selector, q float64) (value.Value, error) {
	return p.reduce(sel, func(vs []value.Value) (value.Value, error) {
		sort.SliceStable(vs, func(i, j int) bool { return value.Compare(vs[i], vs[j]) < 0 })
		return stats.Quantile(vs, q)
	})
}

// Count counts records matching pred; a nil pred counts all records.
func (p *Pipe) Count(pred func(*value.Record) bool) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	if pred == nil {
		return len(p.records), nil
	}
	n, _ := stats.Count(p.records, pred)
	return n, nil
}

// First returns the first record matching pred.
func (p *Pipe) First(pred func(*value.Record) bool) (*value.Record, bool) {
	if p.err != nil {
		return nil, false
	}
	return stats.First(p.records, pred)
}

// Last returns the last record matching pred.
func (p *Pipe) Last(pred func(*value.Record) bool) (*value.Record, bool) {
	if p.err != nil {
		return nil, false
	}
	return stats.Last(p.records, pred)
}

// GroupBy partitions the collection by sel.
func (p *Pipe) GroupBy(sel value.Selector) ([]group.Group[*value.Record], error) {
	if p.err != nil {
		return nil, p.err
	}
	return group.Records(p.records, sel), nil
}

// CountBy counts records per stringified sel value.
func (p *Pipe) CountBy(sel value.Selector) (*value.Record, error) {
	if p.err != nil {
		return nil, p.err
	}
	return group.CountBy(p.records, sel.Select), nil
}

// Table converts the collection to columnar form.
func (p *Pipe) Table() (dataio.Table, error) {
	if p.err != nil {
		return dataio.Table{}, p.err
	}
	return dataio.ToTable(p.records), nil
}

// FieldDescriptions describes every field of the collection.
func (p *Pipe) FieldDescriptions() ([]dataio.FieldDescription, error) {
	if p.err != nil {
		return nil, p.err
	}
	return dataio.FieldDescriptions(p.records), nil
}
