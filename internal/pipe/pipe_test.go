package pipe

import (
	"testing"

	"github.com/KaramelBytes/datapipe-cli/internal/sorting"
	"github.com/KaramelBytes/datapipe-cli/internal/value"
	"github.com/stretchr/testify/require"
)

func people() []*value.Record {
	return []*value.Record{
		value.Pairs("name", "John", "country", "US", "age", 30),
		value.Pairs("name", "Joe", "country", "US", "age", 25),
		value.Pairs("name", "Bill", "country", "US", "age", 41),
		value.Pairs("name", "Adam", "country", "UK", "age", 33),
		value.Pairs("name", "Scott", "country", "UK", "age", 28),
		value.Pairs("name", "Diana", "country", "UK", "age", 36),
		value.Pairs("name", "Marry", "country", "FR", "age", 22),
		value.Pairs("name", "Luc", "country", "FR", "age", 45),
	}
}

func countries() []*value.Record {
	return []*value.Record{
		value.Pairs("code", "US", "capital", "Washington"),
		value.Pairs("code", "UK", "capital", "London"),
	}
}

func TestChain(t *testing.T) {
	src := people()
	p := From(src).
		Where(func(r *value.Record) bool { n, _ := r.Get("age").Num(); return n >= 28 }).
		LeftJoin(countries(), value.KeyField("country"), value.KeyField("code"), nil).
		Select("senior", value.Func(func(r *value.Record) value.Value {
			n, _ := r.Get("age").Num()
			return value.Bool(n >= 40)
		})).
		Sort("country", "age DESC")

	recs, err := p.Records()
	require.NoError(t, err)
	require.Len(t, recs, 6)
	require.Equal(t, "Luc", recs[0].Get("name").String())
	require.Equal(t, "Diana", recs[1].Get("name").String())
	require.Equal(t, "London", recs[1].Get("capital").String())
	require.Equal(t, value.Bool(true), recs[0].Get("senior"))

	require.Equal(t, "John", src[0].Get("name").String(), "source order must not change")
	require.False(t, src[0].Has("senior"))
}

func TestStickyError(t *testing.T) {
	calls := 0
	p := From(people()).
		Sort("age sideways").
		Map(func(r *value.Record) *value.Record { calls++; return r })
	require.Error(t, p.Err())
	require.Zero(t, calls)

	_, err := p.Records()
	require.ErrorIs(t, err, sorting.ErrInvalidSpec)
	_, err = p.Sum(value.Field("age"))
	require.ErrorIs(t, err, sorting.ErrInvalidSpec)
	_, ok := p.First(nil)
	require.False(t, ok)
}

func TestAggregates(t *testing.T) {
	p := From(people())
	sum, err := p.Sum(value.Field("age"))
	require.NoError(t, err)
	require.Equal(t, value.Int(260), sum)

	avg, err := p.Avg(value.Field("age"))
	require.NoError(t, err)
	require.Equal(t, value.Number(32.5), avg)

	med, err := p.Median(value.Field("age"))
	require.NoError(t, err)
	require.Equal(t, value.Number(31.5), med)

	q, err := p.Quantile(value.Field("age"), 0)
	require.NoError(t, err)
	require.Equal(t, value.Int(22), q)
	q, err = p.Quantile(value.Field("age"), 1)
	require.NoError(t, err)
	require.Equal(t, value.Int(45), q)

	unsorted := From([]*value.Record{
		value.Pairs("v", 4), value.Pairs("v", 0), value.Pairs("v", nil),
		value.Pairs("v", 3), value.Pairs("v", 1), value.Pairs("v", 2),
	})
	q, err = unsorted.Quantile(value.Field("v"), 0.5)
	require.NoError(t, err)
	require.Equal(t, value.Int(2), q)
	q, err = unsorted.Quantile(value.Field("v"), 0.375)
	require.NoError(t, err)
	require.Equal(t, value.Number(1.5), q)
	recs, err := unsorted.Records()
	require.NoError(t, err)
	require.Equal(t, "4", recs[0].Get("v").String())

	_, err = p.Mean(value.Field("name"))
	require.Error(t, err)

	_, err = p.Aggregate("mode", value.Field("age"))
	require.Error(t, err)

	n, err := p.Count(func(r *value.Record) bool { return r.Get("country").String() == "UK" })
	require.NoError(t, err)
	require.Equal(t, 3, n)

	last, ok := p.Last(func(r *value.Record) bool { return r.Get("country").String() == "US" })
	require.True(t, ok)
	require.Equal(t, "Bill", last.Get("name").String())
}

func TestGroupingAndReshape(t *testing.T) {
	counts, err := From(people()).CountBy(value.Field("country"))
	require.NoError(t, err)
	require.Equal(t, []string{"US", "UK", "FR"}, counts.Fields())

	groups, err := From(people()).GroupBy(value.Field("country"))
	require.NoError(t, err)
	require.Len(t, groups, 3)

	pv, err := From(people()).Pivot(nil, "country", "age").Records()
	require.NoError(t, err)
	require.Len(t, pv, 1)
	require.Equal(t, value.Int(96), pv[0].Get("US"))

	tr := From(people()[:2]).Transpose()
	recs, err := tr.Records()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	require.Equal(t, "Joe", recs[0].Get("1").String())
}

func TestUnique(t *testing.T) {
	recs, err := From(people()).Unique("country").Records()
	require.NoError(t, err)
	require.Len(t, recs, 3)

	dup := []*value.Record{
		value.Pairs("a", 1, "b", 2),
		value.Pairs("a", 1, "b", 2),
		value.Pairs("b", 2, "a", 1),
	}
	recs, err = From(dup).Unique().Records()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Same(t, dup[0], recs[0])
}

func TestDistinctAndProject(t *testing.T) {
	vals, err := From(people()).Distinct(value.Field("country"))
	require.NoError(t, err)
	require.Equal(t, value.Values("US", "UK", "FR"), vals)

	mixed := []*value.Record{value.Pairs("v", 1), value.Pairs("v", "1"), value.Pairs("v", 1)}
	vals, err = From(mixed).Distinct(value.Field("v"))
	require.NoError(t, err)
	require.Len(t, vals, 2)

	recs, err := From(people()).Project("age", "name", "missing").Records()
	require.NoError(t, err)
	require.Len(t, recs, 8)
	require.Equal(t, []string{"age", "name"}, recs[0].Fields())

	_, err = From(people()).Project().Records()
	require.ErrorIs(t, err, value.ErrEmptyKey)
}

func TestMergeAndTable(t *testing.T) {
	src := []*value.Record{value.Pairs("name", "John", "age", 31)}
	p := From(people()[:2]).Merge(src, value.KeyField("name"), value.KeyField("name"))
	tbl, err := p.Table()
	require.NoError(t, err)
	require.Equal(t, []string{"name", "country", "age"}, tbl.FieldNames)
	require.Equal(t, float64(31), tbl.Rows[0][2])

	back, err := FromTable(tbl).Records()
	require.NoError(t, err)
	require.Len(t, back, 2)

	d, err := p.FieldDescriptions()
	require.NoError(t, err)
	require.Equal(t, "number", d[2].DataType)
}
