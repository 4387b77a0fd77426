package stats

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/KaramelBytes/datapipe-cli/internal/value"
	"github.com/stretchr/testify/require"
)

var (
	numberSeq = value.Values(2, 6, 3, 7, 11, 7, -1)
	mixedSeq  = value.Values("5", 2, "33", false, true, true, true)
)

var people = []*value.Record{
	value.Pairs("name", "John", "country", "US"),
	value.Pairs("name", "Joe", "country", "US"),
	value.Pairs("name", "Bill", "country", "US"),
	value.Pairs("name", "Adam", "country", "UK"),
	value.Pairs("name", "Scott", "country", "UK"),
	value.Pairs("name", "Diana", "country", "UK"),
	value.Pairs("name", "Marry", "country", "FR"),
	value.Pairs("name", "Luc", "country", "FR"),
}

func num(t *testing.T, v value.Value) float64 {
	t.Helper()
	n, ok := v.Num()
	require.True(t, ok, "expected number, got %s", v.Kind())
	return n
}

// must unwraps an aggregate result, failing the test on error:
// must(t)(Median(xs)).
func must(t *testing.T) func(value.Value, error) value.Value {
	return func(v value.Value, err error) value.Value {
		t.Helper()
		require.NoError(t, err)
		return v
	}
}

func TestSumAndAvg(t *testing.T) {
	require.Equal(t, 35.0, num(t, Sum(numberSeq)))
	require.Equal(t, 5.0, num(t, Avg(numberSeq)))

	require.Equal(t, 43.0, num(t, Sum(mixedSeq)))
	require.Equal(t, 6.14, math.Round(num(t, Avg(mixedSeq))*100)/100)

	objs := make([]*value.Record, len(numberSeq))
	for i, v := range numberSeq {
		objs[i] = value.NewRecord().Set("value", v)
	}
	require.Equal(t, 35.0, num(t, Sum(value.Pluck(objs, value.Field("value")))))

	require.Equal(t, value.KindNull, Sum(nil).Kind())
	require.Equal(t, value.KindNull, Avg([]value.Value{}).Kind())
}

func TestInclusiveRegimeCountsUncoercible(t *testing.T) {
	vs := value.Values("abc", 4, nil)
	vs = append(vs, value.Undefined())
	require.Equal(t, 4.0, num(t, Sum(vs)))
	require.Equal(t, 1.0, num(t, Avg(vs)))
}

func TestSumIsExactForDecimalStrings(t *testing.T) {
	require.Equal(t, 0.3, num(t, Sum(value.Values("0.1", "0.2"))))
	require.True(t, math.IsNaN(num(t, Sum(value.Values(1, math.NaN(), 2)))))
	require.True(t, math.IsInf(num(t, Sum(value.Values(1, "Infinity"))), 1))
}

func TestMinMax(t *testing.T) {
	require.Equal(t, -1.0, num(t, Min(numberSeq)))
	require.Equal(t, 11.0, num(t, Max(numberSeq)))
	require.Equal(t, 0.0, num(t, Min(mixedSeq)))
	require.Equal(t, 33.0, num(t, Max(mixedSeq)))

	dates := []value.Value{
		value.Date(time.Date(2012, 10, 1, 0, 0, 0, 0, time.UTC)),
		value.Date(time.Date(2010, 10, 1, 0, 0, 0, 0, time.UTC)),
		value.Date(time.Date(2009, 10, 1, 0, 0, 0, 0, time.UTC)),
		value.Date(time.Date(2011, 10, 1, 0, 0, 0, 0, time.UTC)),
	}
	lo, ok := Min(dates).Time()
	require.True(t, ok, "min of dates must be a date")
	require.Equal(t, 2009, lo.Year())
	hi, ok := Max(dates).Time()
	require.True(t, ok, "max of dates must be a date")
	require.Equal(t, 2012, hi.Year())

	require.Equal(t, value.KindNull, Min(nil).Kind())
	require.Equal(t, value.KindNull, Max(value.Values(nil)).Kind())
}

func TestCountFirstLast(t *testing.T) {
	n, ok := Count(numberSeq, nil)
	require.True(t, ok)
	require.Equal(t, 7, n)

	n, _ = Count(people, func(r *value.Record) bool { return r.Get("country").String() == "US" })
	require.Equal(t, 3, n)

	_, ok = Count[value.Value](nil, nil)
	require.False(t, ok)

	first, ok := First(numberSeq, nil)
	require.True(t, ok)
	require.Equal(t, 2.0, num(t, first))

	first, ok = First(numberSeq, func(v value.Value) bool { n, _ := v.Num(); return n > 6 })
	require.True(t, ok)
	require.Equal(t, 7.0, num(t, first))

	last, ok := Last(people, func(r *value.Record) bool { return r.Get("country").String() == "UK" })
	require.True(t, ok)
	require.Equal(t, "Diana", last.Get("name").String())

	_, ok = Last(people, func(r *value.Record) bool { return r.Get("country").String() == "DE" })
	require.False(t, ok)
	_, ok = First([]int{}, nil)
	require.False(t, ok)
}

func TestQuantile(t *testing.T) {
	sorted := value.Values(0, 1, 2, 3, 4)
	cases := []struct{ p, want float64 }{
		{0, 0}, {0.25, 1}, {0.375, 1.5}, {0.5, 2}, {0.625, 2.5}, {0.75, 3}, {0.8, 3.2}, {1, 4},
	}
	for _, c := range cases {
		require.InDelta(t, c.want, num(t, must(t)(Quantile(sorted, c.p))), 1e-12, "p=%v", c.p)
	}

	even := value.Values(3, 6, 7, 8, 8, 10, 13, 15, 16, 20)
	require.Equal(t, 7.25, num(t, must(t)(Quantile(even, 0.25))))
	require.Equal(t, 9.0, num(t, must(t)(Quantile(even, 0.5))))
	require.Equal(t, 14.5, num(t, must(t)(Quantile(even, 0.75))))

	odd := value.Values(3, 6, 7, 8, 8, 9, 10, 13, 15, 16, 20)
	require.Equal(t, 7.5, num(t, must(t)(Quantile(odd, 0.25))))
	require.Equal(t, 14.0, num(t, must(t)(Quantile(odd, 0.75))))
	require.Equal(t, 5.0, num(t, must(t)(Quantile(value.Values(3, 5, 10), 0.5))))

	// clamped
	require.Equal(t, 0.0, num(t, must(t)(Quantile(sorted, -2))))
	require.Equal(t, 4.0, num(t, must(t)(Quantile(sorted, 7))))
	require.Equal(t, value.KindNull, must(t)(Quantile(nil, 0.5)).Kind())
}

func TestQuantileMonotone(t *testing.T) {
	sorted := value.Values(1, 2, 2, 5, 9, 14)
	prev := math.Inf(-1)
	for i := 0; i <= 100; i++ {
		q := num(t, must(t)(Quantile(sorted, float64(i)/100)))
		require.GreaterOrEqual(t, q, prev)
		prev = q
	}
}

func TestMean(t *testing.T) {
	require.Equal(t, 1.0, num(t, must(t)(Mean(value.Values(1)))))
	require.Equal(t, 3.0, num(t, must(t)(Mean(value.Values(5, 1, 2, 3, 4)))))
	require.Equal(t, 11.5, num(t, must(t)(Mean(value.Values(19, 4)))))
	require.Equal(t, 3.0, num(t, must(t)(Mean(value.Values(math.NaN(), 1, 2, 3, 4, 5)))))

	withGaps := value.Values(9, nil, 4)
	withGaps = append(withGaps, value.Undefined(), value.Int(5), value.NaN())
	require.Equal(t, 6.0, num(t, must(t)(Mean(withGaps))))

	require.Equal(t, value.KindNull, must(t)(Mean(value.Values(nil, math.NaN()))).Kind())
}

func TestExclusionRegimeRejectsNonNumeric(t *testing.T) {
	_, err := Mean(value.Values(1, "2"))
	var nn *NotNumericError
	require.True(t, errors.As(err, &nn))
	require.Equal(t, 1, nn.Index)
	require.Equal(t, value.KindString, nn.Kind)

	_, err = Median(value.Values(true))
	require.Error(t, err)
}

func TestVarianceAndStdev(t *testing.T) {
	require.Equal(t, 2.5, num(t, must(t)(Variance(value.Values(5, 1, 2, 3, 4)))))
	require.Equal(t, 144.5, num(t, must(t)(Variance(value.Values(20, 3)))))
	require.Equal(t, 144.5, num(t, must(t)(Variance(value.Values(3, 20)))))
	require.Equal(t, 2.5, num(t, must(t)(Variance(value.Values(1, 2, 3, 4, 5, math.NaN())))))

	gaps := value.Values(10, nil, 3)
	gaps = append(gaps, value.Undefined(), value.Int(5), value.NaN())
	require.Equal(t, 13.0, num(t, must(t)(Variance(gaps))))
	require.Equal(t, math.Sqrt(13), num(t, must(t)(Stdev(gaps))))

	require.Equal(t, math.Sqrt(2.5), num(t, must(t)(Stdev(value.Values(5, 1, 2, 3, 4)))))
	require.Equal(t, math.Sqrt(144.5), num(t, must(t)(Stdev(value.Values(20, 3)))))

	require.Equal(t, value.KindNull, must(t)(Variance(value.Values(4))).Kind())
	require.Equal(t, value.KindNull, must(t)(Stdev(nil)).Kind())
}

func TestVarianceReorderInvariant(t *testing.T) {
	xs := value.Values(2.5, 7, -3, 11, 0.25, 4)
	rev := make([]value.Value, len(xs))
	for i := range xs {
		rev[len(xs)-1-i] = xs[i]
	}
	a := num(t, must(t)(Variance(xs)))
	b := num(t, must(t)(Variance(rev)))
	require.InDelta(t, a, b, 1e-12)
}

func TestMedian(t *testing.T) {
	require.Equal(t, 1.0, num(t, must(t)(Median(value.Values(1)))))
	require.Equal(t, 2.5, num(t, must(t)(Median(value.Values(5, 1, 2, 3)))))
	require.Equal(t, 3.0, num(t, must(t)(Median(value.Values(5, 1, 2, 3, 4)))))
	require.Equal(t, 11.5, num(t, must(t)(Median(value.Values(20, 3)))))
	require.Equal(t, 5.0, num(t, must(t)(Median(value.Values(10, 3, 5)))))

	gaps := value.Values(nil, 3)
	gaps = append(gaps, value.Undefined(), value.Int(5), value.NaN(), value.Int(10))
	require.Equal(t, 5.0, num(t, must(t)(Median(gaps))))
}

func TestLookup(t *testing.T) {
	agg, err := Lookup("AVG")
	require.NoError(t, err)
	v, err := agg(value.Values(12, 22))
	require.NoError(t, err)
	require.Equal(t, 17.0, num(t, v))

	_, err = Lookup("mode")
	require.ErrorIs(t, err, ErrUnknownAggregator)
	require.Contains(t, Names(), "median")
}
