// Package stats computes scalar aggregates over value sequences.
//
// Two coercion regimes coexist on purpose and must not be unified:
//
//   - Sum and Avg include every element, coercing booleans, numeric strings,
//     nulls and dates to numbers; anything that does not coerce counts as 0.
//   - Mean, Median, Variance, Stdev and Quantile first drop Null, Undefined
//     and NaN entries and then require every remaining value to be a number.
//
// "No result" is reported as a Null value, never as an error.
package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/datapipe-cli/internal/value"
	"github.com/shopspring/decimal"
)

// NotNumericError reports a non-numeric value reaching an exclusion-regime
// statistic.
type NotNumericError struct {
	Index int
	Kind  value.Kind
}

func (e *NotNumericError) Error() string {
	return fmt.Sprintf("value at index %d is %s, want number", e.Index, e.Kind)
}

// coerce maps a value to a number for the inclusive regime.
func coerce(v value.Value) float64 {
	n, ok := value.ToNumber(v)
	if !ok {
		return 0
	}
	return n
}

// sum adds coerced values exactly in decimal while every term is finite and
// falls back to float64 once a NaN or infinity shows up.
func sum(values []value.Value) float64 {
	acc := decimal.Zero
	exact := true
	var f float64
	for _, v := range values {
		n := coerce(v)
		if exact {
			if math.IsNaN(n) || math.IsInf(n, 0) {
				exact = false
				f = acc.InexactFloat64() + n
				continue
			}
			acc = acc.Add(decimal.NewFromFloat(n))
			continue
		}
		f += n
	}
	if exact {
		return acc.InexactFloat64()
	}
	return f
}

// Sum adds every value after coercion. Empty input yields Null.
func Sum(values []value.Value) value.Value {
	if len(values) == 0 {
		return value.Null()
	}
	return value.Number(sum(values))
}

// Avg divides Sum by the total element count, including elements that
// coerced to 0. Empty input yields Null.
func Avg(values []value.Value) value.Value {
	if len(values) == 0 {
		return value.Null()
	}
	return value.Number(sum(values) / float64(len(values)))
}

// Average is an alias of Avg.
var Average = Avg

// Min returns the smallest value. See extreme for the typing rules.
func Min(values []value.Value) value.Value { return extreme(values, -1) }

// Max returns the largest value.
func Max(values []value.Value) value.Value { return extreme(values, 1) }

// extreme skips missing values. When every remaining value is a Date the
// result is a Date; otherwise values are coerced like Sum and the result
// is a Number (NaN if any term is NaN).
func extreme(values []value.Value, sign int) value.Value {
	n := 0
	allDates := true
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		n++
		if v.Kind() != value.KindDate {
			allDates = false
		}
	}
	if n == 0 {
		return value.Null()
	}
	if allDates {
		var best value.Value
		found := false
		for _, v := range values {
			if v.IsMissing() {
				continue
			}
			if !found || value.Compare(v, best)*sign > 0 {
				best = v
				found = true
			}
		}
		return best
	}
	best := 0.0
	found := false
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		x := coerce(v)
		if math.IsNaN(x) {
			return value.NaN()
		}
		if !found || (sign > 0 && x > best) || (sign < 0 && x < best) {
			best = x
			found = true
		}
	}
	return value.Number(best)
}

// numbers applies the exclusion regime: missing and NaN values are
// dropped, anything else that is not a Number is an error.
func numbers(values []value.Value) ([]float64, error) {
	out := make([]float64, 0, len(values))
	for i, v := range values {
		if v.IsMissing() || v.IsNaN() {
			continue
		}
		n, ok := v.Num()
		if !ok {
			return nil, &NotNumericError{Index: i, Kind: v.Kind()}
		}
		out = append(out, n)
	}
	return out, nil
}

func meanOf(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

// Mean is the arithmetic mean of the numeric values.
func Mean(values []value.Value) (value.Value, error) {
	xs, err := numbers(values)
	if err != nil {
		return value.Null(), err
	}
	if len(xs) == 0 {
		return value.Null(), nil
	}
	return value.Number(meanOf(xs)), nil
}

// Median is the middle of the sorted numeric values, or the mean of the
// two middle values for an even count.
func Median(values []value.Value) (value.Value, error) {
	xs, err := numbers(values)
	if err != nil {
		return value.Null(), err
	}
	n := len(xs)
	if n == 0 {
		return value.Null(), nil
	}
	sort.Float64s(xs)
	if n%2 == 1 {
		return value.Number(xs[n/2]), nil
	}
	return value.Number((xs[n/2-1] + xs[n/2]) / 2), nil
}

// Variance is the sample variance (divisor n-1). Fewer than two numeric
// values yield Null.
func Variance(values []value.Value) (value.Value, error) {
	xs, err := numbers(values)
	if err != nil {
		return value.Null(), err
	}
	v, ok := variance(xs)
	if !ok {
		return value.Null(), nil
	}
	return value.Number(v), nil
}

func variance(xs []float64) (float64, bool) {
	if len(xs) < 2 {
		return 0, false
	}
	m := meanOf(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return ss / float64(len(xs)-1), true
}

// Stdev is the square root of Variance.
func Stdev(values []value.Value) (value.Value, error) {
	xs, err := numbers(values)
	if err != nil {
		return value.Null(), err
	}
	v, ok := variance(xs)
	if !ok {
		return value.Null(), nil
	}
	return value.Number(math.Sqrt(v)), nil
}

// Quantile interpolates linearly between the order statistics of values,
// which must already be sorted ascending. p is clamped to [0, 1].
func Quantile(values []value.Value, p float64) (value.Value, error) {
	xs, err := numbers(values)
	if err != nil {
		return value.Null(), err
	}
	if len(xs) == 0 || math.IsNaN(p) {
		return value.Null(), nil
	}
	return value.Number(quantile(xs, p)), nil
}

func quantile(sorted []float64, p float64) float64 {
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	r := p * float64(len(sorted)-1)
	lo := int(math.Floor(r))
	hi := int(math.Ceil(r))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (r-float64(lo))*(sorted[hi]-sorted[lo])
}
