package stats

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/datapipe-cli/internal/value"
)

// ErrUnknownAggregator is returned by Lookup for an unregistered name.
var ErrUnknownAggregator = errors.New("unknown aggregator")

// Aggregator reduces a value sequence to one value. Pivot uses it for
// cell aggregation.
type Aggregator func([]value.Value) (value.Value, error)

func infallible(fn func([]value.Value) value.Value) Aggregator {
	return func(vs []value.Value) (value.Value, error) { return fn(vs), nil }
}

var aggregators = map[string]Aggregator{
	"sum":      infallible(Sum),
	"avg":      infallible(Avg),
	"average":  infallible(Avg),
	"min":      infallible(Min),
	"max":      infallible(Max),
	"mean":     Mean,
	"median":   Median,
	"variance": Variance,
	"stdev":    Stdev,
	"count": func(vs []value.Value) (value.Value, error) {
		return value.Int(len(vs)), nil
	},
}

// SumAggregator is the default pivot aggregator.
var SumAggregator Aggregator = infallible(Sum)

// Lookup resolves an aggregator by case-insensitive name.
func Lookup(name string) (Aggregator, error) {
	agg, ok := aggregators[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (use %s)", ErrUnknownAggregator, name, strings.Join(Names(), "|"))
	}
	return agg, nil
}

// Names lists the registered aggregator names, sorted.
func Names() []string {
	out := make([]string, 0, len(aggregators))
	for k := range aggregators {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
