package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/datapipe-cli/internal/dataio"
	"github.com/KaramelBytes/datapipe-cli/internal/flatten"
	"github.com/KaramelBytes/datapipe-cli/internal/pipe"
	"github.com/KaramelBytes/datapipe-cli/internal/stats"
	"github.com/KaramelBytes/datapipe-cli/internal/value"
	"github.com/spf13/cobra"
)

var (
	statsP      float64
	countWhere  []string
	uniqueBy    []string
	uniqueField string
)

var statsCmd = &cobra.Command{
	Use:   "stats <file> <aggregate> [field]",
	Short: "Aggregate one field: sum, avg, min, max, mean, median, variance, stdev, quantile, count",
	Long: `Aggregate the values of one field across all records.

sum, avg, min and max coerce every value to a number (strings are parsed,
null counts as 0). mean, median, variance, stdev and quantile skip null and
NaN values and fail on non-numeric ones. quantile sorts the values before
interpolating, so input order does not matter.

Without a field, count counts records, and a JSON or YAML document that is a
nested list of plain values is flattened and aggregated as is.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.ToLower(args[1])
		field := ""
		if len(args) == 3 {
			field = args[2]
		}
		if name != "quantile" {
			if _, err := stats.Lookup(name); err != nil {
				return err
			}
		}
		var (
			recs      []*value.Record
			isRecords = true
			err       error
		)
		if field == "" {
			recs, isRecords, err = loadLeaves(args[0])
		} else {
			recs, err = loadRecords(commandContext(cmd), args[0])
		}
		if err != nil {
			return err
		}
		if field == "" && isRecords && name != "count" {
			return fmt.Errorf("%s needs a field", name)
		}
		if field == "" {
			field = leafField
		}
		p := pipe.From(recs)
		var v value.Value
		switch {
		case name == "count" && isRecords && len(args) == 2:
			v = value.Int(p.Len())
		case name == "quantile":
			v, err = p.Quantile(value.Field(field), statsP)
		default:
			v, err = p.Aggregate(name, value.Field(field))
		}
		if err != nil {
			return fmt.Errorf("%s of %q: %w", name, field, err)
		}
		return emitValue(cmd, v)
	},
}

var countCmd = &cobra.Command{
	Use:   "count <file>",
	Short: "Count records, optionally only those matching --where field=value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clauses, err := parseWhere(countWhere)
		if err != nil {
			return err
		}
		recs, err := loadRecords(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		n, err := pipe.From(recs).Count(matchAll(clauses))
		if err != nil {
			return err
		}
		return emitValue(cmd, value.Int(n))
	},
}

var uniqueCmd = &cobra.Command{
	Use:   "unique <file>",
	Short: "Drop duplicate records, comparing --by fields or whole records",
	Long: `Drop duplicate records, keeping first occurrences. --by compares only the
listed fields. --field instead lists the distinct values of one field.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := loadRecords(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		if uniqueField != "" {
			vals, err := pipe.From(recs).Distinct(value.Field(uniqueField))
			if err != nil {
				return err
			}
			items := make([]any, len(vals))
			for i, v := range vals {
				items[i] = v
			}
			return emit(cmd, func(w io.Writer, f dataio.Format) error { return dataio.WriteAny(w, items, f) })
		}
		out, err := pipe.From(recs).Unique(splitFields(uniqueBy)...).Records()
		if err != nil {
			return err
		}
		return emitRecords(cmd, out)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(uniqueCmd)
	statsCmd.Flags().Float64Var(&statsP, "p", 0.5, "quantile probability in [0,1]")
	countCmd.Flags().StringArrayVar(&countWhere, "where", nil, "field=value filter (repeatable, all must match)")
	uniqueCmd.Flags().StringSliceVar(&uniqueBy, "by", nil, "fields that identify a duplicate (default: all fields)")
	uniqueCmd.Flags().StringVar(&uniqueField, "field", "", "list the distinct values of this field instead of records")
}

// leafField holds each value when a flat document is aggregated.
const leafField = "value"

// loadLeaves reads a document and flattens it into one record per leaf.
// When the document holds records, those are returned and isRecords is set.
func loadLeaves(path string) (recs []*value.Record, isRecords bool, err error) {
	doc, err := dataio.ReadAnyFile(path, settings().ParsingOptions())
	if err != nil {
		return nil, false, err
	}
	items, ok := doc.([]any)
	if !ok {
		items = []any{doc}
	}
	for _, it := range flatten.Flatten(items) {
		if r, ok := it.(*value.Record); ok {
			recs = append(recs, r)
		}
	}
	if len(recs) > 0 {
		return recs, true, nil
	}
	vals := flatten.Values(items)
	recs = make([]*value.Record, len(vals))
	for i, v := range vals {
		recs[i] = value.NewRecord().Set(leafField, v)
	}
	return recs, false, nil
}
