package cmd

import (
	"io"

	"github.com/KaramelBytes/datapipe-cli/internal/dataio"
	"github.com/KaramelBytes/datapipe-cli/internal/flatten"
	"github.com/KaramelBytes/datapipe-cli/internal/pipe"
	"github.com/KaramelBytes/datapipe-cli/internal/pivot"
	"github.com/KaramelBytes/datapipe-cli/internal/stats"
	"github.com/KaramelBytes/datapipe-cli/internal/value"
	"github.com/spf13/cobra"
)

var (
	pivotRows    []string
	pivotColumn  string
	pivotData    string
	pivotAgg     string
	pivotColumns []string
)

var pivotCmd = &cobra.Command{
	Use:   "pivot <file>",
	Short: "Turn distinct values of --column into columns aggregating --data",
	Long: `Group records by the --rows fields and emit one row per group with one
column per distinct --column value. Each cell aggregates --data over the
group's records with that column value; cells without records are null.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := pivotAgg
		if name == "" {
			name = settings().DefaultAggregator
		}
		agg, err := stats.Lookup(name)
		if err != nil {
			return err
		}
		opts := []pivot.Option{pivot.WithAggregator(agg)}
		if cols := splitFields(pivotColumns); len(cols) > 0 {
			opts = append(opts, pivot.WithColumns(cols...))
		}
		recs, err := loadRecords(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		out, err := pipe.From(recs).Pivot(splitFields(pivotRows), pivotColumn, pivotData, opts...).Records()
		if err != nil {
			return err
		}
		return emitRecords(cmd, out)
	},
}

var transposeCmd = &cobra.Command{
	Use:   "transpose <file>",
	Short: "Swap records and fields: one output row per field name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := loadRecords(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		out, err := pipe.From(recs).Transpose().Records()
		if err != nil {
			return err
		}
		return emitRecords(cmd, out)
	},
}

var flattenCmd = &cobra.Command{
	Use:   "flatten <file>",
	Short: "Flatten nested JSON/YAML arrays into one list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := dataio.ReadAnyFile(args[0], settings().ParsingOptions())
		if err != nil {
			return err
		}
		items, ok := doc.([]any)
		if !ok {
			items = []any{doc}
		}
		flat := flatten.Flatten(items)
		return emit(cmd, func(w io.Writer, f dataio.Format) error { return dataio.WriteAny(w, flat, f) })
	},
}

var projectCmd = &cobra.Command{
	Use:   "project <file> <field>...",
	Short: "Keep only the named fields of every record, in the given order",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := loadRecords(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		out, err := pipe.From(recs).Project(splitFields(args[1:])...).Records()
		if err != nil {
			return err
		}
		return emitRecords(cmd, out)
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Describe every field: inferred type, nulls, distinct values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := loadRecords(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		descs, err := pipe.From(recs).FieldDescriptions()
		if err != nil {
			return err
		}
		return emit(cmd, func(w io.Writer, f dataio.Format) error {
			if f == dataio.FormatMarkdown {
				_, err := io.WriteString(w, dataio.DescribeMarkdown(args[0], len(recs), descs))
				return err
			}
			return dataio.WriteRecords(w, describeRecords(descs), f)
		})
	},
}

func describeRecords(descs []dataio.FieldDescription) []*value.Record {
	out := make([]*value.Record, len(descs))
	for i, d := range descs {
		out[i] = value.NewRecord().
			Set("index", value.Int(d.Index)).
			Set("fieldName", value.String(d.FieldName)).
			Set("dataType", value.String(d.DataType)).
			Set("isNullable", value.Bool(d.IsNullable)).
			Set("nonNull", value.Int(d.NonNull)).
			Set("missing", value.Int(d.Missing)).
			Set("unique", value.Int(d.Unique)).
			Set("maxSize", value.Int(d.MaxSize))
	}
	return out
}

func init() {
	rootCmd.AddCommand(pivotCmd)
	rootCmd.AddCommand(transposeCmd)
	rootCmd.AddCommand(flattenCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(describeCmd)
	pivotCmd.Flags().StringSliceVar(&pivotRows, "rows", nil, "row field(s) identifying an output row")
	pivotCmd.Flags().StringVar(&pivotColumn, "column", "", "field whose distinct values become columns")
	pivotCmd.Flags().StringVar(&pivotData, "data", "", "field aggregated into each cell")
	pivotCmd.Flags().StringVar(&pivotAgg, "agg", "", "cell aggregate (default from config default_aggregator)")
	pivotCmd.Flags().StringSliceVar(&pivotColumns, "columns", nil, "explicit column values and order")
	_ = pivotCmd.MarkFlagRequired("column")
	_ = pivotCmd.MarkFlagRequired("data")
}
