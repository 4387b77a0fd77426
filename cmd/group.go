package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/datapipe-cli/internal/pipe"
	"github.com/KaramelBytes/datapipe-cli/internal/stats"
	"github.com/KaramelBytes/datapipe-cli/internal/value"
	"github.com/spf13/cobra"
)

var (
	groupAgg string
	groupOf  string
)

var sortCmd = &cobra.Command{
	Use:   "sort <file> <spec>...",
	Short: `Sort records by one or more specs such as "country" or "age DESC"`,
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sorter, err := newSorter()
		if err != nil {
			return err
		}
		recs, err := loadRecords(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		out, err := pipe.From(recs).WithSorter(sorter).Sort(args[1:]...).Records()
		if err != nil {
			return err
		}
		return emitRecords(cmd, out)
	},
}

var groupCmd = &cobra.Command{
	Use:   "group <file> <field>",
	Short: "Summarize groups of records sharing a field value",
	Long: `Group records by a field, in order of first appearance. Each output row
holds the group key and its size; --agg with --of adds an aggregate of
another field per group.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		field := args[1]
		var agg stats.Aggregator
		aggName := strings.ToLower(groupAgg)
		if groupOf != "" {
			if aggName == "" {
				aggName = settings().DefaultAggregator
			}
			a, err := stats.Lookup(aggName)
			if err != nil {
				return err
			}
			agg = a
		}
		recs, err := loadRecords(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		groups, err := pipe.From(recs).GroupBy(value.Field(field))
		if err != nil {
			return err
		}
		out := make([]*value.Record, 0, len(groups))
		for _, g := range groups {
			row := value.NewRecord().
				Set(field, g.Key).
				Set("count", value.Int(len(g.Items)))
			if agg != nil {
				v, err := agg(value.Pluck(g.Items, value.Field(groupOf)))
				if err != nil {
					return fmt.Errorf("group %s: %w", g.Key, err)
				}
				row.Set(aggName+"_"+groupOf, v)
			}
			out = append(out, row)
		}
		return emitRecords(cmd, out)
	},
}

var countByCmd = &cobra.Command{
	Use:   "countby <file> <field>",
	Short: "Count records per distinct field value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := loadRecords(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		counts, err := pipe.From(recs).CountBy(value.Field(args[1]))
		if err != nil {
			return err
		}
		return emitObject(cmd, counts)
	},
}

func init() {
	rootCmd.AddCommand(sortCmd)
	rootCmd.AddCommand(groupCmd)
	rootCmd.AddCommand(countByCmd)
	groupCmd.Flags().StringVar(&groupAgg, "agg", "", "aggregate for --of (default from config default_aggregator)")
	groupCmd.Flags().StringVar(&groupOf, "of", "", "field to aggregate within each group")
}
