package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/datapipe-cli/internal/logger"
	"github.com/KaramelBytes/datapipe-cli/internal/value"
	"github.com/spf13/cobra"
)

var concatSource string

var concatCmd = &cobra.Command{
	Use:   "concat <files...>",
	Short: "Append the records of several files (glob patterns allowed)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		ctx := commandContext(cmd)
		var out []*value.Record
		for _, f := range files {
			recs, err := loadRecords(ctx, f)
			if err != nil {
				return err
			}
			for _, r := range recs {
				if concatSource != "" {
					r = r.Clone().Set(concatSource, value.String(filepath.Base(f)))
				}
				out = append(out, r)
			}
		}
		return emitRecords(cmd, out)
	},
}

// expandInputs resolves glob patterns and literal paths, dropping repeats.
// Matches of one pattern are sorted; argument order is kept.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		if len(matches) == 0 {
			logger.Warn("input pattern matched nothing", "pattern", arg)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	return files, nil
}

func init() {
	rootCmd.AddCommand(concatCmd)
	concatCmd.Flags().StringVar(&concatSource, "source-field", "", "add a field holding each record's file name")
}
