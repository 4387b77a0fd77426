package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/datapipe-cli/internal/logger"
	"github.com/KaramelBytes/datapipe-cli/internal/pipe"
	"github.com/KaramelBytes/datapipe-cli/internal/value"
	"github.com/spf13/cobra"
)

var (
	joinLeftKey   []string
	joinRightKey  []string
	joinType      string
	mergeTargetKy []string
	mergeSourceKy []string
)

var joinCmd = &cobra.Command{
	Use:   "join <left> <right>",
	Short: "Join two files on key fields (inner, left or full)",
	Long: `Join records of <left> with records of <right> whose key fields are equal.
Keys may be composite (--left-key a,b --right-key x,y) and compare by type:
the number 1 does not match the string "1". Matching rows are merged with
left fields winning on name conflicts.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lk, rk, err := joinKeys(joinLeftKey, joinRightKey)
		if err != nil {
			return err
		}
		ctx := commandContext(cmd)
		left, right, err := loadPair(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		p := pipe.From(left)
		switch strings.ToLower(joinType) {
		case "inner":
			p.InnerJoin(right, lk, rk, nil)
		case "left", "":
			p.LeftJoin(right, lk, rk, nil)
		case "full", "outer":
			p.FullJoin(right, lk, rk, nil)
		default:
			return fmt.Errorf("invalid --type: %s (use inner|left|full)", joinType)
		}
		out, err := p.Records()
		if err != nil {
			return err
		}
		logger.FromContext(ctx).Debug("joined", "type", joinType, "left", len(left), "right", len(right), "out", len(out))
		return emitRecords(cmd, out)
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge <target> <source>",
	Short: "Overlay source fields onto target records with exactly one key match",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, sk, err := joinKeys(mergeTargetKy, mergeSourceKy)
		if err != nil {
			return err
		}
		target, source, err := loadPair(commandContext(cmd), args[0], args[1])
		if err != nil {
			return err
		}
		out, err := pipe.From(target).Merge(source, tk, sk).Records()
		if err != nil {
			return err
		}
		return emitRecords(cmd, out)
	},
}

// joinKeys builds both keys; an omitted right key reuses the left fields.
func joinKeys(leftFields, rightFields []string) (value.Key, value.Key, error) {
	lf, rf := splitFields(leftFields), splitFields(rightFields)
	if len(lf) == 0 {
		return value.Key{}, value.Key{}, fmt.Errorf("a key is required: %w", value.ErrEmptyKey)
	}
	if len(rf) == 0 {
		rf = lf
	}
	return value.KeyFields(lf...), value.KeyFields(rf...), nil
}

func init() {
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(mergeCmd)
	joinCmd.Flags().StringSliceVar(&joinLeftKey, "left-key", nil, "key field(s) of the left file")
	joinCmd.Flags().StringSliceVar(&joinRightKey, "right-key", nil, "key field(s) of the right file (default: same as --left-key)")
	joinCmd.Flags().StringVar(&joinType, "type", "left", "join type: inner|left|full")
	mergeCmd.Flags().StringSliceVar(&mergeTargetKy, "target-key", nil, "key field(s) of the target file")
	mergeCmd.Flags().StringSliceVar(&mergeSourceKy, "source-key", nil, "key field(s) of the source file (default: same as --target-key)")
}
