package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/KaramelBytes/datapipe-cli/internal/dataio"
	"github.com/KaramelBytes/datapipe-cli/internal/logger"
	"github.com/KaramelBytes/datapipe-cli/internal/sorting"
	"github.com/KaramelBytes/datapipe-cli/internal/utils"
	"github.com/KaramelBytes/datapipe-cli/internal/value"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadRecords reads one input file with the configured parsing options.
func loadRecords(ctx context.Context, path string) ([]*value.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !utils.FileExists(path) {
		return nil, fmt.Errorf("input not found: %s", path)
	}
	start := time.Now()
	recs, err := dataio.ReadFile(path, settings().ParsingOptions())
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Debug("loaded input", "path", path, "records", len(recs), "elapsed", time.Since(start))
	return recs, nil
}

// loadPair reads two inputs concurrently. A failure cancels the other load
// if it has not started reading yet.
func loadPair(ctx context.Context, leftPath, rightPath string) (left, right []*value.Record, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := loadRecords(gctx, leftPath)
		if err != nil {
			return err
		}
		left = recs
		return nil
	})
	g.Go(func() error {
		recs, err := loadRecords(gctx, rightPath)
		if err != nil {
			return err
		}
		right = recs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func outputFormat() (dataio.Format, error) {
	return dataio.ParseFormat(settings().OutputFormat)
}

func newSorter() (*sorting.Sorter, error) {
	tag, err := settings().Locale()
	if err != nil {
		return nil, err
	}
	if settings().SortLocale == "" {
		return sorting.New(), nil
	}
	return sorting.New(sorting.WithLocale(tag)), nil
}

// emit renders output into memory, then writes it to --output or stdout.
func emit(cmd *cobra.Command, render func(w io.Writer, f dataio.Format) error) error {
	f, err := outputFormat()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := render(&buf, f); err != nil {
		return err
	}
	if outPath != "" {
		if err := utils.SafeWriteFile(outPath, buf.Bytes()); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		logger.Info("wrote output", "path", outPath, "format", f, "bytes", buf.Len())
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s output to %s\n", f, outPath)
		return nil
	}
	_, err = cmd.OutOrStdout().Write(buf.Bytes())
	return err
}

func emitRecords(cmd *cobra.Command, recs []*value.Record) error {
	return emit(cmd, func(w io.Writer, f dataio.Format) error { return dataio.WriteRecords(w, recs, f) })
}

func emitObject(cmd *cobra.Command, rec *value.Record) error {
	return emit(cmd, func(w io.Writer, f dataio.Format) error { return dataio.WriteObject(w, rec, f) })
}

func emitValue(cmd *cobra.Command, v value.Value) error {
	return emit(cmd, func(w io.Writer, f dataio.Format) error { return dataio.WriteValue(w, v, f) })
}

// splitFields accepts repeated and comma separated field lists.
func splitFields(in []string) []string {
	var out []string
	for _, s := range in {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// whereClause is a field=value filter compared on stringified values.
type whereClause struct {
	field, want string
}

func parseWhere(in []string) ([]whereClause, error) {
	out := make([]whereClause, 0, len(in))
	for _, w := range in {
		field, want, ok := strings.Cut(w, "=")
		if !ok || strings.TrimSpace(field) == "" {
			return nil, fmt.Errorf("invalid --where %q (use field=value)", w)
		}
		out = append(out, whereClause{field: strings.TrimSpace(field), want: want})
	}
	return out, nil
}

func matchAll(clauses []whereClause) func(*value.Record) bool {
	return func(r *value.Record) bool {
		for _, c := range clauses {
			if r.Get(c.field).String() != c.want {
				return false
			}
		}
		return true
	}
}
