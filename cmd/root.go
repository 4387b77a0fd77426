package cmd

import (
	"context"
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/datapipe-cli/internal/config"
	"github.com/KaramelBytes/datapipe-cli/internal/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile     string
	debug       bool
	outFormat   string
	outPath     string
	flagDelim   string
	flagNull    string
	flagNoInfer bool
	flagLocale  string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "datapipe",
	Short: "datapipe: stats, joins, pivots and sorting over CSV, JSON and YAML records",
	Long: `datapipe is a CLI tool for relational and statistical operations on tabular data:
aggregate a field, join or merge two files, group, count, pivot, transpose,
sort and flatten. Inputs are CSV/TSV, JSON or YAML; output is JSON, YAML, CSV
or a Markdown table.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = logger.ContextWithRunID(ctx, uuid.NewString())
		cmd.SetContext(ctx)
		logger.FromContext(ctx).Debug("command start", "command", cmd.CommandPath(), "args", args)
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.datapipe/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&outFormat, "format", "f", "", "output format: json|yaml|csv|markdown (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&outPath, "output", "o", "", "write output to a file instead of stdout")
	rootCmd.PersistentFlags().StringVar(&flagDelim, "delimiter", "", "CSV delimiter, e.g. ';' or '\\t' (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagNull, "null-token", "", "cell text read as null (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagNoInfer, "no-infer", false, "keep every CSV cell as a string")
	rootCmd.PersistentFlags().StringVar(&flagLocale, "locale", "", "collation locale for string sorting, e.g. fr or de (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("delimiter") {
		cfg.Delimiter = flagDelim
	}
	if f.Changed("null-token") {
		cfg.NullToken = flagNull
	}
	if f.Changed("no-infer") {
		cfg.InferTypes = !flagNoInfer
	}
	if f.Changed("locale") {
		cfg.SortLocale = flagLocale
	}
	if f.Changed("format") {
		cfg.OutputFormat = outFormat
	}

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	logger.Init(logger.Config{Level: level, Format: cfg.LogFormat})
}

// settings returns the loaded configuration, or defaults before loading.
func settings() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Default()
	}
	return cfg
}
