package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/datapipe-cli/internal/dataio"
	"github.com/KaramelBytes/datapipe-cli/internal/stats"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// ErrUnknownKey is returned by Set for a key that is not a config field.
var ErrUnknownKey = errors.New("unknown config key")

// Global configuration structure.
type Global struct {
	// Input parsing
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
	InferTypes         bool   `mapstructure:"infer_types" yaml:"infer_types"`
	NullToken          string `mapstructure:"null_token" yaml:"null_token"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`
	MaxRows            int    `mapstructure:"max_rows" yaml:"max_rows"`

	// Output and operations
	OutputFormat      string `mapstructure:"output_format" yaml:"output_format"`
	DefaultAggregator string `mapstructure:"default_aggregator" yaml:"default_aggregator"`
	SortLocale        string `mapstructure:"sort_locale" yaml:"sort_locale"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Global {
	return &Global{
		InferTypes:        true,
		OutputFormat:      string(dataio.FormatJSON),
		DefaultAggregator: "sum",
		LogLevel:          "warn",
		LogFormat:         "text",
	}
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".datapipe"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.datapipe/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	return load(cfgFile, true)
}

// LoadFile loads configuration from file and defaults only, ignoring
// DATAPIPE_* variables. Use it before Save so env overrides stay out of
// the file.
func LoadFile(cfgFile string) (*Global, error) {
	return load(cfgFile, false)
}

func load(cfgFile string, withEnv bool) (*Global, error) {
	v := viper.New()
	if withEnv {
		v.SetEnvPrefix("DATAPIPE")
		v.AutomaticEnv()
	}

	d := Default()
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("infer_types", d.InferTypes)
	v.SetDefault("null_token", d.NullToken)
	v.SetDefault("decimal_separator", d.DecimalSeparator)
	v.SetDefault("thousands_separator", d.ThousandsSeparator)
	v.SetDefault("max_rows", d.MaxRows)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("default_aggregator", d.DefaultAggregator)
	v.SetDefault("sort_locale", d.SortLocale)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks values that cannot be checked by type alone.
func (c *Global) Validate() error {
	for key, sep := range map[string]string{
		"delimiter":           c.Delimiter,
		"decimal_separator":   c.DecimalSeparator,
		"thousands_separator": c.ThousandsSeparator,
	} {
		if utf8.RuneCountInString(unescape(sep)) > 1 {
			return fmt.Errorf("invalid %s %q: must be a single character", key, sep)
		}
	}
	if _, err := dataio.ParseFormat(c.OutputFormat); err != nil {
		return fmt.Errorf("invalid output_format: %w", err)
	}
	if _, err := stats.Lookup(c.DefaultAggregator); err != nil {
		return fmt.Errorf("invalid default_aggregator: %w", err)
	}
	if _, err := c.Locale(); err != nil {
		return err
	}
	if c.MaxRows < 0 {
		return fmt.Errorf("invalid max_rows %d", c.MaxRows)
	}
	return nil
}

// Locale parses sort_locale; an empty value means byte order.
func (c *Global) Locale() (language.Tag, error) {
	if c.SortLocale == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(c.SortLocale)
	if err != nil {
		return language.Und, fmt.Errorf("invalid sort_locale %q: %w", c.SortLocale, err)
	}
	return tag, nil
}

// ParsingOptions maps the input settings onto reader options.
func (c *Global) ParsingOptions() dataio.ParsingOptions {
	return dataio.ParsingOptions{
		Delimiter:          firstRune(c.Delimiter),
		InferTypes:         c.InferTypes,
		NullToken:          c.NullToken,
		DecimalSeparator:   firstRune(c.DecimalSeparator),
		ThousandsSeparator: firstRune(c.ThousandsSeparator),
		MaxRows:            c.MaxRows,
	}
}

// unescape lets "\t" be written literally in flags and YAML.
func unescape(s string) string {
	if s == `\t` {
		return "\t"
	}
	return s
}

func firstRune(s string) rune {
	s = unescape(s)
	if s == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

// Keys lists the settable keys in display order.
func Keys() []string {
	return []string{
		"delimiter", "infer_types", "null_token", "decimal_separator", "thousands_separator", "max_rows",
		"output_format", "default_aggregator", "sort_locale", "log_level", "log_format",
	}
}

// Get renders one key's value.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "delimiter":
		return c.Delimiter, nil
	case "infer_types":
		return strconv.FormatBool(c.InferTypes), nil
	case "null_token":
		return c.NullToken, nil
	case "decimal_separator":
		return c.DecimalSeparator, nil
	case "thousands_separator":
		return c.ThousandsSeparator, nil
	case "max_rows":
		return strconv.Itoa(c.MaxRows), nil
	case "output_format":
		return c.OutputFormat, nil
	case "default_aggregator":
		return c.DefaultAggregator, nil
	case "sort_locale":
		return c.SortLocale, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Set assigns one key from its string form and validates the result.
func (c *Global) Set(key, val string) error {
	next := *c
	switch key {
	case "delimiter":
		next.Delimiter = val
	case "infer_types":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for infer_types: %v", val)
		}
		next.InferTypes = b
	case "null_token":
		next.NullToken = val
	case "decimal_separator":
		next.DecimalSeparator = val
	case "thousands_separator":
		next.ThousandsSeparator = val
	case "max_rows":
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for max_rows: %w", err)
		}
		next.MaxRows = i
	case "output_format":
		f, err := dataio.ParseFormat(val)
		if err != nil {
			return err
		}
		next.OutputFormat = string(f)
	case "default_aggregator":
		next.DefaultAggregator = strings.ToLower(val)
	case "sort_locale":
		next.SortLocale = val
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			next.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
		}
	case "log_format":
		switch strings.ToLower(val) {
		case "text", "json":
			next.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}
