package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/language"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !c.InferTypes || c.OutputFormat != "json" || c.DefaultAggregator != "sum" || c.LogLevel != "warn" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	content := "delimiter: ';'\nnull_token: NA\noutput_format: csv\nsort_locale: fr\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DATAPIPE_DEFAULT_AGGREGATOR", "median")
	c, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.DefaultAggregator != "median" {
		t.Fatalf("env override not applied: %q", c.DefaultAggregator)
	}
	opt := c.ParsingOptions()
	if opt.Delimiter != ';' || opt.NullToken != "NA" || !opt.InferTypes {
		t.Fatalf("parsing options: %+v", opt)
	}
	tag, err := c.Locale()
	if err != nil || tag != language.French {
		t.Fatalf("locale: %v %v", tag, err)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte("output_format: xml\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("expected error for invalid output_format")
	}
}

func TestSetAndSave(t *testing.T) {
	c := Default()
	if err := c.Set("delimiter", `\t`); err != nil {
		t.Fatalf("set delimiter: %v", err)
	}
	if c.ParsingOptions().Delimiter != '\t' {
		t.Fatalf("escaped tab not honored")
	}
	if err := c.Set("infer_types", "false"); err != nil || c.InferTypes {
		t.Fatalf("set infer_types: %v", err)
	}
	if err := c.Set("output_format", "md"); err != nil || c.OutputFormat != "markdown" {
		t.Fatalf("set output_format: %v %q", err, c.OutputFormat)
	}
	if err := c.Set("default_aggregator", "mode"); err == nil {
		t.Fatalf("expected error for unknown aggregator")
	}
	if c.DefaultAggregator != "sum" {
		t.Fatalf("failed set must not change config")
	}
	if err := c.Set("nope", "x"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("want ErrUnknownKey, got %v", err)
	}

	p := filepath.Join(t.TempDir(), "out.yaml")
	if err := Save(c, p); err != nil {
		t.Fatalf("save: %v", err)
	}
	back, err := Load(p)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if back.InferTypes || back.OutputFormat != "markdown" {
		t.Fatalf("round trip: %+v", back)
	}
	for _, k := range Keys() {
		if _, err := back.Get(k); err != nil {
			t.Fatalf("get %s: %v", k, err)
		}
	}
}

func TestLoadFileIgnoresEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte("null_token: NA\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DATAPIPE_OUTPUT_FORMAT", "yaml")

	withEnv, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if withEnv.OutputFormat != "yaml" {
		t.Fatalf("Load output_format = %q, want yaml", withEnv.OutputFormat)
	}
	fileOnly, err := LoadFile(p)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if fileOnly.OutputFormat != "json" || fileOnly.NullToken != "NA" {
		t.Fatalf("LoadFile = %+v, want json output and NA null token", fileOnly)
	}
}
