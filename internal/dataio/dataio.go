// Package dataio reads and writes record collections as CSV, TSV, JSON,
// YAML and Markdown.
package dataio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/datapipe-cli/internal/value"
)

// ErrUnsupported indicates a file or output format is not supported.
var ErrUnsupported = errors.New("unsupported format")

// Reader decodes one input format into records.
type Reader interface {
	CanRead(filename string) bool
	Read(r io.Reader, opt ParsingOptions) ([]*value.Record, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

func lookup(path string) (Reader, error) {
	for _, r := range registry {
		if r.CanRead(path) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
}

// ReadFile selects a reader by file extension and decodes the file.
func ReadFile(path string, opt ParsingOptions) ([]*value.Record, error) {
	rd, err := lookup(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 && hasExt(path, ".tsv") {
		opt.Delimiter = '\t'
	}
	recs, err := rd.Read(f, opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return recs, nil
}

// ReadAnyFile decodes a file without requiring a list of objects. JSON
// and YAML keep their nesting; tabular files yield their records.
func ReadAnyFile(path string, opt ParsingOptions) (any, error) {
	if !hasExt(path, ".json", ".yaml", ".yml") {
		recs, err := ReadFile(path, opt)
		if err != nil {
			return nil, err
		}
		items := make([]any, len(recs))
		for i, r := range recs {
			items[i] = r
		}
		return items, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	v, err := DecodeAny(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return v, nil
}

func hasExt(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

type csvReader struct{}

func (csvReader) CanRead(filename string) bool { return hasExt(filename, ".csv", ".tsv") }

func (csvReader) Read(r io.Reader, opt ParsingOptions) ([]*value.Record, error) {
	return ParseCSV(r, opt)
}

// documentReader handles JSON and YAML; JSON is read as YAML so both keep
// field order.
type documentReader struct{}

func (documentReader) CanRead(filename string) bool {
	return hasExt(filename, ".json", ".yaml", ".yml")
}

func (documentReader) Read(r io.Reader, opt ParsingOptions) ([]*value.Record, error) {
	recs, err := DecodeRecords(r)
	if err != nil {
		return nil, err
	}
	if opt.NullToken != "" {
		for _, rec := range recs {
			rec.Range(func(name string, v value.Value) bool {
				if s, ok := v.Text(); ok && s == opt.NullToken {
					rec.Set(name, value.Null())
				}
				return true
			})
		}
	}
	if opt.MaxRows > 0 && len(recs) > opt.MaxRows {
		recs = recs[:opt.MaxRows]
	}
	return recs, nil
}

func init() {
	Register(csvReader{})
	Register(documentReader{})
}
