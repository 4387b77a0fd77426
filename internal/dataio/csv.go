package dataio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/datapipe-cli/internal/value"
)

// ParsingOptions controls how delimited text becomes records.
type ParsingOptions struct {
	// Delimiter for CSV. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// InferTypes converts cells to numbers, booleans, dates and nulls.
	// When false every cell is a string.
	InferTypes bool
	// NullToken is read as Null regardless of InferTypes.
	NullToken string
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
}

// DefaultParsingOptions returns the options used when nothing is configured.
func DefaultParsingOptions() ParsingOptions {
	return ParsingOptions{InferTypes: true}
}

// ParseCSV reads a header row followed by data rows. Short rows leave the
// trailing fields absent; extra cells are dropped.
func ParseCSV(r io.Reader, opt ParsingOptions) ([]*value.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = ','
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []*value.Record{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	names := headerNames(header)

	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	var out []*value.Record
	for len(out) < maxRows {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(out)+1, err)
		}
		rec := value.NewRecord()
		for i, cell := range row {
			if i >= len(names) {
				break
			}
			rec.Set(names[i], inferCell(cell, opt))
		}
		out = append(out, rec)
	}
	if out == nil {
		out = []*value.Record{}
	}
	return out, nil
}

// headerNames trims header cells, names blank ones by position and
// suffixes duplicates.
func headerNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		n := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if n == "" {
			n = fmt.Sprintf("column_%d", i+1)
		}
		if c := seen[n]; c > 0 {
			seen[n] = c + 1
			n = fmt.Sprintf("%s_%d", n, c+1)
		} else {
			seen[n] = 1
		}
		names[i] = n
	}
	return names
}

var numericShape = regexp.MustCompile(`^[+-]?[\d.,\s\x{00A0}]*\d[\d.,\s\x{00A0}]*([eE][+-]?\d+)?$`)

func inferCell(cell string, opt ParsingOptions) value.Value {
	if opt.NullToken != "" && cell == opt.NullToken {
		return value.Null()
	}
	if !opt.InferTypes {
		return value.String(cell)
	}
	s := strings.TrimSpace(cell)
	if s == "" {
		return value.Null()
	}
	switch strings.ToLower(s) {
	case "true":
		return value.Bool(true)
	case "false":
		return value.Bool(false)
	case "null":
		return value.Null()
	}
	if numericShape.MatchString(s) {
		if f, ok := parseNumeric(s, opt); ok {
			return value.Number(f)
		}
	}
	if t, ok := parseTimeMaybe(s); ok {
		return value.Date(t)
	}
	return value.String(cell)
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339Nano, time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// groupedThousands reports whether raw reads as digit groups split by sep:
// one to three leading digits, then groups of exactly three.
func groupedThousands(raw string, sep string) bool {
	parts := strings.Split(strings.TrimLeft(raw, "+-"), sep)
	if len(parts) < 2 {
		return false
	}
	for i, p := range parts {
		if p == "" || strings.Trim(p, "0123456789") != "" {
			return false
		}
		if i == 0 && (len(p) > 3 || (p[0] == '0' && len(parts) == 2)) {
			return false
		}
		if i > 0 && len(p) != 3 {
			return false
		}
	}
	return true
}

func parseNumeric(s string, opt ParsingOptions) (float64, bool) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0:
			// "1,000" and "1,000,000" group thousands; "2,5" is a decimal comma.
			if groupedThousands(raw, ",") {
				dec, thou = '.', ','
			} else {
				dec = ','
			}
		case strings.Count(raw, ".") > 1 && groupedThousands(raw, "."):
			dec, thou = ',', '.'
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
