package dataio

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/datapipe-cli/internal/value"
)

// Table is the columnar exchange form of a record collection.
type Table struct {
	FieldNames     []string `json:"fieldNames" yaml:"fieldNames"`
	FieldDataTypes []string `json:"fieldDataTypes" yaml:"fieldDataTypes"`
	Rows           [][]any  `json:"rows" yaml:"rows"`
}

// FieldDescription summarizes one field across a collection.
type FieldDescription struct {
	Index      int    `json:"index" yaml:"index"`
	FieldName  string `json:"fieldName" yaml:"fieldName"`
	DataType   string `json:"dataType" yaml:"dataType"`
	IsNullable bool   `json:"isNullable" yaml:"isNullable"`
	NonNull    int    `json:"nonNull" yaml:"nonNull"`
	Missing    int    `json:"missing" yaml:"missing"`
	Unique     int    `json:"unique" yaml:"unique"`
	MaxSize    int    `json:"maxSize,omitempty" yaml:"maxSize,omitempty"`
}

// DataTypeMixed marks a field holding more than one kind of value.
const DataTypeMixed = "mixed"

// FieldDescriptions inspects every record. A field absent from a record
// counts as missing there. DataType is the kind shared by all non-missing
// values, "mixed" when they differ, or "null" when there are none.
func FieldDescriptions(records []*value.Record) []FieldDescription {
	cols := Columns(records)
	out := make([]FieldDescription, len(cols))
	for i, c := range cols {
		d := FieldDescription{Index: i, FieldName: c}
		kind := value.KindNull
		uniq := make(map[string]struct{})
		var buf []byte
		for _, r := range records {
			v := r.Get(c)
			if v.IsMissing() {
				d.Missing++
				continue
			}
			d.NonNull++
			switch {
			case kind == value.KindNull:
				kind = v.Kind()
				d.DataType = kind.String()
			case kind != v.Kind():
				d.DataType = DataTypeMixed
			}
			if s, ok := v.Text(); ok {
				if n := utf8.RuneCountInString(s); n > d.MaxSize {
					d.MaxSize = n
				}
			}
			buf, _ = value.AppendCanonical(buf[:0], v)
			uniq[string(buf)] = struct{}{}
		}
		if d.DataType == "" {
			d.DataType = value.KindNull.String()
		}
		d.IsNullable = d.Missing > 0
		d.Unique = len(uniq)
		out[i] = d
	}
	return out
}

// ToTable converts records to columnar form. Missing cells are nil.
func ToTable(records []*value.Record) Table {
	descs := FieldDescriptions(records)
	t := Table{
		FieldNames:     make([]string, len(descs)),
		FieldDataTypes: make([]string, len(descs)),
		Rows:           make([][]any, 0, len(records)),
	}
	for i, d := range descs {
		t.FieldNames[i] = d.FieldName
		t.FieldDataTypes[i] = d.DataType
	}
	for _, r := range records {
		row := make([]any, len(t.FieldNames))
		for i, f := range t.FieldNames {
			row[i] = r.Get(f).Interface()
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// FromTable converts columnar form back to records. Short rows leave the
// trailing fields Null.
func FromTable(t Table) ([]*value.Record, error) {
	out := make([]*value.Record, 0, len(t.Rows))
	for ri, row := range t.Rows {
		if len(row) > len(t.FieldNames) {
			return nil, fmt.Errorf("row %d has %d cells for %d fields", ri, len(row), len(t.FieldNames))
		}
		rec := value.NewRecord()
		for i, f := range t.FieldNames {
			var cell any
			if i < len(row) {
				cell = row[i]
			}
			rec.Set(f, value.Of(cell))
		}
		out = append(out, rec)
	}
	return out, nil
}

// DescribeMarkdown renders field descriptions as a compact schema report.
func DescribeMarkdown(name string, rows int, descs []FieldDescription) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", rows))
	b.WriteString(fmt.Sprintf("Fields: %d\n\n", len(descs)))

	b.WriteString("[SCHEMA]\n")
	for _, d := range descs {
		total := d.NonNull + d.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(d.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%, unique %d)", safeName(d.FieldName), d.DataType, d.NonNull, missPct, d.Unique))
		if d.MaxSize > 0 {
			b.WriteString(fmt.Sprintf("; max length %d", d.MaxSize))
		}
		b.WriteString("\n")
	}
	return b.String()
}
