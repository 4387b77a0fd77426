package dataio

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/datapipe-cli/internal/value"
	"gopkg.in/yaml.v3"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// ParseFormat resolves a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md", "table":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: output format %q (use json|yaml|csv|markdown)", ErrUnsupported, s)
}

// WriteRecords encodes records in the given format.
func WriteRecords(w io.Writer, records []*value.Record, f Format) error {
	switch f {
	case FormatJSON:
		if records == nil {
			records = []*value.Record{}
		}
		return writeJSON(w, records)
	case FormatYAML:
		items := make([]any, len(records))
		for i, r := range records {
			items[i] = r
		}
		return writeYAML(w, items)
	case FormatCSV:
		return writeCSV(w, records)
	case FormatMarkdown:
		_, err := io.WriteString(w, MarkdownTable(records))
		return err
	}
	return fmt.Errorf("%w: output format %q", ErrUnsupported, f)
}

// WriteAny encodes a mixed list such as a flattened document. CSV and
// Markdown write one value per line.
func WriteAny(w io.Writer, items []any, f Format) error {
	switch f {
	case FormatJSON:
		if items == nil {
			items = []any{}
		}
		return writeJSON(w, items)
	case FormatYAML:
		return writeYAML(w, items)
	case FormatCSV, FormatMarkdown:
		for _, it := range items {
			if _, err := fmt.Fprintln(w, textOf(it)); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%w: output format %q", ErrUnsupported, f)
}

// WriteObject encodes one record as a document rather than a list. CSV and
// Markdown write it as a two-column name/value table.
func WriteObject(w io.Writer, r *value.Record, f Format) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, r)
	case FormatYAML:
		n, err := nodeOf(r)
		if err != nil {
			return err
		}
		return encodeYAML(w, n)
	}
	rows := make([]*value.Record, 0, r.Len())
	r.Range(func(name string, v value.Value) bool {
		rows = append(rows, value.NewRecord().Set("name", value.String(name)).Set("value", v))
		return true
	})
	return WriteRecords(w, rows, f)
}

// WriteValue encodes one scalar result.
func WriteValue(w io.Writer, v value.Value, f Format) error {
	switch f {
	case FormatJSON:
		b, err := v.MarshalJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case FormatYAML:
		n, err := nodeOf(v)
		if err != nil {
			return err
		}
		return encodeYAML(w, n)
	}
	_, err := fmt.Fprintln(w, v.String())
	return err
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

func writeYAML(w io.Writer, items []any) error {
	n, err := nodeOf(items)
	if err != nil {
		return err
	}
	return encodeYAML(w, n)
}

func encodeYAML(w io.Writer, n *yaml.Node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	return enc.Close()
}

// nodeOf builds a YAML node keeping record field order.
func nodeOf(x any) (*yaml.Node, error) {
	switch t := x.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case *value.Record:
		n := &yaml.Node{Kind: yaml.MappingNode}
		var err error
		t.Range(func(name string, v value.Value) bool {
			var vn *yaml.Node
			if vn, err = nodeOf(v); err != nil {
				return false
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}, vn)
			return true
		})
		return n, err
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, it := range t {
			c, err := nodeOf(it)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, c)
		}
		return n, nil
	case value.Value:
		return nodeOf(t.Interface())
	}
	n := &yaml.Node{}
	if err := n.Encode(x); err != nil {
		return nil, err
	}
	return n, nil
}

// Columns is the union of record field names in first-seen order.
func Columns(records []*value.Record) []string {
	var cols []string
	seen := make(map[string]bool)
	for _, r := range records {
		for _, f := range r.Fields() {
			if !seen[f] {
				seen[f] = true
				cols = append(cols, f)
			}
		}
	}
	return cols
}

func writeCSV(w io.Writer, records []*value.Record) error {
	cols := Columns(records)
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	row := make([]string, len(cols))
	for _, r := range records {
		for i, c := range cols {
			row[i] = cellText(r.Get(c))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// cellText renders a cell for tabular output; missing values are blank.
func cellText(v value.Value) string {
	if v.IsMissing() {
		return ""
	}
	return v.String()
}

func textOf(x any) string {
	switch t := x.(type) {
	case nil:
		return ""
	case value.Value:
		return cellText(t)
	case fmt.Stringer:
		return t.String()
	}
	return value.Of(x).String()
}

// MarkdownTable renders records as a GitHub-flavored Markdown table.
func MarkdownTable(records []*value.Record) string {
	cols := Columns(records)
	if len(cols) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("| ")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeName(c))
	}
	b.WriteString(" |\n| ")
	for i := range cols {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, r := range records {
		b.WriteString("| ")
		for i, c := range cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := cellText(r.Get(c))
			if len(val) > 80 {
				val = val[:77] + "..."
			}
			b.WriteString(safeVal(val))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return safeVal(s)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
