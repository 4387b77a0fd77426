package dataio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/KaramelBytes/datapipe-cli/internal/value"
	"gopkg.in/yaml.v3"
)

// ErrNotRecords is returned when a document is not a list of objects.
var ErrNotRecords = errors.New("document is not a list of objects")

// DecodeAny decodes one JSON or YAML document into Go values: mappings
// become *value.Record in source order, sequences []any, and scalars their
// natural Go type. A nested mapping inside a record is kept as its JSON text.
func DecodeAny(r io.Reader) (any, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []any{}, nil
		}
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return fromNode(&doc)
}

// DecodeRecords decodes a JSON or YAML list of objects. A single top-level
// object yields one record.
func DecodeRecords(r io.Reader) ([]*value.Record, error) {
	v, err := DecodeAny(r)
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case *value.Record:
		return []*value.Record{t}, nil
	case []any:
		out := make([]*value.Record, 0, len(t))
		for i, it := range t {
			rec, ok := it.(*value.Record)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is %T", ErrNotRecords, i, it)
			}
			out = append(out, rec)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: got %T", ErrNotRecords, v)
}

func fromNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromNode(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		rec := value.NewRecord()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			x, err := fromNode(v)
			if err != nil {
				return nil, err
			}
			cell, err := cellOf(x)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k.Value, err)
			}
			rec.Set(k.Value, cell)
		}
		return rec, nil
	case yaml.ScalarNode:
		var x any
		if err := n.Decode(&x); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return x, nil
	}
	return nil, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
}

// cellOf turns a decoded value into a record cell. Composite values are
// stored as compact JSON text.
func cellOf(x any) (value.Value, error) {
	switch x.(type) {
	case *value.Record, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return value.Value{}, err
		}
		return value.String(string(bytes.TrimSpace(b))), nil
	}
	return value.Of(x), nil
}
