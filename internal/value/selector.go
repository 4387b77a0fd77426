package value

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrEmptyKey is returned for a zero Key or a key naming an empty field.
var ErrEmptyKey = errors.New("empty key specifier")

// Selector reads one value out of a record, either by field name or
// through a projection function.
type Selector struct {
	field string
	fn    func(*Record) Value
}

// Field selects a field by name.
func Field(name string) Selector { return Selector{field: name} }

// Func selects through a projection function.
func Func(fn func(*Record) Value) Selector { return Selector{fn: fn} }

// IsZero reports whether s selects nothing.
func (s Selector) IsZero() bool { return s.fn == nil && s.field == "" }

// Select applies s to r. A zero selector yields Undefined.
func (s Selector) Select(r *Record) Value {
	if s.fn != nil {
		return s.fn(r)
	}
	if s.field == "" {
		return Undefined()
	}
	return r.Get(s.field)
}

func (s Selector) String() string {
	if s.fn != nil {
		return "<func>"
	}
	return s.field
}

// Pluck projects every record through s.
func Pluck(records []*Record, s Selector) []Value {
	out := make([]Value, len(records))
	for i, r := range records {
		out[i] = s.Select(r)
	}
	return out
}

// Key identifies the comparison key of a record for joins and pivots:
// a single field, an ordered composite of fields, or a computed value.
type Key struct {
	fields []string
	fn     func(*Record) Value
}

// KeyField keys on one field.
func KeyField(name string) Key { return Key{fields: []string{name}} }

// KeyFields keys on an ordered tuple of fields.
func KeyFields(names ...string) Key {
	fs := make([]string, len(names))
	copy(fs, names)
	return Key{fields: fs}
}

// KeyFunc keys on a computed value.
func KeyFunc(fn func(*Record) Value) Key { return Key{fn: fn} }

// Arity is the number of tuple components, or 0 for a computed key whose
// shape is opaque.
func (k Key) Arity() int {
	if k.fn != nil {
		return 0
	}
	return len(k.fields)
}

// Validate rejects zero keys and empty field names.
func (k Key) Validate() error {
	if k.fn != nil {
		return nil
	}
	if len(k.fields) == 0 {
		return ErrEmptyKey
	}
	for i, f := range k.fields {
		if f == "" {
			return fmt.Errorf("component %d: %w", i, ErrEmptyKey)
		}
	}
	return nil
}

func (k Key) String() string {
	if k.fn != nil {
		return "<func>"
	}
	if len(k.fields) == 1 {
		return k.fields[0]
	}
	return "(" + strings.Join(k.fields, ", ") + ")"
}

// Components returns the key tuple of r.
func (k Key) Components(r *Record) []Value {
	if k.fn != nil {
		return []Value{k.fn(r)}
	}
	out := make([]Value, len(k.fields))
	for i, f := range k.fields {
		out[i] = r.Get(f)
	}
	return out
}

// Encode appends the canonical encoding of r's key to buf. Two records
// have equal keys exactly when their encodings are byte-equal. ok is
// false when a component can never compare equal (NaN).
func (k Key) Encode(buf []byte, r *Record) ([]byte, bool) {
	ok := true
	for _, v := range k.Components(r) {
		var vok bool
		buf, vok = AppendCanonical(buf, v)
		ok = ok && vok
	}
	return buf, ok
}

// AppendCanonical appends a self-delimiting encoding of v to buf: one kind
// byte followed by the payload, strings length-prefixed. -0 and +0 encode
// identically and Dates encode by instant. ok is false for NaN.
func AppendCanonical(buf []byte, v Value) ([]byte, bool) {
	buf = append(buf, byte(v.kind))
	switch v.kind {
	case KindBool:
		buf = append(buf, byte(v.num))
	case KindNumber:
		if math.IsNaN(v.num) {
			return buf, false
		}
		f := v.num
		if f == 0 {
			f = 0
		}
		buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(f))
	case KindString:
		buf = binary.AppendUvarint(buf, uint64(len(v.str)))
		buf = append(buf, v.str...)
	case KindDate:
		buf = binary.BigEndian.AppendUint64(buf, uint64(v.t.Unix()))
		buf = binary.BigEndian.AppendUint32(buf, uint32(v.t.Nanosecond()))
	}
	return buf, true
}
