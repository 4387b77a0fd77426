package value

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is an ordered mapping from field name to Value. Fields keep the
// position of their first insertion. A nil *Record reads as empty.
type Record struct {
	names []string
	vals  map[string]Value
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{vals: make(map[string]Value)}
}

// Pairs builds a record from alternating name/value arguments; values go
// through Of. It panics on an odd argument count or a non-string name.
func Pairs(kv ...any) *Record {
	if len(kv)%2 != 0 {
		panic("value.Pairs: odd number of arguments")
	}
	r := &Record{names: make([]string, 0, len(kv)/2), vals: make(map[string]Value, len(kv)/2)}
	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("value.Pairs: field name at %d is %T, want string", i, kv[i]))
		}
		r.Set(name, Of(kv[i+1]))
	}
	return r
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.names)
}

// Fields returns the field names in order.
func (r *Record) Fields() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Get returns the field value, or Undefined when the field is absent.
func (r *Record) Get(name string) Value {
	v, _ := r.Lookup(name)
	return v
}

// Lookup returns the field value and whether the field exists.
func (r *Record) Lookup(name string) (Value, bool) {
	if r == nil {
		return Undefined(), false
	}
	v, ok := r.vals[name]
	return v, ok
}

// Has reports whether the field exists.
func (r *Record) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Set assigns a field and returns r.
func (r *Record) Set(name string, v Value) *Record {
	if r.vals == nil {
		r.vals = make(map[string]Value)
	}
	if _, ok := r.vals[name]; !ok {
		r.names = append(r.names, name)
	}
	r.vals[name] = v
	return r
}

// Delete removes a field if present.
func (r *Record) Delete(name string) {
	if r == nil {
		return
	}
	if _, ok := r.vals[name]; !ok {
		return
	}
	delete(r.vals, name)
	for i, n := range r.names {
		if n == name {
			r.names = append(r.names[:i:i], r.names[i+1:]...)
			break
		}
	}
}

// Range calls fn for every field in order until fn returns false.
func (r *Record) Range(fn func(name string, v Value) bool) {
	if r == nil {
		return
	}
	for _, n := range r.names {
		if !fn(n, r.vals[n]) {
			return
		}
	}
}

// Clone returns a shallow copy; Values are immutable so this is a full copy.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := &Record{names: make([]string, len(r.names)), vals: make(map[string]Value, len(r.vals))}
	copy(out.names, r.names)
	for k, v := range r.vals {
		out.vals[k] = v
	}
	return out
}

// Equal reports whether both records hold the same fields in the same
// order with structurally equal values.
func (r *Record) Equal(o *Record) bool {
	if r.Len() != o.Len() {
		return false
	}
	if r.Len() == 0 {
		return true
	}
	for i, n := range r.names {
		if o.names[i] != n || !Equal(r.vals[n], o.vals[n]) {
			return false
		}
	}
	return true
}

// Merge overlays records left to right into a new record: field order is
// first appearance, later records win on conflicts. Nil records are skipped.
func Merge(records ...*Record) *Record {
	out := NewRecord()
	for _, r := range records {
		r.Range(func(name string, v Value) bool {
			out.Set(name, v)
			return true
		})
	}
	return out
}

// Project returns a new record with only the named fields, in the given
// order; absent fields are skipped.
func (r *Record) Project(names ...string) *Record {
	out := NewRecord()
	for _, n := range names {
		if v, ok := r.Lookup(n); ok {
			out.Set(n, v)
		}
	}
	return out
}

func (r *Record) String() string {
	b, err := r.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("record(%d fields)", r.Len())
	}
	return string(b)
}

// MarshalJSON writes the record as a JSON object preserving field order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	var err error
	i := 0
	r.Range(func(name string, v Value) bool {
		if i > 0 {
			buf.WriteByte(',')
		}
		i++
		var kb, vb []byte
		if kb, err = json.Marshal(name); err != nil {
			return false
		}
		if vb, err = v.MarshalJSON(); err != nil {
			return false
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
