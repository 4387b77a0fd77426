package value

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"33", 33, true},
		{" 5 ", 5, true},
		{"", 0, true},
		{"-1.5e2", -150, true},
		{".5", 0.5, true},
		{"0x10", 16, true},
		{"0b101", 5, true},
		{"Infinity", math.Inf(1), true},
		{"abc", 0, false},
		{"1,5", 0, false},
		{"inf", 0, false},
		{"NaN", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseNumber(c.in)
		require.Equal(t, c.ok, ok, "ParseNumber(%q) ok", c.in)
		if c.ok {
			require.Equal(t, c.want, got, "ParseNumber(%q)", c.in)
		} else {
			require.True(t, math.IsNaN(got), "ParseNumber(%q) = %v, want NaN", c.in, got)
		}
	}
}

func TestToNumber(t *testing.T) {
	n, ok := ToNumber(Bool(true))
	require.True(t, ok)
	require.Equal(t, 1.0, n)

	n, ok = ToNumber(Null())
	require.True(t, ok)
	require.Equal(t, 0.0, n)

	_, ok = ToNumber(Undefined())
	require.False(t, ok)

	d := time.Date(2012, 10, 1, 0, 0, 0, 0, time.UTC)
	n, ok = ToNumber(Date(d))
	require.True(t, ok)
	require.Equal(t, float64(d.UnixMilli()), n)
}

func TestParseFloatPrefix(t *testing.T) {
	cases := []struct {
		in   Value
		want float64
	}{
		{String("12abc"), 12},
		{String("  3.5kg"), 3.5},
		{String("1e3x"), 1000},
		{String("2e"), 2},
		{String("-.25"), -0.25},
		{String("0x10"), 0},
		{String("-Infinity!"), math.Inf(-1)},
		{Int(7), 7},
	}
	for _, c := range cases {
		got, ok := ParseFloat(c.in).Num()
		require.True(t, ok)
		require.Equal(t, c.want, got, "ParseFloat(%s)", c.in)
	}
	for _, in := range []Value{String("abc"), String(""), String("."), Bool(true), Null(), Undefined()} {
		require.True(t, ParseFloat(in).IsNaN(), "ParseFloat(%s) should be NaN", in)
	}
}

func TestStringRendering(t *testing.T) {
	require.Equal(t, "3", Int(3).String())
	require.Equal(t, "1.5", Number(1.5).String())
	require.Equal(t, "true", Bool(true).String())
	require.Equal(t, "null", Null().String())
	require.Equal(t, "undefined", Undefined().String())
	require.Equal(t, "NaN", NaN().String())
	require.Equal(t, "1e+21", Number(1e21).String())
}

func TestEqualAndCompare(t *testing.T) {
	require.True(t, Equal(String("a"), String("a")))
	require.False(t, Equal(String("1"), Int(1)))
	require.False(t, Equal(NaN(), NaN()))
	require.True(t, Equal(Null(), Null()))
	require.False(t, Equal(Null(), Undefined()))

	d1 := Date(time.Date(2009, 10, 1, 0, 0, 0, 0, time.UTC))
	d2 := Date(time.Date(2012, 10, 1, 0, 0, 0, 0, time.UTC))
	require.Equal(t, -1, Compare(d1, d2))
	require.Equal(t, 1, Compare(Int(10), Int(9)))
	require.Equal(t, -1, Compare(String("10"), String("9")))
	require.Equal(t, 1, Compare(Null(), Int(5)))
	require.Equal(t, 0, Compare(Null(), Undefined()))
	require.Equal(t, 1, Compare(NaN(), Int(5)))
}

func TestRecordOrderAndMerge(t *testing.T) {
	r := Pairs("name", "John", "country", "US")
	r.Set("age", Int(30)).Set("name", String("Joe"))
	require.Equal(t, []string{"name", "country", "age"}, r.Fields())
	require.Equal(t, "Joe", r.Get("name").String())
	require.Equal(t, KindUndefined, r.Get("missing").Kind())

	country := Pairs("code", "US", "capital", "Washington")
	m := Merge(country, r)
	require.Equal(t, []string{"code", "capital", "name", "country", "age"}, m.Fields())
	require.Equal(t, 3, r.Len(), "inputs must not change")

	r.Delete("country")
	require.Equal(t, []string{"name", "age"}, r.Fields())

	b, err := m.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `{"code":"US","capital":"Washington","name":"Joe","country":"US","age":30}`, string(b))
}

func TestRecordNilSafe(t *testing.T) {
	var r *Record
	require.Equal(t, 0, r.Len())
	require.Equal(t, KindUndefined, r.Get("x").Kind())
	require.True(t, r.Equal(NewRecord()))
	require.Nil(t, r.Clone())
}

func TestKeyEncoding(t *testing.T) {
	a := Pairs("x", "a|b", "y", "c")
	b := Pairs("x", "a", "y", "b|c")
	k := KeyFields("x", "y")
	ea, ok := k.Encode(nil, a)
	require.True(t, ok)
	eb, ok := k.Encode(nil, b)
	require.True(t, ok)
	require.NotEqual(t, string(ea), string(eb))

	zero := Pairs("v", math.Copysign(0, -1))
	pos := Pairs("v", 0)
	ez, _ := KeyField("v").Encode(nil, zero)
	ep, _ := KeyField("v").Encode(nil, pos)
	require.Equal(t, string(ep), string(ez))

	_, ok = KeyField("v").Encode(nil, Pairs("v", math.NaN()))
	require.False(t, ok)

	require.ErrorIs(t, Key{}.Validate(), ErrEmptyKey)
	require.ErrorIs(t, KeyFields("a", "").Validate(), ErrEmptyKey)
	require.Equal(t, 2, k.Arity())
	require.Equal(t, 0, KeyFunc(func(*Record) Value { return Null() }).Arity())
}

func TestSelector(t *testing.T) {
	recs := []*Record{Pairs("v", 1), Pairs("v", 2)}
	require.Equal(t, []Value{Int(1), Int(2)}, Pluck(recs, Field("v")))
	double := Func(func(r *Record) Value {
		n, _ := r.Get("v").Num()
		return Number(n * 2)
	})
	require.Equal(t, []Value{Int(2), Int(4)}, Pluck(recs, double))
	require.True(t, Selector{}.IsZero())
}
