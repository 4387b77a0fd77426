package sorting

import (
	"testing"
	"time"

	"github.com/KaramelBytes/datapipe-cli/internal/value"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func names(recs []*value.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Get("name").String()
	}
	return out
}

func TestSortMultiKeyStable(t *testing.T) {
	recs := []*value.Record{
		value.Pairs("name", "Joe", "country", "US", "age", 40),
		value.Pairs("name", "Adam", "country", "UK", "age", 22),
		value.Pairs("name", "John", "country", "US", "age", 31),
		value.Pairs("name", "Diana", "country", "UK", "age", 40),
		value.Pairs("name", "Bill", "country", "US", "age", 40),
	}
	out, err := Sort(recs, "country", "age DESC")
	require.NoError(t, err)
	require.Equal(t, []string{"Diana", "Adam", "Joe", "Bill", "John"}, names(out))
	// in place
	require.Equal(t, names(out), names(recs))
}

func TestSortNumbersNotLexical(t *testing.T) {
	recs := []*value.Record{
		value.Pairs("name", "a", "n", 10),
		value.Pairs("name", "b", "n", 9),
		value.Pairs("name", "c", "n", 100),
	}
	_, err := Sort(recs, "n asc")
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a", "c"}, names(recs))
}

func TestSortDates(t *testing.T) {
	recs := []*value.Record{
		value.Pairs("name", "late", "at", time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)),
		value.Pairs("name", "early", "at", time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	_, err := Sort(recs, "at")
	require.NoError(t, err)
	require.Equal(t, []string{"early", "late"}, names(recs))
}

func TestSortMissingLastAscFirstDesc(t *testing.T) {
	build := func() []*value.Record {
		return []*value.Record{
			value.Pairs("name", "null", "v", nil),
			value.Pairs("name", "two", "v", 2),
			value.NewRecord().Set("name", value.String("absent")),
			value.Pairs("name", "one", "v", 1),
		}
	}
	asc, err := Sort(build(), "v")
	require.NoError(t, err)
	require.Equal(t, []string{"one", "two", "null", "absent"}, names(asc))

	desc, err := Sort(build(), "v DESC")
	require.NoError(t, err)
	require.Equal(t, []string{"null", "absent", "two", "one"}, names(desc))
}

func TestSortInvalidSpecLeavesInput(t *testing.T) {
	recs := []*value.Record{value.Pairs("name", "b"), value.Pairs("name", "a")}
	_, err := Sort(recs, "name", "name sideways")
	require.ErrorIs(t, err, ErrInvalidSpec)
	require.Equal(t, []string{"b", "a"}, names(recs))

	_, err = ParseSpec("a b c")
	require.ErrorIs(t, err, ErrInvalidSpec)
}

func TestSortWithLocale(t *testing.T) {
	recs := []*value.Record{
		value.Pairs("name", "Zoe"),
		value.Pairs("name", "émile"),
		value.Pairs("name", "adam"),
	}
	_, err := New(WithLocale(language.French)).Sort(recs, "name")
	require.NoError(t, err)
	require.Equal(t, []string{"adam", "émile", "Zoe"}, names(recs))

	_, err = Sort(recs, "name")
	require.NoError(t, err)
	require.Equal(t, []string{"Zoe", "adam", "émile"}, names(recs))
}
