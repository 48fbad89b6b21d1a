package query

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gridline/internal/record"
)

func fixtureRecords() []record.Record {
	return []record.Record{
		{ID: 1, Name: "Alice Johnson", Age: 34, Country: "Norway", Date: "12/03/2021"},
		{ID: 2, Name: "Bob Stone", Age: 51, Country: "Chile", Date: "01/07/2022"},
		{ID: 3, Name: "Carla Møller", Age: 28, Country: "Denmark", Date: "23/11/2020"},
		{ID: 4, Name: "Dmitri Alov", Age: 45, Country: "Georgia", Date: "05/05/2023"},
	}
}

func ids(records []record.Record) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestFilter_EmptyTermEqualsCanonical(t *testing.T) {
	canonical := fixtureRecords()
	got := Filter(canonical, "")

	assert.Equal(t, ids(canonical), ids(got), "empty term yields the full list in order")

	// The projection must be a copy, never an alias of the canonical list.
	got[0].Name = "mutated"
	assert.Equal(t, "Alice Johnson", canonical[0].Name)
}

func TestFilter_SubstringAcrossFields(t *testing.T) {
	records := fixtureRecords()

	tests := []struct {
		term string
		want []int
	}{
		{"alice", []int{1}},        // name, case-insensitive
		{"ALOV", []int{4}},         // name, upper input
		{"5", []int{2, 4}},         // decimal age substring: 51, 45
		{"chile", []int{2}},        // country
		{"2021", []int{1}},         // date string
		{"o", []int{1, 2, 4}},      // broad substring ("ø" is not "o")
		{"zzz", nil},               // no matches
		{"  alice  ", []int{1}},    // trimmed before matching
		{"møller", []int{3}},       // folded beyond ASCII
	}

	for _, tt := range tests {
		got := Filter(records, tt.term)
		if tt.want == nil {
			assert.Empty(t, got, "term %q", tt.term)
			continue
		}
		assert.Equal(t, tt.want, ids(got), "term %q", tt.term)
	}
}

func TestFilter_Idempotent(t *testing.T) {
	records := fixtureRecords()
	once := Filter(records, "o")
	twice := Filter(once, "o")
	assert.Equal(t, ids(once), ids(twice), "filtering a filtered list with the same term is stable")
}

func TestFilter_PreservesRelativeOrder(t *testing.T) {
	records := fixtureRecords()
	got := Filter(records, "a")
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].ID, got[i].ID)
	}
}

func TestSuggest_RanksNearMisses(t *testing.T) {
	records := fixtureRecords()

	got := Suggest(records, "alics", 3)
	require.NotEmpty(t, got, "close typo should produce a suggestion")
	assert.Equal(t, "Alice Johnson", got[0])

	assert.Nil(t, Suggest(records, "", 3), "empty term yields no suggestions")
	assert.Nil(t, Suggest(records, "alics", 0))
}

func TestSuggest_Deterministic(t *testing.T) {
	records := fixtureRecords()
	a := Suggest(records, "al", 5)
	b := Suggest(records, "al", 5)
	assert.Equal(t, a, b)
}

func TestSuggest_CapsAndDeduplicates(t *testing.T) {
	records := []record.Record{
		{ID: 1, Name: "Anna"},
		{ID: 2, Name: "Anna"},
		{ID: 3, Name: "Annabel"},
		{ID: 4, Name: "Anneli"},
	}
	got := Suggest(records, "ann", 2)
	require.Len(t, got, 2)
	assert.NotEqual(t, got[0], got[1])
}

func BenchmarkFilter(b *testing.B) {
	records := make([]record.Record, 0, 1000)
	for i := 0; i < 1000; i++ {
		records = append(records, record.Record{
			ID:      i + 1,
			Name:    fmt.Sprintf("Person %d", i),
			Age:     20 + i%50,
			Country: "Norway",
		})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Filter(records, "person 5")
	}
}
