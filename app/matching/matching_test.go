package matching

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type record struct {
	id        int
	fragments []string
}

func (r record) SearchFragments() []string { return r.fragments }

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"ruiz", "vip"}, Tokenize("  Ruiz   VIP "))
	assert.Equal(t, []string{"rent", "2", "bed"}, Tokenize("rent,2\tbed"))
	assert.Equal(t, []string{"a", "b"}, Tokenize("a,,, ,b"))
	assert.Empty(t, Tokenize(""))
	assert.NotNil(t, Tokenize("   "))
}

func TestHaystackSkipsEmptyFragments(t *testing.T) {
	assert.Equal(t, "ana ruiz vip", Haystack([]string{"Ana", "", "Ruiz", "", "VIP"}))
}

func TestMatchesIsSubstringConjunction(t *testing.T) {
	hay := "12 oak st rent rental for rent 2 2 bed 2 beds"
	assert.True(t, Matches([]string{"ent"}, hay))
	assert.True(t, Matches([]string{"oak", "beds"}, hay))
	assert.False(t, Matches([]string{"oak", "sale"}, hay))
	assert.True(t, Matches(nil, hay))
}

func TestFragmentHelpers(t *testing.T) {
	two := 2.0
	half := 1.5
	big := 1800.0
	name := "Ana"

	assert.Equal(t, "", Text(nil))
	assert.Equal(t, "Ana", Text(&name))
	assert.Equal(t, "", Number(nil))
	assert.Equal(t, "1800", Number(&big))
	assert.Equal(t, []string{"2", "2 bed", "2 beds"}, Count(&two, "bed"))
	assert.Equal(t, []string{"1.5", "1.5 bath", "1.5 baths"}, Count(&half, "bath"))
	assert.Nil(t, Count(nil, "bed"))
	assert.Equal(t, "", Day(nil))
}

func randomRecords(r *rand.Rand, words []string, n int) []record {
	out := make([]record, n)
	for i := range out {
		k := 1 + r.Intn(4)
		frags := make([]string, k)
		for j := range frags {
			frags[j] = words[r.Intn(len(words))]
		}
		out[i] = record{id: i, fragments: frags}
	}
	return out
}

func TestFilterProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	words := []string{"ana", "ruiz", "vip", "newsletter", "rent", "for sale", "2 bed", "moved_in", "1800", "victoria"}
	tokens := []string{"an", "ruiz", "vip", "ent", "sale", "2", "bed", "moved", "_in", "18", "oria", "zz"}
	items := randomRecords(r, words, 200)

	for i := 0; i < 300; i++ {
		a := tokens[r.Intn(len(tokens))]
		b := tokens[r.Intn(len(tokens))]

		both := Filter(items, []string{a, b})
		onlyA := Filter(items, []string{a})

		for _, it := range items {
			hay := Haystack(it.fragments)
			want := strings.Contains(hay, a) && strings.Contains(hay, b)
			assert.Equal(t, want, Match([]string{a, b}, it), "%q %q on %q", a, b, hay)
		}

		// idempotence
		assert.Equal(t, both, Filter(both, []string{a, b}))
		// a conjunction never grows the result
		assert.LessOrEqual(t, len(both), len(onlyA))
	}

	// empty query keeps everything, in order
	assert.Equal(t, items, Filter(items, Tokenize(" ")))
}

func TestStoreHelpers(t *testing.T) {
	assert.True(t, isDay("2024-02-29"))
	assert.False(t, isDay("2024-2-29"))
	assert.False(t, isDay("2024-0a-29"))
	assert.True(t, isDatePart("-02-"))
	assert.False(t, isDatePart("02x"))
	assert.Equal(t, "1800", stripNonDigits("$1,800"))

	values := map[string][]string{"RENT": {"rent", "rental", "for rent"}, "SALE": {"sale", "for sale", "buy"}}
	assert.ElementsMatch(t, []string{"RENT", "SALE"}, enumValuesContaining(values, "for"))
	assert.Equal(t, []string{"SALE"}, enumValuesContaining(values, "uy"))
	assert.Empty(t, enumValuesContaining(values, "zz"))

	clause, args := tokenClause("zz", []Column{EnumCol("for_type", values)}, "TEXT")
	assert.Empty(t, clause)
	assert.Nil(t, args)
}
