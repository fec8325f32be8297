package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosine(t *testing.T) {
	t.Run("identical strings", func(t *testing.T) {
		assert.InDelta(t, 1.0, Cosine("123 Main Street", "123 Main Street"), 1e-9)
	})

	t.Run("case and punctuation insensitive", func(t *testing.T) {
		assert.InDelta(t, 1.0, Cosine("Main Street, Suite 4", "main street suite 4"), 1e-9)
	})

	t.Run("disjoint strings", func(t *testing.T) {
		assert.Equal(t, 0.0, Cosine("alpha beta", "gamma delta"))
	})

	t.Run("both empty", func(t *testing.T) {
		assert.Equal(t, 1.0, Cosine("", ""))
	})

	t.Run("one empty", func(t *testing.T) {
		assert.Equal(t, 0.0, Cosine("something", ""))
	})

	t.Run("partial overlap stays in range", func(t *testing.T) {
		got := Cosine("123 Main Street", "123 Main Ave")
		assert.Greater(t, got, 0.0)
		assert.Less(t, got, 1.0)
	})
}

func TestJaroWinkler(t *testing.T) {
	t.Run("identical strings", func(t *testing.T) {
		assert.InDelta(t, 1.0, JaroWinkler("MARTHA", "MARTHA"), 1e-9)
	})

	t.Run("known value", func(t *testing.T) {
		// Classic reference pair: Jaro 0.944, Winkler bonus on 3-char prefix.
		assert.InDelta(t, 0.9611, JaroWinkler("MARTHA", "MARHTA"), 0.001)
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.InDelta(t, JaroWinkler("abc-123", "ABC-123"), 1.0, 1e-9)
	})

	t.Run("no common characters", func(t *testing.T) {
		assert.Equal(t, 0.0, JaroWinkler("abc", "xyz"))
	})

	t.Run("prefix bonus increases score", func(t *testing.T) {
		// Same edit, but one pair shares a prefix.
		assert.Greater(t, JaroWinkler("prefix1", "prefix2"), JaroWinkler("1prefix", "2prefix"))
	})
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"identical", "identical", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Levenshtein(tc.a, tc.b), "Levenshtein(%q, %q)", tc.a, tc.b)
	}
}

func TestLevenshteinSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, LevenshteinSimilarity("", ""))
	assert.Equal(t, 0.0, LevenshteinSimilarity("abcd", ""))
	assert.InDelta(t, 1.0-3.0/7.0, LevenshteinSimilarity("kitten", "sitting"), 1e-9)
}
