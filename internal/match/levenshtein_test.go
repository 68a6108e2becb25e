package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"both empty is a trivial perfect match", "", "", 100},
		{"identical", "jcperez", "jcperez", 100},
		{"empty vs non-empty", "", "abc", 0},
		{"completely different same length", "abc", "xyz", 0},
		{"kitten sitting", "kitten", "sitting", (7.0 - 3.0) / 7.0 * 100},
		{"two insertions", "jcperez", "jcperez99", (9.0 - 2.0) / 9.0 * 100},
		{"one substitution on runes", "José", "Jose", 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"jcperez", "jcperez99"},
		{"", "abc"},
		{"kitten", "sitting"},
		{"maría", "maria"},
		{"987654321", "87654321"},
	}
	for _, p := range pairs {
		assert.InDelta(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), 1e-9,
			"similarity(%q,%q) must be symmetric", p[0], p[1])
	}
}

func TestSimilarity_Bounded(t *testing.T) {
	pairs := [][2]string{
		{"", ""},
		{"a", ""},
		{"short", "a much longer string entirely"},
		{"ÁÉÍÓÚ", "aeiou"},
	}
	for _, p := range pairs {
		s := Similarity(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 100.0)
	}
}
