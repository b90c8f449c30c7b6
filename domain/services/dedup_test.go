package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDuplicateFilter_Matches(t *testing.T) {
	filter := NewDuplicateFilter(nil)

	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{
			name: "exact match",
			a:    "User struggles with addition",
			b:    "User struggles with addition",
			want: true,
		},
		{
			name: "case insensitive exact match",
			a:    "Addition Practice",
			b:    "addition practice",
			want: true,
		},
		{
			name: "exact match with surrounding whitespace",
			a:    "  Carry operation  ",
			b:    "Carry operation",
			want: true,
		},
		{
			name: "high token overlap",
			a:    "User struggles with addition",
			b:    "User struggles to understand addition process",
			want: true,
		},
		{
			name: "unrelated labels",
			a:    "Addition is hard",
			b:    "Photosynthesis overview",
			want: false,
		},
		{
			name: "no qualifying tokens never fuzzy matches",
			a:    "Addition is hard",
			b:    "xyz",
			want: false,
		},
		{
			name: "both labels below token length",
			a:    "a b c",
			b:    "a b d",
			want: false,
		},
		{
			name: "overlap at threshold is not a duplicate",
			a:    "alpha bravo charlie delta echo",
			b:    "alpha bravo charlie zulu yankee",
			want: false, // 3/5 = 0.6, threshold is strict
		},
		{
			name: "punctuation stripped before comparison",
			a:    "User struggles with addition!",
			b:    "user struggles with (addition)",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filter.Matches(tt.a, tt.b))
		})
	}
}

func TestDuplicateFilter_Similarity(t *testing.T) {
	filter := NewDuplicateFilter(nil)

	t.Run("overlap against smaller token set", func(t *testing.T) {
		// A: {user, struggles, with, addition} B: {user, struggles,
		// understand, addition, process} overlap 3, min 4.
		got := filter.Similarity("User struggles with addition", "User struggles to understand addition process")
		assert.InDelta(t, 0.75, got, 1e-9)
	})

	t.Run("empty token set yields zero", func(t *testing.T) {
		assert.Zero(t, filter.Similarity("is a to", "User struggles with addition"))
		assert.Zero(t, filter.Similarity("", ""))
	})

	t.Run("identical sets yield one", func(t *testing.T) {
		assert.InDelta(t, 1.0, filter.Similarity("carry operation", "operation carry"), 1e-9)
	})
}

func TestDuplicateFilter_IsDuplicate(t *testing.T) {
	filter := NewDuplicateFilter(nil)
	existing := []string{"Addition practice", "Carry operation", "User struggles with addition"}

	assert.True(t, filter.IsDuplicate("addition practice", existing))
	assert.True(t, filter.IsDuplicate("User struggles to understand addition process", existing))
	assert.False(t, filter.IsDuplicate("Subtraction drills", existing))
	assert.False(t, filter.IsDuplicate("anything", nil))
}
