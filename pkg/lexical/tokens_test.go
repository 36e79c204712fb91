package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"drops stop words", "Apa kebijakan cuti tahunan?", []string{"kebijakan", "cuti", "tahunan"}},
		{"keeps short numbers", "cuti 12 hari", []string{"cuti", "12", "hari"}},
		{"dedupes", "cost cost COST", []string{"cost"}},
		{"english", "What is the reimbursement limit?", []string{"reimbursement", "limit"}},
		{"empty", "   ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Keywords(tt.input))
		})
	}
}

func TestVocabularyIntersect(t *testing.T) {
	a := NewVocabulary("annual leave policy twelve days")
	b := NewVocabulary("the leave policy is generous")
	assert.Equal(t, 2, a.Intersect(b))
	assert.Equal(t, 2, b.Intersect(a))
	assert.True(t, a.Contains("leave"))
	assert.Equal(t, []string{"annual", "days", "leave", "policy", "twelve"}, a.Sorted())
}

func TestOverlap(t *testing.T) {
	assert.Equal(t, 0, Overlap("hello there", "goodbye friend"))
	assert.Equal(t, 1, Overlap("kantor pusat jakarta", "alamat kantor"))
}

func TestHelpers(t *testing.T) {
	assert.True(t, HasDigit("tahun 2024"))
	assert.False(t, HasDigit("tahun ini"))
	assert.Equal(t, 3, WordCount(" a  b c "))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.True(t, IsStopWord("The"))
}

func TestCollapseElongation(t *testing.T) {
	assert.Equal(t, "okay", CollapseElongation("okayyy", 3))
	assert.Equal(t, "bennar", CollapseElongation("bennarrr", 3))
	assert.Equal(t, "benar", CollapseElongation("bennarrr", 2))
	assert.Equal(t, "2000", CollapseElongation("2000", 2))
	assert.Equal(t, "ya", CollapseElongation("yaaa", 1))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "terima kasih", Normalize("  Terima   kasih!! "))
}

func TestContainsAnyFold(t *testing.T) {
	assert.True(t, ContainsAnyFold(`Jika ya, BALAS "Benar".`, []string{`balas "benar"`}))
	assert.False(t, ContainsAnyFold("tidak ada", []string{"", "mohon"}))
}
