package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stwalsh4118/landman/api/internal/models"
)

func TestIsBusinessName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"llc with dots", "Permian Holdings, L.L.C.", true},
		{"trust", "The Smith Family Trust", true},
		{"estate", "Estate of Mary Jones", true},
		{"county", "Reeves County", true},
		{"city of", "City of Midland", true},
		{"industry word", "Big Sky Royalty", true},
		{"single all caps token", "CHEVRON", true},
		{"short all caps token", "JOHN", false},
		{"individual", "John Q. Smith", false},
		{"individual all caps", "JOHN SMITH", false},
		{"trustee is not a trust", "John Smith Trustee", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBusinessName(tt.input))
		})
	}
}

func TestParseIndividual(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  models.ParsedName
	}{
		{
			name:  "first middle last",
			input: "John Quincy Adams",
			want:  models.ParsedName{First: "John", Middle: "Quincy", Last: "Adams", IsPerson: true},
		},
		{
			name:  "last comma first middle",
			input: "Adams, John Quincy",
			want:  models.ParsedName{First: "John", Middle: "Quincy", Last: "Adams", IsPerson: true},
		},
		{
			name:  "suffix and honorific",
			input: "Dr. Robert E. Lee Jr.",
			want:  models.ParsedName{First: "Robert", Middle: "E.", Last: "Lee", Suffix: "Jr.", IsPerson: true},
		},
		{
			name:  "suffix after comma",
			input: "Lee, Robert, III",
			want:  models.ParsedName{First: "Robert", Last: "Lee", Suffix: "III", IsPerson: true},
		},
		{
			name:  "two tokens",
			input: "Jane Doe",
			want:  models.ParsedName{First: "Jane", Last: "Doe", IsPerson: true},
		},
		{
			name:  "business is not decomposed",
			input: "Permian Minerals LLC",
			want:  models.ParsedName{},
		},
		{
			name:  "empty",
			input: "  ",
			want:  models.ParsedName{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractParser.ParseIndividual(tt.input))
		})
	}
}

func TestParseIndividual_SingleTokenPolicyPerCallSite(t *testing.T) {
	extract := ExtractParser.ParseIndividual("Cher")
	assert.Equal(t, models.ParsedName{First: "Cher", IsPerson: true}, extract)

	title := TitleParser.ParseIndividual("Cher")
	assert.Equal(t, models.ParsedName{Last: "Cher", IsPerson: true}, title)
}

func TestSplitMultipleNames(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"legal phrase is not split", "heirs and assigns of John Smith", []string{"heirs and assigns of John Smith"}},
		{"legal phrase with ampersand", "John Smith, husband & wife", []string{"John Smith, husband & wife"}},
		{"full names", "John Smith & Jane Smith", []string{"John Smith", "Jane Smith"}},
		{"shared surname", "John & Jane Smith", []string{"John Smith", "Jane Smith"}},
		{"and conjunction", "John and Jane Smith", []string{"John Smith", "Jane Smith"}},
		{"three parts", "John & Jane & Bob Smith", []string{"John Smith", "Jane Smith", "Bob Smith"}},
		{"business kept whole", "Smith & Jones Oil Company", []string{"Smith & Jones Oil Company"}},
		{"no conjunction", "John Smith", []string{"John Smith"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitMultipleNames(tt.input))
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"aka", "John Smith a/k/a Johnny Smith", "John Smith"},
		{"fka", "Mary Jones, f/k/a Mary Brown", "Mary Jones"},
		{"care of", "John Smith c/o First Bank", "John Smith"},
		{"trustee", "John Smith, Trustee of the Smith Trust", "John Smith"},
		{"individually and as trustee", "John Smith, Individually and as Trustee of the Smith Trust", "John Smith"},
		{"individually and as executor", "Jane Doe, Individually and as Executrix", "Jane Doe"},
		{"unknown heirs prefix", "Unknown Heirs of Robert Brown", "Robert Brown"},
		{"unknown heirs suffix", "Robert Brown, Unknown Heirs", "Robert Brown"},
		{"deceased", "Robert Brown, deceased", "Robert Brown"},
		{"deceased in parens mid string", "Robert Brown (deceased) Estate", "Robert Brown Estate"},
		{"nothing to strip", "Jane Doe", "Jane Doe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.input))
		})
	}
}
