package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "JOSE MUNOZ", Fold("José Muñoz"))
	assert.Equal(t, "SMITH", Fold("smith"))
}

func TestKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"punctuation removed", "Smith, John Q.", "SMITH JOHN Q"},
		{"ampersand spelled out", "Smith & Jones", "SMITH AND JONES"},
		{"whitespace collapsed", "  A   B\tC ", "A B C"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.input))
		})
	}
}

func TestTokens_DropsStopWords(t *testing.T) {
	assert.Equal(t, []string{"ESTATE", "JOHN", "DOE"}, Tokens("The Estate of John Doe"))
}

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "a b", CollapseSpace("  a \n b "))
}
