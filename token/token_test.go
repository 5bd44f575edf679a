package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupKeyword_Recognised(t *testing.T) {
	cases := map[string]Kind{
		"return": RETURN,
		"if":     IF,
		"else":   ELSE,
		"while":  WHILE,
		"for":    FOR,
	}
	for word, want := range cases {
		kind, ok := LookupKeyword(word)
		assert.True(t, ok, "expected %q to be a keyword", word)
		assert.Equal(t, want, kind)
	}
}

func TestLookupKeyword_NotAKeyword(t *testing.T) {
	for _, word := range []string{"returns", "iffy", "forever", "whilex", "x", ""} {
		_, ok := LookupKeyword(word)
		assert.False(t, ok, "did not expect %q to be a keyword", word)
	}
}
