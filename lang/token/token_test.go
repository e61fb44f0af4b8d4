package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CabooseLang/Caboose/lang/token"
)

func TestLookupIdentRecognizesKeywords(t *testing.T) {
	assert.Equal(t, token.CLASS, token.LookupIdent("class"))
	assert.Equal(t, token.RETURN, token.LookupIdent("return"))
	assert.Equal(t, token.IDENT, token.LookupIdent("returns"))
}

func TestLookupIdentShortIdentifiersNeverKeywords(t *testing.T) {
	assert.Equal(t, token.IDENT, token.LookupIdent("a"))
	assert.Equal(t, token.IDENT, token.LookupIdent(""))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "(", token.LPAREN.String())
	assert.Equal(t, "and", token.AND.String())
	assert.Equal(t, "unknown token", token.Kind(255).String())
}
