package scanner_test

import (
	"testing"

	"github.com/mna/wisp/lang/scanner"
	"github.com/mna/wisp/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	s := scanner.New(src)
	var toks []token.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks := scanAll(t, `+= -= **= ** ! != == <= >= .. .`)
	kinds := make([]token.Kind, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	require.Equal(t, []token.Kind{
		token.PLUS_EQ, token.MINUS_EQ, token.STARSTAR_EQ, token.STARSTAR,
		token.BANG, token.BANG_EQ, token.EQ_EQ, token.LT_EQ, token.GT_EQ,
		token.DOUBLEDOT, token.DOT, token.EOF,
	}, kinds)
}

func TestScanKeywordsVsIdentifiers(t *testing.T) {
	toks := scanAll(t, "class fun classify")
	require.Equal(t, token.CLASS, toks[0].Kind)
	require.Equal(t, token.FUN, toks[1].Kind)
	require.Equal(t, token.IDENT, toks[2].Kind)
	require.Equal(t, "classify", toks[2].Lexeme)
}

func TestScanNumbers(t *testing.T) {
	toks := scanAll(t, "123 45.67 1e3 1.5e-2")
	for _, tok := range toks[:4] {
		require.Equal(t, token.NUMBER, tok.Kind)
	}
	require.Equal(t, "1.5e-2", toks[3].Lexeme)
}

func TestScanStringWithEscapes(t *testing.T) {
	toks := scanAll(t, `"hello\nworld"`)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, "hello\nworld", toks[0].Lexeme)
}

func TestScanUnterminatedString(t *testing.T) {
	toks := scanAll(t, `"hello`)
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
	require.Contains(t, toks[0].Lexeme, "unterminated string")
}

func TestScanLineTracking(t *testing.T) {
	toks := scanAll(t, "var a = 1;\nvar b = 2;")
	require.Equal(t, 1, toks[0].Line)
	// find the second "var"
	var secondVarLine int
	count := 0
	for _, tok := range toks {
		if tok.Kind == token.VAR {
			count++
			if count == 2 {
				secondVarLine = tok.Line
			}
		}
	}
	require.Equal(t, 2, secondVarLine)
}

func TestSkipComments(t *testing.T) {
	toks := scanAll(t, "// comment\nvar /* inline */ a = 1;")
	require.Equal(t, token.VAR, toks[0].Kind)
}
