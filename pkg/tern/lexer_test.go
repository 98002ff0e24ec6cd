package tern

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func lexKinds(t *testing.T, src string) []TokenKind {
	t.Helper()
	var kinds []TokenKind
	for tok, err := range Tokenize("test.tern", src) {
		require.NoError(t, err)
		kinds = append(kinds, tok.Kind)
	}
	return kinds
}

func TestLexKinds(t *testing.T) {
	for _, tt := range []struct {
		name string
		src  string
		want []TokenKind
	}{
		{
			name: "keywords and identifiers",
			src:  "func fn let var mut type struct enum match if else while init as foo Bar",
			want: []TokenKind{FUNC, FN, LET, VAR, MUT, TYPE, STRUCT, ENUM, MATCH, IF, ELSE, WHILE, INIT, AS, IDENT, UIDENT, SEMI, EOF},
		},
		{
			name: "operators",
			src:  "+ - * / % == != < > <= >= && || ! = | =>",
			want: []TokenKind{PLUS, MINUS, STAR, SLASH, PERCENT, EQ, NEQ, LT, GT, LTE, GTE, AND, OR, BANG, ASSIGN, PIPE, ARROW, EOF},
		},
		{
			name: "literals",
			src:  `1 2.5 "s" 'c' true false`,
			want: []TokenKind{INT, FLOAT, STRING, CHAR, TRUE, FALSE, SEMI, EOF},
		},
		{
			name: "newline ends a statement after a value",
			src:  "x\ny = 1\n",
			want: []TokenKind{IDENT, SEMI, IDENT, ASSIGN, INT, SEMI, EOF},
		},
		{
			name: "newline after an operator continues the line",
			src:  "x +\ny",
			want: []TokenKind{IDENT, PLUS, IDENT, SEMI, EOF},
		},
		{
			name: "leading newlines are skipped",
			src:  "\n\n// comment\nx",
			want: []TokenKind{IDENT, SEMI, EOF},
		},
		{
			name: "tuple indices after a dot are integers",
			src:  "t.0.1",
			want: []TokenKind{IDENT, DOT, INT, DOT, INT, SEMI, EOF},
		},
		{
			name: "method call on an integer",
			src:  "3.twice()",
			want: []TokenKind{INT, DOT, IDENT, LPAREN, RPAREN, SEMI, EOF},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, lexKinds(t, tt.src))
		})
	}
}

func TestLexPositions(t *testing.T) {
	var toks []Token
	for tok, err := range Tokenize("test.tern", "let x = 1\n  y") {
		require.NoError(t, err)
		toks = append(toks, tok)
	}
	require.Equal(t, SourcePosition{Line: 1, Column: 1}, toks[0].Pos)
	require.Equal(t, SourcePosition{Line: 1, Column: 5}, toks[1].Pos)
	require.Equal(t, "x", toks[1].Lexeme)
	require.Equal(t, SourcePosition{Line: 2, Column: 3}, toks[5].Pos)
	require.Equal(t, "y", toks[5].Lexeme)
}

func TestLexFloats(t *testing.T) {
	for _, src := range []string{"1.5", "1e3", "2.5e-3", "10E+2"} {
		toks := []Token{}
		for tok, err := range Tokenize("test.tern", src) {
			require.NoError(t, err)
			toks = append(toks, tok)
		}
		require.Equal(t, FLOAT, toks[0].Kind, src)
		require.Equal(t, src, toks[0].Lexeme)
	}
}

func TestLexErrors(t *testing.T) {
	for _, tt := range []struct {
		src  string
		msg  string
		line int
	}{
		{src: "x @ y", msg: "unexpected character '@'", line: 1},
		{src: "a\n  &b", msg: "unexpected character '&'", line: 2},
		{src: `"abc`, msg: "unterminated literal", line: 1},
		{src: "'a\n'", msg: "unterminated literal", line: 1},
		{src: "x = \"a\\q\"", msg: "invalid escape sequence", line: 1},
	} {
		var lexErr error
		for _, err := range Tokenize("test.tern", tt.src) {
			if err != nil {
				lexErr = err
			}
		}
		var le *LexError
		require.ErrorAs(t, lexErr, &le, tt.src)
		require.Equal(t, tt.msg, le.Error())
		require.Equal(t, tt.line, le.Pos.Line)
	}
}

func TestTokenizeRestarts(t *testing.T) {
	seq := Tokenize("test.tern", "a b c")
	var first, second []string
	for tok := range seq {
		first = append(first, tok.Lexeme)
		if len(first) == 2 {
			break
		}
	}
	for tok := range seq {
		second = append(second, tok.Lexeme)
	}
	require.Equal(t, []string{"a", "b"}, first)
	require.Equal(t, []string{"a", "b", "c", "\n", ""}, second)
}
