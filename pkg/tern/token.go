package tern

import "fmt"

// TokenKind identifies the lexical class of a token.
type TokenKind int

const (
	EOF TokenKind = iota

	IDENT  // lower-case identifier: variables, functions, types
	UIDENT // capitalized identifier: enum constructors
	INT
	FLOAT
	STRING
	CHAR

	// Keywords
	FUNC
	FN
	LET
	VAR
	MUT
	TYPE
	STRUCT
	ENUM
	MATCH
	IF
	ELSE
	WHILE
	BREAK
	CONTINUE
	RETURN
	INIT
	AS
	TRUE
	FALSE

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	EQ  // ==
	NEQ // !=
	LT
	GT
	LTE
	GTE
	AND // &&
	OR  // ||
	BANG
	ASSIGN // =
	PIPE   // |
	ARROW  // =>

	// Delimiters
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	LBRACE
	RBRACE
	COMMA
	COLON
	SEMI
	DOT
)

var tokenNames = map[TokenKind]string{
	EOF:      "end of file",
	IDENT:    "identifier",
	UIDENT:   "constructor name",
	INT:      "integer",
	FLOAT:    "float",
	STRING:   "string",
	CHAR:     "char",
	PLUS:     "+",
	MINUS:    "-",
	STAR:     "*",
	SLASH:    "/",
	PERCENT:  "%",
	EQ:       "==",
	NEQ:      "!=",
	LT:       "<",
	GT:       ">",
	LTE:      "<=",
	GTE:      ">=",
	AND:      "&&",
	OR:       "||",
	BANG:     "!",
	ASSIGN:   "=",
	PIPE:     "|",
	ARROW:    "=>",
	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",
	LBRACE:   "{",
	RBRACE:   "}",
	COMMA:    ",",
	COLON:    ":",
	SEMI:     ";",
	DOT:      ".",
}

var keywords = map[string]TokenKind{
	"func":     FUNC,
	"fn":       FN,
	"let":      LET,
	"var":      VAR,
	"mut":      MUT,
	"type":     TYPE,
	"struct":   STRUCT,
	"enum":     ENUM,
	"match":    MATCH,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"break":    BREAK,
	"continue": CONTINUE,
	"return":   RETURN,
	"init":     INIT,
	"as":       AS,
	"true":     TRUE,
	"false":    FALSE,
}

func init() {
	for kw, kind := range keywords {
		tokenNames[kind] = kw
	}
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// Token is a single lexeme along with where it starts.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Pos    SourcePosition
}

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "end of file"
	case SEMI:
		if t.Lexeme == "\n" {
			return "newline"
		}
		return ";"
	case IDENT, UIDENT, INT, FLOAT:
		return t.Lexeme
	case STRING, CHAR:
		return t.Lexeme
	}
	return fmt.Sprintf("%q", t.Lexeme)
}
