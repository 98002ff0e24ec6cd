package tern

import (
	"iter"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Lexer turns source text into tokens on demand.
type Lexer struct {
	filename string
	src      string
	off      int
	line     int
	col      int

	// last is the kind of the previously emitted token, used for implicit
	// semicolons and for lexing tuple indices after a dot.
	last    TokenKind
	emitted bool
}

// NewLexer creates a lexer positioned at the start of src.
func NewLexer(filename, src string) *Lexer {
	return &Lexer{
		filename: filename,
		src:      src,
		line:     1,
		col:      1,
	}
}

// Tokenize lexes src lazily. Every range over the returned sequence starts
// over from the beginning. The sequence stops after EOF or the first error.
func Tokenize(filename, src string) iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		lex := NewLexer(filename, src)
		for {
			tok, err := lex.Next()
			if err != nil {
				yield(tok, err)
				return
			}
			if !yield(tok, nil) || tok.Kind == EOF {
				return
			}
		}
	}
}

// Next returns the next token. After EOF it keeps returning EOF.
func (l *Lexer) Next() (Token, error) {
	tok, err := l.next()
	if err != nil {
		return tok, err
	}
	l.last = tok.Kind
	l.emitted = true
	return tok, nil
}

func (l *Lexer) pos() SourcePosition {
	return SourcePosition{Line: l.line, Column: l.col}
}

func (l *Lexer) peek() rune {
	if l.off >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.off:])
	return r
}

func (l *Lexer) peekAt(n int) rune {
	off := l.off
	for i := 0; i < n; i++ {
		if off >= len(l.src) {
			return 0
		}
		_, size := utf8.DecodeRuneInString(l.src[off:])
		off += size
	}
	if off >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[off:])
	return r
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.off:])
	l.off += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// endsStatement reports whether a newline after the last token terminates a
// statement.
func (l *Lexer) endsStatement() bool {
	if !l.emitted {
		return false
	}
	switch l.last {
	case IDENT, UIDENT, INT, FLOAT, STRING, CHAR, TRUE, FALSE,
		RPAREN, RBRACKET, RBRACE, BREAK, CONTINUE, RETURN:
		return true
	}
	return false
}

func (l *Lexer) next() (Token, error) {
	for {
		if l.off >= len(l.src) {
			if l.endsStatement() {
				return Token{Kind: SEMI, Lexeme: "\n", Pos: l.pos()}, nil
			}
			return Token{Kind: EOF, Pos: l.pos()}, nil
		}
		r := l.peek()
		switch {
		case r == '\n':
			start := l.pos()
			l.advance()
			if l.endsStatement() {
				return Token{Kind: SEMI, Lexeme: "\n", Pos: start}, nil
			}
		case r == ' ' || r == '\t' || r == '\r':
			l.advance()
		case r == '/' && l.peekAt(1) == '/':
			for l.off < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
		default:
			return l.lexToken()
		}
	}
}

func (l *Lexer) lexToken() (Token, error) {
	start := l.pos()
	startOff := l.off
	r := l.peek()

	tok := func(kind TokenKind) (Token, error) {
		return Token{Kind: kind, Lexeme: l.src[startOff:l.off], Pos: start}, nil
	}

	switch {
	case r == '_' || unicode.IsLetter(r):
		for l.off < len(l.src) {
			c := l.peek()
			if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
				break
			}
			l.advance()
		}
		word := l.src[startOff:l.off]
		if kw, ok := keywords[word]; ok {
			return tok(kw)
		}
		if unicode.IsUpper(r) {
			return tok(UIDENT)
		}
		return tok(IDENT)
	case unicode.IsDigit(r):
		return l.lexNumber(start, startOff)
	case r == '"':
		return l.lexQuoted(start, startOff, '"', STRING)
	case r == '\'':
		return l.lexQuoted(start, startOff, '\'', CHAR)
	}

	l.advance()
	two := func(next rune, long, short TokenKind) (Token, error) {
		if l.peek() == next {
			l.advance()
			return tok(long)
		}
		return tok(short)
	}

	switch r {
	case '+':
		return tok(PLUS)
	case '-':
		return tok(MINUS)
	case '*':
		return tok(STAR)
	case '/':
		return tok(SLASH)
	case '%':
		return tok(PERCENT)
	case '(':
		return tok(LPAREN)
	case ')':
		return tok(RPAREN)
	case '[':
		return tok(LBRACKET)
	case ']':
		return tok(RBRACKET)
	case '{':
		return tok(LBRACE)
	case '}':
		return tok(RBRACE)
	case ',':
		return tok(COMMA)
	case ':':
		return tok(COLON)
	case ';':
		return tok(SEMI)
	case '.':
		return tok(DOT)
	case '<':
		return two('=', LTE, LT)
	case '>':
		return two('=', GTE, GT)
	case '!':
		return two('=', NEQ, BANG)
	case '=':
		switch l.peek() {
		case '=':
			l.advance()
			return tok(EQ)
		case '>':
			l.advance()
			return tok(ARROW)
		}
		return tok(ASSIGN)
	case '&':
		if l.peek() == '&' {
			l.advance()
			return tok(AND)
		}
	case '|':
		return two('|', OR, PIPE)
	}

	return Token{Pos: start}, &LexError{
		Pos:  start,
		Char: r,
	}
}

func (l *Lexer) lexNumber(start SourcePosition, startOff int) (Token, error) {
	for unicode.IsDigit(l.peek()) {
		l.advance()
	}
	kind := INT
	// a number right after a dot is a tuple index, so t.0.1 is two selections
	if l.last != DOT || !l.emitted {
		if l.peek() == '.' && unicode.IsDigit(l.peekAt(1)) {
			kind = FLOAT
			l.advance()
			for unicode.IsDigit(l.peek()) {
				l.advance()
			}
		}
		if c := l.peek(); c == 'e' || c == 'E' {
			n := 1
			if s := l.peekAt(1); s == '+' || s == '-' {
				n = 2
			}
			if unicode.IsDigit(l.peekAt(n)) {
				kind = FLOAT
				for i := 0; i < n; i++ {
					l.advance()
				}
				for unicode.IsDigit(l.peek()) {
					l.advance()
				}
			}
		}
	}
	return Token{Kind: kind, Lexeme: l.src[startOff:l.off], Pos: start}, nil
}

func (l *Lexer) lexQuoted(start SourcePosition, startOff int, quote rune, kind TokenKind) (Token, error) {
	l.advance()
	for {
		if l.off >= len(l.src) || l.peek() == '\n' {
			return Token{Pos: start}, &LexError{Pos: l.pos(), Char: quote, Msg: "unterminated literal"}
		}
		c := l.advance()
		if c == '\\' {
			if l.off >= len(l.src) {
				continue
			}
			l.advance()
			continue
		}
		if c == quote {
			break
		}
	}
	lexeme := l.src[startOff:l.off]
	if _, err := unquote(lexeme, kind); err != nil {
		return Token{Pos: start}, &LexError{Pos: start, Char: quote, Msg: "invalid escape sequence"}
	}
	return Token{Kind: kind, Lexeme: lexeme, Pos: start}, nil
}

// unquote decodes a string or char literal using Go escape rules.
func unquote(lexeme string, kind TokenKind) (string, error) {
	if kind == CHAR {
		r, _, tail, err := strconv.UnquoteChar(lexeme[1:len(lexeme)-1], '\'')
		if err != nil {
			return "", err
		}
		if tail != "" {
			return "", strconv.ErrSyntax
		}
		return string(r), nil
	}
	return strconv.Unquote(lexeme)
}
