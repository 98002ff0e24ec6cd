package tern

import (
	"iter"
	"strconv"
)

// Parse builds the syntax tree for a whole file from its tokens. It stops at
// the first lexical or syntax error.
func Parse(filename string, tokens iter.Seq2[Token, error]) (*File, error) {
	var toks []Token
	for tok, err := range tokens {
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			break
		}
	}
	if len(toks) == 0 || toks[len(toks)-1].Kind != EOF {
		toks = append(toks, Token{Kind: EOF})
	}
	p := &parser{filename: filename, toks: toks}
	return p.file()
}

// ParseSource lexes and parses source text.
func ParseSource(filename, src string) (*File, error) {
	return Parse(filename, Tokenize(filename, src))
}

type parser struct {
	filename string
	toks     []Token
	i        int

	// noStructLit is non-zero while parsing the head of an if, while or
	// match, where { starts the body.
	noStructLit int
}

// binding powers of the binary operators, loosest first
var binaryPrecedence = map[TokenKind]int{
	OR:      1,
	AND:     2,
	EQ:      3,
	NEQ:     3,
	LT:      4,
	GT:      4,
	LTE:     4,
	GTE:     4,
	PLUS:    5,
	MINUS:   5,
	STAR:    6,
	SLASH:   6,
	PERCENT: 6,
}

const unaryPrecedence = 7

func (p *parser) peek() Token {
	return p.toks[p.i]
}

func (p *parser) peekAt(n int) Token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}

func (p *parser) at(kinds ...TokenKind) bool {
	k := p.peek().Kind
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

func (p *parser) advance() Token {
	tok := p.toks[p.i]
	if tok.Kind != EOF {
		p.i++
	}
	return tok
}

func (p *parser) match(kind TokenKind) bool {
	if p.at(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(kind TokenKind) (Token, error) {
	if p.at(kind) {
		return p.advance(), nil
	}
	return Token{}, p.errorf(kind.String())
}

func (p *parser) errorf(expected string) error {
	tok := p.peek()
	return &ParseError{Pos: tok.Pos, Expected: expected, Found: tok.String()}
}

func (p *parser) loc(tok Token) *SourceLocation {
	return &SourceLocation{
		Filename: p.filename,
		Line:     tok.Pos.Line,
		Column:   tok.Pos.Column,
		Length:   max(1, len(tok.Lexeme)),
	}
}

// skipNewlines skips implicit semicolons, which are insignificant inside
// parentheses and brackets.
func (p *parser) skipNewlines() {
	for p.at(SEMI) && p.peek().Lexeme == "\n" {
		p.advance()
	}
}

func (p *parser) skipSemis() {
	for p.at(SEMI) {
		p.advance()
	}
}

// skipSeparators skips any run of ; and , between items in braces.
func (p *parser) skipSeparators() {
	for p.at(SEMI, COMMA) {
		p.advance()
	}
}

// endItem requires a separator or the closing brace after an item in a
// braced list.
func (p *parser) endItem() error {
	if p.at(RBRACE) {
		return nil
	}
	if !p.at(SEMI, COMMA) {
		return p.errorf("; or }")
	}
	p.skipSeparators()
	return nil
}

// list parses item { "," item } up to the closing token, allowing newlines
// and a trailing comma.
func (p *parser) list(closing TokenKind, item func() error) error {
	p.skipNewlines()
	for !p.at(closing) {
		if err := item(); err != nil {
			return err
		}
		p.skipNewlines()
		if !p.match(COMMA) {
			break
		}
		p.skipNewlines()
	}
	_, err := p.expect(closing)
	return err
}

func (p *parser) file() (*File, error) {
	file := &File{Filename: p.filename}
	for {
		p.skipSeparators()
		if p.at(EOF) {
			return file, nil
		}
		decl, err := p.decl()
		if err != nil {
			return nil, err
		}
		file.Decls = append(file.Decls, decl)
		if !p.at(EOF) && !p.at(SEMI) {
			return nil, p.errorf("end of declaration")
		}
	}
}

func (p *parser) decl() (Decl, error) {
	switch p.peek().Kind {
	case FUNC:
		return p.funcDecl(true)
	case TYPE:
		return p.typeDecl()
	case LET, VAR:
		return p.let()
	case INIT:
		tok := p.advance()
		body, err := p.block()
		if err != nil {
			return nil, err
		}
		return &InitDecl{Body: body, Loc: p.loc(tok)}, nil
	default:
		return nil, p.errorf("declaration")
	}
}

// funcDecl parses a named function. Top-level functions may be generic and
// must annotate their parameters.
func (p *parser) funcDecl(topLevel bool) (*FuncDecl, error) {
	tok := p.advance()
	name, err := p.bindingName("function name")
	if err != nil {
		return nil, err
	}
	decl := &FuncDecl{Name: name.Lexeme, Loc: p.loc(name)}
	if p.at(LBRACKET) {
		if !topLevel {
			return nil, p.errorf("(")
		}
		params, err := p.typeParams()
		if err != nil {
			return nil, err
		}
		decl.TypeParams = params
	}
	fn, err := p.funcRest(tok, topLevel)
	if err != nil {
		return nil, err
	}
	fn.Name = decl.Name
	decl.Fn = fn
	return decl, nil
}

// funcRest parses ( params ) [: type] block.
func (p *parser) funcRest(tok Token, annotated bool) (*FuncLit, error) {
	fn := &FuncLit{Loc: p.loc(tok)}
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	err := p.list(RPAREN, func() error {
		name, err := p.bindingName("parameter name")
		if err != nil {
			return err
		}
		param := &Param{Name: name.Lexeme, Loc: p.loc(name)}
		if p.match(COLON) {
			t, err := p.typeExpr()
			if err != nil {
				return err
			}
			param.Type = t
		} else if annotated {
			return p.errorf(":")
		}
		fn.Params = append(fn.Params, param)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if p.match(COLON) {
		ret, err := p.typeExpr()
		if err != nil {
			return nil, err
		}
		fn.Ret = ret
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

// bindingName accepts a lower-case name; capitalized names are reserved for
// constructors.
func (p *parser) bindingName(what string) (Token, error) {
	if !p.at(IDENT) {
		return Token{}, p.errorf(what)
	}
	return p.advance(), nil
}

func (p *parser) typeName(what string) (Token, error) {
	if !p.at(IDENT, UIDENT) {
		return Token{}, p.errorf(what)
	}
	return p.advance(), nil
}

func (p *parser) typeParams() ([]string, error) {
	p.advance()
	var names []string
	err := p.list(RBRACKET, func() error {
		name, err := p.typeName("type parameter")
		if err != nil {
			return err
		}
		names = append(names, name.Lexeme)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, p.errorf("type parameter")
	}
	return names, nil
}

func (p *parser) typeDecl() (*TypeDecl, error) {
	p.advance()
	name, err := p.typeName("type name")
	if err != nil {
		return nil, err
	}
	decl := &TypeDecl{Name: name.Lexeme, Loc: p.loc(name)}
	if p.at(LBRACKET) {
		params, err := p.typeParams()
		if err != nil {
			return nil, err
		}
		decl.Params = params
	}
	switch {
	case p.match(STRUCT):
		return decl, p.structBody(decl)
	case p.match(ENUM):
		decl.Enum = true
		return decl, p.enumBody(decl)
	default:
		return nil, p.errorf("struct or enum")
	}
}

func (p *parser) structBody(decl *TypeDecl) error {
	if _, err := p.expect(LBRACE); err != nil {
		return err
	}
	p.skipSeparators()
	for !p.match(RBRACE) {
		field := &FieldDecl{}
		if p.match(MUT) {
			field.Mutable = true
		}
		name, err := p.bindingName("field name")
		if err != nil {
			return err
		}
		field.Name, field.Loc = name.Lexeme, p.loc(name)
		if _, err := p.expect(COLON); err != nil {
			return err
		}
		if field.Type, err = p.typeExpr(); err != nil {
			return err
		}
		decl.Fields = append(decl.Fields, field)
		if err := p.endItem(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) enumBody(decl *TypeDecl) error {
	if _, err := p.expect(LBRACE); err != nil {
		return err
	}
	p.skipSeparators()
	for !p.match(RBRACE) {
		if !p.at(UIDENT) {
			return p.errorf("constructor name")
		}
		name := p.advance()
		variant := &Variant{Name: name.Lexeme, Loc: p.loc(name)}
		if p.match(LPAREN) {
			variant.Parens = true
			err := p.list(RPAREN, func() error {
				t, err := p.typeExpr()
				if err != nil {
					return err
				}
				variant.Params = append(variant.Params, t)
				return nil
			})
			if err != nil {
				return err
			}
		}
		decl.Variants = append(decl.Variants, variant)
		if err := p.endItem(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) let() (*Let, error) {
	tok := p.advance()
	let := &Let{Mutable: tok.Kind == VAR, Loc: p.loc(tok)}
	pat, err := p.pattern()
	if err != nil {
		return nil, err
	}
	let.Pattern = pat
	if p.match(COLON) {
		if let.Type, err = p.typeExpr(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(ASSIGN); err != nil {
		return nil, err
	}
	if let.Value, err = p.expr(); err != nil {
		return nil, err
	}
	return let, nil
}

func (p *parser) typeExpr() (TypeExpr, error) {
	tok := p.peek()
	switch tok.Kind {
	case IDENT, UIDENT:
		p.advance()
		named := &NamedTypeExpr{Name: tok.Lexeme, Loc: p.loc(tok)}
		if p.match(LBRACKET) {
			err := p.list(RBRACKET, func() error {
				arg, err := p.typeExpr()
				if err != nil {
					return err
				}
				named.Args = append(named.Args, arg)
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
		return named, nil
	case LPAREN:
		p.advance()
		var elems []TypeExpr
		err := p.list(RPAREN, func() error {
			t, err := p.typeExpr()
			if err != nil {
				return err
			}
			elems = append(elems, t)
			return nil
		})
		if err != nil {
			return nil, err
		}
		if len(elems) == 1 {
			return elems[0], nil
		}
		return &TupleTypeExpr{Elems: elems, Loc: p.loc(tok)}, nil
	case LBRACKET:
		p.advance()
		p.skipNewlines()
		elem, err := p.typeExpr()
		if err != nil {
			return nil, err
		}
		p.skipNewlines()
		if _, err := p.expect(RBRACKET); err != nil {
			return nil, err
		}
		return &ArrayTypeExpr{Elem: elem, Loc: p.loc(tok)}, nil
	case FN:
		p.advance()
		ft := &FuncTypeExpr{Loc: p.loc(tok)}
		if _, err := p.expect(LPAREN); err != nil {
			return nil, err
		}
		err := p.list(RPAREN, func() error {
			t, err := p.typeExpr()
			if err != nil {
				return err
			}
			ft.Params = append(ft.Params, t)
			return nil
		})
		if err != nil {
			return nil, err
		}
		if p.match(COLON) {
			if ft.Ret, err = p.typeExpr(); err != nil {
				return nil, err
			}
		}
		return ft, nil
	default:
		return nil, p.errorf("type")
	}
}

func (p *parser) block() (*Block, error) {
	open, err := p.expect(LBRACE)
	if err != nil {
		return nil, err
	}
	outer := p.noStructLit
	p.noStructLit = 0
	defer func() { p.noStructLit = outer }()

	block := &Block{Loc: p.loc(open)}
	p.skipSemis()
	for !p.match(RBRACE) {
		stmt, err := p.stmt()
		if err != nil {
			return nil, err
		}
		if !p.at(SEMI, RBRACE) {
			return nil, p.errorf("; or }")
		}
		p.skipSemis()
		// a trailing expression is the block's value
		if es, ok := stmt.(*ExprStmt); ok && p.match(RBRACE) {
			block.Result = es.Expr
			return block, nil
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	return block, nil
}

func (p *parser) stmt() (Stmt, error) {
	switch p.peek().Kind {
	case LET, VAR:
		return p.let()
	case FUNC:
		return p.funcDecl(false)
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.at(ASSIGN) {
		tok := p.advance()
		switch e.(type) {
		case *Identifier, *FieldAccess, *Index, *TupleIndex:
		default:
			return nil, &ParseError{Pos: tok.Pos, Expected: "assignable expression before =", Found: "="}
		}
		value, err := p.expr()
		if err != nil {
			return nil, err
		}
		return &Assign{Target: e, Value: value, Loc: p.loc(tok)}, nil
	}
	return &ExprStmt{Expr: e}, nil
}

func (p *parser) expr() (Expr, error) {
	return p.binary(1)
}

// binary parses operators binding at least as tightly as minPrec.
func (p *parser) binary(minPrec int) (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		prec, ok := binaryPrecedence[op.Kind]
		if !ok || prec < minPrec {
			return left, nil
		}
		p.advance()
		right, err := p.binary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op.Kind, Left: left, Right: right, Loc: p.loc(op)}
	}
}

func (p *parser) unary() (Expr, error) {
	if p.at(MINUS, BANG) {
		op := p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: op.Kind, Operand: operand, Loc: p.loc(op)}, nil
	}
	return p.postfix()
}

func (p *parser) postfix() (Expr, error) {
	e, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch tok := p.peek(); tok.Kind {
		case LPAREN:
			p.advance()
			args, err := p.args(RPAREN)
			if err != nil {
				return nil, err
			}
			e = &Call{Fn: e, Args: args, Loc: p.loc(tok)}
		case LBRACKET:
			p.advance()
			p.skipNewlines()
			idx, err := p.nested(p.expr)
			if err != nil {
				return nil, err
			}
			p.skipNewlines()
			if _, err := p.expect(RBRACKET); err != nil {
				return nil, err
			}
			e = &Index{Receiver: e, Index: idx, Loc: p.loc(tok)}
		case DOT:
			p.advance()
			switch name := p.peek(); name.Kind {
			case INT:
				p.advance()
				n, err := strconv.Atoi(name.Lexeme)
				if err != nil {
					return nil, &ParseError{Pos: name.Pos, Expected: "tuple index", Found: name.Lexeme}
				}
				e = &TupleIndex{Receiver: e, Index: n, Loc: p.loc(name)}
			case IDENT:
				p.advance()
				if p.match(LPAREN) {
					args, err := p.args(RPAREN)
					if err != nil {
						return nil, err
					}
					e = &MethodCall{Receiver: e, Method: name.Lexeme, Args: args, Loc: p.loc(name)}
				} else {
					e = &FieldAccess{Receiver: e, Field: name.Lexeme, Loc: p.loc(name)}
				}
			default:
				return nil, p.errorf("field name")
			}
		default:
			return e, nil
		}
	}
}

// nested parses inside delimiters, where struct literals are allowed again.
func (p *parser) nested(parse func() (Expr, error)) (Expr, error) {
	outer := p.noStructLit
	p.noStructLit = 0
	defer func() { p.noStructLit = outer }()
	return parse()
}

func (p *parser) args(closing TokenKind) ([]Expr, error) {
	var args []Expr
	err := p.list(closing, func() error {
		arg, err := p.nested(p.expr)
		if err != nil {
			return err
		}
		args = append(args, arg)
		return nil
	})
	return args, err
}

// head parses the condition or scrutinee of if, while and match.
func (p *parser) head() (Expr, error) {
	p.noStructLit++
	defer func() { p.noStructLit-- }()
	return p.expr()
}

func (p *parser) primary() (Expr, error) {
	tok := p.peek()
	loc := p.loc(tok)
	switch tok.Kind {
	case INT:
		p.advance()
		n, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, &ParseError{Pos: tok.Pos, Expected: "64-bit integer", Found: tok.Lexeme}
		}
		return &IntLit{Value: n, Loc: loc}, nil
	case FLOAT:
		p.advance()
		f, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, &ParseError{Pos: tok.Pos, Expected: "float", Found: tok.Lexeme}
		}
		return &FloatLit{Value: f, Loc: loc}, nil
	case STRING:
		p.advance()
		s, err := unquote(tok.Lexeme, STRING)
		if err != nil {
			return nil, &ParseError{Pos: tok.Pos, Expected: "string", Found: tok.Lexeme}
		}
		return &StringLit{Value: s, Loc: loc}, nil
	case CHAR:
		p.advance()
		s, err := unquote(tok.Lexeme, CHAR)
		if err != nil {
			return nil, &ParseError{Pos: tok.Pos, Expected: "char", Found: tok.Lexeme}
		}
		return &CharLit{Value: []rune(s)[0], Loc: loc}, nil
	case TRUE, FALSE:
		p.advance()
		return &BoolLit{Value: tok.Kind == TRUE, Loc: loc}, nil
	case IDENT:
		p.advance()
		return &Identifier{Name: tok.Lexeme, Loc: loc}, nil
	case UIDENT:
		p.advance()
		ctor := &EnumConstruct{Name: tok.Lexeme, Loc: loc}
		if p.match(LPAREN) {
			ctor.Parens = true
			args, err := p.args(RPAREN)
			if err != nil {
				return nil, err
			}
			ctor.Args = args
		}
		return ctor, nil
	case LPAREN:
		p.advance()
		elems, err := p.args(RPAREN)
		if err != nil {
			return nil, err
		}
		switch len(elems) {
		case 0:
			return &UnitLit{Loc: loc}, nil
		case 1:
			return elems[0], nil
		default:
			return &TupleLit{Elems: elems, Loc: loc}, nil
		}
	case LBRACKET:
		p.advance()
		elems, err := p.args(RBRACKET)
		if err != nil {
			return nil, err
		}
		return &ArrayLit{Elems: elems, Loc: loc}, nil
	case LBRACE:
		if p.noStructLit > 0 {
			return nil, p.errorf("expression")
		}
		if p.peekAt(1).Kind == IDENT && p.peekAt(2).Kind == COLON {
			return p.structLit()
		}
		return p.block()
	case FN:
		p.advance()
		return p.funcRest(tok, false)
	case IF:
		return p.ifExpr()
	case MATCH:
		return p.matchExpr()
	case WHILE:
		p.advance()
		cond, err := p.head()
		if err != nil {
			return nil, err
		}
		body, err := p.block()
		if err != nil {
			return nil, err
		}
		return &While{Cond: cond, Body: body, Loc: loc}, nil
	case BREAK:
		p.advance()
		return &Break{Loc: loc}, nil
	case CONTINUE:
		p.advance()
		return &Continue{Loc: loc}, nil
	case RETURN:
		p.advance()
		ret := &Return{Loc: loc}
		if !p.at(SEMI, RBRACE, RPAREN, RBRACKET, COMMA, EOF) {
			value, err := p.expr()
			if err != nil {
				return nil, err
			}
			ret.Value = value
		}
		return ret, nil
	default:
		return nil, p.errorf("expression")
	}
}

func (p *parser) structLit() (*StructLit, error) {
	open := p.advance()
	lit := &StructLit{Loc: p.loc(open)}
	err := p.list(RBRACE, func() error {
		name, err := p.bindingName("field name")
		if err != nil {
			return err
		}
		if _, err := p.expect(COLON); err != nil {
			return err
		}
		p.skipNewlines()
		value, err := p.expr()
		if err != nil {
			return err
		}
		lit.Fields = append(lit.Fields, &FieldInit{Name: name.Lexeme, Value: value, Loc: p.loc(name)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lit, nil
}

func (p *parser) ifExpr() (*If, error) {
	tok := p.advance()
	cond, err := p.head()
	if err != nil {
		return nil, err
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}
	node := &If{Cond: cond, Then: then, Loc: p.loc(tok)}

	// allow else on the line after the closing brace
	if p.at(SEMI) && p.peek().Lexeme == "\n" && p.peekAt(1).Kind == ELSE {
		p.advance()
	}
	if !p.match(ELSE) {
		return node, nil
	}
	if p.at(IF) {
		node.Else, err = p.ifExpr()
	} else {
		node.Else, err = p.block()
	}
	if err != nil {
		return nil, err
	}
	return node, nil
}

func (p *parser) matchExpr() (*Match, error) {
	tok := p.advance()
	scrutinee, err := p.head()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}
	m := &Match{Scrutinee: scrutinee, Loc: p.loc(tok)}
	p.skipSeparators()
	for !p.match(RBRACE) {
		start := p.peek()
		pat, err := p.pattern()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(ARROW); err != nil {
			return nil, err
		}
		p.skipNewlines()
		body, err := p.nested(p.expr)
		if err != nil {
			return nil, err
		}
		m.Arms = append(m.Arms, &MatchArm{Pattern: pat, Body: body, Loc: p.loc(start)})
		if err := p.endItem(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (p *parser) pattern() (Pattern, error) {
	start := p.peek()
	pat, err := p.primPattern()
	if err != nil {
		return nil, err
	}
	if p.at(PIPE) {
		or := &OrPattern{Alts: []Pattern{pat}, Loc: p.loc(start)}
		for p.match(PIPE) {
			p.skipNewlines()
			alt, err := p.primPattern()
			if err != nil {
				return nil, err
			}
			or.Alts = append(or.Alts, alt)
		}
		pat = or
	}
	if p.match(AS) {
		name, err := p.bindingName("name after as")
		if err != nil {
			return nil, err
		}
		pat = &AsPattern{Pattern: pat, Name: name.Lexeme, Loc: p.loc(name)}
	}
	return pat, nil
}

func (p *parser) patterns(closing TokenKind) ([]Pattern, error) {
	var pats []Pattern
	err := p.list(closing, func() error {
		pat, err := p.pattern()
		if err != nil {
			return err
		}
		pats = append(pats, pat)
		return nil
	})
	return pats, err
}

func (p *parser) primPattern() (Pattern, error) {
	tok := p.peek()
	loc := p.loc(tok)
	switch tok.Kind {
	case IDENT:
		p.advance()
		if tok.Lexeme == "_" {
			return &WildcardPattern{Loc: loc}, nil
		}
		if p.at(LPAREN) {
			return nil, &ParseError{Pos: tok.Pos, Expected: "constructor name", Found: tok.Lexeme}
		}
		return &BindPattern{Name: tok.Lexeme, Loc: loc}, nil
	case UIDENT:
		p.advance()
		ctor := &CtorPattern{Name: tok.Lexeme, Loc: loc}
		if p.match(LPAREN) {
			ctor.Parens = true
			args, err := p.patterns(RPAREN)
			if err != nil {
				return nil, err
			}
			ctor.Args = args
		}
		return ctor, nil
	case INT, FLOAT, STRING, CHAR, TRUE, FALSE:
		lit, err := p.primary()
		if err != nil {
			return nil, err
		}
		return &LiteralPattern{Value: lit, Loc: loc}, nil
	case MINUS:
		p.advance()
		switch lit, err := p.primary(); x := lit.(type) {
		case *IntLit:
			x.Value, x.Loc = -x.Value, loc
			return &LiteralPattern{Value: x, Loc: loc}, nil
		case *FloatLit:
			x.Value, x.Loc = -x.Value, loc
			return &LiteralPattern{Value: x, Loc: loc}, nil
		default:
			if err != nil {
				return nil, err
			}
			return nil, &ParseError{Pos: tok.Pos, Expected: "number after -", Found: p.toks[p.i-1].String()}
		}
	case LPAREN:
		p.advance()
		elems, err := p.patterns(RPAREN)
		if err != nil {
			return nil, err
		}
		switch len(elems) {
		case 0:
			return &LiteralPattern{Value: &UnitLit{Loc: loc}, Loc: loc}, nil
		case 1:
			return elems[0], nil
		default:
			return &TuplePattern{Elems: elems, Loc: loc}, nil
		}
	case LBRACE:
		p.advance()
		sp := &StructPattern{Loc: loc}
		err := p.list(RBRACE, func() error {
			name, err := p.bindingName("field name")
			if err != nil {
				return err
			}
			field := &FieldPattern{Name: name.Lexeme, Loc: p.loc(name)}
			if p.match(COLON) {
				if field.Pattern, err = p.pattern(); err != nil {
					return err
				}
			} else {
				field.Pattern = &BindPattern{Name: name.Lexeme, Loc: p.loc(name)}
			}
			sp.Fields = append(sp.Fields, field)
			return nil
		})
		if err != nil {
			return nil, err
		}
		if len(sp.Fields) == 0 {
			return nil, &ParseError{Pos: tok.Pos, Expected: "field pattern", Found: "}"}
		}
		return sp, nil
	default:
		return nil, p.errorf("pattern")
	}
}
