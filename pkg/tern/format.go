package tern

import (
	"strconv"
	"strings"
)

// FormatFile parses source text and prints it in canonical form. Comments
// are not preserved.
func FormatFile(filename, src string) (string, error) {
	file, err := ParseSource(filename, src)
	if err != nil {
		return "", err
	}
	return Format(file), nil
}

// Format prints a file in canonical form. Parsing the output yields the same
// tree.
func Format(file *File) string {
	p := &printer{}
	for i, decl := range file.Decls {
		if i > 0 {
			p.write("\n")
			if _, isLet := decl.(*Let); !isLet {
				p.write("\n")
			} else if _, prevLet := file.Decls[i-1].(*Let); !prevLet {
				p.write("\n")
			}
		}
		p.decl(decl)
	}
	if len(file.Decls) > 0 {
		p.write("\n")
	}
	return p.String()
}

type printer struct {
	strings.Builder
	indent int
	// head is non-zero while printing the head of an if, while or match,
	// where a leading { would start the body.
	head int
}

func (p *printer) write(ss ...string) {
	for _, s := range ss {
		p.WriteString(s)
	}
}

func (p *printer) newline() {
	p.write("\n", strings.Repeat("\t", p.indent))
}

func (p *printer) decl(decl Decl) {
	switch d := decl.(type) {
	case *FuncDecl:
		p.funcDecl(d)
	case *TypeDecl:
		p.typeDecl(d)
	case *Let:
		p.let(d)
	case *InitDecl:
		p.write("init ")
		p.block(d.Body)
	}
}

func (p *printer) funcDecl(d *FuncDecl) {
	p.write("func ", d.Name)
	if len(d.TypeParams) > 0 {
		p.write("[", strings.Join(d.TypeParams, ", "), "]")
	}
	p.funcRest(d.Fn)
}

func (p *printer) funcRest(fn *FuncLit) {
	p.write("(")
	for i, param := range fn.Params {
		if i > 0 {
			p.write(", ")
		}
		p.write(param.Name)
		if param.Type != nil {
			p.write(": ")
			p.typeExpr(param.Type)
		}
	}
	p.write(")")
	if fn.Ret != nil {
		p.write(": ")
		p.typeExpr(fn.Ret)
	}
	p.write(" ")
	p.block(fn.Body)
}

func (p *printer) typeDecl(d *TypeDecl) {
	p.write("type ", d.Name)
	if len(d.Params) > 0 {
		p.write("[", strings.Join(d.Params, ", "), "]")
	}
	if !d.Enum {
		p.write(" struct {")
		if len(d.Fields) == 0 {
			p.write("}")
			return
		}
		p.indent++
		for _, f := range d.Fields {
			p.newline()
			if f.Mutable {
				p.write("mut ")
			}
			p.write(f.Name, ": ")
			p.typeExpr(f.Type)
		}
		p.indent--
		p.newline()
		p.write("}")
		return
	}
	p.write(" enum {")
	if len(d.Variants) == 0 {
		p.write("}")
		return
	}
	p.indent++
	for _, v := range d.Variants {
		p.newline()
		p.write(v.Name)
		if v.Parens {
			p.write("(")
			p.typeList(v.Params)
			p.write(")")
		}
	}
	p.indent--
	p.newline()
	p.write("}")
}

func (p *printer) let(l *Let) {
	p.write(l.Keyword(), " ")
	p.pattern(l.Pattern)
	if l.Type != nil {
		p.write(": ")
		p.typeExpr(l.Type)
	}
	p.write(" = ")
	p.expr(l.Value)
}

func (p *printer) typeList(ts []TypeExpr) {
	for i, t := range ts {
		if i > 0 {
			p.write(", ")
		}
		p.typeExpr(t)
	}
}

func (p *printer) typeExpr(te TypeExpr) {
	switch t := te.(type) {
	case *NamedTypeExpr:
		p.write(t.Name)
		if len(t.Args) > 0 {
			p.write("[")
			p.typeList(t.Args)
			p.write("]")
		}
	case *TupleTypeExpr:
		p.write("(")
		p.typeList(t.Elems)
		p.write(")")
	case *ArrayTypeExpr:
		p.write("[")
		p.typeExpr(t.Elem)
		p.write("]")
	case *FuncTypeExpr:
		p.write("fn(")
		p.typeList(t.Params)
		p.write(")")
		if t.Ret != nil {
			p.write(": ")
			p.typeExpr(t.Ret)
		}
	}
}

func (p *printer) block(b *Block) {
	if len(b.Stmts) == 0 && b.Result == nil {
		p.write("{}")
		return
	}
	outer := p.head
	p.head = 0
	defer func() { p.head = outer }()

	p.write("{")
	p.indent++
	for _, stmt := range b.Stmts {
		p.newline()
		p.stmt(stmt)
	}
	if b.Result != nil {
		p.newline()
		p.expr(b.Result)
	}
	p.indent--
	p.newline()
	p.write("}")
}

func (p *printer) stmt(stmt Stmt) {
	switch s := stmt.(type) {
	case *Let:
		p.let(s)
	case *FuncDecl:
		p.funcDecl(s)
	case *Assign:
		p.expr(s.Target)
		p.write(" = ")
		p.expr(s.Value)
	case *ExprStmt:
		p.expr(s.Expr)
	}
}

// precedence is how tightly an expression binds when printed as an operand.
func precedence(e Expr) int {
	switch x := e.(type) {
	case *BinaryOp:
		return binaryPrecedence[x.Op]
	case *UnaryOp:
		return unaryPrecedence
	default:
		return unaryPrecedence + 1
	}
}

func (p *printer) operand(e Expr, min int) {
	if precedence(e) < min {
		p.parens(e)
		return
	}
	p.expr(e)
}

func (p *printer) parens(e Expr) {
	outer := p.head
	p.head = 0
	p.write("(")
	p.expr(e)
	p.write(")")
	p.head = outer
}

func (p *printer) exprs(es []Expr) {
	outer := p.head
	p.head = 0
	for i, e := range es {
		if i > 0 {
			p.write(", ")
		}
		p.expr(e)
	}
	p.head = outer
}

func (p *printer) expr(e Expr) {
	switch x := e.(type) {
	case *IntLit:
		p.write(strconv.FormatInt(x.Value, 10))
	case *FloatLit:
		s := strconv.FormatFloat(x.Value, 'g', -1, 64)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		p.write(s)
	case *StringLit:
		p.write(strconv.Quote(x.Value))
	case *CharLit:
		p.write(strconv.QuoteRune(x.Value))
	case *BoolLit:
		p.write(strconv.FormatBool(x.Value))
	case *UnitLit:
		p.write("()")
	case *Identifier:
		p.write(x.Name)
	case *BinaryOp:
		prec := binaryPrecedence[x.Op]
		p.operand(x.Left, prec)
		p.write(" ", x.Op.String(), " ")
		p.operand(x.Right, prec+1)
	case *UnaryOp:
		p.write(x.Op.String())
		p.operand(x.Operand, unaryPrecedence)
	case *TupleLit:
		p.write("(")
		p.exprs(x.Elems)
		p.write(")")
	case *ArrayLit:
		p.write("[")
		p.exprs(x.Elems)
		p.write("]")
	case *Index:
		p.operand(x.Receiver, unaryPrecedence+1)
		p.write("[")
		p.exprs([]Expr{x.Index})
		p.write("]")
	case *TupleIndex:
		p.operand(x.Receiver, unaryPrecedence+1)
		p.write(".", strconv.Itoa(x.Index))
	case *FieldAccess:
		p.operand(x.Receiver, unaryPrecedence+1)
		p.write(".", x.Field)
	case *StructLit:
		if p.head > 0 {
			p.parens(x)
			return
		}
		p.write("{")
		for i, f := range x.Fields {
			if i > 0 {
				p.write(", ")
			}
			p.write(f.Name, ": ")
			p.expr(f.Value)
		}
		p.write("}")
	case *EnumConstruct:
		p.write(x.Name)
		if x.Parens {
			p.write("(")
			p.exprs(x.Args)
			p.write(")")
		}
	case *FuncLit:
		p.write("fn")
		p.funcRest(x)
	case *Call:
		p.operand(x.Fn, unaryPrecedence+1)
		p.write("(")
		p.exprs(x.Args)
		p.write(")")
	case *MethodCall:
		p.operand(x.Receiver, unaryPrecedence+1)
		p.write(".", x.Method, "(")
		p.exprs(x.Args)
		p.write(")")
	case *Block:
		if p.head > 0 {
			p.parens(x)
			return
		}
		p.block(x)
	case *If:
		p.ifExpr(x)
	case *While:
		p.write("while ")
		p.headExpr(x.Cond)
		p.write(" ")
		p.block(x.Body)
	case *Break:
		p.write("break")
	case *Continue:
		p.write("continue")
	case *Return:
		p.write("return")
		if x.Value != nil {
			p.write(" ")
			p.expr(x.Value)
		}
	case *Match:
		p.write("match ")
		p.headExpr(x.Scrutinee)
		p.write(" {")
		p.indent++
		outer := p.head
		p.head = 0
		for _, arm := range x.Arms {
			p.newline()
			p.pattern(arm.Pattern)
			p.write(" => ")
			p.expr(arm.Body)
		}
		p.head = outer
		p.indent--
		p.newline()
		p.write("}")
	}
}

func (p *printer) headExpr(e Expr) {
	p.head++
	p.expr(e)
	p.head--
}

func (p *printer) ifExpr(x *If) {
	p.write("if ")
	p.headExpr(x.Cond)
	p.write(" ")
	p.block(x.Then)
	switch e := x.Else.(type) {
	case nil:
	case *If:
		p.write(" else ")
		p.ifExpr(e)
	case *Block:
		p.write(" else ")
		p.block(e)
	}
}

func (p *printer) patterns(ps []Pattern) {
	for i, pat := range ps {
		if i > 0 {
			p.write(", ")
		}
		p.pattern(pat)
	}
}

func (p *printer) pattern(pat Pattern) {
	switch x := pat.(type) {
	case *WildcardPattern:
		p.write("_")
	case *BindPattern:
		p.write(x.Name)
	case *LiteralPattern:
		p.expr(x.Value)
	case *CtorPattern:
		p.write(x.Name)
		if x.Parens {
			p.write("(")
			p.patterns(x.Args)
			p.write(")")
		}
	case *TuplePattern:
		p.write("(")
		p.patterns(x.Elems)
		p.write(")")
	case *StructPattern:
		p.write("{")
		for i, f := range x.Fields {
			if i > 0 {
				p.write(", ")
			}
			p.write(f.Name)
			if !f.Shorthand() {
				p.write(": ")
				p.pattern(f.Pattern)
			}
		}
		p.write("}")
	case *OrPattern:
		for i, alt := range x.Alts {
			if i > 0 {
				p.write(" | ")
			}
			switch alt.(type) {
			case *OrPattern, *AsPattern:
				p.write("(")
				p.pattern(alt)
				p.write(")")
			default:
				p.pattern(alt)
			}
		}
	case *AsPattern:
		if _, nested := x.Pattern.(*AsPattern); nested {
			p.write("(")
			p.pattern(x.Pattern)
			p.write(")")
		} else {
			p.pattern(x.Pattern)
		}
		p.write(" as ", x.Name)
	}
}
