package tern

// Pattern is the left-hand side of a match arm or a let/var binding.
type Pattern interface {
	Node
	isPattern()
}

// WildcardPattern is _ and matches anything without binding it.
type WildcardPattern struct {
	Loc *SourceLocation
}

var _ Pattern = (*WildcardPattern)(nil)

func (*WildcardPattern) isPattern() {}

func (p *WildcardPattern) GetSourceLocation() *SourceLocation { return p.Loc }
func (p *WildcardPattern) Walk(fn func(Node) bool)            { fn(p) }

// BindPattern matches anything and binds it to a name.
type BindPattern struct {
	Name    string
	Binding *Binding
	Loc     *SourceLocation
}

var _ Pattern = (*BindPattern)(nil)

func (*BindPattern) isPattern() {}

func (p *BindPattern) GetSourceLocation() *SourceLocation { return p.Loc }
func (p *BindPattern) Walk(fn func(Node) bool)            { fn(p) }

// LiteralPattern matches values equal to a literal. Value is one of the
// literal expression nodes; negative numbers are folded into the literal.
type LiteralPattern struct {
	Value Expr
	Loc   *SourceLocation
}

var _ Pattern = (*LiteralPattern)(nil)

func (*LiteralPattern) isPattern() {}

func (p *LiteralPattern) GetSourceLocation() *SourceLocation { return p.Loc }

func (p *LiteralPattern) Walk(fn func(Node) bool) {
	if !fn(p) {
		return
	}
	p.Value.Walk(fn)
}

// CtorPattern matches an enum constructor and its payload.
type CtorPattern struct {
	Name   string
	Args   []Pattern
	Parens bool
	// Ctor is the constructor the name refers to, filled in by the checker.
	Ctor *CtorInfo
	Loc  *SourceLocation
}

var _ Pattern = (*CtorPattern)(nil)

func (*CtorPattern) isPattern() {}

func (p *CtorPattern) GetSourceLocation() *SourceLocation { return p.Loc }

func (p *CtorPattern) Walk(fn func(Node) bool) {
	if !fn(p) {
		return
	}
	walkAll(fn, p.Args)
}

// TuplePattern destructures a tuple.
type TuplePattern struct {
	Elems []Pattern
	Loc   *SourceLocation
}

var _ Pattern = (*TuplePattern)(nil)

func (*TuplePattern) isPattern() {}

func (p *TuplePattern) GetSourceLocation() *SourceLocation { return p.Loc }

func (p *TuplePattern) Walk(fn func(Node) bool) {
	if !fn(p) {
		return
	}
	walkAll(fn, p.Elems)
}

// StructPattern destructures some or all fields of a struct. The shorthand
// {name} is a field whose pattern binds the field's own name.
type StructPattern struct {
	Fields []*FieldPattern
	// Struct is the declaration matched, filled in by the checker.
	Struct *TypeInfo
	Loc    *SourceLocation
}

// FieldPattern is one f: p entry in a struct pattern.
type FieldPattern struct {
	Name    string
	Pattern Pattern
	Loc     *SourceLocation
}

var _ Pattern = (*StructPattern)(nil)

func (*StructPattern) isPattern() {}

func (p *StructPattern) GetSourceLocation() *SourceLocation { return p.Loc }

func (p *StructPattern) Walk(fn func(Node) bool) {
	if !fn(p) {
		return
	}
	for _, f := range p.Fields {
		f.Pattern.Walk(fn)
	}
}

// Shorthand reports whether the field is written as just its name.
func (f *FieldPattern) Shorthand() bool {
	b, ok := f.Pattern.(*BindPattern)
	return ok && b.Name == f.Name
}

// OrPattern matches if any alternative matches. Every alternative binds the
// same names.
type OrPattern struct {
	Alts []Pattern
	Loc  *SourceLocation
}

var _ Pattern = (*OrPattern)(nil)

func (*OrPattern) isPattern() {}

func (p *OrPattern) GetSourceLocation() *SourceLocation { return p.Loc }

func (p *OrPattern) Walk(fn func(Node) bool) {
	if !fn(p) {
		return
	}
	walkAll(fn, p.Alts)
}

// AsPattern binds the whole matched value in addition to whatever the inner
// pattern binds.
type AsPattern struct {
	Pattern Pattern
	Name    string
	Binding *Binding
	Loc     *SourceLocation
}

var _ Pattern = (*AsPattern)(nil)

func (*AsPattern) isPattern() {}

func (p *AsPattern) GetSourceLocation() *SourceLocation { return p.Loc }

func (p *AsPattern) Walk(fn func(Node) bool) {
	if !fn(p) {
		return
	}
	p.Pattern.Walk(fn)
}

// patternBindings lists the distinct bindings a pattern introduces, in
// source order.
func patternBindings(p Pattern) []*Binding {
	var bs []*Binding
	add := func(b *Binding) {
		for _, seen := range bs {
			if seen == b {
				return
			}
		}
		bs = append(bs, b)
	}
	p.Walk(func(n Node) bool {
		switch x := n.(type) {
		case *BindPattern:
			add(x.Binding)
		case *AsPattern:
			add(x.Binding)
		}
		return true
	})
	return bs
}
