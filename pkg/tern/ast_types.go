package tern

// TypeExpr is a type annotation as written in source.
type TypeExpr interface {
	Node
	isTypeExpr()
}

// NamedTypeExpr names a primitive, a declared type or a type parameter,
// optionally applied to arguments: int, T, list[T].
type NamedTypeExpr struct {
	Name string
	Args []TypeExpr
	Loc  *SourceLocation
}

var _ TypeExpr = (*NamedTypeExpr)(nil)

func (*NamedTypeExpr) isTypeExpr() {}

func (t *NamedTypeExpr) GetSourceLocation() *SourceLocation { return t.Loc }

func (t *NamedTypeExpr) Walk(fn func(Node) bool) {
	if !fn(t) {
		return
	}
	walkAll(fn, t.Args)
}

// TupleTypeExpr is (A, B, ...). With no elements it denotes unit.
type TupleTypeExpr struct {
	Elems []TypeExpr
	Loc   *SourceLocation
}

var _ TypeExpr = (*TupleTypeExpr)(nil)

func (*TupleTypeExpr) isTypeExpr() {}

func (t *TupleTypeExpr) GetSourceLocation() *SourceLocation { return t.Loc }

func (t *TupleTypeExpr) Walk(fn func(Node) bool) {
	if !fn(t) {
		return
	}
	walkAll(fn, t.Elems)
}

// ArrayTypeExpr is [T].
type ArrayTypeExpr struct {
	Elem TypeExpr
	Loc  *SourceLocation
}

var _ TypeExpr = (*ArrayTypeExpr)(nil)

func (*ArrayTypeExpr) isTypeExpr() {}

func (t *ArrayTypeExpr) GetSourceLocation() *SourceLocation { return t.Loc }

func (t *ArrayTypeExpr) Walk(fn func(Node) bool) {
	if !fn(t) {
		return
	}
	t.Elem.Walk(fn)
}

// FuncTypeExpr is fn(A, B): R. A nil Ret means unit.
type FuncTypeExpr struct {
	Params []TypeExpr
	Ret    TypeExpr
	Loc    *SourceLocation
}

var _ TypeExpr = (*FuncTypeExpr)(nil)

func (*FuncTypeExpr) isTypeExpr() {}

func (t *FuncTypeExpr) GetSourceLocation() *SourceLocation { return t.Loc }

func (t *FuncTypeExpr) Walk(fn func(Node) bool) {
	if !fn(t) {
		return
	}
	walkAll(fn, t.Params)
	if t.Ret != nil {
		t.Ret.Walk(fn)
	}
}
