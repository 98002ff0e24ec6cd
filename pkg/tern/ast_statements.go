package tern

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/vito/tern/pkg/hm"
)

// Let binds the names in a pattern: let is immutable, var (Mutable) may be
// reassigned. At the top level it declares globals.
type Let struct {
	Mutable bool
	Pattern Pattern
	// Type is the optional annotation.
	Type  TypeExpr
	Value Expr
	// Rows is the compiled pattern, filled in by the checker.
	Rows []*MatchRow
	Loc  *SourceLocation
}

var (
	_ Decl = (*Let)(nil)
	_ Stmt = (*Let)(nil)
)

func (*Let) isDecl() {}

func (l *Let) GetSourceLocation() *SourceLocation { return l.Loc }

func (l *Let) Walk(fn func(Node) bool) {
	if !fn(l) {
		return
	}
	l.Pattern.Walk(fn)
	if l.Type != nil {
		l.Type.Walk(fn)
	}
	l.Value.Walk(fn)
}

func (l *Let) Keyword() string {
	if l.Mutable {
		return "var"
	}
	return "let"
}

func (l *Let) Check(ctx context.Context, c *Checker) error {
	var annotated hm.Type
	if l.Type != nil {
		t, err := c.resolveType(l.Type, nil)
		if err != nil {
			return err
		}
		annotated = t
		if lit, ok := l.Value.(*StructLit); ok {
			lit.Hint = annotated
		}
	}

	vt, err := c.infer(ctx, l.Value)
	if err != nil {
		return err
	}
	if annotated != nil {
		if err := c.unify(l.Value, annotated, vt, "annotated type of "+l.Keyword()); err != nil {
			return err
		}
		vt = annotated
	}

	if err := c.bindPattern(ctx, l.Pattern, vt, -1); err != nil {
		return err
	}
	rows, err := c.compileLet(l, vt)
	if err != nil {
		return err
	}
	l.Rows = rows

	// let-bound functions are polymorphic; everything else is monomorphic
	if bind, ok := l.Pattern.(*BindPattern); ok && !l.Mutable {
		if _, isFn := l.Value.(*FuncLit); isFn {
			c.generalize(bind.Binding, vt)
		}
	}
	return nil
}

func (l *Let) Exec(ctx context.Context, env *Env) error {
	v, err := l.Value.Eval(ctx, env)
	if err != nil {
		return err
	}
	if fn, ok := v.(*Closure); ok && fn.Name == "" {
		if bind, ok := l.Pattern.(*BindPattern); ok {
			fn.Name = bind.Name
		}
	}
	for _, row := range l.Rows {
		if row.Matches(v) {
			row.Bind(env, v)
			return nil
		}
	}
	return CreateEvalError(ctx, errors.Errorf("pattern did not match %s", v), l)
}

// Assign stores a value into a var, a mut struct field or an array element.
type Assign struct {
	Target Expr
	Value  Expr
	Loc    *SourceLocation
}

var _ Stmt = (*Assign)(nil)

func (a *Assign) GetSourceLocation() *SourceLocation { return a.Loc }

func (a *Assign) Walk(fn func(Node) bool) {
	if !fn(a) {
		return
	}
	a.Target.Walk(fn)
	a.Value.Walk(fn)
}

func (a *Assign) Check(ctx context.Context, c *Checker) error {
	var target hm.Type
	switch t := a.Target.(type) {
	case *Identifier, *Index:
		tt, err := c.infer(ctx, t)
		if err != nil {
			return err
		}
		target = tt
	case *FieldAccess:
		rt, err := c.infer(ctx, t.Receiver)
		if err != nil {
			return err
		}
		ft, field, err := c.selectField(t, t.Receiver, rt, t.Field)
		if err != nil {
			return err
		}
		if !field.Mutable {
			ti, _, _ := c.typeInfo(rt)
			return NewInferError(&ImmutableFieldError{Struct: ti.Name, Field: t.Field}, t)
		}
		t.SetInferredType(ft)
		target = ft
	case *TupleIndex:
		return NewInferError(&ImmutableFieldError{Struct: "tuple", Field: strconv.Itoa(t.Index)}, t)
	default:
		return errors.Errorf("cannot assign to %T", a.Target)
	}
	vt, err := c.infer(ctx, a.Value)
	if err != nil {
		return err
	}
	return c.unify(a.Value, target, vt, "assigned value")
}

func (a *Assign) Exec(ctx context.Context, env *Env) error {
	_, err := WithEvalErrorHandling(ctx, a, func() (Value, error) {
		switch t := a.Target.(type) {
		case *Identifier:
			cell, ok := env.Lookup(t.Binding)
			if !ok {
				return nil, errors.Errorf("no value for %s", t.Binding.Key())
			}
			v, err := a.Value.Eval(ctx, env)
			if err != nil {
				return nil, err
			}
			cell.Value, cell.Init = v, true
		case *FieldAccess:
			recv, err := t.Receiver.Eval(ctx, env)
			if err != nil {
				return nil, err
			}
			v, err := a.Value.Eval(ctx, env)
			if err != nil {
				return nil, err
			}
			s := recv.(*StructValue)
			s.Values[s.Field(t.Field)] = v
		case *Index:
			arr, idx, err := t.evalOperands(ctx, env)
			if err != nil {
				return nil, err
			}
			v, err := a.Value.Eval(ctx, env)
			if err != nil {
				return nil, err
			}
			arr.Elems[idx] = v
		default:
			return nil, errors.Errorf("cannot assign to %T", a.Target)
		}
		return UnitValue{}, nil
	})
	return err
}

// TypeDecl declares a struct or an enum.
type TypeDecl struct {
	Name     string
	Params   []string
	Enum     bool
	Fields   []*FieldDecl
	Variants []*Variant
	Loc      *SourceLocation
}

var _ Decl = (*TypeDecl)(nil)

func (*TypeDecl) isDecl() {}

func (d *TypeDecl) GetSourceLocation() *SourceLocation { return d.Loc }

func (d *TypeDecl) Walk(fn func(Node) bool) {
	if !fn(d) {
		return
	}
	for _, f := range d.Fields {
		f.Type.Walk(fn)
	}
	for _, v := range d.Variants {
		walkAll(fn, v.Params)
	}
}

// FieldDecl is a struct field declaration.
type FieldDecl struct {
	Name    string
	Mutable bool
	Type    TypeExpr
	Loc     *SourceLocation
}

func (f *FieldDecl) GetSourceLocation() *SourceLocation { return f.Loc }

// Variant is an enum constructor declaration.
type Variant struct {
	Name   string
	Params []TypeExpr
	Parens bool
	Loc    *SourceLocation
}

func (v *Variant) GetSourceLocation() *SourceLocation { return v.Loc }

// InitDecl is an init block, run once after every global is registered.
type InitDecl struct {
	Body *Block
	Loc  *SourceLocation
}

var (
	_ Decl = (*InitDecl)(nil)
	_ Stmt = (*InitDecl)(nil)
)

func (*InitDecl) isDecl() {}

func (d *InitDecl) GetSourceLocation() *SourceLocation { return d.Loc }

func (d *InitDecl) Walk(fn func(Node) bool) {
	if !fn(d) {
		return
	}
	d.Body.Walk(fn)
}

func (d *InitDecl) Check(ctx context.Context, c *Checker) error {
	t, err := c.infer(ctx, d.Body)
	if err != nil {
		return err
	}
	return c.unify(resultNode(d.Body), hm.Unit, t, "init block must have unit type")
}

func (d *InitDecl) Exec(ctx context.Context, env *Env) error {
	_, err := d.Body.Eval(ctx, env)
	return err
}
