package tern

import (
	"context"

	"github.com/vito/tern/pkg/hm"
)

// IntLit is an integer literal.
type IntLit struct {
	InferredTypeHolder
	Value int64
	Loc   *SourceLocation
}

var _ Expr = (*IntLit)(nil)

func (l *IntLit) GetSourceLocation() *SourceLocation { return l.Loc }
func (l *IntLit) Walk(fn func(Node) bool)            { fn(l) }

func (l *IntLit) Infer(context.Context, *Checker) (hm.Type, error) {
	return hm.Int, nil
}

func (l *IntLit) Eval(context.Context, *Env) (Value, error) {
	return IntValue{Val: l.Value}, nil
}

// FloatLit is a floating point literal.
type FloatLit struct {
	InferredTypeHolder
	Value float64
	Loc   *SourceLocation
}

var _ Expr = (*FloatLit)(nil)

func (l *FloatLit) GetSourceLocation() *SourceLocation { return l.Loc }
func (l *FloatLit) Walk(fn func(Node) bool)            { fn(l) }

func (l *FloatLit) Infer(context.Context, *Checker) (hm.Type, error) {
	return hm.Float, nil
}

func (l *FloatLit) Eval(context.Context, *Env) (Value, error) {
	return FloatValue{Val: l.Value}, nil
}

// StringLit is a string literal with escapes already decoded.
type StringLit struct {
	InferredTypeHolder
	Value string
	Loc   *SourceLocation
}

var _ Expr = (*StringLit)(nil)

func (l *StringLit) GetSourceLocation() *SourceLocation { return l.Loc }
func (l *StringLit) Walk(fn func(Node) bool)            { fn(l) }

func (l *StringLit) Infer(context.Context, *Checker) (hm.Type, error) {
	return hm.String, nil
}

func (l *StringLit) Eval(context.Context, *Env) (Value, error) {
	return StringValue{Val: l.Value}, nil
}

// CharLit is a character literal.
type CharLit struct {
	InferredTypeHolder
	Value rune
	Loc   *SourceLocation
}

var _ Expr = (*CharLit)(nil)

func (l *CharLit) GetSourceLocation() *SourceLocation { return l.Loc }
func (l *CharLit) Walk(fn func(Node) bool)            { fn(l) }

func (l *CharLit) Infer(context.Context, *Checker) (hm.Type, error) {
	return hm.Char, nil
}

func (l *CharLit) Eval(context.Context, *Env) (Value, error) {
	return CharValue{Val: l.Value}, nil
}

// BoolLit is true or false.
type BoolLit struct {
	InferredTypeHolder
	Value bool
	Loc   *SourceLocation
}

var _ Expr = (*BoolLit)(nil)

func (l *BoolLit) GetSourceLocation() *SourceLocation { return l.Loc }
func (l *BoolLit) Walk(fn func(Node) bool)            { fn(l) }

func (l *BoolLit) Infer(context.Context, *Checker) (hm.Type, error) {
	return hm.Bool, nil
}

func (l *BoolLit) Eval(context.Context, *Env) (Value, error) {
	return BoolValue{Val: l.Value}, nil
}

// UnitLit is ().
type UnitLit struct {
	InferredTypeHolder
	Loc *SourceLocation
}

var _ Expr = (*UnitLit)(nil)

func (l *UnitLit) GetSourceLocation() *SourceLocation { return l.Loc }
func (l *UnitLit) Walk(fn func(Node) bool)            { fn(l) }

func (l *UnitLit) Infer(context.Context, *Checker) (hm.Type, error) {
	return hm.Unit, nil
}

func (l *UnitLit) Eval(context.Context, *Env) (Value, error) {
	return UnitValue{}, nil
}

// literalValue returns the runtime value of a literal expression.
func literalValue(e Expr) (Value, bool) {
	switch l := e.(type) {
	case *IntLit:
		return IntValue{Val: l.Value}, true
	case *FloatLit:
		return FloatValue{Val: l.Value}, true
	case *StringLit:
		return StringValue{Val: l.Value}, true
	case *CharLit:
		return CharValue{Val: l.Value}, true
	case *BoolLit:
		return BoolValue{Val: l.Value}, true
	case *UnitLit:
		return UnitValue{}, true
	}
	return nil, false
}
