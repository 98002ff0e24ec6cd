package hm

import (
	"fmt"
	"strings"
)

// Type represents all possible type constructors
type Type interface {
	Substitutable
	Name() string
	// Types returns the component types, in order.
	Types() Types
	Eq(Type) bool
	fmt.Stringer
}

// Substitutable is any type that can have substitutions applied and knows its free type variables
type Substitutable interface {
	Apply(Subs) Substitutable
	FreeTypeVar() TypeVarSet
}

// Types represents a slice of types
type Types []Type

func (ts Types) apply(subs Subs) Types {
	if len(ts) == 0 {
		return ts
	}
	out := make(Types, len(ts))
	for i, t := range ts {
		out[i] = t.Apply(subs).(Type)
	}
	return out
}

func (ts Types) freeTypeVar() TypeVarSet {
	ftvs := NewTypeVarSet()
	for _, t := range ts {
		for tv := range t.FreeTypeVar() {
			ftvs.Add(tv)
		}
	}
	return ftvs
}

func (ts Types) eq(other Types) bool {
	if len(ts) != len(other) {
		return false
	}
	for i := range ts {
		if !ts[i].Eq(other[i]) {
			return false
		}
	}
	return true
}

func (ts Types) join(sep string) string {
	strs := make([]string, len(ts))
	for i, t := range ts {
		strs[i] = t.String()
	}
	return strings.Join(strs, sep)
}

// TypeVariable represents a unification variable
type TypeVariable int

func (tv TypeVariable) Name() string {
	return tv.String()
}

func (tv TypeVariable) Apply(subs Subs) Substitutable {
	if t, exists := subs[tv]; exists {
		// substitutions are acyclic thanks to the occurs check
		return t.Apply(subs)
	}
	return tv
}

func (tv TypeVariable) FreeTypeVar() TypeVarSet {
	return NewTypeVarSet(tv)
}

func (tv TypeVariable) Types() Types {
	return nil
}

func (tv TypeVariable) Eq(other Type) bool {
	if ot, ok := other.(TypeVariable); ok {
		return tv == ot
	}
	return false
}

func (tv TypeVariable) String() string {
	return fmt.Sprintf("'t%d", int(tv))
}

// TypeConst is a primitive type such as int or string
type TypeConst string

const (
	Unit   TypeConst = "unit"
	Bool   TypeConst = "bool"
	Int    TypeConst = "int"
	Float  TypeConst = "float"
	String TypeConst = "string"
	Char   TypeConst = "char"
)

func (tc TypeConst) Name() string             { return string(tc) }
func (tc TypeConst) Apply(Subs) Substitutable { return tc }
func (tc TypeConst) FreeTypeVar() TypeVarSet  { return NewTypeVarSet() }
func (tc TypeConst) Types() Types             { return nil }
func (tc TypeConst) String() string           { return string(tc) }
func (tc TypeConst) Eq(other Type) bool {
	ot, ok := other.(TypeConst)
	return ok && ot == tc
}

// TypeParam is a rigid type parameter, e.g. the T in func id[T](x: T): T,
// while checking the body that declares it. It only unifies with itself.
type TypeParam string

func (tp TypeParam) Name() string             { return string(tp) }
func (tp TypeParam) Apply(Subs) Substitutable { return tp }
func (tp TypeParam) FreeTypeVar() TypeVarSet  { return NewTypeVarSet() }
func (tp TypeParam) Types() Types             { return nil }
func (tp TypeParam) String() string           { return string(tp) }
func (tp TypeParam) Eq(other Type) bool {
	ot, ok := other.(TypeParam)
	return ok && ot == tp
}

// FunctionType represents a function type
type FunctionType struct {
	params Types
	ret    Type
}

func NewFnType(params Types, ret Type) *FunctionType {
	return &FunctionType{params: params, ret: ret}
}

func (ft *FunctionType) Name() string {
	return ft.String()
}

func (ft *FunctionType) Apply(subs Subs) Substitutable {
	return &FunctionType{
		params: ft.params.apply(subs),
		ret:    ft.ret.Apply(subs).(Type),
	}
}

func (ft *FunctionType) FreeTypeVar() TypeVarSet {
	return ft.params.freeTypeVar().Union(ft.ret.FreeTypeVar())
}

func (ft *FunctionType) Types() Types {
	ts := make(Types, 0, len(ft.params)+1)
	ts = append(ts, ft.params...)
	return append(ts, ft.ret)
}

func (ft *FunctionType) Eq(other Type) bool {
	if ot, ok := other.(*FunctionType); ok {
		return ft.params.eq(ot.params) && ft.ret.Eq(ot.ret)
	}
	return false
}

func (ft *FunctionType) String() string {
	return fmt.Sprintf("fn(%s): %s", ft.params.join(", "), ft.ret)
}

// Params returns the parameter types
func (ft *FunctionType) Params() Types {
	return ft.params
}

// Ret returns the return type
func (ft *FunctionType) Ret() Type {
	return ft.ret
}

// TupleType is an ordered product of two or more types
type TupleType struct {
	Elems Types
}

func NewTupleType(elems ...Type) *TupleType {
	return &TupleType{Elems: elems}
}

func (t *TupleType) Name() string { return t.String() }
func (t *TupleType) Apply(subs Subs) Substitutable {
	return &TupleType{Elems: t.Elems.apply(subs)}
}
func (t *TupleType) FreeTypeVar() TypeVarSet { return t.Elems.freeTypeVar() }
func (t *TupleType) Types() Types            { return t.Elems }
func (t *TupleType) String() string          { return "(" + t.Elems.join(", ") + ")" }
func (t *TupleType) Eq(other Type) bool {
	ot, ok := other.(*TupleType)
	return ok && t.Elems.eq(ot.Elems)
}

// ArrayType is a growable, shared, mutable sequence
type ArrayType struct {
	Elem Type
}

func (t ArrayType) Name() string { return t.String() }
func (t ArrayType) Apply(subs Subs) Substitutable {
	return ArrayType{Elem: t.Elem.Apply(subs).(Type)}
}
func (t ArrayType) FreeTypeVar() TypeVarSet { return t.Elem.FreeTypeVar() }
func (t ArrayType) Types() Types            { return Types{t.Elem} }
func (t ArrayType) String() string          { return fmt.Sprintf("[%s]", t.Elem) }
func (t ArrayType) Eq(other Type) bool {
	ot, ok := other.(ArrayType)
	return ok && t.Elem.Eq(ot.Elem)
}

// NamedType is a declared (nominal) struct or enum type, possibly applied to
// type arguments. Two named types are the same type only when module and
// name match; their shapes are never compared.
type NamedType struct {
	Module string
	Named  string
	Args   Types
}

func NewNamedType(module, name string, args ...Type) *NamedType {
	return &NamedType{Module: module, Named: name, Args: args}
}

func (t *NamedType) Name() string { return t.Named }
func (t *NamedType) Apply(subs Subs) Substitutable {
	if len(t.Args) == 0 {
		return t
	}
	return &NamedType{Module: t.Module, Named: t.Named, Args: t.Args.apply(subs)}
}
func (t *NamedType) FreeTypeVar() TypeVarSet { return t.Args.freeTypeVar() }
func (t *NamedType) Types() Types            { return t.Args }
func (t *NamedType) String() string {
	if len(t.Args) == 0 {
		return t.Named
	}
	return fmt.Sprintf("%s[%s]", t.Named, t.Args.join(", "))
}
func (t *NamedType) Eq(other Type) bool {
	ot, ok := other.(*NamedType)
	return ok && t.SameDecl(ot) && t.Args.eq(ot.Args)
}

// SameDecl reports whether both types refer to the same declaration.
func (t *NamedType) SameDecl(other *NamedType) bool {
	return t.Module == other.Module && t.Named == other.Named
}
