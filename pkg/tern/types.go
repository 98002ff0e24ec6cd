package tern

import (
	"slices"

	"github.com/vito/tern/pkg/hm"
)

// TypeInfo is the declared shape of a struct or enum. Field and constructor
// types are expressed over Vars, one per type parameter.
type TypeInfo struct {
	Name   string
	Params []string
	Vars   []hm.TypeVariable
	Enum   bool
	Fields []*FieldInfo
	Ctors  []*CtorInfo
	Decl   *TypeDecl
}

// FieldInfo is a declared struct field.
type FieldInfo struct {
	Name    string
	Type    hm.Type
	Mutable bool
}

// CtorInfo is a declared enum constructor.
type CtorInfo struct {
	Name   string
	Owner  *TypeInfo
	Index  int
	Params hm.Types
}

// Instantiate returns the named type applied to args, along with the
// substitution that maps the declaration's variables to them. Passing nil
// args instantiates with fresh variables.
func (ti *TypeInfo) Instantiate(fresher hm.Fresher, module string, args hm.Types) (*hm.NamedType, hm.Subs) {
	if args == nil {
		args = make(hm.Types, len(ti.Vars))
		for i := range args {
			args[i] = fresher.Fresh()
		}
	}
	subs := hm.NewSubs()
	for i, tv := range ti.Vars {
		subs.Add(tv, args[i])
	}
	return hm.NewNamedType(module, ti.Name, args...), subs
}

// Field returns the named field and its position, or nil.
func (ti *TypeInfo) Field(name string) (*FieldInfo, int) {
	for i, f := range ti.Fields {
		if f.Name == name {
			return f, i
		}
	}
	return nil, -1
}

// FieldNames lists the fields in declaration order.
func (ti *TypeInfo) FieldNames() []string {
	names := make([]string, len(ti.Fields))
	for i, f := range ti.Fields {
		names[i] = f.Name
	}
	return names
}

// declareTypes registers every struct and enum, then elaborates their field
// and constructor types. Names are registered first so declarations may
// refer to each other and to themselves.
func (c *Checker) declareTypes(decls []*TypeDecl) error {
	for _, decl := range decls {
		ti := &TypeInfo{
			Name:   decl.Name,
			Params: decl.Params,
			Enum:   decl.Enum,
			Decl:   decl,
		}
		for range decl.Params {
			ti.Vars = append(ti.Vars, c.fresh())
		}
		c.types[decl.Name] = ti
		c.order = append(c.order, ti)
	}

	for _, ti := range c.order {
		scope := map[string]hm.Type{}
		for i, name := range ti.Params {
			scope[name] = ti.Vars[i]
		}
		for _, f := range ti.Decl.Fields {
			t, err := c.resolveType(f.Type, scope)
			if err != nil {
				return err
			}
			ti.Fields = append(ti.Fields, &FieldInfo{Name: f.Name, Type: t, Mutable: f.Mutable})
		}
		for i, v := range ti.Decl.Variants {
			ctor := &CtorInfo{Name: v.Name, Owner: ti, Index: i}
			for _, te := range v.Params {
				t, err := c.resolveType(te, scope)
				if err != nil {
					return err
				}
				ctor.Params = append(ctor.Params, t)
			}
			ti.Ctors = append(ti.Ctors, ctor)
			c.ctors[v.Name] = ctor
		}
	}
	return nil
}

var primitives = map[string]hm.Type{
	"int":    hm.Int,
	"float":  hm.Float,
	"bool":   hm.Bool,
	"string": hm.String,
	"char":   hm.Char,
	"unit":   hm.Unit,
}

// resolveType converts an annotation to a type. Type parameter names are
// looked up in scope, then in the enclosing function's type parameters.
func (c *Checker) resolveType(te TypeExpr, scope map[string]hm.Type) (hm.Type, error) {
	switch x := te.(type) {
	case *NamedTypeExpr:
		if t, ok := scope[x.Name]; ok && len(x.Args) == 0 {
			return t, nil
		}
		if t, ok := c.typeScope[x.Name]; ok && len(x.Args) == 0 {
			return t, nil
		}
		if t, ok := primitives[x.Name]; ok {
			if len(x.Args) > 0 {
				return nil, NewInferError(&ArityMismatchError{Name: x.Name, Expected: 0, Found: len(x.Args)}, x)
			}
			return t, nil
		}
		ti, ok := c.types[x.Name]
		if !ok {
			return nil, NewInferError(&UnknownTypeError{Name: x.Name}, x)
		}
		if len(x.Args) != len(ti.Params) {
			return nil, NewInferError(&ArityMismatchError{Name: x.Name, Expected: len(ti.Params), Found: len(x.Args)}, x)
		}
		args := make(hm.Types, len(x.Args))
		for i, a := range x.Args {
			t, err := c.resolveType(a, scope)
			if err != nil {
				return nil, err
			}
			args[i] = t
		}
		return hm.NewNamedType(c.Module, ti.Name, args...), nil
	case *TupleTypeExpr:
		if len(x.Elems) == 0 {
			return hm.Unit, nil
		}
		elems := make(hm.Types, len(x.Elems))
		for i, e := range x.Elems {
			t, err := c.resolveType(e, scope)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return hm.NewTupleType(elems...), nil
	case *ArrayTypeExpr:
		elem, err := c.resolveType(x.Elem, scope)
		if err != nil {
			return nil, err
		}
		return hm.ArrayType{Elem: elem}, nil
	case *FuncTypeExpr:
		params := make(hm.Types, len(x.Params))
		for i, p := range x.Params {
			t, err := c.resolveType(p, scope)
			if err != nil {
				return nil, err
			}
			params[i] = t
		}
		var ret hm.Type = hm.Unit
		if x.Ret != nil {
			t, err := c.resolveType(x.Ret, scope)
			if err != nil {
				return nil, err
			}
			ret = t
		}
		return hm.NewFnType(params, ret), nil
	}
	return nil, NewInferError(&UnknownTypeError{Name: "?"}, te)
}

// typeInfo returns the declaration behind a named type.
func (c *Checker) typeInfo(t hm.Type) (*TypeInfo, *hm.NamedType, bool) {
	nt, ok := c.apply(t).(*hm.NamedType)
	if !ok || nt.Module != c.Module {
		return nil, nil, false
	}
	ti, ok := c.types[nt.Named]
	return ti, nt, ok
}

// structsWithFields returns every struct whose field names are exactly
// names, in declaration order.
func (c *Checker) structsWithFields(names []string) []*TypeInfo {
	want := slices.Sorted(slices.Values(names))
	var found []*TypeInfo
	for _, ti := range c.order {
		if ti.Enum {
			continue
		}
		have := slices.Sorted(slices.Values(ti.FieldNames()))
		if slices.Equal(want, have) {
			found = append(found, ti)
		}
	}
	return found
}

// structsDeclaring returns every struct that declares all of names.
func (c *Checker) structsDeclaring(names ...string) []*TypeInfo {
	var found []*TypeInfo
	for _, ti := range c.order {
		if ti.Enum {
			continue
		}
		all := true
		for _, n := range names {
			if f, _ := ti.Field(n); f == nil {
				all = false
				break
			}
		}
		if all {
			found = append(found, ti)
		}
	}
	return found
}
