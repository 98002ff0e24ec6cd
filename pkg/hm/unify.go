package hm

import (
	"fmt"
)

// UnificationError represents errors during unification
type UnificationError struct {
	Left  Type
	Right Type
	msg   string
}

func (e UnificationError) Error() string {
	return e.msg
}

// Unify attempts to unify two types, returning a substitution or error
func Unify(t1, t2 Type) (Subs, error) {
	return unify(t1, t2)
}

func unify(t1, t2 Type) (Subs, error) {
	// Handle type variables
	if tv1, ok := t1.(TypeVariable); ok {
		return bindVar(tv1, t2)
	}

	if tv2, ok := t2.(TypeVariable); ok {
		return bindVar(tv2, t1)
	}

	switch a := t1.(type) {
	case TypeConst, TypeParam:
		if a.Eq(t2) {
			return NewSubs(), nil
		}
	case *FunctionType:
		if b, ok := t2.(*FunctionType); ok {
			if len(a.params) != len(b.params) {
				return nil, mismatch(t1, t2, "Cannot unify %s with %s: expected %d parameters, got %d", t1, t2, len(a.params), len(b.params))
			}
			return unifyAll(t1, t2, a.Types(), b.Types())
		}
	case *TupleType:
		if b, ok := t2.(*TupleType); ok && len(a.Elems) == len(b.Elems) {
			return unifyAll(t1, t2, a.Elems, b.Elems)
		}
	case ArrayType:
		if b, ok := t2.(ArrayType); ok {
			return unify(a.Elem, b.Elem)
		}
	case *NamedType:
		if b, ok := t2.(*NamedType); ok && a.SameDecl(b) && len(a.Args) == len(b.Args) {
			return unifyAll(t1, t2, a.Args, b.Args)
		}
	}

	return nil, mismatch(t1, t2, "Cannot unify %s with %s", t1, t2)
}

// unifyAll unifies two component lists pairwise, threading the substitution
// through each step.
func unifyAll(t1, t2 Type, as, bs Types) (Subs, error) {
	subs := NewSubs()
	for i := range as {
		a := as[i].Apply(subs).(Type)
		b := bs[i].Apply(subs).(Type)
		s, err := unify(a, b)
		if err != nil {
			if _, ok := err.(UnificationError); ok {
				// report the outermost types; they read better than the components
				return nil, mismatch(t1.Apply(subs).(Type), t2.Apply(subs).(Type), "%s", err)
			}
			return nil, err
		}
		subs = subs.Compose(s)
	}
	return subs, nil
}

func mismatch(t1, t2 Type, format string, args ...any) UnificationError {
	return UnificationError{Left: t1, Right: t2, msg: fmt.Sprintf(format, args...)}
}

// bindVar binds a type variable to a type
func bindVar(tv TypeVariable, t Type) (Subs, error) {
	// Check if tv and t are the same
	if tv2, ok := t.(TypeVariable); ok && tv == tv2 {
		return NewSubs(), nil
	}

	// Occurs check
	if occursCheck(tv, t) {
		return nil, mismatch(tv, t, "Occurs check failed: %s occurs in %s", tv, t)
	}

	subs := NewSubs()
	subs.Add(tv, t)
	return subs, nil
}

// occursCheck checks if a type variable occurs in a type
func occursCheck(tv TypeVariable, t Type) bool {
	ftvs := t.FreeTypeVar()
	return ftvs.Contains(tv)
}
