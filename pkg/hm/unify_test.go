package hm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnifyConstants(t *testing.T) {
	subs, err := Unify(Int, Int)
	require.NoError(t, err)
	require.Empty(t, subs)

	_, err = Unify(Int, String)
	require.Error(t, err)
	var uerr UnificationError
	require.ErrorAs(t, err, &uerr)
	require.Equal(t, Int, uerr.Left)
	require.Equal(t, String, uerr.Right)
}

func TestUnifyBindsVariables(t *testing.T) {
	a := TypeVariable(0)
	b := TypeVariable(1)

	fn1 := NewFnType(Types{a, Int}, a)
	fn2 := NewFnType(Types{String, b}, String)

	subs, err := Unify(fn1, fn2)
	require.NoError(t, err)
	require.Equal(t, String, subs.Apply(a))
	require.Equal(t, Int, subs.Apply(b))
	require.True(t, subs.Apply(fn1).Eq(subs.Apply(fn2)))
}

func TestUnifyThreadsSubstitution(t *testing.T) {
	a := TypeVariable(0)

	// (a, a) against (int, string) must fail even though each pair unifies alone
	_, err := Unify(NewTupleType(a, a), NewTupleType(Int, String))
	require.Error(t, err)
}

func TestUnifyOccursCheck(t *testing.T) {
	a := TypeVariable(0)
	_, err := Unify(a, ArrayType{Elem: a})
	require.ErrorContains(t, err, "Occurs check")
}

func TestUnifyArity(t *testing.T) {
	_, err := Unify(NewFnType(Types{Int}, Unit), NewFnType(Types{Int, Int}, Unit))
	require.ErrorContains(t, err, "expected 1 parameters, got 2")

	_, err = Unify(NewTupleType(Int, Int), NewTupleType(Int, Int, Int))
	require.Error(t, err)
}

func TestUnifyNamedTypesAreNominal(t *testing.T) {
	a := TypeVariable(0)
	list := NewNamedType("main", "list", a)

	subs, err := Unify(list, NewNamedType("main", "list", Int))
	require.NoError(t, err)
	require.Equal(t, Int, subs.Apply(a))

	_, err = Unify(NewNamedType("main", "point", Int, Int), NewNamedType("main", "pair", Int, Int))
	require.Error(t, err)

	_, err = Unify(NewNamedType("a", "point"), NewNamedType("b", "point"))
	require.Error(t, err)
}

func TestUnifyTypeParamsAreRigid(t *testing.T) {
	_, err := Unify(TypeParam("T"), Int)
	require.Error(t, err)

	_, err = Unify(TypeParam("T"), TypeParam("U"))
	require.Error(t, err)

	subs, err := Unify(TypeVariable(0), TypeParam("T"))
	require.NoError(t, err)
	require.Equal(t, TypeParam("T"), subs.Apply(TypeVariable(0)))
}

func TestComposeAppliesInOrder(t *testing.T) {
	a, b := TypeVariable(0), TypeVariable(1)

	first := NewSubs().Add(a, ArrayType{Elem: b})
	second := NewSubs().Add(b, Int)

	composed := first.Compose(second)
	require.True(t, composed.Apply(a).Eq(ArrayType{Elem: Int}))
	require.Equal(t, Int, composed.Apply(b))
}

func TestGeneralizeAndInstantiate(t *testing.T) {
	a := TypeVariable(0)
	id := NewFnType(Types{a}, a)

	scheme := Generalize(NewSimpleEnv(), id)
	require.Equal(t, []TypeVariable{a}, scheme.TypeVars())

	fresher := &SimpleFresher{counter: 10}
	inst := Instantiate(fresher, scheme).(*FunctionType)
	require.Equal(t, TypeVariable(10), inst.Params()[0])
	require.Equal(t, TypeVariable(10), inst.Ret())

	// variables free in the environment stay monomorphic
	env := NewSimpleEnv()
	env.Add("x", Mono(a))
	require.Empty(t, Generalize(env, id).TypeVars())
}

func TestGeneralizeQuantifiesInAllocationOrder(t *testing.T) {
	a, b, c := TypeVariable(7), TypeVariable(2), TypeVariable(4)
	fn := NewFnType(Types{a, b}, NewTupleType(c, b))

	scheme := Generalize(nil, fn)
	require.Equal(t, []TypeVariable{b, c, a}, scheme.TypeVars())

	scheme = GeneralizeExcept(nil, fn, NewTypeVarSet(c))
	require.Equal(t, []TypeVariable{b, a}, scheme.TypeVars())
}

func TestTypeVarSetMinus(t *testing.T) {
	set := NewTypeVarSet(1, 2, 3)
	rest := set.Minus(NewTypeVarSet(2))
	require.Equal(t, NewTypeVarSet(1, 3), rest)
	require.True(t, set.Contains(2))
}
