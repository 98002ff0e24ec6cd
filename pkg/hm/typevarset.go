package hm

import (
	"iter"
	"maps"
	"slices"
)

// TypeVarSet is a set of type variables.
type TypeVarSet map[TypeVariable]struct{}

func NewTypeVarSet(tvs ...TypeVariable) TypeVarSet {
	set := make(TypeVarSet, len(tvs))
	for _, tv := range tvs {
		set[tv] = struct{}{}
	}
	return set
}

// Union adds every variable of other to the set and returns it.
func (tvs TypeVarSet) Union(other TypeVarSet) TypeVarSet {
	maps.Copy(tvs, other)
	return tvs
}

// Minus returns the variables of the set that are not in other.
func (tvs TypeVarSet) Minus(other TypeVarSet) TypeVarSet {
	result := make(TypeVarSet, len(tvs))
	for tv := range tvs {
		if !other.Contains(tv) {
			result[tv] = struct{}{}
		}
	}
	return result
}

func (tvs TypeVarSet) Contains(tv TypeVariable) bool {
	_, ok := tvs[tv]
	return ok
}

func (tvs TypeVarSet) Add(tv TypeVariable) {
	tvs[tv] = struct{}{}
}

// All yields the variables in allocation order, so schemes quantify them
// in a stable order.
func (tvs TypeVarSet) All() iter.Seq[TypeVariable] {
	return slices.Values(slices.Sorted(maps.Keys(tvs)))
}
