package hm

import (
	"fmt"
	"slices"
	"strings"
)

// Scheme represents a type scheme for polymorphic types
type Scheme struct {
	tvs []TypeVariable
	t   Type
}

// NewScheme creates a new type scheme
func NewScheme(tvs []TypeVariable, t Type) *Scheme {
	return &Scheme{tvs: tvs, t: t}
}

// Mono creates a scheme with no quantified variables
func Mono(t Type) *Scheme {
	return &Scheme{t: t}
}

// Type returns the underlying type and whether it's monomorphic
func (s *Scheme) Type() (Type, bool) {
	// A scheme is monomorphic if it has no bound type variables
	return s.t, len(s.tvs) == 0
}

// TypeVars returns the bound type variables
func (s *Scheme) TypeVars() []TypeVariable {
	return s.tvs
}

// Apply applies a substitution to a scheme
func (s *Scheme) Apply(subs Subs) Substitutable {
	// Remove substitutions for bound variables
	filteredSubs := make(Subs)
	for tv, t := range subs {
		if !slices.Contains(s.tvs, tv) {
			filteredSubs[tv] = t
		}
	}

	return &Scheme{
		tvs: s.tvs,
		t:   s.t.Apply(filteredSubs).(Type),
	}
}

// FreeTypeVar returns the free type variables in the scheme
func (s *Scheme) FreeTypeVar() TypeVarSet {
	ftvs := s.t.FreeTypeVar()

	// Remove bound variables
	for _, tv := range s.tvs {
		delete(ftvs, tv)
	}

	return ftvs
}

// Clone creates a copy of the scheme
func (s *Scheme) Clone() *Scheme {
	return &Scheme{tvs: slices.Clone(s.tvs), t: s.t}
}

// String returns a string representation
func (s *Scheme) String() string {
	if len(s.tvs) == 0 {
		return s.t.String()
	}

	tvStrs := make([]string, len(s.tvs))
	for i, tv := range s.tvs {
		tvStrs[i] = tv.String()
	}

	return fmt.Sprintf("forall %s. %s", strings.Join(tvStrs, " "), s.t)
}
