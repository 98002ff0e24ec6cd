package hm

// Generalize quantifies every type variable of t that is not free in env.
func Generalize(env Env, t Type) *Scheme {
	return GeneralizeExcept(env, t, nil)
}

// GeneralizeExcept is Generalize with the variables in fixed also left
// unquantified, for variables that are still constrained elsewhere.
func GeneralizeExcept(env Env, t Type, fixed TypeVarSet) *Scheme {
	free := t.FreeTypeVar()
	if env != nil {
		free = free.Minus(env.FreeTypeVar())
	}
	free = free.Minus(fixed)
	var quantified []TypeVariable
	for tv := range free.All() {
		quantified = append(quantified, tv)
	}
	return NewScheme(quantified, t)
}

// Instantiate creates a fresh instance of a type scheme
func Instantiate(fresher Fresher, scheme *Scheme) Type {
	if len(scheme.tvs) == 0 {
		return scheme.t
	}

	// Create fresh type variables for each quantified variable
	subs := NewSubs()
	for _, tv := range scheme.tvs {
		subs.Add(tv, fresher.Fresh())
	}

	return scheme.t.Apply(subs).(Type)
}

// Fresher interface for generating fresh type variables
type Fresher interface {
	Fresh() TypeVariable
}

// SimpleFresher hands out type variables in allocation order
type SimpleFresher struct {
	counter int
}

// NewSimpleFresher creates a new SimpleFresher
func NewSimpleFresher() *SimpleFresher {
	return &SimpleFresher{counter: 0}
}

// Fresh generates a fresh type variable
func (f *SimpleFresher) Fresh() TypeVariable {
	tv := TypeVariable(f.counter)
	f.counter++
	return tv
}
