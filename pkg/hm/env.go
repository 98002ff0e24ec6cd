package hm

// Env represents a type environment
type Env interface {
	SchemeOf(name string) (*Scheme, bool)
	Clone() Env
	Add(name string, scheme *Scheme) Env
	Remove(name string) Env
	FreeTypeVar() TypeVarSet
	Apply(subs Subs) Substitutable
}

// SimpleEnv is a simple implementation of Env
type SimpleEnv struct {
	schemes map[string]*Scheme
}

// NewSimpleEnv creates a new SimpleEnv
func NewSimpleEnv() *SimpleEnv {
	return &SimpleEnv{
		schemes: make(map[string]*Scheme),
	}
}

// SchemeOf returns the scheme for a name
func (env *SimpleEnv) SchemeOf(name string) (*Scheme, bool) {
	scheme, exists := env.schemes[name]
	return scheme, exists
}

// Clone creates a copy of the environment
func (env *SimpleEnv) Clone() Env {
	newEnv := NewSimpleEnv()
	for name, scheme := range env.schemes {
		newEnv.schemes[name] = scheme.Clone()
	}
	return newEnv
}

// Add adds a binding to the environment
func (env *SimpleEnv) Add(name string, scheme *Scheme) Env {
	env.schemes[name] = scheme
	return env
}

// Remove removes a binding from the environment
func (env *SimpleEnv) Remove(name string) Env {
	delete(env.schemes, name)
	return env
}

// FreeTypeVar returns the free type variables in the environment
func (env *SimpleEnv) FreeTypeVar() TypeVarSet {
	ftvs := NewTypeVarSet()
	for _, scheme := range env.schemes {
		ftvs.Union(scheme.FreeTypeVar())
	}
	return ftvs
}

// Apply applies a substitution to the environment
func (env *SimpleEnv) Apply(subs Subs) Substitutable {
	newEnv := NewSimpleEnv()
	for name, scheme := range env.schemes {
		newEnv.schemes[name] = scheme.Apply(subs).(*Scheme)
	}
	return newEnv
}
