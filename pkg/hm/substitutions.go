package hm

// Subs maps solved type variables to their types. The checker keeps one for
// a whole program and composes every unifier into it.
type Subs map[TypeVariable]Type

func NewSubs() Subs {
	return make(Subs)
}

// Apply replaces every solved variable in t.
func (s Subs) Apply(t Type) Type {
	return t.Apply(s).(Type)
}

// Compose returns a substitution equivalent to applying s and then other.
// Variables solved by both keep their binding from s.
func (s Subs) Compose(other Subs) Subs {
	result := make(Subs, len(s)+len(other))
	for tv, t := range s {
		result[tv] = other.Apply(t)
	}
	for tv, t := range other {
		if _, solved := result[tv]; !solved {
			result[tv] = t
		}
	}
	return result
}

// Add binds tv to t in place.
func (s Subs) Add(tv TypeVariable, t Type) Subs {
	s[tv] = t
	return s
}
