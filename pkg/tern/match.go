package tern

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/vito/tern/pkg/hm"
)

// maxWitnesses bounds how many unmatched values are reported.
const maxWitnesses = 8

type patBinding struct {
	Name    string
	Binding *Binding
	Type    hm.Type
	Node    Node
}

// bindPattern checks a pattern against the type of the value it matches and
// binds every name it introduces. arm is the match arm index, or -1 for a
// let/var pattern.
func (c *Checker) bindPattern(ctx context.Context, p Pattern, t hm.Type, arm int) error {
	var binds []patBinding
	if err := c.checkPattern(ctx, p, t, arm, &binds); err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, b := range binds {
		if seen[b.Name] {
			return NewInferError(&DuplicateBindingError{Name: b.Name}, b.Node)
		}
		seen[b.Name] = true
		if b.Binding.IsTopLevel() {
			// globals were seeded before checking; forward uses share the type
			if scheme, ok := c.env.SchemeOf(b.Binding.Key()); ok {
				if prev, mono := scheme.Type(); mono {
					if err := c.unify(b.Node, prev, b.Type, "global "+b.Name); err != nil {
						return err
					}
				}
			}
		}
		c.bind(b.Binding, b.Type)
	}
	return nil
}

func (c *Checker) checkPattern(ctx context.Context, p Pattern, t hm.Type, arm int, out *[]patBinding) error {
	switch x := p.(type) {
	case *WildcardPattern:
		return nil

	case *BindPattern:
		*out = append(*out, patBinding{Name: x.Name, Binding: x.Binding, Type: t, Node: x})
		return nil

	case *AsPattern:
		if err := c.checkPattern(ctx, x.Pattern, t, arm, out); err != nil {
			return err
		}
		*out = append(*out, patBinding{Name: x.Name, Binding: x.Binding, Type: t, Node: x})
		return nil

	case *LiteralPattern:
		lt, err := c.infer(ctx, x.Value)
		if err != nil {
			return err
		}
		return c.unify(x, t, lt, "pattern")

	case *CtorPattern:
		ctor, ok := c.ctors[x.Name]
		if !ok {
			return NewInferError(&UnboundIdentifierError{Name: x.Name, Pos: x.Loc.Pos()}, x)
		}
		x.Ctor = ctor
		if len(x.Args) != len(ctor.Params) {
			return NewInferError(&ArityMismatchError{Name: x.Name, Expected: len(ctor.Params), Found: len(x.Args)}, x)
		}
		inst, subs := ctor.Owner.Instantiate(c.fresher, c.Module, nil)
		if err := c.unify(x, t, inst, "pattern "+x.Name); err != nil {
			return err
		}
		for i, arg := range x.Args {
			if err := c.checkPattern(ctx, arg, ctor.Params[i].Apply(subs).(hm.Type), arm, out); err != nil {
				return err
			}
		}
		return nil

	case *TuplePattern:
		elems := make(hm.Types, len(x.Elems))
		for i := range elems {
			elems[i] = c.fresh()
		}
		if err := c.unify(x, t, hm.NewTupleType(elems...), "tuple pattern"); err != nil {
			return err
		}
		for i, elem := range x.Elems {
			if err := c.checkPattern(ctx, elem, elems[i], arm, out); err != nil {
				return err
			}
		}
		return nil

	case *StructPattern:
		names := make([]string, len(x.Fields))
		for i, f := range x.Fields {
			names[i] = f.Name
		}
		if isTypeVar(c.apply(t)) {
			candidates := c.structsDeclaring(names...)
			switch len(candidates) {
			case 0:
				return NewInferError(&StructFieldMismatchError{Fields: names}, x)
			case 1:
				inst, _ := candidates[0].Instantiate(c.fresher, c.Module, nil)
				if err := c.unify(x, t, inst, "struct pattern"); err != nil {
					return err
				}
			default:
				cands := make([]string, len(candidates))
				for i, ti := range candidates {
					cands[i] = ti.Name
				}
				return NewInferError(&StructFieldMismatchError{Fields: names, Candidates: cands}, x)
			}
		}
		ti, nt, ok := c.typeInfo(t)
		if !ok || ti.Enum {
			return NewInferError(&TypeMismatchError{
				Expected: c.apply(t),
				Found:    hm.TypeConst("struct"),
				Pos:      x.Loc.Pos(),
				Reason:   "struct pattern",
			}, x)
		}
		x.Struct = ti
		_, subs := ti.Instantiate(c.fresher, c.Module, nt.Args)
		for _, f := range x.Fields {
			field, _ := ti.Field(f.Name)
			if field == nil {
				return NewInferError(&UnknownFieldError{Type: c.apply(t), Field: f.Name}, f.Pattern)
			}
			if err := c.checkPattern(ctx, f.Pattern, field.Type.Apply(subs).(hm.Type), arm, out); err != nil {
				return err
			}
		}
		return nil

	case *OrPattern:
		var first []patBinding
		for i, alt := range x.Alts {
			var binds []patBinding
			if err := c.checkPattern(ctx, alt, t, arm, &binds); err != nil {
				return err
			}
			if i == 0 {
				first = binds
				continue
			}
			if err := c.consistentBindings(x, arm, first, binds); err != nil {
				return err
			}
		}
		*out = append(*out, first...)
		return nil
	}
	return fmt.Errorf("unknown pattern %T", p)
}

func (c *Checker) consistentBindings(node Node, arm int, a, b []patBinding) error {
	names := func(bs []patBinding) []string {
		ns := make([]string, len(bs))
		for i, x := range bs {
			ns[i] = x.Name
		}
		slices.Sort(ns)
		return slices.Compact(ns)
	}
	an, bn := names(a), names(b)
	if !slices.Equal(an, bn) {
		var diff []string
		for _, n := range an {
			if !slices.Contains(bn, n) {
				diff = append(diff, n)
			}
		}
		for _, n := range bn {
			if !slices.Contains(an, n) {
				diff = append(diff, n)
			}
		}
		return NewInferError(&InconsistentPatternBindingsError{Arm: arm, Names: diff}, node)
	}
	for _, x := range a {
		for _, y := range b {
			if x.Name != y.Name {
				continue
			}
			if !c.unifies(x.Type, y.Type) {
				return NewInferError(&InconsistentPatternBindingsError{Arm: arm, Names: []string{x.Name}}, node)
			}
			if err := c.unify(node, x.Type, y.Type, ""); err != nil {
				return err
			}
		}
	}
	return nil
}

// compileMatch checks that the arms cover every value of the scrutinee type
// and compiles them to a decision list.
func (c *Checker) compileMatch(m *Match, st hm.Type, patterns []Pattern) ([]*MatchRow, error) {
	matrix := make([][]*spat, len(patterns))
	for i, p := range patterns {
		matrix[i] = []*spat{simplify(p)}
	}
	if missing := c.missing(matrix, hm.Types{c.apply(st)}); len(missing) > 0 {
		return nil, NewInferError(&NonExhaustiveMatchError{Missing: firstColumn(missing)}, m)
	}
	var rows []*MatchRow
	for i, p := range patterns {
		for _, part := range compilePattern(p, nil) {
			rows = append(rows, &MatchRow{Arm: i, Tests: part.tests, Binds: part.binds})
		}
	}
	return rows, nil
}

// compileLet checks that a let/var pattern is irrefutable and compiles it.
func (c *Checker) compileLet(l *Let, vt hm.Type) ([]*MatchRow, error) {
	matrix := [][]*spat{{simplify(l.Pattern)}}
	if missing := c.missing(matrix, hm.Types{c.apply(vt)}); len(missing) > 0 {
		return nil, NewInferError(&RefutablePatternInLetError{Missing: firstColumn(missing)}, l.Pattern)
	}
	var rows []*MatchRow
	for _, part := range compilePattern(l.Pattern, nil) {
		rows = append(rows, &MatchRow{Tests: part.tests, Binds: part.binds})
	}
	return rows, nil
}

func firstColumn(witnesses [][]string) []string {
	col := make([]string, len(witnesses))
	for i, w := range witnesses {
		col[i] = w[0]
	}
	return col
}

// spat is a pattern reduced to what matters for coverage: a constructor
// applied to sub-patterns, a wildcard, or a set of alternatives.
type spat struct {
	ctor string
	args []*spat
	alts []*spat
}

var wildcard = &spat{}

func (p *spat) isWild() bool {
	return p.ctor == "" && p.alts == nil
}

const (
	tupleCtor = "(..)"
	unitCtor  = "()"
)

func simplify(p Pattern) *spat {
	switch x := p.(type) {
	case *WildcardPattern, *BindPattern:
		return wildcard
	case *AsPattern:
		return simplify(x.Pattern)
	case *LiteralPattern:
		v, _ := literalValue(x.Value)
		switch v := v.(type) {
		case UnitValue:
			return &spat{ctor: unitCtor}
		case BoolValue:
			return &spat{ctor: v.String()}
		default:
			// literals of infinite types never complete a signature
			return &spat{ctor: "lit " + v.String()}
		}
	case *CtorPattern:
		sp := &spat{ctor: x.Name}
		for _, a := range x.Args {
			sp.args = append(sp.args, simplify(a))
		}
		return sp
	case *TuplePattern:
		sp := &spat{ctor: tupleCtor}
		for _, e := range x.Elems {
			sp.args = append(sp.args, simplify(e))
		}
		return sp
	case *StructPattern:
		sp := &spat{ctor: x.Struct.Name}
		for _, f := range x.Struct.Fields {
			arg := wildcard
			for _, fp := range x.Fields {
				if fp.Name == f.Name {
					arg = simplify(fp.Pattern)
				}
			}
			sp.args = append(sp.args, arg)
		}
		return sp
	case *OrPattern:
		sp := &spat{}
		for _, alt := range x.Alts {
			sp.alts = append(sp.alts, simplify(alt))
		}
		return sp
	}
	return wildcard
}

// ctorSig is one constructor of a type with finitely many shapes.
type ctorSig struct {
	name  string
	args  hm.Types
	label func(args []string) string
}

// signature returns every constructor of t, or nil if values of t cannot be
// enumerated by shape.
func (c *Checker) signatureOf(t hm.Type) []ctorSig {
	t = c.apply(t)
	switch x := t.(type) {
	case hm.TypeConst:
		switch x {
		case hm.Bool:
			return []ctorSig{
				{name: "true", label: constLabel("true")},
				{name: "false", label: constLabel("false")},
			}
		case hm.Unit:
			return []ctorSig{{name: unitCtor, label: constLabel("()")}}
		}
	case *hm.TupleType:
		return []ctorSig{{name: tupleCtor, args: x.Elems, label: func(args []string) string {
			return "(" + strings.Join(args, ", ") + ")"
		}}}
	case *hm.NamedType:
		ti, nt, ok := c.typeInfo(x)
		if !ok {
			return nil
		}
		_, subs := ti.Instantiate(c.fresher, c.Module, nt.Args)
		if !ti.Enum {
			var args hm.Types
			for _, f := range ti.Fields {
				args = append(args, f.Type.Apply(subs).(hm.Type))
			}
			names := ti.FieldNames()
			return []ctorSig{{name: ti.Name, args: args, label: func(args []string) string {
				fields := make([]string, len(args))
				for i, a := range args {
					fields[i] = names[i] + ": " + a
				}
				return "{" + strings.Join(fields, ", ") + "}"
			}}}
		}
		sigs := make([]ctorSig, 0, len(ti.Ctors))
		for _, ctor := range ti.Ctors {
			var args hm.Types
			for _, p := range ctor.Params {
				args = append(args, p.Apply(subs).(hm.Type))
			}
			name := ctor.Name
			sigs = append(sigs, ctorSig{name: name, args: args, label: func(args []string) string {
				if len(args) == 0 {
					return name
				}
				return name + "(" + strings.Join(args, ", ") + ")"
			}})
		}
		return sigs
	}
	return nil
}

func constLabel(s string) func([]string) string {
	return func([]string) string { return s }
}

// missing returns example value vectors, rendered as patterns, that no row
// of the matrix matches. A nil result means the rows are exhaustive.
func (c *Checker) missing(rows [][]*spat, types hm.Types) [][]string {
	if len(types) == 0 {
		if len(rows) == 0 {
			return [][]string{{}}
		}
		return nil
	}
	rows = expandOr(rows)

	used := map[string]bool{}
	for _, row := range rows {
		if !row[0].isWild() {
			used[row[0].ctor] = true
		}
	}

	sigs := c.signatureOf(types[0])
	complete := sigs != nil
	for _, sig := range sigs {
		if !used[sig.name] {
			complete = false
		}
	}

	var out [][]string
	if complete {
		for _, sig := range sigs {
			spec := specialize(rows, sig.name, len(sig.args))
			sub := append(slices.Clone(sig.args), types[1:]...)
			for _, w := range c.missing(spec, sub) {
				head := sig.label(w[:len(sig.args)])
				out = append(out, append([]string{head}, w[len(sig.args):]...))
				if len(out) >= maxWitnesses {
					return out
				}
			}
		}
		return out
	}

	var def [][]*spat
	for _, row := range rows {
		if row[0].isWild() {
			def = append(def, row[1:])
		}
	}
	rest := c.missing(def, types[1:])
	if len(rest) == 0 {
		return nil
	}
	var heads []string
	for _, sig := range sigs {
		if !used[sig.name] {
			blanks := make([]string, len(sig.args))
			for i := range blanks {
				blanks[i] = "_"
			}
			heads = append(heads, sig.label(blanks))
		}
	}
	if sigs == nil {
		heads = []string{"_"}
	}
	for _, w := range rest {
		for _, h := range heads {
			out = append(out, append([]string{h}, w...))
			if len(out) >= maxWitnesses {
				return out
			}
		}
	}
	return out
}

// expandOr replaces rows whose first pattern has alternatives with one row
// per alternative.
func expandOr(rows [][]*spat) [][]*spat {
	var out [][]*spat
	for _, row := range rows {
		if row[0].alts == nil {
			out = append(out, row)
			continue
		}
		for _, alt := range row[0].alts {
			expanded := append([]*spat{alt}, row[1:]...)
			out = append(out, expandOr([][]*spat{expanded})...)
		}
	}
	return out
}

// specialize keeps the rows that can match constructor ctor in the first
// column, replacing it with the constructor's sub-patterns.
func specialize(rows [][]*spat, ctor string, arity int) [][]*spat {
	var out [][]*spat
	for _, row := range rows {
		head := row[0]
		switch {
		case head.isWild():
			next := make([]*spat, 0, arity+len(row)-1)
			for range arity {
				next = append(next, wildcard)
			}
			out = append(out, append(next, row[1:]...))
		case head.ctor == ctor:
			next := slices.Clone(head.args)
			out = append(out, append(next, row[1:]...))
		}
	}
	return out
}

// MatchRow is one compiled pattern alternative: if every test passes, the
// bindings are made and arm Arm is selected.
type MatchRow struct {
	Arm   int
	Tests []PatternTest
	Binds []PatternBind
}

// PatternTest checks the value found by following Path from the scrutinee:
// either its enum constructor is Ctor, or it equals Value.
type PatternTest struct {
	Path  []int
	Ctor  string
	Value Value
}

// PatternBind binds the value at Path.
type PatternBind struct {
	Path    []int
	Binding *Binding
}

// Matches runs the row's tests in order. Tests of a sub-value come after
// the constructor test of its parent, so paths are only followed once they
// are known to exist.
func (r *MatchRow) Matches(v Value) bool {
	for _, test := range r.Tests {
		sub := valueAt(v, test.Path)
		if test.Ctor != "" {
			ev, ok := sub.(EnumValue)
			if !ok || ev.Ctor != test.Ctor {
				return false
			}
			continue
		}
		if !ValuesEqual(sub, test.Value) {
			return false
		}
	}
	return true
}

// Bind defines the row's bindings in env.
func (r *MatchRow) Bind(env *Env, v Value) {
	for _, b := range r.Binds {
		env.Define(b.Binding, valueAt(v, b.Path))
	}
}

func valueAt(v Value, path []int) Value {
	for _, i := range path {
		switch x := v.(type) {
		case EnumValue:
			v = x.Args[i]
		case TupleValue:
			v = x.Elems[i]
		case *StructValue:
			v = x.Values[i]
		}
	}
	return v
}

type rowPart struct {
	tests []PatternTest
	binds []PatternBind
}

func subPath(path []int, i int) []int {
	return append(slices.Clone(path), i)
}

// compilePattern returns one part per combination of or-alternatives.
func compilePattern(p Pattern, path []int) []rowPart {
	switch x := p.(type) {
	case *WildcardPattern:
		return []rowPart{{}}
	case *BindPattern:
		return []rowPart{{binds: []PatternBind{{Path: path, Binding: x.Binding}}}}
	case *AsPattern:
		parts := compilePattern(x.Pattern, path)
		for i := range parts {
			parts[i].binds = append(parts[i].binds, PatternBind{Path: path, Binding: x.Binding})
		}
		return parts
	case *LiteralPattern:
		v, _ := literalValue(x.Value)
		return []rowPart{{tests: []PatternTest{{Path: path, Value: v}}}}
	case *CtorPattern:
		parts := []rowPart{{tests: []PatternTest{{Path: path, Ctor: x.Name}}}}
		for i, arg := range x.Args {
			parts = product(parts, compilePattern(arg, subPath(path, i)))
		}
		return parts
	case *TuplePattern:
		parts := []rowPart{{}}
		for i, elem := range x.Elems {
			parts = product(parts, compilePattern(elem, subPath(path, i)))
		}
		return parts
	case *StructPattern:
		parts := []rowPart{{}}
		for _, f := range x.Fields {
			_, idx := x.Struct.Field(f.Name)
			parts = product(parts, compilePattern(f.Pattern, subPath(path, idx)))
		}
		return parts
	case *OrPattern:
		var parts []rowPart
		for _, alt := range x.Alts {
			parts = append(parts, compilePattern(alt, path)...)
		}
		return parts
	}
	return nil
}

func product(as, bs []rowPart) []rowPart {
	out := make([]rowPart, 0, len(as)*len(bs))
	for _, a := range as {
		for _, b := range bs {
			out = append(out, rowPart{
				tests: append(slices.Clone(a.tests), b.tests...),
				binds: append(slices.Clone(a.binds), b.binds...),
			})
		}
	}
	return out
}
