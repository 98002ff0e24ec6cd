package tern

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/pkg/errors"
	"github.com/vito/tern/pkg/hm"
)

// Identifier is a use of a variable, parameter or function name.
type Identifier struct {
	InferredTypeHolder
	Name string
	// Binding is what the name refers to. For an overloaded top-level
	// function it is left nil by the resolver and filled in by the checker.
	Binding *Binding
	// Candidates are the overloads of a top-level function name.
	Candidates []*Binding
	Loc        *SourceLocation
}

var _ Expr = (*Identifier)(nil)

func (i *Identifier) GetSourceLocation() *SourceLocation { return i.Loc }
func (i *Identifier) Walk(fn func(Node) bool)            { fn(i) }

func (i *Identifier) Infer(ctx context.Context, c *Checker) (hm.Type, error) {
	if i.Binding == nil {
		if len(i.Candidates) != 1 {
			return nil, NewInferError(&AmbiguousMethodError{
				Name:       i.Name,
				Candidates: describeBindings(i.Candidates),
			}, i)
		}
		i.Binding = i.Candidates[0]
	}
	return c.lookup(i.Binding)
}

func (i *Identifier) Eval(ctx context.Context, env *Env) (Value, error) {
	return WithEvalErrorHandling(ctx, i, func() (Value, error) {
		cell, ok := env.Lookup(i.Binding)
		if !ok {
			return nil, errors.Errorf("no value for %s", i.Binding.Key())
		}
		if !cell.Init {
			return nil, &UseBeforeInitError{Name: i.Name}
		}
		return cell.Value, nil
	})
}

func describeBindings(bs []*Binding) []string {
	descs := make([]string, len(bs))
	for i, b := range bs {
		if b.Kind == BuiltinBinding {
			descs[i] = "builtin " + b.Name
		} else {
			descs[i] = fmt.Sprintf("%s (%s)", b.Name, b.Loc)
		}
	}
	return descs
}

// BinaryOp is a binary operator expression.
type BinaryOp struct {
	InferredTypeHolder
	Op    TokenKind
	Left  Expr
	Right Expr
	Loc   *SourceLocation
}

var _ Expr = (*BinaryOp)(nil)

func (b *BinaryOp) GetSourceLocation() *SourceLocation { return b.Loc }

func (b *BinaryOp) Walk(fn func(Node) bool) {
	if !fn(b) {
		return
	}
	b.Left.Walk(fn)
	b.Right.Walk(fn)
}

func (b *BinaryOp) Infer(ctx context.Context, c *Checker) (hm.Type, error) {
	lt, err := c.infer(ctx, b.Left)
	if err != nil {
		return nil, err
	}
	if b.Op == AND || b.Op == OR {
		if err := c.unify(b.Left, hm.Bool, lt, "operand of "+b.Op.String()); err != nil {
			return nil, err
		}
	}
	rt, err := c.infer(ctx, b.Right)
	if err != nil {
		return nil, err
	}
	reason := "operands of " + b.Op.String() + " must have the same type"
	switch b.Op {
	case AND, OR:
		if err := c.unify(b.Right, hm.Bool, rt, "operand of "+b.Op.String()); err != nil {
			return nil, err
		}
		return hm.Bool, nil
	case EQ, NEQ:
		if err := c.unify(b.Right, lt, rt, reason); err != nil {
			return nil, err
		}
		return hm.Bool, nil
	case LT, GT, LTE, GTE:
		if err := c.unify(b.Right, lt, rt, reason); err != nil {
			return nil, err
		}
		if err := c.requireNumeric(b, numericOrdered, lt); err != nil {
			return nil, err
		}
		return hm.Bool, nil
	case PLUS:
		if err := c.unify(b.Right, lt, rt, reason); err != nil {
			return nil, err
		}
		if err := c.requireNumeric(b, numericPlus, lt); err != nil {
			return nil, err
		}
		return lt, nil
	case MINUS, STAR, SLASH, PERCENT:
		if err := c.unify(b.Right, lt, rt, reason); err != nil {
			return nil, err
		}
		if err := c.requireNumeric(b, numericArith, lt); err != nil {
			return nil, err
		}
		return lt, nil
	}
	return nil, errors.Errorf("unknown binary operator %s", b.Op)
}

func (b *BinaryOp) Eval(ctx context.Context, env *Env) (Value, error) {
	return WithEvalErrorHandling(ctx, b, func() (Value, error) {
		left, err := b.Left.Eval(ctx, env)
		if err != nil {
			return nil, err
		}
		switch b.Op {
		case AND:
			if !left.(BoolValue).Val {
				return left, nil
			}
			return b.Right.Eval(ctx, env)
		case OR:
			if left.(BoolValue).Val {
				return left, nil
			}
			return b.Right.Eval(ctx, env)
		}
		right, err := b.Right.Eval(ctx, env)
		if err != nil {
			return nil, err
		}
		return evalBinary(b.Op, left, right)
	})
}

func evalBinary(op TokenKind, left, right Value) (Value, error) {
	switch op {
	case EQ:
		return BoolValue{Val: ValuesEqual(left, right)}, nil
	case NEQ:
		return BoolValue{Val: !ValuesEqual(left, right)}, nil
	}

	switch l := left.(type) {
	case IntValue:
		r := right.(IntValue)
		switch op {
		case PLUS:
			return IntValue{Val: l.Val + r.Val}, nil
		case MINUS:
			return IntValue{Val: l.Val - r.Val}, nil
		case STAR:
			return IntValue{Val: l.Val * r.Val}, nil
		case SLASH:
			if r.Val == 0 {
				return nil, &DivisionByZeroError{}
			}
			return IntValue{Val: l.Val / r.Val}, nil
		case PERCENT:
			if r.Val == 0 {
				return nil, &DivisionByZeroError{}
			}
			return IntValue{Val: l.Val % r.Val}, nil
		}
		return compareOrdered(op, l.Val, r.Val)
	case FloatValue:
		r := right.(FloatValue)
		switch op {
		case PLUS:
			return FloatValue{Val: l.Val + r.Val}, nil
		case MINUS:
			return FloatValue{Val: l.Val - r.Val}, nil
		case STAR:
			return FloatValue{Val: l.Val * r.Val}, nil
		case SLASH:
			return FloatValue{Val: l.Val / r.Val}, nil
		case PERCENT:
			return FloatValue{Val: math.Mod(l.Val, r.Val)}, nil
		}
		return compareOrdered(op, l.Val, r.Val)
	case StringValue:
		r := right.(StringValue)
		if op == PLUS {
			return StringValue{Val: l.Val + r.Val}, nil
		}
		return compareOrdered(op, l.Val, r.Val)
	case CharValue:
		return compareOrdered(op, l.Val, right.(CharValue).Val)
	}
	return nil, errors.Errorf("cannot apply %s to %s and %s", op, left, right)
}

func compareOrdered[T int64 | float64 | string | rune](op TokenKind, l, r T) (Value, error) {
	switch op {
	case LT:
		return BoolValue{Val: l < r}, nil
	case GT:
		return BoolValue{Val: l > r}, nil
	case LTE:
		return BoolValue{Val: l <= r}, nil
	case GTE:
		return BoolValue{Val: l >= r}, nil
	}
	return nil, errors.Errorf("unknown operator %s", op)
}

// UnaryOp is -x or !x.
type UnaryOp struct {
	InferredTypeHolder
	Op      TokenKind
	Operand Expr
	Loc     *SourceLocation
}

var _ Expr = (*UnaryOp)(nil)

func (u *UnaryOp) GetSourceLocation() *SourceLocation { return u.Loc }

func (u *UnaryOp) Walk(fn func(Node) bool) {
	if !fn(u) {
		return
	}
	u.Operand.Walk(fn)
}

func (u *UnaryOp) Infer(ctx context.Context, c *Checker) (hm.Type, error) {
	t, err := c.infer(ctx, u.Operand)
	if err != nil {
		return nil, err
	}
	if u.Op == BANG {
		if err := c.unify(u.Operand, hm.Bool, t, "operand of !"); err != nil {
			return nil, err
		}
		return hm.Bool, nil
	}
	if err := c.requireNumeric(u, numericArith, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (u *UnaryOp) Eval(ctx context.Context, env *Env) (Value, error) {
	v, err := u.Operand.Eval(ctx, env)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case BoolValue:
		return BoolValue{Val: !x.Val}, nil
	case IntValue:
		return IntValue{Val: -x.Val}, nil
	case FloatValue:
		return FloatValue{Val: -x.Val}, nil
	}
	return nil, errors.Errorf("cannot apply %s to %s", u.Op, v)
}

// TupleLit is (a, b, ...) with at least two elements.
type TupleLit struct {
	InferredTypeHolder
	Elems []Expr
	Loc   *SourceLocation
}

var _ Expr = (*TupleLit)(nil)

func (t *TupleLit) GetSourceLocation() *SourceLocation { return t.Loc }

func (t *TupleLit) Walk(fn func(Node) bool) {
	if !fn(t) {
		return
	}
	walkAll(fn, t.Elems)
}

func (t *TupleLit) Infer(ctx context.Context, c *Checker) (hm.Type, error) {
	elems := make(hm.Types, len(t.Elems))
	for i, e := range t.Elems {
		et, err := c.infer(ctx, e)
		if err != nil {
			return nil, err
		}
		elems[i] = et
	}
	return hm.NewTupleType(elems...), nil
}

func (t *TupleLit) Eval(ctx context.Context, env *Env) (Value, error) {
	elems, err := evalAll(ctx, env, t.Elems)
	if err != nil {
		return nil, err
	}
	return TupleValue{Elems: elems}, nil
}

// ArrayLit is [a, b, ...].
type ArrayLit struct {
	InferredTypeHolder
	Elems []Expr
	Loc   *SourceLocation
}

var _ Expr = (*ArrayLit)(nil)

func (a *ArrayLit) GetSourceLocation() *SourceLocation { return a.Loc }

func (a *ArrayLit) Walk(fn func(Node) bool) {
	if !fn(a) {
		return
	}
	walkAll(fn, a.Elems)
}

func (a *ArrayLit) Infer(ctx context.Context, c *Checker) (hm.Type, error) {
	var elem hm.Type = c.fresh()
	for _, e := range a.Elems {
		et, err := c.infer(ctx, e)
		if err != nil {
			return nil, err
		}
		if err := c.unify(e, elem, et, "array elements must have the same type"); err != nil {
			return nil, err
		}
	}
	return hm.ArrayType{Elem: elem}, nil
}

func (a *ArrayLit) Eval(ctx context.Context, env *Env) (Value, error) {
	elems, err := evalAll(ctx, env, a.Elems)
	if err != nil {
		return nil, err
	}
	return &ArrayValue{Elems: elems}, nil
}

// Index is a[i].
type Index struct {
	InferredTypeHolder
	Receiver Expr
	Index    Expr
	Loc      *SourceLocation
}

var _ Expr = (*Index)(nil)

func (x *Index) GetSourceLocation() *SourceLocation { return x.Loc }

func (x *Index) Walk(fn func(Node) bool) {
	if !fn(x) {
		return
	}
	x.Receiver.Walk(fn)
	x.Index.Walk(fn)
}

func (x *Index) Infer(ctx context.Context, c *Checker) (hm.Type, error) {
	rt, err := c.infer(ctx, x.Receiver)
	if err != nil {
		return nil, err
	}
	elem := c.fresh()
	if err := c.unify(x.Receiver, hm.ArrayType{Elem: elem}, rt, "only arrays can be indexed"); err != nil {
		return nil, err
	}
	it, err := c.infer(ctx, x.Index)
	if err != nil {
		return nil, err
	}
	if err := c.unify(x.Index, hm.Int, it, "array index"); err != nil {
		return nil, err
	}
	return elem, nil
}

func (x *Index) Eval(ctx context.Context, env *Env) (Value, error) {
	return WithEvalErrorHandling(ctx, x, func() (Value, error) {
		arr, idx, err := x.evalOperands(ctx, env)
		if err != nil {
			return nil, err
		}
		return arr.Elems[idx], nil
	})
}

// evalOperands evaluates the array and a bounds-checked index.
func (x *Index) evalOperands(ctx context.Context, env *Env) (*ArrayValue, int, error) {
	rv, err := x.Receiver.Eval(ctx, env)
	if err != nil {
		return nil, 0, err
	}
	iv, err := x.Index.Eval(ctx, env)
	if err != nil {
		return nil, 0, err
	}
	arr := rv.(*ArrayValue)
	idx := iv.(IntValue).Val
	if idx < 0 || idx >= int64(len(arr.Elems)) {
		return nil, 0, &IndexOutOfBoundsError{Index: idx, Length: len(arr.Elems)}
	}
	return arr, int(idx), nil
}

// TupleIndex is t.0.
type TupleIndex struct {
	InferredTypeHolder
	Receiver Expr
	Index    int
	Loc      *SourceLocation
}

var _ Expr = (*TupleIndex)(nil)

func (x *TupleIndex) GetSourceLocation() *SourceLocation { return x.Loc }

func (x *TupleIndex) Walk(fn func(Node) bool) {
	if !fn(x) {
		return
	}
	x.Receiver.Walk(fn)
}

func (x *TupleIndex) Infer(ctx context.Context, c *Checker) (hm.Type, error) {
	rt, err := c.infer(ctx, x.Receiver)
	if err != nil {
		return nil, err
	}
	tt, ok := c.apply(rt).(*hm.TupleType)
	if !ok || x.Index >= len(tt.Elems) {
		return nil, NewInferError(&UnknownFieldError{Type: c.apply(rt), Field: strconv.Itoa(x.Index), Tuple: true}, x)
	}
	return tt.Elems[x.Index], nil
}

func (x *TupleIndex) Eval(ctx context.Context, env *Env) (Value, error) {
	v, err := x.Receiver.Eval(ctx, env)
	if err != nil {
		return nil, err
	}
	return v.(TupleValue).Elems[x.Index], nil
}

// FieldAccess is x.f where f is a struct field.
type FieldAccess struct {
	InferredTypeHolder
	Receiver Expr
	Field    string
	Loc      *SourceLocation
}

var _ Expr = (*FieldAccess)(nil)

func (f *FieldAccess) GetSourceLocation() *SourceLocation { return f.Loc }

func (f *FieldAccess) Walk(fn func(Node) bool) {
	if !fn(f) {
		return
	}
	f.Receiver.Walk(fn)
}

func (f *FieldAccess) Infer(ctx context.Context, c *Checker) (hm.Type, error) {
	rt, err := c.infer(ctx, f.Receiver)
	if err != nil {
		return nil, err
	}
	field, _, err := c.selectField(f, f.Receiver, rt, f.Field)
	if err != nil {
		return nil, err
	}
	return field, nil
}

// selectField returns the type of a struct field of a receiver of type rt.
// A receiver whose type is not yet known is taken to be the one struct that
// declares the field.
func (c *Checker) selectField(node, receiver Node, rt hm.Type, name string) (hm.Type, *FieldInfo, error) {
	rt = c.apply(rt)
	if isTypeVar(rt) {
		candidates := c.structsDeclaring(name)
		switch len(candidates) {
		case 0:
			return nil, nil, NewInferError(&UnknownFieldError{Field: name}, node)
		case 1:
			inst, _ := candidates[0].Instantiate(c.fresher, c.Module, nil)
			if err := c.unify(receiver, inst, rt, ""); err != nil {
				return nil, nil, err
			}
			rt = c.apply(rt)
		default:
			names := make([]string, len(candidates))
			for i, ti := range candidates {
				names[i] = ti.Name
			}
			return nil, nil, NewInferError(&StructFieldMismatchError{Fields: []string{name}, Candidates: names}, node)
		}
	}
	ti, nt, ok := c.typeInfo(rt)
	if !ok || ti.Enum {
		return nil, nil, NewInferError(&UnknownFieldError{Type: rt, Field: name}, node)
	}
	field, _ := ti.Field(name)
	if field == nil {
		return nil, nil, NewInferError(&UnknownFieldError{Type: rt, Field: name}, node)
	}
	_, subs := ti.Instantiate(c.fresher, c.Module, nt.Args)
	return field.Type.Apply(subs).(hm.Type), field, nil
}

func (f *FieldAccess) Eval(ctx context.Context, env *Env) (Value, error) {
	v, err := f.Receiver.Eval(ctx, env)
	if err != nil {
		return nil, err
	}
	s, ok := v.(*StructValue)
	if !ok {
		return nil, errors.Errorf("cannot select %s from %s", f.Field, v)
	}
	idx := s.Field(f.Field)
	if idx < 0 {
		return nil, errors.Errorf("%s has no field %s", s.Type, f.Field)
	}
	return s.Values[idx], nil
}

// FieldInit is one f: e entry in a struct literal.
type FieldInit struct {
	Name  string
	Value Expr
	Loc   *SourceLocation
}

// StructLit is {f: e, ...}. The struct is found by its field names.
type StructLit struct {
	InferredTypeHolder
	Fields []*FieldInit
	// Hint is the annotated type of the binding the literal initializes,
	// used to choose between structs with the same field names.
	Hint hm.Type
	// Struct is the declaration the literal resolved to.
	Struct *TypeInfo
	Loc    *SourceLocation
}

var _ Expr = (*StructLit)(nil)

func (s *StructLit) GetSourceLocation() *SourceLocation { return s.Loc }

func (s *StructLit) Walk(fn func(Node) bool) {
	if !fn(s) {
		return
	}
	for _, f := range s.Fields {
		f.Value.Walk(fn)
	}
}

func (s *StructLit) fieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

func (s *StructLit) Infer(ctx context.Context, c *Checker) (hm.Type, error) {
	ti, err := s.resolveStruct(c)
	if err != nil {
		return nil, err
	}
	s.Struct = ti
	inst, subs := ti.Instantiate(c.fresher, c.Module, nil)
	for _, f := range s.Fields {
		vt, err := c.infer(ctx, f.Value)
		if err != nil {
			return nil, err
		}
		field, _ := ti.Field(f.Name)
		if err := c.unify(f.Value, field.Type.Apply(subs).(hm.Type), vt, "field "+f.Name); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

func (s *StructLit) resolveStruct(c *Checker) (*TypeInfo, error) {
	names := s.fieldNames()
	for i, n := range names {
		if slices.Contains(names[:i], n) {
			return nil, NewInferError(&StructFieldMismatchError{Fields: names, Extra: []string{n}}, s)
		}
	}
	candidates := c.structsWithFields(names)
	if s.Hint != nil {
		if hinted, _, ok := c.typeInfo(s.Hint); ok && !hinted.Enum {
			if slices.Contains(candidates, hinted) {
				return hinted, nil
			}
			return nil, NewInferError(fieldMismatch(hinted, names), s)
		}
	}
	switch len(candidates) {
	case 0:
		if partial := c.structsDeclaring(names...); len(partial) == 1 {
			return nil, NewInferError(fieldMismatch(partial[0], names), s)
		}
		return nil, NewInferError(&StructFieldMismatchError{Fields: names}, s)
	case 1:
		return candidates[0], nil
	default:
		cands := make([]string, len(candidates))
		for i, ti := range candidates {
			cands[i] = ti.Name
		}
		return nil, NewInferError(&StructFieldMismatchError{Fields: names, Candidates: cands}, s)
	}
}

func fieldMismatch(ti *TypeInfo, names []string) *StructFieldMismatchError {
	declared := ti.FieldNames()
	e := &StructFieldMismatchError{Fields: names, Struct: ti.Name}
	for _, d := range declared {
		if !slices.Contains(names, d) {
			e.Missing = append(e.Missing, d)
		}
	}
	for _, n := range names {
		if !slices.Contains(declared, n) {
			e.Extra = append(e.Extra, n)
		}
	}
	return e
}

func (s *StructLit) Eval(ctx context.Context, env *Env) (Value, error) {
	if s.Struct == nil {
		return nil, errors.Errorf("struct literal was not checked")
	}
	fields := s.Struct.FieldNames()
	values := make([]Value, len(fields))
	for _, f := range s.Fields {
		v, err := f.Value.Eval(ctx, env)
		if err != nil {
			return nil, err
		}
		values[slices.Index(fields, f.Name)] = v
	}
	return &StructValue{Type: s.Struct.Name, Fields: fields, Values: values}, nil
}

// EnumConstruct applies an enum constructor: Nil, Cons(1, Nil).
type EnumConstruct struct {
	InferredTypeHolder
	Name string
	Args []Expr
	// Parens records whether the source wrote an argument list.
	Parens bool
	Ctor   *CtorInfo
	Loc    *SourceLocation
}

var _ Expr = (*EnumConstruct)(nil)

func (e *EnumConstruct) GetSourceLocation() *SourceLocation { return e.Loc }

func (e *EnumConstruct) Walk(fn func(Node) bool) {
	if !fn(e) {
		return
	}
	walkAll(fn, e.Args)
}

func (e *EnumConstruct) Infer(ctx context.Context, c *Checker) (hm.Type, error) {
	ctor, ok := c.ctors[e.Name]
	if !ok {
		return nil, NewInferError(&UnboundIdentifierError{Name: e.Name, Pos: e.Loc.Pos()}, e)
	}
	e.Ctor = ctor
	if len(e.Args) != len(ctor.Params) {
		return nil, NewInferError(&ArityMismatchError{Name: e.Name, Expected: len(ctor.Params), Found: len(e.Args)}, e)
	}
	inst, subs := ctor.Owner.Instantiate(c.fresher, c.Module, nil)
	for i, arg := range e.Args {
		at, err := c.infer(ctx, arg)
		if err != nil {
			return nil, err
		}
		reason := fmt.Sprintf("argument %d of %s", i+1, e.Name)
		if err := c.unify(arg, ctor.Params[i].Apply(subs).(hm.Type), at, reason); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

func (e *EnumConstruct) Eval(ctx context.Context, env *Env) (Value, error) {
	if e.Ctor == nil {
		return nil, errors.Errorf("constructor %s was not checked", e.Name)
	}
	args, err := evalAll(ctx, env, e.Args)
	if err != nil {
		return nil, err
	}
	return EnumValue{Type: e.Ctor.Owner.Name, Ctor: e.Name, Args: args}, nil
}

func evalAll(ctx context.Context, env *Env, exprs []Expr) ([]Value, error) {
	vals := make([]Value, len(exprs))
	for i, e := range exprs {
		v, err := e.Eval(ctx, env)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
