package tern

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/vito/tern/pkg/hm"
)

// Param is a function parameter. Type is nil when the annotation is omitted.
type Param struct {
	Name    string
	Type    TypeExpr
	Binding *Binding
	Loc     *SourceLocation
}

func (p *Param) GetSourceLocation() *SourceLocation { return p.Loc }

func (p *Param) Walk(fn func(Node) bool) {
	if !fn(p) {
		return
	}
	if p.Type != nil {
		p.Type.Walk(fn)
	}
}

// FuncLit is a function: an fn literal, or the body of a declared function.
type FuncLit struct {
	InferredTypeHolder
	// Name is the declared name, if any, used when displaying the function.
	Name   string
	Params []*Param
	// Ret is the annotated return type, or nil.
	Ret  TypeExpr
	Body *Block
	// Captures are the bindings of enclosing functions this function refers to.
	Captures []*Binding
	Loc      *SourceLocation
}

var _ Expr = (*FuncLit)(nil)

func (f *FuncLit) GetSourceLocation() *SourceLocation { return f.Loc }

func (f *FuncLit) Walk(fn func(Node) bool) {
	if !fn(f) {
		return
	}
	walkAll(fn, f.Params)
	if f.Ret != nil {
		f.Ret.Walk(fn)
	}
	f.Body.Walk(fn)
}

func (f *FuncLit) Infer(ctx context.Context, c *Checker) (hm.Type, error) {
	ft, err := c.signature(f, nil, nil)
	if err != nil {
		return nil, err
	}
	if err := c.checkFuncLit(ctx, f, ft); err != nil {
		return nil, err
	}
	return ft, nil
}

func (f *FuncLit) Eval(ctx context.Context, env *Env) (Value, error) {
	return &Closure{Name: f.Name, Fn: f, Env: env}, nil
}

// FuncDecl declares a named function, at the top level or in a block.
type FuncDecl struct {
	Name       string
	TypeParams []string
	Fn         *FuncLit
	Binding    *Binding
	Loc        *SourceLocation
}

var (
	_ Decl = (*FuncDecl)(nil)
	_ Stmt = (*FuncDecl)(nil)
)

func (*FuncDecl) isDecl() {}

func (d *FuncDecl) GetSourceLocation() *SourceLocation { return d.Loc }

func (d *FuncDecl) Walk(fn func(Node) bool) {
	if !fn(d) {
		return
	}
	d.Fn.Walk(fn)
}

// Check infers a local function. It may call itself monomorphically and is
// generalized once its body has been checked.
func (d *FuncDecl) Check(ctx context.Context, c *Checker) error {
	ft, err := c.signature(d.Fn, nil, nil)
	if err != nil {
		return err
	}
	c.bind(d.Binding, ft)
	if err := c.checkFuncLit(ctx, d.Fn, ft); err != nil {
		return err
	}
	d.Fn.SetInferredType(ft)
	c.generalize(d.Binding, ft)
	return nil
}

func (d *FuncDecl) Exec(ctx context.Context, env *Env) error {
	env.Define(d.Binding, &Closure{Name: d.Name, Fn: d.Fn, Env: env})
	return nil
}

// Call applies a function value to arguments.
type Call struct {
	InferredTypeHolder
	Fn   Expr
	Args []Expr
	Loc  *SourceLocation
}

var _ Expr = (*Call)(nil)

func (call *Call) GetSourceLocation() *SourceLocation { return call.Loc }

func (call *Call) Walk(fn func(Node) bool) {
	if !fn(call) {
		return
	}
	call.Fn.Walk(fn)
	walkAll(fn, call.Args)
}

func (call *Call) calleeName() string {
	if id, ok := call.Fn.(*Identifier); ok {
		return id.Name
	}
	return "function"
}

func (call *Call) Infer(ctx context.Context, c *Checker) (hm.Type, error) {
	id, overloaded := call.Fn.(*Identifier)
	overloaded = overloaded && len(id.Candidates) > 1

	var fnT hm.Type
	if !overloaded {
		t, err := c.infer(ctx, call.Fn)
		if err != nil {
			return nil, err
		}
		fnT = t
	}

	argTs, err := c.inferArgs(ctx, call.Args)
	if err != nil {
		return nil, err
	}

	if overloaded {
		if len(call.Args) == 0 {
			return nil, NewInferError(&AmbiguousMethodError{
				Name:       id.Name,
				Candidates: describeBindings(id.Candidates),
			}, call)
		}
		b, err := c.selectOverload(call, id.Name, id.Candidates, argTs[0])
		if err != nil {
			return nil, err
		}
		id.Binding = b
		t, err := c.infer(ctx, id)
		if err != nil {
			return nil, err
		}
		fnT = t
	}

	return c.applyCall(call, call.calleeName(), fnT, exprNodes(call.Args), argTs)
}

func (c *Checker) inferArgs(ctx context.Context, args []Expr) (hm.Types, error) {
	ts := make(hm.Types, len(args))
	for i, arg := range args {
		t, err := c.infer(ctx, arg)
		if err != nil {
			return nil, err
		}
		ts[i] = t
	}
	return ts, nil
}

func exprNodes(exprs []Expr) []Node {
	nodes := make([]Node, len(exprs))
	for i, e := range exprs {
		nodes[i] = e
	}
	return nodes
}

// applyCall checks a call of a value of type fnT with arguments of the given
// types and returns the result type.
func (c *Checker) applyCall(node Node, name string, fnT hm.Type, args []Node, argTs hm.Types) (hm.Type, error) {
	if ft, ok := c.apply(fnT).(*hm.FunctionType); ok {
		if len(ft.Params()) != len(argTs) {
			return nil, NewInferError(&ArityMismatchError{
				Name:     name,
				Expected: len(ft.Params()),
				Found:    len(argTs),
			}, node)
		}
		for i, at := range argTs {
			reason := fmt.Sprintf("argument %d of %s", i+1, name)
			if err := c.unify(args[i], ft.Params()[i], at, reason); err != nil {
				return nil, err
			}
		}
		return ft.Ret(), nil
	}
	ret := c.fresh()
	if err := c.unify(node, hm.NewFnType(argTs, ret), fnT, "called value"); err != nil {
		return nil, err
	}
	return ret, nil
}

// selectOverload picks the one candidate whose first parameter accepts the
// receiver type.
func (c *Checker) selectOverload(node Node, name string, candidates []*Binding, recvT hm.Type) (*Binding, error) {
	var matches []*Binding
	for _, b := range candidates {
		t, err := c.lookup(b)
		if err != nil {
			return nil, err
		}
		switch ft := c.apply(t).(type) {
		case *hm.FunctionType:
			if len(ft.Params()) > 0 && c.unifies(ft.Params()[0], recvT) {
				matches = append(matches, b)
			}
		case hm.TypeVariable:
			// a local whose type is not known yet; the call decides it
			matches = append(matches, b)
		}
	}
	switch len(matches) {
	case 0:
		return nil, NewInferError(&NoMethodError{Name: name, Receiver: c.apply(recvT)}, node)
	case 1:
		return matches[0], nil
	default:
		return nil, NewInferError(&AmbiguousMethodError{
			Name:       name,
			Receiver:   c.apply(recvT),
			Candidates: describeBindings(matches),
		}, node)
	}
}

func (call *Call) Eval(ctx context.Context, env *Env) (Value, error) {
	return WithEvalErrorHandling(ctx, call, func() (Value, error) {
		fn, err := call.Fn.Eval(ctx, env)
		if err != nil {
			return nil, err
		}
		args, err := evalAll(ctx, env, call.Args)
		if err != nil {
			return nil, err
		}
		return env.Interp().Call(ctx, fn, args)
	})
}

// MethodCall is x.f(args). It calls the struct field f when x has one, and
// otherwise the function f whose first parameter accepts x, with x as the
// first argument.
type MethodCall struct {
	InferredTypeHolder
	Receiver Expr
	Method   string
	Args     []Expr
	// Candidates are the functions named Method visible at the call.
	Candidates []*Binding
	// Resolved is the chosen candidate, or nil when calling a struct field.
	Resolved *Binding
	Loc      *SourceLocation
}

var _ Expr = (*MethodCall)(nil)

func (m *MethodCall) GetSourceLocation() *SourceLocation { return m.Loc }

func (m *MethodCall) Walk(fn func(Node) bool) {
	if !fn(m) {
		return
	}
	m.Receiver.Walk(fn)
	walkAll(fn, m.Args)
}

func (m *MethodCall) Infer(ctx context.Context, c *Checker) (hm.Type, error) {
	rt, err := c.infer(ctx, m.Receiver)
	if err != nil {
		return nil, err
	}

	if ti, _, ok := c.typeInfo(rt); ok && !ti.Enum {
		if f, _ := ti.Field(m.Method); f != nil {
			m.Resolved = nil
			fieldT, _, err := c.selectField(m, m.Receiver, rt, m.Method)
			if err != nil {
				return nil, err
			}
			argTs, err := c.inferArgs(ctx, m.Args)
			if err != nil {
				return nil, err
			}
			return c.applyCall(m, m.Method, fieldT, exprNodes(m.Args), argTs)
		}
	}

	if len(m.Candidates) == 0 {
		return nil, NewInferError(&NoMethodError{Name: m.Method, Receiver: c.apply(rt)}, m)
	}
	b, err := c.selectOverload(m, m.Method, m.Candidates, rt)
	if err != nil {
		return nil, err
	}
	m.Resolved = b
	fnT, err := c.lookup(b)
	if err != nil {
		return nil, err
	}
	argTs, err := c.inferArgs(ctx, m.Args)
	if err != nil {
		return nil, err
	}
	args := append([]Node{m.Receiver}, exprNodes(m.Args)...)
	return c.applyCall(m, m.Method, fnT, args, append(hm.Types{rt}, argTs...))
}

func (m *MethodCall) Eval(ctx context.Context, env *Env) (Value, error) {
	return WithEvalErrorHandling(ctx, m, func() (Value, error) {
		recv, err := m.Receiver.Eval(ctx, env)
		if err != nil {
			return nil, err
		}
		args, err := evalAll(ctx, env, m.Args)
		if err != nil {
			return nil, err
		}
		if m.Resolved == nil {
			s, ok := recv.(*StructValue)
			if !ok {
				return nil, errors.Errorf("cannot call %s on %s", m.Method, recv)
			}
			idx := s.Field(m.Method)
			if idx < 0 {
				return nil, errors.Errorf("%s has no field %s", s.Type, m.Method)
			}
			return env.Interp().Call(ctx, s.Values[idx], args)
		}
		cell, ok := env.Lookup(m.Resolved)
		if !ok {
			return nil, errors.Errorf("no value for %s", m.Resolved.Key())
		}
		if !cell.Init {
			return nil, &UseBeforeInitError{Name: m.Method}
		}
		return env.Interp().Call(ctx, cell.Value, append([]Value{recv}, args...))
	})
}
