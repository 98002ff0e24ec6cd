package tern

import (
	"context"
	"log/slog"
	"slices"

	"github.com/pkg/errors"
	"github.com/vito/tern/pkg/hm"
)

// Checker infers and checks the types of a resolved program. Types are
// inferred with a single program-wide substitution that grows as
// constraints are solved.
type Checker struct {
	Module string

	config  CheckConfig
	fresher *hm.SimpleFresher
	subs    hm.Subs
	env     *hm.SimpleEnv

	types map[string]*TypeInfo
	ctors map[string]*CtorInfo
	order []*TypeInfo

	// numeric operand constraints, settled once every body has been checked
	numeric []*numericConstraint

	// return types of the enclosing functions, innermost last
	returns []hm.Type

	// keys of local bindings in the scopes being checked, innermost last
	locals []string

	// type parameters of the top-level function being checked
	typeScope map[string]hm.Type
}

// NewChecker creates a checker for a program in the given module.
func NewChecker(module string, config CheckConfig) *Checker {
	return &Checker{
		Module:  module,
		config:  config,
		fresher: hm.NewSimpleFresher(),
		subs:    hm.NewSubs(),
		env:     hm.NewSimpleEnv(),
		types:   map[string]*TypeInfo{},
		ctors:   map[string]*CtorInfo{},
	}
}

// Check type checks a resolved file, annotating every expression with its
// type and every overloaded call with the function it resolves to.
// Checking the same file again yields the same annotations.
func Check(ctx context.Context, file *File) error {
	_, config := ProjectConfigFromContext(ctx)
	return NewChecker(file.Filename, config.Check).CheckFile(ctx, file)
}

// CheckFile runs every checking phase over the file.
func (c *Checker) CheckFile(ctx context.Context, file *File) error {
	var (
		typeDecls []*TypeDecl
		funcDecls []*FuncDecl
		lets      []*Let
		inits     []*InitDecl
	)
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *TypeDecl:
			typeDecls = append(typeDecls, d)
		case *FuncDecl:
			funcDecls = append(funcDecls, d)
		case *Let:
			lets = append(lets, d)
		case *InitDecl:
			inits = append(inits, d)
		default:
			return errors.Errorf("unexpected top-level declaration %T", decl)
		}
	}

	if err := c.declareTypes(typeDecls); err != nil {
		return err
	}

	for _, b := range builtinBindings {
		c.env.Add(b.Key(), builtins[b.Name].Scheme)
	}

	for _, fn := range funcDecls {
		if err := c.declareFunc(fn); err != nil {
			return err
		}
	}

	// globals are visible everywhere; seed them so forward references check
	for _, let := range lets {
		for _, b := range patternBindings(let.Pattern) {
			c.env.Add(b.Key(), hm.Mono(c.fresh()))
		}
	}

	for _, let := range lets {
		if err := c.check(ctx, let); err != nil {
			return err
		}
	}

	for _, fn := range funcDecls {
		if err := c.checkFuncBody(ctx, fn); err != nil {
			return err
		}
	}

	for _, init := range inits {
		if err := c.check(ctx, init); err != nil {
			return err
		}
	}

	if err := c.settleNumeric(); err != nil {
		return err
	}

	c.annotate(file)

	slog.DebugContext(ctx, "checked program",
		"file", file.Filename,
		"types", len(typeDecls),
		"functions", len(funcDecls),
		"globals", len(lets),
		"inits", len(inits))

	return nil
}

func (c *Checker) fresh() hm.TypeVariable {
	return c.fresher.Fresh()
}

// apply returns t with everything solved so far substituted in.
func (c *Checker) apply(t hm.Type) hm.Type {
	return c.subs.Apply(t)
}

// unify records that found must be the same type as expected, failing with a
// TypeMismatchError located at node.
func (c *Checker) unify(node Node, expected, found hm.Type, reason string) error {
	expected, found = c.apply(expected), c.apply(found)
	s, err := hm.Unify(expected, found)
	if err != nil {
		return NewInferError(&TypeMismatchError{
			Expected: expected,
			Found:    found,
			Pos:      locationOf(node).Pos(),
			Reason:   reason,
		}, node)
	}
	c.subs = c.subs.Compose(s)
	return nil
}

// unifies reports whether two types could be unified without committing
// to the result.
func (c *Checker) unifies(a, b hm.Type) bool {
	_, err := hm.Unify(c.apply(a), c.apply(b))
	return err == nil
}

// infer infers an expression's type and records it on the node.
func (c *Checker) infer(ctx context.Context, e Expr) (hm.Type, error) {
	t, err := e.Infer(ctx, c)
	if err != nil {
		return nil, WrapInferError(err, e)
	}
	e.SetInferredType(t)
	return t, nil
}

// check checks a statement.
func (c *Checker) check(ctx context.Context, s Stmt) error {
	if err := s.Check(ctx, c); err != nil {
		return WrapInferError(err, s)
	}
	return nil
}

// lookup instantiates the scheme of a resolved binding.
func (c *Checker) lookup(b *Binding) (hm.Type, error) {
	scheme, ok := c.env.SchemeOf(b.Key())
	if !ok {
		return nil, errors.Errorf("no type for %s", b.Key())
	}
	return hm.Instantiate(c.fresher, scheme), nil
}

// bind assigns a monomorphic type to a binding. Local bindings are
// dropped again when the scope they were bound in ends.
func (c *Checker) bind(b *Binding, t hm.Type) {
	c.env.Add(b.Key(), hm.Mono(t))
	if !b.IsTopLevel() {
		c.locals = append(c.locals, b.Key())
	}
}

// enterScope marks the start of a scope for exitScope.
func (c *Checker) enterScope() int {
	return len(c.locals)
}

// exitScope removes every local bound since mark, so that their types no
// longer count as fixed when generalizing.
func (c *Checker) exitScope(mark int) {
	for _, key := range c.locals[mark:] {
		c.env.Remove(key)
	}
	c.locals = c.locals[:mark]
}

// generalize binds b to t with every type variable not free in the rest of
// the environment quantified. Variables under a pending numeric constraint
// stay monomorphic so that every use still settles them.
func (c *Checker) generalize(b *Binding, t hm.Type) {
	c.env.Remove(b.Key())
	env := c.env.Apply(c.subs).(hm.Env)
	pending := hm.NewTypeVarSet()
	for _, nc := range c.numeric {
		pending.Union(c.apply(nc.Type).FreeTypeVar())
	}
	c.env.Add(b.Key(), hm.GeneralizeExcept(env, c.apply(t), pending))
}

func (c *Checker) pushReturn(t hm.Type) {
	c.returns = append(c.returns, t)
}

func (c *Checker) popReturn() {
	c.returns = c.returns[:len(c.returns)-1]
}

func (c *Checker) currentReturn() (hm.Type, bool) {
	if len(c.returns) == 0 {
		return nil, false
	}
	return c.returns[len(c.returns)-1], true
}

// declareFunc computes the scheme of a top-level function from its
// annotations, quantified over its type parameters.
func (c *Checker) declareFunc(fn *FuncDecl) error {
	scope := map[string]hm.Type{}
	vars := make([]hm.TypeVariable, len(fn.TypeParams))
	for i, name := range fn.TypeParams {
		vars[i] = c.fresh()
		scope[name] = vars[i]
	}
	ft, err := c.signature(fn.Fn, scope, hm.Unit)
	if err != nil {
		return err
	}
	c.env.Add(fn.Binding.Key(), hm.NewScheme(vars, ft))
	return nil
}

// signature converts a function's annotations to a function type. Missing
// parameter annotations become fresh variables and a missing return type
// becomes defaultRet, or a fresh variable if defaultRet is nil.
func (c *Checker) signature(fn *FuncLit, scope map[string]hm.Type, defaultRet hm.Type) (*hm.FunctionType, error) {
	params := make(hm.Types, len(fn.Params))
	for i, p := range fn.Params {
		if p.Type == nil {
			params[i] = c.fresh()
			continue
		}
		t, err := c.resolveType(p.Type, scope)
		if err != nil {
			return nil, err
		}
		params[i] = t
	}
	ret := defaultRet
	if fn.Ret != nil {
		t, err := c.resolveType(fn.Ret, scope)
		if err != nil {
			return nil, err
		}
		ret = t
	} else if ret == nil {
		ret = c.fresh()
	}
	return hm.NewFnType(params, ret), nil
}

// checkFuncBody checks a top-level function body against its declared
// signature, with its type parameters held rigid.
func (c *Checker) checkFuncBody(ctx context.Context, fn *FuncDecl) error {
	scope := map[string]hm.Type{}
	for _, name := range fn.TypeParams {
		scope[name] = hm.TypeParam(name)
	}
	ft, err := c.signature(fn.Fn, scope, hm.Unit)
	if err != nil {
		return err
	}

	prev := c.typeScope
	c.typeScope = scope
	defer func() { c.typeScope = prev }()

	if err := c.checkFuncLit(ctx, fn.Fn, ft); err != nil {
		return err
	}
	fn.Fn.SetInferredType(ft)
	return nil
}

// checkFuncLit binds the parameters and checks the body against ft.
func (c *Checker) checkFuncLit(ctx context.Context, fn *FuncLit, ft *hm.FunctionType) error {
	defer c.exitScope(c.enterScope())
	for i, p := range fn.Params {
		c.bind(p.Binding, ft.Params()[i])
	}
	c.pushReturn(ft.Ret())
	defer c.popReturn()
	bodyT, err := c.infer(ctx, fn.Body)
	if err != nil {
		return err
	}
	var at Node = fn.Body
	if fn.Body.Result != nil {
		at = fn.Body.Result
	}
	return c.unify(at, ft.Ret(), bodyT, "function body")
}

// annotate applies the final substitution to every recorded type.
func (c *Checker) annotate(file *File) {
	file.Walk(func(n Node) bool {
		if e, ok := n.(Expr); ok && e.GetInferredType() != nil {
			e.SetInferredType(c.apply(e.GetInferredType()))
		}
		return true
	})
}

type numericKind int

const (
	// arithmetic operands: int or float
	numericArith numericKind = iota
	// + operands: int, float or string
	numericPlus
	// ordered comparison operands: int, float, char or string
	numericOrdered
)

type numericConstraint struct {
	Kind numericKind
	Type hm.Type
	Node Node
}

func (c *Checker) requireNumeric(node Node, kind numericKind, t hm.Type) error {
	if t = c.apply(t); !isTypeVar(t) {
		return c.checkNumeric(&numericConstraint{Kind: kind, Type: t, Node: node})
	}
	c.numeric = append(c.numeric, &numericConstraint{Kind: kind, Type: t, Node: node})
	return nil
}

func (c *Checker) checkNumeric(nc *numericConstraint) error {
	t := c.apply(nc.Type)
	allowed := []hm.Type{hm.Int, hm.Float}
	reason := "arithmetic operands must be int or float"
	switch nc.Kind {
	case numericPlus:
		allowed = append(allowed, hm.String)
		reason = "+ operands must be int, float or string"
	case numericOrdered:
		allowed = append(allowed, hm.Char, hm.String)
		reason = "comparison operands must be int, float, char or string"
	}
	if slices.ContainsFunc(allowed, t.Eq) {
		return nil
	}
	return NewInferError(&TypeMismatchError{
		Expected: hm.Int,
		Found:    t,
		Pos:      locationOf(nc.Node).Pos(),
		Reason:   reason,
	}, nc.Node)
}

// settleNumeric defaults every still-unknown numeric operand to int and
// checks the rest.
func (c *Checker) settleNumeric() error {
	for _, nc := range c.numeric {
		if tv, ok := c.apply(nc.Type).(hm.TypeVariable); ok && c.config.defaultInt() {
			c.subs = c.subs.Compose(hm.Subs{tv: hm.Int})
		}
		if err := c.checkNumeric(nc); err != nil {
			return err
		}
	}
	return nil
}

func isTypeVar(t hm.Type) bool {
	_, ok := t.(hm.TypeVariable)
	return ok
}
