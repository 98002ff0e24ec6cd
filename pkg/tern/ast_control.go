package tern

import (
	"context"
	"errors"

	"github.com/vito/tern/pkg/hm"
)

// Block is a sequence of statements followed by an optional result
// expression. Without a result the block has type unit.
type Block struct {
	InferredTypeHolder
	Stmts  []Stmt
	Result Expr
	Loc    *SourceLocation
}

var _ Expr = (*Block)(nil)

func (b *Block) GetSourceLocation() *SourceLocation { return b.Loc }

func (b *Block) Walk(fn func(Node) bool) {
	if !fn(b) {
		return
	}
	walkAll(fn, b.Stmts)
	if b.Result != nil {
		b.Result.Walk(fn)
	}
}

func (b *Block) Infer(ctx context.Context, c *Checker) (hm.Type, error) {
	defer c.exitScope(c.enterScope())
	for _, stmt := range b.Stmts {
		if err := c.check(ctx, stmt); err != nil {
			return nil, err
		}
	}
	if b.Result == nil {
		return hm.Unit, nil
	}
	return c.infer(ctx, b.Result)
}

func (b *Block) Eval(ctx context.Context, env *Env) (Value, error) {
	scope := env.Fork()
	for _, stmt := range b.Stmts {
		if err := stmt.Exec(ctx, scope); err != nil {
			return nil, err
		}
	}
	if b.Result == nil {
		return UnitValue{}, nil
	}
	return b.Result.Eval(ctx, scope)
}

// ExprStmt is an expression evaluated for its effect. It must have type unit.
type ExprStmt struct {
	Expr Expr
}

var _ Stmt = (*ExprStmt)(nil)

func (s *ExprStmt) GetSourceLocation() *SourceLocation { return s.Expr.GetSourceLocation() }

func (s *ExprStmt) Walk(fn func(Node) bool) {
	if !fn(s) {
		return
	}
	s.Expr.Walk(fn)
}

func (s *ExprStmt) Check(ctx context.Context, c *Checker) error {
	t, err := c.infer(ctx, s.Expr)
	if err != nil {
		return err
	}
	return c.unify(s.Expr, hm.Unit, t, "expression used as statement must have unit type")
}

func (s *ExprStmt) Exec(ctx context.Context, env *Env) error {
	_, err := s.Expr.Eval(ctx, env)
	return err
}

// If is a conditional. Else is nil, a *Block, or an *If for else-if chains.
type If struct {
	InferredTypeHolder
	Cond Expr
	Then *Block
	Else Expr
	Loc  *SourceLocation
}

var _ Expr = (*If)(nil)

func (i *If) GetSourceLocation() *SourceLocation { return i.Loc }

func (i *If) Walk(fn func(Node) bool) {
	if !fn(i) {
		return
	}
	i.Cond.Walk(fn)
	i.Then.Walk(fn)
	if i.Else != nil {
		i.Else.Walk(fn)
	}
}

func (i *If) Infer(ctx context.Context, c *Checker) (hm.Type, error) {
	ct, err := c.infer(ctx, i.Cond)
	if err != nil {
		return nil, err
	}
	if err := c.unify(i.Cond, hm.Bool, ct, "if condition"); err != nil {
		return nil, err
	}
	tt, err := c.infer(ctx, i.Then)
	if err != nil {
		return nil, err
	}
	if i.Else == nil {
		if err := c.unify(resultNode(i.Then), hm.Unit, tt, "if without else must have unit type"); err != nil {
			return nil, err
		}
		return hm.Unit, nil
	}
	et, err := c.infer(ctx, i.Else)
	if err != nil {
		return nil, err
	}
	if err := c.unify(resultNode(i.Else), tt, et, "if branches must have the same type"); err != nil {
		return nil, err
	}
	return tt, nil
}

// resultNode is the node to blame for the type of an expression: the
// result of a block rather than the whole block.
func resultNode(e Expr) Node {
	if b, ok := e.(*Block); ok && b.Result != nil {
		return b.Result
	}
	return e
}

func (i *If) Eval(ctx context.Context, env *Env) (Value, error) {
	cond, err := i.Cond.Eval(ctx, env)
	if err != nil {
		return nil, err
	}
	if cond.(BoolValue).Val {
		return i.Then.Eval(ctx, env)
	}
	if i.Else == nil {
		return UnitValue{}, nil
	}
	return i.Else.Eval(ctx, env)
}

// While loops while its condition holds.
type While struct {
	InferredTypeHolder
	Cond Expr
	Body *Block
	Loc  *SourceLocation
}

var _ Expr = (*While)(nil)

func (w *While) GetSourceLocation() *SourceLocation { return w.Loc }

func (w *While) Walk(fn func(Node) bool) {
	if !fn(w) {
		return
	}
	w.Cond.Walk(fn)
	w.Body.Walk(fn)
}

func (w *While) Infer(ctx context.Context, c *Checker) (hm.Type, error) {
	ct, err := c.infer(ctx, w.Cond)
	if err != nil {
		return nil, err
	}
	if err := c.unify(w.Cond, hm.Bool, ct, "while condition"); err != nil {
		return nil, err
	}
	bt, err := c.infer(ctx, w.Body)
	if err != nil {
		return nil, err
	}
	if err := c.unify(resultNode(w.Body), hm.Unit, bt, "while body must have unit type"); err != nil {
		return nil, err
	}
	return hm.Unit, nil
}

func (w *While) Eval(ctx context.Context, env *Env) (Value, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cond, err := w.Cond.Eval(ctx, env)
		if err != nil {
			return nil, err
		}
		if !cond.(BoolValue).Val {
			return UnitValue{}, nil
		}
		if _, err := w.Body.Eval(ctx, env); err != nil {
			var breakEx *BreakException
			if errors.As(err, &breakEx) {
				return UnitValue{}, nil
			}
			var continueEx *ContinueException
			if errors.As(err, &continueEx) {
				continue
			}
			return nil, err
		}
	}
}

// Break exits the innermost while loop.
type Break struct {
	InferredTypeHolder
	Loc *SourceLocation
}

var _ Expr = (*Break)(nil)

func (b *Break) GetSourceLocation() *SourceLocation { return b.Loc }
func (b *Break) Walk(fn func(Node) bool)            { fn(b) }

func (b *Break) Infer(ctx context.Context, c *Checker) (hm.Type, error) {
	return c.fresh(), nil
}

func (b *Break) Eval(context.Context, *Env) (Value, error) {
	return nil, &BreakException{}
}

// Continue skips to the next iteration of the innermost while loop.
type Continue struct {
	InferredTypeHolder
	Loc *SourceLocation
}

var _ Expr = (*Continue)(nil)

func (n *Continue) GetSourceLocation() *SourceLocation { return n.Loc }
func (n *Continue) Walk(fn func(Node) bool)            { fn(n) }

func (n *Continue) Infer(ctx context.Context, c *Checker) (hm.Type, error) {
	return c.fresh(), nil
}

func (n *Continue) Eval(context.Context, *Env) (Value, error) {
	return nil, &ContinueException{}
}

// Return exits the enclosing function. A nil Value returns unit.
type Return struct {
	InferredTypeHolder
	Value Expr
	Loc   *SourceLocation
}

var _ Expr = (*Return)(nil)

func (r *Return) GetSourceLocation() *SourceLocation { return r.Loc }

func (r *Return) Walk(fn func(Node) bool) {
	if !fn(r) {
		return
	}
	if r.Value != nil {
		r.Value.Walk(fn)
	}
}

func (r *Return) Infer(ctx context.Context, c *Checker) (hm.Type, error) {
	ret, ok := c.currentReturn()
	if !ok {
		return nil, NewInferError(&ReturnOutsideFunctionError{}, r)
	}
	var (
		vt hm.Type = hm.Unit
		at Node    = r
	)
	if r.Value != nil {
		t, err := c.infer(ctx, r.Value)
		if err != nil {
			return nil, err
		}
		vt, at = t, r.Value
	}
	if err := c.unify(at, ret, vt, "return value"); err != nil {
		return nil, err
	}
	return c.fresh(), nil
}

func (r *Return) Eval(ctx context.Context, env *Env) (Value, error) {
	var val Value = UnitValue{}
	if r.Value != nil {
		v, err := r.Value.Eval(ctx, env)
		if err != nil {
			return nil, err
		}
		val = v
	}
	return nil, &ReturnException{Value: val}
}

// Match selects the first arm whose pattern matches the scrutinee.
type Match struct {
	InferredTypeHolder
	Scrutinee Expr
	Arms      []*MatchArm
	// Rows is the compiled decision list, filled in by the checker.
	Rows []*MatchRow
	Loc  *SourceLocation
}

// MatchArm is pattern => body.
type MatchArm struct {
	Pattern Pattern
	Body    Expr
	Loc     *SourceLocation
}

var _ Expr = (*Match)(nil)

func (m *Match) GetSourceLocation() *SourceLocation { return m.Loc }

func (m *Match) Walk(fn func(Node) bool) {
	if !fn(m) {
		return
	}
	m.Scrutinee.Walk(fn)
	for _, arm := range m.Arms {
		arm.Pattern.Walk(fn)
		arm.Body.Walk(fn)
	}
}

func (m *Match) Infer(ctx context.Context, c *Checker) (hm.Type, error) {
	st, err := c.infer(ctx, m.Scrutinee)
	if err != nil {
		return nil, err
	}
	var result hm.Type = c.fresh()
	patterns := make([]Pattern, len(m.Arms))
	for i, arm := range m.Arms {
		mark := c.enterScope()
		if err := c.bindPattern(ctx, arm.Pattern, st, i); err != nil {
			return nil, err
		}
		bt, err := c.infer(ctx, arm.Body)
		c.exitScope(mark)
		if err != nil {
			return nil, err
		}
		if err := c.unify(resultNode(arm.Body), result, bt, "match arms must have the same type"); err != nil {
			return nil, err
		}
		patterns[i] = arm.Pattern
	}
	rows, err := c.compileMatch(m, st, patterns)
	if err != nil {
		return nil, err
	}
	m.Rows = rows
	return result, nil
}

func (m *Match) Eval(ctx context.Context, env *Env) (Value, error) {
	v, err := m.Scrutinee.Eval(ctx, env)
	if err != nil {
		return nil, err
	}
	for _, row := range m.Rows {
		if !row.Matches(v) {
			continue
		}
		scope := env.Fork()
		row.Bind(scope, v)
		return m.Arms[row.Arm].Body.Eval(ctx, scope)
	}
	return nil, CreateEvalError(ctx, &NonExhaustiveMatchError{Missing: []string{v.String()}}, m)
}
