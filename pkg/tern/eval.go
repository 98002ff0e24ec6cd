package tern

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// Interpreter holds the state of a single evaluation: the call depth used to
// detect runaway recursion.
type Interpreter struct {
	// MaxDepth is the deepest call nesting allowed before a
	// StackOverflowError. Zero means DefaultMaxCallDepth.
	MaxDepth int

	depth int
}

// NewInterpreter creates an interpreter with the given call depth limit.
func NewInterpreter(maxDepth int) *Interpreter {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxCallDepth
	}
	return &Interpreter{MaxDepth: maxDepth}
}

// Call applies a function value to already-evaluated arguments.
func (interp *Interpreter) Call(ctx context.Context, fn Value, args []Value) (Value, error) {
	switch f := fn.(type) {
	case *Closure:
		if interp.depth >= interp.MaxDepth {
			return nil, &StackOverflowError{Depth: interp.MaxDepth}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(args) != len(f.Fn.Params) {
			return nil, &ArityMismatchError{Name: f.String(), Expected: len(f.Fn.Params), Found: len(args)}
		}

		interp.depth++
		defer func() { interp.depth-- }()

		frame := f.Env.Fork()
		for i, p := range f.Fn.Params {
			frame.Define(p.Binding, args[i])
		}
		val, err := f.Fn.Body.Eval(ctx, frame)
		if err != nil {
			var ret *ReturnException
			if errors.As(err, &ret) {
				return ret.Value, nil
			}
			return nil, err
		}
		return val, nil
	case *Builtin:
		return f.Fn(ctx, args)
	default:
		return nil, pkgerrors.Errorf("cannot call %s", fn)
	}
}
