package tern

import (
	"context"
	"fmt"

	"github.com/vito/tern/pkg/hm"
	"github.com/vito/tern/pkg/ioctx"
)

// builtinVar is quantified in builtin schemes; the checker never allocates
// negative variables, so instantiation cannot capture it.
const builtinVar hm.TypeVariable = -1

type builtinDef struct {
	Scheme *hm.Scheme
	Fn     BuiltinFunc
}

var builtins = map[string]builtinDef{
	// output(v: a): unit
	"output": {
		Scheme: hm.NewScheme([]hm.TypeVariable{builtinVar}, hm.NewFnType(hm.Types{builtinVar}, hm.Unit)),
		Fn: func(ctx context.Context, args []Value) (Value, error) {
			if _, err := fmt.Fprintln(ioctx.StdoutFromContext(ctx), Display(args[0])); err != nil {
				return nil, err
			}
			return UnitValue{}, nil
		},
	},
	// len(a: [a]): int
	"len": {
		Scheme: hm.NewScheme([]hm.TypeVariable{builtinVar}, hm.NewFnType(hm.Types{hm.ArrayType{Elem: builtinVar}}, hm.Int)),
		Fn: func(ctx context.Context, args []Value) (Value, error) {
			arr, ok := args[0].(*ArrayValue)
			if !ok {
				return nil, fmt.Errorf("len: expected array, got %s", args[0])
			}
			return IntValue{Val: int64(len(arr.Elems))}, nil
		},
	},
}

// builtinBindings are shared by every program; user functions with the same
// name overload them.
var builtinBindings = []*Binding{
	{ID: -1, Name: "output", Kind: BuiltinBinding},
	{ID: -2, Name: "len", Kind: BuiltinBinding},
}

func builtinBinding(name string) *Binding {
	for _, b := range builtinBindings {
		if b.Name == name {
			return b
		}
	}
	return nil
}
