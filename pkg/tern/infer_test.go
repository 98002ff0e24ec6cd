package tern

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func checkSource(ctx context.Context, config CheckConfig, src string) (*File, error) {
	file, err := ParseSource("test.tern", src)
	if err != nil {
		return nil, err
	}
	if err := Resolve(ctx, file); err != nil {
		return nil, err
	}
	if err := NewChecker(file.Filename, config).CheckFile(ctx, file); err != nil {
		return nil, err
	}
	return file, nil
}

// globalTypes maps each top-level let to the type of its value.
func globalTypes(file *File) map[string]string {
	types := map[string]string{}
	for _, decl := range file.Decls {
		let, ok := decl.(*Let)
		if !ok {
			continue
		}
		bind, ok := let.Pattern.(*BindPattern)
		if !ok {
			continue
		}
		types[bind.Name] = let.Value.GetInferredType().String()
	}
	return types
}

func TestInferGlobals(t *testing.T) {
	file, err := checkSource(t.Context(), DefaultProjectConfig().Check, `
type option[T] enum { None, Some(T) }
type p struct { x: int, y: float }

func id[T](x: T): T { x }

let a = 1 + 2
let b = 1.5 * 2.0
let c = "x" + "y"
let d = (1, 'c', true)
let e = [[1], [2, 3]]
let f = fn(x: int) { x > 0 }
let g = Some("s")
let h = {y: 1.0, x: 2}
let i = if a > 2 { 1 } else { 2 }
let j = id([true])
let k = fn(x) { x + x }
let l = match g {
	Some(s) => s
	None => ""
}
let m = h.y
let n = d.1
let o = None
`)
	require.NoError(t, err)

	types := globalTypes(file)
	require.Equal(t, "int", types["a"])
	require.Equal(t, "float", types["b"])
	require.Equal(t, "string", types["c"])
	require.Equal(t, "(int, char, bool)", types["d"])
	require.Equal(t, "[[int]]", types["e"])
	require.Equal(t, "fn(int): bool", types["f"])
	require.Equal(t, "option[string]", types["g"])
	require.Equal(t, "p", types["h"])
	require.Equal(t, "int", types["i"])
	require.Equal(t, "[bool]", types["j"])
	require.Equal(t, "fn(int): int", types["k"])
	require.Equal(t, "string", types["l"])
	require.Equal(t, "float", types["m"])
	require.Equal(t, "char", types["n"])
	require.Contains(t, types["o"], "option[")
}

func TestInferLetPolymorphism(t *testing.T) {
	_, err := checkSource(t.Context(), DefaultProjectConfig().Check, `
init {
	let first = fn(a, b) { a }
	output(first(1, "x"))
	output(first("x", 1))
}
`)
	require.NoError(t, err)

	// var bindings stay monomorphic
	_, err = checkSource(t.Context(), DefaultProjectConfig().Check, `
init {
	var first = fn(a, b) { a }
	output(first(1, "x"))
	output(first("x", 1))
}
`)
	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestInferGeneralizesLocalDefinitions(t *testing.T) {
	for _, tt := range []struct {
		name string
		src  string
	}{
		{
			name: "local func",
			src: `
init {
	func id(x) { x }
	output((id(1), id("s")))
}
`,
		},
		{
			name: "local let lambda",
			src: `
init {
	let id = fn(x) { x }
	output((id(1), id("s")))
}
`,
		},
		{
			name: "global let lambda",
			src: `
let id = fn(x) { x }

init {
	output((id(1), id("s")))
}
`,
		},
		{
			name: "func nested in a function",
			src: `
func both(): (int, string) {
	func id(x) { x }
	(id(1), id("s"))
}
`,
		},
		{
			name: "lambda defined after other locals",
			src: `
init {
	let n = 1
	let pair = fn(x) { (x, n) }
	output((pair(1), pair("s")))
}
`,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := checkSource(t.Context(), DefaultProjectConfig().Check, tt.src)
			require.NoError(t, err)
		})
	}
}

func TestInferLambdaCapturingParamIsMonomorphic(t *testing.T) {
	_, err := checkSource(t.Context(), DefaultProjectConfig().Check, `
init {
	func f(y) {
		let g = fn(x) { y }
		let a: int = g(1)
		let b: string = g(2)
	}
}
`)
	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestInferRecursionIsMonomorphicInBody(t *testing.T) {
	_, err := checkSource(t.Context(), DefaultProjectConfig().Check, `
func fact(n: int): int {
	if n <= 1 { 1 } else { n * fact(n - 1) }
}

func sum[T](xs: [T], f: fn(T): int): int {
	var total = 0
	var i = 0
	while i < len(xs) {
		total = total + f(xs[i])
		i = i + 1
	}
	total
}

init {
	output(fact(5))
	output(sum(["a", "bb"], fn(s) { len([s]) }))
}
`)
	require.NoError(t, err)
}

func TestInferIsIdempotent(t *testing.T) {
	src := `
type pair[A, B] struct { first: A, second: B }

func swap[A, B](p: pair[A, B]): pair[B, A] {
	{first: p.second, second: p.first}
}

func show(x: int): string { "int" }
func show(x: bool): string { "bool" }

let q = swap({first: 1, second: "one"})
let r = show(true)
let s = 3.show()
`
	file, err := checkSource(t.Context(), DefaultProjectConfig().Check, src)
	require.NoError(t, err)
	first := globalTypes(file)
	require.Equal(t, "pair[string, int]", first["q"])
	require.Equal(t, "string", first["r"])
	require.Equal(t, "string", first["s"])

	require.NoError(t, NewChecker(file.Filename, DefaultProjectConfig().Check).CheckFile(t.Context(), file))
	require.Equal(t, first, globalTypes(file))
}

func TestInferOverloadSelection(t *testing.T) {
	file, err := checkSource(t.Context(), DefaultProjectConfig().Check, `
func describe(x: int): string { "int" }
func describe(x: [int]): int { len(x) }

let a = describe(1)
let b = describe([1, 2])
let c = [1].describe()
`)
	require.NoError(t, err)

	types := globalTypes(file)
	require.Equal(t, "string", types["a"])
	require.Equal(t, "int", types["b"])
	require.Equal(t, "int", types["c"])

	calls := findNodes[*MethodCall](file)
	require.Len(t, calls, 1)
	require.NotNil(t, calls[0].Resolved)
	require.Equal(t, "describe", calls[0].Resolved.Name)
}

func TestInferDefaultInt(t *testing.T) {
	src := `
init {
	let double = fn(x) { x + x }
}
`
	_, err := checkSource(t.Context(), DefaultProjectConfig().Check, src)
	require.NoError(t, err)

	off := false
	_, err = checkSource(t.Context(), CheckConfig{DefaultInt: &off}, src)
	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Contains(t, mismatch.Reason, "operands must be")
}

func TestInferNumericOperands(t *testing.T) {
	for _, tt := range []struct {
		src string
		ok  bool
	}{
		{src: "let x = 1 + 2.0", ok: false},
		{src: "let x = 'a' < 'b'", ok: true},
		{src: `let x = "a" < "b"`, ok: true},
		{src: "let x = true + false", ok: false},
		{src: "let x = 'a' + 'b'", ok: false},
		{src: "let x = 7 % 2", ok: true},
		{src: "let x = -1.5", ok: true},
		{src: `let x = -"s"`, ok: false},
		{src: "let x = (1, 2) == (1, 2)", ok: true},
		{src: "let x = !1", ok: false},
	} {
		_, err := checkSource(t.Context(), DefaultProjectConfig().Check, tt.src)
		if tt.ok {
			require.NoError(t, err, tt.src)
		} else {
			require.Error(t, err, tt.src)
			require.Equal(t, "type_mismatch", Code(err), tt.src)
		}
	}
}
