package tern

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dagger/testctx"
	"github.com/dagger/testctx/oteltest"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"

	"github.com/vito/tern/pkg/ioctx"
)

func TestMain(m *testing.M) {
	os.Exit(oteltest.Main(m))
}

type RunSuite struct{}

func TestRun(tT *testing.T) {
	testctx.New(tT,
		oteltest.WithTracing[*testing.T](),
		oteltest.WithLogging[*testing.T](),
	).RunTests(RunSuite{})
}

// runSource loads and runs src with the given config, or the defaults when
// config is nil, returning everything it output.
func runSource(ctx context.Context, config *ProjectConfig, src string) (string, error) {
	if config == nil {
		config = DefaultProjectConfig()
	}
	var out bytes.Buffer
	ctx = ioctx.StdoutToContext(ctx, &out)
	ctx = ContextWithProjectConfig(ctx, "", config)
	prog, err := Load(ctx, "test.tern", src)
	if err != nil {
		return "", err
	}
	err = prog.Run(ctx)
	return out.String(), err
}

func (RunSuite) TestListLength(ctx context.Context, t *testctx.T) {
	out, err := runSource(ctx, nil, `
type list[T] enum {
	Nil
	Cons(T, list[T])
}

func size[T](l: list[T]): int {
	match l {
		Nil => 0
		Cons(_, rest) => 1 + rest.size()
	}
}

init {
	output(Cons(1, Cons(2, Nil)).size())
}
`)
	require.NoError(t, err)
	require.Equal(t, "2\n", out)
}

func (RunSuite) TestPolymorphicLocals(ctx context.Context, t *testctx.T) {
	out, err := runSource(ctx, nil, `
let twice = fn(x) { (x, x) }

init {
	func id(x) { x }
	let first = fn(a, b) { a }
	output((id(1), id("s")))
	output(first('c', 2.5))
	output(twice(true))
	output(twice("t"))
}
`)
	require.NoError(t, err)
	require.Equal(t, "(1, \"s\")\nc\n(true, true)\n(\"t\", \"t\")\n", out)
}

func (RunSuite) TestLambdaAndFunctionAgree(ctx context.Context, t *testctx.T) {
	out, err := runSource(ctx, nil, `
func add3(x: int, y: int, z: int): int {
	x + y + z
}

init {
	var add = fn(x, y, z) { x + y + z }
	output(add(1, 2, 7) == add3(1, 2, 7))
	output(1.add3(2, 7))
}
`)
	require.NoError(t, err)
	require.Equal(t, "true\n10\n", out)
}

func (RunSuite) TestStructFieldMutation(ctx context.Context, t *testctx.T) {
	out, err := runSource(ctx, nil, `
type user struct {
	id: int
	mut email: string
}

init {
	var u = {id: 1, email: "a@example.com"}
	u.email = "b@example.com"
	output(u.email)
	output(u)
}
`)
	require.NoError(t, err)
	require.Equal(t, "b@example.com\nuser{id: 1, email: \"b@example.com\"}\n", out)
}

func (RunSuite) TestArraysAlias(ctx context.Context, t *testctx.T) {
	out, err := runSource(ctx, nil, `
init {
	let a = [1, 2, 3]
	let b = a
	b[0] = 5
	output(a[0] == 5)
	output(a[0])
	output(len(a))
}
`)
	require.NoError(t, err)
	require.Equal(t, "true\n5\n3\n", out)
}

func (RunSuite) TestNonExhaustiveWitness(ctx context.Context, t *testctx.T) {
	_, err := runSource(ctx, nil, `
type color enum { Red, Green, Blue }

func name(c: color): string {
	match c {
		Red => "red"
		Green => "green"
	}
}
`)
	var nonExhaustive *NonExhaustiveMatchError
	require.ErrorAs(t, err, &nonExhaustive)
	require.Equal(t, []string{"Blue"}, nonExhaustive.Missing)
}

func (RunSuite) TestVarRebinds(ctx context.Context, t *testctx.T) {
	out, err := runSource(ctx, nil, `
init {
	var x = 1
	x = x + 1
	x = x * 10
	output(x)
}
`)
	require.NoError(t, err)
	require.Equal(t, "20\n", out)
}

func (RunSuite) TestGlobalsAreLazyWithoutInit(ctx context.Context, t *testctx.T) {
	out, err := runSource(ctx, nil, `
let x = output(1)
let y = 1 / 0
`)
	require.NoError(t, err)
	require.Empty(t, out)
}

func (RunSuite) TestInitBlocksRunInOrder(ctx context.Context, t *testctx.T) {
	out, err := runSource(ctx, nil, `
var log = ""

init {
	log = log + "a"
}

let middle = output("global")

init {
	log = log + "b"
	output(log)
}
`)
	require.NoError(t, err)
	require.Equal(t, "global\nab\n", out)
}

func (RunSuite) TestRuntimeErrors(ctx context.Context, t *testctx.T) {
	for _, tc := range []struct {
		name string
		src  string
		kind error
	}{
		{
			name: "use before init",
			src:  "let a = b\nlet b = 1\ninit {}\n",
			kind: &UseBeforeInitError{},
		},
		{
			name: "division by zero",
			src:  "init {\n\tlet z = 0\n\toutput(1 / z)\n}\n",
			kind: &DivisionByZeroError{},
		},
		{
			name: "index out of bounds",
			src:  "init {\n\tlet xs = [1]\n\toutput(xs[1])\n}\n",
			kind: &IndexOutOfBoundsError{},
		},
	} {
		t.Run(tc.name, func(ctx context.Context, t *testctx.T) {
			_, err := runSource(ctx, nil, tc.src)
			require.Error(t, err)
			require.Equal(t, Code(tc.kind), Code(err))
		})
	}
}

func (RunSuite) TestFloatDivisionByZeroIsNotAnError(ctx context.Context, t *testctx.T) {
	out, err := runSource(ctx, nil, `
init {
	let z = 0.0
	output(1.0 / z)
}
`)
	require.NoError(t, err)
	require.Equal(t, "+Inf\n", out)
}

func (RunSuite) TestStackOverflow(ctx context.Context, t *testctx.T) {
	config := DefaultProjectConfig()
	config.Run.MaxCallDepth = 50

	src := `
func depth(n: int): int {
	if n == 0 {
		return 0
	}
	1 + depth(n - 1)
}

init {
	output(depth(40))
	output(depth(60))
}
`
	out, err := runSource(ctx, config, src)
	var overflow *StackOverflowError
	require.ErrorAs(t, err, &overflow)
	require.Equal(t, 50, overflow.Depth)
	require.Equal(t, "40\n", out)
}

func (RunSuite) TestShadowing(ctx context.Context, t *testctx.T) {
	out, err := runSource(ctx, nil, `
init {
	let x = 1
	let x = "one"
	output(x)
	if true {
		let x = 2.5
		output(x)
	}
	output(x)
}
`)
	require.NoError(t, err)
	require.Equal(t, "one\n2.5\none\n", out)
}

func (RunSuite) TestClosuresShareCapturedVars(ctx context.Context, t *testctx.T) {
	out, err := runSource(ctx, nil, `
init {
	var n = 0
	let inc = fn() { n = n + 1 }
	let get = fn() { n }
	inc()
	inc()
	output(get())
	n = 10
	output(get())
}
`)
	require.NoError(t, err)
	require.Equal(t, "2\n10\n", out)
}

func (RunSuite) TestArraysAliasThroughFields(ctx context.Context, t *testctx.T) {
	out, err := runSource(ctx, nil, `
type box struct {
	mut items: [int]
}

init {
	let xs = [1, 2]
	let b = {items: xs}
	xs[0] = 9
	output(b.items[0])
}
`)
	require.NoError(t, err)
	require.Equal(t, "9\n", out)
}

func (RunSuite) TestGlobalAccessor(ctx context.Context, t *testctx.T) {
	ctx = ContextWithProjectConfig(ctx, "", DefaultProjectConfig())
	prog, err := Load(ctx, "test.tern", "let (a, b) = (1, \"two\")\nvar c = a + 2\n")
	require.NoError(t, err)

	env, err := prog.Register(ctx)
	require.NoError(t, err)

	c, ok := prog.Global(env, "c")
	require.True(t, ok)
	require.Equal(t, IntValue{Val: 3}, c)

	b, ok := prog.Global(env, "b")
	require.True(t, ok)
	require.Equal(t, "two", Display(b))

	_, ok = prog.Global(env, "missing")
	require.False(t, ok)
}

func TestPrograms(t *testing.T) {
	paths, err := filepath.Glob("testdata/programs/*.tern")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".tern")
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			ctx := ioctx.StdoutToContext(t.Context(), &out)
			ctx = ContextWithProjectConfig(ctx, "", DefaultProjectConfig())

			require.NoError(t, RunFile(ctx, path, false))
			golden.Assert(t, out.String(), name+".golden")
		})
	}
}
