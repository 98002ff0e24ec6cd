package tern

import (
	"context"
	"testing"

	"github.com/dagger/testctx"
	"github.com/dagger/testctx/oteltest"
	"github.com/stretchr/testify/require"
)

type FormatSuite struct{}

func TestFormat(tT *testing.T) {
	testctx.New(tT,
		oteltest.WithTracing[*testing.T](),
		oteltest.WithLogging[*testing.T](),
	).RunTests(FormatSuite{})
}

type formatCase struct {
	name     string
	input    string
	expected string
}

func runFormatCases(t *testctx.T, tests []formatCase) {
	for _, tt := range tests {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			result, err := FormatFile("test.tern", tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.expected, result)

			again, err := FormatFile("test.tern", result)
			require.NoError(t, err)
			require.Equal(t, result, again, "formatting is not idempotent")
		})
	}
}

func (FormatSuite) TestDeclarations(ctx context.Context, t *testctx.T) {
	runFormatCases(t, []formatCase{
		{
			name:  "function",
			input: `func   f(x:int):int{x+1}`,
			expected: `func f(x: int): int {
	x + 1
}
`,
		},
		{
			name:  "generic function",
			input: `func apply[A,B](f:fn(A):B,x:A):B{f(x)}`,
			expected: `func apply[A, B](f: fn(A): B, x: A): B {
	f(x)
}
`,
		},
		{
			name:  "struct",
			input: `type p struct { x: int, mut y: [int] }`,
			expected: `type p struct {
	x: int
	mut y: [int]
}
`,
		},
		{
			name:  "enum",
			input: `type o[T] enum { None, Some(T), Pair((T, T)) }`,
			expected: `type o[T] enum {
	None
	Some(T)
	Pair((T, T))
}
`,
		},
		{
			name:  "globals group together",
			input: "let a = 1\nvar b = 2\nfunc f() {}\nlet c = 3",
			expected: `let a = 1
var b = 2

func f() {}

let c = 3
`,
		},
	})
}

func (FormatSuite) TestExpressions(ctx context.Context, t *testctx.T) {
	runFormatCases(t, []formatCase{
		{
			name:  "needed parentheses are kept",
			input: `init { output((1 + 2) * 3) }`,
			expected: `init {
	output((1 + 2) * 3)
}
`,
		},
		{
			name:  "redundant parentheses are dropped",
			input: `init { output(((1 * 2)) + 3) }`,
			expected: `init {
	output(1 * 2 + 3)
}
`,
		},
		{
			name:  "right operand of same precedence",
			input: `init { output(10 - (3 - 2)) }`,
			expected: `init {
	output(10 - (3 - 2))
}
`,
		},
		{
			name:  "struct literal in condition",
			input: `init { if ({x: 1}).x == 1 { output(1) } }`,
			expected: `init {
	if ({x: 1}).x == 1 {
		output(1)
	}
}
`,
		},
		{
			name:  "float literals keep a point",
			input: `let f = 2.0`,
			expected: `let f = 2.0
`,
		},
		{
			name:  "closures and method calls",
			input: `init { let g = fn(s) { s + "!" }; output("hi".g().len()) }`,
			expected: `init {
	let g = fn(s) {
		s + "!"
	}
	output("hi".g().len())
}
`,
		},
	})
}

func (FormatSuite) TestControlFlow(ctx context.Context, t *testctx.T) {
	runFormatCases(t, []formatCase{
		{
			name: "if else chain",
			input: `func sign(n: int): int { if n < 0 { -1 } else if n == 0 { 0 } else { 1 } }`,
			expected: `func sign(n: int): int {
	if n < 0 {
		-1
	} else if n == 0 {
		0
	} else {
		1
	}
}
`,
		},
		{
			name: "while with break",
			input: `init { var i = 0; while true { i = i + 1; if i > 3 { break } } }`,
			expected: `init {
	var i = 0
	while true {
		i = i + 1
		if i > 3 {
			break
		}
	}
}
`,
		},
		{
			name: "match patterns",
			input: `func f(p: (int, bool)): int { match p { (0, _) => 0
(1 | 2, true) as w => 1
(n, {x}) => n
_ => 2 } }`,
			expected: `func f(p: (int, bool)): int {
	match p {
		(0, _) => 0
		(1 | 2, true) as w => 1
		(n, {x}) => n
		_ => 2
	}
}
`,
		},
	})
}

func (FormatSuite) TestComments(ctx context.Context, t *testctx.T) {
	result, err := FormatFile("test.tern", "// leading\nlet x = 1 // trailing\n")
	require.NoError(t, err)
	require.Equal(t, "let x = 1\n", result)
}
