package tern

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func parseInit(t *testing.T, body string) *Block {
	t.Helper()
	file, err := ParseSource("test.tern", "init {\n"+body+"\n}\n")
	require.NoError(t, err)
	require.Len(t, file.Decls, 1)
	init, ok := file.Decls[0].(*InitDecl)
	require.True(t, ok)
	return init.Body
}

func TestParsePrecedence(t *testing.T) {
	block := parseInit(t, "1 + 2 * 3 == 7 && !false")

	and, ok := block.Result.(*BinaryOp)
	require.True(t, ok)
	require.Equal(t, AND, and.Op)

	eq, ok := and.Left.(*BinaryOp)
	require.True(t, ok)
	require.Equal(t, EQ, eq.Op)

	plus, ok := eq.Left.(*BinaryOp)
	require.True(t, ok)
	require.Equal(t, PLUS, plus.Op)

	times, ok := plus.Right.(*BinaryOp)
	require.True(t, ok)
	require.Equal(t, STAR, times.Op)

	not, ok := and.Right.(*UnaryOp)
	require.True(t, ok)
	require.Equal(t, BANG, not.Op)
}

func TestParseLeftAssociative(t *testing.T) {
	block := parseInit(t, "10 - 3 - 2")
	outer, ok := block.Result.(*BinaryOp)
	require.True(t, ok)
	inner, ok := outer.Left.(*BinaryOp)
	require.True(t, ok)
	require.Equal(t, MINUS, inner.Op)
	require.IsType(t, &IntLit{}, outer.Right)
}

func TestParseBlockResult(t *testing.T) {
	block := parseInit(t, "let x = 1\nx")
	require.Len(t, block.Stmts, 1)
	require.IsType(t, &Let{}, block.Stmts[0])
	require.IsType(t, &Identifier{}, block.Result)

	// a trailing semicolon still leaves the expression as the result
	block = parseInit(t, "output(1);")
	require.Empty(t, block.Stmts)
	require.IsType(t, &Call{}, block.Result)
}

func TestParsePostfix(t *testing.T) {
	block := parseInit(t, "xs[0].name.trim(1).0")

	tidx, ok := block.Result.(*TupleIndex)
	require.True(t, ok)
	require.Equal(t, 0, tidx.Index)

	call, ok := tidx.Receiver.(*MethodCall)
	require.True(t, ok)
	require.Equal(t, "trim", call.Method)
	require.Len(t, call.Args, 1)

	field, ok := call.Receiver.(*FieldAccess)
	require.True(t, ok)
	require.Equal(t, "name", field.Field)
	require.IsType(t, &Index{}, field.Receiver)
}

func TestParseNestedTupleIndex(t *testing.T) {
	block := parseInit(t, "t.1.0")
	outer, ok := block.Result.(*TupleIndex)
	require.True(t, ok)
	require.Equal(t, 0, outer.Index)
	inner, ok := outer.Receiver.(*TupleIndex)
	require.True(t, ok)
	require.Equal(t, 1, inner.Index)
}

func TestParseStructLiteralInConditions(t *testing.T) {
	// in an if head, { starts the body rather than a struct literal
	block := parseInit(t, "if ok { 1 } else { 2 }")
	ifExpr, ok := block.Result.(*If)
	require.True(t, ok)
	require.IsType(t, &Identifier{}, ifExpr.Cond)

	// parentheses allow one
	block = parseInit(t, "if ({x: 1}).x == 1 { 1 } else { 2 }")
	ifExpr, ok = block.Result.(*If)
	require.True(t, ok)
	require.IsType(t, &BinaryOp{}, ifExpr.Cond)
}

func TestParseErrors(t *testing.T) {
	for _, tt := range []struct {
		name     string
		src      string
		expected string
		line     int
	}{
		{name: "missing paren", src: "init {\n  output(1\n}\n", expected: ")", line: 3},
		{name: "param needs type", src: "func f(x) {}\n", expected: ":", line: 1},
		{name: "two expressions on a line", src: "init {\n  1 2\n}\n", expected: "; or }", line: 2},
		{name: "assign to call", src: "init {\n  f() = 1\n}\n", expected: "assignable expression before =", line: 2},
		{name: "unclosed block", src: "init {\n", expected: "expression", line: 2},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSource("test.tern", tt.src)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			require.Equal(t, tt.expected, perr.Expected)
			require.Equal(t, tt.line, perr.Pos.Line)
		})
	}
}

func TestParseLexErrorsPassThrough(t *testing.T) {
	_, err := ParseSource("test.tern", "init { # }")
	var lerr *LexError
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, '#', lerr.Char)
}

// Formatting a program and parsing the result gives back the same tree.
func TestFormatRoundTrip(t *testing.T) {
	paths, err := filepath.Glob("testdata/programs/*.tern")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	ignore := cmpopts.IgnoreTypes(&SourceLocation{}, InferredTypeHolder{})

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			src, err := os.ReadFile(path)
			require.NoError(t, err)

			orig, err := ParseSource(path, string(src))
			require.NoError(t, err)

			formatted := Format(orig)
			reparsed, err := ParseSource(path, formatted)
			require.NoError(t, err, formatted)

			if diff := cmp.Diff(orig, reparsed, ignore); diff != "" {
				t.Errorf("round trip changed the tree (-orig +reparsed):\n%s", diff)
			}
			require.Equal(t, formatted, Format(reparsed))
		})
	}
}
