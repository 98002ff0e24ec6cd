package tern

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func resolveSource(t *testing.T, src string) *File {
	t.Helper()
	file, err := ParseSource("test.tern", src)
	require.NoError(t, err)
	require.NoError(t, Resolve(t.Context(), file))
	return file
}

func findNodes[T Node](file *File) []T {
	var found []T
	file.Walk(func(n Node) bool {
		if x, ok := n.(T); ok {
			found = append(found, x)
		}
		return true
	})
	return found
}

func identifiers(file *File, name string) []*Identifier {
	var ids []*Identifier
	for _, id := range findNodes[*Identifier](file) {
		if id.Name == name {
			ids = append(ids, id)
		}
	}
	return ids
}

func TestResolveCaptures(t *testing.T) {
	file := resolveSource(t, `
func counter(): fn(): int {
	var n = 0
	let step = 1
	fn() {
		n = n + step
		n
	}
}
`)
	lits := findNodes[*FuncLit](file)
	require.Len(t, lits, 2)

	outer, inner := lits[0], lits[1]
	require.Empty(t, outer.Captures)

	var names []string
	for _, b := range inner.Captures {
		names = append(names, b.Name)
	}
	require.ElementsMatch(t, []string{"n", "step"}, names)
}

func TestResolveNestedCaptures(t *testing.T) {
	file := resolveSource(t, `
func outer(x: int): fn(): fn(): int {
	fn() {
		fn() { x }
	}
}
`)
	lits := findNodes[*FuncLit](file)
	require.Len(t, lits, 3)
	// x passes through the middle function to reach the innermost
	require.Len(t, lits[1].Captures, 1)
	require.Len(t, lits[2].Captures, 1)
	require.Equal(t, "x", lits[2].Captures[0].Name)
	require.Equal(t, ParamBinding, lits[2].Captures[0].Kind)
}

func TestResolveShadowing(t *testing.T) {
	file := resolveSource(t, `
init {
	let x = 1
	let x = x + 1
	if true {
		let x = "inner"
		output(x)
	}
	output(x)
}
`)
	binds := findNodes[*BindPattern](file)
	require.Len(t, binds, 3)

	uses := identifiers(file, "x")
	require.Len(t, uses, 3)
	// let x = x + 1 reads the first x
	require.Same(t, binds[0].Binding, uses[0].Binding)
	require.Same(t, binds[2].Binding, uses[1].Binding)
	require.Same(t, binds[1].Binding, uses[2].Binding)
}

func TestResolveForwardReferences(t *testing.T) {
	file := resolveSource(t, `
func isEven(n: int): bool {
	if n == 0 { true } else { isOdd(n - 1) }
}

func isOdd(n: int): bool {
	if n == 0 { false } else { isEven(n - 1) }
}
`)
	odd := identifiers(file, "isOdd")
	require.Len(t, odd, 1)
	require.NotNil(t, odd[0].Binding)
	require.Equal(t, FuncBinding, odd[0].Binding.Kind)
	require.True(t, odd[0].Binding.IsTopLevel())
}

func TestResolveOverloads(t *testing.T) {
	file := resolveSource(t, `
func show(x: int): string { "int" }
func show(x: bool): string { "bool" }

init {
	output(show(1))
	output(1.len())
}
`)
	show := identifiers(file, "show")
	require.Len(t, show, 1)
	require.Nil(t, show[0].Binding)
	require.Len(t, show[0].Candidates, 2)

	calls := findNodes[*MethodCall](file)
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Candidates, 1)
	require.Equal(t, BuiltinBinding, calls[0].Candidates[0].Kind)
}

func TestResolveBuiltinOverloadedByUser(t *testing.T) {
	file := resolveSource(t, `
func len(s: string): int { 0 }

init {
	output(len("abc"))
}
`)
	ids := identifiers(file, "len")
	require.Len(t, ids, 1)
	require.Len(t, ids[0].Candidates, 2)
}

func TestResolveLoopsResetInFunctions(t *testing.T) {
	file, err := ParseSource("test.tern", `
init {
	while true {
		let f = fn() { break }
	}
}
`)
	require.NoError(t, err)

	err = Resolve(t.Context(), file)
	var loopErr *BreakOutsideLoopError
	require.ErrorAs(t, err, &loopErr)
	require.Equal(t, "break", loopErr.Keyword)
}

func TestResolveImmutableAssignment(t *testing.T) {
	for _, src := range []string{
		"init {\n\tlet x = 1\n\tx = 2\n}\n",
		"let g = 1\ninit {\n\tg = 2\n}\n",
		"func f(n: int) {\n\tn = 1\n}\n",
		"func f() {}\ninit {\n\tf = f\n}\n",
	} {
		file, err := ParseSource("test.tern", src)
		require.NoError(t, err)

		err = Resolve(t.Context(), file)
		var immErr *ImmutableAssignmentError
		require.ErrorAs(t, err, &immErr, src)
	}

	resolveSource(t, "var g = 1\ninit {\n\tg = 2\n\tvar l = 1\n\tl = g\n}\n")
}
