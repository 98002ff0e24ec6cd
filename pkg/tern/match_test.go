package tern

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func missingCases(t *testing.T, src string) []string {
	t.Helper()
	_, err := checkSource(t.Context(), DefaultProjectConfig().Check, src)
	var nonExhaustive *NonExhaustiveMatchError
	require.ErrorAs(t, err, &nonExhaustive)
	return nonExhaustive.Missing
}

func TestMatchWitnesses(t *testing.T) {
	for _, tt := range []struct {
		name    string
		src     string
		missing []string
	}{
		{
			name: "enum constructors in declaration order",
			src: `
type color enum { Red, Green, Blue }
func f(c: color): int {
	match c {
		Red => 1
	}
}`,
			missing: []string{"Green", "Blue"},
		},
		{
			name: "tuple of bools",
			src: `
func f(p: (bool, bool)): int {
	match p {
		(true, true) => 1
		(false, _) => 2
	}
}`,
			missing: []string{"(true, false)"},
		},
		{
			name: "nested enums",
			src: `
type option[T] enum { None, Some(T) }
func f(o: option[option[int]]): int {
	match o {
		Some(Some(_)) => 1
		None => 0
	}
}`,
			missing: []string{"Some(None)"},
		},
		{
			name: "struct fields",
			src: `
type pt struct { x: bool, y: int }
func f(p: pt): int {
	match p {
		{x: true} => 1
	}
}`,
			missing: []string{"{x: false, y: _}"},
		},
		{
			name: "strings need a catch-all",
			src: `
func f(s: string): int {
	match s {
		"a" => 1
		"b" => 2
	}
}`,
			missing: []string{"_"},
		},
		{
			name: "unconstrained payload",
			src: `
type shape enum { Circle(float), Rect(float, float) }
func f(s: shape): float {
	match s {
		Circle(r) => r
	}
}`,
			missing: []string{"Rect(_, _)"},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.missing, missingCases(t, tt.src))
		})
	}
}

func TestMatchExhaustive(t *testing.T) {
	for _, src := range []string{
		`
type color enum { Red, Green, Blue }
func f(c: color): int {
	match c {
		Red | Green => 1
		Blue => 2
	}
}`,
		`
type option[T] enum { None, Some(T) }
func f(o: option[bool]): int {
	match o {
		Some(true) as whole => 1
		Some(false) => 2
		None => 0
	}
}`,
		`
func f(p: (int, bool)): int {
	match p {
		(0, _) => 0
		(n, true) => n
		(_, false) => -1
	}
}`,
	} {
		_, err := checkSource(t.Context(), DefaultProjectConfig().Check, src)
		require.NoError(t, err, src)
	}
}

func TestMatchIrrefutableLets(t *testing.T) {
	_, err := checkSource(t.Context(), DefaultProjectConfig().Check, `
type pt struct { x: int, y: int }
type wrap enum { Wrap(int) }

init {
	let (a, (b, _)) = (1, (2, 3))
	let {x, y: why} = {x: 1, y: 2}
	let Wrap(w) = Wrap(4)
	output(a + b + x + why + w)
}
`)
	require.NoError(t, err)

	_, err = checkSource(t.Context(), DefaultProjectConfig().Check, `
init {
	let (1, b) = (1, 2)
}
`)
	var refutable *RefutablePatternInLetError
	require.ErrorAs(t, err, &refutable)
	require.Equal(t, []string{"(_, _)"}, refutable.Missing)
}

func TestMatchEvaluation(t *testing.T) {
	out, err := runSource(t.Context(), nil, `
type shape enum {
	Circle(int)
	Square(int)
	Dot
}

func describe(s: shape): string {
	match s {
		Circle(0) | Square(0) => "empty"
		Circle(r) | Square(r) => "size " + label(r)
		Dot => "dot"
	}
}

func label(n: int): string {
	match n {
		-1 => "minus one"
		1 => "one"
		_ => "many"
	}
}

func first(p: (int, int)): string {
	match p {
		(1, _) => "first"
		(_, 1) => "second"
		_ => "neither"
	}
}

init {
	output(describe(Circle(0)))
	output(describe(Square(1)))
	output(describe(Circle(5)))
	output(describe(Dot))
	output(label(-1))
	output(first((1, 1)))
	output(first((2, 1)))
	output(first((2, 2)))

	let pair = (Circle(2), "x")
	let n = match pair {
		(Circle(r), s) as whole => r
		_ => 0
	}
	output(n)
}
`)
	require.NoError(t, err)
	require.Equal(t, "empty\nsize one\nsize many\ndot\nminus one\nfirst\nsecond\nneither\n2\n", out)
}
