package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/dagger/testctx"
	"github.com/dagger/testctx/oteltest"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"

	"github.com/vito/tern/pkg/ioctx"
	"github.com/vito/tern/pkg/tern"
)

func TestMain(m *testing.M) {
	os.Exit(oteltest.Main(m))
}

type CLISuite struct{}

func TestCLI(tT *testing.T) {
	testctx.New(tT,
		oteltest.WithTracing[*testing.T](),
		oteltest.WithLogging[*testing.T](),
	).RunTests(CLISuite{})
}

// transcript feeds each input to a fresh session and records what it
// printed, the value it produced, or the code of the error it failed with.
func transcript(ctx context.Context, inputs ...string) string {
	var out bytes.Buffer
	ctx = ioctx.StdoutToContext(ctx, &out)
	ctx = tern.ContextWithProjectConfig(ctx, "", tern.DefaultProjectConfig())

	s := newSession()
	var log strings.Builder
	for _, input := range inputs {
		fmt.Fprintf(&log, "> %s\n", input)
		out.Reset()
		result, err := s.eval(ctx, input)
		log.WriteString(out.String())
		switch {
		case err != nil:
			fmt.Fprintf(&log, "error: %s\n", tern.Code(err))
		case result != nil:
			fmt.Fprintln(&log, result)
		}
	}
	return log.String()
}

func (CLISuite) TestREPLSession(ctx context.Context, t *testctx.T) {
	log := transcript(ctx,
		"type point struct { x: int, y: int }",
		"func sum(p: point): int { p.x + p.y }",
		"let p = {x: 1, y: 2}",
		"p.sum()",
		`let noisy = output("once")`,
		"var count = 0",
		"count = count + 1",
		"count",
		"init { output(sum({x: count, y: 10})) }",
		"nope",
		"count",
	)
	golden.Assert(t, log, "repl.golden")
}

func (CLISuite) TestREPLKeepsDeclarationsAfterErrors(ctx context.Context, t *testctx.T) {
	log := transcript(ctx,
		"func double(x: int): int { x * 2 }",
		`func broken(): int { "s" }`,
		"double(4)",
		"broken()",
	)
	require.Equal(t, strings.Join([]string{
		"> func double(x: int): int { x * 2 }",
		`> func broken(): int { "s" }`,
		"error: type_mismatch",
		"> double(4)",
		"8",
		"> broken()",
		"error: unbound_identifier",
		"",
	}, "\n"), log)
}

func (CLISuite) TestREPLClosuresSeeLaterAssignments(ctx context.Context, t *testctx.T) {
	log := transcript(ctx,
		"var total = 0",
		"let add = fn(n: int) { total = total + n }",
		"add(5)",
		"total = total + 1",
		"total",
	)
	require.True(t, strings.HasSuffix(log, "> total\n6\n"), log)
}

func TestOpenDelimiters(t *testing.T) {
	require.Equal(t, 0, openDelimiters("output(1)"))
	require.Equal(t, 1, openDelimiters("func f() {"))
	require.Equal(t, 3, openDelimiters("init { output(["))
	require.Equal(t, 0, openDelimiters(`"unterminated`))
}
