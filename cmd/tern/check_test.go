package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/dagger/testctx"
	"github.com/stretchr/testify/require"

	"github.com/vito/tern/pkg/ioctx"
)

func writeProject(t *testctx.T, files map[string]string) string {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	for name, src := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}
	return dir
}

func (CLISuite) TestCheckReportsFirstErrorPerFile(ctx context.Context, t *testctx.T) {
	dir := writeProject(t, map[string]string{
		"good.tern":    "func id(x: int): int { x }\n",
		"unbound.tern": "let a = missingOne\nlet b = missingTwo\n",
		"types.tern":   "let a: int = \"s\"\nlet b: bool = 1\n",
		"notes.txt":    "not tern source\n",
	})

	var stderr bytes.Buffer
	ctx = ioctx.StderrToContext(ctx, &stderr)

	err := runCheck(ctx, []string{dir})
	require.EqualError(t, err, "2 of 3 files failed to check")

	out := ansi.Strip(stderr.String())
	require.Equal(t, 2, strings.Count(out, "error["), out)
	require.Contains(t, out, "error[unbound_identifier]")
	require.Contains(t, out, `"missingOne"`)
	require.NotContains(t, out, "missingTwo")
	require.Contains(t, out, "error[type_mismatch]")
	require.Contains(t, out, filepath.Join(dir, "types.tern")+":1:")
	require.NotContains(t, out, "good.tern")
}

func (CLISuite) TestCheckPasses(ctx context.Context, t *testctx.T) {
	dir := writeProject(t, map[string]string{
		"a.tern": "type pt struct { x: int }\nlet p = {x: 1}\n",
		"b.tern": "init {\n\toutput(1)\n}\n",
	})
	require.NoError(t, runCheck(ctx, []string{
		filepath.Join(dir, "a.tern"),
		filepath.Join(dir, "b.tern"),
	}))
}

func (CLISuite) TestCheckMissingPath(ctx context.Context, t *testctx.T) {
	err := runCheck(ctx, []string{filepath.Join(t.TempDir(), "absent.tern")})
	require.ErrorContains(t, err, "accessing")
}
