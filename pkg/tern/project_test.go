package tern

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vito/tern/pkg/ioctx"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// projectDir creates a repository root holding tern.toml, if given.
func projectDir(t *testing.T, toml string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	if toml != "" {
		writeFile(t, filepath.Join(dir, "tern.toml"), toml)
	}
	return dir
}

func TestLoadProjectConfig(t *testing.T) {
	dir := projectDir(t, `
[run]
max-call-depth = 20

[check]
default-int = false
`)
	config, err := LoadProjectConfig(filepath.Join(dir, "tern.toml"))
	require.NoError(t, err)
	require.Equal(t, 20, config.Run.MaxCallDepth)
	require.NotNil(t, config.Check.DefaultInt)
	require.False(t, *config.Check.DefaultInt)
}

func TestLoadProjectConfigDefaults(t *testing.T) {
	dir := projectDir(t, "[run]\n")
	config, err := LoadProjectConfig(filepath.Join(dir, "tern.toml"))
	require.NoError(t, err)
	require.Equal(t, DefaultMaxCallDepth, config.Run.MaxCallDepth)
	require.True(t, config.Check.defaultInt())
}

func TestLoadProjectConfigErrors(t *testing.T) {
	for _, tt := range []struct {
		name string
		toml string
		msg  string
	}{
		{name: "unknown key", toml: "[run]\nfoo = 1\n", msg: "unknown key run.foo"},
		{name: "negative depth", toml: "[run]\nmax-call-depth = -1\n", msg: "must not be negative"},
		{name: "wrong type", toml: "[check]\ndefault-int = \"yes\"\n", msg: "parsing"},
		{name: "malformed", toml: "[run\n", msg: "parsing"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			dir := projectDir(t, tt.toml)
			_, err := LoadProjectConfig(filepath.Join(dir, "tern.toml"))
			require.ErrorContains(t, err, tt.msg)
		})
	}
}

func TestFindProjectConfig(t *testing.T) {
	dir := projectDir(t, "[run]\nmax-call-depth = 7\n")
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path, config, err := FindProjectConfig(nested)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "tern.toml"), path)
	require.Equal(t, 7, config.Run.MaxCallDepth)
}

func TestFindProjectConfigStopsAtRepoRoot(t *testing.T) {
	outer := t.TempDir()
	writeFile(t, filepath.Join(outer, "tern.toml"), "[run]\nmax-call-depth = 7\n")

	repo := filepath.Join(outer, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))

	path, config, err := FindProjectConfig(repo)
	require.NoError(t, err)
	require.Empty(t, path)
	require.Nil(t, config)
}

func TestRunFileUsesProjectConfig(t *testing.T) {
	dir := projectDir(t, "[run]\nmax-call-depth = 5\n")
	script := filepath.Join(dir, "src", "deep.tern")
	writeFile(t, script, `
func down(n: int): int {
	if n == 0 { 0 } else { down(n - 1) }
}

init {
	output(down(3))
	output(down(10))
}
`)

	var out bytes.Buffer
	ctx := ioctx.StdoutToContext(t.Context(), &out)
	err := RunFile(ctx, script, false)

	var overflow *StackOverflowError
	require.ErrorAs(t, err, &overflow)
	require.Equal(t, 5, overflow.Depth)
	require.Equal(t, "0\n", out.String())
}

func TestLoadUsesDefaultIntSetting(t *testing.T) {
	src := "init {\n\tlet f = fn(x) { x + x }\n}\n"

	dir := projectDir(t, "[check]\ndefault-int = false\n")
	_, err := Load(t.Context(), filepath.Join(dir, "main.tern"), src)
	require.Error(t, err)
	require.Equal(t, "type_mismatch", Code(err))

	dir = projectDir(t, "")
	_, err = Load(t.Context(), filepath.Join(dir, "main.tern"), src)
	require.NoError(t, err)
}

func TestExplicitConfigWins(t *testing.T) {
	dir := projectDir(t, "[check]\ndefault-int = false\n")
	ctx := ContextWithProjectConfig(t.Context(), "", DefaultProjectConfig())

	_, err := Load(ctx, filepath.Join(dir, "main.tern"), "init {\n\tlet f = fn(x) { x + x }\n}\n")
	require.NoError(t, err)
}
