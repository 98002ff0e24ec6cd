package tern

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kr/pretty"
)

// Program is a file that has passed every static stage and is ready to run.
type Program struct {
	File   *File
	Source string
	Config *ProjectConfig

	lets  []*Let
	funcs []*FuncDecl
	inits []*InitDecl
}

// Load parses, resolves and checks a source file. Errors carry the source
// location and text so they can be rendered.
func Load(ctx context.Context, filename, source string) (*Program, error) {
	ctx, err := ensureProjectConfig(ctx, filepath.Dir(filename))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	file, err := ParseSource(filename, source)
	if err != nil {
		return nil, syntaxError(err, filename, source)
	}
	slog.DebugContext(ctx, "parsed program",
		"file", filename,
		"decls", len(file.Decls),
		"took", time.Since(start))

	return LoadFile(ctx, file, source)
}

// LoadFile resolves and checks an already parsed file.
func LoadFile(ctx context.Context, file *File, source string) (*Program, error) {
	_, config := ProjectConfigFromContext(ctx)

	if err := Resolve(ctx, file); err != nil {
		return nil, ConvertInferError(err, source)
	}

	start := time.Now()
	if err := NewChecker(file.Filename, config.Check).CheckFile(ctx, file); err != nil {
		return nil, ConvertInferError(err, source)
	}
	slog.DebugContext(ctx, "checked", "file", file.Filename, "took", time.Since(start))

	prog := &Program{
		File:   file,
		Source: source,
		Config: config,
	}
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *Let:
			prog.lets = append(prog.lets, d)
		case *FuncDecl:
			prog.funcs = append(prog.funcs, d)
		case *InitDecl:
			prog.inits = append(prog.inits, d)
		}
	}
	return prog, nil
}

// syntaxError attaches a source location to a lex or parse error.
func syntaxError(err error, filename, source string) error {
	var pos SourcePosition
	var lexErr *LexError
	var parseErr *ParseError
	switch {
	case errors.As(err, &lexErr):
		pos = lexErr.Pos
	case errors.As(err, &parseErr):
		pos = parseErr.Pos
	default:
		return err
	}
	return NewSourceError(err, &SourceLocation{
		Filename: filename,
		Line:     pos.Line,
		Column:   pos.Column,
		Length:   1,
	}, source)
}

// Inits returns the program's init blocks in source order.
func (prog *Program) Inits() []*InitDecl {
	return prog.inits
}

func (prog *Program) context(ctx context.Context) context.Context {
	return WithEvalContext(ctx, NewEvalContext(prog.File.Filename, prog.Source))
}

// Register creates the global frame: builtins and functions first, so that
// every function can see every other, then each top-level let and var in
// source order. A global read before its initializer has run fails with
// UseBeforeInitError.
func (prog *Program) Register(ctx context.Context) (*Env, error) {
	return prog.RegisterWith(ctx, nil)
}

// RegisterWith is Register with the cells of some globals carried over from
// an earlier program. A let or var whose names all have a known cell shares
// those cells and its initializer is not run.
func (prog *Program) RegisterWith(ctx context.Context, known map[string]*Cell) (*Env, error) {
	ctx = prog.context(ctx)
	env := NewEnv(NewInterpreter(prog.Config.Run.MaxCallDepth))

	for _, b := range builtinBindings {
		env.Define(b, &Builtin{Name: b.Name, Fn: builtins[b.Name].Fn})
	}
	for _, fn := range prog.funcs {
		env.Define(fn.Binding, &Closure{Name: fn.Name, Fn: fn.Fn, Env: env})
	}
	for _, let := range prog.lets {
		for _, b := range patternBindings(let.Pattern) {
			env.Declare(b)
		}
	}
	reused := 0
	for _, let := range prog.lets {
		if bindKnown(env, let, known) {
			reused++
			continue
		}
		if err := let.Exec(ctx, env); err != nil {
			return nil, err
		}
	}

	slog.DebugContext(ctx, "registered globals",
		"functions", len(prog.funcs),
		"globals", len(prog.lets),
		"reused", reused)
	return env, nil
}

func bindKnown(env *Env, let *Let, known map[string]*Cell) bool {
	if len(known) == 0 {
		return false
	}
	binds := patternBindings(let.Pattern)
	for _, b := range binds {
		if _, ok := known[b.Name]; !ok {
			return false
		}
	}
	for _, b := range binds {
		env.Share(b, known[b.Name])
	}
	return len(binds) > 0
}

// RunInit executes the given init blocks, or every init block when none are
// given, in order.
func (prog *Program) RunInit(ctx context.Context, env *Env, inits ...*InitDecl) error {
	ctx = prog.context(ctx)
	if len(inits) == 0 {
		inits = prog.inits
	}
	for i, init := range inits {
		slog.DebugContext(ctx, "running init", "index", i, "at", init.Loc)
		if err := init.Exec(ctx, env); err != nil {
			return err
		}
	}
	return nil
}

// Run registers the program's globals and runs its init blocks. A program
// without init blocks has nothing to run, so its globals are not evaluated.
func (prog *Program) Run(ctx context.Context) error {
	if len(prog.inits) == 0 {
		slog.DebugContext(ctx, "no init blocks", "file", prog.File.Filename)
		return nil
	}
	env, err := prog.Register(ctx)
	if err != nil {
		return err
	}
	return prog.RunInit(ctx, env)
}

// Global returns the value of a top-level let or var.
func (prog *Program) Global(env *Env, name string) (Value, bool) {
	for _, let := range prog.lets {
		for _, b := range patternBindings(let.Pattern) {
			if b.Name != name {
				continue
			}
			cell, ok := env.Lookup(b)
			if !ok || !cell.Init {
				return nil, false
			}
			return cell.Value, true
		}
	}
	return nil, false
}

// GlobalCells returns the cell of every initialized top-level let and var,
// for carrying globals into RegisterWith.
func (prog *Program) GlobalCells(env *Env) map[string]*Cell {
	cells := map[string]*Cell{}
	for _, let := range prog.lets {
		for _, b := range patternBindings(let.Pattern) {
			if cell, ok := env.Lookup(b); ok && cell.Init {
				cells[b.Name] = cell
			}
		}
	}
	return cells
}

// RunFile loads and runs a file. With debug set the checked syntax tree is
// dumped to stderr first.
func RunFile(ctx context.Context, path string, debug bool) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	prog, err := Load(ctx, path, string(source))
	if err != nil {
		return err
	}
	if debug {
		pretty.Fprintf(os.Stderr, "%# v\n", prog.File)
	}
	return prog.Run(ctx)
}
