package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/vito/tern/pkg/ioctx"
	"github.com/vito/tern/pkg/tern"
)

const (
	replFilename = "<repl>"
	replResult   = "_repl"

	promptMain = "tern> "
	promptCont = "  ... "
)

// session holds the declarations entered so far. Each input is checked
// together with them, so later lines can use earlier functions and types.
// Globals keep their cells between inputs, so their initializers run once
// and assignments to them persist.
type session struct {
	decls string
	cells map[string]*tern.Cell
}

func newSession() *session {
	return &session{cells: map[string]*tern.Cell{}}
}

// keep records the cells of the program's globals for later inputs.
func (s *session) keep(prog *tern.Program, env *tern.Env) {
	for name, cell := range prog.GlobalCells(env) {
		if name != replResult {
			s.cells[name] = cell
		}
	}
}

func runREPL(ctx context.Context, cfg Config) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := historyPath()
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	stdout := ioctx.StdoutFromContext(ctx)
	stderr := ioctx.StderrFromContext(ctx)
	fmt.Fprintln(stdout, "Tern REPL. Declarations persist; type :quit to exit.")

	s := newSession()
	for {
		input, err := readInput(ln)
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(stdout)
				return nil
			}
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			return err
		}

		trimmed := strings.TrimSpace(input)
		switch {
		case trimmed == "":
			continue
		case trimmed == ":quit":
			return nil
		case trimmed == ":decls":
			fmt.Fprint(stdout, s.decls)
			continue
		case strings.HasPrefix(trimmed, ":"):
			fmt.Fprintln(stderr, "unknown command. Type :quit to exit.")
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))

		result, err := s.eval(ctx, input)
		if err != nil {
			fmt.Fprintln(stderr, renderError(err))
			continue
		}
		if result != nil {
			fmt.Fprintln(stdout, result)
		}
	}
}

// readInput reads one entry, prompting for more lines while brackets are
// left open.
func readInput(ln *liner.State) (string, error) {
	var b strings.Builder
	prompt := promptMain
	for {
		line, err := ln.Prompt(prompt)
		if err != nil {
			if b.Len() > 0 && errors.Is(err, io.EOF) {
				return b.String(), nil
			}
			return "", err
		}
		b.WriteString(line)
		if openDelimiters(b.String()) <= 0 {
			return b.String(), nil
		}
		b.WriteString("\n")
		prompt = promptCont
	}
}

// openDelimiters counts brackets that are opened but not yet closed. Lexing
// errors end the entry so the error is reported.
func openDelimiters(src string) int {
	depth := 0
	for tok, err := range tern.Tokenize(replFilename, src) {
		if err != nil {
			return 0
		}
		switch tok.Kind {
		case tern.LPAREN, tern.LBRACKET, tern.LBRACE:
			depth++
		case tern.RPAREN, tern.RBRACKET, tern.RBRACE:
			depth--
		}
	}
	return depth
}

// eval runs one entry. Declarations are kept for later entries and any init
// blocks among them are run; anything else is evaluated as an expression
// whose value is returned.
func (s *session) eval(ctx context.Context, input string) (tern.Value, error) {
	if file, err := tern.ParseSource(replFilename, input); err == nil {
		return nil, s.declare(ctx, file, input)
	}

	src := s.decls + "\nlet " + replResult + " = {\n" + input + "\n}\n"
	prog, err := tern.Load(ctx, replFilename, src)
	if err != nil {
		return nil, err
	}
	env, err := prog.RegisterWith(ctx, s.cells)
	if err != nil {
		return nil, err
	}
	s.keep(prog, env)
	val, ok := prog.Global(env, replResult)
	if !ok {
		return nil, nil
	}
	if _, isUnit := val.(tern.UnitValue); isUnit {
		return nil, nil
	}
	return val, nil
}

func (s *session) declare(ctx context.Context, file *tern.File, input string) error {
	prefix := s.decls + "\n"
	prog, err := tern.Load(ctx, replFilename, prefix+input)
	if err != nil {
		return err
	}
	env, err := prog.RegisterWith(ctx, s.cells)
	if err != nil {
		return err
	}

	known := strings.Count(prefix, "\n")
	var fresh []*tern.InitDecl
	for _, init := range prog.Inits() {
		if init.Loc.Line > known {
			fresh = append(fresh, init)
		}
	}
	if len(fresh) > 0 {
		if err := prog.RunInit(ctx, env, fresh...); err != nil {
			return err
		}
	}

	kept := &tern.File{Filename: replFilename}
	for _, decl := range file.Decls {
		if _, isInit := decl.(*tern.InitDecl); !isInit {
			kept.Decls = append(kept.Decls, decl)
		}
	}
	if len(kept.Decls) > 0 {
		s.decls += tern.Format(kept)
	}
	s.keep(prog, env)
	return nil
}

func historyPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "tern")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}
