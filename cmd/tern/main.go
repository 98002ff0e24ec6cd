package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vito/tern/pkg/ioctx"
	"github.com/vito/tern/pkg/tern"
)

// Config holds the application configuration
type Config struct {
	Debug bool
	File  string
}

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "tern [flags] [file]",
		Short: "Tern language interpreter",
		Long: `Tern is a small statically typed language with structs, enums,
pattern matching, generics and closures.

With a file argument the program is checked and its init blocks are run.
Without one an interactive session is started.`,
		Example: `  # Run a Tern program
  tern program.tern

  # Start interactive REPL
  tern

  # Run with debug logging and an AST dump
  tern --debug program.tern`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cfg.Debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.File = args[0]
				return run(cmd.Context(), cfg)
			}
			return runREPL(cmd.Context(), cfg)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")

	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(fmtCmd())

	ctx := context.Background()
	ctx = ioctx.StdoutToContext(ctx, os.Stdout)
	ctx = ioctx.StderrToContext(ctx, os.Stderr)
	if err := fang.Execute(ctx, rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, renderError(err))
		}),
	); err != nil {
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// renderError shows source errors with their snippet. Styling is dropped
// when stderr is not a terminal.
func renderError(err error) string {
	var srcErr *tern.SourceError
	if !errors.As(err, &srcErr) {
		return err.Error()
	}
	out := srcErr.Render()
	if !term.IsTerminal(os.Stderr.Fd()) {
		out = ansi.Strip(out)
	}
	return out
}

func run(ctx context.Context, cfg Config) error {
	info, err := os.Stat(cfg.File)
	if err != nil {
		return fmt.Errorf("failed to access path %s: %w", cfg.File, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", cfg.File)
	}
	return tern.RunFile(ctx, cfg.File, cfg.Debug)
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [flags] file...",
		Short: "Check Tern source files without running them",
		Long: `Parse, resolve and type check each file. Files are checked in
parallel; the first error of every failing file is reported.`,
		Example: `  # Check a single file
  tern check program.tern

  # Check every .tern file in a directory
  tern check ./examples`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), args)
		},
	}
}

func runCheck(ctx context.Context, paths []string) error {
	files, err := collectFiles(paths)
	if err != nil {
		return err
	}

	errs := make([]error, len(files))
	eg, ctx := errgroup.WithContext(ctx)
	for i, file := range files {
		eg.Go(func() error {
			source, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			if _, err := tern.Load(ctx, file, string(source)); err != nil {
				errs[i] = err
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	stderr := ioctx.StderrFromContext(ctx)
	failed := 0
	for i, err := range errs {
		if err == nil {
			slog.DebugContext(ctx, "checked", "file", files[i])
			continue
		}
		failed++
		fmt.Fprintln(stderr, renderError(err))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to check", failed, len(files))
	}
	return nil
}

func fmtCmd() *cobra.Command {
	var (
		write bool
		list  bool
	)

	cmd := &cobra.Command{
		Use:   "fmt [flags] [path...]",
		Short: "Format Tern source files",
		Long: `Format Tern source files according to the canonical style.

By default, fmt prints the formatted source to stdout.
Use -w to write the result back to the source file.
Use -l to list files that would be changed.`,
		Example: `  # Format a file and print to stdout
  tern fmt program.tern

  # Format a file in place
  tern fmt -w program.tern

  # List files that need formatting
  tern fmt -l ./examples`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd.Context(), args, write, list)
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write result to source file instead of stdout")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List files that would be formatted")

	return cmd
}

func runFmt(ctx context.Context, paths []string, write, list bool) error {
	files, err := collectFiles(paths)
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := formatFile(ctx, file, write, list); err != nil {
			return fmt.Errorf("formatting %s: %w", file, err)
		}
	}
	return nil
}

func formatFile(ctx context.Context, path string, write, list bool) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	formatted, err := tern.FormatFile(path, string(source))
	if err != nil {
		return err
	}

	changed := formatted != string(source)
	stdout := ioctx.StdoutFromContext(ctx)

	if list {
		if changed {
			fmt.Fprintln(stdout, path)
		}
		return nil
	}
	if write {
		if !changed {
			return nil
		}
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		return os.WriteFile(path, []byte(formatted), info.Mode())
	}

	_, err = io.WriteString(stdout, formatted)
	return err
}

// collectFiles expands directories into the .tern files they contain.
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", path, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".tern") {
				files = append(files, filepath.Join(path, entry.Name()))
			}
		}
	}
	return files, nil
}
