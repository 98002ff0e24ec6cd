package tern

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/iancoleman/strcase"
)

// SourcePosition represents a position in source code
type SourcePosition struct {
	Line   int
	Column int
}

func (p SourcePosition) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// SourceLocation represents a location in source code
type SourceLocation struct {
	Filename string
	Line     int
	Column   int
	Length   int             // Length of the syntax node that caused the error
	End      *SourcePosition // Optional: end position of the node
}

func (loc *SourceLocation) String() string {
	if loc == nil {
		return "<unknown>"
	}
	if loc.Filename == "" {
		return fmt.Sprintf("%d:%d", loc.Line, loc.Column)
	}
	return fmt.Sprintf("%s:%d:%d", loc.Filename, loc.Line, loc.Column)
}

// Pos returns the start of the location.
func (loc *SourceLocation) Pos() SourcePosition {
	if loc == nil {
		return SourcePosition{}
	}
	return SourcePosition{Line: loc.Line, Column: loc.Column}
}

// SourceLocatable is anything that knows where it came from.
type SourceLocatable interface {
	GetSourceLocation() *SourceLocation
}

// SourceError represents an error with source location information
type SourceError struct {
	Inner    error
	Location *SourceLocation
	Source   string // The source code of the file
}

// NewSourceError creates a new SourceError
func NewSourceError(inner error, location *SourceLocation, source string) *SourceError {
	return &SourceError{
		Inner:    inner,
		Location: location,
		Source:   source,
	}
}

func (e *SourceError) Unwrap() error {
	return e.Inner
}

func (e *SourceError) Error() string {
	if e.Location == nil {
		return e.Inner.Error()
	}
	return fmt.Sprintf("%s: %s", e.Location, e.Inner)
}

var (
	errorLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	codeStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	gutterStyle     = lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("4"))
	lineNumStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	caretStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Render returns the error with a highlighted source snippet.
func (e *SourceError) Render() string {
	if e.Location == nil {
		return e.Inner.Error()
	}

	if e.Source == "" && e.Location.Filename != "" {
		contents, err := os.ReadFile(e.Location.Filename)
		if err == nil {
			e.Source = string(contents)
		}
	}

	lines := strings.Split(e.Source, "\n")
	if e.Location.Line < 1 || e.Location.Line > len(lines) {
		return e.Error()
	}

	var result strings.Builder

	// Error header
	header := errorLabelStyle.Render("error")
	if code := Code(e); code != "" {
		header += codeStyle.Render("[" + code + "]")
	}
	fmt.Fprintf(&result, "%s: %s\n", header, e.Inner)
	fmt.Fprintf(&result, "  %s %s\n", gutterStyle.Render("-->"), e.Location)
	fmt.Fprintf(&result, " %s\n", gutterStyle.Render(padLeft("", 3)+" |"))

	// Show context lines
	startLine := max(1, e.Location.Line-2)
	endLine := min(len(lines), e.Location.Line+2)

	for i := startLine; i <= endLine; i++ {
		num := padLeft(fmt.Sprintf("%d", i), 3)
		if i == e.Location.Line {
			fmt.Fprintf(&result, " %s %s\n", lineNumStyle.Render(num+" |"), lines[i-1])
			padding := strings.Repeat(" ", 1+3+3+e.Location.Column-1)
			underline := strings.Repeat("^", max(1, e.Location.Length))
			fmt.Fprintf(&result, "%s%s\n", padding, caretStyle.Render(underline))
		} else {
			fmt.Fprintf(&result, " %s %s\n", gutterStyle.Render(num+" |"), lines[i-1])
		}
	}

	fmt.Fprintf(&result, " %s\n", gutterStyle.Render(padLeft("", 3)+" |"))

	return result.String()
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// Code returns a stable snake_case identifier for the kind of error at the
// bottom of err's chain, e.g. "non_exhaustive_match". It returns "" for
// errors that are not part of the language's error taxonomy.
func Code(err error) string {
	kind := Kind(err)
	if kind == nil {
		return ""
	}
	name := reflect.TypeOf(kind).Elem().Name()
	return strcase.ToSnake(strings.TrimSuffix(name, "Error"))
}

// Kind returns the taxonomy error wrapped somewhere in err, or nil.
func Kind(err error) error {
	var k kindError
	if errors.As(err, &k) {
		return k
	}
	return nil
}

// EvalContext carries evaluation context including source information
type EvalContext struct {
	Filename string
	Source   string
}

// Context key for storing EvalContext in Go context
type evalContextKey struct{}

// WithEvalContext stores the EvalContext in the Go context
func WithEvalContext(ctx context.Context, evalCtx *EvalContext) context.Context {
	return context.WithValue(ctx, evalContextKey{}, evalCtx)
}

// GetEvalContext retrieves the EvalContext from the Go context
func GetEvalContext(ctx context.Context) *EvalContext {
	if evalCtx, ok := ctx.Value(evalContextKey{}).(*EvalContext); ok {
		return evalCtx
	}
	return nil
}

// NewEvalContext creates a new evaluation context
func NewEvalContext(filename, source string) *EvalContext {
	return &EvalContext{
		Filename: filename,
		Source:   source,
	}
}

// CreateSourceError creates a SourceError from a regular error, using the
// node's location
func (ctx *EvalContext) CreateSourceError(err error, node SourceLocatable) error {
	var sourceErr *SourceError
	if errors.As(err, &sourceErr) {
		return sourceErr
	}

	location := locationOf(node)
	if location == nil {
		// No location info; give up
		return err
	}

	return NewSourceError(err, location, ctx.Source)
}

// CreateEvalError creates a source error from within an evaluator
func CreateEvalError(ctx context.Context, err error, node SourceLocatable) error {
	if evalCtx := GetEvalContext(ctx); evalCtx != nil {
		return evalCtx.CreateSourceError(err, node)
	}
	return err
}

// WithEvalErrorHandling wraps an Eval method implementation with automatic error handling
func WithEvalErrorHandling(ctx context.Context, node SourceLocatable, fn func() (Value, error)) (Value, error) {
	val, err := fn()
	if err != nil {
		if isControlFlow(err) {
			return nil, err
		}
		var sourceErr *SourceError
		if errors.As(err, &sourceErr) {
			// Already has source location context
			return nil, err
		}
		return nil, CreateEvalError(ctx, err, node)
	}
	return val, nil
}

// InferError represents a static error with source location information
type InferError struct {
	Inner    error
	Location *SourceLocation
	Node     any // Keep reference to the AST node for additional context
}

func (e *InferError) Error() string {
	return e.Inner.Error()
}

func (e *InferError) Unwrap() error {
	return e.Inner
}

// NewInferError creates a new InferError with source location from an AST node
func NewInferError(inner error, node SourceLocatable) *InferError {
	return &InferError{
		Inner:    inner,
		Location: locationOf(node),
		Node:     node,
	}
}

func locationOf(node SourceLocatable) *SourceLocation {
	if node == nil {
		return nil
	}
	if v := reflect.ValueOf(node); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil
	}
	return node.GetSourceLocation()
}

// WrapInferError wraps an existing error with source location information
func WrapInferError(err error, node SourceLocatable) error {
	var inferErr *InferError
	if errors.As(err, &inferErr) {
		// Already an InferError, don't double-wrap
		return err
	}
	return NewInferError(err, node)
}

// ConvertInferError converts an InferError to a SourceError with source context
func ConvertInferError(origErr error, source string) error {
	var inferErr *InferError
	if errors.As(origErr, &inferErr) {
		if inferErr.Location == nil {
			return origErr
		}
		return NewSourceError(inferErr.Inner, inferErr.Location, source)
	}
	return origErr
}
