package tern

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vito/tern/pkg/hm"
)

// kindError is implemented by every error in the language's taxonomy.
type kindError interface {
	error
	kind()
}

// LexError is raised for characters that cannot start a token.
type LexError struct {
	Pos  SourcePosition
	Char rune
	Msg  string
}

func (*LexError) kind() {}
func (e *LexError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("unexpected character %q", e.Char)
}

// ParseError is raised when the token stream does not match the grammar.
type ParseError struct {
	Pos      SourcePosition
	Expected string
	Found    string
}

func (*ParseError) kind() {}
func (e *ParseError) Error() string {
	return fmt.Sprintf("expected %s, found %s", e.Expected, e.Found)
}

// UnboundIdentifierError is raised for a use of a name with no visible binding.
type UnboundIdentifierError struct {
	Name string
	Pos  SourcePosition
}

func (*UnboundIdentifierError) kind() {}
func (e *UnboundIdentifierError) Error() string {
	return fmt.Sprintf("unbound identifier %q", e.Name)
}

// ImmutableAssignmentError is raised for `x = ...` where x was bound by let.
type ImmutableAssignmentError struct {
	Name string
}

func (*ImmutableAssignmentError) kind() {}
func (e *ImmutableAssignmentError) Error() string {
	return fmt.Sprintf("cannot assign to %q: declared with let", e.Name)
}

// BreakOutsideLoopError is raised for break/continue outside of a while loop.
type BreakOutsideLoopError struct {
	Keyword string
}

func (*BreakOutsideLoopError) kind() {}
func (e *BreakOutsideLoopError) Error() string {
	return fmt.Sprintf("%s outside of loop", e.Keyword)
}

// ReturnOutsideFunctionError is raised for return in an init block or a
// top-level initializer.
type ReturnOutsideFunctionError struct{}

func (*ReturnOutsideFunctionError) kind() {}
func (e *ReturnOutsideFunctionError) Error() string {
	return "return outside of function"
}

// DuplicateDeclarationError is raised when two top-level declarations other
// than function overloads share a name.
type DuplicateDeclarationError struct {
	Name string
}

func (*DuplicateDeclarationError) kind() {}
func (e *DuplicateDeclarationError) Error() string {
	return fmt.Sprintf("%q is declared more than once", e.Name)
}

// UnknownTypeError is raised for a type annotation naming no declared type.
type UnknownTypeError struct {
	Name string
}

func (*UnknownTypeError) kind() {}
func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type %q", e.Name)
}

// TypeMismatchError is raised when two types fail to unify.
type TypeMismatchError struct {
	Expected hm.Type
	Found    hm.Type
	Pos      SourcePosition
	// Reason optionally says what required the expected type.
	Reason string
}

func (*TypeMismatchError) kind() {}
func (e *TypeMismatchError) Error() string {
	msg := fmt.Sprintf("type mismatch: expected %s, found %s", e.Expected, e.Found)
	if e.Reason != "" {
		msg = e.Reason + ": " + msg
	}
	return msg
}

// StructFieldMismatchError is raised when a struct literal's fields do not
// match exactly one declared struct.
type StructFieldMismatchError struct {
	Fields     []string
	Struct     string
	Missing    []string
	Extra      []string
	Candidates []string
}

func (*StructFieldMismatchError) kind() {}
func (e *StructFieldMismatchError) Error() string {
	switch {
	case len(e.Candidates) > 1:
		return fmt.Sprintf("struct literal {%s} is ambiguous between %s; annotate the binding",
			strings.Join(e.Fields, ", "), strings.Join(e.Candidates, ", "))
	case e.Struct != "":
		var parts []string
		if len(e.Missing) > 0 {
			parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
		}
		if len(e.Extra) > 0 {
			parts = append(parts, "unknown "+strings.Join(e.Extra, ", "))
		}
		return fmt.Sprintf("struct literal does not match %s: %s", e.Struct, strings.Join(parts, "; "))
	default:
		return fmt.Sprintf("no struct declares exactly the fields {%s}", strings.Join(e.Fields, ", "))
	}
}

// UnknownFieldError is raised when selecting a field a type does not have.
type UnknownFieldError struct {
	Type  hm.Type
	Field string
	// Tuple is set when Field is a tuple element index.
	Tuple bool
}

func (*UnknownFieldError) kind() {}
func (e *UnknownFieldError) Error() string {
	if e.Tuple {
		if _, ok := e.Type.(hm.TypeVariable); ok {
			return fmt.Sprintf("cannot take element %s of a value of unknown type %s: its tuple type must be annotated", e.Field, e.Type)
		}
		return fmt.Sprintf("%s has no element %s", e.Type, e.Field)
	}
	if e.Type == nil {
		return fmt.Sprintf("no struct declares a field %q", e.Field)
	}
	if _, ok := e.Type.(hm.TypeVariable); ok {
		return fmt.Sprintf("cannot select %s from a value of unknown type %s", e.Field, e.Type)
	}
	return fmt.Sprintf("%s has no field %s", e.Type, e.Field)
}

// ArityMismatchError is raised when a call or constructor receives the wrong
// number of arguments.
type ArityMismatchError struct {
	Name     string
	Expected int
	Found    int
}

func (*ArityMismatchError) kind() {}
func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("%s expects %d argument(s), got %d", e.Name, e.Expected, e.Found)
}

// ImmutableFieldError is raised when assigning to a field not declared mut.
type ImmutableFieldError struct {
	Struct string
	Field  string
}

func (*ImmutableFieldError) kind() {}
func (e *ImmutableFieldError) Error() string {
	return fmt.Sprintf("cannot assign to %s.%s: field is not mut", e.Struct, e.Field)
}

// NoMethodError is raised when no function of the given name accepts the
// receiver type as its first parameter.
type NoMethodError struct {
	Name     string
	Receiver hm.Type
}

func (*NoMethodError) kind() {}
func (e *NoMethodError) Error() string {
	return fmt.Sprintf("no function %s accepts %s as its first argument", e.Name, e.Receiver)
}

// AmbiguousMethodError is raised when several functions of the given name
// accept the receiver type.
type AmbiguousMethodError struct {
	Name       string
	Receiver   hm.Type
	Candidates []string
}

func (*AmbiguousMethodError) kind() {}
func (e *AmbiguousMethodError) Error() string {
	if e.Receiver == nil {
		return fmt.Sprintf("reference to %s is ambiguous between %s",
			e.Name, strings.Join(e.Candidates, " and "))
	}
	return fmt.Sprintf("call to %s with %s is ambiguous between %s",
		e.Name, e.Receiver, strings.Join(e.Candidates, " and "))
}

// NonExhaustiveMatchError lists example values no arm matches.
type NonExhaustiveMatchError struct {
	Missing []string
}

func (*NonExhaustiveMatchError) kind() {}
func (e *NonExhaustiveMatchError) Error() string {
	return fmt.Sprintf("match is not exhaustive: missing %s", strings.Join(e.Missing, ", "))
}

// InconsistentPatternBindingsError is raised when the alternatives of an
// or-pattern bind different names or types.
type InconsistentPatternBindingsError struct {
	Arm   int
	Names []string
}

func (*InconsistentPatternBindingsError) kind() {}
func (e *InconsistentPatternBindingsError) Error() string {
	if e.Arm < 0 {
		return fmt.Sprintf("alternatives must bind the same names with the same types (%s)",
			strings.Join(e.Names, ", "))
	}
	return fmt.Sprintf("alternatives in arm %d must bind the same names with the same types (%s)",
		e.Arm+1, strings.Join(e.Names, ", "))
}

// DuplicateBindingError is raised when a pattern binds a name twice.
type DuplicateBindingError struct {
	Name string
}

func (*DuplicateBindingError) kind() {}
func (e *DuplicateBindingError) Error() string {
	return fmt.Sprintf("%q is bound more than once in the same pattern", e.Name)
}

// RefutablePatternInLetError is raised when a let/var pattern might not match.
type RefutablePatternInLetError struct {
	Missing []string
}

func (*RefutablePatternInLetError) kind() {}
func (e *RefutablePatternInLetError) Error() string {
	return fmt.Sprintf("refutable pattern in binding: %s not covered", strings.Join(e.Missing, ", "))
}

// DivisionByZeroError is raised at runtime for integer / or % by zero.
type DivisionByZeroError struct{}

func (*DivisionByZeroError) kind() {}
func (e *DivisionByZeroError) Error() string {
	return "division by zero"
}

// IndexOutOfBoundsError is raised at runtime for an index outside [0, length).
type IndexOutOfBoundsError struct {
	Index  int64
	Length int
}

func (*IndexOutOfBoundsError) kind() {}
func (e *IndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("index %d out of bounds for length %d", e.Index, e.Length)
}

// UseBeforeInitError is raised at runtime when reading a global whose
// initializer has not run yet.
type UseBeforeInitError struct {
	Name string
}

func (*UseBeforeInitError) kind() {}
func (e *UseBeforeInitError) Error() string {
	return fmt.Sprintf("%q used before initialization", e.Name)
}

// StackOverflowError is raised when calls nest deeper than the configured
// limit.
type StackOverflowError struct {
	Depth int
}

func (*StackOverflowError) kind() {}
func (e *StackOverflowError) Error() string {
	return fmt.Sprintf("stack overflow: call depth exceeded %d", e.Depth)
}

// BreakException is used to signal a break statement
type BreakException struct{}

func (e *BreakException) Error() string {
	return "break outside of loop"
}

// ContinueException is used to signal a continue statement
type ContinueException struct{}

func (e *ContinueException) Error() string {
	return "continue outside of loop"
}

// ReturnException carries a return value up to the enclosing call
type ReturnException struct {
	Value Value
}

func (e *ReturnException) Error() string {
	return "return outside of function"
}

func isControlFlow(err error) bool {
	var breakEx *BreakException
	var continueEx *ContinueException
	var returnEx *ReturnException
	return errors.As(err, &breakEx) || errors.As(err, &continueEx) || errors.As(err, &returnEx)
}
