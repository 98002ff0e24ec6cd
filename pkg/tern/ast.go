package tern

import (
	"context"
	"fmt"

	"github.com/vito/tern/pkg/hm"
)

// Node is any syntax tree node.
type Node interface {
	SourceLocatable

	// Walk recursively visits this node and all its children, calling fn for each node.
	// The callback returns true to continue walking into children, false to skip children.
	Walk(fn func(Node) bool)
}

// Expr is a node that produces a value.
type Expr interface {
	Node
	Infer(ctx context.Context, c *Checker) (hm.Type, error)
	Eval(ctx context.Context, env *Env) (Value, error)

	// SetInferredType stores the inferred type for this node
	SetInferredType(hm.Type)

	// GetInferredType retrieves the inferred type for this node
	GetInferredType() hm.Type
}

// Stmt is a node that appears in statement position within a block.
type Stmt interface {
	Node
	Check(ctx context.Context, c *Checker) error
	Exec(ctx context.Context, env *Env) error
}

// Decl is a top-level declaration.
type Decl interface {
	Node
	isDecl()
}

// InferredTypeHolder is embedded in AST nodes to store inferred types
type InferredTypeHolder struct {
	inferredType hm.Type
}

func (h *InferredTypeHolder) SetInferredType(t hm.Type) {
	h.inferredType = t
}

func (h *InferredTypeHolder) GetInferredType() hm.Type {
	return h.inferredType
}

// File is a parsed program: every top-level declaration in source order.
type File struct {
	Filename string
	Decls    []Decl
}

func (f *File) GetSourceLocation() *SourceLocation {
	return &SourceLocation{Filename: f.Filename, Line: 1, Column: 1}
}

func (f *File) Walk(fn func(Node) bool) {
	if !fn(f) {
		return
	}
	for _, d := range f.Decls {
		d.Walk(fn)
	}
}

// BindingKind says what introduced a binding.
type BindingKind int

const (
	LocalBinding BindingKind = iota
	ParamBinding
	GlobalBinding
	FuncBinding
	BuiltinBinding
)

// Binding is a name introduced by a declaration, parameter or pattern.
// Identifiers are resolved to the *Binding they refer to.
type Binding struct {
	ID      int
	Name    string
	Mutable bool
	Kind    BindingKind
	// Depth is the function nesting depth of the scope that owns the binding;
	// globals and builtins are at depth 0.
	Depth int
	Loc   *SourceLocation
}

// Key identifies the binding in a type environment.
func (b *Binding) Key() string {
	return fmt.Sprintf("%s#%d", b.Name, b.ID)
}

func (b *Binding) String() string {
	return b.Name
}

// IsTopLevel reports whether the binding lives in the global frame.
func (b *Binding) IsTopLevel() bool {
	return b.Kind == GlobalBinding || b.Kind == FuncBinding || b.Kind == BuiltinBinding
}

func walkAll[N Node](fn func(Node) bool, nodes []N) {
	for _, n := range nodes {
		n.Walk(fn)
	}
}
