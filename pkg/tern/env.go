package tern

// Cell is the storage behind a binding. Closures share cells with the frame
// they were created in, so assignments through a captured var are visible
// everywhere.
type Cell struct {
	Value Value
	Init  bool
}

// Env is a runtime frame. Function bodies, blocks and match arms each get a
// child frame; the root frame holds the program's globals.
type Env struct {
	vars   map[*Binding]*Cell
	parent *Env
	interp *Interpreter
}

// NewEnv creates a root frame for the given interpreter.
func NewEnv(interp *Interpreter) *Env {
	return &Env{
		vars:   map[*Binding]*Cell{},
		interp: interp,
	}
}

// Fork creates a child frame.
func (e *Env) Fork() *Env {
	return &Env{
		vars:   map[*Binding]*Cell{},
		parent: e,
		interp: e.interp,
	}
}

// Interp returns the interpreter running this frame.
func (e *Env) Interp() *Interpreter {
	return e.interp
}

// Define binds b to v in this frame.
func (e *Env) Define(b *Binding, v Value) {
	e.vars[b] = &Cell{Value: v, Init: true}
}

// Share binds b to an existing cell, so writes through either binding are
// seen by both.
func (e *Env) Share(b *Binding, cell *Cell) {
	e.vars[b] = cell
}

// Declare reserves an uninitialized cell for b in this frame.
func (e *Env) Declare(b *Binding) *Cell {
	cell := &Cell{}
	e.vars[b] = cell
	return cell
}

// Lookup finds the cell for b in this frame or an enclosing one.
func (e *Env) Lookup(b *Binding) (*Cell, bool) {
	for env := e; env != nil; env = env.parent {
		if cell, ok := env.vars[b]; ok {
			return cell, true
		}
	}
	return nil, false
}
