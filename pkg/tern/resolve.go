package tern

import (
	"context"
	"log/slog"
	"slices"

	"github.com/pkg/errors"
)

// scope is one lexical level of local bindings.
type scope struct {
	names  map[string]*Binding
	parent *scope
}

func (s *scope) lookup(name string) (*Binding, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if b, ok := sc.names[name]; ok {
			return b, true
		}
	}
	return nil, false
}

// resolver links every identifier to its binding and records what each
// function captures.
type resolver struct {
	nextID int

	// top-level values by name; several entries only for function overloads
	globals map[string][]*Binding
	types   map[string]bool
	ctors   map[string]bool

	scope *scope
	// enclosing function literals, innermost last; a binding made inside
	// funcs[i] has depth i+1
	funcs     []*FuncLit
	loopDepth int
}

// Resolve annotates every identifier in the file with the binding it refers
// to and every function with the bindings it captures.
func Resolve(ctx context.Context, file *File) error {
	r := &resolver{
		globals: map[string][]*Binding{},
		types:   map[string]bool{},
		ctors:   map[string]bool{},
	}
	if err := r.hoist(file); err != nil {
		return err
	}
	for _, decl := range file.Decls {
		if err := r.resolveDecl(decl); err != nil {
			return err
		}
	}
	slog.DebugContext(ctx, "resolved program",
		"file", file.Filename,
		"bindings", r.nextID)
	return nil
}

func (r *resolver) newBinding(name string, kind BindingKind, mutable bool, loc *SourceLocation) *Binding {
	b := &Binding{
		ID:      r.nextID,
		Name:    name,
		Mutable: mutable,
		Kind:    kind,
		Depth:   len(r.funcs),
		Loc:     loc,
	}
	r.nextID++
	return b
}

// hoist declares every top-level name before any body is resolved.
func (r *resolver) hoist(file *File) error {
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *TypeDecl:
			if _, builtin := primitives[d.Name]; builtin || r.types[d.Name] {
				return NewInferError(&DuplicateDeclarationError{Name: d.Name}, d)
			}
			r.types[d.Name] = true
			fields := map[string]bool{}
			for _, f := range d.Fields {
				if fields[f.Name] {
					return NewInferError(&DuplicateDeclarationError{Name: f.Name}, f)
				}
				fields[f.Name] = true
			}
			for _, v := range d.Variants {
				if r.ctors[v.Name] {
					return NewInferError(&DuplicateDeclarationError{Name: v.Name}, v)
				}
				r.ctors[v.Name] = true
			}
		case *FuncDecl:
			existing := r.globals[d.Name]
			if len(existing) > 0 && existing[0].Kind != FuncBinding {
				return NewInferError(&DuplicateDeclarationError{Name: d.Name}, d)
			}
			d.Binding = r.newBinding(d.Name, FuncBinding, false, d.Loc)
			r.globals[d.Name] = append(existing, d.Binding)
		case *Let:
			var bound []*Binding
			if err := r.bindPattern(d.Pattern, GlobalBinding, d.Mutable, nil, &bound); err != nil {
				return err
			}
			for i, b := range bound {
				if slices.ContainsFunc(bound[:i], func(o *Binding) bool { return o.Name == b.Name }) {
					return NewInferError(&DuplicateBindingError{Name: b.Name}, d.Pattern)
				}
				if len(r.globals[b.Name]) > 0 {
					return NewInferError(&DuplicateDeclarationError{Name: b.Name}, d.Pattern)
				}
				r.globals[b.Name] = []*Binding{b}
			}
		}
	}
	return nil
}

func (r *resolver) resolveDecl(decl Decl) error {
	switch d := decl.(type) {
	case *TypeDecl:
		return nil
	case *FuncDecl:
		return r.resolveFunc(d.Fn)
	case *Let:
		return r.resolveExpr(d.Value)
	case *InitDecl:
		return r.resolveExpr(d.Body)
	default:
		return errors.Errorf("unexpected declaration %T", decl)
	}
}

func (r *resolver) push() {
	r.scope = &scope{names: map[string]*Binding{}, parent: r.scope}
}

func (r *resolver) pop() {
	r.scope = r.scope.parent
}

func (r *resolver) declare(bs ...*Binding) {
	for _, b := range bs {
		r.scope.names[b.Name] = b
	}
}

// lookup resolves a name used as a value. Overloaded top-level functions
// resolve to every candidate; the checker picks one.
func (r *resolver) lookup(name string) (*Binding, []*Binding, bool) {
	if b, ok := r.scope.lookup(name); ok {
		r.capture(b)
		return b, nil, true
	}
	if globals := r.globals[name]; len(globals) > 0 {
		if globals[0].Kind != FuncBinding {
			return globals[0], nil, true
		}
		candidates := slices.Clone(globals)
		if b := builtinBinding(name); b != nil {
			candidates = append(candidates, b)
		}
		if len(candidates) == 1 {
			return candidates[0], candidates, true
		}
		return nil, candidates, true
	}
	if b := builtinBinding(name); b != nil {
		return b, nil, true
	}
	return nil, nil, false
}

// capture records b on every function between its scope and the current one.
func (r *resolver) capture(b *Binding) {
	if b.IsTopLevel() {
		return
	}
	for _, fn := range r.funcs[b.Depth:] {
		if !slices.Contains(fn.Captures, b) {
			fn.Captures = append(fn.Captures, b)
		}
	}
}

func (r *resolver) resolveFunc(fn *FuncLit) error {
	fn.Captures = nil
	r.funcs = append(r.funcs, fn)
	outerLoops := r.loopDepth
	r.loopDepth = 0
	r.push()
	defer func() {
		r.pop()
		r.loopDepth = outerLoops
		r.funcs = r.funcs[:len(r.funcs)-1]
	}()
	for _, p := range fn.Params {
		p.Binding = r.newBinding(p.Name, ParamBinding, false, p.Loc)
		r.declare(p.Binding)
	}
	return r.resolveExpr(fn.Body)
}

func (r *resolver) resolveExprs(exprs []Expr) error {
	for _, e := range exprs {
		if err := r.resolveExpr(e); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) resolveExpr(e Expr) error {
	switch x := e.(type) {
	case *IntLit, *FloatLit, *StringLit, *CharLit, *BoolLit, *UnitLit:
		return nil
	case *Identifier:
		b, candidates, ok := r.lookup(x.Name)
		if !ok {
			return NewInferError(&UnboundIdentifierError{Name: x.Name, Pos: x.Loc.Pos()}, x)
		}
		x.Binding, x.Candidates = b, candidates
		return nil
	case *BinaryOp:
		if err := r.resolveExpr(x.Left); err != nil {
			return err
		}
		return r.resolveExpr(x.Right)
	case *UnaryOp:
		return r.resolveExpr(x.Operand)
	case *TupleLit:
		return r.resolveExprs(x.Elems)
	case *ArrayLit:
		return r.resolveExprs(x.Elems)
	case *Index:
		if err := r.resolveExpr(x.Receiver); err != nil {
			return err
		}
		return r.resolveExpr(x.Index)
	case *TupleIndex:
		return r.resolveExpr(x.Receiver)
	case *FieldAccess:
		return r.resolveExpr(x.Receiver)
	case *StructLit:
		for _, f := range x.Fields {
			if err := r.resolveExpr(f.Value); err != nil {
				return err
			}
		}
		return nil
	case *EnumConstruct:
		if !r.ctors[x.Name] {
			return NewInferError(&UnboundIdentifierError{Name: x.Name, Pos: x.Loc.Pos()}, x)
		}
		return r.resolveExprs(x.Args)
	case *FuncLit:
		return r.resolveFunc(x)
	case *Call:
		if err := r.resolveExpr(x.Fn); err != nil {
			return err
		}
		return r.resolveExprs(x.Args)
	case *MethodCall:
		if err := r.resolveExpr(x.Receiver); err != nil {
			return err
		}
		x.Candidates = r.methodCandidates(x.Method)
		return r.resolveExprs(x.Args)
	case *Block:
		r.push()
		defer r.pop()
		for _, stmt := range x.Stmts {
			if err := r.resolveStmt(stmt); err != nil {
				return err
			}
		}
		if x.Result != nil {
			return r.resolveExpr(x.Result)
		}
		return nil
	case *If:
		if err := r.resolveExpr(x.Cond); err != nil {
			return err
		}
		if err := r.resolveExpr(x.Then); err != nil {
			return err
		}
		if x.Else != nil {
			return r.resolveExpr(x.Else)
		}
		return nil
	case *While:
		if err := r.resolveExpr(x.Cond); err != nil {
			return err
		}
		r.loopDepth++
		defer func() { r.loopDepth-- }()
		return r.resolveExpr(x.Body)
	case *Break:
		if r.loopDepth == 0 {
			return NewInferError(&BreakOutsideLoopError{Keyword: "break"}, x)
		}
		return nil
	case *Continue:
		if r.loopDepth == 0 {
			return NewInferError(&BreakOutsideLoopError{Keyword: "continue"}, x)
		}
		return nil
	case *Return:
		if len(r.funcs) == 0 {
			return NewInferError(&ReturnOutsideFunctionError{}, x)
		}
		if x.Value != nil {
			return r.resolveExpr(x.Value)
		}
		return nil
	case *Match:
		if err := r.resolveExpr(x.Scrutinee); err != nil {
			return err
		}
		for _, arm := range x.Arms {
			var bound []*Binding
			if err := r.bindPattern(arm.Pattern, LocalBinding, false, nil, &bound); err != nil {
				return err
			}
			r.push()
			r.declare(bound...)
			err := r.resolveExpr(arm.Body)
			r.pop()
			if err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Errorf("unexpected expression %T", e)
	}
}

// methodCandidates lists the functions x.name(...) may call.
func (r *resolver) methodCandidates(name string) []*Binding {
	b, candidates, ok := r.lookup(name)
	switch {
	case !ok:
		return nil
	case candidates != nil:
		return candidates
	default:
		return []*Binding{b}
	}
}

func (r *resolver) resolveStmt(stmt Stmt) error {
	switch s := stmt.(type) {
	case *ExprStmt:
		return r.resolveExpr(s.Expr)
	case *Let:
		if err := r.resolveExpr(s.Value); err != nil {
			return err
		}
		var bound []*Binding
		if err := r.bindPattern(s.Pattern, LocalBinding, s.Mutable, nil, &bound); err != nil {
			return err
		}
		r.declare(bound...)
		return nil
	case *FuncDecl:
		s.Binding = r.newBinding(s.Name, LocalBinding, false, s.Loc)
		r.declare(s.Binding)
		return r.resolveFunc(s.Fn)
	case *Assign:
		if id, ok := s.Target.(*Identifier); ok {
			if err := r.resolveExpr(id); err != nil {
				return err
			}
			if id.Binding == nil || !id.Binding.Mutable {
				return NewInferError(&ImmutableAssignmentError{Name: id.Name}, s)
			}
		} else if err := r.resolveExpr(s.Target); err != nil {
			return err
		}
		return r.resolveExpr(s.Value)
	default:
		return errors.Errorf("unexpected statement %T", stmt)
	}
}

// bindPattern creates the bindings a pattern introduces, appending them to
// out. Alternatives of an or-pattern share one binding per name.
func (r *resolver) bindPattern(p Pattern, kind BindingKind, mutable bool, shared map[string]*Binding, out *[]*Binding) error {
	bind := func(name string, loc *SourceLocation) *Binding {
		if b, ok := shared[name]; ok {
			if !slices.Contains(*out, b) {
				*out = append(*out, b)
			}
			return b
		}
		b := r.newBinding(name, kind, mutable, loc)
		*out = append(*out, b)
		return b
	}
	switch x := p.(type) {
	case *WildcardPattern, *LiteralPattern:
		return nil
	case *BindPattern:
		x.Binding = bind(x.Name, x.Loc)
		return nil
	case *AsPattern:
		if err := r.bindPattern(x.Pattern, kind, mutable, shared, out); err != nil {
			return err
		}
		x.Binding = bind(x.Name, x.Loc)
		return nil
	case *CtorPattern:
		if !r.ctors[x.Name] {
			return NewInferError(&UnboundIdentifierError{Name: x.Name, Pos: x.Loc.Pos()}, x)
		}
		for _, arg := range x.Args {
			if err := r.bindPattern(arg, kind, mutable, shared, out); err != nil {
				return err
			}
		}
		return nil
	case *TuplePattern:
		for _, elem := range x.Elems {
			if err := r.bindPattern(elem, kind, mutable, shared, out); err != nil {
				return err
			}
		}
		return nil
	case *StructPattern:
		for _, f := range x.Fields {
			if err := r.bindPattern(f.Pattern, kind, mutable, shared, out); err != nil {
				return err
			}
		}
		return nil
	case *OrPattern:
		var first []*Binding
		if err := r.bindPattern(x.Alts[0], kind, mutable, shared, &first); err != nil {
			return err
		}
		names := map[string]*Binding{}
		for name, b := range shared {
			names[name] = b
		}
		for _, b := range first {
			names[b.Name] = b
		}
		bound := first
		for _, alt := range x.Alts[1:] {
			if err := r.bindPattern(alt, kind, mutable, names, &bound); err != nil {
				return err
			}
		}
		for _, b := range bound {
			if !slices.Contains(*out, b) {
				*out = append(*out, b)
			}
		}
		return nil
	default:
		return errors.Errorf("unexpected pattern %T", p)
	}
}
