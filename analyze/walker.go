package analyze

import (
	"fmt"
	"go/ast"
	"go/token"
	"log/slog"

	"github.com/drblury/errweaver/source"
)

// RaiseSite records one panic of a typed API error: the routine whose walk
// observed it, the resolution of the panicked expression, and the source
// location. Immutable once recorded.
type RaiseSite struct {
	Routine source.RoutineID
	Type    Resolution
	Pos     token.Position
}

// Walker discovers the raise sites reachable from a routine, recursing into
// called routines inside the target modules and memoizing per-routine
// results in its cache.
type Walker struct {
	prog     *source.Program
	modules  *source.ModuleFilter
	cache    *Cache
	resolver *Resolver
	log      *slog.Logger
	observer func(source.RoutineID)
	litBusy  map[*ast.FuncLit]bool
}

// WalkerOption configures a Walker via the functional options pattern.
type WalkerOption func(*Walker)

// WithLogger injects the logger used for skipped-construct diagnostics.
func WithLogger(logger *slog.Logger) WalkerOption {
	return func(w *Walker) {
		if logger != nil {
			w.log = logger
		}
	}
}

// WithObserver registers a callback invoked once per routine body actually
// traversed; cache hits do not fire it.
func WithObserver(fn func(source.RoutineID)) WalkerOption {
	return func(w *Walker) {
		w.observer = fn
	}
}

// NewWalker builds a walker over the program. The cache must be fresh for
// each compile run; a nil module filter admits every indexed package.
func NewWalker(prog *source.Program, modules *source.ModuleFilter, cache *Cache, opts ...WalkerOption) *Walker {
	w := &Walker{
		prog:    prog,
		modules: modules,
		cache:   cache,
		log:     slog.Default(),
		litBusy: make(map[*ast.FuncLit]bool),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	w.resolver = NewResolver(prog, modules, w.log)
	return w
}

// Resolver exposes the walker's resolver so downstream schema resolution
// shares its type classification cache.
func (w *Walker) Resolver() *Resolver {
	return w.resolver
}

// WalkNamed resolves a qualified routine name and walks it. Unknown names
// contribute nothing.
func (w *Walker) WalkNamed(name string) []RaiseSite {
	fn, ok := w.prog.Routine(name)
	if !ok {
		w.log.Debug("routine not indexed", "routine", name)
		return nil
	}
	return w.Walk(fn.ID)
}

// Walk returns every raise site reachable from the routine. Results are
// memoized; a routine encountered while already in progress (a cycle)
// contributes nothing through that edge.
func (w *Walker) Walk(id source.RoutineID) []RaiseSite {
	if sites, ok := w.cache.Lookup(id); ok {
		return sites
	}
	if w.cache.InProgress(id) {
		return nil
	}
	fn := w.prog.RoutineByID(id)
	if fn == nil {
		return nil
	}

	w.cache.begin(id)
	if w.observer != nil {
		w.observer(id)
	}

	var sites []RaiseSite
	if fn.Decl.Body != nil {
		bindings := NewBindings()
		w.walkStmts(fn, fn.Decl.Body.List, bindings, &sites)
	}
	w.cache.finish(id, sites)
	return sites
}

func (w *Walker) walkStmts(fn *source.Func, list []ast.Stmt, b *Bindings, out *[]RaiseSite) {
	for _, stmt := range list {
		w.walkStmt(fn, stmt, b, out)
	}
}

func (w *Walker) walkStmt(fn *source.Func, stmt ast.Stmt, b *Bindings, out *[]RaiseSite) {
	switch s := stmt.(type) {
	case *ast.AssignStmt:
		for _, rhs := range s.Rhs {
			w.walkExpr(fn, rhs, b, out)
		}
		if len(s.Lhs) == len(s.Rhs) {
			for i, lhs := range s.Lhs {
				if ident, ok := lhs.(*ast.Ident); ok {
					b.Record(ident.Name, s.Rhs[i])
				}
			}
		}

	case *ast.DeclStmt:
		gen, ok := s.Decl.(*ast.GenDecl)
		if !ok || (gen.Tok != token.VAR && gen.Tok != token.CONST) {
			return
		}
		for _, spec := range gen.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for i, name := range vs.Names {
				if i >= len(vs.Values) {
					break
				}
				w.walkExpr(fn, vs.Values[i], b, out)
				b.Record(name.Name, vs.Values[i])
			}
		}

	case *ast.ExprStmt:
		w.walkExpr(fn, s.X, b, out)

	case *ast.BlockStmt:
		b.Push()
		w.walkStmts(fn, s.List, b, out)
		b.Pop()

	case *ast.IfStmt:
		b.Push()
		if s.Init != nil {
			w.walkStmt(fn, s.Init, b, out)
		}
		w.walkExpr(fn, s.Cond, b, out)
		w.walkStmt(fn, s.Body, b, out)
		if s.Else != nil {
			w.walkStmt(fn, s.Else, b, out)
		}
		b.Pop()

	case *ast.ForStmt:
		b.Push()
		if s.Init != nil {
			w.walkStmt(fn, s.Init, b, out)
		}
		if s.Cond != nil {
			w.walkExpr(fn, s.Cond, b, out)
		}
		if s.Post != nil {
			w.walkStmt(fn, s.Post, b, out)
		}
		w.walkStmt(fn, s.Body, b, out)
		b.Pop()

	case *ast.RangeStmt:
		b.Push()
		w.walkExpr(fn, s.X, b, out)
		w.walkStmt(fn, s.Body, b, out)
		b.Pop()

	case *ast.SwitchStmt:
		b.Push()
		if s.Init != nil {
			w.walkStmt(fn, s.Init, b, out)
		}
		if s.Tag != nil {
			w.walkExpr(fn, s.Tag, b, out)
		}
		w.walkStmt(fn, s.Body, b, out)
		b.Pop()

	case *ast.TypeSwitchStmt:
		b.Push()
		if s.Init != nil {
			w.walkStmt(fn, s.Init, b, out)
		}
		w.walkStmt(fn, s.Assign, b, out)
		w.walkStmt(fn, s.Body, b, out)
		b.Pop()

	case *ast.SelectStmt:
		w.walkStmt(fn, s.Body, b, out)

	case *ast.CaseClause:
		for _, expr := range s.List {
			w.walkExpr(fn, expr, b, out)
		}
		b.Push()
		w.walkStmts(fn, s.Body, b, out)
		b.Pop()

	case *ast.CommClause:
		if s.Comm != nil {
			w.walkStmt(fn, s.Comm, b, out)
		}
		b.Push()
		w.walkStmts(fn, s.Body, b, out)
		b.Pop()

	case *ast.ReturnStmt:
		for _, result := range s.Results {
			w.walkExpr(fn, result, b, out)
		}

	case *ast.DeferStmt:
		w.handleCall(fn, s.Call, b, out)

	case *ast.GoStmt:
		w.handleCall(fn, s.Call, b, out)

	case *ast.LabeledStmt:
		w.walkStmt(fn, s.Stmt, b, out)

	case *ast.SendStmt:
		w.walkExpr(fn, s.Value, b, out)

	case *ast.IncDecStmt, *ast.BranchStmt, *ast.EmptyStmt:
		// Nothing to discover.

	default:
		w.log.Debug("skipping unsupported construct",
			"routine", fn.Name,
			"construct", fmt.Sprintf("%T", stmt),
		)
	}
}

// walkExpr finds calls and function literals nested anywhere inside an
// expression tree.
func (w *Walker) walkExpr(fn *source.Func, expr ast.Expr, b *Bindings, out *[]RaiseSite) {
	if expr == nil {
		return
	}
	ast.Inspect(expr, func(n ast.Node) bool {
		switch e := n.(type) {
		case *ast.CallExpr:
			w.handleCall(fn, e, b, out)
			return false
		case *ast.FuncLit:
			// A literal's body runs only when something invokes it;
			// handleCall walks invoked literals.
			return false
		}
		return true
	})
}

func (w *Walker) handleCall(fn *source.Func, call *ast.CallExpr, b *Bindings, out *[]RaiseSite) {
	for _, arg := range call.Args {
		w.walkExpr(fn, arg, b, out)
	}

	if isPanic(call) {
		if len(call.Args) != 1 {
			return
		}
		res := w.resolver.ResolveError(call.Args[0], fn.File, b)
		if res.Kind == Unresolved {
			w.log.Debug("unresolved raise",
				"routine", fn.Name,
				"pos", w.prog.Position(call.Pos()).String(),
			)
		}
		*out = append(*out, RaiseSite{
			Routine: fn.ID,
			Type:    res,
			Pos:     w.prog.Position(call.Pos()),
		})
		return
	}

	if lit := w.invokedFuncLit(call.Fun, b); lit != nil {
		w.walkFuncLit(fn, lit, b, out)
		return
	}

	if callee := w.calleeRoutine(fn, call, b, 0); callee != nil {
		*out = append(*out, w.Walk(callee.ID)...)
	}
}

// invokedFuncLit resolves a call target to a function literal: written in
// place (deferred or immediately invoked) or reached through a walk binding.
func (w *Walker) invokedFuncLit(fun ast.Expr, b *Bindings) *ast.FuncLit {
	switch e := fun.(type) {
	case *ast.FuncLit:
		return e
	case *ast.ParenExpr:
		return w.invokedFuncLit(e.X, b)
	case *ast.Ident:
		if bound, ok := b.Resolve(e.Name); ok {
			if lit, ok := bound.(*ast.FuncLit); ok {
				return lit
			}
		}
	}
	return nil
}

// walkFuncLit walks an invoked literal's body in the enclosing routine's
// scope. A literal already on the walk path is skipped, cutting
// self-invoking closures.
func (w *Walker) walkFuncLit(fn *source.Func, lit *ast.FuncLit, b *Bindings, out *[]RaiseSite) {
	if w.litBusy[lit] {
		return
	}
	w.litBusy[lit] = true
	b.Push()
	w.walkStmts(fn, lit.Body.List, b, out)
	b.Pop()
	delete(w.litBusy, lit)
}

// calleeRoutine resolves a call target to an indexed routine inside the
// target modules, following bindings when the target is an indirect
// reference. Unknown shapes resolve to nil and the edge is skipped.
func (w *Walker) calleeRoutine(fn *source.Func, call *ast.CallExpr, b *Bindings, depth int) *source.Func {
	if depth > maxResolveDepth {
		return nil
	}

	switch target := call.Fun.(type) {
	case *ast.Ident:
		if target.Name == "panic" {
			return nil
		}
		if bound, ok := b.Resolve(target.Name); ok {
			return w.indirectRoutine(fn, bound, b, depth+1)
		}
		if !w.modules.Includes(fn.Pkg.Path) {
			return nil
		}
		if callee, ok := w.prog.Routine(fn.Pkg.Path + "." + target.Name); ok {
			return callee
		}

	case *ast.SelectorExpr:
		base, ok := target.X.(*ast.Ident)
		if !ok {
			return nil
		}
		if impPath := w.prog.ImportPath(fn.File, base.Name); impPath != "" {
			if !w.modules.Includes(impPath) {
				return nil
			}
			if callee, ok := w.prog.Routine(impPath + "." + target.Sel.Name); ok {
				return callee
			}
			return nil
		}
		typeName := w.receiverTypeName(fn, base.Name, b)
		if typeName == "" {
			return nil
		}
		decl, ok := w.prog.TypeNamed(typeName)
		if !ok || !w.modules.Includes(decl.Pkg.Path) {
			return nil
		}
		return decl.Methods[target.Sel.Name]
	}
	return nil
}

func (w *Walker) indirectRoutine(fn *source.Func, expr ast.Expr, b *Bindings, depth int) *source.Func {
	if depth > maxResolveDepth {
		return nil
	}
	switch e := expr.(type) {
	case *ast.Ident:
		if w.modules.Includes(fn.Pkg.Path) {
			if callee, ok := w.prog.Routine(fn.Pkg.Path + "." + e.Name); ok {
				return callee
			}
		}
	case *ast.SelectorExpr:
		if base, ok := e.X.(*ast.Ident); ok {
			if impPath := w.prog.ImportPath(fn.File, base.Name); impPath != "" && w.modules.Includes(impPath) {
				if callee, ok := w.prog.Routine(impPath + "." + e.Sel.Name); ok {
					return callee
				}
			}
		}
	}
	return nil
}

// receiverTypeName determines the qualified type of a method-call receiver
// identifier: from the walk's bindings when it was assigned a composite
// literal, otherwise from the enclosing routine's parameter or receiver
// declarations.
func (w *Walker) receiverTypeName(fn *source.Func, name string, b *Bindings) string {
	if bound, ok := b.Resolve(name); ok {
		expr := bound
		if unary, ok := expr.(*ast.UnaryExpr); ok && unary.Op == token.AND {
			expr = unary.X
		}
		if lit, ok := expr.(*ast.CompositeLit); ok {
			return w.resolver.qualifiedTypeName(lit.Type, fn.File)
		}
		return ""
	}

	fields := []*ast.FieldList{fn.Decl.Recv, fn.Decl.Type.Params}
	for _, list := range fields {
		if list == nil {
			continue
		}
		for _, field := range list.List {
			for _, ident := range field.Names {
				if ident.Name == name {
					return w.resolver.qualifiedTypeName(field.Type, fn.File)
				}
			}
		}
	}
	return ""
}

func isPanic(call *ast.CallExpr) bool {
	ident, ok := call.Fun.(*ast.Ident)
	return ok && ident.Name == "panic"
}
