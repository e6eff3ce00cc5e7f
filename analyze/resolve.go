package analyze

import (
	"go/ast"
	"go/token"
	"log/slog"
	"strconv"
	"strings"

	"github.com/drblury/errweaver/source"
)

// apierrorPath is the import path of the error protocol package. Raises of
// its constructors are recognized regardless of the module filter.
const apierrorPath = "github.com/drblury/errweaver/apierror"

// maxResolveDepth bounds reference chasing and constant folding. Chains
// deeper than this yield Unresolved, which keeps pathological inputs from
// costing unbounded work.
const maxResolveDepth = 32

// ResolutionKind tags the terminal outcome of resolving a reference.
type ResolutionKind int

const (
	// Unresolved means no concrete error type could be determined; the
	// raise site is dropped from the catalogue.
	Unresolved ResolutionKind = iota
	// Literal means the raise expression referenced the error type
	// directly.
	Literal
	// Bound means the error type was reached through one or more variable
	// or package-level bindings.
	Bound
)

// Resolution is the outcome of resolving a raise expression. For resolved
// outcomes exactly one of Call (constructor raise) or Lit (composite
// literal raise) is set, along with the file providing the import table for
// its argument expressions.
type Resolution struct {
	Kind ResolutionKind
	Type *ErrorType
	Call *ast.CallExpr
	Lit  *ast.CompositeLit
	File *ast.File
}

// ErrorType is a resolved error-type identity with its statically declared
// defaults.
type ErrorType struct {
	Name           string // qualified type name, or apierror.New/Newf
	Formatted      bool   // constructor detail built from a format string
	Decl           *source.Type
	Status         int    // declared default status; 0 when unknown
	Detail         string // declared default detail; "" when unknown
	SelfDescribing bool
}

// Constructor reports whether the raise used the apierror constructors
// rather than a declared type.
func (t *ErrorType) Constructor() bool {
	return t.Decl == nil
}

// ShortName returns the unqualified type name.
func (t *ErrorType) ShortName() string {
	if i := strings.LastIndex(t.Name, "."); i >= 0 {
		return t.Name[i+1:]
	}
	return t.Name
}

// Resolver turns reference expressions into concrete error-type identities
// and folds compile-time constant expressions. It never executes analyzed
// code.
type Resolver struct {
	prog    *source.Program
	modules *source.ModuleFilter
	log     *slog.Logger
	types   map[*source.Type]*ErrorType
}

// NewResolver builds a resolver over the given program. A nil module filter
// admits every indexed package.
func NewResolver(prog *source.Program, modules *source.ModuleFilter, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		prog:    prog,
		modules: modules,
		log:     logger,
		types:   map[*source.Type]*ErrorType{},
	}
}

// ResolveError resolves a raise expression to an error type. Attempts, in
// order: a direct literal reference, the walk's bindings, and package-level
// bindings folded statically. Anything else is Unresolved.
func (r *Resolver) ResolveError(expr ast.Expr, file *ast.File, b *Bindings) Resolution {
	return r.resolveError(expr, file, b, 0, false)
}

func (r *Resolver) resolveError(expr ast.Expr, file *ast.File, b *Bindings, depth int, bound bool) Resolution {
	if depth > maxResolveDepth {
		return Resolution{}
	}
	kind := Literal
	if bound {
		kind = Bound
	}

	switch e := expr.(type) {
	case *ast.ParenExpr:
		return r.resolveError(e.X, file, b, depth+1, bound)

	case *ast.UnaryExpr:
		if e.Op == token.AND {
			return r.resolveError(e.X, file, b, depth+1, bound)
		}

	case *ast.CallExpr:
		if t := r.constructorType(e, file); t != nil {
			return Resolution{Kind: kind, Type: t, Call: e, File: file}
		}

	case *ast.CompositeLit:
		name := r.qualifiedTypeName(e.Type, file)
		if name == "" {
			return Resolution{}
		}
		decl, ok := r.prog.TypeNamed(name)
		if !ok {
			return Resolution{}
		}
		if t := r.errorTypeFor(decl); t != nil {
			return Resolution{Kind: kind, Type: t, Lit: e, File: file}
		}

	case *ast.Ident:
		if b != nil {
			if target, ok := b.Resolve(e.Name); ok {
				return r.resolveError(target, file, b, depth+1, true)
			}
		}
		if pkg := r.prog.PackageOf(file); pkg != nil {
			if binding, ok := r.prog.Const(pkg.Path, e.Name); ok {
				return r.resolveError(binding.Expr, binding.File, nil, depth+1, true)
			}
		}

	case *ast.SelectorExpr:
		base, ok := e.X.(*ast.Ident)
		if !ok {
			return Resolution{}
		}
		if impPath := r.prog.ImportPath(file, base.Name); impPath != "" {
			if !r.modules.Includes(impPath) {
				return Resolution{}
			}
			if binding, ok := r.prog.Const(impPath, e.Sel.Name); ok {
				return r.resolveError(binding.Expr, binding.File, nil, depth+1, true)
			}
			return Resolution{}
		}
		// Attribute on a local binding: resolve the base, then look up the
		// member as a keyed field when the base resolved to a composite
		// literal with a statically known shape.
		if b != nil {
			if target, ok := b.Resolve(base.Name); ok {
				if lit, ok := target.(*ast.CompositeLit); ok {
					if field := keyedElement(lit, e.Sel.Name); field != nil {
						return r.resolveError(field, file, b, depth+1, true)
					}
				}
			}
		}
	}

	return Resolution{}
}

func (r *Resolver) constructorType(call *ast.CallExpr, file *ast.File) *ErrorType {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return nil
	}
	base, ok := sel.X.(*ast.Ident)
	if !ok || r.prog.ImportPath(file, base.Name) != apierrorPath {
		return nil
	}
	switch sel.Sel.Name {
	case "New":
		return &ErrorType{Name: "apierror.New"}
	case "Newf":
		return &ErrorType{Name: "apierror.Newf", Formatted: true}
	}
	return nil
}

// errorTypeFor classifies a declared type. A named type qualifies as an
// error type when it has a StatusCode() int method or a self-describing
// ResponseSchema() method. Results are cached for the resolver's lifetime.
func (r *Resolver) errorTypeFor(decl *source.Type) *ErrorType {
	if t, ok := r.types[decl]; ok {
		return t
	}

	_, hasStatus := decl.Methods["StatusCode"]
	_, selfDescribing := decl.Methods["ResponseSchema"]
	if !hasStatus && !selfDescribing {
		r.types[decl] = nil
		return nil
	}

	t := &ErrorType{
		Name:           decl.Name,
		Decl:           decl,
		SelfDescribing: selfDescribing,
	}
	if m, ok := decl.Methods["StatusCode"]; ok {
		if status, ok := r.foldMethodInt(m); ok {
			t.Status = status
		}
	}
	if m, ok := decl.Methods["Error"]; ok {
		if detail, ok := r.foldMethodString(m); ok {
			t.Detail = detail
		}
	}
	r.types[decl] = t
	return t
}

// qualifiedTypeName resolves a type expression to its qualified name using
// the file's import table; "" for shapes it does not model.
func (r *Resolver) qualifiedTypeName(expr ast.Expr, file *ast.File) string {
	switch e := expr.(type) {
	case *ast.Ident:
		if pkg := r.prog.PackageOf(file); pkg != nil {
			return pkg.Path + "." + e.Name
		}
	case *ast.StarExpr:
		return r.qualifiedTypeName(e.X, file)
	case *ast.SelectorExpr:
		if base, ok := e.X.(*ast.Ident); ok {
			if impPath := r.prog.ImportPath(file, base.Name); impPath != "" {
				return impPath + "." + e.Sel.Name
			}
		}
	}
	return ""
}

func (r *Resolver) foldMethodInt(fn *source.Func) (int, bool) {
	expr := singleReturnExpr(fn.Decl)
	if expr == nil {
		return 0, false
	}
	return r.FoldInt(expr, fn.File, nil)
}

func (r *Resolver) foldMethodString(fn *source.Func) (string, bool) {
	expr := singleReturnExpr(fn.Decl)
	if expr == nil {
		return "", false
	}
	return r.FoldString(expr, fn.File, nil)
}

func singleReturnExpr(decl *ast.FuncDecl) ast.Expr {
	if decl == nil || decl.Body == nil {
		return nil
	}
	var result ast.Expr
	ast.Inspect(decl.Body, func(n ast.Node) bool {
		if result != nil {
			return false
		}
		if ret, ok := n.(*ast.ReturnStmt); ok && len(ret.Results) == 1 {
			result = ret.Results[0]
			return false
		}
		return true
	})
	return result
}

// FoldInt evaluates an integer-valued expression using only information
// available at analysis time: literals, + and - arithmetic, net/http status
// names, the walk's bindings, and package-level bindings.
func (r *Resolver) FoldInt(expr ast.Expr, file *ast.File, b *Bindings) (int, bool) {
	return r.foldInt(expr, file, b, 0)
}

func (r *Resolver) foldInt(expr ast.Expr, file *ast.File, b *Bindings, depth int) (int, bool) {
	if depth > maxResolveDepth {
		return 0, false
	}
	switch e := expr.(type) {
	case *ast.BasicLit:
		if e.Kind != token.INT {
			return 0, false
		}
		n, err := strconv.Atoi(e.Value)
		if err != nil {
			return 0, false
		}
		return n, true

	case *ast.ParenExpr:
		return r.foldInt(e.X, file, b, depth+1)

	case *ast.BinaryExpr:
		left, ok := r.foldInt(e.X, file, b, depth+1)
		if !ok {
			return 0, false
		}
		right, ok := r.foldInt(e.Y, file, b, depth+1)
		if !ok {
			return 0, false
		}
		switch e.Op {
		case token.ADD:
			return left + right, true
		case token.SUB:
			return left - right, true
		}
		return 0, false

	case *ast.Ident:
		if b != nil {
			if target, ok := b.Resolve(e.Name); ok {
				return r.foldInt(target, file, b, depth+1)
			}
		}
		if pkg := r.prog.PackageOf(file); pkg != nil {
			if binding, ok := r.prog.Const(pkg.Path, e.Name); ok {
				return r.foldInt(binding.Expr, binding.File, nil, depth+1)
			}
		}

	case *ast.SelectorExpr:
		base, ok := e.X.(*ast.Ident)
		if !ok {
			return 0, false
		}
		impPath := r.prog.ImportPath(file, base.Name)
		if impPath == "net/http" {
			status, ok := httpStatusByName[e.Sel.Name]
			return status, ok
		}
		if impPath != "" {
			if binding, ok := r.prog.Const(impPath, e.Sel.Name); ok {
				return r.foldInt(binding.Expr, binding.File, nil, depth+1)
			}
		}
	}
	return 0, false
}

// FoldString evaluates a string-valued expression; literals, concatenation,
// and bindings only.
func (r *Resolver) FoldString(expr ast.Expr, file *ast.File, b *Bindings) (string, bool) {
	return r.foldString(expr, file, b, 0)
}

func (r *Resolver) foldString(expr ast.Expr, file *ast.File, b *Bindings, depth int) (string, bool) {
	if depth > maxResolveDepth {
		return "", false
	}
	switch e := expr.(type) {
	case *ast.BasicLit:
		if e.Kind != token.STRING {
			return "", false
		}
		s, err := strconv.Unquote(e.Value)
		if err != nil {
			return "", false
		}
		return s, true

	case *ast.ParenExpr:
		return r.foldString(e.X, file, b, depth+1)

	case *ast.BinaryExpr:
		if e.Op != token.ADD {
			return "", false
		}
		left, ok := r.foldString(e.X, file, b, depth+1)
		if !ok {
			return "", false
		}
		right, ok := r.foldString(e.Y, file, b, depth+1)
		if !ok {
			return "", false
		}
		return left + right, true

	case *ast.Ident:
		if b != nil {
			if target, ok := b.Resolve(e.Name); ok {
				return r.foldString(target, file, b, depth+1)
			}
		}
		if pkg := r.prog.PackageOf(file); pkg != nil {
			if binding, ok := r.prog.Const(pkg.Path, e.Name); ok {
				return r.foldString(binding.Expr, binding.File, nil, depth+1)
			}
		}

	case *ast.SelectorExpr:
		base, ok := e.X.(*ast.Ident)
		if !ok {
			return "", false
		}
		if impPath := r.prog.ImportPath(file, base.Name); impPath != "" {
			if binding, ok := r.prog.Const(impPath, e.Sel.Name); ok {
				return r.foldString(binding.Expr, binding.File, nil, depth+1)
			}
		}
	}
	return "", false
}

// FoldValue folds an expression to a literal value suitable for embedding
// in a schema: string, int, float, or bool.
func (r *Resolver) FoldValue(expr ast.Expr, file *ast.File, b *Bindings) (any, bool) {
	if s, ok := r.FoldString(expr, file, b); ok {
		return s, true
	}
	if n, ok := r.FoldInt(expr, file, b); ok {
		return n, true
	}
	switch e := expr.(type) {
	case *ast.BasicLit:
		if e.Kind == token.FLOAT {
			if f, err := strconv.ParseFloat(e.Value, 64); err == nil {
				return f, true
			}
		}
	case *ast.Ident:
		switch e.Name {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return nil, false
}

func keyedElement(lit *ast.CompositeLit, name string) ast.Expr {
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		if key, ok := kv.Key.(*ast.Ident); ok && key.Name == name {
			return kv.Value
		}
	}
	return nil
}
