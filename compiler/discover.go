package compiler

import (
	"fmt"
	"go/ast"
	"strconv"

	"github.com/drblury/errweaver/routes"
	"github.com/drblury/errweaver/source"
)

// httpMethodByName maps the net/http method constant names to their
// values, so registrations written as http.MethodGet discover without type
// information.
var httpMethodByName = map[string]string{
	"MethodGet":     "GET",
	"MethodHead":    "HEAD",
	"MethodPost":    "POST",
	"MethodPut":     "PUT",
	"MethodPatch":   "PATCH",
	"MethodDelete":  "DELETE",
	"MethodConnect": "CONNECT",
	"MethodOptions": "OPTIONS",
	"MethodTrace":   "TRACE",
}

// Discover statically extracts route descriptors from a registration
// routine. It recognizes two shapes with literal method and path arguments:
//
//	reg.Register(http.MethodGet, "/widgets", ListWidgets, routes.WithDeps(RequireAuth))
//	r.HandleFunc("/widgets", ListWidgets).Methods("GET")
//
// Handlers referenced through runtime-only values are skipped. A missing
// registration routine is a reference fault and returns an error.
func Discover(prog *source.Program, routine string) ([]routes.Descriptor, error) {
	fn, ok := prog.RoutineInRoots(routine)
	if !ok {
		return nil, fmt.Errorf("registration routine %q not found", routine)
	}
	if fn.Decl.Body == nil {
		return nil, fmt.Errorf("registration routine %q has no body", routine)
	}

	var descs []routes.Descriptor
	ast.Inspect(fn.Decl.Body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		if desc, ok := registerCall(call, fn, prog); ok {
			descs = append(descs, desc)
			return false
		}
		if desc, ok := handleFuncCall(call, fn, prog); ok {
			descs = append(descs, desc)
			return false
		}
		return true
	})
	return descs, nil
}

// registerCall matches reg.Register(method, path, handler, opts...).
func registerCall(call *ast.CallExpr, fn *source.Func, prog *source.Program) (routes.Descriptor, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Register" || len(call.Args) < 3 {
		return routes.Descriptor{}, false
	}

	method := methodString(call.Args[0], fn.File, prog)
	path := stringLit(call.Args[1])
	handler := qualifyRoutine(call.Args[2], fn, prog)
	if method == "" || path == "" || handler == "" {
		return routes.Descriptor{}, false
	}

	desc := routes.Descriptor{Method: method, Path: path, Handler: handler}
	for _, arg := range call.Args[3:] {
		opt, ok := arg.(*ast.CallExpr)
		if !ok || !isWithDeps(opt.Fun) {
			continue
		}
		for _, dep := range opt.Args {
			if name := qualifyRoutine(dep, fn, prog); name != "" {
				desc.Deps = append(desc.Deps, name)
			}
		}
	}
	return desc, true
}

// handleFuncCall matches r.HandleFunc(path, handler).Methods(method).
func handleFuncCall(call *ast.CallExpr, fn *source.Func, prog *source.Program) (routes.Descriptor, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Methods" || len(call.Args) == 0 {
		return routes.Descriptor{}, false
	}
	inner, ok := sel.X.(*ast.CallExpr)
	if !ok {
		return routes.Descriptor{}, false
	}
	innerSel, ok := inner.Fun.(*ast.SelectorExpr)
	if !ok || innerSel.Sel.Name != "HandleFunc" || len(inner.Args) < 2 {
		return routes.Descriptor{}, false
	}

	method := methodString(call.Args[0], fn.File, prog)
	path := stringLit(inner.Args[0])
	handler := qualifyRoutine(inner.Args[1], fn, prog)
	if method == "" || path == "" || handler == "" {
		return routes.Descriptor{}, false
	}
	return routes.Descriptor{Method: method, Path: path, Handler: handler}, true
}

func isWithDeps(fun ast.Expr) bool {
	switch f := fun.(type) {
	case *ast.Ident:
		return f.Name == "WithDeps"
	case *ast.SelectorExpr:
		return f.Sel.Name == "WithDeps"
	}
	return false
}

// qualifyRoutine resolves a handler reference to the qualified routine name
// the walker indexes: a bare identifier binds to the registration routine's
// package, a selector to its imported package.
func qualifyRoutine(expr ast.Expr, fn *source.Func, prog *source.Program) string {
	switch e := expr.(type) {
	case *ast.ParenExpr:
		return qualifyRoutine(e.X, fn, prog)
	case *ast.Ident:
		return fn.Pkg.Path + "." + e.Name
	case *ast.SelectorExpr:
		if base, ok := e.X.(*ast.Ident); ok {
			if impPath := prog.ImportPath(fn.File, base.Name); impPath != "" {
				return impPath + "." + e.Sel.Name
			}
		}
	}
	return ""
}

func methodString(expr ast.Expr, file *ast.File, prog *source.Program) string {
	if s := stringLit(expr); s != "" {
		return s
	}
	sel, ok := expr.(*ast.SelectorExpr)
	if !ok {
		return ""
	}
	base, ok := sel.X.(*ast.Ident)
	if !ok || prog.ImportPath(file, base.Name) != "net/http" {
		return ""
	}
	return httpMethodByName[sel.Sel.Name]
}

func stringLit(expr ast.Expr) string {
	lit, ok := expr.(*ast.BasicLit)
	if !ok {
		return ""
	}
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		return ""
	}
	return s
}
