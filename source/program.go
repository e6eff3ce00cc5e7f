package source

import (
	"go/ast"
	"go/parser"
	"go/token"
	"path"
	"strings"
)

// Package is one indexed package of the analyzed program.
type Package struct {
	Path  string
	Name  string
	Files []*ast.File

	// Consts maps package-level const and var names to their value
	// expressions. These are the module top-level bindings the resolver may
	// fold when a raise-site reference is otherwise unresolved.
	Consts map[string]ConstBinding
}

// ConstBinding is a package-level value expression together with the file
// that declares it, so import aliases inside the expression stay
// resolvable.
type ConstBinding struct {
	Expr ast.Expr
	File *ast.File
}

// Func is an indexed routine: a top-level function or a method.
type Func struct {
	ID   RoutineID
	Name string // qualified: pkgpath.Func or pkgpath.Recv.Method
	Pkg  *Package
	Decl *ast.FuncDecl
	File *ast.File
}

// Type is an indexed named type declaration with its method set.
type Type struct {
	Name    string // qualified: pkgpath.Name
	Pkg     *Package
	Spec    *ast.TypeSpec
	File    *ast.File
	Methods map[string]*Func
}

// Program is a read-only index over the analyzed packages.
type Program struct {
	Fset *token.FileSet

	pkgs    map[string]*Package
	roots   []*Package
	funcs   map[string]*Func
	types   map[string]*Type
	arena   []*Func
	imports map[*ast.File]map[string]string
	filePkg map[*ast.File]*Package
}

// NewProgram returns an empty program index with a fresh file set.
func NewProgram() *Program {
	return &Program{
		Fset:    token.NewFileSet(),
		pkgs:    map[string]*Package{},
		funcs:   map[string]*Func{},
		types:   map[string]*Type{},
		imports: map[*ast.File]map[string]string{},
		filePkg: map[*ast.File]*Package{},
	}
}

// AddPackage indexes the provided files under the given import path. Files
// must have been parsed against the program's file set. Re-adding an
// already-indexed path is a no-op.
func (p *Program) AddPackage(pkgPath, name string, files []*ast.File) *Package {
	if existing, ok := p.pkgs[pkgPath]; ok {
		return existing
	}

	pkg := &Package{
		Path:   pkgPath,
		Name:   name,
		Files:  files,
		Consts: map[string]ConstBinding{},
	}
	p.pkgs[pkgPath] = pkg

	for _, file := range files {
		if file == nil {
			continue
		}
		p.filePkg[file] = pkg
		p.indexImports(file)
		p.indexDecls(pkg, file)
	}
	p.bindMethods(pkg)
	return pkg
}

// ParsePackage parses the provided file sources and indexes them as one
// package. Intended for tests and in-memory overlays; filenames are only
// used for positions.
func (p *Program) ParsePackage(pkgPath string, srcs map[string]string) (*Package, error) {
	var files []*ast.File
	name := ""
	for filename, src := range srcs {
		file, err := parser.ParseFile(p.Fset, filename, src, parser.ParseComments)
		if err != nil {
			return nil, err
		}
		if name == "" && file.Name != nil {
			name = file.Name.Name
		}
		files = append(files, file)
	}
	return p.AddPackage(pkgPath, name, files), nil
}

// Package returns the indexed package for an import path.
func (p *Program) Package(pkgPath string) (*Package, bool) {
	pkg, ok := p.pkgs[pkgPath]
	return pkg, ok
}

// PackageOf reports which indexed package a file belongs to.
func (p *Program) PackageOf(file *ast.File) *Package {
	return p.filePkg[file]
}

// Roots lists the packages matched directly by the load patterns, in load
// order. Empty for programs assembled via AddPackage.
func (p *Program) Roots() []*Package {
	return p.roots
}

// Routine returns the routine with the given qualified name.
func (p *Program) Routine(name string) (*Func, bool) {
	fn, ok := p.funcs[name]
	return fn, ok
}

// RoutineInRoots resolves a bare routine name against the root packages.
// Returns NoRoutine when the name is absent or ambiguous across roots.
func (p *Program) RoutineInRoots(name string) (*Func, bool) {
	if strings.Contains(name, ".") {
		fn, ok := p.funcs[name]
		return fn, ok
	}
	var found *Func
	for _, pkg := range p.roots {
		if fn, ok := p.funcs[pkg.Path+"."+name]; ok {
			if found != nil {
				return nil, false
			}
			found = fn
		}
	}
	return found, found != nil
}

// TypeNamed returns the type declaration with the given qualified name.
func (p *Program) TypeNamed(name string) (*Type, bool) {
	t, ok := p.types[name]
	return t, ok
}

// Const returns the package-level binding for name in the given package.
func (p *Program) Const(pkgPath, name string) (ConstBinding, bool) {
	pkg, ok := p.pkgs[pkgPath]
	if !ok {
		return ConstBinding{}, false
	}
	binding, ok := pkg.Consts[name]
	return binding, ok
}

// ImportPath resolves an import alias used in the given file to the
// imported package path, or "" if the alias is unknown.
func (p *Program) ImportPath(file *ast.File, alias string) string {
	return p.imports[file][alias]
}

// Position renders the source position of a node.
func (p *Program) Position(pos token.Pos) token.Position {
	return p.Fset.Position(pos)
}

func (p *Program) indexImports(file *ast.File) {
	table := map[string]string{}
	for _, spec := range file.Imports {
		if spec.Path == nil {
			continue
		}
		impPath := strings.Trim(spec.Path.Value, `"`)
		alias := path.Base(impPath)
		if spec.Name != nil {
			alias = spec.Name.Name
		}
		if alias == "_" || alias == "." {
			continue
		}
		table[alias] = impPath
	}
	p.imports[file] = table
}

func (p *Program) indexDecls(pkg *Package, file *ast.File) {
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			p.indexFunc(pkg, file, d)
		case *ast.GenDecl:
			p.indexGenDecl(pkg, file, d)
		}
	}
}

func (p *Program) indexFunc(pkg *Package, file *ast.File, decl *ast.FuncDecl) {
	if decl.Name == nil {
		return
	}
	name := pkg.Path + "." + decl.Name.Name
	if recv := receiverTypeName(decl); recv != "" {
		name = pkg.Path + "." + recv + "." + decl.Name.Name
	}
	if _, ok := p.funcs[name]; ok {
		return
	}
	fn := &Func{Name: name, Pkg: pkg, Decl: decl, File: file}
	p.intern(fn)
	p.funcs[name] = fn
}

func (p *Program) indexGenDecl(pkg *Package, file *ast.File, decl *ast.GenDecl) {
	switch decl.Tok {
	case token.TYPE:
		for _, spec := range decl.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok || ts.Name == nil {
				continue
			}
			name := pkg.Path + "." + ts.Name.Name
			if _, exists := p.types[name]; exists {
				continue
			}
			p.types[name] = &Type{
				Name:    name,
				Pkg:     pkg,
				Spec:    ts,
				File:    file,
				Methods: map[string]*Func{},
			}
		}
	case token.CONST, token.VAR:
		for _, spec := range decl.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for i, ident := range vs.Names {
				if ident == nil || ident.Name == "_" || i >= len(vs.Values) {
					continue
				}
				if _, exists := pkg.Consts[ident.Name]; !exists {
					pkg.Consts[ident.Name] = ConstBinding{Expr: vs.Values[i], File: file}
				}
			}
		}
	}
}

func (p *Program) bindMethods(pkg *Package) {
	for _, fn := range p.funcs {
		if fn.Pkg != pkg {
			continue
		}
		recv := receiverTypeName(fn.Decl)
		if recv == "" {
			continue
		}
		if t, ok := p.types[pkg.Path+"."+recv]; ok {
			t.Methods[fn.Decl.Name.Name] = fn
		}
	}
}

func receiverTypeName(decl *ast.FuncDecl) string {
	if decl.Recv == nil || len(decl.Recv.List) == 0 {
		return ""
	}
	return BaseTypeName(decl.Recv.List[0].Type)
}

// BaseTypeName strips pointers and generics from a type expression and
// returns the trailing identifier, or "" for shapes it does not model.
func BaseTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return BaseTypeName(t.X)
	case *ast.SelectorExpr:
		if t.Sel != nil {
			return t.Sel.Name
		}
	case *ast.IndexExpr:
		return BaseTypeName(t.X)
	case *ast.IndexListExpr:
		return BaseTypeName(t.X)
	}
	return ""
}
