package source

import (
	"fmt"
	"log/slog"

	"golang.org/x/tools/go/packages"
)

// Load builds a Program from the packages matched by the given patterns,
// including their transitive dependencies so that raises buried in helper
// packages stay reachable. Packages that fail to load are skipped with a
// debug log; only a total load failure is an error.
func Load(dir string, patterns ...string) (*Program, error) {
	return LoadWithLogger(slog.Default(), dir, patterns...)
}

// LoadWithLogger is Load with an explicit logger for skipped packages.
func LoadWithLogger(logger *slog.Logger, dir string, patterns ...string) (*Program, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	prog := NewProgram()

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedImports | packages.NeedDeps,
		Dir:  dir,
		Fset: prog.Fset,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages %v: %w", patterns, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("load packages %v: no packages matched", patterns)
	}

	loaded := 0
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		if pkg == nil || pkg.PkgPath == "" {
			return
		}
		if len(pkg.Errors) > 0 {
			logger.Debug("skipping package with load errors",
				"package", pkg.PkgPath,
				"errors", len(pkg.Errors),
			)
			return
		}
		if len(pkg.Syntax) == 0 {
			return
		}
		prog.AddPackage(pkg.PkgPath, pkg.Name, pkg.Syntax)
		loaded++
	})
	if loaded == 0 {
		return nil, fmt.Errorf("load packages %v: every matched package failed to load", patterns)
	}

	for _, pkg := range pkgs {
		if indexed, ok := prog.Package(pkg.PkgPath); ok {
			prog.roots = append(prog.roots, indexed)
		}
	}
	return prog, nil
}
