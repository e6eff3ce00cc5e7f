package source

import "strings"

// ModuleFilter decides which packages the walker is allowed to enter. It
// matches import-path prefixes, so one entry covers a module and all of its
// subpackages. A nil filter admits every indexed package, which is the
// default for in-process analysis of a fully loaded program.
type ModuleFilter struct {
	prefixes []string
}

// NewModuleFilter builds a filter from import-path prefixes. Empty entries
// are dropped.
func NewModuleFilter(prefixes ...string) *ModuleFilter {
	cleaned := make([]string, 0, len(prefixes))
	for _, prefix := range prefixes {
		prefix = strings.TrimSuffix(strings.TrimSpace(prefix), "/")
		if prefix != "" {
			cleaned = append(cleaned, prefix)
		}
	}
	return &ModuleFilter{prefixes: cleaned}
}

// Includes reports whether the package path falls under any configured
// prefix. The main package is always included so that entry points are
// never filtered out of their own analysis.
func (f *ModuleFilter) Includes(pkgPath string) bool {
	if f == nil {
		return true
	}
	if pkgPath == "main" {
		return true
	}
	for _, prefix := range f.prefixes {
		if pkgPath == prefix || strings.HasPrefix(pkgPath, prefix+"/") {
			return true
		}
	}
	return false
}
