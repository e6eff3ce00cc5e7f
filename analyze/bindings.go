package analyze

import "go/ast"

// Bindings tracks the most recent expression assigned to each local name
// during one routine walk. Last assignment wins; there is no SSA
// versioning. A Bindings value belongs to exactly one walk and is discarded
// with it, never shared across routines.
type Bindings struct {
	scopes []map[string]ast.Expr
}

// NewBindings returns a tracker with a single routine-level scope.
func NewBindings() *Bindings {
	return &Bindings{scopes: []map[string]ast.Expr{{}}}
}

// Push opens a nested scope.
func (b *Bindings) Push() {
	b.scopes = append(b.scopes, map[string]ast.Expr{})
}

// Pop discards the innermost scope. The routine-level scope is never
// popped.
func (b *Bindings) Pop() {
	if len(b.scopes) > 1 {
		b.scopes = b.scopes[:len(b.scopes)-1]
	}
}

// Record stores the binding in the innermost scope, overwriting any prior
// binding of the same name there.
func (b *Bindings) Record(name string, expr ast.Expr) {
	if name == "" || name == "_" || expr == nil {
		return
	}
	b.scopes[len(b.scopes)-1][name] = expr
}

// Resolve returns the expression bound to name in the innermost enclosing
// scope that has one.
func (b *Bindings) Resolve(name string) (ast.Expr, bool) {
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if expr, ok := b.scopes[i][name]; ok {
			return expr, true
		}
	}
	return nil, false
}
