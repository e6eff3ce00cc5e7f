package analyze

import (
	"go/ast"
	"go/token"
	"testing"

	"github.com/drblury/errweaver/source"
)

const resolveFixture = `package res

import (
	"net/http"

	"github.com/drblury/errweaver/apierror"
)

const (
	teapot   = http.StatusTeapot
	plusFour = 400 + 4
	chained  = plusFour
	greeting = "not " + "found"
)

type NotFound struct {
	Resource string
}

func (NotFound) Error() string   { return "resource not found" }
func (NotFound) StatusCode() int { return http.StatusNotFound }

type plain struct {
	Resource string
}

type carrier struct {
	Err *apierror.E
}

var fallback = apierror.New(http.StatusConflict, "conflict")
var formatted = apierror.Newf(http.StatusBadRequest, "bad %s", "input")
var notAnError = plain{Resource: "user"}
var typed = NotFound{Resource: "user"}
var box = carrier{Err: apierror.New(400, "bad")}
`

func resolverFixture(t *testing.T) (*Resolver, *source.Program, *ast.File) {
	t.Helper()
	prog := source.NewProgram()
	pkg, err := prog.ParsePackage("example.com/res", map[string]string{"res.go": resolveFixture})
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	r := NewResolver(prog, source.NewModuleFilter("example.com/res"), nil)
	return r, prog, pkg.Files[0]
}

func constExpr(t *testing.T, prog *source.Program, name string) (ast.Expr, *ast.File) {
	t.Helper()
	binding, ok := prog.Const("example.com/res", name)
	if !ok {
		t.Fatalf("fixture binding %q not indexed", name)
	}
	return binding.Expr, binding.File
}

func TestFoldIntArithmetic(t *testing.T) {
	r, prog, _ := resolverFixture(t)
	expr, file := constExpr(t, prog, "plusFour")

	got, ok := r.FoldInt(expr, file, nil)
	if !ok || got != 404 {
		t.Fatalf("FoldInt = %d, %v; want 404, true", got, ok)
	}
}

func TestFoldIntHTTPStatusName(t *testing.T) {
	r, prog, _ := resolverFixture(t)
	expr, file := constExpr(t, prog, "teapot")

	got, ok := r.FoldInt(expr, file, nil)
	if !ok || got != 418 {
		t.Fatalf("FoldInt = %d, %v; want 418, true", got, ok)
	}
}

func TestFoldIntThroughPackageConst(t *testing.T) {
	r, prog, _ := resolverFixture(t)
	expr, file := constExpr(t, prog, "chained")

	got, ok := r.FoldInt(expr, file, nil)
	if !ok || got != 404 {
		t.Fatalf("FoldInt = %d, %v; want 404, true", got, ok)
	}
}

func TestFoldIntThroughWalkBinding(t *testing.T) {
	r, _, file := resolverFixture(t)
	b := NewBindings()
	b.Record("code", &ast.BasicLit{Kind: token.INT, Value: "503"})

	got, ok := r.FoldInt(&ast.Ident{Name: "code"}, file, b)
	if !ok || got != 503 {
		t.Fatalf("FoldInt = %d, %v; want 503, true", got, ok)
	}
}

func TestFoldIntDepthBounded(t *testing.T) {
	r, _, file := resolverFixture(t)

	var expr ast.Expr = &ast.BasicLit{Kind: token.INT, Value: "200"}
	for i := 0; i < maxResolveDepth+1; i++ {
		expr = &ast.ParenExpr{X: expr}
	}
	if _, ok := r.FoldInt(expr, file, nil); ok {
		t.Fatal("expected folding to give up past the depth bound")
	}
}

func TestFoldStringConcatenation(t *testing.T) {
	r, prog, _ := resolverFixture(t)
	expr, file := constExpr(t, prog, "greeting")

	got, ok := r.FoldString(expr, file, nil)
	if !ok || got != "not found" {
		t.Fatalf("FoldString = %q, %v; want %q, true", got, ok, "not found")
	}
}

func TestFoldStringRejectsInt(t *testing.T) {
	r, prog, _ := resolverFixture(t)
	expr, file := constExpr(t, prog, "plusFour")

	if _, ok := r.FoldString(expr, file, nil); ok {
		t.Fatal("integer expression must not fold as a string")
	}
}

func TestFoldValueBool(t *testing.T) {
	r, _, file := resolverFixture(t)

	got, ok := r.FoldValue(&ast.Ident{Name: "true"}, file, nil)
	if !ok || got != true {
		t.Fatalf("FoldValue = %v, %v; want true, true", got, ok)
	}
}

func TestResolveConstructorThroughPackageBinding(t *testing.T) {
	r, _, file := resolverFixture(t)

	res := r.ResolveError(&ast.Ident{Name: "fallback"}, file, NewBindings())
	if res.Kind != Bound {
		t.Fatalf("expected bound resolution, got %v", res.Kind)
	}
	if res.Type == nil || !res.Type.Constructor() {
		t.Fatalf("expected constructor type, got %+v", res.Type)
	}
	if res.Call == nil {
		t.Fatal("expected the constructor call to be carried")
	}
}

func TestResolveFormattedConstructor(t *testing.T) {
	r, _, file := resolverFixture(t)

	res := r.ResolveError(&ast.Ident{Name: "formatted"}, file, nil)
	if res.Kind == Unresolved || res.Type == nil {
		t.Fatal("Newf raise did not resolve")
	}
	if !res.Type.Formatted {
		t.Fatal("Newf raise must be marked as formatted")
	}
}

func TestResolveDeclaredTypeFoldsDefaults(t *testing.T) {
	r, _, file := resolverFixture(t)

	res := r.ResolveError(&ast.Ident{Name: "typed"}, file, nil)
	if res.Kind != Bound || res.Type == nil {
		t.Fatalf("declared type did not resolve: %+v", res)
	}
	if res.Type.Name != "example.com/res.NotFound" {
		t.Fatalf("unexpected qualified name %q", res.Type.Name)
	}
	if res.Type.Status != 404 || res.Type.Detail != "resource not found" {
		t.Fatalf("declared defaults not folded: status=%d detail=%q", res.Type.Status, res.Type.Detail)
	}
	if res.Lit == nil {
		t.Fatal("expected the composite literal to be carried")
	}
}

func TestResolveRejectsUndeclaredType(t *testing.T) {
	r, _, file := resolverFixture(t)

	res := r.ResolveError(&ast.Ident{Name: "notAnError"}, file, nil)
	if res.Kind != Unresolved {
		t.Fatalf("type without StatusCode must stay unresolved, got %v", res.Kind)
	}
}

func TestResolveAttributeOnBinding(t *testing.T) {
	r, prog, file := resolverFixture(t)
	lit, _ := constExpr(t, prog, "box")

	b := NewBindings()
	b.Record("box", lit)
	sel := &ast.SelectorExpr{X: &ast.Ident{Name: "box"}, Sel: &ast.Ident{Name: "Err"}}

	res := r.ResolveError(sel, file, b)
	if res.Kind != Bound || res.Type == nil || !res.Type.Constructor() {
		t.Fatalf("field access did not resolve through the binding: %+v", res)
	}
}

func TestErrorTypeShortName(t *testing.T) {
	typ := &ErrorType{Name: "example.com/res.NotFound"}
	if got := typ.ShortName(); got != "NotFound" {
		t.Fatalf("ShortName = %q", got)
	}
}
