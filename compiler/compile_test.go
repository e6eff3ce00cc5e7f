package compiler

import (
	"net/http"
	"testing"

	"github.com/drblury/errweaver/routes"
	"github.com/drblury/errweaver/source"
)

const appFixture = `package app

import (
	"net/http"

	"github.com/drblury/errweaver/apierror"
	"github.com/drblury/errweaver/routes"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gorilla/mux"
)

type InsufficientStock struct {
	Sku  string "json:\"sku\""
	Want int
}

func (InsufficientStock) Error() string   { return "insufficient stock" }
func (InsufficientStock) StatusCode() int { return http.StatusConflict }

type RateLimited struct{}

func (RateLimited) Error() string   { return "rate limited" }
func (RateLimited) StatusCode() int { return http.StatusTooManyRequests }

type Maintenance struct{}

func (Maintenance) Error() string   { return "maintenance window" }
func (Maintenance) StatusCode() int { return http.StatusServiceUnavailable }

func (Maintenance) ResponseSchema() apierror.Schema {
	return apierror.Schema{
		Name:        "MaintenanceSchema",
		Description: "service is down for maintenance",
		Status:      http.StatusServiceUnavailable,
		Body: openapi3.NewObjectSchema().
			WithProperty("until", openapi3.NewStringSchema().WithFormat("date-time")),
	}
}

type Unspeakable struct{}

func (Unspeakable) Error() string   { return "unspeakable" }
func (Unspeakable) StatusCode() int { return http.StatusTeapot }

func (Unspeakable) ResponseSchema() apierror.Schema { return buildSchema() }

func buildSchema() apierror.Schema { return apierror.Schema{} }

func GetWidget(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("id") == "" {
		panic(apierror.New(http.StatusBadRequest, "missing id"))
	}
	panic(InsufficientStock{Sku: "W-1", Want: 2})
}

func ListWidgets(w http.ResponseWriter, r *http.Request) {
	panic(apierror.New(http.StatusBadRequest, "other message"))
}

func ValidateQuery(r *http.Request) {
	panic(apierror.New(http.StatusBadRequest, "bad query"))
}

func RequireAuth(r *http.Request) {
	panic(apierror.New(http.StatusUnauthorized, "missing token"))
}

func Throttle(r *http.Request) {
	panic(RateLimited{})
}

func StatusPage(w http.ResponseWriter, r *http.Request) {
	panic(Maintenance{})
}

func Weird(w http.ResponseWriter, r *http.Request) {
	panic(Unspeakable{})
}

func RegisterRoutes(reg *routes.Registry) {
	reg.Register(http.MethodGet, "/widgets/{id}", GetWidget, routes.WithDeps(RequireAuth, Throttle))
	reg.Register(http.MethodGet, "/widgets", ListWidgets, routes.WithDeps(RequireAuth))
	reg.Register(http.MethodGet, "/status", StatusPage)
}

func RegisterMux(r *mux.Router) {
	r.HandleFunc("/health", StatusPage).Methods("GET")
}
`

const appPath = "example.com/app"

func appProgram(t *testing.T) *source.Program {
	t.Helper()
	prog := source.NewProgram()
	if _, err := prog.ParsePackage(appPath, map[string]string{"app.go": appFixture}); err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return prog
}

func appCompiler(t *testing.T, opts ...Option) *Compiler {
	t.Helper()
	prog := appProgram(t)
	opts = append([]Option{WithModules(source.NewModuleFilter(appPath))}, opts...)
	return New(prog, opts...)
}

func widgetDescriptor() routes.Descriptor {
	return routes.Descriptor{
		Method:  http.MethodGet,
		Path:    "/widgets/{id}",
		Handler: appPath + ".GetWidget",
		Deps:    []string{appPath + ".RequireAuth", appPath + ".Throttle"},
	}
}

func TestCompileCataloguesHandlerAndDeps(t *testing.T) {
	c := appCompiler(t)

	catalogue := c.Compile([]routes.Descriptor{widgetDescriptor()})
	shapes := catalogue[routes.Key{Method: "GET", Path: "/widgets/{id}"}]

	var statuses []int
	for _, s := range shapes {
		statuses = append(statuses, s.Status)
	}
	want := []int{400, 409, 401, 429}
	if len(statuses) != len(want) {
		t.Fatalf("unexpected statuses %v, want %v", statuses, want)
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Fatalf("unexpected statuses %v, want %v", statuses, want)
		}
	}
}

func TestCompileDedupsByStatusHandlerWins(t *testing.T) {
	c := appCompiler(t)

	desc := routes.Descriptor{
		Method:  http.MethodGet,
		Path:    "/widgets",
		Handler: appPath + ".ListWidgets",
		Deps:    []string{appPath + ".ValidateQuery"},
	}
	shapes := c.Compile([]routes.Descriptor{desc})[desc.Key()]

	if len(shapes) != 1 {
		t.Fatalf("expected one shape after dedup, got %d", len(shapes))
	}
	if shapes[0].Description != "other message" {
		t.Fatalf("handler shape must win the status tie, got %q", shapes[0].Description)
	}
}

func TestCompileSharedDepWalkedOnce(t *testing.T) {
	var traversals []source.RoutineID
	c := appCompiler(t, WithWalkObserver(func(id source.RoutineID) {
		traversals = append(traversals, id)
	}))

	descs := []routes.Descriptor{
		widgetDescriptor(),
		{
			Method:  http.MethodGet,
			Path:    "/widgets",
			Handler: appPath + ".ListWidgets",
			Deps:    []string{appPath + ".RequireAuth"},
		},
	}
	c.Compile(descs)

	counts := map[source.RoutineID]int{}
	for _, id := range traversals {
		counts[id]++
	}
	for id, n := range counts {
		if n > 1 {
			t.Fatalf("routine %d traversed %d times within one compile", id, n)
		}
	}
}

func TestCompileUnanalyzableRoutineContributesNothing(t *testing.T) {
	c := appCompiler(t)

	desc := routes.Descriptor{
		Method:  http.MethodGet,
		Path:    "/ghost",
		Handler: appPath + ".DoesNotExist",
	}
	shapes := c.Compile([]routes.Descriptor{desc})[desc.Key()]
	if len(shapes) != 0 {
		t.Fatalf("expected empty catalogue entry, got %v", shapes)
	}
}

func TestCompileDropsFailedSchemaDerivation(t *testing.T) {
	c := appCompiler(t)

	desc := routes.Descriptor{
		Method:  http.MethodGet,
		Path:    "/weird",
		Handler: appPath + ".Weird",
	}
	shapes := c.Compile([]routes.Descriptor{desc})[desc.Key()]
	if len(shapes) != 0 {
		t.Fatalf("provider outside the folded language must drop the site, got %v", shapes)
	}
}
