package source

import (
	"testing"
)

const fixtureSrc = `package svc

import (
	"net/http"

	apierr "github.com/drblury/errweaver/apierror"
)

const maxRetries = 3

type Store struct {
	DSN string
}

func (s *Store) Lookup(id string) string { return id }

func GetUser(w http.ResponseWriter, r *http.Request) {
	panic(apierr.New(http.StatusNotFound, "user not found"))
}
`

func fixtureProgram(t *testing.T) *Program {
	t.Helper()
	prog := NewProgram()
	if _, err := prog.ParsePackage("example.com/svc", map[string]string{"svc.go": fixtureSrc}); err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return prog
}

func TestRoutineLookupAndIdentity(t *testing.T) {
	prog := fixtureProgram(t)

	fn, ok := prog.Routine("example.com/svc.GetUser")
	if !ok {
		t.Fatal("GetUser not indexed")
	}
	if fn.ID == NoRoutine {
		t.Fatal("routine identity not interned")
	}

	again, _ := prog.Routine("example.com/svc.GetUser")
	if again.ID != fn.ID {
		t.Fatalf("identities differ for same routine: %d vs %d", again.ID, fn.ID)
	}
	if got := prog.RoutineByID(fn.ID); got != fn {
		t.Fatal("arena lookup returned a different routine")
	}
}

func TestMethodIndexedUnderReceiver(t *testing.T) {
	prog := fixtureProgram(t)

	fn, ok := prog.Routine("example.com/svc.Store.Lookup")
	if !ok {
		t.Fatal("method not indexed under receiver")
	}

	typ, ok := prog.TypeNamed("example.com/svc.Store")
	if !ok {
		t.Fatal("type Store not indexed")
	}
	if typ.Methods["Lookup"] != fn {
		t.Fatal("method set does not reference indexed routine")
	}
}

func TestImportTableResolvesAliases(t *testing.T) {
	prog := fixtureProgram(t)

	fn, _ := prog.Routine("example.com/svc.GetUser")
	if got := prog.ImportPath(fn.File, "apierr"); got != "github.com/drblury/errweaver/apierror" {
		t.Fatalf("alias lookup: got %q", got)
	}
	if got := prog.ImportPath(fn.File, "http"); got != "net/http" {
		t.Fatalf("default alias lookup: got %q", got)
	}
}

func TestPackageLevelConstIndexed(t *testing.T) {
	prog := fixtureProgram(t)

	if _, ok := prog.Const("example.com/svc", "maxRetries"); !ok {
		t.Fatal("package-level const not indexed")
	}
}

func TestModuleFilter(t *testing.T) {
	f := NewModuleFilter("example.com/svc", "github.com/acme/helpers")

	cases := map[string]bool{
		"example.com/svc":          true,
		"example.com/svc/internal": true,
		"example.com/svcother":     false,
		"github.com/acme/helpers":  true,
		"net/http":                 false,
		"main":                     true,
	}
	for pkg, want := range cases {
		if got := f.Includes(pkg); got != want {
			t.Fatalf("Includes(%q): got %v want %v", pkg, got, want)
		}
	}

	var nilFilter *ModuleFilter
	if !nilFilter.Includes("anything/at/all") {
		t.Fatal("nil filter must include every package")
	}
}
