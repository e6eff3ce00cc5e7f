package apierror

import (
	"net/http"
	"reflect"
	"testing"
)

func TestDetailSchemaWithLiteralDetail(t *testing.T) {
	s := DetailSchema("NotFound", http.StatusNotFound, "user not found")

	if s.Name != "userNotFoundSchema" {
		t.Fatalf("unexpected schema name: got %q", s.Name)
	}
	if s.Description != "user not found" {
		t.Fatalf("unexpected description: got %q", s.Description)
	}
	if s.Status != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d", s.Status)
	}
	if s.Opaque {
		t.Fatal("detail schema must not be opaque")
	}

	detail := s.Body.Properties["detail"]
	if detail == nil || detail.Value == nil {
		t.Fatal("missing detail property")
	}
	if !reflect.DeepEqual(detail.Value.Enum, []any{"user not found"}) {
		t.Fatalf("expected literal enum, got %v", detail.Value.Enum)
	}
	if !reflect.DeepEqual(s.Body.Required, []string{"detail"}) {
		t.Fatalf("expected detail to be required, got %v", s.Body.Required)
	}
}

func TestDetailSchemaWithoutDetailFallsBackToTypeName(t *testing.T) {
	s := DetailSchema("QuotaExceeded", http.StatusTooManyRequests, "")

	if s.Name != "QuotaExceededErrorSchema" {
		t.Fatalf("unexpected schema name: got %q", s.Name)
	}
	if s.Description != defaultDescription {
		t.Fatalf("unexpected description: got %q", s.Description)
	}

	detail := s.Body.Properties["detail"]
	if detail == nil || detail.Value == nil {
		t.Fatal("missing detail property")
	}
	if len(detail.Value.Enum) != 0 {
		t.Fatalf("expected unconstrained detail, got enum %v", detail.Value.Enum)
	}
}

func TestOpaqueSchemaMarksBody(t *testing.T) {
	s := OpaqueSchema("Teapot", http.StatusTeapot, "")

	if !s.Opaque {
		t.Fatal("expected opaque marker")
	}
	if s.Name != "TeapotErrorSchema" {
		t.Fatalf("unexpected schema name: got %q", s.Name)
	}
	if !s.Body.Type.Is("string") {
		t.Fatalf("expected string body, got %v", s.Body.Type)
	}
}

func TestCamelCase(t *testing.T) {
	cases := map[string]string{
		"user not found":  "userNotFound",
		"quota_exceeded":  "quotaExceeded",
		"rate-limited":    "rateLimited",
		"alreadyCamel":    "alreadyCamel",
		"mixed case_name": "mixedCaseName",
	}

	for in, want := range cases {
		if got := CamelCase(in); got != want {
			t.Fatalf("CamelCase(%q): got %q want %q", in, got, want)
		}
	}
}
