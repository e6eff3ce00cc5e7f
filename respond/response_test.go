package respond

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondWithJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/version", nil)

	NewResponder().RespondWithJSON(rec, req, http.StatusOK, map[string]string{"name": "widgets"})

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if got := rec.Body.String(); got != "{\"name\":\"widgets\"}\n" {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestReadRequestBodyMalformed(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/widgets", strings.NewReader("{broken"))

	var payload struct{ Name string }
	if NewResponder().ReadRequestBody(rec, req, &payload) {
		t.Fatal("malformed body must not parse")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestReadRequestBodyValid(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/widgets", strings.NewReader(`{"Name":"w"}`))

	var payload struct{ Name string }
	if !NewResponder().ReadRequestBody(rec, req, &payload) {
		t.Fatal("valid body must parse")
	}
	if payload.Name != "w" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestStatusMetadataOverride(t *testing.T) {
	r := NewResponder(WithStatusMetadata(http.StatusTeapot, StatusMetadata{Title: "Short and Stout"}))

	meta := r.statusMetaFor(http.StatusTeapot)
	if meta.title != "Short and Stout" {
		t.Fatalf("unexpected title %q", meta.title)
	}
	if meta.logMsg != "Short and Stout" {
		t.Fatalf("log message must default to the title, got %q", meta.logMsg)
	}
}
