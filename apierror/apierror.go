package apierror

import (
	"fmt"
	"net/http"
)

// Error is the contract every typed API error satisfies. StatusCode reports
// the HTTP status the serving layer should answer with.
type Error interface {
	error
	StatusCode() int
}

// E is the ready-made error used by constructor raises such as
// apierror.New(http.StatusNotFound, "user not found"). Declared error types
// with their own fields implement Error directly instead.
type E struct {
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// New returns a typed error carrying the provided status code and detail
// text. A zero status is normalised to 500.
func New(status int, detail string) *E {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return &E{Status: status, Detail: detail}
}

// Newf behaves like New with the detail built from a format string. Because
// the detail depends on runtime values, analysis documents it as an
// unconstrained string rather than a literal.
func Newf(status int, format string, args ...any) *E {
	return New(status, fmt.Sprintf(format, args...))
}

// Error returns the detail text.
func (e *E) Error() string {
	return e.Detail
}

// StatusCode returns the HTTP status associated with the error.
func (e *E) StatusCode() int {
	return e.Status
}
