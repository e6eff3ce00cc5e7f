package respond

import (
	"fmt"
	"net/http"

	"github.com/drblury/errweaver/apierror"
)

// Recover converts panicked API errors into problem responses. Handlers and
// request dependencies abort by panicking with a value implementing
// apierror.Error; any other panic value renders as an internal server
// error. http.ErrAbortHandler passes through untouched.
func (r *Responder) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			if apiErr, ok := rec.(apierror.Error); ok {
				r.HandleAPIError(w, req, apiErr.StatusCode(), apiErr)
				return
			}
			r.HandleAPIError(w, req, http.StatusInternalServerError, fmt.Errorf("panic: %v", rec))
		}()

		next.ServeHTTP(w, req)
	})
}
