package artifact

import (
	"net/http"

	"github.com/drblury/errweaver/respond"
)

// HandlerOption configures the artifact HTTP handler.
type HandlerOption func(*handler)

type handler struct {
	provider  Provider
	responder *respond.Responder
}

// WithResponder replaces the responder used for failure reporting.
func WithResponder(r *respond.Responder) HandlerOption {
	return func(h *handler) {
		if r != nil {
			h.responder = r
		}
	}
}

// Handler serves the raw artifact bytes as application/json. Failures to
// read the artifact render as problem documents.
func Handler(provider Provider, opts ...HandlerOption) http.HandlerFunc {
	h := &handler{
		provider:  provider,
		responder: respond.NewResponder(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data, err := h.provider()
		if err != nil {
			h.responder.HandleAPIError(w, r, http.StatusInternalServerError, err, "failed to load api description")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(data); err != nil {
			h.responder.Logger().Error("failed to write api description", "error", err)
		}
	}
}
