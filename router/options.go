package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/drblury/errweaver/respond"
)

// Middleware wraps an http.Handler to produce a new http.Handler.
type Middleware func(http.Handler) http.Handler

// Option configures the router via the functional options pattern.
type Option func(*options)

// Config carries the tunable middleware settings.
type Config struct {
	Timeout         time.Duration
	QuietdownRoutes []string
	HideHeaders     []string
}

type options struct {
	config         Config
	logger         *slog.Logger
	description    *openapi3.T
	artifactPath   string
	responder      *respond.Responder
	prepend        []Middleware
	append         []Middleware
	override       []Middleware
	enableValidate bool
	enableTimeout  bool
	enableLogging  bool
	enableRecovery bool
}

func defaultOptions() *options {
	return &options{
		config: Config{
			Timeout: 30 * time.Second,
		},
		logger:         slog.Default(),
		responder:      respond.NewResponder(),
		enableValidate: true,
		enableTimeout:  true,
		enableLogging:  true,
		enableRecovery: true,
	}
}

func (o *options) middlewareChain() []Middleware {
	if len(o.override) > 0 {
		cloned := make([]Middleware, len(o.override))
		copy(cloned, o.override)
		return cloned
	}

	chain := make([]Middleware, 0, len(o.prepend)+len(o.append)+4)
	chain = append(chain, o.prepend...)
	chain = append(chain, o.defaultMiddlewares()...)
	chain = append(chain, o.append...)
	return chain
}

func (o *options) defaultMiddlewares() []Middleware {
	chain := make([]Middleware, 0, 4)

	if o.enableValidate && o.description != nil {
		chain = append(chain, validationMiddleware(o.description))
	}

	if o.enableTimeout && o.config.Timeout > 0 {
		chain = append(chain, timeoutMiddleware(o.config.Timeout))
	}

	if o.enableLogging && o.logger != nil {
		chain = append(chain, loggingMiddleware(o.logger, o.config.QuietdownRoutes, o.config.HideHeaders))
	}

	// Recovery sits innermost so API error panics turn into problem
	// responses before the timeout machinery sees them.
	if o.enableRecovery && o.responder != nil {
		chain = append(chain, o.responder.Recover)
	}

	return chain
}

// WithConfig replaces the router configuration with the provided value.
func WithConfig(cfg Config) Option {
	configCopy := sanitizeConfig(cfg)
	return func(o *options) {
		o.config = configCopy
	}
}

// WithLogger provides the structured logger used by the logging middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDescription wires an in-memory API description for request
// validation.
func WithDescription(doc *openapi3.T) Option {
	return func(o *options) {
		o.description = doc
	}
}

// WithArtifact wires request validation from a compiled artifact file. The
// artifact is loaded when the router is built; a load failure disables
// validation and is logged.
func WithArtifact(path string) Option {
	return func(o *options) {
		o.artifactPath = path
	}
}

// WithRecoverer replaces the responder that renders recovered API error
// panics.
func WithRecoverer(responder *respond.Responder) Option {
	return func(o *options) {
		if responder != nil {
			o.responder = responder
		}
	}
}

// WithMiddlewares prepends custom middlewares ahead of the default chain.
func WithMiddlewares(middlewares ...Middleware) Option {
	return func(o *options) {
		o.prepend = append(o.prepend, middlewares...)
	}
}

// WithTrailingMiddlewares appends middlewares after the default chain.
func WithTrailingMiddlewares(middlewares ...Middleware) Option {
	return func(o *options) {
		o.append = append(o.append, middlewares...)
	}
}

// WithMiddlewareChain fully overrides the middleware chain with the
// provided sequence.
func WithMiddlewareChain(middlewares ...Middleware) Option {
	cloned := make([]Middleware, len(middlewares))
	copy(cloned, middlewares)
	return func(o *options) {
		o.override = cloned
	}
}

// WithoutValidation disables the request validation middleware.
func WithoutValidation() Option {
	return func(o *options) {
		o.enableValidate = false
	}
}

// WithoutTimeout disables the timeout middleware.
func WithoutTimeout() Option {
	return func(o *options) {
		o.enableTimeout = false
	}
}

// WithoutLogging disables the logging middleware.
func WithoutLogging() Option {
	return func(o *options) {
		o.enableLogging = false
	}
}

// WithoutRecovery disables the panic recovery middleware. Panicked API
// errors then crash the request like any other panic.
func WithoutRecovery() Option {
	return func(o *options) {
		o.enableRecovery = false
	}
}

func sanitizeConfig(cfg Config) Config {
	cfg.QuietdownRoutes = cloneStrings(cfg.QuietdownRoutes)
	cfg.HideHeaders = cloneStrings(cfg.HideHeaders)
	return cfg
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	cloned := make([]string, len(values))
	copy(cloned, values)
	return cloned
}
