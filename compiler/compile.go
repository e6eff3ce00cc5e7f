package compiler

import (
	"log/slog"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/drblury/errweaver/analyze"
	"github.com/drblury/errweaver/apierror"
	"github.com/drblury/errweaver/routes"
	"github.com/drblury/errweaver/source"
)

// ResponseShape is one documented error response of a route.
type ResponseShape = apierror.Schema

// Option configures a Compiler via the functional options pattern.
type Option func(*options)

type options struct {
	modules  *source.ModuleFilter
	logger   *slog.Logger
	observer func(source.RoutineID)
}

func defaultOptions() *options {
	return &options{
		logger: slog.Default(),
	}
}

// WithModules restricts analysis to the given target modules. Without it,
// every loaded package is analyzed.
func WithModules(modules *source.ModuleFilter) Option {
	return func(o *options) {
		o.modules = modules
	}
}

// WithLogger injects the structured logger used for degradation records.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithWalkObserver registers a callback fired once per routine body
// traversal. Used by tests to assert memoization.
func WithWalkObserver(fn func(source.RoutineID)) Option {
	return func(o *options) {
		o.observer = fn
	}
}

// Compiler derives the typed error response catalogue of a program's
// routes. It is cheap to construct; each Compile call walks with a fresh
// analysis cache.
type Compiler struct {
	prog     *source.Program
	modules  *source.ModuleFilter
	log      *slog.Logger
	observer func(source.RoutineID)
}

// New returns a compiler over the given program.
func New(prog *source.Program, opts ...Option) *Compiler {
	settings := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(settings)
		}
	}
	return &Compiler{
		prog:     prog,
		modules:  settings.modules,
		log:      settings.logger,
		observer: settings.observer,
	}
}

// Compile walks every descriptor's handler and dependencies and returns the
// documented response shapes per route. Within a route the handler's raises
// come first, then each dependency's in declaration order; the first shape
// per status code wins. Routines that cannot be analyzed contribute
// nothing.
func (c *Compiler) Compile(descs []routes.Descriptor) map[routes.Key][]ResponseShape {
	cache := analyze.NewCache()
	wopts := []analyze.WalkerOption{analyze.WithLogger(c.log)}
	if c.observer != nil {
		wopts = append(wopts, analyze.WithObserver(c.observer))
	}
	walker := analyze.NewWalker(c.prog, c.modules, cache, wopts...)
	d := &describer{prog: c.prog, res: walker.Resolver(), log: c.log}

	catalogue := make(map[routes.Key][]ResponseShape, len(descs))
	for _, desc := range descs {
		key := desc.Key()
		seen := map[int]bool{}

		routines := make([]string, 0, 1+len(desc.Deps))
		routines = append(routines, desc.Handler)
		routines = append(routines, desc.Deps...)

		var shapes []ResponseShape
		for _, routine := range routines {
			for _, site := range walker.WalkNamed(routine) {
				shape, ok := d.describe(site.Type)
				if !ok {
					c.log.With(
						"Routine", routine,
						"Position", site.Pos.String(),
					).Debug("Raise site dropped from catalogue")
					continue
				}
				if seen[shape.Status] {
					continue
				}
				seen[shape.Status] = true
				shapes = append(shapes, shape)
			}
		}
		catalogue[key] = shapes
	}
	return catalogue
}

// Enrich compiles the descriptors and merges the catalogue into the
// document in one step. Intended for in-process use at service startup.
func (c *Compiler) Enrich(doc *openapi3.T, descs []routes.Descriptor) {
	Merge(doc, c.Compile(descs))
}
