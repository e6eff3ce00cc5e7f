package routes

import (
	"log/slog"
	"net/http"
	"reflect"
	"runtime"
	"strings"

	"github.com/gorilla/mux"
)

// Key identifies a route by method and path template.
type Key struct {
	Method string
	Path   string
}

// Descriptor is the static record of one registered route: its key, the
// qualified name of its handler, and the qualified names of its request
// dependencies in registration order.
type Descriptor struct {
	Method  string
	Path    string
	Handler string
	Deps    []string
}

// Key returns the descriptor's route key.
func (d Descriptor) Key() Key {
	return Key{Method: d.Method, Path: d.Path}
}

// Dep is a request dependency. Dependencies run before the handler and may
// abort the request by panicking with an API error.
type Dep func(*http.Request)

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger injects the logger used for registration records.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.log = logger
		}
	}
}

// RouteOption configures a single registration.
type RouteOption func(*route)

type route struct {
	deps []Dep
}

// WithDeps attaches request dependencies to a route. They run in order
// before the handler.
func WithDeps(deps ...Dep) RouteOption {
	return func(rt *route) {
		rt.deps = append(rt.deps, deps...)
	}
}

// Registry pairs a gorilla/mux router with the descriptors of everything
// registered on it.
type Registry struct {
	router *mux.Router
	descs  []Descriptor
	log    *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		router: mux.NewRouter(),
		log:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Register mounts a handler for the given method and path template and
// records its descriptor. Dependencies attached via WithDeps run before the
// handler on every request.
func (r *Registry) Register(method, path string, handler http.HandlerFunc, opts ...RouteOption) {
	rt := &route{}
	for _, opt := range opts {
		if opt != nil {
			opt(rt)
		}
	}

	desc := Descriptor{
		Method:  method,
		Path:    path,
		Handler: FuncName(handler),
	}
	for _, dep := range rt.deps {
		desc.Deps = append(desc.Deps, FuncName(dep))
	}

	final := handler
	if len(rt.deps) > 0 {
		deps := rt.deps
		final = func(w http.ResponseWriter, req *http.Request) {
			for _, dep := range deps {
				dep(req)
			}
			handler(w, req)
		}
	}

	r.router.HandleFunc(path, final).Methods(method)
	r.descs = append(r.descs, desc)
	r.log.With("Method", method, "Path", path, "Handler", desc.Handler).Debug("Registered route")
}

// Router returns the underlying mux router for serving.
func (r *Registry) Router() *mux.Router {
	return r.router
}

// Descriptors returns a copy of the recorded route descriptors in
// registration order.
func (r *Registry) Descriptors() []Descriptor {
	descs := make([]Descriptor, len(r.descs))
	copy(descs, r.descs)
	return descs
}

// FuncName resolves a function value to its qualified name, normalized to
// the pkgpath.Receiver.Method shape the analyzer indexes routines under.
func FuncName(fn any) string {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return ""
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return ""
	}
	return normalizeFuncName(rf.Name())
}

// normalizeFuncName strips the pointer-receiver wrapping from a runtime
// function name; everything else, generic instantiation brackets included,
// passes through untouched.
func normalizeFuncName(name string) string {
	name = strings.TrimSuffix(name, "-fm")
	for {
		open := strings.Index(name, "(*")
		if open < 0 {
			return name
		}
		end := strings.Index(name[open:], ")")
		if end < 0 {
			return name
		}
		name = name[:open] + name[open+2:open+end] + name[open+end+1:]
	}
}
