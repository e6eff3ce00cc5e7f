// Package errweaver discovers the structured error responses a Go HTTP
// service can produce and weaves them into the service's OpenAPI document,
// so that error documentation never has to be written by hand.
//
// Services built on errweaver panic typed API errors (package apierror)
// from handlers and their helpers instead of threading error returns up to
// the router. The respond package recovers those panics at serve time and
// renders RFC 9457 problem documents. The compiler package walks each
// route's handler and dependency chain statically, collects every reachable
// panic of a typed error, resolves it to a documented response shape, and
// merges the result into an existing openapi3 document. The analysis is
// best-effort: constructs it cannot model are skipped, never fatal.
//
// # Packages
//
//   - apierror: the typed error protocol raised by analyzed services,
//     including self-describing schema capabilities.
//   - source: loads and indexes the analyzed service's syntax trees and
//     interns routine identities.
//   - analyze: the call-graph walker, per-walk binding tracker, and the
//     static type/value resolver with its constant-folding fallback.
//   - compiler: schema resolution, per-route aggregation, static route
//     discovery, and the additive OpenAPI merger.
//   - routes: a registry around gorilla/mux that records route descriptors
//     for both serving and analysis.
//   - artifact: persistence and serve-time loading of the compiled
//     document, keeping the analysis engine out of the serving process.
//   - respond: problem-document rendering and the recover middleware that
//     completes the panic-based error protocol at runtime.
//   - router: middleware wiring, including request validation backed by the
//     compiled artifact.
//   - jsonutil: thin sonic wrappers for high-throughput encoding.
//
// # Quick Start
//
//	reg := routes.NewRegistry()
//	reg.Register(http.MethodGet, "/users/{id}", GetUser, routes.WithDeps(Authorize))
//
//	// offline: errweaver compile ./...:Routes -o openapi.json
//	doc, _ := artifact.Load("openapi.json")
//	handler := router.New(reg.Router(),
//	    router.WithDescription(doc),
//	    router.WithRecoverer(respond.NewResponder()),
//	)
//
// The compiled artifact is the only object shared with the serving path;
// serving never re-runs the analysis.
package errweaver
