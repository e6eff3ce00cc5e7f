// Package analyze implements the static discovery of typed error raises.
//
// A Walker traverses a routine's body in source order, tracking local
// bindings per scope, recursing into called routines inside the configured
// target modules, and recording a RaiseSite for every panic of a typed API
// error it can resolve. Results are memoized in a Cache created fresh per
// compile run; an in-progress marker makes mutually recursive routines
// terminate with the recursive edge contributing nothing.
//
// The analysis is deliberately best-effort: constructs the walker does not
// model are skipped, and references it cannot resolve become Unresolved
// outcomes rather than errors. Nothing in this package executes analyzed
// code; the only evaluation performed is depth-bounded constant folding
// over literals, simple arithmetic, net/http status names, and
// package-level bindings.
package analyze
