// Package router wires an API handler into a ready-to-serve mux with the
// service's standard middleware chain: request validation against the
// compiled API description, timeouts, request logging, and recovery of
// panicked API errors into problem responses.
//
// The chain is configured through functional options. Defaults can be
// disabled individually, extended with custom middlewares on either side,
// or replaced outright.
package router
