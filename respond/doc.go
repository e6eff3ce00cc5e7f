// Package respond is the serving-side half of the typed error protocol.
//
// Handlers and their request dependencies signal failures by panicking with
// apierror values; the Recover middleware catches those panics and renders
// them as RFC 9457 problem documents with ULID trace identifiers. The same
// responder also backs plain JSON rendering for success paths, so every
// payload a service writes goes through one place.
package respond
