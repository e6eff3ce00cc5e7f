// Package compiler turns walked raise sites into documented response shapes
// and folds them into an OpenAPI 3 document.
//
// The compiler owns the steps that come after the call-graph walk: deriving
// a response schema for each resolved error type, aggregating the shapes per
// route with status-code deduplication, and merging the catalogue additively
// into an existing API description. It also discovers route descriptors
// statically from a registration routine, so the offline command needs no
// running service.
package compiler
