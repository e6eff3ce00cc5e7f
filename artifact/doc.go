// Package artifact reads and writes the compiled API description.
//
// The compile command writes the augmented document as a deterministic JSON
// file; serving processes load it back for request validation and expose it
// over HTTP. Nothing here re-runs analysis: the artifact is the only
// hand-off between the offline compile and the running service.
package artifact
