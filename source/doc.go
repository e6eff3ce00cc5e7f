// Package source loads and indexes the syntax trees of an analyzed service.
//
// A Program is a read-only index over parsed packages: routines by
// qualified name, type declarations with their method sets, package-level
// constant bindings, and per-file import tables. Routine identities are
// interned integers assigned once per distinct routine, so they can key
// caches cheaply and deterministically.
//
// Programs are built either from go/packages (Load, used by the compile
// command) or from already-parsed files (AddPackage, used by tests and
// in-process callers).
package source
