// Package apierror defines the typed error protocol raised by services that
// want their failure modes discovered and documented automatically.
//
// Handlers and helpers panic values implementing Error instead of returning
// error; the respond package recovers them into problem documents at serve
// time, and the compiler package finds the panic sites statically. Types
// that implement SchemaProvider publish their exact response document and
// take precedence over anything the analyzer could infer on its own.
package apierror
