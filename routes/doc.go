// Package routes registers HTTP routes on a gorilla/mux router while
// recording a static descriptor for every registration. The descriptors name
// the handler and its request dependencies the same way the analyzer
// identifies routines, so a compiled API description lines up with what the
// registry actually serves.
package routes
