// Package jsonutil provides thin wrappers around sonic for
// performance-sensitive encoding and decoding tasks.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/bytedance/sonic"
)

// Marshal serialises the provided value using sonic's standard-library
// compatible configuration.
func Marshal(v any) ([]byte, error) {
	return sonic.ConfigStd.Marshal(v)
}

// MarshalIndent serialises the provided value with the supplied prefix and
// indentation applied to every line.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return sonic.ConfigStd.MarshalIndent(v, prefix, indent)
}

// Unmarshal parses JSON data into the provided destination.
func Unmarshal(data []byte, v any) error {
	return sonic.ConfigStd.Unmarshal(data, v)
}

// Encode streams the provided value to the writer followed by a newline.
func Encode(w io.Writer, v any) error {
	return sonic.ConfigStd.NewEncoder(w).Encode(v)
}

// Decode reads a single JSON value from the reader into the destination.
func Decode(r io.Reader, v any) error {
	return sonic.ConfigStd.NewDecoder(r).Decode(v)
}

// Indent reformats already-encoded JSON with the supplied indentation. The
// input bytes are not re-ordered, so output is deterministic for a
// deterministic producer.
func Indent(data []byte, prefix, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
