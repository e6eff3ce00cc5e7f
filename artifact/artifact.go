package artifact

import (
	"fmt"
	"os"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/drblury/errweaver/jsonutil"
)

// Save writes the document to path as indented JSON with a trailing
// newline. Saving the same document twice produces byte-identical files.
func Save(path string, doc *openapi3.T) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// Encode renders the document to the artifact's canonical byte form.
func Encode(doc *openapi3.T) ([]byte, error) {
	raw, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	data, err := jsonutil.Indent(raw, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("indent document: %w", err)
	}
	return append(data, '\n'), nil
}

// Load reads a previously saved artifact back into the OpenAPI model.
func Load(path string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load artifact: %w", err)
	}
	return doc, nil
}

// Provider returns the raw artifact bytes, re-reading on every call so a
// recompiled artifact is picked up without a restart.
type Provider func() ([]byte, error)

// FileProvider builds a Provider backed by the artifact file at path.
func FileProvider(path string) Provider {
	return func() ([]byte, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read artifact: %w", err)
		}
		return data, nil
	}
}
