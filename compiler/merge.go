package compiler

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/drblury/errweaver/routes"
)

// Merge folds a compiled response catalogue into an API description. The
// merge is additive: routes absent from the document are skipped, existing
// response codes are never overwritten, and named body schemas are
// registered under components/schemas once and referenced from every use.
func Merge(doc *openapi3.T, catalogue map[routes.Key][]ResponseShape) {
	if doc == nil || doc.Paths == nil {
		return
	}

	keys := make([]routes.Key, 0, len(catalogue))
	for key := range catalogue {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Path != keys[j].Path {
			return keys[i].Path < keys[j].Path
		}
		return keys[i].Method < keys[j].Method
	})

	for _, key := range keys {
		item := doc.Paths.Find(key.Path)
		if item == nil {
			continue
		}
		op := item.GetOperation(strings.ToUpper(key.Method))
		if op == nil {
			continue
		}
		if op.Responses == nil {
			op.Responses = &openapi3.Responses{}
		}
		for _, shape := range catalogue[key] {
			code := strconv.Itoa(shape.Status)
			if op.Responses.Value(code) != nil {
				continue
			}
			resp := openapi3.NewResponse().WithDescription(shape.Description)
			if shape.Body != nil {
				resp = resp.WithJSONSchemaRef(bodyRef(doc, shape))
			}
			op.Responses.Set(code, &openapi3.ResponseRef{Value: resp})
		}
	}
}

// bodyRef returns the schema reference for a shape's body. Structured
// bodies are registered as named components; opaque bodies stay inline.
// When a name is already registered with a different body, the first
// registration keeps the component and the colliding body is inlined.
func bodyRef(doc *openapi3.T, shape ResponseShape) *openapi3.SchemaRef {
	if shape.Opaque || shape.Name == "" {
		return &openapi3.SchemaRef{Value: shape.Body}
	}
	if doc.Components == nil {
		doc.Components = &openapi3.Components{}
	}
	if doc.Components.Schemas == nil {
		doc.Components.Schemas = openapi3.Schemas{}
	}
	if existing, ok := doc.Components.Schemas[shape.Name]; ok {
		if !schemaEqual(existing.Value, shape.Body) {
			return &openapi3.SchemaRef{Value: shape.Body}
		}
	} else {
		doc.Components.Schemas[shape.Name] = &openapi3.SchemaRef{Value: shape.Body}
	}
	return openapi3.NewSchemaRef("#/components/schemas/"+shape.Name, nil)
}

func schemaEqual(a, b *openapi3.Schema) bool {
	if a == nil || b == nil {
		return a == b
	}
	aj, err := a.MarshalJSON()
	if err != nil {
		return false
	}
	bj, err := b.MarshalJSON()
	if err != nil {
		return false
	}
	return bytes.Equal(aj, bj)
}
