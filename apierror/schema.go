package apierror

import (
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"
)

// Schema is the documented response for one error type: the component name
// it is registered under, the human description, the HTTP status, and the
// JSON body fragment. Opaque marks bodies that are unstructured text rather
// than a derived object.
type Schema struct {
	Name        string
	Description string
	Status      int
	Body        *openapi3.Schema
	Opaque      bool
}

// SchemaProvider is implemented by self-describing error types. The
// analyzer uses the provided schema verbatim, overriding field-derived
// inference.
type SchemaProvider interface {
	ResponseSchema() Schema
}

const defaultDescription = "No description provided"

// DetailSchema builds the generic detail-only response body. When the
// detail text is known it becomes a single-valued enum so the document
// promises the exact message; otherwise the detail is an unconstrained
// string.
func DetailSchema(typeName string, status int, detail string) Schema {
	name := typeName + "ErrorSchema"
	desc := defaultDescription

	detailProp := openapi3.NewStringSchema()
	if detail != "" {
		detailProp = detailProp.WithEnum(detail)
		name = CamelCase(detail) + "Schema"
		desc = detail
	}

	body := openapi3.NewObjectSchema().WithProperty("detail", detailProp)
	body.Required = []string{"detail"}

	return Schema{
		Name:        name,
		Description: desc,
		Status:      status,
		Body:        body,
	}
}

// OpaqueSchema is the documented fallback for error types with no
// structured fields: callers receive unstructured text, which is still
// documentation, not an omission.
func OpaqueSchema(typeName string, status int, detail string) Schema {
	desc := detail
	if desc == "" {
		desc = defaultDescription
	}

	body := openapi3.NewStringSchema()
	body.Description = "unstructured error text"

	return Schema{
		Name:        typeName + "ErrorSchema",
		Description: desc,
		Status:      status,
		Body:        body,
		Opaque:      true,
	}
}

// CamelCase folds space, snake, and kebab separated phrases into a single
// camel-cased identifier suitable for a component schema name.
func CamelCase(s string) string {
	for _, sep := range []string{" ", "_", "-"} {
		if !strings.Contains(s, sep) {
			continue
		}
		parts := strings.Split(s, sep)
		for i := 1; i < len(parts); i++ {
			parts[i] = title(parts[i])
		}
		s = strings.Join(parts, "")
	}
	return s
}

func title(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
