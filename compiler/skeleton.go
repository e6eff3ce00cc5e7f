package compiler

import (
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/drblury/errweaver/routes"
)

// Skeleton synthesizes a minimal API description covering the given routes,
// each with a bare 200 response. It stands in for a framework-generated
// base document when the compile has none to merge into.
func Skeleton(title, version string, descs []routes.Descriptor) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   title,
			Version: version,
		},
		Paths: openapi3.NewPaths(),
	}

	for _, desc := range descs {
		item := doc.Paths.Find(desc.Path)
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths.Set(desc.Path, item)
		}
		method := strings.ToUpper(desc.Method)
		if item.GetOperation(method) != nil {
			continue
		}
		ok := openapi3.NewResponse().WithDescription("OK")
		item.SetOperation(method, &openapi3.Operation{
			OperationID: operationID(desc),
			Responses:   openapi3.NewResponses(openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: ok})),
		})
	}
	return doc
}

// operationID derives a stable operation identifier from the handler's
// short name.
func operationID(desc routes.Descriptor) string {
	name := desc.Handler
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
