package compiler

import (
	"go/ast"
	"log/slog"
	"reflect"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/drblury/errweaver/analyze"
	"github.com/drblury/errweaver/apierror"
	"github.com/drblury/errweaver/source"
)

// openapi3Path qualifies the schema builder calls a self-describing provider
// may use.
const openapi3Path = "github.com/getkin/kin-openapi/openapi3"

// maxSchemaChain bounds folding of builder-call chains inside provider
// bodies.
const maxSchemaChain = 32

// describer derives response shapes from resolved raise sites. Derivation
// failures drop the site, never abort the compile.
type describer struct {
	prog *source.Program
	res  *analyze.Resolver
	log  *slog.Logger
}

// describe returns the response shape documented by a resolved raise. ok is
// false when no schema can be derived and the site degrades out of the
// catalogue.
func (d *describer) describe(res analyze.Resolution) (apierror.Schema, bool) {
	t := res.Type
	if res.Kind == analyze.Unresolved || t == nil {
		return apierror.Schema{}, false
	}
	if t.Constructor() {
		return d.constructorShape(res)
	}
	if t.SelfDescribing {
		return d.providedShape(t)
	}
	return d.declaredShape(res)
}

// constructorShape documents an apierror.New or apierror.Newf raise. The
// status argument must fold; a literal detail becomes a single-valued enum.
func (d *describer) constructorShape(res analyze.Resolution) (apierror.Schema, bool) {
	args := res.Call.Args
	if len(args) < 2 {
		return apierror.Schema{}, false
	}
	status, ok := d.res.FoldInt(args[0], res.File, nil)
	if !ok || status == 0 {
		return apierror.Schema{}, false
	}
	detail := ""
	if !res.Type.Formatted {
		if s, ok := d.res.FoldString(args[1], res.File, nil); ok {
			detail = s
		}
	}
	return apierror.DetailSchema("API", status, detail), true
}

// declaredShape documents a raise of a declared error type. Exported struct
// fields become body properties; literal values at the raise site narrow
// their property to a single-valued enum. Types with no exported fields
// document as opaque text.
func (d *describer) declaredShape(res analyze.Resolution) (apierror.Schema, bool) {
	t := res.Type
	if t.Status == 0 {
		return apierror.Schema{}, false
	}

	fields := structFields(t.Decl)
	exported := 0
	for _, f := range fields {
		if f.Exported {
			exported++
		}
	}
	if exported == 0 {
		return apierror.OpaqueSchema(t.ShortName(), t.Status, t.Detail), true
	}

	embedded := d.embeddedValues(res, fields)

	body := openapi3.NewObjectSchema()
	for _, f := range fields {
		if !f.Exported {
			continue
		}
		prop := propertySchema(f.TypeName)
		if v, ok := embedded[f.Name]; ok {
			prop = prop.WithEnum(v)
		}
		body = body.WithProperty(f.JSONName, prop)
	}

	desc := t.Detail
	if desc == "" {
		desc = "No description provided"
	}
	return apierror.Schema{
		Name:        t.ShortName() + "ErrorSchema",
		Description: desc,
		Status:      t.Status,
		Body:        body,
	}, true
}

// embeddedValues folds the raise expression's composite-literal elements to
// concrete values keyed by field name. Keyed elements bind by name,
// positional elements by declaration order; elements beyond the declared
// fields are ignored.
func (d *describer) embeddedValues(res analyze.Resolution, fields []fieldInfo) map[string]any {
	if res.Lit == nil || len(res.Lit.Elts) == 0 {
		return nil
	}
	values := map[string]any{}
	for i, elt := range res.Lit.Elts {
		name := ""
		expr := elt
		if kv, ok := elt.(*ast.KeyValueExpr); ok {
			if key, ok := kv.Key.(*ast.Ident); ok {
				name = key.Name
			}
			expr = kv.Value
		} else if i < len(fields) {
			name = fields[i].Name
		}
		if name == "" {
			continue
		}
		if v, ok := d.res.FoldValue(expr, res.File, nil); ok {
			values[name] = v
		}
	}
	return values
}

// providedShape extracts the schema a self-describing type returns from its
// ResponseSchema method. The body must be a composite literal whose Body
// field, if set, is a bounded chain of openapi3 builder calls; anything
// outside that language is a derivation failure.
func (d *describer) providedShape(t *analyze.ErrorType) (apierror.Schema, bool) {
	m, ok := t.Decl.Methods["ResponseSchema"]
	if !ok {
		return apierror.Schema{}, false
	}
	lit, ok := returnedCompositeLit(m.Decl)
	if !ok {
		d.log.With("Type", t.Name).Debug("Schema provider body is not a composite literal")
		return apierror.Schema{}, false
	}

	shape := apierror.Schema{Status: t.Status}
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		key, ok := kv.Key.(*ast.Ident)
		if !ok {
			continue
		}
		switch key.Name {
		case "Name":
			if s, ok := d.res.FoldString(kv.Value, m.File, nil); ok {
				shape.Name = s
			}
		case "Description":
			if s, ok := d.res.FoldString(kv.Value, m.File, nil); ok {
				shape.Description = s
			}
		case "Status":
			if n, ok := d.res.FoldInt(kv.Value, m.File, nil); ok {
				shape.Status = n
			}
		case "Body":
			body, ok := d.foldSchemaExpr(kv.Value, m.File, 0)
			if !ok {
				d.log.With("Type", t.Name).Debug("Schema provider body fell outside the folded builder language")
				return apierror.Schema{}, false
			}
			shape.Body = body
		case "Opaque":
			if v, ok := d.res.FoldValue(kv.Value, m.File, nil); ok {
				if b, isBool := v.(bool); isBool {
					shape.Opaque = b
				}
			}
		}
	}

	if shape.Status == 0 {
		return apierror.Schema{}, false
	}
	if shape.Name == "" {
		shape.Name = t.ShortName() + "ErrorSchema"
	}
	if shape.Description == "" {
		shape.Description = "No description provided"
	}
	return shape, true
}

// foldSchemaExpr evaluates an openapi3 schema builder chain without running
// it: constructor calls produce fresh schemas, With* methods apply to the
// folded receiver.
func (d *describer) foldSchemaExpr(expr ast.Expr, file *ast.File, depth int) (*openapi3.Schema, bool) {
	if depth > maxSchemaChain {
		return nil, false
	}
	switch e := expr.(type) {
	case *ast.ParenExpr:
		return d.foldSchemaExpr(e.X, file, depth+1)

	case *ast.CallExpr:
		sel, ok := e.Fun.(*ast.SelectorExpr)
		if !ok {
			return nil, false
		}
		if base, ok := sel.X.(*ast.Ident); ok && d.prog.ImportPath(file, base.Name) == openapi3Path {
			return newSchema(sel.Sel.Name)
		}
		recv, ok := d.foldSchemaExpr(sel.X, file, depth+1)
		if !ok {
			return nil, false
		}
		return d.applyBuilder(recv, sel.Sel.Name, e.Args, file, depth)
	}
	return nil, false
}

func newSchema(name string) (*openapi3.Schema, bool) {
	switch name {
	case "NewSchema":
		return openapi3.NewSchema(), true
	case "NewObjectSchema":
		return openapi3.NewObjectSchema(), true
	case "NewStringSchema":
		return openapi3.NewStringSchema(), true
	case "NewIntegerSchema":
		return openapi3.NewIntegerSchema(), true
	case "NewInt64Schema":
		return openapi3.NewInt64Schema(), true
	case "NewFloat64Schema":
		return openapi3.NewFloat64Schema(), true
	case "NewBoolSchema":
		return openapi3.NewBoolSchema(), true
	case "NewArraySchema":
		return openapi3.NewArraySchema(), true
	}
	return nil, false
}

func (d *describer) applyBuilder(recv *openapi3.Schema, method string, args []ast.Expr, file *ast.File, depth int) (*openapi3.Schema, bool) {
	switch method {
	case "WithProperty":
		if len(args) != 2 {
			return nil, false
		}
		name, ok := d.res.FoldString(args[0], file, nil)
		if !ok {
			return nil, false
		}
		prop, ok := d.foldSchemaExpr(args[1], file, depth+1)
		if !ok {
			return nil, false
		}
		return recv.WithProperty(name, prop), true

	case "WithItems":
		if len(args) != 1 {
			return nil, false
		}
		items, ok := d.foldSchemaExpr(args[0], file, depth+1)
		if !ok {
			return nil, false
		}
		return recv.WithItems(items), true

	case "WithFormat":
		if len(args) != 1 {
			return nil, false
		}
		format, ok := d.res.FoldString(args[0], file, nil)
		if !ok {
			return nil, false
		}
		return recv.WithFormat(format), true

	case "WithEnum":
		values := make([]any, 0, len(args))
		for _, arg := range args {
			v, ok := d.res.FoldValue(arg, file, nil)
			if !ok {
				return nil, false
			}
			values = append(values, v)
		}
		return recv.WithEnum(values...), true

	case "WithNullable":
		if len(args) != 0 {
			return nil, false
		}
		return recv.WithNullable(), true

	case "WithDefault":
		if len(args) != 1 {
			return nil, false
		}
		v, ok := d.res.FoldValue(args[0], file, nil)
		if !ok {
			return nil, false
		}
		return recv.WithDefault(v), true
	}
	return nil, false
}

// fieldInfo is one declared struct field of an error type.
type fieldInfo struct {
	Name     string
	JSONName string
	TypeName string
	Exported bool
}

func structFields(decl *source.Type) []fieldInfo {
	st, ok := decl.Spec.Type.(*ast.StructType)
	if !ok || st.Fields == nil {
		return nil
	}
	var fields []fieldInfo
	for _, field := range st.Fields.List {
		typeName := source.BaseTypeName(field.Type)
		for _, name := range field.Names {
			f := fieldInfo{
				Name:     name.Name,
				JSONName: jsonName(name.Name, field.Tag),
				TypeName: typeName,
				Exported: ast.IsExported(name.Name),
			}
			fields = append(fields, f)
		}
	}
	return fields
}

func jsonName(field string, tag *ast.BasicLit) string {
	if tag == nil {
		return field
	}
	raw, err := strconv.Unquote(tag.Value)
	if err != nil {
		return field
	}
	name, _, _ := strings.Cut(reflect.StructTag(raw).Get("json"), ",")
	if name == "" || name == "-" {
		return field
	}
	return name
}

func propertySchema(typeName string) *openapi3.Schema {
	switch typeName {
	case "string":
		return openapi3.NewStringSchema()
	case "int", "int8", "int16", "int32", "uint", "uint8", "uint16", "uint32":
		return openapi3.NewIntegerSchema()
	case "int64", "uint64":
		return openapi3.NewInt64Schema()
	case "float32", "float64":
		return openapi3.NewFloat64Schema()
	case "bool":
		return openapi3.NewBoolSchema()
	}
	return openapi3.NewSchema()
}

// returnedCompositeLit finds the composite literal returned by a provider
// method, unwrapping parentheses and address-of.
func returnedCompositeLit(decl *ast.FuncDecl) (*ast.CompositeLit, bool) {
	if decl == nil || decl.Body == nil {
		return nil, false
	}
	var lit *ast.CompositeLit
	ast.Inspect(decl.Body, func(n ast.Node) bool {
		if lit != nil {
			return false
		}
		ret, ok := n.(*ast.ReturnStmt)
		if !ok || len(ret.Results) != 1 {
			return true
		}
		expr := ret.Results[0]
		for {
			switch e := expr.(type) {
			case *ast.ParenExpr:
				expr = e.X
				continue
			case *ast.UnaryExpr:
				expr = e.X
				continue
			}
			break
		}
		lit, _ = expr.(*ast.CompositeLit)
		return false
	})
	return lit, lit != nil
}
