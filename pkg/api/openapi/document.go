package openapi

import (
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"sigs.k8s.io/yaml"

	"github.com/aescanero/helloapi/pkg/domain"
)

// Discovery paths
const (
	UIPath      = "/swagger"
	SwaggerPath = "/swagger/v1/swagger.json"
	OpenAPIPath = "/swagger/v1/openapi.json"
)

// Document formats
const (
	FormatV2 = "v2"
	FormatV3 = "v3"
)

// Options describes the API being documented
type Options struct {
	// Title is the document title, normally the configured application name
	Title   string
	Version string
}

// Docs holds the rendered discovery documents
type Docs struct {
	title  string
	spec   *openapi3.T
	v3JSON []byte
	v2JSON []byte
}

// New builds the discovery documents for the values API
func New(opts Options) (*Docs, error) {
	if opts.Title == "" {
		return nil, fmt.Errorf("document title is required")
	}
	if opts.Version == "" {
		opts.Version = "v1"
	}

	spec := newSpec(opts)

	v3JSON, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal OpenAPI document: %w", err)
	}

	v2, err := openapi2conv.FromV3(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to Swagger 2.0: %w", err)
	}
	v2JSON, err := json.Marshal(v2)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal Swagger document: %w", err)
	}

	return &Docs{
		title:  opts.Title,
		spec:   spec,
		v3JSON: v3JSON,
		v2JSON: v2JSON,
	}, nil
}

// Title returns the document title
func (d *Docs) Title() string {
	return d.title
}

// Spec returns the OpenAPI 3 document
func (d *Docs) Spec() *openapi3.T {
	return d.spec
}

// SwaggerJSON returns the Swagger 2.0 document
func (d *Docs) SwaggerJSON() []byte {
	return d.v2JSON
}

// OpenAPIJSON returns the OpenAPI 3 document
func (d *Docs) OpenAPIJSON() []byte {
	return d.v3JSON
}

// Render returns the document in the given format, as JSON or YAML
func (d *Docs) Render(format string, asYAML bool) ([]byte, error) {
	var data []byte
	switch format {
	case FormatV2:
		data = d.v2JSON
	case FormatV3:
		data = d.v3JSON
	default:
		return nil, fmt.Errorf("unknown document format: %s (must be %s or %s)", format, FormatV2, FormatV3)
	}

	if !asYAML {
		return data, nil
	}
	out, err := yaml.JSONToYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert document to YAML: %w", err)
	}
	return out, nil
}

func newSpec(opts Options) *openapi3.T {
	t := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       opts.Title,
			Description: "Expose methods for creating, retrieving and deleting values.",
			Version:     opts.Version,
		},
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas),
		},
		Paths: make(openapi3.Paths),
	}

	t.Components.Schemas["Operation"] = openapi3.NewStringSchema().
		WithEnum(operationNames()...).
		NewRef()
	t.Components.Schemas["Event"] = openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewStringSchema()).
		WithProperty("type", openapi3.NewStringSchema()).
		WithPropertyRef("operation", &openapi3.SchemaRef{Ref: "#/components/schemas/Operation"}).
		WithProperty("valueId", openapi3.NewInt64Schema()).
		WithProperty("payloadBytes", openapi3.NewInt32Schema()).
		WithProperty("requestId", openapi3.NewStringSchema()).
		WithProperty("timestamp", openapi3.NewDateTimeSchema()).
		NewRef()
	t.Components.Schemas["ErrorResponse"] = openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewObjectSchema().
			WithProperty("code", openapi3.NewStringSchema()).
			WithProperty("message", openapi3.NewStringSchema())).
		NewRef()

	t.Paths["/api/values"] = &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"Values"},
			OperationID: "Values_GetAll",
			Summary:     "Get all values",
			Responses: openapi3.Responses{
				"200": jsonResponse(openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())),
			},
		},
		Post: &openapi3.Operation{
			Tags:        []string{"Values"},
			OperationID: "Values_Post",
			Summary:     "Save a new value.",
			RequestBody: valueBody(),
			Responses:   emptyResponses(),
		},
	}

	t.Paths["/api/values/{id}"] = &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"Values"},
			OperationID: "Values_Get",
			Summary:     "Retrieve the value by its ID.",
			Parameters:  openapi3.Parameters{idParameter("The ID of the desired Value")},
			Responses: openapi3.Responses{
				"200": jsonResponse(openapi3.NewStringSchema()),
				"400": badRequest(),
			},
		},
		Put: &openapi3.Operation{
			Tags:        []string{"Values"},
			OperationID: "Values_Put",
			Summary:     "Update a value with given id.",
			Parameters:  openapi3.Parameters{idParameter("")},
			RequestBody: valueBody(),
			Responses:   emptyResponses(),
		},
		Delete: &openapi3.Operation{
			Tags:        []string{"Values"},
			OperationID: "Values_Delete",
			Summary:     "Delete a value by its id.",
			Parameters:  openapi3.Parameters{idParameter("")},
			Responses:   emptyResponses(),
		},
	}

	return t
}

func idParameter(description string) *openapi3.ParameterRef {
	p := openapi3.NewPathParameter("id").
		WithRequired(true).
		WithSchema(openapi3.NewInt64Schema())
	p.Description = description
	return &openapi3.ParameterRef{Value: p}
}

func valueBody() *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithJSONSchema(openapi3.NewStringSchema()),
	}
}

func jsonResponse(schema *openapi3.Schema) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{
		Value: openapi3.NewResponse().
			WithDescription("Success").
			WithJSONSchema(schema),
	}
}

func emptyResponses() openapi3.Responses {
	return openapi3.Responses{
		"200": &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Success")},
		"400": badRequest(),
	}
}

func badRequest() *openapi3.ResponseRef {
	return &openapi3.ResponseRef{
		Value: openapi3.NewResponse().
			WithDescription("The path parameter or body could not be parsed").
			WithContent(openapi3.NewContentWithJSONSchemaRef(&openapi3.SchemaRef{Ref: "#/components/schemas/ErrorResponse"})),
	}
}

func operationNames() []interface{} {
	ops := domain.Operations()
	names := make([]interface{}, len(ops))
	for i, op := range ops {
		names[i] = op.String()
	}
	return names
}
