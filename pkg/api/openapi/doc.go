// Package openapi builds the API discovery documents.
//
// The OpenAPI 3 document is built with kin-openapi and converted to
// Swagger 2.0 for the historical /swagger/v1/swagger.json path. Both are
// rendered once at startup; the document title comes from configuration.
// The browsable UI is an embedded page loading Swagger UI.
package openapi
