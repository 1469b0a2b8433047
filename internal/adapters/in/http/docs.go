// Package http is the REST adapter of the order lifecycle.
//
// Routes live under /api/v1 and are described by api/openapi.yaml, which also
// drives request validation and the Swagger UI.
package http
