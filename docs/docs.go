// Package docs publishes the OpenAPI document to swag so that echo-swagger can
// serve it under /swagger.
package docs

import (
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/swaggo/swag"
)

type document struct {
	json string
}

// ReadDoc implements swag.Swagger.
func (d document) ReadDoc() string {
	return d.json
}

// Register makes doc the default swag instance. Later calls are no-ops.
func Register(doc *openapi3.T) error {
	if swag.GetSwagger(swag.Name) != nil {
		return nil
	}
	raw, err := doc.MarshalJSON()
	if err != nil {
		return err
	}
	swag.Register(swag.Name, document{json: string(raw)})
	return nil
}
