package http

import (
	"ordermgmt/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

func orderIDParam(c echo.Context) (kernel.UUID, error) {
	var raw string
	err := runtime.BindStyledParameterWithOptions("simple", "orderId", c.Param("orderId"), &raw,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return kernel.UUID{}, badRequest("orderId", err)
	}
	return parseUUID("orderId", raw)
}

// parseUUID leaves an empty value as the zero UUID so that commands report it
// as required.
func parseUUID(param, raw string) (kernel.UUID, error) {
	if raw == "" {
		return kernel.UUID{}, nil
	}
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, badRequest(param, err)
	}
	return id, nil
}

type listParams struct {
	CustomerID *string
	Status     *string
	Limit      *int
	Offset     *int
}

func bindListParams(c echo.Context) (listParams, error) {
	var p listParams
	q := c.QueryParams()
	if err := runtime.BindQueryParameter("form", true, false, "customerId", q, &p.CustomerID); err != nil {
		return listParams{}, badRequest("customerId", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "status", q, &p.Status); err != nil {
		return listParams{}, badRequest("status", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &p.Limit); err != nil {
		return listParams{}, badRequest("limit", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "offset", q, &p.Offset); err != nil {
		return listParams{}, badRequest("offset", err)
	}
	return p, nil
}

func includeInternalParam(c echo.Context) (bool, error) {
	var include *bool
	err := runtime.BindQueryParameter("form", true, false, "includeInternal", c.QueryParams(), &include)
	if err != nil {
		return false, badRequest("includeInternal", err)
	}
	return include != nil && *include, nil
}
