package http

import (
	"strings"

	"ordermgmt/internal/core/ports"
	"ordermgmt/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Headers set by the gateway after it authenticated the caller.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
)

// actorFrom reads the caller identity set by the upstream gateway.
func actorFrom(c echo.Context) (ports.Actor, error) {
	id := strings.TrimSpace(c.Request().Header.Get(HeaderActorID))
	if id == "" {
		return ports.Actor{}, errs.NewValueIsRequiredError(HeaderActorID)
	}
	role := strings.ToLower(strings.TrimSpace(c.Request().Header.Get(HeaderActorRole)))
	return ports.Actor{ID: id, Role: role}, nil
}

func (s *Server) authorizeRead(c echo.Context, action ports.Action) (ports.Actor, error) {
	actor, err := actorFrom(c)
	if err != nil {
		return ports.Actor{}, err
	}
	if !s.checker.CanPerform(c.Request().Context(), actor, action) {
		return ports.Actor{}, errs.NewOperationIsForbiddenError(actor.ID, string(action))
	}
	return actor, nil
}
