package commands

import (
	"context"
	"strings"

	"ordermgmt/internal/core/domain/model/history"
	"ordermgmt/internal/core/ports"
	"ordermgmt/internal/pkg/errs"
)

func validActor(actor ports.Actor) (ports.Actor, error) {
	actor.ID = strings.TrimSpace(actor.ID)
	actor.Role = strings.TrimSpace(actor.Role)
	if actor.ID == "" {
		return ports.Actor{}, errs.NewValueIsRequiredError("actor")
	}
	if len(actor.ID) > history.MaxActorLength {
		return ports.Actor{}, errs.NewValueIsOutOfRangeError("actor", len(actor.ID), 1, history.MaxActorLength)
	}
	return actor, nil
}

func authorize(ctx context.Context, checker ports.PermissionChecker, actor ports.Actor, action ports.Action) error {
	if checker.CanPerform(ctx, actor, action) {
		return nil
	}
	return errs.NewOperationIsForbiddenError(actor.ID, string(action))
}
