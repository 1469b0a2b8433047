package ports

import (
	"context"
	"fmt"

	"ordermgmt/internal/core/domain/model/order"
)

// Actor is the caller of a lifecycle operation as identified by the transport.
type Actor struct {
	ID   string
	Role string
}

// Action names a capability checked by a PermissionChecker.
type Action string

// Actions that do not depend on a status. Transitions use TransitionAction.
const (
	ActionCreateOrder      Action = "create order"
	ActionCancelOrder      Action = "cancel order"
	ActionAddNote          Action = "add note"
	ActionAddInternalNote  Action = "add internal note"
	ActionViewOrder        Action = "view order"
	ActionViewInternalNote Action = "view internal notes"
)

// TransitionAction is the capability of moving an order from one status to another.
func TransitionAction(from, to order.Status) Action {
	return Action(fmt.Sprintf("transition %s to %s", from, to))
}

// PermissionChecker decides whether an actor may perform an action.
type PermissionChecker interface {
	CanPerform(ctx context.Context, actor Actor, action Action) bool
}
