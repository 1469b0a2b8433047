// Package policy decides what an actor may do based on its role.
package policy

import (
	"context"

	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/core/ports"
)

// Roles known to RolePolicy. Any other role is denied everything.
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

type roles map[string]struct{}

func rolesOf(names ...string) roles {
	r := make(roles, len(names))
	for _, n := range names {
		r[n] = struct{}{}
	}
	return r
}

// RolePolicy is a static role table. Unknown roles and unknown actions are denied.
type RolePolicy struct {
	rules map[ports.Action]roles
}

// NewRolePolicy returns the default table: customers create, view, note and
// cancel pending orders and mark delivered ones returned; staff run the
// fulfilment transitions and handle internal notes.
//
// Example:
//
//	policy := NewRolePolicy()
//	ok := policy.CanPerform(ctx, ports.Actor{ID: "u1", Role: RoleStaff}, ports.ActionAddInternalNote)
func NewRolePolicy() *RolePolicy {
	everyone := rolesOf(RoleCustomer, RoleStaff, RoleAdmin)
	staff := rolesOf(RoleStaff, RoleAdmin)

	rules := map[ports.Action]roles{
		ports.ActionCreateOrder:      everyone,
		ports.ActionViewOrder:        everyone,
		ports.ActionAddNote:          everyone,
		ports.ActionCancelOrder:      everyone,
		ports.ActionAddInternalNote:  staff,
		ports.ActionViewInternalNote: staff,

		ports.TransitionAction(order.Pending, order.Processing):   staff,
		ports.TransitionAction(order.Pending, order.Cancelled):    everyone,
		ports.TransitionAction(order.Processing, order.Shipped):   staff,
		ports.TransitionAction(order.Processing, order.Cancelled): staff,
		ports.TransitionAction(order.Shipped, order.Delivered):    staff,
		ports.TransitionAction(order.Shipped, order.Returned):     staff,
		ports.TransitionAction(order.Delivered, order.Returned):   everyone,
	}
	return &RolePolicy{rules: rules}
}

// CanPerform reports whether actor's role is listed for action.
func (p *RolePolicy) CanPerform(_ context.Context, actor ports.Actor, action ports.Action) bool {
	allowed, ok := p.rules[action]
	if !ok {
		return false
	}
	_, ok = allowed[actor.Role]
	return ok
}

// AllowAll grants every action. It backs deployments where authorization
// happens upstream.
type AllowAll struct{}

// CanPerform always returns true.
func (AllowAll) CanPerform(context.Context, ports.Actor, ports.Action) bool {
	return true
}
