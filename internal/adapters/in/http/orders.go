package http

import (
	"net/http"
	"strings"

	"ordermgmt/internal/core/application/usecases/commands"
	"ordermgmt/internal/core/application/usecases/queries"
	"ordermgmt/internal/core/domain/model/history"
	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/core/ports"
	"ordermgmt/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// CreateOrder handles POST /api/v1/orders. It answers 201 with the created
// order, 400 for a malformed body, 422 for invalid values and 403 when the
// actor may not create orders.
//
// Example:
//
//	curl -X POST localhost:8080/api/v1/orders \
//	    -H 'X-Actor-ID: c-42' -H 'X-Actor-Role: customer' \
//	    -d '{"customerId":"…","currency":"SEK","items":[…],"shippingAddress":{…},"billingAddress":{…}}'
func (s *Server) CreateOrder(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return s.fail(c, err)
	}

	var body NewOrderBody
	if err = c.Bind(&body); err != nil {
		return s.fail(c, badRequest("body", err))
	}
	customerID, err := parseUUID("customerId", body.CustomerID)
	if err != nil {
		return s.fail(c, err)
	}

	currency := strings.TrimSpace(body.Currency)
	if currency == "" {
		currency = kernel.DefaultCurrency
	}
	items := make([]order.Item, 0, len(body.Items))
	for i, b := range body.Items {
		item, itemErr := b.toItem(i, currency)
		if itemErr != nil {
			return s.fail(c, itemErr)
		}
		items = append(items, item)
	}
	shipping, err := body.ShippingAddress.toAddress("shippingAddress")
	if err != nil {
		return s.fail(c, err)
	}
	billing, err := body.BillingAddress.toAddress("billingAddress")
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewCreateOrderCommand(actor, customerID, items, currency, shipping, billing, body.Notes)
	if err != nil {
		return s.fail(c, err)
	}
	created, err := s.handlers.CreateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, orderResponse(created))
}

// TransitionStatus handles POST /api/v1/orders/{orderId}/transitions. A move
// the graph does not allow answers 409 with the allowed targets in the
// details; a lost version race is 409 too, with code "conflict".
//
// Example:
//
//	curl -X POST localhost:8080/api/v1/orders/$ID/transitions \
//	    -H 'X-Actor-ID: s-1' -H 'X-Actor-Role: staff' \
//	    -d '{"status":"shipped","comment":"Left the warehouse"}'
func (s *Server) TransitionStatus(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return s.fail(c, err)
	}
	orderID, err := orderIDParam(c)
	if err != nil {
		return s.fail(c, err)
	}

	var body TransitionBody
	if err = c.Bind(&body); err != nil {
		return s.fail(c, badRequest("body", err))
	}
	target, err := order.ParseStatus(body.Status)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewTransitionStatusCommand(orderID, target, body.Comment, actor)
	if err != nil {
		return s.fail(c, err)
	}
	updated, err := s.handlers.TransitionStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, orderResponse(updated))
}

// CancelOrder handles POST /api/v1/orders/{orderId}/cancel. The body is optional.
func (s *Server) CancelOrder(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return s.fail(c, err)
	}
	orderID, err := orderIDParam(c)
	if err != nil {
		return s.fail(c, err)
	}

	var body CancelBody
	if err = c.Bind(&body); err != nil {
		return s.fail(c, badRequest("body", err))
	}

	cmd, err := commands.NewCancelOrderCommand(orderID, body.Reason, actor)
	if err != nil {
		return s.fail(c, err)
	}
	cancelled, err := s.handlers.CancelOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, orderResponse(cancelled))
}

// AddNote handles POST /api/v1/orders/{orderId}/notes.
func (s *Server) AddNote(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return s.fail(c, err)
	}
	orderID, err := orderIDParam(c)
	if err != nil {
		return s.fail(c, err)
	}

	var body NoteBody
	if err = c.Bind(&body); err != nil {
		return s.fail(c, badRequest("body", err))
	}

	cmd, err := commands.NewAddNoteCommand(orderID, body.Content, body.IsInternal, actor)
	if err != nil {
		return s.fail(c, err)
	}
	note, err := s.handlers.AddNote.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, eventResponse(note))
}

// GetOrder handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrder(c echo.Context) error {
	if _, err := s.authorizeRead(c, ports.ActionViewOrder); err != nil {
		return s.fail(c, err)
	}
	orderID, err := orderIDParam(c)
	if err != nil {
		return s.fail(c, err)
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return s.fail(c, err)
	}
	o, err := s.handlers.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, orderResponse(o))
}

// ListOrders handles GET /api/v1/orders. customerId, status, limit and offset
// are optional query parameters.
//
// Example:
//
//	curl 'localhost:8080/api/v1/orders?status=pending&limit=50' \
//	    -H 'X-Actor-ID: s-1' -H 'X-Actor-Role: staff'
func (s *Server) ListOrders(c echo.Context) error {
	if _, err := s.authorizeRead(c, ports.ActionViewOrder); err != nil {
		return s.fail(c, err)
	}
	params, err := bindListParams(c)
	if err != nil {
		return s.fail(c, err)
	}

	var customerID *kernel.UUID
	if params.CustomerID != nil {
		id, parseErr := kernel.UUIDFromString(*params.CustomerID)
		if parseErr != nil {
			return s.fail(c, badRequest("customerId", parseErr))
		}
		customerID = &id
	}
	var status *order.Status
	if params.Status != nil {
		parsed, parseErr := order.ParseStatus(*params.Status)
		if parseErr != nil {
			return s.fail(c, parseErr)
		}
		status = &parsed
	}
	limit, offset := 0, 0
	if params.Limit != nil {
		limit = *params.Limit
	}
	if params.Offset != nil {
		offset = *params.Offset
	}

	query, err := queries.NewListOrdersQuery(customerID, status, limit, offset)
	if err != nil {
		return s.fail(c, err)
	}
	rows, err := s.handlers.ListOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	response := make([]OrderSummaryResponse, 0, len(rows))
	for _, r := range rows {
		response = append(response, summaryResponse(r))
	}
	return c.JSON(http.StatusOK, response)
}

// ListValidNextStatuses handles GET /api/v1/orders/{orderId}/next-statuses.
func (s *Server) ListValidNextStatuses(c echo.Context) error {
	if _, err := s.authorizeRead(c, ports.ActionViewOrder); err != nil {
		return s.fail(c, err)
	}
	orderID, err := orderIDParam(c)
	if err != nil {
		return s.fail(c, err)
	}

	query, err := queries.NewListValidNextStatusesQuery(orderID)
	if err != nil {
		return s.fail(c, err)
	}
	next, err := s.handlers.ListValidNextStatuses.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	response := make([]StatusInfoResponse, 0, len(next))
	for _, st := range next {
		response = append(response, statusInfo(st))
	}
	return c.JSON(http.StatusOK, response)
}

// GetTimeline handles GET /api/v1/orders/{orderId}/timeline. Internal notes
// are returned only when asked for and the actor may see them; asking without
// the permission is 403, not a silently filtered list.
//
// Example:
//
//	curl 'localhost:8080/api/v1/orders/'$ID'/timeline?includeInternal=true' \
//	    -H 'X-Actor-ID: s-1' -H 'X-Actor-Role: staff'
func (s *Server) GetTimeline(c echo.Context) error {
	actor, err := s.authorizeRead(c, ports.ActionViewOrder)
	if err != nil {
		return s.fail(c, err)
	}
	orderID, err := orderIDParam(c)
	if err != nil {
		return s.fail(c, err)
	}
	includeInternal, err := includeInternalParam(c)
	if err != nil {
		return s.fail(c, err)
	}
	if includeInternal && !s.checker.CanPerform(c.Request().Context(), actor, ports.ActionViewInternalNote) {
		return s.fail(c, errs.NewOperationIsForbiddenError(actor.ID, string(ports.ActionViewInternalNote)))
	}

	query, err := queries.NewGetTimelineQuery(orderID, includeInternal)
	if err != nil {
		return s.fail(c, err)
	}
	events, err := s.handlers.GetTimeline.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, eventsResponse(events))
}

// ListStatuses handles GET /api/v1/statuses.
func (s *Server) ListStatuses(c echo.Context) error {
	catalogue := s.handlers.StatusCatalogue.Handle()
	response := make([]StatusInfoResponse, 0, len(catalogue))
	for _, info := range catalogue {
		response = append(response, StatusInfoResponse{
			Status:       info.Status.String(),
			Description:  info.Description,
			Terminal:     info.Terminal,
			NextStatuses: statusNames(info.Next),
		})
	}
	return c.JSON(http.StatusOK, response)
}

func statusInfo(st order.Status) StatusInfoResponse {
	return StatusInfoResponse{
		Status:       st.String(),
		Description:  st.Description(),
		Terminal:     st.IsTerminal(),
		NextStatuses: statusNames(order.NextStates(st)),
	}
}

func eventsResponse(events []*history.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse(e))
	}
	return out
}
