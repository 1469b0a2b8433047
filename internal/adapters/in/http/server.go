package http

import (
	"context"

	"ordermgmt/internal/core/application/usecases/commands"
	"ordermgmt/internal/core/application/usecases/queries"
	"ordermgmt/internal/core/domain/model/history"
	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/core/ports"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// The server depends on these narrow interfaces rather than on the concrete
// handlers, so tests can stub any single use case.
type (
	// CreateOrderHandler places orders.
	CreateOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) (*order.Order, error)
	}
	// TransitionStatusHandler moves orders along the status graph.
	TransitionStatusHandler interface {
		Handle(ctx context.Context, cmd commands.TransitionStatusCommand) (*order.Order, error)
	}
	// CancelOrderHandler cancels orders.
	CancelOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CancelOrderCommand) (*order.Order, error)
	}
	// AddNoteHandler appends notes.
	AddNoteHandler interface {
		Handle(ctx context.Context, cmd commands.AddNoteCommand) (*history.Event, error)
	}
	// GetOrderHandler reads one order.
	GetOrderHandler interface {
		Handle(ctx context.Context, query queries.GetOrderQuery) (*order.Order, error)
	}
	// GetTimelineHandler reads the audit trail.
	GetTimelineHandler interface {
		Handle(ctx context.Context, query queries.GetTimelineQuery) ([]*history.Event, error)
	}
	// ListValidNextStatusesHandler answers where an order can move next.
	ListValidNextStatusesHandler interface {
		Handle(ctx context.Context, query queries.ListValidNextStatusesQuery) ([]order.Status, error)
	}
	// ListOrdersHandler pages through orders.
	ListOrdersHandler interface {
		Handle(ctx context.Context, query queries.ListOrdersQuery) ([]queries.ListOrdersQueryResponse, error)
	}
)

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	CreateOrder           CreateOrderHandler
	TransitionStatus      TransitionStatusHandler
	CancelOrder           CancelOrderHandler
	AddNote               AddNoteHandler
	GetOrder              GetOrderHandler
	GetTimeline           GetTimelineHandler
	ListValidNextStatuses ListValidNextStatusesHandler
	ListOrders            ListOrdersHandler
	StatusCatalogue       queries.GetStatusCatalogueQueryHandler
}

// Server translates HTTP requests into commands and queries. Mutations are
// authorized by the command handlers; the server checks read access itself.
type Server struct {
	handlers Handlers
	checker  ports.PermissionChecker
	logger   *zap.Logger
}

// NewServer creates the HTTP adapter.
//
// Parameters:
//   - handlers: the use cases to serve; every field must be set
//   - checker: authorizes reads, the command handlers authorize writes
//   - logger: receives unexpected failures before they are mapped to 500
//
// Example:
//
//	server := NewServer(handlers, policy.NewRolePolicy(), logger)
//	e := echo.New()
//	server.Register(e, middleware.Recover())
func NewServer(handlers Handlers, checker ports.PermissionChecker, logger *zap.Logger) *Server {
	return &Server{
		handlers: handlers,
		checker:  checker,
		logger:   logger,
	}
}

// Register mounts the order API on e.
func (s *Server) Register(e *echo.Echo, middleware ...echo.MiddlewareFunc) {
	g := e.Group("/api/v1", middleware...)

	g.POST("/orders", s.CreateOrder)
	g.GET("/orders", s.ListOrders)
	g.GET("/orders/:orderId", s.GetOrder)
	g.POST("/orders/:orderId/transitions", s.TransitionStatus)
	g.POST("/orders/:orderId/cancel", s.CancelOrder)
	g.POST("/orders/:orderId/notes", s.AddNote)
	g.GET("/orders/:orderId/next-statuses", s.ListValidNextStatuses)
	g.GET("/orders/:orderId/timeline", s.GetTimeline)
	g.GET("/statuses", s.ListStatuses)
}
