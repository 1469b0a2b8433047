package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ordermgmt/api"
	httpin "ordermgmt/internal/adapters/in/http"
	"ordermgmt/internal/adapters/out/memory"
	"ordermgmt/internal/adapters/out/policy"
	"ordermgmt/internal/core/application/usecases/commands"
	"ordermgmt/internal/core/application/usecases/queries"
	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type storeFactory struct {
	store *memory.Store
}

func (f storeFactory) Create() commands.LifecycleUoW {
	return f.store.Create()
}

type storeReaders struct {
	store *memory.Store
}

func (f storeReaders) Create() queries.LifecycleReader {
	return f.store.Create()
}

type MockListOrdersHandler struct{ mock.Mock }

func (m *MockListOrdersHandler) Handle(
	ctx context.Context,
	query queries.ListOrdersQuery,
) ([]queries.ListOrdersQueryResponse, error) {
	args := m.Called(ctx, query)
	rows, _ := args.Get(0).([]queries.ListOrdersQueryResponse)
	return rows, args.Error(1)
}

type ServerSuite struct {
	suite.Suite
	store      *memory.Store
	listOrders *MockListOrdersHandler
	echo       *echo.Echo
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	s.store = memory.NewStore()
	s.listOrders = &MockListOrdersHandler{}

	factory := storeFactory{store: s.store}
	readers := storeReaders{store: s.store}
	clock := kernel.NewMonotonicClock()
	checker := policy.NewRolePolicy()
	logger := zap.NewNop()
	lifecycle := metrics.Nop{}

	create := commands.NewCreateOrderCommandHandler(factory, clock, checker, commands.NoRetry(), lifecycle, logger)
	transition := commands.NewTransitionStatusCommandHandler(factory, clock, checker, commands.NoRetry(), lifecycle, logger)
	cancel := commands.NewCancelOrderCommandHandler(factory, clock, checker, commands.NoRetry(), lifecycle, logger)
	addNote := commands.NewAddNoteCommandHandler(factory, clock, checker, commands.NoRetry(), lifecycle, logger)

	server := httpin.NewServer(httpin.Handlers{
		CreateOrder:           &create,
		TransitionStatus:      &transition,
		CancelOrder:           &cancel,
		AddNote:               &addNote,
		GetOrder:              queries.NewGetOrderQueryHandler(readers, time.Second),
		GetTimeline:           queries.NewGetTimelineQueryHandler(readers, nil, time.Second, logger),
		ListValidNextStatuses: queries.NewListValidNextStatusesQueryHandler(readers, time.Second),
		ListOrders:            s.listOrders,
		StatusCatalogue:       queries.NewGetStatusCatalogueQueryHandler(),
	}, checker, logger)

	doc, err := api.Load()
	s.Require().NoError(err)
	validator, err := httpin.RequestValidator(doc)
	s.Require().NoError(err)

	s.echo = echo.New()
	server.Register(s.echo, validator)
}

type caller struct {
	id   string
	role string
}

var (
	customer = caller{id: "customer-7", role: policy.RoleCustomer}
	staff    = caller{id: "staff-1", role: policy.RoleStaff}
	nobody   = caller{}
)

func (s *ServerSuite) do(method, path string, as caller, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if as.id != "" {
		req.Header.Set(httpin.HeaderActorID, as.id)
		req.Header.Set(httpin.HeaderActorRole, as.role)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func (s *ServerSuite) decode(rec *httptest.ResponseRecorder, dst any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func address() httpin.AddressBody {
	return httpin.AddressBody{
		Street:     "Drottninggatan 1",
		City:       "Stockholm",
		State:      "Stockholm",
		PostalCode: "111 51",
		Country:    "SE",
	}
}

func newOrderBody() httpin.NewOrderBody {
	shipping, billing := address(), address()
	return httpin.NewOrderBody{
		CustomerID: kernel.NewUUID().String(),
		Items: []httpin.NewItemBody{
			{ProductID: kernel.NewUUID().String(), ProductName: "Mug", Quantity: 2, UnitPrice: "10.00"},
			{ProductID: kernel.NewUUID().String(), ProductName: "Spoon", Quantity: 1, UnitPrice: "5"},
		},
		ShippingAddress: &shipping,
		BillingAddress:  &billing,
	}
}

func (s *ServerSuite) createOrder() httpin.OrderResponse {
	rec := s.do(http.MethodPost, "/api/v1/orders", customer, newOrderBody())
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var created httpin.OrderResponse
	s.decode(rec, &created)
	return created
}

func (s *ServerSuite) move(id, status string, as caller) *httptest.ResponseRecorder {
	return s.do(http.MethodPost, "/api/v1/orders/"+id+"/transitions", as,
		httpin.TransitionBody{Status: status})
}

func (s *ServerSuite) errorOf(rec *httptest.ResponseRecorder) httpin.ErrorResponse {
	var body httpin.ErrorResponse
	s.decode(rec, &body)
	return body
}

func (s *ServerSuite) TestCreateOrder() {
	created := s.createOrder()

	s.Equal("pending", created.Status)
	s.Equal("pending", created.PaymentStatus)
	s.Equal("25.00", created.Total)
	s.Equal(kernel.DefaultCurrency, created.Currency)
	s.Equal(int64(1), created.Version)
	s.Equal([]string{"processing", "cancelled"}, created.NextStatuses)
	s.Len(created.Items, 2)
}

func (s *ServerSuite) TestCreateOrderWithoutActorIsUnauthenticated() {
	rec := s.do(http.MethodPost, "/api/v1/orders", nobody, newOrderBody())

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("unauthenticated", s.errorOf(rec).Code)
}

func (s *ServerSuite) TestCreateOrderWithoutItemsFailsValidation() {
	body := newOrderBody()
	body.Items = []httpin.NewItemBody{}

	rec := s.do(http.MethodPost, "/api/v1/orders", customer, body)

	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Equal("validation_failed", s.errorOf(rec).Code)
}

func (s *ServerSuite) TestCreateOrderWithoutBillingAddressFailsValidation() {
	body := newOrderBody()
	body.BillingAddress = nil

	rec := s.do(http.MethodPost, "/api/v1/orders", customer, body)

	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Contains(s.errorOf(rec).Message, "billingAddress")
}

func (s *ServerSuite) TestTransitionThroughLifecycle() {
	created := s.createOrder()

	for _, status := range []string{"processing", "shipped", "delivered"} {
		rec := s.move(created.ID, status, staff)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := s.do(http.MethodGet, "/api/v1/orders/"+created.ID, customer, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var current httpin.OrderResponse
	s.decode(rec, &current)
	s.Equal("delivered", current.Status)
	s.Equal([]string{"returned"}, current.NextStatuses)
}

func (s *ServerSuite) TestInvalidTransitionIsConflict() {
	created := s.createOrder()

	rec := s.move(created.ID, "shipped", staff)

	s.Equal(http.StatusConflict, rec.Code)
	body := s.errorOf(rec)
	s.Equal("invalid_transition", body.Code)
	s.Equal("pending", body.Details["from"])
	s.Equal([]any{"processing", "cancelled"}, body.Details["allowed"])
}

func (s *ServerSuite) TestLegacyStatusNameFailsValidation() {
	created := s.createOrder()

	rec := s.move(created.ID, "new", staff)

	s.Equal(http.StatusUnprocessableEntity, rec.Code)
}

func (s *ServerSuite) TestCustomerMayNotStartProcessing() {
	created := s.createOrder()

	rec := s.move(created.ID, "processing", customer)

	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal("forbidden", s.errorOf(rec).Code)
}

func (s *ServerSuite) TestCancelTwice() {
	created := s.createOrder()
	path := "/api/v1/orders/" + created.ID + "/cancel"

	first := s.do(http.MethodPost, path, customer, httpin.CancelBody{Reason: "changed my mind"})
	s.Require().Equal(http.StatusOK, first.Code, first.Body.String())
	var cancelled httpin.OrderResponse
	s.decode(first, &cancelled)
	s.Equal("cancelled", cancelled.Status)
	s.Empty(cancelled.NextStatuses)

	second := s.do(http.MethodPost, path, customer, nil)
	s.Equal(http.StatusConflict, second.Code)
	s.Equal("already_terminal", s.errorOf(second).Code)
}

func (s *ServerSuite) TestUnknownOrderIsNotFound() {
	path := "/api/v1/orders/" + kernel.NewUUID().String() + "/notes"

	rec := s.do(http.MethodPost, path, customer, httpin.NoteBody{Content: "hello"})

	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("not_found", s.errorOf(rec).Code)
}

func (s *ServerSuite) TestMalformedOrderIDIsBadRequest() {
	rec := s.do(http.MethodGet, "/api/v1/orders/not-a-uuid/timeline", customer, nil)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerSuite) TestTimelineHidesInternalNotes() {
	created := s.createOrder()
	notes := "/api/v1/orders/" + created.ID + "/notes"
	s.Require().Equal(http.StatusCreated,
		s.do(http.MethodPost, notes, customer, httpin.NoteBody{Content: "ring the bell"}).Code)
	s.Require().Equal(http.StatusCreated,
		s.do(http.MethodPost, notes, staff, httpin.NoteBody{Content: "fraud check", IsInternal: true}).Code)

	timeline := "/api/v1/orders/" + created.ID + "/timeline"

	rec := s.do(http.MethodGet, timeline, customer, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var public []httpin.EventResponse
	s.decode(rec, &public)
	s.Require().Len(public, 2)
	s.Equal("status-change", public[0].Kind)
	s.Nil(public[0].FromStatus)
	s.Equal("pending", public[0].ToStatus)
	s.Equal("ring the bell", public[1].Content)

	s.Equal(http.StatusForbidden, s.do(http.MethodGet, timeline+"?includeInternal=true", customer, nil).Code)

	rec = s.do(http.MethodGet, timeline+"?includeInternal=true", staff, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var full []httpin.EventResponse
	s.decode(rec, &full)
	s.Require().Len(full, 3)
	s.True(full[2].IsInternal)
}

func (s *ServerSuite) TestInternalNoteNeedsStaff() {
	created := s.createOrder()

	rec := s.do(http.MethodPost, "/api/v1/orders/"+created.ID+"/notes", customer,
		httpin.NoteBody{Content: "secret", IsInternal: true})

	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *ServerSuite) TestNextStatuses() {
	created := s.createOrder()

	rec := s.do(http.MethodGet, "/api/v1/orders/"+created.ID+"/next-statuses", customer, nil)

	s.Require().Equal(http.StatusOK, rec.Code)
	var next []httpin.StatusInfoResponse
	s.decode(rec, &next)
	s.Require().Len(next, 2)
	s.Equal("processing", next[0].Status)
	s.Equal("cancelled", next[1].Status)
	s.True(next[1].Terminal)
}

func (s *ServerSuite) TestStatusCatalogue() {
	rec := s.do(http.MethodGet, "/api/v1/statuses", nobody, nil)

	s.Require().Equal(http.StatusOK, rec.Code)
	var catalogue []httpin.StatusInfoResponse
	s.decode(rec, &catalogue)
	s.Len(catalogue, 6)
}

func (s *ServerSuite) TestStorageFailureIsUnavailable() {
	created := s.createOrder()
	s.store.InjectFaults(func(operation string) error {
		if operation == "commit transaction" {
			return errors.New("connection reset")
		}
		return nil
	})

	rec := s.move(created.ID, "processing", staff)

	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Equal("storage_unavailable", s.errorOf(rec).Code)
}

func (s *ServerSuite) TestListOrders() {
	customerID := kernel.NewUUID()
	row := queries.ListOrdersQueryResponse{
		ID:            kernel.NewUUID(),
		CustomerID:    customerID,
		Status:        order.Shipped,
		PaymentStatus: order.PaymentPaid,
		Total:         decimal.RequireFromString("25"),
		Currency:      "SEK",
		ItemCount:     2,
	}
	s.listOrders.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.ListOrdersQuery) bool {
		return q.CustomerID() != nil && q.CustomerID().IsEqual(customerID) &&
			q.Status() != nil && *q.Status() == order.Shipped &&
			q.Limit() == 5 && q.Offset() == 10
	})).Return([]queries.ListOrdersQueryResponse{row}, nil).Once()

	rec := s.do(http.MethodGet,
		"/api/v1/orders?customerId="+customerID.String()+"&status=shipped&limit=5&offset=10", customer, nil)

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var rows []httpin.OrderSummaryResponse
	s.decode(rec, &rows)
	s.Require().Len(rows, 1)
	s.Equal("shipped", rows[0].Status)
	s.Equal("paid", rows[0].PaymentStatus)
	s.Equal("25.00", rows[0].Total)
	s.listOrders.AssertExpectations(s.T())
}

func (s *ServerSuite) TestListOrdersRejectsUnknownStatus() {
	rec := s.do(http.MethodGet, "/api/v1/orders?status=lost", customer, nil)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.listOrders.AssertNotCalled(s.T(), "Handle", mock.Anything, mock.Anything)
}
