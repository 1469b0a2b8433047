package http

import (
	"errors"
	"net/http"

	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// errBadRequest marks malformed input that never reached a use case.
var errBadRequest = errors.New("malformed request")

// badRequestError names the request parameter that failed to bind.
type badRequestError struct {
	param string
	cause error
}

func badRequest(param string, cause error) error {
	return &badRequestError{param: param, cause: cause}
}

// Error reads "param: cause".
func (e *badRequestError) Error() string {
	return e.param + ": " + e.cause.Error()
}

// Unwrap exposes both errBadRequest and the binding error.
func (e *badRequestError) Unwrap() []error {
	return []error{errBadRequest, e.cause}
}

// toResponse maps an error to its status and body:
//
//	400 bad_request          malformed JSON, path or query parameter
//	401 unauthenticated      missing actor header
//	403 forbidden            the actor lacks the permission
//	404 not_found            unknown order
//	409 invalid_transition   no edge from the current status
//	409 already_terminal     the order is cancelled or returned
//	409 conflict             lost the version check
//	422 validation_failed    well-formed but invalid values
//	503 storage_unavailable  storage failed after retries
//	500 internal             anything else
func toResponse(err error) (int, ErrorResponse) {
	var (
		badReq     *badRequestError
		transition *order.InvalidTransitionError
		terminal   *order.AlreadyTerminalError
	)

	switch {
	case errors.As(err, &badReq):
		return http.StatusBadRequest, ErrorResponse{
			Code:    "bad_request",
			Message: err.Error(),
			Details: map[string]any{"param": badReq.param},
		}
	case isActorHeaderMissing(err):
		return http.StatusUnauthorized, ErrorResponse{Code: "unauthenticated", Message: err.Error()}
	case errs.IsValidation(err):
		return http.StatusUnprocessableEntity, ErrorResponse{Code: "validation_failed", Message: err.Error()}
	case errors.As(err, &transition):
		return http.StatusConflict, ErrorResponse{
			Code:    "invalid_transition",
			Message: err.Error(),
			Details: map[string]any{
				"from":    transition.From.String(),
				"to":      transition.To.String(),
				"allowed": statusNames(order.NextStates(transition.From)),
			},
		}
	case errors.As(err, &terminal):
		return http.StatusConflict, ErrorResponse{
			Code:    "already_terminal",
			Message: err.Error(),
			Details: map[string]any{"status": terminal.Current.String()},
		}
	case errs.IsConflict(err):
		return http.StatusConflict, ErrorResponse{Code: "conflict", Message: err.Error()}
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound, ErrorResponse{Code: "not_found", Message: err.Error()}
	case errors.Is(err, errs.ErrOperationIsForbidden):
		return http.StatusForbidden, ErrorResponse{Code: "forbidden", Message: err.Error()}
	case errors.Is(err, errs.ErrStorage):
		return http.StatusServiceUnavailable, ErrorResponse{
			Code:    "storage_unavailable",
			Message: "storage is temporarily unavailable",
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{Code: "internal", Message: "internal error"}
	}
}

func isActorHeaderMissing(err error) bool {
	var required *errs.ValueIsRequiredError
	return errors.As(err, &required) && required.ParamName == HeaderActorID
}

func (s *Server) fail(c echo.Context, err error) error {
	status, body := toResponse(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("route", c.Path()),
			zap.Error(err))
	}
	return c.JSON(status, body)
}
