package errx

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// HTTPErrorResponse represents a standard HTTP error response
type HTTPErrorResponse struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Type       string         `json:"type"`
	Details    map[string]any `json:"details,omitempty"`
	StatusCode int            `json:"status_code"`
	RequestID  string         `json:"request_id,omitempty"`
}

// ToHTTPResponse converts an Error to an HTTPErrorResponse
func (e *Error) ToHTTPResponse() HTTPErrorResponse {
	return HTTPErrorResponse{
		Code:       e.Code,
		Message:    e.Message,
		Type:       string(e.Type),
		Details:    e.Details,
		StatusCode: e.HTTPStatus,
	}
}

// Respond writes the error as a JSON response on a fiber context
func (e *Error) Respond(c *fiber.Ctx) error {
	body := e.ToHTTPResponse()
	body.RequestID = c.GetRespHeader(fiber.HeaderXRequestID, c.Get(fiber.HeaderXRequestID))
	return c.Status(e.HTTPStatus).JSON(body)
}

// FiberErrorHandler converts any error returned by a route into a standard
// response. Use it as fiber.Config.ErrorHandler.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return New(fe.Message, statusToType(fe.Code)).
			WithDetail("status", fe.Code).
			respondWithStatus(c, fe.Code)
	}

	var customErr *Error
	if errors.As(err, &customErr) {
		return customErr.Respond(c)
	}

	return New("An unexpected error occurred", TypeInternal).Respond(c)
}

func (e *Error) respondWithStatus(c *fiber.Ctx, status int) error {
	e.HTTPStatus = status
	return e.Respond(c)
}

func statusToType(status int) Type {
	switch {
	case status == fiber.StatusNotFound:
		return TypeNotFound
	case status == fiber.StatusConflict:
		return TypeConflict
	case status >= 400 && status < 500:
		return TypeValidation
	default:
		return TypeInternal
	}
}
