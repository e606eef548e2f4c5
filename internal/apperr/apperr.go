package apperr

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/moneyon/moneyon_server/internal/identity"
)

// Error codes returned to clients.
const (
	CodeDuplicateUser      = "DUPLICATE_USER"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeServerError        = "SERVER_ERROR"
)

// Client-facing messages.
const (
	MessageDuplicateUser      = "User already exists with this mobile number or email"
	MessageInvalidCredentials = "Invalid credentials"
	MessageServerError        = "Server error. Please try again later."
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// HTTPError is an error already mapped to a status and client message.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	// Cause is logged for server errors and never serialized.
	Cause error
}

func (e *HTTPError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error { return e.Cause }

// Response converts e to the wire representation.
func (e *HTTPError) Response() ErrorResponse {
	return ErrorResponse{Message: e.Message, Code: e.Code}
}

// InvalidRequest reports a body that could not be decoded.
func InvalidRequest(cause error) *HTTPError {
	return &HTTPError{StatusCode: http.StatusBadRequest, Message: "Invalid request body", Code: CodeInvalidRequest, Cause: cause}
}

// FromError maps any error to an HTTPError. Unknown errors become a generic
// server error that keeps the original as Cause.
func FromError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, identity.ErrDuplicateUser):
		return &HTTPError{StatusCode: http.StatusBadRequest, Message: MessageDuplicateUser, Code: CodeDuplicateUser}
	case errors.Is(err, identity.ErrInvalidCredentials):
		return &HTTPError{StatusCode: http.StatusBadRequest, Message: MessageInvalidCredentials, Code: CodeInvalidCredentials}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := CodeInvalidRequest
		switch {
		case fiberErr.Code == http.StatusTooManyRequests:
			code = CodeTooManyRequests
		case fiberErr.Code >= http.StatusInternalServerError:
			return &HTTPError{StatusCode: fiberErr.Code, Message: MessageServerError, Code: CodeServerError, Cause: err}
		}
		return &HTTPError{StatusCode: fiberErr.Code, Message: fiberErr.Message, Code: code}
	}

	return &HTTPError{StatusCode: http.StatusInternalServerError, Message: MessageServerError, Code: CodeServerError, Cause: err}
}
