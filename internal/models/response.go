package models

import (
	"errors"
	"net/http"
)

// Response is the uniform envelope produced by every public feed operation.
// Success and failure are both plain return values so the transport layer can
// map them to wire responses without inspecting error types.
type Response struct {
	Failed     bool   `json:"failed"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

// Success builds a non-failed envelope. A nil payload is valid only for
// operations with no natural payload (e.g. deletion).
func Success(status int, message string, data any) *Response {
	return &Response{
		Failed:     false,
		StatusCode: status,
		Message:    message,
		Data:       data,
	}
}

// Failure builds a failed envelope from err: AppError codes map to their
// HTTP-equivalent status, anything else is a 500 with the underlying message
// passed through.
func Failure(err error) *Response {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &Response{
			Failed:     true,
			StatusCode: appErr.HTTPStatus(),
			Message:    appErr.Message,
			Data:       nil,
		}
	}
	return &Response{
		Failed:     true,
		StatusCode: http.StatusInternalServerError,
		Message:    err.Error(),
		Data:       nil,
	}
}
