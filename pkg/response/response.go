package response

import (
	"errors"

	"github.com/dootask/asset-hub-sub002/pkg/apperror"
)

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Code       string      `json:"code,omitempty"` // apperror code when the failure is typed
}

// Page is the data payload of paginated list responses
type Page struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// FromError builds an error response whose status follows the error's code.
// Untyped and internal errors only expose their top-level message.
func FromError(err error) Response {
	statusCode := apperror.HTTPStatus(err)
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		return Error(statusCode, "internal server error")
	}
	msg := appErr.Message
	if appErr.Code != apperror.CodeInternal && appErr.Err != nil {
		msg = appErr.Error()
	}
	resp := Error(statusCode, msg)
	if appErr.Code != apperror.CodeInternal {
		resp.Code = string(appErr.Code)
	}
	return resp
}
