package api

import (
	"errors"
	"net/http"

	"daybrief/pkg/daybrief"
)

// Response represents a successful API response with unified format.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse represents an error API response with structured information.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
}

// writeSuccess writes a successful response with data.
func writeSuccess(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, Response{
		Code: 0,
		Data: data,
	})
}

// writeSuccessWithMessage writes a successful response with data and message.
func writeSuccessWithMessage(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// writeErrorResponse writes an error response, mapping structured business
// errors to their HTTP status.
func writeErrorResponse(w http.ResponseWriter, httpStatus int, err error) {
	response := ErrorResponse{
		Code:    httpStatus,
		Message: err.Error(),
	}

	var dbErr *daybrief.Error
	if errors.As(err, &dbErr) {
		response.ErrorCode = string(dbErr.Code)
		// Handlers that pass the generic 500 defer to the code mapping;
		// an explicit status wins.
		if httpStatus == http.StatusInternalServerError {
			httpStatus = mapErrorCodeToHTTPStatus(dbErr.Code)
		}
		response.Code = httpStatus
	}

	writeJSON(w, httpStatus, response)
}

// mapErrorCodeToHTTPStatus maps business error codes to HTTP status codes.
func mapErrorCodeToHTTPStatus(code daybrief.ErrorCode) int {
	switch code {
	case daybrief.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case daybrief.ErrCodeNotFound:
		return http.StatusNotFound
	case daybrief.ErrCodeQuota:
		return http.StatusTooManyRequests
	case daybrief.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case daybrief.ErrCodeCompletion:
		return http.StatusBadGateway
	case daybrief.ErrCodeStore, daybrief.ErrCodeDatabase, daybrief.ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
