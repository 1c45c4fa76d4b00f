package helpers

import (
	"encoding/json"
	"errors"
	"net/http"

	"timetableadmin/internal/domain"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeNotFound           = "not_found"
	ErrCodeConflict           = "conflict"
	ErrCodeConfigurationError = "configuration_error"
	ErrCodeBadGateway         = "bad_gateway"
	ErrCodePartialFailure     = "partial_failure"
	ErrCodeInternalError      = "internal_error"
)

// APIError is the error object in the standardized API response envelope.
// Details carries the conflicting rows of a validation rejection.
// swagger:model APIError
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with the given data and error set to nil.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, APIResponse{Data: data})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with data nil and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, APIResponse{Error: &APIError{Code: code, Message: message}})
}

// WriteJSONPartial writes data together with an error object, used when a bulk
// operation finished with some failures.
func WriteJSONPartial(w http.ResponseWriter, statusCode int, data any, code, message string) {
	writeJSON(w, statusCode, APIResponse{Data: data, Error: &APIError{Code: code, Message: message}})
}

// ErrorStatus maps a service error to its HTTP status and error code.
func ErrorStatus(err error) (int, string) {
	var ve *domain.ValidationError
	var ce *domain.ConfigurationError
	var te *domain.TransportError
	switch {
	case errors.As(err, &ve):
		return http.StatusConflict, ErrCodeConflict
	case errors.As(err, &ce):
		return http.StatusUnprocessableEntity, ErrCodeConfigurationError
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrCodeBadRequest
	case errors.As(err, &te):
		return http.StatusBadGateway, ErrCodeBadGateway
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// WriteDomainError writes err using ErrorStatus. Validation rejections carry their
// conflicting rows in error.details.
func WriteDomainError(w http.ResponseWriter, err error) {
	status, code := ErrorStatus(err)
	apiErr := &APIError{Code: code, Message: err.Error()}
	var ve *domain.ValidationError
	if errors.As(err, &ve) && len(ve.Conflicts) > 0 {
		apiErr.Details = ve.Conflicts
	}
	writeJSON(w, status, APIResponse{Error: apiErr})
}

func writeJSON(w http.ResponseWriter, statusCode int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
