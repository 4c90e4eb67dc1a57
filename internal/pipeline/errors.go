package pipeline

import (
	"errors"
	"net/http"

	"github.com/furnicam/furnicam/internal/camerr"
	"github.com/furnicam/furnicam/internal/jobs"
)

// APIError is the JSON error envelope returned to the gateway
// collaborator, grounded on mbflow's rest.APIError
// (code/message/httpStatus triple).
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string { return e.Message }

func newAPIError(code, message string, status int) *APIError {
	return &APIError{Code: code, Message: message, HTTPStatus: status}
}

// translateError maps a core error into the HTTP status the gateway
// should relay, classifying camerr's taxonomy the way the worker
// classifies it for retry decisions — InvalidInput/InvalidMachining
// become 400s, DependencyMissing a 424, Transient a 503, not-found a 404,
// everything else a 500 (the API layer never sees internal exceptions per
// spec.md §7; it only sees classified errors or not-found).
func translateError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, jobs.ErrNotFound) {
		return newAPIError("NOT_FOUND", "job not found", http.StatusNotFound)
	}

	switch camerr.ClassOf(err) {
	case camerr.ClassInvalidInput:
		return newAPIError("INVALID_INPUT", err.Error(), http.StatusBadRequest)
	case camerr.ClassInvalidMachining:
		return newAPIError("INVALID_MACHINING", err.Error(), http.StatusBadRequest)
	case camerr.ClassDependencyMissing:
		return newAPIError("DEPENDENCY_MISSING", err.Error(), http.StatusFailedDependency)
	case camerr.ClassTransient:
		return newAPIError("TRANSIENT", err.Error(), http.StatusServiceUnavailable)
	default:
		return newAPIError("INTERNAL_ERROR", "internal error", http.StatusInternalServerError)
	}
}
