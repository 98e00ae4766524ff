package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/readify/readify/pkg/apperrors"
)

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response with the given status code
func WriteError(w http.ResponseWriter, status int, err error) {
	WriteErrorMessage(w, status, err.Error())
}

// WriteErrorMessage writes a JSON error response with a custom message
func WriteErrorMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// StatusForKind maps an error kind onto the HTTP status it is answered with
func StatusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindInvalidInput,
		apperrors.KindInvalidCredentials,
		apperrors.KindNotFound,
		apperrors.KindConflict:
		return http.StatusBadRequest
	case apperrors.KindUnauthorized,
		apperrors.KindTokenExpired,
		apperrors.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.KindCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteAppError answers a service failure with the status of its kind and
// its user-facing message. Internal causes never reach the body.
func WriteAppError(w http.ResponseWriter, err error) {
	kind := apperrors.KindOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusForKind(kind))
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: apperrors.MessageOf(err),
		Kind:  kind.String(),
	})
}

// WriteInternalError writes an internal server error response (500 Internal Server Error)
func WriteInternalError(w http.ResponseWriter, err error) {
	WriteError(w, http.StatusInternalServerError, err)
}

// WriteCreated writes a successful creation response (201 Created) with JSON data
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, data)
}

// WriteSuccess writes a successful response (200 OK) with JSON data
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteBadRequest writes a bad request error response (400 Bad Request)
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusBadRequest, message)
}

// WriteUnauthorized writes an unauthorized error response (401 Unauthorized)
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusUnauthorized, message)
}

// WriteTooManyRequests writes a rate limit error response (429 Too Many Requests)
func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusTooManyRequests, message)
}

// WriteServiceUnavailable writes a service unavailable error response (503 Service Unavailable)
func WriteServiceUnavailable(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusServiceUnavailable, message)
}
