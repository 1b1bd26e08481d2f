package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/R3E-Network/item_service/internal/app/domain/item"
)

// HTTPError is an application-raised failure whose status and message are
// passed through to the client unchanged.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError builds an HTTPError. An empty message defaults to the status
// text.
func NewHTTPError(status int, message string) *HTTPError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &HTTPError{Status: status, Message: message}
}

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

type validationResponse struct {
	Status  string           `json:"status"`
	Error   string           `json:"error"`
	Details []item.Violation `json:"details"`
}

// writeError is the single translation point from internal failures to the
// JSON error envelope. Unknown errors are logged and reported as 500 without
// their cause.
func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *item.ValidationError
		httpErr       *HTTPError
	)

	switch {
	case errors.As(err, &validationErr):
		details := validationErr.Violations
		if details == nil {
			details = []item.Violation{}
		}
		writeJSON(w, http.StatusBadRequest, validationResponse{
			Status:  "error",
			Error:   "Validation failed",
			Details: details,
		})
	case errors.As(err, &httpErr):
		writeJSON(w, httpErr.Status, errorResponse{Status: "error", Error: httpErr.Message})
	default:
		h.log.WithError(err).
			WithField("request_id", RequestIDFromContext(r.Context())).
			WithField("method", r.Method).
			WithField("path", r.URL.Path).
			Error("unexpected error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Status: "error",
			Error:  http.StatusText(http.StatusInternalServerError),
		})
	}
}

func (h *handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, NewHTTPError(http.StatusNotFound, ""))
}

func (h *handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, NewHTTPError(http.StatusMethodNotAllowed, ""))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
