package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yashraj9595/zyntherraa/order/internal/service/errs"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/order"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Error sending response", "path", r.URL.Path, "error", err)
	}
}

// Order writes an order and exposes its version as the ETag.
func Order(w http.ResponseWriter, r *http.Request, status int, o *order.Order) {
	w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(o.Version, 10)))
	JSON(w, r, status, o)
}

// Error maps a service error to its HTTP status and writes it.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, code := Status(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Error handling request", "path", r.URL.Path, "error", err)
		JSON(w, r, status, ErrorBody{Error: code, Message: http.StatusText(status)})

		return
	}

	slog.WarnContext(r.Context(), "Request rejected", "path", r.URL.Path, "status", status, "error", err)
	JSON(w, r, status, ErrorBody{Error: code, Message: err.Error()})
}

// BadRequest writes a validation error for malformed input.
func BadRequest(w http.ResponseWriter, r *http.Request, err error) {
	slog.WarnContext(r.Context(), "Malformed request", "path", r.URL.Path, "error", err)
	JSON(w, r, http.StatusBadRequest, ErrorBody{Error: "validation_error", Message: err.Error()})
}

// Status returns the HTTP status and error code for err.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, errs.ErrAuthorization):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, errs.ErrDuplicateKey):
		return http.StatusConflict, "duplicate_key"
	case errors.Is(err, errs.ErrConcurrentModification):
		return http.StatusConflict, "concurrent_modification"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
