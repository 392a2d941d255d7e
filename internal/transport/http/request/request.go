package request

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/caller"
	"github.com/yashraj9595/zyntherraa/order/pkg/http/middleware/auth"
)

const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// Caller returns the identity attached by the auth middleware.
// An unauthenticated request yields the zero Caller, which the service rejects.
func Caller(r *http.Request) caller.Caller {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		return caller.Caller{}
	}

	return caller.Caller{ID: id.Subject, Role: caller.Role(id.Role)}
}

// OrderID returns the {id} path parameter.
func OrderID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// ExpectedVersion reads the If-Match header. Zero means the client did not send one.
func ExpectedVersion(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get("If-Match"))
	if raw == "" || raw == "*" {
		return 0, nil
	}
	raw = strings.TrimPrefix(raw, "W/")
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("If-Match must carry an order version, got %q", r.Header.Get("If-Match"))
	}

	return v, nil
}

// Decode reads a JSON body into v and validates its struct tags.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return err
	}

	return nil
}
