package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yashraj9595/zyntherraa/order/internal/service/errs"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{errs.Validationf("bad"), http.StatusBadRequest, "validation_error"},
		{errs.NotFoundf("order %s", "o-1"), http.StatusNotFound, "not_found"},
		{errs.Authorizationf("admin only"), http.StatusUnauthorized, "unauthorized"},
		{fmt.Errorf("insert: %w", errs.ErrDuplicateKey), http.StatusConflict, "duplicate_key"},
		{fmt.Errorf("update: %w", errs.ErrConcurrentModification), http.StatusConflict, "concurrent_modification"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		status, code := Status(tt.err)
		if status != tt.wantStatus || code != tt.wantCode {
			t.Errorf("Status(%v) = %d %q, want %d %q", tt.err, status, code, tt.wantStatus, tt.wantCode)
		}
	}
}

func TestErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil), errors.New("pq: password leaked"))

	var body ErrorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if rec.Code != http.StatusInternalServerError || body.Error != "internal_error" || body.Message != "Internal Server Error" {
		t.Errorf("got %d %+v", rec.Code, body)
	}
}
