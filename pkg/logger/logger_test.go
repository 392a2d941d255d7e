package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestContextHandlerAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&Options{Output: &buf})).With("component", "test")

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	log.InfoContext(ctx, "Hello")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if rec["request_id"] != "req-42" {
		t.Errorf("request_id = %v, want req-42", rec["request_id"])
	}
	if rec["component"] != "test" {
		t.Errorf("component = %v, want test", rec["component"])
	}
}

func TestLoggerMiddlewareLogsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&Options{Output: &buf}))

	h := NewLoggerMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if rec["status"] != float64(http.StatusTeapot) {
		t.Errorf("status = %v, want %d", rec["status"], http.StatusTeapot)
	}
	if rec["path"] != "/api/orders" {
		t.Errorf("path = %v", rec["path"])
	}
}
