package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configure NewHandler. A nil *Options logs JSON at info level to stdout.
type Options struct {
	Level string
	// File, when set, also writes to a size-rotated file.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Output     io.Writer
}

// NewHandler builds a JSON handler that adds trace and request ids from the context.
func NewHandler(opts *Options) slog.Handler {
	if opts == nil {
		opts = &Options{}
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.File != "" {
		out = io.MultiWriter(out, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    valueOr(opts.MaxSizeMB, 50),
			MaxBackups: valueOr(opts.MaxBackups, 3),
			MaxAge:     valueOr(opts.MaxAgeDays, 7),
		})
	}

	h := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: ParseLevel(opts.Level)})

	return NewContextHandler(h)
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func valueOr(v, def int) int {
	if v > 0 {
		return v
	}

	return def
}

// ContextHandler decorates records with trace_id, span_id and request_id found in the context.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	spanContext := trace.SpanContextFromContext(ctx)
	if spanContext.HasTraceID() {
		r.AddAttrs(slog.String("trace_id", spanContext.TraceID().String()))
	}
	if spanContext.HasSpanID() {
		r.AddAttrs(slog.String("span_id", spanContext.SpanID().String()))
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		r.AddAttrs(slog.String("request_id", reqID))
	}

	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}
