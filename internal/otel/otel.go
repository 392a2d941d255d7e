package otel

import (
	"context"
	"log/slog"

	"github.com/spf13/viper"
	"github.com/yashraj9595/zyntherraa/order/internal/jaeger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

type OtelController struct {
	traceProvider *sdktrace.TracerProvider
}

// MustInitOtel installs a tracer provider exporting to Jaeger.
// With otel.enabled set to false the global no-op provider is left in place.
func MustInitOtel(serviceName string) *OtelController {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	if !viper.GetBool("otel.enabled") {
		slog.Info("Tracing disabled")

		return &OtelController{}
	}

	jaegerExporter := jaeger.MustNewJaeger()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(jaegerExporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)

	otel.SetTracerProvider(tp)

	return &OtelController{
		traceProvider: tp,
	}
}

func (o *OtelController) Shutdown(ctx context.Context) error {
	if o.traceProvider == nil {
		return nil
	}

	return o.traceProvider.Shutdown(ctx)
}
