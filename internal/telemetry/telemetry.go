// Package telemetry installs the OpenTelemetry tracer provider used by the
// processing client.
//
// The exporter is OTLP over HTTP and is configured through the standard
// OTEL_EXPORTER_OTLP_* environment variables.
//
// Import rules:
//   - CAN import: internal/config, internal/errors, std lib
//   - MUST NOT import: internal/client, internal/capture, internal/cli
package telemetry

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/mrz1836/minutes/internal/config"
	"github.com/mrz1836/minutes/internal/errors"
)

// ShutdownFunc flushes pending spans and releases the exporter.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Init installs a global SDK tracer provider when telemetry is enabled.
// When disabled the global no-op provider is left in place.
func Init(ctx context.Context, cfg config.TelemetryConfig) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return noopShutdown, nil
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "creating OTLP exporter")
	}

	tp := NewProvider(exporter, cfg.ServiceName)
	otel.SetTracerProvider(tp)

	zerolog.Ctx(ctx).Debug().
		Str("component", "telemetry").
		Str("service", cfg.ServiceName).
		Msg("trace export enabled")

	return tp.Shutdown, nil
}

// NewProvider builds a batching tracer provider for exporter tagged with serviceName.
func NewProvider(exporter sdktrace.SpanExporter, serviceName string) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			"",
			attribute.String("service.name", serviceName),
		)),
	)
}
