// Package observability wires an OpenTelemetry tracer provider around
// the claim/dispatch/solve path, grounded on the teacher's
// internal/observability/otel.go. This repo only ships the stdout
// exporter: no OTLP collector endpoint is part of this system's
// deployment shape, so otlptracehttp (which the teacher pulls in for
// its own collector integration) has no home here — see DESIGN.md.
package observability

import (
	"context"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/shopfloor-ops/shopcore/internal/platform/envutil"
	"github.com/shopfloor-ops/shopcore/internal/platform/logger"
)

var (
	once     sync.Once
	shutdown func(context.Context) error
)

// Init installs a global TracerProvider sampling at OTEL_SAMPLER_RATIO
// (default 0.1) and exporting to stdout. Returns a shutdown func to
// flush on process exit.
func Init(ctx context.Context, log *logger.Logger, serviceName string) func(context.Context) error {
	once.Do(func() {
		res, err := resource.New(ctx, resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			attribute.String("service.component", serviceName),
		))
		if err != nil {
			log.Warn("otel resource init failed (continuing)", "error", err)
		}

		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			log.Warn("otel exporter init failed, tracing disabled", "error", err)
			shutdown = func(context.Context) error { return nil }
			return
		}

		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio()))),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		shutdown = tp.Shutdown
		log.Info("otel tracing initialized", "service", serviceName)
	})
	return shutdown
}

func sampleRatio() float64 {
	v := envutil.String("OTEL_SAMPLER_RATIO", "")
	if v == "" {
		return 0.1
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0.1
	}
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Tracer returns the named tracer from the global provider — a thin
// passthrough kept here so callers never import go.opentelemetry.io/otel
// directly.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
