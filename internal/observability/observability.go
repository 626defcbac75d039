package observability

import (
	"context"
	"os"
	"strings"

	"github.com/warelane/warelane/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("observability",
	fx.Provide(NewLogger),
	fx.Invoke(SetupTracing),
)

// NewLogger builds the process logger. Production gets JSON at info level,
// everything else gets the development console encoder.
func NewLogger() (*zap.Logger, error) {
	env := zap.NewDevelopmentConfig()
	if isProductionEnv() {
		env = zap.NewProductionConfig()
	}
	return env.Build()
}

func isProductionEnv() bool {
	// The logger is built before config loads, so peek at the raw env var.
	return strings.EqualFold(os.Getenv("WARELANE_ENVIRONMENT"), "production")
}

// SetupTracing installs a global OTLP/HTTP tracer provider and tears it down
// on shutdown. Disabled tracing leaves the default no-op provider in place.
func SetupTracing(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) error {
	if !cfg.Tracing.Enabled {
		return nil
	}

	ctx := context.Background()
	opts := []otlptracehttp.Option{otlptracehttp.WithInsecure()}
	if cfg.Tracing.OTLPEndpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.Tracing.OTLPEndpoint))
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.Tracing.ServiceName),
			semconv.DeploymentEnvironmentKey.String(cfg.Environment),
		),
	)
	if err != nil {
		return err
	}

	sampler := sdktrace.TraceIDRatioBased(cfg.Tracing.SampleRatio)
	if cfg.Tracing.SampleRatio >= 1 {
		sampler = sdktrace.AlwaysSample()
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down tracer provider")
			return provider.Shutdown(ctx)
		},
	})
	return nil
}
