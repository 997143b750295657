package observability

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Настройки экспорта спанов из окружения
type TraceConfig struct {
	Endpoint string
	// доля трассировок, 0..1
	Ratio float64
}

func TraceConfigFromEnv() (TraceConfig, error) {
	cfg := TraceConfig{Endpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"), Ratio: 1}
	if cfg.Endpoint == "" {
		return cfg, fmt.Errorf("env OTEL_EXPORTER_OTLP_ENDPOINT is not set")
	}
	if v := os.Getenv("SKN_TRACE_RATIO"); v != "" {
		ratio, err := strconv.ParseFloat(v, 64)
		if err != nil || ratio < 0 || ratio > 1 {
			return cfg, fmt.Errorf("env SKN_TRACE_RATIO must be a number in [0, 1], got %q", v)
		}
		cfg.Ratio = ratio
	}
	return cfg, nil
}

// Провайдер трассировки с OTLP экспортером. При ошибке спаны уходят в noop провайдер,
// shutdown можно вызывать всегда
func InitTracer(ctx context.Context, service string, logger *zap.Logger) (shutdown func(), err error) {
	shutdown = func() {}
	cfg, err := TraceConfigFromEnv()
	if err != nil {
		return shutdown, err
	}

	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return shutdown, fmt.Errorf("otlp exporter: %w", err)
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(service)),
		resource.WithHost(),
	)
	if err != nil {
		return shutdown, fmt.Errorf("otel resource: %w", err)
	}

	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(e error) {
		logger.Warn("otel", zap.Error(e))
	}))
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp,
			sdktrace.WithMaxQueueSize(2048),
			sdktrace.WithBatchTimeout(200*time.Millisecond),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.Ratio))),
	)
	otel.SetTracerProvider(tp)
	logger.Info("tracing enabled",
		zap.String("service", service),
		zap.String("endpoint", cfg.Endpoint),
		zap.Float64("ratio", cfg.Ratio),
	)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("otel shutdown", zap.Error(err))
		}
	}, nil
}
