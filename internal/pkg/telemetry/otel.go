package telemetry

import (
	"context"
	"fmt"

	"svcman/internal/pkg/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const instrumentationName = "svcman"

// Reporter OTEL上报器
type Reporter struct {
	tracer   oteltrace.Tracer
	provider *trace.TracerProvider
	enabled  bool
}

// NewReporter 创建OTEL上报器; 未启用时返回空实现, 所有方法均为 no-op
func NewReporter(ctx context.Context, cfg config.TelemetryConfig, version string) (*Reporter, error) {
	if !cfg.Enabled {
		return &Reporter{tracer: otel.Tracer(instrumentationName)}, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithHeaders(cfg.Headers)}
	if cfg.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceVersionKey.String(version),
	)

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return &Reporter{
		tracer:   tp.Tracer(instrumentationName),
		provider: tp,
		enabled:  true,
	}, nil
}

// Tracer returns the tracer used for command and action spans.
func (r *Reporter) Tracer() oteltrace.Tracer {
	if r == nil || r.tracer == nil {
		return otel.Tracer(instrumentationName)
	}
	return r.tracer
}

// ReportAction 上报一次服务操作
func (r *Reporter) ReportAction(ctx context.Context, unit, action string, err error) {
	if r == nil || !r.enabled {
		return
	}

	_, span := r.tracer.Start(ctx, fmt.Sprintf("service.%s", action))
	defer span.End()

	span.SetAttributes(
		attribute.String("service.unit", unit),
		attribute.String("service.action", action),
		attribute.String("component", "systemd"),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// Close 关闭OTEL上报器
func (r *Reporter) Close(ctx context.Context) error {
	if r == nil || !r.enabled {
		return nil
	}
	return r.provider.Shutdown(ctx)
}
