package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"worktrack/internal/ports"
)

const (
	serviceName    = "worktrack"
	serviceVersion = "1.0.0"
)

// Exporter exports session telemetry to an OTEL Collector.
type Exporter struct {
	provider      *sdkmetric.MeterProvider
	meter         metric.Meter
	sessionsTotal metric.Int64Counter
	activeSecs    metric.Int64Histogram
	segmentsHist  metric.Int64Histogram
	satisfaction  metric.Int64Histogram
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	sessionsTotal, err := meter.Int64Counter(
		"worktrack_sessions_total",
		metric.WithDescription("Total number of finished work sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sessions counter: %w", err)
	}

	activeSecs, err := meter.Int64Histogram(
		"worktrack_session_active_seconds",
		metric.WithDescription("Accumulated active time per session"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating active seconds histogram: %w", err)
	}

	segmentsHist, err := meter.Int64Histogram(
		"worktrack_session_segments",
		metric.WithDescription("Number of work segments per session"),
		metric.WithUnit("{segment}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating segments histogram: %w", err)
	}

	satisfaction, err := meter.Int64Histogram(
		"worktrack_session_satisfaction",
		metric.WithDescription("Self-reported satisfaction rating per session"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating satisfaction histogram: %w", err)
	}

	return &Exporter{
		provider:      provider,
		meter:         meter,
		sessionsTotal: sessionsTotal,
		activeSecs:    activeSecs,
		segmentsHist:  segmentsHist,
		satisfaction:  satisfaction,
	}, nil
}

// ExportSessionEnded exports telemetry for a session that reached a terminal
// status.
func (e *Exporter) ExportSessionEnded(ctx context.Context, t *ports.SessionTelemetry) error {
	attrs := []attribute.KeyValue{
		attribute.String("scope", t.Scope),
		attribute.String("status", t.Status),
	}
	if t.WorkType != nil {
		attrs = append(attrs, attribute.String("work_type", *t.WorkType))
	}

	opt := metric.WithAttributes(attrs...)

	e.sessionsTotal.Add(ctx, 1, opt)
	e.activeSecs.Record(ctx, t.ActiveSeconds, opt)
	e.segmentsHist.Record(ctx, t.SegmentCount, opt)
	if t.Satisfaction != nil {
		e.satisfaction.Record(ctx, *t.Satisfaction, opt)
	}

	return nil
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
