package otel

import (
	"context"

	"worktrack/internal/ports"
)

// NoOpExporter is a telemetry exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) ExportSessionEnded(ctx context.Context, t *ports.SessionTelemetry) error {
	return nil
}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}
