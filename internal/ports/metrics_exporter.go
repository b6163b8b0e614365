package ports

import (
	"context"
	"time"
)

// TelemetryExporter exports session telemetry to an external observability
// system.
type TelemetryExporter interface {
	// ExportSessionEnded exports telemetry for a session that reached a
	// terminal status.
	ExportSessionEnded(ctx context.Context, t *SessionTelemetry) error
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}

// SessionTelemetry is the flattened view of a finished session handed to the
// exporter.
type SessionTelemetry struct {
	SessionID     string
	FeatureID     string
	Scope         string
	Status        string
	WorkType      *string
	ActiveSeconds int64
	SegmentCount  int64
	Satisfaction  *int64
	StartedAt     time.Time
	EndedAt       time.Time
}
