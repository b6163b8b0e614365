package ports

import (
	"context"
	"time"

	"worktrack/internal/domain"
)

// SessionRepository stores work sessions. Sessions are plain rows; the
// lifecycle state machine lives in the tracker service on top of these
// operations.
type SessionRepository interface {
	Insert(ctx context.Context, session *domain.WorkSession) error
	GetByID(ctx context.Context, id string) (*domain.WorkSession, error)
	// GetActiveByScope returns the most-recently-updated session with
	// status active or paused for the scope, or nil when there is none.
	GetActiveByScope(ctx context.Context, scope string) (*domain.WorkSession, error)
	Update(ctx context.Context, session *domain.WorkSession) error
	List(ctx context.Context, opts ListSessionsOptions) ([]*domain.WorkSession, error)
}

// ListSessionsOptions filters listSessions. Nil filters match everything;
// Limit 0 means the default page size.
type ListSessionsOptions struct {
	Scope  *string
	Status *string
	Limit  int
}

// SegmentRepository stores the time segments of a session.
type SegmentRepository interface {
	Insert(ctx context.Context, segment *domain.WorkSegment) error
	// GetOpen returns the session's open segment (ended_at null), or nil.
	GetOpen(ctx context.Context, sessionID string) (*domain.WorkSegment, error)
	// Close stamps ended_at and trigger_end on a segment.
	Close(ctx context.Context, segmentID string, endedAt time.Time, triggerEnd string) error
	// ListBySessionID returns segments in ascending start order.
	ListBySessionID(ctx context.Context, sessionID string) ([]*domain.WorkSegment, error)
}

// MetricsRepository stores per-session metrics rows.
type MetricsRepository interface {
	Insert(ctx context.Context, metrics *domain.WorkMetrics) error
	// ListBySessionID returns metrics rows in ascending recorded order.
	ListBySessionID(ctx context.Context, sessionID string) ([]*domain.WorkMetrics, error)
}

// HistoryRepository is the estimator's read-only view of completed work.
type HistoryRepository interface {
	// ListCompleted returns up to limit completed sessions ordered by
	// updated_at descending, each joined with its most recently recorded
	// metrics row.
	ListCompleted(ctx context.Context, limit int) ([]domain.CompletedSession, error)
}
