// Package tracker implements the work session lifecycle: the
// active/paused/completed/abandoned state machine and the active-time
// accounting across pause/resume cycles.
package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"worktrack/internal/domain"
	"worktrack/internal/ports"
)

// Service coordinates the session, segment and metrics repositories. All
// operations are synchronous local reads/writes; the multi-statement ones are
// not wrapped in a transaction, so a crash mid-operation can leave partial
// state.
type Service struct {
	sessions ports.SessionRepository
	segments ports.SegmentRepository
	metrics  ports.MetricsRepository
	exporter ports.TelemetryExporter
	log      ports.Logger

	now func() time.Time
}

func NewService(
	sessions ports.SessionRepository,
	segments ports.SegmentRepository,
	metrics ports.MetricsRepository,
	exporter ports.TelemetryExporter,
	log ports.Logger,
) *Service {
	return &Service{
		sessions: sessions,
		segments: segments,
		metrics:  metrics,
		exporter: exporter,
		log:      log,
		now:      time.Now,
	}
}

// StartInput describes a new session.
type StartInput struct {
	FeatureID   string
	Description string
	Scope       string
	WorkType    *string
}

// MetricsInput describes one metrics row to record.
type MetricsInput struct {
	FilesTouched     int64
	LinesAdded       int64
	LinesRemoved     int64
	ComplexityRating *int64
	WorkType         *string
}

// CompleteInput carries the optional completion payload.
type CompleteInput struct {
	Satisfaction *int64
	Notes        *string
	Metrics      *MetricsInput
}

// Start creates a session in status active with one open segment and, when a
// work type is given, an initial metrics row. It performs no uniqueness
// check: callers must consult ActiveSession first, or two sessions will
// coexist in the same scope.
func (s *Service) Start(ctx context.Context, in StartInput) (*domain.WorkSession, error) {
	if in.FeatureID == "" {
		return nil, &domain.ValidationError{Field: "feature_id", Reason: "must not be empty"}
	}
	if in.WorkType != nil && !domain.ValidWorkType(*in.WorkType) {
		return nil, &domain.ValidationError{Field: "work_type", Reason: "unknown work type " + *in.WorkType}
	}
	scope := in.Scope
	if scope == "" {
		scope = "global"
	}

	now := s.now().UTC()
	session := &domain.WorkSession{
		ID:                 uuid.New().String(),
		FeatureID:          in.FeatureID,
		FeatureDescription: in.Description,
		Scope:              scope,
		Status:             domain.StatusActive,
		StartedAt:          now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.sessions.Insert(ctx, session); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	segment := &domain.WorkSegment{
		ID:           uuid.New().String(),
		SessionID:    session.ID,
		StartedAt:    now,
		TriggerStart: domain.TriggerSessionStart,
	}
	if err := s.segments.Insert(ctx, segment); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	if in.WorkType != nil {
		row := &domain.WorkMetrics{
			ID:         uuid.New().String(),
			SessionID:  session.ID,
			WorkType:   in.WorkType,
			RecordedAt: now,
		}
		if err := s.metrics.Insert(ctx, row); err != nil {
			return nil, fmt.Errorf("start session: %w", err)
		}
	}

	s.log.Debug(fmt.Sprintf("Started session %s (%s) in scope %s", session.ID, in.FeatureID, scope))
	return session, nil
}

// Get returns a session by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.WorkSession, error) {
	return s.sessions.GetByID(ctx, id)
}

// ActiveSession returns the scope's active or paused session, or nil when
// there is none. When the unenforced uniqueness gap has let several
// accumulate, the most recently updated one is returned.
func (s *Service) ActiveSession(ctx context.Context, scope string) (*domain.WorkSession, error) {
	if scope == "" {
		scope = "global"
	}
	return s.sessions.GetActiveByScope(ctx, scope)
}

// Segments returns a session's segments in ascending start order.
func (s *Service) Segments(ctx context.Context, sessionID string) ([]*domain.WorkSegment, error) {
	return s.segments.ListBySessionID(ctx, sessionID)
}

// Metrics returns a session's metrics rows in ascending recorded order.
func (s *Service) Metrics(ctx context.Context, sessionID string) ([]*domain.WorkMetrics, error) {
	return s.metrics.ListBySessionID(ctx, sessionID)
}

// List returns sessions ordered by updated_at descending with optional
// scope/status filters.
func (s *Service) List(ctx context.Context, opts ports.ListSessionsOptions) ([]*domain.WorkSession, error) {
	return s.sessions.List(ctx, opts)
}

// Pause closes the open segment with the given reason and recomputes the
// persisted active time from the now fully closed segment set.
func (s *Service) Pause(ctx context.Context, id, reason string) (*domain.WorkSession, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.StatusActive {
		return nil, &domain.InvalidStateError{SessionID: id, Status: session.Status, Op: "pause"}
	}
	if reason == "" {
		reason = domain.TriggerPause
	}

	now := s.now().UTC()
	if err := s.closeOpenSegment(ctx, id, now, reason); err != nil {
		return nil, err
	}
	if err := s.recomputeActiveTime(ctx, session); err != nil {
		return nil, err
	}

	session.Status = domain.StatusPaused
	session.UpdatedAt = now
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("pause session: %w", err)
	}

	s.log.Debug(fmt.Sprintf("Paused session %s after %ds active", id, session.TotalActiveSeconds))
	return session, nil
}

// Resume opens a fresh segment. The persisted active time stays at the value
// computed at the last pause until the next pause or complete.
func (s *Service) Resume(ctx context.Context, id string) (*domain.WorkSession, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.StatusPaused {
		return nil, &domain.InvalidStateError{SessionID: id, Status: session.Status, Op: "resume"}
	}

	now := s.now().UTC()
	segment := &domain.WorkSegment{
		ID:           uuid.New().String(),
		SessionID:    id,
		StartedAt:    now,
		TriggerStart: domain.TriggerResume,
	}
	if err := s.segments.Insert(ctx, segment); err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}

	session.Status = domain.StatusActive
	session.UpdatedAt = now
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}

	s.log.Debug(fmt.Sprintf("Resumed session %s", id))
	return session, nil
}

// Complete finalizes a session from any non-completed status: closes the open
// segment if one exists, recomputes active time, applies the optional
// satisfaction/notes/metrics payload and stamps completed_at.
func (s *Service) Complete(ctx context.Context, id string, in CompleteInput) (*domain.WorkSession, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status == domain.StatusCompleted {
		return nil, &domain.InvalidStateError{SessionID: id, Status: session.Status, Op: "complete"}
	}
	if in.Satisfaction != nil && (*in.Satisfaction < 1 || *in.Satisfaction > 5) {
		return nil, &domain.ValidationError{Field: "satisfaction", Reason: "must be between 1 and 5"}
	}

	now := s.now().UTC()

	var row *domain.WorkMetrics
	if in.Metrics != nil && in.Metrics.WorkType != nil {
		row = &domain.WorkMetrics{
			ID:               uuid.New().String(),
			SessionID:        id,
			FilesTouched:     in.Metrics.FilesTouched,
			LinesAdded:       in.Metrics.LinesAdded,
			LinesRemoved:     in.Metrics.LinesRemoved,
			ComplexityRating: in.Metrics.ComplexityRating,
			WorkType:         in.Metrics.WorkType,
			RecordedAt:       now,
		}
		if err := row.Validate(); err != nil {
			return nil, err
		}
	}

	if err := s.closeOpenSegment(ctx, id, now, domain.TriggerSessionComplete); err != nil {
		return nil, err
	}
	if err := s.recomputeActiveTime(ctx, session); err != nil {
		return nil, err
	}

	if in.Satisfaction != nil {
		session.Satisfaction = in.Satisfaction
	}
	if in.Notes != nil {
		session.Notes = in.Notes
	}
	session.Status = domain.StatusCompleted
	session.CompletedAt = &now
	session.UpdatedAt = now
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("complete session: %w", err)
	}

	if row != nil {
		if err := s.metrics.Insert(ctx, row); err != nil {
			return nil, fmt.Errorf("complete session: %w", err)
		}
	}

	s.exportEnded(ctx, session)
	s.log.Debug(fmt.Sprintf("Completed session %s with %ds active", id, session.TotalActiveSeconds))
	return session, nil
}

// Abandon terminates a session without treating it as done. Valid from any
// non-terminal status.
func (s *Service) Abandon(ctx context.Context, id string, notes *string) (*domain.WorkSession, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Terminal() {
		return nil, &domain.InvalidStateError{SessionID: id, Status: session.Status, Op: "abandon"}
	}

	now := s.now().UTC()
	if err := s.closeOpenSegment(ctx, id, now, domain.TriggerSessionAbandon); err != nil {
		return nil, err
	}
	if err := s.recomputeActiveTime(ctx, session); err != nil {
		return nil, err
	}

	if notes != nil {
		session.Notes = notes
	}
	session.Status = domain.StatusAbandoned
	session.CompletedAt = &now
	session.UpdatedAt = now
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("abandon session: %w", err)
	}

	s.exportEnded(ctx, session)
	s.log.Debug(fmt.Sprintf("Abandoned session %s", id))
	return session, nil
}

// LiveActiveSeconds returns the session's elapsed active time including the
// open segment, computed at read time per the caller contract: the persisted
// total alone undercounts an in-progress session.
func (s *Service) LiveActiveSeconds(ctx context.Context, session *domain.WorkSession) (int64, error) {
	open, err := s.segments.GetOpen(ctx, session.ID)
	if err != nil {
		return 0, err
	}
	return session.LiveActiveSeconds(open, s.now().UTC()), nil
}

func (s *Service) closeOpenSegment(ctx context.Context, sessionID string, endedAt time.Time, trigger string) error {
	open, err := s.segments.GetOpen(ctx, sessionID)
	if err != nil {
		return err
	}
	if open == nil {
		return nil
	}
	if err := s.segments.Close(ctx, open.ID, endedAt, trigger); err != nil {
		return err
	}
	return nil
}

// recomputeActiveTime rederives total_active_seconds from the stored
// segments. Only closed segments contribute.
func (s *Service) recomputeActiveTime(ctx context.Context, session *domain.WorkSession) error {
	segments, err := s.segments.ListBySessionID(ctx, session.ID)
	if err != nil {
		return err
	}
	session.TotalActiveSeconds = domain.SumClosedSeconds(segments)
	return nil
}

// exportEnded ships telemetry for a terminal session. Export failures are
// logged and swallowed: observability must not fail the lifecycle write.
func (s *Service) exportEnded(ctx context.Context, session *domain.WorkSession) {
	segments, err := s.segments.ListBySessionID(ctx, session.ID)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to load segments for telemetry: %v", err))
		return
	}

	var workType *string
	rows, err := s.metrics.ListBySessionID(ctx, session.ID)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to load metrics for telemetry: %v", err))
	} else if len(rows) > 0 {
		workType = rows[len(rows)-1].WorkType
	}

	endedAt := s.now().UTC()
	if session.CompletedAt != nil {
		endedAt = *session.CompletedAt
	}

	t := &ports.SessionTelemetry{
		SessionID:     session.ID,
		FeatureID:     session.FeatureID,
		Scope:         session.Scope,
		Status:        session.Status,
		WorkType:      workType,
		ActiveSeconds: session.TotalActiveSeconds,
		SegmentCount:  int64(len(segments)),
		Satisfaction:  session.Satisfaction,
		StartedAt:     session.StartedAt,
		EndedAt:       endedAt,
	}
	if err := s.exporter.ExportSessionEnded(ctx, t); err != nil {
		s.log.Error(fmt.Sprintf("Failed to export session telemetry: %v", err))
	}
}
