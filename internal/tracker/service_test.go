package tracker

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"worktrack/internal/adapters/logger"
	otelAdapter "worktrack/internal/adapters/otel"
	"worktrack/internal/adapters/turso"
	"worktrack/internal/domain"
	"worktrack/internal/migrate"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T) (*Service, *fakeClock, *sql.DB) {
	t.Helper()

	db, err := sql.Open("libsql", "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	if err := migrate.RunAll(context.Background(), db); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	clock := &fakeClock{now: time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)}
	svc := NewService(
		turso.NewSessionRepository(db),
		turso.NewSegmentRepository(db),
		turso.NewMetricsRepository(db),
		otelAdapter.NewNoOpExporter(),
		logger.Discard{},
	)
	svc.now = clock.Now
	return svc, clock, db
}

func TestStart(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	workType := domain.WorkTypeFeature
	session, err := svc.Start(ctx, StartInput{
		FeatureID:   "AUTH-123",
		Description: "login flow",
		Scope:       "project:x",
		WorkType:    &workType,
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if session.Status != domain.StatusActive {
		t.Errorf("expected active, got %s", session.Status)
	}
	if session.TotalActiveSeconds != 0 {
		t.Errorf("expected zero active seconds, got %d", session.TotalActiveSeconds)
	}

	segments, err := svc.Segments(ctx, session.ID)
	if err != nil {
		t.Fatalf("Segments failed: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("expected exactly one segment, got %d", len(segments))
	}
	if !segments[0].Open() {
		t.Error("expected the segment to be open")
	}
	if segments[0].TriggerStart != domain.TriggerSessionStart {
		t.Errorf("expected trigger_start session_start, got %s", segments[0].TriggerStart)
	}

	metrics, err := svc.Metrics(ctx, session.ID)
	if err != nil {
		t.Fatalf("Metrics failed: %v", err)
	}
	if len(metrics) != 1 || metrics[0].WorkType == nil || *metrics[0].WorkType != domain.WorkTypeFeature {
		t.Errorf("expected one feature metrics row, got %+v", metrics)
	}
}

func TestStart_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	var verr *domain.ValidationError
	if _, err := svc.Start(ctx, StartInput{}); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for empty feature id, got %v", err)
	}

	bad := "sculpting"
	if _, err := svc.Start(ctx, StartInput{FeatureID: "x", WorkType: &bad}); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for unknown work type, got %v", err)
	}
}

func TestStart_DefaultsScopeToGlobal(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, StartInput{FeatureID: "x"})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if session.Scope != "global" {
		t.Errorf("expected scope global, got %s", session.Scope)
	}

	active, err := svc.ActiveSession(ctx, "")
	if err != nil {
		t.Fatalf("ActiveSession failed: %v", err)
	}
	if active == nil || active.ID != session.ID {
		t.Errorf("expected the session back for empty scope, got %+v", active)
	}
}

// The full lifecycle scenario: 600s of work, a pause, a resume, 300s more,
// complete. Active time is 900s and the interruption contributes nothing.
func TestPauseResumeCompleteScenario(t *testing.T) {
	svc, clock, _ := newTestService(t)
	ctx := context.Background()

	workType := domain.WorkTypeFeature
	session, err := svc.Start(ctx, StartInput{FeatureID: "feat-1", Scope: "project:x", WorkType: &workType})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	clock.Advance(600 * time.Second)
	session, err = svc.Pause(ctx, session.ID, "coffee")
	if err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if session.Status != domain.StatusPaused {
		t.Errorf("expected paused, got %s", session.Status)
	}
	if session.TotalActiveSeconds != 600 {
		t.Errorf("expected 600 active seconds after pause, got %d", session.TotalActiveSeconds)
	}

	segments, _ := svc.Segments(ctx, session.ID)
	if len(segments) != 1 || segments[0].Open() {
		t.Fatalf("expected one closed segment after pause, got %+v", segments)
	}
	if segments[0].TriggerEnd == nil || *segments[0].TriggerEnd != "coffee" {
		t.Errorf("expected pause reason recorded, got %v", segments[0].TriggerEnd)
	}

	// A long interruption must not count as active time.
	clock.Advance(2 * time.Hour)
	session, err = svc.Resume(ctx, session.ID)
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if session.Status != domain.StatusActive {
		t.Errorf("expected active after resume, got %s", session.Status)
	}
	// The stored total stays at the last pause's value.
	if session.TotalActiveSeconds != 600 {
		t.Errorf("expected stored total unchanged on resume, got %d", session.TotalActiveSeconds)
	}

	segments, _ = svc.Segments(ctx, session.ID)
	if len(segments) != 2 || !segments[1].Open() {
		t.Fatalf("expected a second open segment after resume, got %+v", segments)
	}
	if segments[1].TriggerStart != domain.TriggerResume {
		t.Errorf("expected trigger_start resume, got %s", segments[1].TriggerStart)
	}

	clock.Advance(300 * time.Second)
	session, err = svc.Complete(ctx, session.ID, CompleteInput{})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if session.Status != domain.StatusCompleted {
		t.Errorf("expected completed, got %s", session.Status)
	}
	if session.TotalActiveSeconds != 900 {
		t.Errorf("expected 900 active seconds, got %d", session.TotalActiveSeconds)
	}
	if session.CompletedAt == nil {
		t.Error("expected completed_at stamped")
	}

	segments, _ = svc.Segments(ctx, session.ID)
	last := segments[len(segments)-1]
	if last.Open() || last.TriggerEnd == nil || *last.TriggerEnd != domain.TriggerSessionComplete {
		t.Errorf("expected final segment closed by session_complete, got %+v", last)
	}

	metrics, _ := svc.Metrics(ctx, session.ID)
	if len(metrics) != 1 || *metrics[0].WorkType != domain.WorkTypeFeature {
		t.Errorf("expected the single start-time metrics row, got %+v", metrics)
	}
}

func TestPause_InvalidState(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, StartInput{FeatureID: "x"})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := svc.Pause(ctx, session.ID, ""); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}

	_, err = svc.Pause(ctx, session.ID, "")
	var stateErr *domain.InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if stateErr.Status != domain.StatusPaused {
		t.Errorf("expected error to carry status paused, got %s", stateErr.Status)
	}
}

func TestResume_InvalidState(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, StartInput{FeatureID: "x"})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	_, err = svc.Resume(ctx, session.ID)
	var stateErr *domain.InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError resuming an active session, got %v", err)
	}
	if stateErr.Status != domain.StatusActive {
		t.Errorf("expected error to carry status active, got %s", stateErr.Status)
	}
}

func TestPause_DefaultReason(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	session, _ := svc.Start(ctx, StartInput{FeatureID: "x"})
	if _, err := svc.Pause(ctx, session.ID, ""); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}

	segments, _ := svc.Segments(ctx, session.ID)
	if segments[0].TriggerEnd == nil || *segments[0].TriggerEnd != domain.TriggerPause {
		t.Errorf("expected default pause trigger, got %v", segments[0].TriggerEnd)
	}
}

func TestComplete_FromPausedWithPayload(t *testing.T) {
	svc, clock, _ := newTestService(t)
	ctx := context.Background()

	session, _ := svc.Start(ctx, StartInput{FeatureID: "x"})
	clock.Advance(120 * time.Second)
	if _, err := svc.Pause(ctx, session.ID, ""); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}

	satisfaction := int64(5)
	notes := "done and dusted"
	complexity := int64(2)
	bugfix := domain.WorkTypeBugfix
	session, err := svc.Complete(ctx, session.ID, CompleteInput{
		Satisfaction: &satisfaction,
		Notes:        &notes,
		Metrics: &MetricsInput{
			FilesTouched:     2,
			LinesAdded:       15,
			ComplexityRating: &complexity,
			WorkType:         &bugfix,
		},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if session.TotalActiveSeconds != 120 {
		t.Errorf("expected 120 active seconds, got %d", session.TotalActiveSeconds)
	}
	if session.Satisfaction == nil || *session.Satisfaction != 5 {
		t.Errorf("expected satisfaction applied, got %v", session.Satisfaction)
	}
	if session.Notes == nil || *session.Notes != notes {
		t.Errorf("expected notes applied, got %v", session.Notes)
	}

	metrics, _ := svc.Metrics(ctx, session.ID)
	if len(metrics) != 1 || *metrics[0].WorkType != domain.WorkTypeBugfix {
		t.Errorf("expected one completion metrics row, got %+v", metrics)
	}
}

func TestComplete_InvalidInputs(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	session, _ := svc.Start(ctx, StartInput{FeatureID: "x"})

	bad := int64(9)
	var verr *domain.ValidationError
	if _, err := svc.Complete(ctx, session.ID, CompleteInput{Satisfaction: &bad}); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for satisfaction 9, got %v", err)
	}

	rating := int64(7)
	workType := domain.WorkTypeDocs
	_, err := svc.Complete(ctx, session.ID, CompleteInput{
		Metrics: &MetricsInput{WorkType: &workType, ComplexityRating: &rating},
	})
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for complexity 7, got %v", err)
	}

	// The failed attempts must not have finalized the session.
	if _, err := svc.Complete(ctx, session.ID, CompleteInput{}); err != nil {
		t.Fatalf("Complete failed after rejected payloads: %v", err)
	}

	var stateErr *domain.InvalidStateError
	if _, err := svc.Complete(ctx, session.ID, CompleteInput{}); !errors.As(err, &stateErr) {
		t.Errorf("expected InvalidStateError completing twice, got %v", err)
	}
}

func TestComplete_UnknownSession(t *testing.T) {
	svc, _, _ := newTestService(t)

	var notFound *domain.NotFoundError
	if _, err := svc.Complete(context.Background(), "ghost", CompleteInput{}); !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestAbandon(t *testing.T) {
	svc, clock, _ := newTestService(t)
	ctx := context.Background()

	session, _ := svc.Start(ctx, StartInput{FeatureID: "x"})
	clock.Advance(60 * time.Second)

	notes := "superseded"
	session, err := svc.Abandon(ctx, session.ID, &notes)
	if err != nil {
		t.Fatalf("Abandon failed: %v", err)
	}
	if session.Status != domain.StatusAbandoned {
		t.Errorf("expected abandoned, got %s", session.Status)
	}
	if session.TotalActiveSeconds != 60 {
		t.Errorf("expected 60 active seconds, got %d", session.TotalActiveSeconds)
	}
	if session.CompletedAt == nil {
		t.Error("expected completed_at stamped on abandon")
	}

	segments, _ := svc.Segments(ctx, session.ID)
	if segments[0].TriggerEnd == nil || *segments[0].TriggerEnd != domain.TriggerSessionAbandon {
		t.Errorf("expected abandon trigger, got %v", segments[0].TriggerEnd)
	}

	var stateErr *domain.InvalidStateError
	if _, err := svc.Abandon(ctx, session.ID, nil); !errors.As(err, &stateErr) {
		t.Errorf("expected InvalidStateError abandoning twice, got %v", err)
	}

	// An abandoned session can still be completed ("any non-completed status").
	if _, err := svc.Complete(ctx, session.ID, CompleteInput{}); err != nil {
		t.Errorf("expected complete after abandon to succeed, got %v", err)
	}
}

func TestLiveActiveSeconds(t *testing.T) {
	svc, clock, _ := newTestService(t)
	ctx := context.Background()

	session, _ := svc.Start(ctx, StartInput{FeatureID: "x"})
	clock.Advance(200 * time.Second)
	session, _ = svc.Pause(ctx, session.ID, "")
	session, _ = svc.Resume(ctx, session.ID)
	clock.Advance(50 * time.Second)

	// The stored value undercounts while a segment is open.
	got, err := svc.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.TotalActiveSeconds != 200 {
		t.Errorf("expected stored total 200, got %d", got.TotalActiveSeconds)
	}

	live, err := svc.LiveActiveSeconds(ctx, got)
	if err != nil {
		t.Fatalf("LiveActiveSeconds failed: %v", err)
	}
	if live != 250 {
		t.Errorf("expected live total 250, got %d", live)
	}
}
