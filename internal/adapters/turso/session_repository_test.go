package turso_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"worktrack/internal/adapters/turso"
	"worktrack/internal/domain"
	"worktrack/internal/ports"
)

func seedSession(t *testing.T, repo *turso.SessionRepository, id, scope, status string, updatedAt time.Time) *domain.WorkSession {
	t.Helper()

	session := &domain.WorkSession{
		ID:        id,
		FeatureID: "feat-" + id,
		Scope:     scope,
		Status:    status,
		StartedAt: updatedAt.Add(-time.Hour),
		CreatedAt: updatedAt.Add(-time.Hour),
		UpdatedAt: updatedAt,
	}
	if err := repo.Insert(context.Background(), session); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	return session
}

func TestSessionRepository_InsertAndGet(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := turso.NewSessionRepository(db)

	notes := "wip notes"
	satisfaction := int64(4)
	completedAt := testTime(t, "2026-02-10T17:30:00Z")
	session := &domain.WorkSession{
		ID:                 "sess-1",
		FeatureID:          "AUTH-123",
		FeatureDescription: "login flow",
		Scope:              "project:auth",
		Status:             domain.StatusCompleted,
		StartedAt:          testTime(t, "2026-02-10T09:00:00Z"),
		CompletedAt:        &completedAt,
		TotalActiveSeconds: 12345,
		Satisfaction:       &satisfaction,
		Notes:              &notes,
		CreatedAt:          testTime(t, "2026-02-10T09:00:00Z"),
		UpdatedAt:          testTime(t, "2026-02-10T17:30:00Z"),
	}
	if err := repo.Insert(ctx, session); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.FeatureID != "AUTH-123" || got.Scope != "project:auth" || got.Status != domain.StatusCompleted {
		t.Errorf("unexpected session: %+v", got)
	}
	if got.TotalActiveSeconds != 12345 {
		t.Errorf("expected total_active_seconds 12345, got %d", got.TotalActiveSeconds)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(completedAt) {
		t.Errorf("expected completed_at %v, got %v", completedAt, got.CompletedAt)
	}
	if got.Satisfaction == nil || *got.Satisfaction != 4 {
		t.Errorf("expected satisfaction 4, got %v", got.Satisfaction)
	}
	if got.Notes == nil || *got.Notes != "wip notes" {
		t.Errorf("expected notes preserved, got %v", got.Notes)
	}
}

func TestSessionRepository_GetByID_NotFound(t *testing.T) {
	db := testDB(t)
	repo := turso.NewSessionRepository(db)

	_, err := repo.GetByID(context.Background(), "no-such-session")
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.SessionID != "no-such-session" {
		t.Errorf("expected error to carry the id, got %q", notFound.SessionID)
	}
}

func TestSessionRepository_GetActiveByScope(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := turso.NewSessionRepository(db)

	seedSession(t, repo, "done", "project:x", domain.StatusCompleted, testTime(t, "2026-02-10T12:00:00Z"))
	seedSession(t, repo, "older", "project:x", domain.StatusPaused, testTime(t, "2026-02-10T13:00:00Z"))
	seedSession(t, repo, "newer", "project:x", domain.StatusActive, testTime(t, "2026-02-10T14:00:00Z"))
	seedSession(t, repo, "other-scope", "project:y", domain.StatusActive, testTime(t, "2026-02-10T15:00:00Z"))

	got, err := repo.GetActiveByScope(ctx, "project:x")
	if err != nil {
		t.Fatalf("GetActiveByScope failed: %v", err)
	}
	if got == nil || got.ID != "newer" {
		t.Fatalf("expected most-recently-updated session 'newer', got %+v", got)
	}

	got, err = repo.GetActiveByScope(ctx, "project:none")
	if err != nil {
		t.Fatalf("GetActiveByScope failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for empty scope, got %+v", got)
	}
}

// Two sessions in one scope both persist: uniqueness is caller-enforced, not
// storage-enforced. This pins the documented behavior so future hardening is
// detectable.
func TestSessionRepository_NoScopeUniqueness(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := turso.NewSessionRepository(db)

	seedSession(t, repo, "first", "project:race", domain.StatusActive, testTime(t, "2026-02-10T10:00:00Z"))
	seedSession(t, repo, "second", "project:race", domain.StatusActive, testTime(t, "2026-02-10T11:00:00Z"))

	status := domain.StatusActive
	scope := "project:race"
	sessions, err := repo.List(ctx, ports.ListSessionsOptions{Scope: &scope, Status: &status})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected both racing sessions to persist, got %d", len(sessions))
	}

	// The most recently updated one wins the active-session lookup.
	got, err := repo.GetActiveByScope(ctx, scope)
	if err != nil {
		t.Fatalf("GetActiveByScope failed: %v", err)
	}
	if got.ID != "second" {
		t.Errorf("expected 'second' to be the active session, got %s", got.ID)
	}
}

func TestSessionRepository_Update(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := turso.NewSessionRepository(db)

	session := seedSession(t, repo, "sess-u", "global", domain.StatusActive, testTime(t, "2026-02-10T10:00:00Z"))

	completedAt := testTime(t, "2026-02-10T12:00:00Z")
	session.Status = domain.StatusCompleted
	session.CompletedAt = &completedAt
	session.TotalActiveSeconds = 900
	session.UpdatedAt = completedAt
	if err := repo.Update(ctx, session); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "sess-u")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != domain.StatusCompleted || got.TotalActiveSeconds != 900 {
		t.Errorf("update not persisted: %+v", got)
	}

	missing := &domain.WorkSession{ID: "ghost", UpdatedAt: completedAt}
	err = repo.Update(ctx, missing)
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError updating unknown session, got %v", err)
	}
}

func TestSessionRepository_List(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := turso.NewSessionRepository(db)

	seedSession(t, repo, "a", "project:x", domain.StatusCompleted, testTime(t, "2026-02-10T10:00:00Z"))
	seedSession(t, repo, "b", "project:x", domain.StatusActive, testTime(t, "2026-02-10T11:00:00Z"))
	seedSession(t, repo, "c", "project:y", domain.StatusCompleted, testTime(t, "2026-02-10T12:00:00Z"))

	sessions, err := repo.List(ctx, ports.ListSessionsOptions{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	// Ordered by updated_at descending.
	if sessions[0].ID != "c" || sessions[2].ID != "a" {
		t.Errorf("unexpected order: %s, %s, %s", sessions[0].ID, sessions[1].ID, sessions[2].ID)
	}

	status := domain.StatusCompleted
	sessions, err = repo.List(ctx, ports.ListSessionsOptions{Status: &status})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("expected 2 completed sessions, got %d", len(sessions))
	}

	scope := "project:x"
	sessions, err = repo.List(ctx, ports.ListSessionsOptions{Scope: &scope, Status: &status})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != "a" {
		t.Errorf("expected only session 'a', got %d sessions", len(sessions))
	}

	sessions, err = repo.List(ctx, ports.ListSessionsOptions{Limit: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("expected limit 2 respected, got %d", len(sessions))
	}
}
