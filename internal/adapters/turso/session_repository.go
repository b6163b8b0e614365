package turso

import (
	"context"
	"database/sql"
	"fmt"

	"worktrack/internal/domain"
	"worktrack/internal/ports"
	"worktrack/internal/util"
)

const sessionColumns = `id, feature_id, feature_description, scope, status,
	started_at, completed_at, total_active_seconds, satisfaction, notes,
	created_at, updated_at`

// SessionRepository stores work sessions in the work_sessions table.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Insert(ctx context.Context, session *domain.WorkSession) error {
	query := `
		INSERT INTO work_sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.FeatureID,
		session.FeatureDescription,
		session.Scope,
		session.Status,
		util.FormatTime(session.StartedAt),
		util.NullTime(session.CompletedAt),
		session.TotalActiveSeconds,
		util.NullInt64(session.Satisfaction),
		util.NullString(session.Notes),
		util.FormatTime(session.CreatedAt),
		util.FormatTime(session.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*domain.WorkSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM work_sessions WHERE id = ?`
	session, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{SessionID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// GetActiveByScope returns the most-recently-updated active or paused session
// for the scope. When the caller-enforced uniqueness gap has let several
// accumulate, the newest one wins.
func (r *SessionRepository) GetActiveByScope(ctx context.Context, scope string) (*domain.WorkSession, error) {
	query := `
		SELECT ` + sessionColumns + ` FROM work_sessions
		WHERE scope = ? AND status IN (?, ?)
		ORDER BY updated_at DESC, rowid DESC
		LIMIT 1
	`
	session, err := scanSession(r.db.QueryRowContext(ctx, query, scope, domain.StatusActive, domain.StatusPaused))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return session, nil
}

func (r *SessionRepository) Update(ctx context.Context, session *domain.WorkSession) error {
	query := `
		UPDATE work_sessions
		SET status = ?, completed_at = ?, total_active_seconds = ?,
		    satisfaction = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, query,
		session.Status,
		util.NullTime(session.CompletedAt),
		session.TotalActiveSeconds,
		util.NullInt64(session.Satisfaction),
		util.NullString(session.Notes),
		util.FormatTime(session.UpdatedAt),
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if affected == 0 {
		return &domain.NotFoundError{SessionID: session.ID}
	}
	return nil
}

func (r *SessionRepository) List(ctx context.Context, opts ports.ListSessionsOptions) ([]*domain.WorkSession, error) {
	limit := opts.Limit
	if limit == 0 {
		limit = 50
	}

	query := `SELECT ` + sessionColumns + ` FROM work_sessions WHERE 1 = 1`
	args := []any{}
	if opts.Scope != nil {
		query += ` AND scope = ?`
		args = append(args, *opts.Scope)
	}
	if opts.Status != nil {
		query += ` AND status = ?`
		args = append(args, *opts.Status)
	}
	query += ` ORDER BY updated_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.WorkSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.WorkSession, error) {
	var s domain.WorkSession
	var startedAt, createdAt, updatedAt string
	var completedAt, notes sql.NullString
	var satisfaction sql.NullInt64

	err := row.Scan(
		&s.ID,
		&s.FeatureID,
		&s.FeatureDescription,
		&s.Scope,
		&s.Status,
		&startedAt,
		&completedAt,
		&s.TotalActiveSeconds,
		&satisfaction,
		&notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.StartedAt = util.ParseTimeRFC3339(startedAt)
	s.CompletedAt = util.NullTimeToPtr(completedAt)
	s.Satisfaction = util.NullInt64ToPtr(satisfaction)
	s.Notes = util.NullStringToPtr(notes)
	s.CreatedAt = util.ParseTimeRFC3339(createdAt)
	s.UpdatedAt = util.ParseTimeRFC3339(updatedAt)
	return &s, nil
}
