package turso

import (
	"context"
	"database/sql"
	"fmt"

	"worktrack/internal/domain"
	"worktrack/internal/util"
)

// HistoryRepository is the estimator's read-only view of completed sessions.
type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// ListCompleted returns up to limit completed sessions ordered by updated_at
// descending, each joined with its most recently recorded metrics row.
func (r *HistoryRepository) ListCompleted(ctx context.Context, limit int) ([]domain.CompletedSession, error) {
	query := `
		SELECT s.id, s.feature_id, s.feature_description, s.scope, s.status,
		       s.started_at, s.completed_at, s.total_active_seconds,
		       s.satisfaction, s.notes, s.created_at, s.updated_at,
		       m.work_type, m.complexity_rating
		FROM work_sessions s
		LEFT JOIN work_metrics m ON m.id = (
			SELECT id FROM work_metrics
			WHERE session_id = s.id
			ORDER BY recorded_at DESC, rowid DESC
			LIMIT 1
		)
		WHERE s.status = ?
		ORDER BY s.updated_at DESC, s.rowid DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, domain.StatusCompleted, limit)
	if err != nil {
		return nil, fmt.Errorf("list completed sessions: %w", err)
	}
	defer rows.Close()

	var result []domain.CompletedSession
	for rows.Next() {
		var c domain.CompletedSession
		var startedAt, createdAt, updatedAt string
		var completedAt, notes, workType sql.NullString
		var satisfaction, complexity sql.NullInt64

		err := rows.Scan(
			&c.Session.ID,
			&c.Session.FeatureID,
			&c.Session.FeatureDescription,
			&c.Session.Scope,
			&c.Session.Status,
			&startedAt,
			&completedAt,
			&c.Session.TotalActiveSeconds,
			&satisfaction,
			&notes,
			&createdAt,
			&updatedAt,
			&workType,
			&complexity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan completed session: %w", err)
		}

		c.Session.StartedAt = util.ParseTimeRFC3339(startedAt)
		c.Session.CompletedAt = util.NullTimeToPtr(completedAt)
		c.Session.Satisfaction = util.NullInt64ToPtr(satisfaction)
		c.Session.Notes = util.NullStringToPtr(notes)
		c.Session.CreatedAt = util.ParseTimeRFC3339(createdAt)
		c.Session.UpdatedAt = util.ParseTimeRFC3339(updatedAt)
		c.WorkType = util.NullStringToPtr(workType)
		c.ComplexityRating = util.NullInt64ToPtr(complexity)
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completed sessions: %w", err)
	}
	return result, nil
}
