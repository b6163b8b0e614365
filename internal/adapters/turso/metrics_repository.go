package turso

import (
	"context"
	"database/sql"
	"fmt"

	"worktrack/internal/domain"
	"worktrack/internal/util"
)

// MetricsRepository stores per-session metrics rows in the work_metrics table.
type MetricsRepository struct {
	db *sql.DB
}

func NewMetricsRepository(db *sql.DB) *MetricsRepository {
	return &MetricsRepository{db: db}
}

func (r *MetricsRepository) Insert(ctx context.Context, metrics *domain.WorkMetrics) error {
	query := `
		INSERT INTO work_metrics (id, session_id, files_touched, lines_added, lines_removed, complexity_rating, work_type, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		metrics.ID,
		metrics.SessionID,
		metrics.FilesTouched,
		metrics.LinesAdded,
		metrics.LinesRemoved,
		util.NullInt64(metrics.ComplexityRating),
		util.NullString(metrics.WorkType),
		util.FormatTime(metrics.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("insert metrics: %w", err)
	}
	return nil
}

// ListBySessionID returns the session's metrics rows in ascending recorded
// order, rowid breaking same-second ties.
func (r *MetricsRepository) ListBySessionID(ctx context.Context, sessionID string) ([]*domain.WorkMetrics, error) {
	query := `
		SELECT id, session_id, files_touched, lines_added, lines_removed, complexity_rating, work_type, recorded_at
		FROM work_metrics
		WHERE session_id = ?
		ORDER BY recorded_at ASC, rowid ASC
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list metrics: %w", err)
	}
	defer rows.Close()

	var result []*domain.WorkMetrics
	for rows.Next() {
		var m domain.WorkMetrics
		var complexity sql.NullInt64
		var workType sql.NullString
		var recordedAt string

		err := rows.Scan(&m.ID, &m.SessionID, &m.FilesTouched, &m.LinesAdded, &m.LinesRemoved, &complexity, &workType, &recordedAt)
		if err != nil {
			return nil, fmt.Errorf("scan metrics: %w", err)
		}

		m.ComplexityRating = util.NullInt64ToPtr(complexity)
		m.WorkType = util.NullStringToPtr(workType)
		m.RecordedAt = util.ParseTimeRFC3339(recordedAt)
		result = append(result, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metrics: %w", err)
	}
	return result, nil
}
