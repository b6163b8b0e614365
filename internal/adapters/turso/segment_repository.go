package turso

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"worktrack/internal/domain"
	"worktrack/internal/util"
)

// SegmentRepository stores session time segments in the work_segments table.
type SegmentRepository struct {
	db *sql.DB
}

func NewSegmentRepository(db *sql.DB) *SegmentRepository {
	return &SegmentRepository{db: db}
}

func (r *SegmentRepository) Insert(ctx context.Context, segment *domain.WorkSegment) error {
	query := `
		INSERT INTO work_segments (id, session_id, started_at, ended_at, trigger_start, trigger_end)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		segment.ID,
		segment.SessionID,
		util.FormatTime(segment.StartedAt),
		util.NullTime(segment.EndedAt),
		segment.TriggerStart,
		util.NullString(segment.TriggerEnd),
	)
	if err != nil {
		return fmt.Errorf("insert segment: %w", err)
	}
	return nil
}

func (r *SegmentRepository) GetOpen(ctx context.Context, sessionID string) (*domain.WorkSegment, error) {
	query := `
		SELECT id, session_id, started_at, ended_at, trigger_start, trigger_end
		FROM work_segments
		WHERE session_id = ? AND ended_at IS NULL
		ORDER BY started_at DESC, rowid DESC
		LIMIT 1
	`
	segment, err := scanSegment(r.db.QueryRowContext(ctx, query, sessionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get open segment: %w", err)
	}
	return segment, nil
}

func (r *SegmentRepository) Close(ctx context.Context, segmentID string, endedAt time.Time, triggerEnd string) error {
	query := `UPDATE work_segments SET ended_at = ?, trigger_end = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, util.FormatTime(endedAt), triggerEnd, segmentID)
	if err != nil {
		return fmt.Errorf("close segment: %w", err)
	}
	return nil
}

// ListBySessionID returns the session's segments in ascending start order.
// RFC3339 only has second precision, so rowid breaks ties between segments
// opened within the same second.
func (r *SegmentRepository) ListBySessionID(ctx context.Context, sessionID string) ([]*domain.WorkSegment, error) {
	query := `
		SELECT id, session_id, started_at, ended_at, trigger_start, trigger_end
		FROM work_segments
		WHERE session_id = ?
		ORDER BY started_at ASC, rowid ASC
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	var segments []*domain.WorkSegment
	for rows.Next() {
		segment, err := scanSegment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		segments = append(segments, segment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segments: %w", err)
	}
	return segments, nil
}

func scanSegment(row rowScanner) (*domain.WorkSegment, error) {
	var g domain.WorkSegment
	var startedAt string
	var endedAt, triggerEnd sql.NullString

	err := row.Scan(&g.ID, &g.SessionID, &startedAt, &endedAt, &g.TriggerStart, &triggerEnd)
	if err != nil {
		return nil, err
	}

	g.StartedAt = util.ParseTimeRFC3339(startedAt)
	g.EndedAt = util.NullTimeToPtr(endedAt)
	g.TriggerEnd = util.NullStringToPtr(triggerEnd)
	return &g, nil
}
