package domain

import "time"

// Session status values. A session is created active, moves between active
// and paused, and ends in one of the two terminal states.
const (
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
	StatusAbandoned = "abandoned"
)

// Segment trigger values recorded on open and close.
const (
	TriggerSessionStart    = "session_start"
	TriggerResume          = "resume"
	TriggerPause           = "pause"
	TriggerSessionComplete = "session_complete"
	TriggerSessionAbandon  = "session_abandoned"
)

// Work type values accepted in metrics rows.
const (
	WorkTypeFeature  = "feature"
	WorkTypeBugfix   = "bugfix"
	WorkTypeRefactor = "refactor"
	WorkTypeDocs     = "docs"
	WorkTypeOther    = "other"
)

// WorkSession is one tracked unit of developer work. TotalActiveSeconds only
// reflects closed segments: it is recomputed on every pause/complete and is
// never advanced while a segment is open, so the stored value undercounts an
// in-progress session. Callers displaying live elapsed time must add the open
// segment themselves (see LiveActiveSeconds).
type WorkSession struct {
	ID                 string
	FeatureID          string
	FeatureDescription string
	Scope              string
	Status             string
	StartedAt          time.Time
	CompletedAt        *time.Time
	TotalActiveSeconds int64
	Satisfaction       *int64
	Notes              *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Terminal reports whether the session has reached a final status.
func (s *WorkSession) Terminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusAbandoned
}

// LiveActiveSeconds returns the elapsed active time including the currently
// open segment, if any. The open segment's share is computed at read time and
// never persisted.
func (s *WorkSession) LiveActiveSeconds(open *WorkSegment, now time.Time) int64 {
	total := s.TotalActiveSeconds
	if open != nil && open.Open() {
		total += open.DurationSeconds(now)
	}
	return total
}

// WorkSegment is a contiguous span of explicitly bounded active time within a
// session. EndedAt is nil while the segment is open; exactly one segment is
// open while the owning session is active, none otherwise.
type WorkSegment struct {
	ID           string
	SessionID    string
	StartedAt    time.Time
	EndedAt      *time.Time
	TriggerStart string
	TriggerEnd   *string
}

// Open reports whether the segment has not been closed yet.
func (g *WorkSegment) Open() bool {
	return g.EndedAt == nil
}

// DurationSeconds returns floor(ended−started) in whole seconds, using now in
// place of EndedAt while the segment is open.
func (g *WorkSegment) DurationSeconds(now time.Time) int64 {
	end := now
	if g.EndedAt != nil {
		end = *g.EndedAt
	}
	d := end.Sub(g.StartedAt)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}

// SumClosedSeconds totals floor(ended−started) across the closed segments of
// a session. Open segments contribute nothing: their share is only ever
// computed at read time.
func SumClosedSeconds(segments []*WorkSegment) int64 {
	var total int64
	for _, g := range segments {
		if g.Open() {
			continue
		}
		total += g.DurationSeconds(*g.EndedAt)
	}
	return total
}

// WorkMetrics is one recorded measurement row for a session. A session may
// accumulate several rows (one at start when a work type is given, another at
// completion); estimation always reads the most recently recorded row.
type WorkMetrics struct {
	ID               string
	SessionID        string
	FilesTouched     int64
	LinesAdded       int64
	LinesRemoved     int64
	ComplexityRating *int64
	WorkType         *string
	RecordedAt       time.Time
}

// ValidWorkType reports whether t is one of the accepted work type values.
func ValidWorkType(t string) bool {
	switch t {
	case WorkTypeFeature, WorkTypeBugfix, WorkTypeRefactor, WorkTypeDocs, WorkTypeOther:
		return true
	}
	return false
}

// Validate checks rating ranges and the work type enum.
func (m *WorkMetrics) Validate() error {
	if m.ComplexityRating != nil && (*m.ComplexityRating < 1 || *m.ComplexityRating > 5) {
		return &ValidationError{Field: "complexity_rating", Reason: "must be between 1 and 5"}
	}
	if m.WorkType != nil && !ValidWorkType(*m.WorkType) {
		return &ValidationError{Field: "work_type", Reason: "unknown work type " + *m.WorkType}
	}
	return nil
}

// CompletedSession pairs a completed session with its most recently recorded
// metrics row, for estimation. WorkType and ComplexityRating are nil when the
// session has no metrics at all.
type CompletedSession struct {
	Session          WorkSession
	WorkType         *string
	ComplexityRating *int64
}
