// Package estimator forecasts task duration from completed-session history.
package estimator

import (
	"context"
	"fmt"
	"time"

	"worktrack/internal/domain"
	"worktrack/internal/ports"
)

// historyLimit bounds the scan over completed sessions.
const historyLimit = 100

// recencyWindow prefers sessions completed within the last 30 days.
const recencyWindow = 30 * 24 * time.Hour

// minRecentSamples is the smallest recent subset worth using on its own;
// below it the estimator falls back to the full filtered set.
const minRecentSamples = 3

// Service computes duration estimates. It only ever reads.
type Service struct {
	history ports.HistoryRepository

	now func() time.Time
}

func NewService(history ports.HistoryRepository) *Service {
	return &Service{history: history, now: time.Now}
}

// Options narrows the history the estimate draws from. A nil field means no
// filter on that dimension.
type Options struct {
	WorkType         *string
	ComplexityRating *int64
}

// GetEstimate loads recent completed sessions, filters them by work type and
// complexity, prefers the last 30 days, and derives a confidence-tiered
// range. Sessions without metrics are dropped from a work_type-filtered
// query.
func (s *Service) GetEstimate(ctx context.Context, opts Options) (domain.Estimate, error) {
	history, err := s.history.ListCompleted(ctx, historyLimit)
	if err != nil {
		return domain.Estimate{}, fmt.Errorf("load session history: %w", err)
	}

	var filtered []domain.CompletedSession
	for _, c := range history {
		if opts.WorkType != nil {
			if c.WorkType == nil || *c.WorkType != *opts.WorkType {
				continue
			}
		}
		if opts.ComplexityRating != nil {
			if c.ComplexityRating == nil {
				continue
			}
			diff := *c.ComplexityRating - *opts.ComplexityRating
			if diff < -1 || diff > 1 {
				continue
			}
		}
		filtered = append(filtered, c)
	}

	chosen := s.preferRecent(filtered)
	return domain.ComputeEstimate(chosen), nil
}

// preferRecent keeps the subset completed within the recency window, falling
// back to the full filtered set when the subset is too small to estimate
// from. Recency weighting without explicit decay.
func (s *Service) preferRecent(filtered []domain.CompletedSession) []domain.CompletedSession {
	cutoff := s.now().UTC().Add(-recencyWindow)

	var recent []domain.CompletedSession
	for _, c := range filtered {
		if c.Session.CompletedAt != nil && c.Session.CompletedAt.After(cutoff) {
			recent = append(recent, c)
		}
	}
	if len(recent) >= minRecentSamples {
		return recent
	}
	return filtered
}
