package domain

import (
	"fmt"
	"math"
	"sort"
)

// Confidence tiers for a duration estimate. The tier is derived from sample
// count alone and also determines how the numeric range is computed.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// MaxSimilarSessions bounds the number of example sessions attached to an
// estimate for caller display.
const MaxSimilarSessions = 3

// SimilarSession is one historical example attached to an estimate.
type SimilarSession struct {
	FeatureID       string
	Description     string
	DurationSeconds int64
}

// Estimate is a transient duration forecast for a prospective task.
type Estimate struct {
	MinSeconds      int64
	MaxSeconds      int64
	Confidence      string
	SampleCount     int
	SimilarSessions []SimilarSession
	Message         string
}

// ConfidenceFor maps a sample count to a confidence tier: 0–4 low, 5–14
// medium, 15+ high.
func ConfidenceFor(sampleCount int) string {
	switch {
	case sampleCount < 5:
		return ConfidenceLow
	case sampleCount < 15:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}

// ComputeEstimate derives an estimate from an already filtered sample set,
// ordered most recent first. Sparse history yields a deliberately wide range:
// low confidence reports the full spread, medium the interquartile range, and
// high a one-standard-deviation band around the median.
func ComputeEstimate(chosen []CompletedSession) Estimate {
	n := len(chosen)
	if n == 0 {
		return Estimate{
			Confidence: ConfidenceLow,
			Message:    "Hard to say—this is new territory for us.",
		}
	}

	durations := make([]int64, n)
	for i, c := range chosen {
		durations[i] = c.Session.TotalActiveSeconds
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	median := durations[n/2]
	est := Estimate{
		Confidence:  ConfidenceFor(n),
		SampleCount: n,
	}

	switch est.Confidence {
	case ConfidenceLow:
		est.MinSeconds = durations[0]
		est.MaxSeconds = durations[n-1]
		est.Message = fmt.Sprintf("Based on %d similar session(s), this could take anywhere from %s to %s.",
			n, FormatSeconds(est.MinSeconds), FormatSeconds(est.MaxSeconds))
	case ConfidenceMedium:
		est.MinSeconds = durations[int(math.Floor(float64(n)*0.25))]
		est.MaxSeconds = durations[int(math.Floor(float64(n)*0.75))]
		est.Message = fmt.Sprintf("Based on %d similar sessions, this will likely take %s to %s.",
			n, FormatSeconds(est.MinSeconds), FormatSeconds(est.MaxSeconds))
	case ConfidenceHigh:
		sd := stddev(durations)
		min := median - sd
		if min < 0 {
			min = 0
		}
		est.MinSeconds = min
		est.MaxSeconds = median + sd
		est.Message = fmt.Sprintf("Based on %d similar sessions, expect about %s.",
			n, FormatSeconds(median))
	}

	for _, c := range chosen {
		if len(est.SimilarSessions) == MaxSimilarSessions {
			break
		}
		est.SimilarSessions = append(est.SimilarSessions, SimilarSession{
			FeatureID:       c.Session.FeatureID,
			Description:     c.Session.FeatureDescription,
			DurationSeconds: c.Session.TotalActiveSeconds,
		})
	}

	return est
}

// stddev is the population standard deviation, truncated to whole seconds.
func stddev(durations []int64) int64 {
	n := float64(len(durations))
	var sum float64
	for _, d := range durations {
		sum += float64(d)
	}
	mean := sum / n

	var sq float64
	for _, d := range durations {
		diff := float64(d) - mean
		sq += diff * diff
	}
	return int64(math.Sqrt(sq / n))
}

// FormatSeconds renders a duration in seconds as a short human string.
// Examples: 45 -> "45s", 910 -> "15m", 9000 -> "2h 30m".
func FormatSeconds(seconds int64) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm", seconds/60)
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
