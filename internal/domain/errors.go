package domain

import "fmt"

// NotFoundError is returned when a session id does not exist.
type NotFoundError struct {
	SessionID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session %s not found", e.SessionID)
}

// InvalidStateError is returned on an illegal lifecycle transition. Status
// carries the session's actual status so the caller can decide whether to
// re-fetch and retry.
type InvalidStateError struct {
	SessionID string
	Status    string
	Op        string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s session %s: status is %s", e.Op, e.SessionID, e.Status)
}

// ValidationError is returned for malformed input, e.g. an out-of-range
// complexity rating.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
