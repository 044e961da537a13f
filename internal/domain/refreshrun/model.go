package refreshrun

import "time"

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

const (
	JobContests  = "contests"
	JobUserStats = "user-stats"
)

// Run is one execution of a refresh job. Failures counts degraded sources or
// rejected writes; a completed run may still have Failures > 0.
type Run struct {
	RunID        string
	Job          string
	Status       Status
	StartedAt    time.Time
	FinishedAt   *time.Time
	Records      int
	Failures     int
	ErrorMessage string
}
