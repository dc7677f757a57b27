package runlog

import "time"

// Status is the lifecycle of a recorded run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run is one pipeline execution in the ledger.
type Run struct {
	ID           int64
	RunID        string
	JobName      string
	Offline      bool
	Status       Status
	FinalPath    string
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// StageEvent is one recorded stage transition within a run.
type StageEvent struct {
	ID        int64
	RunID     string
	Stage     int
	Message   string
	IsError   bool
	CreatedAt time.Time
}
