package domain

import "time"

// RunStatus tracks the lifecycle of a batch re-verification run.
type RunStatus string

const (
	RunPending    RunStatus = "pending"
	RunInProgress RunStatus = "in_progress"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

func (s RunStatus) IsValid() bool {
	switch s {
	case RunPending, RunInProgress, RunCompleted, RunFailed:
		return true
	}
	return false
}

// Terminal reports whether the run can make no further progress.
// The reaper never resumes a terminal run.
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunFailed
}

// Run is one execution of the scheduled batch re-verification workflow.
// Progress is carried in continuation messages, but the authoritative copy
// of the cursor and status lives here so a stalled run is detectable and
// resumable instead of silently orphaned.
type Run struct {
	ID          string    `json:"id"`
	CheckName   string    `json:"check_name"`
	Status      RunStatus `json:"status"`
	Cursor      int       `json:"cursor"`
	Total       int       `json:"total"`
	WorklistRef string    `json:"worklist_ref"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
