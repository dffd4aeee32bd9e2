package domain

import "time"

// ExternalSourceATS is stored in external_source for records that have a
// counterpart in the External ATS.
const ExternalSourceATS = "ExternalATS"

type RunName string

const (
	RunPushJobs       RunName = "push_jobs"
	RunPushCandidates RunName = "push_candidates"
	RunPullJobs       RunName = "pull_jobs"
	RunPullCandidates RunName = "pull_candidates"
)

func (r RunName) Valid() bool {
	switch r {
	case RunPushJobs, RunPushCandidates, RunPullJobs, RunPullCandidates:
		return true
	}
	return false
}

type Operation string

const (
	OperationCreate      Operation = "create"
	OperationUpdate      Operation = "update"
	OperationLocalCreate Operation = "local_create"
	OperationLocalUpdate Operation = "local_update"
)

const MessageIntegrationDisabled = "ATS integration is disabled"

// SyncResult is the uniform outcome of a single push, update or upload.
// Warning is set when the record itself synced but a secondary step failed.
type SyncResult struct {
	Success    bool   `json:"success"`
	ExternalID string `json:"external_id,omitempty"`
	Error      string `json:"error,omitempty"`
	Warning    string `json:"warning,omitempty"`
}

func Disabled() SyncResult {
	return SyncResult{Success: false, Error: MessageIntegrationDisabled}
}

func Failed(err error) SyncResult {
	if err == nil {
		return SyncResult{Success: false}
	}
	return SyncResult{Success: false, Error: err.Error()}
}

type RecordOutcome struct {
	LocalID    string    `json:"local_id"`
	ExternalID string    `json:"external_id,omitempty"`
	Operation  Operation `json:"operation"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	Warning    string    `json:"warning,omitempty"`
}

type BatchReport struct {
	Run        RunName         `json:"run"`
	Total      int             `json:"total"`
	Success    int             `json:"success"`
	Failed     int             `json:"failed"`
	Details    []RecordOutcome `json:"details"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

func NewBatchReport(run RunName, startedAt time.Time) BatchReport {
	return BatchReport{Run: run, StartedAt: startedAt, Details: make([]RecordOutcome, 0)}
}

func (r *BatchReport) Add(o RecordOutcome) {
	r.Total++
	if o.Success {
		r.Success++
	} else {
		r.Failed++
	}
	r.Details = append(r.Details, o)
}

type Trigger string

const (
	TriggerManual   Trigger = "manual"
	TriggerSchedule Trigger = "schedule"
	TriggerCLI      Trigger = "cli"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// SyncRun is one persisted batch run.
type SyncRun struct {
	ID         string          `json:"id"`
	Run        RunName         `json:"run"`
	Trigger    Trigger         `json:"trigger"`
	Status     RunStatus       `json:"status"`
	Total      int             `json:"total"`
	Success    int             `json:"success"`
	Failed     int             `json:"failed"`
	Error      string          `json:"error,omitempty"`
	Details    []RecordOutcome `json:"details"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}
