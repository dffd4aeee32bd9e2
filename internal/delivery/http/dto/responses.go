package dto

import (
	"ats-sync/internal/domain"
	"ats-sync/internal/domain/candidate"
)

type CandidateProfileResponse struct {
	Candidate candidate.Candidate `json:"candidate"`
	Created   bool                `json:"created"`
}

// SyncRunSummary is a run history row without per-record details.
type SyncRunSummary struct {
	ID         string           `json:"id"`
	Run        domain.RunName   `json:"run"`
	Trigger    domain.Trigger   `json:"trigger"`
	Status     domain.RunStatus `json:"status"`
	Total      int              `json:"total"`
	Success    int              `json:"success"`
	Failed     int              `json:"failed"`
	Error      string           `json:"error,omitempty"`
	StartedAt  string           `json:"started_at"`
	FinishedAt string           `json:"finished_at,omitempty"`
}
