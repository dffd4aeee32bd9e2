package ws

import (
	"encoding/json"
	"time"

	"ats-sync/internal/domain"
)

const EventSyncCompleted = "sync_completed"

// SyncCompletedEvent omits per-record details; admins fetch those from the
// run history.
type SyncCompletedEvent struct {
	Type       string         `json:"type"`
	Run        domain.RunName `json:"run"`
	Total      int            `json:"total"`
	Success    int            `json:"success"`
	Failed     int            `json:"failed"`
	StartedAt  string         `json:"started_at"`
	FinishedAt string         `json:"finished_at"`
}

func NewSyncCompletedEvent(r domain.BatchReport) SyncCompletedEvent {
	return SyncCompletedEvent{
		Type:       EventSyncCompleted,
		Run:        r.Run,
		Total:      r.Total,
		Success:    r.Success,
		Failed:     r.Failed,
		StartedAt:  r.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt: r.FinishedAt.UTC().Format(time.RFC3339),
	}
}

// NotifySyncCompleted broadcasts a finished batch run to admin clients.
func (h *Hub) NotifySyncCompleted(r domain.BatchReport) {
	if h == nil {
		return
	}
	b, err := json.Marshal(NewSyncCompletedEvent(r))
	if err != nil {
		h.logger.Warnw("encode sync event failed", "error", err)
		return
	}
	h.Broadcast(b)
}
