package flags

import "sync/atomic"

// Flags gates the ATS integration. Callers check it at the top of every
// public sync entry point, at call time.
type Flags interface {
	IntegrationEnabled() bool
	ScheduledSyncEnabled() bool
}

// Switch is a Flags implementation that can be flipped at runtime.
type Switch struct {
	integration atomic.Bool
	scheduled   atomic.Bool
}

func NewSwitch(integration, scheduled bool) *Switch {
	s := &Switch{}
	s.integration.Store(integration)
	s.scheduled.Store(scheduled)
	return s
}

func (s *Switch) IntegrationEnabled() bool {
	if s == nil {
		return false
	}
	return s.integration.Load()
}

// ScheduledSyncEnabled reports whether cron-driven runs may fire. It is only
// true when the integration itself is enabled too.
func (s *Switch) ScheduledSyncEnabled() bool {
	if s == nil {
		return false
	}
	return s.integration.Load() && s.scheduled.Load()
}

func (s *Switch) SetIntegration(v bool) {
	if s == nil {
		return
	}
	s.integration.Store(v)
}

func (s *Switch) SetScheduled(v bool) {
	if s == nil {
		return
	}
	s.scheduled.Store(v)
}

type Snapshot struct {
	Integration bool `json:"integration_enabled"`
	Scheduled   bool `json:"scheduled_sync_enabled"`
}

func (s *Switch) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	return Snapshot{Integration: s.integration.Load(), Scheduled: s.scheduled.Load()}
}

var _ Flags = (*Switch)(nil)
