package flags

import "testing"

func TestSwitch_ScheduledRequiresIntegration(t *testing.T) {
	s := NewSwitch(false, true)
	if s.ScheduledSyncEnabled() {
		t.Fatalf("scheduled sync must be off while integration is off")
	}

	s.SetIntegration(true)
	if !s.ScheduledSyncEnabled() {
		t.Fatalf("expected scheduled sync on")
	}

	s.SetScheduled(false)
	if s.ScheduledSyncEnabled() {
		t.Fatalf("expected scheduled sync off")
	}
	if !s.IntegrationEnabled() {
		t.Fatalf("integration flag should be unaffected")
	}
}

func TestSwitch_NilIsDisabled(t *testing.T) {
	var s *Switch
	if s.IntegrationEnabled() || s.ScheduledSyncEnabled() {
		t.Fatalf("nil switch must report disabled")
	}
}
