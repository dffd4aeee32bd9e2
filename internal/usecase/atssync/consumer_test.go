package atssync

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"ats-sync/internal/events"
)

func TestConsumer_PushesJobOnEvent(t *testing.T) {
	cid := int64(4)
	emp := testEmployer(&cid)
	j := testJob(emp.ID, "Engineer")
	jobs := newMemJobRepo(j)
	gw := newFakeJobGateway()
	c := NewConsumer(NewJobSync(gw, nil, jobs, newMemEmployerRepo(emp), nil), nil, jobs, nil, nil)

	if err := c.Handle(context.Background(), events.JobUpserted(j.ID)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(gw.creates) != 1 {
		t.Fatalf("expected one create, got %d", len(gw.creates))
	}
	stored, _ := jobs.GetByID(context.Background(), j.ID)
	if !stored.IsSynced() {
		t.Fatalf("expected stored external reference")
	}
}

func TestConsumer_SwallowsSyncFailure(t *testing.T) {
	cid := int64(4)
	emp := testEmployer(&cid)
	j := testJob(emp.ID, "Engineer")
	jobs := newMemJobRepo(j)
	gw := newFakeJobGateway()
	gw.enabled = false
	c := NewConsumer(NewJobSync(gw, nil, jobs, newMemEmployerRepo(emp), nil), nil, jobs, nil, nil)

	if err := c.Handle(context.Background(), events.JobUpserted(j.ID)); err != nil {
		t.Fatalf("sync failures must not surface, got %v", err)
	}
}

func TestConsumer_RejectsUnprocessableEvents(t *testing.T) {
	c := NewConsumer(nil, nil, newMemJobRepo(), newMemCandidateRepo(), nil)

	if err := c.Handle(context.Background(), events.JobUpserted(uuid.New())); err == nil {
		t.Fatalf("expected error for missing job")
	}
	if err := c.Handle(context.Background(), events.RecordUpserted{Kind: "invoice", LocalID: uuid.New()}); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
