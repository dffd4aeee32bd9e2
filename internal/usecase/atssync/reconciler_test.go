package atssync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ats-sync/internal/domain"
	"ats-sync/internal/domain/candidate"
	"ats-sync/internal/domain/job"
	"ats-sync/internal/infrastructure/ats"
	"ats-sync/internal/pkg/flags"
)

type reconcilerFixture struct {
	jobGW     *fakeJobGateway
	candGW    *fakeCandidateGateway
	jobs      *memJobRepo
	cands     *memCandidateRepo
	employers *memEmployerRepo
	runs      *memRunRepo
	notifier  *recordingNotifier
	lock      *stubLock
	sw        *flags.Switch
	r         *Reconciler
}

func newReconcilerFixture(jobs []job.Job, cands []candidate.Candidate, employers ...job.Employer) *reconcilerFixture {
	f := &reconcilerFixture{
		jobGW:     newFakeJobGateway(),
		candGW:    newFakeCandidateGateway(),
		jobs:      newMemJobRepo(jobs...),
		cands:     newMemCandidateRepo(cands...),
		employers: newMemEmployerRepo(employers...),
		runs:      newMemRunRepo(),
		notifier:  &recordingNotifier{},
		lock:      &stubLock{},
		sw:        flags.NewSwitch(true, true),
	}
	f.r = NewReconciler(ReconcilerDeps{
		Jobs:       NewJobSync(f.jobGW, &fakeCompanies{id: 9}, f.jobs, f.employers, nil),
		Candidates: NewCandidateSync(f.candGW, f.cands, nil, nil),
		JobRepo:    f.jobs,
		CandRepo:   f.cands,
		Employers:  f.employers,
		Runs:       f.runs,
		Lock:       f.lock,
		Notifier:   f.notifier,
		Flags:      f.sw,
	}, ReconcilerConfig{})
	f.r.passwordCost = bcrypt.MinCost
	return f
}

func threeJobs(employerID uuid.UUID) []job.Job {
	return []job.Job{testJob(employerID, "one"), testJob(employerID, "two"), testJob(employerID, "three")}
}

func TestPushJobs_IsolatesRecordFailure(t *testing.T) {
	cid := int64(9)
	emp := testEmployer(&cid)
	js := threeJobs(emp.ID)
	f := newReconcilerFixture(js, nil, emp)
	f.jobGW.failCreate[2] = &ats.RemoteError{Op: "createJob", StatusCode: 500}

	report, err := f.r.PushJobs(context.Background(), domain.TriggerManual)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Total != 3 || report.Success != 2 || report.Failed != 1 {
		t.Fatalf("expected 3/2/1, got %d/%d/%d", report.Total, report.Success, report.Failed)
	}
	if !report.Details[0].Success || report.Details[1].Success || !report.Details[2].Success {
		t.Fatalf("expected records 1 and 3 to succeed, got %+v", report.Details)
	}

	for i, want := range []bool{true, false, true} {
		stored, _ := f.jobs.GetByID(context.Background(), js[i].ID)
		if stored.IsSynced() != want {
			t.Fatalf("record %d: synced=%v, want %v", i+1, stored.IsSynced(), want)
		}
		if !want && stored.ExternalSource != nil {
			t.Fatalf("record %d: source set without id", i+1)
		}
	}

	if len(f.notifier.reports) != 1 || f.notifier.reports[0].Total != 3 {
		t.Fatalf("expected one broadcast report")
	}
	if len(f.runs.started) != 1 || f.runs.finished["run-1"].Total != 3 || f.runs.errs["run-1"] != nil {
		t.Fatalf("expected run history to be recorded")
	}
}

func TestPushJobs_FailingRecordsRotateBehindPending(t *testing.T) {
	cid := int64(9)
	emp := testEmployer(&cid)
	js := threeJobs(emp.ID)
	f := newReconcilerFixture(js, nil, emp)
	f.r.batchSize = 2
	f.jobGW.failCreate[1] = &ats.RemoteError{Op: "createJob", StatusCode: 422}
	f.jobGW.failCreate[2] = &ats.RemoteError{Op: "createJob", StatusCode: 422}

	first, err := f.r.PushJobs(context.Background(), domain.TriggerSchedule)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Failed != 2 {
		t.Fatalf("expected both records of the first batch to fail, got %+v", first)
	}

	second, err := f.r.PushJobs(context.Background(), domain.TriggerSchedule)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second.Details) == 0 || second.Details[0].LocalID != js[2].ID.String() {
		t.Fatalf("expected the untried job first in the next batch, got %+v", second.Details)
	}
	if !second.Details[0].Success {
		t.Fatalf("expected untried job to sync, got %+v", second.Details[0])
	}
}

func TestPushJobs_RecoversFromPanickingRecord(t *testing.T) {
	cid := int64(9)
	emp := testEmployer(&cid)
	f := newReconcilerFixture(threeJobs(emp.ID), nil, emp)
	f.jobGW.panicOn = 2

	report, err := f.r.PushJobs(context.Background(), domain.TriggerManual)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Total != 3 || report.Failed != 1 || report.Details[1].Error == "" {
		t.Fatalf("expected panic counted as failure, got %+v", report)
	}
}

func TestPushJobs_SyncedRecordIsUpdated(t *testing.T) {
	cid := int64(9)
	emp := testEmployer(&cid)
	j := testJob(emp.ID, "synced")
	j.MarkSynced("J-5", domain.ExternalSourceATS)
	f := newReconcilerFixture([]job.Job{j}, nil, emp)

	report, err := f.r.PushJobs(context.Background(), domain.TriggerSchedule)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Details[0].Operation != domain.OperationUpdate || len(f.jobGW.creates) != 0 {
		t.Fatalf("expected update without create, got %+v", report.Details)
	}
	if _, ok := f.jobGW.updates["J-5"]; !ok {
		t.Fatalf("expected updateJob for J-5")
	}
}

func TestRun_EnumerationFailureAborts(t *testing.T) {
	f := newReconcilerFixture(nil, nil)
	f.jobs.listErr = errors.New("db down")

	_, err := f.r.PushJobs(context.Background(), domain.TriggerManual)
	if err == nil {
		t.Fatalf("expected error")
	}
	if f.runs.errs["run-1"] == nil {
		t.Fatalf("expected failed run recorded")
	}
	if len(f.notifier.reports) != 0 {
		t.Fatalf("aborted runs are not broadcast")
	}
}

func TestRun_LockHeldSkips(t *testing.T) {
	f := newReconcilerFixture(nil, []candidate.Candidate{testCandidate("a@b.c")})
	f.lock.held = true

	_, err := f.r.PushCandidates(context.Background(), domain.TriggerSchedule)
	if !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	if f.candGW.calls() != 0 || len(f.runs.started) != 0 {
		t.Fatalf("skipped run must not call out or record history")
	}
}

func TestRun_DisabledIntegration(t *testing.T) {
	f := newReconcilerFixture(nil, []candidate.Candidate{testCandidate("a@b.c")})
	f.sw.SetIntegration(false)

	_, err := f.r.PushCandidates(context.Background(), domain.TriggerManual)
	if !errors.Is(err, ats.ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
	if f.candGW.calls() != 0 {
		t.Fatalf("expected no calls")
	}
}

func TestPullJobs_UpdatesExistingAndCreatesNew(t *testing.T) {
	cid := int64(9)
	emp := testEmployer(&cid)
	existing := testJob(emp.ID, "old title")
	existing.MarkSynced("100", domain.ExternalSourceATS)
	f := newReconcilerFixture([]job.Job{existing}, nil, emp)
	f.jobGW.records = []ats.JobRecord{
		{JobID: "100", Title: "new title", CompanyID: "9"},
		{JobID: "200", Title: "fresh", CompanyID: "77"},
		{JobID: "300", Title: "orphan"},
	}

	report, err := f.r.PullJobs(context.Background(), domain.TriggerSchedule)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Total != 3 || report.Success != 2 || report.Failed != 1 {
		t.Fatalf("expected 3/2/1, got %+v", report)
	}
	if report.Details[0].Operation != domain.OperationLocalUpdate || report.Details[1].Operation != domain.OperationLocalCreate {
		t.Fatalf("unexpected operations %+v", report.Details)
	}

	stored, _ := f.jobs.GetByID(context.Background(), existing.ID)
	if *stored.Title != "new title" || stored.EmployerID != emp.ID {
		t.Fatalf("expected merged job keeping its employer, got %+v", stored)
	}
	created, err := f.jobs.FindByExternal(context.Background(), domain.ExternalSourceATS, "200")
	if err != nil {
		t.Fatalf("expected job 200 created: %v", err)
	}
	placeholder, err := f.employers.FindByExternalCompanyID(context.Background(), 77)
	if err != nil || created.EmployerID != placeholder.ID {
		t.Fatalf("expected placeholder employer for company 77")
	}
}

func TestPullCandidates_CreatesAndLinksByEmail(t *testing.T) {
	known := testCandidate("ada@x.io")
	known.Skills = []string{"math"}
	f := newReconcilerFixture(nil, []candidate.Candidate{known})
	f.candGW.records = []ats.CandidateRecord{
		{CandidateID: "11", FirstName: "Ada", LastName: "King", Email: "ADA@x.io"},
		{CandidateID: "12", FirstName: "Alan", LastName: "Turing", Email: "alan@x.io"},
		{CandidateID: "13", FirstName: "No", LastName: "Email"},
	}

	report, err := f.r.PullCandidates(context.Background(), domain.TriggerManual)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Total != 3 || report.Success != 2 || report.Failed != 1 {
		t.Fatalf("expected 3/2/1, got %+v", report)
	}

	linked, _ := f.cands.GetByID(context.Background(), known.ID)
	if linked.ExternalID == nil || *linked.ExternalID != "11" || linked.Name != "Ada King" {
		t.Fatalf("expected existing candidate linked and merged, got %+v", linked)
	}
	if len(linked.Skills) != 1 {
		t.Fatalf("local-only fields must survive a pull")
	}

	alan, err := f.cands.GetByEmail(context.Background(), "alan@x.io")
	if err != nil {
		t.Fatalf("expected alan created: %v", err)
	}
	if alan.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(alan.PasswordHash), []byte("")) == nil {
		t.Fatalf("expected a random bcrypt password hash")
	}
	if report.Details[1].Operation != domain.OperationLocalCreate {
		t.Fatalf("expected local_create, got %s", report.Details[1].Operation)
	}
}

func TestRun_UnknownRunName(t *testing.T) {
	f := newReconcilerFixture(nil, nil)
	if _, err := f.r.Run(context.Background(), domain.RunName("push_invoices"), domain.TriggerCLI); err == nil {
		t.Fatalf("expected error for unknown run")
	}
}

func TestReconciler_WindowUsesClock(t *testing.T) {
	f := newReconcilerFixture(nil, nil)
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	f.r.now = func() time.Time { return now }
	if got := f.r.since(); !got.Equal(now.Add(-24 * time.Hour)) {
		t.Fatalf("expected 24h window, got %v", got)
	}
}
