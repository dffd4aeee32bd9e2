package atssync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ats-sync/internal/domain"
	"ats-sync/internal/domain/candidate"
	"ats-sync/internal/domain/job"
	"ats-sync/internal/infrastructure/ats"
	"ats-sync/internal/repository"
)

func strp(s string) *string { return &s }

type fakeJobGateway struct {
	enabled bool

	creates  []ats.JobPayload
	updates  map[string]ats.JobPayload
	searches int
	records  []ats.JobRecord

	failCreate map[int]error
	panicOn    int
	searchErr  error
}

func newFakeJobGateway() *fakeJobGateway {
	return &fakeJobGateway{enabled: true, updates: map[string]ats.JobPayload{}, failCreate: map[int]error{}}
}

func (g *fakeJobGateway) Enabled() bool { return g.enabled }

func (g *fakeJobGateway) calls() int { return len(g.creates) + len(g.updates) + g.searches }

func (g *fakeJobGateway) CreateJob(_ context.Context, in ats.JobPayload) (string, error) {
	g.creates = append(g.creates, in)
	n := len(g.creates)
	if n == g.panicOn {
		panic("gateway exploded")
	}
	if err, ok := g.failCreate[n]; ok {
		return "", err
	}
	return fmt.Sprintf("J-%d", n), nil
}

func (g *fakeJobGateway) UpdateJob(_ context.Context, externalID string, in ats.JobPayload) error {
	g.updates[externalID] = in
	return nil
}

func (g *fakeJobGateway) SearchJobs(context.Context, map[string]any) ([]ats.JobRecord, error) {
	g.searches++
	return g.records, g.searchErr
}

type fakeCandidateGateway struct {
	enabled bool

	creates  []ats.CandidatePayload
	updates  map[string]ats.CandidatePayload
	uploads  map[string][]byte
	searches int
	records  []ats.CandidateRecord

	failCreate map[int]error
	uploadErr  error
}

func newFakeCandidateGateway() *fakeCandidateGateway {
	return &fakeCandidateGateway{
		enabled:    true,
		updates:    map[string]ats.CandidatePayload{},
		uploads:    map[string][]byte{},
		failCreate: map[int]error{},
	}
}

func (g *fakeCandidateGateway) Enabled() bool { return g.enabled }

func (g *fakeCandidateGateway) calls() int {
	return len(g.creates) + len(g.updates) + len(g.uploads) + g.searches
}

func (g *fakeCandidateGateway) CreateCandidate(_ context.Context, in ats.CandidatePayload) (string, error) {
	g.creates = append(g.creates, in)
	n := len(g.creates)
	if err, ok := g.failCreate[n]; ok {
		return "", err
	}
	return fmt.Sprintf("C-%d", n), nil
}

func (g *fakeCandidateGateway) UpdateCandidate(_ context.Context, externalID string, in ats.CandidatePayload) error {
	g.updates[externalID] = in
	return nil
}

func (g *fakeCandidateGateway) SearchCandidates(context.Context, map[string]any) ([]ats.CandidateRecord, error) {
	g.searches++
	return g.records, nil
}

func (g *fakeCandidateGateway) UploadDocument(_ context.Context, externalID, fileName string, content []byte) error {
	if g.uploadErr != nil {
		return g.uploadErr
	}
	g.uploads[externalID+"/"+fileName] = content
	return nil
}

type fakeCompanies struct {
	id    int64
	err   error
	calls int
}

func (f *fakeCompanies) Ensure(context.Context, ats.CompanyInfo) (int64, error) {
	f.calls++
	return f.id, f.err
}

type fakeResumes struct {
	content []byte
	name    string
	err     error
}

func (f fakeResumes) Fetch(context.Context, string) ([]byte, string, error) {
	return f.content, f.name, f.err
}

type memJobRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]job.Job
	list []uuid.UUID

	listErr error
}

func newMemJobRepo(jobs ...job.Job) *memJobRepo {
	r := &memJobRepo{rows: map[uuid.UUID]job.Job{}}
	for _, j := range jobs {
		r.rows[j.ID] = j
		r.list = append(r.list, j.ID)
	}
	return r
}

func (r *memJobRepo) Create(_ context.Context, j *job.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	r.rows[j.ID] = *j
	r.list = append(r.list, j.ID)
	return nil
}

func (r *memJobRepo) Update(_ context.Context, j *job.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[j.ID]; !ok {
		return job.ErrNotFound
	}
	r.rows[j.ID] = *j
	return nil
}

func (r *memJobRepo) GetByID(_ context.Context, id uuid.UUID) (job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.rows[id]
	if !ok {
		return job.Job{}, job.ErrNotFound
	}
	return j, nil
}

func (r *memJobRepo) FindByExternal(_ context.Context, source, externalID string) (job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.rows {
		if j.ExternalID != nil && *j.ExternalID == externalID && j.ExternalSource != nil && *j.ExternalSource == source {
			return j, nil
		}
	}
	return job.Job{}, job.ErrNotFound
}

func (r *memJobRepo) ListPendingSync(_ context.Context, _ time.Time, limit int) ([]job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]job.Job, 0)
	for _, id := range r.list {
		if len(out) == limit {
			break
		}
		out = append(out, r.rows[id])
	}
	return out, nil
}

// MarkSyncAttempted moves the job behind every other pending job, matching
// the attempted-last ordering of the postgres query.
func (r *memJobRepo) MarkSyncAttempted(_ context.Context, id uuid.UUID, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = moveToBack(r.list, id)
	return nil
}

func moveToBack(list []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(list))
	found := false
	for _, v := range list {
		if v == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if found {
		out = append(out, id)
	}
	return out
}

func (r *memJobRepo) SetExternalRef(_ context.Context, id uuid.UUID, externalID, source string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.rows[id]
	if !ok {
		return job.ErrNotFound
	}
	j.MarkSynced(externalID, source)
	r.rows[id] = j
	return nil
}

type memCandidateRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]candidate.Candidate
	list []uuid.UUID
}

func newMemCandidateRepo(cs ...candidate.Candidate) *memCandidateRepo {
	r := &memCandidateRepo{rows: map[uuid.UUID]candidate.Candidate{}}
	for _, c := range cs {
		r.rows[c.ID] = c
		r.list = append(r.list, c.ID)
	}
	return r
}

func (r *memCandidateRepo) Create(_ context.Context, c *candidate.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.Email == c.Email {
			return candidate.ErrEmailDuplicate
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.rows[c.ID] = *c
	r.list = append(r.list, c.ID)
	return nil
}

func (r *memCandidateRepo) Update(_ context.Context, c *candidate.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[c.ID]; !ok {
		return candidate.ErrNotFound
	}
	r.rows[c.ID] = *c
	return nil
}

func (r *memCandidateRepo) GetByID(_ context.Context, id uuid.UUID) (candidate.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return candidate.Candidate{}, candidate.ErrNotFound
	}
	return c, nil
}

func (r *memCandidateRepo) GetByEmail(_ context.Context, email string) (candidate.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.Email == candidate.NormalizeEmail(email) {
			return c, nil
		}
	}
	return candidate.Candidate{}, candidate.ErrNotFound
}

func (r *memCandidateRepo) FindByExternal(_ context.Context, source, externalID string) (candidate.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.ExternalID != nil && *c.ExternalID == externalID && c.ExternalSource != nil && *c.ExternalSource == source {
			return c, nil
		}
	}
	return candidate.Candidate{}, candidate.ErrNotFound
}

func (r *memCandidateRepo) ListPendingSync(_ context.Context, _ time.Time, limit int) ([]candidate.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]candidate.Candidate, 0)
	for _, id := range r.list {
		if len(out) == limit {
			break
		}
		out = append(out, r.rows[id])
	}
	return out, nil
}

func (r *memCandidateRepo) SetExternalRef(_ context.Context, id uuid.UUID, externalID, source string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return candidate.ErrNotFound
	}
	c.MarkSynced(externalID, source)
	r.rows[id] = c
	return nil
}

func (r *memCandidateRepo) MarkSyncAttempted(_ context.Context, id uuid.UUID, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = moveToBack(r.list, id)
	return nil
}

type memEmployerRepo struct {
	rows map[uuid.UUID]job.Employer
}

func newMemEmployerRepo(es ...job.Employer) *memEmployerRepo {
	r := &memEmployerRepo{rows: map[uuid.UUID]job.Employer{}}
	for _, e := range es {
		r.rows[e.ID] = e
	}
	return r
}

func (r *memEmployerRepo) Create(_ context.Context, e *job.Employer) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.rows[e.ID] = *e
	return nil
}

func (r *memEmployerRepo) GetByID(_ context.Context, id uuid.UUID) (job.Employer, error) {
	e, ok := r.rows[id]
	if !ok {
		return job.Employer{}, repository.ErrEmployerNotFound
	}
	return e, nil
}

func (r *memEmployerRepo) FindByExternalCompanyID(_ context.Context, companyID int64) (job.Employer, error) {
	for _, e := range r.rows {
		if e.ExternalCompanyID != nil && *e.ExternalCompanyID == companyID {
			return e, nil
		}
	}
	return job.Employer{}, repository.ErrEmployerNotFound
}

func (r *memEmployerRepo) SetExternalCompanyID(_ context.Context, id uuid.UUID, companyID int64) error {
	e, ok := r.rows[id]
	if !ok {
		return repository.ErrEmployerNotFound
	}
	e.ExternalCompanyID = &companyID
	r.rows[id] = e
	return nil
}

type memRunRepo struct {
	started  []domain.RunName
	finished map[string]domain.BatchReport
	errs     map[string]error
}

func newMemRunRepo() *memRunRepo {
	return &memRunRepo{finished: map[string]domain.BatchReport{}, errs: map[string]error{}}
}

func (r *memRunRepo) Start(_ context.Context, run domain.RunName, _ domain.Trigger, _ time.Time) (string, error) {
	r.started = append(r.started, run)
	return fmt.Sprintf("run-%d", len(r.started)), nil
}

func (r *memRunRepo) Finish(_ context.Context, id string, report domain.BatchReport, runErr error) error {
	r.finished[id] = report
	r.errs[id] = runErr
	return nil
}

func (r *memRunRepo) ListRecent(context.Context, int) ([]domain.SyncRun, error) {
	return nil, errors.New("not implemented")
}

type recordingNotifier struct {
	reports []domain.BatchReport
}

func (n *recordingNotifier) NotifySyncCompleted(r domain.BatchReport) {
	n.reports = append(n.reports, r)
}

type stubLock struct {
	held bool
}

func (l *stubLock) Acquire(context.Context, string) (func(), bool, error) {
	if l.held {
		return func() {}, false, nil
	}
	return func() {}, true, nil
}
