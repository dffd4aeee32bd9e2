package atssync

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"ats-sync/internal/domain"
	"ats-sync/internal/domain/candidate"
	"ats-sync/internal/domain/job"
	"ats-sync/internal/infrastructure/ats"
	"ats-sync/internal/mapping"
	"ats-sync/internal/pkg/flags"
	"ats-sync/internal/pkg/logger"
	"ats-sync/internal/repository"
)

const (
	DefaultBatchSize     = 50
	DefaultUpdatedWindow = 24 * time.Hour
)

// RunLocker grants exclusive use of a run name.
type RunLocker interface {
	Acquire(ctx context.Context, name string) (release func(), ok bool, err error)
}

type ReportNotifier interface {
	NotifySyncCompleted(report domain.BatchReport)
}

type ReconcilerConfig struct {
	BatchSize     int
	UpdatedWindow time.Duration
	RatePerSecond float64
}

type ReconcilerDeps struct {
	Jobs       *JobSync
	Candidates *CandidateSync
	JobRepo    repository.JobRepository
	CandRepo   repository.CandidateRepository
	Employers  repository.EmployerRepository
	Runs       repository.SyncRunRepository
	Lock       RunLocker
	Notifier   ReportNotifier
	Flags      flags.Flags
	Logger     *zap.SugaredLogger
}

// Reconciler runs the four batch syncs. Records inside a run are processed
// one at a time and a failing record never stops the run; only failing to
// enumerate the batch does.
type Reconciler struct {
	jobs       *JobSync
	candidates *CandidateSync
	jobRepo    repository.JobRepository
	candRepo   repository.CandidateRepository
	employers  repository.EmployerRepository
	runs       repository.SyncRunRepository
	lock       RunLocker
	notifier   ReportNotifier
	flags      flags.Flags
	limiter    *rate.Limiter
	logger     *zap.SugaredLogger

	batchSize    int
	window       time.Duration
	passwordCost int
	now          func() time.Time
}

func NewReconciler(d ReconcilerDeps, cfg ReconcilerConfig) *Reconciler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.UpdatedWindow <= 0 {
		cfg.UpdatedWindow = DefaultUpdatedWindow
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	return &Reconciler{
		jobs:         d.Jobs,
		candidates:   d.Candidates,
		jobRepo:      d.JobRepo,
		candRepo:     d.CandRepo,
		employers:    d.Employers,
		runs:         d.Runs,
		lock:         d.Lock,
		notifier:     d.Notifier,
		flags:        d.Flags,
		limiter:      rate.NewLimiter(limit, 1),
		logger:       logger.OrNop(d.Logger),
		batchSize:    cfg.BatchSize,
		window:       cfg.UpdatedWindow,
		passwordCost: bcrypt.DefaultCost,
		now:          time.Now,
	}
}

func (r *Reconciler) PushJobs(ctx context.Context, t domain.Trigger) (domain.BatchReport, error) {
	return r.Run(ctx, domain.RunPushJobs, t)
}

func (r *Reconciler) PushCandidates(ctx context.Context, t domain.Trigger) (domain.BatchReport, error) {
	return r.Run(ctx, domain.RunPushCandidates, t)
}

func (r *Reconciler) PullJobs(ctx context.Context, t domain.Trigger) (domain.BatchReport, error) {
	return r.Run(ctx, domain.RunPullJobs, t)
}

func (r *Reconciler) PullCandidates(ctx context.Context, t domain.Trigger) (domain.BatchReport, error) {
	return r.Run(ctx, domain.RunPullCandidates, t)
}

// Run executes one named run under its advisory lock and records it in the
// run history.
func (r *Reconciler) Run(ctx context.Context, name domain.RunName, t domain.Trigger) (domain.BatchReport, error) {
	report := domain.NewBatchReport(name, r.now().UTC())
	if !name.Valid() {
		return report, fmt.Errorf("unknown sync run %q", name)
	}
	if r.flags == nil || !r.flags.IntegrationEnabled() {
		return report, ats.ErrDisabled
	}

	if r.lock != nil {
		release, ok, err := r.lock.Acquire(ctx, string(name))
		if err != nil {
			return report, fmt.Errorf("acquire run lock: %w", err)
		}
		if !ok {
			r.logger.Infow("sync run skipped, already running", "run", name, "trigger", t)
			return report, ErrRunInProgress
		}
		defer release()
	}

	runID := ""
	if r.runs != nil {
		id, err := r.runs.Start(ctx, name, t, report.StartedAt)
		if err != nil {
			r.logger.Warnw("sync run history not recorded", "run", name, "error", err)
		}
		runID = id
	}

	r.logger.Infow("sync run started", "run", name, "trigger", t)

	var err error
	switch name {
	case domain.RunPushJobs:
		err = r.pushJobs(ctx, &report)
	case domain.RunPushCandidates:
		err = r.pushCandidates(ctx, &report)
	case domain.RunPullJobs:
		err = r.pullJobs(ctx, &report)
	case domain.RunPullCandidates:
		err = r.pullCandidates(ctx, &report)
	}
	report.FinishedAt = r.now().UTC()

	if runID != "" {
		if ferr := r.runs.Finish(context.WithoutCancel(ctx), runID, report, err); ferr != nil {
			r.logger.Warnw("sync run history not finalized", "run", name, "run_id", runID, "error", ferr)
		}
	}

	if err != nil {
		r.logger.Errorw("sync run aborted", "run", name, "processed", report.Total, "error", err)
		return report, err
	}

	r.logger.Infow("sync run completed",
		"run", name,
		"total", report.Total,
		"success", report.Success,
		"failed", report.Failed,
		"duration", report.FinishedAt.Sub(report.StartedAt).String(),
	)
	if r.notifier != nil {
		r.notifier.NotifySyncCompleted(report)
	}
	return report, nil
}

func (r *Reconciler) since() time.Time {
	return r.now().Add(-r.window)
}

func (r *Reconciler) pushJobs(ctx context.Context, report *domain.BatchReport) error {
	if r.jobRepo == nil || r.jobs == nil {
		return fmt.Errorf("%w: job sync", ats.ErrConfiguration)
	}
	list, err := r.jobRepo.ListPendingSync(ctx, r.since(), r.batchSize)
	if err != nil {
		return fmt.Errorf("list jobs pending sync: %w", err)
	}

	for i := range list {
		j := list[i]
		op := domain.OperationCreate
		if j.IsSynced() {
			op = domain.OperationUpdate
		}
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}

		out, err := r.step(j.ID.String(), op, func() (domain.SyncResult, error) {
			return r.jobs.Push(ctx, &j)
		})
		if err != nil {
			return err
		}
		if err := r.jobRepo.MarkSyncAttempted(ctx, j.ID, r.now()); err != nil {
			r.logger.Warnw("job sync attempt not recorded", "job_id", j.ID, "error", err)
		}
		report.Add(out)
	}
	return nil
}

func (r *Reconciler) pushCandidates(ctx context.Context, report *domain.BatchReport) error {
	if r.candRepo == nil || r.candidates == nil {
		return fmt.Errorf("%w: candidate sync", ats.ErrConfiguration)
	}
	list, err := r.candRepo.ListPendingSync(ctx, r.since(), r.batchSize)
	if err != nil {
		return fmt.Errorf("list candidates pending sync: %w", err)
	}

	for i := range list {
		c := list[i]
		op := domain.OperationCreate
		if c.IsSynced() {
			op = domain.OperationUpdate
		}
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}

		out, err := r.step(c.ID.String(), op, func() (domain.SyncResult, error) {
			return r.candidates.Push(ctx, &c)
		})
		if err != nil {
			return err
		}
		if err := r.candRepo.MarkSyncAttempted(ctx, c.ID, r.now()); err != nil {
			r.logger.Warnw("candidate sync attempt not recorded", "candidate_id", c.ID, "error", err)
		}
		report.Add(out)
	}
	return nil
}

// step runs one record. A panic inside fn becomes a failed outcome; only a
// configuration error is returned.
func (r *Reconciler) step(localID string, op domain.Operation, fn func() (domain.SyncResult, error)) (out domain.RecordOutcome, err error) {
	out = domain.RecordOutcome{LocalID: localID, Operation: op}
	defer func() {
		if p := recover(); p != nil {
			r.logger.Errorw("sync record panicked", "local_id", localID, "panic", p)
			out.Success = false
			out.Error = fmt.Sprintf("panic: %v", p)
			err = nil
		}
	}()

	res, err := fn()
	if err != nil {
		return out, err
	}
	out.Success = res.Success
	out.ExternalID = res.ExternalID
	out.Error = res.Error
	out.Warning = res.Warning
	return out, nil
}

func (r *Reconciler) pullJobs(ctx context.Context, report *domain.BatchReport) error {
	if r.jobRepo == nil || r.jobs == nil {
		return fmt.Errorf("%w: job sync", ats.ErrConfiguration)
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	res := r.jobs.Pull(ctx, JobFilter{})
	if !res.Success {
		return fmt.Errorf("pull jobs: %s", res.Error)
	}

	for _, pj := range res.Jobs {
		extID := deref(pj.ExternalID)
		var op domain.Operation
		out, err := r.step(pj.ID.String(), domain.OperationLocalUpdate, func() (domain.SyncResult, error) {
			var res domain.SyncResult
			res, op = r.applyPulledJob(ctx, pj)
			return res, nil
		})
		if err != nil {
			return err
		}
		if op != "" {
			out.Operation = op
		}
		out.ExternalID = extID
		report.Add(out)
	}
	return nil
}

func (r *Reconciler) applyPulledJob(ctx context.Context, pj PulledJob) (domain.SyncResult, domain.Operation) {
	extID := deref(pj.ExternalID)

	local, err := r.jobRepo.FindByExternal(ctx, domain.ExternalSourceATS, extID)
	switch {
	case err == nil:
		mergeJob(&local, pj.Job)
		if err := r.jobRepo.Update(ctx, &local); err != nil {
			return domain.Failed(err), domain.OperationLocalUpdate
		}
		return domain.SyncResult{Success: true, ExternalID: extID}, domain.OperationLocalUpdate
	case !errors.Is(err, job.ErrNotFound):
		return domain.Failed(err), domain.OperationLocalUpdate
	}

	employerID, err := r.employerFor(ctx, pj.ExternalCompanyID)
	if err != nil {
		return domain.Failed(err), domain.OperationLocalCreate
	}
	created := pj.Job
	created.EmployerID = employerID
	if err := r.jobRepo.Create(ctx, &created); err != nil {
		return domain.Failed(err), domain.OperationLocalCreate
	}
	return domain.SyncResult{Success: true, ExternalID: extID}, domain.OperationLocalCreate
}

// employerFor finds the local employer for an ATS company, creating a
// placeholder employer the first time a company is seen.
func (r *Reconciler) employerFor(ctx context.Context, companyID int64) (uuid.UUID, error) {
	if companyID <= 0 {
		return uuid.Nil, errors.New("remote job has no company id")
	}
	if r.employers == nil {
		return uuid.Nil, fmt.Errorf("%w: employer repository", ats.ErrConfiguration)
	}
	emp, err := r.employers.FindByExternalCompanyID(ctx, companyID)
	if err == nil {
		return emp.ID, nil
	}
	if !errors.Is(err, repository.ErrEmployerNotFound) {
		return uuid.Nil, err
	}

	id := companyID
	emp = job.Employer{
		ID:                mapping.SyntheticID("company", fmt.Sprint(companyID)),
		CompanyName:       fmt.Sprintf("ATS company %d", companyID),
		ExternalCompanyID: &id,
	}
	if err := r.employers.Create(ctx, &emp); err != nil {
		return uuid.Nil, err
	}
	return emp.ID, nil
}

func mergeJob(dst *job.Job, src job.Job) {
	dst.Title = src.Title
	dst.Description = src.Description
	dst.EmploymentType = src.EmploymentType
	dst.PayRange = src.PayRange
	dst.Location = src.Location
	dst.Skills = src.Skills
	dst.Experience = src.Experience
	dst.Openings = src.Openings
	dst.Status = src.Status
}

func (r *Reconciler) pullCandidates(ctx context.Context, report *domain.BatchReport) error {
	if r.candRepo == nil || r.candidates == nil {
		return fmt.Errorf("%w: candidate sync", ats.ErrConfiguration)
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	res := r.candidates.Pull(ctx, mapping.CandidateCriteria{})
	if !res.Success {
		return fmt.Errorf("pull candidates: %s", res.Error)
	}

	for _, pc := range res.Candidates {
		extID := deref(pc.ExternalID)
		var op domain.Operation
		out, err := r.step(pc.ID.String(), domain.OperationLocalUpdate, func() (domain.SyncResult, error) {
			var res domain.SyncResult
			res, op = r.applyPulledCandidate(ctx, pc)
			return res, nil
		})
		if err != nil {
			return err
		}
		if op != "" {
			out.Operation = op
		}
		out.ExternalID = extID
		report.Add(out)
	}
	return nil
}

// applyPulledCandidate matches by external reference, then by email. Only
// the fields the ATS carries are overwritten on an existing candidate.
func (r *Reconciler) applyPulledCandidate(ctx context.Context, pc candidate.Candidate) (domain.SyncResult, domain.Operation) {
	extID := deref(pc.ExternalID)

	local, err := r.candRepo.FindByExternal(ctx, domain.ExternalSourceATS, extID)
	if errors.Is(err, candidate.ErrNotFound) && pc.Email != "" {
		local, err = r.candRepo.GetByEmail(ctx, pc.Email)
		if err == nil {
			if err := r.candRepo.SetExternalRef(ctx, local.ID, extID, domain.ExternalSourceATS); err != nil {
				return domain.Failed(err), domain.OperationLocalUpdate
			}
			local.MarkSynced(extID, domain.ExternalSourceATS)
		}
	}

	switch {
	case err == nil:
		mergeCandidate(&local, pc)
		if err := r.candRepo.Update(ctx, &local); err != nil {
			return domain.Failed(err), domain.OperationLocalUpdate
		}
		return domain.SyncResult{Success: true, ExternalID: extID}, domain.OperationLocalUpdate
	case !errors.Is(err, candidate.ErrNotFound):
		return domain.Failed(err), domain.OperationLocalUpdate
	}

	if pc.Email == "" {
		return domain.SyncResult{Success: false, Error: "remote candidate has no email"}, domain.OperationLocalCreate
	}
	hash, err := r.randomPasswordHash()
	if err != nil {
		return domain.Failed(err), domain.OperationLocalCreate
	}
	pc.PasswordHash = hash
	if err := r.candRepo.Create(ctx, &pc); err != nil {
		return domain.Failed(err), domain.OperationLocalCreate
	}
	return domain.SyncResult{Success: true, ExternalID: extID}, domain.OperationLocalCreate
}

func mergeCandidate(dst *candidate.Candidate, src candidate.Candidate) {
	dst.Name = src.Name
	dst.Email = src.Email
	if src.Phone != "" {
		dst.Phone = src.Phone
	}
	dst.Address = src.Address
	dst.City = src.City
	dst.State = src.State
	dst.Country = src.Country
	dst.PostalCode = src.PostalCode
	dst.Headline = src.Headline
	dst.PayScale = src.PayScale
	dst.PayType = src.PayType
}

// randomPasswordHash gives pulled candidates an unusable password until they
// reset it.
func (r *Reconciler) randomPasswordHash() (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(base64.RawURLEncoding.EncodeToString(raw)), r.passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
