package atssync

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ats-sync/internal/domain"
	"ats-sync/internal/domain/job"
	"ats-sync/internal/infrastructure/ats"
	"ats-sync/internal/mapping"
	"ats-sync/internal/pkg/logger"
	"ats-sync/internal/repository"
)

type JobSync struct {
	gateway   JobGateway
	companies CompanyEnsurer
	jobs      repository.JobRepository
	employers repository.EmployerRepository
	logger    *zap.SugaredLogger
}

func NewJobSync(gw JobGateway, companies CompanyEnsurer, jobs repository.JobRepository, employers repository.EmployerRepository, log *zap.SugaredLogger) *JobSync {
	return &JobSync{
		gateway:   gw,
		companies: companies,
		jobs:      jobs,
		employers: employers,
		logger:    logger.OrNop(log),
	}
}

// Push creates the job in the ATS, or updates it when it already carries an
// external id. On a successful create the external reference is stored on
// both j and the local row. The error is non-nil only for configuration
// problems.
func (s *JobSync) Push(ctx context.Context, j *job.Job) (domain.SyncResult, error) {
	if !s.gateway.Enabled() {
		return domain.Disabled(), nil
	}
	if j == nil {
		return domain.SyncResult{Success: false, Error: "nil job"}, nil
	}
	if j.IsSynced() {
		return s.Update(ctx, *j.ExternalID, *j)
	}

	payload, err := s.payload(ctx, *j)
	if err != nil {
		return settle(err)
	}

	externalID, err := s.gateway.CreateJob(ctx, payload)
	if err != nil {
		s.logger.Warnw("ats job create failed", "job_id", j.ID, "error", err)
		return settle(err)
	}

	j.MarkSynced(externalID, domain.ExternalSourceATS)
	res := domain.SyncResult{Success: true, ExternalID: externalID}
	if s.jobs != nil {
		if err := s.jobs.SetExternalRef(ctx, j.ID, externalID, domain.ExternalSourceATS); err != nil {
			s.logger.Errorw("ats job created but external reference not saved", "job_id", j.ID, "external_id", externalID, "error", err)
			res.Warning = "created but local reference not saved: " + err.Error()
		}
	}
	s.logger.Infow("ats job created", "job_id", j.ID, "external_id", externalID)
	return res, nil
}

func (s *JobSync) Update(ctx context.Context, externalID string, j job.Job) (domain.SyncResult, error) {
	if !s.gateway.Enabled() {
		return domain.Disabled(), nil
	}
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return domain.SyncResult{Success: false, Error: "empty external id"}, nil
	}

	payload, err := s.payload(ctx, j)
	if err != nil {
		return settle(err)
	}
	if err := s.gateway.UpdateJob(ctx, externalID, payload); err != nil {
		s.logger.Warnw("ats job update failed", "job_id", j.ID, "external_id", externalID, "error", err)
		return settle(err)
	}
	return domain.SyncResult{Success: true, ExternalID: externalID}, nil
}

func (s *JobSync) payload(ctx context.Context, j job.Job) (ats.JobPayload, error) {
	companyID, err := s.companyID(ctx, j.EmployerID)
	if err != nil {
		return ats.JobPayload{}, err
	}
	p := mapping.JobToExternal(j)
	p.CompanyID = companyID
	return p, nil
}

// companyID prefers the id stored on the employer and falls back to company
// resolution, writing the resolved id back.
func (s *JobSync) companyID(ctx context.Context, employerID uuid.UUID) (int64, error) {
	if s.employers == nil {
		return 0, fmt.Errorf("%w: employer repository", ats.ErrConfiguration)
	}
	emp, err := s.employers.GetByID(ctx, employerID)
	if err != nil {
		return 0, fmt.Errorf("load employer %s: %w", employerID, err)
	}
	if emp.ExternalCompanyID != nil && *emp.ExternalCompanyID > 0 {
		return *emp.ExternalCompanyID, nil
	}
	if s.companies == nil {
		return 0, fmt.Errorf("%w: company resolver", ats.ErrConfiguration)
	}

	id, err := s.companies.Ensure(ctx, ats.CompanyInfo{
		Name:    emp.CompanyName,
		Email:   emp.Email,
		Phone:   emp.Phone,
		State:   emp.State,
		Country: emp.Country,
	})
	if err != nil {
		return 0, err
	}
	if err := s.employers.SetExternalCompanyID(ctx, emp.ID, id); err != nil {
		s.logger.Warnw("external company id not saved", "employer_id", emp.ID, "company_id", id, "error", err)
	}
	return id, nil
}

// JobFilter narrows a pull. Criteria go to the ATS search; the pay range and
// free-text query are applied to the results locally.
type JobFilter struct {
	Criteria mapping.JobCriteria
	MinPay   *float64
	MaxPay   *float64
	Query    string
}

// PulledJob is a remote job mapped to the local shape, with the ATS company
// id it belongs to.
type PulledJob struct {
	job.Job
	ExternalCompanyID int64 `json:"external_company_id,omitempty"`
}

type PullJobsResult struct {
	Success bool        `json:"success"`
	Jobs    []PulledJob `json:"jobs"`
	Error   string      `json:"error,omitempty"`
}

func (s *JobSync) Pull(ctx context.Context, f JobFilter) PullJobsResult {
	if !s.gateway.Enabled() {
		return PullJobsResult{Success: false, Jobs: []PulledJob{}, Error: domain.MessageIntegrationDisabled}
	}

	records, err := s.gateway.SearchJobs(ctx, mapping.JobSearchFilter(f.Criteria))
	if err != nil {
		s.logger.Warnw("ats job search failed", "error", err)
		return PullJobsResult{Success: false, Jobs: []PulledJob{}, Error: err.Error()}
	}

	out := make([]PulledJob, 0, len(records))
	for _, r := range records {
		if r.Identifier() == "" {
			s.logger.Debugw("ats job without id skipped", "title", r.Title)
			continue
		}
		j := mapping.JobFromExternal(r)
		if !matchesPay(j, f.MinPay, f.MaxPay) || !matchesQuery(j, f.Query) {
			continue
		}
		companyID, _ := strconv.ParseInt(strings.TrimSpace(r.CompanyID.String()), 10, 64)
		out = append(out, PulledJob{Job: j, ExternalCompanyID: companyID})
	}
	return PullJobsResult{Success: true, Jobs: out}
}
