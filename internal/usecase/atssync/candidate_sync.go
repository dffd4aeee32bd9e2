package atssync

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"ats-sync/internal/domain"
	"ats-sync/internal/domain/candidate"
	"ats-sync/internal/infrastructure/ats"
	"ats-sync/internal/mapping"
	"ats-sync/internal/pkg/logger"
	"ats-sync/internal/repository"
)

type CandidateSync struct {
	gateway    CandidateGateway
	candidates repository.CandidateRepository
	resumes    ResumeFetcher
	logger     *zap.SugaredLogger
}

func NewCandidateSync(gw CandidateGateway, candidates repository.CandidateRepository, resumes ResumeFetcher, log *zap.SugaredLogger) *CandidateSync {
	return &CandidateSync{
		gateway:    gw,
		candidates: candidates,
		resumes:    resumes,
		logger:     logger.OrNop(log),
	}
}

// Push creates or updates the candidate. After a create, the resume behind
// ResumeLink is uploaded; an upload failure leaves the create in place and
// is reported as a warning.
func (s *CandidateSync) Push(ctx context.Context, c *candidate.Candidate) (domain.SyncResult, error) {
	if !s.gateway.Enabled() {
		return domain.Disabled(), nil
	}
	if c == nil {
		return domain.SyncResult{Success: false, Error: "nil candidate"}, nil
	}
	if c.IsSynced() {
		return s.Update(ctx, *c.ExternalID, *c)
	}

	externalID, err := s.gateway.CreateCandidate(ctx, mapping.CandidateToExternal(*c))
	if err != nil {
		s.logger.Warnw("ats candidate create failed", "candidate_id", c.ID, "error", err)
		return settle(err)
	}

	c.MarkSynced(externalID, domain.ExternalSourceATS)
	res := domain.SyncResult{Success: true, ExternalID: externalID}
	if s.candidates != nil {
		if err := s.candidates.SetExternalRef(ctx, c.ID, externalID, domain.ExternalSourceATS); err != nil {
			s.logger.Errorw("ats candidate created but external reference not saved", "candidate_id", c.ID, "external_id", externalID, "error", err)
			res.Warning = "created but local reference not saved: " + err.Error()
		}
	}
	s.logger.Infow("ats candidate created", "candidate_id", c.ID, "external_id", externalID)

	if link := deref(c.ResumeLink); strings.TrimSpace(link) != "" {
		if err := s.pushResume(ctx, externalID, link); err != nil {
			s.logger.Warnw("ats candidate created but document upload failed", "candidate_id", c.ID, "external_id", externalID, "error", err)
			res.Warning = joinWarning(res.Warning, "created but document upload failed: "+err.Error())
		}
	}
	return res, nil
}

func (s *CandidateSync) pushResume(ctx context.Context, externalID, link string) error {
	if s.resumes == nil {
		return errors.New("no resume fetcher configured")
	}
	content, name, err := s.resumes.Fetch(ctx, link)
	if err != nil {
		return err
	}
	res, err := s.UploadResume(ctx, externalID, content, name)
	if err != nil {
		return err
	}
	if !res.Success {
		return errors.New(res.Error)
	}
	return nil
}

func (s *CandidateSync) Update(ctx context.Context, externalID string, c candidate.Candidate) (domain.SyncResult, error) {
	if !s.gateway.Enabled() {
		return domain.Disabled(), nil
	}
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return domain.SyncResult{Success: false, Error: "empty external id"}, nil
	}

	if err := s.gateway.UpdateCandidate(ctx, externalID, mapping.CandidateToExternal(c)); err != nil {
		s.logger.Warnw("ats candidate update failed", "candidate_id", c.ID, "external_id", externalID, "error", err)
		return settle(err)
	}
	return domain.SyncResult{Success: true, ExternalID: externalID}, nil
}

// UploadResume validates and uploads a document. Invalid input is returned as
// an ats.ValidationError before any network call; remote failures are
// reported in the result.
func (s *CandidateSync) UploadResume(ctx context.Context, externalID string, file []byte, fileName string) (domain.SyncResult, error) {
	externalID = strings.TrimSpace(externalID)
	name, known, err := ats.ValidateDocument(externalID, file, fileName)
	if err != nil {
		return domain.Failed(err), err
	}
	if !s.gateway.Enabled() {
		return domain.Disabled(), nil
	}
	if !known {
		s.logger.Warnw("uploading document with unrecognized extension", "external_id", externalID, "file", name)
	}

	if err := s.gateway.UploadDocument(ctx, externalID, name, file); err != nil {
		s.logger.Warnw("ats document upload failed", "external_id", externalID, "file", name, "error", err)
		return settle(err)
	}
	return domain.SyncResult{Success: true, ExternalID: externalID}, nil
}

type PullCandidatesResult struct {
	Success    bool                  `json:"success"`
	Candidates []candidate.Candidate `json:"candidates"`
	Error      string                `json:"error,omitempty"`
}

func (s *CandidateSync) Pull(ctx context.Context, criteria mapping.CandidateCriteria) PullCandidatesResult {
	if !s.gateway.Enabled() {
		return PullCandidatesResult{Success: false, Candidates: []candidate.Candidate{}, Error: domain.MessageIntegrationDisabled}
	}

	records, err := s.gateway.SearchCandidates(ctx, mapping.CandidateSearchFilter(criteria))
	if err != nil {
		s.logger.Warnw("ats candidate search failed", "error", err)
		return PullCandidatesResult{Success: false, Candidates: []candidate.Candidate{}, Error: err.Error()}
	}

	out := make([]candidate.Candidate, 0, len(records))
	for _, r := range records {
		if r.Identifier() == "" {
			continue
		}
		out = append(out, mapping.CandidateFromExternal(r))
	}
	return PullCandidatesResult{Success: true, Candidates: out}
}

func joinWarning(a, b string) string {
	if a == "" {
		return b
	}
	return a + "; " + b
}
