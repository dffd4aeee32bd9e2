package candidate

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ats-sync/internal/domain"
	"ats-sync/internal/domain/candidate"
	"ats-sync/internal/events"
	"ats-sync/internal/pkg/logger"
	"ats-sync/internal/repository"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("candidate not found")
	ErrNotSynced    = errors.New("candidate has no ATS record yet")
	ErrInternal     = errors.New("internal error")
)

const minPasswordLength = 8

// ProfileInput is an upsert keyed by email. Nil fields keep their stored
// value; Password is only required when the profile is new.
type ProfileInput struct {
	Email           string
	Password        *string
	Name            *string
	Phone           *string
	Address         *string
	City            *string
	State           *string
	Country         *string
	PostalCode      *string
	Headline        *string
	DesiredJobTitle *string
	Experience      *int
	Skills          []string
	PayScale        *float64
	PayType         *string
	ResumeLink      *string
}

// ResumeUploader sends a document to the candidate's ATS record.
type ResumeUploader interface {
	UploadResume(ctx context.Context, externalID string, file []byte, fileName string) (domain.SyncResult, error)
}

type Service struct {
	candidates repository.CandidateRepository
	uploader   ResumeUploader
	events     events.Publisher
	logger     *zap.SugaredLogger
}

func NewService(candidates repository.CandidateRepository, uploader ResumeUploader, publisher events.Publisher, log *zap.SugaredLogger) *Service {
	return &Service{
		candidates: candidates,
		uploader:   uploader,
		events:     publisher,
		logger:     logger.OrNop(log),
	}
}

// SaveCandidateProfile creates or updates the candidate with the given email
// and announces the change. The returned bool is true when a new candidate
// was created.
func (s *Service) SaveCandidateProfile(ctx context.Context, in ProfileInput) (candidate.Candidate, bool, error) {
	return s.save(ctx, in, true)
}

func (s *Service) save(ctx context.Context, in ProfileInput, retry bool) (candidate.Candidate, bool, error) {
	email := candidate.NormalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return candidate.Candidate{}, false, ErrInvalidInput
	}

	existing, err := s.candidates.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := apply(&existing, in); err != nil {
			return candidate.Candidate{}, false, err
		}
		if in.Password != nil {
			hash, err := hashPassword(*in.Password)
			if err != nil {
				return candidate.Candidate{}, false, err
			}
			existing.PasswordHash = hash
		}
		if err := s.candidates.Update(ctx, &existing); err != nil {
			s.logger.Errorw("update candidate failed", "candidate_id", existing.ID, "error", err)
			return candidate.Candidate{}, false, ErrInternal
		}
		s.publish(ctx, existing.ID)
		return sanitize(existing), false, nil

	case errors.Is(err, candidate.ErrNotFound):
	default:
		return candidate.Candidate{}, false, ErrInternal
	}

	if in.Password == nil || in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return candidate.Candidate{}, false, ErrInvalidInput
	}
	hash, err := hashPassword(*in.Password)
	if err != nil {
		return candidate.Candidate{}, false, err
	}

	c := candidate.Candidate{Email: email, PasswordHash: hash, Skills: []string{}}
	if err := apply(&c, in); err != nil {
		return candidate.Candidate{}, false, err
	}
	if err := s.candidates.Create(ctx, &c); err != nil {
		if retry && errors.Is(err, candidate.ErrEmailDuplicate) {
			// Lost a race with a concurrent create; retry once as an update.
			return s.save(ctx, in, false)
		}
		s.logger.Errorw("create candidate failed", "error", err)
		return candidate.Candidate{}, false, ErrInternal
	}

	s.publish(ctx, c.ID)
	return sanitize(c), true, nil
}

// UploadResume forwards a document to the ATS record of an already synced
// candidate. Validation failures come back as ats.ValidationError.
func (s *Service) UploadResume(ctx context.Context, id uuid.UUID, file []byte, fileName string) (domain.SyncResult, error) {
	c, err := s.candidates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, candidate.ErrNotFound) {
			return domain.SyncResult{}, ErrNotFound
		}
		return domain.SyncResult{}, ErrInternal
	}
	if !c.IsSynced() {
		return domain.SyncResult{}, ErrNotSynced
	}
	return s.uploader.UploadResume(ctx, *c.ExternalID, file, fileName)
}

func (s *Service) publish(ctx context.Context, id uuid.UUID) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, events.CandidateUpserted(id)); err != nil {
		s.logger.Warnw("candidate event not published", "candidate_id", id, "error", err)
	}
}

func apply(c *candidate.Candidate, in ProfileInput) error {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&c.Name, in.Name)
	set(&c.Phone, in.Phone)
	set(&c.Address, in.Address)
	set(&c.City, in.City)
	set(&c.State, in.State)
	set(&c.Country, in.Country)
	set(&c.PostalCode, in.PostalCode)
	set(&c.Headline, in.Headline)
	set(&c.DesiredJobTitle, in.DesiredJobTitle)
	set(&c.PayType, in.PayType)

	if in.Name != nil && c.Name == "" {
		return ErrInvalidInput
	}
	if in.Experience != nil {
		if *in.Experience < 0 {
			return ErrInvalidInput
		}
		c.Experience = *in.Experience
	}
	if in.PayScale != nil {
		if *in.PayScale < 0 {
			return ErrInvalidInput
		}
		c.PayScale = in.PayScale
	}
	if in.Skills != nil {
		skills := make([]string, 0, len(in.Skills))
		for _, sk := range in.Skills {
			if sk = strings.TrimSpace(sk); sk != "" {
				skills = append(skills, sk)
			}
		}
		c.Skills = skills
	}
	if in.ResumeLink != nil {
		link := strings.TrimSpace(*in.ResumeLink)
		if link == "" {
			c.ResumeLink = nil
		} else {
			c.ResumeLink = &link
		}
	}
	return nil
}

func hashPassword(pw string) (string, error) {
	pw = strings.TrimSpace(pw)
	if len(pw) < minPasswordLength {
		return "", ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrInternal
	}
	return string(hash), nil
}

func sanitize(c candidate.Candidate) candidate.Candidate {
	c.PasswordHash = ""
	return c
}
