package job

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ats-sync/internal/domain/job"
	"ats-sync/internal/events"
	"ats-sync/internal/pkg/logger"
	"ats-sync/internal/repository"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("job not found")
	ErrInternal     = errors.New("internal error")
)

// Input carries a job mutation. Nil fields are left untouched on update.
type Input struct {
	EmployerID     uuid.UUID
	Title          *string
	Description    *string
	EmploymentType *string
	PayMin         *float64
	PayMax         *float64
	City           *string
	State          *string
	PostalCode     *string
	Country        *string
	Skills         []string
	Experience     *int
	Openings       *int
	Status         *string
}

type Service struct {
	jobs      repository.JobRepository
	employers repository.EmployerRepository
	events    events.Publisher
	logger    *zap.SugaredLogger
}

func NewService(jobs repository.JobRepository, employers repository.EmployerRepository, publisher events.Publisher, log *zap.SugaredLogger) *Service {
	return &Service{
		jobs:      jobs,
		employers: employers,
		events:    publisher,
		logger:    logger.OrNop(log),
	}
}

// CreateJob stores the job and announces it. The ATS push happens
// asynchronously; its outcome never reaches the caller.
func (s *Service) CreateJob(ctx context.Context, in Input) (job.Job, error) {
	if in.EmployerID == uuid.Nil || in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return job.Job{}, ErrInvalidInput
	}
	if _, err := s.employers.GetByID(ctx, in.EmployerID); err != nil {
		if errors.Is(err, repository.ErrEmployerNotFound) {
			return job.Job{}, ErrInvalidInput
		}
		return job.Job{}, ErrInternal
	}

	j := job.Job{EmployerID: in.EmployerID, Status: job.StatusOpen, Skills: []string{}}
	if err := apply(&j, in); err != nil {
		return job.Job{}, err
	}

	if err := s.jobs.Create(ctx, &j); err != nil {
		s.logger.Errorw("create job failed", "error", err)
		return job.Job{}, ErrInternal
	}

	s.publish(ctx, j.ID)
	return j, nil
}

func (s *Service) UpdateJob(ctx context.Context, id uuid.UUID, in Input) (job.Job, error) {
	j, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return job.Job{}, ErrNotFound
		}
		return job.Job{}, ErrInternal
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return job.Job{}, ErrInvalidInput
	}
	if err := apply(&j, in); err != nil {
		return job.Job{}, err
	}

	if err := s.jobs.Update(ctx, &j); err != nil {
		s.logger.Errorw("update job failed", "job_id", id, "error", err)
		return job.Job{}, ErrInternal
	}

	s.publish(ctx, j.ID)
	return j, nil
}

func (s *Service) publish(ctx context.Context, id uuid.UUID) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, events.JobUpserted(id)); err != nil {
		s.logger.Warnw("job event not published", "job_id", id, "error", err)
	}
}

func apply(j *job.Job, in Input) error {
	if in.Title != nil {
		j.Title = trimmed(in.Title)
	}
	if in.Description != nil {
		j.Description = trimmed(in.Description)
	}
	if in.EmploymentType != nil {
		t, ok := job.ParseEmploymentType(*in.EmploymentType)
		if !ok {
			return ErrInvalidInput
		}
		j.EmploymentType = &t
	}
	if in.Status != nil {
		st, ok := job.ParseStatus(*in.Status)
		if !ok {
			return ErrInvalidInput
		}
		j.Status = st
	}

	if in.PayMin != nil || in.PayMax != nil {
		if j.PayRange == nil {
			j.PayRange = &job.PayRange{}
		}
		if in.PayMin != nil {
			j.PayRange.Min = in.PayMin
		}
		if in.PayMax != nil {
			j.PayRange.Max = in.PayMax
		}
		if j.PayRange.Min != nil && j.PayRange.Max != nil && *j.PayRange.Min > *j.PayRange.Max {
			return ErrInvalidInput
		}
	}

	if in.City != nil || in.State != nil || in.PostalCode != nil || in.Country != nil {
		if j.Location == nil {
			j.Location = &job.Location{}
		}
		if in.City != nil {
			j.Location.City = trimmed(in.City)
		}
		if in.State != nil {
			j.Location.State = trimmed(in.State)
		}
		if in.PostalCode != nil {
			j.Location.PostalCode = trimmed(in.PostalCode)
		}
		if in.Country != nil {
			j.Location.Country = trimmed(in.Country)
		}
	}

	if in.Skills != nil {
		skills := make([]string, 0, len(in.Skills))
		for _, sk := range in.Skills {
			if sk = strings.TrimSpace(sk); sk != "" {
				skills = append(skills, sk)
			}
		}
		j.Skills = skills
	}
	if in.Experience != nil {
		if *in.Experience < 0 {
			return ErrInvalidInput
		}
		j.Experience = in.Experience
	}
	if in.Openings != nil {
		if *in.Openings < 0 {
			return ErrInvalidInput
		}
		j.Openings = in.Openings
	}
	return nil
}

func trimmed(s *string) *string {
	v := strings.TrimSpace(*s)
	return &v
}
