package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"ats-sync/internal/delivery/http/dto"
	"ats-sync/internal/delivery/http/middleware"
	"ats-sync/internal/domain/job"
	"ats-sync/internal/pkg/response"
	ucjob "ats-sync/internal/usecase/job"
)

type JobUsecase interface {
	CreateJob(ctx context.Context, in ucjob.Input) (job.Job, error)
	UpdateJob(ctx context.Context, id uuid.UUID, in ucjob.Input) (job.Job, error)
}

// JobHandler serves job mutations. ATS sync happens after the response, so
// its outcome never shows up here.
type JobHandler struct {
	uc JobUsecase
}

func NewJobHandler(uc JobUsecase) *JobHandler {
	return &JobHandler{uc: uc}
}

func (h *JobHandler) RegisterRoutes(r fiber.Router) {
	r.Post("/", h.Create)
	r.Put("/:id", h.Update)
}

func (h *JobHandler) Create(c fiber.Ctx) error {
	var req dto.JobRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	employerID, err := uuid.Parse(req.EmployerID)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid employer_id", nil, err)
	}

	in := jobInput(req)
	in.EmployerID = employerID

	j, err := h.uc.CreateJob(c.Context(), in)
	if err != nil {
		return mapJobError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, j)
}

func (h *JobHandler) Update(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid job id", nil, err)
	}
	var req dto.JobRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	j, err := h.uc.UpdateJob(c.Context(), id, jobInput(req))
	if err != nil {
		return mapJobError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, j)
}

func jobInput(req dto.JobRequest) ucjob.Input {
	return ucjob.Input{
		Title:          req.Title,
		Description:    req.Description,
		EmploymentType: req.EmploymentType,
		PayMin:         req.PayMin,
		PayMax:         req.PayMax,
		City:           req.City,
		State:          req.State,
		PostalCode:     req.PostalCode,
		Country:        req.Country,
		Skills:         req.Skills,
		Experience:     req.Experience,
		Openings:       req.Openings,
		Status:         req.Status,
	}
}

func mapJobError(err error) error {
	switch {
	case errors.Is(err, ucjob.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid job", nil, err)
	case errors.Is(err, ucjob.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Job not found", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
