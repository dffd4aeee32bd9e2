package handler

import (
	"context"
	"errors"
	"io"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"ats-sync/internal/delivery/http/dto"
	"ats-sync/internal/delivery/http/middleware"
	"ats-sync/internal/domain"
	"ats-sync/internal/domain/candidate"
	"ats-sync/internal/infrastructure/ats"
	"ats-sync/internal/pkg/response"
	uccandidate "ats-sync/internal/usecase/candidate"
)

type CandidateUsecase interface {
	SaveCandidateProfile(ctx context.Context, in uccandidate.ProfileInput) (candidate.Candidate, bool, error)
	UploadResume(ctx context.Context, id uuid.UUID, file []byte, fileName string) (domain.SyncResult, error)
}

const resumeFormField = "file"

type CandidateHandler struct {
	uc CandidateUsecase
}

func NewCandidateHandler(uc CandidateUsecase) *CandidateHandler {
	return &CandidateHandler{uc: uc}
}

func (h *CandidateHandler) RegisterRoutes(r fiber.Router) {
	r.Put("/profile", h.SaveProfile)
	r.Post("/:id/resume", h.UploadResume)
}

func (h *CandidateHandler) SaveProfile(c fiber.Ctx) error {
	var req dto.CandidateProfileRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	cand, created, err := h.uc.SaveCandidateProfile(c.Context(), uccandidate.ProfileInput{
		Email:           req.Email,
		Password:        req.Password,
		Name:            req.Name,
		Phone:           req.Phone,
		Address:         req.Address,
		City:            req.City,
		State:           req.State,
		Country:         req.Country,
		PostalCode:      req.PostalCode,
		Headline:        req.Headline,
		DesiredJobTitle: req.DesiredJobTitle,
		Experience:      req.Experience,
		Skills:          req.Skills,
		PayScale:        req.PayScale,
		PayType:         req.PayType,
		ResumeLink:      req.ResumeLink,
	})
	if err != nil {
		return mapCandidateError(err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return response.Success(c, status, "", dto.CandidateProfileResponse{Candidate: cand, Created: created})
}

// UploadResume forwards a multipart file to the candidate's ATS record. Unlike
// the profile endpoints this one is synchronous. Remote failure detail is
// logged by the error middleware and never returned.
func (h *CandidateHandler) UploadResume(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid candidate id", nil, err)
	}

	fh, err := c.FormFile(resumeFormField)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Missing file", nil, err)
	}
	f, err := fh.Open()
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Unreadable file", nil, err)
	}
	defer f.Close()

	body, err := io.ReadAll(io.LimitReader(f, ats.MaxDocumentBytes+1))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Unreadable file", nil, err)
	}

	res, err := h.uc.UploadResume(c.Context(), id, body, fh.Filename)
	if err != nil {
		return mapCandidateError(err)
	}
	if !res.Success {
		if res.Error == domain.MessageIntegrationDisabled {
			return middleware.NewAppError(fiber.StatusServiceUnavailable, res.Error, nil, nil)
		}
		return middleware.NewAppError(fiber.StatusBadGateway, "Resume upload failed", nil, errors.New(res.Error))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func mapCandidateError(err error) error {
	var verr *ats.ValidationError
	switch {
	case errors.As(err, &verr):
		return middleware.NewAppError(fiber.StatusBadRequest, verr.Error(), map[string]string{"field": verr.Field}, err)
	case errors.Is(err, uccandidate.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid candidate profile", nil, err)
	case errors.Is(err, uccandidate.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Candidate not found", nil, err)
	case errors.Is(err, uccandidate.ErrNotSynced):
		return middleware.NewAppError(fiber.StatusConflict, "Candidate is not synced to the ATS yet", nil, err)
	case errors.Is(err, ats.ErrConfiguration):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "ATS integration is not configured", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
