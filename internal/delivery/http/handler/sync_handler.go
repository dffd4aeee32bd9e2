package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"ats-sync/internal/delivery/http/dto"
	"ats-sync/internal/delivery/http/middleware"
	"ats-sync/internal/domain"
	"ats-sync/internal/infrastructure/ats"
	"ats-sync/internal/mapping"
	"ats-sync/internal/pkg/flags"
	"ats-sync/internal/pkg/response"
	"ats-sync/internal/usecase/atssync"
)

// SyncTrigger runs a named batch on demand.
type SyncTrigger interface {
	Trigger(ctx context.Context, run domain.RunName) (domain.BatchReport, error)
}

type RunHistory interface {
	ListRecent(ctx context.Context, limit int) ([]domain.SyncRun, error)
}

type FlagSwitch interface {
	Snapshot() flags.Snapshot
	SetIntegration(v bool)
	SetScheduled(v bool)
}

// RemoteSearch previews ATS records without writing anything locally.
type RemoteSearch interface {
	SearchJobs(ctx context.Context, f atssync.JobFilter) atssync.PullJobsResult
	SearchCandidates(ctx context.Context, criteria mapping.CandidateCriteria) atssync.PullCandidatesResult
}

const maxRunHistory = 100

type SyncHandler struct {
	trigger SyncTrigger
	runs    RunHistory
	flags   FlagSwitch
	search  RemoteSearch
}

func NewSyncHandler(trigger SyncTrigger, runs RunHistory, ff FlagSwitch, search RemoteSearch) *SyncHandler {
	return &SyncHandler{trigger: trigger, runs: runs, flags: ff, search: search}
}

func (h *SyncHandler) RegisterRoutes(r fiber.Router) {
	r.Post("/sync/jobs/push", h.run(domain.RunPushJobs))
	r.Post("/sync/candidates/push", h.run(domain.RunPushCandidates))
	r.Post("/sync/jobs/pull", h.run(domain.RunPullJobs))
	r.Post("/sync/candidates/pull", h.run(domain.RunPullCandidates))
	r.Get("/runs", h.ListRuns)
	r.Get("/flags", h.GetFlags)
	r.Put("/flags", h.SetFlags)
	r.Get("/jobs", h.SearchJobs)
	r.Get("/candidates", h.SearchCandidates)
}

func (h *SyncHandler) run(name domain.RunName) fiber.Handler {
	return func(c fiber.Ctx) error {
		report, err := h.trigger.Trigger(c.Context(), name)
		if err != nil {
			return mapSyncError(err)
		}
		return response.Success(c, fiber.StatusOK, response.MessageOK, report)
	}
}

func (h *SyncHandler) ListRuns(c fiber.Ctx) error {
	limit := 20
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid limit", nil, err)
		}
		limit = min(n, maxRunHistory)
	}

	runs, err := h.runs.ListRecent(c.Context(), limit)
	if err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	out := make([]dto.SyncRunSummary, 0, len(runs))
	for _, r := range runs {
		s := dto.SyncRunSummary{
			ID:        r.ID,
			Run:       r.Run,
			Trigger:   r.Trigger,
			Status:    r.Status,
			Total:     r.Total,
			Success:   r.Success,
			Failed:    r.Failed,
			Error:     r.Error,
			StartedAt: r.StartedAt.UTC().Format(time.RFC3339),
		}
		if r.FinishedAt != nil {
			s.FinishedAt = r.FinishedAt.UTC().Format(time.RFC3339)
		}
		out = append(out, s)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *SyncHandler) GetFlags(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.flags.Snapshot())
}

func (h *SyncHandler) SetFlags(c fiber.Ctx) error {
	var req dto.FlagsRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if req.IntegrationEnabled != nil {
		h.flags.SetIntegration(*req.IntegrationEnabled)
	}
	if req.ScheduledSyncEnabled != nil {
		h.flags.SetScheduled(*req.ScheduledSyncEnabled)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.flags.Snapshot())
}

// SearchJobs accepts title, city, state, country, zipcode, min_pay, max_pay
// and q.
func (h *SyncHandler) SearchJobs(c fiber.Ctx) error {
	minPay, err := optionalFloat(c.Query("min_pay"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid min_pay", nil, err)
	}
	maxPay, err := optionalFloat(c.Query("max_pay"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid max_pay", nil, err)
	}

	res := h.search.SearchJobs(c.Context(), atssync.JobFilter{
		Criteria: mapping.JobCriteria{
			Title:      c.Query("title"),
			City:       c.Query("city"),
			State:      c.Query("state"),
			Country:    c.Query("country"),
			PostalCode: c.Query("zipcode"),
		},
		MinPay: minPay,
		MaxPay: maxPay,
		Query:  c.Query("q"),
	})
	return searchResponse(c, res.Success, res.Error, res)
}

func (h *SyncHandler) SearchCandidates(c fiber.Ctx) error {
	res := h.search.SearchCandidates(c.Context(), mapping.CandidateCriteria{
		Name:       c.Query("name"),
		Email:      c.Query("email"),
		City:       c.Query("city"),
		State:      c.Query("state"),
		Country:    c.Query("country"),
		PostalCode: c.Query("zipcode"),
	})
	return searchResponse(c, res.Success, res.Error, res)
}

func searchResponse(c fiber.Ctx, ok bool, errMsg string, data interface{}) error {
	if ok {
		return response.Success(c, fiber.StatusOK, response.MessageOK, data)
	}
	if errMsg == domain.MessageIntegrationDisabled {
		return middleware.NewAppError(fiber.StatusServiceUnavailable, errMsg, nil, nil)
	}
	return response.Error(c, fiber.StatusBadGateway, "ATS search failed", data)
}

func optionalFloat(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func mapSyncError(err error) error {
	switch {
	case errors.Is(err, ats.ErrDisabled):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, domain.MessageIntegrationDisabled, nil, err)
	case errors.Is(err, atssync.ErrRunInProgress):
		return middleware.NewAppError(fiber.StatusConflict, "Sync run already in progress", nil, err)
	case errors.Is(err, ats.ErrConfiguration):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "ATS integration is not configured", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
