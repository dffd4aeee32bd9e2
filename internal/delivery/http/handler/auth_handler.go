package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"

	"ats-sync/internal/delivery/http/dto"
	"ats-sync/internal/delivery/http/middleware"
	"ats-sync/internal/pkg/response"
	ucauth "ats-sync/internal/usecase/auth"
)

type AuthUsecase interface {
	Login(ctx context.Context, in ucauth.LoginInput) (ucauth.Token, error)
}

type AuthHandler struct {
	uc AuthUsecase
}

func NewAuthHandler(uc AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

func (h *AuthHandler) RegisterRoutes(r fiber.Router) {
	r.Post("/login", h.Login)
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	tok, err := h.uc.Login(c.Context(), ucauth.LoginInput{Username: req.Username, Password: req.Password})
	if err != nil {
		switch {
		case errors.Is(err, ucauth.ErrInvalidInput):
			return middleware.NewAppError(fiber.StatusBadRequest, "Username and password are required", nil, err)
		case errors.Is(err, ucauth.ErrInvalidCredentials):
			return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid credentials", nil, err)
		case errors.Is(err, ucauth.ErrLoginDisabled):
			return middleware.NewAppError(fiber.StatusForbidden, "Admin login is disabled", nil, err)
		default:
			return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
		}
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, tok)
}
