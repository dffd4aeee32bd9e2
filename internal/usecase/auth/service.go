package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"ats-sync/internal/config"
	"ats-sync/internal/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrLoginDisabled      = errors.New("admin login disabled")
	ErrInternal           = errors.New("internal error")
)

type LoginInput struct {
	Username string
	Password string
}

type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Service authenticates the configured operator and issues admin tokens.
type Service struct {
	admin config.AdminConfig
	jwt   jwt.Service
}

func NewService(admin config.AdminConfig, jwtSvc jwt.Service) *Service {
	return &Service{admin: admin, jwt: jwtSvc}
}

func (s *Service) Login(_ context.Context, in LoginInput) (Token, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return Token{}, ErrInvalidInput
	}
	if s.admin.PasswordHash == "" {
		return Token{}, ErrLoginDisabled
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) == 1
	pwErr := bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(in.Password))
	if !userOK || pwErr != nil {
		return Token{}, ErrInvalidCredentials
	}

	tok, exp, err := s.jwt.GenerateAccessToken(username, jwt.RoleAdmin)
	if err != nil {
		return Token{}, ErrInternal
	}
	return Token{AccessToken: tok, ExpiresAt: exp}, nil
}
