package service

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/ticket-relay/internal/auth"
	"github.com/spec-kit/ticket-relay/internal/config"
)

// AuthService handles the administrative login flow.
type AuthService struct {
	tokenMgr     *auth.TokenManager
	passwordHash string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig) *AuthService {
	return &AuthService{
		tokenMgr:     auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		passwordHash: cfg.AdminPasswordHash,
	}
}

// LoginAdmin verifies the admin password and issues a role-bearing token.
func (s *AuthService) LoginAdmin(_ context.Context, password string) (string, time.Time, error) {
	if s.passwordHash == "" {
		return "", time.Time{}, errors.New("admin login not configured")
	}
	if err := auth.ComparePassword(s.passwordHash, password); err != nil {
		return "", time.Time{}, errors.New("invalid credentials")
	}
	return s.tokenMgr.GenerateToken("admin", auth.RoleAdmin)
}

// TokenManager exposes the manager for middleware construction.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
