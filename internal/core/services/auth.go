package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ragline-labs/ragline-core/internal/core/domain"
	"github.com/ragline-labs/ragline-core/internal/core/ports/driven"
	"github.com/ragline-labs/ragline-core/internal/core/ports/driving"
)

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

// authService exchanges the admin API key for signed access tokens.
// The plaintext key is hashed at construction and never retained.
type authService struct {
	adapter  driven.AuthAdapter
	keyHash  string
	tokenTTL time.Duration
	logger   *slog.Logger
}

// AuthServiceConfig holds dependencies for the auth service
type AuthServiceConfig struct {
	Adapter driven.AuthAdapter

	// AdminAPIKey is the plaintext admin key; only its hash is kept
	AdminAPIKey string

	// TokenTTL is how long issued tokens stay valid. Defaults to 24h.
	TokenTTL time.Duration

	Logger *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(cfg AuthServiceConfig) (driving.AuthService, error) {
	if cfg.AdminAPIKey == "" {
		return nil, fmt.Errorf("%w: admin API key must not be empty", domain.ErrInvalidConfiguration)
	}
	hash, err := cfg.Adapter.HashKey(cfg.AdminAPIKey)
	if err != nil {
		return nil, fmt.Errorf("hash admin key: %w", err)
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		adapter:  cfg.Adapter,
		keyHash:  hash,
		tokenTTL: ttl,
		logger:   logger,
	}, nil
}

// IssueToken exchanges the admin API key for a signed access token
func (s *authService) IssueToken(ctx context.Context, apiKey string) (*domain.TokenResponse, error) {
	if !s.adapter.VerifyKey(apiKey, s.keyHash) {
		s.logger.Warn("token request with invalid API key")
		return nil, domain.ErrUnauthorized
	}

	now := time.Now()
	claims := &domain.TokenClaims{
		Subject:   "admin",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.tokenTTL).Unix(),
	}
	token, err := s.adapter.GenerateToken(claims)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &domain.TokenResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// ValidateToken parses and validates an access token
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}
	return s.adapter.ParseToken(token)
}
