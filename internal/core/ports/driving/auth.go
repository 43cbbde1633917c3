package driving

import (
	"context"

	"github.com/ragline-labs/ragline-core/internal/core/domain"
)

// AuthService issues and validates API access tokens
type AuthService interface {
	// IssueToken exchanges the admin API key for a signed access token
	IssueToken(ctx context.Context, apiKey string) (*domain.TokenResponse, error)

	// ValidateToken parses and validates an access token
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)
}
