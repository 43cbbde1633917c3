package driven

import (
	"github.com/ragline-labs/ragline-core/internal/core/domain"
)

// AuthAdapter handles credential hashing and token operations
type AuthAdapter interface {
	// HashKey generates a hash from a plaintext API key
	HashKey(key string) (string, error)

	// VerifyKey checks if an API key matches a hash
	VerifyKey(key, hash string) bool

	// GenerateToken creates a signed token from domain claims
	GenerateToken(claims *domain.TokenClaims) (string, error)

	// ParseToken validates a token and extracts domain claims
	ParseToken(tokenString string) (*domain.TokenClaims, error)
}
