package domain

// TokenClaims are the claims embedded in an issued access token
type TokenClaims struct {
	Subject   string `json:"sub"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// TokenRequest is the body for exchanging the admin API key for a token
type TokenRequest struct {
	APIKey string `json:"api_key"`
}

// TokenResponse carries an issued access token
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}
