package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidArgument indicates a caller-supplied argument is invalid
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidConfiguration indicates component configuration is invalid
	// and is rejected before any work begins
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrEmbeddingService indicates the embedding service call failed
	// (transport, auth, or rate-limit failure)
	ErrEmbeddingService = errors.New("embedding service failure")

	// ErrRetrievalFailed indicates the retrieval stage of a QA run failed
	ErrRetrievalFailed = errors.New("retrieval failed")

	// ErrGenerationFailed indicates the generation stage of a QA run failed
	ErrGenerationFailed = errors.New("generation failed")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrServiceUnavailable indicates a required AI service is not configured
	// or could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrUnauthorized indicates authentication failed or is missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")
)
