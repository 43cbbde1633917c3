package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ragline-labs/ragline-core/internal/core/domain"
	"github.com/ragline-labs/ragline-core/internal/core/ports/driven"
)

// Ensure OpenAIGeneration implements GenerationService
var _ driven.GenerationService = (*OpenAIGeneration)(nil)

// OpenAIGeneration implements GenerationService using OpenAI's chat
// completions API
type OpenAIGeneration struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAIGeneration creates a new OpenAI generation service
func NewOpenAIGeneration(apiKey, model, baseURL string) (driven.GenerationService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", domain.ErrInvalidConfiguration)
	}

	if model == "" {
		model = "gpt-4o-mini"
	}

	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &OpenAIGeneration{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// chatMessage is one message in a chat completions request
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the request body for the chat completions API
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

// chatResponse is the response from the chat completions API
type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index   int         `json:"index"`
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Generate produces a completion for the prompt
func (g *OpenAIGeneration) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: %s (type: %s, code: %s)",
			domain.ErrGenerationFailed, chatResp.Error.Message, chatResp.Error.Type, chatResp.Error.Code)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: API returned status %d", domain.ErrGenerationFailed, resp.StatusCode)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no completion returned", domain.ErrGenerationFailed)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// Model returns the model name being used
func (g *OpenAIGeneration) Model() string {
	return g.model
}

// Ping verifies the generation service is reachable
func (g *OpenAIGeneration) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", g.baseURL+"/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: API returned status %d", domain.ErrServiceUnavailable, resp.StatusCode)
	}
	return nil
}

// Close releases resources held by the generation service
func (g *OpenAIGeneration) Close() error {
	g.client.CloseIdleConnections()
	return nil
}
