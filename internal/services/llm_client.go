package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "study_tutor_go_backend/internal/errors"
)

// LLMClient calls an OpenAI-compatible chat-completions endpoint. Non-2xx
// statuses are classified into the pipeline taxonomy so the orchestrator
// can decide between failing fast and retrying with backoff.
type LLMClient struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

func NewLLMClient(baseURL, apiKey, model string, maxTokens int, temperature float64) *LLMClient {
	return &LLMClient{
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *LLMClient) Complete(ctx context.Context, messages []ChatMessage) (*ChatResult, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewNetworkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyProviderStatus(resp.StatusCode, respBody)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, apperrors.NewUnknownProviderError(fmt.Errorf("failed to parse provider response: %v", err))
	}
	if len(parsed.Choices) == 0 {
		return nil, apperrors.NewUnknownProviderError(fmt.Errorf("provider returned no choices"))
	}

	return &ChatResult{
		Content:     parsed.Choices[0].Message.Content,
		TotalTokens: parsed.Usage.TotalTokens,
	}, nil
}

func classifyProviderStatus(status int, body []byte) *apperrors.CustomError {
	cause := fmt.Errorf("provider returned status %d: %s", status, string(body))
	switch {
	case status == http.StatusTooManyRequests:
		return apperrors.NewProviderRateLimitError(cause)
	case status == http.StatusPaymentRequired:
		return apperrors.NewPaymentRequiredError(cause)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.NewAuthError(cause)
	case status >= 500:
		return apperrors.NewNetworkError(cause)
	default:
		return apperrors.NewUnknownProviderError(cause)
	}
}
