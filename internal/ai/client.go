// internal/ai/client.go
//
// Chat-completion client for the hosted AI service. One HTTPS request per
// generation or chat turn; transient failures (network, 429, 5xx) retry
// with exponential backoff, everything else fails fast.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/kingrea/daybreak/internal/config"
)

const (
	completionsPath = "/chat/completions"
	maxRetries      = 3
	initialDelay    = 1 * time.Second
)

// Message is one turn of a chat-completion conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Message roles understood by the service.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ServiceError reports a failed call to the AI service: transport errors,
// auth rejections, rate limits, server faults.
type ServiceError struct {
	Status  int // HTTP status, 0 for transport failures
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ai: service error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("ai: service error: %s", e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// ContentError reports a response that arrived but was unusable: empty
// body, no choices, or undecodable JSON.
type ContentError struct {
	Reason string
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("ai: unusable response: %s", e.Reason)
}

// Client talks to an OpenAI-compatible chat-completion endpoint.
type Client struct {
	apiKey       string
	baseURL      string
	model        string
	tempPlanning float64
	tempChat     float64
	maxTokens    int
	httpc        *http.Client
}

// Option customizes a Client during construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (primarily for tests).
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		if httpc != nil {
			c.httpc = httpc
		}
	}
}

// New builds a client from the configured AI settings.
func New(apiKey string, cfg config.AIConfig, opts ...Option) *Client {
	client := &Client{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(cfg.APIBase, "/"),
		model:        cfg.Model,
		tempPlanning: cfg.TemperaturePlanning,
		tempChat:     cfg.TemperatureChat,
		maxTokens:    cfg.MaxTokens,
		httpc:        &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends the message history and returns the generated text.
// Callers pass the planning temperature for deterministic generation and
// the chat temperature for open conversation.
func (c *Client) Complete(ctx context.Context, messages []Message, temperature float64) (string, error) {
	if c.apiKey == "" {
		return "", &ServiceError{Message: "api key is empty"}
	}
	if len(messages) == 0 {
		return "", &ContentError{Reason: "no messages to send"}
	}

	body, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("ai: encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * initialDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", &ServiceError{Message: "cancelled", Err: ctx.Err()}
			}
		}

		text, retryable, err := c.attempt(ctx, body)
		if err == nil {
			return text, nil
		}
		var content *ContentError
		if errors.As(err, &content) {
			return "", err
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}
	return "", lastErr
}

// attempt performs a single request. The second return reports whether the
// failure is worth retrying.
func (c *Client) attempt(ctx context.Context, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return "", false, &ServiceError{Message: "build request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", true, &ServiceError{Message: err.Error(), Err: err}
	}
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return "", true, &ServiceError{Message: "read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(respBody))
		var parsed apiError
		if json.Unmarshal(respBody, &parsed) == nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", retryable, &ServiceError{Status: resp.StatusCode, Message: msg}
	}

	var parsed completionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", false, &ContentError{Reason: "undecodable body"}
	}
	if len(parsed.Choices) == 0 {
		return "", false, &ContentError{Reason: "no choices returned"}
	}
	text := parsed.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", false, &ContentError{Reason: "empty completion"}
	}
	return text, false, nil
}
