// Package llm wraps the Anthropic messages API behind the single
// system-instruction + user-content completion call the pipeline needs.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"saas-validator/internal/common/config"
	"saas-validator/internal/common/logger"
)

const (
	messagesPath     = "/v1/messages"
	anthropicVersion = "2023-06-01"

	// StatusOverloaded is Anthropic's overload status code.
	StatusOverloaded = 529
)

// APIError carries the backend's HTTP status and message so retry predicates
// can distinguish transient overload from permanent failures.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("anthropic api error (status %d): %s", e.StatusCode, e.Message)
}

// Overloaded reports whether the error signals temporary backend overload.
func (e *APIError) Overloaded() bool {
	return e.StatusCode == StatusOverloaded ||
		strings.Contains(strings.ToLower(e.Message), "overloaded")
}

// IsOverloaded is the retry predicate for language-model calls: true for a
// 529 status or any error message mentioning overload.
func IsOverloaded(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Overloaded()
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "529") || strings.Contains(msg, "overloaded")
}

// Completer is the stage-facing contract; satisfied by *Client.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Client calls the language-model backend. Safe for concurrent use.
type Client struct {
	config config.AnthropicConfig
	client *http.Client
	logger logger.Logger
}

func NewClient(cfg config.AnthropicConfig, log logger.Logger) *Client {
	return &Client{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		logger: log.With(map[string]interface{}{
			"component": "llm",
			"model":     cfg.Model,
		}),
	}
}

type messageRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []contentBlock `json:"content"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends one system instruction + user content and returns the
// concatenated text blocks of the response.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	reqBody := messageRequest{
		Model:       c.config.Model,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
		System:      system,
		Messages:    []message{{Role: "user", Content: user}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+messagesPath, bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.config.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	var apiResp messageResponse
	if unmarshalErr := json.Unmarshal(body, &apiResp); unmarshalErr != nil && resp.StatusCode == http.StatusOK {
		return "", fmt.Errorf("unmarshal response: %w", unmarshalErr)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(body)
		if apiResp.Error != nil {
			msg = apiResp.Error.Message
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: msg}
		if apiErr.Overloaded() {
			c.logger.Warn("backend overloaded", map[string]interface{}{
				"status": resp.StatusCode,
			})
		}
		return "", apiErr
	}

	var parts []string
	for _, block := range apiResp.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "response contained no text content"}
	}

	return strings.Join(parts, "\n"), nil
}
