// Package chat proxies assistant conversations to an OpenAI-compatible
// chat-completions endpoint.
package chat

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

	"kodbank/internal/domain"

	"github.com/sirupsen/logrus"
)

// SystemPrompt opens every conversation sent upstream
const SystemPrompt = "You are a helpful and concise AI assistant for Kodbank, a modern online banking platform. You answer financial questions clearly and helpfully."

const (
	defaultMaxTokens    = 150
	defaultTemperature  = 0.7
	defaultLoadingWait  = 5 * time.Second
	maxLoadingWait      = 10 * time.Second
	maxResponseBodySize = 1 << 20
)

// ErrTransport wraps failures to reach the upstream at all
var ErrTransport = errors.New("chat: upstream unreachable")

// Message is one turn of a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Config holds configuration for the chat client
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxRetries  int
	MaxTokens   int
	Temperature float64
	HTTPClient  *http.Client
}

// Client calls the chat-completions API
type Client struct {
	apiKey      string
	endpoint    string
	model       string
	maxRetries  int
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	wait        func(ctx context.Context, d time.Duration) error
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// loadingResponse is the error body returned while a model is cold
type loadingResponse struct {
	Error         json.RawMessage `json:"error"`
	EstimatedTime *float64        `json:"estimated_time"`
}

// NewClient creates a chat client
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("chat: API key is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("chat: base URL is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("chat: model is required")
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		apiKey:      cfg.APIKey,
		endpoint:    strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		model:       cfg.Model,
		maxRetries:  cfg.MaxRetries,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient:  cfg.HTTPClient,
		wait:        sleepCtx,
	}, nil
}

// BuildMessages turns the dashboard's conversation into the upstream format:
// system prompt first, "bot" turns become "assistant", every other role is
// sent as "user", and input (if not blank) is appended last.
func BuildMessages(history []Message, input string) []Message {
	msgs := make([]Message, 0, len(history)+2)
	msgs = append(msgs, Message{Role: "system", Content: SystemPrompt})
	for _, m := range history {
		role := "user"
		if m.Role == "bot" || m.Role == "assistant" {
			role = "assistant"
		}
		msgs = append(msgs, Message{Role: role, Content: m.Content})
	}
	if strings.TrimSpace(input) != "" {
		msgs = append(msgs, Message{Role: "user", Content: input})
	}
	return msgs
}

// Complete sends messages upstream and returns the raw JSON reply. A non-2xx
// answer is returned as *domain.UpstreamError; while the model reports that it
// is loading, the call is retried up to the configured attempt count.
func (c *Client) Complete(ctx context.Context, messages []Message) ([]byte, error) {
	payload, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("chat: encode request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		status, body, err := c.send(ctx, payload)
		if err != nil {
			return nil, err
		}
		if status >= 200 && status < 300 {
			return body, nil
		}
		lastErr = &domain.UpstreamError{Status: status, Body: body}

		wait, loading := loadingDelay(body)
		if !loading || attempt == c.maxRetries {
			break
		}
		logrus.WithFields(logrus.Fields{
			"attempt":     attempt,
			"max_retries": c.maxRetries,
			"wait":        wait.String(),
		}).Warn("Chat model loading, retrying")
		if err := c.wait(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) send(ctx context.Context, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("chat: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}
	return resp.StatusCode, body, nil
}

// loadingDelay reports whether body says the model is still loading and how
// long to wait before the next attempt
func loadingDelay(body []byte) (time.Duration, bool) {
	var lr loadingResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return 0, false
	}
	if !strings.Contains(string(lr.Error), "currently loading") {
		return 0, false
	}
	wait := defaultLoadingWait
	if lr.EstimatedTime != nil && *lr.EstimatedTime > 0 {
		wait = time.Duration(*lr.EstimatedTime * float64(time.Second))
	}
	return min(wait, maxLoadingWait), true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
