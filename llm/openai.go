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

	"realty-analyzer/metrics"
	"realty-analyzer/utils"
)

// Config holds OpenAI client configuration.
type Config struct {
	APIKey      string
	Model       string
	Endpoint    string // base URL, e.g. https://api.openai.com/v1
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
}

// OpenAIClient calls an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	config   Config
	client   *http.Client
	retry    *utils.RetryConfig
	throttle *utils.Throttle
	logger   *utils.Logger
}

// NewOpenAI creates a client. throttle may be nil.
func NewOpenAI(cfg Config, throttle *utils.Throttle, logger *utils.Logger) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.openai.com/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &OpenAIClient{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   500 * time.Millisecond,
			Logger:      logger,
		},
		throttle: throttle,
		logger:   logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// permanentError marks failures that a retry cannot fix (bad request,
// bad credentials, unusable body).
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(format string, args ...any) error {
	return &permanentError{err: fmt.Errorf(format, args...)}
}

// Generate sends prompt as a single user message and returns the first
// choice's content, trimmed. Network errors, 429 and 5xx responses are
// retried; other failures are returned at once.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	var (
		text    string
		permErr error
	)
	attempt := func() error {
		out, err := c.callOnce(ctx, prompt, maxTokens)
		var pe *permanentError
		if errors.As(err, &pe) {
			permErr = err
			return nil
		}
		if err != nil {
			return err
		}
		text = out
		return nil
	}
	run := func() error { return c.retry.Do(ctx, "openai-chat", attempt) }

	var err error
	if c.throttle != nil {
		err = c.throttle.Do(ctx, run)
	} else {
		err = run()
	}
	if err != nil {
		return "", err
	}
	if permErr != nil {
		return "", permErr
	}
	return text, nil
}

func (c *OpenAIClient) callOnce(ctx context.Context, prompt string, maxTokens int) (string, error) {
	reqBody := chatRequest{
		Model:       c.config.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: c.config.Temperature,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", permanent("marshal request: %w", err)
	}

	url := strings.TrimRight(c.config.Endpoint, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", permanent("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	t0 := time.Now()
	c.logger.Debug("[llm] chat completion request model=%s max_tokens=%d", c.config.Model, maxTokens)
	text, err := c.do(req)
	metrics.LLMDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues("error").Inc()
		c.logger.Warn("[llm] chat completion failed: %v", err)
		return "", err
	}
	metrics.LLMRequestsTotal.WithLabelValues("success").Inc()
	return text, nil
}

func (c *OpenAIClient) do(req *http.Request) (string, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("OpenAI API returned %d: %s", resp.StatusCode, truncate(string(body), 200))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", errors.New(msg)
		}
		return "", permanent("%s", msg)
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", permanent("parse response: %w", err)
	}
	if cr.Error != nil {
		return "", permanent("OpenAI error (%s): %s", cr.Error.Type, cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return "", permanent("OpenAI returned no choices")
	}

	text := strings.TrimSpace(cr.Choices[0].Message.Content)
	if text == "" {
		return "", permanent("OpenAI returned empty content")
	}
	return text, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
