// Package generator turns a natural-language prompt into a website through
// the Gemini generateContent API.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"webgenie/internal/config"
)

const (
	maxResponseBytes = 4 << 20
	maxPromptRunes   = 4000
)

var (
	ErrDisabled      = errors.New("site generation is not configured")
	ErrEmptyPrompt   = errors.New("prompt is required")
	ErrPromptTooLong = errors.New("prompt is too long")
	ErrEmptyResponse = errors.New("generation returned no html")
	ErrRateLimited   = errors.New("generation rate limit exceeded")
	ErrUpstream      = errors.New("generation service error")
)

// Client calls Gemini. It is safe for concurrent use.
type Client struct {
	cfg     config.AIConfig
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewClient(logger *slog.Logger, cfg config.AIConfig) *Client {
	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 10
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout()},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		logger:  logger.With("component", "generator", "model", cfg.Model),
	}
}

func (c *Client) Enabled() bool {
	return c.cfg.IsEnabled()
}

// Generate returns a complete HTML document for prompt. When existingHTML is
// not empty the model is asked to revise it instead of starting over.
func (c *Client) Generate(ctx context.Context, prompt, existingHTML string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	if len([]rune(prompt)) > maxPromptRunes {
		return "", ErrPromptTooLong
	}
	if !c.cfg.IsEnabled() {
		return "", ErrDisabled
	}
	if !c.limiter.Allow() {
		c.logger.WarnContext(ctx, "Generation rate limited")
		return "", ErrRateLimited
	}

	start := time.Now()
	text, err := c.callGemini(ctx, BuildPrompt(prompt, existingHTML))
	if err != nil {
		c.logger.ErrorContext(ctx, "Generation failed", slog.Any("error", err))
		return "", err
	}

	html := ExtractHTML(text)
	if html == "" {
		c.logger.WarnContext(ctx, "Generation returned no markup", slog.Int("response_length", len(text)))
		return "", ErrEmptyResponse
	}

	c.logger.InfoContext(ctx, "Site generated",
		slog.Int("html_length", len(html)),
		slog.Duration("duration", time.Since(start)),
	)
	return html, nil
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) callGemini(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ModelEndpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var parsed geminiResponse
	decodeErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return "", fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decoding response: %w", decodeErr)
	}

	if len(parsed.Candidates) > 0 && len(parsed.Candidates[0].Content.Parts) > 0 {
		return parsed.Candidates[0].Content.Parts[0].Text, nil
	}
	return "", ErrEmptyResponse
}
