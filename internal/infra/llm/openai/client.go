package openai

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

	"github.com/civiclens/councilscribe/internal/domain/summarize"
	apperrors "github.com/civiclens/councilscribe/pkg/errors"
	"github.com/civiclens/councilscribe/pkg/metrics"
)

const defaultBaseURL = "https://api.openai.com/v1"

// message mirrors the OpenAI chat message structure.
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionRequest is the payload sent to the chat completions API.
type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// chatCompletionResponse captures the fields the pipeline needs.
type chatCompletionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Config controls connection and retry behavior.
type Config struct {
	APIKey      string
	BaseURL     string
	MaxAttempts int
	BaseBackoff time.Duration
	Timeout     time.Duration
}

// Client performs HTTP requests to an OpenAI-compatible chat completions API
// and parses structured HEADLINE/BODY responses at the boundary, so the rest
// of the pipeline never handles untyped backend payloads.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	maxAttempts int
	baseBackoff time.Duration
	logger      *slog.Logger
}

// NewClient constructs the backend client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai api key cannot be empty")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = 500 * time.Millisecond
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		maxAttempts: maxAttempts,
		baseBackoff: baseBackoff,
		logger:      logger.With("component", "llm.openai"),
	}, nil
}

// Generate implements summarize.BackendClient. Transient failures (429, 5xx,
// transport errors) are retried with exponential backoff up to the attempt
// bound; exhausted retries surface as backend_unavailable.
func (c *Client) Generate(ctx context.Context, req summarize.GenerateRequest) (summarize.GenerateResult, error) {
	payload := chatCompletionRequest{
		Model:       req.Model,
		Messages:    []message{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := c.baseBackoff * time.Duration(1<<(attempt-2))
			select {
			case <-ctx.Done():
				return summarize.GenerateResult{}, apperrors.Wrap(apperrors.CodeBackendUnavailable, "backend call canceled", ctx.Err())
			case <-time.After(delay):
			}
		}

		body, transient, err := c.doRequest(ctx, payload)
		if err == nil {
			return parseResult(body)
		}
		lastErr = err
		if !transient {
			return summarize.GenerateResult{}, apperrors.Wrap(apperrors.CodeBackendUnavailable, "backend request rejected", err)
		}
		c.logger.Warn("transient backend failure, retrying", "attempt", attempt, "error", err)
	}
	return summarize.GenerateResult{}, apperrors.Wrap(apperrors.CodeBackendUnavailable, "backend retries exhausted", lastErr)
}

// doRequest performs one HTTP round trip. The second return value reports
// whether the failure is transient.
func (c *Client) doRequest(ctx context.Context, payload chatCompletionRequest) ([]byte, bool, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, false, fmt.Errorf("encode chat completion request: %w", err)
	}
	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, false, fmt.Errorf("build chat completion request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, err
		}
		return nil, true, fmt.Errorf("request chat completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		transient := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, transient, fmt.Errorf("chat completion failed: status=%d body=%s", resp.StatusCode, string(raw))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read chat completion response: %w", err)
	}
	return body, false, nil
}

func parseResult(body []byte) (summarize.GenerateResult, error) {
	var decoded chatCompletionResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return summarize.GenerateResult{}, apperrors.Wrap(apperrors.CodeBackendResponseInvalid, "decode chat completion", err)
	}
	if len(decoded.Choices) == 0 {
		return summarize.GenerateResult{}, apperrors.Wrap(apperrors.CodeBackendResponseInvalid, "backend returned no choices", nil)
	}

	headline, bodyText, err := parseStructuredContent(decoded.Choices[0].Message.Content)
	if err != nil {
		return summarize.GenerateResult{}, apperrors.Wrap(apperrors.CodeBackendResponseInvalid, "backend response malformed", err)
	}

	return summarize.GenerateResult{
		Headline: headline,
		Body:     bodyText,
		Raw:      json.RawMessage(body),
		Usage: metrics.TokenUsage{
			PromptTokens:     decoded.Usage.PromptTokens,
			CompletionTokens: decoded.Usage.CompletionTokens,
			TotalTokens:      decoded.Usage.TotalTokens,
		},
	}, nil
}

// parseStructuredContent expects HEADLINE: and BODY: sections in order.
func parseStructuredContent(content string) (string, string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", "", errors.New("empty backend response")
	}

	headlineIdx := findMarker(content, "HEADLINE:")
	if headlineIdx == -1 {
		return "", "", errors.New("missing HEADLINE section")
	}
	rest := content[headlineIdx+len("HEADLINE:"):]

	bodyIdx := findMarker(rest, "BODY:")
	if bodyIdx == -1 {
		return "", "", errors.New("missing BODY section")
	}

	headline := strings.TrimSpace(rest[:bodyIdx])
	bodyText := strings.TrimSpace(rest[bodyIdx+len("BODY:"):])
	if headline == "" {
		return "", "", errors.New("headline section empty")
	}
	if bodyText == "" {
		return "", "", errors.New("body section empty")
	}
	return headline, bodyText, nil
}

func findMarker(content, marker string) int {
	return strings.Index(strings.ToLower(content), strings.ToLower(marker))
}

var _ summarize.BackendClient = (*Client)(nil)
