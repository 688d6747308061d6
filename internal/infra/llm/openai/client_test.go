package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/civiclens/councilscribe/internal/domain/summarize"
	apperrors "github.com/civiclens/councilscribe/pkg/errors"
	"github.com/civiclens/councilscribe/pkg/logger"
)

func chatBody(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
		"usage": map[string]int{
			"prompt_tokens":     20,
			"completion_tokens": 10,
			"total_tokens":      30,
		},
	}
	encoded, _ := json.Marshal(resp)
	return string(encoded)
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
		Timeout:     5 * time.Second,
	}, logger.New())
	require.NoError(t, err)
	return client
}

func TestGenerateParsesStructuredResponse(t *testing.T) {
	var gotAuth string
	var gotReq chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(chatBody("HEADLINE: Council approves budget\nBODY: The council passed the 2026 budget.")))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.Generate(context.Background(), summarize.GenerateRequest{
		Model:  "gpt-4o-mini",
		Prompt: "summarize this",
	})
	require.NoError(t, err)
	require.Equal(t, "Bearer test-key", gotAuth)
	require.Equal(t, "gpt-4o-mini", gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
	require.Equal(t, "summarize this", gotReq.Messages[0].Content)
	require.Equal(t, "Council approves budget", result.Headline)
	require.Equal(t, "The council passed the 2026 budget.", result.Body)
	require.Equal(t, 30, result.Usage.TotalTokens)
	require.NotEmpty(t, result.Raw)
}

func TestGenerateRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.Write([]byte(chatBody("HEADLINE: ok\nBODY: done")))
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.Generate(context.Background(), summarize.GenerateRequest{Model: "m", Prompt: "p"})
	require.NoError(t, err)
	require.Equal(t, int32(3), calls.Load())
	require.Equal(t, "ok", result.Headline)
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Generate(context.Background(), summarize.GenerateRequest{Model: "m", Prompt: "p"})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeBackendUnavailable))
	require.Equal(t, int32(1), calls.Load())
}

func TestGenerateExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Generate(context.Background(), summarize.GenerateRequest{Model: "m", Prompt: "p"})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeBackendUnavailable))
	require.Contains(t, err.Error(), "retries exhausted")
	require.Equal(t, int32(3), calls.Load())
}

func TestGenerateRejectsMalformedContent(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no choices", `{"choices":[],"usage":{}}`},
		{"not json", `<html>gateway error</html>`},
		{"missing headline", chatBody("BODY: only a body")},
		{"missing body", chatBody("HEADLINE: only a headline")},
		{"empty sections", chatBody("HEADLINE:\nBODY:")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL)
			_, err := client.Generate(context.Background(), summarize.GenerateRequest{Model: "m", Prompt: "p"})
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, apperrors.CodeBackendResponseInvalid))
		})
	}
}

func TestGenerateAcceptsLowercaseMarkers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatBody("headline: Quiet meeting\nbody: Nothing of note happened.")))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.Generate(context.Background(), summarize.GenerateRequest{Model: "m", Prompt: "p"})
	require.NoError(t, err)
	require.Equal(t, "Quiet meeting", result.Headline)
	require.Equal(t, "Nothing of note happened.", result.Body)
}

func TestGenerateIgnoresPreamble(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatBody("Sure, here is the summary.\n\nHEADLINE: Vote recorded\nBODY: The motion carried 7-2.")))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.Generate(context.Background(), summarize.GenerateRequest{Model: "m", Prompt: "p"})
	require.NoError(t, err)
	require.Equal(t, "Vote recorded", result.Headline)
	require.Equal(t, "The motion carried 7-2.", result.Body)
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{}, logger.New())
	require.Error(t, err)

	client, err := NewClient(Config{APIKey: "k"}, logger.New())
	require.NoError(t, err)
	require.Equal(t, defaultBaseURL, client.baseURL)
	require.Equal(t, 3, client.maxAttempts)
}

func TestGenerateHonorsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(Config{
		APIKey:      "k",
		BaseURL:     server.URL,
		MaxAttempts: 5,
		BaseBackoff: time.Hour,
	}, logger.New())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = client.Generate(ctx, summarize.GenerateRequest{Model: "m", Prompt: "p"})
	require.Error(t, err)
	require.Less(t, time.Since(start), time.Second)
}
