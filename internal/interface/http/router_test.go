package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/civiclens/councilscribe/internal/domain/pipeline"
	"github.com/civiclens/councilscribe/internal/domain/records"
	"github.com/civiclens/councilscribe/internal/domain/summarize"
	"github.com/civiclens/councilscribe/internal/infra/config"
	"github.com/civiclens/councilscribe/internal/infra/records/blob"
	"github.com/civiclens/councilscribe/internal/infra/records/repo"
	"github.com/civiclens/councilscribe/internal/infra/summarycache"
	"github.com/civiclens/councilscribe/pkg/logger"
)

type fixedFolder struct{}

func (fixedFolder) Summarize(_ context.Context, _ string, _ summarize.Style, _ records.EntityKind, _ summarize.TemplateContext) (summarize.Result, error) {
	return summarize.Result{Headline: "test headline", Body: "test body"}, nil
}

type rawExtractor struct{}

func (rawExtractor) Extract(_ context.Context, data []byte, _ string) (string, error) {
	return string(data), nil
}

type testEnv struct {
	server    *httptest.Server
	meetings  records.MeetingRepository
	documents records.DocumentRepository
	summaries records.SummaryRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	meetings, legislations, documents, summaries := repo.NewMemoryRepositories()
	pipelineSvc := pipeline.NewService(
		meetings, legislations, documents, summaries,
		blob.NewMemoryStorage(), rawExtractor{}, fixedFolder{}, logger.New(),
	)
	registry, err := summarize.NewRegistry(summarize.BuiltinStyles())
	require.NoError(t, err)

	handler := NewHandler(
		pipelineSvc, meetings, summaries,
		summarycache.NewMemoryCache(), registry,
		summarize.DefaultStyleName, time.Minute, logger.New(),
	)
	cfg := &config.Config{HTTP: config.HTTPConfig{Address: ":0"}}
	server := httptest.NewServer(NewRouter(cfg, handler).Handler)
	t.Cleanup(server.Close)
	return &testEnv{server: server, meetings: meetings, documents: documents, summaries: summaries}
}

func (e *testEnv) do(t *testing.T, method, path string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, e.server.URL+path, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestListStyles(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, http.MethodGet, "/api/v1/styles")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, summarize.DefaultStyleName, body["default"])
	require.Contains(t, body["styles"], summarize.DefaultStyleName)
}

func TestListMeetings(t *testing.T) {
	env := newTestEnv(t)
	meeting := records.Meeting{ID: uuid.New(), Department: "City Council", Date: time.Now()}
	require.NoError(t, env.meetings.Create(context.Background(), meeting))

	resp, body := env.do(t, http.MethodGet, "/api/v1/meetings")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["meetings"], 1)
}

func TestCreateAndGetSummary(t *testing.T) {
	env := newTestEnv(t)
	doc := records.Document{ID: uuid.New(), Kind: records.DocumentKindMinutes, Title: "Minutes", ExtractedText: "text"}
	require.NoError(t, env.documents.Create(context.Background(), doc))

	resp, body := env.do(t, http.MethodPost, "/api/v1/summaries/document/"+doc.ID.String())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "test headline", body["headline"])
	require.Equal(t, "document", body["entityKind"])
	require.Equal(t, doc.ID.String(), body["entityId"])
	_, hasDebug := body["debug"]
	require.False(t, hasDebug)

	resp, body = env.do(t, http.MethodGet, "/api/v1/summaries/document/"+doc.ID.String())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "test body", body["body"])
}

func TestGetSummaryNotFound(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, http.MethodGet, "/api/v1/summaries/document/"+uuid.NewString())
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "not_found", errObj["code"])
}

func TestCreateSummaryUnknownEntity(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, http.MethodPost, "/api/v1/summaries/meeting/"+uuid.NewString())
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	errObj := body["error"].(map[string]any)
	require.Equal(t, "not_found", errObj["code"])
}

func TestSummaryParamValidation(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name string
		path string
	}{
		{"unknown kind", "/api/v1/summaries/podcast/" + uuid.NewString()},
		{"malformed id", "/api/v1/summaries/document/not-a-uuid"},
		{"unknown style", "/api/v1/summaries/document/" + uuid.NewString() + "?style=florid"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := env.do(t, http.MethodGet, tc.path)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			errObj := body["error"].(map[string]any)
			require.Equal(t, "invalid_request", errObj["code"])
		})
	}
}
