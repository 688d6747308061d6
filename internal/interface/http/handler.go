package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/civiclens/councilscribe/internal/domain/pipeline"
	"github.com/civiclens/councilscribe/internal/domain/records"
	"github.com/civiclens/councilscribe/internal/domain/summarize"
	apperrors "github.com/civiclens/councilscribe/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	pipelineSvc  *pipeline.Service
	meetings     records.MeetingRepository
	summaries    records.SummaryRepository
	cache        records.SummaryCache
	styles       *summarize.Registry
	defaultStyle string
	cacheTTL     time.Duration
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(
	pipelineSvc *pipeline.Service,
	meetings records.MeetingRepository,
	summaries records.SummaryRepository,
	cache records.SummaryCache,
	styles *summarize.Registry,
	defaultStyle string,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		pipelineSvc:  pipelineSvc,
		meetings:     meetings,
		summaries:    summaries,
		cache:        cache,
		styles:       styles,
		defaultStyle: defaultStyle,
		cacheTTL:     cacheTTL,
		logger:       logger.With("component", "http.handler"),
	}
}

type summaryResponse struct {
	ID         uuid.UUID `json:"id"`
	EntityKind string    `json:"entityKind"`
	EntityID   uuid.UUID `json:"entityId"`
	Style      string    `json:"style"`
	Headline   string    `json:"headline"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toSummaryResponse(summary records.Summary) summaryResponse {
	return summaryResponse{
		ID:         summary.ID,
		EntityKind: string(summary.EntityKind),
		EntityID:   summary.EntityID,
		Style:      summary.Style,
		Headline:   summary.Headline,
		Body:       summary.Body,
		CreatedAt:  summary.CreatedAt,
	}
}

// ListMeetings returns all ingested meetings.
func (h *Handler) ListMeetings(c *gin.Context) {
	meetings, err := h.meetings.List(c.Request.Context())
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "storage_error", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"meetings": meetings})
}

// ListStyles returns the registered summary style names.
func (h *Handler) ListStyles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"styles": h.styles.Names(), "default": h.defaultStyle})
}

// GetSummary serves a stored summary, reading through the cache.
func (h *Handler) GetSummary(c *gin.Context) {
	kind, entityID, style, ok := h.summaryParams(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if cached, found, err := h.cache.Get(ctx, kind, entityID, style.Name); err == nil && found {
		c.JSON(http.StatusOK, toSummaryResponse(cached))
		return
	} else if err != nil {
		h.logger.Warn("summary cache read failed", "error", err)
	}

	summary, found, err := h.summaries.Get(ctx, kind, entityID, style.Name)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "storage_error", errMessage(err), err))
		return
	}
	if !found {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "summary not found", nil))
		return
	}
	if err := h.cache.Put(ctx, summary, h.cacheTTL); err != nil {
		h.logger.Warn("summary cache write failed", "error", err)
	}
	c.JSON(http.StatusOK, toSummaryResponse(summary))
}

// CreateSummary runs the summarization pipeline for one entity.
func (h *Handler) CreateSummary(c *gin.Context) {
	kind, entityID, style, ok := h.summaryParams(c)
	if !ok {
		return
	}
	force := c.Query("force") == "1" || c.Query("force") == "true"

	ctx := c.Request.Context()
	var (
		summary records.Summary
		err     error
	)
	switch kind {
	case records.EntityDocument:
		summary, err = h.pipelineSvc.SummarizeDocument(ctx, entityID, style, force)
	case records.EntityLegislation:
		summary, err = h.pipelineSvc.SummarizeLegislation(ctx, entityID, style, force)
	case records.EntityMeeting:
		summary, err = h.pipelineSvc.SummarizeMeeting(ctx, entityID, style, force)
	}
	if err != nil {
		abortWithError(c, summaryError(err))
		return
	}

	if err := h.cache.Put(ctx, summary, h.cacheTTL); err != nil {
		h.logger.Warn("summary cache write failed", "error", err)
	}
	c.JSON(http.StatusCreated, toSummaryResponse(summary))
}

func (h *Handler) summaryParams(c *gin.Context) (records.EntityKind, uuid.UUID, summarize.Style, bool) {
	kind := records.EntityKind(c.Param("kind"))
	switch kind {
	case records.EntityDocument, records.EntityLegislation, records.EntityMeeting:
	default:
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "unknown entity kind: "+c.Param("kind"), nil))
		return "", uuid.Nil, summarize.Style{}, false
	}

	entityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid entity id", err))
		return "", uuid.Nil, summarize.Style{}, false
	}

	styleName := c.Query("style")
	if styleName == "" {
		styleName = h.defaultStyle
	}
	style, ok := h.styles.ByName(styleName)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "unknown style: "+styleName, nil))
		return "", uuid.Nil, summarize.Style{}, false
	}
	return kind, entityID, style, true
}

func summaryError(err error) *HTTPError {
	status := http.StatusInternalServerError
	code := "summarize_failed"
	switch {
	case apperrors.IsCode(err, apperrors.CodeInvalidInput):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, apperrors.CodeNotFound):
		status = http.StatusNotFound
		code = "not_found"
	case apperrors.IsCode(err, apperrors.CodeBackendUnavailable),
		apperrors.IsCode(err, apperrors.CodeBackendResponseInvalid):
		status = http.StatusBadGateway
		code = "backend_error"
	case apperrors.IsCode(err, apperrors.CodeSummaryBudgetExceeded):
		status = http.StatusUnprocessableEntity
		code = "summary_budget_exceeded"
	case apperrors.IsCode(err, apperrors.CodeMissingChildSummary):
		status = http.StatusFailedDependency
		code = "missing_child_summary"
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
