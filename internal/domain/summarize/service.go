package summarize

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/civiclens/councilscribe/internal/domain/records"
	apperrors "github.com/civiclens/councilscribe/pkg/errors"
)

// chunkJoin separates chunk summaries when they are folded back together.
const chunkJoin = "\n\n"

// Result is a folded summary plus the provenance metadata gathered while
// producing it.
type Result struct {
	Headline string
	Body     string
	Debug    records.SummaryDebug
}

// Service folds an arbitrarily large text into a single summary that fits
// the style's budget at every stage. It keeps no state between calls.
type Service struct {
	counter TokenCounter
	chunker Chunker
	client  BackendClient
	logger  *slog.Logger
}

// NewService constructs the fold service.
func NewService(counter TokenCounter, chunker Chunker, client BackendClient, logger *slog.Logger) *Service {
	return &Service{
		counter: counter,
		chunker: chunker,
		client:  client,
		logger:  logger.With("component", "summarize.service"),
	}
}

// Summarize runs the recursive map-reduce over text. A text within budget
// takes exactly one backend call; larger texts are split, summarized chunk
// by chunk in source order, and the joined chunk summaries are folded again
// until one summary remains or the depth bound is hit.
func (s *Service) Summarize(ctx context.Context, text string, style Style, kind records.EntityKind, tmplCtx TemplateContext) (Result, error) {
	current := strings.TrimSpace(text)
	if current == "" {
		return Result{}, apperrors.Wrap(apperrors.CodeInvalidInput, "text cannot be empty", nil)
	}
	templates, ok := style.Templates[kind]
	if !ok {
		return Result{}, apperrors.Wrap(apperrors.CodeInvalidInput, "style "+style.Name+" has no templates for "+string(kind), nil)
	}

	start := time.Now()
	var debug records.SummaryDebug

	for depth := 0; depth <= style.MaxFoldDepth; depth++ {
		if Fits(s.counter, current, style.Budget) {
			final, err := s.generate(ctx, style, templates.Final, current, tmplCtx, &debug)
			if err != nil {
				return Result{}, err
			}
			debug.DurationMs = time.Since(start).Milliseconds()
			s.logger.Debug("fold complete",
				"style", style.Name, "kind", kind,
				"passes", debug.FoldPasses, "chunks", len(debug.Chunks))
			return Result{Headline: final.Headline, Body: final.Body, Debug: debug}, nil
		}

		chunks := s.chunker.Split(current, style.Budget)
		if len(chunks) < 2 {
			// The chunker could not reduce the text, so another pass
			// cannot shrink it either.
			return Result{}, apperrors.Wrap(apperrors.CodeSummaryBudgetExceeded, "text cannot be reduced within budget", nil)
		}
		debug.FoldPasses++

		parts := make([]string, 0, len(chunks))
		for _, chunk := range chunks {
			res, err := s.generate(ctx, style, templates.Chunk, chunk.Content, tmplCtx, &debug)
			if err != nil {
				return Result{}, err
			}
			debug.Chunks = append(debug.Chunks, chunk.Content)
			debug.ChunkSummaries = append(debug.ChunkSummaries, res.Body)
			parts = append(parts, res.Body)
		}
		current = strings.Join(parts, chunkJoin)
	}

	return Result{}, apperrors.Wrap(apperrors.CodeSummaryBudgetExceeded,
		"fold did not converge within the depth bound", nil)
}

func (s *Service) generate(ctx context.Context, style Style, template, content string, tmplCtx TemplateContext, debug *records.SummaryDebug) (GenerateResult, error) {
	res, err := s.client.Generate(ctx, GenerateRequest{
		Model:       style.Model,
		Temperature: style.Temperature,
		MaxTokens:   style.MaxOutputTokens,
		Prompt:      RenderTemplate(template, content, tmplCtx),
	})
	if err != nil {
		return GenerateResult{}, err
	}
	if res.Raw != nil {
		debug.BackendResponses = append(debug.BackendResponses, res.Raw)
	}
	debug.TokenUsage = debug.TokenUsage.Add(res.Usage)
	return res, nil
}
