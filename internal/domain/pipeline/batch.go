package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/civiclens/councilscribe/internal/domain/records"
	"github.com/civiclens/councilscribe/internal/domain/summarize"
	apperrors "github.com/civiclens/councilscribe/pkg/errors"
)

// BatchError records one entity that could not be summarized.
type BatchError struct {
	EntityID uuid.UUID `json:"entityId"`
	Message  string    `json:"message"`
}

// BatchResult tallies a best-effort batch run.
type BatchResult struct {
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Errors    []BatchError `json:"errors,omitempty"`
}

// SummarizeAllDocuments summarizes every document lacking a summary for the
// style (every document when force is set). One entity's failure is logged
// and skipped; the batch always runs to completion unless canceled.
func (s *Service) SummarizeAllDocuments(ctx context.Context, style summarize.Style, force bool) (BatchResult, error) {
	docs, err := s.documents.List(ctx)
	if err != nil {
		return BatchResult{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to list documents", err)
	}
	ids := make([]uuid.UUID, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	return s.runBatch(ctx, records.EntityDocument, ids, style, force, func(ctx context.Context, id uuid.UUID) error {
		_, err := s.SummarizeDocument(ctx, id, style, force)
		return err
	})
}

// SummarizeAllLegislations is the batch variant for legislative actions.
func (s *Service) SummarizeAllLegislations(ctx context.Context, style summarize.Style, force bool) (BatchResult, error) {
	legs, err := s.legislations.List(ctx)
	if err != nil {
		return BatchResult{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to list legislations", err)
	}
	ids := make([]uuid.UUID, 0, len(legs))
	for _, leg := range legs {
		ids = append(ids, leg.ID)
	}
	return s.runBatch(ctx, records.EntityLegislation, ids, style, force, func(ctx context.Context, id uuid.UUID) error {
		_, err := s.SummarizeLegislation(ctx, id, style, force)
		return err
	})
}

// SummarizeAllMeetings is the batch variant for meetings.
func (s *Service) SummarizeAllMeetings(ctx context.Context, style summarize.Style, force bool) (BatchResult, error) {
	meetings, err := s.meetings.List(ctx)
	if err != nil {
		return BatchResult{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to list meetings", err)
	}
	ids := make([]uuid.UUID, 0, len(meetings))
	for _, meeting := range meetings {
		ids = append(ids, meeting.ID)
	}
	return s.runBatch(ctx, records.EntityMeeting, ids, style, force, func(ctx context.Context, id uuid.UUID) error {
		_, err := s.SummarizeMeeting(ctx, id, style, force)
		return err
	})
}

func (s *Service) runBatch(ctx context.Context, kind records.EntityKind, ids []uuid.UUID, style summarize.Style, force bool, run func(context.Context, uuid.UUID) error) (BatchResult, error) {
	done := map[uuid.UUID]struct{}{}
	if !force {
		summarized, err := s.summaries.ListSummarized(ctx, kind, style.Name)
		if err != nil {
			return BatchResult{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to list existing summaries", err)
		}
		for _, id := range summarized {
			done[id] = struct{}{}
		}
	}

	var result BatchResult
	for _, id := range ids {
		// Interruption between entities leaves a consistent, resumable state.
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("batch interrupted: %w", err)
		}
		if _, skip := done[id]; skip {
			continue
		}
		if err := run(ctx, id); err != nil {
			s.logger.Warn("batch entity failed", "kind", kind, "entity_id", id, "style", style.Name, "error", err)
			result.Failed++
			result.Errors = append(result.Errors, BatchError{EntityID: id, Message: err.Error()})
			continue
		}
		result.Succeeded++
	}
	s.logger.Info("batch complete", "kind", kind, "style", style.Name, "succeeded", result.Succeeded, "failed", result.Failed)
	return result, nil
}
