package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/civiclens/councilscribe/internal/domain/records"
	"github.com/civiclens/councilscribe/internal/domain/summarize"
	apperrors "github.com/civiclens/councilscribe/pkg/errors"
)

// maxTitleChars bounds titles interpolated into prompts.
const maxTitleChars = 100

// Folder folds an arbitrary text into one budget-fitting summary.
type Folder interface {
	Summarize(ctx context.Context, text string, style summarize.Style, kind records.EntityKind, tmplCtx summarize.TemplateContext) (summarize.Result, error)
}

// Service owns sequencing and persistence for entity summarization. Each
// entity is summarized dependency-first: documents before their legislation,
// legislation before its meeting. Summaries are keyed by (entity, style) and
// re-running without force is a no-op.
type Service struct {
	meetings     records.MeetingRepository
	legislations records.LegislationRepository
	documents    records.DocumentRepository
	summaries    records.SummaryRepository
	blobs        records.BlobStorage
	extractor    records.Extractor
	folder       Folder
	logger       *slog.Logger
}

// NewService constructs the orchestrator.
func NewService(
	meetings records.MeetingRepository,
	legislations records.LegislationRepository,
	documents records.DocumentRepository,
	summaries records.SummaryRepository,
	blobs records.BlobStorage,
	extractor records.Extractor,
	folder Folder,
	logger *slog.Logger,
) *Service {
	return &Service{
		meetings:     meetings,
		legislations: legislations,
		documents:    documents,
		summaries:    summaries,
		blobs:        blobs,
		extractor:    extractor,
		folder:       folder,
		logger:       logger.With("component", "pipeline.service"),
	}
}

// SummarizeDocument summarizes one document's extracted text. An existing
// summary for (document, style) is returned unchanged unless force is set.
func (s *Service) SummarizeDocument(ctx context.Context, docID uuid.UUID, style summarize.Style, force bool) (records.Summary, error) {
	if existing, ok, err := s.lookup(ctx, records.EntityDocument, docID, style.Name, force); err != nil || ok {
		return existing, err
	}

	doc, found, err := s.documents.Get(ctx, docID)
	if err != nil {
		return records.Summary{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to load document", err)
	}
	if !found {
		return records.Summary{}, apperrors.Wrap(apperrors.CodeNotFound, "document not found", nil)
	}
	doc, err = s.ensureDocumentText(ctx, doc)
	if err != nil {
		return records.Summary{}, err
	}

	s.logger.Info("summarizing document", "document_id", docID, "style", style.Name)
	result, err := s.folder.Summarize(ctx, doc.ExtractedText, style, records.EntityDocument, summarize.TemplateContext{
		"title": promptTitle(doc.Title),
	})
	if err != nil {
		return records.Summary{}, err
	}
	return s.persist(ctx, records.EntityDocument, docID, style.Name, result)
}

// SummarizeLegislation folds the summaries of a legislation's documents.
// Missing child summaries are produced first; a child that cannot be
// summarized fails the call with missing_child_summary.
func (s *Service) SummarizeLegislation(ctx context.Context, legID uuid.UUID, style summarize.Style, force bool) (records.Summary, error) {
	if existing, ok, err := s.lookup(ctx, records.EntityLegislation, legID, style.Name, force); err != nil || ok {
		return existing, err
	}

	leg, found, err := s.legislations.Get(ctx, legID)
	if err != nil {
		return records.Summary{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to load legislation", err)
	}
	if !found {
		return records.Summary{}, apperrors.Wrap(apperrors.CodeNotFound, "legislation not found", nil)
	}

	docs, err := s.documents.ListByIDs(ctx, leg.DocumentIDs)
	if err != nil {
		return records.Summary{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to load legislation documents", err)
	}
	var sections []string
	for _, doc := range docs {
		child, err := s.SummarizeDocument(ctx, doc.ID, style, false)
		if err != nil {
			return records.Summary{}, apperrors.Wrap(apperrors.CodeMissingChildSummary,
				fmt.Sprintf("could not summarize document %s", doc.ID), err)
		}
		sections = append(sections, childSection(string(doc.Kind), doc.Title, child.Body))
	}

	s.logger.Info("summarizing legislation", "legislation_id", legID, "style", style.Name, "documents", len(sections))
	result, err := s.folder.Summarize(ctx, strings.Join(sections, "\n\n"), style, records.EntityLegislation, summarize.TemplateContext{
		"title": promptTitle(leg.Title),
	})
	if err != nil {
		return records.Summary{}, err
	}
	return s.persist(ctx, records.EntityLegislation, legID, style.Name, result)
}

// SummarizeMeeting folds the summaries of a meeting's legislative actions
// plus its directly attached documents. Agenda and agenda-packet documents
// are excluded: the agenda duplicates the item list, and the packet bundles
// attachments that are summarized individually.
func (s *Service) SummarizeMeeting(ctx context.Context, meetingID uuid.UUID, style summarize.Style, force bool) (records.Summary, error) {
	if existing, ok, err := s.lookup(ctx, records.EntityMeeting, meetingID, style.Name, force); err != nil || ok {
		return existing, err
	}

	meeting, found, err := s.meetings.Get(ctx, meetingID)
	if err != nil {
		return records.Summary{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to load meeting", err)
	}
	if !found {
		return records.Summary{}, apperrors.Wrap(apperrors.CodeNotFound, "meeting not found", nil)
	}

	var sections []string
	for _, legID := range meeting.LegislationIDs {
		child, err := s.SummarizeLegislation(ctx, legID, style, false)
		if err != nil {
			return records.Summary{}, apperrors.Wrap(apperrors.CodeMissingChildSummary,
				fmt.Sprintf("could not summarize legislation %s", legID), err)
		}
		leg, _, legErr := s.legislations.Get(ctx, legID)
		title := ""
		if legErr == nil {
			title = leg.Title
		}
		sections = append(sections, childSection("legislation", title, child.Body))
	}

	docs, err := s.documents.ListByIDs(ctx, meeting.DocumentIDs)
	if err != nil {
		return records.Summary{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to load meeting documents", err)
	}
	for _, doc := range docs {
		if doc.Kind == records.DocumentKindAgenda || doc.Kind == records.DocumentKindAgendaPacket {
			continue
		}
		child, err := s.SummarizeDocument(ctx, doc.ID, style, false)
		if err != nil {
			return records.Summary{}, apperrors.Wrap(apperrors.CodeMissingChildSummary,
				fmt.Sprintf("could not summarize document %s", doc.ID), err)
		}
		sections = append(sections, childSection(string(doc.Kind), doc.Title, child.Body))
	}

	s.logger.Info("summarizing meeting", "meeting_id", meetingID, "style", style.Name, "sections", len(sections))
	result, err := s.folder.Summarize(ctx, strings.Join(sections, "\n\n"), style, records.EntityMeeting, summarize.TemplateContext{
		"department": meeting.Department,
	})
	if err != nil {
		return records.Summary{}, err
	}
	return s.persist(ctx, records.EntityMeeting, meetingID, style.Name, result)
}

// lookup returns an existing summary when force is unset. The bool reports
// whether the caller should return immediately.
func (s *Service) lookup(ctx context.Context, kind records.EntityKind, entityID uuid.UUID, styleName string, force bool) (records.Summary, bool, error) {
	if force {
		return records.Summary{}, false, nil
	}
	existing, found, err := s.summaries.Get(ctx, kind, entityID, styleName)
	if err != nil {
		return records.Summary{}, false, apperrors.Wrap(apperrors.CodeStorageError, "failed to look up summary", err)
	}
	if found {
		return existing, true, nil
	}
	return records.Summary{}, false, nil
}

func (s *Service) persist(ctx context.Context, kind records.EntityKind, entityID uuid.UUID, styleName string, result summarize.Result) (records.Summary, error) {
	summary := records.Summary{
		ID:         uuid.New(),
		EntityKind: kind,
		EntityID:   entityID,
		Style:      styleName,
		Headline:   result.Headline,
		Body:       result.Body,
		Debug:      result.Debug,
		CreatedAt:  time.Now(),
	}
	if err := s.summaries.Save(ctx, summary); err != nil {
		return records.Summary{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to persist summary", err)
	}
	return summary, nil
}

// ensureDocumentText extracts text from the stored blob when the document
// has none yet. Extraction output is not validated for fidelity.
func (s *Service) ensureDocumentText(ctx context.Context, doc records.Document) (records.Document, error) {
	if doc.ExtractedText != "" || doc.BlobKey == "" {
		return doc, nil
	}
	reader, err := s.blobs.Get(ctx, doc.BlobKey)
	if err != nil {
		return records.Document{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to fetch document blob", err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return records.Document{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to read document blob", err)
	}
	text, err := s.extractor.Extract(ctx, data, doc.MimeType)
	if err != nil {
		return records.Document{}, apperrors.Wrap(apperrors.CodeInvalidInput, "failed to extract document text", err)
	}
	if err := s.documents.UpdateExtractedText(ctx, doc.ID, text); err != nil {
		return records.Document{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to store extracted text", err)
	}
	doc.ExtractedText = text
	return doc, nil
}

func childSection(kind, title, body string) string {
	header := strings.TrimSpace(kind)
	if title = strings.TrimSpace(title); title != "" {
		header += ": " + title
	}
	return header + "\n" + body
}

// promptTitle bounds and flattens a title so it can be embedded in a
// double-quoted prompt.
func promptTitle(title string) string {
	title = strings.ReplaceAll(title, `"`, "'")
	if len(title) <= maxTitleChars {
		return title
	}
	return strings.TrimSpace(title[:maxTitleChars-3]) + "..."
}
