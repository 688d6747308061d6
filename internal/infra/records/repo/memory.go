package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/civiclens/councilscribe/internal/domain/records"
	apperrors "github.com/civiclens/councilscribe/pkg/errors"
)

// MemoryStore keeps all record kinds in process memory for tests/dev.
type MemoryStore struct {
	mu           sync.RWMutex
	documents    map[uuid.UUID]records.Document
	legislations map[uuid.UUID]records.Legislation
	meetings     map[uuid.UUID]records.Meeting
	summaries    map[summaryKey]records.Summary
}

type summaryKey struct {
	kind     records.EntityKind
	entityID uuid.UUID
	style    string
}

// NewMemoryStore constructs the in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents:    make(map[uuid.UUID]records.Document),
		legislations: make(map[uuid.UUID]records.Legislation),
		meetings:     make(map[uuid.UUID]records.Meeting),
		summaries:    make(map[summaryKey]records.Summary),
	}
}

// Create implements records.DocumentRepository.
func (s *MemoryStore) Create(_ context.Context, doc records.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = doc
	return nil
}

// Get implements records.DocumentRepository.
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (records.Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	return doc, ok, nil
}

// List implements records.DocumentRepository.
func (s *MemoryStore) List(_ context.Context) ([]records.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]records.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ListByIDs implements records.DocumentRepository.
func (s *MemoryStore) ListByIDs(_ context.Context, ids []uuid.UUID) ([]records.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]records.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := s.documents[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

// UpdateExtractedText implements records.DocumentRepository.
func (s *MemoryStore) UpdateExtractedText(_ context.Context, id uuid.UUID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return apperrors.Wrap(apperrors.CodeNotFound, "document not found: "+id.String(), nil)
	}
	doc.ExtractedText = text
	s.documents[id] = doc
	return nil
}

// CreateLegislation stores a legislative action.
func (s *MemoryStore) CreateLegislation(_ context.Context, leg records.Legislation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.legislations[leg.ID] = leg
	return nil
}

// GetLegislation loads one legislative action.
func (s *MemoryStore) GetLegislation(_ context.Context, id uuid.UUID) (records.Legislation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	leg, ok := s.legislations[id]
	return leg, ok, nil
}

// ListLegislations returns all legislative actions.
func (s *MemoryStore) ListLegislations(_ context.Context) ([]records.Legislation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]records.Legislation, 0, len(s.legislations))
	for _, leg := range s.legislations {
		out = append(out, leg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// CreateMeeting stores a meeting.
func (s *MemoryStore) CreateMeeting(_ context.Context, meeting records.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meetings[meeting.ID] = meeting
	return nil
}

// GetMeeting loads one meeting.
func (s *MemoryStore) GetMeeting(_ context.Context, id uuid.UUID) (records.Meeting, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meeting, ok := s.meetings[id]
	return meeting, ok, nil
}

// ListMeetings returns all meetings.
func (s *MemoryStore) ListMeetings(_ context.Context) ([]records.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]records.Meeting, 0, len(s.meetings))
	for _, meeting := range s.meetings {
		out = append(out, meeting)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// GetSummary implements records.SummaryRepository lookup.
func (s *MemoryStore) GetSummary(_ context.Context, kind records.EntityKind, entityID uuid.UUID, style string) (records.Summary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary, ok := s.summaries[summaryKey{kind: kind, entityID: entityID, style: style}]
	return summary, ok, nil
}

// SaveSummary replaces any prior summary for the (entity, style) pair.
func (s *MemoryStore) SaveSummary(_ context.Context, summary records.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[summaryKey{kind: summary.EntityKind, entityID: summary.EntityID, style: summary.Style}] = summary
	return nil
}

// ListSummarizedEntities returns entity IDs holding a summary for the style.
func (s *MemoryStore) ListSummarizedEntities(_ context.Context, kind records.EntityKind, style string) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []uuid.UUID
	for key := range s.summaries {
		if key.kind == kind && key.style == style {
			out = append(out, key.entityID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

// MemoryDocumentRepository adapts MemoryStore to records.DocumentRepository.
type MemoryDocumentRepository struct{ *MemoryStore }

// MemoryLegislationRepository adapts MemoryStore to records.LegislationRepository.
type MemoryLegislationRepository struct{ store *MemoryStore }

func (r MemoryLegislationRepository) Create(ctx context.Context, leg records.Legislation) error {
	return r.store.CreateLegislation(ctx, leg)
}

func (r MemoryLegislationRepository) Get(ctx context.Context, id uuid.UUID) (records.Legislation, bool, error) {
	return r.store.GetLegislation(ctx, id)
}

func (r MemoryLegislationRepository) List(ctx context.Context) ([]records.Legislation, error) {
	return r.store.ListLegislations(ctx)
}

// MemoryMeetingRepository adapts MemoryStore to records.MeetingRepository.
type MemoryMeetingRepository struct{ store *MemoryStore }

func (r MemoryMeetingRepository) Create(ctx context.Context, meeting records.Meeting) error {
	return r.store.CreateMeeting(ctx, meeting)
}

func (r MemoryMeetingRepository) Get(ctx context.Context, id uuid.UUID) (records.Meeting, bool, error) {
	return r.store.GetMeeting(ctx, id)
}

func (r MemoryMeetingRepository) List(ctx context.Context) ([]records.Meeting, error) {
	return r.store.ListMeetings(ctx)
}

// MemorySummaryRepository adapts MemoryStore to records.SummaryRepository.
type MemorySummaryRepository struct{ store *MemoryStore }

func (r MemorySummaryRepository) Get(ctx context.Context, kind records.EntityKind, entityID uuid.UUID, style string) (records.Summary, bool, error) {
	return r.store.GetSummary(ctx, kind, entityID, style)
}

func (r MemorySummaryRepository) Save(ctx context.Context, summary records.Summary) error {
	return r.store.SaveSummary(ctx, summary)
}

func (r MemorySummaryRepository) ListSummarized(ctx context.Context, kind records.EntityKind, style string) ([]uuid.UUID, error) {
	return r.store.ListSummarizedEntities(ctx, kind, style)
}

// NewMemoryRepositories returns all four repositories over one shared store.
func NewMemoryRepositories() (records.MeetingRepository, records.LegislationRepository, records.DocumentRepository, records.SummaryRepository) {
	store := NewMemoryStore()
	return MemoryMeetingRepository{store: store},
		MemoryLegislationRepository{store: store},
		MemoryDocumentRepository{MemoryStore: store},
		MemorySummaryRepository{store: store}
}

var (
	_ records.DocumentRepository    = MemoryDocumentRepository{}
	_ records.LegislationRepository = MemoryLegislationRepository{}
	_ records.MeetingRepository     = MemoryMeetingRepository{}
	_ records.SummaryRepository     = MemorySummaryRepository{}
)
