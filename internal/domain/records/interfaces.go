package records

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// DocumentRepository persists document records.
type DocumentRepository interface {
	Create(ctx context.Context, doc Document) error
	Get(ctx context.Context, id uuid.UUID) (Document, bool, error)
	List(ctx context.Context) ([]Document, error)
	// ListByIDs returns documents in the order of the provided IDs,
	// skipping IDs with no matching record.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]Document, error)
	UpdateExtractedText(ctx context.Context, id uuid.UUID, text string) error
}

// LegislationRepository persists legislative actions.
type LegislationRepository interface {
	Create(ctx context.Context, leg Legislation) error
	Get(ctx context.Context, id uuid.UUID) (Legislation, bool, error)
	List(ctx context.Context) ([]Legislation, error)
}

// MeetingRepository persists meetings.
type MeetingRepository interface {
	Create(ctx context.Context, meeting Meeting) error
	Get(ctx context.Context, id uuid.UUID) (Meeting, bool, error)
	List(ctx context.Context) ([]Meeting, error)
}

// SummaryRepository persists summaries keyed by (entity, style).
// Save has atomic-replace semantics: a partial write is never observable.
type SummaryRepository interface {
	Get(ctx context.Context, kind EntityKind, entityID uuid.UUID, style string) (Summary, bool, error)
	Save(ctx context.Context, summary Summary) error
	// ListSummarized returns the IDs of all entities of the given kind
	// that already have a summary for the style.
	ListSummarized(ctx context.Context, kind EntityKind, style string) ([]uuid.UUID, error)
}

// BlobStorage stores raw downloaded document bytes.
type BlobStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (StoredObject, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// StoredObject captures persisted blob metadata.
type StoredObject struct {
	Key      string
	Size     int64
	MimeType string
	ETag     string
}

// Extractor converts raw document bytes into text. The output is an
// unvalidated string; empty or garbled text is still valid input downstream.
type Extractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) (string, error)
}

// SummaryCache is a read-through cache for the HTTP layer.
type SummaryCache interface {
	Get(ctx context.Context, kind EntityKind, entityID uuid.UUID, style string) (Summary, bool, error)
	Put(ctx context.Context, summary Summary, ttl time.Duration) error
}
