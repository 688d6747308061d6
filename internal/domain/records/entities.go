package records

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/civiclens/councilscribe/pkg/metrics"
)

// EntityKind identifies the three summarizable record kinds.
type EntityKind string

const (
	EntityDocument    EntityKind = "document"
	EntityLegislation EntityKind = "legislation"
	EntityMeeting     EntityKind = "meeting"
)

// DocumentKind describes how an attached document relates to its meeting.
type DocumentKind string

const (
	DocumentKindAgenda             DocumentKind = "agenda"
	DocumentKindAgendaPacket       DocumentKind = "agenda_packet"
	DocumentKindMinutes            DocumentKind = "minutes"
	DocumentKindAttachment         DocumentKind = "attachment"
	DocumentKindSupportingDocument DocumentKind = "supporting_document"
)

// Document is a single file downloaded from the records portal.
type Document struct {
	ID            uuid.UUID    `json:"id"`
	Kind          DocumentKind `json:"kind"`
	Title         string       `json:"title"`
	SourceURL     string       `json:"sourceUrl"`
	MimeType      string       `json:"mimeType"`
	BlobKey       string       `json:"blobKey"`
	ExtractedText string       `json:"-"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// Legislation is a single legislative action with its ordered attachments.
type Legislation struct {
	ID          uuid.UUID   `json:"id"`
	RecordNo    string      `json:"recordNo"`
	Title       string      `json:"title"`
	DocumentIDs []uuid.UUID `json:"documentIds"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Meeting is a council meeting with its ordered legislative actions and
// directly attached documents.
type Meeting struct {
	ID             uuid.UUID   `json:"id"`
	Department     string      `json:"department"`
	Date           time.Time   `json:"date"`
	Location       string      `json:"location"`
	LegislationIDs []uuid.UUID `json:"legislationIds"`
	DocumentIDs    []uuid.UUID `json:"documentIds"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// SummaryDebug retains the intermediate pipeline state for offline evaluation.
// The pipeline itself never reads it back.
type SummaryDebug struct {
	Chunks           []string           `json:"chunks,omitempty"`
	ChunkSummaries   []string           `json:"chunkSummaries,omitempty"`
	FoldPasses       int                `json:"foldPasses"`
	BackendResponses []json.RawMessage  `json:"backendResponses,omitempty"`
	TokenUsage       metrics.TokenUsage `json:"tokenUsage"`
	DurationMs       int64              `json:"durationMs"`
}

// Summary belongs to exactly one (entity, style) pair.
type Summary struct {
	ID         uuid.UUID    `json:"id"`
	EntityKind EntityKind   `json:"entityKind"`
	EntityID   uuid.UUID    `json:"entityId"`
	Style      string       `json:"style"`
	Headline   string       `json:"headline"`
	Body       string       `json:"body"`
	Debug      SummaryDebug `json:"debug"`
	CreatedAt  time.Time    `json:"createdAt"`
}
