package repo

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civiclens/councilscribe/internal/domain/records"
	apperrors "github.com/civiclens/councilscribe/pkg/errors"
)

// PostgresDocumentRepository persists documents in Postgres.
type PostgresDocumentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresDocumentRepository constructs the repository.
func NewPostgresDocumentRepository(pool *pgxpool.Pool) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{pool: pool}
}

func (r *PostgresDocumentRepository) Create(ctx context.Context, doc records.Document) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO documents (id, kind, title, source_url, mime_type, blob_key, extracted_text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, doc.ID, doc.Kind, doc.Title, doc.SourceURL, doc.MimeType, doc.BlobKey, doc.ExtractedText, doc.CreatedAt, doc.UpdatedAt)
	return err
}

func (r *PostgresDocumentRepository) Get(ctx context.Context, id uuid.UUID) (records.Document, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, kind, title, source_url, mime_type, blob_key, extracted_text, created_at, updated_at
		FROM documents
		WHERE id = $1
		LIMIT 1
	`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return records.Document{}, false, nil
		}
		return records.Document{}, false, err
	}
	return doc, true, nil
}

func (r *PostgresDocumentRepository) List(ctx context.Context) ([]records.Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, kind, title, source_url, mime_type, blob_key, extracted_text, created_at, updated_at
		FROM documents
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []records.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *PostgresDocumentRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]records.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, kind, title, source_url, mime_type, blob_key, extracted_text, created_at, updated_at
		FROM documents
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]records.Document, len(ids))
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		byID[doc.ID] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Callers rely on the input order; missing IDs are dropped.
	out := make([]records.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := byID[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (r *PostgresDocumentRepository) UpdateExtractedText(ctx context.Context, id uuid.UUID, text string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE documents
		SET extracted_text = $1, updated_at = NOW()
		WHERE id = $2
	`, text, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Wrap(apperrors.CodeNotFound, "document not found: "+id.String(), nil)
	}
	return nil
}

func scanDocument(row pgx.Row) (records.Document, error) {
	var doc records.Document
	err := row.Scan(&doc.ID, &doc.Kind, &doc.Title, &doc.SourceURL, &doc.MimeType, &doc.BlobKey, &doc.ExtractedText, &doc.CreatedAt, &doc.UpdatedAt)
	return doc, err
}

var _ records.DocumentRepository = (*PostgresDocumentRepository)(nil)

// PostgresLegislationRepository persists legislative actions.
type PostgresLegislationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresLegislationRepository constructs the repository.
func NewPostgresLegislationRepository(pool *pgxpool.Pool) *PostgresLegislationRepository {
	return &PostgresLegislationRepository{pool: pool}
}

func (r *PostgresLegislationRepository) Create(ctx context.Context, leg records.Legislation) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO legislations (id, record_no, title, created_at)
		VALUES ($1, $2, $3, $4)
	`, leg.ID, leg.RecordNo, leg.Title, leg.CreatedAt); err != nil {
		return err
	}
	for i, docID := range leg.DocumentIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO legislation_documents (legislation_id, document_id, position)
			VALUES ($1, $2, $3)
		`, leg.ID, docID, i); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PostgresLegislationRepository) Get(ctx context.Context, id uuid.UUID) (records.Legislation, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, record_no, title, created_at
		FROM legislations
		WHERE id = $1
		LIMIT 1
	`, id)
	var leg records.Legislation
	if err := row.Scan(&leg.ID, &leg.RecordNo, &leg.Title, &leg.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return records.Legislation{}, false, nil
		}
		return records.Legislation{}, false, err
	}
	docIDs, err := r.documentIDs(ctx, id)
	if err != nil {
		return records.Legislation{}, false, err
	}
	leg.DocumentIDs = docIDs
	return leg, true, nil
}

func (r *PostgresLegislationRepository) List(ctx context.Context) ([]records.Legislation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, record_no, title, created_at
		FROM legislations
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var legs []records.Legislation
	for rows.Next() {
		var leg records.Legislation
		if err := rows.Scan(&leg.ID, &leg.RecordNo, &leg.Title, &leg.CreatedAt); err != nil {
			return nil, err
		}
		legs = append(legs, leg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range legs {
		docIDs, err := r.documentIDs(ctx, legs[i].ID)
		if err != nil {
			return nil, err
		}
		legs[i].DocumentIDs = docIDs
	}
	return legs, nil
}

func (r *PostgresLegislationRepository) documentIDs(ctx context.Context, legID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT document_id
		FROM legislation_documents
		WHERE legislation_id = $1
		ORDER BY position ASC
	`, legID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

var _ records.LegislationRepository = (*PostgresLegislationRepository)(nil)

// PostgresMeetingRepository persists meetings.
type PostgresMeetingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresMeetingRepository constructs the repository.
func NewPostgresMeetingRepository(pool *pgxpool.Pool) *PostgresMeetingRepository {
	return &PostgresMeetingRepository{pool: pool}
}

func (r *PostgresMeetingRepository) Create(ctx context.Context, meeting records.Meeting) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO meetings (id, department, date, location, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, meeting.ID, meeting.Department, meeting.Date, meeting.Location, meeting.CreatedAt); err != nil {
		return err
	}
	for i, legID := range meeting.LegislationIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO meeting_legislations (meeting_id, legislation_id, position)
			VALUES ($1, $2, $3)
		`, meeting.ID, legID, i); err != nil {
			return err
		}
	}
	for i, docID := range meeting.DocumentIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO meeting_documents (meeting_id, document_id, position)
			VALUES ($1, $2, $3)
		`, meeting.ID, docID, i); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PostgresMeetingRepository) Get(ctx context.Context, id uuid.UUID) (records.Meeting, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, department, date, location, created_at
		FROM meetings
		WHERE id = $1
		LIMIT 1
	`, id)
	var meeting records.Meeting
	if err := row.Scan(&meeting.ID, &meeting.Department, &meeting.Date, &meeting.Location, &meeting.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return records.Meeting{}, false, nil
		}
		return records.Meeting{}, false, err
	}
	if err := r.loadLinks(ctx, &meeting); err != nil {
		return records.Meeting{}, false, err
	}
	return meeting, true, nil
}

func (r *PostgresMeetingRepository) List(ctx context.Context) ([]records.Meeting, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, department, date, location, created_at
		FROM meetings
		ORDER BY date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []records.Meeting
	for rows.Next() {
		var meeting records.Meeting
		if err := rows.Scan(&meeting.ID, &meeting.Department, &meeting.Date, &meeting.Location, &meeting.CreatedAt); err != nil {
			return nil, err
		}
		meetings = append(meetings, meeting)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range meetings {
		if err := r.loadLinks(ctx, &meetings[i]); err != nil {
			return nil, err
		}
	}
	return meetings, nil
}

func (r *PostgresMeetingRepository) loadLinks(ctx context.Context, meeting *records.Meeting) error {
	legRows, err := r.pool.Query(ctx, `
		SELECT legislation_id
		FROM meeting_legislations
		WHERE meeting_id = $1
		ORDER BY position ASC
	`, meeting.ID)
	if err != nil {
		return err
	}
	legIDs, err := scanIDs(legRows)
	legRows.Close()
	if err != nil {
		return err
	}
	meeting.LegislationIDs = legIDs

	docRows, err := r.pool.Query(ctx, `
		SELECT document_id
		FROM meeting_documents
		WHERE meeting_id = $1
		ORDER BY position ASC
	`, meeting.ID)
	if err != nil {
		return err
	}
	docIDs, err := scanIDs(docRows)
	docRows.Close()
	if err != nil {
		return err
	}
	meeting.DocumentIDs = docIDs
	return nil
}

var _ records.MeetingRepository = (*PostgresMeetingRepository)(nil)

// PostgresSummaryRepository persists summaries keyed by (entity_kind, entity_id, style).
type PostgresSummaryRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSummaryRepository constructs the repository.
func NewPostgresSummaryRepository(pool *pgxpool.Pool) *PostgresSummaryRepository {
	return &PostgresSummaryRepository{pool: pool}
}

func (r *PostgresSummaryRepository) Get(ctx context.Context, kind records.EntityKind, entityID uuid.UUID, style string) (records.Summary, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, entity_kind, entity_id, style, headline, body, debug, created_at
		FROM summaries
		WHERE entity_kind = $1 AND entity_id = $2 AND style = $3
		LIMIT 1
	`, kind, entityID, style)
	var (
		summary records.Summary
		rawJSON []byte
	)
	if err := row.Scan(&summary.ID, &summary.EntityKind, &summary.EntityID, &summary.Style, &summary.Headline, &summary.Body, &rawJSON, &summary.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return records.Summary{}, false, nil
		}
		return records.Summary{}, false, err
	}
	_ = json.Unmarshal(rawJSON, &summary.Debug)
	return summary, true, nil
}

// Save upserts in a single statement so the prior summary stays readable
// until the replacement commits.
func (r *PostgresSummaryRepository) Save(ctx context.Context, summary records.Summary) error {
	debug, err := json.Marshal(summary.Debug)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO summaries (id, entity_kind, entity_id, style, headline, body, debug, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (entity_kind, entity_id, style) DO UPDATE
		SET id = EXCLUDED.id,
		    headline = EXCLUDED.headline,
		    body = EXCLUDED.body,
		    debug = EXCLUDED.debug,
		    created_at = EXCLUDED.created_at
	`, summary.ID, summary.EntityKind, summary.EntityID, summary.Style, summary.Headline, summary.Body, debug, summary.CreatedAt)
	return err
}

func (r *PostgresSummaryRepository) ListSummarized(ctx context.Context, kind records.EntityKind, style string) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT entity_id
		FROM summaries
		WHERE entity_kind = $1 AND style = $2
	`, kind, style)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

var _ records.SummaryRepository = (*PostgresSummaryRepository)(nil)

func scanIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
