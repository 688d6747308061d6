package extract

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/civiclens/councilscribe/internal/domain/records"
	apperrors "github.com/civiclens/councilscribe/pkg/errors"
)

// MimeExtractor turns stored document payloads into plain text,
// dispatching on MIME type.
type MimeExtractor struct {
	logger *slog.Logger
}

// NewMimeExtractor constructs the extractor.
func NewMimeExtractor(logger *slog.Logger) *MimeExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &MimeExtractor{logger: logger.With("component", "records.extract")}
}

func (e *MimeExtractor) Extract(ctx context.Context, data []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	normalized := strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(normalized, ";"); idx >= 0 {
		normalized = strings.TrimSpace(normalized[:idx])
	}
	switch normalized {
	case "application/pdf":
		return e.extractPDF(data)
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return e.extractDocx(data)
	case "text/plain", "text/html", "":
		return string(data), nil
	default:
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, "unsupported mime type: "+mimeType, nil)
	}
}

func (e *MimeExtractor) extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, "parse pdf", err)
	}
	var builder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Image-only or malformed pages yield no text.
			e.logger.Warn("pdf page extraction failed", "page", i, "error", err)
			continue
		}
		trimmed := strings.TrimSpace(pageText)
		if trimmed == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(trimmed)
	}
	return builder.String(), nil
}

func (e *MimeExtractor) extractDocx(data []byte) (string, error) {
	reader, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, "parse docx", err)
	}
	defer reader.Close()
	return reader.Editable().GetContent(), nil
}

var _ records.Extractor = (*MimeExtractor)(nil)
