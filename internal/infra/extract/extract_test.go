package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/civiclens/councilscribe/pkg/errors"
	"github.com/civiclens/councilscribe/pkg/logger"
)

func TestExtractPlainTextPassthrough(t *testing.T) {
	e := NewMimeExtractor(logger.New())
	tests := []struct {
		name string
		mime string
	}{
		{"plain", "text/plain"},
		{"plain with charset", "text/plain; charset=utf-8"},
		{"html", "text/html"},
		{"missing mime", ""},
		{"uppercase", "TEXT/PLAIN"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			text, err := e.Extract(context.Background(), []byte("council adjourned"), tc.mime)
			require.NoError(t, err)
			require.Equal(t, "council adjourned", text)
		})
	}
}

func TestExtractUnsupportedMime(t *testing.T) {
	e := NewMimeExtractor(logger.New())
	_, err := e.Extract(context.Background(), []byte{0x00}, "image/png")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestExtractMalformedPDF(t *testing.T) {
	e := NewMimeExtractor(logger.New())
	_, err := e.Extract(context.Background(), []byte("not a pdf"), "application/pdf")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestExtractCanceledContext(t *testing.T) {
	e := NewMimeExtractor(logger.New())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Extract(ctx, []byte("text"), "text/plain")
	require.Error(t, err)
}
