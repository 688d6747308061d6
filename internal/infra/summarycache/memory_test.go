package summarycache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/civiclens/councilscribe/internal/domain/records"
)

func sampleSummary() records.Summary {
	return records.Summary{
		ID:         uuid.New(),
		EntityKind: records.EntityDocument,
		EntityID:   uuid.New(),
		Style:      "concise",
		Headline:   "headline",
		Body:       "body",
		CreatedAt:  time.Now(),
	}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()
	summary := sampleSummary()

	_, found, err := cache.Get(ctx, summary.EntityKind, summary.EntityID, summary.Style)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, cache.Put(ctx, summary, time.Minute))

	got, found, err := cache.Get(ctx, summary.EntityKind, summary.EntityID, summary.Style)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, summary.ID, got.ID)
}

func TestMemoryCacheExpiry(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()
	summary := sampleSummary()

	require.NoError(t, cache.Put(ctx, summary, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, found, err := cache.Get(ctx, summary.EntityKind, summary.EntityID, summary.Style)
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryCacheZeroTTLNeverExpires(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()
	summary := sampleSummary()

	require.NoError(t, cache.Put(ctx, summary, 0))
	time.Sleep(2 * time.Millisecond)

	_, found, err := cache.Get(ctx, summary.EntityKind, summary.EntityID, summary.Style)
	require.NoError(t, err)
	require.True(t, found)
}

func TestMemoryCacheDistinguishesStyles(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()
	summary := sampleSummary()
	require.NoError(t, cache.Put(ctx, summary, time.Minute))

	_, found, err := cache.Get(ctx, summary.EntityKind, summary.EntityID, "detailed")
	require.NoError(t, err)
	require.False(t, found)
}
