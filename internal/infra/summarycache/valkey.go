package summarycache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"

	"github.com/civiclens/councilscribe/internal/domain/records"
)

// ValkeyCache caches summaries in a Valkey-compatible database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache constructs a cache backed by Valkey.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "summary"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

func (c *ValkeyCache) Get(ctx context.Context, kind records.EntityKind, entityID uuid.UUID, style string) (records.Summary, bool, error) {
	cmd := c.client.B().Get().Key(c.entryKey(kind, entityID, style)).Build()
	payload, err := c.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return records.Summary{}, false, nil
		}
		return records.Summary{}, false, err
	}
	var summary records.Summary
	if err := json.Unmarshal([]byte(payload), &summary); err != nil {
		return records.Summary{}, false, err
	}
	return summary, true, nil
}

func (c *ValkeyCache) Put(ctx context.Context, summary records.Summary, ttl time.Duration) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	builder := c.client.B().Set().Key(c.entryKey(summary.EntityKind, summary.EntityID, summary.Style)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

func (c *ValkeyCache) entryKey(kind records.EntityKind, entityID uuid.UUID, style string) string {
	return fmt.Sprintf("%s:%s:%s:%s", c.prefix, kind, entityID, style)
}

var _ records.SummaryCache = (*ValkeyCache)(nil)
