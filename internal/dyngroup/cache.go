package dyngroup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store is the key/value contract the cache runs against. Redis, file and
// in-memory implementations are interchangeable; backend errors propagate
// unchanged and callers decide how to degrade.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Cache holds the category sets that saved product-stream rules resolve to.
// Per-stream entries expire by TTL only; the total-streams counter and the
// warmed flag share a shorter TTL and can be reset explicitly.
type Cache struct {
	store      Store
	shopKey    string
	streamTTL  time.Duration
	generalTTL time.Duration
}

// DefaultGeneralTTL is how long the total counter and the warmed flag stay
// valid. Matches the reference deployment.
const DefaultGeneralTTL = 11 * time.Minute

// DefaultStreamTTL is how long per-stream category sets stay valid.
const DefaultStreamTTL = 60 * time.Minute

// New creates a cache keyed by the merchant shop key. Zero TTLs fall back to
// the defaults.
func New(store Store, shopKey string, streamTTL, generalTTL time.Duration) *Cache {
	if streamTTL <= 0 {
		streamTTL = DefaultStreamTTL
	}
	if generalTTL <= 0 {
		generalTTL = DefaultGeneralTTL
	}
	return &Cache{
		store:      store,
		shopKey:    shopKey,
		streamTTL:  streamTTL,
		generalTTL: generalTTL,
	}
}

func (c *Cache) streamKey(streamID string) string {
	return fmt.Sprintf("dyngroup:%s:stream:%s", c.shopKey, streamID)
}

func (c *Cache) totalKey() string {
	return fmt.Sprintf("dyngroup:%s:total", c.shopKey)
}

func (c *Cache) warmedKey() string {
	return fmt.Sprintf("dyngroup:%s:warmed", c.shopKey)
}

// CategoriesForStream returns the cached category ids for one stream. A miss
// yields an empty set, not an error: dynamic categories are best-effort
// enrichment.
func (c *Cache) CategoriesForStream(ctx context.Context, streamID string) ([]string, error) {
	raw, hit, err := c.store.Get(ctx, c.streamKey(streamID))
	if err != nil {
		return nil, fmt.Errorf("failed to read stream cache: %w", err)
	}
	if !hit {
		return nil, nil
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("failed to decode stream cache entry: %w", err)
	}
	return ids, nil
}

// CategoriesForStreams unions the cached category sets of all given streams,
// deduplicated, in first-seen order.
func (c *Cache) CategoriesForStreams(ctx context.Context, streamIDs []string) ([]string, error) {
	seen := make(map[string]struct{})
	var union []string
	for _, streamID := range streamIDs {
		ids, err := c.CategoriesForStream(ctx, streamID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			union = append(union, id)
		}
	}
	return union, nil
}

// AppendStreamCategories merges new category ids into the cached set for a
// stream. Warm-up pages accumulate incrementally, so the existing entry is
// unioned rather than replaced.
func (c *Cache) AppendStreamCategories(ctx context.Context, streamID string, categoryIDs []string) error {
	existing, err := c.CategoriesForStream(ctx, streamID)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(existing))
	merged := existing
	for _, id := range existing {
		seen[id] = struct{}{}
	}
	for _, id := range categoryIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to encode stream cache entry: %w", err)
	}
	return c.store.Set(ctx, c.streamKey(streamID), raw, c.streamTTL)
}

// SetTotal caches the total number of product streams that carry categories.
func (c *Cache) SetTotal(ctx context.Context, total int) error {
	raw, err := json.Marshal(total)
	if err != nil {
		return fmt.Errorf("failed to encode stream total: %w", err)
	}
	return c.store.Set(ctx, c.totalKey(), raw, c.generalTTL)
}

// Total returns the cached stream total. The second return value reports
// whether a value was cached at all.
func (c *Cache) Total(ctx context.Context) (int, bool, error) {
	raw, hit, err := c.store.Get(ctx, c.totalKey())
	if err != nil {
		return 0, false, fmt.Errorf("failed to read stream total: %w", err)
	}
	if !hit {
		return 0, false, nil
	}

	var total int
	if err := json.Unmarshal(raw, &total); err != nil {
		return 0, false, fmt.Errorf("failed to decode stream total: %w", err)
	}
	return total, true, nil
}

// IsTotalCached reports whether the stream total is currently cached.
func (c *Cache) IsTotalCached(ctx context.Context) (bool, error) {
	_, hit, err := c.Total(ctx)
	return hit, err
}

// MarkWarmedUp sets the TTL'd flag that tells exporters the warm-up sweep
// reached its last page.
func (c *Cache) MarkWarmedUp(ctx context.Context) error {
	return c.store.Set(ctx, c.warmedKey(), []byte("1"), c.generalTTL)
}

// IsWarm reports whether a warm-up sweep completed within the general TTL.
func (c *Cache) IsWarm(ctx context.Context) (bool, error) {
	_, hit, err := c.store.Get(ctx, c.warmedKey())
	if err != nil {
		return false, fmt.Errorf("failed to read warmed flag: %w", err)
	}
	return hit, nil
}

// ClearGeneralCache removes only the total counter and the warmed flag.
// Per-stream entries keep their TTL, so forcing a total recompute does not
// discard already-warmed stream data.
func (c *Cache) ClearGeneralCache(ctx context.Context) error {
	return c.store.Delete(ctx, c.totalKey(), c.warmedKey())
}
