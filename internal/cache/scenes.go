package cache

import (
	"path/filepath"
	"time"

	"github.com/leefowlercu/novel-narrator/internal/metrics"
)

// SceneCacheVersion is the current scene response entry format.
const SceneCacheVersion = 1

// SceneEntry is a cached raw segmentation response.
type SceneEntry struct {
	Content      string    `json:"content"`
	ProviderName string    `json:"provider_name"`
	ModelName    string    `json:"model_name"`
	CachedAt     time.Time `json:"cached_at"`
	Version      int       `json:"version"`
}

// SceneCache caches segmentation responses keyed by the rendered prompt.
type SceneCache struct {
	store *jsonStore
}

// NewSceneCache creates a scene cache under <BaseDir>/scenes/<provider>/<model>.
func NewSceneCache(config CacheConfig, provider, model string) (*SceneCache, error) {
	if config.Version == 0 {
		config.Version = SceneCacheVersion
	}

	dir := filepath.Join(config.BaseDir, "scenes", segment(provider), segment(model))
	store, err := newJSONStore(dir, config.Version)
	if err != nil {
		return nil, err
	}
	return &SceneCache{store: store}, nil
}

// Get returns the cached response for prompt.
func (c *SceneCache) Get(prompt string) (*SceneEntry, error) {
	var entry SceneEntry
	if err := c.store.get(HashContent(prompt), &entry); err != nil {
		metrics.RecordCacheAccess("scenes", false)
		return nil, err
	}
	if entry.Version != c.store.version {
		metrics.RecordCacheAccess("scenes", false)
		return nil, ErrVersionMismatch
	}

	metrics.RecordCacheAccess("scenes", true)
	return &entry, nil
}

// Set stores the response for prompt.
func (c *SceneCache) Set(prompt string, entry *SceneEntry) error {
	stored := *entry
	stored.Version = c.store.version
	if stored.CachedAt.IsZero() {
		stored.CachedAt = time.Now()
	}
	return c.store.set(HashContent(prompt), &stored)
}

// Clear removes all cached responses for this provider and model.
func (c *SceneCache) Clear() error {
	return c.store.clear()
}

// Stats returns cache statistics.
func (c *SceneCache) Stats() CacheStats {
	return c.store.stats()
}
