package cache

import (
	"path/filepath"
	"time"

	"github.com/leefowlercu/novel-narrator/internal/metrics"
)

// TranslationCacheVersion is the current translation entry format.
const TranslationCacheVersion = 1

// TranslationEntry is a cached chunk translation.
type TranslationEntry struct {
	Text           string    `json:"text"`
	TargetLanguage string    `json:"target_language"`
	ProviderName   string    `json:"provider_name"`
	ModelName      string    `json:"model_name"`
	Truncated      bool      `json:"truncated"`
	CachedAt       time.Time `json:"cached_at"`
	Version        int       `json:"version"`
}

// TranslationCache caches translations per provider, model and target language.
type TranslationCache struct {
	store    *jsonStore
	provider string
	model    string
	language string
}

// NewTranslationCache creates a translation cache under
// <BaseDir>/translations/<provider>/<model>/<language>.
func NewTranslationCache(config CacheConfig, provider, model, language string) (*TranslationCache, error) {
	if config.Version == 0 {
		config.Version = TranslationCacheVersion
	}

	dir := filepath.Join(config.BaseDir, "translations", segment(provider), segment(model), segment(language))
	store, err := newJSONStore(dir, config.Version)
	if err != nil {
		return nil, err
	}

	return &TranslationCache{
		store:    store,
		provider: provider,
		model:    model,
		language: language,
	}, nil
}

// Get returns the cached translation of source.
func (c *TranslationCache) Get(source string) (*TranslationEntry, error) {
	var entry TranslationEntry
	if err := c.store.get(HashContent(source), &entry); err != nil {
		metrics.RecordCacheAccess("translation", false)
		return nil, err
	}

	if entry.Version != c.store.version {
		metrics.RecordCacheAccess("translation", false)
		return nil, ErrVersionMismatch
	}

	metrics.RecordCacheAccess("translation", true)
	return &entry, nil
}

// Set stores the translation of source.
func (c *TranslationCache) Set(source string, entry *TranslationEntry) error {
	stored := *entry
	stored.Version = c.store.version
	if stored.CachedAt.IsZero() {
		stored.CachedAt = time.Now()
	}
	return c.store.set(HashContent(source), &stored)
}

// Has checks if a translation of source is cached.
func (c *TranslationCache) Has(source string) bool {
	return c.store.has(HashContent(source))
}

// Delete removes the cached translation of source.
func (c *TranslationCache) Delete(source string) error {
	return c.store.delete(HashContent(source))
}

// Clear removes all cached translations for this provider, model and language.
func (c *TranslationCache) Clear() error {
	return c.store.clear()
}

// Stats returns cache statistics.
func (c *TranslationCache) Stats() CacheStats {
	return c.store.stats()
}

// Dir returns the directory holding this cache's entries.
func (c *TranslationCache) Dir() string {
	return c.store.dir
}
