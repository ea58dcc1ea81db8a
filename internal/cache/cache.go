// Package cache stores provider results on disk so repeated runs skip external calls.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	// ErrCacheMiss is returned when an entry is not found in the cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrVersionMismatch is returned when the cached version doesn't match.
	ErrVersionMismatch = errors.New("version mismatch")
)

// CacheConfig contains configuration for the cache.
type CacheConfig struct {
	// BaseDir is the base directory for cache storage.
	BaseDir string

	// Version is the current entry format version.
	Version int
}

// CacheStats contains cache statistics.
type CacheStats struct {
	EntryCount int64
	TotalSize  int64
}

// HashContent returns a prefixed SHA-256 digest of the given parts.
func HashContent(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil))
}

// ensureDir creates a directory if it doesn't exist.
func ensureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// hashToPath converts a content hash to a cache file path with fan-out.
// Uses 2-level directory fan-out: xx/yy/full_hash
func hashToPath(baseDir, hash, suffix string) string {
	// Remove algorithm prefix if present (e.g., "sha256:")
	cleanHash := hash
	if idx := strings.Index(hash, ":"); idx != -1 {
		cleanHash = hash[idx+1:]
	}

	if len(cleanHash) < 4 {
		return filepath.Join(baseDir, cleanHash+suffix)
	}

	return filepath.Join(baseDir, cleanHash[:2], cleanHash[2:4], cleanHash+suffix)
}

// segment makes a provider, model or language name safe to use as a directory.
func segment(name string) string {
	if name == "" {
		return "default"
	}
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_", "..", "_")
	return strings.ToLower(r.Replace(name))
}

// jsonStore keeps versioned JSON entries under a directory.
type jsonStore struct {
	dir     string
	version int
	mu      sync.RWMutex
}

func newJSONStore(dir string, version int) (*jsonStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create cache directory; %w", err)
	}
	return &jsonStore{dir: dir, version: version}, nil
}

func (s *jsonStore) path(hash string) string {
	return hashToPath(s.dir, hash, fmt.Sprintf("-v%d.json", s.version))
}

func (s *jsonStore) get(hash string, v any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to read cache file; %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal cache data; %w", err)
	}
	return nil
}

func (s *jsonStore) set(hash string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(hash)
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create cache directory; %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry; %w", err)
	}

	// Write then rename so readers never see a partial file
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file; %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to commit cache file; %w", err)
	}
	return nil
}

func (s *jsonStore) has(hash string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.path(hash))
	return err == nil
}

func (s *jsonStore) delete(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(hash)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file; %w", err)
	}
	return nil
}

func (s *jsonStore) clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to clear cache; %w", err)
	}
	return ensureDir(s.dir)
}

func (s *jsonStore) stats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := CacheStats{}
	_ = filepath.Walk(s.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			stats.EntryCount++
			stats.TotalSize += info.Size()
		}
		return nil
	})
	return stats
}
