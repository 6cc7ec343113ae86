package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	DefaultTTL      = 4 * time.Hour
	cleanupInterval = 6 * time.Hour
)

// Cache keeps finished search results between runs, persisted as GOB.
type Cache struct {
	inner *gocache.Cache
	ttl   time.Duration
}

// New creates an empty cache whose entries live for ttl.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{inner: gocache.New(ttl, cleanupInterval), ttl: ttl}
}

// LoadFromFile loads a cache from a GOB file. A missing or unreadable
// file yields a fresh cache; only I/O errors other than not-exist are returned.
func LoadFromFile(filename string, ttl time.Duration, logger *zap.Logger) (*Cache, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return New(ttl), nil
		}
		return nil, fmt.Errorf("reading cache file: %w", err)
	}
	items := map[string]gocache.Item{}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&items); err != nil {
		if logger != nil {
			logger.Warn("Cache decode error, starting fresh", zap.String("file", filename), zap.Error(err))
		}
		return New(ttl), nil
	}
	c := New(ttl)
	c.inner = gocache.NewFrom(c.ttl, cleanupInterval, items)
	return c, nil
}

// SaveToFile writes the unexpired entries to a GOB file.
func (c *Cache) SaveToFile(filename string) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c.inner.Items()); err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	return os.WriteFile(filename, buf.Bytes(), 0600)
}

// SearchKey is the cache key for one collection query.
func SearchKey(keyword string, minStars, maxResults int) string {
	return fmt.Sprintf("search:%s:%d:%d", keyword, minStars, maxResults)
}

func (c *Cache) Get(key string) (any, bool) {
	return c.inner.Get(key)
}

func (c *Cache) Set(key string, val any) {
	c.inner.Set(key, val, gocache.DefaultExpiration)
}

// Len returns the number of entries, expired ones included until cleanup.
func (c *Cache) Len() int {
	return c.inner.ItemCount()
}

func (c *Cache) Flush() {
	c.inner.Flush()
}
