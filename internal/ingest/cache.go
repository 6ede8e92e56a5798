package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"

	"costlens/internal/dataset"
)

// CachedLoader memoizes successful decodes keyed on a content hash of
// the input bytes. Entries live for the process lifetime (no TTL, no
// eviction); the cache is a pure performance optimization for repeated
// uploads of the same file, never a correctness requirement. Concurrent
// identical loads are collapsed into one decode.
type CachedLoader struct {
	loader *Loader
	cache  *ttlcache.Cache[string, *dataset.Table]
	group  singleflight.Group
	logger *slog.Logger
}

// NewCachedLoader wraps a loader with the memoizing layer.
func NewCachedLoader(loader *Loader, logger *slog.Logger) *CachedLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedLoader{
		loader: loader,
		cache:  ttlcache.New[string, *dataset.Table](),
		logger: logger.With(slog.String("component", "ingest_cache")),
	}
}

// Load behaves like Loader.Load but returns the cached table for
// byte-identical input. Failed loads (including unsupported formats)
// are never cached.
func (c *CachedLoader) Load(data []byte, nameHint string) (*dataset.Table, error) {
	key := contentKey(data, nameHint)
	if item := c.cache.Get(key); item != nil {
		c.logger.Debug("load served from cache",
			slog.String("name_hint", nameHint),
			slog.String("key", key[:12]))
		return item.Value(), nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		t, err := c.loader.Load(data, nameHint)
		if err != nil {
			return t, err
		}
		c.cache.Set(key, t, ttlcache.NoTTL)
		return t, nil
	})
	if shared {
		c.logger.Debug("load deduplicated", slog.String("key", key[:12]))
	}
	return v.(*dataset.Table), err
}

// LoadFile delegates to the underlying Loader.LoadFile.
func (c *CachedLoader) LoadFile(path string) (*dataset.Table, error) {
	return c.loader.LoadFile(path)
}

// Len returns the number of memoized tables.
func (c *CachedLoader) Len() int {
	return c.cache.Len()
}

func contentKey(data []byte, nameHint string) string {
	h := sha256.New()
	h.Write(data)
	h.Write([]byte{0})
	h.Write([]byte(nameHint))
	return hex.EncodeToString(h.Sum(nil))
}
