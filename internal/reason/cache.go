package reason

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v4"
	lru "github.com/hashicorp/golang-lru/v2"
)

const memCacheSize = 256

// Cache wraps a Service with a two-tier response cache: an in-memory LRU
// in front of a persistent badger store, keyed by model and prompt.
//
// A cached response is only reused on the first attempt of a unit of
// work; retries always reach the underlying service so a bad cached
// response cannot wedge a run. Successful completions are stored on
// every attempt.
type Cache struct {
	inner   Service
	model   string
	enabled bool
	mem     *lru.Cache[string, string]
	db      *badger.DB
	logger  *log.Logger
}

// NewCache builds the cache tier over inner. dir is the badger directory;
// if the store cannot be opened the cache degrades to memory-only with a
// warning rather than failing the run. When enabled is false the wrapper
// passes every call straight through.
func NewCache(inner Service, model, dir string, enabled bool, logger *log.Logger) *Cache {
	c := &Cache{inner: inner, model: model, enabled: enabled, logger: logger}
	if !enabled {
		return c
	}

	// Never fails for sizes > 0.
	c.mem, _ = lru.New[string, string](memCacheSize)

	opts := badger.DefaultOptions(dir).
		WithNumCompactors(2).
		WithNumMemtables(5).
		WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	if err != nil {
		logger.Warn("response cache unavailable, continuing uncached", "dir", dir, "error", err)
	} else {
		c.db = db
	}
	return c
}

// Complete returns a cached response when permitted, otherwise calls the
// underlying service and stores the result.
func (c *Cache) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.enabled {
		return c.inner.Complete(ctx, prompt)
	}

	key := c.key(prompt)
	if Attempt(ctx) == 1 {
		if text, ok := c.lookup(key); ok {
			c.logger.Debug("response cache hit", "key", key[:12])
			return text, nil
		}
	}

	text, err := c.inner.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	c.store(key, text)
	return text, nil
}

// Close releases the persistent store.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

func (c *Cache) key(prompt string) string {
	h := sha256.New()
	h.Write([]byte(c.model))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) lookup(key string) (string, bool) {
	if text, ok := c.mem.Get(key); ok {
		return text, true
	}
	if c.db == nil {
		return "", false
	}

	var text string
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			text = string(val)
			return nil
		})
	})
	if err != nil {
		return "", false
	}

	c.mem.Add(key, text)
	return text, true
}

func (c *Cache) store(key, text string) {
	c.mem.Add(key, text)
	if c.db == nil {
		return
	}
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(text))
	})
	if err != nil {
		c.logger.Debug("response cache write failed", "error", err)
	}
}
