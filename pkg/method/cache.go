package method

import (
	"context"
	"sync"
	"time"
)

const keyPrefix = "method-config-"

// Fetcher abstrai a fonte remota (permite Mocking nos testes).
type Fetcher interface {
	Fetch(ctx context.Context, platform, operation string) (*Config, error)
}

type cacheEntry struct {
	cfg       *Config
	fetchedAt time.Time
}

// Cache memoiza os templates por (platform, operação) com TTL, evitando um
// GET remoto a cada chamada. Falha de fetch propaga direto ao caller.
type Cache struct {
	source Fetcher
	ttl    time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry

	now func() time.Time // injetável nos testes
}

func NewCache(source Fetcher, ttl time.Duration) *Cache {
	return &Cache{
		source:  source,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get devolve o template cacheado se ainda válido; senão busca, armazena e devolve.
func (c *Cache) Get(ctx context.Context, platform, operation string) (*Config, error) {
	key := keyPrefix + platform + "-" + operation

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		return entry.cfg, nil
	}

	cfg, err := c.source.Fetch(ctx, platform, operation)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{cfg: cfg, fetchedAt: c.now()}
	c.mu.Unlock()

	return cfg, nil
}

// Flush descarta todos os templates memoizados (usado pelo hot reload via SQS).
func (c *Cache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}
