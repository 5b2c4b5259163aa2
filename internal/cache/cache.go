// Package cache stores generated reports under a per-key TTL. It stands in
// for the hosted KV the service persists reports to; the interface keeps it
// swappable for a real backing store. Per-key reads and writes are atomic
// (last write wins), nothing spans keys.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/posinsight/posinsight/pkg/models"
)

// DefaultTTL is the report retention period.
const DefaultTTL = 7 * 24 * time.Hour

// sweepInterval is how often expired entries are evicted in the background.
const sweepInterval = time.Minute

// ErrNotFound is returned when a report is absent or has expired.
type ErrNotFound struct {
	Key string
}

func (e *ErrNotFound) Error() string {
	return "report not found: " + e.Key
}

// ReportCache is the report persistence contract.
type ReportCache interface {
	// Put stores a report under its ID for ttl. A ttl <= 0 uses DefaultTTL.
	Put(ctx context.Context, report *models.GeneratedReport, ttl time.Duration) error

	// Get returns the cached report or *ErrNotFound.
	Get(ctx context.Context, reportID string) (*models.GeneratedReport, error)

	// Close stops background eviction.
	Close() error
}

type entry struct {
	report    models.GeneratedReport
	expiresAt time.Time
}

// MemoryCache is a thread-safe in-memory ReportCache with lazy expiry on
// read plus a background sweep.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
	doneCh  chan struct{}
	once    sync.Once
}

// NewMemoryCache creates a cache and starts its eviction loop.
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
		doneCh:  make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

func cacheKey(reportID string) string {
	return "report:" + reportID
}

func (c *MemoryCache) Put(_ context.Context, report *models.GeneratedReport, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c.mu.Lock()
	c.entries[cacheKey(report.ID)] = entry{
		report:    *report,
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Get(_ context.Context, reportID string) (*models.GeneratedReport, error) {
	key := cacheKey(reportID)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, &ErrNotFound{Key: key}
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, &ErrNotFound{Key: key}
	}

	cp := e.report
	return &cp, nil
}

func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.doneCh) })
	return nil
}

func (c *MemoryCache) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.doneCh:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *MemoryCache) sweep() {
	now := c.now()
	c.mu.Lock()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}
