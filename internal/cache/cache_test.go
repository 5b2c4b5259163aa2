package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/posinsight/posinsight/pkg/models"
)

func newTestCache(at time.Time) (*MemoryCache, *time.Time) {
	clock := at
	c := &MemoryCache{
		entries: make(map[string]entry),
		now:     func() time.Time { return clock },
		doneCh:  make(chan struct{}),
	}
	return c, &clock
}

func testReport(id string) *models.GeneratedReport {
	return &models.GeneratedReport{
		ID:   id,
		Type: models.ReportDaily,
		Data: models.ReportData{Summary: "report body"},
	}
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	if err := c.Put(ctx, testReport("report-1"), 0); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	got, err := c.Get(ctx, "report-1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.ID != "report-1" || got.Data.Summary != "report body" {
		t.Errorf("Get() = %+v", got)
	}
}

func TestGet_Missing(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(time.Now())

	_, err := c.Get(ctx, "nope")
	var nf *ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("Get() error = %v, want *ErrNotFound", err)
	}
	if nf.Key != "report:nope" {
		t.Errorf("ErrNotFound.Key = %q, want report-prefixed key", nf.Key)
	}
}

func TestGet_ExpiresAfterDefaultTTL(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	c.Put(ctx, testReport("report-1"), 0)

	*clock = clock.Add(DefaultTTL - time.Second)
	if _, err := c.Get(ctx, "report-1"); err != nil {
		t.Fatalf("Get() just before expiry error: %v", err)
	}

	*clock = clock.Add(2 * time.Second)
	_, err := c.Get(ctx, "report-1")
	var nf *ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("Get() past expiry error = %v, want *ErrNotFound", err)
	}

	// Lazy expiry also removes the entry.
	c.mu.RLock()
	_, present := c.entries[cacheKey("report-1")]
	c.mu.RUnlock()
	if present {
		t.Error("expired entry should be deleted on read")
	}
}

func TestPut_CustomTTL(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	c.Put(ctx, testReport("report-1"), time.Hour)

	*clock = clock.Add(61 * time.Minute)
	if _, err := c.Get(ctx, "report-1"); err == nil {
		t.Error("Get() should miss after the custom TTL")
	}
}

func TestPut_Overwrites(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	c.Put(ctx, testReport("report-1"), 0)
	updated := testReport("report-1")
	updated.Data.Summary = "second version"
	c.Put(ctx, updated, 0)

	got, err := c.Get(ctx, "report-1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Data.Summary != "second version" {
		t.Errorf("Data.Summary = %q, want last write", got.Data.Summary)
	}
}

func TestSweep_RemovesExpired(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	c.Put(ctx, testReport("stale"), time.Minute)
	c.Put(ctx, testReport("fresh"), time.Hour)

	*clock = clock.Add(2 * time.Minute)
	c.sweep()

	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.entries[cacheKey("stale")]; ok {
		t.Error("sweep left an expired entry")
	}
	if _, ok := c.entries[cacheKey("fresh")]; !ok {
		t.Error("sweep removed a live entry")
	}
}

func TestClose_Idempotent(t *testing.T) {
	c := NewMemoryCache()
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
}
