package retention

import (
	"context"
	"testing"
	"time"

	"github.com/posinsight/posinsight/internal/sessions"
	"github.com/posinsight/posinsight/pkg/models"
)

type recordingStore struct {
	cutoffs []time.Time
	purged  int
}

func (r *recordingStore) PurgeIdle(cutoff time.Time) int {
	r.cutoffs = append(r.cutoffs, cutoff)
	return r.purged
}

func TestRunCycle_CutoffFromIdleTTL(t *testing.T) {
	store := &recordingStore{purged: 2}
	j := NewJanitor(store, 24*time.Hour, time.Hour)
	at := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return at }

	j.runCycle()

	if len(store.cutoffs) != 1 {
		t.Fatalf("PurgeIdle called %d times, want 1", len(store.cutoffs))
	}
	want := at.Add(-24 * time.Hour)
	if !store.cutoffs[0].Equal(want) {
		t.Errorf("cutoff = %v, want %v", store.cutoffs[0], want)
	}
}

func TestNewJanitor_MinimumInterval(t *testing.T) {
	j := NewJanitor(&recordingStore{}, time.Hour, time.Second)
	if j.interval != time.Hour {
		t.Errorf("interval = %v, want raised to an hour", j.interval)
	}
}

func TestStart_DisabledWithoutTTL(t *testing.T) {
	store := &recordingStore{}
	j := NewJanitor(store, 0, time.Hour)

	// Returns immediately; a disabled janitor must never purge.
	j.Start(context.Background())
	if len(store.cutoffs) != 0 {
		t.Errorf("disabled janitor ran %d cycles", len(store.cutoffs))
	}
}

func TestStart_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	j := NewJanitor(&recordingStore{}, time.Hour, time.Hour)

	done := make(chan struct{})
	go func() {
		j.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop on context cancellation")
	}
}

func TestPurgeIdle_AgainstMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := sessions.NewMemoryStore()

	store.Init(ctx, "active", "")
	store.Init(ctx, "stale", "")
	store.AddMessage(ctx, "stale", models.RoleUser, "old message")

	// Everything is recent, so a far-past cutoff purges nothing.
	if purged := store.PurgeIdle(time.Now().Add(-time.Hour)); purged != 0 {
		t.Errorf("purged %d sessions, want 0", purged)
	}

	// A future cutoff treats both sessions as idle.
	if purged := store.PurgeIdle(time.Now().Add(time.Hour)); purged != 2 {
		t.Errorf("purged %d sessions, want 2", purged)
	}
	if store.Exists(ctx, "stale") || store.Exists(ctx, "active") {
		t.Error("purged sessions should no longer exist")
	}
}
