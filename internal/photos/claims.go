package photos

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/greencampus/facility-reports/storage"
)

const (
	claimTTL        = 15 * time.Minute
	claimPruneAbove = 4096
)

// claim records which batches touched a content key recently
type claim struct {
	last   uint64
	shared bool
	at     time.Time
}

// claimTable lets a failed batch delete only the objects no other batch
// has looked at. Keys are content addressed, so a concurrent submission
// of the same photo reuses the object instead of writing its own.
// Claims live in process memory; replicas sharing one bucket can still
// race on the same key.
type claimTable struct {
	mu     sync.Mutex
	claims map[string]*claim
	seq    atomic.Uint64
}

func newClaimTable() *claimTable {
	return &claimTable{claims: make(map[string]*claim)}
}

func (t *claimTable) newBatch() uint64 {
	return t.seq.Add(1)
}

// touch must run before the existence check for key
func (t *claimTable) touch(key string, batch uint64, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.claims) > claimPruneAbove {
		t.pruneLocked(now)
	}
	c, ok := t.claims[key]
	if !ok {
		t.claims[key] = &claim{last: batch, at: now}
		return
	}
	if c.last != batch {
		c.shared = true
	}
	c.last = batch
	c.at = now
}

func (t *claimTable) pruneLocked(now time.Time) {
	for key, c := range t.claims {
		if now.Sub(c.at) > claimTTL {
			delete(t.claims, key)
		}
	}
}

// release deletes keys that only their own batch touched. Keys whose
// claim has expired are kept.
func (t *claimTable) release(ctx context.Context, provider storage.Provider, keys []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, key := range keys {
		c, ok := t.claims[key]
		if !ok {
			continue
		}
		if c.shared {
			log.Printf("[Photos] Keeping %s: reused by another submission", key)
			continue
		}
		if err := provider.DeleteWithContext(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Printf("[Photos] Failed to delete orphaned photo %s: %v", key, err)
			continue
		}
		delete(t.claims, key)
	}
}
