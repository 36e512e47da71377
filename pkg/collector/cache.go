package collector

import (
	"sync"
	"time"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
)

// SnapshotCache caches the latest telemetry snapshot with a TTL and
// notifies subscribers on refresh. It is constructed once at process
// scope and passed by reference; there is no package-level instance.
type SnapshotCache struct {
	mu          sync.RWMutex
	snapshot    *models.Snapshot
	storedAt    time.Time
	ttl         time.Duration
	subscribers []func(*models.Snapshot)
}

func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{ttl: ttl}
}

// Get returns the cached snapshot, or nil when empty or expired
func (c *SnapshotCache) Get() *models.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.snapshot == nil || time.Since(c.storedAt) > c.ttl {
		return nil
	}
	return c.snapshot
}

// Set stores a fresh snapshot and notifies subscribers. Callbacks run
// synchronously on the caller's goroutine and must not call back into
// the cache.
func (c *SnapshotCache) Set(snap *models.Snapshot) {
	c.mu.Lock()
	c.snapshot = snap
	c.storedAt = time.Now()
	subscribers := make([]func(*models.Snapshot), len(c.subscribers))
	copy(subscribers, c.subscribers)
	c.mu.Unlock()

	for _, notify := range subscribers {
		notify(snap)
	}
}

// Subscribe registers a callback invoked on every cache refresh
func (c *SnapshotCache) Subscribe(fn func(*models.Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// Clear drops the cached snapshot
func (c *SnapshotCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = nil
}
