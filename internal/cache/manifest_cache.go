package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"dashseek/internal/logger"
	"dashseek/internal/manifest"
	"dashseek/internal/metrics"

	lru "github.com/hashicorp/golang-lru/v2"
)

type entry struct {
	tree  *manifest.Tree
	added time.Time
}

// ManifestCache keeps parsed manifests keyed by a hash of their text, so
// repeated resolutions against one document parse it once. It is bounded
// in size (least recently used entries go first) and in age.
type ManifestCache struct {
	entries  *lru.Cache[string, entry]
	ttl      time.Duration
	interval time.Duration
	logger   logger.Logger
	now      func() time.Time

	// Control
	ctx     context.Context
	cancel  context.CancelFunc
	started sync.Once
	wg      sync.WaitGroup
}

// New creates and returns a new ManifestCache holding at most size manifests,
// each for at most ttl. A zero ttl disables age-based eviction.
func New(log logger.Logger, size int, ttl time.Duration) (*ManifestCache, error) {
	entries, err := lru.NewWithEvict[string, entry](size, func(string, entry) {
		metrics.ManifestCacheEvictions.Inc()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create manifest cache: %w", err)
	}

	interval := ttl / 2
	if interval <= 0 || interval > 10*time.Second {
		interval = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &ManifestCache{
		entries:  entries,
		ttl:      ttl,
		interval: interval,
		logger:   log,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Key returns the cache key of a manifest document.
func Key(document string) string {
	sum := sha256.Sum256([]byte(document))
	return hex.EncodeToString(sum[:])
}

// Start begins the background eviction worker.
func (mc *ManifestCache) Start() {
	if mc.ttl <= 0 {
		return
	}
	mc.started.Do(func() {
		mc.logger.Infof("Starting manifest cache eviction worker (ttl %s)...", mc.ttl)
		mc.wg.Add(1)
		go mc.evictionWorker()
	})
}

// Stop gracefully shuts down the eviction worker.
func (mc *ManifestCache) Stop() {
	mc.cancel()
	mc.wg.Wait()
}

// Get returns the parsed manifest for document if it is cached and fresh.
func (mc *ManifestCache) Get(document string) (*manifest.Tree, bool) {
	key := Key(document)
	e, found := mc.entries.Get(key)
	if found && mc.expired(e) {
		mc.entries.Remove(key)
		found = false
	}
	if !found {
		metrics.ManifestCacheMisses.Inc()
		return nil, false
	}
	metrics.ManifestCacheHits.Inc()
	return e.tree, true
}

// Set adds a parsed manifest to the cache.
func (mc *ManifestCache) Set(document string, tree *manifest.Tree) {
	key := Key(document)
	mc.entries.Add(key, entry{tree: tree, added: mc.now()})
	metrics.ManifestCacheEntries.Set(float64(mc.entries.Len()))
	mc.logger.Debugf("Cached manifest: %s, %d elements", key[:12], tree.Len())
}

// Parse returns the cached tree for document, parsing and caching it on a
// miss. Parse errors are not cached.
func (mc *ManifestCache) Parse(document string) (*manifest.Tree, error) {
	if tree, ok := mc.Get(document); ok {
		return tree, nil
	}
	tree, err := manifest.Parse(document)
	if err != nil {
		return nil, err
	}
	mc.Set(document, tree)
	return tree, nil
}

// Len returns the number of cached manifests, expired ones included until
// the next eviction pass.
func (mc *ManifestCache) Len() int {
	return mc.entries.Len()
}

func (mc *ManifestCache) expired(e entry) bool {
	return mc.ttl > 0 && mc.now().Sub(e.added) >= mc.ttl
}

// evictionWorker runs in the background to clean up expired manifests.
func (mc *ManifestCache) evictionWorker() {
	defer mc.wg.Done()
	ticker := time.NewTicker(mc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-mc.ctx.Done():
			mc.logger.Infof("Eviction worker stopped.")
			return
		case <-ticker.C:
			mc.EvictExpired()
		}
	}
}

// EvictExpired removes every manifest older than the ttl and returns how
// many were removed.
func (mc *ManifestCache) EvictExpired() int {
	mc.logger.Debugf("Running manifest cache eviction...")

	evictedCount := 0
	for _, key := range mc.entries.Keys() {
		e, ok := mc.entries.Peek(key)
		if ok && mc.expired(e) {
			mc.entries.Remove(key)
			evictedCount++
		}
	}

	metrics.ManifestCacheEntries.Set(float64(mc.entries.Len()))
	if evictedCount > 0 {
		mc.logger.Infof("Evicted %d manifests from cache. Current cache size: %d manifests.", evictedCount, mc.entries.Len())
	} else {
		mc.logger.Debugf("No manifests to evict. Current cache size: %d manifests.", mc.entries.Len())
	}
	return evictedCount
}
