// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/vechain/oraclenet/metrics"
)

var metricCacheHitMiss = metrics.LazyLoadCounterVec("cache_hit_miss_count", []string{"type", "event"})

// LRU is a typed, size bounded cache on top of golang-lru.
// Lookups are counted and reported under the cache name.
type LRU[K comparable, V any] struct {
	name  string
	cache *lru.Cache
	stats Stats
}

// NewLRU creates a LRU cache instance.
// maxSize should be > 0, or an error returned.
func NewLRU[K comparable, V any](name string, maxSize int) (*LRU[K, V], error) {
	c, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{name: name, cache: c}, nil
}

// Get returns the cached value of key.
func (l *LRU[K, V]) Get(key K) (V, bool) {
	if v, ok := l.cache.Get(key); ok {
		l.hit()
		return v.(V), true
	}
	l.miss()
	var zero V
	return zero, false
}

// Add puts a value into the cache, evicting the oldest entry when full.
func (l *LRU[K, V]) Add(key K, value V) {
	l.cache.Add(key, value)
}

// Remove drops key from the cache.
func (l *LRU[K, V]) Remove(key K) {
	l.cache.Remove(key)
}

// Len returns the number of cached entries.
func (l *LRU[K, V]) Len() int {
	return l.cache.Len()
}

// Purge clears the cache.
func (l *LRU[K, V]) Purge() {
	l.cache.Purge()
}

// Loader defines loader to load value.
type Loader[K comparable, V any] func(key K) (V, error)

// GetOrLoad first try to get from cache, do load if missed.
// Failed loads are not cached.
func (l *LRU[K, V]) GetOrLoad(key K, loader Loader[K, V]) (V, error) {
	if v, ok := l.Get(key); ok {
		return v, nil
	}
	v, err := loader(key)
	if err != nil {
		return v, err
	}
	l.cache.Add(key, v)
	return v, nil
}

// Stats returns hit and miss counts.
func (l *LRU[K, V]) Stats() (hit, miss int64) {
	return l.stats.Counts()
}

// HitRate returns the share of lookups served by the cache.
func (l *LRU[K, V]) HitRate() float64 {
	return l.stats.HitRate()
}

func (l *LRU[K, V]) hit() {
	l.stats.Hit()
	metricCacheHitMiss().AddWithLabel(1, map[string]string{"type": l.name, "event": "hit"})
}

func (l *LRU[K, V]) miss() {
	l.stats.Miss()
	metricCacheHitMiss().AddWithLabel(1, map[string]string{"type": l.name, "event": "miss"})
}
