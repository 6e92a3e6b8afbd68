package terminology

import (
	"hash/fnv"
	"sync"
	"time"
)

const (
	// DefaultShardCount is the default number of cache shards.
	// Use a power of 2 for efficient modulo operation.
	DefaultShardCount = 64

	// DefaultCacheTTL is the default time-to-live for cache entries.
	DefaultCacheTTL = 15 * time.Minute
)

// ShardedCache provides a thread-safe, sharded cache for membership lookups.
// It uses multiple shards to reduce lock contention in concurrent scenarios.
type ShardedCache struct {
	shards    []*cacheShard
	shardMask uint32
	ttl       time.Duration
}

// cacheShard represents a single shard of the cache.
type cacheShard struct {
	mu          sync.RWMutex
	memberships map[string]*cachedMembership
}

// cachedMembership holds a cached membership answer with expiration.
type cachedMembership struct {
	member    bool
	expiresAt time.Time
}

// CacheConfig holds configuration options for the cache.
type CacheConfig struct {
	// ShardCount is the number of shards. Must be a power of 2.
	ShardCount int

	// TTL is the time-to-live for cache entries.
	TTL time.Duration
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		ShardCount: DefaultShardCount,
		TTL:        DefaultCacheTTL,
	}
}

// NewShardedCache creates a new sharded cache with the given configuration.
func NewShardedCache(config CacheConfig) *ShardedCache {
	// Ensure shard count is a power of 2
	shardCount := config.ShardCount
	if shardCount <= 0 {
		shardCount = DefaultShardCount
	}
	// Round up to nearest power of 2
	shardCount = nextPowerOf2(shardCount)

	ttl := config.TTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	shards := make([]*cacheShard, shardCount)
	for i := range shards {
		shards[i] = &cacheShard{
			memberships: make(map[string]*cachedMembership),
		}
	}

	return &ShardedCache{
		shards:    shards,
		shardMask: uint32(shardCount - 1),
		ttl:       ttl,
	}
}

// getShard returns the shard for the given key.
func (c *ShardedCache) getShard(key string) *cacheShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return c.shards[h.Sum32()&c.shardMask]
}

// GetMembership retrieves a cached membership answer.
func (c *ShardedCache) GetMembership(key string) (member, ok bool) {
	shard := c.getShard(key)
	shard.mu.RLock()
	cached, ok := shard.memberships[key]
	shard.mu.RUnlock()

	if !ok {
		return false, false
	}

	// Check expiration
	if time.Now().After(cached.expiresAt) {
		// Expired - remove asynchronously
		go func() {
			shard.mu.Lock()
			delete(shard.memberships, key)
			shard.mu.Unlock()
		}()
		return false, false
	}

	return cached.member, true
}

// SetMembership stores a membership answer in the cache.
func (c *ShardedCache) SetMembership(key string, member bool) {
	shard := c.getShard(key)
	shard.mu.Lock()
	shard.memberships[key] = &cachedMembership{
		member:    member,
		expiresAt: time.Now().Add(c.ttl),
	}
	shard.mu.Unlock()
}

// Clear removes all entries from the cache.
func (c *ShardedCache) Clear() {
	for _, shard := range c.shards {
		shard.mu.Lock()
		shard.memberships = make(map[string]*cachedMembership)
		shard.mu.Unlock()
	}
}

// Cleanup removes expired entries from the cache.
func (c *ShardedCache) Cleanup() {
	now := time.Now()
	for _, shard := range c.shards {
		shard.mu.Lock()
		for key, cached := range shard.memberships {
			if now.After(cached.expiresAt) {
				delete(shard.memberships, key)
			}
		}
		shard.mu.Unlock()
	}
}

// CacheStats holds cache statistics.
type CacheStats struct {
	Memberships int
	Shards      int
}

// Stats returns current cache statistics.
func (c *ShardedCache) Stats() CacheStats {
	var memberships int
	for _, shard := range c.shards {
		shard.mu.RLock()
		memberships += len(shard.memberships)
		shard.mu.RUnlock()
	}
	return CacheStats{
		Memberships: memberships,
		Shards:      len(c.shards),
	}
}

// MakeCodingKey creates a cache key for a coding membership lookup.
func MakeCodingKey(valueSetURL, system, code string) string {
	// Use a separator that won't appear in URLs or codes
	return "c\x00" + valueSetURL + "\x00" + system + "\x00" + code
}

// MakeStringKey creates a cache key for a string membership lookup.
func MakeStringKey(valueSetURL, value string) string {
	return "s\x00" + valueSetURL + "\x00" + value
}

// nextPowerOf2 returns the smallest power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	return n + 1
}
