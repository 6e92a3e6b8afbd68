package terminology

import (
	"context"

	"github.com/reason-healthcare/qrvalidator/service"
)

// CachedValueSetService wraps an InMemoryValueSetService with caching.
// It uses a ShardedCache to cache membership answers.
type CachedValueSetService struct {
	inner *InMemoryValueSetService
	cache *ShardedCache
}

// NewCachedValueSetService creates a new cached value set service.
func NewCachedValueSetService(config CacheConfig) *CachedValueSetService {
	return &CachedValueSetService{
		inner: NewInMemoryValueSetService(),
		cache: NewShardedCache(config),
	}
}

// NewCachedValueSetServiceWithDefaults creates a cached value set service
// with default configuration.
func NewCachedValueSetServiceWithDefaults() *CachedValueSetService {
	return NewCachedValueSetService(DefaultCacheConfig())
}

// Inner returns the underlying InMemoryValueSetService for loading data.
func (s *CachedValueSetService) Inner() *InMemoryValueSetService {
	return s.inner
}

// Cache returns the underlying cache for inspection or manual operations.
func (s *CachedValueSetService) Cache() *ShardedCache {
	return s.cache
}

// ContainsCoding implements service.ValueSetOracle with caching.
func (s *CachedValueSetService) ContainsCoding(ctx context.Context, valueSetURL, system, code string) (bool, error) {
	// Check cache first
	key := MakeCodingKey(valueSetURL, system, code)
	if member, ok := s.cache.GetMembership(key); ok {
		return member, nil
	}

	// Cache miss - delegate to inner service
	member, err := s.inner.ContainsCoding(ctx, valueSetURL, system, code)
	if err != nil {
		return false, err
	}

	// Cache the answer
	s.cache.SetMembership(key, member)
	return member, nil
}

// ContainsString implements service.ValueSetOracle with caching.
func (s *CachedValueSetService) ContainsString(ctx context.Context, valueSetURL, value string) (bool, error) {
	// Check cache first
	key := MakeStringKey(valueSetURL, value)
	if member, ok := s.cache.GetMembership(key); ok {
		return member, nil
	}

	// Cache miss - delegate to inner service
	member, err := s.inner.ContainsString(ctx, valueSetURL, value)
	if err != nil {
		return false, err
	}

	// Cache the answer
	s.cache.SetMembership(key, member)
	return member, nil
}

// ClearCache clears all cached entries.
func (s *CachedValueSetService) ClearCache() {
	s.cache.Clear()
}

// CacheStats returns cache statistics.
func (s *CachedValueSetService) CacheStats() CacheStats {
	return s.cache.Stats()
}

// Verify interface compliance
var _ service.ValueSetOracle = (*CachedValueSetService)(nil)
