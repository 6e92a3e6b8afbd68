package terminology

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestShardedCache_Membership(t *testing.T) {
	cache := NewShardedCache(DefaultCacheConfig())

	key := MakeCodingKey("http://example.com/vs", "http://example.com", "test")

	// Get before set should return false
	if _, ok := cache.GetMembership(key); ok {
		t.Error("expected GetMembership to return false for non-existent key")
	}

	// Set and get
	cache.SetMembership(key, true)

	member, ok := cache.GetMembership(key)
	if !ok {
		t.Fatal("expected GetMembership to return true")
	}
	if !member {
		t.Error("expected cached answer to be true")
	}

	// Negative answers are cached too
	negKey := MakeStringKey("http://example.com/vs", "absent")
	cache.SetMembership(negKey, false)

	member, ok = cache.GetMembership(negKey)
	if !ok {
		t.Fatal("expected GetMembership to return true for negative answer")
	}
	if member {
		t.Error("expected cached answer to be false")
	}
}

func TestShardedCache_KeysDistinct(t *testing.T) {
	// Coding and string keys for overlapping input must not collide
	codingKey := MakeCodingKey("http://example.com/vs", "", "male")
	stringKey := MakeStringKey("http://example.com/vs", "male")
	if codingKey == stringKey {
		t.Error("expected coding and string keys to differ")
	}
}

func TestShardedCache_TTL(t *testing.T) {
	// Use very short TTL for testing
	cache := NewShardedCache(CacheConfig{
		ShardCount: 4,
		TTL:        50 * time.Millisecond,
	})

	key := MakeCodingKey("http://example.com/vs", "http://example.com", "test")
	cache.SetMembership(key, true)

	// Should be present immediately
	if _, ok := cache.GetMembership(key); !ok {
		t.Error("expected entry to be present immediately")
	}

	// Wait for TTL to expire
	time.Sleep(100 * time.Millisecond)

	// Should be expired now
	if _, ok := cache.GetMembership(key); ok {
		t.Error("expected entry to be expired")
	}
}

func TestShardedCache_Concurrent(t *testing.T) {
	cache := NewShardedCache(DefaultCacheConfig())

	const numGoroutines = 100
	const numOperations = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				key := MakeCodingKey("http://example.com/vs", "http://example.com", "code")

				// Mix reads and writes
				if j%2 == 0 {
					cache.SetMembership(key, true)
				} else {
					cache.GetMembership(key)
				}
			}
		}()
	}

	wg.Wait()

	stats := cache.Stats()
	t.Logf("Cache stats after concurrent access: memberships=%d, shards=%d",
		stats.Memberships, stats.Shards)
}

func TestShardedCache_Clear(t *testing.T) {
	cache := NewShardedCache(DefaultCacheConfig())

	// Add some entries
	for i := 0; i < 100; i++ {
		key := MakeCodingKey("http://example.com/vs", "http://example.com", "code")
		cache.SetMembership(key, true)
	}

	stats := cache.Stats()
	if stats.Memberships == 0 {
		t.Error("expected some memberships before clear")
	}

	// Clear
	cache.Clear()

	stats = cache.Stats()
	if stats.Memberships != 0 {
		t.Errorf("expected 0 memberships after clear, got %d", stats.Memberships)
	}
}

func TestShardedCache_Cleanup(t *testing.T) {
	cache := NewShardedCache(CacheConfig{
		ShardCount: 4,
		TTL:        50 * time.Millisecond,
	})

	// Add entries
	for i := 0; i < 10; i++ {
		key := MakeCodingKey("http://example.com/vs", "http://example.com", "code")
		cache.SetMembership(key, true)
	}

	// Wait for entries to expire
	time.Sleep(100 * time.Millisecond)

	// Cleanup
	cache.Cleanup()

	stats := cache.Stats()
	if stats.Memberships != 0 {
		t.Errorf("expected 0 memberships after cleanup, got %d", stats.Memberships)
	}
}

func TestCachedValueSetService(t *testing.T) {
	t.Run("answers come from the inner service", func(t *testing.T) {
		svc := NewCachedValueSetServiceWithDefaults()
		ctx := context.Background()

		url := "http://hl7.org/fhir/ValueSet/administrative-gender"
		system := "http://hl7.org/fhir/administrative-gender"

		ok, err := svc.ContainsCoding(ctx, url, system, "male")
		if err != nil {
			t.Fatalf("ContainsCoding() error = %v", err)
		}
		if !ok {
			t.Error("expected 'male' to be a member")
		}

		ok, err = svc.ContainsString(ctx, url, "Female")
		if err != nil {
			t.Fatalf("ContainsString() error = %v", err)
		}
		if !ok {
			t.Error("expected 'Female' to match a display")
		}
	})

	t.Run("repeated lookups are cached", func(t *testing.T) {
		svc := NewCachedValueSetServiceWithDefaults()
		ctx := context.Background()

		url := "http://hl7.org/fhir/ValueSet/administrative-gender"
		system := "http://hl7.org/fhir/administrative-gender"

		for i := 0; i < 3; i++ {
			if _, err := svc.ContainsCoding(ctx, url, system, "female"); err != nil {
				t.Fatalf("ContainsCoding() error = %v", err)
			}
		}

		stats := svc.CacheStats()
		if stats.Memberships != 1 {
			t.Errorf("Memberships = %d; want 1", stats.Memberships)
		}
	})

	t.Run("errors are not cached", func(t *testing.T) {
		svc := NewCachedValueSetServiceWithDefaults()
		ctx := context.Background()

		if _, err := svc.ContainsCoding(ctx, "http://unknown/ValueSet", "sys", "code"); err == nil {
			t.Fatal("expected error for unknown ValueSet")
		}

		stats := svc.CacheStats()
		if stats.Memberships != 0 {
			t.Errorf("Memberships = %d; want 0", stats.Memberships)
		}
	})

	t.Run("clear cache", func(t *testing.T) {
		svc := NewCachedValueSetServiceWithDefaults()
		ctx := context.Background()

		url := "http://hl7.org/fhir/ValueSet/administrative-gender"
		_, _ = svc.ContainsString(ctx, url, "male")

		svc.ClearCache()
		if stats := svc.CacheStats(); stats.Memberships != 0 {
			t.Errorf("Memberships after clear = %d; want 0", stats.Memberships)
		}
	})

	t.Run("inner service reachable for loading", func(t *testing.T) {
		svc := NewCachedValueSetServiceWithDefaults()
		ctx := context.Background()

		svc.Inner().AddCustomValueSet(
			"http://example.org/ValueSet/custom",
			"http://example.org/cs",
			map[string]string{"a": "A"},
		)

		ok, err := svc.ContainsCoding(ctx, "http://example.org/ValueSet/custom", "http://example.org/cs", "a")
		if err != nil {
			t.Fatalf("ContainsCoding() error = %v", err)
		}
		if !ok {
			t.Error("expected 'a' to be a member")
		}
	})
}

func BenchmarkShardedCache_SetGet(b *testing.B) {
	cache := NewShardedCache(DefaultCacheConfig())
	key := MakeCodingKey("http://example.com/vs", "http://example.com", "test")

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			cache.SetMembership(key, true)
			cache.GetMembership(key)
		}
	})
}

func BenchmarkShardedCache_ConcurrentGet(b *testing.B) {
	cache := NewShardedCache(DefaultCacheConfig())
	key := MakeCodingKey("http://example.com/vs", "http://example.com", "test")
	cache.SetMembership(key, true)

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			cache.GetMembership(key)
		}
	})
}
