package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	createdAt time.Time
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryBackend is a process-local Backend. Expired entries are dropped
// lazily on read and whenever the key set is enumerated.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	// now is swapped in tests to control expiry.
	now func() time.Time
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements Backend.
func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	entry, ok := b.entries[key]
	b.mu.RUnlock()

	if !ok {
		return nil, ErrMiss
	}
	if entry.expired(b.now()) {
		b.mu.Lock()
		// Re-check under the write lock in case of a concurrent Set.
		if current, ok := b.entries[key]; ok && current.expired(b.now()) {
			delete(b.entries, key)
		}
		b.mu.Unlock()
		return nil, ErrMiss
	}
	return entry.value, nil
}

// Set implements Backend. Overwriting a key restamps its creation time.
func (b *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: value, createdAt: b.now()}
	if ttl > 0 {
		entry.expiresAt = entry.createdAt.Add(ttl)
	}
	b.mu.Lock()
	b.entries[key] = entry
	b.mu.Unlock()
	return nil
}

// Delete implements Backend.
func (b *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	b.mu.Lock()
	for _, key := range keys {
		delete(b.entries, key)
	}
	b.mu.Unlock()
	return nil
}

// Keys implements Backend, dropping expired entries as it goes.
func (b *MemoryBackend) Keys(_ context.Context) ([]string, error) {
	now := b.now()

	b.mu.Lock()
	defer b.mu.Unlock()

	keys := make([]string, 0, len(b.entries))
	for key, entry := range b.entries {
		if entry.expired(now) {
			delete(b.entries, key)
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// OldestEntryAge implements Backend, ignoring expired entries.
func (b *MemoryBackend) OldestEntryAge(_ context.Context) (time.Duration, error) {
	now := b.now()

	b.mu.RLock()
	defer b.mu.RUnlock()

	var oldest time.Time
	for _, entry := range b.entries {
		if entry.expired(now) {
			continue
		}
		if oldest.IsZero() || entry.createdAt.Before(oldest) {
			oldest = entry.createdAt
		}
	}
	if oldest.IsZero() {
		return 0, nil
	}
	return now.Sub(oldest), nil
}

// Clear implements Backend.
func (b *MemoryBackend) Clear(_ context.Context) error {
	b.mu.Lock()
	b.entries = make(map[string]memoryEntry)
	b.mu.Unlock()
	return nil
}
