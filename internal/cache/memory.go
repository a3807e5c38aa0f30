package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process Backend with TTL support. Expired items are
// dropped lazily on access and by a background sweep.
type MemoryCache struct {
	data   sync.Map
	config Config
	cancel context.CancelFunc
}

type memoryItem struct {
	value   []byte
	expires time.Time
}

func (i memoryItem) expired(now time.Time) bool {
	return !i.expires.IsZero() && now.After(i.expires)
}

// NewMemoryCache creates a memory backend and starts its sweeper. Close stops it.
func NewMemoryCache(config Config) *MemoryCache {
	ctx, cancel := context.WithCancel(context.Background())
	m := &MemoryCache{config: config, cancel: cancel}
	go m.sweep(ctx, time.Minute)
	return m
}

func (m *MemoryCache) load(key string) (memoryItem, bool) {
	full := m.config.Prefix + key
	v, ok := m.data.Load(full)
	if !ok {
		return memoryItem{}, false
	}
	item := v.(memoryItem)
	if item.expired(time.Now()) {
		m.data.Delete(full)
		return memoryItem{}, false
	}
	return item, true
}

// Get implements Backend
func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	item, ok := m.load(key)
	if !ok {
		return nil, ErrCacheMiss{Key: key}
	}
	return item.value, nil
}

// Set implements Backend
func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl == 0 {
		ttl = m.config.DefaultTTL
	}
	item := memoryItem{value: value}
	if ttl > 0 {
		item.expires = time.Now().Add(ttl)
	}
	m.data.Store(m.config.Prefix+key, item)
	return nil
}

// Delete implements Backend
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.data.Delete(m.config.Prefix + key)
	return nil
}

// Clear implements Backend
func (m *MemoryCache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.data.Range(func(k, _ any) bool {
		m.data.Delete(k)
		return true
	})
	return nil
}

// Exists implements Backend
func (m *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok := m.load(key)
	return ok, nil
}

// Close stops the sweeper
func (m *MemoryCache) Close() error {
	if m.cancel != nil {
		m.cancel()
	}
	return nil
}

func (m *MemoryCache) sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.data.Range(func(k, v any) bool {
				if v.(memoryItem).expired(now) {
					m.data.Delete(k)
				}
				return true
			})
		}
	}
}
