// -----------------------------------------------------------------------------
// Memory Cache Driver
// -----------------------------------------------------------------------------
// In-memory cache implementation (non-persistent).
//
// Tek process'li kurulumlar, testler ve CLI için uygundur.
//
// Özellikler:
// - Thread-safe (sync.RWMutex)
// - TTL support (periyodik temizlik + okumada kontrol)
// - Değerler kopyalanarak saklanır
//
// Sınırlamalar:
// - Non-persistent (restart'ta kaybolur)
// - Single-server only (distributed değil)
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"io"
	"log"
	"sync"
	"time"
)

// MemoryCacheEntry, memory'de saklanan veri yapısı.
type MemoryCacheEntry struct {
	Value     []byte
	Counter   int64
	ExpiresAt time.Time // zero value = süresiz
}

// IsExpired, entry'nin expire olup olmadığını kontrol eder.
func (e *MemoryCacheEntry) IsExpired(now time.Time) bool {
	if e.ExpiresAt.IsZero() {
		return false
	}
	return now.After(e.ExpiresAt)
}

// MemoryCache, in-memory cache implementation.
type MemoryCache struct {
	store  map[string]*MemoryCacheEntry
	mu     sync.RWMutex
	logger *log.Logger
	stop   chan struct{}
	once   sync.Once
	now    func() time.Time
}

// NewMemoryCache, yeni bir Memory cache instance oluşturur ve arka planda
// süresi dolan girdileri temizleyen goroutine'i başlatır. Close ile durdurulur.
//
// Örnek:
//
//	c := cache.NewMemoryCache(logger)
//	defer c.Close()
func NewMemoryCache(logger *log.Logger) *MemoryCache {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	mc := &MemoryCache{
		store:  make(map[string]*MemoryCacheEntry),
		logger: logger,
		stop:   make(chan struct{}),
		now:    time.Now,
	}

	go mc.startGarbageCollection(5 * time.Minute)

	logger.Println("✅ Memory cache başlatıldı")
	return mc
}

// Get, cache'den veri okur.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.store[key]
	if !exists || entry.IsExpired(m.now()) || entry.Value == nil {
		return nil, false, nil
	}

	return append([]byte(nil), entry.Value...), true, nil
}

// Set, cache'e veri yazar.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}

	m.store[key] = &MemoryCacheEntry{
		Value:     append([]byte(nil), value...),
		ExpiresAt: expiresAt,
	}
	return nil
}

// Delete, cache'den veri siler.
func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.store, key)
	}
	return nil
}

// Increment, sayısal değeri artırır (thread-safe). TTL korunur.
func (m *MemoryCache) Increment(_ context.Context, key string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.store[key]
	if !exists || entry.IsExpired(m.now()) {
		entry = &MemoryCacheEntry{}
		m.store[key] = entry
	}

	entry.Counter += delta
	return entry.Counter, nil
}

// Counter, sayacın güncel değerini döndürür.
func (m *MemoryCache) Counter(_ context.Context, key string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.store[key]
	if !exists || entry.IsExpired(m.now()) {
		return 0, nil
	}
	return entry.Counter, nil
}

// Flush, tüm cache'i temizler.
func (m *MemoryCache) Flush(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store = make(map[string]*MemoryCacheEntry)
	m.logger.Println("⚠️  Memory cache tamamen temizlendi")
	return nil
}

// Size, cache'deki toplam entry sayısını döndürür.
func (m *MemoryCache) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

// Close, temizlik goroutine'ini durdurur. Birden fazla çağrılabilir.
func (m *MemoryCache) Close() error {
	m.once.Do(func() { close(m.stop) })
	return nil
}

func (m *MemoryCache) startGarbageCollection(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanExpiredEntries()
		case <-m.stop:
			return
		}
	}
}

// cleanExpiredEntries, expired entry'leri temizler ve silinen sayıyı döndürür.
func (m *MemoryCache) cleanExpiredEntries() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	cleaned := 0
	for key, entry := range m.store {
		if entry.IsExpired(now) {
			delete(m.store, key)
			cleaned++
		}
	}

	if cleaned > 0 {
		m.logger.Printf("🧹 Memory cache garbage collection: %d expired entry silindi", cleaned)
	}
	return cleaned
}
