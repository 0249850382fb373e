// -----------------------------------------------------------------------------
// Cache Interface
// -----------------------------------------------------------------------------
// Storage Orchestrator'ın sonuç cache'i için driver sözleşmesi.
//
// Cache, encode edilmiş satır kümelerini (byte dizisi) saklar; değerlerin
// anlamını bilmez. Tablo başına bir "generation" sayacı Increment ile
// tutulur: her yazma sayacı artırır, eski generation'a ait anahtarlar
// artık okunmaz ve TTL ile kendiliğinden düşer.
//
// Driver'lar: Memory, Redis
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache, tüm cache driver'ların implement etmesi gereken interface.
//
// Örnek kullanım:
//
//	var c cache.Cache = cache.NewMemoryCache(logger)
//	_ = c.Set(ctx, "users:1:abc", payload, time.Minute)
type Cache interface {
	// Get, anahtardaki değeri okur. Anahtar yoksa veya süresi dolduysa
	// (nil, false, nil) döner.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set, değeri yazar. ttl = 0 ise süresiz saklanır.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete, anahtarları siler. Olmayan anahtar hata değildir.
	Delete(ctx context.Context, keys ...string) error

	// Increment, sayaç değerini delta kadar artırır ve yeni değeri döndürür.
	// Anahtar yoksa 0'dan başlar.
	//
	// Örnek:
	//   gen, err := c.Increment(ctx, "users:generation", 1)
	Increment(ctx context.Context, key string, delta int64) (int64, error)

	// Counter, sayacın güncel değerini döndürür; yoksa 0.
	Counter(ctx context.Context, key string) (int64, error)

	// Flush, driver'ın sahip olduğu tüm anahtarları siler.
	Flush(ctx context.Context) error
}

// Driver adları (CACHE_DRIVER).
const (
	DriverNone   = "none"
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// New, driver adına göre bir Cache oluşturur. DriverNone için (nil, nil)
// döner; çağıran taraf cache'siz çalışır.
//
// Parametreler:
//   - driver: "none", "memory" veya "redis"
//   - client: Redis driver'ı için bağlantı (diğerlerinde nil olabilir)
//   - prefix: Anahtar namespace'i
//   - logger: Log instance (nil ise susturulur)
//
// Döndürür:
//   - Cache: Driver instance
//   - error: Bilinmeyen driver veya eksik Redis bağlantısı
func New(driver string, client *redis.Client, prefix string, logger *log.Logger) (Cache, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	switch driver {
	case "", DriverNone:
		return nil, nil
	case DriverMemory:
		return NewMemoryCache(logger), nil
	case DriverRedis:
		if client == nil {
			return nil, fmt.Errorf("cache: redis driver requires a client")
		}
		return NewRedisCache(client, logger, prefix), nil
	default:
		return nil, fmt.Errorf("cache: unknown driver %q", driver)
	}
}
