// -----------------------------------------------------------------------------
// Redis Cache Driver
// -----------------------------------------------------------------------------
// Redis-based cache implementation.
//
// Birden fazla process'in aynı sonuç cache'ini paylaştığı kurulumlar için.
// Generation sayaçları INCRBY ile atomik artırılır.
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache, Redis-based cache implementation.
type RedisCache struct {
	client *redis.Client
	logger *log.Logger
	prefix string // Key prefix (namespace)
}

// NewRedisCache, yeni bir Redis cache instance oluşturur.
//
// Parametreler:
//   - client: Redis client
//   - logger: Log instance
//   - prefix: Cache key prefix (opsiyonel, örn: "datamapper:")
//
// Örnek:
//
//	c := cache.NewRedisCache(redisClient.Client(), logger, "datamapper:")
//	// "users:gen" → gerçek key: "datamapper:users:gen"
func NewRedisCache(client *redis.Client, logger *log.Logger, prefix string) *RedisCache {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &RedisCache{client: client, logger: logger, prefix: prefix}
}

// prefixKey, key'e prefix ekler.
func (r *RedisCache) prefixKey(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + key
}

// Get, cache'den veri okur.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	prefixedKey := r.prefixKey(key)
	val, err := r.client.Get(ctx, prefixedKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		r.logger.Printf("❌ Redis Get hatası [%s]: %v", prefixedKey, err)
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}
	return val, true, nil
}

// Set, cache'e veri yazar.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	prefixedKey := r.prefixKey(key)
	if err := r.client.Set(ctx, prefixedKey, value, ttl).Err(); err != nil {
		r.logger.Printf("❌ Redis Set hatası [%s]: %v", prefixedKey, err)
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete, anahtarları tek komutla siler.
func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixedKeys := make([]string, len(keys))
	for i, key := range keys {
		prefixedKeys[i] = r.prefixKey(key)
	}

	if err := r.client.Del(ctx, prefixedKeys...).Err(); err != nil {
		r.logger.Printf("❌ Redis Delete hatası: %v", err)
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Increment, sayısal değeri artırır (atomic).
func (r *RedisCache) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	prefixedKey := r.prefixKey(key)
	newVal, err := r.client.IncrBy(ctx, prefixedKey, delta).Result()
	if err != nil {
		r.logger.Printf("❌ Redis Increment hatası [%s]: %v", prefixedKey, err)
		return 0, fmt.Errorf("redis increment failed: %w", err)
	}
	return newVal, nil
}

// Counter, sayacın güncel değerini döndürür.
func (r *RedisCache) Counter(ctx context.Context, key string) (int64, error) {
	prefixedKey := r.prefixKey(key)
	val, err := r.client.Get(ctx, prefixedKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get failed: %w", err)
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis counter %q is not numeric: %w", prefixedKey, err)
	}
	return n, nil
}

// Flush, tüm cache'i temizler.
//
// UYARI: Prefix varsa sadece o namespace temizlenir.
// Prefix yoksa TÜM Redis database temizlenir!
func (r *RedisCache) Flush(ctx context.Context) error {
	if r.prefix != "" {
		iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()

		keys := []string{}
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			r.logger.Printf("❌ Redis Scan hatası: %v", err)
			return fmt.Errorf("redis scan failed: %w", err)
		}

		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				r.logger.Printf("❌ Redis Flush hatası: %v", err)
				return fmt.Errorf("redis flush failed: %w", err)
			}
		}

		r.logger.Printf("⚠️  Redis cache temizlendi [prefix: %s, keys: %d]", r.prefix, len(keys))
		return nil
	}

	if err := r.client.FlushDB(ctx).Err(); err != nil {
		r.logger.Printf("❌ Redis FlushDB hatası: %v", err)
		return fmt.Errorf("redis flushdb failed: %w", err)
	}

	r.logger.Println("⚠️  Redis database tamamen temizlendi (FlushDB)")
	return nil
}
