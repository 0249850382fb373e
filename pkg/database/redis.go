// -----------------------------------------------------------------------------
// Redis Connection
// -----------------------------------------------------------------------------
// Storage Orchestrator'ın sonuç cache'i için Redis bağlantı havuzu.
// Bağlantı açılışta Ping ile doğrulanır; kapanış Close ile yapılır.
// -----------------------------------------------------------------------------

package database

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig, Redis bağlantı yapılandırması.
type RedisConfig struct {
	Host        string
	Port        int
	Password    string
	DB          int
	PoolSize    int
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

// DefaultRedisConfig, varsayılan Redis yapılandırması.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:        "127.0.0.1",
		Port:        6379,
		PoolSize:    10,
		DialTimeout: 5 * time.Second,
		ReadTimeout: 3 * time.Second,
	}
}

// Addr, "host:port" adresini döndürür.
func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// RedisClient, redis.Client wrapper'ı.
type RedisClient struct {
	client *redis.Client
	logger *log.Logger
}

// NewRedisClient, yeni bir Redis client oluşturur ve bağlantıyı test eder.
//
// Örnek:
//
//	client, err := NewRedisClient(ctx, DefaultRedisConfig(), logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
func NewRedisClient(ctx context.Context, config RedisConfig, logger *log.Logger) (*RedisClient, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	client := redis.NewClient(&redis.Options{
		Addr:        config.Addr(),
		Password:    config.Password,
		DB:          config.DB,
		PoolSize:    config.PoolSize,
		DialTimeout: config.DialTimeout,
		ReadTimeout: config.ReadTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Printf("❌ Redis bağlantı hatası: %v", err)
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Printf("✅ Redis bağlantısı başarılı: %s (DB: %d)", config.Addr(), config.DB)

	return &RedisClient{client: client, logger: logger}, nil
}

// Client, raw redis.Client instance döndürür.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}

// Ping, Redis sunucusunun erişilebilir olup olmadığını kontrol eder.
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close, Redis bağlantısını kapatır.
func (r *RedisClient) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Printf("❌ Redis kapatma hatası: %v", err)
		return err
	}
	r.logger.Println("✅ Redis bağlantısı kapatıldı")
	return nil
}
