// -----------------------------------------------------------------------------
// Database Package
// -----------------------------------------------------------------------------
// Bu dosya, MySQL veritabanına bağlanmayı sağlayan merkezi bağlantı
// fonksiyonunu içerir.
//
// Connect, DSN ve havuz ayarlarını alır, bağlantıyı başlatır ve Ping ile
// doğrular. Hata durumunda bağlantı kapatılır ve hata döndürülür.
// -----------------------------------------------------------------------------

package database

import (
	"context"
	"database/sql"
	"io"
	"log"
	"time"

	"github.com/go-sql-driver/mysql"
)

// PoolConfig, bağlantı havuzu ayarlarıdır.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPoolConfig, varsayılan havuz ayarlarını döndürür (25/25/5dk).
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    25,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// Connect, verilen DSN ile MySQL veritabanına bağlanır ve *sql.DB nesnesini döndürür.
// Bağlantı sırasında şu adımlar gerçekleştirilir:
//  1. DSN mysql.ParseDSN ile doğrulanır.
//  2. sql.Open ile bağlantı nesnesi oluşturulur ve havuz ayarlanır.
//  3. PingContext ile veritabanının ulaşılabilirliği kontrol edilir.
//  4. Başarılı olursa db nesnesi döndürülür, hata varsa bağlantı kapatılır.
func Connect(ctx context.Context, dsn string, pool PoolConfig, logger *log.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	logger.Printf("Veritabanına bağlanılıyor: %s@%s/%s", cfg.User, cfg.Addr, cfg.DBName)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Println("✅ Veritabanı bağlantısı başarılı!")
	return db, nil
}
