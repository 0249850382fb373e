// -----------------------------------------------------------------------------
// Config Package
// -----------------------------------------------------------------------------
// Bu dosya, mapperctl'in ve onu gömen uygulamaların merkezi yapılandırmasını
// sağlar. Ayarlar ortam değişkenlerinden okunur; çalışma dizininde bir .env
// dosyası varsa önce o yüklenir (sistem değişkenleri ezilmez).
//
// Eksik değişkenlerde varsayılan değer kullanılır ve log üzerinden uyarı
// verilir. DSN, go-sql-driver/mysql'in Config yapısı ile üretilir.
// -----------------------------------------------------------------------------

package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"

	"github.com/biyonik/datamapper/pkg/cache"
	"github.com/biyonik/datamapper/pkg/database"
)

// Config, uygulamanın merkezi yapılandırma nesnesidir.
//
// Nested struct yapısı kullanılarak ilgili ayarlar gruplandırılmıştır:
//   - App: Uygulama genel ayarları
//   - DB: MySQL bağlantı ve havuz ayarları
//   - Redis: Redis bağlantı ayarları
//   - Cache: Storage sonuç cache'i
type Config struct {
	App struct {
		Name  string // Uygulama adı
		Env   string // Ortam (development, production, test)
		Debug bool   // true ise Storage her statement'ı loglar
	}

	DB struct {
		Host              string
		Port              int
		User              string
		Password          string
		Name              string
		Params            map[string]string // Ek DSN parametreleri
		MaxOpenConns      int
		MaxIdleConns      int
		ConnMaxLifetime   time.Duration
		GroupConcatMaxLen int // Aggregate kolonların kesilmemesi için session değeri
	}

	Redis struct {
		Host     string
		Port     int
		Password string
		DB       int
	}

	Cache struct {
		Driver string        // none, memory, redis
		Prefix string        // Key prefix (namespace)
		TTL    time.Duration // Okuma sonuçlarının ömrü
	}
}

// Loader, ortam değişkenlerini okuyan yardımcıdır. Test'lerde lookup
// fonksiyonu değiştirilebilir.
type Loader struct {
	lookup func(key string) (string, bool)
	logger *log.Logger
}

// NewLoader, os.LookupEnv kullanan bir Loader oluşturur. logger nil ise
// uyarılar atılır.
func NewLoader(logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Loader{lookup: os.LookupEnv, logger: logger}
}

// WithLookup, ortam yerine verilen fonksiyondan okuyan bir kopya döndürür.
func (l *Loader) WithLookup(lookup func(key string) (string, bool)) *Loader {
	return &Loader{lookup: lookup, logger: l.logger}
}

func (l *Loader) getEnv(key, defaultValue string) string {
	if value, exists := l.lookup(key); exists {
		return value
	}
	l.logger.Printf("⚠️  Uyarı: %s ortam değişkeni bulunamadı, varsayılan (%s) kullanılıyor.", key, defaultValue)
	return defaultValue
}

func (l *Loader) getEnvAsInt(key string, defaultValue int) int {
	valueStr, ok := l.lookup(key)
	if !ok || valueStr == "" {
		l.logger.Printf("⚠️  Uyarı: %s ortam değişkeni bulunamadı, varsayılan (%d) kullanılıyor.", key, defaultValue)
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		l.logger.Printf("⚠️  Uyarı: %s için geçersiz değer: %s, varsayılan (%d) kullanılıyor.", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func (l *Loader) getEnvAsBool(key string, defaultValue bool) bool {
	valueStr, ok := l.lookup(key)
	if !ok || valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		l.logger.Printf("⚠️  Uyarı: %s için geçersiz boolean değer: %s, varsayılan (%t) kullanılıyor.", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsDuration, saniye cinsinden süre okur.
func (l *Loader) getEnvAsDuration(key string, defaultSeconds int) time.Duration {
	return time.Duration(l.getEnvAsInt(key, defaultSeconds)) * time.Second
}

// Load, ortam değişkenlerinden Config üretir ve doğrular.
func (l *Loader) Load() (*Config, error) {
	cfg := &Config{}

	cfg.App.Name = l.getEnv("APP_NAME", "mapperctl")
	cfg.App.Env = l.getEnv("APP_ENV", "development")
	cfg.App.Debug = l.getEnvAsBool("APP_DEBUG", false)

	cfg.DB.Host = l.getEnv("DB_HOST", "127.0.0.1")
	cfg.DB.Port = l.getEnvAsInt("DB_PORT", 3306)
	cfg.DB.User = l.getEnv("DB_USER", "root")
	cfg.DB.Password = l.getEnv("DB_PASSWORD", "")
	cfg.DB.Name = l.getEnv("DB_NAME", "datamapper")
	cfg.DB.MaxOpenConns = l.getEnvAsInt("DB_MAX_OPEN_CONNS", 25)
	cfg.DB.MaxIdleConns = l.getEnvAsInt("DB_MAX_IDLE_CONNS", 25)
	cfg.DB.ConnMaxLifetime = l.getEnvAsDuration("DB_CONN_MAX_LIFETIME", 300) // 5 dakika
	cfg.DB.GroupConcatMaxLen = l.getEnvAsInt("DB_GROUP_CONCAT_MAX_LEN", 1<<20)

	cfg.Redis.Host = l.getEnv("REDIS_HOST", "127.0.0.1")
	cfg.Redis.Port = l.getEnvAsInt("REDIS_PORT", 6379)
	cfg.Redis.Password = l.getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = l.getEnvAsInt("REDIS_DB", 0)

	cfg.Cache.Driver = l.getEnv("CACHE_DRIVER", cache.DriverNone)
	cfg.Cache.Prefix = l.getEnv("CACHE_PREFIX", "datamapper:")
	cfg.Cache.TTL = l.getEnvAsDuration("CACHE_TTL", 60)

	if err := cfg.Validate(); err != nil {
		l.logger.Printf("❌ Config validation hatası: %v", err)
		return nil, err
	}
	return cfg, nil
}

// Load, varsa .env dosyasını yükler ve ortam değişkenlerinden Config üretir.
//
// Parametreler:
//   - envFiles: Yüklenecek dosyalar; boşsa ".env" denenir. Var olmayan
//     dosya hata değildir.
//
// Örnek:
//
//	cfg, err := config.Load(logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	db, err := database.Connect(ctx, cfg.DSN(), cfg.Pool(), logger)
func Load(logger *log.Logger, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: %s okunamadı: %w", file, err)
		}
	}
	return NewLoader(logger).Load()
}

// Validate, config değerlerinin geçerliliğini kontrol eder.
//
// Kontroller:
//   - Cache driver geçerliliği
//   - Pozitif havuz boyutları ve port numaraları
//   - group_concat_max_len alt sınırı
func (c *Config) Validate() error {
	switch c.Cache.Driver {
	case cache.DriverNone, cache.DriverMemory, cache.DriverRedis:
	default:
		return fmt.Errorf("geçersiz CACHE_DRIVER: %s (none, memory veya redis olmalı)", c.Cache.Driver)
	}

	if c.DB.MaxOpenConns <= 0 || c.DB.MaxIdleConns <= 0 {
		return fmt.Errorf("DB havuz boyutları pozitif olmalı (open=%d, idle=%d)", c.DB.MaxOpenConns, c.DB.MaxIdleConns)
	}
	if c.DB.Port <= 0 || c.Redis.Port <= 0 {
		return fmt.Errorf("geçersiz port (db=%d, redis=%d)", c.DB.Port, c.Redis.Port)
	}
	if c.DB.GroupConcatMaxLen < 1024 {
		return fmt.Errorf("DB_GROUP_CONCAT_MAX_LEN en az 1024 olmalı: %d", c.DB.GroupConcatMaxLen)
	}
	if c.Cache.Driver != cache.DriverNone && c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL pozitif olmalı: %s", c.Cache.TTL)
	}

	if c.IsProduction() && c.Cache.Driver == cache.DriverMemory {
		log.Println("⚠️  UYARI: Memory cache birden fazla instance'ta tutarsız sonuç verebilir!")
	}
	return nil
}

// DSN, MySQL bağlantı string'ini üretir. parseTime her zaman açıktır ve
// group_concat_max_len session değişkeni olarak gönderilir.
//
// Örnek:
//
//	root:secret@tcp(127.0.0.1:3306)/app?group_concat_max_len=1048576&parseTime=true
func (c *Config) DSN() string {
	dsn := mysql.NewConfig()
	dsn.User = c.DB.User
	dsn.Passwd = c.DB.Password
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(c.DB.Host, strconv.Itoa(c.DB.Port))
	dsn.DBName = c.DB.Name
	dsn.ParseTime = true
	dsn.Loc = time.UTC

	dsn.Params = map[string]string{
		"group_concat_max_len": strconv.Itoa(c.DB.GroupConcatMaxLen),
	}
	for k, v := range c.DB.Params {
		dsn.Params[k] = v
	}

	return dsn.FormatDSN()
}

// Pool, database.Connect için havuz ayarlarını döndürür.
func (c *Config) Pool() database.PoolConfig {
	return database.PoolConfig{
		MaxOpenConns:    c.DB.MaxOpenConns,
		MaxIdleConns:    c.DB.MaxIdleConns,
		ConnMaxLifetime: c.DB.ConnMaxLifetime,
	}
}

// RedisConfig, database.NewRedisClient için Redis ayarlarını döndürür.
func (c *Config) RedisConfig() database.RedisConfig {
	rc := database.DefaultRedisConfig()
	rc.Host = c.Redis.Host
	rc.Port = c.Redis.Port
	rc.Password = c.Redis.Password
	rc.DB = c.Redis.DB
	return rc
}

// IsProduction, uygulamanın production ortamında çalışıp çalışmadığını kontrol eder.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsDevelopment, uygulamanın development ortamında çalışıp çalışmadığını kontrol eder.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}
