package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/biyonik/datamapper/internal/config"
	"github.com/biyonik/datamapper/pkg/cache"
	"github.com/biyonik/datamapper/pkg/database"
	"github.com/biyonik/datamapper/pkg/storage"
)

// Session, bir komut çalışması boyunca açık kalan bağlantılardır.
type Session struct {
	Adapter database.Adapter
	Cache   cache.Cache
	closers []io.Closer
}

// Close, açılan tüm bağlantıları ters sırayla kapatır.
func (s *Session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Connector, config'ten bir Session açar. Test'lerde değiştirilir.
type Connector func(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Session, error)

// Connect, MySQL bağlantısını ve (CACHE_DRIVER'a göre) sonuç cache'ini açar.
func Connect(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Session, error) {
	db, err := database.Connect(ctx, cfg.DSN(), cfg.Pool(), logger)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	session := &Session{Adapter: database.NewSQLAdapter(db), closers: []io.Closer{db}}

	switch cfg.Cache.Driver {
	case cache.DriverRedis:
		rc, err := database.NewRedisClient(ctx, cfg.RedisConfig(), logger)
		if err != nil {
			_ = session.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		session.closers = append(session.closers, rc)
		session.Cache, err = cache.New(cfg.Cache.Driver, rc.Client(), cfg.Cache.Prefix, logger)
		if err != nil {
			_ = session.Close()
			return nil, err
		}
	default:
		session.Cache, err = cache.New(cfg.Cache.Driver, nil, cfg.Cache.Prefix, logger)
		if err != nil {
			_ = session.Close()
			return nil, err
		}
		if closer, ok := session.Cache.(io.Closer); ok {
			session.closers = append(session.closers, closer)
		}
	}

	return session, nil
}

// openStore, config'i yükler, Session açar ve model için Storage kurar.
func openStore(ctx context.Context, opts *RootOptions, connect Connector, logger *log.Logger) (*storage.Storage, *Session, error) {
	model, err := opts.loadModel()
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(logger, opts.EnvFile...)
	if err != nil {
		return nil, nil, err
	}

	session, err := connect(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	storeOpts := []storage.Option{
		storage.WithLogger(logger),
		storage.WithDebug(cfg.App.Debug || opts.Verbose),
	}
	if session.Cache != nil {
		storeOpts = append(storeOpts, storage.WithCache(session.Cache, cfg.Cache.TTL))
	}

	store := storage.New(session.Adapter, model, storeOpts...)
	if err := store.LastError(); err != nil {
		_ = session.Close()
		return nil, nil, err
	}
	return store, session, nil
}
