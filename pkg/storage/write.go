package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/biyonik/datamapper/pkg/database"
	"github.com/biyonik/datamapper/pkg/mapper"
)

// Setup, kayıt veritabanında varsa Update, yoksa Add çağırır.
func (s *Storage) Setup(ctx context.Context, rec *mapper.Record) error {
	exists, err := s.Exists(ctx, rec)
	if err != nil {
		return err
	}
	if exists {
		return s.Update(ctx, rec)
	}
	return s.Add(ctx, rec)
}

// Add, kaydı ekler.
//
// CreatedField tanımlı ve boşsa şu anki zaman yazılır. Primary key
// verilmemişse IDUUID modellerinde önceden UUID üretilir, IDAuto
// modellerinde driver'ın atadığı id geri okunup kayda yazılır.
//
// Örnek:
//
//	rec, _ := store.Record(map[string]any{"userName": "john", "password": hash})
//	if err := store.Add(ctx, rec); err != nil {
//	    if errors.Is(err, storage.ErrDuplicateEntry) { ... }
//	}
//	id := rec.Value("id")
func (s *Storage) Add(ctx context.Context, rec *mapper.Record) error {
	if err := s.ready(); err != nil {
		return err
	}

	if err := s.stamp(rec, s.model.CreatedField, false); err != nil {
		return s.fail("add", err)
	}

	pk := s.model.PrimaryKey
	if !rec.IsSet(pk) && s.model.IDStrategy == IDUUID {
		if err := rec.Set(pk, s.newID()); err != nil {
			return s.fail("add", err)
		}
	}

	qb := s.builder().Table(s.model.Table).Insert(rec.ToStorageRow())
	result, err := s.exec(ctx, qb)
	if err != nil {
		return s.fail("add", err)
	}

	if !rec.IsSet(pk) {
		id, err := result.LastInsertId()
		if err != nil {
			return s.fail("add", fmt.Errorf("storage: read insert id: %w", err))
		}
		if err := rec.Set(pk, id); err != nil {
			return s.fail("add", err)
		}
	}
	return nil
}

// Update, kaydı primary key'e göre günceller. UpdatedField tanımlıysa
// her çağrıda yenilenir.
func (s *Storage) Update(ctx context.Context, rec *mapper.Record) error {
	if err := s.ready(); err != nil {
		return err
	}

	id := rec.Value(s.model.PrimaryKey)
	if id == nil {
		return s.fail("update", ErrMissingID)
	}
	if err := s.stamp(rec, s.model.UpdatedField, true); err != nil {
		return s.fail("update", err)
	}

	pk := s.pkColumn()
	qb := s.builder().Table(s.model.Table).
		Update(rec.ToStorageRow().Without(pk)).
		Where(pk, "=", id)

	if _, err := s.exec(ctx, qb); err != nil {
		return s.fail("update", err)
	}
	return nil
}

// Merge, INSERT ... ON DUPLICATE KEY UPDATE ile upsert yapar. Çakışmada
// primary key ve oluşturma zamanı dışındaki tüm yazılan kolonlar güncellenir.
func (s *Storage) Merge(ctx context.Context, rec *mapper.Record) error {
	if err := s.ready(); err != nil {
		return err
	}

	if err := s.stamp(rec, s.model.CreatedField, false); err != nil {
		return s.fail("merge", err)
	}
	if err := s.stamp(rec, s.model.UpdatedField, true); err != nil {
		return s.fail("merge", err)
	}

	values := rec.ToStorageRow()
	skip := []string{s.pkColumn()}
	if s.model.CreatedField != "" {
		col, _ := s.registry.Column(s.model.CreatedField)
		skip = append(skip, col)
	}
	update := values.Without(skip...).Columns()

	qb := s.builder().Table(s.model.Table).Insert(values)
	if len(update) > 0 {
		qb.OnDuplicateKeyUpdate(update...)
	} else {
		qb.OnDuplicateKeyUpdate(s.pkColumn())
	}

	result, err := s.exec(ctx, qb)
	if err != nil {
		return s.fail("merge", err)
	}

	if !rec.IsSet(s.model.PrimaryKey) {
		if id, err := result.LastInsertId(); err == nil && id > 0 {
			_ = rec.Set(s.model.PrimaryKey, id)
		}
	}
	return nil
}

// Delete, kaydı siler. DeletedField tanımlıysa fiziksel DELETE yerine o
// alana zaman damgası yazan bir UPDATE çalışır. Primary key değeri yoksa
// hiçbir şey yapılmaz ve false döner.
//
// Döndürür:
//   - bool: Bir satır etkilendiyse true
//   - error: Çalıştırma hatası
func (s *Storage) Delete(ctx context.Context, rec *mapper.Record) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}

	id := rec.Value(s.model.PrimaryKey)
	if id == nil {
		return false, nil
	}

	pk := s.pkColumn()
	qb := s.builder().Table(s.model.Table)

	if s.model.DeletedField != "" {
		deletedAt := s.now()
		col, _ := s.registry.Column(s.model.DeletedField)
		qb.Update(database.Values{{Column: col, Value: deletedAt}})
		if err := rec.Set(s.model.DeletedField, deletedAt); err != nil {
			return false, s.fail("delete", err)
		}
	} else {
		qb.Delete()
	}
	qb.Where(pk, "=", id)

	result, err := s.exec(ctx, qb)
	if err != nil {
		return false, s.fail("delete", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return true, nil
	}
	return affected > 0, nil
}

// Transaction, fn'i tek bir transaction içinde çalıştırır. fn'e verilen
// Storage aynı modeli transaction adapter'ı üzerinden kullanır. fn hata
// döndürürse veya panic olursa rollback yapılır.
//
// Örnek:
//
//	err := store.Transaction(ctx, func(tx *storage.Storage) error {
//	    if err := tx.Add(ctx, user); err != nil {
//	        return err
//	    }
//	    return tx.Update(ctx, counter)
//	})
func (s *Storage) Transaction(ctx context.Context, fn func(tx *Storage) error) (err error) {
	if err := s.ready(); err != nil {
		return err
	}

	beginner, ok := s.adapter.(database.Beginner)
	if !ok {
		return s.fail("transaction", ErrNoTransactions)
	}

	txAdapter, err := beginner.Begin(ctx)
	if err != nil {
		return s.fail("transaction", err)
	}

	tx := s.withAdapter(txAdapter)

	defer func() {
		if p := recover(); p != nil {
			_ = txAdapter.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := txAdapter.Rollback(); rbErr != nil {
			return s.fail("transaction", errors.Join(err, rbErr))
		}
		return s.fail("transaction", err)
	}

	if err := txAdapter.Commit(); err != nil {
		return s.fail("transaction", err)
	}
	return nil
}

// withAdapter, aynı yapılandırmayla başka bir adapter kullanan kopya döndürür.
func (s *Storage) withAdapter(adapter database.Adapter) *Storage {
	return &Storage{
		adapter:   adapter,
		grammar:   s.grammar,
		model:     s.model,
		registry:  s.registry,
		plan:      s.plan,
		columns:   s.columns,
		tables:    s.tables,
		logger:    s.logger,
		debug:     s.debug,
		cache:     s.cache,
		cacheTTL:  s.cacheTTL,
		now:       s.now,
		newID:     s.newID,
		configErr: s.configErr,
	}
}

// stamp, zaman damgası alanını doldurur. overwrite false ise dolu alana
// dokunulmaz.
func (s *Storage) stamp(rec *mapper.Record, field string, overwrite bool) error {
	if field == "" {
		return nil
	}
	if !overwrite && rec.IsSet(field) {
		return nil
	}
	return rec.Set(field, s.now())
}

// exec, yazma statement'ını çalıştırır, duplicate key hatasını
// ErrDuplicateEntry'ye çevirir ve cache generation'ını artırır.
func (s *Storage) exec(ctx context.Context, qb *database.QueryBuilder) (sql.Result, error) {
	sqlStr, args, err := qb.ToSQL()
	if err != nil {
		return nil, err
	}
	s.trace(sqlStr, args)

	result, err := s.adapter.Execute(ctx, sqlStr, args...)
	if err != nil {
		if database.IsDuplicateEntry(err) {
			return nil, fmt.Errorf("%w: %w", ErrDuplicateEntry, err)
		}
		return nil, err
	}

	s.invalidate(ctx)
	return result, nil
}
