package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/biyonik/datamapper/pkg/database"
)

// -----------------------------------------------------------------------------
// Result Cache
// -----------------------------------------------------------------------------
// Okuma sonuçları (ham satırlar) şu anahtarla saklanır:
//
//	<tablo>:<sha256(generation'lar + sql + parametreler)>
//
// Generation'lar, okumanın dokunduğu her tablonun (model tablosu ve
// ilişkilerin join/aggregate tabloları) "<tablo>:generation" sayacıdır.
// Her başarılı yazma kendi tablosunun sayacını artırır; o tabloyu okuyan
// tüm Storage'ların eski anahtarları okunmaz olur ve TTL ile düşer. Cache
// hataları okumayı engellemez, sadece loglanır.
// -----------------------------------------------------------------------------

func generationKey(table string) string {
	return table + ":generation"
}

// fetch, SELECT'i çalıştırır; cache tanımlıysa önce cache'e bakar.
func (s *Storage) fetch(ctx context.Context, qb *database.QueryBuilder) ([]database.RawRow, error) {
	sqlStr, args, err := qb.ToSQL()
	if err != nil {
		return nil, err
	}
	s.trace(sqlStr, args)

	if s.cache == nil {
		return s.adapter.Fetch(ctx, sqlStr, args...)
	}

	key, err := s.cacheKey(ctx, sqlStr, args)
	if err != nil {
		s.logger.Printf("⚠️  cache key [%s]: %v", s.model.Table, err)
		return s.adapter.Fetch(ctx, sqlStr, args...)
	}

	if payload, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Printf("⚠️  cache get [%s]: %v", key, err)
	} else if ok {
		if rows, err := decodeRows(payload); err == nil {
			return rows, nil
		}
	}

	rows, err := s.adapter.Fetch(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(rows); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
			s.logger.Printf("⚠️  cache set [%s]: %v", key, err)
		}
	}
	return rows, nil
}

func (s *Storage) cacheKey(ctx context.Context, sqlStr string, args []any) (string, error) {
	h := sha256.New()
	for _, table := range s.tables {
		gen, err := s.cache.Counter(ctx, generationKey(table))
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%s=%d\x00", table, gen)
	}

	params, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("encode params: %w", err)
	}

	h.Write([]byte(sqlStr + "\x00"))
	h.Write(params)
	return s.model.Table + ":" + hex.EncodeToString(h.Sum(nil)), nil
}

// invalidate, tablonun cache generation'ını artırır.
func (s *Storage) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Increment(ctx, generationKey(s.model.Table), 1); err != nil {
		s.logger.Printf("⚠️  cache invalidate [%s]: %v", s.model.Table, err)
	}
}

// decodeRows, cache'lenmiş satırları çözer. Sayılar tam sayıysa int64,
// değilse float64 olur.
func decodeRows(payload []byte) ([]database.RawRow, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var rows []database.RawRow
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}

	for _, row := range rows {
		for k, v := range row {
			n, ok := v.(json.Number)
			if !ok {
				continue
			}
			if i, err := n.Int64(); err == nil {
				row[k] = i
			} else if f, err := n.Float64(); err == nil {
				row[k] = f
			}
		}
	}
	if rows == nil {
		rows = []database.RawRow{}
	}
	return rows, nil
}
