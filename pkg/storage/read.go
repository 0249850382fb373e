package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/biyonik/datamapper/pkg/database"
	"github.com/biyonik/datamapper/pkg/mapper"
)

// Rows, GetRows sonucudur. Rows her zaman decode edilmiş kayıtlardır,
// ham driver satırları değil.
type Rows struct {
	Rows []*mapper.Record
}

// Len, kayıt sayısını döndürür.
func (r *Rows) Len() int {
	return len(r.Rows)
}

// Public, kayıtları blacklist uygulanmış map listesi olarak döndürür.
func (r *Rows) Public() []map[string]any {
	return mapper.PublicRecords(r.Rows)
}

// Bind, kayıtları dest slice pointer'ına bağlar.
//
// Örnek:
//
//	var users []models.User
//	err := rows.Bind(&users)
func (r *Rows) Bind(dest any) error {
	return mapper.BindAll(r.Rows, dest)
}

// Query, modelin tam SELECT'ini (alanlar + ONE join'ler + MANY aggregate
// kolonları + soft-delete kapsamı) döndürür. Özel sorgular bunun üzerine
// kurulabilir; sonuç Decode ile kayda çevrilir.
func (s *Storage) Query() *database.QueryBuilder {
	qb := s.builder().Table(s.model.Table, s.model.Alias)
	if s.registry == nil {
		return qb
	}

	qb.SelectFields(s.model.Ref(), s.model.Fields...)
	s.plan.Apply(qb)
	s.scope(qb)
	return qb
}

// scope, soft-delete kapsamını uygular.
func (s *Storage) scope(qb *database.QueryBuilder) {
	if s.model.DeletedField == "" || !s.model.ScopeSoftDeleted {
		return
	}
	qb.WhereRaw(s.quoteFilterColumn(s.model.DeletedField) + " IS NULL")
}

// Decode, ham satırları modelin kayıtlarına çevirir.
func (s *Storage) Decode(rows []database.RawRow) []*mapper.Record {
	return s.registry.FromRawRows(rows)
}

// GetRows, filtrelenmiş ve opsiyonel olarak sınırlandırılmış kayıtları getirir.
//
// Parametreler:
//   - filters: Filter Normalizer girdileri; alan adları çıktı veya storage adı olabilir
//   - limit: Limit(offset, count) argümanları; verilmezse LIMIT yok
//
// Örnek:
//
//	rows, err := store.GetRows(ctx, []database.Filter{
//	    database.Compare("createdAt", ">", since),
//	    database.Raw("u.status = 'active'"),
//	}, 0, 20)
func (s *Storage) GetRows(ctx context.Context, filters []database.Filter, limit ...any) (*Rows, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	raw, err := s.fetch(ctx, s.RowsQuery(filters, limit...))
	if err != nil {
		return nil, s.fail("get rows", err)
	}
	return &Rows{Rows: s.Decode(raw)}, nil
}

// RowsQuery, GetRows'un çalıştıracağı SELECT'i döndürür (çalıştırmadan).
func (s *Storage) RowsQuery(filters []database.Filter, limit ...any) *database.QueryBuilder {
	qb := s.Query()
	qb.WherePredicates(s.predicates(filters))
	s.order(qb)
	if len(limit) > 0 {
		qb.Limit(limit[0], limit[1:]...)
	}
	return qb
}

// All, filtresiz GetRows'tur.
func (s *Storage) All(ctx context.Context, limit ...any) (*Rows, error) {
	return s.GetRows(ctx, nil, limit...)
}

// Get, primary key ile tek kayıt getirir. Kayıt yoksa ErrNotFound.
func (s *Storage) Get(ctx context.Context, id any) (*mapper.Record, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.GetRows(ctx, []database.Filter{database.Equals(s.model.PrimaryKey, id)}, 1)
	if err != nil {
		return nil, err
	}
	if rows.Len() == 0 {
		return nil, s.fail("get", fmt.Errorf("%w: %s %v", ErrNotFound, s.model.Table, id))
	}
	return rows.Rows[0], nil
}

// Search, term'i aranabilir alanlarda LIKE ile arar; alanlar OR ile
// birleştirilir. Term'deki %, _ ve \ karakterleri literal aranır. Boş term
// filtresiz sonuç döndürür.
//
// Örnek:
//
//	rows, err := store.Search(ctx, "jo", 10)
//	// WHERE (`u`.`user_name` LIKE ? OR `u`.`email` LIKE ?) LIMIT 10
func (s *Storage) Search(ctx context.Context, term string, limit ...any) (*Rows, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	raw, err := s.fetch(ctx, s.SearchQuery(term, limit...))
	if err != nil {
		return nil, s.fail("search", err)
	}
	return &Rows{Rows: s.Decode(raw)}, nil
}

// likeEscaper, LIKE joker karakterlerini MySQL'in varsayılan kaçış
// karakteri (\) ile işaretler.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchQuery, Search'ün çalıştıracağı SELECT'i döndürür.
func (s *Storage) SearchQuery(term string, limit ...any) *database.QueryBuilder {
	qb := s.Query()
	if term != "" && s.registry != nil {
		var filters []database.Filter
		for _, name := range s.model.searchable() {
			filters = append(filters, database.Compare(name, "LIKE", "%"+likeEscaper.Replace(term)+"%"))
		}
		qb.WherePredicates(database.AnyOf(s.predicates(filters)))
	}
	s.order(qb)
	if len(limit) > 0 {
		qb.Limit(limit[0], limit[1:]...)
	}
	return qb
}

// Count, GetRows ile aynı filtre hattından geçen satırların sayısını döndürür.
// MANY aggregate kolonları ve join alanları seçilmez.
func (s *Storage) Count(ctx context.Context, filters []database.Filter) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}

	raw, err := s.fetch(ctx, s.CountQuery(filters))
	if err != nil {
		return 0, s.fail("count", err)
	}
	if len(raw) == 0 {
		return 0, nil
	}

	n, ok := mapper.Coerce(raw[0]["count"], database.TypeInt).(int64)
	if !ok {
		return 0, s.fail("count", fmt.Errorf("storage: unexpected count value %v", raw[0]["count"]))
	}
	return n, nil
}

// CountQuery, Count'un çalıştıracağı SELECT COUNT(*) sorgusunu döndürür.
func (s *Storage) CountQuery(filters []database.Filter) *database.QueryBuilder {
	qb := s.builder().Table(s.model.Table, s.model.Alias).SelectRaw("COUNT(*) AS `count`")
	if s.registry == nil {
		return qb
	}
	for _, j := range s.plan.Joins {
		j.Fields = nil
		qb.Join(j)
	}
	if len(s.plan.Filters) > 0 {
		qb.WhereFilters(s.plan.Filters...)
	}
	s.scope(qb)
	qb.WherePredicates(s.predicates(filters))
	return qb.Limit(1)
}

// Exists, kaydın primary key'iyle bir satır olup olmadığını kontrol eder.
// Primary key değeri olmayan kayıt için false döner.
func (s *Storage) Exists(ctx context.Context, rec *mapper.Record) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}

	id := rec.Value(s.model.PrimaryKey)
	if id == nil {
		return false, nil
	}

	pk := s.pkColumn()
	qb := s.builder().Table(s.model.Table).Select(pk).Where(pk, "=", id).Limit(1)
	s.traceBuilder(qb)

	row, err := qb.First(ctx)
	if err != nil {
		return false, s.fail("exists", err)
	}
	return row != nil, nil
}

func (s *Storage) order(qb *database.QueryBuilder) {
	for _, o := range s.model.OrderBy {
		if o.Raw != "" {
			qb.OrderByRaw(o.Raw)
			continue
		}
		qb.OrderBy(o.Column, string(o.Direction))
	}
}

func (s *Storage) traceBuilder(qb *database.QueryBuilder) {
	if !s.debug {
		return
	}
	sqlStr, args, err := qb.ToSQL()
	if err == nil {
		s.trace(sqlStr, args)
	}
}
