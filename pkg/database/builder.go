package database

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/biyonik/datamapper/pkg/naming"
)

// -----------------------------------------------------------------------------
// QUERY BUILDER - TEMEL
// -----------------------------------------------------------------------------
// Bu dosya, QueryBuilder'ın ana gövdesini içerir. Builder; tablo, alias,
// kolonlar, join'ler, where/having predicate'leri, group, order, union ve
// limit state bilgilerini tutar. Render işlemi Grammar katmanına delegate
// edilir ve SAFTIR: ToSQL() state'i değiştirmez, aynı builder tekrar tekrar
// aynı çıktıyı üretir.
//
// GÜVENLİK:
// - Tüm tablo/kolon adları Sanitize edilip backtick ile sarmalanır
// - OrderBy direction sadece ASC/DESC olabilir
// - Tüm değerler prepared statement parametresi olarak bağlanır
// - Ham SQL (SelectRaw, WhereRaw, OrderByRaw, Expr) çağıranın sorumluluğundadır
//
// WHERE metotları where.go, JOIN metotları join.go içindedir.
// -----------------------------------------------------------------------------

// selectItem, SELECT listesindeki tek bir ifadedir.
type selectItem struct {
	expr   string
	alias  string
	raw    bool
	sub    *QueryBuilder
	params []any
}

type unionClause struct {
	all   bool
	query *QueryBuilder
}

// limitClause, "LIMIT first[, count]" ifadesidir.
type limitClause struct {
	first    int64
	count    int64
	hasCount bool
}

type QueryBuilder struct {
	adapter Adapter
	grammar Grammar

	kind       StatementKind
	table      string
	alias      string
	distinct   bool
	forceIndex string

	columns          []selectItem
	fieldsOverridden bool

	joins   []JoinClause
	wheres  Predicates
	groups  []string
	havings Predicates
	orders  []OrderClause
	unions  []unionClause
	limit   *limitClause

	values    Values
	upsert    []string
	upsertSet bool
	blueprint *Blueprint

	err error
}

// NewBuilder, adapter ve grammar alarak yeni QueryBuilder üretir.
//
// Parametreler:
//   - adapter: Sorguları çalıştıracak adapter (nil olabilir; sadece ToSQL kullanılacaksa)
//   - grammar: SQL dialect'ini yöneten grammar (nil ise MySQLGrammar)
//
// Döndürür:
//   - *QueryBuilder: Yeni QueryBuilder instance'ı
func NewBuilder(adapter Adapter, grammar Grammar) *QueryBuilder {
	if grammar == nil {
		grammar = NewMySQLGrammar()
	}
	return &QueryBuilder{
		adapter: adapter,
		grammar: grammar,
		kind:    StatementSelect,
	}
}

// Grammar, builder'ın kullandığı grammar'ı döndürür.
func (qb *QueryBuilder) Grammar() Grammar {
	return qb.grammar
}

// Kind, builder'ın render edeceği statement türünü döndürür.
func (qb *QueryBuilder) Kind() StatementKind {
	return qb.kind
}

// Err, builder kurulurken oluşan ilk hatayı döndürür.
func (qb *QueryBuilder) Err() error {
	return qb.err
}

func (qb *QueryBuilder) fail(err error) {
	if qb.err == nil {
		qb.err = err
	}
}

// quoteColumn, Normalizer'ın kolonları Grammar.Wrap ile sarmalamasını sağlar.
func (qb *QueryBuilder) quoteColumn(column string) string {
	wrapped, err := qb.grammar.Wrap(column)
	if err != nil {
		qb.fail(err)
		return column
	}
	return wrapped
}

func (qb *QueryBuilder) normalizer() Normalizer {
	return Normalizer{KeepNames: true, Quote: qb.quoteColumn}
}

// Clone, builder'ın bağımsız bir kopyasını döndürür.
// Kopya üzerinde yapılan değişiklikler orijinali etkilemez.
func (qb *QueryBuilder) Clone() *QueryBuilder {
	c := *qb
	c.columns = append([]selectItem(nil), qb.columns...)
	c.joins = append([]JoinClause(nil), qb.joins...)
	c.wheres = Predicates{
		Fragments: append([]string(nil), qb.wheres.Fragments...),
		Params:    append([]any(nil), qb.wheres.Params...),
	}
	c.havings = Predicates{
		Fragments: append([]string(nil), qb.havings.Fragments...),
		Params:    append([]any(nil), qb.havings.Params...),
	}
	c.groups = append([]string(nil), qb.groups...)
	c.orders = append([]OrderClause(nil), qb.orders...)
	c.unions = append([]unionClause(nil), qb.unions...)
	c.values = append(Values(nil), qb.values...)
	c.upsert = append([]string(nil), qb.upsert...)
	if qb.limit != nil {
		l := *qb.limit
		c.limit = &l
	}
	return &c
}

// Table, sorgunun çalışacağı tablo adını ve opsiyonel alias'ı belirler.
//
// Örnek:
//
//	qb.Table("users")      → FROM `users`
//	qb.Table("users", "u") → FROM `users` AS `u`
func (qb *QueryBuilder) Table(tableName string, alias ...string) *QueryBuilder {
	qb.table = tableName
	qb.alias = ""
	if len(alias) > 0 {
		qb.alias = alias[0]
	}
	return qb
}

// TableName, builder'ın tablo adını döndürür.
func (qb *QueryBuilder) TableName() string {
	return qb.table
}

// Alias, builder'ın tablo alias'ını döndürür.
func (qb *QueryBuilder) Alias() string {
	return qb.alias
}

// Distinct, SELECT DISTINCT üretir.
func (qb *QueryBuilder) Distinct() *QueryBuilder {
	qb.distinct = true
	return qb
}

// ForceIndex, FROM'dan sonra FORCE INDEX (`index`) ekler.
func (qb *QueryBuilder) ForceIndex(index string) *QueryBuilder {
	qb.forceIndex = index
	return qb
}

// overrideFields, ilk Select çağrısında varsayılan "*" listesini bırakır.
func (qb *QueryBuilder) overrideFields() {
	if !qb.fieldsOverridden {
		qb.columns = nil
		qb.fieldsOverridden = true
	}
}

// Select, sorgudan döndürülecek kolonları belirler.
//
// İlk çağrı varsayılan "*"'ı değiştirir, sonraki çağrılar listeye ekler.
// Parantez içeren ifadeler (COUNT(*), SUM(price)) olduğu gibi yazılır;
// "expr AS alias" biçimi desteklenir.
//
// Örnek:
//
//	qb.Select("id", "name", "email")
//	qb.Select("COUNT(*) AS total")
//	qb.Select("u.user_name AS userName")
func (qb *QueryBuilder) Select(columns ...string) *QueryBuilder {
	qb.overrideFields()
	for _, col := range columns {
		qb.columns = append(qb.columns, parseSelectItem(col))
	}
	return qb
}

func parseSelectItem(col string) selectItem {
	col = strings.TrimSpace(col)
	if strings.Contains(col, "(") {
		return selectItem{expr: col, raw: true}
	}
	if i := strings.LastIndex(strings.ToLower(col), " as "); i > 0 {
		return selectItem{
			expr:  strings.TrimSpace(col[:i]),
			alias: strings.TrimSpace(col[i+4:]),
		}
	}
	return selectItem{expr: col}
}

// SelectAs, bir ifadeyi verilen alias ile seçer.
// expr identifier değilse ham ifade kabul edilir.
//
// Örnek:
//
//	qb.SelectAs("c.name", "countryName") → `c`.`name` AS `countryName`
func (qb *QueryBuilder) SelectAs(expr, alias string) *QueryBuilder {
	qb.overrideFields()
	item := selectItem{expr: expr, alias: alias}
	if !isColumnExpr(expr) {
		item.raw = true
	}
	qb.columns = append(qb.columns, item)
	return qb
}

// SelectRaw, ham bir SELECT ifadesi ekler. params ifadenin "?"
// placeholder'larına sırasıyla bağlanır.
//
// Örnek:
//
//	qb.SelectRaw("IF(`age` > ?, 'adult', 'minor') AS `band`", 18)
func (qb *QueryBuilder) SelectRaw(expr string, params ...any) *QueryBuilder {
	qb.overrideFields()
	qb.columns = append(qb.columns, selectItem{expr: expr, raw: true, params: params})
	return qb
}

// SelectSub, bir alt sorguyu hesaplanmış kolon olarak ekler:
// (SELECT ...) AS `alias`. Alt sorgunun parametreleri SQL'deki konumuna
// göre sıralanır.
func (qb *QueryBuilder) SelectSub(sub *QueryBuilder, alias string) *QueryBuilder {
	qb.overrideFields()
	qb.columns = append(qb.columns, selectItem{sub: sub, alias: alias})
	return qb
}

// SelectFields, mantıksal alanları prefix (tablo alias'ı) ile seçer.
// Çıktı adı kaynak kolondan farklıysa "AS `Name`" eklenir.
//
// Örnek:
//
//	qb.SelectFields("u", Field{Name: "id"}, Field{Name: "userName"})
//	→ `u`.`id`, `u`.`user_name` AS `userName`
func (qb *QueryBuilder) SelectFields(prefix string, fields ...Field) *QueryBuilder {
	qb.overrideFields()
	for _, f := range fields {
		qb.columns = append(qb.columns, fieldItem(prefix, f, false))
	}
	return qb
}

// fieldItem, bir Field'ı select item'a çevirir. forceAlias true ise
// (join alanları) çıktı adı her zaman yazılır.
func fieldItem(prefix string, f Field, forceAlias bool) selectItem {
	if f.Raw {
		return selectItem{expr: f.Source, alias: f.Name, raw: true}
	}

	expr := f.Column()
	if prefix != "" && !strings.Contains(expr, ".") {
		expr = prefix + "." + expr
	}

	item := selectItem{expr: expr}
	if forceAlias || f.Column() != f.Name {
		item.alias = f.Name
	}
	return item
}

func isColumnExpr(expr string) bool {
	if expr == "*" {
		return true
	}
	return naming.IsIdentifier(strings.TrimSuffix(expr, ".*"))
}

// GroupBy, GROUP BY listesine kolon ekler.
func (qb *QueryBuilder) GroupBy(columns ...string) *QueryBuilder {
	qb.groups = append(qb.groups, columns...)
	return qb
}

// OrderBy, sorgu sonuçlarını belirtilen kolona göre sıralar.
//
// Direction whitelist kontrolünden geçer; "ASC"/"DESC" dışındaki
// değerler ASC kabul edilir.
//
// Örnek:
//
//	qb.OrderBy("created_at", "DESC")
//	qb.OrderBy("name", "asc")
func (qb *QueryBuilder) OrderBy(column string, direction string) *QueryBuilder {
	qb.orders = append(qb.orders, OrderClause{
		Column:    column,
		Direction: ParseDirection(direction),
	})
	return qb
}

// OrderByRaw, ham bir ORDER BY ifadesi ekler (örn: "FIELD(`status`, 'a', 'b')").
func (qb *QueryBuilder) OrderByRaw(expr string) *QueryBuilder {
	if strings.TrimSpace(expr) != "" {
		qb.orders = append(qb.orders, OrderClause{Raw: expr})
	}
	return qb
}

// Union, sorguya UNION ile başka bir SELECT ekler.
func (qb *QueryBuilder) Union(query *QueryBuilder) *QueryBuilder {
	qb.unions = append(qb.unions, unionClause{query: query})
	return qb
}

// UnionAll, sorguya UNION ALL ile başka bir SELECT ekler.
func (qb *QueryBuilder) UnionAll(query *QueryBuilder) *QueryBuilder {
	qb.unions = append(qb.unions, unionClause{all: true, query: query})
	return qb
}

// Limit, LIMIT clause'unu belirler.
//
// offset nil ise clause üretilmez. Tek argüman "LIMIT n", iki argüman
// "LIMIT offset, count" üretir. Sayıya çevrilemeyen veya negatif
// değerlerde clause sessizce düşürülür (hata yok).
//
// Örnek:
//
//	qb.Limit(nil)    → (LIMIT yok)
//	qb.Limit(5)      → LIMIT 5
//	qb.Limit(5, 10)  → LIMIT 5, 10
//	qb.Limit("abc")  → (LIMIT yok)
func (qb *QueryBuilder) Limit(offset any, count ...any) *QueryBuilder {
	qb.limit = nil

	first, ok := toLimitInt(offset)
	if !ok {
		return qb
	}

	l := &limitClause{first: first}
	if len(count) > 0 && count[0] != nil {
		c, ok := toLimitInt(count[0])
		if !ok {
			return qb
		}
		l.count = c
		l.hasCount = true
	}

	qb.limit = l
	return qb
}

// Paginate, sayfa numarası (1'den başlar) ve sayfa boyutuna göre LIMIT üretir.
//
// Örnek:
//
//	qb.Paginate(3, 20) → LIMIT 40, 20
func (qb *QueryBuilder) Paginate(page, perPage int) *QueryBuilder {
	if perPage <= 0 {
		return qb.Limit(nil)
	}
	if page < 1 {
		page = 1
	}
	return qb.Limit((page-1)*perPage, perPage)
}

// toLimitInt, LIMIT argümanını negatif olmayan bir tamsayıya çevirir.
func toLimitInt(v any) (int64, bool) {
	var n int64

	switch x := v.(type) {
	case nil:
		return 0, false
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, false
		}
		n = int64(x)
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		n = int64(x)
	case float32:
		return floatLimit(float64(x))
	case float64:
		return floatLimit(x)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}

	if n < 0 {
		return 0, false
	}
	return n, true
}

func floatLimit(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f != math.Trunc(f) || f > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// Insert, builder'ı INSERT statement'ına çevirir.
//
// Örnek:
//
//	qb.Table("users").Insert(Values{{"name", "John"}, {"created_at", Expr("NOW()")}})
//	→ INSERT INTO `users` (`name`, `created_at`) VALUES (?, NOW())
func (qb *QueryBuilder) Insert(values Values) *QueryBuilder {
	qb.kind = StatementInsert
	qb.values = values
	return qb
}

// InsertMap, map verisiyle INSERT üretir (kolonlar sıralanır).
func (qb *QueryBuilder) InsertMap(data map[string]any) *QueryBuilder {
	return qb.Insert(ValuesFromMap(data))
}

// Replace, builder'ı REPLACE statement'ına çevirir.
func (qb *QueryBuilder) Replace(values Values) *QueryBuilder {
	qb.kind = StatementReplace
	qb.values = values
	return qb
}

// OnDuplicateKeyUpdate, INSERT'e ON DUPLICATE KEY UPDATE ekler.
// Kolon verilmezse eklenen tüm kolonlar güncellenir.
//
// Örnek:
//
//	qb.Insert(values).OnDuplicateKeyUpdate("name")
//	→ ... ON DUPLICATE KEY UPDATE `name` = VALUES(`name`)
func (qb *QueryBuilder) OnDuplicateKeyUpdate(columns ...string) *QueryBuilder {
	qb.upsertSet = true
	qb.upsert = columns
	return qb
}

// Update, builder'ı UPDATE statement'ına çevirir.
//
// GÜVENLİK UYARISI:
// WHERE clause olmadan UPDATE tüm tabloyu günceller.
func (qb *QueryBuilder) Update(values Values) *QueryBuilder {
	qb.kind = StatementUpdate
	qb.values = values
	return qb
}

// UpdateMap, map verisiyle UPDATE üretir (kolonlar sıralanır).
func (qb *QueryBuilder) UpdateMap(data map[string]any) *QueryBuilder {
	return qb.Update(ValuesFromMap(data))
}

// Delete, builder'ı DELETE statement'ına çevirir.
//
// GÜVENLİK UYARISI:
// WHERE clause olmadan DELETE TÜM TABLOYU siler.
func (qb *QueryBuilder) Delete() *QueryBuilder {
	qb.kind = StatementDelete
	return qb
}

// CreateTable, builder'ı CREATE TABLE statement'ına çevirir.
func (qb *QueryBuilder) CreateTable(define func(b *Blueprint)) *QueryBuilder {
	qb.kind = StatementCreate
	qb.blueprint = NewBlueprint(qb.table)
	if define != nil {
		define(qb.blueprint)
	}
	return qb
}

// AlterTable, builder'ı tek bir ALTER TABLE statement'ına çevirir.
func (qb *QueryBuilder) AlterTable(define func(b *Blueprint)) *QueryBuilder {
	qb.kind = StatementAlter
	qb.blueprint = NewBlueprint(qb.table)
	if define != nil {
		define(qb.blueprint)
	}
	return qb
}

// ToSQL, QueryBuilder'ın state'ini SQL string'e ve parametrelere dönüştürür.
// Statement türüne göre Grammar katmanına delegate eder.
//
// Örnek:
//
//	sql, args, err := qb.ToSQL()
//	// sql: "SELECT `id`, `name` FROM `users` WHERE `status` = ? ORDER BY `created_at` DESC LIMIT 10"
//	// args: ["active"]
func (qb *QueryBuilder) ToSQL() (string, []any, error) {
	if qb.err != nil {
		return "", nil, qb.err
	}
	if strings.TrimSpace(qb.table) == "" {
		return "", nil, ErrNoTable
	}

	switch qb.kind {
	case StatementInsert, StatementReplace:
		return qb.grammar.CompileInsert(qb)
	case StatementUpdate:
		return qb.grammar.CompileUpdate(qb)
	case StatementDelete:
		return qb.grammar.CompileDelete(qb)
	case StatementCreate:
		return qb.grammar.CompileCreate(qb)
	case StatementAlter:
		return qb.grammar.CompileAlter(qb)
	default:
		return qb.grammar.CompileSelect(qb)
	}
}

// String, render edilmiş SQL'i döndürür; hata varsa boş string.
func (qb *QueryBuilder) String() string {
	s, _, err := qb.ToSQL()
	if err != nil {
		return ""
	}
	return s
}

// Get, SELECT sorgusunu çalıştırır ve ham satırları döndürür.
//
// Örnek:
//
//	rows, err := qb.Table("users").Where("status", "=", "active").Get(ctx)
func (qb *QueryBuilder) Get(ctx context.Context) ([]RawRow, error) {
	if qb.adapter == nil {
		return nil, ErrNoAdapter
	}

	sqlStr, args, err := qb.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("query compilation failed: %w", err)
	}

	return qb.adapter.Fetch(ctx, sqlStr, args...)
}

// First, sorgunun bir kopyasına LIMIT 1 ekleyerek çalıştırır ve ilk satırı
// döndürür. Satır yoksa (nil, nil) döner. Orijinal builder değişmez.
//
// Örnek:
//
//	row, err := qb.Table("users").Where("id", "=", 1).First(ctx)
//	if row == nil {
//	    // Kullanıcı bulunamadı
//	}
func (qb *QueryBuilder) First(ctx context.Context) (RawRow, error) {
	rows, err := qb.Clone().Limit(1).Get(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Exec, yazma statement'ını (INSERT/UPDATE/DELETE/CREATE/ALTER) çalıştırır.
//
// Örnek:
//
//	result, err := qb.Table("users").Insert(values).Exec(ctx)
//	lastID, _ := result.LastInsertId()
func (qb *QueryBuilder) Exec(ctx context.Context) (sql.Result, error) {
	if qb.adapter == nil {
		return nil, ErrNoAdapter
	}

	sqlStr, args, err := qb.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("%s compilation failed: %w", strings.ToLower(qb.kind.String()), err)
	}

	return qb.adapter.Execute(ctx, sqlStr, args...)
}
