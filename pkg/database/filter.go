// -----------------------------------------------------------------------------
// Filter Normalizer
// -----------------------------------------------------------------------------
// Bu dosya, heterojen filtre tanımlarını sıralı SQL predicate parçalarına ve
// sıralı parametre listesine dönüştürür.
//
// Filtreler açıkça etiketlenmiş bir varyanttır (runtime'da şekil koklamak
// yok):
//
//   - Raw(sql)                    → ham SQL parçası, olduğu gibi yazılır
//   - Equals(column, value)       → column = ?
//   - Compare(column, op, value)  → column op ?
//   - Bound(sql, values...)       → placeholder'lı parça + değerleri
//
// TEK SIRALAMA SÖZLEŞMESİ:
// Parçalar girdi sırasıyla üretilir ve her parçanın değerleri parametre
// listesine aynı sırayla eklenir. Böylece render edilen SQL'deki "?"
// sırası ile parametre sırası her zaman 1:1 eşleşir.
//
// Hatalı girdiler (boş kolon, bilinmeyen operatör, eksik BETWEEN değeri,
// placeholder sayısı tutmayan Bound) HATA ÜRETMEZ; parça sessizce düşürülür.
// Opsiyonel kriterlerle toplu filtre kurulumu bu sayede dayanıklı kalır.
// -----------------------------------------------------------------------------

package database

import (
	"reflect"
	"sort"
	"strings"

	"github.com/biyonik/datamapper/pkg/naming"
)

// FilterKind, filtre varyantının etiketidir.
type FilterKind int

const (
	FilterRaw FilterKind = iota
	FilterEquals
	FilterCompare
	FilterBound
)

// Filter, tek bir filtre tanımıdır. Doğrudan değil, Raw/Equals/Compare/Bound
// kurucularıyla oluşturulmalıdır.
type Filter struct {
	Kind     FilterKind
	Column   string
	Operator string
	Value    any
	SQL      string
	Values   []any
}

// Raw, ham bir SQL parçası oluşturur. İçerik escape edilmez; çağıranın
// sorumluluğundadır. Bağlanmamış "?" içeren ham parçalar düşürülür.
func Raw(sql string) Filter {
	return Filter{Kind: FilterRaw, SQL: sql}
}

// Equals, eşitlik filtresi oluşturur. Slice değerler IN'e, nil ise
// IS NULL'a dönüşür.
//
// Örnek:
//
//	Equals("status", "active")  → status = ?
//	Equals("id", []int{1, 2})   → id IN (?, ?)
//	Equals("deletedAt", nil)    → deleted_at IS NULL
func Equals(column string, value any) Filter {
	return Filter{Kind: FilterEquals, Column: column, Operator: "=", Value: value}
}

// Compare, operatörlü karşılaştırma filtresi oluşturur.
//
// Örnek:
//
//	Compare("a.id", ">", 5)               → a.id > ?
//	Compare("age", "BETWEEN", []int{18, 65}) → age BETWEEN ? AND ?
func Compare(column, operator string, value any) Filter {
	return Filter{Kind: FilterCompare, Column: column, Operator: operator, Value: value}
}

// Bound, değerleri önceden bağlanmış bir SQL parçası oluşturur.
//
// Örnek:
//
//	Bound("created_at > ? AND created_at < ?", from, to)
func Bound(sql string, values ...any) Filter {
	return Filter{Kind: FilterBound, SQL: sql, Values: values}
}

// FromMap, kolon → değer map'ini eşitlik filtrelerine çevirir.
// Anahtarlar sıralanır; aynı map her zaman aynı SQL'i üretir.
func FromMap(m map[string]any) []Filter {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	filters := make([]Filter, 0, len(keys))
	for _, k := range keys {
		filters = append(filters, Equals(k, m[k]))
	}
	return filters
}

// Predicates, normalize edilmiş filtre çıktısıdır.
// Fragments render sırasında " AND " ile birleştirilir.
type Predicates struct {
	Fragments []string
	Params    []any
}

// Empty, hiç predicate olmadığını söyler. Boş predicate listesi
// WHERE clause'u hiç üretmez.
func (p Predicates) Empty() bool {
	return len(p.Fragments) == 0
}

// SQL, parçaları AND ile birleştirir.
func (p Predicates) SQL() string {
	return strings.Join(p.Fragments, " AND ")
}

// Append, başka bir predicate setini sırayı koruyarak ekler.
func (p *Predicates) Append(other Predicates) {
	p.Fragments = append(p.Fragments, other.Fragments...)
	p.Params = append(p.Params, other.Params...)
}

// AnyOf, tüm parçaları tek bir "(a OR b)" parçasında toplar.
func AnyOf(p Predicates) Predicates {
	switch len(p.Fragments) {
	case 0:
		return Predicates{}
	case 1:
		return p
	}

	return Predicates{
		Fragments: []string{"(" + strings.Join(p.Fragments, " OR ") + ")"},
		Params:    append([]any(nil), p.Params...),
	}
}

// allowedOperators, karşılaştırma operatörü whitelist'idir.
var allowedOperators = map[string]bool{
	"=":           true,
	"!=":          true,
	"<>":          true,
	"<":           true,
	">":           true,
	"<=":          true,
	">=":          true,
	"<=>":         true,
	"LIKE":        true,
	"NOT LIKE":    true,
	"IN":          true,
	"NOT IN":      true,
	"BETWEEN":     true,
	"NOT BETWEEN": true,
	"IS":          true,
	"IS NOT":      true,
	"REGEXP":      true,
}

// IsAllowedOperator, operatörün whitelist'te olup olmadığını kontrol eder.
func IsAllowedOperator(operator string) bool {
	return allowedOperators[strings.ToUpper(strings.TrimSpace(operator))]
}

// Normalizer, filtre listesini Predicates'e çevirir.
//
// KeepNames true ise kolon adları Naming Translator'dan geçirilmez
// (çağıran zaten storage adlarını veriyordur). Her durumda kolonlar
// Sanitize edilir. Quote verilirse temizlenmiş kolon adı ona geçirilir
// (QueryBuilder backtick'li kolonlar için Grammar.Wrap kullanır).
type Normalizer struct {
	KeepNames bool
	Quote     func(column string) string
}

// Normalize, varsayılan Normalizer ile filtreleri normalize eder.
func Normalize(filters ...Filter) Predicates {
	return Normalizer{}.Normalize(filters)
}

// Normalize, filtreleri girdi sırasıyla işler.
//
// Boş girdi ([]) boş Predicates üretir; bu da hiç WHERE clause'u
// render edilmemesi demektir ("WHERE 1=1" YOK).
//
// Örnek:
//
//	p := Normalizer{}.Normalize([]Filter{
//	    Compare("a.id", ">", 5),
//	    Raw("status = 'active'"),
//	    Equals("name", "Bob"),
//	})
//	// p.SQL()  → "a.id > ? AND status = 'active' AND name = ?"
//	// p.Params → [5, "Bob"]
func (n Normalizer) Normalize(filters []Filter) Predicates {
	var out Predicates

	for _, f := range filters {
		fragment, params, ok := n.normalizeOne(f)
		if !ok {
			continue
		}
		out.Fragments = append(out.Fragments, fragment)
		out.Params = append(out.Params, params...)
	}

	return out
}

func (n Normalizer) normalizeOne(f Filter) (string, []any, bool) {
	switch f.Kind {
	case FilterRaw:
		sql := strings.TrimSpace(f.SQL)
		if sql == "" || CountPlaceholders(sql) != 0 {
			return "", nil, false
		}
		return sql, nil, true

	case FilterBound:
		sql := strings.TrimSpace(f.SQL)
		if sql == "" || CountPlaceholders(sql) != len(f.Values) {
			return "", nil, false
		}
		return sql, append([]any(nil), f.Values...), true

	case FilterEquals, FilterCompare:
		return n.compare(f)
	}

	return "", nil, false
}

func (n Normalizer) compare(f Filter) (string, []any, bool) {
	column := naming.Sanitize(strings.TrimSpace(f.Column))
	if column == "" {
		return "", nil, false
	}
	if !n.KeepNames {
		column = naming.ToStorage(column)
	}
	if n.Quote != nil {
		column = n.Quote(column)
	}

	op := strings.ToUpper(strings.TrimSpace(f.Operator))
	if op == "" {
		op = "="
	}
	if !allowedOperators[op] {
		return "", nil, false
	}

	values, isList := listValue(f.Value)
	if isList && (op == "=" || op == "!=" || op == "<>") {
		if op == "=" {
			op = "IN"
		} else {
			op = "NOT IN"
		}
	}

	switch op {
	case "IN", "NOT IN":
		if !isList {
			values = []any{f.Value}
		}
		if len(values) == 0 {
			// Boş IN hiçbir satırla eşleşmez, boş NOT IN hepsiyle eşleşir.
			if op == "IN" {
				return "0 = 1", nil, true
			}
			return "1 = 1", nil, true
		}
		return column + " " + op + " (" + placeholders(len(values)) + ")", values, true

	case "BETWEEN", "NOT BETWEEN":
		if !isList || len(values) != 2 {
			return "", nil, false
		}
		return column + " " + op + " ? AND ?", values, true

	case "IS", "IS NOT":
		switch v := f.Value.(type) {
		case nil:
			return column + " " + op + " NULL", nil, true
		case bool:
			if v {
				return column + " " + op + " TRUE", nil, true
			}
			return column + " " + op + " FALSE", nil, true
		}
		return "", nil, false
	}

	if f.Value == nil {
		switch op {
		case "=", "<=>":
			return column + " IS NULL", nil, true
		case "!=", "<>":
			return column + " IS NOT NULL", nil, true
		}
		return "", nil, false
	}

	return column + " " + op + " ?", []any{f.Value}, true
}

// listValue, slice/array değerleri []any'e açar. []byte skaler kabul edilir.
func listValue(value any) ([]any, bool) {
	switch v := value.(type) {
	case nil, []byte, string:
		return nil, false
	case []any:
		return v, true
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// placeholders, n adet "?" üretir: "?, ?, ?".
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// CountPlaceholders, SQL metnindeki "?" placeholder'larını sayar.
//
// Tek/çift tırnak, backtick içindeki ve yorumlardaki (--, #, /* */)
// soru işaretleri sayılmaz.
func CountPlaceholders(sql string) int {
	count := 0

	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			i = skipQuoted(sql, i, c)
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			i = skipLine(sql, i)
		case c == '#':
			i = skipLine(sql, i)
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				return count
			}
			i += end + 3
		case c == '?':
			count++
		}
	}

	return count
}

func skipQuoted(sql string, start int, quote byte) int {
	for i := start + 1; i < len(sql); i++ {
		switch sql[i] {
		case '\\':
			if quote != '`' {
				i++
			}
		case quote:
			if i+1 < len(sql) && sql[i+1] == quote {
				i++
				continue
			}
			return i
		}
	}
	return len(sql)
}

func skipLine(sql string, start int) int {
	if end := strings.IndexByte(sql[start:], '\n'); end >= 0 {
		return start + end
	}
	return len(sql)
}
