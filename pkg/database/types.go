// -----------------------------------------------------------------------------
// Database Types - SQL Builder İçin Yardımcı Tipler
// -----------------------------------------------------------------------------
// Bu dosya, QueryBuilder'ın ve üst katmanların (relation, mapper, storage)
// ortak kullandığı tipleri içerir: sıralama, join, alan (Field), yazma
// atamaları (Assignment) ve driver'dan dönen ham satır (RawRow).
//
// OrderClause gibi yapılar direction alanını enum gibi kullanarak sadece
// "ASC" ve "DESC" değerlerini kabul eder. Bu sayede kullanıcı input'u
// direkt SQL'e enjekte edilemez.
// -----------------------------------------------------------------------------

package database

import (
	"sort"
	"strings"

	"github.com/biyonik/datamapper/pkg/naming"
)

// OrderDirection, ORDER BY için izin verilen yönleri temsil eder.
type OrderDirection string

const (
	OrderAsc  OrderDirection = "ASC"
	OrderDesc OrderDirection = "DESC"
)

// ParseDirection, serbest metni güvenli bir OrderDirection'a çevirir.
// Geçersiz değerler ASC kabul edilir.
func ParseDirection(direction string) OrderDirection {
	if strings.EqualFold(strings.TrimSpace(direction), "DESC") {
		return OrderDesc
	}
	return OrderAsc
}

// OrderClause, bir ORDER BY ifadesini güvenli bir şekilde temsil eder.
//
// Alanlar:
//   - Column: Sıralama yapılacak kolon adı (backtick ile sarmalanacak)
//   - Direction: Sıralama yönü (sadece ASC veya DESC olabilir)
//   - Raw: Doluysa olduğu gibi yazılır (örn: "FIELD(`status`, 'a', 'b')")
//
// Örnek Kullanım:
//
//	OrderClause{Column: "created_at", Direction: OrderDesc}
//	→ SQL: ORDER BY `created_at` DESC
type OrderClause struct {
	Column    string
	Direction OrderDirection
	Raw       string
}

// JoinType, JOIN tiplerini temsil eden enum-like yapıdır.
type JoinType string

const (
	InnerJoin JoinType = "INNER"
	LeftJoin  JoinType = "LEFT"
	RightJoin JoinType = "RIGHT"
	OuterJoin JoinType = "OUTER"
	CrossJoin JoinType = "CROSS"
)

// ParseJoinType, serbest metni JoinType'a çevirir. Bilinmeyen değerler LEFT olur.
func ParseJoinType(value string) JoinType {
	switch JoinType(strings.ToUpper(strings.TrimSpace(value))) {
	case InnerJoin:
		return InnerJoin
	case RightJoin:
		return RightJoin
	case OuterJoin:
		return OuterJoin
	case CrossJoin:
		return CrossJoin
	default:
		return LeftJoin
	}
}

// On, bir JOIN koşulunu temsil eder: Left Operator Right.
//
// Left ve Right identifier ifadeleridir ("u.id", "r.user_id") ve Grammar
// tarafından sarmalanır. Operator boşsa "=" kullanılır. Raw doluysa koşul
// olduğu gibi yazılır.
type On struct {
	Left     string
	Operator string
	Right    string
	Raw      string
}

// JoinClause, bir JOIN ifadesini güvenli bir şekilde temsil eder.
//
// Alanlar:
//   - Type: JOIN tipi (INNER, LEFT, RIGHT, OUTER, CROSS)
//   - Table: JOIN yapılacak tablo adı
//   - Alias: Tablo alias'ı (opsiyonel)
//   - On: Sıralı ON koşulları (AND ile birleşir)
//   - Using: USING (...) kolonları, On yerine kullanılabilir
//   - Fields: Dış select listesine "alias." önekiyle eklenecek alanlar
//
// Örnek Kullanım:
//
//	JoinClause{
//	    Type:  LeftJoin,
//	    Table: "countries",
//	    Alias: "c",
//	    On:    []On{{Left: "u.country_id", Right: "c.id"}},
//	}
//	→ SQL: LEFT JOIN `countries` AS `c` ON `u`.`country_id` = `c`.`id`
type JoinClause struct {
	Type   JoinType
	Table  string
	Alias  string
	On     []On
	Using  []string
	Fields []Field
}

// Ref, join'in dış sorguda referans alınan adını döndürür (alias veya tablo).
func (j JoinClause) Ref() string {
	if j.Alias != "" {
		return j.Alias
	}
	return j.Table
}

// FieldType, bir alanın uygulama tarafındaki tipini belirtir.
// Mapper, ham driver değerlerini ve aggregate metinleri bu tipe çevirir.
type FieldType string

const (
	TypeAny    FieldType = ""
	TypeString FieldType = "string"
	TypeInt    FieldType = "int"
	TypeFloat  FieldType = "float"
	TypeBool   FieldType = "bool"
	TypeTime   FieldType = "time"
	TypeJSON   FieldType = "json"
)

// Field, mantıksal bir alanı temsil eder.
//
// Alanlar:
//   - Name: Çıktı adı (camelCase, örn: "userName")
//   - Source: Kaynak ifade (opsiyonel). Boşsa naming.ToStorage(Name) kullanılır.
//   - Raw: Source ham SQL ifadesidir, sarmalanmaz (örn: "COUNT(*)")
//   - Hidden: Public çıktıdan hariç tutulur (blacklist), iç kullanımda vardır
//   - Type: Uygulama tarafı tip dönüşümü
//
// Örnek:
//
//	Field{Name: "userName"}                           → `user_name` AS `userName`
//	Field{Name: "countryName", Source: "name"}        → `c`.`name` AS `countryName`
//	Field{Name: "total", Source: "COUNT(*)", Raw: true} → COUNT(*) AS `total`
type Field struct {
	Name   string
	Source string
	Raw    bool
	Hidden bool
	Type   FieldType
}

// Column, alanın storage tarafındaki kolon adını (veya ham ifadesini) döndürür.
func (f Field) Column() string {
	if f.Source != "" {
		return f.Source
	}
	return naming.ToStorage(f.Name)
}

// Aliased, alanın çıktı adının kaynak kolondan farklı olup olmadığını söyler.
func (f Field) Aliased() bool {
	return f.Raw || f.Column() != f.Name
}

// Expr, INSERT/UPDATE değerlerinde placeholder yerine olduğu gibi yazılan
// ham SQL ifadesidir (örn: Expr("NOW()"), Expr("VALUES(`name`)")).
//
// Güvenlik Notu:
// Expr içeriği escape edilmez. Kullanıcı input'u ASLA Expr'e verilmemelidir.
type Expr string

// Assignment, bir kolon = değer çiftidir. Sıra korunur.
type Assignment struct {
	Column string
	Value  any
}

// Values, sıralı kolon/değer listesidir. INSERT ve UPDATE bu sırayı
// birebir kullanır, böylece parametre sırası deterministiktir.
type Values []Assignment

// ValuesFromMap, map'i kolon adına göre sıralanmış Values'a çevirir.
//
// Go map'leri sırasız olduğu için sıralama, aynı girdiden her zaman
// aynı SQL'in üretilmesini garanti eder.
func ValuesFromMap(data map[string]any) Values {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make(Values, 0, len(keys))
	for _, k := range keys {
		values = append(values, Assignment{Column: k, Value: data[k]})
	}
	return values
}

// Columns, atamaların kolon adlarını sırasıyla döndürür.
func (v Values) Columns() []string {
	cols := make([]string, len(v))
	for i, a := range v {
		cols[i] = a.Column
	}
	return cols
}

// Get, verilen kolona atanmış değeri döndürür.
func (v Values) Get(column string) (any, bool) {
	for _, a := range v {
		if a.Column == column {
			return a.Value, true
		}
	}
	return nil, false
}

// Without, verilen kolonları çıkarılmış yeni bir Values döndürür.
func (v Values) Without(columns ...string) Values {
	out := make(Values, 0, len(v))
	for _, a := range v {
		skip := false
		for _, c := range columns {
			if a.Column == c {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, a)
		}
	}
	return out
}

// RawRow, driver'dan dönen tek bir satırdır: kolon adı → değer.
// []byte değerler SQLAdapter tarafından string'e çevrilir.
type RawRow map[string]any

// StatementKind, QueryBuilder'ın üreteceği statement türüdür.
type StatementKind int

const (
	StatementSelect StatementKind = iota
	StatementInsert
	StatementReplace
	StatementUpdate
	StatementDelete
	StatementCreate
	StatementAlter
)

func (k StatementKind) String() string {
	switch k {
	case StatementInsert:
		return "INSERT"
	case StatementReplace:
		return "REPLACE"
	case StatementUpdate:
		return "UPDATE"
	case StatementDelete:
		return "DELETE"
	case StatementCreate:
		return "CREATE"
	case StatementAlter:
		return "ALTER"
	default:
		return "SELECT"
	}
}
