package database

import "strings"

// -----------------------------------------------------------------------------
// WHERE / HAVING OPERATIONS
// -----------------------------------------------------------------------------
// Bu dosya, QueryBuilder için WHERE ve HAVING metotlarını içerir.
//
// Kolonlu metotlar (Where, WhereIn, WhereBetween, ...) Filter Normalizer
// üzerinden geçer; bu yüzden operatör whitelist'i, boş IN davranışı ve
// nil → IS NULL dönüşümü filtre katmanıyla birebir aynıdır. Kolonlar
// Grammar.Wrap ile backtick'lenir.
//
// Hazır predicate'ler (Storage Orchestrator'ın normalize ettiği filtreler)
// WherePredicates ile olduğu gibi eklenir.
//
// GÜVENLİK NOTU:
// Tüm değerler prepared statement ile bağlandığı için SQL injection korumalıdır.
// WhereRaw ve HavingRaw içeriği escape edilmez.
// -----------------------------------------------------------------------------

func (qb *QueryBuilder) addWhere(f Filter) *QueryBuilder {
	qb.wheres.Append(qb.normalizer().Normalize([]Filter{f}))
	return qb
}

// Where, sorguya bir WHERE koşulu ekler.
//
// Parametreler:
//   - column: Koşul uygulanacak kolon adı
//   - operator: Karşılaştırma operatörü (=, !=, <, >, <=, >=, LIKE, IN, vb.)
//   - value: Karşılaştırılacak değer
//
// Örnek:
//
//	qb.Where("status", "=", "active")
//	qb.Where("age", ">", 18)
//	qb.Where("name", "LIKE", "%john%")
//
// Whitelist dışındaki operatörler koşulu sessizce düşürür.
func (qb *QueryBuilder) Where(column string, operator string, value any) *QueryBuilder {
	return qb.addWhere(Compare(column, operator, value))
}

// OrWhere, son WHERE koşuluyla OR ile birleşen bir koşul ekler.
// İki koşul parantez içine alınır, böylece diğer AND'lerle öncelik
// karışmaz.
//
// Örnek:
//
//	qb.Where("role", "=", "admin").OrWhere("role", "=", "moderator")
//	→ SQL: WHERE (`role` = ? OR `role` = ?)
func (qb *QueryBuilder) OrWhere(column string, operator string, value any) *QueryBuilder {
	next := qb.normalizer().Normalize([]Filter{Compare(column, operator, value)})
	if next.Empty() {
		return qb
	}

	n := len(qb.wheres.Fragments)
	if n == 0 {
		qb.wheres.Append(next)
		return qb
	}

	qb.wheres.Fragments[n-1] = "(" + qb.wheres.Fragments[n-1] + " OR " + next.Fragments[0] + ")"
	qb.wheres.Params = append(qb.wheres.Params, next.Params...)
	return qb
}

// WhereIn, kolonun değerlerinin bir dizide olup olmadığını kontrol eder.
// values herhangi bir slice olabilir. Boş dizi "0 = 1" üretir.
//
// Örnek:
//
//	qb.WhereIn("status", []string{"active", "pending", "approved"})
//	→ SQL: WHERE `status` IN (?, ?, ?)
func (qb *QueryBuilder) WhereIn(column string, values any) *QueryBuilder {
	return qb.addWhere(Compare(column, "IN", values))
}

// WhereNotIn, kolonun değerlerinin bir dizide olmadığını kontrol eder.
//
// Örnek:
//
//	qb.WhereNotIn("role", []string{"banned", "suspended"})
//	→ SQL: WHERE `role` NOT IN (?, ?)
func (qb *QueryBuilder) WhereNotIn(column string, values any) *QueryBuilder {
	return qb.addWhere(Compare(column, "NOT IN", values))
}

// WhereBetween, kolonun değerinin iki değer arasında olup olmadığını kontrol eder.
//
// Örnek:
//
//	qb.WhereBetween("age", 18, 65)
//	→ SQL: WHERE `age` BETWEEN ? AND ?
func (qb *QueryBuilder) WhereBetween(column string, min, max any) *QueryBuilder {
	return qb.addWhere(Compare(column, "BETWEEN", []any{min, max}))
}

// WhereNotBetween, kolonun değerinin iki değer arasında olmadığını kontrol eder.
func (qb *QueryBuilder) WhereNotBetween(column string, min, max any) *QueryBuilder {
	return qb.addWhere(Compare(column, "NOT BETWEEN", []any{min, max}))
}

// WhereNull, kolonun NULL olup olmadığını kontrol eder.
//
// Örnek:
//
//	qb.WhereNull("deleted_at")
//	→ SQL: WHERE `deleted_at` IS NULL
//
// Soft delete pattern'inde aktif kayıtları bulmak için kullanılır.
func (qb *QueryBuilder) WhereNull(column string) *QueryBuilder {
	return qb.addWhere(Compare(column, "IS", nil))
}

// WhereNotNull, kolonun NULL olmadığını kontrol eder.
//
// Örnek:
//
//	qb.WhereNotNull("email_verified_at")
//	→ SQL: WHERE `email_verified_at` IS NOT NULL
func (qb *QueryBuilder) WhereNotNull(column string) *QueryBuilder {
	return qb.addWhere(Compare(column, "IS NOT", nil))
}

// whereFunc, FN(`column`) = ? biçimindeki tarih koşullarını üretir.
func (qb *QueryBuilder) whereFunc(fn, column string, value any) *QueryBuilder {
	wrapped, err := qb.grammar.Wrap(column)
	if err != nil {
		qb.fail(err)
		return qb
	}
	qb.wheres.Fragments = append(qb.wheres.Fragments, fn+"("+wrapped+") = ?")
	qb.wheres.Params = append(qb.wheres.Params, value)
	return qb
}

// WhereDate, tarih kolonunun belirli bir güne eşit olup olmadığını kontrol eder.
//
// Örnek:
//
//	qb.WhereDate("created_at", "2024-01-15")
//	→ SQL: WHERE DATE(`created_at`) = ?
func (qb *QueryBuilder) WhereDate(column string, date string) *QueryBuilder {
	return qb.whereFunc("DATE", column, date)
}

// WhereYear, tarih kolonunun yılını kontrol eder.
//
//	qb.WhereYear("created_at", 2024) → WHERE YEAR(`created_at`) = ?
func (qb *QueryBuilder) WhereYear(column string, year int) *QueryBuilder {
	return qb.whereFunc("YEAR", column, year)
}

// WhereMonth, tarih kolonunun ayını kontrol eder (1-12).
func (qb *QueryBuilder) WhereMonth(column string, month int) *QueryBuilder {
	return qb.whereFunc("MONTH", column, month)
}

// WhereDay, tarih kolonunun gününü kontrol eder (1-31).
func (qb *QueryBuilder) WhereDay(column string, day int) *QueryBuilder {
	return qb.whereFunc("DAY", column, day)
}

// WhereRaw, ham bir WHERE parçası ekler. bindings parçadaki "?"
// sayısıyla eşleşmiyorsa parça düşürülür.
//
// Örnek:
//
//	qb.WhereRaw("`price` * `qty` > ?", 100)
//
// Dikkatli kullanılmalı: içerik escape edilmez.
func (qb *QueryBuilder) WhereRaw(sql string, bindings ...any) *QueryBuilder {
	return qb.addWhere(Bound(sql, bindings...))
}

// WherePredicates, Filter Normalizer'dan gelmiş hazır predicate'leri ekler.
func (qb *QueryBuilder) WherePredicates(p Predicates) *QueryBuilder {
	qb.wheres.Append(p)
	return qb
}

// WhereFilters, filtreleri builder'ın normalizer'ı (backtick'li kolonlar,
// isim çevirisi yok) ile ekler.
func (qb *QueryBuilder) WhereFilters(filters ...Filter) *QueryBuilder {
	qb.wheres.Append(qb.normalizer().Normalize(filters))
	return qb
}

// Having, sorguya bir HAVING koşulu ekler.
//
// Örnek:
//
//	qb.GroupBy("status").Having("COUNT(*)", ">", 5)
//	→ SQL: GROUP BY `status` HAVING COUNT(*) > ?
func (qb *QueryBuilder) Having(column string, operator string, value any) *QueryBuilder {
	if strings.Contains(column, "(") {
		op := strings.ToUpper(strings.TrimSpace(operator))
		if !IsAllowedOperator(op) || op == "IN" || op == "NOT IN" || strings.Contains(op, "BETWEEN") || strings.HasPrefix(op, "IS") {
			return qb
		}
		qb.havings.Fragments = append(qb.havings.Fragments, column+" "+op+" ?")
		qb.havings.Params = append(qb.havings.Params, value)
		return qb
	}

	qb.havings.Append(qb.normalizer().Normalize([]Filter{Compare(column, operator, value)}))
	return qb
}

// HavingRaw, ham bir HAVING parçası ekler.
func (qb *QueryBuilder) HavingRaw(sql string, bindings ...any) *QueryBuilder {
	qb.havings.Append(qb.normalizer().Normalize([]Filter{Bound(sql, bindings...)}))
	return qb
}
