package database

// -----------------------------------------------------------------------------
// JOIN OPERATIONS
// -----------------------------------------------------------------------------
// JOIN'ler iki biçimde eklenebilir ve ikisi de aynı sıralı join listesine
// yazılır:
//
//   - Doğrudan clause:  qb.Join(JoinClause{...}), qb.LeftJoin(...)
//   - Callback:         qb.JoinWith("roles", "r", func(j *JoinBuilder) {...})
//
// Join alan seçimi (Fields) tanımlarsa bu alanlar render sırasında dış
// SELECT listesine "alias." önekiyle ve her zaman "AS `Name`" ile eklenir.
// -----------------------------------------------------------------------------

// Join, hazır bir JoinClause ekler.
//
// Örnek:
//
//	qb.Join(JoinClause{
//	    Type:  LeftJoin,
//	    Table: "countries",
//	    Alias: "c",
//	    On:    []On{{Left: "u.country_id", Right: "c.id"}},
//	})
func (qb *QueryBuilder) Join(clause JoinClause) *QueryBuilder {
	qb.joins = append(qb.joins, clause)
	return qb
}

// JoinOn, tek koşullu bir join ekler.
func (qb *QueryBuilder) JoinOn(joinType JoinType, table, alias, left, operator, right string) *QueryBuilder {
	return qb.Join(JoinClause{
		Type:  joinType,
		Table: table,
		Alias: alias,
		On:    []On{{Left: left, Operator: operator, Right: right}},
	})
}

// InnerJoin, eşitlik koşullu INNER JOIN ekler.
//
//	qb.InnerJoin("orders", "o", "u.id", "o.user_id")
//	→ INNER JOIN `orders` AS `o` ON `u`.`id` = `o`.`user_id`
func (qb *QueryBuilder) InnerJoin(table, alias, left, right string) *QueryBuilder {
	return qb.JoinOn(InnerJoin, table, alias, left, "=", right)
}

// LeftJoin, eşitlik koşullu LEFT JOIN ekler.
func (qb *QueryBuilder) LeftJoin(table, alias, left, right string) *QueryBuilder {
	return qb.JoinOn(LeftJoin, table, alias, left, "=", right)
}

// JoinUsing, USING (...) biçiminde join ekler.
//
//	qb.JoinUsing(InnerJoin, "profiles", "", "user_id")
//	→ INNER JOIN `profiles` USING (`user_id`)
func (qb *QueryBuilder) JoinUsing(joinType JoinType, table, alias string, columns ...string) *QueryBuilder {
	return qb.Join(JoinClause{Type: joinType, Table: table, Alias: alias, Using: columns})
}

// JoinWith, callback ile iç içe bir join tanımı açar.
//
// Örnek:
//
//	qb.JoinWith("countries", "c", func(j *JoinBuilder) {
//	    j.Type(LeftJoin).
//	        On("u.country_id", "=", "c.id").
//	        Select(Field{Name: "countryName", Source: "name"})
//	})
//	→ SELECT *, `c`.`name` AS `countryName` FROM ... LEFT JOIN `countries` AS `c` ON ...
func (qb *QueryBuilder) JoinWith(table, alias string, define func(j *JoinBuilder)) *QueryBuilder {
	j := &JoinBuilder{clause: JoinClause{Type: LeftJoin, Table: table, Alias: alias}}
	if define != nil {
		define(j)
	}
	return qb.Join(j.Clause())
}

// JoinBuilder, JoinWith callback'inde kullanılan join tanım kapsamıdır.
type JoinBuilder struct {
	clause JoinClause
}

// Type, join tipini belirler.
func (j *JoinBuilder) Type(joinType JoinType) *JoinBuilder {
	j.clause.Type = joinType
	return j
}

// On, AND ile birleşen bir ON koşulu ekler.
func (j *JoinBuilder) On(left, operator, right string) *JoinBuilder {
	j.clause.On = append(j.clause.On, On{Left: left, Operator: operator, Right: right})
	return j
}

// OnRaw, ham bir ON koşulu ekler.
func (j *JoinBuilder) OnRaw(sql string) *JoinBuilder {
	j.clause.On = append(j.clause.On, On{Raw: sql})
	return j
}

// Using, USING (...) kolonlarını belirler.
func (j *JoinBuilder) Using(columns ...string) *JoinBuilder {
	j.clause.Using = append(j.clause.Using, columns...)
	return j
}

// Select, join'den dış sorguya taşınacak alanları ekler.
func (j *JoinBuilder) Select(fields ...Field) *JoinBuilder {
	j.clause.Fields = append(j.clause.Fields, fields...)
	return j
}

// Clause, tanımlanan JoinClause'u döndürür.
func (j *JoinBuilder) Clause() JoinClause {
	return j.clause
}
