package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/biyonik/datamapper/pkg/naming"
)

// -----------------------------------------------------------------------------
// MySQL Grammar
// -----------------------------------------------------------------------------
// QueryBuilder state'ini MySQL statement'larına çevirir. Render sırası her
// statement türü için sabittir:
//
//	SELECT [DISTINCT] fields FROM table[ AS alias] [FORCE INDEX] joins
//	       WHERE groupBy having orderBy unions limit
//	UPDATE table joins SET fields WHERE orderBy limit
//	INSERT|REPLACE INTO table (fields) VALUES (values) [ON DUPLICATE KEY UPDATE ...]
//	DELETE FROM table WHERE orderBy limit
//
// Parametreler SQL'deki "?" sırasıyla toplanır.
// -----------------------------------------------------------------------------

type MySQLGrammar struct{}

func NewMySQLGrammar() *MySQLGrammar {
	return &MySQLGrammar{}
}

// joinOperators, ON koşullarında izin verilen operatörlerdir.
var joinOperators = map[string]bool{
	"=": true, "!=": true, "<>": true, "<": true, ">": true, "<=": true, ">=": true, "<=>": true,
}

// Wrap, kolon ve tablo isimlerini MySQL backtick'leri ile sarmalar.
// Her parça Sanitize edilir; temizlikten sonra boş kalan parça hata üretir.
func (g *MySQLGrammar) Wrap(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "*" {
		return value, nil
	}

	parts := strings.Split(value, ".")
	wrapped := make([]string, len(parts))
	for i, part := range parts {
		if part == "*" && i == len(parts)-1 && i > 0 {
			wrapped[i] = "*"
			continue
		}
		clean := naming.Sanitize(part)
		if clean == "" {
			return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, value)
		}
		wrapped[i] = "`" + clean + "`"
	}

	return strings.Join(wrapped, "."), nil
}

// WrapTable, tabloyu ve opsiyonel alias'ı sarmalar.
func (g *MySQLGrammar) WrapTable(table, alias string) (string, error) {
	wrapped, err := g.Wrap(table)
	if err != nil {
		return "", fmt.Errorf("table wrap error: %w", err)
	}
	if strings.TrimSpace(alias) == "" {
		return wrapped, nil
	}

	wrappedAlias, err := g.Wrap(alias)
	if err != nil {
		return "", fmt.Errorf("alias wrap error: %w", err)
	}
	return wrapped + " AS " + wrappedAlias, nil
}

// Literal, metni tek tırnaklı bir MySQL string literal'ine çevirir.
func (g *MySQLGrammar) Literal(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, "'", "''")
	return "'" + value + "'"
}

// WrapMultiple, birden fazla identifier'ı wrap eder.
func (g *MySQLGrammar) WrapMultiple(values []string) ([]string, error) {
	wrapped := make([]string, len(values))
	for i, value := range values {
		w, err := g.Wrap(value)
		if err != nil {
			return nil, fmt.Errorf("failed to wrap '%s': %w", value, err)
		}
		wrapped[i] = w
	}
	return wrapped, nil
}

// wrapExpr, identifier olan ifadeleri sarmalar, fonksiyon çağrılarını
// (parantez içerenleri) olduğu gibi bırakır.
func (g *MySQLGrammar) wrapExpr(expr string) (string, error) {
	if strings.Contains(expr, "(") {
		return expr, nil
	}
	return g.Wrap(expr)
}

// CompileSelect, QueryBuilder'dan SELECT sorgusu üretir.
func (g *MySQLGrammar) CompileSelect(qb *QueryBuilder) (string, []any, error) {
	var b strings.Builder
	var args []any

	b.WriteString("SELECT ")
	if qb.distinct {
		b.WriteString("DISTINCT ")
	}

	columns, columnArgs, err := g.compileColumns(qb)
	if err != nil {
		return "", nil, err
	}
	b.WriteString(columns)
	args = append(args, columnArgs...)

	table, err := g.WrapTable(qb.table, qb.alias)
	if err != nil {
		return "", nil, err
	}
	b.WriteString(" FROM ")
	b.WriteString(table)

	if qb.forceIndex != "" {
		index, err := g.Wrap(qb.forceIndex)
		if err != nil {
			return "", nil, fmt.Errorf("index wrap error: %w", err)
		}
		b.WriteString(" FORCE INDEX (" + index + ")")
	}

	if err := g.writeJoins(&b, qb.joins); err != nil {
		return "", nil, err
	}

	if !qb.wheres.Empty() {
		b.WriteString(" WHERE ")
		b.WriteString(qb.wheres.SQL())
		args = append(args, qb.wheres.Params...)
	}

	if len(qb.groups) > 0 {
		groups := make([]string, len(qb.groups))
		for i, group := range qb.groups {
			wrapped, err := g.wrapExpr(group)
			if err != nil {
				return "", nil, fmt.Errorf("group column wrap error: %w", err)
			}
			groups[i] = wrapped
		}
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(groups, ", "))
	}

	if !qb.havings.Empty() {
		b.WriteString(" HAVING ")
		b.WriteString(qb.havings.SQL())
		args = append(args, qb.havings.Params...)
	}

	if err := g.writeOrders(&b, qb.orders); err != nil {
		return "", nil, err
	}

	for _, u := range qb.unions {
		sub, subArgs, err := g.CompileSelect(u.query)
		if err != nil {
			return "", nil, fmt.Errorf("union compile error: %w", err)
		}
		if u.all {
			b.WriteString(" UNION ALL ")
		} else {
			b.WriteString(" UNION ")
		}
		b.WriteString(sub)
		args = append(args, subArgs...)
	}

	g.writeLimit(&b, qb.limit)

	return b.String(), args, nil
}

// compileColumns, SELECT listesini üretir. Select hiç çağrılmadıysa "*"
// kullanılır; join alanları her durumda listenin sonuna eklenir.
func (g *MySQLGrammar) compileColumns(qb *QueryBuilder) (string, []any, error) {
	items := qb.columns
	if !qb.fieldsOverridden || len(items) == 0 {
		items = []selectItem{{expr: "*"}}
	}

	for _, j := range qb.joins {
		for _, f := range j.Fields {
			items = append(items, fieldItem(j.Ref(), f, true))
		}
	}

	parts := make([]string, 0, len(items))
	var args []any

	for _, item := range items {
		var expr string

		switch {
		case item.sub != nil:
			sub, subArgs, err := item.sub.ToSQL()
			if err != nil {
				return "", nil, fmt.Errorf("subquery compile error: %w", err)
			}
			expr = "(" + sub + ")"
			args = append(args, subArgs...)
		case item.raw:
			expr = item.expr
			args = append(args, item.params...)
		default:
			wrapped, err := g.Wrap(item.expr)
			if err != nil {
				return "", nil, fmt.Errorf("column wrap error: %w", err)
			}
			expr = wrapped
		}

		if item.alias != "" {
			alias, err := g.Wrap(item.alias)
			if err != nil {
				return "", nil, fmt.Errorf("column alias wrap error: %w", err)
			}
			expr += " AS " + alias
		}

		parts = append(parts, expr)
	}

	return strings.Join(parts, ", "), args, nil
}

func (g *MySQLGrammar) writeJoins(b *strings.Builder, joins []JoinClause) error {
	for _, j := range joins {
		clause, err := g.compileJoin(j)
		if err != nil {
			return err
		}
		b.WriteByte(' ')
		b.WriteString(clause)
	}
	return nil
}

// compileJoin, tek bir JOIN clause'u üretir.
func (g *MySQLGrammar) compileJoin(j JoinClause) (string, error) {
	table, err := g.WrapTable(j.Table, j.Alias)
	if err != nil {
		return "", fmt.Errorf("join %w", err)
	}

	joinType := ParseJoinType(string(j.Type))
	sql := string(joinType) + " JOIN " + table

	if len(j.Using) > 0 {
		cols, err := g.WrapMultiple(j.Using)
		if err != nil {
			return "", fmt.Errorf("join using error: %w", err)
		}
		return sql + " USING (" + strings.Join(cols, ", ") + ")", nil
	}

	conditions := make([]string, 0, len(j.On))
	for _, on := range j.On {
		if on.Raw != "" {
			conditions = append(conditions, on.Raw)
			continue
		}

		left, err := g.Wrap(on.Left)
		if err != nil {
			return "", fmt.Errorf("join condition error: %w", err)
		}
		right, err := g.Wrap(on.Right)
		if err != nil {
			return "", fmt.Errorf("join condition error: %w", err)
		}
		op := strings.TrimSpace(on.Operator)
		if !joinOperators[op] {
			op = "="
		}
		conditions = append(conditions, left+" "+op+" "+right)
	}

	if len(conditions) > 0 {
		sql += " ON " + strings.Join(conditions, " AND ")
	}
	return sql, nil
}

func (g *MySQLGrammar) writeOrders(b *strings.Builder, orders []OrderClause) error {
	if len(orders) == 0 {
		return nil
	}

	parts := make([]string, len(orders))
	for i, order := range orders {
		if order.Raw != "" {
			parts[i] = order.Raw
			continue
		}
		wrapped, err := g.Wrap(order.Column)
		if err != nil {
			return fmt.Errorf("order column wrap error: %w", err)
		}
		direction := order.Direction
		if direction != OrderDesc {
			direction = OrderAsc
		}
		parts[i] = wrapped + " " + string(direction)
	}

	b.WriteString(" ORDER BY ")
	b.WriteString(strings.Join(parts, ", "))
	return nil
}

func (g *MySQLGrammar) writeLimit(b *strings.Builder, l *limitClause) {
	if l == nil {
		return
	}
	b.WriteString(" LIMIT ")
	b.WriteString(strconv.FormatInt(l.first, 10))
	if l.hasCount {
		b.WriteString(", ")
		b.WriteString(strconv.FormatInt(l.count, 10))
	}
}

// valueSQL, bir atamanın değerini placeholder'a veya Expr ise ham ifadeye çevirir.
func valueSQL(v any, args []any) (string, []any) {
	if expr, ok := v.(Expr); ok {
		return string(expr), args
	}
	return "?", append(args, v)
}

// CompileInsert, INSERT veya REPLACE sorgusu üretir.
func (g *MySQLGrammar) CompileInsert(qb *QueryBuilder) (string, []any, error) {
	if len(qb.values) == 0 {
		return "", nil, ErrNoColumns
	}

	table, err := g.Wrap(qb.table)
	if err != nil {
		return "", nil, fmt.Errorf("table wrap error: %w", err)
	}

	cols := make([]string, len(qb.values))
	holders := make([]string, len(qb.values))
	args := make([]any, 0, len(qb.values))

	for i, a := range qb.values {
		col, err := g.Wrap(a.Column)
		if err != nil {
			return "", nil, fmt.Errorf("column wrap error: %w", err)
		}
		cols[i] = col
		holders[i], args = valueSQL(a.Value, args)
	}

	verb := "INSERT"
	if qb.kind == StatementReplace {
		verb = "REPLACE"
	}

	var b strings.Builder
	b.WriteString(verb + " INTO " + table)
	b.WriteString(" (" + strings.Join(cols, ", ") + ")")
	b.WriteString(" VALUES (" + strings.Join(holders, ", ") + ")")

	if qb.kind == StatementInsert && qb.upsertSet {
		updates := qb.upsert
		if len(updates) == 0 {
			updates = qb.values.Columns()
		}

		sets := make([]string, 0, len(updates))
		for _, c := range updates {
			col, err := g.Wrap(c)
			if err != nil {
				return "", nil, fmt.Errorf("upsert column wrap error: %w", err)
			}
			sets = append(sets, col+" = VALUES("+col+")")
		}
		if len(sets) > 0 {
			b.WriteString(" ON DUPLICATE KEY UPDATE ")
			b.WriteString(strings.Join(sets, ", "))
		}
	}

	return b.String(), args, nil
}

// CompileUpdate, UPDATE sorgusu üretir.
func (g *MySQLGrammar) CompileUpdate(qb *QueryBuilder) (string, []any, error) {
	if len(qb.values) == 0 {
		return "", nil, ErrNoColumns
	}

	table, err := g.WrapTable(qb.table, qb.alias)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("UPDATE " + table)

	if err := g.writeJoins(&b, qb.joins); err != nil {
		return "", nil, err
	}

	sets := make([]string, len(qb.values))
	args := make([]any, 0, len(qb.values)+len(qb.wheres.Params))
	for i, a := range qb.values {
		col, err := g.Wrap(a.Column)
		if err != nil {
			return "", nil, fmt.Errorf("column wrap error: %w", err)
		}
		var holder string
		holder, args = valueSQL(a.Value, args)
		sets[i] = col + " = " + holder
	}
	b.WriteString(" SET " + strings.Join(sets, ", "))

	if !qb.wheres.Empty() {
		b.WriteString(" WHERE ")
		b.WriteString(qb.wheres.SQL())
		args = append(args, qb.wheres.Params...)
	}

	if err := g.writeOrders(&b, qb.orders); err != nil {
		return "", nil, err
	}
	g.writeLimit(&b, qb.limit)

	return b.String(), args, nil
}

// CompileDelete, DELETE sorgusu üretir.
func (g *MySQLGrammar) CompileDelete(qb *QueryBuilder) (string, []any, error) {
	table, err := g.WrapTable(qb.table, qb.alias)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	var args []any

	b.WriteString("DELETE FROM " + table)

	if !qb.wheres.Empty() {
		b.WriteString(" WHERE ")
		b.WriteString(qb.wheres.SQL())
		args = append(args, qb.wheres.Params...)
	}

	if err := g.writeOrders(&b, qb.orders); err != nil {
		return "", nil, err
	}
	g.writeLimit(&b, qb.limit)

	return b.String(), args, nil
}

// CompileCreate, CREATE TABLE sorgusu üretir.
func (g *MySQLGrammar) CompileCreate(qb *QueryBuilder) (string, []any, error) {
	bp := qb.blueprint
	if bp == nil || len(bp.columns) == 0 {
		return "", nil, ErrNoColumns
	}

	table, err := g.Wrap(qb.table)
	if err != nil {
		return "", nil, fmt.Errorf("table wrap error: %w", err)
	}

	defs := make([]string, 0, len(bp.columns)+len(bp.indexes))
	for _, column := range bp.columns {
		def, err := g.compileColumn(column)
		if err != nil {
			return "", nil, err
		}
		defs = append(defs, def)
	}
	for _, index := range bp.indexes {
		def, err := g.compileIndex(index)
		if err != nil {
			return "", nil, err
		}
		defs = append(defs, def)
	}

	head := "CREATE TABLE "
	if bp.ifNotExists {
		head += "IF NOT EXISTS "
	}

	sql := head + table + " (\n  " + strings.Join(defs, ",\n  ") +
		"\n) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci"

	return sql, nil, nil
}

// CompileAlter, Blueprint işlemlerini tek bir ALTER TABLE sorgusunda toplar.
func (g *MySQLGrammar) CompileAlter(qb *QueryBuilder) (string, []any, error) {
	bp := qb.blueprint
	if bp == nil || len(bp.ops) == 0 {
		return "", nil, ErrNoColumns
	}

	table, err := g.Wrap(qb.table)
	if err != nil {
		return "", nil, fmt.Errorf("table wrap error: %w", err)
	}

	parts := make([]string, 0, len(bp.ops))
	for _, op := range bp.ops {
		part, err := g.compileAlterOp(op)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, part)
	}

	return "ALTER TABLE " + table + " " + strings.Join(parts, ", "), nil, nil
}

func (g *MySQLGrammar) compileAlterOp(op alterOp) (string, error) {
	switch op.kind {
	case alterAddColumn, alterModifyColumn:
		def, err := g.compileColumn(op.column)
		if err != nil {
			return "", err
		}
		if op.column.After != "" {
			after, err := g.Wrap(op.column.After)
			if err != nil {
				return "", err
			}
			def += " AFTER " + after
		}
		if op.kind == alterModifyColumn {
			return "MODIFY COLUMN " + def, nil
		}
		return "ADD COLUMN " + def, nil

	case alterDropColumn:
		name, err := g.Wrap(op.name)
		if err != nil {
			return "", err
		}
		return "DROP COLUMN " + name, nil

	case alterRenameColumn:
		from, err := g.Wrap(op.name)
		if err != nil {
			return "", err
		}
		to, err := g.Wrap(op.to)
		if err != nil {
			return "", err
		}
		return "RENAME COLUMN " + from + " TO " + to, nil

	case alterAddIndex:
		def, err := g.compileIndex(op.index)
		if err != nil {
			return "", err
		}
		return "ADD " + def, nil

	case alterDropIndex:
		name, err := g.Wrap(op.name)
		if err != nil {
			return "", err
		}
		return "DROP INDEX " + name, nil
	}

	return "", fmt.Errorf("unknown alter operation %d", op.kind)
}

// compileColumn, tek bir kolon tanımı üretir.
func (g *MySQLGrammar) compileColumn(column *Column) (string, error) {
	name, err := g.Wrap(column.Name)
	if err != nil {
		return "", fmt.Errorf("column wrap error: %w", err)
	}

	parts := []string{name}

	switch {
	case column.Type == ColumnDecimal && column.Length > 0:
		parts = append(parts, fmt.Sprintf("%s(%d,%d)", column.Type, column.Length, column.Scale))
	case (column.Type == ColumnString || column.Type == ColumnChar) && column.Length > 0:
		parts = append(parts, fmt.Sprintf("%s(%d)", column.Type, column.Length))
	default:
		parts = append(parts, string(column.Type))
	}

	if column.IsUnsigned {
		parts = append(parts, "UNSIGNED")
	}

	if column.AllowNull {
		parts = append(parts, "NULL")
	} else {
		parts = append(parts, "NOT NULL")
	}

	if column.DefaultValue != nil {
		parts = append(parts, "DEFAULT "+g.defaultValue(column.DefaultValue))
	}

	if column.AutoIncrement {
		parts = append(parts, "AUTO_INCREMENT")
	}
	if column.IsUnique {
		parts = append(parts, "UNIQUE")
	}
	if column.Primary {
		parts = append(parts, "PRIMARY KEY")
	}

	return strings.Join(parts, " "), nil
}

func (g *MySQLGrammar) defaultValue(v any) string {
	switch x := v.(type) {
	case Expr:
		return string(x)
	case string:
		return g.Literal(x)
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", x)
	}
}

// compileIndex, bir index tanımı üretir.
func (g *MySQLGrammar) compileIndex(index Index) (string, error) {
	cols, err := g.WrapMultiple(index.Columns)
	if err != nil {
		return "", fmt.Errorf("index column error: %w", err)
	}
	list := strings.Join(cols, ", ")

	if index.Type == IndexPrimary {
		return "PRIMARY KEY (" + list + ")", nil
	}

	name, err := g.Wrap(index.Name)
	if err != nil {
		return "", fmt.Errorf("index name error: %w", err)
	}

	if index.Type == IndexUnique {
		return "UNIQUE KEY " + name + " (" + list + ")", nil
	}
	return "INDEX " + name + " (" + list + ")", nil
}
