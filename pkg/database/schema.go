// -----------------------------------------------------------------------------
// Blueprint - Table Schema Definition
// -----------------------------------------------------------------------------
// Blueprint, CREATE TABLE ve ALTER TABLE statement'larının tanımını tutar.
// QueryBuilder.CreateTable / AlterTable bir Blueprint callback'i alır ve
// Grammar bunu TEK bir statement'a çevirir. Migration takibi (hangi
// migration çalıştı, rollback vb.) bu katmanın işi değildir.
//
// Örnek:
//
//	qb.Table("users").CreateTable(func(b *Blueprint) {
//	    b.ID()
//	    b.String("user_name", 120)
//	    b.Timestamp("deleted_at").Nullable()
//	    b.Unique("user_name")
//	})
// -----------------------------------------------------------------------------

package database

import (
	"fmt"
	"strings"
)

// ColumnType, bir kolonun MySQL tipidir.
type ColumnType string

const (
	ColumnString         ColumnType = "VARCHAR"
	ColumnChar           ColumnType = "CHAR"
	ColumnText           ColumnType = "TEXT"
	ColumnInteger        ColumnType = "INT"
	ColumnBigInt         ColumnType = "BIGINT"
	ColumnUnsignedBigInt ColumnType = "BIGINT UNSIGNED"
	ColumnBoolean        ColumnType = "TINYINT(1)"
	ColumnDecimal        ColumnType = "DECIMAL"
	ColumnDouble         ColumnType = "DOUBLE"
	ColumnTimestamp      ColumnType = "TIMESTAMP"
	ColumnDateTime       ColumnType = "DATETIME"
	ColumnDate           ColumnType = "DATE"
	ColumnJSON           ColumnType = "JSON"
)

// Column, bir tablo kolonunun tanımıdır.
type Column struct {
	Name          string
	Type          ColumnType
	Length        int
	Scale         int
	AllowNull     bool
	DefaultValue  any
	IsUnsigned    bool
	AutoIncrement bool
	Primary       bool
	IsUnique      bool
	After         string
}

// Nullable, kolonu NULL kabul eder hale getirir.
func (c *Column) Nullable() *Column {
	c.AllowNull = true
	return c
}

// Default, varsayılan değer atar. Expr verilirse olduğu gibi yazılır
// (örn: Expr("CURRENT_TIMESTAMP")).
func (c *Column) Default(value any) *Column {
	c.DefaultValue = value
	return c
}

// Unsigned, sayısal kolonu UNSIGNED yapar.
func (c *Column) Unsigned() *Column {
	c.IsUnsigned = true
	return c
}

// Unique, kolona UNIQUE kısıtı ekler.
func (c *Column) Unique() *Column {
	c.IsUnique = true
	return c
}

// Placed, ALTER TABLE ADD COLUMN için kolonun konumunu belirler (AFTER `x`).
func (c *Column) Placed(after string) *Column {
	c.After = after
	return c
}

// IndexType, index türüdür.
type IndexType string

const (
	IndexPlain   IndexType = "INDEX"
	IndexUnique  IndexType = "UNIQUE"
	IndexPrimary IndexType = "PRIMARY KEY"
)

// Index, bir tablo index'idir.
type Index struct {
	Name    string
	Columns []string
	Type    IndexType
}

// alterKind, ALTER TABLE içindeki tek bir işlemin türüdür.
type alterKind int

const (
	alterAddColumn alterKind = iota
	alterModifyColumn
	alterDropColumn
	alterRenameColumn
	alterAddIndex
	alterDropIndex
)

type alterOp struct {
	kind   alterKind
	column *Column
	index  Index
	name   string
	to     string
}

// Blueprint, bir tablonun kolon ve index tanımlarını toplar.
type Blueprint struct {
	table       string
	columns     []*Column
	indexes     []Index
	ops         []alterOp
	ifNotExists bool
}

// NewBlueprint, verilen tablo için boş bir Blueprint oluşturur.
func NewBlueprint(table string) *Blueprint {
	return &Blueprint{table: table}
}

// IfNotExists, CREATE TABLE IF NOT EXISTS üretilmesini sağlar.
func (b *Blueprint) IfNotExists() *Blueprint {
	b.ifNotExists = true
	return b
}

// ID, auto-increment primary key kolonu ekler.
func (b *Blueprint) ID() *Column {
	return b.addColumn(&Column{
		Name:          "id",
		Type:          ColumnUnsignedBigInt,
		AutoIncrement: true,
		Primary:       true,
	})
}

// UUID, CHAR(36) primary key kolonu ekler.
func (b *Blueprint) UUID(name string) *Column {
	return b.addColumn(&Column{
		Name:    name,
		Type:    ColumnChar,
		Length:  36,
		Primary: true,
	})
}

// String, VARCHAR kolon ekler.
func (b *Blueprint) String(name string, length int) *Column {
	if length <= 0 {
		length = 255
	}
	return b.addColumn(&Column{Name: name, Type: ColumnString, Length: length})
}

// Text, TEXT kolon ekler.
func (b *Blueprint) Text(name string) *Column {
	return b.addColumn(&Column{Name: name, Type: ColumnText})
}

// Integer, INT kolon ekler.
func (b *Blueprint) Integer(name string) *Column {
	return b.addColumn(&Column{Name: name, Type: ColumnInteger})
}

// BigInteger, BIGINT kolon ekler.
func (b *Blueprint) BigInteger(name string) *Column {
	return b.addColumn(&Column{Name: name, Type: ColumnBigInt})
}

// Boolean, TINYINT(1) kolon ekler.
func (b *Blueprint) Boolean(name string) *Column {
	return b.addColumn(&Column{Name: name, Type: ColumnBoolean})
}

// Decimal, DECIMAL(precision, scale) kolon ekler.
func (b *Blueprint) Decimal(name string, precision, scale int) *Column {
	return b.addColumn(&Column{Name: name, Type: ColumnDecimal, Length: precision, Scale: scale})
}

// Double, DOUBLE kolon ekler.
func (b *Blueprint) Double(name string) *Column {
	return b.addColumn(&Column{Name: name, Type: ColumnDouble})
}

// Timestamp, TIMESTAMP kolon ekler.
func (b *Blueprint) Timestamp(name string) *Column {
	return b.addColumn(&Column{Name: name, Type: ColumnTimestamp})
}

// DateTime, DATETIME kolon ekler.
func (b *Blueprint) DateTime(name string) *Column {
	return b.addColumn(&Column{Name: name, Type: ColumnDateTime})
}

// JSON, JSON kolon ekler.
func (b *Blueprint) JSON(name string) *Column {
	return b.addColumn(&Column{Name: name, Type: ColumnJSON})
}

// Timestamps, created_at ve updated_at kolonlarını ekler.
func (b *Blueprint) Timestamps() {
	b.Timestamp("created_at").Nullable()
	b.Timestamp("updated_at").Nullable()
}

// SoftDeletes, soft delete için deleted_at kolonunu ekler.
func (b *Blueprint) SoftDeletes() {
	b.Timestamp("deleted_at").Nullable()
}

// Add, hazır bir kolon tanımı ekler.
func (b *Blueprint) Add(column Column) *Column {
	return b.addColumn(&column)
}

func (b *Blueprint) addColumn(column *Column) *Column {
	b.columns = append(b.columns, column)
	b.ops = append(b.ops, alterOp{kind: alterAddColumn, column: column})
	return column
}

// Unique, unique index ekler.
func (b *Blueprint) Unique(columns ...string) {
	b.addIndex(Index{
		Name:    b.indexName(columns, "unique"),
		Columns: columns,
		Type:    IndexUnique,
	})
}

// Index, normal index ekler.
func (b *Blueprint) Index(columns ...string) {
	b.addIndex(Index{
		Name:    b.indexName(columns, "index"),
		Columns: columns,
		Type:    IndexPlain,
	})
}

func (b *Blueprint) addIndex(index Index) {
	b.indexes = append(b.indexes, index)
	b.ops = append(b.ops, alterOp{kind: alterAddIndex, index: index})
}

func (b *Blueprint) indexName(columns []string, suffix string) string {
	return fmt.Sprintf("%s_%s_%s", b.table, strings.Join(columns, "_"), suffix)
}

// Modify, ALTER TABLE ... MODIFY COLUMN işlemi ekler.
func (b *Blueprint) Modify(column Column) *Column {
	c := &column
	b.ops = append(b.ops, alterOp{kind: alterModifyColumn, column: c})
	return c
}

// DropColumn, ALTER TABLE ... DROP COLUMN işlemi ekler.
func (b *Blueprint) DropColumn(name string) {
	b.ops = append(b.ops, alterOp{kind: alterDropColumn, name: name})
}

// RenameColumn, ALTER TABLE ... RENAME COLUMN işlemi ekler.
func (b *Blueprint) RenameColumn(from, to string) {
	b.ops = append(b.ops, alterOp{kind: alterRenameColumn, name: from, to: to})
}

// DropIndex, ALTER TABLE ... DROP INDEX işlemi ekler.
func (b *Blueprint) DropIndex(name string) {
	b.ops = append(b.ops, alterOp{kind: alterDropIndex, name: name})
}
