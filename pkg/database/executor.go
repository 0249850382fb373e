package database

import (
	"context"
	"database/sql"
)

// -----------------------------------------------------------------------------
// Adapter
// -----------------------------------------------------------------------------
// Adapter, bu katmanın veritabanıyla konuştuğu TEK senkron noktadır:
// bir statement'ı çalıştırıp ham satırları getirir (Fetch) ya da yazma
// statement'ını çalıştırır (Execute). Timeout ve iptal context üzerinden
// adapter'a bırakılır.
//
// SQLAdapter, Go'nun database/sql paketini sarmalar. Testlerde
// pkg/testing.FakeAdapter kullanılır.
// -----------------------------------------------------------------------------

// QueryExecutor, hem *sql.DB (havuz) hem de *sql.Tx (transaction)
// tarafından örtük olarak uygulanan metotları tanımlar. SQLAdapter bu
// arayüze kilitlenir; böylece hem normal sorgularda hem de transaction
// içinde çalışabilir.
type QueryExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Adapter, senkron "execute/fetch" sözleşmesidir.
type Adapter interface {
	Fetch(ctx context.Context, query string, args ...any) ([]RawRow, error)
	Execute(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// TxAdapter, commit/rollback edilebilen bir Adapter'dır.
type TxAdapter interface {
	Adapter
	Commit() error
	Rollback() error
}

// Beginner, transaction başlatabilen adapter'ları tanımlar.
type Beginner interface {
	Begin(ctx context.Context) (TxAdapter, error)
}

// SQLAdapter, bir QueryExecutor'ı Adapter'a çevirir.
type SQLAdapter struct {
	executor QueryExecutor
	grammar  Grammar
}

// NewSQLAdapter, verilen executor (genelde *sql.DB) için adapter oluşturur.
func NewSQLAdapter(executor QueryExecutor) *SQLAdapter {
	return &SQLAdapter{executor: executor, grammar: NewMySQLGrammar()}
}

// Fetch, sorguyu çalıştırır ve tüm satırları RawRow olarak döndürür.
func (a *SQLAdapter) Fetch(ctx context.Context, query string, args ...any) ([]RawRow, error) {
	rows, err := a.executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return rowsToMaps(rows)
}

// Execute, yazma statement'ını çalıştırır.
func (a *SQLAdapter) Execute(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return a.executor.ExecContext(ctx, query, args...)
}

// Begin, yeni bir transaction başlatır. Executor zaten bir transaction
// ise ErrNestedTransaction döner.
func (a *SQLAdapter) Begin(ctx context.Context) (TxAdapter, error) {
	db, ok := a.executor.(*sql.DB)
	if !ok {
		return nil, ErrNestedTransaction
	}
	tx, err := BeginTransaction(ctx, db, a.grammar, nil)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// NewBuilder, bu adapter'a bağlı yeni bir QueryBuilder oluşturur.
func (a *SQLAdapter) NewBuilder() *QueryBuilder {
	return NewBuilder(a, a.grammar)
}
