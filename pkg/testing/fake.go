// -----------------------------------------------------------------------------
// Testing Helpers - Fake Adapter
// -----------------------------------------------------------------------------
// Bu package, veritabanı olmadan Storage/QueryBuilder testleri yazmayı
// sağlar. FakeAdapter, database.Adapter ve database.Beginner'ı uygular:
//
//   - Fetch/Execute çağrılarını (SQL + parametre) sırasıyla kaydeder
//   - OnFetch/OnExec ile SQL parçasına göre cevap script'lenir
//   - FailFetch/FailExec ile hata döndürülür
//   - Begin, aynı kaydı paylaşan bir FakeTx döndürür
//
// Kullanım:
//
//	func TestUserRows(t *testing.T) {
//	    fake := dmtest.NewFakeAdapter()
//	    fake.OnFetch("FROM `users`", database.RawRow{"id": int64(1)})
//
//	    store := storage.New(fake, model)
//	    rows, _ := store.GetRows(ctx, nil)
//
//	    fake.AssertExecuted(t, "SELECT")
//	}
// -----------------------------------------------------------------------------

package testing

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/biyonik/datamapper/pkg/database"
)

// Statement, adapter'a gönderilmiş tek bir SQL çağrısıdır.
type Statement struct {
	Query string
	Args  []any
}

// FakeResult, sql.Result'ın sabit değerli uygulamasıdır.
type FakeResult struct {
	ID       int64
	Affected int64
}

// LastInsertId implements sql.Result.
func (r FakeResult) LastInsertId() (int64, error) { return r.ID, nil }

// RowsAffected implements sql.Result.
func (r FakeResult) RowsAffected() (int64, error) { return r.Affected, nil }

type fetchStub struct {
	match string
	rows  []database.RawRow
	err   error
}

type execStub struct {
	match  string
	result FakeResult
	err    error
}

// FakeAdapter, script'lenebilir bir bellek içi adapter'dır. Stub'lar
// eklenme sırasıyla denenir ve ilk eşleşen stub tüketilir. Eşleşen stub
// yoksa Fetch boş satır listesi, Execute ise artan bir insert id döner.
type FakeAdapter struct {
	mu         sync.Mutex
	statements []Statement
	fetches    []fetchStub
	execs      []execStub
	nextID     int64

	// Commits ve Rollbacks, FakeTx üzerinden yapılan çağrıları sayar.
	Commits   int
	Rollbacks int
}

// NewFakeAdapter, boş bir FakeAdapter oluşturur.
func NewFakeAdapter() *FakeAdapter {
	return &FakeAdapter{}
}

// OnFetch, query'si match içeren bir sonraki Fetch çağrısına rows döndürür.
// match boşsa her sorguyla eşleşir.
func (f *FakeAdapter) OnFetch(match string, rows ...database.RawRow) *FakeAdapter {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rows == nil {
		rows = []database.RawRow{}
	}
	f.fetches = append(f.fetches, fetchStub{match: match, rows: rows})
	return f
}

// FailFetch, query'si match içeren bir sonraki Fetch çağrısında err döndürür.
func (f *FakeAdapter) FailFetch(match string, err error) *FakeAdapter {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, fetchStub{match: match, err: err})
	return f
}

// OnExec, query'si match içeren bir sonraki Execute çağrısının sonucunu belirler.
func (f *FakeAdapter) OnExec(match string, lastID, affected int64) *FakeAdapter {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, execStub{match: match, result: FakeResult{ID: lastID, Affected: affected}})
	return f
}

// FailExec, query'si match içeren bir sonraki Execute çağrısında err döndürür.
func (f *FakeAdapter) FailExec(match string, err error) *FakeAdapter {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, execStub{match: match, err: err})
	return f
}

// Fetch implements database.Adapter.
func (f *FakeAdapter) Fetch(_ context.Context, query string, args ...any) ([]database.RawRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record(query, args)
	for i, stub := range f.fetches {
		if stub.match != "" && !strings.Contains(query, stub.match) {
			continue
		}
		f.fetches = append(f.fetches[:i], f.fetches[i+1:]...)
		if stub.err != nil {
			return nil, stub.err
		}
		return copyRows(stub.rows), nil
	}
	return []database.RawRow{}, nil
}

// Execute implements database.Adapter.
func (f *FakeAdapter) Execute(_ context.Context, query string, args ...any) (sql.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record(query, args)
	for i, stub := range f.execs {
		if stub.match != "" && !strings.Contains(query, stub.match) {
			continue
		}
		f.execs = append(f.execs[:i], f.execs[i+1:]...)
		if stub.err != nil {
			return nil, stub.err
		}
		return stub.result, nil
	}

	f.nextID++
	return FakeResult{ID: f.nextID, Affected: 1}, nil
}

// Begin implements database.Beginner.
func (f *FakeAdapter) Begin(_ context.Context) (database.TxAdapter, error) {
	f.mu.Lock()
	f.record("BEGIN", nil)
	f.mu.Unlock()
	return &FakeTx{FakeAdapter: f}, nil
}

func (f *FakeAdapter) record(query string, args []any) {
	f.statements = append(f.statements, Statement{Query: query, Args: append([]any(nil), args...)})
}

// Statements, kaydedilen tüm çağrıların kopyasını döndürür.
func (f *FakeAdapter) Statements() []Statement {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Statement(nil), f.statements...)
}

// Queries, kaydedilen SQL metinlerini döndürür.
func (f *FakeAdapter) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.statements))
	for i, s := range f.statements {
		out[i] = s.Query
	}
	return out
}

// Last, son çağrıyı döndürür; hiç çağrı yoksa boş Statement.
func (f *FakeAdapter) Last() Statement {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.statements) == 0 {
		return Statement{}
	}
	return f.statements[len(f.statements)-1]
}

// Reset, kayıtları ve bekleyen stub'ları temizler.
func (f *FakeAdapter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statements = nil
	f.fetches = nil
	f.execs = nil
}

// FakeTx, FakeAdapter'ın transaction görünümüdür; çağrılar aynı kayda yazılır.
type FakeTx struct {
	*FakeAdapter
}

// Begin, iç içe transaction'ı reddeder.
func (tx *FakeTx) Begin(context.Context) (database.TxAdapter, error) {
	return nil, database.ErrNestedTransaction
}

// Commit implements database.TxAdapter.
func (tx *FakeTx) Commit() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.record("COMMIT", nil)
	tx.Commits++
	return nil
}

// Rollback implements database.TxAdapter.
func (tx *FakeTx) Rollback() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.record("ROLLBACK", nil)
	tx.Rollbacks++
	return nil
}

func copyRows(rows []database.RawRow) []database.RawRow {
	out := make([]database.RawRow, len(rows))
	for i, row := range rows {
		cp := make(database.RawRow, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}

// -----------------------------------------------------------------------------
// Assertion Helpers
// -----------------------------------------------------------------------------

// AssertExecuted, en az bir çağrının SQL metninin needle içerdiğini doğrular.
func (f *FakeAdapter) AssertExecuted(t *testing.T, needle string) {
	t.Helper()
	for _, q := range f.Queries() {
		if strings.Contains(q, needle) {
			return
		}
	}
	t.Errorf("Expected a statement containing '%s', got %s", needle, formatQueries(f.Queries()))
}

// AssertNotExecuted, hiçbir çağrının SQL metninin needle içermediğini doğrular.
func (f *FakeAdapter) AssertNotExecuted(t *testing.T, needle string) {
	t.Helper()
	for _, q := range f.Queries() {
		if strings.Contains(q, needle) {
			t.Errorf("Expected no statement containing '%s', found '%s'", needle, q)
			return
		}
	}
}

// AssertCount, kaydedilen çağrı sayısını doğrular.
func (f *FakeAdapter) AssertCount(t *testing.T, expected int) {
	t.Helper()
	if got := len(f.Queries()); got != expected {
		t.Errorf("Expected %d statements, got %d: %s", expected, got, formatQueries(f.Queries()))
	}
}

func formatQueries(queries []string) string {
	var b strings.Builder
	for i, q := range queries {
		fmt.Fprintf(&b, "\n  [%d] %s", i, q)
	}
	return b.String()
}

// -----------------------------------------------------------------------------
// Factory Pattern Helpers
// -----------------------------------------------------------------------------

// Factory, varsayılan değerlerden test satırı üretir.
type Factory struct {
	defaults map[string]any
}

// NewFactory, verilen varsayılanlarla bir Factory oluşturur.
func NewFactory(defaults map[string]any) *Factory {
	return &Factory{defaults: defaults}
}

// Make, varsayılanların üzerine overrides uygulanmış yeni bir map döndürür.
func (f *Factory) Make(overrides map[string]any) map[string]any {
	result := make(map[string]any, len(f.defaults)+len(overrides))
	for k, v := range f.defaults {
		result[k] = v
	}
	for k, v := range overrides {
		result[k] = v
	}
	return result
}

// Row, Make sonucunu driver satırı olarak döndürür.
func (f *Factory) Row(overrides map[string]any) database.RawRow {
	return database.RawRow(f.Make(overrides))
}

// UserFactory, örnek kullanıcı satırları için varsayılanları taşır.
func UserFactory() *Factory {
	return NewFactory(map[string]any{
		"id":       int64(1),
		"userName": "test-user",
		"email":    "test@example.com",
		"active":   int64(1),
	})
}
