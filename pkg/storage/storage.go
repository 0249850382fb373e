// -----------------------------------------------------------------------------
// Storage Orchestrator
// -----------------------------------------------------------------------------
// Storage, bir Model için Query Clause Builder, Join Compiler ve Data
// Mapper'ı birleştirir:
//
//   okuma:  filtre → normalize → SELECT (+ join + aggregate) → adapter → decode
//   yazma:  Record → ToStorageRow → INSERT/UPDATE/DELETE → adapter
//
// Her çağrı kendi builder'ını kurar; çağrılar arasında saklanan tek durum
// son hatadır (LastError). Yapılandırma hataları (adapter yok, tablo yok,
// alan/ilişki çakışması) New sırasında yakalanır, son hata olarak kaydedilir
// ve her operasyon aynı hatayı döndürür.
//
// Kullanım:
//
//	store := storage.New(adapter, models.Users(), storage.WithLogger(logger))
//	rows, err := store.GetRows(ctx, []database.Filter{database.Equals("status", "active")}, 20)
//	for _, rec := range rows.Rows {
//	    fmt.Println(rec.Value("userName"), rec.Value("roles"))
//	}
// -----------------------------------------------------------------------------

package storage

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/biyonik/datamapper/pkg/cache"
	"github.com/biyonik/datamapper/pkg/database"
	"github.com/biyonik/datamapper/pkg/mapper"
	"github.com/biyonik/datamapper/pkg/naming"
	"github.com/biyonik/datamapper/pkg/relation"
)

var (
	// ErrNoModelTable, tablo adı olmayan Model için döner.
	ErrNoModelTable = errors.New("storage: model has no table")

	// ErrNotFound, Get'in aradığı kayıt yoksa döner.
	ErrNotFound = errors.New("storage: record not found")

	// ErrDuplicateEntry, unique key ihlalinde döner; driver hatası zincirde kalır.
	ErrDuplicateEntry = errors.New("storage: duplicate entry")

	// ErrMissingID, primary key değeri olmayan kayıt üzerinde Update istendiğinde döner.
	ErrMissingID = errors.New("storage: record has no primary key value")

	// ErrNoTransactions, adapter transaction desteklemiyorsa döner.
	ErrNoTransactions = errors.New("storage: adapter does not support transactions")
)

// Option, Storage yapılandırma fonksiyonudur.
type Option func(*Storage)

// WithLogger, Storage'ın log yazacağı logger'ı belirler.
func WithLogger(logger *log.Logger) Option {
	return func(s *Storage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDebug, çalıştırılan her statement'ın loglanmasını sağlar.
func WithDebug(debug bool) Option {
	return func(s *Storage) { s.debug = debug }
}

// WithGrammar, varsayılan MySQL grammar'ı yerine başka bir grammar kullanır.
func WithGrammar(grammar database.Grammar) Option {
	return func(s *Storage) {
		if grammar != nil {
			s.grammar = grammar
		}
	}
}

// WithCache, okuma sonuçlarını verilen cache'te ttl süresince saklar.
// Her yazma, tablonun cache generation'ını artırır.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Storage) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithClock, zaman damgaları için kullanılacak saati belirler.
func WithClock(now func() time.Time) Option {
	return func(s *Storage) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator, IDUUID modelleri için id üretecini belirler.
func WithIDGenerator(gen func() string) Option {
	return func(s *Storage) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// Storage, tek bir Model üzerinde çalışan orchestrator'dır.
type Storage struct {
	adapter  database.Adapter
	grammar  database.Grammar
	model    Model
	registry *mapper.Registry
	plan     *relation.Plan
	columns  map[string]string
	tables   []string // okumaların dokunduğu tablolar, ilki modelin tablosu

	logger   *log.Logger
	debug    bool
	cache    cache.Cache
	cacheTTL time.Duration
	now      func() time.Time
	newID    func() string

	configErr error
	mu        sync.Mutex
	lastErr   error
}

// New, adapter ve model için bir Storage oluşturur.
//
// Yapılandırma hataları panic veya dönüş değeri olarak değil, son hata
// olarak kaydedilir: LastError() ile okunabilir ve her operasyon bu hatayı
// döndürür.
//
// Parametreler:
//   - adapter: Fetch/Execute sözleşmesini uygulayan bağlantı (SQLAdapter, Transaction, FakeAdapter)
//   - model: Tablo, alan ve ilişki tanımı
//   - opts: WithLogger, WithDebug, WithCache, ...
//
// Örnek:
//
//	store := storage.New(database.NewSQLAdapter(db), model, storage.WithDebug(cfg.App.Debug))
//	if err := store.LastError(); err != nil {
//	    log.Fatal(err)
//	}
func New(adapter database.Adapter, model Model, opts ...Option) *Storage {
	s := &Storage{
		adapter: adapter,
		grammar: database.NewMySQLGrammar(),
		model:   model.withDefaults(),
		logger:  log.New(io.Discard, "", 0),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.configure(); err != nil {
		s.configErr = err
		s.fail("configure", err)
	}
	return s
}

func (s *Storage) configure() error {
	if s.adapter == nil {
		return database.ErrNoAdapter
	}
	if strings.TrimSpace(s.model.Table) == "" {
		return ErrNoModelTable
	}

	set := s.model.Relations
	if set == nil {
		set = relation.NewSet()
	}
	plan, err := relation.NewCompiler(s.grammar).Compile(set)
	if err != nil {
		return fmt.Errorf("storage: compile relations of %q: %w", s.model.Table, err)
	}

	registry, err := mapper.NewRegistry(s.model.Fields, plan, s.model.Blacklist...)
	if err != nil {
		return fmt.Errorf("storage: fields of %q: %w", s.model.Table, err)
	}

	for _, name := range []string{s.model.CreatedField, s.model.UpdatedField, s.model.DeletedField} {
		if name != "" && !registry.Has(name) {
			return fmt.Errorf("%w: timestamp field %q", mapper.ErrUnknownField, name)
		}
	}

	s.plan = plan
	s.registry = registry
	s.columns = s.filterColumns()
	s.tables = readTables(s.model.Table, set)
	return nil
}

// readTables, modelin tablosunu ve ilişkilerin eriştiği tüm tabloları
// (tekrarsız, model tablosu başta, diğerleri sıralı) döndürür.
func readTables(table string, set *relation.Set) []string {
	seen := map[string]bool{table: true}
	var others []string
	for i := 0; i < set.Len(); i++ {
		t := set.Get(i).Table
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		others = append(others, t)
	}
	sort.Strings(others)
	return append([]string{table}, others...)
}

// filterColumns, filtrelerde kullanılabilecek çıktı/storage adlarını
// nitelikli kolonlara eşler: model alanları "ref.kolon", ONE join
// alanları "joinRef.kaynak".
func (s *Storage) filterColumns() map[string]string {
	columns := make(map[string]string)
	ref := s.model.Ref()

	for _, f := range s.model.Fields {
		if f.Raw {
			continue
		}
		qualified := f.Column()
		if !strings.Contains(qualified, ".") {
			qualified = ref + "." + qualified
		}
		columns[f.Name] = qualified
		columns[f.Column()] = qualified
	}

	for _, j := range s.plan.Joins {
		for _, f := range j.Fields {
			if f.Raw {
				continue
			}
			if _, taken := columns[f.Name]; !taken {
				columns[f.Name] = j.Ref() + "." + f.Column()
			}
		}
	}

	return columns
}

// Model, varsayılanları uygulanmış model tanımını döndürür.
func (s *Storage) Model() Model {
	return s.model
}

// Registry, modelin alan kaydını döndürür (yapılandırma hatasında nil).
func (s *Storage) Registry() *mapper.Registry {
	return s.registry
}

// Plan, derlenmiş ilişki planını döndürür.
func (s *Storage) Plan() *relation.Plan {
	return s.plan
}

// NewRecord, modelin Registry'sine bağlı boş bir kayıt oluşturur.
func (s *Storage) NewRecord() *mapper.Record {
	if s.registry == nil {
		return nil
	}
	return s.registry.NewRecord()
}

// Record, map'ten kayıt oluşturur. Anahtarlar çıktı veya storage adı olabilir.
func (s *Storage) Record(data map[string]any) (*mapper.Record, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rec, err := s.registry.RecordFrom(data)
	if err != nil {
		return nil, s.fail("record", err)
	}
	return rec, nil
}

// LastError, son başarısız operasyonun hatasını döndürür.
func (s *Storage) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearError, kayıtlı son hatayı temizler. Yapılandırma hatası temizlenmez.
func (s *Storage) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = s.configErr
}

func (s *Storage) ready() error {
	if s.configErr != nil {
		return s.configErr
	}
	return nil
}

// fail, hatayı son hata olarak kaydeder, loglar ve geri döndürür.
func (s *Storage) fail(op string, err error) error {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()

	s.logger.Printf("❌ storage %s [%s]: %v", op, s.model.Table, err)
	return err
}

func (s *Storage) trace(sqlStr string, args []any) {
	if s.debug {
		s.logger.Printf("🔍 %s %v", sqlStr, args)
	}
}

// builder, adapter'a bağlı boş bir builder döndürür.
func (s *Storage) builder() *database.QueryBuilder {
	return database.NewBuilder(s.adapter, s.grammar)
}

// pkColumn, primary key'in storage kolon adını döndürür.
func (s *Storage) pkColumn() string {
	col, _ := s.registry.Column(s.model.PrimaryKey)
	return col
}

// quoteFilterColumn, filtre kolonlarını nitelikli ve sarmalanmış hale getirir.
// Bilinmeyen kolonlar Naming Translator'dan geçirilir.
func (s *Storage) quoteFilterColumn(column string) string {
	qualified, ok := s.columns[column]
	if !ok {
		qualified = naming.ToStorage(column)
	}
	wrapped, err := s.grammar.Wrap(qualified)
	if err != nil {
		return qualified
	}
	return wrapped
}

// predicates, çağıranın filtrelerini modelin kolonlarına göre normalize eder.
func (s *Storage) predicates(filters []database.Filter) database.Predicates {
	return database.Normalizer{KeepNames: true, Quote: s.quoteFilterColumn}.Normalize(filters)
}
