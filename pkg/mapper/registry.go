// -----------------------------------------------------------------------------
// Field Registry
// -----------------------------------------------------------------------------
// Registry, bir modelin mantıksal alan adlarını (camelCase) storage kolon
// adlarıyla (snake_case) eşleştirir. Model başına bir kez kurulur:
//
//   - Model alanları      → yazılabilir scalar alanlar
//   - ONE join alanları   → sadece okunan scalar alanlar
//   - MANY aggregate'ler  → her zaman liste olan alanlar
//   - Blacklist           → public çıktıdan çıkarılan (ama yazılan) alanlar
//
// Aynı çıktı adının iki kez tanımlanması (alan/ilişki çakışması) bir
// yapılandırma hatasıdır: ErrFieldCollision.
// -----------------------------------------------------------------------------

package mapper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/biyonik/datamapper/pkg/database"
	"github.com/biyonik/datamapper/pkg/relation"
)

var (
	ErrFieldCollision = errors.New("mapper: field name collision")
	ErrUnknownField   = errors.New("mapper: unknown field")
)

type entry struct {
	name     string
	column   string
	typ      database.FieldType
	hidden   bool
	writable bool
	many     bool
	shape    *relation.Shape
}

// Registry, alan tanımlarının değişmez kaydıdır. Kurulduktan sonra eşzamanlı
// okunabilir; Record'lar ise tek bir goroutine'e aittir.
type Registry struct {
	entries []entry
	index   map[string]int
	aliases map[string]int
	folded  map[string]int
}

// NewRegistry, model alanları, derlenmiş ilişki planı ve blacklist'ten
// bir Registry kurar.
//
// Parametreler:
//   - fields: Modelin kendi alanları (Source varsa alias kaydı yapılır)
//   - plan: relation.Compiler çıktısı (nil olabilir)
//   - blacklist: Public çıktıdan hariç tutulacak alan adları
//
// Örnek:
//
//	reg, err := mapper.NewRegistry(
//	    []database.Field{{Name: "id", Type: database.TypeInt}, {Name: "userName"}},
//	    plan,
//	    "password",
//	)
func NewRegistry(fields []database.Field, plan *relation.Plan, blacklist ...string) (*Registry, error) {
	r := &Registry{
		index:   make(map[string]int),
		aliases: make(map[string]int),
		folded:  make(map[string]int),
	}

	for _, f := range fields {
		e := entry{
			name:     f.Name,
			column:   f.Column(),
			typ:      f.Type,
			hidden:   f.Hidden,
			writable: !f.Raw,
		}
		if f.Raw {
			e.column = f.Name
		}
		if err := r.register(e); err != nil {
			return nil, err
		}
	}

	if plan != nil {
		for _, f := range plan.Fields {
			if err := r.register(entry{name: f.Name, column: f.Name, typ: f.Type, hidden: f.Hidden}); err != nil {
				return nil, err
			}
		}
		for _, c := range plan.Columns {
			if err := r.register(entry{name: c.Name, column: c.Name, many: true, shape: c.Shape}); err != nil {
				return nil, err
			}
		}
	}

	for _, name := range blacklist {
		idx, ok := r.resolve(name)
		if !ok {
			return nil, fmt.Errorf("%w: blacklist entry %q", ErrUnknownField, name)
		}
		r.entries[idx].hidden = true
	}

	return r, nil
}

// register, bir alanı kaydeder. Çıktı adı veya storage adı başka bir
// alanla çakışırsa ErrFieldCollision döner.
func (r *Registry) register(e entry) error {
	if strings.TrimSpace(e.name) == "" {
		return fmt.Errorf("%w: empty field name", ErrUnknownField)
	}
	if _, ok := r.resolve(e.name); ok {
		return fmt.Errorf("%w: %q", ErrFieldCollision, e.name)
	}
	if e.column != e.name {
		if _, ok := r.resolve(e.column); ok {
			return fmt.Errorf("%w: %q (column of %q)", ErrFieldCollision, e.column, e.name)
		}
	}

	idx := len(r.entries)
	r.entries = append(r.entries, e)
	r.index[e.name] = idx
	if e.column != e.name {
		r.aliases[e.column] = idx
	}
	if _, ok := r.folded[strings.ToLower(e.name)]; !ok {
		r.folded[strings.ToLower(e.name)] = idx
	}
	return nil
}

// resolve, çıktı adı veya storage adından entry index'ini bulur.
func (r *Registry) resolve(name string) (int, bool) {
	if idx, ok := r.index[name]; ok {
		return idx, true
	}
	if idx, ok := r.aliases[name]; ok {
		return idx, true
	}
	return 0, false
}

// lookup, resolve'a ek olarak büyük/küçük harf duyarsız eşleşme dener
// (struct binding için).
func (r *Registry) lookup(name string) (int, bool) {
	if idx, ok := r.resolve(name); ok {
		return idx, true
	}
	idx, ok := r.folded[strings.ToLower(name)]
	return idx, ok
}

// Has, alan adının (veya storage adının) kayıtlı olup olmadığını söyler.
func (r *Registry) Has(name string) bool {
	_, ok := r.resolve(name)
	return ok
}

// Column, alanın storage kolon adını döndürür.
func (r *Registry) Column(name string) (string, bool) {
	idx, ok := r.resolve(name)
	if !ok {
		return "", false
	}
	return r.entries[idx].column, true
}

// Names, tüm çıktı adlarını kayıt sırasıyla döndürür.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

// ManyNames, MANY ilişki alanlarının adlarını döndürür.
func (r *Registry) ManyNames() []string {
	var names []string
	for _, e := range r.entries {
		if e.many {
			names = append(names, e.name)
		}
	}
	return names
}

// IsHidden, alanın blacklist'te olup olmadığını söyler.
func (r *Registry) IsHidden(name string) bool {
	idx, ok := r.resolve(name)
	return ok && r.entries[idx].hidden
}

// NewRecord, boş bir kayıt oluşturur. MANY alanları boş listeyle başlar.
func (r *Registry) NewRecord() *Record {
	rec := &Record{registry: r, values: make(map[string]any, len(r.entries))}
	for _, e := range r.entries {
		if e.many {
			rec.values[e.name] = []any{}
		}
	}
	return rec
}

// RecordFrom, ad → değer map'inden kayıt oluşturur. Anahtarlar çıktı veya
// storage adı olabilir; bilinmeyen anahtar ErrUnknownField döndürür.
func (r *Registry) RecordFrom(data map[string]any) (*Record, error) {
	rec := r.NewRecord()
	for k, v := range data {
		if err := rec.Set(k, v); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// FromRawRow, driver satırını kayda çevirir.
//
// Scalar alanlar önce çıktı adıyla, bulunamazsa storage adıyla okunur ve
// tanımlı tipe çevrilir. MANY alanlarının aggregate metni Aggregation
// Codec ile decode edilir; kolon yoksa veya NULL ise boş liste kalır.
func (r *Registry) FromRawRow(row database.RawRow) *Record {
	rec := r.NewRecord()

	for _, e := range r.entries {
		v, ok := row[e.name]
		if !ok && e.column != e.name {
			v, ok = row[e.column]
		}
		if !ok {
			continue
		}

		if e.many {
			rec.values[e.name] = decodeMany(e.shape, v)
			continue
		}
		rec.values[e.name] = Coerce(v, e.typ)
	}

	return rec
}

// FromRawRows, satır listesini kayıt listesine çevirir.
func (r *Registry) FromRawRows(rows []database.RawRow) []*Record {
	records := make([]*Record, len(rows))
	for i, row := range rows {
		records[i] = r.FromRawRow(row)
	}
	return records
}

// decodeMany, aggregate değerini decode eder ve alan tiplerini uygular.
func decodeMany(shape *relation.Shape, value any) []any {
	items := shape.Decode(value)
	coerceItems(items, shape)
	return items
}

func coerceItems(items []any, shape *relation.Shape) {
	if shape == nil {
		return
	}

	scalarType := database.TypeAny
	if shape.Scalar {
		for _, typ := range shape.Types {
			scalarType = typ
		}
	}

	for i, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			items[i] = Coerce(item, scalarType)
			continue
		}
		for k, v := range record {
			if child := shape.Child(k); child != nil {
				if nested, ok := v.([]any); ok {
					coerceItems(nested, child)
				}
				continue
			}
			record[k] = Coerce(v, shape.Type(k))
		}
	}
}
