package mapper

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/biyonik/datamapper/pkg/database"
	"github.com/biyonik/datamapper/pkg/naming"
)

// -----------------------------------------------------------------------------
// Reflection-Based Record Binder
// -----------------------------------------------------------------------------
// Decode edilmiş kayıtları (ve iç içe MANY listelerini) Go struct'larına
// bağlar. Struct alan → kayıt anahtarı eşlemesi tip başına bir kez çıkarılır
// ve cache'lenir.
//
// Anahtar önceliği:
//   - `db:"userName"` tag'i (storage adı da olur: `db:"user_name"`)
//   - Tag yoksa alan adının camelCase hali (UserName → userName, ID → id)
//   - `db:"-"` alanı atlar
// -----------------------------------------------------------------------------

type binderCacheEntry struct {
	fields     []boundField
	lastAccess time.Time
}

type boundField struct {
	key   string
	index []int
}

// Binder, struct alan haritalarını cache'ler.
type Binder struct {
	cache map[reflect.Type]*binderCacheEntry
	mu    sync.RWMutex
}

// NewBinder, boş cache'li bir Binder oluşturur.
func NewBinder() *Binder {
	return &Binder{cache: make(map[reflect.Type]*binderCacheEntry)}
}

var defaultBinder = NewBinder()

// Bind, kaydı dest struct pointer'ına bağlar.
//
// Örnek:
//
//	var u models.User
//	if err := mapper.Bind(rec, &u); err != nil {
//	    return err
//	}
func Bind(rec *Record, dest any) error {
	return defaultBinder.Bind(rec, dest)
}

// BindAll, kayıt listesini dest slice pointer'ına bağlar.
func BindAll(records []*Record, dest any) error {
	return defaultBinder.BindAll(records, dest)
}

// Bind, kaydı dest struct pointer'ına bağlar.
func (b *Binder) Bind(rec *Record, dest any) error {
	destValue := reflect.ValueOf(dest)
	if destValue.Kind() != reflect.Ptr || destValue.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("mapper: dest bir struct pointer olmalıdır, %T alındı", dest)
	}

	lookup := func(key string) (any, bool) {
		idx, ok := rec.registry.lookup(key)
		if !ok {
			return nil, false
		}
		v, ok := rec.values[rec.registry.entries[idx].name]
		return v, ok
	}

	return b.bindStruct(lookup, destValue.Elem())
}

// BindAll, kayıt listesini dest slice pointer'ına bağlar.
func (b *Binder) BindAll(records []*Record, dest any) error {
	sliceValue := reflect.ValueOf(dest)
	if sliceValue.Kind() != reflect.Ptr || sliceValue.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("mapper: dest bir slice pointer olmalıdır, %T alındı", dest)
	}

	sliceElem := sliceValue.Elem()
	elemType := sliceElem.Type().Elem()
	isPtr := elemType.Kind() == reflect.Ptr
	if isPtr {
		elemType = elemType.Elem()
	}

	out := reflect.MakeSlice(sliceElem.Type(), 0, len(records))
	for _, rec := range records {
		item := reflect.New(elemType)
		if err := b.Bind(rec, item.Interface()); err != nil {
			return err
		}
		if isPtr {
			out = reflect.Append(out, item)
		} else {
			out = reflect.Append(out, item.Elem())
		}
	}

	sliceElem.Set(out)
	return nil
}

// Prune, maxAge'den uzun süredir kullanılmayan cache girdilerini siler ve
// silinen girdi sayısını döndürür.
func (b *Binder) Prune(maxAge time.Duration) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	cleaned := 0
	for typ, entry := range b.cache {
		if now.Sub(entry.lastAccess) > maxAge {
			delete(b.cache, typ)
			cleaned++
		}
	}
	return cleaned
}

// structFields, bir struct tipini analiz eder ve cache'den döndürür.
func (b *Binder) structFields(structType reflect.Type) []boundField {
	b.mu.RLock()
	if entry, ok := b.cache[structType]; ok {
		b.mu.RUnlock()
		b.mu.Lock()
		entry.lastAccess = time.Now()
		b.mu.Unlock()
		return entry.fields
	}
	b.mu.RUnlock()

	fields := analyzeStruct(structType, nil)

	b.mu.Lock()
	defer b.mu.Unlock()
	if entry, ok := b.cache[structType]; ok {
		entry.lastAccess = time.Now()
		return entry.fields
	}
	b.cache[structType] = &binderCacheEntry{fields: fields, lastAccess: time.Now()}
	return fields
}

func analyzeStruct(structType reflect.Type, parent []int) []boundField {
	var fields []boundField

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		index := append(append([]int(nil), parent...), i)

		// Embedded struct'ları özyineli işle
		if field.Anonymous && field.Type.Kind() == reflect.Struct && field.Tag.Get("db") == "" {
			fields = append(fields, analyzeStruct(field.Type, index)...)
			continue
		}
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "-" {
			continue
		}
		if comma := strings.IndexByte(tag, ','); comma >= 0 {
			tag = tag[:comma]
		}
		if tag == "" {
			tag = defaultKey(field.Name)
		}

		fields = append(fields, boundField{key: tag, index: index})
	}

	return fields
}

// defaultKey, Go alan adından kayıt anahtarı türetir: UserName → userName, ID → id.
func defaultKey(name string) string {
	if strings.ToUpper(name) == name {
		return strings.ToLower(name)
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func (b *Binder) bindStruct(lookup func(string) (any, bool), dest reflect.Value) error {
	for _, f := range b.structFields(dest.Type()) {
		value, ok := lookup(f.key)
		if !ok {
			continue
		}
		field := dest.FieldByIndex(f.index)
		if !field.CanSet() {
			continue
		}
		if err := b.assign(field, value); err != nil {
			return fmt.Errorf("mapper: field %q: %w", f.key, err)
		}
	}
	return nil
}

var timeType = reflect.TypeOf(time.Time{})

// assign, değeri hedef alana tipine uygun şekilde atar.
func (b *Binder) assign(field reflect.Value, value any) error {
	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	if field.Kind() == reflect.Ptr {
		target := reflect.New(field.Type().Elem())
		if err := b.assign(target.Elem(), value); err != nil {
			return err
		}
		field.Set(target)
		return nil
	}

	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(field.Type()) {
		field.Set(v)
		return nil
	}

	switch {
	case field.Type() == timeType:
		t, ok := toTime(value)
		if !ok {
			return fmt.Errorf("cannot convert %T to time.Time", value)
		}
		field.Set(reflect.ValueOf(t))
		return nil

	case field.Kind() == reflect.Struct:
		m, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("cannot bind %T to struct", value)
		}
		return b.bindStruct(mapLookup(m), field)

	case field.Kind() == reflect.Slice:
		items, ok := toAnySlice(value)
		if !ok {
			return fmt.Errorf("cannot bind %T to slice", value)
		}
		out := reflect.MakeSlice(field.Type(), len(items), len(items))
		for i, item := range items {
			if err := b.assign(out.Index(i), item); err != nil {
				return err
			}
		}
		field.Set(out)
		return nil
	}

	converted := convertScalar(value, field.Type())
	if !converted.IsValid() {
		return fmt.Errorf("cannot convert %T to %s", value, field.Type())
	}
	field.Set(converted)
	return nil
}

// convertScalar, temel tipler arasında güvenli dönüşüm yapar. string ↔ sayı
// dönüşümü reflect.Convert ile değil Coerce ile yapılır.
func convertScalar(value any, target reflect.Type) reflect.Value {
	var typ database.FieldType
	switch target.Kind() {
	case reflect.String:
		typ = database.TypeString
	case reflect.Bool:
		typ = database.TypeBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		typ = database.TypeInt
	case reflect.Float32, reflect.Float64:
		typ = database.TypeFloat
	default:
		return reflect.Value{}
	}

	coerced := reflect.ValueOf(Coerce(value, typ))
	if coerced.Kind() != target.Kind() && !(isNumeric(coerced.Kind()) && isNumeric(target.Kind())) {
		return reflect.Value{}
	}
	if !coerced.Type().ConvertibleTo(target) {
		return reflect.Value{}
	}
	return coerced.Convert(target)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// mapLookup, iç içe kayıtlar için çıktı/storage adı duyarsız arama yapar.
func mapLookup(m map[string]any) func(string) (any, bool) {
	return func(key string) (any, bool) {
		if v, ok := m[key]; ok {
			return v, true
		}
		if v, ok := m[naming.ToLogical(key)]; ok {
			return v, true
		}
		if v, ok := m[naming.ToStorage(key)]; ok {
			return v, true
		}
		for k, v := range m {
			if strings.EqualFold(k, key) {
				return v, true
			}
		}
		return nil, false
	}
}
