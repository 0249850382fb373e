package mapper

import (
	"encoding/json"
	"fmt"

	"github.com/biyonik/datamapper/pkg/database"
)

// Record, Registry'ye bağlı tek bir kayıttır. Eşzamanlı yazma için güvenli
// değildir; her mantıksal kayıt kendi instance'ını kullanmalıdır.
type Record struct {
	registry *Registry
	values   map[string]any
}

// Registry, kaydın bağlı olduğu Registry'yi döndürür.
func (rec *Record) Registry() *Registry {
	return rec.registry
}

// Get, alanın değerini döndürür. name çıktı adı veya storage adı olabilir.
//
// Örnek:
//
//	v, err := rec.Get("userName")
//	v, err := rec.Get("user_name") // aynı alan
func (rec *Record) Get(name string) (any, error) {
	idx, ok := rec.registry.resolve(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return rec.values[rec.registry.entries[idx].name], nil
}

// Value, Get'in hata döndürmeyen hali; bilinmeyen alan için nil.
func (rec *Record) Value(name string) any {
	v, _ := rec.Get(name)
	return v
}

// Set, alanın değerini atar. MANY alanlarına nil atanırsa boş liste kalır;
// slice olmayan değer atanamaz.
func (rec *Record) Set(name string, value any) error {
	idx, ok := rec.registry.resolve(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	e := rec.registry.entries[idx]

	if e.many {
		switch v := value.(type) {
		case nil:
			rec.values[e.name] = []any{}
		case []any:
			rec.values[e.name] = v
		default:
			items, ok := toAnySlice(value)
			if !ok {
				return fmt.Errorf("mapper: field %q expects a list, got %T", e.name, value)
			}
			rec.values[e.name] = items
		}
		return nil
	}

	rec.values[e.name] = value
	return nil
}

// IsSet, alana nil olmayan bir değer atanıp atanmadığını söyler.
func (rec *Record) IsSet(name string) bool {
	v, err := rec.Get(name)
	return err == nil && v != nil
}

// ToStorageRow, yazma için storage adlı, sıralı kolon/değer listesi üretir.
//
// nil scalar değerler, MANY alanları ve sadece okunan (join/raw) alanlar
// atlanır. Blacklist yazmayı etkilemez. JSON tipli alanlardaki map/slice
// değerler JSON metnine çevrilir.
func (rec *Record) ToStorageRow() database.Values {
	var values database.Values

	for _, e := range rec.registry.entries {
		if e.many || !e.writable {
			continue
		}
		v := rec.values[e.name]
		if v == nil {
			continue
		}
		if e.typ == database.TypeJSON {
			v = jsonValue(v)
		}
		values = append(values, database.Assignment{Column: e.column, Value: v})
	}

	return values
}

// ToPublicRecord, blacklist dışındaki alanları çıktı adlarıyla döndürür.
// MANY alanları her zaman listedir.
func (rec *Record) ToPublicRecord() map[string]any {
	out := make(map[string]any, len(rec.values))
	for _, e := range rec.registry.entries {
		if e.hidden {
			continue
		}
		out[e.name] = rec.values[e.name]
	}
	return out
}

// Map, gizli alanlar dahil tüm değerleri çıktı adlarıyla döndürür.
func (rec *Record) Map() map[string]any {
	out := make(map[string]any, len(rec.values))
	for _, e := range rec.registry.entries {
		out[e.name] = rec.values[e.name]
	}
	return out
}

// Merge, başka bir kaydın nil olmayan değerlerini bu kayda kopyalar.
func (rec *Record) Merge(other *Record) {
	for name, v := range other.values {
		if v == nil {
			continue
		}
		if _, ok := rec.registry.index[name]; ok {
			rec.values[name] = v
		}
	}
}

// MarshalJSON, kaydı public haliyle JSON'a çevirir.
func (rec *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(rec.ToPublicRecord())
}

// PublicRecords, kayıt listesini public map listesine çevirir.
func PublicRecords(records []*Record) []map[string]any {
	out := make([]map[string]any, len(records))
	for i, rec := range records {
		out[i] = rec.ToPublicRecord()
	}
	return out
}

func jsonValue(v any) any {
	switch v.(type) {
	case string, []byte, database.Expr:
		return v
	}
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	return string(b)
}
