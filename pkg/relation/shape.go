package relation

import "github.com/biyonik/datamapper/pkg/database"

// Shape, bir MANY aggregate kolonunun decode şablonudur: hangi alanların
// hangi tipte olduğu ve hangi alanların iç içe (HEX ile kodlanmış) MANY
// listeleri taşıdığı.
type Shape struct {
	Name   string
	Scalar bool
	Types  map[string]database.FieldType
	Nested []*Shape
}

// Decode, aggregate değerini decode eder ve iç içe MANY alanlarını
// recursive olarak çözer. İç içe alan satırda yoksa (alt sorgu NULL
// döndüyse) boş liste atanır.
//
// Örnek:
//
//	shape.Decode("id-:-1-::-permissions-:-7265...")
//	// → [{"id": "1", "permissions": [...]}]
func (s *Shape) Decode(value any) []any {
	items := DecodeValue(value)
	if s == nil || len(s.Nested) == 0 {
		return items
	}

	for _, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for _, nested := range s.Nested {
			raw, ok := record[nested.Name]
			if !ok {
				record[nested.Name] = []any{}
				continue
			}
			record[nested.Name] = nested.Decode(unhex(raw))
		}
	}

	return items
}

// Type, alanın tanımlı tipini döndürür; bilinmiyorsa TypeAny.
func (s *Shape) Type(field string) database.FieldType {
	if s == nil || s.Types == nil {
		return database.TypeAny
	}
	return s.Types[field]
}

// Child, verilen adla iç içe shape'i döndürür.
func (s *Shape) Child(name string) *Shape {
	if s == nil {
		return nil
	}
	for _, nested := range s.Nested {
		if nested.Name == name {
			return nested
		}
	}
	return nil
}
