package storage

import (
	"github.com/biyonik/datamapper/pkg/database"
	"github.com/biyonik/datamapper/pkg/relation"
)

// IDStrategy, yeni kayıtların primary key değerinin nasıl atanacağını belirler.
type IDStrategy string

const (
	// IDAuto, veritabanının AUTO_INCREMENT değerini LastInsertId ile geri okur.
	IDAuto IDStrategy = "auto"
	// IDUUID, insert öncesinde UUID v4 üretir.
	IDUUID IDStrategy = "uuid"
)

// Model, tek bir tablonun Storage tanımıdır. Alan adları çıktı (camelCase)
// adlarıdır; storage kolonları Naming Translator ile türetilir.
//
// Alanlar:
//   - Table, Alias: Ana tablo ve SELECT'lerde kullanılan alias
//   - PrimaryKey: Primary key alanının çıktı adı (varsayılan "id")
//   - Fields: Modelin kendi alanları
//   - Relations: ONE/MANY ilişki ağacı (nil olabilir)
//   - Blacklist: Public çıktıdan çıkarılan alanlar (örn: "password")
//   - CreatedField, UpdatedField, DeletedField: Zaman damgası alanları (opsiyonel)
//   - ScopeSoftDeleted: true ise okumalar DeletedField'ı NULL olan satırlarla sınırlanır
//   - OrderBy: GetRows'un varsayılan sıralaması
//   - Searchable: Search'ün LIKE ile aradığı alanlar (boşsa string tipli alanlar)
//
// Örnek:
//
//	storage.Model{
//	    Table:        "users",
//	    Alias:        "u",
//	    Fields:       []database.Field{{Name: "id", Type: database.TypeInt}, {Name: "userName"}},
//	    Blacklist:    []string{"password"},
//	    CreatedField: "createdAt",
//	    DeletedField: "deletedAt",
//	}
type Model struct {
	Table            string
	Alias            string
	PrimaryKey       string
	IDStrategy       IDStrategy
	Fields           []database.Field
	Relations        *relation.Set
	Blacklist        []string
	CreatedField     string
	UpdatedField     string
	DeletedField     string
	ScopeSoftDeleted bool
	OrderBy          []database.OrderClause
	Searchable       []string
}

// Ref, SELECT'lerde tabloya referans verilen adı döndürür (alias veya tablo).
func (m Model) Ref() string {
	if m.Alias != "" {
		return m.Alias
	}
	return m.Table
}

// withDefaults, boş bırakılan ayarları doldurur ve zaman damgası alanlarını
// alan listesinde yoksa ekler.
func (m Model) withDefaults() Model {
	if m.PrimaryKey == "" {
		m.PrimaryKey = "id"
	}
	if m.IDStrategy == "" {
		m.IDStrategy = IDAuto
	}

	fields := append([]database.Field(nil), m.Fields...)
	has := func(name string) bool {
		for _, f := range fields {
			if f.Name == name {
				return true
			}
		}
		return false
	}

	if !has(m.PrimaryKey) {
		typ := database.TypeInt
		if m.IDStrategy == IDUUID {
			typ = database.TypeString
		}
		fields = append([]database.Field{{Name: m.PrimaryKey, Type: typ}}, fields...)
	}
	for _, name := range []string{m.CreatedField, m.UpdatedField, m.DeletedField} {
		if name != "" && !has(name) {
			fields = append(fields, database.Field{Name: name, Type: database.TypeTime})
		}
	}

	m.Fields = fields
	return m
}

// field, çıktı adına göre model alanını döndürür.
func (m Model) field(name string) (database.Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return database.Field{}, false
}

// searchable, Search'ün kullanacağı alanları döndürür.
func (m Model) searchable() []string {
	if len(m.Searchable) > 0 {
		return m.Searchable
	}
	var names []string
	for _, f := range m.Fields {
		if f.Type == database.TypeString && !f.Raw && !f.Hidden {
			names = append(names, f.Name)
		}
	}
	return names
}
