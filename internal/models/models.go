// -----------------------------------------------------------------------------
// Built-in Models
// -----------------------------------------------------------------------------
// mapperctl'in YAML dosyası olmadan da çalışabilmesi için gömülü örnek
// modeller. Şema:
//
//	users ──< user_roles >── roles ──< role_permissions
//	  └──> countries
//
// users.roles bir MANY aggregate kolonudur; her rolün permissionIds'i iç içe
// (HEX kodlu) bir scalar MANY'dir. users.country* alanları ONE join'dir.
// -----------------------------------------------------------------------------

package models

import (
	"fmt"
	"sort"

	"github.com/biyonik/datamapper/pkg/database"
	"github.com/biyonik/datamapper/pkg/relation"
	"github.com/biyonik/datamapper/pkg/storage"
)

// User, Users modelinin bağlanabilir struct karşılığıdır.
type User struct {
	BaseModel
	UserName    string         `json:"userName"`
	Email       string         `json:"email"`
	Password    string         `json:"-"`
	Active      bool           `json:"active"`
	Settings    map[string]any `json:"settings,omitempty"`
	CountryID   *int64         `json:"countryId,omitempty"`
	CountryName *string        `json:"countryName,omitempty"`
	CountryCode *string        `json:"countryCode,omitempty"`
	Roles       []Role         `json:"roles"`
}

// Role, users.roles listesinin bir elemanıdır.
type Role struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	PermissionIDs []int64 `json:"permissionIds" db:"permissionIds"`
}

// Country, Countries modelinin struct karşılığıdır.
type Country struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Users, roller (ve izinleri) ile ülke bilgisini birlikte okuyan kullanıcı
// modelidir. Şifre public çıktıdan çıkarılır; silme soft delete'tir.
func Users() storage.Model {
	set := relation.NewSet()

	roles := set.Add(relation.Relation{
		Name:  "roles",
		Kind:  relation.Many,
		Table: "user_roles",
		Alias: "ur",
		On:    []database.On{{Left: "u.id", Right: "ur.user_id"}},
		Order: []database.OrderClause{{Column: "r.id", Direction: database.OrderAsc}},
	})
	role, _ := set.AddChild(roles, relation.Relation{
		Kind:  relation.One,
		Type:  database.InnerJoin,
		Table: "roles",
		Alias: "r",
		On:    []database.On{{Left: "ur.role_id", Right: "r.id"}},
		Fields: []database.Field{
			{Name: "id", Type: database.TypeInt},
			{Name: "name", Type: database.TypeString},
		},
	})
	_, _ = set.AddChild(role, permissionIDs())

	set.Add(relation.Relation{
		Kind:  relation.One,
		Table: "countries",
		Alias: "c",
		On:    []database.On{{Left: "u.country_id", Right: "c.id"}},
		Fields: []database.Field{
			{Name: "countryName", Source: "name", Type: database.TypeString},
			{Name: "countryCode", Source: "code", Type: database.TypeString},
		},
	})

	return storage.Model{
		Table: "users",
		Alias: "u",
		Fields: []database.Field{
			{Name: "id", Type: database.TypeInt},
			{Name: "userName", Type: database.TypeString},
			{Name: "email", Type: database.TypeString},
			{Name: "password", Type: database.TypeString},
			{Name: "active", Type: database.TypeBool},
			{Name: "settings", Type: database.TypeJSON},
			{Name: "countryId", Type: database.TypeInt},
		},
		Relations:        set,
		Blacklist:        []string{"password"},
		CreatedField:     "createdAt",
		UpdatedField:     "updatedAt",
		DeletedField:     "deletedAt",
		ScopeSoftDeleted: true,
		OrderBy:          []database.OrderClause{{Column: "u.id", Direction: database.OrderAsc}},
		Searchable:       []string{"userName", "email"},
	}
}

// Roles, her rolü izin id listesiyle okuyan modeldir.
func Roles() storage.Model {
	set := relation.NewSet()
	set.Add(permissionIDs())

	return storage.Model{
		Table: "roles",
		Alias: "r",
		Fields: []database.Field{
			{Name: "id", Type: database.TypeInt},
			{Name: "name", Type: database.TypeString},
		},
		Relations: set,
	}
}

// Permissions, izin tablosudur.
func Permissions() storage.Model {
	return storage.Model{
		Table: "permissions",
		Alias: "p",
		Fields: []database.Field{
			{Name: "id", Type: database.TypeInt},
			{Name: "name", Type: database.TypeString},
		},
	}
}

// Countries, ülke tablosudur; primary key ülke kodu değil sayısal id'dir.
func Countries() storage.Model {
	return storage.Model{
		Table: "countries",
		Alias: "c",
		Fields: []database.Field{
			{Name: "id", Type: database.TypeInt},
			{Name: "code", Type: database.TypeString},
			{Name: "name", Type: database.TypeString},
		},
		Searchable: []string{"name"},
	}
}

// permissionIDs, bir rolün izin id'lerini düz liste olarak toplar.
func permissionIDs() relation.Relation {
	return relation.Relation{
		Name:   "permissionIds",
		Kind:   relation.Many,
		Scalar: true,
		Table:  "role_permissions",
		Alias:  "rp",
		On:     []database.On{{Left: "r.id", Right: "rp.role_id"}},
		Fields: []database.Field{{Name: "permissionId", Type: database.TypeInt}},
		Order:  []database.OrderClause{{Column: "rp.permission_id", Direction: database.OrderAsc}},
	}
}

var builtin = map[string]func() storage.Model{
	"users":       Users,
	"roles":       Roles,
	"permissions": Permissions,
	"countries":   Countries,
}

// Lookup, gömülü modeli tablo adıyla döndürür.
func Lookup(name string) (storage.Model, error) {
	fn, ok := builtin[name]
	if !ok {
		return storage.Model{}, fmt.Errorf("models: unknown built-in model %q (available: %v)", name, Names())
	}
	return fn(), nil
}

// Names, gömülü model adlarını sıralı döndürür.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
