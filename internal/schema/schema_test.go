package schema

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/datamapper/pkg/database"
	"github.com/biyonik/datamapper/pkg/relation"
	"github.com/biyonik/datamapper/pkg/storage"
	dmtest "github.com/biyonik/datamapper/pkg/testing"
)

// handBuiltUsers, testdata/models/users.yaml'ın Go ile kurulmuş karşılığıdır.
func handBuiltUsers(t *testing.T) storage.Model {
	t.Helper()

	set := relation.NewSet()
	roles := set.Add(relation.Relation{
		Name:  "roles",
		Kind:  relation.Many,
		Table: "user_roles",
		Alias: "ur",
		On:    []database.On{{Left: "u.id", Operator: "=", Right: "ur.user_id"}},
		Order: []database.OrderClause{{Column: "r.id", Direction: database.OrderAsc}},
	})
	_, err := set.AddChild(roles, relation.Relation{
		Kind:  relation.One,
		Type:  database.InnerJoin,
		Table: "roles",
		Alias: "r",
		On:    []database.On{{Left: "ur.role_id", Operator: "=", Right: "r.id"}},
		Fields: []database.Field{
			{Name: "id", Type: database.TypeInt},
			{Name: "name", Type: database.TypeString},
		},
	})
	require.NoError(t, err)
	set.Add(relation.Relation{
		Kind:   relation.One,
		Table:  "countries",
		Alias:  "c",
		On:     []database.On{{Left: "u.country_id", Right: "c.id"}},
		Fields: []database.Field{{Name: "countryName", Source: "name"}},
	})

	return storage.Model{
		Table:            "users",
		Alias:            "u",
		IDStrategy:       storage.IDAuto,
		Relations:        set,
		Blacklist:        []string{"password"},
		CreatedField:     "createdAt",
		DeletedField:     "deletedAt",
		ScopeSoftDeleted: true,
		OrderBy:          []database.OrderClause{{Column: "u.id", Direction: database.OrderDesc}},
		Searchable:       []string{"name", "email"},
		Fields: []database.Field{
			{Name: "id", Type: database.TypeInt},
			{Name: "name", Type: database.TypeString},
			{Name: "email", Type: database.TypeString},
			{Name: "password"},
			{Name: "settings", Type: database.TypeJSON},
		},
	}
}

func selectSQL(t *testing.T, model storage.Model) string {
	t.Helper()
	store := storage.New(dmtest.NewFakeAdapter(), model)
	require.NoError(t, store.LastError())
	sqlStr, _, err := store.Query().ToSQL()
	require.NoError(t, err)
	return sqlStr
}

func TestLoad_UsersModel(t *testing.T) {
	model, err := Load(filepath.Join("testdata", "models", "users.yaml"))
	require.NoError(t, err)

	want := handBuiltUsers(t)
	assert.Equal(t, want.Fields, model.Fields)
	assert.Equal(t, want.Blacklist, model.Blacklist)
	assert.Equal(t, want.OrderBy, model.OrderBy)
	assert.Equal(t, want.Searchable, model.Searchable)
	assert.Equal(t, "createdAt", model.CreatedField)
	assert.Empty(t, model.UpdatedField)
	assert.True(t, model.ScopeSoftDeleted)
	require.Equal(t, 3, model.Relations.Len())

	assert.Equal(t, selectSQL(t, want), selectSQL(t, model))
	assert.Contains(t, selectSQL(t, model), "INNER JOIN `roles` AS `r` ON `ur`.`role_id` = `r`.`id`")
}

func TestLoad_ScalarRelationWithWhere(t *testing.T) {
	model, err := Load(filepath.Join("testdata", "models", "roles.yml"))
	require.NoError(t, err)

	rel := model.Relations.Get(0)
	assert.True(t, rel.Scalar)
	assert.Equal(t, relation.Many, rel.Kind)
	assert.Equal(t, []database.Filter{database.Equals("rp.active", 1)}, rel.Filters)

	sqlStr := selectSQL(t, model)
	assert.Contains(t, sqlStr, "AS `permissionIds`")
	assert.Contains(t, sqlStr, "`rp`.`active` = ?")
}

func TestLoadDir(t *testing.T) {
	models, err := LoadDir(filepath.Join("testdata", "models"))
	require.NoError(t, err)
	assert.Len(t, models, 2)
	assert.Contains(t, models, "users")
	assert.Contains(t, models, "roles")

	_, err = LoadDir(filepath.Join("testdata", "dup"))
	assert.ErrorIs(t, err, ErrInvalidSchema)

	_, err = LoadDir(filepath.Join("testdata", "missing"))
	assert.Error(t, err)
}

func TestParse_Shorthands(t *testing.T) {
	model, err := Parse([]byte(`
table: posts
idStrategy: UUID
fields: [title, {name: views, type: INT}]
orderBy:
  - {raw: "FIELD(status, 'draft', 'live')"}
  - createdAt
relations:
  - table: authors
    alias: a
    on: ["p.author_id = a.id AND a.active = 1"]
`))
	require.NoError(t, err)

	assert.Equal(t, storage.IDUUID, model.IDStrategy)
	assert.Equal(t, []database.Field{
		{Name: "title"},
		{Name: "views", Type: database.TypeInt},
	}, model.Fields)
	assert.Equal(t, []database.OrderClause{
		{Direction: database.OrderAsc, Raw: "FIELD(status, 'draft', 'live')"},
		{Column: "createdAt", Direction: database.OrderAsc},
	}, model.OrderBy)

	rel := model.Relations.Get(0)
	assert.Equal(t, relation.One, rel.Kind)
	assert.Equal(t, []database.On{{Raw: "p.author_id = a.id AND a.active = 1"}}, rel.On)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"empty document":    ``,
		"missing table":     `alias: u`,
		"unknown key":       "table: users\ncolour: red",
		"unknown type":      "table: users\nfields: [{name: id, type: uuid}]",
		"unnamed field":     "table: users\nfields: [{type: int}]",
		"raw without sql":   "table: users\nfields: [{name: total, raw: true}]",
		"bad id strategy":   "table: users\nidStrategy: snowflake",
		"bad kind":          "table: users\nrelations: [{kind: several, table: roles}]",
		"bad join type":     "table: users\nrelations: [{type: sideways, table: roles}]",
		"relation no table": "table: users\nrelations: [{name: roles, kind: many}]",
		"bad direction":     "table: users\norderBy: [{column: id, direction: up}]",
		"bad order text":    "table: users\norderBy: [\"id desc nulls\"]",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidSchema)
		})
	}
}
