package mapper

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/datamapper/pkg/database"
	"github.com/biyonik/datamapper/pkg/relation"
)

func userFields() []database.Field {
	return []database.Field{
		{Name: "id", Type: database.TypeInt},
		{Name: "userName", Type: database.TypeString},
		{Name: "password"},
		{Name: "active", Type: database.TypeBool},
		{Name: "settings", Type: database.TypeJSON},
		{Name: "createdAt", Type: database.TypeTime},
		{Name: "roleCount", Source: "COUNT(*)", Raw: true, Type: database.TypeInt},
	}
}

func userPlan() *relation.Plan {
	return &relation.Plan{
		Fields: []database.Field{{Name: "countryName", Source: "name"}},
		Columns: []relation.Column{{
			Name: "roles",
			Shape: &relation.Shape{
				Name:  "roles",
				Types: map[string]database.FieldType{"id": database.TypeInt, "name": database.TypeString},
			},
		}},
	}
}

func newUserRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(userFields(), userPlan(), "password")
	require.NoError(t, err)
	return reg
}

func TestNewRegistry_Collisions(t *testing.T) {
	cases := map[string]struct {
		fields []database.Field
		plan   *relation.Plan
	}{
		"duplicate field": {
			fields: []database.Field{{Name: "id"}, {Name: "id"}},
		},
		"storage name clashes with output name": {
			fields: []database.Field{{Name: "userName"}, {Name: "user_name"}},
		},
		"relation shadows field": {
			fields: []database.Field{{Name: "roles"}},
			plan:   &relation.Plan{Columns: []relation.Column{{Name: "roles"}}},
		},
		"join field shadows field": {
			fields: []database.Field{{Name: "countryName"}},
			plan:   &relation.Plan{Fields: []database.Field{{Name: "countryName", Source: "name"}}},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewRegistry(tc.fields, tc.plan)
			assert.ErrorIs(t, err, ErrFieldCollision)
		})
	}
}

func TestNewRegistry_UnknownBlacklist(t *testing.T) {
	_, err := NewRegistry(userFields(), nil, "secret")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestRecord_GetSetWithAliases(t *testing.T) {
	reg := newUserRegistry(t)
	rec := reg.NewRecord()

	roles, err := rec.Get("roles")
	require.NoError(t, err)
	assert.Equal(t, []any{}, roles)

	require.NoError(t, rec.Set("user_name", "john"))
	v, err := rec.Get("userName")
	require.NoError(t, err)
	assert.Equal(t, "john", v)

	_, err = rec.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.ErrorIs(t, rec.Set("nope", 1), ErrUnknownField)

	require.NoError(t, rec.Set("roles", nil))
	assert.Equal(t, []any{}, rec.Value("roles"))

	require.NoError(t, rec.Set("roles", []string{"a"}))
	assert.Equal(t, []any{"a"}, rec.Value("roles"))
	assert.Error(t, rec.Set("roles", "admin"))

	assert.True(t, rec.IsSet("userName"))
	assert.False(t, rec.IsSet("id"))
}

func TestRecord_ToStorageRow(t *testing.T) {
	reg := newUserRegistry(t)
	rec, err := reg.RecordFrom(map[string]any{
		"id":          nil,
		"userName":    "john",
		"password":    "hash",
		"settings":    map[string]any{"theme": "dark"},
		"roleCount":   3,
		"countryName": "Türkiye",
		"roles":       []any{map[string]any{"id": 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, database.Values{
		{Column: "user_name", Value: "john"},
		{Column: "password", Value: "hash"},
		{Column: "settings", Value: `{"theme":"dark"}`},
	}, rec.ToStorageRow())
}

func TestRegistry_FromRawRow(t *testing.T) {
	reg := newUserRegistry(t)

	rows := []database.RawRow{
		{
			"id":          int64(1),
			"userName":    "john",
			"password":    "hash",
			"active":      int64(1),
			"settings":    `{"theme":"dark"}`,
			"created_at":  "2024-03-01 10:20:30",
			"countryName": "Türkiye",
			"roles":       "id-:-1-::-name-:-admin-:::-id-:-2-::-name-:-editor",
		},
		{
			"id":       "2",
			"userName": []byte("jane"),
			"active":   "0",
			"roles":    nil,
		},
	}

	records := reg.FromRawRows(rows)
	require.Len(t, records, 2)

	first := records[0].ToPublicRecord()
	assert.Equal(t, int64(1), first["id"])
	assert.Equal(t, true, first["active"])
	assert.Equal(t, map[string]any{"theme": "dark"}, first["settings"])
	assert.Equal(t, time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC), first["createdAt"])
	assert.Equal(t, "Türkiye", first["countryName"])
	assert.Equal(t, []any{
		map[string]any{"id": int64(1), "name": "admin"},
		map[string]any{"id": int64(2), "name": "editor"},
	}, first["roles"])
	assert.NotContains(t, first, "password")
	assert.Equal(t, "hash", records[0].Value("password"))

	second := records[1].ToPublicRecord()
	assert.Equal(t, int64(2), second["id"])
	assert.Equal(t, "jane", second["userName"])
	assert.Equal(t, false, second["active"])
	assert.Equal(t, []any{}, second["roles"])
	assert.Nil(t, second["countryName"])
}

func TestRegistry_FromRawRow_MissingAggregateColumn(t *testing.T) {
	reg := newUserRegistry(t)
	rec := reg.FromRawRow(database.RawRow{"id": int64(5)})
	assert.Equal(t, []any{}, rec.Value("roles"))
}

func TestRegistry_NestedScalarCoercion(t *testing.T) {
	plan := &relation.Plan{Columns: []relation.Column{{
		Name: "roles",
		Shape: &relation.Shape{
			Name:  "roles",
			Types: map[string]database.FieldType{"id": database.TypeInt},
			Nested: []*relation.Shape{{
				Name:   "permissionIds",
				Scalar: true,
				Types:  map[string]database.FieldType{"id": database.TypeInt},
			}},
		},
	}}}

	reg, err := NewRegistry([]database.Field{{Name: "id"}}, plan)
	require.NoError(t, err)

	// "1-:::-2" → HEX
	rec := reg.FromRawRow(database.RawRow{"roles": "id-:-7-::-permissionIds-:-312D3A3A3A2D32"})
	assert.Equal(t, []any{
		map[string]any{"id": int64(7), "permissionIds": []any{int64(1), int64(2)}},
	}, rec.Value("roles"))
}

func TestRecord_MarshalJSON(t *testing.T) {
	reg := newUserRegistry(t)
	rec := reg.NewRecord()
	require.NoError(t, rec.Set("userName", "john"))
	require.NoError(t, rec.Set("password", "secret"))

	b, err := json.Marshal(rec)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "john", out["userName"])
	assert.Equal(t, []any{}, out["roles"])
	assert.NotContains(t, out, "password")
}

func TestRecord_Merge(t *testing.T) {
	reg := newUserRegistry(t)
	base, err := reg.RecordFrom(map[string]any{"id": int64(1), "userName": "john"})
	require.NoError(t, err)
	patch, err := reg.RecordFrom(map[string]any{"userName": "johnny"})
	require.NoError(t, err)

	base.Merge(patch)
	assert.Equal(t, int64(1), base.Value("id"))
	assert.Equal(t, "johnny", base.Value("userName"))
}

func TestRegistry_Accessors(t *testing.T) {
	reg := newUserRegistry(t)

	col, ok := reg.Column("userName")
	assert.True(t, ok)
	assert.Equal(t, "user_name", col)
	assert.True(t, reg.Has("user_name"))
	assert.True(t, reg.IsHidden("password"))
	assert.Equal(t, []string{"roles"}, reg.ManyNames())
	assert.Equal(t, []string{"id", "userName", "password", "active", "settings", "createdAt", "roleCount", "countryName", "roles"}, reg.Names())
}
