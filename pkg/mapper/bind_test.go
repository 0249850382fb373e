package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/datamapper/pkg/database"
)

type boundRole struct {
	ID   int `db:"id"`
	Name string
}

type boundMeta struct {
	CreatedAt time.Time
}

type boundUser struct {
	boundMeta
	ID          int64
	UserName    string
	Password    string `db:"password,omitempty"`
	Active      bool
	CountryName *string
	Roles       []boundRole
	Internal    string `db:"-"`
	unexported  string
}

func TestBind_Struct(t *testing.T) {
	reg := newUserRegistry(t)
	rec := reg.FromRawRow(database.RawRow{
		"id":          "3",
		"userName":    "john",
		"password":    "hash",
		"active":      int64(1),
		"created_at":  "2024-03-01 10:20:30",
		"countryName": "Türkiye",
		"roles":       "id-:-1-::-name-:-admin-:::-id-:-2-::-name-:-editor",
	})

	var u boundUser
	u.Internal = "keep"
	require.NoError(t, Bind(rec, &u))

	assert.Equal(t, int64(3), u.ID)
	assert.Equal(t, "john", u.UserName)
	assert.Equal(t, "hash", u.Password)
	assert.True(t, u.Active)
	require.NotNil(t, u.CountryName)
	assert.Equal(t, "Türkiye", *u.CountryName)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC), u.CreatedAt)
	assert.Equal(t, []boundRole{{ID: 1, Name: "admin"}, {ID: 2, Name: "editor"}}, u.Roles)
	assert.Equal(t, "keep", u.Internal)
	assert.Empty(t, u.unexported)
}

func TestBind_EmptyManyGivesEmptySlice(t *testing.T) {
	reg := newUserRegistry(t)
	rec := reg.FromRawRow(database.RawRow{"id": int64(1)})

	var u boundUser
	require.NoError(t, Bind(rec, &u))
	assert.NotNil(t, u.Roles)
	assert.Len(t, u.Roles, 0)
	assert.Nil(t, u.CountryName)
}

func TestBind_InvalidDestination(t *testing.T) {
	reg := newUserRegistry(t)
	rec := reg.NewRecord()

	var u boundUser
	assert.Error(t, Bind(rec, u))
	assert.Error(t, Bind(rec, new(int)))
	assert.Error(t, BindAll([]*Record{rec}, &u))
}

func TestBind_ConversionError(t *testing.T) {
	reg := newUserRegistry(t)
	rec := reg.FromRawRow(database.RawRow{"id": "abc"})

	var u boundUser
	err := Bind(rec, &u)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"id"`)
}

func TestBindAll(t *testing.T) {
	reg := newUserRegistry(t)
	records := reg.FromRawRows([]database.RawRow{
		{"id": int64(1), "userName": "john"},
		{"id": int64(2), "userName": "jane"},
	})

	var values []boundUser
	require.NoError(t, BindAll(records, &values))
	require.Len(t, values, 2)
	assert.Equal(t, "jane", values[1].UserName)

	var pointers []*boundUser
	require.NoError(t, BindAll(records, &pointers))
	require.Len(t, pointers, 2)
	assert.Equal(t, int64(1), pointers[0].ID)
}

func TestBinder_Prune(t *testing.T) {
	b := NewBinder()
	reg := newUserRegistry(t)

	var u boundUser
	require.NoError(t, b.Bind(reg.NewRecord(), &u))

	assert.Equal(t, 0, b.Prune(time.Hour))
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 1, b.Prune(time.Millisecond))
}

func TestDefaultKey(t *testing.T) {
	tests := map[string]string{
		"ID":          "id",
		"UserName":    "userName",
		"Name":        "name",
		"CountryName": "countryName",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, defaultKey(in))
		})
	}
}
