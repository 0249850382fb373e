package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToStorage(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"id", "id"},
		{"userName", "user_name"},
		{"createdAt", "created_at"},
		{"addressLine2", "address_line2"},
		{"line2Text", "line2_text"},
		{"u.userName", "u.user_name"},
		{"user_name", "user_name"},
		{"userID", "user_i_d"},
		{"", ""},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, ToStorage(tc.in))
		})
	}
}

func TestToLogical(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"id", "id"},
		{"user_name", "userName"},
		{"a.created_at", "a.createdAt"},
		{"line_2", "line_2"},
		{"_private", "_private"},
		{"userName", "userName"},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, ToLogical(tc.in))
		})
	}
}

func TestTranslators_AreIdempotent(t *testing.T) {
	inputs := []string{"userName", "user_name", "a.b_c", "roleIds", "x", "foo__bar", "emailVerifiedAt"}

	for _, in := range inputs {
		once := ToStorage(in)
		assert.Equal(t, once, ToStorage(once), "ToStorage(%q)", in)

		logical := ToLogical(in)
		assert.Equal(t, logical, ToLogical(logical), "ToLogical(%q)", in)
	}
}

func TestRoundTrip_CamelCase(t *testing.T) {
	inputs := []string{"id", "name", "userName", "createdAt", "aB", "aBC", "a1B", "addressLine2", "x9y8Z7"}

	for _, in := range inputs {
		assert.Equal(t, in, ToLogical(ToStorage(in)), "round trip of %q", in)
	}
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"users":                     "users",
		"users.id":                  "users.id",
		"id; DROP TABLE users--":    "idDROPTABLEusers",
		"id' OR '1'='1":             "idOR11",
		"name`":                     "name",
		"status/**/UNION/**/SELECT": "statusUNIONSELECT",
		"":                          "",
	}

	for in, want := range cases {
		assert.Equal(t, want, Sanitize(in), "Sanitize(%q)", in)
	}
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("users.id"))
	assert.True(t, IsIdentifier("user_id"))
	assert.False(t, IsIdentifier("COUNT(*)"))
	assert.False(t, IsIdentifier(""))
	assert.False(t, IsIdentifier("a b"))
}
