package mapper

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/biyonik/datamapper/pkg/database"
)

func TestCoerce(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)

	tests := []struct {
		name  string
		value any
		typ   database.FieldType
		want  any
	}{
		{"nil stays nil", nil, database.TypeInt, nil},
		{"bytes become string", []byte("abc"), database.TypeAny, "abc"},
		{"any passes through", int32(5), database.TypeAny, int32(5)},
		{"string to int", "42", database.TypeInt, int64(42)},
		{"padded string to int", " 7 ", database.TypeInt, int64(7)},
		{"whole float string to int", "3.0", database.TypeInt, int64(3)},
		{"fractional string stays", "3.5", database.TypeInt, "3.5"},
		{"uint to int", uint16(9), database.TypeInt, int64(9)},
		{"max int64 uint to int", uint64(math.MaxInt64), database.TypeInt, int64(math.MaxInt64)},
		{"overflowing uint stays", uint64(1<<63 + 5), database.TypeInt, uint64(1<<63 + 5)},
		{"bool to int", true, database.TypeInt, int64(1)},
		{"garbage int stays", "x", database.TypeInt, "x"},
		{"string to float", "2.5", database.TypeFloat, 2.5},
		{"int to float", 4, database.TypeFloat, 4.0},
		{"one to bool", "1", database.TypeBool, true},
		{"yes to bool", "YES", database.TypeBool, true},
		{"int zero to bool", int64(0), database.TypeBool, false},
		{"garbage bool stays", "maybe", database.TypeBool, "maybe"},
		{"int to string", 12, database.TypeString, "12"},
		{"datetime", "2024-03-01 10:20:30", database.TypeTime, ts},
		{"rfc3339", "2024-03-01T10:20:30Z", database.TypeTime, ts},
		{"time passes", ts, database.TypeTime, ts},
		{"bad time stays", "yesterday", database.TypeTime, "yesterday"},
		{"json object", `{"a":1}`, database.TypeJSON, map[string]any{"a": 1.0}},
		{"json array bytes", []byte(`[1,2]`), database.TypeJSON, []any{1.0, 2.0}},
		{"invalid json stays", "{oops", database.TypeJSON, "{oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Coerce(tt.value, tt.typ))
		})
	}
}

func TestToAnySlice(t *testing.T) {
	out, ok := toAnySlice([]int{1, 2})
	assert.True(t, ok)
	assert.Equal(t, []any{1, 2}, out)

	_, ok = toAnySlice("nope")
	assert.False(t, ok)
}
