// -----------------------------------------------------------------------------
// WHERE Methods Tests
// -----------------------------------------------------------------------------
// WhereIn, WhereBetween, WhereNull, tarih fonksiyonları, OrWhere, WhereRaw
// ve Having metotlarının ürettiği SQL'i ve parametre sırasını doğrular.
// -----------------------------------------------------------------------------

package database

import (
	"strings"
	"testing"
)

func TestWhereMethods(t *testing.T) {
	cases := []struct {
		name     string
		build    func(qb *QueryBuilder)
		expected string
		args     []any
	}{
		{
			name: "WhereIn",
			build: func(qb *QueryBuilder) {
				qb.Table("users").Select("id", "name", "email").
					WhereIn("status", []string{"active", "pending", "approved"})
			},
			expected: "SELECT `id`, `name`, `email` FROM `users` WHERE `status` IN (?, ?, ?)",
			args:     []any{"active", "pending", "approved"},
		},
		{
			name: "WhereNotIn",
			build: func(qb *QueryBuilder) {
				qb.Table("users").WhereNotIn("role", []any{"banned", "suspended"})
			},
			expected: "SELECT * FROM `users` WHERE `role` NOT IN (?, ?)",
			args:     []any{"banned", "suspended"},
		},
		{
			name: "WhereBetween",
			build: func(qb *QueryBuilder) {
				qb.Table("users").Select("id", "name", "age").WhereBetween("age", 18, 65)
			},
			expected: "SELECT `id`, `name`, `age` FROM `users` WHERE `age` BETWEEN ? AND ?",
			args:     []any{18, 65},
		},
		{
			name: "WhereNotBetween",
			build: func(qb *QueryBuilder) {
				qb.Table("scores").WhereNotBetween("score", 0, 50)
			},
			expected: "SELECT * FROM `scores` WHERE `score` NOT BETWEEN ? AND ?",
			args:     []any{0, 50},
		},
		{
			name: "WhereNull",
			build: func(qb *QueryBuilder) {
				qb.Table("users").Select("id", "name").WhereNull("deleted_at")
			},
			expected: "SELECT `id`, `name` FROM `users` WHERE `deleted_at` IS NULL",
		},
		{
			name: "WhereNotNull",
			build: func(qb *QueryBuilder) {
				qb.Table("users").Select("id", "name").WhereNotNull("email_verified_at")
			},
			expected: "SELECT `id`, `name` FROM `users` WHERE `email_verified_at` IS NOT NULL",
		},
		{
			name: "Where with nil value",
			build: func(qb *QueryBuilder) {
				qb.Table("users").Where("deleted_at", "=", nil).Where("verified_at", "!=", nil)
			},
			expected: "SELECT * FROM `users` WHERE `deleted_at` IS NULL AND `verified_at` IS NOT NULL",
		},
		{
			name: "WhereDate",
			build: func(qb *QueryBuilder) {
				qb.Table("orders").WhereDate("created_at", "2024-01-15")
			},
			expected: "SELECT * FROM `orders` WHERE DATE(`created_at`) = ?",
			args:     []any{"2024-01-15"},
		},
		{
			name: "WhereYear WhereMonth WhereDay",
			build: func(qb *QueryBuilder) {
				qb.Table("appointments").
					WhereYear("scheduled_at", 2024).
					WhereMonth("scheduled_at", 12).
					WhereDay("scheduled_at", 15)
			},
			expected: "SELECT * FROM `appointments` WHERE YEAR(`scheduled_at`) = ? AND MONTH(`scheduled_at`) = ? AND DAY(`scheduled_at`) = ?",
			args:     []any{2024, 12, 15},
		},
		{
			name: "OrWhere groups with previous condition",
			build: func(qb *QueryBuilder) {
				qb.Table("users").
					Where("active", "=", true).
					Where("role", "=", "admin").
					OrWhere("role", "=", "moderator")
			},
			expected: "SELECT * FROM `users` WHERE `active` = ? AND (`role` = ? OR `role` = ?)",
			args:     []any{true, "admin", "moderator"},
		},
		{
			name: "OrWhere without previous condition",
			build: func(qb *QueryBuilder) {
				qb.Table("users").OrWhere("role", "=", "admin")
			},
			expected: "SELECT * FROM `users` WHERE `role` = ?",
			args:     []any{"admin"},
		},
		{
			name: "WhereRaw with bindings",
			build: func(qb *QueryBuilder) {
				qb.Table("orders").WhereRaw("`price` * `qty` > ?", 100).Where("status", "=", "paid")
			},
			expected: "SELECT * FROM `orders` WHERE `price` * `qty` > ? AND `status` = ?",
			args:     []any{100, "paid"},
		},
		{
			name: "WhereRaw with mismatched bindings is dropped",
			build: func(qb *QueryBuilder) {
				qb.Table("orders").WhereRaw("`price` > ? AND `qty` > ?", 100)
			},
			expected: "SELECT * FROM `orders`",
		},
		{
			name: "Combined",
			build: func(qb *QueryBuilder) {
				qb.Table("users").Select("id", "name").
					Where("active", "=", true).
					WhereIn("role", []any{"admin", "moderator"}).
					WhereBetween("age", 18, 65).
					WhereNotNull("email_verified_at").
					WhereNull("deleted_at")
			},
			expected: "SELECT `id`, `name` FROM `users` WHERE `active` = ? AND `role` IN (?, ?) AND `age` BETWEEN ? AND ? AND `email_verified_at` IS NOT NULL AND `deleted_at` IS NULL",
			args:     []any{true, "admin", "moderator", 18, 65},
		},
		{
			name: "Having",
			build: func(qb *QueryBuilder) {
				qb.Table("orders").Select("status", "COUNT(*) AS total").
					Where("paid", "=", true).
					GroupBy("status").
					Having("COUNT(*)", ">", 5).
					HavingRaw("SUM(`amount`) < ?", 1000)
			},
			expected: "SELECT `status`, COUNT(*) AS total FROM `orders` WHERE `paid` = ? GROUP BY `status` HAVING COUNT(*) > ? AND SUM(`amount`) < ?",
			args:     []any{true, 5, 1000},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			qb := NewBuilder(nil, NewMySQLGrammar())
			tc.build(qb)

			sql, args, err := qb.ToSQL()
			if err != nil {
				t.Fatalf("Failed to compile SQL: %v", err)
			}
			if sql != tc.expected {
				t.Errorf("Expected:\n%s\nGot:\n%s", tc.expected, sql)
			}
			if len(args) != len(tc.args) {
				t.Fatalf("Expected %d args, got %d (%v)", len(tc.args), len(args), args)
			}
			for i := range args {
				if args[i] != tc.args[i] {
					t.Errorf("arg %d: expected %v, got %v", i, tc.args[i], args[i])
				}
			}
		})
	}
}

// TestWhereIn_SQLInjectionPrevention tests that malicious values stay parameters.
func TestWhereIn_SQLInjectionPrevention(t *testing.T) {
	qb := NewBuilder(nil, NewMySQLGrammar())

	maliciousValues := []any{
		"active",
		"'; DROP TABLE users--",
		"' OR '1'='1",
		"admin' UNION SELECT * FROM passwords--",
	}

	sql, args, err := qb.Table("users").WhereIn("status", maliciousValues).ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	if strings.Contains(sql, "DROP TABLE") || strings.Contains(sql, "UNION SELECT") {
		t.Errorf("SQL injection detected in WhereIn: %s", sql)
	}
	if !strings.Contains(sql, "IN (?, ?, ?, ?)") {
		t.Error("WhereIn should use placeholders")
	}
	if len(args) != 4 {
		t.Errorf("Expected 4 args, got %d", len(args))
	}
}

// TestWhereMethods_EmptyArrays tests edge cases with empty arrays.
func TestWhereMethods_EmptyArrays(t *testing.T) {
	qb := NewBuilder(nil, NewMySQLGrammar())
	sql, args, err := qb.Table("users").
		WhereIn("status", []any{}).
		WhereNotIn("role", []string{}).
		ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL with empty WhereIn: %v", err)
	}

	expected := "SELECT * FROM `users` WHERE 0 = 1 AND 1 = 1"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
	if len(args) != 0 {
		t.Errorf("Expected 0 args for empty WhereIn, got %d", len(args))
	}
}

// BenchmarkWhereIn benchmarks WhereIn rendering.
func BenchmarkWhereIn(b *testing.B) {
	values := make([]any, 100)
	for i := range values {
		values[i] = i
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		qb := NewBuilder(nil, NewMySQLGrammar())
		_, _, _ = qb.Table("users").WhereIn("id", values).ToSQL()
	}
}
