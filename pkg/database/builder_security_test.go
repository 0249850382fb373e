package database

import (
	"errors"
	"strings"
	"testing"
)

// -----------------------------------------------------------------------------
// SQL INJECTION GÜVENLİK TESTLERİ
// -----------------------------------------------------------------------------
// Bu testler, identifier'lara gömülen zararlı karakterlerin temizlendiğini
// ve değerlerin her zaman placeholder ile bağlandığını doğrular.
// Her test case bir exploit senaryosunu simüle eder.
// -----------------------------------------------------------------------------

// unsafeSQL, render edilmiş SQL'de backtick dışında kalmaması gereken parçalar.
var unsafeSQL = []string{";", "--", "'", "/*", `"`}

func assertNoInjection(t *testing.T, sql string) {
	t.Helper()
	for _, token := range unsafeSQL {
		if strings.Contains(sql, token) {
			t.Errorf("unsafe token %q leaked into SQL: %s", token, sql)
		}
	}
}

// TestSQLInjection_OrderBy_MaliciousColumn tests SQL injection prevention in OrderBy
func TestSQLInjection_OrderBy_MaliciousColumn(t *testing.T) {
	maliciousInputs := []struct {
		name   string
		column string
		want   string
	}{
		{name: "DROP TABLE attack", column: "id; DROP TABLE users--", want: "`idDROPTABLEusers`"},
		{name: "OR injection", column: "id' OR '1'='1", want: "`idOR11`"},
		{name: "Comment injection", column: "id--", want: "`id`"},
		{name: "Quote injection", column: "id'", want: "`id`"},
		{name: "Double quote injection", column: `id"`, want: "`id`"},
		{name: "Backtick injection", column: "id`", want: "`id`"},
	}

	for _, tc := range maliciousInputs {
		t.Run(tc.name, func(t *testing.T) {
			qb := NewBuilder(nil, NewMySQLGrammar())
			sql, _, err := qb.Table("users").OrderBy(tc.column, "DESC").ToSQL()
			if err != nil {
				t.Fatalf("Failed to compile SQL: %v", err)
			}

			assertNoInjection(t, sql)

			expected := "SELECT * FROM `users` ORDER BY " + tc.want + " DESC"
			if sql != expected {
				t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
			}
		})
	}
}

// TestSQLInjection_OrderBy_MaliciousDirection tests that direction falls back to ASC
func TestSQLInjection_OrderBy_MaliciousDirection(t *testing.T) {
	qb := NewBuilder(nil, NewMySQLGrammar())
	sql, _, err := qb.Table("users").OrderBy("id", "DESC; DROP TABLE users").ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	if sql != "SELECT * FROM `users` ORDER BY `id` ASC" {
		t.Errorf("Unexpected SQL: %s", sql)
	}
}

// TestSQLInjection_Where_MaliciousColumn tests SQL injection prevention in Where
func TestSQLInjection_Where_MaliciousColumn(t *testing.T) {
	maliciousInputs := []string{
		"id; DROP TABLE users--",
		"id' OR '1'='1",
		"id/**/OR/**/1=1",
		"id'; DELETE FROM users WHERE '1'='1",
	}

	for _, column := range maliciousInputs {
		t.Run(column, func(t *testing.T) {
			qb := NewBuilder(nil, NewMySQLGrammar())
			sql, args, err := qb.Table("users").Where(column, "=", 1).ToSQL()
			if err != nil {
				t.Fatalf("Failed to compile SQL: %v", err)
			}

			assertNoInjection(t, sql)
			if len(args) != 1 || args[0] != 1 {
				t.Errorf("Expected args [1], got %v", args)
			}
			if strings.Count(sql, "?") != len(args) {
				t.Errorf("Placeholder count mismatch: %s %v", sql, args)
			}
		})
	}
}

// TestSQLInjection_Where_MaliciousOperator tests that non-whitelisted operators drop the condition
func TestSQLInjection_Where_MaliciousOperator(t *testing.T) {
	qb := NewBuilder(nil, NewMySQLGrammar())
	sql, args, err := qb.Table("users").
		Where("id", "= 1 OR 1 =", 1).
		Where("status", "=", "active").
		ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	expected := "SELECT * FROM `users` WHERE `status` = ?"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
	if len(args) != 1 {
		t.Errorf("Expected 1 arg, got %d", len(args))
	}
}

// TestSQLInjection_Table_MaliciousName tests SQL injection prevention in Table
func TestSQLInjection_Table_MaliciousName(t *testing.T) {
	cases := map[string]string{
		"users; DROP TABLE sessions--": "SELECT * FROM `usersDROPTABLEsessions`",
		"users' OR '1'='1":             "SELECT * FROM `usersOR11`",
		"users/**/UNION/**/SELECT":     "SELECT * FROM `usersUNIONSELECT`",
	}

	for table, expected := range cases {
		t.Run(table, func(t *testing.T) {
			qb := NewBuilder(nil, NewMySQLGrammar())
			sql, _, err := qb.Table(table).ToSQL()
			if err != nil {
				t.Fatalf("Failed to compile SQL: %v", err)
			}
			if sql != expected {
				t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
			}
		})
	}
}

// TestSQLInjection_Insert_MaliciousColumn tests SQL injection prevention in Insert
func TestSQLInjection_Insert_MaliciousColumn(t *testing.T) {
	qb := NewBuilder(nil, NewMySQLGrammar())
	sql, args, err := qb.Table("users").InsertMap(map[string]any{
		"name; DROP TABLE users--": "test",
	}).ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	expected := "INSERT INTO `users` (`nameDROPTABLEusers`) VALUES (?)"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
	if len(args) != 1 || args[0] != "test" {
		t.Errorf("Unexpected args: %v", args)
	}
}

// TestSQLInjection_Update_MaliciousColumn tests SQL injection prevention in Update
func TestSQLInjection_Update_MaliciousColumn(t *testing.T) {
	qb := NewBuilder(nil, NewMySQLGrammar())
	sql, args, err := qb.Table("users").
		Where("id", "=", 1).
		UpdateMap(map[string]any{"id' OR '1'='1": "hacked"}).
		ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	expected := "UPDATE `users` SET `idOR11` = ? WHERE `id` = ?"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
	if len(args) != 2 || args[0] != "hacked" || args[1] != 1 {
		t.Errorf("Unexpected args: %v", args)
	}
}

// TestSQLInjection_ValuesAreNeverInlined tests that values only travel as parameters
func TestSQLInjection_ValuesAreNeverInlined(t *testing.T) {
	qb := NewBuilder(nil, NewMySQLGrammar())
	payload := "'; DROP TABLE users--"

	sql, args, err := qb.Table("users").
		Where("name", "=", payload).
		Where("email", "LIKE", payload).
		ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	if strings.Contains(sql, "DROP") {
		t.Errorf("value leaked into SQL: %s", sql)
	}
	if len(args) != 2 {
		t.Errorf("Expected 2 args, got %d", len(args))
	}
}

// TestValidIdentifiers tests that legitimate identifiers are kept intact
func TestValidIdentifiers(t *testing.T) {
	cases := map[string]string{
		"id":          "`id`",
		"user_id":     "`user_id`",
		"users.id":    "`users`.`id`",
		"u.*":         "`u`.*",
		"*":           "*",
		"db.users.id": "`db`.`users`.`id`",
		"Column2":     "`Column2`",
	}

	grammar := NewMySQLGrammar()
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			got, err := grammar.Wrap(in)
			if err != nil {
				t.Fatalf("Wrap(%q) failed: %v", in, err)
			}
			if got != want {
				t.Errorf("Wrap(%q) = %s, want %s", in, got, want)
			}
		})
	}
}

// TestSQLFunctions tests that SQL function expressions pass through Select
func TestSQLFunctions(t *testing.T) {
	qb := NewBuilder(nil, NewMySQLGrammar())
	sql, _, err := qb.Table("orders").
		Select("COUNT(*) AS total", "SUM(price)", "status").
		GroupBy("status").
		ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	expected := "SELECT COUNT(*) AS total, SUM(price), `status` FROM `orders` GROUP BY `status`"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
}

// TestEmptyIdentifiers tests that identifiers empty after sanitizing fail the render
func TestEmptyIdentifiers(t *testing.T) {
	cases := []struct {
		name  string
		build func(qb *QueryBuilder) *QueryBuilder
		want  error
	}{
		{
			name:  "empty table",
			build: func(qb *QueryBuilder) *QueryBuilder { return qb.Table("") },
			want:  ErrNoTable,
		},
		{
			name:  "table of symbols",
			build: func(qb *QueryBuilder) *QueryBuilder { return qb.Table("';--") },
			want:  ErrInvalidIdentifier,
		},
		{
			name:  "order column of symbols",
			build: func(qb *QueryBuilder) *QueryBuilder { return qb.Table("users").OrderBy("--", "ASC") },
			want:  ErrInvalidIdentifier,
		},
		{
			name:  "empty part",
			build: func(qb *QueryBuilder) *QueryBuilder { return qb.Table("users").Select("users..id") },
			want:  ErrInvalidIdentifier,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			qb := tc.build(NewBuilder(nil, NewMySQLGrammar()))
			_, _, err := qb.ToSQL()
			if !errors.Is(err, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, err)
			}
		})
	}
}

// TestEmptyWhereColumn_IsDropped tests that a column empty after sanitizing drops the condition
func TestEmptyWhereColumn_IsDropped(t *testing.T) {
	qb := NewBuilder(nil, NewMySQLGrammar())
	sql, args, err := qb.Table("users").Where("';", "=", 1).ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	if sql != "SELECT * FROM `users`" || len(args) != 0 {
		t.Errorf("Unexpected render: %s %v", sql, args)
	}
}
