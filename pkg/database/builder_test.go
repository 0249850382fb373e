package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"math"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingAdapter, çalıştırılan statement'ları kaydeden basit bir Adapter.
type recordingAdapter struct {
	queries []string
	args    [][]any
	rows    []RawRow
}

func (r *recordingAdapter) Fetch(_ context.Context, query string, args ...any) ([]RawRow, error) {
	r.queries = append(r.queries, query)
	r.args = append(r.args, args)
	return r.rows, nil
}

func (r *recordingAdapter) Execute(_ context.Context, query string, args ...any) (sql.Result, error) {
	r.queries = append(r.queries, query)
	r.args = append(r.args, args)
	return driver.RowsAffected(1), nil
}

func newGolden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestSelect_DefaultsAndOverride(t *testing.T) {
	cases := []struct {
		name     string
		build    func(qb *QueryBuilder)
		expected string
	}{
		{
			name:     "default star",
			build:    func(qb *QueryBuilder) { qb.Table("users") },
			expected: "SELECT * FROM `users`",
		},
		{
			name:     "alias",
			build:    func(qb *QueryBuilder) { qb.Table("users", "u") },
			expected: "SELECT * FROM `users` AS `u`",
		},
		{
			name:     "first select replaces star, next appends",
			build:    func(qb *QueryBuilder) { qb.Table("users").Select("id").Select("name") },
			expected: "SELECT `id`, `name` FROM `users`",
		},
		{
			name:     "distinct",
			build:    func(qb *QueryBuilder) { qb.Table("users").Distinct().Select("country_id") },
			expected: "SELECT DISTINCT `country_id` FROM `users`",
		},
		{
			name:     "select as",
			build:    func(qb *QueryBuilder) { qb.Table("users", "u").SelectAs("u.user_name", "userName").SelectAs("NOW()", "now") },
			expected: "SELECT `u`.`user_name` AS `userName`, NOW() AS `now` FROM `users` AS `u`",
		},
		{
			name: "select fields",
			build: func(qb *QueryBuilder) {
				qb.Table("users", "u").SelectFields("u",
					Field{Name: "id"},
					Field{Name: "userName"},
					Field{Name: "total", Source: "COUNT(*)", Raw: true},
				)
			},
			expected: "SELECT `u`.`id`, `u`.`user_name` AS `userName`, COUNT(*) AS `total` FROM `users` AS `u`",
		},
		{
			name:     "force index",
			build:    func(qb *QueryBuilder) { qb.Table("users", "u").ForceIndex("idx_status") },
			expected: "SELECT * FROM `users` AS `u` FORCE INDEX (`idx_status`)",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			qb := NewBuilder(nil, nil)
			tc.build(qb)

			sql, _, err := qb.ToSQL()
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sql)
		})
	}
}

func TestSelect_RawParamsComeFirst(t *testing.T) {
	qb := NewBuilder(nil, nil).
		Table("users").
		SelectRaw("IF(`age` > ?, 'adult', 'minor') AS `band`", 18).
		Where("status", "=", "active")

	sql, args, err := qb.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT IF(`age` > ?, 'adult', 'minor') AS `band` FROM `users` WHERE `status` = ?", sql)
	assert.Equal(t, []any{18, "active"}, args)
}

func TestSelect_FullRenderOrder(t *testing.T) {
	sub := NewBuilder(nil, nil).
		Table("orders", "o").
		Select("COUNT(*)").
		WhereRaw("`o`.`user_id` = `u`.`id`").
		Where("o.status", "=", "paid")

	qb := NewBuilder(nil, nil).
		Table("users", "u").
		Distinct().
		ForceIndex("idx_status").
		Select("u.id", "u.user_name AS userName").
		SelectSub(sub, "paidOrders").
		JoinWith("countries", "c", func(j *JoinBuilder) {
			j.On("u.country_id", "=", "c.id").
				Select(Field{Name: "countryName", Source: "name"})
		}).
		Where("u.status", "=", "active").
		WhereIn("u.role", []string{"admin", "editor"}).
		GroupBy("u.id").
		Having("COUNT(*)", ">", 0).
		OrderBy("u.created_at", "desc").
		Limit(10, 20)

	sql, args, err := qb.ToSQL()
	require.NoError(t, err)

	g := newGolden(t)
	g.Assert(t, "select_full", []byte(sql+"\n"))
	assert.Equal(t, []any{"paid", "active", "admin", "editor", 0}, args)
	assert.Equal(t, CountPlaceholders(sql), len(args))
}

func TestSelect_IsReRenderable(t *testing.T) {
	qb := NewBuilder(nil, nil).
		Table("users", "u").
		LeftJoin("countries", "c", "u.country_id", "c.id").
		Where("u.id", ">", 5).
		OrderBy("u.id", "DESC").
		Limit(5)

	first, firstArgs, err := qb.ToSQL()
	require.NoError(t, err)
	second, secondArgs, err := qb.ToSQL()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstArgs, secondArgs)
}

func TestJoins(t *testing.T) {
	cases := []struct {
		name     string
		build    func(qb *QueryBuilder)
		expected string
	}{
		{
			name:     "left join",
			build:    func(qb *QueryBuilder) { qb.Table("users", "u").LeftJoin("countries", "c", "u.country_id", "c.id") },
			expected: "SELECT * FROM `users` AS `u` LEFT JOIN `countries` AS `c` ON `u`.`country_id` = `c`.`id`",
		},
		{
			name:     "inner join",
			build:    func(qb *QueryBuilder) { qb.Table("users", "u").InnerJoin("orders", "o", "u.id", "o.user_id") },
			expected: "SELECT * FROM `users` AS `u` INNER JOIN `orders` AS `o` ON `u`.`id` = `o`.`user_id`",
		},
		{
			name:     "using",
			build:    func(qb *QueryBuilder) { qb.Table("users").JoinUsing(InnerJoin, "profiles", "", "user_id") },
			expected: "SELECT * FROM `users` INNER JOIN `profiles` USING (`user_id`)",
		},
		{
			name:     "cross join without condition",
			build:    func(qb *QueryBuilder) { qb.Table("users").Join(JoinClause{Type: CrossJoin, Table: "regions"}) },
			expected: "SELECT * FROM `users` CROSS JOIN `regions`",
		},
		{
			name: "callback join merges fields into default star",
			build: func(qb *QueryBuilder) {
				qb.Table("users", "u").JoinWith("countries", "c", func(j *JoinBuilder) {
					j.On("u.country_id", "=", "c.id").Select(Field{Name: "countryName", Source: "name"})
				})
			},
			expected: "SELECT *, `c`.`name` AS `countryName` FROM `users` AS `u` LEFT JOIN `countries` AS `c` ON `u`.`country_id` = `c`.`id`",
		},
		{
			name: "callback join with several conditions",
			build: func(qb *QueryBuilder) {
				qb.Table("users", "u").Select("u.id").JoinWith("roles", "r", func(j *JoinBuilder) {
					j.Type(InnerJoin).
						On("u.role_id", "=", "r.id").
						On("r.level", "LIKE", "u.level").
						OnRaw("`r`.`active` = 1")
				})
			},
			expected: "SELECT `u`.`id` FROM `users` AS `u` INNER JOIN `roles` AS `r` ON `u`.`role_id` = `r`.`id` AND `r`.`level` = `u`.`level` AND `r`.`active` = 1",
		},
		{
			name: "direct clause with fields",
			build: func(qb *QueryBuilder) {
				qb.Table("users", "u").Select("u.id").Join(JoinClause{
					Table:  "countries",
					Alias:  "c",
					On:     []On{{Left: "u.country_id", Right: "c.id"}},
					Fields: []Field{{Name: "countryCode", Source: "code"}},
				})
			},
			expected: "SELECT `u`.`id`, `c`.`code` AS `countryCode` FROM `users` AS `u` LEFT JOIN `countries` AS `c` ON `u`.`country_id` = `c`.`id`",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			qb := NewBuilder(nil, nil)
			tc.build(qb)

			sql, _, err := qb.ToSQL()
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sql)
		})
	}
}

func TestUnion(t *testing.T) {
	admins := NewBuilder(nil, nil).Table("admins").Select("id").Where("level", ">", 2)

	sql, args, err := NewBuilder(nil, nil).
		Table("users").
		Select("id").
		Where("active", "=", 1).
		UnionAll(admins).
		OrderBy("id", "asc").
		Limit(5).
		ToSQL()

	require.NoError(t, err)
	assert.Equal(t, "SELECT `id` FROM `users` WHERE `active` = ? ORDER BY `id` ASC UNION ALL SELECT `id` FROM `admins` WHERE `level` > ? LIMIT 5", sql)
	assert.Equal(t, []any{1, 2}, args)
}

func TestLimit(t *testing.T) {
	cases := []struct {
		name     string
		offset   any
		count    []any
		expected string
	}{
		{name: "nil", offset: nil, expected: ""},
		{name: "single", offset: 5, expected: " LIMIT 5"},
		{name: "offset and count", offset: 5, count: []any{10}, expected: " LIMIT 5, 10"},
		{name: "nil count", offset: 5, count: []any{nil}, expected: " LIMIT 5"},
		{name: "numeric string", offset: "7", expected: " LIMIT 7"},
		{name: "integral float", offset: 3.0, expected: " LIMIT 3"},
		{name: "int64", offset: int64(12), count: []any{uint8(4)}, expected: " LIMIT 12, 4"},
		{name: "zero", offset: 0, expected: " LIMIT 0"},
		{name: "non numeric", offset: "abc", expected: ""},
		{name: "negative", offset: -1, expected: ""},
		{name: "fractional", offset: 2.5, expected: ""},
		{name: "NaN", offset: math.NaN(), expected: ""},
		{name: "bad count", offset: 5, count: []any{"x"}, expected: ""},
		{name: "overflow", offset: uint64(math.MaxUint64), expected: ""},
		{name: "unsupported type", offset: []int{1}, expected: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sql, _, err := NewBuilder(nil, nil).Table("users").Limit(tc.offset, tc.count...).ToSQL()
			require.NoError(t, err)
			assert.Equal(t, "SELECT * FROM `users`"+tc.expected, sql)
		})
	}
}

func TestLimit_NilClearsPreviousLimit(t *testing.T) {
	sql, _, err := NewBuilder(nil, nil).Table("users").Limit(5).Limit(nil).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `users`", sql)
}

func TestPaginate(t *testing.T) {
	cases := []struct {
		page, perPage int
		expected      string
	}{
		{3, 20, "SELECT * FROM `users` LIMIT 40, 20"},
		{0, 10, "SELECT * FROM `users` LIMIT 0, 10"},
		{1, 0, "SELECT * FROM `users`"},
	}

	for _, tc := range cases {
		sql, _, err := NewBuilder(nil, nil).Table("users").Paginate(tc.page, tc.perPage).ToSQL()
		require.NoError(t, err)
		assert.Equal(t, tc.expected, sql)
	}
}

func TestWriteStatements(t *testing.T) {
	cases := []struct {
		name     string
		build    func(qb *QueryBuilder)
		expected string
		args     []any
	}{
		{
			name: "insert with expression and upsert",
			build: func(qb *QueryBuilder) {
				qb.Table("users").
					Insert(Values{{"name", "John"}, {"created_at", Expr("NOW()")}}).
					OnDuplicateKeyUpdate("name")
			},
			expected: "INSERT INTO `users` (`name`, `created_at`) VALUES (?, NOW()) ON DUPLICATE KEY UPDATE `name` = VALUES(`name`)",
			args:     []any{"John"},
		},
		{
			name: "upsert without columns updates all",
			build: func(qb *QueryBuilder) {
				qb.Table("users").InsertMap(map[string]any{"name": "John", "id": 3}).OnDuplicateKeyUpdate()
			},
			expected: "INSERT INTO `users` (`id`, `name`) VALUES (?, ?) ON DUPLICATE KEY UPDATE `id` = VALUES(`id`), `name` = VALUES(`name`)",
			args:     []any{3, "John"},
		},
		{
			name: "replace",
			build: func(qb *QueryBuilder) {
				qb.Table("settings").Replace(Values{{"key", "theme"}, {"value", "dark"}})
			},
			expected: "REPLACE INTO `settings` (`key`, `value`) VALUES (?, ?)",
			args:     []any{"theme", "dark"},
		},
		{
			name: "update with join order and limit",
			build: func(qb *QueryBuilder) {
				qb.Table("users", "u").
					LeftJoin("profiles", "p", "u.id", "p.user_id").
					Where("p.verified", "=", true).
					Update(Values{{"u.status", "verified"}, {"u.updated_at", Expr("NOW()")}}).
					OrderBy("u.id", "asc").
					Limit(10)
			},
			expected: "UPDATE `users` AS `u` LEFT JOIN `profiles` AS `p` ON `u`.`id` = `p`.`user_id` SET `u`.`status` = ?, `u`.`updated_at` = NOW() WHERE `p`.`verified` = ? ORDER BY `u`.`id` ASC LIMIT 10",
			args:     []any{"verified", true},
		},
		{
			name: "delete",
			build: func(qb *QueryBuilder) {
				qb.Table("sessions").
					Where("expires_at", "<", "2024-01-01").
					OrderBy("id", "asc").
					Limit(100).
					Delete()
			},
			expected: "DELETE FROM `sessions` WHERE `expires_at` < ? ORDER BY `id` ASC LIMIT 100",
			args:     []any{"2024-01-01"},
		},
		{
			name: "alter",
			build: func(qb *QueryBuilder) {
				qb.Table("users").AlterTable(func(b *Blueprint) {
					b.String("nickname", 50).Nullable().Placed("user_name")
					b.DropColumn("legacy_flag")
					b.RenameColumn("mail", "email")
					b.Unique("nickname")
					b.DropIndex("users_mail_index")
				})
			},
			expected: "ALTER TABLE `users` ADD COLUMN `nickname` VARCHAR(50) NULL AFTER `user_name`, DROP COLUMN `legacy_flag`, RENAME COLUMN `mail` TO `email`, ADD UNIQUE KEY `users_nickname_unique` (`nickname`), DROP INDEX `users_mail_index`",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			qb := NewBuilder(nil, nil)
			tc.build(qb)

			sql, args, err := qb.ToSQL()
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sql)
			assert.Equal(t, tc.args, args)
		})
	}
}

func TestWriteStatements_NoColumns(t *testing.T) {
	_, _, err := NewBuilder(nil, nil).Table("users").Insert(nil).ToSQL()
	assert.ErrorIs(t, err, ErrNoColumns)

	_, _, err = NewBuilder(nil, nil).Table("users").Update(Values{}).ToSQL()
	assert.ErrorIs(t, err, ErrNoColumns)

	_, _, err = NewBuilder(nil, nil).Table("users").AlterTable(nil).ToSQL()
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestCreateTable(t *testing.T) {
	sql, args, err := NewBuilder(nil, nil).Table("users").CreateTable(func(b *Blueprint) {
		b.IfNotExists()
		b.ID()
		b.String("user_name", 120).Unique()
		b.String("email", 0)
		b.Boolean("active").Default(true)
		b.Decimal("balance", 10, 2).Default(0)
		b.JSON("settings").Nullable()
		b.Timestamps()
		b.SoftDeletes()
		b.Index("email")
	}).ToSQL()

	require.NoError(t, err)
	assert.Empty(t, args)

	g := newGolden(t)
	g.Assert(t, "create_users", []byte(sql+"\n"))
}

func TestFirst_LimitsACopy(t *testing.T) {
	adapter := &recordingAdapter{rows: []RawRow{{"id": int64(1)}, {"id": int64(2)}}}
	qb := NewBuilder(adapter, nil).Table("users").Where("status", "=", "active")

	row, err := qb.First(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RawRow{"id": int64(1)}, row)

	require.Len(t, adapter.queries, 1)
	assert.Equal(t, "SELECT * FROM `users` WHERE `status` = ? LIMIT 1", adapter.queries[0])
	assert.Equal(t, []any{"active"}, adapter.args[0])

	sql, _, err := qb.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `users` WHERE `status` = ?", sql)
}

func TestFirst_NoRows(t *testing.T) {
	adapter := &recordingAdapter{}
	row, err := NewBuilder(adapter, nil).Table("users").First(context.Background())
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestExec(t *testing.T) {
	adapter := &recordingAdapter{}
	res, err := NewBuilder(adapter, nil).Table("users").Where("id", "=", 9).Delete().Exec(context.Background())
	require.NoError(t, err)

	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.Equal(t, []string{"DELETE FROM `users` WHERE `id` = ?"}, adapter.queries)
}

func TestExecute_WithoutAdapter(t *testing.T) {
	_, err := NewBuilder(nil, nil).Table("users").Get(context.Background())
	assert.ErrorIs(t, err, ErrNoAdapter)

	_, err = NewBuilder(nil, nil).Table("users").Delete().Exec(context.Background())
	assert.ErrorIs(t, err, ErrNoAdapter)
}

func TestClone_IsIndependent(t *testing.T) {
	base := NewBuilder(nil, nil).Table("users").Where("a", "=", 1)
	clone := base.Clone().Where("b", "=", 2).Limit(3)

	baseSQL, baseArgs, err := base.ToSQL()
	require.NoError(t, err)
	cloneSQL, cloneArgs, err := clone.ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM `users` WHERE `a` = ?", baseSQL)
	assert.Equal(t, []any{1}, baseArgs)
	assert.Equal(t, "SELECT * FROM `users` WHERE `a` = ? AND `b` = ? LIMIT 3", cloneSQL)
	assert.Equal(t, []any{1, 2}, cloneArgs)
}

func TestIsDuplicateEntry(t *testing.T) {
	assert.False(t, IsDuplicateEntry(nil))
	assert.False(t, IsDuplicateEntry(sql.ErrNoRows))
}
