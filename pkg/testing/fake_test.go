package testing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/datamapper/pkg/database"
)

func TestFakeAdapter_FetchStubs(t *testing.T) {
	ctx := context.Background()
	fake := NewFakeAdapter().
		OnFetch("`roles`", database.RawRow{"id": int64(9)}).
		OnFetch("", database.RawRow{"id": int64(1)})

	rows, err := fake.Fetch(ctx, "SELECT * FROM `users`", 1)
	require.NoError(t, err)
	assert.Equal(t, []database.RawRow{{"id": int64(1)}}, rows)

	rows, err = fake.Fetch(ctx, "SELECT * FROM `roles`")
	require.NoError(t, err)
	assert.Equal(t, []database.RawRow{{"id": int64(9)}}, rows)

	rows, err = fake.Fetch(ctx, "SELECT * FROM `roles`")
	require.NoError(t, err)
	assert.Empty(t, rows)

	boom := errors.New("boom")
	fake.FailFetch("", boom)
	_, err = fake.Fetch(ctx, "SELECT 1")
	assert.ErrorIs(t, err, boom)

	fake.AssertCount(t, 4)
	assert.Equal(t, Statement{Query: "SELECT * FROM `users`", Args: []any{1}}, fake.Statements()[0])
}

func TestFakeAdapter_ExecDefaults(t *testing.T) {
	ctx := context.Background()
	fake := NewFakeAdapter().OnExec("UPDATE", 0, 3)

	res, err := fake.Execute(ctx, "INSERT INTO `users`")
	require.NoError(t, err)
	id, _ := res.LastInsertId()
	assert.Equal(t, int64(1), id)

	res, err = fake.Execute(ctx, "UPDATE `users`")
	require.NoError(t, err)
	n, _ := res.RowsAffected()
	assert.Equal(t, int64(3), n)

	res, err = fake.Execute(ctx, "INSERT INTO `users`")
	require.NoError(t, err)
	id, _ = res.LastInsertId()
	assert.Equal(t, int64(2), id)

	fake.AssertExecuted(t, "UPDATE")
	fake.AssertNotExecuted(t, "DELETE")
}

func TestFakeAdapter_Transaction(t *testing.T) {
	ctx := context.Background()
	fake := NewFakeAdapter()

	tx, err := fake.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.Execute(ctx, "DELETE FROM `users`")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.Equal(t, []string{"BEGIN", "DELETE FROM `users`", "COMMIT"}, fake.Queries())
	assert.Equal(t, 1, fake.Commits)

	_, err = tx.(*FakeTx).Begin(ctx)
	assert.ErrorIs(t, err, database.ErrNestedTransaction)
}

func TestFactory(t *testing.T) {
	row := UserFactory().Row(map[string]any{"userName": "jane"})
	assert.Equal(t, "jane", row["userName"])
	assert.Equal(t, int64(1), row["id"])
}
