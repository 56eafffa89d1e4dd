package sql

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/csr/dialect"
)

func openSQLite(t *testing.T) *Driver {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)
	drv := OpenDB(dialect.SQLite, db)
	t.Cleanup(func() { _ = drv.Close() })

	_, err = db.Exec(`CREATE TABLE users (user_id INTEGER PRIMARY KEY, name TEXT NOT NULL, age INTEGER)`)
	require.NoError(t, err)
	return drv
}

func TestSQLite_CommandAndScan(t *testing.T) {
	ctx := context.Background()
	drv := openSQLite(t)
	conn, release, err := drv.Conn(ctx)
	require.NoError(t, err)
	defer func() { require.NoError(t, release()) }()

	age := 30
	for i, u := range []struct {
		name string
		age  *int
	}{{"a8m", &age}, {"nati", nil}} {
		cmd := NewCommand(drv.Dialect()).
			Append("INSERT INTO users (user_id, name, age) VALUES (@_0, @_1, @_2)").
			Bind(0, i+1, dialect.TypeUnknown).
			Bind(1, u.name, dialect.TypeUnknown).
			Bind(2, u.age, dialect.TypeUnknown)
		query, args := cmd.Query()
		assert.Equal(t, "INSERT INTO users (user_id, name, age) VALUES (?, ?, ?)", query)
		res, err := conn.ExecContext(ctx, query, args...)
		require.NoError(t, err)
		n, err := res.RowsAffected()
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	}

	t.Run("conditional fragment", func(t *testing.T) {
		name := "nati"
		cmd := NewCommand(drv.Dialect()).Append("SELECT user_id, name, age FROM users WHERE 1=1")
		cmd.Append("AND name = @_0").Bind(0, &name, dialect.TypeUnknown)
		query, args := cmd.Query()
		rows, err := conn.QueryContext(ctx, query, args...)
		require.NoError(t, err)
		defer rows.Close()

		cols, err := ColumnsOf(rows)
		require.NoError(t, err)
		id, nm, ag, missing := cols.Ordinal("ID", "user_id"), cols.Ordinal("Name"), cols.Ordinal("Age"), cols.Ordinal("CreatedAt", "created_at")
		assert.Equal(t, -1, missing)

		require.True(t, rows.Next())
		rec, err := ScanRecord(rows, cols.Len())
		require.NoError(t, err)
		v, ok := rec.Int64(id)
		assert.True(t, ok)
		assert.Equal(t, int64(2), v)
		s, ok := rec.String(nm)
		assert.True(t, ok)
		assert.Equal(t, "nati", s)
		_, ok = rec.Int64(ag)
		assert.False(t, ok, "NULL column")
		_, ok = rec.String(missing)
		assert.False(t, ok, "missing column")
		assert.False(t, rows.Next())
		require.NoError(t, rows.Err())
	})

	t.Run("unconditional only", func(t *testing.T) {
		query, args := NewCommand(drv.Dialect()).Append("SELECT count(*) AS n FROM users WHERE 1=1").Query()
		assert.Empty(t, args)
		var n int
		require.NoError(t, conn.QueryRowContext(ctx, query).Scan(&n))
		assert.Equal(t, 2, n)
	})
}
