package sql

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/csr/dialect"
)

func TestDriverConn(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := OpenDB(dialect.Postgres, db)
	assert.Equal(t, dialect.Postgres, drv.Dialect())

	conn, release, err := drv.Conn(context.Background())
	require.NoError(t, err)
	require.NotNil(t, conn)
	require.NoError(t, release())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithVars(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := OpenDB("pgx", db)

	mock.ExpectExec("SET foo = 'bar'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("RESET foo").WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := WithVar(context.Background(), "foo", "bar")
	conn, release, err := drv.Conn(ctx)
	require.NoError(t, err)
	rows, err := conn.QueryContext(ctx, "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, rows.Close())
	require.NoError(t, release())
	require.NoError(t, mock.ExpectationsWereMet())

	t.Run("escapes values", func(t *testing.T) {
		mock.ExpectExec(`SET foo = 'it''s'`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("RESET foo").WillReturnResult(sqlmock.NewResult(0, 0))
		_, release, err := drv.Conn(WithVar(context.Background(), "foo", "it's"))
		require.NoError(t, err)
		require.NoError(t, release())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects invalid names", func(t *testing.T) {
		_, _, err := drv.Conn(WithVar(context.Background(), "foo; DROP TABLE users", "x"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid session variable name")
	})
}

func TestVarFromContext(t *testing.T) {
	ctx := WithVar(context.Background(), "app.tenant", "a")
	ctx = WithVar(ctx, "app.tenant", "b")
	v, ok := VarFromContext(ctx, "app.tenant")
	assert.True(t, ok)
	assert.Equal(t, "b", v)
	_, ok = VarFromContext(ctx, "missing")
	assert.False(t, ok)
}

func TestOpenSQLite(t *testing.T) {
	drv, err := Open(dialect.SQLite, ":memory:")
	require.NoError(t, err)
	defer drv.Close()
	assert.Equal(t, dialect.SQLite, drv.Dialect())
	require.NoError(t, drv.DB().Ping())
}
