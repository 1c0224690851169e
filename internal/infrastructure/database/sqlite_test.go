package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t,
		"shelf.db?_pragma=journal_mode%28WAL%29&_pragma=synchronous%28NORMAL%29&_pragma=busy_timeout%285000%29",
		sqliteDSN("shelf.db"))
	assert.Contains(t, sqliteDSN("file:shelf.db?cache=shared"), "cache=shared&_pragma=")
}

func TestOpenSQLite_PragmasOnEveryConnection(t *testing.T) {
	ctx := context.Background()

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "shelf.db"))
	require.NoError(t, err)
	defer db.Close()

	// hold both at once so the pool has to open a second connection
	conn1, err := db.DB.Conn(ctx)
	require.NoError(t, err)
	defer conn1.Close()

	conn2, err := db.DB.Conn(ctx)
	require.NoError(t, err)
	defer conn2.Close()

	for i, conn := range []interface {
		QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	}{conn1, conn2} {
		var timeout int
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
		assert.Equal(t, 5000, timeout, "conn%d busy_timeout", i+1)

		var mode string
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
		assert.Equal(t, "wal", mode, "conn%d journal_mode", i+1)

		var sync int
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA synchronous").Scan(&sync))
		assert.Equal(t, 1, sync, "conn%d synchronous is NORMAL", i+1)
	}
}

func TestOpenSQLite_Memory(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, db.Ping(ctx))

	require.NoError(t, db.Close())
	assert.NoError(t, db.Close(), "close is idempotent")
	assert.Error(t, db.Ping(ctx))
}
