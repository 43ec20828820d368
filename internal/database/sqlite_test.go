package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLite(t *testing.T) Driver {
	t.Helper()
	driver := &SQLiteDriver{}
	require.NoError(t, driver.Connect(filepath.Join(t.TempDir(), "driver_test.db")))
	t.Cleanup(func() { driver.Close() })
	return driver
}

func countRows(t *testing.T, db Driver) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM t").Scan(&n))
	return n
}

func TestSQLiteExecAndQuery(t *testing.T) {
	db := newSQLite(t)
	ctx := context.Background()

	assert.Equal(t, DialectSQLite, db.Dialect())

	require.NoError(t, db.ExecContext(ctx, "CREATE TABLE t (id INT PRIMARY KEY, name TEXT)"))
	require.NoError(t, db.ExecContext(ctx, "INSERT INTO t (id, name) VALUES (?, ?), (?, ?)", 1, "a", 2, "b"))

	rows, err := db.QueryContext(ctx, "SELECT id, name FROM t ORDER BY id")
	require.NoError(t, err)
	defer rows.Close()

	var got []string
	for rows.Next() {
		var id int
		var name string
		require.NoError(t, rows.Scan(&id, &name))
		got = append(got, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestExecuteTxCommitsOnSuccess(t *testing.T) {
	db := newSQLite(t)
	ctx := context.Background()
	require.NoError(t, db.ExecContext(ctx, "CREATE TABLE t (id INT PRIMARY KEY)"))

	err := db.ExecuteTx(ctx, func(tx interface{}) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		if err := db.ExecContext(txCtx, "INSERT INTO t (id) VALUES (?)", 1); err != nil {
			return err
		}
		return db.ExecContext(txCtx, "INSERT INTO t (id) VALUES (?)", 2)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, countRows(t, db))
}

func TestExecuteTxRollsBackOnError(t *testing.T) {
	db := newSQLite(t)
	ctx := context.Background()
	require.NoError(t, db.ExecContext(ctx, "CREATE TABLE t (id INT PRIMARY KEY)"))

	boom := errors.New("boom")
	err := db.ExecuteTx(ctx, func(tx interface{}) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		if err := db.ExecContext(txCtx, "INSERT INTO t (id) VALUES (?)", 1); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countRows(t, db))
}

func TestForeignKeysEnforcedByDefault(t *testing.T) {
	db := newSQLite(t)
	ctx := context.Background()

	require.NoError(t, db.ExecContext(ctx, "CREATE TABLE parent (id INT PRIMARY KEY)"))
	require.NoError(t, db.ExecContext(ctx, "CREATE TABLE child (id INT PRIMARY KEY, parent_id INT, FOREIGN KEY (parent_id) REFERENCES parent (id))"))

	err := db.ExecContext(ctx, "INSERT INTO child (id, parent_id) VALUES (?, ?)", 1, 42)
	require.Error(t, err)
}

func TestNewSelectsDriverByDialect(t *testing.T) {
	for _, dialect := range []string{DialectMySQL, DialectPostgres, DialectSQLite} {
		driver, err := New(dialect)
		require.NoError(t, err)
		assert.Equal(t, dialect, driver.Dialect())
	}

	_, err := New("oracle")
	require.Error(t, err)
}
