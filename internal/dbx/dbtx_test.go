package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:dbx_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS accounts (address TEXT PRIMARY KEY, lamports INTEGER NOT NULL);`)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM accounts;`)
	require.NoError(t, err)
	return db
}

func accountCount(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM accounts`).Scan(&n))
	return n
}

func insertAccount(t *testing.T, ctx context.Context, tx DBTX, addr string) {
	t.Helper()
	_, err := tx.ExecContext(ctx, `INSERT INTO accounts(address, lamports) VALUES (?, 100)`, addr)
	require.NoError(t, err)
}

func TestWithTx_CommitsAllWrites(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		insertAccount(t, ctx, tx, "vault-1")
		insertAccount(t, ctx, tx, "balance-1")
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, accountCount(t, db), "both rows land together on success")
}

func TestWithTx_RollsBackWhenFnFails(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		insertAccount(t, ctx, tx, "vault-1")
		return errors.New("boom")
	})
	require.Error(t, err)
	require.Equal(t, 0, accountCount(t, db), "no partial commit after fn error")
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		require.NotNil(t, recover(), "panic must propagate")
		require.Equal(t, 0, accountCount(t, db), "no partial commit after panic")
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		insertAccount(t, ctx, tx, "vault-1")
		panic("kaput")
	})
}

func TestWithTx_ReportsBeginFailure(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return nil
	})
	require.ErrorContains(t, err, "begin tx")
}
