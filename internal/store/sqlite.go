package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/TanmayDhobale/splvault/internal/dbx"
	"github.com/TanmayDhobale/splvault/internal/store/migrations"
)

// SQLiteStore persists accounts in an embedded sqlite database, for
// single-node deployments without a postgres at hand.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database file and applies the
// embedded migrations.
func NewSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "sqlite"); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, address solana.PublicKey) (*Record, error) {
	query := `SELECT owner, lamports, data FROM accounts WHERE address = ?`

	var owner string
	var lamports int64
	var data []byte
	err := s.db.QueryRowContext(ctx, query, address.String()).Scan(&owner, &lamports, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", address, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rowToRecord(address.String(), owner, lamports, data)
}

func (s *SQLiteStore) ListByOwner(ctx context.Context, owner solana.PublicKey) ([]*Record, error) {
	query := `SELECT address, owner, lamports, data FROM accounts WHERE owner = ? ORDER BY address`

	rows, err := s.db.QueryContext(ctx, query, owner.String())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (s *SQLiteStore) Put(ctx context.Context, records ...*Record) error {
	query := `
		INSERT INTO accounts (address, owner, lamports, data, updated_at)
		VALUES (?, ?, ?, ?, datetime('now'))
		ON CONFLICT(address) DO UPDATE
		SET owner = excluded.owner, lamports = excluded.lamports,
		    data = excluded.data, updated_at = datetime('now')`

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, r := range records {
			if _, err := tx.ExecContext(ctx, query,
				r.Address.String(), r.Owner.String(), int64(r.Lamports), r.Data); err != nil {
				return fmt.Errorf("db error: %w", err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
