package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/TanmayDhobale/splvault/internal/dbx"
	"github.com/TanmayDhobale/splvault/internal/store/migrations"
)

// PostgresStore persists accounts in a postgres table, keyed by the base58
// address.
type PostgresStore struct {
	db *sql.DB
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// NewPostgresStore opens the database and applies the embedded migrations.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres store: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "postgres"); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Get(ctx context.Context, address solana.PublicKey) (*Record, error) {
	query := `SELECT owner, lamports, data FROM accounts WHERE address = $1`

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

func (s *PostgresStore) ListByOwner(ctx context.Context, owner solana.PublicKey) ([]*Record, error) {
	query := `SELECT address, owner, lamports, data FROM accounts WHERE owner = $1 ORDER BY address`

	rows, err := s.db.QueryContext(ctx, query, owner.String())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (s *PostgresStore) Put(ctx context.Context, records ...*Record) error {
	query := `
		INSERT INTO accounts (address, owner, lamports, data, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (address) DO UPDATE
		SET owner = EXCLUDED.owner, lamports = EXCLUDED.lamports,
		    data = EXCLUDED.data, updated_at = now()`

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

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// rowToRecord rebuilds a Record from its stored columns.
func rowToRecord(address, owner string, lamports int64, data []byte) (*Record, error) {
	addr, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("stored address %q: %w", address, err)
	}
	own, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return nil, fmt.Errorf("stored owner %q: %w", owner, err)
	}
	return &Record{Address: addr, Owner: own, Lamports: uint64(lamports), Data: data}, nil
}

// scanRecords drains a four-column result set into records.
func scanRecords(rows *sql.Rows) ([]*Record, error) {
	var out []*Record
	for rows.Next() {
		var address, owner string
		var lamports int64
		var data []byte
		if err := rows.Scan(&address, &owner, &lamports, &data); err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		r, err := rowToRecord(address, owner, lamports, data)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account rows: %w", err)
	}
	return out, nil
}
