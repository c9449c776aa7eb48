package inventory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 5 * time.Second

	// SQLSTATE class 22 covers data exceptions such as malformed jsonb.
	pgDataExceptionClass = "22"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS inventory_products (
		product_id TEXT PRIMARY KEY,
		position   INTEGER NOT NULL,
		type       TEXT NOT NULL,
		record     JSONB NOT NULL
	)
`

// PostgresStore keeps the snapshot in the inventory_products table, one row
// per product with its tagged record as jsonb.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, schemaSQL)
		return err
	})
	if err != nil {
		return classifyPgErr("ensure schema", err)
	}
	return nil
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, ps []Product) error {
	recs := make([]string, len(ps))
	for i, p := range ps {
		rec, err := json.Marshal(p)
		if err != nil {
			return encodeErr(p.ID, err)
		}
		recs[i] = string(rec)
	}

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_products`); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO inventory_products (product_id, position, type, record)
			VALUES ($1, $2, $3, $4)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, p := range ps {
			if _, err := stmt.ExecContext(ctx, p.ID, i, string(p.Kind), recs[i]); err != nil {
				return err
			}
		}

		return tx.Commit()
	})
	if err != nil {
		return classifyPgErr("save", err)
	}
	return nil
}

func (s *PostgresStore) LoadSnapshot(ctx context.Context) ([]Product, error) {
	var out []Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT record
			FROM inventory_products
			ORDER BY position ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Product, 0, 16)
		for rows.Next() {
			var raw []byte
			if err := rows.Scan(&raw); err != nil {
				return err
			}
			p, ok, err := decodeRecord(raw)
			if err != nil {
				return err
			}
			if ok {
				out = append(out, p)
			}
		}
		return rows.Err()
	})

	if errors.Is(err, ErrParse) {
		return nil, err
	}
	if err != nil {
		return nil, classifyPgErr("load", err)
	}
	return out, nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func classifyPgErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, pgDataExceptionClass) {
		return parseErrorf("%s: %v", op, err)
	}
	return ioErr(op, err)
}
