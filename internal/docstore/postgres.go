package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps each collection as a single jsonb array row. Writing
// the whole collection in one statement gives callers the atomic
// whole-collection replace they rely on; WithTx extends that guarantee
// across collections.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs the store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the backing table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS collections (
			name TEXT PRIMARY KEY,
			docs JSONB NOT NULL DEFAULT '[]'::jsonb,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("docstore: ensure schema: %w", err)
	}
	return nil
}

// querier is satisfied by both pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Get reads the full collection, empty when absent.
func (s *PostgresStore) Get(ctx context.Context, c Collection) ([]json.RawMessage, error) {
	return pgGet(ctx, s.pool, c)
}

// Put replaces the full collection.
func (s *PostgresStore) Put(ctx context.Context, c Collection, docs []json.RawMessage) error {
	return pgPut(ctx, s.pool, c, docs)
}

// WithTx runs fn inside a repeatable-read transaction so updates spanning
// collections (item stock plus transaction log) commit or roll back together.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(context.Context, Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("docstore: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("docstore: commit: %w", err)
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Get(ctx context.Context, c Collection) ([]json.RawMessage, error) {
	return pgGet(ctx, t.tx, c)
}

func (t *pgTx) Put(ctx context.Context, c Collection, docs []json.RawMessage) error {
	return pgPut(ctx, t.tx, c, docs)
}

func pgGet(ctx context.Context, q querier, c Collection) ([]json.RawMessage, error) {
	var payload []byte
	err := q.QueryRow(ctx, `SELECT docs FROM collections WHERE name = $1`, string(c)).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: get %s: %w", c, err)
	}
	var docs []json.RawMessage
	if err := json.Unmarshal(payload, &docs); err != nil {
		return nil, fmt.Errorf("docstore: decode %s: %w", c, err)
	}
	return docs, nil
}

func pgPut(ctx context.Context, q querier, c Collection, docs []json.RawMessage) error {
	if docs == nil {
		docs = []json.RawMessage{}
	}
	payload, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("docstore: encode %s: %w", c, err)
	}
	_, err = q.Exec(ctx, `
		INSERT INTO collections (name, docs, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET docs = EXCLUDED.docs, updated_at = NOW()`,
		string(c), payload)
	if err != nil {
		return fmt.Errorf("docstore: put %s: %w", c, err)
	}
	return nil
}
