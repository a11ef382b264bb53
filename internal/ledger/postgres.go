package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresStore persists ledger state to a PostgreSQL database.
// It implements the Store interface.
//
// Records live in a single ledger_state(key text primary key, value bytea)
// table; Apply upserts the whole write set inside one transaction, which gives
// the atomicity the contract layer depends on. Conflicting concurrent writers
// are serialised by row locks on the upserted keys.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore creates a PostgresStore backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, logger: logger}
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx,
		"SELECT value FROM ledger_state WHERE key = $1", key,
	).Scan(&value)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ledger key: %w", err)
	}
	return value, nil
}

// Apply implements Store.
func (s *PostgresStore) Apply(ctx context.Context, writes []Write) error {
	if len(writes) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, w := range writes {
		if _, err := tx.Exec(ctx,
			`INSERT INTO ledger_state (key, value) VALUES ($1, $2)
			 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
			w.Key, w.Value,
		); err != nil {
			return fmt.Errorf("upsert ledger key %q: %w", w.Key, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit ledger tx: %w", err)
	}

	s.logger.Debug("ledger write set applied", zap.Int("writes", len(writes)))
	return nil
}
