package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type rowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps entries in the kv_entries table (see migrations).
type PostgresStore struct {
	pool rowQuerier
	now  func() time.Time
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("kv: pgx pool required")
	}
	return &PostgresStore{pool: pool, now: time.Now}
}

func newPostgresStoreWithExec(exec rowQuerier, now func() time.Time) *PostgresStore {
	if exec == nil {
		panic("kv: exec required")
	}
	return &PostgresStore{pool: exec, now: now}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv_entries WHERE key = $1 AND (expires_at IS NULL OR expires_at > $2)`
	var value []byte
	if err := s.pool.QueryRow(ctx, query, key, s.now()).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("kv: postgres get: %w", err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	query := `
		INSERT INTO kv_entries (key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at
	`
	if _, err := s.pool.Exec(ctx, query, key, value, s.expiresAt(ttl)); err != nil {
		return fmt.Errorf("kv: postgres set: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	query := `
		INSERT INTO kv_entries (key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at
		WHERE kv_entries.expires_at IS NOT NULL AND kv_entries.expires_at <= $4
	`
	ct, err := s.pool.Exec(ctx, query, key, value, s.expiresAt(ttl), s.now())
	if err != nil {
		return false, fmt.Errorf("kv: postgres setnx: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key); err != nil {
		return fmt.Errorf("kv: postgres delete: %w", err)
	}
	return nil
}

// Sweep removes expired rows.
func (s *PostgresStore) Sweep(ctx context.Context) (int, error) {
	ct, err := s.pool.Exec(ctx, `DELETE FROM kv_entries WHERE expires_at IS NOT NULL AND expires_at <= $1`, s.now())
	if err != nil {
		return 0, fmt.Errorf("kv: postgres sweep: %w", err)
	}
	return int(ct.RowsAffected()), nil
}

func (s *PostgresStore) expiresAt(ttl time.Duration) *time.Time {
	exp := expiry(s.now(), ttl)
	if exp.IsZero() {
		return nil
	}
	return &exp
}

var (
	_ Store   = (*PostgresStore)(nil)
	_ Sweeper = (*PostgresStore)(nil)
)
