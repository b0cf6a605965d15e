// Package sqlite is a persistent Provider backed by SQLite (pure Go driver).
// Entries written by older releases survive restarts here, which is where
// lazy legacy-key migration earns its keep.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	pr "github.com/unkn0wn-root/llmcache/provider"
)

const createTable = `
CREATE TABLE IF NOT EXISTS llm_cache (
	key TEXT NOT NULL PRIMARY KEY,
	value BLOB NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0
);
`

type Provider struct {
	db  *sql.DB
	now func() time.Time
}

var _ pr.Provider = (*Provider)(nil)

// Open opens (or creates) the database at path. ":memory:" works for tests.
// The pool is capped at one connection: SQLite serializes writers anyway and
// an in-memory database is per-connection.
func Open(path string) (*Provider, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}
	return &Provider{db: db, now: time.Now}, nil
}

func (p *Provider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		value     []byte
		expiresAt int64
	)
	err := p.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM llm_cache WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite get: %w", err)
	}
	if expiresAt > 0 && p.now().UnixNano() > expiresAt {
		_, _ = p.db.ExecContext(ctx,
			`DELETE FROM llm_cache WHERE key = ? AND expires_at = ?`, key, expiresAt)
		return nil, false, nil
	}
	return value, true, nil
}

func (p *Provider) Set(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = p.now().Add(ttl).UnixNano()
	}
	if value == nil {
		value = []byte{} // NOT NULL column
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO llm_cache (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt)
	if err != nil {
		return false, fmt.Errorf("sqlite set: %w", err)
	}
	return true, nil
}

func (p *Provider) Del(ctx context.Context, key string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM llm_cache WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite del: %w", err)
	}
	return nil
}

// Purge removes expired rows and returns how many were dropped.
func (p *Provider) Purge(ctx context.Context) (int64, error) {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM llm_cache WHERE expires_at > 0 AND expires_at < ?`, p.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("sqlite purge: %w", err)
	}
	return res.RowsAffected()
}

func (p *Provider) Close(context.Context) error {
	return p.db.Close()
}
