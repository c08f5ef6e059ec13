package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

type IdempotencyCacheEntry struct {
	Key          string
	AccountID    string
	RequestHash  string
	StatusCode   int
	ResponseBody []byte
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

type IdempotencyRepository struct {
	db *sql.DB
}

func NewIdempotencyRepository(db *sql.DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

func (r *IdempotencyRepository) Get(ctx context.Context, key, accountID string) (*IdempotencyCacheEntry, error) {
	var e IdempotencyCacheEntry
	err := r.db.QueryRowContext(ctx,
		`SELECT idempotency_key, account_id, request_hash, status_code, response_body, created_at, expires_at
		FROM idempotency_cache
		WHERE idempotency_key = $1 AND account_id = $2 AND expires_at > now()`,
		key, accountID,
	).Scan(&e.Key, &e.AccountID, &e.RequestHash, &e.StatusCode, &e.ResponseBody, &e.CreatedAt, &e.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &e, nil
}

func (r *IdempotencyRepository) Set(ctx context.Context, entry *IdempotencyCacheEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO idempotency_cache (idempotency_key, account_id, request_hash, status_code, response_body, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (idempotency_key, account_id) DO NOTHING`,
		entry.Key, entry.AccountID, entry.RequestHash, entry.StatusCode, entry.ResponseBody, entry.CreatedAt, entry.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("Set: %w", err)
	}
	return nil
}

func (r *IdempotencyRepository) CleanExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM idempotency_cache WHERE expires_at < now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("CleanExpired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("CleanExpired: rows affected: %w", err)
	}
	return n, nil
}

// MemoryIdempotencyCache serves the file-backed deployment, where there is
// no database to hold replay entries. Entries do not survive a restart.
type MemoryIdempotencyCache struct {
	mu      sync.Mutex
	entries map[string]IdempotencyCacheEntry
	now     func() time.Time
}

func NewMemoryIdempotencyCache() *MemoryIdempotencyCache {
	return &MemoryIdempotencyCache{
		entries: make(map[string]IdempotencyCacheEntry),
		now:     time.Now,
	}
}

func memoryKey(key, accountID string) string {
	return accountID + "\x00" + key
}

func (c *MemoryIdempotencyCache) Get(_ context.Context, key, accountID string) (*IdempotencyCacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[memoryKey(key, accountID)]
	if !ok || !e.ExpiresAt.After(c.now()) {
		return nil, nil
	}
	return &e, nil
}

func (c *MemoryIdempotencyCache) Set(_ context.Context, entry *IdempotencyCacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := memoryKey(entry.Key, entry.AccountID)
	if existing, ok := c.entries[k]; ok && existing.ExpiresAt.After(c.now()) {
		return nil
	}
	c.entries[k] = *entry
	return nil
}

func (c *MemoryIdempotencyCache) CleanExpired(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	now := c.now()
	for k, e := range c.entries {
		if !e.ExpiresAt.After(now) {
			delete(c.entries, k)
			n++
		}
	}
	return n, nil
}
