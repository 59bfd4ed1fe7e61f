package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLite backed cache for encoded planning results.
// Requires the solution_cache table created by repositories.InitSchema.
type SqliteSolutionCache struct {
	DB *sql.DB

	now func() time.Time
}

func NewSqliteSolutionCache(db *sql.DB) *SqliteSolutionCache {
	return &SqliteSolutionCache{DB: db, now: time.Now}
}

// Fetch a cached payload. Expired rows count as a miss.
func (s *SqliteSolutionCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.DB == nil {
		return nil, false, errors.New("solution cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get solution cache: key must not be empty")
	}

	var payload []byte
	var expiresAt int64
	err := s.DB.QueryRowContext(ctx, `
	SELECT
		payload,
		expires_at
	FROM solution_cache
	WHERE cache_key = ?;
	`, key).Scan(&payload, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get solution cache: query solution_cache table: %w", err)
	}

	if s.clock().UnixMilli() >= expiresAt {
		return nil, false, nil
	}

	return payload, true, nil
}

// Store a payload for ttl, replacing any previous entry.
func (s *SqliteSolutionCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if s.DB == nil {
		return errors.New("solution cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert solution cache: key must not be empty")
	}
	if ttl <= 0 {
		return nil
	}

	expiresAt := s.clock().Add(ttl).UnixMilli()
	_, err := s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO solution_cache (
		cache_key,
		payload,
		expires_at
	)
	VALUES (?, ?, ?);
	`, key, payload, expiresAt)
	if err != nil {
		return fmt.Errorf("insert solution cache key=%q: %w", key, err)
	}

	return nil
}

// Delete expired rows and return how many were removed.
func (s *SqliteSolutionCache) Purge(ctx context.Context) (int64, error) {
	if s.DB == nil {
		return 0, errors.New("solution cache: db is nil")
	}

	r, err := s.DB.ExecContext(ctx, `DELETE FROM solution_cache WHERE expires_at <= ?;`, s.clock().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("purge solution cache: %w", err)
	}
	n, err := r.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge solution cache: rows affected: %w", err)
	}
	return n, nil
}

func (s *SqliteSolutionCache) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
