package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"

	DTO_llm "rag_service/internal/DTO/llm"
)

// CachedAnswer is one cached engine response.
type CachedAnswer struct {
	Question  string           `json:"question"`
	Response  DTO_llm.Response `json:"response"`
	CreatedAt time.Time        `json:"created_at"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// Cache stores engine responses keyed by question. A nil result with a nil
// error means a miss.
type Cache interface {
	Get(ctx context.Context, question string) (*CachedAnswer, error)
	Set(ctx context.Context, question string, response DTO_llm.Response, ttl time.Duration) error
	Delete(ctx context.Context, question string) error
}

// Key normalizes a question into a cache key.
func Key(question string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(question)))
	return hex.EncodeToString(sum[:])
}

// MemoryCache keeps answers in process memory. Used when DATABASE_URL is not
// configured, and in tests.
type MemoryCache struct {
	data map[string]*CachedAnswer
	mu   sync.RWMutex
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]*CachedAnswer)}
}

func (c *MemoryCache) Get(ctx context.Context, question string) (*CachedAnswer, error) {
	key := Key(question)

	c.mu.RLock()
	answer, ok := c.data[key]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if time.Now().After(answer.ExpiresAt) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return nil, nil
	}
	return answer, nil
}

func (c *MemoryCache) Set(ctx context.Context, question string, response DTO_llm.Response, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[Key(question)] = &CachedAnswer{
		Question:  question,
		Response:  response,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, question string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, Key(question))
	return nil
}

// PostgresCache persists answers in a single table with TTL expiry.
type PostgresCache struct {
	db *sql.DB
}

func NewPostgresCache(databaseURL string) (*PostgresCache, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	cache := &PostgresCache{db: db}
	if err := cache.init(); err != nil {
		return nil, err
	}
	return cache, nil
}

func (c *PostgresCache) init() error {
	_, err := c.db.Exec(`
	CREATE TABLE IF NOT EXISTS answer_cache (
		question_hash TEXT PRIMARY KEY,
		question      TEXT NOT NULL,
		response      JSONB NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		expires_at    TIMESTAMPTZ NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create answer_cache table: %w", err)
	}
	return nil
}

func (c *PostgresCache) Get(ctx context.Context, question string) (*CachedAnswer, error) {
	query := `
	SELECT question, response, created_at, expires_at
	FROM answer_cache
	WHERE question_hash = $1 AND expires_at > NOW()
	`

	var answer CachedAnswer
	var responseJSON []byte

	err := c.db.QueryRowContext(ctx, query, Key(question)).Scan(
		&answer.Question,
		&responseJSON,
		&answer.CreatedAt,
		&answer.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(responseJSON, &answer.Response); err != nil {
		return nil, err
	}
	return &answer, nil
}

func (c *PostgresCache) Set(ctx context.Context, question string, response DTO_llm.Response, ttl time.Duration) error {
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO answer_cache (question_hash, question, response, created_at, expires_at)
	VALUES ($1, $2, $3, NOW(), $4)
	ON CONFLICT (question_hash)
	DO UPDATE SET question = $2, response = $3, created_at = NOW(), expires_at = $4
	`

	_, err = c.db.ExecContext(ctx, query, Key(question), question, responseJSON, time.Now().Add(ttl))
	return err
}

func (c *PostgresCache) Delete(ctx context.Context, question string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM answer_cache WHERE question_hash = $1`, Key(question))
	return err
}

// CleanExpired removes expired rows, returns how many were deleted.
func (c *PostgresCache) CleanExpired(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx, `DELETE FROM answer_cache WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (c *PostgresCache) Close() error {
	return c.db.Close()
}
