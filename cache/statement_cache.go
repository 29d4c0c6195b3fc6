package cache

import (
	"context"
	"database/sql"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Preparer is the subset of database/sql handles able to prepare statements
// (*sql.DB, *sql.Tx and *sql.Conn all qualify).
type Preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// StatementCache keeps prepared statements alive across executions, evicting
// least-recently-used entries and closing them as they fall out. Keys are
// SQL fingerprints (see Fingerprint).
type StatementCache struct {
	cache *lru.Cache[uint64, *sql.Stmt]
	mu    sync.RWMutex
}

// NewStatementCache builds a cache bounded to size entries.
func NewStatementCache(size int) *StatementCache {
	c, _ := lru.NewWithEvict(size, func(_ uint64, stmt *sql.Stmt) {
		stmt.Close()
	})
	return &StatementCache{cache: c}
}

// Get returns the cached statement for key, if present.
func (s *StatementCache) Get(key uint64) (*sql.Stmt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.Get(key)
}

// GetOrPrepare returns the cached statement for key, preparing and caching
// it on a miss.
func (s *StatementCache) GetOrPrepare(ctx context.Context, key uint64, conn Preparer, query string) (*sql.Stmt, error) {
	s.mu.RLock()
	if stmt, ok := s.cache.Get(key); ok {
		s.mu.RUnlock()
		return stmt, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring the write lock.
	if stmt, ok := s.cache.Get(key); ok {
		return stmt, nil
	}
	stmt, err := conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, stmt)
	return stmt, nil
}

// Len reports the number of live cached statements.
func (s *StatementCache) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.Len()
}

// Purge drops every entry, closing each statement via the evict callback.
// The cache stays usable afterwards. Callers invalidate on transaction
// boundaries, since statements prepared on a transaction die with it.
func (s *StatementCache) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Purge()
}

// Close purges the cache, closing every cached statement via the evict
// callback.
func (s *StatementCache) Close() error {
	s.Purge()
	return nil
}
