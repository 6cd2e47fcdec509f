// Package cache memoizes extraction results by file content hash and path
// in a SQLite database, with an in-memory front map.
package cache

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdxkit/clausewitz/internal/types"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type key struct {
	hash string
	kind string
	file string
}

// Cache stores JSON-encoded extraction results keyed by content hash,
// record kind and file path. The path is part of the key because
// extractors fall back to the file name for tags and ids.
// It is safe for concurrent use.
type Cache struct {
	db *sql.DB
	sq sq.StatementBuilderType

	mu     sync.RWMutex
	memory map[key][]byte

	hits, misses int
	types.Logger
}

// Open opens the cache database at dbPath, creating it and applying
// migrations as needed.
func Open(dbPath string, logger *slog.Logger) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("make cache dir: %w", err)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	if err := applyMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Cache{
		db:     db,
		sq:     sq.StatementBuilder,
		memory: make(map[key][]byte),
		Logger: types.Logger{L: types.Component(logger, "cache")},
	}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	hits, misses := c.Stats()
	c.Log(slog.LevelDebug, "cache closed", slog.Int("hits", hits), slog.Int("misses", misses))
	return c.db.Close()
}

// Get returns the stored result for (hash, kind, file).
func (c *Cache) Get(ctx context.Context, hash, kind, file string) ([]byte, bool, error) {
	k := key{hash: hash, kind: kind, file: file}

	c.mu.RLock()
	if v, ok := c.memory[k]; ok {
		c.mu.RUnlock()
		c.count(true)
		return v, true, nil
	}
	c.mu.RUnlock()

	q := c.sq.Select("result").
		From("extractions").
		Where(sq.Eq{"content_hash": hash, "kind": kind, "file": file}).
		Limit(1)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, false, err
	}
	var result []byte
	if err := c.db.QueryRowContext(ctx, sqlStr, args...).Scan(&result); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.count(false)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	c.mu.Lock()
	c.memory[k] = result
	c.mu.Unlock()
	c.count(true)
	return result, true, nil
}

// Put stores result for (hash, kind, file), replacing any previous value.
func (c *Cache) Put(ctx context.Context, hash, kind, file string, result []byte) error {
	q := c.sq.Insert("extractions").
		Columns("content_hash", "kind", "file", "result", "created_at").
		Values(hash, kind, file, result, time.Now().UTC().Format(time.RFC3339)).
		Suffix("ON CONFLICT(content_hash, kind, file) DO UPDATE SET result=excluded.result, created_at=excluded.created_at")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	if _, err := c.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}

	c.mu.Lock()
	c.memory[key{hash: hash, kind: kind, file: file}] = result
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored results.
func (c *Cache) Len(ctx context.Context) (int, error) {
	sqlStr, args, err := c.sq.Select("COUNT(*)").From("extractions").ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := c.db.QueryRowContext(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache len: %w", err)
	}
	return n, nil
}

// Stats returns the hit and miss counts since Open.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func (c *Cache) count(hit bool) {
	c.mu.Lock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()
}

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL UNIQUE,
        applied_at TEXT NOT NULL
    )`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	for _, name := range files {
		applied, err := isApplied(db, name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		b, err := migrationsFS.ReadFile(path.Join("migrations", name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(b)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_migrations(name, applied_at) VALUES (?, ?)`,
			name, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}
	return nil
}

func isApplied(db *sql.DB, name string) (bool, error) {
	var n int
	err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE name = ?`, name).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", name, err)
	}
	return true, nil
}
