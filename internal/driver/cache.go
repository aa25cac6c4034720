package driver

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/funvibe/adjoint/internal/codegen"
	"github.com/funvibe/adjoint/internal/config"
)

const cacheFile = "cache.db"

const cacheSchema = `CREATE TABLE IF NOT EXISTS outputs (
	key     TEXT PRIMARY KEY,
	source  TEXT NOT NULL,
	output  BLOB NOT NULL,
	created INTEGER NOT NULL
)`

// Cache stores generated output in .adjoint/cache.db, keyed by a hash of
// everything that can change it.
type Cache struct {
	dir string
	db  *sql.DB
}

// CacheDirFor returns the cache directory used for sources in dir.
func CacheDirFor(dir string) string {
	return filepath.Join(dir, config.CacheDirName)
}

// OpenCache opens or creates the cache database under dir.
func OpenCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, cacheFile))
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache: %w", err)
	}
	return &Cache{dir: dir, db: db}, nil
}

func (c *Cache) Dir() string { return c.dir }

// Lookup returns the output stored under key, if any.
func (c *Cache) Lookup(key string) ([]byte, bool, error) {
	var out []byte
	err := c.db.QueryRow(`SELECT output FROM outputs WHERE key = ?`, key).Scan(&out)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache: %w", err)
	}
	return out, true, nil
}

// Store records out under key, replacing any previous entry.
func (c *Cache) Store(key, source string, out []byte) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO outputs (key, source, output, created) VALUES (?, ?, ?, ?)`,
		key, source, out, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// Len returns the number of cached outputs.
func (c *Cache) Len() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM outputs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("reading cache: %w", err)
	}
	return n, nil
}

// Clean removes every cached output.
func (c *Cache) Clean() error {
	if _, err := c.db.Exec(`DELETE FROM outputs`); err != nil {
		return fmt.Errorf("cleaning cache: %w", err)
	}
	return nil
}

func (c *Cache) Close() error { return c.db.Close() }

// CacheKey hashes the source text, the source file name, the configuration
// fingerprint, the emit mode and the generator version. The name is part of
// the key because the generated header cites it.
func CacheKey(src, fingerprint []byte, name, emit string) string {
	h := sha256.New()
	h.Write(src)
	h.Write([]byte("\x00"))
	h.Write([]byte(name))
	h.Write([]byte("\x00"))
	h.Write(fingerprint)
	h.Write([]byte("\x00"))
	h.Write([]byte(emit))
	h.Write([]byte("\x00"))
	h.Write([]byte(codegen.Version))
	return hex.EncodeToString(h.Sum(nil))[:16]
}
