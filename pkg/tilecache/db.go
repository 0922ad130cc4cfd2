// Package tilecache persists decoded DEM tiles and whole search_from_point
// results behind a process-wide LRU, backed by sqlite for cross-process
// reuse, adapted from the teacher's pkg/db + pkg/cache + pkg/store.
package tilecache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the sqlite connection used for cross-process persistence of
// cached tiles and search results.
type DB struct {
	*sql.DB
}

// OpenDB opens (creating if necessary) the sqlite database at path and
// runs its migrations, in the teacher's pkg/db.Init style: WAL mode, a
// single connection to avoid SQLITE_BUSY under concurrent writers.
func OpenDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("tilecache: create db dir: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("tilecache: open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("tilecache: ping db: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("tilecache: enable WAL mode: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA busy_timeout=30000;"); err != nil {
		return nil, fmt.Errorf("tilecache: set busy timeout: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	d := &DB{sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("tilecache: migration failed: %w", err)
	}
	return d, nil
}

func (d *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS dem_tile_cache (
			key TEXT PRIMARY KEY,
			h3_cell TEXT,
			data BLOB,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS search_result_cache (
			key TEXT PRIMARY KEY,
			data BLOB,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, q := range queries {
		if _, err := d.Exec(q); err != nil {
			return fmt.Errorf("exec: %w query: %s", err, q)
		}
	}
	return nil
}
