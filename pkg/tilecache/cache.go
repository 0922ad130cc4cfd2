package tilecache

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/uber/h3-go/v4"
)

// h3Resolution matches pkg/placeindex's bucketing granularity, so both
// caches group roughly the same geographic neighbourhood into one cell.
const h3Resolution = 5

// H3KeyFor returns the H3 cell id for (lat, lon) as a string, used as a
// locality-aware namespace alongside the raw cache key.
func H3KeyFor(lat, lon float64) string {
	cell, err := h3.LatLngToCell(h3.NewLatLng(lat, lon), h3Resolution)
	if err != nil {
		return ""
	}
	return cell.String()
}

// Cache is the process-wide, LRU-bounded, sqlite-backed cache for decoded
// DEM tiles and whole search_from_point results (spec §5 "elevation-tile
// cache" and §9 supplemented query-memoization layer).
type Cache struct {
	db        *DB
	mu        sync.Mutex
	tileLRU   *lru.Cache[string, []byte]
	resultLRU *lru.Cache[string, []byte]
}

// Open opens the backing sqlite database at dbPath and wraps it with two
// in-memory LRUs of the given sizes.
func Open(dbPath string, tileLRUSize, resultLRUSize int) (*Cache, error) {
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, err
	}
	tileLRU, err := lru.New[string, []byte](tileLRUSize)
	if err != nil {
		return nil, fmt.Errorf("tilecache: create tile lru: %w", err)
	}
	resultLRU, err := lru.New[string, []byte](resultLRUSize)
	if err != nil {
		return nil, fmt.Errorf("tilecache: create result lru: %w", err)
	}
	return &Cache{db: db, tileLRU: tileLRU, resultLRU: resultLRU}, nil
}

// Close releases the underlying sqlite connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// GetTile returns a previously cached decoded-tile byte blob for key, first
// checking the in-memory LRU, falling back to sqlite on miss.
func (c *Cache) GetTile(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	if v, ok := c.tileLRU.Get(key); ok {
		c.mu.Unlock()
		return v, true
	}
	c.mu.Unlock()

	var data []byte
	err := c.db.QueryRowContext(ctx, "SELECT data FROM dem_tile_cache WHERE key = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) || err != nil {
		return nil, false
	}
	decoded, err := decompress(data)
	if err != nil {
		return nil, false
	}
	c.mu.Lock()
	c.tileLRU.Add(key, decoded)
	c.mu.Unlock()
	return decoded, true
}

// SetTile persists a decoded-tile byte blob for key, keyed additionally by
// the H3 cell covering (lat, lon) for locality-aware pruning.
func (c *Cache) SetTile(ctx context.Context, key string, lat, lon float64, data []byte) error {
	c.mu.Lock()
	c.tileLRU.Add(key, data)
	c.mu.Unlock()

	compressed, err := compress(data)
	if err != nil {
		compressed = data
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO dem_tile_cache (key, h3_cell, data) VALUES (?, ?, ?)`,
		key, H3KeyFor(lat, lon), compressed)
	return err
}

// GetSearchResult returns a previously cached search_from_point response
// blob keyed by a memo.Key-derived string.
func (c *Cache) GetSearchResult(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	if v, ok := c.resultLRU.Get(key); ok {
		c.mu.Unlock()
		return v, true
	}
	c.mu.Unlock()

	var data []byte
	err := c.db.QueryRowContext(ctx, "SELECT data FROM search_result_cache WHERE key = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) || err != nil {
		return nil, false
	}
	decoded, err := decompress(data)
	if err != nil {
		return nil, false
	}
	c.mu.Lock()
	c.resultLRU.Add(key, decoded)
	c.mu.Unlock()
	return decoded, true
}

// SetSearchResult persists a search_from_point response blob keyed by key.
func (c *Cache) SetSearchResult(ctx context.Context, key string, data []byte) error {
	c.mu.Lock()
	c.resultLRU.Add(key, data)
	c.mu.Unlock()

	compressed, err := compress(data)
	if err != nil {
		compressed = data
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO search_result_cache (key, data) VALUES (?, ?)`,
		key, compressed)
	return err
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		return data, nil
	}
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
