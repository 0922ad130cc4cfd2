package tilecache

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "tilecache.db"), 8, 8)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestTileRoundTripThroughSQLite(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if _, ok := c.GetTile(ctx, "N46E007"); ok {
		t.Fatal("expected miss before any Set")
	}

	want := []byte{1, 2, 3, 4, 5}
	if err := c.SetTile(ctx, "N46E007", 46.5, 7.5, want); err != nil {
		t.Fatalf("SetTile() error = %v", err)
	}

	// Evict from the in-memory LRU to force a round trip through sqlite.
	c.tileLRU.Remove("N46E007")

	got, ok := c.GetTile(ctx, "N46E007")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if string(got) != string(want) {
		t.Errorf("GetTile() = %v, want %v", got, want)
	}
}

func TestSearchResultRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	want := []byte("serialized-surface")
	if err := c.SetSearchResult(ctx, "k1", want); err != nil {
		t.Fatalf("SetSearchResult() error = %v", err)
	}

	got, ok := c.GetSearchResult(ctx, "k1")
	if !ok || string(got) != string(want) {
		t.Errorf("GetSearchResult() = (%v, %v), want (%v, true)", got, ok, want)
	}
}

func TestH3KeyForIsStable(t *testing.T) {
	a := H3KeyFor(46.5, 7.5)
	b := H3KeyFor(46.5, 7.5)
	if a == "" || a != b {
		t.Errorf("H3KeyFor() not stable: %q vs %q", a, b)
	}
}
