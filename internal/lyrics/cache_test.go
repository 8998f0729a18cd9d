package lyrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiskCache(t *testing.T) *Cache {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := NewCache()
	require.NoError(t, err)
	return cache
}

func TestCacheRoundTrip(t *testing.T) {
	cache := newDiskCache(t)

	lines := []Line{
		{TimeSeconds: 1.5, Text: "hello"},
		{TimeSeconds: 3, Text: ""},
	}
	key := SongKey{VideoID: "v1", Title: "Song", Artist: "Artist"}
	require.NoError(t, cache.Put(key, lines))

	got, err := cache.Get("v1")
	require.NoError(t, err)
	assert.Equal(t, lines, got)
}

func TestCacheSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)

	first, err := NewCache()
	require.NoError(t, err)

	lines := []Line{{TimeSeconds: 1, Text: "persisted"}}
	require.NoError(t, first.Put(SongKey{VideoID: "v1"}, lines))

	// a fresh cache instance reads the same directory cold
	second, err := NewCache()
	require.NoError(t, err)

	got, err := second.Get("v1")
	require.NoError(t, err)
	assert.Equal(t, lines, got)
}

func TestCacheMiss(t *testing.T) {
	cache := newDiskCache(t)

	_, err := cache.Get("unknown")
	assert.ErrorIs(t, err, ErrCacheMiss)

	_, err = cache.Get("")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheRejectsInvalidEntries(t *testing.T) {
	cache := NewMemoryCache()

	assert.Error(t, cache.Put(SongKey{}, []Line{{TimeSeconds: 1}}))
	assert.Error(t, cache.Put(SongKey{VideoID: "v1"}, nil))
}

func TestCacheCorruptFile(t *testing.T) {
	cache := newDiskCache(t)

	require.NoError(t, cache.Put(SongKey{VideoID: "v1"}, []Line{{TimeSeconds: 1, Text: "x"}}))

	path := cache.filePath(cacheKey("v1"))
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0644))

	// drop the memory layer so the corrupt file is actually read
	cache.mu.Lock()
	cache.mem = map[string]*cacheEntry{}
	cache.mu.Unlock()

	_, err := cache.Get("v1")
	assert.ErrorIs(t, err, ErrCacheCorrupt)
}

func TestCacheClear(t *testing.T) {
	cache := newDiskCache(t)

	require.NoError(t, cache.Put(SongKey{VideoID: "v1"}, []Line{{TimeSeconds: 1, Text: "x"}}))
	require.NoError(t, cache.Put(SongKey{VideoID: "v2"}, []Line{{TimeSeconds: 2, Text: "y"}}))

	require.NoError(t, cache.Clear())

	_, err := cache.Get("v1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	entries, err := os.ReadDir(cache.basePath)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, filepath.Ext(entry.Name()) == ".bin")
	}
}

func TestMemoryCacheWithoutDisk(t *testing.T) {
	cache := NewMemoryCache()

	lines := []Line{{TimeSeconds: 1, Text: "x"}}
	require.NoError(t, cache.Put(SongKey{VideoID: "v1"}, lines))

	got, err := cache.Get("v1")
	require.NoError(t, err)
	assert.Equal(t, lines, got)
}
