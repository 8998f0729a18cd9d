package lyrics

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	cacheVersion   = 1
	defaultTTLDays = 30
	cacheDirName   = "ytmirror"
	cacheSubdir    = "transcripts"
)

var (
	ErrCacheMiss    = errors.New("cache miss")
	ErrCacheExpired = errors.New("cache expired")
	ErrCacheCorrupt = errors.New("cache corrupt")
)

// cacheEntry is the on-disk transcript record, keyed by videoId. Transcripts
// are replaced wholesale on refetch, never mutated in place.
type cacheEntry struct {
	Version   uint8
	VideoID   string
	Title     string
	Artist    string
	Lines     []Line
	CreatedAt int64
	ExpiresAt int64
}

// Cache is a gob-encoded disk cache of parsed transcripts with a memory
// layer in front. A Cache with an empty basePath degrades to memory-only.
type Cache struct {
	basePath string
	mu       sync.RWMutex
	mem      map[string]*cacheEntry
}

// NewCache places transcripts under the XDG cache directory.
func NewCache() (*Cache, error) {
	dir, err := cacheDirectory()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, cacheSubdir)
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, err
	}

	return &Cache{
		basePath: path,
		mem:      make(map[string]*cacheEntry),
	}, nil
}

// NewMemoryCache is a cache without a disk layer, used in tests and as the
// fallback when the cache directory cannot be created.
func NewMemoryCache() *Cache {
	return &Cache{mem: make(map[string]*cacheEntry)}
}

func cacheDirectory() (string, error) {
	// xdg cache home takes priority
	xdgCache := os.Getenv("XDG_CACHE_HOME")
	if xdgCache != "" {
		return filepath.Join(xdgCache, cacheDirName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".cache", cacheDirName), nil
}

func cacheKey(videoID string) string {
	hash := sha256.Sum256([]byte(videoID))
	return hex.EncodeToString(hash[:12])
}

func (c *Cache) filePath(key string) string {
	if c.basePath == "" {
		return ""
	}
	return filepath.Join(c.basePath, key+".bin")
}

// Get returns the cached transcript for a videoId, if present and fresh.
func (c *Cache) Get(videoID string) ([]Line, error) {
	if videoID == "" {
		return nil, ErrCacheMiss
	}

	key := cacheKey(videoID)

	c.mu.RLock()
	entry, exists := c.mem[key]
	c.mu.RUnlock()

	if exists {
		if entry.ExpiresAt > time.Now().Unix() {
			return entry.Lines, nil
		}
		c.mu.Lock()
		delete(c.mem, key)
		c.mu.Unlock()
	}

	if c.basePath == "" {
		return nil, ErrCacheMiss
	}

	path := c.filePath(key)
	entry, err := c.readFromDisk(path)
	if err != nil {
		return nil, err
	}

	if entry.ExpiresAt <= time.Now().Unix() {
		_ = os.Remove(path)
		return nil, ErrCacheExpired
	}

	c.mu.Lock()
	c.mem[key] = entry
	c.mu.Unlock()

	return entry.Lines, nil
}

// Put stores a freshly resolved transcript.
func (c *Cache) Put(s SongKey, lines []Line) error {
	if s.VideoID == "" || len(lines) == 0 {
		return errors.New("invalid cache entry")
	}

	now := time.Now().Unix()
	entry := &cacheEntry{
		Version:   cacheVersion,
		VideoID:   s.VideoID,
		Title:     s.Title,
		Artist:    s.Artist,
		Lines:     lines,
		CreatedAt: now,
		ExpiresAt: now + int64(defaultTTLDays*24*60*60),
	}

	key := cacheKey(s.VideoID)

	c.mu.Lock()
	c.mem[key] = entry
	c.mu.Unlock()

	if c.basePath == "" {
		return nil
	}

	return c.writeToDisk(c.filePath(key), entry)
}

// SongKey identifies a cached transcript.
type SongKey struct {
	VideoID string
	Title   string
	Artist  string
}

func (c *Cache) readFromDisk(path string) (*cacheEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	defer file.Close()

	var entry cacheEntry
	if err := gob.NewDecoder(file).Decode(&entry); err != nil {
		return nil, ErrCacheCorrupt
	}

	// version mismatch means stale format
	if entry.Version != cacheVersion {
		_ = os.Remove(path)
		return nil, ErrCacheCorrupt
	}

	return &entry, nil
}

func (c *Cache) writeToDisk(path string, entry *cacheEntry) error {
	// temp file first, then rename for atomicity
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	if err := gob.NewEncoder(file).Encode(entry); err != nil {
		file.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, path)
}

// Clear drops the memory layer and every transcript file.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.mem = make(map[string]*cacheEntry)
	c.mu.Unlock()

	if c.basePath == "" {
		return nil
	}

	entries, err := os.ReadDir(c.basePath)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".bin") {
			_ = os.Remove(filepath.Join(c.basePath, entry.Name()))
		}
	}

	return nil
}

// Prune removes expired and unreadable transcript files, returning the count.
func (c *Cache) Prune() (int, error) {
	if c.basePath == "" {
		return 0, nil
	}

	entries, err := os.ReadDir(c.basePath)
	if err != nil {
		return 0, err
	}

	pruned := 0
	now := time.Now().Unix()

	for _, dirEntry := range entries {
		if dirEntry.IsDir() || !strings.HasSuffix(dirEntry.Name(), ".bin") {
			continue
		}

		path := filepath.Join(c.basePath, dirEntry.Name())
		entry, err := c.readFromDisk(path)
		if err != nil {
			_ = os.Remove(path)
			pruned++
			continue
		}

		if entry.ExpiresAt <= now {
			_ = os.Remove(path)
			pruned++
		}
	}

	return pruned, nil
}
