package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileCache keeps one JSON document per key below a directory, sharded by
// the first byte of the key hash. It is the CLI default and survives
// between runs.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache opens (and creates) a cache rooted at dir.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// fileRecord is the on-disk form of an entry. Key is kept for inspection;
// lookups go by path.
type fileRecord struct {
	Key     string    `json:"key"`
	Data    []byte    `json:"data"`
	Expires time.Time `json:"expires,omitzero"`
}

// Get reads key. Unreadable or expired records are deleted and count as
// misses.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	p := c.path(key)
	raw, err := os.ReadFile(p)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}

	var rec fileRecord
	if json.Unmarshal(raw, &rec) != nil || expired(rec.Expires, c.now()) {
		_ = os.Remove(p)
		return nil, false, nil
	}
	return rec.Data, true, nil
}

// Set writes key through a temporary file and a rename, so concurrent
// readers never see a partial record.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	rec := fileRecord{Key: key, Data: data}
	if ttl > 0 {
		rec.Expires = c.now().Add(ttl)
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	p := c.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

// Delete removes key if present.
func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Clear deletes every record and empty shard directory and returns the
// number of records removed.
func (c *FileCache) Clear() (int, error) {
	removed := 0
	var shards []string
	err := filepath.WalkDir(c.dir, func(p string, d fs.DirEntry, err error) error {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return filepath.SkipDir
		case err != nil:
			return err
		case d.IsDir():
			if p != c.dir {
				shards = append(shards, p)
			}
			return nil
		case filepath.Ext(p) == ".json":
			if err := os.Remove(p); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	for _, s := range shards {
		_ = os.Remove(s)
	}
	return removed, err
}

func (c *FileCache) Close() error { return nil }

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
