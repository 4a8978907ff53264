package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "pypi:requests", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "pypi:requests")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache should never hit")
	}
	if err := c.Delete(ctx, "pypi:requests"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, _ := c.Get(ctx, "pypi:numpy"); hit {
		t.Fatal("empty cache should miss")
	}
	if err := c.Set(ctx, "pypi:numpy", []byte("true"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "pypi:numpy")
	if err != nil || !hit {
		t.Fatalf("Get = hit %v err %v, want hit", hit, err)
	}
	if string(data) != "true" {
		t.Errorf("Get = %q, want %q", data, "true")
	}

	if err := c.Delete(ctx, "pypi:numpy"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "pypi:numpy"); hit {
		t.Error("deleted key should miss")
	}
	if err := c.Delete(ctx, "pypi:numpy"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}

	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero ttl should never expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("broken")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	data, hit, err := c.Get(ctx, "broken")
	if err != nil || hit || data != nil {
		t.Errorf("corrupt entry: got (%q, %v, %v), want miss", data, hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("cleared key should miss")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestRedisKeyPrefix(t *testing.T) {
	c := NewRedisCacheFromClient(nil, "")
	if got := c.Key("pypi:flask"); got != "pybundle:pypi:flask" {
		t.Errorf("Key = %q", got)
	}
	c = NewRedisCacheFromClient(nil, "ci:")
	if got := c.Key("pypi:flask"); got != "ci:pypi:flask" {
		t.Errorf("Key = %q", got)
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"zero never expires", time.Time{}, false},
		{"future", now.Add(time.Minute), false},
		{"past", now.Add(-time.Minute), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expired(tt.at, now); got != tt.want {
				t.Errorf("expired = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBackendConfigRequired(t *testing.T) {
	ctx := context.Background()
	if _, err := NewRedisCache(ctx, RedisConfig{}); err == nil {
		t.Error("NewRedisCache without address should fail")
	}
	if _, err := NewMongoCache(ctx, MongoConfig{}); err == nil {
		t.Error("NewMongoCache without URI should fail")
	}
}

func TestFileCacheClock(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "pypi:requests", []byte("{}"), time.Hour); err != nil {
		t.Fatal(err)
	}
	now = now.Add(59 * time.Minute)
	if _, hit, _ := c.Get(ctx, "pypi:requests"); !hit {
		t.Error("entry expired early")
	}
	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "pypi:requests"); hit {
		t.Error("entry outlived its ttl")
	}
}

func TestFileCacheLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "pypi:flask", []byte("{}"), 0); err != nil {
		t.Fatal(err)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "*", ".tmp-*"))
	if len(matches) != 0 {
		t.Errorf("temporary files left behind: %v", matches)
	}
	if n, _ := c.Clear(); n != 1 {
		t.Errorf("Clear = %d, want 1", n)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("shard directories left after Clear: %d", len(entries))
	}
}
