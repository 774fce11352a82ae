package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if err := Clear(ctx, c); err != nil {
		t.Errorf("Clear error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("missing key: hit=%v err=%v", hit, err)
	}

	if err := c.Set(ctx, "graph:1", []byte(`{"nodes":[]}`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "graph:1")
	if err != nil || !hit || string(data) != `{"nodes":[]}` {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "graph:1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "graph:1"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "graph:1"); err != nil {
		t.Errorf("Delete of missing key should be a no-op: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.(*FileCache).path("k")); !os.IsNotExist(err) {
		t.Error("expired entry file should be removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	fc := &FileCache{dir: t.TempDir()}

	path := fc.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := fc.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, _ := NewFileCache(dir)

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := Clear(ctx, c); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("cache dir removed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty dir, got %d entries", len(entries))
	}
	if got := c.(*FileCache).Dir(); got != dir {
		t.Errorf("Dir = %q, want %q", got, dir)
	}
}

type plainCache struct{ NullCache }

func (plainCache) Clear() {}

func TestClearUnsupported(t *testing.T) {
	if err := Clear(context.Background(), &plainCache{}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	type layout struct{ NodeWidth float64 }
	tests := []struct {
		name string
		a, b string
	}{
		{"document", k.GraphKey("doc1", GraphKeyOpts{}), k.GraphKey("doc2", GraphKeyOpts{})},
		{"pattern", k.GraphKey("doc1", GraphKeyOpts{}), k.GraphKey("doc1", GraphKeyOpts{Pattern: true})},
		{"layout", k.GraphKey("doc1", GraphKeyOpts{Layout: layout{250}}), k.GraphKey("doc1", GraphKeyOpts{Layout: layout{300}})},
		{"format", k.RenderKey("g", RenderKeyOpts{Format: "svg"}), k.RenderKey("g", RenderKeyOpts{Format: "dot"})},
		{"selections", k.RenderKey("g", RenderKeyOpts{Format: "svg"}), k.RenderKey("g", RenderKeyOpts{Format: "svg", Selections: "db=1"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.a == tt.b {
				t.Errorf("expected distinct keys, both %s", tt.a)
			}
		})
	}

	if a, b := k.GraphKey("doc", GraphKeyOpts{Layout: layout{1}}), k.GraphKey("doc", GraphKeyOpts{Layout: layout{1}}); a != b {
		t.Error("GraphKey should be deterministic")
	}
	if !strings.HasPrefix(k.GraphKey("doc", GraphKeyOpts{}), "graph:") {
		t.Error("graph keys should be prefixed with graph:")
	}
	if !strings.HasPrefix(k.RenderKey("g", RenderKeyOpts{}), "render:") {
		t.Error("render keys should be prefixed with render:")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "user:123:")

	opts := GraphKeyOpts{Pattern: true}
	if got, want := scoped.GraphKey("doc", opts), "user:123:"+inner.GraphKey("doc", opts); got != want {
		t.Errorf("GraphKey = %s, want %s", got, want)
	}
	ropts := RenderKeyOpts{Format: "svg"}
	if got, want := scoped.RenderKey("g", ropts), "user:123:"+inner.RenderKey("g", ropts); got != want {
		t.Errorf("RenderKey = %s, want %s", got, want)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if got, want := scoped.GraphKey("d", GraphKeyOpts{}), "prefix:"+NewDefaultKeyer().GraphKey("d", GraphKeyOpts{}); got != want {
		t.Errorf("GraphKey = %s, want %s", got, want)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrUnavailable)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("wrapped error should unwrap to the cause")
	}
	if err.Error() != ErrUnavailable.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(ErrUnsupported) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("success: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return ErrUnsupported
	})
	if err != ErrUnsupported || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry once: err=%v calls=%d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := NewRedisCache(ctx, RedisOptions{Addr: "127.0.0.1:1"})
	if err == nil {
		t.Fatal("expected an error for an unreachable server")
	}
}

func TestRedisCacheClearWithoutPrefix(t *testing.T) {
	c := &RedisCache{}
	if err := c.Clear(context.Background()); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestNewMongoCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := NewMongoCache(ctx, MongoOptions{
		URI:        "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=100&connectTimeoutMS=100",
		Database:   "archview",
		Collection: "cache",
	})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestMongoEntry(t *testing.T) {
	now := time.Now()
	past, future := now.Add(-time.Minute), now.Add(time.Minute)

	tests := []struct {
		name string
		exp  *time.Time
		want bool
	}{
		{"no expiry", nil, false},
		{"future", &future, false},
		{"past", &past, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (mongoEntry{ExpiresAt: tt.exp}).expired(now); got != tt.want {
				t.Errorf("expired = %v, want %v", got, tt.want)
			}
		})
	}

	raw, err := bson.Marshal(mongoEntry{Key: "k", Data: []byte("v")})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if doc["_id"] != "k" {
		t.Errorf("_id = %v", doc["_id"])
	}
	if _, ok := doc["expires_at"]; ok {
		t.Error("expires_at should be omitted without a ttl")
	}
}
