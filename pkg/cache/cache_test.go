package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if _, hit, err := c.Get(ctx, "diagram:a"); err != nil || hit {
		t.Fatalf("empty cache Get = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "diagram:a", []byte(`{"vars":2}`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "diagram:a")
	if err != nil || !hit {
		t.Fatalf("Get after Set = hit %v, err %v", hit, err)
	}
	if string(data) != `{"vars":2}` {
		t.Errorf("Get = %q", data)
	}

	if err := c.Delete(ctx, "diagram:a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "diagram:a"); hit {
		t.Error("entry should be gone after Delete")
	}
	if err := c.Delete(ctx, "diagram:a"); err != nil {
		t.Errorf("deleting a missing key should succeed: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}
	n, err := c.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir should be empty, has %d entries", len(entries))
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
	if HashString("hello") != h1 {
		t.Error("HashString should match Hash")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	dk1 := k.DiagramKey("t", DiagramKeyOpts{Width: 16, Reduce: true})
	dk2 := k.DiagramKey("t", DiagramKeyOpts{Width: 16, Reduce: false})
	if dk1 == dk2 {
		t.Error("Different DiagramKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(dk1, "diagram:") {
		t.Errorf("DiagramKey prefix: %s", dk1)
	}

	ck1 := k.CombineKey("a", "b", CombineKeyOpts{Width: 4, Op: "and"})
	ck2 := k.CombineKey("b", "a", CombineKeyOpts{Width: 4, Op: "and"})
	if ck1 == ck2 {
		t.Error("CombineKey should depend on operand order")
	}

	ak1 := k.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("h", ArtifactKeyOpts{Format: "dot"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}

	ek1 := k.ExperimentKey(ExperimentKeyOpts{Vars: 5, Samples: 100, Seed: 1})
	ek2 := k.ExperimentKey(ExperimentKeyOpts{Vars: 5, Samples: 100, Seed: 2})
	if ek1 == ek2 {
		t.Error("Different seeds should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "user:123:")
	inner := NewDefaultKeyer()

	opts := DiagramKeyOpts{Width: 8, Reduce: true}
	if got, want := scoped.DiagramKey("t", opts), "user:123:"+inner.DiagramKey("t", opts); got != want {
		t.Errorf("DiagramKey = %s, want %s", got, want)
	}
	if key := scoped.ExperimentKey(ExperimentKeyOpts{}); !strings.HasPrefix(key, "user:123:experiment:") {
		t.Errorf("ExperimentKey should be prefixed: %s", key)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"})
	if !strings.HasPrefix(key, "prefix:artifact:") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("wrapped error should unwrap to ErrNetwork")
	}
	if IsRetryable(ErrNetwork) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	retryBaseDelay = time.Millisecond
	t.Cleanup(func() { retryBaseDelay = 100 * time.Millisecond })

	calls := 0
	if err := RetryWithBackoff(ctx, func() error { calls++; return nil }); err != nil || calls != 1 {
		t.Errorf("success: err %v, calls %d", err, calls)
	}

	permanent := errors.New("permanent")
	calls = 0
	err := RetryWithBackoff(ctx, func() error { calls++; return permanent })
	if err != permanent || calls != 1 {
		t.Errorf("non-retryable: err %v, calls %d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry once: err %v, calls %d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error { calls++; return Retryable(ErrNetwork) })
	if !errors.Is(err, ErrNetwork) || calls != 3 {
		t.Errorf("exhausted: err %v, calls %d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	if err == nil {
		t.Fatal("NewRedisCache should fail for an unreachable server")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("error should wrap ErrNetwork: %v", err)
	}

	if _, err := NewRedisCache(ctx, RedisConfig{}); err == nil {
		t.Error("NewRedisCache should require an address")
	}
}

func TestTransient(t *testing.T) {
	if transient(nil) != nil {
		t.Error("transient(nil) should be nil")
	}
	if IsRetryable(transient(context.Canceled)) {
		t.Error("cancellation should not be retried")
	}
	if err := transient(errors.New("connection reset")); !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("transient error should be a retryable network error: %v", err)
	}
}

type ttlRecorder struct {
	NullCache
	ttl time.Duration
}

func (r *ttlRecorder) Set(_ context.Context, _ string, _ []byte, ttl time.Duration) error {
	r.ttl = ttl
	return nil
}

func TestWithTTL(t *testing.T) {
	rec := &ttlRecorder{}
	c := WithTTL(rec, time.Minute)
	if err := c.Set(context.Background(), "k", nil, TTLDiagram); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if rec.ttl != time.Minute {
		t.Errorf("ttl = %v, want 1m", rec.ttl)
	}

	if got := WithTTL(rec, 0); got != Cache(rec) {
		t.Error("WithTTL(c, 0) should return c unchanged")
	}
}
