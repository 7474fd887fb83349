package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sternrassler/property-listings/internal/testutil"
	"github.com/redis/go-redis/v9"
)

func TestNewRedisStore(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	store := NewRedisStore(client)
	if store == nil {
		t.Fatal("NewRedisStore returned nil")
	}
	if store.redis != client {
		t.Error("RedisStore redis client not set correctly")
	}
}

func TestNewRedisStore_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewRedisStore should panic with nil redis client")
		}
	}()
	NewRedisStore(nil)
}

func TestParseInfoStats(t *testing.T) {
	tests := []struct {
		name    string
		info    string
		want    Stats
		wantErr bool
	}{
		{
			name: "typical stats section",
			info: "# Stats\r\ntotal_connections_received:3\r\nkeyspace_hits:80\r\nkeyspace_misses:20\r\nexpired_keys:0\r\n",
			want: Stats{Hits: 80, Misses: 20},
		},
		{
			name: "fresh server",
			info: "# Stats\r\nkeyspace_hits:0\r\nkeyspace_misses:0\r\n",
			want: Stats{},
		},
		{
			name: "counters absent",
			info: "# Stats\r\ntotal_commands_processed:1\r\n",
			want: Stats{},
		},
		{
			name:    "malformed counter",
			info:    "keyspace_hits:lots\r\n",
			wantErr: true,
		},
		{
			name:    "negative counter",
			info:    "keyspace_misses:-1\r\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseInfoStats(tt.info)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseInfoStats() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseInfoStats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEscapeGlob(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "response:/properties:", want: "response:/properties:"},
		{in: "a*b", want: `a\*b`},
		{in: "[x]?", want: `\[x\]\?`},
		{in: `back\slash`, want: `back\\slash`},
	}

	for _, tt := range tests {
		if got := escapeGlob(tt.in); got != tt.want {
			t.Errorf("escapeGlob(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRedisStore_SetAndGet(t *testing.T) {
	store := NewRedisStore(testutil.StartRedis(t))
	ctx := context.Background()

	if err := store.Set(ctx, "all_properties", []byte("[1,2,3]"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, "all_properties")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "[1,2,3]" {
		t.Errorf("Get = %s, want [1,2,3]", got)
	}
}

func TestRedisStore_Get_CacheMiss(t *testing.T) {
	store := NewRedisStore(testutil.StartRedis(t))

	_, err := store.Get(context.Background(), "nonexistent")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestRedisStore_TTL(t *testing.T) {
	client := testutil.StartRedis(t)
	store := NewRedisStore(client)
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	ttl, err := client.TTL(ctx, "k").Result()
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= 59*time.Minute || ttl > time.Hour {
		t.Errorf("TTL = %v, want ~1h", ttl)
	}

	// Short TTL expires server-side
	if err := store.Set(ctx, "short", []byte("v"), 50*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	if _, err := store.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after expiry, got %v", err)
	}
}

func TestRedisStore_DeletePrefix(t *testing.T) {
	store := NewRedisStore(testutil.StartRedis(t))
	ctx := context.Background()

	for _, key := range []string{"response:/properties:a", "response:/properties:b", "all_properties"} {
		if err := store.Set(ctx, key, []byte("x"), time.Minute); err != nil {
			t.Fatalf("Set %s failed: %v", key, err)
		}
	}

	removed, err := store.DeletePrefix(ctx, "response:/properties:")
	if err != nil {
		t.Fatalf("DeletePrefix failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if _, err := store.Get(ctx, "all_properties"); err != nil {
		t.Errorf("unrelated key removed: %v", err)
	}
}

func TestRedisStore_Stats(t *testing.T) {
	store := NewRedisStore(testutil.StartRedis(t))
	ctx := context.Background()

	before, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	_ = store.Set(ctx, "k", []byte("v"), time.Minute)
	_, _ = store.Get(ctx, "k")
	_, _ = store.Get(ctx, "missing")

	after, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if after.Hits-before.Hits != 1 {
		t.Errorf("hits delta = %d, want 1", after.Hits-before.Hits)
	}
	if after.Misses-before.Misses != 1 {
		t.Errorf("misses delta = %d, want 1", after.Misses-before.Misses)
	}
}

func TestRedisStore_Unreachable(t *testing.T) {
	store := NewRedisStore(testutil.UnreachableRedis(t))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Get: expected ErrStoreUnavailable, got %v", err)
	}
	if err := store.Set(ctx, "k", []byte("v"), time.Minute); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Set: expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := store.Stats(ctx); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Stats: expected ErrStoreUnavailable, got %v", err)
	}
	if err := store.Ping(ctx); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Ping: expected ErrStoreUnavailable, got %v", err)
	}
}
