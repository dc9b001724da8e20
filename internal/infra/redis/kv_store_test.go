package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestKVStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewKVStore(newClient(mr))

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "dokkai:progress", `{"streakDays":2}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := store.Get(ctx, "dokkai:progress")
	if err != nil || !ok || value != `{"streakDays":2}` {
		t.Fatalf("unexpected get result: value=%q ok=%v err=%v", value, ok, err)
	}

	// Ledger values never expire on their own.
	if mr.TTL("dokkai:progress") != 0 {
		t.Fatalf("expected no TTL on ledger key, got %v", mr.TTL("dokkai:progress"))
	}

	if err := store.Delete(ctx, "dokkai:progress"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("dokkai:progress") {
		t.Fatalf("expected key removed")
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
