package redisclient

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"

	"github.com/mirkobrombin/redlock/v1/redlock"
)

func newTestClient(t *testing.T) (*Client, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := New(rdb)
	cleanup := func() {
		_ = rdb.Close()
		mr.Close()
	}
	return c, cleanup
}

func TestEvalLockUnlockExtendRoundTrip(t *testing.T) {
	c, cleanup := newTestClient(t)
	defer cleanup()
	ctx := context.Background()

	n, err := c.Eval(ctx, redlock.DefaultLockScript, []string{"k"}, []any{"v1", int64(1000)})
	if err != nil {
		t.Fatalf("lock eval: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 key set, got %d", n)
	}

	n, err = c.Eval(ctx, redlock.DefaultLockScript, []string{"k"}, []any{"v2", int64(1000)})
	if err != nil {
		t.Fatalf("second lock eval: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected NX to block second set, got %d", n)
	}

	n, err = c.Eval(ctx, redlock.DefaultExtendScript, []string{"k"}, []any{"v1", int64(2000)})
	if err != nil {
		t.Fatalf("extend eval: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected extend to match, got %d", n)
	}

	n, err = c.Eval(ctx, redlock.DefaultUnlockScript, []string{"k"}, []any{"wrong-value"})
	if err != nil {
		t.Fatalf("mismatched unlock eval: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected mismatched unlock to delete nothing, got %d", n)
	}

	n, err = c.Eval(ctx, redlock.DefaultUnlockScript, []string{"k"}, []any{"v1"})
	if err != nil {
		t.Fatalf("unlock eval: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected unlock to delete the key, got %d", n)
	}
}

func TestEvalMultiKeyCountsOnlyNewlySetKeys(t *testing.T) {
	c, cleanup := newTestClient(t)
	defer cleanup()
	ctx := context.Background()

	n, err := c.Eval(ctx, redlock.DefaultLockScript, []string{"a", "b"}, []any{"v1", int64(1000)})
	if err != nil {
		t.Fatalf("lock eval: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected both keys set, got %d", n)
	}

	n, err = c.Eval(ctx, redlock.DefaultLockScript, []string{"a", "c"}, []any{"v2", int64(1000)})
	if err != nil {
		t.Fatalf("partial lock eval: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected only the free key to be set, got %d", n)
	}
}

func TestScriptsAreCompiledOnce(t *testing.T) {
	c, cleanup := newTestClient(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := c.Eval(ctx, redlock.DefaultLockScript, []string{"k"}, []any{"v1", int64(1000)}); err != nil {
		t.Fatalf("lock eval: %v", err)
	}
	if _, err := c.Eval(ctx, redlock.DefaultLockScript, []string{"k2"}, []any{"v1", int64(1000)}); err != nil {
		t.Fatalf("second lock eval: %v", err)
	}
	if len(c.scripts) != 1 {
		t.Fatalf("expected 1 cached script, got %d", len(c.scripts))
	}
}

func TestIDIsStableAndUnique(t *testing.T) {
	c1, cleanup1 := newTestClient(t)
	defer cleanup1()
	c2, cleanup2 := newTestClient(t)
	defer cleanup2()

	if c1.ID() == "" || c2.ID() == "" {
		t.Fatal("expected non-empty client IDs")
	}
	if c1.ID() == c2.ID() {
		t.Fatal("expected distinct client IDs")
	}
	if c1.ID() != c1.ID() {
		t.Fatal("expected stable client ID across calls")
	}
}
