package polllock

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLockMutualExclusion(t *testing.T) {
	l := NewMemoryLock(time.Minute)
	ctx := context.Background()

	ok, err := l.TryAcquire(ctx)
	if err != nil || !ok {
		t.Fatalf("first TryAcquire = %v, %v", ok, err)
	}

	ok, err = l.TryAcquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("second TryAcquire should fail while the lock is held")
	}

	if err := l.Release(ctx); err != nil {
		t.Fatal(err)
	}
	ok, err = l.TryAcquire(ctx)
	if err != nil || !ok {
		t.Errorf("TryAcquire after Release = %v, %v", ok, err)
	}
}

func TestMemoryLockExpiresAfterTTL(t *testing.T) {
	l := NewMemoryLock(time.Minute)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }
	ctx := context.Background()

	if ok, _ := l.TryAcquire(ctx); !ok {
		t.Fatal("first acquire failed")
	}

	// A stale holder does not block a new acquirer once the TTL passes.
	l.now = func() time.Time { return base.Add(time.Minute + time.Second) }
	ok, err := l.TryAcquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("TryAcquire should succeed after the TTL deadline")
	}
}
