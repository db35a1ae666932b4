package fetch

import (
	"context"
	"testing"
	"time"
)

func TestHostLimiter_NilIsNoOp(t *testing.T) {
	var hl *HostLimiter

	if err := hl.Wait(context.Background(), "example.com"); err != nil {
		t.Fatalf("nil limiter Wait = %v, want nil", err)
	}
}

func TestHostLimiter_ZeroIntervalIsNoOp(t *testing.T) {
	hl := NewHostLimiter(0, testLogger())

	start := time.Now()
	for i := 0; i < 10; i++ {
		if err := hl.Wait(context.Background(), "example.com"); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("zero-interval limiter delayed %v", elapsed)
	}
}

func TestHostLimiter_SpacesRequests(t *testing.T) {
	hl := NewHostLimiter(50*time.Millisecond, testLogger())
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := hl.Wait(ctx, "example.com"); err != nil {
			t.Fatalf("Wait %d: %v", i, err)
		}
	}
	// First slot is immediate, the next two wait one interval each.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("three requests took %v, want at least ~100ms of spacing", elapsed)
	}
}

func TestHostLimiter_PerHostIndependence(t *testing.T) {
	hl := NewHostLimiter(time.Hour, testLogger())
	ctx := context.Background()

	if err := hl.Wait(ctx, "a.example.com"); err != nil {
		t.Fatalf("Wait a: %v", err)
	}
	if err := hl.Wait(ctx, "b.example.com"); err != nil {
		t.Fatalf("first Wait for b must not inherit a's spacing: %v", err)
	}
}

func TestHostLimiter_CancelledContext(t *testing.T) {
	hl := NewHostLimiter(time.Hour, testLogger())
	ctx := context.Background()

	if err := hl.Wait(ctx, "example.com"); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := hl.Wait(short, "example.com"); err == nil {
		t.Error("Wait with an expiring context should fail rather than sleep an hour")
	}
}
