package providers

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_Wait(t *testing.T) {
	config := RateLimitConfig{
		RequestsPerMinute: 60,
		BurstSize:         5,
	}

	rl := NewRateLimiter(config)

	// First requests should succeed immediately
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		start := time.Now()
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
		if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
			t.Errorf("burst request %d took too long: %v", i, elapsed)
		}
	}
}

func TestRateLimiter_WaitContextCanceled(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 1, BurstSize: 1})

	// Exhaust burst
	_ = rl.Wait(context.Background())

	cancelCtx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := rl.Wait(cancelCtx); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestRateLimiter_MinInterval(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{MinInterval: 60 * time.Millisecond})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}

	// Two gaps between three calls
	if elapsed := time.Since(start); elapsed < 120*time.Millisecond {
		t.Errorf("three calls took %v, want at least 120ms", elapsed)
	}
}

func TestRateLimiter_MinIntervalContextCanceled(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{MinInterval: time.Hour})

	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx); err == nil {
		t.Error("expected error when context expires during the interval")
	}
}

func TestRateLimiter_Available(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 60, BurstSize: 5})

	if rl.Available() <= 0 {
		t.Error("expected limiter to have tokens available initially")
	}

	unlimited := NewRateLimiter(RateLimitConfig{})
	if got := unlimited.Available(); got != -1 {
		t.Errorf("Available() without bucket = %v, want -1", got)
	}
}

func TestRateLimiter_TryAcquire(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 60, BurstSize: 3})

	for i := 0; i < 3; i++ {
		if !rl.TryAcquire() {
			t.Errorf("TryAcquire should succeed for request %d within burst", i)
		}
	}

	if rl.TryAcquire() {
		t.Error("TryAcquire should fail when burst exhausted")
	}
}

func TestRateLimiter_TryAcquireMinInterval(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{MinInterval: time.Hour})

	if !rl.TryAcquire() {
		t.Fatal("first TryAcquire should succeed")
	}
	if rl.TryAcquire() {
		t.Error("TryAcquire should fail inside the minimum interval")
	}
}

func TestRateLimiterManager_GetOrCreate(t *testing.T) {
	manager := NewRateLimiterManager()
	config := RateLimitConfig{RequestsPerMinute: 60, BurstSize: 5}

	rl1 := manager.GetOrCreate("test", config)
	if rl1 == nil {
		t.Fatal("expected rate limiter to be created")
	}

	if rl2 := manager.GetOrCreate("test", config); rl1 != rl2 {
		t.Error("expected same rate limiter instance")
	}
}

func TestRateLimiterManager_Get(t *testing.T) {
	manager := NewRateLimiterManager()

	if _, exists := manager.Get("test"); exists {
		t.Error("expected limiter to not exist")
	}

	manager.GetOrCreate("test", RateLimitConfig{RequestsPerMinute: 60})

	rl, exists := manager.Get("test")
	if !exists {
		t.Error("expected limiter to exist")
	}
	if rl == nil {
		t.Error("expected non-nil rate limiter")
	}
}
