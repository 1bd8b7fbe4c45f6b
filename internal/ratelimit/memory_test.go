package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_Window(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	cooldown := 120 * time.Second
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// First submission is allowed and reserves the window.
	out, err := store.CheckAndReserve(ctx, "user-1", t0, cooldown)
	if err != nil {
		t.Fatalf("CheckAndReserve returned error: %v", err)
	}
	if !out.Allowed {
		t.Fatal("first call should be Allowed")
	}

	// 10 seconds later the same user is limited with 110 seconds remaining.
	out, err = store.CheckAndReserve(ctx, "user-1", t0.Add(10*time.Second), cooldown)
	if err != nil {
		t.Fatalf("CheckAndReserve returned error: %v", err)
	}
	if out.Allowed {
		t.Fatal("call inside the window should be Limited")
	}
	if got, want := out.RetryAfterSeconds(), 110; got != want {
		t.Errorf("RetryAfterSeconds() = %d, want %d", got, want)
	}

	// The Limited call must not have consumed the reservation: remaining
	// keeps counting down from t0, not from the rejected attempt.
	out, err = store.CheckAndReserve(ctx, "user-1", t0.Add(20*time.Second), cooldown)
	if err != nil {
		t.Fatalf("CheckAndReserve returned error: %v", err)
	}
	if out.Allowed {
		t.Fatal("call inside the window should be Limited")
	}
	if got, want := out.RetryAfterSeconds(), 100; got != want {
		t.Errorf("RetryAfterSeconds() = %d, want %d", got, want)
	}

	// At exactly the window boundary the user is allowed again.
	out, err = store.CheckAndReserve(ctx, "user-1", t0.Add(cooldown), cooldown)
	if err != nil {
		t.Fatalf("CheckAndReserve returned error: %v", err)
	}
	if !out.Allowed {
		t.Fatal("call at the window boundary should be Allowed")
	}

	// The window resets from the new reservation.
	out, err = store.CheckAndReserve(ctx, "user-1", t0.Add(cooldown).Add(30*time.Second), cooldown)
	if err != nil {
		t.Fatalf("CheckAndReserve returned error: %v", err)
	}
	if out.Allowed {
		t.Fatal("call inside the reset window should be Limited")
	}
	if got, want := out.RetryAfterSeconds(), 90; got != want {
		t.Errorf("RetryAfterSeconds() = %d, want %d", got, want)
	}
}

func TestMemoryStore_IndependentUsers(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	cooldown := 120 * time.Second
	now := time.Now()

	for _, user := range []string{"a", "b", "c"} {
		out, err := store.CheckAndReserve(ctx, user, now, cooldown)
		if err != nil {
			t.Fatalf("CheckAndReserve(%q) returned error: %v", user, err)
		}
		if !out.Allowed {
			t.Errorf("first call for %q should be Allowed", user)
		}
	}

	if got, want := store.Len(), 3; got != want {
		t.Errorf("Len() = %d, want %d (one record per user)", got, want)
	}
}

func TestMemoryStore_ConcurrentSingleAllowed(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	cooldown := 120 * time.Second
	now := time.Now()

	const workers = 50
	var wg sync.WaitGroup
	allowed := make(chan struct{}, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := store.CheckAndReserve(ctx, "user-1", now, cooldown)
			if err != nil {
				t.Errorf("CheckAndReserve returned error: %v", err)
				return
			}
			if out.Allowed {
				allowed <- struct{}{}
			}
		}()
	}

	wg.Wait()
	close(allowed)

	count := 0
	for range allowed {
		count++
	}
	if count != 1 {
		t.Errorf("concurrent calls within the window yielded %d Allowed, want exactly 1", count)
	}
}

func TestOutcome_RetryAfterSeconds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		outcome Outcome
		want    int
	}{
		{name: "allowed", outcome: Outcome{Allowed: true}, want: 0},
		{name: "whole seconds", outcome: Outcome{Remaining: 110 * time.Second}, want: 110},
		{name: "fraction rounds up", outcome: Outcome{Remaining: 500 * time.Millisecond}, want: 1},
		{name: "just over a second rounds up", outcome: Outcome{Remaining: 1100 * time.Millisecond}, want: 2},
		{name: "zero remaining", outcome: Outcome{}, want: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.outcome.RetryAfterSeconds(); got != tt.want {
				t.Errorf("RetryAfterSeconds() = %d, want %d", got, tt.want)
			}
		})
	}
}
