package ratelimit

import (
	"testing"
	"time"
)

func newTestLimiter(start time.Time) (*Limiter, *time.Time) {
	l := New()
	current := start
	l.now = func() time.Time { return current }
	return l, &current
}

func TestAllowWithinWindow(t *testing.T) {
	l, _ := newTestLimiter(time.Unix(0, 0))

	for i := 0; i < 5; i++ {
		if !l.Allow("k", 5, 15*time.Minute) {
			t.Fatalf("call %d should be allowed", i+1)
		}
	}
	if l.Allow("k", 5, 15*time.Minute) {
		t.Fatal("6th call within window should be denied")
	}
}

func TestWindowExpiryResetsCount(t *testing.T) {
	l, clock := newTestLimiter(time.Unix(0, 0))

	for i := 0; i < 5; i++ {
		l.Allow("k", 5, 15*time.Minute)
	}
	if l.Allow("k", 5, 15*time.Minute) {
		t.Fatal("should be denied before window elapses")
	}

	*clock = clock.Add(15*time.Minute + time.Second)

	if !l.Allow("k", 5, 15*time.Minute) {
		t.Fatal("should be allowed after window elapses")
	}
	if got := l.Remaining("k", 5); got != 4 {
		t.Fatalf("count should reset to 1 after expiry, remaining = %d, want 4", got)
	}
}

func TestDenyDoesNotIncrement(t *testing.T) {
	l, _ := newTestLimiter(time.Unix(0, 0))

	for i := 0; i < 3; i++ {
		l.Allow("k", 3, time.Minute)
	}
	for i := 0; i < 10; i++ {
		l.Allow("k", 3, time.Minute)
	}
	if got := l.Remaining("k", 3); got != 0 {
		t.Fatalf("remaining = %d, want 0", got)
	}
}

func TestRemainingWithoutRecord(t *testing.T) {
	l, _ := newTestLimiter(time.Unix(0, 0))
	if got := l.Remaining("missing", 100); got != 100 {
		t.Fatalf("remaining for unknown key = %d, want 100", got)
	}
}

func TestReset(t *testing.T) {
	l, _ := newTestLimiter(time.Unix(0, 0))

	for i := 0; i < 3; i++ {
		l.Allow("k", 3, time.Minute)
	}
	if l.Allow("k", 3, time.Minute) {
		t.Fatal("should be denied at limit")
	}

	l.Reset("k")

	if !l.Allow("k", 3, time.Minute) {
		t.Fatal("should be allowed after reset")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(time.Unix(0, 0))

	for i := 0; i < 5; i++ {
		l.Allow("a", 5, time.Minute)
	}
	if l.Allow("a", 5, time.Minute) {
		t.Fatal("key a should be exhausted")
	}
	if !l.Allow("b", 5, time.Minute) {
		t.Fatal("key b should be unaffected")
	}
}

func TestLoginKeyNormalizesEmail(t *testing.T) {
	if LoginKey("Admin@Example.COM") != LoginKey("admin@example.com") {
		t.Fatal("login keys should be case-insensitive on email")
	}
}
