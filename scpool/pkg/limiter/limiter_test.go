package limiter

import (
	"testing"
	"time"
)

func TestLimiterCap(t *testing.T) {
	lim := NewLimiter(2)
	if !lim.Allow() || !lim.Allow() {
		t.Fatal("first two allows should pass")
	}
	if lim.Allow() {
		t.Fatal("third allow should fail")
	}
	lim.Revert()
	if !lim.Allow() {
		t.Fatal("allow after revert should pass")
	}
}

func TestTimeoutLimiterGivesUp(t *testing.T) {
	lim := NewTimeoutLimiter(1, 20*time.Millisecond)
	if !lim.Allow() {
		t.Fatal("first allow should pass")
	}
	start := time.Now()
	if lim.Allow() {
		t.Fatal("second allow should time out")
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatal("allow gave up before the timeout")
	}
}

func TestTimeoutLimiterWaitsForRevert(t *testing.T) {
	lim := NewTimeoutLimiter(1, time.Second)
	if !lim.Allow() {
		t.Fatal("first allow should pass")
	}
	go func() {
		time.Sleep(10 * time.Millisecond)
		lim.Revert()
	}()
	if !lim.Allow() {
		t.Fatal("allow should succeed once the unit is reverted")
	}
}

func TestZeroTimeoutIsNonBlocking(t *testing.T) {
	lim := NewTimeoutLimiter(1, 0)
	if !lim.Allow() {
		t.Fatal("first allow should pass")
	}
	start := time.Now()
	if lim.Allow() {
		t.Fatal("second allow should fail immediately")
	}
	if time.Since(start) > 10*time.Millisecond {
		t.Fatal("zero timeout must not block")
	}
}
