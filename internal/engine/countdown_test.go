package engine

import "testing"

func TestCountdownTick(t *testing.T) {
	c := NewCountdown(3)

	rem, expired := c.Tick()
	if rem != 2 || expired {
		t.Fatalf("Tick() = (%d, %v), want (2, false)", rem, expired)
	}
	c.Tick()
	rem, expired = c.Tick()
	if rem != 0 || !expired {
		t.Fatalf("Tick() = (%d, %v), want (0, true)", rem, expired)
	}

	// Expiry fires once; further ticks stay at zero.
	rem, expired = c.Tick()
	if rem != 0 || expired {
		t.Fatalf("Tick() after expiry = (%d, %v), want (0, false)", rem, expired)
	}
}

func TestCountdownReset(t *testing.T) {
	c := NewCountdown(1)
	c.Tick()
	c.Reset(5)
	if c.Remaining() != 5 {
		t.Fatalf("Remaining() = %d, want 5", c.Remaining())
	}
}

func TestCountdownNegativeBudget(t *testing.T) {
	c := NewCountdown(-10)
	if c.Remaining() != 0 {
		t.Fatalf("Remaining() = %d, want 0", c.Remaining())
	}
	if _, expired := c.Tick(); expired {
		t.Fatal("ticking an empty countdown must not report expiry")
	}
}
