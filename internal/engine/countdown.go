package engine

// Countdown is a once-per-second decrementing budget. It does not tick
// itself; the owning runtime feeds it ticks so that all timing flows
// through a single serialized loop.
type Countdown struct {
	remaining int
}

// NewCountdown starts a countdown at the given number of seconds.
func NewCountdown(seconds int) *Countdown {
	if seconds < 0 {
		seconds = 0
	}
	return &Countdown{remaining: seconds}
}

// Tick consumes one second and reports the remaining budget and whether
// it just expired. Ticking an expired countdown stays at zero.
func (c *Countdown) Tick() (remaining int, expired bool) {
	if c.remaining <= 0 {
		return 0, false
	}
	c.remaining--
	return c.remaining, c.remaining == 0
}

// Remaining returns the seconds left.
func (c *Countdown) Remaining() int { return c.remaining }

// Reset restarts the countdown at a new budget.
func (c *Countdown) Reset(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	c.remaining = seconds
}
