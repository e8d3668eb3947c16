package game

// Countdown is the discussion-phase timer. It is tick-driven rather
// than clock-driven so the round machine stays testable without real
// time; the front end feeds it one Tick per second. Each peer runs its
// own countdown, none are synchronized.
type Countdown struct {
	remaining int
	fired     bool
}

func NewCountdown(seconds int) *Countdown {
	if seconds < 0 {
		seconds = 0
	}
	return &Countdown{remaining: seconds}
}

func (c *Countdown) Remaining() int { return c.remaining }

// Tick advances the countdown by one second. It returns true exactly
// once, on the tick that reaches zero, so expiry cannot force the
// voting transition twice.
func (c *Countdown) Tick() (expired bool) {
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining == 0 && !c.fired {
		c.fired = true
		return true
	}
	return false
}

// Stop marks the countdown as spent, used when the group opens voting
// early so a later tick cannot fire.
func (c *Countdown) Stop() {
	c.fired = true
}
