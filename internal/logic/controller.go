package logic

import "sync/atomic"

// InterMessagePause is how many ticks both outputs stay off after a message ends.
const InterMessagePause = 7

// Controller is the tick-driven playback state machine.
//
// Tick must only be called from one goroutine. Toggle and Mode may be called
// from any goroutine; the desired mode is a single atomic word and is only
// read by Tick when a new message starts.
type Controller struct {
	player  *Player
	mode    atomic.Uint32
	toggles atomic.Int64

	phase  Phase
	cursor int
	hold   int
	active Mode
	msg    Message

	counts Counts
}

// NewController creates a controller in phase START that will play the
// message for initial on its first tick.
func NewController(out Indicators, initial Mode) *Controller {
	c := &Controller{
		player: NewPlayer(out),
		phase:  PhaseStart,
		active: initial,
		msg:    MessageFor(initial),
	}
	c.mode.Store(uint32(initial))
	return c
}

// Tick advances the state machine by one timer period.
func (c *Controller) Tick() Step {
	if c.hold > 0 {
		c.hold--
		return c.step(StepHold, 0, c.hold)
	}

	switch c.phase {
	case PhaseStart:
		c.active = Mode(c.mode.Load())
		c.msg = MessageFor(c.active)
		c.phase = PhasePlaying
		c.cursor = 0
		u, hold := c.renderNext()
		return c.step(StepStart, u, hold)

	case PhasePlaying:
		if c.cursor > c.msg.Len()-1 {
			c.phase = PhaseEnd
			c.player.Clear()
			c.hold = InterMessagePause
			c.cursor = 0
			if c.active == ModeOK {
				c.counts.OKCycles++
			} else {
				c.counts.SOSCycles++
			}
			return c.step(StepEnd, 0, InterMessagePause)
		}
		u, hold := c.renderNext()
		return c.step(StepRender, u, hold)

	default: // PhaseEnd
		c.phase = PhaseStart
		return c.step(StepRestart, 0, 0)
	}
}

// renderNext renders the unit under the cursor and advances it.
func (c *Controller) renderNext() (Unit, int) {
	u, ok := c.msg.At(c.cursor)
	if !ok {
		// Unreachable for the built-in tables; treat as a space.
		u = IntraSpace
	}
	c.hold = c.player.Render(u)
	c.cursor++
	return u, c.hold
}

func (c *Controller) step(kind StepKind, u Unit, hold int) Step {
	return Step{
		Kind:   kind,
		Mode:   c.active,
		Unit:   u,
		Hold:   hold,
		Cursor: c.cursor,
	}
}

// Toggle flips the desired mode and returns the new value.
// The change takes effect at the next START.
func (c *Controller) Toggle() Mode {
	for {
		old := c.mode.Load()
		next := uint32(Mode(old).Other())
		if c.mode.CompareAndSwap(old, next) {
			c.toggles.Add(1)
			return Mode(next)
		}
	}
}

// Mode returns the desired mode.
func (c *Controller) Mode() Mode {
	return Mode(c.mode.Load())
}

// State returns a copy of the playback state. Must be called from the tick goroutine.
func (c *Controller) State() PlaybackState {
	return PlaybackState{
		Phase:     c.phase,
		Cursor:    c.cursor,
		HoldTicks: c.hold,
		Active:    c.active,
	}
}

// Counts returns completed message and toggle counts.
// Must be called from the tick goroutine.
func (c *Controller) Counts() Counts {
	counts := c.counts
	counts.Toggles = int(c.toggles.Load())
	return counts
}

// Outputs reports the current indicator levels as last written by the controller.
func (c *Controller) Outputs() (dot, dash bool) {
	return c.player.Levels()
}

// CycleTicks returns the ticks one full cycle of m takes, from its START
// tick through the RESTART tick that follows the pause.
func CycleTicks(m Message) int {
	return m.Len() + m.TotalHold() + 1 + InterMessagePause + 1
}
