package logic

// Indicators is the pair of outputs the beacon drives.
// Implementations must be non-blocking; they are called from the tick path.
type Indicators interface {
	// SetDot drives output A (dot).
	SetDot(on bool)
	// SetDash drives output B (dash).
	SetDash(on bool)
}

// level tracks the last written value of one output.
type level uint8

const (
	levelUnknown level = iota
	levelOff
	levelOn
)

func levelOf(on bool) level {
	if on {
		return levelOn
	}
	return levelOff
}

// Player renders units onto the indicators.
// Writes that would not change an output's level are skipped.
type Player struct {
	out  Indicators
	dot  level
	dash level
}

// NewPlayer creates a Player writing to out.
func NewPlayer(out Indicators) *Player {
	return &Player{out: out}
}

// Render drives the outputs for u and returns its hold in ticks.
func (p *Player) Render(u Unit) int {
	switch u {
	case Dot:
		p.set(true, false)
	case Dash:
		p.set(false, true)
	default:
		p.set(false, false)
	}
	return u.Hold()
}

// Clear turns both outputs off.
func (p *Player) Clear() {
	p.set(false, false)
}

// set clears before it asserts so both outputs are never on together.
func (p *Player) set(dot, dash bool) {
	if dot {
		p.writeDash(false)
		p.writeDot(true)
		return
	}
	p.writeDot(false)
	p.writeDash(dash)
}

func (p *Player) writeDot(on bool) {
	if l := levelOf(on); l != p.dot {
		p.out.SetDot(on)
		p.dot = l
	}
}

func (p *Player) writeDash(on bool) {
	if l := levelOf(on); l != p.dash {
		p.out.SetDash(on)
		p.dash = l
	}
}

// Levels reports the last written output levels. Unwritten outputs read as off.
func (p *Player) Levels() (dot, dash bool) {
	return p.dot == levelOn, p.dash == levelOn
}
