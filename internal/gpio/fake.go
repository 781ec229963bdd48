package gpio

// Write is a single recorded output write.
type Write struct {
	Output string // "dot" or "dash"
	On     bool
}

// FakeIndicators is a test double that records output writes.
type FakeIndicators struct {
	// Writes contains every write in order.
	Writes []Write

	// Dot and Dash hold the current output levels.
	Dot  bool
	Dash bool

	// BothOn counts writes that left both outputs on at once.
	BothOn int

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeIndicators creates a FakeIndicators with both outputs off.
func NewFakeIndicators() *FakeIndicators {
	return &FakeIndicators{}
}

// SetDot records a dot write.
func (f *FakeIndicators) SetDot(on bool) {
	f.Writes = append(f.Writes, Write{Output: "dot", On: on})
	f.Dot = on
	f.check()
}

// SetDash records a dash write.
func (f *FakeIndicators) SetDash(on bool) {
	f.Writes = append(f.Writes, Write{Output: "dash", On: on})
	f.Dash = on
	f.check()
}

func (f *FakeIndicators) check() {
	if f.Dot && f.Dash {
		f.BothOn++
	}
}

// Close turns both outputs off and marks the fake as closed.
func (f *FakeIndicators) Close() error {
	f.Dot = false
	f.Dash = false
	f.Closed = true
	return nil
}

// Reset clears recorded writes.
func (f *FakeIndicators) Reset() {
	f.Writes = nil
	f.BothOn = 0
	f.Closed = false
}

// FakeButtons is a test double for edge-triggered inputs.
type FakeButtons struct {
	// Pins are the distinct pins that were "configured".
	Pins []int

	handler EdgeHandler

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeButtons configures the distinct pins and binds handler to them.
func NewFakeButtons(pins []int, handler EdgeHandler) *FakeButtons {
	return &FakeButtons{Pins: uniquePins(pins), handler: handler}
}

// Press simulates a falling edge on pin. It returns false if the pin was
// not configured or the buttons are closed.
func (f *FakeButtons) Press(pin int) bool {
	if f.Closed {
		return false
	}
	for _, p := range f.Pins {
		if p == pin {
			f.handler(pin)
			return true
		}
	}
	return false
}

// Close marks the buttons as closed; later presses are ignored.
func (f *FakeButtons) Close() error {
	f.Closed = true
	return nil
}
