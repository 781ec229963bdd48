package logic

// Message is a fixed, ordered sequence of units.
type Message struct {
	name  string
	units []Unit
}

// SOS is ". . .   - - -   . . ." as dot/dash/space units.
var SOS = Message{
	name: "SOS",
	units: []Unit{
		Dot, IntraSpace, Dot, IntraSpace, Dot, InterSpace,
		Dash, IntraSpace, Dash, IntraSpace, Dash, InterSpace,
		Dot, IntraSpace, Dot, IntraSpace, Dot,
	},
}

// OK is "- - -   - . -" as dot/dash/space units.
var OK = Message{
	name: "OK",
	units: []Unit{
		Dash, IntraSpace, Dash, IntraSpace, Dash, InterSpace,
		Dash, IntraSpace, Dot, IntraSpace, Dash,
	},
}

// MessageFor returns the message played in the given mode.
func MessageFor(m Mode) Message {
	if m == ModeOK {
		return OK
	}
	return SOS
}

// Name returns the message name.
func (m Message) Name() string { return m.name }

// Len returns the number of units.
func (m Message) Len() int { return len(m.units) }

// At returns the unit at i. ok is false when i is out of range.
func (m Message) At(i int) (u Unit, ok bool) {
	if i < 0 || i >= len(m.units) {
		return 0, false
	}
	return m.units[i], true
}

// Units returns a copy of the message's units.
func (m Message) Units() []Unit {
	out := make([]Unit, len(m.units))
	copy(out, m.units)
	return out
}

// TotalHold returns the number of ticks one full playback holds outputs for,
// excluding the inter-message pause.
func (m Message) TotalHold() int {
	total := 0
	for _, u := range m.units {
		total += u.Hold()
	}
	return total
}
