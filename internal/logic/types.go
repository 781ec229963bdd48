// Package logic contains the pure signaling logic for the beacon.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time only advances through Controller.Tick; wall-clock values are injected by callers.
package logic

import "time"

// Unit is one timed symbol of the signaling alphabet.
type Unit uint8

const (
	Dot        Unit = iota // output A on for 1 tick
	Dash                   // output B on for 3 ticks
	IntraSpace             // both off for 1 tick, between symbols of a character
	InterSpace             // both off for 3 ticks, between characters
)

// Hold returns how many ticks the unit's output is sustained.
func (u Unit) Hold() int {
	switch u {
	case Dash, InterSpace:
		return 3
	default:
		return 1
	}
}

func (u Unit) String() string {
	switch u {
	case Dot:
		return "DOT"
	case Dash:
		return "DASH"
	case IntraSpace:
		return "SPACE"
	case InterSpace:
		return "CHAR_SPACE"
	}
	return "UNKNOWN"
}

// Mode selects which message is played.
type Mode uint32

const (
	ModeSOS Mode = iota
	ModeOK
)

func (m Mode) String() string {
	if m == ModeOK {
		return "OK"
	}
	return "SOS"
}

// Other returns the opposite mode.
func (m Mode) Other() Mode {
	if m == ModeOK {
		return ModeSOS
	}
	return ModeOK
}

// ParseMode converts "SOS" or "OK" into a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "SOS", "sos":
		return ModeSOS, true
	case "OK", "ok":
		return ModeOK, true
	}
	return ModeSOS, false
}

// Phase is the scheduler's coarse state.
type Phase string

const (
	PhaseStart   Phase = "START"
	PhasePlaying Phase = "PLAYING"
	PhaseEnd     Phase = "END"
)

// PlaybackState is a copy of the scheduler's internal state.
type PlaybackState struct {
	Phase     Phase
	Cursor    int
	HoldTicks int
	// Active is the mode latched at the last START transition.
	Active Mode
}

// StepKind describes what a single tick did.
type StepKind string

const (
	StepHold    StepKind = "HOLD"
	StepStart   StepKind = "START"
	StepRender  StepKind = "RENDER"
	StepEnd     StepKind = "END"
	StepRestart StepKind = "RESTART"
)

// Step is the outcome of one Controller.Tick.
// Unit is only meaningful for StepStart and StepRender. Hold is the new hold
// for StepStart, StepRender and StepEnd, and the ticks still left for StepHold.
type Step struct {
	Kind   StepKind
	Mode   Mode
	Unit   Unit
	Hold   int
	Cursor int // cursor after the tick
}

// EventType represents a beacon event worth publishing.
type EventType string

const (
	EventMessageStart EventType = "MESSAGE_START"
	EventMessageEnd   EventType = "MESSAGE_END"
	EventModeChange   EventType = "MODE_CHANGE"
)

// Event represents a beacon event to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	// Mode is the playing mode for start/end events and the new desired mode for MODE_CHANGE.
	Mode Mode
	// Active is the mode currently being played.
	Active Mode
}

// Counts tracks completed messages and mode toggles since startup.
type Counts struct {
	SOSCycles int
	OKCycles  int
	Toggles   int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
}
