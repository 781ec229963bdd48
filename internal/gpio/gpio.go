// Package gpio provides the beacon's indicator outputs and button inputs with
// hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Indicators drives the two beacon outputs.
// Writes never fail from the caller's point of view; implementations report
// hardware errors out of band.
type Indicators interface {
	// SetDot drives output A (dot LED).
	SetDot(on bool)

	// SetDash drives output B (dash LED).
	SetDash(on bool)

	// Close turns both outputs off and releases GPIO resources.
	Close() error
}

// EdgeHandler is called once per falling edge on a button pin.
// It runs on the GPIO event goroutine and must not block.
type EdgeHandler func(pin int)

// Buttons holds edge-triggered button inputs.
type Buttons interface {
	// Close releases GPIO resources. No handler calls happen after Close returns.
	Close() error
}

// Default chip and pin assignments (BCM numbering).
const (
	DefaultChip       = "gpiochip0"
	DefaultPinDot     = 17 // red LED
	DefaultPinDash    = 27 // green LED
	DefaultPinButton0 = 22
	DefaultPinButton1 = 23
)

// Consumer is the label attached to requested lines.
const Consumer = "sos-beacon"

// uniquePins returns pins with duplicates removed, preserving order.
// A second button wired to the same line as the first is configured once.
func uniquePins(pins []int) []int {
	seen := make(map[int]bool, len(pins))
	out := make([]int, 0, len(pins))
	for _, p := range pins {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
