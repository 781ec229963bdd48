//go:build linux

package gpio

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/sos-beacon/internal/logging"
)

// RealIndicators drives the LEDs through the Linux GPIO character device.
type RealIndicators struct {
	chip     *gpiocdev.Chip
	dotLine  *gpiocdev.Line
	dashLine *gpiocdev.Line
	errors   atomic.Int64
}

// NewRealIndicators requests both LED lines as outputs, initially off.
// With activeLow set, "on" drives the line low.
func NewRealIndicators(chipName string, pinDot, pinDash int, activeLow bool) (*RealIndicators, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	opts := []gpiocdev.LineReqOption{gpiocdev.AsOutput(0)}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	dotLine, err := chip.RequestLine(pinDot, opts...)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request dot pin %d: %w", pinDot, err)
	}

	dashLine, err := chip.RequestLine(pinDash, opts...)
	if err != nil {
		dotLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request dash pin %d: %w", pinDash, err)
	}

	return &RealIndicators{
		chip:     chip,
		dotLine:  dotLine,
		dashLine: dashLine,
	}, nil
}

// SetDot drives the dot LED.
func (r *RealIndicators) SetDot(on bool) {
	r.set(r.dotLine, "dot", on)
}

// SetDash drives the dash LED.
func (r *RealIndicators) SetDash(on bool) {
	r.set(r.dashLine, "dash", on)
}

func (r *RealIndicators) set(line *gpiocdev.Line, name string, on bool) {
	v := 0
	if on {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		// Only the first failure is logged; a stuck line would otherwise flood the log.
		if r.errors.Add(1) == 1 {
			log := logging.Logger()
			log.Error().Err(err).Str("output", name).Int("offset", line.Offset()).Msg("gpio write failed")
		}
	}
}

// WriteErrors returns the number of failed output writes.
func (r *RealIndicators) WriteErrors() int64 {
	return r.errors.Load()
}

// Close turns both LEDs off and releases GPIO resources.
// Lines are returned to input with pull-down (matching Pi boot defaults) before
// closing so nothing is left driven after shutdown.
func (r *RealIndicators) Close() error {
	var errs []error

	for _, l := range []struct {
		name string
		line *gpiocdev.Line
	}{{"dot", r.dotLine}, {"dash", r.dashLine}} {
		if l.line == nil {
			continue
		}
		if err := l.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear %s pin: %w", l.name, err))
		}
		if err := l.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", l.name, err))
		}
		if err := l.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", l.name, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealButtons watches button lines for falling edges.
type RealButtons struct {
	chip  *gpiocdev.Chip
	lines []*gpiocdev.Line
}

// NewRealButtons requests each distinct pin as a pulled-up input that reports
// falling edges to handler. A non-zero debounce enables the kernel driver's
// own debounce filter on the lines.
func NewRealButtons(chipName string, pins []int, debounce time.Duration, handler EdgeHandler) (*RealButtons, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	b := &RealButtons{chip: chip}

	eh := func(evt gpiocdev.LineEvent) {
		if evt.Type == gpiocdev.LineEventFallingEdge {
			handler(evt.Offset)
		}
	}

	for _, pin := range uniquePins(pins) {
		opts := []gpiocdev.LineReqOption{
			gpiocdev.AsInput,
			gpiocdev.WithPullUp,
			gpiocdev.WithFallingEdge,
			gpiocdev.WithEventHandler(eh),
		}
		if debounce > 0 {
			opts = append(opts, gpiocdev.WithDebounce(debounce))
		}
		line, err := chip.RequestLine(pin, opts...)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("request button pin %d: %w", pin, err)
		}
		b.lines = append(b.lines, line)
	}

	return b, nil
}

// Close releases the button lines. Closing a line stops its event handler.
func (b *RealButtons) Close() error {
	var errs []error
	for _, l := range b.lines {
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pin %d: %w", l.Offset(), err))
		}
	}
	b.lines = nil
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		b.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
