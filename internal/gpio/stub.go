//go:build !linux

package gpio

import (
	"errors"
	"time"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealIndicators is not available on non-Linux platforms.
type RealIndicators struct{}

// NewRealIndicators returns an error on non-Linux platforms.
func NewRealIndicators(chipName string, pinDot, pinDash int, activeLow bool) (*RealIndicators, error) {
	return nil, errUnsupported
}

// SetDot is a no-op on non-Linux platforms.
func (r *RealIndicators) SetDot(on bool) {}

// SetDash is a no-op on non-Linux platforms.
func (r *RealIndicators) SetDash(on bool) {}

// WriteErrors always returns 0 on non-Linux platforms.
func (r *RealIndicators) WriteErrors() int64 { return 0 }

// Close is not implemented on non-Linux platforms.
func (r *RealIndicators) Close() error {
	return nil
}

// RealButtons is not available on non-Linux platforms.
type RealButtons struct{}

// NewRealButtons returns an error on non-Linux platforms.
func NewRealButtons(chipName string, pins []int, debounce time.Duration, handler EdgeHandler) (*RealButtons, error) {
	return nil, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (b *RealButtons) Close() error {
	return nil
}
