// Package config holds the beacon daemon configuration and its layered sources:
// defaults, a TOML file, SOS_BEACON_* environment variables, then command-line flags.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sweeney/sos-beacon/internal/gpio"
	"github.com/sweeney/sos-beacon/internal/logic"
	"github.com/sweeney/sos-beacon/internal/mqtt"
)

// Config holds daemon configuration.
type Config struct {
	Chip       string
	PinDot     int
	PinDash    int
	PinButtons []int
	ActiveLow  bool
	Debounce   time.Duration

	InitialMode string

	Broker     string
	ClientID   string
	BufferSize int
	Heartbeat  time.Duration

	HTTPAddr string
	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Chip:        gpio.DefaultChip,
		PinDot:      gpio.DefaultPinDot,
		PinDash:     gpio.DefaultPinDash,
		PinButtons:  []int{gpio.DefaultPinButton0, gpio.DefaultPinButton1},
		Debounce:    10 * time.Millisecond,
		InitialMode: logic.ModeSOS.String(),
		Broker:      "tcp://192.168.1.200:1883",
		ClientID:    "sos-beacon",
		BufferSize:  mqtt.DefaultBufferSize,
		Heartbeat:   15 * time.Minute,
		HTTPAddr:    ":80",
		LogLevel:    "info",
	}
}

// Mode returns the parsed initial mode. Validate must have succeeded.
func (c *Config) Mode() logic.Mode {
	m, _ := logic.ParseMode(c.InitialMode)
	return m
}

// Validate checks the configuration for errors and normalizes values.
func (c *Config) Validate() error {
	if c.Chip == "" {
		return fmt.Errorf("chip is required")
	}
	if c.PinDot < 0 || c.PinDash < 0 {
		return fmt.Errorf("pins must not be negative")
	}
	if c.PinDot == c.PinDash {
		return fmt.Errorf("dot and dash pins must differ (both %d)", c.PinDot)
	}
	if len(c.PinButtons) == 0 || len(c.PinButtons) > 2 {
		return fmt.Errorf("one or two button pins are required, got %d", len(c.PinButtons))
	}
	for _, p := range c.PinButtons {
		if p < 0 {
			return fmt.Errorf("button pin %d must not be negative", p)
		}
		if p == c.PinDot || p == c.PinDash {
			return fmt.Errorf("button pin %d is already used as an output", p)
		}
	}
	if c.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative")
	}
	if c.Heartbeat < 0 {
		return fmt.Errorf("heartbeat must not be negative (0 disables)")
	}

	c.InitialMode = strings.ToUpper(strings.TrimSpace(c.InitialMode))
	if _, ok := logic.ParseMode(c.InitialMode); !ok {
		return fmt.Errorf("initial mode %q must be SOS or OK", c.InitialMode)
	}

	if c.Broker != "" && c.ClientID == "" {
		return fmt.Errorf("client-id is required when a broker is set")
	}
	if c.BufferSize <= 0 {
		c.BufferSize = mqtt.DefaultBufferSize
	}
	return nil
}

// configSetter applies values only if the corresponding flag hasn't been
// explicitly set on the command line.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if not nil and flag not changed. Pin 0 is valid,
// so file values are pointers.
func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setInts sets an int slice if not empty and flag not changed.
func (s *configSetter) setInts(flag string, value []int, dst *[]int) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = append([]int(nil), value...)
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setIntsFromString parses a comma-separated list of ints.
func (s *configSetter) setIntsFromString(flag, value string, dst *[]int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	var out []int
	for _, part := range strings.Split(value, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fmt.Errorf("parse %s: %w", flag, err)
		}
		out = append(out, i)
	}
	*dst = out
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
