package config

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations and pointers
// where zero is a meaningful value.
type FileConfig struct {
	Chip        string `toml:"chip"`
	PinDot      *int   `toml:"pin_dot"`
	PinDash     *int   `toml:"pin_dash"`
	PinButtons  []int  `toml:"pin_buttons"`
	ActiveLow   *bool  `toml:"active_low"`
	Debounce    string `toml:"debounce"`
	InitialMode string `toml:"initial_mode"`
	Broker      string `toml:"broker"`
	ClientID    string `toml:"client_id"`
	BufferSize  *int   `toml:"buffer_size"`
	Heartbeat   string `toml:"heartbeat"`
	HTTPAddr    string `toml:"http"`
	LogLevel    string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.sos-beacon/config.toml, or "" if the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".sos-beacon", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("chip", fc.Chip, &cfg.Chip)
	s.setString("mode", fc.InitialMode, &cfg.InitialMode)
	s.setString("broker", fc.Broker, &cfg.Broker)
	s.setString("client-id", fc.ClientID, &cfg.ClientID)
	s.setString("http", fc.HTTPAddr, &cfg.HTTPAddr)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setInt("pin-dot", fc.PinDot, &cfg.PinDot)
	s.setInt("pin-dash", fc.PinDash, &cfg.PinDash)
	s.setInt("buffer-size", fc.BufferSize, &cfg.BufferSize)
	s.setInts("pin-buttons", fc.PinButtons, &cfg.PinButtons)

	s.setBool("active-low", fc.ActiveLow, &cfg.ActiveLow)

	if err := s.setDuration("debounce", fc.Debounce, &cfg.Debounce); err != nil {
		return err
	}
	if err := s.setDuration("heartbeat", fc.Heartbeat, &cfg.Heartbeat); err != nil {
		return err
	}
	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
