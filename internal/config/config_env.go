package config

import "os"

// ApplyEnvConfig applies SOS_BEACON_* environment variables to the Config.
// Flags that have been explicitly set take precedence.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("chip", os.Getenv("SOS_BEACON_CHIP"), &cfg.Chip)
	s.setString("mode", os.Getenv("SOS_BEACON_MODE"), &cfg.InitialMode)
	s.setString("broker", os.Getenv("SOS_BEACON_BROKER"), &cfg.Broker)
	s.setString("client-id", os.Getenv("SOS_BEACON_CLIENT_ID"), &cfg.ClientID)
	s.setString("http", os.Getenv("SOS_BEACON_HTTP"), &cfg.HTTPAddr)
	s.setString("log-level", os.Getenv("SOS_BEACON_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("pin-dot", os.Getenv("SOS_BEACON_PIN_DOT"), &cfg.PinDot); err != nil {
		return err
	}
	if err := s.setIntFromString("pin-dash", os.Getenv("SOS_BEACON_PIN_DASH"), &cfg.PinDash); err != nil {
		return err
	}
	if err := s.setIntFromString("buffer-size", os.Getenv("SOS_BEACON_BUFFER_SIZE"), &cfg.BufferSize); err != nil {
		return err
	}
	if err := s.setIntsFromString("pin-buttons", os.Getenv("SOS_BEACON_PIN_BUTTONS"), &cfg.PinButtons); err != nil {
		return err
	}

	if err := s.setDuration("debounce", os.Getenv("SOS_BEACON_DEBOUNCE"), &cfg.Debounce); err != nil {
		return err
	}
	if err := s.setDuration("heartbeat", os.Getenv("SOS_BEACON_HEARTBEAT"), &cfg.Heartbeat); err != nil {
		return err
	}

	s.setBoolFromString("active-low", os.Getenv("SOS_BEACON_ACTIVE_LOW"), &cfg.ActiveLow)
	return nil
}
