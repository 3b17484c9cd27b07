package main

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the coordinator's round settings, loaded from a TOML file.
type Config struct {
	// MaxWinners caps how many solutions may win one round. 0 = no cap.
	MaxWinners int `toml:"max_winners"`

	// ShadowVerify re-runs winner selection on a separate goroutine after
	// every round and logs any consensus mismatch. Never blocks the
	// authoritative flow.
	ShadowVerify bool `toml:"shadow_verify"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

func DefaultConfig() *Config {
	return &Config{
		MaxWinners:   0,
		ShadowVerify: true,
		LogLevel:     "info",
		LogFormat:    "json",
	}
}

// MustLoadConfig reads the TOML config at path, panicking on any error.
// An empty path yields the defaults.
func MustLoadConfig(path string) *Config {
	cfg := DefaultConfig()
	if path == "" {
		return cfg
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	if err = toml.Unmarshal(file, cfg); err != nil {
		panic(err)
	}
	return cfg
}
