// ABOUTME: Tool configuration from an optional .env file and the environment
// ABOUTME: Command-line flags override these values in each tool
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/Resonate-Protocol/resonate-aal/pkg/aal"
)

// Config holds the settings shared by the command-line tools
type Config struct {
	// Module names the backend; empty selects by capability
	Module string
	// Device names the output or input device; empty is the default
	Device   string
	LogLevel aal.LogLevel
	LogFile  string
	// Volume is linear in [0, 1]
	Volume float64
}

// Default returns the settings used when nothing is configured
func Default() Config {
	return Config{
		LogLevel: aal.LogInfo,
		LogFile:  "aal-player.log",
		Volume:   1,
	}
}

// Load reads path (".env" when empty) into the environment, without
// overriding variables already set, then builds a Config. A missing file
// is not an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return FromEnv()
}

// FromEnv builds a Config from AAL_* variables
func FromEnv() (Config, error) {
	cfg := Default()
	cfg.Module = os.Getenv("AAL_MODULE")
	cfg.Device = os.Getenv("AAL_DEVICE")

	if v := os.Getenv("AAL_LOG_LEVEL"); v != "" {
		level, err := aal.ParseLogLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("AAL_LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}
	if v := os.Getenv("AAL_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("AAL_VOLUME"); v != "" {
		vol, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("AAL_VOLUME: %w", err)
		}
		if vol < 0 || vol > 1 {
			return Config{}, fmt.Errorf("AAL_VOLUME: %v is outside [0, 1]", vol)
		}
		cfg.Volume = vol
	}
	return cfg, nil
}
