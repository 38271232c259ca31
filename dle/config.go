package dle

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// Config holds the tunable parts of a Dispatcher, as read from a TOML file.
type Config struct {
	// MaxFrameLength bounds frames in raw bytes; zero leaves them unbounded.
	MaxFrameLength int `toml:"max_frame_length"`
	// LogLevel is a zerolog level name.  "disabled" turns logging off.
	LogLevel string `toml:"log_level"`
}

// DefaultConfig matches the behavior of a Dispatcher built without options.
func DefaultConfig() Config {
	return Config{
		MaxFrameLength: 0,
		LogLevel:       zerolog.LevelWarnValue,
	}
}

// LoadConfig reads a TOML file.  Keys the file does not set keep their
// DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw Config
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load dle config: %w", err)
	}

	if meta.IsDefined("max_frame_length") {
		cfg.MaxFrameLength = raw.MaxFrameLength
	}
	if meta.IsDefined("log_level") {
		if lvl := strings.ToLower(strings.TrimSpace(raw.LogLevel)); lvl != "" {
			cfg.LogLevel = lvl
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load dle config: %w", err)
	}
	return cfg, nil
}

// Validate reports settings that could never work.
func (c Config) Validate() error {
	if c.MaxFrameLength < 0 {
		return fmt.Errorf("max_frame_length must not be negative, got %d", c.MaxFrameLength)
	}
	if c.MaxFrameLength > 0 && c.MaxFrameLength < MinFrameLength {
		return fmt.Errorf("max_frame_length must be at least %d, got %d", MinFrameLength, c.MaxFrameLength)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("parse log_level: %w", err)
	}
	return nil
}

// Options converts the config into Dispatcher options.  Log output goes to w
// with timestamps.
func (c Config) Options(w io.Writer) ([]Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	level, _ := zerolog.ParseLevel(c.LogLevel)
	logger := zerolog.New(w).Level(level).With().Timestamp().Str("component", "dle").Logger()
	return []Option{
		WithMaxFrameLength(c.MaxFrameLength),
		WithLogger(logger),
	}, nil
}
