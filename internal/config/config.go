package config

import (
	"errors"
	"strings"
	"time"
)

// Config is the resolved application configuration.
type Config struct {
	Log   LogConfig   `toml:"log" yaml:"log"`
	Scene SceneConfig `toml:"scene" yaml:"scene"`

	// TickMS is the scene tick period in milliseconds. Zero disables the
	// tick.
	TickMS int `toml:"tick_ms" yaml:"tick_ms"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level" yaml:"level"`
	// File receives log output. Empty discards logs: the terminal is busy
	// showing windows.
	File string `toml:"file" yaml:"file"`
}

// SceneConfig selects the scene script.
type SceneConfig struct {
	// Script is a Lua scene file. Empty runs the built-in demo scene.
	Script string `toml:"script" yaml:"script"`
	// Watch reloads Script when it changes on disk.
	Watch bool `toml:"watch" yaml:"watch"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		TickMS: 100,
	}
}

// TickInterval returns the tick period as a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickMS) * time.Millisecond
}

var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	level := strings.ToLower(c.Log.Level)
	valid := false
	for _, l := range logLevels {
		if level == l {
			valid = true
			break
		}
	}
	if !valid {
		errs = append(errs, &ValidationError{
			Setting: "log.level",
			Value:   c.Log.Level,
			Message: "must be debug, info, warn or error",
		})
	}

	if c.TickMS < 0 {
		errs = append(errs, &ValidationError{
			Setting: "tick_ms",
			Value:   c.TickMS,
			Message: "must not be negative",
		})
	}

	if c.Scene.Watch && c.Scene.Script == "" {
		errs = append(errs, &ValidationError{
			Setting: "scene.watch",
			Value:   true,
			Message: "requires scene.script",
		})
	}

	return errors.Join(errs...)
}
