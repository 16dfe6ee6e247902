package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CELLWIN_"

// FileSystem is an abstraction for reading config files.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader resolves a Config from defaults, a file and the environment.
type Loader struct {
	fs        FileSystem
	lookupEnv func(string) (string, bool)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFS sets the file system config files are read from.
func WithFS(fsys FileSystem) LoaderOption {
	return func(l *Loader) {
		l.fs = fsys
	}
}

// WithEnv sets the environment lookup function.
func WithEnv(lookup func(string) (string, bool)) LoaderOption {
	return func(l *Loader) {
		l.lookupEnv = lookup
	}
}

// NewLoader creates a loader reading the OS file system and environment.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:        OSFS{},
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the defaults overlaid with the file at path (if any) and
// then with CELLWIN_* environment variables. An empty path or a missing
// file leaves the defaults in place. The result is not validated.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := l.loadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) loadFile(cfg *Config, path string) error {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // File doesn't exist, not an error
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return nil
}

// envSetters maps each variable (without prefix) to the field it sets.
var envSetters = map[string]func(cfg *Config, val string) error{
	"LOG_LEVEL": func(cfg *Config, val string) error {
		cfg.Log.Level = val
		return nil
	},
	"LOG_FILE": func(cfg *Config, val string) error {
		cfg.Log.File = val
		return nil
	},
	"SCRIPT": func(cfg *Config, val string) error {
		cfg.Scene.Script = val
		return nil
	},
	"WATCH": func(cfg *Config, val string) error {
		b, err := parseBool(val)
		if err != nil {
			return err
		}
		cfg.Scene.Watch = b
		return nil
	},
	"TICK_MS": func(cfg *Config, val string) error {
		n, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		cfg.TickMS = n
		return nil
	},
}

func (l *Loader) applyEnv(cfg *Config) error {
	for name, set := range envSetters {
		val, ok := l.lookupEnv(EnvPrefix + name)
		if !ok {
			continue
		}
		if err := set(cfg, val); err != nil {
			return &ParseError{Path: EnvPrefix + name, Message: err.Error(), Err: err}
		}
	}
	return nil
}

// parseBool accepts the spellings people put in environment variables.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off", "":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}
