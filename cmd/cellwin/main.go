// Package main is the entry point for cellwin, a terminal windowing demo
// driven by Lua scene scripts.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/cellwin/internal/app"
	"github.com/dshills/cellwin/internal/config"
	"github.com/dshills/cellwin/internal/renderer/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if opts.showVersion {
		fmt.Printf("cellwin %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		return 0
	}

	cfg, err := resolveConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: stdout is not a terminal")
		return 1
	}

	logger, closeLog, err := openLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log: %v\n", err)
		return 1
	}
	defer closeLog()

	// Create terminal backend
	terminal, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}

	application, err := app.New(app.Options{
		Config:  cfg,
		Backend: terminal,
		Logger:  logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	go func() {
		<-signals
		application.Shutdown()
	}()

	if err := application.Run(); err != nil && !errors.Is(err, app.ErrQuit) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// cliOptions holds the parsed command line.
type cliOptions struct {
	configPath  string
	showVersion bool

	// Overrides, applied only when set on the command line.
	set      map[string]bool
	script   string
	watch    bool
	logLevel string
	logFile  string
	tickMS   int
}

func parseFlags(args []string, stderr io.Writer) (*cliOptions, error) {
	opts := &cliOptions{set: make(map[string]bool)}

	fs := flag.NewFlagSet("cellwin", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file (.toml, .yaml)")
	fs.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.script, "script", "", "Lua scene script (default: built-in demo)")
	fs.StringVar(&opts.script, "s", "", "Lua scene script (shorthand)")
	fs.BoolVar(&opts.watch, "watch", false, "Reload the scene script when it changes")
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.logFile, "log-file", "", "Write logs to this file")
	fs.IntVar(&opts.tickMS, "tick", 100, "Scene tick period in milliseconds (0 disables)")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version information")
	fs.BoolVar(&opts.showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "cellwin - terminal windows driven by Lua scenes\n\n")
		fmt.Fprintf(stderr, "Usage: cellwin [options]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nKeys: q, Esc or Ctrl-C quit; Ctrl-L redraws.\n")
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  cellwin                       Run the demo scene\n")
		fmt.Fprintf(stderr, "  cellwin -s scene.lua --watch  Run a scene, reloading on save\n")
		fmt.Fprintf(stderr, "  cellwin -c cellwin.toml       Use a config file\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return nil, fmt.Errorf("unexpected arguments")
	}

	fs.Visit(func(f *flag.Flag) {
		name := f.Name
		if name == "s" {
			name = "script"
		}
		opts.set[name] = true
	})
	return opts, nil
}

// resolveConfig loads the config file and environment, applies the flags
// given on the command line and validates the result.
func resolveConfig(opts *cliOptions) (*config.Config, error) {
	cfg, err := config.NewLoader().Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	if opts.set["script"] {
		cfg.Scene.Script = opts.script
	}
	if opts.set["watch"] {
		cfg.Scene.Watch = opts.watch
	}
	if opts.set["log-level"] {
		cfg.Log.Level = opts.logLevel
	}
	if opts.set["log-file"] {
		cfg.Log.File = opts.logFile
	}
	if opts.set["tick"] {
		cfg.TickMS = opts.tickMS
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openLogger returns a logger writing to the configured file, or one that
// discards everything when no file is set. The terminal itself is showing
// windows and cannot take log lines.
func openLogger(cfg config.LogConfig) (*app.Logger, func(), error) {
	if cfg.File == "" {
		return app.NullLogger, func() {}, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := app.NewLogger(app.LoggerConfig{
		Level:  app.ParseLogLevel(cfg.Level),
		Output: f,
		Prefix: "cellwin",
	})
	return logger, func() { _ = f.Close() }, nil
}
