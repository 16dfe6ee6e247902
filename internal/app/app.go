// Package app wires the cellwin components together and runs the
// application: it brings up the windowing context on a terminal backend,
// runs the scene script, drives its tick and reloads it when it changes,
// and quits on q, Esc or Ctrl-C.
package app

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/cellwin/internal/config"
	"github.com/dshills/cellwin/internal/renderer/backend"
	"github.com/dshills/cellwin/internal/script"
	"github.com/dshills/cellwin/internal/watcher"
	"github.com/dshills/cellwin/internal/window"
)

// Options configures the application.
type Options struct {
	// Config is the validated configuration. Nil uses config.Default().
	Config *config.Config

	// Backend is the terminal device.
	Backend backend.Backend

	// Logger receives application logs. Nil discards them.
	Logger *Logger

	// WatchDebounce is the quiet period after a script change before it is
	// reloaded. Zero uses watcher.DefaultDebounce.
	WatchDebounce time.Duration
}

// Application is the central coordinator for all cellwin components.
type Application struct {
	cfg     *config.Config
	backend  backend.Backend
	logger   *Logger
	debounce time.Duration

	wctx    *window.Context
	scene   *script.Engine
	watcher *watcher.Watcher
	ticker  *Ticker

	events chan backend.Event
	errs   chan error

	running   atomic.Bool
	ready     chan struct{}
	readyOnce sync.Once
	done      chan struct{}
	closeOnce sync.Once
}

// New creates an application. Nothing touches the terminal until Run.
func New(opts Options) (*Application, error) {
	if opts.Backend == nil {
		return nil, ErrNoBackend
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}
	logger := opts.Logger
	if logger == nil {
		logger = NullLogger
	}

	debounce := opts.WatchDebounce
	if debounce <= 0 {
		debounce = watcher.DefaultDebounce
	}

	return &Application{
		cfg:      cfg,
		backend:  opts.Backend,
		logger:   logger,
		debounce: debounce,
		events:   make(chan backend.Event, 16),
		errs:     make(chan error, 16),
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Run brings the components up and processes events until the user quits
// or Shutdown is called. It returns nil on a normal exit.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := app.bootstrap(); err != nil {
		app.shutdown()
		return err
	}
	defer app.shutdown()

	app.readyOnce.Do(func() { close(app.ready) })
	go app.pollEvents()

	return app.eventLoop()
}

// bootstrap initializes the components in dependency order.
func (app *Application) bootstrap() error {
	var err error

	// 1. Window context over the device
	app.wctx, err = window.NewContext(app.backend,
		window.WithLogger(app.logger.WithComponent("window")))
	if err != nil {
		return &InitError{Component: "window", Err: err}
	}

	// 2. Scene script
	app.scene = script.New(app.wctx, script.WithLogger(app.logger.WithComponent("script")))
	if path := app.cfg.Scene.Script; path != "" {
		err = app.scene.LoadFile(path)
	} else {
		err = app.scene.LoadDefault()
	}
	if err != nil {
		return &InitError{Component: "script", Err: err}
	}

	// 3. Script watcher
	if app.cfg.Scene.Watch {
		app.watcher, err = watcher.New(watcher.WithDebounce(app.debounce))
		if err != nil {
			return &InitError{Component: "watcher", Err: err}
		}
		if err := app.watcher.Watch(app.cfg.Scene.Script); err != nil {
			return &InitError{Component: "watcher", Err: err}
		}
	}

	// 4. Tick
	if interval := app.cfg.TickInterval(); interval > 0 {
		app.ticker = NewTicker(interval, app.tick)
		if err := app.ticker.Start(); err != nil {
			return &InitError{Component: "ticker", Err: err}
		}
	}

	app.logger.Info("started: scene %s", app.scene.Source())
	return nil
}

// tick runs on the ticker goroutine.
func (app *Application) tick(n int) {
	if err := app.scene.Tick(n); err != nil {
		app.report(&ComponentError{Component: "script", Action: "tick", Err: err})
	}
}

// report logs a component error without stopping the application.
func (app *Application) report(err error) {
	app.logger.Error("%v", err)
	select {
	case app.errs <- err:
	default:
	}
}

// Errors returns the channel non-fatal component errors are reported on.
// Reports are dropped when nobody reads them.
func (app *Application) Errors() <-chan error {
	return app.errs
}

// pollEvents forwards device events to the event loop. It exits once the
// application is done; Shutdown posts an interrupt to wake it.
func (app *Application) pollEvents() {
	for {
		ev := app.backend.PollEvent()
		select {
		case <-app.done:
			return
		default:
		}
		if ev.Type == backend.EventNone {
			continue
		}
		select {
		case app.events <- ev:
		case <-app.done:
			return
		}
	}
}

// eventLoop is the main application loop.
func (app *Application) eventLoop() error {
	var reloads <-chan watcher.Event
	var watchErrs <-chan error
	if app.watcher != nil {
		reloads = app.watcher.Events()
		watchErrs = app.watcher.Errors()
	}

	for {
		select {
		case <-app.done:
			return nil

		case ev := <-app.events:
			if err := app.handleEvent(ev); err != nil {
				if errors.Is(err, ErrQuit) {
					app.logger.Info("quit requested")
					return nil
				}
				return err
			}

		case ev, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			app.reload(ev)

		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			app.report(&ComponentError{Component: "watcher", Err: err})
		}
	}
}

// handleEvent processes one device event. It returns ErrQuit when the
// application should exit.
func (app *Application) handleEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventResize:
		if err := app.wctx.ResizeScreen(ev.Width, ev.Height); err != nil {
			app.report(&ComponentError{Component: "window", Action: "resize", Err: err})
		}
		return nil

	case backend.EventKey:
		return app.handleKey(ev)

	default:
		return nil
	}
}

func (app *Application) handleKey(ev backend.Event) error {
	switch ev.Key {
	case backend.KeyEscape, backend.KeyCtrlC:
		return ErrQuit
	case backend.KeyRune:
		if ev.Rune == 'q' || ev.Rune == 'Q' {
			return ErrQuit
		}
	case backend.KeyCtrlL:
		app.redraw()
	}
	return nil
}

// redraw repaints every cell of the terminal.
func (app *Application) redraw() {
	app.wctx.Batch(func(tx *window.Tx) {
		app.wctx.Screen().MarkFullRedraw()
		tx.Refresh(app.wctx.Root())
	})
}

func (app *Application) reload(ev watcher.Event) {
	if ev.Op.Has(watcher.OpRemove) && !ev.Op.Has(watcher.OpCreate) {
		app.logger.WithField("path", ev.Path).Warn("scene removed; keeping the current scene")
		return
	}

	log := app.logger.WithFields(map[string]any{"path": ev.Path, "op": ev.Op})
	log.Info("reloading scene")
	if err := app.scene.LoadFile(app.cfg.Scene.Script); err != nil {
		app.report(&ComponentError{Component: "script", Action: "reload", Err: err})
	}
}

// Shutdown asks a running application to exit. It is safe to call from
// any goroutine and more than once.
func (app *Application) Shutdown() {
	app.closeOnce.Do(func() {
		close(app.done)
		app.backend.PostEvent(backend.Event{Type: backend.EventInterrupt})
	})
}

// shutdown stops the components in reverse initialization order.
func (app *Application) shutdown() {
	app.Shutdown()

	if app.ticker != nil {
		app.ticker.Stop()
	}
	if app.watcher != nil {
		_ = app.watcher.Close()
	}
	if app.scene != nil {
		app.scene.Close()
	}
	if app.wctx != nil {
		app.wctx.Close()
	}
	app.logger.Info("stopped")
}

// IsRunning returns true if the application is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Ready is closed once Run has brought every component up and the event
// loop is about to start. It is never closed if startup fails.
func (app *Application) Ready() <-chan struct{} {
	return app.ready
}

// Window returns the window context. It is nil until Ready is closed.
func (app *Application) Window() *window.Context {
	return app.wctx
}
