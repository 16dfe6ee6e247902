package script

import (
	"fmt"
	"os"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/cellwin/internal/window"
)

// Logger is the logging surface of the engine.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}

// Engine runs scene scripts against a window context.
//
// gopher-lua's LState is not goroutine-safe; the engine serializes every
// entry into Lua with its own mutex.
type Engine struct {
	mu sync.Mutex

	L      *lua.LState
	wctx   *window.Context
	logger Logger

	// Windows created by the current script and not yet released by it.
	owned []*handle

	source string
	closed bool
}

// handle is the value behind a Lua window userdata.
type handle struct {
	w        *window.Window
	owned    bool // false for the root, which belongs to the context
	released bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for script output and lifecycle messages.
func WithLogger(l Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine bound to wctx. No script is loaded.
func New(wctx *window.Context, opts ...Option) *Engine {
	e := &Engine{
		wctx:   wctx,
		logger: nopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.L = e.newState()
	return e
}

func (e *Engine) newState() *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	openSafeLibraries(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}

	e.registerWindowType(L)
	e.registerModule(L)
	return L
}

// openSafeLibraries opens only the Lua libraries a scene needs.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// LoadFile replaces the current scene with the script at path.
func (e *Engine) LoadFile(path string) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return &ScriptError{Source: path, Err: err}
	}
	return e.LoadString(path, string(code))
}

// LoadString replaces the current scene with code. name identifies the
// script in errors and logs.
//
// Windows the previous script still held are released first, and the
// Lua state is recreated, so no globals survive a reload.
func (e *Engine) LoadString(name, code string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}

	e.resetLocked()
	e.source = name
	e.logger.Debug("loading scene %s", name)

	if err := e.protect(func() error { return e.L.DoString(code) }); err != nil {
		return &ScriptError{Source: name, Err: err}
	}
	return nil
}

// resetLocked releases the previous scene's windows and starts a fresh
// Lua state.
func (e *Engine) resetLocked() {
	released := e.releaseOwnedLocked()
	e.L.Close()
	e.L = e.newState()
	if released > 0 {
		e.wctx.Refresh()
	}
}

func (e *Engine) releaseOwnedLocked() int {
	n := 0
	for i := len(e.owned) - 1; i >= 0; i-- {
		h := e.owned[i]
		if !h.released {
			h.released = true
			h.w.Release()
			n++
		}
	}
	e.owned = nil
	return n
}

// HasTick reports whether the current scene defines on_tick.
func (e *Engine) HasTick() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return false
	}
	return e.L.GetGlobal("on_tick").Type() == lua.LTFunction
}

// Tick calls the scene's on_tick(n) hook. A scene without one is not an
// error.
func (e *Engine) Tick(n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}

	fn := e.L.GetGlobal("on_tick")
	if fn.Type() != lua.LTFunction {
		return nil
	}

	err := e.protect(func() error {
		return e.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, lua.LNumber(n))
	})
	if err != nil {
		return &ScriptError{Source: e.source, Err: err}
	}
	return nil
}

// Windows returns the windows the current scene holds, oldest first.
func (e *Engine) Windows() []*window.Window {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*window.Window, 0, len(e.owned))
	for _, h := range e.owned {
		out = append(out, h.w)
	}
	return out
}

// Source returns the name of the loaded script.
func (e *Engine) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

// Close releases the scene's windows and the Lua state. It is safe to call
// more than once.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true
	e.releaseOwnedLocked()
	e.L.Close()
}

// protect runs fn, turning a Go panic raised from a binding into an error.
func (e *Engine) protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}
