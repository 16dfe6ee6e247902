// Package window implements a tree of rectangular character-cell windows
// composited onto one shared terminal screen.
//
// A Context owns the terminal device, the physical screen buffer, the
// device lock and the root window. Windows are created from a parent and
// stack in creation order: among overlapping siblings the most recently
// created one is drawn on top.
//
// Lifetime runs upward: a child keeps its parent alive, while a parent
// refers to its children (and siblings to each other) without owning them.
// A window is destroyed when its last reference is released, which happens
// only after every one of its children has been destroyed.
//
//	ctx, _ := window.NewContext(backend.NewNullBackend(80, 24))
//	defer ctx.Close()
//	w, _ := ctx.Root().CreateChild(2, 2, 10, 10)
//	w.AddString("Hello World!")
//	w.Refresh()
package window

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/cellwin/internal/renderer/backend"
)

// Logger is the logging surface the window package writes to.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger used for window lifecycle messages.
func WithLogger(l Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.logger = l
		}
	}
}

// Context is the windowing state shared by one terminal: the device, the
// physical screen it is drawn from, the device lock and the root window.
type Context struct {
	lock       DeviceLock
	device     backend.Backend
	screen     *backend.ScreenBuffer
	compositor *Compositor
	root       *Window
	logger     Logger

	closed       bool
	inBatch      bool
	pendingFlush bool
}

// NewContext initializes device and creates the root window over its full
// area. It fails with ErrDeviceUnavailable when the device cannot be
// initialized or reports an empty screen.
func NewContext(device backend.Backend, opts ...Option) (*Context, error) {
	c := &Context{
		device: device,
		logger: nopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := device.Init(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	width, height := device.Size()
	if width <= 0 || height <= 0 {
		device.Shutdown()
		return nil, fmt.Errorf("%w: screen size %dx%d", ErrDeviceUnavailable, width, height)
	}

	c.screen = backend.NewScreenBuffer(width, height)
	c.compositor = NewCompositor(c.screen, device)

	root, err := c.newWindow(nil, "root", 0, 0, width, height)
	if err != nil {
		device.Shutdown()
		return nil, opError("create root", nil, err)
	}
	c.root = root

	c.logger.Debug("window context ready: %dx%d", width, height)
	return c, nil
}

// Root returns the root window. It is owned by the context; do not
// Release it.
func (c *Context) Root() *Window {
	return c.root
}

// Size returns the screen dimensions.
func (c *Context) Size() (width, height int) {
	c.lock.Do(func() {
		width, height = c.screen.Size()
	})
	return width, height
}

// Lock returns the device lock.
func (c *Context) Lock() *DeviceLock {
	return &c.lock
}

// Screen returns the physical screen buffer. Reading it is only safe from
// inside Batch.
func (c *Context) Screen() *backend.ScreenBuffer {
	return c.screen
}

// Refresh recomposites the whole tree and flushes it to the device.
func (c *Context) Refresh() {
	c.lock.Do(func() {
		c.refreshLocked(c.root)
	})
}

// Batch runs fn with the device lock held. Operations issued through tx
// do not take the lock again, and the screen is flushed once when fn
// returns instead of after every operation.
//
// fn must use tx rather than the methods of Window or Context, which take
// the lock themselves; calling one from fn panics.
func (c *Context) Batch(fn func(tx *Tx)) {
	c.lock.hold(func() {
		c.inBatch = true
		defer func() {
			c.inBatch = false
			if c.pendingFlush {
				c.flushLocked()
			}
		}()
		fn(&Tx{ctx: c})
	})
}

// ResizeScreen adapts the context to a new terminal size: the physical
// screen and the root window take the new dimensions and the whole tree is
// recomposited.
func (c *Context) ResizeScreen(width, height int) error {
	var err error
	c.lock.Do(func() {
		if c.closed {
			err = ErrClosed
			return
		}
		c.screen.Resize(width, height)
		err = c.resizeLocked(c.root, 0, 0, width, height)
	})
	return err
}

// Close releases the context's reference on the root window and shuts the
// device down. Windows still held by callers stay valid for drawing but
// are no longer shown.
func (c *Context) Close() {
	c.lock.Do(func() {
		if c.closed {
			return
		}
		c.closed = true
		c.releaseLocked(c.root)
		c.device.Shutdown()
		c.logger.Debug("window context closed")
	})
}

// Dump writes the window tree, one window per line, indented by depth.
func (c *Context) Dump(out io.Writer) error {
	var b strings.Builder
	c.lock.Do(func() {
		dumpLocked(&b, c.root, 0)
	})
	_, err := io.WriteString(out, b.String())
	return err
}

func dumpLocked(b *strings.Builder, w *Window, depth int) {
	for ; w != nil; w = w.next {
		vis := "visible"
		if !w.visible {
			vis = "hidden"
		}
		fmt.Fprintf(b, "%s%s at (%d,%d) %dx%d clip [%d,%d..%d,%d] %s refs=%d\n",
			strings.Repeat("  ", depth), w.id,
			w.absX, w.absY, w.width, w.height,
			w.clip.Left, w.clip.Top, w.clip.Right, w.clip.Bottom,
			vis, w.refs)
		dumpLocked(b, w.bottom, depth+1)
	}
}

// refreshLocked composites from w and flushes, or defers the flush to the
// end of the current batch. A window inside a hidden subtree is never drawn:
// the outermost hidden ancestor is composited instead, which blanks its own
// rectangle and skips everything beneath it.
func (c *Context) refreshLocked(w *Window) {
	if c.closed || w == nil || w.released {
		return
	}
	if h := outermostHiddenAncestor(w); h != nil {
		w = h
	}
	c.compositor.Composite(w)
	if c.inBatch {
		c.pendingFlush = true
		return
	}
	c.flushLocked()
}

func outermostHiddenAncestor(w *Window) *Window {
	var hidden *Window
	for p := w.parent; p != nil; p = p.parent {
		if !p.visible {
			hidden = p
		}
	}
	return hidden
}

func (c *Context) flushLocked() {
	c.pendingFlush = false
	if c.closed {
		return
	}
	c.compositor.Flush()
}

// recompositeFrom refreshes from w's parent, or from w itself for the root.
func (c *Context) recompositeFrom(w *Window) {
	if w.parent != nil {
		c.refreshLocked(w.parent)
		return
	}
	c.refreshLocked(w)
}
