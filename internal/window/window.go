package window

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/cellwin/internal/canvas"
	"github.com/dshills/cellwin/internal/renderer/core"
)

// Window is one rectangular surface in the window tree.
//
// Drawing methods write into the window's private canvas and never take
// the device lock; nothing reaches the screen until the window (or an
// ancestor) is refreshed. A caller must not draw into a window from one
// goroutine while resizing or releasing it from another.
type Window struct {
	ctx *Context
	id  string

	// parent is an owning reference: it holds one of the parent's refs.
	parent *Window

	// Non-owning links. bottom is the oldest child, top the newest.
	bottom, top *Window
	prev, next  *Window

	x, y          int // relative to the parent's origin
	absX, absY    int // screen origin
	width, height int
	clip          ClipRegion
	visible       bool

	content *canvas.Canvas
	blank   *canvas.Canvas

	refs     int
	released bool
}

// newWindow allocates a window and, when parent is set, links it as the
// parent's new top child. Nothing is linked if allocation fails.
func (c *Context) newWindow(parent *Window, id string, x, y, width, height int) (*Window, error) {
	content, err := canvas.New(width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	blank, err := canvas.New(width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllocation, err)
	}

	if id == "" {
		id = uuid.NewString()
	}
	w := &Window{
		ctx:     c,
		id:      id,
		parent:  parent,
		x:       x,
		y:       y,
		width:   max(width, 0),
		height:  max(height, 0),
		visible: true,
		content: content,
		blank:   blank,
		refs:    1,
	}

	if parent != nil {
		parent.refs++
		w.prev = parent.top
		if parent.top != nil {
			parent.top.next = w
		} else {
			parent.bottom = w
		}
		parent.top = w
	}
	w.updateGeometry()

	c.logger.Debug("window %s created at (%d,%d) %dx%d", w.id, x, y, width, height)
	return w, nil
}

// updateGeometry recomputes the screen origin and clip region of w and of
// its whole subtree.
func (w *Window) updateGeometry() {
	px, py := 0, 0
	pclip := ScreenClip(w.ctx.screen.Size())
	if w.parent != nil {
		px, py = w.parent.absX, w.parent.absY
		pclip = w.parent.clip
	}

	w.absX = px + w.x
	w.absY = py + w.y
	w.clip = ComputeClip(w.absX, w.absY, w.width, w.height, pclip)

	for child := w.bottom; child != nil; child = child.next {
		child.updateGeometry()
	}
}

// unlinkLocked removes w from its parent's child pointers and from its
// sibling chain. A window that its parent does not list means the tree is
// corrupt.
func (w *Window) unlinkLocked() {
	p := w.parent
	if p == nil {
		return
	}

	if w.prev != nil {
		if w.prev.next != w {
			panic(fmt.Sprintf("window: %s is not linked after its previous sibling %s", w.id, w.prev.id))
		}
		w.prev.next = w.next
	} else {
		if p.bottom != w {
			panic(fmt.Sprintf("window: %s is not the bottom child of %s", w.id, p.id))
		}
		p.bottom = w.next
	}

	if w.next != nil {
		if w.next.prev != w {
			panic(fmt.Sprintf("window: %s is not linked before its next sibling %s", w.id, w.next.id))
		}
		w.next.prev = w.prev
	} else {
		if p.top != w {
			panic(fmt.Sprintf("window: %s is not the top child of %s", w.id, p.id))
		}
		p.top = w.prev
	}

	w.prev, w.next = nil, nil
}

// ID returns the window's diagnostic identifier.
func (w *Window) ID() string {
	return w.id
}

// CreateChild creates a width x height window at (x, y) relative to w and
// stacks it above all of w's existing children.
func (w *Window) CreateChild(x, y, width, height int) (*Window, error) {
	return w.CreateNamedChild("", x, y, width, height)
}

// CreateNamedChild is CreateChild with a diagnostic name used in logs and
// dumps. An empty name gets a generated one.
func (w *Window) CreateNamedChild(name string, x, y, width, height int) (*Window, error) {
	var child *Window
	var err error
	w.ctx.lock.Do(func() {
		child, err = w.ctx.createChildLocked(w, name, x, y, width, height)
	})
	return child, err
}

// Move places w at (x, y) relative to its parent and recomposites the
// parent.
func (w *Window) Move(x, y int) {
	w.ctx.lock.Do(func() {
		w.ctx.moveLocked(w, x, y)
	})
}

// Resize gives w a new position and size. Both canvases are replaced by
// blank ones; prior content is not kept. On error w is unchanged.
func (w *Window) Resize(x, y, width, height int) error {
	var err error
	w.ctx.lock.Do(func() {
		err = w.ctx.resizeLocked(w, x, y, width, height)
	})
	return err
}

// Hide stops w and its subtree from being composited. Its area shows
// blank cells after the immediate recomposite.
func (w *Window) Hide() {
	w.ctx.lock.Do(func() {
		w.ctx.setVisibleLocked(w, false)
	})
}

// Show makes w and its subtree visible again and recomposites.
func (w *Window) Show() {
	w.ctx.lock.Do(func() {
		w.ctx.setVisibleLocked(w, true)
	})
}

// Refresh composites w, its subtree and its later siblings onto the
// screen and flushes the screen to the device.
func (w *Window) Refresh() {
	w.ctx.lock.Do(func() {
		w.ctx.refreshLocked(w)
	})
}

// Retain adds a reference to w for another holder.
func (w *Window) Retain() {
	w.ctx.lock.Do(func() {
		if w.released {
			panic(fmt.Sprintf("window: retain of released window %s", w.id))
		}
		w.refs++
	})
}

// Release drops one reference to w. When the last reference goes, w is
// unlinked from the tree, its canvases are freed and its reference on its
// parent is released in turn.
func (w *Window) Release() {
	w.ctx.lock.Do(func() {
		w.ctx.releaseLocked(w)
	})
}

// Released reports whether w has been destroyed.
func (w *Window) Released() bool {
	var released bool
	w.ctx.lock.Do(func() {
		released = w.released
	})
	return released
}

// Visible reports whether w is shown.
func (w *Window) Visible() bool {
	var v bool
	w.ctx.lock.Do(func() {
		v = w.visible
	})
	return v
}

// Position returns w's position relative to its parent.
func (w *Window) Position() (x, y int) {
	w.ctx.lock.Do(func() {
		x, y = w.x, w.y
	})
	return x, y
}

// ScreenOrigin returns w's top-left corner in screen coordinates.
func (w *Window) ScreenOrigin() (x, y int) {
	w.ctx.lock.Do(func() {
		x, y = w.absX, w.absY
	})
	return x, y
}

// Clip returns w's current clip region.
func (w *Window) Clip() ClipRegion {
	var clip ClipRegion
	w.ctx.lock.Do(func() {
		clip = w.clip
	})
	return clip
}

// Parent returns w's parent, or nil for the root.
func (w *Window) Parent() *Window {
	return w.link(func() *Window { return w.parent })
}

// Bottom returns w's oldest live child.
func (w *Window) Bottom() *Window {
	return w.link(func() *Window { return w.bottom })
}

// Top returns w's newest live child.
func (w *Window) Top() *Window {
	return w.link(func() *Window { return w.top })
}

// Prev returns the sibling directly below w.
func (w *Window) Prev() *Window {
	return w.link(func() *Window { return w.prev })
}

// Next returns the sibling directly above w.
func (w *Window) Next() *Window {
	return w.link(func() *Window { return w.next })
}

func (w *Window) link(get func() *Window) *Window {
	var out *Window
	w.ctx.lock.Do(func() {
		out = get()
	})
	return out
}

// Children returns w's live children from bottom to top.
func (w *Window) Children() []*Window {
	var out []*Window
	w.ctx.lock.Do(func() {
		for c := w.bottom; c != nil; c = c.next {
			out = append(out, c)
		}
	})
	return out
}

// Width returns the canvas width.
func (w *Window) Width() int {
	if c := w.content; c != nil {
		return c.Width()
	}
	return 0
}

// Height returns the canvas height.
func (w *Window) Height() int {
	if c := w.content; c != nil {
		return c.Height()
	}
	return 0
}

// Canvas returns the content canvas for collaborators that draw directly.
// It is nil once the window is released and is replaced by Resize.
func (w *Window) Canvas() *canvas.Canvas {
	return w.content
}

// SetCell writes cell at (x, y) in window coordinates.
func (w *Window) SetCell(x, y int, cell core.Cell) {
	if c := w.content; c != nil {
		c.SetCell(x, y, cell)
	}
}

// AddRune writes r at the window's cursor and advances it.
func (w *Window) AddRune(r rune) {
	if c := w.content; c != nil {
		c.AddRune(r)
	}
}

// AddRuneAt writes r at (x, y) and leaves the cursor after it.
func (w *Window) AddRuneAt(r rune, x, y int) {
	if c := w.content; c != nil {
		c.AddRuneAt(r, x, y)
	}
}

// AddString writes s at the window's cursor.
func (w *Window) AddString(s string) {
	if c := w.content; c != nil {
		c.AddString(s)
	}
}

// AddStringAt writes s starting at (x, y).
func (w *Window) AddStringAt(s string, x, y int) {
	if c := w.content; c != nil {
		c.AddStringAt(s, x, y)
	}
}

// MoveCursor positions the window's write cursor.
func (w *Window) MoveCursor(x, y int) {
	if c := w.content; c != nil {
		c.MoveCursor(x, y)
	}
}

// SetStyle sets the style used by the rune and string writers.
func (w *Window) SetStyle(style core.Style) {
	if c := w.content; c != nil {
		c.SetStyle(style)
	}
}

// Style returns the style used by the rune and string writers.
func (w *Window) Style() core.Style {
	if c := w.content; c != nil {
		return c.Style()
	}
	return core.DefaultStyle()
}

// Fill sets every cell of the window to r.
func (w *Window) Fill(r rune, style core.Style) {
	if c := w.content; c != nil {
		c.Fill(r, style)
	}
}

// Clear blanks the window's content.
func (w *Window) Clear() {
	if c := w.content; c != nil {
		c.Clear()
	}
}
