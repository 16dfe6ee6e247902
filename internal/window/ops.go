package window

import (
	"fmt"

	"github.com/dshills/cellwin/internal/canvas"
)

// The functions in this file assume the device lock is held.

func (c *Context) createChildLocked(parent *Window, name string, x, y, width, height int) (*Window, error) {
	if parent.released {
		return nil, opError("create", parent, ErrReleased)
	}
	child, err := c.newWindow(parent, name, x, y, width, height)
	if err != nil {
		c.logger.Warn("create child of %s failed: %v", parent.id, err)
		return nil, opError("create", parent, err)
	}
	return child, nil
}

func (c *Context) moveLocked(w *Window, x, y int) {
	if w.released {
		c.logger.Warn("move of released window %s ignored", w.id)
		return
	}
	w.x, w.y = x, y
	w.updateGeometry()
	c.recompositeFrom(w)
}

func (c *Context) resizeLocked(w *Window, x, y, width, height int) error {
	if w.released {
		return opError("resize", w, ErrReleased)
	}

	content, err := canvas.New(width, height)
	if err != nil {
		return opError("resize", w, fmt.Errorf("%w: %w", ErrAllocation, err))
	}
	blank, err := canvas.New(width, height)
	if err != nil {
		return opError("resize", w, fmt.Errorf("%w: %w", ErrAllocation, err))
	}

	w.content = content
	w.blank = blank
	w.x, w.y = x, y
	w.width, w.height = content.Width(), content.Height()
	w.updateGeometry()

	c.logger.Debug("window %s resized to (%d,%d) %dx%d", w.id, x, y, w.width, w.height)
	c.recompositeFrom(w)
	return nil
}

func (c *Context) setVisibleLocked(w *Window, visible bool) {
	if w.released {
		return
	}
	w.visible = visible
	c.refreshLocked(w)
}

// releaseLocked drops a reference on w and destroys every window whose
// count reaches zero, walking up the parent chain.
func (c *Context) releaseLocked(w *Window) {
	for w != nil {
		if w.refs <= 0 {
			panic(fmt.Sprintf("window: release of destroyed window %s", w.id))
		}
		w.refs--
		if w.refs > 0 {
			return
		}

		parent := w.parent
		w.unlinkLocked()
		w.content = nil
		w.blank = nil
		w.parent = nil
		w.released = true
		c.logger.Debug("window %s destroyed", w.id)

		w = parent
	}
}
