package window

import (
	"github.com/dshills/cellwin/internal/canvas"
	"github.com/dshills/cellwin/internal/renderer/backend"
	"github.com/dshills/cellwin/internal/renderer/core"
)

// Compositor paints windows onto the physical screen buffer and flushes
// that buffer to the device.
//
// Windows are painted in tree order: a window, then its children bottom to
// top, then its next sibling. Every blit overwrites what is beneath it, so
// the newest of two overlapping siblings ends up on top.
type Compositor struct {
	screen *backend.ScreenBuffer
	device backend.Backend
	row    []core.Cell
}

// NewCompositor creates a compositor drawing into screen and flushing to
// device.
func NewCompositor(screen *backend.ScreenBuffer, device backend.Backend) *Compositor {
	return &Compositor{screen: screen, device: device}
}

// Composite paints w and, following the tree order, everything after it.
// A visible window blits its content and then its children; a hidden one
// blits its blank canvas and its children are skipped.
func (c *Compositor) Composite(w *Window) {
	for ; w != nil; w = w.next {
		if !w.visible {
			c.blit(w.clip, w.blank)
			continue
		}
		c.blit(w.clip, w.content)
		if w.bottom != nil {
			c.Composite(w.bottom)
		}
	}
}

// Flush sends the screen's changed cells to the device and shows them.
func (c *Compositor) Flush() int {
	return c.screen.Flush(c.device)
}

// blit copies the clip.Width() x clip.Height() block of src starting at
// (clip.XStart, clip.YStart) to the screen at (clip.Left, clip.Top).
func (c *Compositor) blit(clip ClipRegion, src *canvas.Canvas) {
	if clip.Empty() || src == nil {
		return
	}

	width := clip.Width()
	for dy := 0; dy < clip.Height(); dy++ {
		cells := src.Row(clip.XStart, clip.YStart+dy, width)
		if len(cells) == 0 {
			continue
		}
		c.screen.SetLine(clip.Left, clip.Top+dy, c.trimWide(cells))
	}
}

// trimWide blanks half-visible wide runes at either edge of a clipped row
// so no glyph spills past the clip region.
func (c *Compositor) trimWide(cells []core.Cell) []core.Cell {
	first := cells[0].IsContinuation()
	last := cells[len(cells)-1].Width == 2
	if !first && !last {
		return cells
	}

	c.row = append(c.row[:0], cells...)
	if first {
		c.row[0] = core.EmptyCell()
	}
	if last {
		c.row[len(c.row)-1] = core.EmptyCell()
	}
	return c.row
}
