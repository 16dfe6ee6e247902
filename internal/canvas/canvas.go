// Package canvas provides the drawing surface a window owns: a fixed-size
// grid of cells with a write cursor. A canvas knows nothing about where it
// is shown; windows blit a clipped part of it onto the screen.
package canvas

import (
	"errors"

	"github.com/dshills/cellwin/internal/renderer/core"
)

// MaxCells bounds a single canvas allocation.
const MaxCells = 1 << 24

// ErrTooLarge is returned when a canvas cannot be allocated.
var ErrTooLarge = errors.New("canvas too large")

// Canvas is a width x height grid of cells. Writes outside the grid are
// dropped.
//
// A Canvas is not safe for concurrent use.
type Canvas struct {
	width, height int
	cells         []core.Cell
	cursorX       int
	cursorY       int
	style         core.Style
}

// New allocates a blank canvas. Non-positive dimensions yield an empty
// canvas, not an error.
func New(width, height int) (*Canvas, error) {
	width = max(width, 0)
	height = max(height, 0)
	if width != 0 && height > MaxCells/width {
		return nil, ErrTooLarge
	}

	c := &Canvas{
		width:  width,
		height: height,
		cells:  make([]core.Cell, width*height),
		style:  core.DefaultStyle(),
	}
	c.Clear()
	return c, nil
}

// Width returns the canvas width in columns.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in rows.
func (c *Canvas) Height() int { return c.height }

// Cursor returns the write cursor position.
func (c *Canvas) Cursor() (x, y int) { return c.cursorX, c.cursorY }

// MoveCursor positions the write cursor. Positions outside the canvas are
// allowed; writes from there are dropped until the cursor wraps back in.
func (c *Canvas) MoveCursor(x, y int) {
	c.cursorX = x
	c.cursorY = y
}

// SetStyle sets the style used by the rune and string writers.
func (c *Canvas) SetStyle(style core.Style) { c.style = style }

// Style returns the current write style.
func (c *Canvas) Style() core.Style { return c.style }

func (c *Canvas) inBounds(x, y int) bool {
	return x >= 0 && x < c.width && y >= 0 && y < c.height
}

// SetCell writes a cell at (x, y).
func (c *Canvas) SetCell(x, y int, cell core.Cell) {
	if c.inBounds(x, y) {
		c.cells[y*c.width+x] = cell
	}
}

// Cell returns the cell at (x, y), or an empty cell outside the canvas.
func (c *Canvas) Cell(x, y int) core.Cell {
	if !c.inBounds(x, y) {
		return core.EmptyCell()
	}
	return c.cells[y*c.width+x]
}

// Row returns the cells of row y from column x onward, up to n cells. The
// slice aliases the canvas storage.
func (c *Canvas) Row(x, y, n int) []core.Cell {
	if y < 0 || y >= c.height || x < 0 || x >= c.width || n <= 0 {
		return nil
	}
	start := y*c.width + x
	end := start + min(n, c.width-x)
	return c.cells[start:end]
}

// AddRune writes r at the cursor and advances it, wrapping to the next
// line at the right edge. '\n' moves to the start of the next line.
func (c *Canvas) AddRune(r rune) {
	if r == '\n' {
		c.cursorX = 0
		c.cursorY++
		return
	}

	w := core.RuneWidth(r)
	if w == 0 {
		return
	}
	if c.cursorX+w > c.width && c.cursorX > 0 {
		c.cursorX = 0
		c.cursorY++
	}

	c.SetCell(c.cursorX, c.cursorY, core.Cell{Rune: r, Width: w, Style: c.style})
	if w == 2 {
		c.SetCell(c.cursorX+1, c.cursorY, core.ContinuationCell())
	}
	c.cursorX += w
	if c.cursorX >= c.width {
		c.cursorX = 0
		c.cursorY++
	}
}

// AddRuneAt moves the cursor to (x, y) and writes r.
func (c *Canvas) AddRuneAt(r rune, x, y int) {
	c.MoveCursor(x, y)
	c.AddRune(r)
}

// AddString writes s at the cursor, rune by rune.
func (c *Canvas) AddString(s string) {
	for _, r := range s {
		c.AddRune(r)
	}
}

// AddStringAt moves the cursor to (x, y) and writes s.
func (c *Canvas) AddStringAt(s string, x, y int) {
	c.MoveCursor(x, y)
	c.AddString(s)
}

// Fill sets every cell to r in the given style. The cursor is unchanged.
func (c *Canvas) Fill(r rune, style core.Style) {
	cell := core.NewStyledCell(r, style)
	for i := range c.cells {
		c.cells[i] = cell
	}
}

// Clear blanks every cell and homes the cursor.
func (c *Canvas) Clear() {
	empty := core.EmptyCell()
	for i := range c.cells {
		c.cells[i] = empty
	}
	c.cursorX, c.cursorY = 0, 0
}
