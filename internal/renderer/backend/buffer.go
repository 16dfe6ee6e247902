package backend

import (
	"github.com/dshills/cellwin/internal/renderer/core"
)

// ScreenBuffer is the physical screen: the one full-terminal cell buffer
// windows are composited into. It keeps the cells last pushed to the device
// so Flush only sends what changed.
type ScreenBuffer struct {
	width, height int
	front         []core.Cell // last flushed to the device
	back          []core.Cell // being composited
	dirty         []bool
	fullRedraw    bool
}

// DiffChange represents a cell change for synchronization.
type DiffChange struct {
	X, Y int
	Cell core.Cell
}

// NewScreenBuffer creates a screen buffer with the given dimensions.
func NewScreenBuffer(width, height int) *ScreenBuffer {
	sb := &ScreenBuffer{
		width:      max(width, 0),
		height:     max(height, 0),
		fullRedraw: true,
	}
	sb.allocate()
	return sb
}

func (sb *ScreenBuffer) allocate() {
	n := sb.width * sb.height
	sb.front = make([]core.Cell, n)
	sb.back = make([]core.Cell, n)
	sb.dirty = make([]bool, n)

	empty := core.EmptyCell()
	for i := 0; i < n; i++ {
		sb.front[i] = empty
		sb.back[i] = empty
	}
}

// Resize resizes the buffer, preserving content where possible.
func (sb *ScreenBuffer) Resize(width, height int) {
	if width == sb.width && height == sb.height {
		return
	}

	oldBack := sb.back
	oldWidth := sb.width
	oldHeight := sb.height

	sb.width = max(width, 0)
	sb.height = max(height, 0)
	sb.allocate()

	for y := 0; y < min(oldHeight, sb.height); y++ {
		copy(sb.back[y*sb.width:y*sb.width+min(oldWidth, sb.width)], oldBack[y*oldWidth:])
	}

	sb.fullRedraw = true
}

// Size returns the buffer dimensions.
func (sb *ScreenBuffer) Size() (width, height int) {
	return sb.width, sb.height
}

// Bounds returns the rectangle of cells the buffer holds.
func (sb *ScreenBuffer) Bounds() core.Rect {
	return core.RectAt(0, 0, sb.width, sb.height)
}

func (sb *ScreenBuffer) inBounds(x, y int) bool {
	return sb.Bounds().Contains(core.Point{X: x, Y: y})
}

// SetCell sets a cell in the back buffer.
func (sb *ScreenBuffer) SetCell(x, y int, cell core.Cell) {
	if !sb.inBounds(x, y) {
		return
	}
	i := y*sb.width + x
	sb.back[i] = cell
	sb.dirty[i] = true
}

// GetCell returns a cell from the back buffer.
func (sb *ScreenBuffer) GetCell(x, y int) core.Cell {
	if !sb.inBounds(x, y) {
		return core.EmptyCell()
	}
	return sb.back[y*sb.width+x]
}

// SetLine copies a row of cells starting at the given position. Cells that
// fall outside the buffer are dropped.
func (sb *ScreenBuffer) SetLine(x, y int, cells []core.Cell) {
	span := core.RectAt(x, y, len(cells), 1).Intersect(sb.Bounds())
	if span.Empty() {
		return
	}
	row := y * sb.width
	copy(sb.back[row+span.Min.X:row+span.Max.X], cells[span.Min.X-x:])
	for col := span.Min.X; col < span.Max.X; col++ {
		sb.dirty[row+col] = true
	}
}

// ComputeDiff returns the changes needed to update the display.
// Returns nil if no changes are needed.
func (sb *ScreenBuffer) ComputeDiff() []DiffChange {
	var changes []DiffChange

	for i := range sb.back {
		if !sb.fullRedraw && !sb.dirty[i] {
			continue
		}
		if sb.fullRedraw || !sb.back[i].Equals(sb.front[i]) {
			changes = append(changes, DiffChange{
				X:    i % sb.width,
				Y:    i / sb.width,
				Cell: sb.back[i],
			})
		}
	}

	return changes
}

// Sync copies the back buffer to the front buffer and clears dirty flags.
func (sb *ScreenBuffer) Sync() {
	copy(sb.front, sb.back)
	clear(sb.dirty)
	sb.fullRedraw = false
}

// Flush pushes the changed cells to b, shows them and syncs. It returns the
// number of cells sent.
func (sb *ScreenBuffer) Flush(b Backend) int {
	changes := sb.ComputeDiff()
	for _, ch := range changes {
		b.SetCell(ch.X, ch.Y, ch.Cell)
	}
	sb.Sync()
	b.Show()
	return len(changes)
}

// MarkFullRedraw forces a complete redraw on next flush.
func (sb *ScreenBuffer) MarkFullRedraw() {
	sb.fullRedraw = true
}

// Snapshot returns a copy of the back buffer, row-major.
func (sb *ScreenBuffer) Snapshot() []core.Cell {
	out := make([]core.Cell, len(sb.back))
	copy(out, sb.back)
	return out
}
