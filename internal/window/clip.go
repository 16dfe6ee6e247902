package window

import "github.com/dshills/cellwin/internal/renderer/core"

// ClipRegion is the part of a window that may reach the screen: the
// window's rectangle intersected with every ancestor's clip region, in
// inclusive screen coordinates. XStart and YStart locate the first visible
// cell inside the window's canvas; they are non-zero only when an ancestor
// cuts the window off on the left or top.
type ClipRegion struct {
	Left, Top     int
	Right, Bottom int
	XStart        int
	YStart        int
}

// ScreenClip is the clip region of a whole width x height screen.
func ScreenClip(width, height int) ClipRegion {
	return ClipRegion{Right: width - 1, Bottom: height - 1}
}

// ComputeClip derives the clip region of a width x height rectangle at
// screen position (x, y) inside parent.
func ComputeClip(x, y, width, height int, parent ClipRegion) ClipRegion {
	r := core.RectAt(x, y, width, height).Intersect(parent.Rect())
	if r.Empty() {
		return emptyClip
	}
	return ClipRegion{
		Left:   r.Min.X,
		Top:    r.Min.Y,
		Right:  r.Max.X - 1,
		Bottom: r.Max.Y - 1,
		XStart: r.Min.X - x,
		YStart: r.Min.Y - y,
	}
}

var emptyClip = ClipRegion{Right: -1, Bottom: -1}

// Empty reports whether nothing of the window is visible.
func (c ClipRegion) Empty() bool {
	return c.Left > c.Right || c.Top > c.Bottom
}

// Width returns the number of visible columns.
func (c ClipRegion) Width() int {
	return c.Rect().Dx()
}

// Height returns the number of visible rows.
func (c ClipRegion) Height() int {
	return c.Rect().Dy()
}

// Contains reports whether other lies entirely inside c. An empty region
// is contained everywhere.
func (c ClipRegion) Contains(other ClipRegion) bool {
	return c.Rect().Covers(other.Rect())
}

// Rect returns the region as a half-open screen rectangle.
func (c ClipRegion) Rect() core.Rect {
	if c.Empty() {
		return core.Rect{}
	}
	return core.Rect{
		Min: core.Point{X: c.Left, Y: c.Top},
		Max: core.Point{X: c.Right + 1, Y: c.Bottom + 1},
	}
}
