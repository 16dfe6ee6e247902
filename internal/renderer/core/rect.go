package core

// Point is a cell position, column X and row Y.
type Point struct {
	X, Y int
}

// Rect is the half-open cell rectangle [Min, Max). A rectangle whose Max
// is not beyond Min on both axes is empty.
type Rect struct {
	Min, Max Point
}

// RectAt returns the width x height rectangle with its top-left cell at
// (x, y).
func RectAt(x, y, width, height int) Rect {
	return Rect{Min: Point{x, y}, Max: Point{x + width, y + height}}
}

// Dx returns the number of columns, zero for an empty rectangle.
func (r Rect) Dx() int {
	return max(r.Max.X-r.Min.X, 0)
}

// Dy returns the number of rows, zero for an empty rectangle.
func (r Rect) Dy() int {
	return max(r.Max.Y-r.Min.Y, 0)
}

// Empty reports whether r holds no cells.
func (r Rect) Empty() bool {
	return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y
}

// Contains reports whether p is a cell of r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X < r.Max.X &&
		p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// Covers reports whether every cell of s is also in r. Every rectangle
// covers an empty one.
func (r Rect) Covers(s Rect) bool {
	if s.Empty() {
		return true
	}
	return s.Min.X >= r.Min.X && s.Max.X <= r.Max.X &&
		s.Min.Y >= r.Min.Y && s.Max.Y <= r.Max.Y
}

// Intersect returns the cells r and s share, or the zero Rect when they
// share none.
func (r Rect) Intersect(s Rect) Rect {
	out := Rect{
		Min: Point{max(r.Min.X, s.Min.X), max(r.Min.Y, s.Min.Y)},
		Max: Point{min(r.Max.X, s.Max.X), min(r.Max.Y, s.Max.Y)},
	}
	if out.Empty() {
		return Rect{}
	}
	return out
}
