package backend

import (
	"testing"

	"github.com/dshills/cellwin/internal/renderer/core"
)

func TestNewScreenBuffer(t *testing.T) {
	sb := NewScreenBuffer(80, 24)

	w, h := sb.Size()
	if w != 80 || h != 24 {
		t.Errorf("expected size (80, 24), got (%d, %d)", w, h)
	}
}

func TestScreenBufferSetGetCell(t *testing.T) {
	sb := NewScreenBuffer(80, 24)

	cell := core.NewStyledCell('A', core.DefaultStyle().WithForeground(core.ColorBlue))
	sb.SetCell(10, 5, cell)

	if got := sb.GetCell(10, 5); !got.Equals(cell) {
		t.Errorf("cell mismatch: expected %+v, got %+v", cell, got)
	}

	// Out of bounds
	sb.SetCell(-1, 0, cell)
	sb.SetCell(100, 0, cell)

	if !sb.GetCell(-1, 0).Equals(core.EmptyCell()) {
		t.Error("out of bounds should return empty cell")
	}
}

func TestScreenBufferSetLineClipsBothEnds(t *testing.T) {
	sb := NewScreenBuffer(4, 1)

	sb.SetLine(-1, 0, []core.Cell{
		core.NewCell('a'),
		core.NewCell('b'),
		core.NewCell('c'),
		core.NewCell('d'),
		core.NewCell('e'),
		core.NewCell('f'),
	})

	want := "bcde"
	for x := 0; x < 4; x++ {
		if got := sb.GetCell(x, 0).Rune; got != rune(want[x]) {
			t.Errorf("cell %d = %q, want %q", x, got, want[x])
		}
	}

	// Row outside the buffer is ignored
	sb.SetLine(0, 3, []core.Cell{core.NewCell('z')})
}

func TestScreenBufferBounds(t *testing.T) {
	sb := NewScreenBuffer(8, 3)

	if got, want := sb.Bounds(), core.RectAt(0, 0, 8, 3); got != want {
		t.Errorf("Bounds() = %+v, want %+v", got, want)
	}

	// Writes on the edge land; one past it are dropped.
	sb.SetCell(7, 2, core.NewCell('e'))
	sb.SetCell(8, 2, core.NewCell('x'))
	sb.SetCell(0, 3, core.NewCell('x'))
	if sb.GetCell(7, 2).Rune != 'e' {
		t.Error("edge cell should be written")
	}
	for _, c := range sb.Snapshot() {
		if c.Rune == 'x' {
			t.Fatal("out of bounds write landed in the buffer")
		}
	}
}

func TestScreenBufferResize(t *testing.T) {
	sb := NewScreenBuffer(80, 24)
	sb.SetCell(10, 10, core.NewCell('X'))
	sb.SetCell(70, 20, core.NewCell('Y'))

	sb.Resize(50, 15)

	w, h := sb.Size()
	if w != 50 || h != 15 {
		t.Errorf("expected size (50, 15), got (%d, %d)", w, h)
	}
	if sb.GetCell(10, 10).Rune != 'X' {
		t.Error("resize should preserve content within new bounds")
	}
	if sb.GetCell(70, 20).Rune == 'Y' {
		t.Error("cell outside new bounds should be gone")
	}
}

func TestScreenBufferFlushSendsOnlyChanges(t *testing.T) {
	dev := NewNullBackend(10, 3)
	dev.Init()
	sb := NewScreenBuffer(10, 3)

	// First flush is a full redraw.
	if n := sb.Flush(dev); n != 30 {
		t.Errorf("first flush sent %d cells, want 30", n)
	}
	if n := len(sb.ComputeDiff()); n != 0 {
		t.Errorf("buffer should be clean after flush, diff = %d", n)
	}

	sb.SetCell(2, 1, core.NewCell('Q'))
	if n := sb.Flush(dev); n != 1 {
		t.Errorf("second flush sent %d cells, want 1", n)
	}
	if dev.GetCell(2, 1).Rune != 'Q' {
		t.Error("device should have received the change")
	}

	// Rewriting the same cell is dirty but not different.
	sb.SetCell(2, 1, core.NewCell('Q'))
	if n := sb.Flush(dev); n != 0 {
		t.Errorf("unchanged flush sent %d cells, want 0", n)
	}
	if dev.ShowCount() != 3 {
		t.Errorf("ShowCount() = %d, want 3", dev.ShowCount())
	}
}

func TestScreenBufferMarkFullRedraw(t *testing.T) {
	sb := NewScreenBuffer(4, 4)
	sb.Sync()

	sb.MarkFullRedraw()
	if got := len(sb.ComputeDiff()); got != 16 {
		t.Errorf("full redraw diff = %d cells, want 16", got)
	}
}

func TestScreenBufferSnapshotIsCopy(t *testing.T) {
	sb := NewScreenBuffer(2, 2)
	snap := sb.Snapshot()
	sb.SetCell(0, 0, core.NewCell('x'))

	if snap[0].Rune == 'x' {
		t.Error("snapshot should not alias the buffer")
	}
}
