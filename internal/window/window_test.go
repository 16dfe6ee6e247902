package window

import (
	"errors"
	"testing"

	"github.com/dshills/cellwin/internal/canvas"
	"github.com/dshills/cellwin/internal/renderer/core"
)

func TestRootCoversScreen(t *testing.T) {
	ctx, _ := newTestContext(t, 80, 24)
	root := ctx.Root()

	if root.Width() != 80 || root.Height() != 24 {
		t.Errorf("root size = %dx%d, want 80x24", root.Width(), root.Height())
	}
	if root.Parent() != nil {
		t.Error("root should have no parent")
	}
	if got, want := root.Clip(), ScreenClip(80, 24); got != want {
		t.Errorf("root clip = %+v, want %+v", got, want)
	}
	if x, y := root.ScreenOrigin(); x != 0 || y != 0 {
		t.Errorf("root origin = (%d, %d)", x, y)
	}
}

func TestCreateChildBecomesTop(t *testing.T) {
	ctx, _ := newTestContext(t, 80, 24)
	root := ctx.Root()

	a := mustChild(t, root, 0, 0, 5, 5)
	if root.Bottom() != a || root.Top() != a {
		t.Fatal("first child should be both bottom and top")
	}
	if a.Prev() != nil || a.Next() != nil {
		t.Fatal("only child should have no siblings")
	}

	b := mustChild(t, root, 1, 1, 5, 5)
	c := mustChild(t, root, 2, 2, 5, 5)

	if root.Top() != c {
		t.Errorf("newest child should be top")
	}
	if b.Next() != c || c.Prev() != b {
		t.Error("old top's next should be the new child and vice versa")
	}
	if root.Bottom() != a {
		t.Error("bottom should stay the oldest child")
	}
	checkChain(t, root, a, b, c)

	if c.Parent() != root {
		t.Error("child should point at its parent")
	}
}

func TestChildGeometryIsParentRelative(t *testing.T) {
	ctx, _ := newTestContext(t, 80, 24)

	p := mustChild(t, ctx.Root(), 10, 5, 20, 10)
	c := mustChild(t, p, 3, 2, 4, 4)

	if x, y := c.Position(); x != 3 || y != 2 {
		t.Errorf("Position() = (%d, %d), want (3, 2)", x, y)
	}
	if x, y := c.ScreenOrigin(); x != 13 || y != 7 {
		t.Errorf("ScreenOrigin() = (%d, %d), want (13, 7)", x, y)
	}
	if c.Width() != 4 || c.Height() != 4 {
		t.Errorf("size = %dx%d", c.Width(), c.Height())
	}
}

func TestCreateChildClipScenario(t *testing.T) {
	ctx, _ := newTestContext(t, 80, 24)

	w := mustChild(t, ctx.Root(), 70, 20, 20, 20)

	clip := w.Clip()
	if clip.Right != 79 || clip.Bottom != 23 {
		t.Errorf("clip right/bottom = %d/%d, want 79/23", clip.Right, clip.Bottom)
	}
	if clip.Left != 70 || clip.Top != 20 {
		t.Errorf("clip left/top = %d/%d, want 70/20", clip.Left, clip.Top)
	}
	if w.Width() != 20 || w.Height() != 20 {
		t.Error("canvas keeps its full logical size")
	}
}

func TestCreateChildAllocationFailureLeavesTreeUnchanged(t *testing.T) {
	log := &recordLogger{}
	ctx, _ := newTestContext(t, 80, 24)
	ctx.logger = log
	root := ctx.Root()

	a := mustChild(t, root, 0, 0, 5, 5)
	refsBefore := root.refs

	_, err := root.CreateChild(0, 0, canvas.MaxCells, 2)
	if !errors.Is(err, ErrAllocation) {
		t.Fatalf("CreateChild() error = %v, want ErrAllocation", err)
	}
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Op != "create" {
		t.Errorf("error should be an OperationError for create, got %T", err)
	}

	checkChain(t, root, a)
	if root.refs != refsBefore {
		t.Errorf("root refs = %d, want %d", root.refs, refsBefore)
	}
	if log.count("WARN") != 1 {
		t.Errorf("expected one warning, got %d", log.count("WARN"))
	}
}

func TestCreateChildOfReleasedWindow(t *testing.T) {
	ctx, _ := newTestContext(t, 80, 24)

	w := mustChild(t, ctx.Root(), 0, 0, 5, 5)
	w.Release()

	if _, err := w.CreateChild(0, 0, 1, 1); !errors.Is(err, ErrReleased) {
		t.Errorf("CreateChild() error = %v, want ErrReleased", err)
	}
}

func TestNamedChild(t *testing.T) {
	ctx, _ := newTestContext(t, 80, 24)

	w, err := ctx.Root().CreateNamedChild("status", 0, 23, 80, 1)
	if err != nil {
		t.Fatal(err)
	}
	if w.ID() != "status" {
		t.Errorf("ID() = %q", w.ID())
	}

	anon := mustChild(t, ctx.Root(), 0, 0, 1, 1)
	if anon.ID() == "" || anon.ID() == w.ID() {
		t.Errorf("generated ID = %q", anon.ID())
	}
}

func TestMoveRecomputesSubtreeClips(t *testing.T) {
	ctx, _ := newTestContext(t, 80, 24)
	root := ctx.Root()

	p := mustChild(t, root, 10, 5, 10, 5)
	c := mustChild(t, p, 2, 1, 6, 3)
	g := mustChild(t, c, 1, 1, 20, 20)

	positions := [][2]int{
		{0, 0}, {75, 20}, {-5, -3}, {-50, 2}, {100, 100}, {5, 19},
	}
	for _, pos := range positions {
		p.Move(pos[0], pos[1])

		if x, y := p.Position(); x != pos[0] || y != pos[1] {
			t.Errorf("Position() = (%d, %d), want %v", x, y, pos)
		}
		gx, gy := g.ScreenOrigin()
		if gx != pos[0]+3 || gy != pos[1]+2 {
			t.Errorf("grandchild origin = (%d, %d) after moving parent to %v", gx, gy, pos)
		}
		if !ScreenClip(80, 24).Contains(p.Clip()) {
			t.Errorf("clip %+v escapes the screen", p.Clip())
		}
		checkClips(t, root)
	}
}

func TestMoveRepaintsParent(t *testing.T) {
	ctx, dev := newTestContext(t, 40, 10)

	w := mustChild(t, ctx.Root(), 0, 0, 3, 2)
	w.Fill('X', core.DefaultStyle())
	ctx.Refresh()
	if runeAt(dev, 0, 0) != 'X' {
		t.Fatal("window should be on screen")
	}

	shows := dev.ShowCount()
	w.Move(10, 5)

	if dev.ShowCount() != shows+1 {
		t.Errorf("move should flush once, flushed %d times", dev.ShowCount()-shows)
	}
	if runeAt(dev, 0, 0) != ' ' {
		t.Error("old position should be repainted by the parent")
	}
	if runeAt(dev, 10, 5) != 'X' || runeAt(dev, 12, 6) != 'X' {
		t.Error("window should be drawn at its new position")
	}
	if countRune(dev, 'X') != 6 {
		t.Errorf("expected 6 X cells, got %d", countRune(dev, 'X'))
	}
}

func TestResize(t *testing.T) {
	ctx, dev := newTestContext(t, 40, 10)
	root := ctx.Root()

	w := mustChild(t, root, 0, 0, 4, 4)
	kid := mustChild(t, w, 1, 1, 10, 10)
	w.Fill('W', core.DefaultStyle())
	ctx.Refresh()

	if err := w.Resize(5, 2, 8, 3); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}

	if w.Width() != 8 || w.Height() != 3 {
		t.Errorf("size = %dx%d, want 8x3", w.Width(), w.Height())
	}
	if got := w.Canvas().Cell(0, 0); !got.IsEmpty() {
		t.Error("resize should give a fresh canvas")
	}
	if x, y := w.ScreenOrigin(); x != 5 || y != 2 {
		t.Errorf("origin = (%d, %d), want (5, 2)", x, y)
	}
	want := ClipRegion{Left: 6, Top: 3, Right: 12, Bottom: 4}
	if got := kid.Clip(); got != want {
		t.Errorf("child clip = %+v, want %+v", got, want)
	}
	if countRune(dev, 'W') != 0 {
		t.Error("old content should be gone from the screen")
	}
	checkClips(t, root)
}

func TestResizeAllocationFailureLeavesWindowUnchanged(t *testing.T) {
	ctx, _ := newTestContext(t, 40, 10)

	w := mustChild(t, ctx.Root(), 1, 1, 4, 4)
	w.AddString("keep")
	clip := w.Clip()

	err := w.Resize(0, 0, canvas.MaxCells, 2)
	if !errors.Is(err, ErrAllocation) {
		t.Fatalf("Resize() error = %v, want ErrAllocation", err)
	}
	if w.Width() != 4 || w.Height() != 4 || w.Clip() != clip {
		t.Error("failed resize should not change geometry")
	}
	if w.Canvas().Cell(0, 0).Rune != 'k' {
		t.Error("failed resize should keep content")
	}
}

func TestResizeReleased(t *testing.T) {
	ctx, _ := newTestContext(t, 40, 10)

	w := mustChild(t, ctx.Root(), 1, 1, 4, 4)
	w.Release()

	if err := w.Resize(0, 0, 2, 2); !errors.Is(err, ErrReleased) {
		t.Errorf("Resize() error = %v, want ErrReleased", err)
	}
}

func TestDrawingIsClippedToCanvas(t *testing.T) {
	ctx, dev := newTestContext(t, 20, 5)

	w := mustChild(t, ctx.Root(), 2, 1, 3, 2)
	w.SetCell(-1, 0, core.NewCell('!'))
	w.SetCell(3, 0, core.NewCell('!'))
	w.AddStringAt("abcdefgh", 0, 0)
	w.AddRuneAt('z', 7, 7)
	ctx.Refresh()

	if countRune(dev, '!') != 0 || countRune(dev, 'z') != 0 {
		t.Error("out of bounds writes should be dropped")
	}
	if dev.Row(1) != "  abc               " || dev.Row(2) != "  def               " {
		t.Errorf("rows = %q / %q", dev.Row(1), dev.Row(2))
	}
}

func TestDegenerateWindow(t *testing.T) {
	ctx, dev := newTestContext(t, 20, 5)

	w := mustChild(t, ctx.Root(), 2, 1, 0, -4)
	if w.Width() != 0 || w.Height() != 0 {
		t.Errorf("size = %dx%d, want 0x0", w.Width(), w.Height())
	}
	if !w.Clip().Empty() {
		t.Error("degenerate window should have an empty clip")
	}

	w.AddString("nothing")
	w.Refresh()
	if countRune(dev, 'n') != 0 {
		t.Error("degenerate window should draw nothing")
	}
}

func TestDrawingAfterReleaseIsIgnored(t *testing.T) {
	ctx, _ := newTestContext(t, 20, 5)

	w := mustChild(t, ctx.Root(), 0, 0, 3, 3)
	w.Release()

	w.AddString("x")
	w.Fill('x', core.DefaultStyle())
	w.SetCell(0, 0, core.NewCell('x'))
	w.Clear()
	w.Move(1, 1)
	w.Hide()
	w.Refresh()

	if w.Width() != 0 || w.Canvas() != nil {
		t.Error("released window should have no canvas")
	}
}
