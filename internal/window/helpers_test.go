package window

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dshills/cellwin/internal/renderer/backend"
)

func newTestContext(t *testing.T, w, h int) (*Context, *backend.NullBackend) {
	t.Helper()

	dev := backend.NewNullBackend(w, h)
	ctx, err := NewContext(dev)
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	t.Cleanup(ctx.Close)
	return ctx, dev
}

func mustChild(t *testing.T, parent *Window, x, y, w, h int) *Window {
	t.Helper()

	child, err := parent.CreateChild(x, y, w, h)
	if err != nil {
		t.Fatalf("CreateChild(%d, %d, %d, %d) error = %v", x, y, w, h, err)
	}
	return child
}

func runeAt(dev *backend.NullBackend, x, y int) rune {
	return dev.GetCell(x, y).Rune
}

// countRune counts the cells of the device showing r.
func countRune(dev *backend.NullBackend, r rune) int {
	w, h := dev.Size()
	n := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if dev.GetCell(x, y).Rune == r {
				n++
			}
		}
	}
	return n
}

// checkChain verifies the sibling chain of parent matches want, walking it
// in both directions.
func checkChain(t *testing.T, parent *Window, want ...*Window) {
	t.Helper()

	var forward []*Window
	for c := parent.Bottom(); c != nil; c = c.Next() {
		forward = append(forward, c)
		if len(forward) > len(want)+1 {
			break
		}
	}
	if len(forward) != len(want) {
		t.Fatalf("chain has %d windows walking up, want %d", len(forward), len(want))
	}
	for i := range want {
		if forward[i] != want[i] {
			t.Fatalf("chain[%d] = %s, want %s", i, forward[i].ID(), want[i].ID())
		}
	}

	i := len(want) - 1
	for c := parent.Top(); c != nil; c = c.Prev() {
		if i < 0 || c != want[i] {
			t.Fatalf("chain differs walking down at %d", i)
		}
		i--
	}
	if i != -1 {
		t.Fatalf("walking down stopped early at %d", i)
	}
}

// checkClips verifies every clip region in the subtree of w lies inside
// its parent's.
func checkClips(t *testing.T, w *Window) {
	t.Helper()

	for _, c := range w.Children() {
		if !w.Clip().Contains(c.Clip()) {
			t.Errorf("clip of %s %+v escapes parent %s %+v", c.ID(), c.Clip(), w.ID(), w.Clip())
		}
		checkClips(t, c)
	}
}

type recordLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordLogger) Debug(msg string, args ...any) { l.add("DEBUG", msg, args...) }
func (l *recordLogger) Warn(msg string, args ...any)  { l.add("WARN", msg, args...) }

func (l *recordLogger) add(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(msg, args...))
}

func (l *recordLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, line := range l.lines {
		if len(line) > len(level) && line[:len(level)] == level {
			n++
		}
	}
	return n
}
