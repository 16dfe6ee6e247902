package backend

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/cellwin/internal/renderer/core"
)

func newSimTerminal(t *testing.T, w, h int) (*Terminal, tcell.SimulationScreen) {
	t.Helper()

	sim := tcell.NewSimulationScreen("")
	term := NewTerminalWithScreen(sim)
	if err := term.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	sim.SetSize(w, h)
	t.Cleanup(term.Shutdown)
	return term, sim
}

func TestTerminalSetCellShow(t *testing.T) {
	term, sim := newSimTerminal(t, 20, 5)

	style := core.DefaultStyle().WithForeground(core.ColorFromIndex(3)).WithAttributes(core.AttrBold)
	term.SetCell(4, 2, core.NewStyledCell('Z', style))
	term.Show()

	cells, width, _ := sim.GetContents()
	got := cells[2*width+4]
	if len(got.Runes) == 0 || got.Runes[0] != 'Z' {
		t.Fatalf("simulated cell = %+v, want 'Z'", got)
	}

	back := term.GetCell(4, 2)
	if back.Rune != 'Z' {
		t.Errorf("GetCell rune = %q", back.Rune)
	}
	if !back.Style.Attributes.Has(core.AttrBold) {
		t.Error("bold should survive the round trip")
	}
	if !back.Style.Foreground.Equals(core.ColorFromIndex(3)) {
		t.Errorf("foreground = %v", back.Style.Foreground)
	}
}

func TestTerminalSize(t *testing.T) {
	term, _ := newSimTerminal(t, 33, 11)

	w, h := term.Size()
	if w != 33 || h != 11 {
		t.Errorf("Size() = (%d, %d), want (33, 11)", w, h)
	}
}

func TestTerminalPostEvent(t *testing.T) {
	term, _ := newSimTerminal(t, 10, 10)

	term.PostEvent(Event{Type: EventKey, Key: KeyRune, Rune: 'q'})

	ev := term.PollEvent()
	if ev.Type != EventKey || ev.Key != KeyRune || ev.Rune != 'q' {
		t.Errorf("PollEvent() = %+v, want rune 'q'", ev)
	}
}

func TestConvertKey(t *testing.T) {
	tests := []struct {
		in   tcell.Key
		want Key
	}{
		{tcell.KeyEscape, KeyEscape},
		{tcell.KeyBackspace2, KeyBackspace},
		{tcell.KeyCtrlC, KeyCtrlC},
		{tcell.KeyF5, KeyNone},
	}
	for _, tt := range tests {
		if got := convertKey(tt.in); got != tt.want {
			t.Errorf("convertKey(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConvertColorRoundTrip(t *testing.T) {
	colors := []core.Color{
		core.ColorDefault,
		core.ColorFromIndex(200),
		core.ColorFromRGB(10, 20, 30),
	}
	for _, c := range colors {
		if got := convertTcellColor(convertColor(c)); !got.Equals(c) {
			t.Errorf("round trip %v -> %v", c, got)
		}
	}
}
