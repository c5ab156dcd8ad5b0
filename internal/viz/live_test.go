package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/blochsim/internal/bloch"
	"github.com/san-kum/blochsim/internal/sim"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	s, err := sim.NewSession(bloch.DefaultParams(), sim.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(s, Options{Width: 40, Height: 16})
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelTicksDriveSession(t *testing.T) {
	m := newTestModel(t)
	start := time.Unix(100, 0)

	m = send(m, TickMsg(start))
	if m.session.Snapshot().Ticks != 0 {
		t.Fatalf("first tick should only arm the clock")
	}

	m = send(m, TickMsg(start.Add(102*time.Millisecond)))
	if got := m.session.Snapshot().Ticks; got != 24 {
		t.Errorf("ticks = %d, want 24", got)
	}
	if len(m.sx) != 1 {
		t.Errorf("panel samples = %d, want 1", len(m.sx))
	}
}

func TestModelPause(t *testing.T) {
	m := newTestModel(t)
	start := time.Unix(100, 0)

	m = send(m, TickMsg(start))
	m = send(m, key(" "))
	m = send(m, TickMsg(start.Add(time.Second)))
	if m.session.Snapshot().Ticks != 0 {
		t.Errorf("paused model advanced the session")
	}

	m = send(m, key(" "))
	m = send(m, TickMsg(start.Add(2*time.Second)))
	if m.session.Snapshot().Ticks != 0 {
		t.Errorf("resume should not catch up paused time")
	}
}

func TestModelRestartKey(t *testing.T) {
	m := newTestModel(t)
	m.session.Frame(0.5)
	m = send(m, key("r"))

	snap := m.session.Snapshot()
	if snap.Elapsed != 0 || snap.DrawRange != 1 {
		t.Errorf("restart left elapsed %v draw range %d", snap.Elapsed, snap.DrawRange)
	}
}

func TestModelPulseKeepsTraces(t *testing.T) {
	m := newTestModel(t)
	m.session.Frame(0.25)
	before := m.session.Snapshot().DrawRange

	m = send(m, key("p"))
	snap := m.session.Snapshot()
	if snap.Elapsed != 0 || snap.DrawRange != before {
		t.Errorf("pulse: elapsed %v draw range %d (was %d)", snap.Elapsed, snap.DrawRange, before)
	}
}

func TestModelCameraKeys(t *testing.T) {
	m := newTestModel(t)
	rx, zoom := m.springs.target[0], m.springs.target[3]

	m = send(m, key("x"))
	m = send(m, key("+"))
	if m.springs.target[0] <= rx || m.springs.target[3] <= zoom {
		t.Errorf("targets not moved: %v", m.springs.target)
	}

	theme := m.theme.Name
	m = send(m, key("t"))
	if m.theme.Name == theme {
		t.Errorf("theme did not cycle")
	}
}

func TestModelView(t *testing.T) {
	m := newTestModel(t)
	m.session.Frame(0.2)
	if m.View() == "" {
		t.Fatal("empty view")
	}
	bx, _ := m.session.Recorder().Buffers()
	if bx.Dirty() {
		t.Errorf("view should mark traces synced")
	}
}

func TestModelHelpMatchesKeys(t *testing.T) {
	m := newTestModel(t)
	view := m.View()
	for _, hint := range []string{"r:restart", "p:pulse", "t:theme", "q:quit"} {
		if !strings.Contains(view, hint) {
			t.Errorf("help missing %q", hint)
		}
	}
	if !strings.Contains(view, "phase") {
		t.Errorf("panel missing phase row")
	}

	m.session.Frame(0.5)
	m = send(m, key("r"))
	if m.session.Snapshot().Elapsed != 0 {
		t.Errorf("lowercase r did not restart")
	}
}
