package viz

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/mattn/go-isatty"

	"github.com/san-kum/blochsim/internal/sim"
)

// ErrNoDisplay is returned when stdout is not a terminal.
var ErrNoDisplay = errors.New("viz: live view needs a terminal")

const (
	defaultWidth  = 72
	defaultHeight = 26
	defaultFPS    = 60
	panelSamples  = 90
	orbitStep     = 0.15
	zoomFactor    = 1.2
)

type TickMsg time.Time

type Options struct {
	Title  string
	Width  int
	Height int
	FPS    int
	Theme  string
}

// cameraSprings eases the camera toward the orbit the user asked for.
type cameraSprings struct {
	spring harmonica.Spring
	target [4]float64
	vel    [4]float64
}

func newCameraSprings(fps int, cam *Camera) cameraSprings {
	return cameraSprings{
		spring: harmonica.NewSpring(harmonica.FPS(fps), 8.0, 0.9),
		target: [4]float64{cam.RotX, cam.RotY, cam.RotZ, cam.Zoom},
	}
}

func (c *cameraSprings) step(cam *Camera) {
	pos := [4]*float64{&cam.RotX, &cam.RotY, &cam.RotZ, &cam.Zoom}
	for i, p := range pos {
		*p, c.vel[i] = c.spring.Update(*p, c.vel[i], c.target[i])
	}
}

// Model renders a session. Frames are driven by wall-clock TickMsgs; the
// elapsed time between two ticks is handed to the session's fixed-step loop.
type Model struct {
	session *sim.Session
	canvas  *Canvas
	scene   *Wireframe
	camera  *Camera
	springs cameraSprings
	theme   Theme
	title   string
	fps     int
	running bool
	last    time.Time
	sx, sy  []float64
}

func NewModel(s *sim.Session, opts Options) Model {
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	fps := opts.FPS
	if fps <= 0 {
		fps = defaultFPS
	}
	title := opts.Title
	if title == "" {
		title = "free induction decay"
	}
	cam := NewCamera(SceneExtent)
	return Model{
		session: s,
		canvas:  NewCanvas(w, h),
		scene:   NewWireframe(),
		camera:  cam,
		springs: newCameraSprings(fps, cam),
		theme:   GetTheme(opts.Theme),
		title:   title,
		fps:     fps,
		running: true,
		sx:      make([]float64, 0, panelSamples),
		sy:      make([]float64, 0, panelSamples),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
			m.last = time.Time{}
		case "r":
			m.session.Restart()
			m.sx, m.sy = m.sx[:0], m.sy[:0]
		case "p":
			m.session.Pulse()
		case "t":
			m.theme = NextTheme(m.theme.Name)
		case "x":
			m.springs.target[0] += orbitStep
		case "X":
			m.springs.target[0] -= orbitStep
		case "y":
			m.springs.target[1] += orbitStep
		case "Y":
			m.springs.target[1] -= orbitStep
		case "z":
			m.springs.target[2] += orbitStep
		case "Z":
			m.springs.target[2] -= orbitStep
		case "+", "=":
			m.springs.target[3] = clampZoom(m.springs.target[3] * zoomFactor)
		case "-", "_":
			m.springs.target[3] = clampZoom(m.springs.target[3] / zoomFactor)
		}
	case tea.WindowSizeMsg:
		w, h := msg.Width-40, msg.Height-4
		if w > 10 && h > 5 {
			m.canvas = NewCanvas(w, h)
		}
	case TickMsg:
		m.advance(time.Time(msg))
		m.springs.step(m.camera)
		return m, m.tick()
	}
	return m, nil
}

// advance feeds the wall-clock delta since the previous tick to the session.
func (m *Model) advance(now time.Time) {
	if !m.running {
		return
	}
	if !m.last.IsZero() {
		if n := m.session.Frame(now.Sub(m.last).Seconds()); n > 0 {
			sig := m.session.Snapshot().Signal
			m.sx = appendWindow(m.sx, sig.Sx)
			m.sy = appendWindow(m.sy, sig.Sy)
		}
	}
	m.last = now
}

func appendWindow(xs []float64, v float64) []float64 {
	if len(xs) == panelSamples {
		copy(xs, xs[1:])
		xs = xs[:panelSamples-1]
	}
	return append(xs, v)
}

func (m *Model) draw() {
	snap := m.session.Snapshot()
	BuildScene(m.scene, snap.State, m.session.Params().M0, m.session.Recorder())
	m.canvas.Clear()
	Render3D(m.canvas, m.scene, m.camera)
	bx, by := m.session.Recorder().Buffers()
	bx.MarkSynced()
	by.MarkSynced()
}

// Canvas renders the current frame and returns the canvas it was drawn on.
func (m Model) Canvas() *Canvas {
	m.draw()
	return m.canvas
}

func (m Model) View() string {
	m.draw()
	th := m.theme
	title := lipgloss.NewStyle().Foreground(th.Title).Bold(true)
	label := lipgloss.NewStyle().Foreground(th.Muted).Width(11)
	value := lipgloss.NewStyle().Foreground(th.Text)

	snap := m.session.Snapshot()
	p := m.session.Params()

	var s strings.Builder
	s.WriteString(title.Render(strings.ToUpper(m.title)) + "\n")
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(value.Render(status) + "\n\n")

	row := func(k, v string) { s.WriteString(label.Render(k) + value.Render(v) + "\n") }
	row("t", fmt.Sprintf("%.3fs", snap.Elapsed))
	row("Mx", fmt.Sprintf("%+.3f", snap.State.X))
	row("My", fmt.Sprintf("%+.3f", snap.State.Y))
	row("Mz", fmt.Sprintf("%+.3f", snap.State.Z))
	row("phase", fmt.Sprintf("%+.1f°", snap.State.Phase()*180/math.Pi))
	row("|Mxy|", fmt.Sprintf("%.3f", snap.State.Transverse()))
	row("T1/T2", fmt.Sprintf("%.2fs / %.2fs", p.T1, p.T2))
	row("f0", fmt.Sprintf("%.1f Hz %s", p.Frequency(), p.Handedness))
	row("pulse", fmt.Sprintf("%.0f ms", p.PulseDuration*1000))
	row("trace", fmt.Sprintf("%d pts", snap.DrawRange))
	if snap.Dropped > 0 {
		s.WriteString(lipgloss.NewStyle().Foreground(th.Warning).Render(fmt.Sprintf("dropped %.2fs", snap.Dropped)) + "\n")
	}

	if len(m.sx) > 1 {
		chart := asciigraph.PlotMany([][]float64{m.sx, m.sy},
			asciigraph.Height(6), asciigraph.Width(28),
			asciigraph.SeriesColors(asciigraph.Red, asciigraph.Cyan),
			asciigraph.Caption("Sx / Sy"))
		s.WriteString("\n" + chart + "\n")
	}
	s.WriteString(lipgloss.NewStyle().Foreground(th.Muted).MarginTop(1).Render(
		"space:pause r:restart p:pulse\nxyz/XYZ:orbit +/-:zoom t:theme q:quit"))

	canvasView := lipgloss.NewStyle().Padding(1, 1).Render(m.canvas.Render(th))
	statsView := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(th.Muted).
		Padding(1, 2).
		Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}

// Run takes over the terminal until the user quits.
func Run(s *sim.Session, opts Options) error {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return ErrNoDisplay
	}
	_, err := tea.NewProgram(NewModel(s, opts), tea.WithAltScreen()).Run()
	return err
}
