package viz

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/springlattice/internal/config"
	"github.com/san-kum/springlattice/internal/dynamo"
	"github.com/san-kum/springlattice/internal/experiment"
	"github.com/san-kum/springlattice/internal/sink"
)

const (
	width           = 70
	height          = 24
	framesPerSecond = 30
	historyCapacity = 300
)

type TickMsg time.Time

// Model drives one simulator from the Bubble Tea frame tick and renders the
// body as a braille wireframe next to the compression history.
type Model struct {
	cfg   *config.Config
	name  string
	sim   *dynamo.Simulator
	drops *sink.DropTest

	canvas        *Canvas
	camera        *Camera
	running       bool
	showHelp      bool
	stepsPerFrame int
	history       []float64
	last          dynamo.Reading
	err           error
}

// NewModel builds the simulator described by cfg.
func NewModel(cfg *config.Config, name string) (Model, error) {
	m := Model{
		cfg:     cfg,
		name:    name,
		canvas:  NewCanvas(width, height),
		camera:  NewCamera(),
		running: true,
	}
	if err := m.build(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m *Model) build() error {
	e := experiment.New(m.cfg)
	if err := e.Setup(); err != nil {
		return err
	}
	m.sim = e.Simulator()
	m.drops = e.DropTest()
	m.stepsPerFrame = max(1, int(math.Round(m.cfg.Physics.StepRate/framesPerSecond)))
	m.history = make([]float64, 0, historyCapacity)
	m.last = dynamo.Reading{}
	m.err = nil
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/framesPerSecond, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.build(); err != nil {
				m.err = err
			}
		case "d":
			m.sim.Drop(m.cfg.DropTest.Impulse)
		case "n":
			if !m.running {
				m.advance(1)
			}
		case "left", "h":
			m.camera.Orbit(-0.1, 0)
		case "right", "l":
			m.camera.Orbit(0.1, 0)
		case "up", "k":
			m.camera.Orbit(0, 0.1)
		case "down", "j":
			m.camera.Orbit(0, -0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.advance(m.stepsPerFrame)
		}
		return m, tick()
	}
	return m, nil
}

// advance steps n times, ticking the drop test after each step.
func (m *Model) advance(n int) {
	for i := 0; i < n; i++ {
		r, err := m.sim.Step()
		if err != nil {
			m.err = err
			m.running = false
			return
		}
		m.last = r
		if m.drops != nil {
			if err := m.drops.Tick(context.Background(), r.Time); err != nil {
				m.err = err
			}
		}
		m.history = append(m.history, r.AverageCompression)
		if len(m.history) > historyCapacity {
			m.history = m.history[1:]
		}
	}
}

func (m *Model) draw() {
	m.canvas.Clear()
	edges := LatticeEdges(m.sim.Positions(), m.cfg.Lattice.Size, m.cfg.Lattice.Spacing)
	Render(m.canvas, edges, m.camera)
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	if m.running {
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history, asciigraph.Height(5), asciigraph.Width(32), asciigraph.Caption("Compression"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.last.Time))
	row("Step", fmt.Sprintf("%d", m.last.Step))
	row("Compression", fmt.Sprintf("%.5f", m.sim.CurrentAverageCompression()))
	s.WriteString(labelStyle.Render("") + Gauge(m.sim.CurrentAverageCompression(), m.cfg.DropTest.Threshold, 20) + "\n")
	row("Live masses", fmt.Sprintf("%d", m.last.LiveMasses))
	row("Springs", fmt.Sprintf("%d", m.last.Samples))
	if m.last.Degenerate > 0 {
		row("Degenerate", fmt.Sprintf("%d", m.last.Degenerate))
	}
	if m.drops != nil {
		row("Impacts", fmt.Sprintf("%d", m.drops.Drops()))
		row("Events", fmt.Sprintf("%d", m.drops.Events()))
	}
	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause D:Drop R:Reset Q:Quit\nhjkl:Orbit +/-:Zoom ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))

	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  N        - Single step when paused  ║
║  D        - Drop an impact on top    ║
║  R        - Rebuild the body         ║
║  H/L      - Orbit left/right         ║
║  K/J      - Orbit up/down            ║
║  +/-      - Zoom                     ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// RunLive opens the live view for cfg.
func RunLive(cfg *config.Config, name string) error {
	m, err := NewModel(cfg, name)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
