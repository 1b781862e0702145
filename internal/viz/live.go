package viz

import (
	"fmt"
	"image"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/sailsim/internal/dynamo"
	"github.com/san-kum/sailsim/internal/experiment"
	"github.com/san-kum/sailsim/internal/metrics"
	"github.com/san-kum/sailsim/internal/sim"
)

const (
	width           = 80
	height          = 24
	statsWidth      = 46
	historyCapacity = 600
	sheetStep       = 0.05
	minSheet        = 0.5
	maxSheet        = 1.5
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(statsWidth)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model drives an experiment frame by frame and renders the particles.
type Model struct {
	exp      *experiment.Experiment
	helm     *experiment.Helm
	pilot    *experiment.Autopilot
	piloting bool
	params   dynamo.TickParams
	substeps int
	title    string

	pool     *sim.ViewPool
	canvas   *Canvas
	viewport Viewport

	running   bool
	showBonds bool
	showHelp  bool
	frame     int
	last      sim.TickStats
	broken    int
	err       error

	energyHistory  []float64
	densityHistory []float64
	densityBuf     []float64

	recording bool
	frames    []*image.Paletted
	gifPath   string
	notice    string
}

func NewModel(exp *experiment.Experiment, title string) Model {
	cfg := exp.Config()
	canvas := NewCanvas(width, height)
	m := Model{
		exp:            exp,
		params:         cfg.TickParams(),
		substeps:       cfg.Substeps,
		title:          title,
		pool:           sim.NewViewPool(),
		canvas:         canvas,
		viewport:       NewViewport(cfg.Bounds(), canvas),
		running:        true,
		showBonds:      true,
		energyHistory:  make([]float64, 0, historyCapacity),
		densityHistory: make([]float64, 0, historyCapacity),
		gifPath:        "sailsim.gif",
	}
	m.setHelm()
	m.piloting = cfg.Control.Autopilot.Enabled
	m.draw()
	return m
}

func (m *Model) setHelm() {
	cfg := m.exp.Config()
	m.helm = experiment.NewHelm(cfg)
	m.pilot = experiment.NewAutopilot(m.exp, m.helm, cfg.Control.Autopilot)
}

// togglePilot engages the autopilot on the current heading, or on the
// configured course while the hull is still.
func (m *Model) togglePilot() {
	m.piloting = !m.piloting
	if !m.piloting {
		m.notice = "autopilot off"
		return
	}
	m.pilot.Reset()
	if heading, ok := experiment.HullHeading(m.exp.Solver().Store(), m.pilot.MinSpeed); ok {
		m.pilot.Course = heading
	}
	m.notice = fmt.Sprintf("autopilot on %+.2f rad", m.pilot.Course)
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case ".":
			if !m.running {
				m.step()
				m.draw()
			}
		case "r":
			m.reset()
		case "left", "a":
			m.helm.Nudge(dynamo.ChannelRudder, -1)
			m.piloting = false
		case "right", "d":
			m.helm.Nudge(dynamo.ChannelRudder, 1)
			m.piloting = false
		case "p":
			m.togglePilot()
		case "up", "w":
			m.helm.Nudge(dynamo.ChannelSail, 1)
		case "down", "s":
			m.helm.Nudge(dynamo.ChannelSail, -1)
		case "c":
			m.helm.Center()
		case "[":
			m.params.SheetExtension = dynamo.Clamp(m.params.SheetExtension-sheetStep, minSheet, maxSheet)
		case "]":
			m.params.SheetExtension = dynamo.Clamp(m.params.SheetExtension+sheetStep, minSheet, maxSheet)
		case "b":
			m.showBonds = !m.showBonds
			m.draw()
		case "t":
			NextTheme()
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		if m.running {
			m.step()
			m.draw()
			if m.recording {
				m.captureFrame()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	cw := w - statsWidth - 6
	ch := h - 4
	if cw < 20 || ch < 8 {
		return
	}
	m.canvas = NewCanvas(cw, ch)
	m.viewport = NewViewport(m.exp.Config().Bounds(), m.canvas)
	m.draw()
}

// step advances one frame of Substeps ticks with the helm's angles, steered
// by the autopilot when it is engaged. A tick error stops the run.
func (m *Model) step() {
	if m.piloting {
		m.pilot.Control(m.frame, &m.params)
	} else {
		m.helm.Control(m.frame, &m.params)
	}
	solver := m.exp.Solver()
	for i := 0; i < m.substeps; i++ {
		stats, err := solver.Tick(m.params)
		if err != nil {
			m.err = err
			m.running = false
			return
		}
		m.broken += stats.Broken
		m.last = stats
	}
	m.frame++

	st := solver.Store()
	if !st.IsFinite() {
		m.err = fmt.Errorf("non-finite state at tick %d", solver.Ticks())
		m.running = false
	}

	m.energyHistory = push(m.energyHistory, metrics.KineticEnergyOf(st))
	var d metrics.DensitySummary
	d, m.densityBuf = metrics.SummarizeDensity(st, dynamo.Water, m.params.TargetDensityWater, m.densityBuf)
	if d.Count > 0 {
		m.densityHistory = push(m.densityHistory, d.Mean)
	}
}

func push(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

// reset restores the initial scene, angles and sheet.
func (m *Model) reset() {
	if err := m.exp.Reset(); err != nil {
		m.err = err
		return
	}
	cfg := m.exp.Config()
	m.setHelm()
	m.piloting = cfg.Control.Autopilot.Enabled
	m.params = cfg.TickParams()
	m.frame = 0
	m.broken = 0
	m.last = sim.TickStats{}
	m.err = nil
	m.energyHistory = m.energyHistory[:0]
	m.densityHistory = m.densityHistory[:0]
	m.draw()
}

// draw renders the current store into the canvas.
func (m *Model) draw() {
	st := m.exp.Solver().Store()
	views := m.pool.Snapshot(st)
	defer m.pool.Put(views)

	m.canvas.Clear()
	m.canvas.Frame(m.viewport)
	m.canvas.Plot(views, m.viewport)
	if !m.showBonds {
		return
	}
	for i := range st.Bonds {
		b := &st.Bonds[i]
		if !b.IsActive() || (b.Type != dynamo.BondSheet && b.Type != dynamo.BondFuse) {
			continue
		}
		x0, y0 := m.viewport.Project(views[b.A].Pos)
		x1, y1 := m.viewport.Project(views[b.B].Pos)
		m.canvas.DrawLine(x0, y0, x1, y1, InkBond)
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	canvasView := canvasStyle.Render(m.canvas.Render(CurrentTheme))

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	solver := m.exp.Solver()
	st := solver.Store()
	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Tick", fmt.Sprintf("%d", solver.Ticks()))
	row("Time", fmt.Sprintf("%.2fs", float64(solver.Ticks())*float64(m.params.Dt)))
	row("Particles", fmt.Sprintf("%d", st.Len()))
	row("Bonds", fmt.Sprintf("%d/%d", st.ActiveBonds(), len(st.Bonds)))
	row("Broken", fmt.Sprintf("%d", m.broken))
	if n := len(m.energyHistory); n > 0 {
		row("Energy", fmt.Sprintf("%.1f", m.energyHistory[n-1]))
	}
	if n := len(m.densityHistory); n > 0 {
		row("Water ρ/ρ0", fmt.Sprintf("%.3f", m.densityHistory[n-1]))
	}
	row("Tick ms", fmt.Sprintf("%.2f", float64(m.last.Stages.Total())/float64(time.Millisecond)))
	backend := solver.Backend()
	row("Backend", fmt.Sprintf("%s ×%d", backend.Name(), backend.Workers()))

	s.WriteString("\n")
	s.WriteString(MetricLabel.Render("Rudder") + AngleBar(m.helm.Rudder, m.helm.Limit, 21) + fmt.Sprintf(" %+.2f", m.helm.Rudder) + "\n")
	s.WriteString(MetricLabel.Render("Sail") + AngleBar(m.helm.Sail, m.helm.Limit, 21) + fmt.Sprintf(" %+.2f", m.helm.Sail) + "\n")
	row("Sheet", fmt.Sprintf("%.2f", m.params.SheetExtension))
	if m.piloting {
		row("Autopilot", fmt.Sprintf("%+.2f rad", m.pilot.Course))
	}

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if len(m.densityHistory) > 0 {
		s.WriteString(MetricLabel.Render("ρ trend") + SparklineChart(m.densityHistory, 30) + "\n")
	}

	s.WriteString(helpStyle.Render(Separator(34) + "\nSP:Pause .:Step R:Reset Q:Quit\nA/D:Rudder W/S:Sail C:Center\nP:Pilot [ ]:Sheet B:Bonds\nT:Theme G:GIF ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)

	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusError.Render("HALTED: " + m.err.Error())
	case m.recording:
		return StatusRecording.Render(fmt.Sprintf("● REC %d frames", len(m.frames)))
	case !m.running:
		return StatusPaused.Render("PAUSED")
	case m.notice != "":
		return StatusRunning.Render("RUNNING") + " " + Subtle.Render(m.notice)
	}
	return StatusRunning.Render("RUNNING")
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  .        - Single frame (paused)    ║
║  R        - Reset scene              ║
║  Q        - Quit                     ║
║  A/D ←/→  - Rudder port/starboard    ║
║  W/S ↑/↓  - Sail angle               ║
║  C        - Centre rudder and sail   ║
║  P        - Toggle course autopilot  ║
║  [ ]      - Ease/trim the sheet      ║
║  B        - Toggle sheet/fuse bonds  ║
║  T        - Cycle themes             ║
║  G        - Toggle GIF recording     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// Helm exposes the commanded angles, mainly for tests.
func (m Model) Helm() *experiment.Helm { return m.helm }

func (m Model) Params() dynamo.TickParams { return m.params }

func (m Model) Piloting() bool { return m.piloting }
func (m Model) Running() bool             { return m.running }
func (m Model) Err() error                { return m.err }
