package viz

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/sailsim/internal/config"
	"github.com/san-kum/sailsim/internal/experiment"
	"github.com/san-kum/sailsim/internal/scenario"
)

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuIdle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuIdleDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

const defaultPreset = "default"

const (
	stateMenu = iota
	statePreset
	stateSim
)

// App picks a scenario and preset, then hands over to the live view.
type App struct {
	base   *config.Config
	reg    *scenario.Registry
	logger *slog.Logger

	state     int
	cursor    int
	scenarios []string
	selected  string
	presets   []string
	err       error

	exp  *experiment.Experiment
	live Model
}

func NewApp(base *config.Config, reg *scenario.Registry, logger *slog.Logger) *App {
	return &App{
		base:      base,
		reg:       reg,
		logger:    logger,
		state:     stateMenu,
		scenarios: reg.List(),
	}
}

func (a *App) Init() tea.Cmd { return nil }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)
	default:
		if a.state == stateSim {
			next, cmd := a.live.Update(msg)
			a.live = next.(Model)
			return a, cmd
		}
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.state {
	case stateMenu:
		return a.menuKey(msg)
	case statePreset:
		return a.presetKey(msg)
	case stateSim:
		if msg.String() == "esc" {
			a.stop()
			a.state, a.cursor = stateMenu, 0
			return a, nil
		}
		next, cmd := a.live.Update(msg)
		a.live = next.(Model)
		return a, cmd
	}
	return a, nil
}

func (a *App) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.scenarios)-1 {
			a.cursor++
		}
	case "enter", " ":
		if len(a.scenarios) == 0 {
			return a, nil
		}
		a.selected = a.scenarios[a.cursor]
		a.presets = append([]string{defaultPreset}, config.ListPresets(a.selected)...)
		a.state, a.cursor, a.err = statePreset, 0, nil
	}
	return a, nil
}

func (a *App) presetKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "q", "esc":
		a.state, a.cursor = stateMenu, 0
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.presets)-1 {
			a.cursor++
		}
	case "enter", " ", "s":
		return a, a.start(a.presets[a.cursor])
	}
	return a, nil
}

// Config returns the configuration the menu would run for a scenario and
// preset, starting from the base configuration.
func (a *App) Config(scenarioName, preset string) (*config.Config, error) {
	cfg := a.base.Clone()
	cfg.Scenario = scenarioName
	if preset != defaultPreset {
		apply, ok := config.Presets[scenarioName][preset]
		if !ok {
			return nil, fmt.Errorf("preset %q not found for %s", preset, scenarioName)
		}
		apply(cfg)
	}
	return cfg, nil
}

func (a *App) start(preset string) tea.Cmd {
	cfg, err := a.Config(a.selected, preset)
	if err != nil {
		a.err = err
		return nil
	}
	exp, err := experiment.New(cfg, a.reg, a.logger)
	if err != nil {
		a.err = err
		return nil
	}
	a.stop()
	a.exp = exp
	title := a.selected
	if preset != defaultPreset {
		title += " · " + preset
	}
	a.live = NewModel(exp, title)
	a.state = stateSim
	return a.live.Init()
}

func (a *App) stop() {
	if a.exp != nil {
		a.exp.Close()
		a.exp = nil
	}
}

func (a *App) View() string {
	switch a.state {
	case stateMenu:
		return a.viewList("SAILSIM", "particle sailing simulator", a.scenarios, a.reg.Describe,
			"j/k", " navigate  ", "enter", " select  ", "q", " quit")
	case statePreset:
		return a.viewList(strings.ToUpper(a.selected), a.reg.Describe(a.selected), a.presets, nil,
			"j/k", " select  ", "enter", " start  ", "esc", " back")
	case stateSim:
		return a.live.View()
	}
	return ""
}

func (a *App) viewList(title, subtitle string, items []string, describe func(string) string, hints ...string) string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render(title) + "\n    " + menuSub.Render(subtitle) + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range items {
		desc := ""
		if describe != nil {
			desc = describe(name)
		}
		if i == a.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuSelected.Render(fmt.Sprintf("%-16s", name)), menuDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuIdle.Render(fmt.Sprintf("  %-16s", name)), menuIdleDesc.Render(desc)))
		}
	}
	if a.err != nil {
		b.WriteString("\n    " + StatusError.Render(a.err.Error()) + "\n")
	}
	b.WriteString("\n    ")
	for i := 0; i+1 < len(hints); i += 2 {
		b.WriteString(menuKey.Render(hints[i]) + menuIdle.Render(hints[i+1]))
	}
	b.WriteString("\n")
	return b.String()
}

// RunInteractive runs the menu until the user quits.
func RunInteractive(base *config.Config, reg *scenario.Registry, logger *slog.Logger) error {
	app := NewApp(base, reg, logger)
	defer app.stop()
	_, err := tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}

// RunLive opens the live view directly on a prepared experiment.
func RunLive(exp *experiment.Experiment, title string) error {
	_, err := tea.NewProgram(NewModel(exp, title), tea.WithAltScreen()).Run()
	return err
}
