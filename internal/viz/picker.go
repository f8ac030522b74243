package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/springlattice/internal/config"
)

var presetInfo = map[string]string{
	"soft":  "low stiffness, stretched",
	"stiff": "high stiffness, sheared",
	"drop":  "periodic impacts",
	"tiny":  "3x3x3 corner anchored",
}

const (
	screenMenu = iota
	screenTune
	screenLive
)

type tunable struct {
	name string
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
}

var tunables = []tunable{
	{"size", func(c *config.Config) float64 { return float64(c.Lattice.Size) },
		func(c *config.Config, v float64) { c.Lattice.Size = max(1, int(v)) }},
	{"spring_k", func(c *config.Config) float64 { return c.Physics.SpringConstant },
		func(c *config.Config, v float64) { c.Physics.SpringConstant = v }},
	{"damping", func(c *config.Config) float64 { return c.Physics.Damping },
		func(c *config.Config, v float64) { c.Physics.Damping = max(0, v) }},
	{"stretch_x", func(c *config.Config) float64 { return c.Perturb.StretchX },
		func(c *config.Config, v float64) { c.Perturb.StretchX = v }},
	{"impulse", func(c *config.Config) float64 { return c.DropTest.Impulse },
		func(c *config.Config, v float64) { c.DropTest.Impulse = v }},
}

// picker selects a preset, lets the user tune it, then hands over to Model.
type picker struct {
	screen  int
	cursor  int
	presets []string
	cfg     *config.Config
	param   int
	live    Model
	err     error
}

func newPicker() picker {
	return picker{screen: screenMenu, presets: config.ListPresets()}
}

func (p picker) Init() tea.Cmd { return nil }

func (p picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.screen == screenLive {
		next, cmd := p.live.Update(msg)
		p.live = next.(Model)
		return p, cmd
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch p.screen {
	case screenMenu:
		return p.menuKey(key)
	case screenTune:
		return p.tuneKey(key)
	}
	return p, nil
}

func (p picker) menuKey(msg tea.KeyMsg) (picker, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.presets)-1 {
			p.cursor++
		}
	case "enter", " ":
		p.cfg = config.GetPreset(p.presets[p.cursor])
		p.screen, p.param, p.err = screenTune, 0, nil
	}
	return p, nil
}

func (p picker) tuneKey(msg tea.KeyMsg) (picker, tea.Cmd) {
	t := tunables[p.param]
	switch msg.String() {
	case "q", "esc":
		p.screen = screenMenu
	case "up", "k":
		if p.param > 0 {
			p.param--
		}
	case "down", "j":
		if p.param < len(tunables)-1 {
			p.param++
		}
	case "left", "h":
		t.set(p.cfg, t.get(p.cfg)-step(t.name))
	case "right", "l":
		t.set(p.cfg, t.get(p.cfg)+step(t.name))
	case "s", "enter":
		live, err := NewModel(p.cfg, p.presets[p.cursor])
		if err != nil {
			p.err = err
			return p, nil
		}
		p.live, p.screen = live, screenLive
		return p, p.live.Init()
	}
	return p, nil
}

func step(name string) float64 {
	switch name {
	case "size", "spring_k":
		return 1
	case "stretch_x":
		return 0.01
	default:
		return 0.1
	}
}

func (p picker) View() string {
	switch p.screen {
	case screenMenu:
		return p.viewMenu()
	case screenTune:
		return p.viewTune()
	default:
		return p.live.View()
	}
}

func (p picker) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("SPRINGLATTICE") + "\n    " + menuSub.Render("elastic body simulator") + "\n    " + menuSub.Render("──────────────────────") + "\n\n")
	for i, name := range p.presets {
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuSelected.Render(fmt.Sprintf("%-8s", name)), menuAccent.Render(presetInfo[name])))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", menuIdle.Render(fmt.Sprintf("%-8s", name)), menuIdle.Render(presetInfo[name])))
		}
	}
	b.WriteString("\n    " + keyHints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (p picker) viewTune() string {
	var b strings.Builder
	name := p.presets[p.cursor]
	b.WriteString("\n\n    " + menuTitle.Render(strings.ToUpper(name)) + "\n    " + menuSub.Render(presetInfo[name]) + "\n    " + menuSub.Render("──────────────────────") + "\n\n")
	for i, t := range tunables {
		val := fmt.Sprintf("%8.3f", t.get(p.cfg))
		if i == p.param {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", menuCursor.Render("▸"), menuSelected.Render(fmt.Sprintf("%-10s", t.name)), menuAccent.Render(val)))
		} else {
			b.WriteString(fmt.Sprintf("      %s %s\n", menuIdle.Render(fmt.Sprintf("%-10s", t.name)), menuIdle.Render(val)))
		}
	}
	if p.err != nil {
		b.WriteString("\n    " + errorStyle.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive opens the preset picker.
func RunInteractive() error {
	_, err := tea.NewProgram(newPicker(), tea.WithAltScreen()).Run()
	return err
}
