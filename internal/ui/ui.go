// Package ui provides the terminal preview of the ambient scene using
// Bubble Tea.
package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-ambient/internal/ambient"
	"github.com/litescript/ls-ambient/internal/state"
	"github.com/litescript/ls-ambient/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewScene ViewMode = iota
	ViewWindows

	numViews
)

// Preset is a named location the user can switch to.
type Preset struct {
	Name     string
	Location ambient.Location
}

// DefaultPresets returns a spread of latitudes, including polar ones.
func DefaultPresets() []Preset {
	return []Preset{
		{"Paris", ambient.Location{Latitude: 48.85341, Longitude: 2.3488}},
		{"Tromsø", ambient.Location{Latitude: 69.6492, Longitude: 18.9553}},
		{"Quito", ambient.Location{Latitude: -0.1807, Longitude: -78.4678}},
		{"Sydney", ambient.Location{Latitude: -33.8688, Longitude: 151.2093}},
		{"McMurdo", ambient.Location{Latitude: -77.8463, Longitude: 166.6682}},
	}
}

// Msg types for Bubble Tea
type (
	// TickMsg triggers a snapshot poll and redraw.
	TickMsg time.Time
)

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state   *state.Manager
	presets []Preset

	// UI state
	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	statusMsg string
	presetIdx int

	// Sub-models
	scene   SceneViewModel
	windows WindowsViewModel
	spinner spinner.Model

	snapshot state.Snapshot
}

// New creates a new root UI model. presets may be nil.
func New(stateMgr *state.Manager, presets []Preset) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	return Model{
		state:     stateMgr,
		presets:   presets,
		viewMode:  ViewScene,
		presetIdx: -1,
		scene:     NewSceneViewModel(),
		windows:   NewWindowsViewModel(),
		spinner:   s,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.state.TickInterval()), m.spinner.Tick)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "1":
			m.viewMode = ViewScene
		case "2", "w":
			m.viewMode = ViewWindows
		case "tab":
			m.viewMode = (m.viewMode + 1) % numViews

		case "l":
			m = m.nextPreset()
		case "+", "=":
			m = m.scaleFrameRate(2)
		case "-":
			m = m.scaleFrameRate(0.5)

		default:
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Header takes 3 lines, footer 2
		contentHeight := msg.Height - 5
		m.scene = m.scene.SetSize(msg.Width, contentHeight)
		m.windows = m.windows.SetSize(msg.Width, contentHeight)

	case TickMsg:
		cmds = append(cmds, tickCmd(m.state.TickInterval()))
		m.snapshot = m.state.Snapshot()
		m.scene = m.scene.UpdateData(m.snapshot)
		m.windows = m.windows.UpdateData(m.snapshot)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m Model) nextPreset() Model {
	if len(m.presets) == 0 {
		m.statusMsg = "No location presets"
		return m
	}
	m.presetIdx = (m.presetIdx + 1) % len(m.presets)
	p := m.presets[m.presetIdx]
	if err := m.state.RequestLocation(p.Location); err != nil {
		m.statusMsg = fmt.Sprintf("Location %s rejected: %v", p.Name, err)
		return m
	}
	m.statusMsg = fmt.Sprintf("Location → %s (%s)", p.Name, p.Location)
	return m
}

// Frame rate bounds for the +/- keys.
const (
	minFrameRate = 1
	maxFrameRate = 60
)

// scaleFrameRate multiplies the tick rate by factor within the frame rate
// bounds. The driver and the snapshot poll both follow the new interval.
func (m Model) scaleFrameRate(factor float64) Model {
	iv := m.state.TickInterval()
	if iv <= 0 {
		iv = 100 * time.Millisecond
	}
	fps := int(math.Round(float64(time.Second) / float64(iv) * factor))
	if fps < minFrameRate {
		fps = minFrameRate
	} else if fps > maxFrameRate {
		fps = maxFrameRate
	}
	m.state.SetTickInterval(time.Second / time.Duration(fps))
	m.statusMsg = fmt.Sprintf("Frame rate → %d fps", fps)
	return m
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewScene:
		m.scene, cmd = m.scene.Update(msg)
	case ViewWindows:
		m.windows, cmd = m.windows.Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewScene:
		content = m.scene.View()
	case ViewWindows:
		content = m.windows.View()
	}

	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	title := renderGradientText(" ls-ambient ", m.snapshot.State)
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	loc := "-"
	if m.snapshot.HasData {
		loc = m.snapshot.State.Location.String() + " · " + m.snapshot.State.Source
	}
	return "\n" + title + muted.Render(fmt.Sprintf(" v%s  %s", version.Version, loc)) + "\n" + m.renderTabs()
}

// renderGradientText colours text along the current sky gradient.
func renderGradientText(text string, st ambient.State) string {
	top, bottom := st.Top.Colorful(), st.Bottom.Colorful()
	if st.Top == (ambient.RGB{}) && st.Bottom == (ambient.RGB{}) {
		top, _ = colorful.Hex("#3b82f6")
		bottom, _ = colorful.Hex("#ec4899")
	}

	runes := []rune(text)
	var b strings.Builder
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		bg := top.BlendLab(bottom, t).Clamped()
		fg := "#ffffff"
		if l, _, _ := bg.Lab(); l > 0.6 {
			fg = "#101010"
		}
		style := lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color(fg)).
			Background(lipgloss.Color(bg.Hex()))
		b.WriteString(style.Render(string(r)))
	}
	return b.String()
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Scene", "[2] Windows"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	spin := m.spinner.View()

	var status string
	switch {
	case m.snapshot.LastError != nil:
		status = errorStyle.Render("ERROR: " + m.snapshot.LastError.Error())
	case m.snapshot.HasData:
		status = spin + dimStyle.Render(fmt.Sprintf(" frame %d (%s)",
			m.snapshot.Ticks, m.snapshot.TickDuration.Round(time.Microsecond)))
	default:
		status = spin + dimStyle.Render(" waiting for engine...")
	}

	var help string
	switch m.viewMode {
	case ViewWindows:
		help = dimStyle.Render("z: local/UTC | l: location | tab: switch view | q: quit")
	default:
		help = dimStyle.Render("t: stars | l: location | +/-: fps | tab: switch view | q: quit")
	}

	footer := "  " + status + "  " + dimStyle.Render("|") + "  " + help
	if m.statusMsg != "" {
		footer += "\n  " + dimStyle.Render(m.statusMsg)
	}
	return footer
}

func tickCmd(interval time.Duration) tea.Cmd {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
