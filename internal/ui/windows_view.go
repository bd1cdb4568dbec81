package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-ambient/internal/ambient"
	"github.com/litescript/ls-ambient/internal/state"
)

// Styles for the tables
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("135"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	activeRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("60"))
)

// WindowsViewModel lists the phase windows in use and the event log.
type WindowsViewModel struct {
	width    int
	height   int
	snapshot state.Snapshot
	local    bool // show times in the local zone instead of UTC
}

// NewWindowsViewModel creates a new windows view model.
func NewWindowsViewModel() WindowsViewModel {
	return WindowsViewModel{}
}

// SetSize updates the viewport size.
func (m WindowsViewModel) SetSize(width, height int) WindowsViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates with a new state snapshot.
func (m WindowsViewModel) UpdateData(snapshot state.Snapshot) WindowsViewModel {
	m.snapshot = snapshot
	return m
}

// Update handles messages.
func (m WindowsViewModel) Update(msg tea.Msg) (WindowsViewModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "z" {
		m.local = !m.local
	}
	return m, nil
}

// View renders the windows table and recent events.
func (m WindowsViewModel) View() string {
	var b strings.Builder

	zone := time.UTC
	if m.local {
		zone = time.Local
	}

	b.WriteString(titleStyle.Render("Phase windows"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  (%s)", zone)))
	b.WriteString("\n\n")
	b.WriteString(renderWindowsTable(m.snapshot.Windows, m.snapshot.State.Time, zone))
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render("Events"))
	b.WriteString("\n")
	maxEvents := m.height - len(m.snapshot.Windows) - 8
	if maxEvents < 3 {
		maxEvents = 3
	}
	b.WriteString(renderEvents(m.snapshot.Events, maxEvents, zone))

	return b.String()
}

func renderWindowsTable(windows []ambient.PhaseWindow, now time.Time, zone *time.Location) string {
	if len(windows) == 0 {
		return dimStyle.Render("  no windows yet")
	}

	var b strings.Builder
	header := fmt.Sprintf("%-8s %-16s %-16s %-7s %-4s %s", "Phase", "Start", "End", "Length", "Sky", "Bright")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for i, w := range windows {
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(w.Top.Hex())).Render("  ") +
			lipgloss.NewStyle().Background(lipgloss.Color(w.Bottom.Hex())).Render("  ")
		line := fmt.Sprintf("%-8s %-16s %-16s %-7s ",
			w.Phase,
			w.Start.In(zone).Format("01-02 15:04:05"),
			w.End.In(zone).Format("01-02 15:04:05"),
			windowLength(w),
		)
		style := rowStyle
		if w.Contains(now) {
			style = activeRowStyle
		}
		b.WriteString(" " + style.Render(line) + swatch + style.Render(fmt.Sprintf(" %.2f", w.Brightness)))
		if i < len(windows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func windowLength(w ambient.PhaseWindow) string {
	d := w.Duration()
	if d <= 0 {
		return "-"
	}
	d = d.Round(time.Minute)
	return fmt.Sprintf("%dh%02d", int(d.Hours()), int(d.Minutes())%60)
}

func renderEvents(events []state.Event, n int, zone *time.Location) string {
	if len(events) == 0 {
		return dimStyle.Render("  no events")
	}
	if len(events) > n {
		events = events[len(events)-n:]
	}

	var lines []string
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		detail := e.Message
		switch e.Type {
		case state.EventPhaseChange:
			if e.OldPhase == "" {
				detail = e.NewPhase
			} else {
				detail = e.OldPhase + " → " + e.NewPhase
			}
		case state.EventLocationChange:
			detail = e.Location + " " + e.Message
		case state.EventDegenerateDay:
			detail = e.Location
		}
		lines = append(lines, fmt.Sprintf("  %s %-16s %s",
			dimStyle.Render(e.Timestamp.In(zone).Format("01-02 15:04")),
			string(e.Type),
			detail,
		))
	}
	return strings.Join(lines, "\n")
}
