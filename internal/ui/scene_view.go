package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-ambient/internal/ambient"
	"github.com/litescript/ls-ambient/internal/astro"
	"github.com/litescript/ls-ambient/internal/state"
)

const (
	glyphSun         = '●'
	glyphStarBright  = '✦'
	glyphStarMedium  = '+'
	glyphStarDim     = '·'
	glyphSea         = '~'
	colorSun         = "#ffd75f"
	colorSunBelow    = "#8a6d3b"
	colorMoon        = "#e8e8f0"
	colorStar        = "#ffffff"
	colorShooting    = "#fff6c8"
	seaDarken        = 0.55 // sea colour relative to the sky bottom
	minSceneRows     = 6
	minSceneCols     = 16
)

// moonGlyphs indexed by moon phase (0 = new).
var moonGlyphs = [astro.MoonPhases]rune{'○', '☽', '◐', '◑', '●', '◐', '◑', '☾'}

// shootingGlyphs are the animation frames of a shooting star.
var shootingGlyphs = []rune{'*', '─', '─', '·', '·'}

// SceneViewModel draws the ambient scene scaled to the terminal.
type SceneViewModel struct {
	width  int
	height int

	snapshot  state.Snapshot
	showStars bool
}

// NewSceneViewModel creates a new scene view model.
func NewSceneViewModel() SceneViewModel {
	return SceneViewModel{showStars: true}
}

// SetSize updates the viewport size.
func (m SceneViewModel) SetSize(width, height int) SceneViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates with a new state snapshot.
func (m SceneViewModel) UpdateData(snapshot state.Snapshot) SceneViewModel {
	m.snapshot = snapshot
	return m
}

// Update handles messages.
func (m SceneViewModel) Update(msg tea.Msg) (SceneViewModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "t" {
		m.showStars = !m.showStars
	}
	return m, nil
}

// View renders the scene and its status lines.
func (m SceneViewModel) View() string {
	if !m.snapshot.HasData {
		return "Waiting for first frame..."
	}

	rows := m.height - 3
	cols := m.width - 2
	if rows < minSceneRows {
		rows = minSceneRows
	}
	if cols < minSceneCols {
		cols = minSceneCols
	}

	var b strings.Builder
	b.WriteString(renderSceneCanvas(m.snapshot.State, cols, rows, m.showStars))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m SceneViewModel) renderStatus() string {
	st := m.snapshot.State
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(st.Bottom.Hex())).Bold(true)

	phase := accentStyle.Render(strings.ToUpper(st.Phase.String()))
	if st.Progress > 0 {
		phase += dimStyle.Render(fmt.Sprintf(" → %s %.0f%%", st.NextPhase, st.Progress*100))
	}

	line := fmt.Sprintf("%s  %s  sun %+.1f°  %s  stars %.0f%%",
		phase,
		dimStyle.Render(st.Time.Format("2006-01-02 15:04 MST")),
		st.Sun.Altitude*180/math.Pi,
		dimStyle.Render(astro.MoonPhaseName(st.MoonPhase)),
		st.StarVisibility*100,
	)
	if st.Degenerate {
		line += dimStyle.Render("  (polar)")
	}
	return "  " + line
}

// cell is one character of the canvas.
type cell struct {
	glyph rune
	fg    string
	bg    string
}

// renderSceneCanvas draws st into a cols×rows character grid. Scene
// coordinates are scaled from the logical scene size; rows below sea level
// are sea.
func renderSceneCanvas(st ambient.State, cols, rows int, showStars bool) string {
	grid := sceneGrid(st, cols, rows, showStars)

	var b strings.Builder
	for y, row := range grid {
		for _, c := range row {
			style := lipgloss.NewStyle().Background(lipgloss.Color(c.bg))
			if c.fg != "" {
				style = style.Foreground(lipgloss.Color(c.fg))
			}
			b.WriteString(style.Render(string(c.glyph)))
		}
		if y < len(grid)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func sceneGrid(st ambient.State, cols, rows int, showStars bool) [][]cell {
	seaRow := sceneRow(ambient.SeaLevel, rows)

	grid := make([][]cell, rows)
	for y := range grid {
		grid[y] = make([]cell, cols)
		bg := skyColor(st, float64(y)/float64(maxInt(seaRow, 1)))
		if y >= seaRow {
			bg = seaColor(st, y-seaRow, rows-seaRow)
		}
		for x := range grid[y] {
			grid[y][x] = cell{glyph: ' ', bg: bg}
		}
	}
	for x := 0; x < cols; x += 3 {
		if seaRow < rows {
			grid[seaRow][(x+seaRow)%cols].glyph = glyphSea
			grid[seaRow][(x+seaRow)%cols].fg = skyColor(st, 1)
		}
	}

	plot := func(sx, sy float64, glyph rune, fg string) {
		x, y := sceneCol(sx, cols), sceneRow(sy, rows)
		if x < 0 || x >= cols || y < 0 || y >= seaRow {
			return
		}
		grid[y][x].glyph = glyph
		grid[y][x].fg = fg
	}

	if showStars {
		for _, s := range st.Stars {
			if g := starGlyph(s.Alpha); g != 0 {
				plot(s.X, s.Y, g, fadeColor(colorStar, s.Alpha))
			}
		}
		for _, s := range st.ShootingStars {
			f := s.Frame()
			if f >= 0 && f < len(shootingGlyphs) {
				plot(s.X, s.Y, shootingGlyphs[f], colorShooting)
			}
		}
	}

	if st.Moon.Visible {
		plot(st.Moon.X, st.Moon.Y, moonGlyph(st.MoonPhase), colorMoon)
	}
	sunColor := colorSun
	if !st.Sun.Visible {
		sunColor = colorSunBelow
	}
	plot(st.Sun.X, st.Sun.Y, glyphSun, sunColor)

	return grid
}

// sceneCol maps a logical x to a terminal column.
func sceneCol(x float64, cols int) int {
	return int(math.Floor(x / ambient.SceneWidth * float64(cols)))
}

// sceneRow maps a logical y to a terminal row.
func sceneRow(y float64, rows int) int {
	return int(math.Floor(y / ambient.SceneHeight * float64(rows)))
}

// skyColor returns the sky colour at vertical fraction t (0 = top, 1 = sea
// level), dimmed by the state's brightness.
func skyColor(st ambient.State, t float64) string {
	t = math.Max(0, math.Min(1, t))
	c := st.Top.Colorful().BlendLab(st.Bottom.Colorful(), t)
	return scaleColor(c, st.Brightness).Hex()
}

// seaColor darkens the sky bottom with depth.
func seaColor(st ambient.State, depth, total int) string {
	f := seaDarken
	if total > 1 {
		f *= 1 - 0.4*float64(depth)/float64(total-1)
	}
	return scaleColor(st.Bottom.Colorful(), st.Brightness*f).Hex()
}

func scaleColor(c colorful.Color, k float64) colorful.Color {
	return colorful.Color{R: c.R * k, G: c.G * k, B: c.B * k}.Clamped()
}

// fadeColor dims a glyph colour by alpha, keeping faint glyphs legible.
func fadeColor(fg string, alpha float64) string {
	c, err := colorful.Hex(fg)
	if err != nil {
		return fg
	}
	return scaleColor(c, 0.35+0.65*math.Max(0, math.Min(1, alpha))).Hex()
}

// starGlyph picks a glyph by alpha; 0 means not drawn.
func starGlyph(alpha float64) rune {
	switch {
	case alpha <= 0.02:
		return 0
	case alpha >= 0.6:
		return glyphStarBright
	case alpha >= 0.3:
		return glyphStarMedium
	default:
		return glyphStarDim
	}
}

func moonGlyph(phase int) rune {
	if phase < 0 || phase >= len(moonGlyphs) {
		return moonGlyphs[0]
	}
	return moonGlyphs[phase]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
