package ambient

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/litescript/ls-ambient/internal/astro"
)

// SnapshotExport is the JSON-serializable representation of a State.
type SnapshotExport struct {
	Timestamp      time.Time      `json:"timestamp"`
	Latitude       float64        `json:"latitude"`
	Longitude      float64        `json:"longitude"`
	Source         string         `json:"source"`
	Phase          string         `json:"phase"`
	NextPhase      string         `json:"next_phase"`
	WindowStart    time.Time      `json:"window_start"`
	WindowEnd      time.Time      `json:"window_end"`
	Progress       float64        `json:"progress"`
	TopColor       string         `json:"top_color"`
	BottomColor    string         `json:"bottom_color"`
	Brightness     float64        `json:"brightness"`
	Sun            BodyExport     `json:"sun"`
	Moon           BodyExport     `json:"moon"`
	MoonPhase      int            `json:"moon_phase"`
	MoonPhaseName  string         `json:"moon_phase_name"`
	MoonAlpha      float64        `json:"moon_alpha"`
	StarVisibility float64        `json:"star_visibility"`
	Stars          []StarExport   `json:"stars"`
	ShootingStars  []ShootingStar `json:"shooting_stars,omitempty"`
	Windows        []WindowExport `json:"windows,omitempty"`
	Degenerate     bool           `json:"degenerate,omitempty"`
}

// BodyExport is a JSON-friendly sun or moon placement. Angles in degrees.
type BodyExport struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Altitude float64 `json:"altitude"`
	Azimuth  float64 `json:"azimuth"`
	Visible  bool    `json:"visible"`
}

// StarExport is a JSON-friendly star.
type StarExport struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Alpha float64 `json:"alpha"`
}

// WindowExport is a JSON-friendly phase window.
type WindowExport struct {
	Phase      string    `json:"phase"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Top        string    `json:"top_color"`
	Bottom     string    `json:"bottom_color"`
	Brightness float64   `json:"brightness"`
}

// ExportSnapshot converts a State and its windows to an exportable format.
func ExportSnapshot(st State, windows []PhaseWindow) *SnapshotExport {
	export := &SnapshotExport{
		Timestamp:      st.Time,
		Latitude:       st.Location.Latitude,
		Longitude:      st.Location.Longitude,
		Source:         st.Source,
		Phase:          st.Phase.String(),
		NextPhase:      st.NextPhase.String(),
		WindowStart:    st.WindowStart,
		WindowEnd:      st.WindowEnd,
		Progress:       st.Progress,
		TopColor:       st.Top.Hex(),
		BottomColor:    st.Bottom.Hex(),
		Brightness:     st.Brightness,
		Sun:            exportBody(st.Sun),
		Moon:           exportBody(st.Moon),
		MoonPhase:      st.MoonPhase,
		MoonPhaseName:  astro.MoonPhaseName(st.MoonPhase),
		MoonAlpha:      st.MoonAlpha,
		StarVisibility: st.StarVisibility,
		ShootingStars:  st.ShootingStars,
		Degenerate:     st.Degenerate,
	}

	export.Stars = make([]StarExport, 0, len(st.Stars))
	for _, s := range st.Stars {
		export.Stars = append(export.Stars, StarExport{X: s.X, Y: s.Y, Alpha: s.Alpha})
	}

	for _, w := range windows {
		export.Windows = append(export.Windows, WindowExport{
			Phase:      w.Phase.String(),
			Start:      w.Start,
			End:        w.End,
			Top:        w.Top.Hex(),
			Bottom:     w.Bottom.Hex(),
			Brightness: w.Brightness,
		})
	}

	return export
}

func exportBody(b Body) BodyExport {
	return BodyExport{
		X:        b.X,
		Y:        b.Y,
		Altitude: b.Altitude * 180 / math.Pi,
		Azimuth:  b.Azimuth * 180 / math.Pi,
		Visible:  b.Visible,
	}
}

// WriteJSON writes the snapshot as JSON to the given writer.
func (s *SnapshotExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteSummary writes a short text report of the state.
func WriteSummary(w io.Writer, st State) {
	fmt.Fprintf(w, "Ambient @ %s  (%s, %s)\n", st.Time.Format(time.RFC3339), st.Location, st.Source)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "%-12s %s -> %s (%.0f%%)\n", "Phase", st.Phase, st.NextPhase, st.Progress*100)
	fmt.Fprintf(w, "%-12s %s .. %s\n", "Window",
		st.WindowStart.Format("2006-01-02 15:04"), st.WindowEnd.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "%-12s top %s  bottom %s  brightness %.2f\n", "Sky", st.Top.Hex(), st.Bottom.Hex(), st.Brightness)
	fmt.Fprintf(w, "%-12s x=%6.1f y=%6.1f alt=%6.1f° %s\n", "Sun",
		st.Sun.X, st.Sun.Y, st.Sun.Altitude*180/math.Pi, visibleStr(st.Sun.Visible))
	fmt.Fprintf(w, "%-12s x=%6.1f y=%6.1f alt=%6.1f° %s, %s\n", "Moon",
		st.Moon.X, st.Moon.Y, st.Moon.Altitude*180/math.Pi, visibleStr(st.Moon.Visible), astro.MoonPhaseName(st.MoonPhase))

	lit := 0
	for _, s := range st.Stars {
		if s.Alpha > 0 {
			lit++
		}
	}
	fmt.Fprintf(w, "%-12s %d/%d lit, visibility %.2f, %d shooting\n", "Stars",
		lit, len(st.Stars), st.StarVisibility, len(st.ShootingStars))
	if st.Degenerate {
		fmt.Fprintln(w, "Note: polar day/night, some solar events do not occur")
	}
}

// WriteWindows writes a table of phase windows.
func WriteWindows(w io.Writer, windows []PhaseWindow, loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	fmt.Fprintf(w, "%-8s %-17s %-17s %-9s %-8s %-8s %s\n",
		"Phase", "Start", "End", "Duration", "Top", "Bottom", "Bright")
	fmt.Fprintln(w, strings.Repeat("─", 80))
	for _, pw := range windows {
		fmt.Fprintf(w, "%-8s %-17s %-17s %-9s %-8s %-8s %.2f\n",
			pw.Phase,
			pw.Start.In(loc).Format("2006-01-02 15:04"),
			pw.End.In(loc).Format("2006-01-02 15:04"),
			formatDuration(pw.Duration()),
			pw.Top.Hex(),
			pw.Bottom.Hex(),
			pw.Brightness,
		)
	}
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	d = d.Round(time.Minute)
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}

func visibleStr(v bool) string {
	if v {
		return "up"
	}
	return "down"
}
