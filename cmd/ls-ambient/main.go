// Command ls-ambient is a terminal ambient scene driven by the position of the sun.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-ambient/internal/ambient"
	"github.com/litescript/ls-ambient/internal/ephem"
	"github.com/litescript/ls-ambient/internal/journal"
	"github.com/litescript/ls-ambient/internal/logging"
	"github.com/litescript/ls-ambient/internal/state"
	"github.com/litescript/ls-ambient/internal/ui"
)

// CLI flags for headless mode
var (
	summaryMode   bool
	windowsMode   bool
	eventsMode    bool
	watchInterval time.Duration
	snapshotPath  string
)

const (
	defaultFPS = 20
	minFPS     = 1
	maxFPS     = 60
)

func main() {
	lat := flag.Float64("lat", 48.85341, "Observer latitude in degrees")
	lon := flag.Float64("lon", 2.3488, "Observer longitude in degrees")
	ephemMode := flag.String("ephem", "auto", "Ephemeris source (suncalc, almanac, auto)")
	at := flag.String("at", "", "Start time in RFC3339 (default now)")
	speed := flag.Float64("speed", 1, "Clock speed factor, 0 freezes the clock")
	fps := flag.Int("fps", defaultFPS, "Ticks per second")
	seed := flag.Int64("seed", 0, "Random seed for the star field (0 = time based)")
	stars := flag.Int("stars", ambient.DefaultStarFieldConfig().Count, "Number of stars")
	reveal := flag.Int("star-reveal", 20, "Ticks between successive stars appearing (0 = all at once)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFile := flag.String("log-file", "", "Write logs to file (TUI mode discards logs otherwise)")
	journalPath := flag.String("journal", "", "Record events to a SQLite journal at this path")
	flag.BoolVar(&summaryMode, "summary", false, "Print text summary instead of TUI")
	flag.BoolVar(&windowsMode, "windows", false, "Print the phase windows")
	flag.BoolVar(&eventsMode, "events", false, "Show event log (with -watch)")
	flag.DurationVar(&watchInterval, "watch", 0, "Repeat output at interval (e.g., 30s)")
	flag.StringVar(&snapshotPath, "snapshot-path", "", "Export JSON snapshot to file (use - for stdout)")
	flag.Parse()

	loc := ambient.Location{Latitude: *lat, Longitude: *lon}
	if err := loc.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if *fps < minFPS {
		*fps = minFPS
	} else if *fps > maxFPS {
		*fps = maxFPS
	}

	clock, err := newClock(*at, *speed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	headless := summaryMode || windowsMode || eventsMode || snapshotPath != "" || !isTTY

	// Set up logging
	logger := logging.New(logging.ParseLevel(*logLevel))
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger.SetOutput(f)
	} else if !headless {
		logger = logging.Discard()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := ambient.DefaultConfig()
	cfg.Stars.Count = *stars
	cfg.Stars.RevealInterval = *reveal

	var rng *rand.Rand
	if *seed != 0 {
		rng = rand.New(rand.NewSource(*seed))
	}

	src := ephem.New(ephem.ParseMode(*ephemMode))
	engine := ambient.NewEngine(src, cfg, rng, logger)
	logger.Info("ls-ambient starting: %s via %s", loc, src.Name())

	stateCfg := state.DefaultConfig()
	stateCfg.TickInterval = time.Second / time.Duration(*fps)
	stateMgr := state.NewManager(stateCfg)

	drv := &driver{
		engine: engine,
		state:  stateMgr,
		clock:  clock,
		loc:    loc,
		log:    logger.With("driver"),
	}
	if *journalPath != "" {
		j, err := journal.Open(*journalPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer j.Close()
		drv.journal = j
	}

	if headless {
		if err := runHeadless(ctx, drv); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	model := ui.New(stateMgr, ui.DefaultPresets())
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// Tick the engine in the background; the UI polls snapshots.
	go drv.run(ctx)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// newClock builds the scene clock from the -at and -speed flags.
func newClock(at string, speed float64) (ambient.Clock, error) {
	origin := time.Now().UTC()
	if at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return nil, fmt.Errorf("parse -at: %w", err)
		}
		origin = t.UTC()
	}
	if speed == 0 {
		return ambient.FixedClock(origin), nil
	}
	if speed < 0 {
		return nil, fmt.Errorf("-speed must not be negative, got %v", speed)
	}
	if at == "" && speed == 1 {
		return ambient.SystemClock{}, nil
	}
	return ambient.NewScaledClock(origin, speed), nil
}

// driver advances the engine and publishes results to the state manager.
type driver struct {
	engine *ambient.Engine
	state  *state.Manager
	clock  ambient.Clock
	loc    ambient.Location
	log    *logging.Logger

	journal *journal.Journal // optional
}

func (d *driver) run(ctx context.Context) {
	d.tick()

	interval := d.state.TickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.log.Debug("tick loop shutting down")
			return
		case <-ticker.C:
			d.tick()
			if iv := d.state.TickInterval(); iv > 0 && iv != interval {
				d.log.Debug("tick interval %v -> %v", interval, iv)
				interval = iv
				ticker.Reset(iv)
			}
		}
	}
}

func (d *driver) tick() error {
	if loc, ok := d.state.TakeLocation(); ok {
		d.log.Info("location set to %s", loc)
		d.loc = loc
	}

	start := time.Now()
	st, err := d.engine.Tick(d.clock.Now(), d.loc)
	events := d.state.Update(st, d.engine.Windows(), time.Since(start), err)
	if d.journal != nil && len(events) > 0 {
		if jerr := d.journal.Append(events...); jerr != nil {
			d.log.Warn("journal: %v", jerr)
		}
	}
	return err
}

// recentEvents prefers the journal, which spans previous runs.
func (d *driver) recentEvents(n int) []state.Event {
	if d.journal != nil {
		events, err := d.journal.Recent(n)
		if err == nil {
			return events
		}
		d.log.Warn("journal: %v", err)
	}
	return d.state.RecentEvents(n)
}

// runHeadless handles all headless modes without starting TUI.
func runHeadless(ctx context.Context, d *driver) error {
	outputOnce := func() error {
		if err := d.tick(); err != nil {
			return err
		}
		snap := d.state.Snapshot()

		if snapshotPath != "" {
			export := ambient.ExportSnapshot(snap.State, snap.Windows)
			if snapshotPath == "-" {
				if err := export.WriteJSON(os.Stdout); err != nil {
					return fmt.Errorf("write JSON to stdout: %w", err)
				}
			} else {
				f, err := os.Create(snapshotPath)
				if err != nil {
					return fmt.Errorf("create snapshot file: %w", err)
				}
				defer f.Close()
				if err := export.WriteJSON(f); err != nil {
					return fmt.Errorf("write JSON to file: %w", err)
				}
			}
		}

		// Summary is the default when nothing else was asked for.
		if summaryMode || (!windowsMode && !eventsMode && snapshotPath == "") {
			ambient.WriteSummary(os.Stdout, snap.State)
		}

		if windowsMode {
			if summaryMode {
				fmt.Println()
			}
			ambient.WriteWindows(os.Stdout, snap.Windows, time.Local)
		}

		if eventsMode {
			for _, e := range d.recentEvents(10) {
				msg := e.Message
				if msg == "" && e.NewPhase != "" {
					msg = e.OldPhase + " → " + e.NewPhase
				}
				fmt.Printf("%s  %-16s %s\n", e.Timestamp.Format(time.RFC3339), e.Type, msg)
			}
		}
		return nil
	}

	if watchInterval == 0 {
		return outputOnce()
	}

	if err := outputOnce(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if snapshotPath != "-" {
				fmt.Println()
			}
			if err := outputOnce(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}
}
