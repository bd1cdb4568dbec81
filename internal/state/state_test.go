package state

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/litescript/ls-ambient/internal/ambient"
)

var paris = ambient.Location{Latitude: 48.85341, Longitude: 2.3488}

func testState(at time.Time, phase ambient.Phase) ambient.State {
	return ambient.State{
		Time:       at,
		Location:   paris,
		Phase:      phase,
		Brightness: 0.5,
		Stars:      []ambient.Star{{X: 1, Y: 2, Alpha: 0.3}},
	}
}

func TestNewManager(t *testing.T) {
	cfg := DefaultConfig()
	m := NewManager(cfg)

	if m == nil {
		t.Fatal("NewManager returned nil")
	}

	if m.TickInterval() != cfg.TickInterval {
		t.Errorf("TickInterval = %v, want %v", m.TickInterval(), cfg.TickInterval)
	}

	if m.HasData() {
		t.Error("HasData should be false initially")
	}
}

func TestManager_Update(t *testing.T) {
	m := NewManager(DefaultConfig())
	at := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	windows := []ambient.PhaseWindow{{Phase: ambient.PhaseDay, Start: at.Add(-time.Hour), End: at.Add(time.Hour)}}

	m.Update(testState(at, ambient.PhaseDay), windows, 2*time.Millisecond, nil)

	if !m.HasData() {
		t.Error("HasData should be true after Update")
	}

	snap := m.Snapshot()
	if !snap.State.Time.Equal(at) || snap.State.Phase != ambient.PhaseDay {
		t.Errorf("snapshot state = %+v", snap.State)
	}
	if snap.TickDuration != 2*time.Millisecond {
		t.Errorf("TickDuration = %v, want 2ms", snap.TickDuration)
	}
	if len(snap.Windows) != 1 {
		t.Errorf("Windows = %d, want 1", len(snap.Windows))
	}
	if snap.Ticks != 1 {
		t.Errorf("Ticks = %d, want 1", snap.Ticks)
	}
}

func TestManager_UpdateWithError(t *testing.T) {
	m := NewManager(DefaultConfig())
	at := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	good := testState(at, ambient.PhaseDay)
	m.Update(good, nil, 0, nil)

	tickErr := errors.New("boom")
	m.Update(good, nil, 0, tickErr)
	m.Update(good, nil, 0, tickErr)

	snap := m.Snapshot()
	if snap.LastError != tickErr {
		t.Errorf("LastError = %v, want %v", snap.LastError, tickErr)
	}
	if !snap.HasData || !snap.State.Time.Equal(at) {
		t.Error("failed tick should keep the last valid state")
	}

	var failed int
	for _, e := range snap.Events {
		if e.Type == EventTickFailed {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("TICK_FAILED events = %d, want 1 per failure streak", failed)
	}

	m.Update(testState(at.Add(time.Second), ambient.PhaseDay), nil, 0, nil)
	snap = m.Snapshot()
	if snap.LastError != nil {
		t.Errorf("LastError = %v after recovery", snap.LastError)
	}
	if last := snap.Events[len(snap.Events)-1]; last.Type != EventTickRecovered {
		t.Errorf("last event = %s, want TICK_RECOVERED", last.Type)
	}
}

func TestManager_FirstTickFailure(t *testing.T) {
	m := NewManager(DefaultConfig())
	events := m.Update(ambient.State{}, nil, 0, errors.New("no window"))
	if m.HasData() {
		t.Error("HasData should stay false when the first tick fails")
	}
	if len(events) != 1 || events[0].Type != EventTickFailed {
		t.Fatalf("events = %+v, want one TICK_FAILED", events)
	}
	if events[0].Timestamp.IsZero() {
		t.Error("TICK_FAILED before any success carries the zero time")
	}
}

func TestManager_PhaseChangeEvents(t *testing.T) {
	m := NewManager(DefaultConfig())
	base := time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)

	seq := []ambient.Phase{
		ambient.PhaseDay, ambient.PhaseDay, ambient.PhaseSunset,
		ambient.PhaseSunset, ambient.PhaseNight,
	}
	for i, p := range seq {
		m.Update(testState(base.Add(time.Duration(i)*time.Minute), p), nil, 0, nil)
	}

	events := m.RecentEvents(10)
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3: %+v", len(events), events)
	}
	if events[0].NewPhase != "day" || events[0].OldPhase != "" {
		t.Errorf("first event = %+v, want initial day", events[0])
	}
	if events[1].OldPhase != "day" || events[1].NewPhase != "sunset" {
		t.Errorf("second event = %+v", events[1])
	}
	if events[2].NewPhase != "night" || !events[2].Timestamp.Equal(base.Add(4*time.Minute)) {
		t.Errorf("third event = %+v", events[2])
	}
}

func TestManager_UpdateReturnsFreshEvents(t *testing.T) {
	m := NewManager(DefaultConfig())
	base := time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		st    ambient.State
		err   error
		types []EventType
	}{
		{"first tick", testState(base, ambient.PhaseDay), nil, []EventType{EventPhaseChange}},
		{"same phase", testState(base.Add(time.Minute), ambient.PhaseDay), nil, nil},
		{"failure", testState(base.Add(time.Minute), ambient.PhaseDay), errors.New("boom"), []EventType{EventTickFailed}},
		{"still failing", testState(base.Add(time.Minute), ambient.PhaseDay), errors.New("boom"), nil},
		{"recovered into sunset", testState(base.Add(3*time.Minute), ambient.PhaseSunset), nil, []EventType{EventTickRecovered, EventPhaseChange}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Update(tt.st, nil, 0, tt.err)
			if len(got) != len(tt.types) {
				t.Fatalf("events = %+v, want types %v", got, tt.types)
			}
			for i, e := range got {
				if e.Type != tt.types[i] {
					t.Errorf("event %d type = %s, want %s", i, e.Type, tt.types[i])
				}
			}
		})
	}
}

func TestManager_LocationAndDegenerateEvents(t *testing.T) {
	m := NewManager(DefaultConfig())
	at := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)
	m.Update(testState(at, ambient.PhaseDay), nil, 0, nil)

	tromso := testState(at.Add(time.Minute), ambient.PhaseDay)
	tromso.Location = ambient.Location{Latitude: 69.6492, Longitude: 18.9553}
	tromso.Degenerate = true
	m.Update(tromso, nil, 0, nil)
	m.Update(tromso, nil, 0, nil)

	var types []EventType
	for _, e := range m.RecentEvents(10) {
		types = append(types, e.Type)
	}
	want := []EventType{EventPhaseChange, EventLocationChange, EventDegenerateDay}
	if len(types) != len(want) {
		t.Fatalf("events = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, types[i], want[i])
		}
	}
}

func TestManager_BrightnessHistory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxHistoryLen = 5
	m := NewManager(cfg)
	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		st := testState(base.Add(time.Duration(i)*time.Second), ambient.PhaseDay)
		st.Brightness = float64(i) / 10
		m.Update(st, nil, 0, nil)
	}

	hist := m.Snapshot().Brightness
	if len(hist) != 5 {
		t.Fatalf("history = %d, want 5", len(hist))
	}
	if hist[0].Value != 0.5 || hist[4].Value != 0.9 {
		t.Errorf("history kept %v..%v, want 0.5..0.9", hist[0].Value, hist[4].Value)
	}
}

func TestManager_Snapshot_IsCopy(t *testing.T) {
	m := NewManager(DefaultConfig())
	at := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	m.Update(testState(at, ambient.PhaseNight), []ambient.PhaseWindow{{Phase: ambient.PhaseNight}}, 0, nil)

	snap := m.Snapshot()
	snap.State.Stars[0].Alpha = 99
	snap.Windows[0].Phase = ambient.PhaseDay

	snap2 := m.Snapshot()
	if snap2.State.Stars[0].Alpha == 99 {
		t.Error("Snapshot star modification affected manager state")
	}
	if snap2.Windows[0].Phase != ambient.PhaseNight {
		t.Error("Snapshot window modification affected manager state")
	}
}

func TestManager_RequestLocation(t *testing.T) {
	m := NewManager(DefaultConfig())

	if _, ok := m.TakeLocation(); ok {
		t.Error("TakeLocation should be empty initially")
	}
	if err := m.RequestLocation(ambient.Location{Latitude: 95}); !errors.Is(err, ambient.ErrInvalidLocation) {
		t.Errorf("err = %v, want ErrInvalidLocation", err)
	}

	first := ambient.Location{Latitude: 10, Longitude: 20}
	second := ambient.Location{Latitude: -33.86, Longitude: 151.21}
	_ = m.RequestLocation(first)
	_ = m.RequestLocation(second)

	got, ok := m.TakeLocation()
	if !ok || got != second {
		t.Errorf("TakeLocation = %v, %v, want %v", got, ok, second)
	}
	if _, ok := m.TakeLocation(); ok {
		t.Error("pending location should be cleared after take")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager(DefaultConfig())
	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	iterations := 100

	// Writer goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			st := testState(base.Add(time.Duration(i)*time.Second), ambient.Phase(i%ambient.NumPhases))
			m.Update(st, nil, time.Duration(i)*time.Microsecond, nil)
		}
	}()

	// Reader goroutines
	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				_ = m.Snapshot()
				_ = m.HasData()
				_ = m.TickInterval()
				_ = m.RecentEvents(5)
				_ = m.RequestLocation(paris)
				_, _ = m.TakeLocation()
			}
		}()
	}

	wg.Wait()
}

func TestManager_SetTickInterval(t *testing.T) {
	m := NewManager(DefaultConfig())

	newInterval := 100 * time.Millisecond
	m.SetTickInterval(newInterval)

	if m.TickInterval() != newInterval {
		t.Errorf("TickInterval = %v, want %v", m.TickInterval(), newInterval)
	}
}

func TestManager_EventRingBuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEvents = 5
	m := NewManager(cfg)
	base := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	// Every update flips the phase
	for i := 0; i < 12; i++ {
		st := testState(base.Add(time.Duration(i)*time.Minute), ambient.Phase(i%ambient.NumPhases))
		m.Update(st, nil, 0, nil)
	}

	events := m.RecentEvents(100)
	if len(events) != 5 {
		t.Errorf("events count = %d, want 5 (max)", len(events))
	}

	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.Before(events[i-1].Timestamp) {
			t.Errorf("events not in chronological order at index %d", i)
		}
	}
	if last := events[len(events)-1]; !last.Timestamp.Equal(base.Add(11 * time.Minute)) {
		t.Errorf("newest event at %v", last.Timestamp)
	}
}
