// Package state publishes the engine's output to concurrent readers.
package state

import (
	"sync"
	"time"

	"github.com/litescript/ls-ambient/internal/ambient"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventPhaseChange    EventType = "PHASE_CHANGE"
	EventLocationChange EventType = "LOCATION_CHANGE"
	EventDegenerateDay  EventType = "DEGENERATE_DAY"
	EventTickFailed     EventType = "TICK_FAILED"
	EventTickRecovered  EventType = "TICK_RECOVERED"
)

// Event represents a notable change in the ambient state.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"` // scene time, not wall time
	OldPhase  string    `json:"old_phase,omitempty"`
	NewPhase  string    `json:"new_phase,omitempty"`
	Location  string    `json:"location,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// TimeSeries is a single data point with timestamp.
type TimeSeries struct {
	Timestamp time.Time
	Value     float64
}

// Manager holds the latest engine output with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	// Current state
	current      ambient.State
	hasData      bool
	windows      []ambient.PhaseWindow
	lastTick     time.Time
	lastError    error
	tickDuration time.Duration
	ticks        uint64

	// Brightness history (bounded)
	brightness    []TimeSeries
	maxHistoryLen int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int
	fresh        []Event // events raised by the current Update

	// Location requested by a consumer, applied by the tick driver
	pendingLoc *ambient.Location

	tickInterval time.Duration
}

// Config holds configuration for the state manager.
type Config struct {
	MaxHistoryLen int
	MaxEvents     int
	TickInterval  time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistoryLen: 120,
		MaxEvents:     50,
		TickInterval:  time.Second / 20,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	maxHist := cfg.MaxHistoryLen
	if maxHist <= 0 {
		maxHist = 120
	}
	return &Manager{
		maxHistoryLen: maxHist,
		maxEvents:     maxEvents,
		events:        make([]Event, 0, maxEvents),
		tickInterval:  cfg.TickInterval,
	}
}

// Update records the outcome of one engine tick. st is what Tick returned:
// on failure it is the previous valid state, or the zero State before the
// first success. It returns the events raised by this update.
func (m *Manager) Update(st ambient.State, windows []ambient.PhaseWindow, tickDuration time.Duration, err error) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fresh = nil
	m.lastTick = time.Now()
	m.tickDuration = tickDuration
	m.ticks++

	if err != nil {
		if m.lastError == nil {
			// Before the first success st is the zero State.
			at := st.Time
			if at.IsZero() {
				at = m.lastTick.UTC()
			}
			m.addEvent(Event{
				Type:      EventTickFailed,
				Timestamp: at,
				Message:   err.Error(),
			})
		}
		m.lastError = err
		return m.fresh
	}
	if m.lastError != nil {
		m.addEvent(Event{Type: EventTickRecovered, Timestamp: st.Time})
	}
	m.lastError = nil

	m.detectEvents(st)

	m.current = st
	m.hasData = true
	m.windows = append(m.windows[:0], windows...)

	m.brightness = append(m.brightness, TimeSeries{Timestamp: st.Time, Value: st.Brightness})
	if len(m.brightness) > m.maxHistoryLen {
		m.brightness = m.brightness[1:]
	}
	return m.fresh
}

// detectEvents compares st with the previous state and generates events.
func (m *Manager) detectEvents(st ambient.State) {
	if !m.hasData {
		m.addEvent(Event{
			Type:      EventPhaseChange,
			Timestamp: st.Time,
			NewPhase:  st.Phase.String(),
			Location:  st.Location.String(),
		})
		if st.Degenerate {
			m.addEvent(Event{Type: EventDegenerateDay, Timestamp: st.Time, Location: st.Location.String()})
		}
		return
	}

	prev := m.current
	if prev.Location != st.Location {
		m.addEvent(Event{
			Type:      EventLocationChange,
			Timestamp: st.Time,
			Location:  st.Location.String(),
			Message:   "from " + prev.Location.String(),
		})
	}
	if prev.Phase != st.Phase {
		m.addEvent(Event{
			Type:      EventPhaseChange,
			Timestamp: st.Time,
			OldPhase:  prev.Phase.String(),
			NewPhase:  st.Phase.String(),
			Location:  st.Location.String(),
		})
	}
	if st.Degenerate && (!prev.Degenerate || prev.Location != st.Location) {
		m.addEvent(Event{Type: EventDegenerateDay, Timestamp: st.Time, Location: st.Location.String()})
	}
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	m.fresh = append(m.fresh, e)
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	State        ambient.State
	HasData      bool
	Windows      []ambient.PhaseWindow
	LastTick     time.Time
	LastError    error
	TickDuration time.Duration
	Ticks        uint64
	Brightness   []TimeSeries
	Events       []Event
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := m.current
	st.Stars = append([]ambient.Star(nil), m.current.Stars...)
	st.ShootingStars = append([]ambient.ShootingStar(nil), m.current.ShootingStars...)

	return Snapshot{
		State:        st,
		HasData:      m.hasData,
		Windows:      append([]ambient.PhaseWindow(nil), m.windows...),
		LastTick:     m.lastTick,
		LastError:    m.lastError,
		TickDuration: m.tickDuration,
		Ticks:        m.ticks,
		Brightness:   append([]TimeSeries(nil), m.brightness...),
		Events:       m.getEventsOrdered(),
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// RequestLocation queues a location change for the tick driver. A later
// request replaces an earlier one that has not been taken yet.
func (m *Manager) RequestLocation(loc ambient.Location) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingLoc = &loc
	return nil
}

// TakeLocation returns and clears the pending location request.
func (m *Manager) TakeLocation() (ambient.Location, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pendingLoc == nil {
		return ambient.Location{}, false
	}
	loc := *m.pendingLoc
	m.pendingLoc = nil
	return loc, true
}

// TickInterval returns the configured tick interval.
func (m *Manager) TickInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tickInterval
}

// SetTickInterval updates the tick interval.
func (m *Manager) SetTickInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickInterval = d
}

// HasData returns true once at least one tick succeeded.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasData
}
