package astro

import (
	"testing"
	"time"
)

func TestMoonPhaseIndex_KnownDates(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want int
	}{
		{"new moon 2024-01-11", time.Date(2024, 1, 11, 12, 0, 0, 0, time.UTC), 0},
		{"full moon 2024-01-25", time.Date(2024, 1, 25, 12, 0, 0, 0, time.UTC), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MoonPhaseIndex(tt.date); got != tt.want {
				t.Errorf("MoonPhaseIndex() = %d (%s), want %d (%s)",
					got, MoonPhaseName(got), tt.want, MoonPhaseName(tt.want))
			}
		})
	}
}

func TestMoonPhaseIndex_Range(t *testing.T) {
	start := time.Date(1850, 1, 1, 0, 0, 0, 0, time.UTC)
	for d := 0; d < 365*250; d += 3 {
		date := start.AddDate(0, 0, d)
		idx := MoonPhaseIndex(date)
		if idx < 0 || idx >= MoonPhases {
			t.Fatalf("MoonPhaseIndex(%v) = %d, out of [0,7]", date.Format("2006-01-02"), idx)
		}
	}
}

func TestMoonPhaseIndex_CycleAdvances(t *testing.T) {
	// Over one synodic month every bucket is visited
	seen := make(map[int]bool)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for d := 0; d < 30; d++ {
		seen[MoonPhaseIndex(start.AddDate(0, 0, d))] = true
	}
	if len(seen) != MoonPhases {
		t.Errorf("visited %d phase buckets in a month, want %d", len(seen), MoonPhases)
	}
}

func TestMoonPhaseName(t *testing.T) {
	if got := MoonPhaseName(0); got != "new" {
		t.Errorf("MoonPhaseName(0) = %q, want new", got)
	}
	if got := MoonPhaseName(4); got != "full" {
		t.Errorf("MoonPhaseName(4) = %q, want full", got)
	}
	if got := MoonPhaseName(8); got != "" {
		t.Errorf("MoonPhaseName(8) = %q, want empty", got)
	}
}

func TestMoonPhaseIndexAt_UsesLocalSolarDate(t *testing.T) {
	// 20:00 UTC is already the next morning in Tokyo and still the
	// afternoon in Honolulu.
	at := time.Date(2024, 1, 18, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		lon  float64
		date time.Time
	}{
		{"greenwich", 0, time.Date(2024, 1, 18, 12, 0, 0, 0, time.UTC)},
		{"tokyo", 139.69, time.Date(2024, 1, 19, 12, 0, 0, 0, time.UTC)},
		{"honolulu", -157.86, time.Date(2024, 1, 18, 12, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, want := MoonPhaseIndexAt(at, tt.lon), MoonPhaseIndex(tt.date); got != want {
				t.Errorf("MoonPhaseIndexAt(%v, %v) = %d, want %d", at, tt.lon, got, want)
			}
		})
	}
}
