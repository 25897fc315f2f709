package service_test

import (
	"testing"
	"time"

	"github.com/elstrm2/NutritionTracker/internal/service"
)

func TestParseOffset(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in         string
		wantOffset int
	}{
		{"UTC", 0},
		{"UTC+03", 3 * 3600},
		{"UTC-05:30", -(5*3600 + 30*60)},
		{"UTC+14", 14 * 3600},
		{"UTC+15", 0},
		{"UTC+03:75", 0},
		{"Mars/Olympus", 0},
		{"", 0},
	}
	for _, tt := range tests {
		_, offset := at.In(service.ParseOffset(tt.in)).Zone()
		if offset != tt.wantOffset {
			t.Fatalf("ParseOffset(%q): got offset %d want %d", tt.in, offset, tt.wantOffset)
		}
	}
}

func TestLocalDate(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 10, 22, 30, 0, 0, time.UTC)
	if got := service.LocalDate(at, service.ParseOffset("UTC+03")).String(); got != "2026-03-11" {
		t.Fatalf("expected next local day, got %s", got)
	}
	if got := service.LocalDate(at, service.ParseOffset("UTC-11")).String(); got != "2026-03-10" {
		t.Fatalf("expected same local day, got %s", got)
	}
	if got := service.ToLocal(at, service.ParseOffset("UTC+03")).Hour(); got != 1 {
		t.Fatalf("expected local hour 1, got %d", got)
	}
}

func TestLocalDayWindowUTC(t *testing.T) {
	t.Parallel()

	loc := service.ParseOffset("UTC+03")
	d, err := service.ParseLocalDate("2026-03-10")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	w := service.LocalDayWindowUTC(d, loc)
	wantStart := time.Date(2026, 3, 9, 21, 0, 0, 0, time.UTC)
	if !w.Start.Equal(wantStart) {
		t.Fatalf("start: got %s want %s", w.Start, wantStart)
	}
	if !w.End.Equal(wantStart.Add(24*time.Hour - time.Nanosecond)) {
		t.Fatalf("end: got %s", w.End)
	}
	if !w.Contains(w.Start) || !w.Contains(w.End) || w.Contains(w.End.Add(time.Nanosecond)) || w.Contains(w.Start.Add(-time.Nanosecond)) {
		t.Fatalf("window bounds must be inclusive and tight")
	}
}

func TestDayWindowsPartitionTimeline(t *testing.T) {
	t.Parallel()

	for _, tz := range []string{"UTC", "UTC+05:45", "UTC-12", "UTC+14"} {
		loc := service.ParseOffset(tz)
		d, _ := service.ParseLocalDate("2026-02-27")
		w := service.LocalDayWindowUTC(d, loc)
		for i := 0; i < 5; i++ {
			next := w.Next()
			if !next.Start.Equal(w.End.Add(time.Nanosecond)) {
				t.Fatalf("%s: gap or overlap between %s and %s", tz, w.Date, next.Date)
			}
			nd, err := service.ParseLocalDate(next.Date)
			if err != nil {
				t.Fatalf("%s: next date %q: %v", tz, next.Date, err)
			}
			if again := service.LocalDayWindowUTC(nd, loc); again.Date != next.Date || !again.Start.Equal(next.Start) || !again.End.Equal(next.End) {
				t.Fatalf("%s: Next() %+v disagrees with LocalDayWindowUTC %+v", tz, next, again)
			}
			// Every instant in the window maps back to the window's date.
			for _, at := range []time.Time{next.Start, next.Start.Add(12 * time.Hour), next.End} {
				if got := service.LocalDate(at, loc).String(); got != next.Date {
					t.Fatalf("%s: %s attributed to %s, want %s", tz, at, got, next.Date)
				}
			}
			w = next
		}
	}
}

func TestParseLocalDateRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{"2026-13-01", "10.03.2026", "yesterday", ""} {
		if _, err := service.ParseLocalDate(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}
