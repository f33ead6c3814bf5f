package timeutil

import (
	"testing"
	"time"
)

func TestParseEventTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		monthDay string
		clock    string
		zone     string
		want     time.Time
		wantErr  bool
	}{
		{
			name:     "future date this year",
			monthDay: "06-15",
			clock:    "20:30",
			zone:     "UTC",
			want:     time.Date(2026, 6, 15, 20, 30, 0, 0, time.UTC),
		},
		{
			name:     "past date rolls to next year",
			monthDay: "01-05",
			clock:    "19:00",
			zone:     "UTC",
			want:     time.Date(2027, 1, 5, 19, 0, 0, 0, time.UTC),
		},
		{
			name:     "same day later time stays this year",
			monthDay: "03-10",
			clock:    "18:00",
			zone:     "UTC",
			want:     time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC),
		},
		{
			name:     "zone applied",
			monthDay: "06-15",
			clock:    "20:30",
			zone:     "America/New_York",
			want:     time.Date(2026, 6, 15, 20, 30, 0, 0, mustLoad(t, "America/New_York")),
		},
		{
			name:     "bad date format",
			monthDay: "June 15",
			clock:    "20:30",
			zone:     "UTC",
			wantErr:  true,
		},
		{
			name:     "month out of range",
			monthDay: "13-01",
			clock:    "20:30",
			zone:     "UTC",
			wantErr:  true,
		},
		{
			name:     "bad time format",
			monthDay: "06-15",
			clock:    "8pm",
			zone:     "UTC",
			wantErr:  true,
		},
		{
			name:     "hour out of range",
			monthDay: "06-15",
			clock:    "24:00",
			zone:     "UTC",
			wantErr:  true,
		},
		{
			name:     "unknown zone",
			monthDay: "06-15",
			clock:    "20:30",
			zone:     "Mars/Olympus_Mons",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEventTime(tt.monthDay, tt.clock, tt.zone, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEventTime() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !got.Equal(tt.want) {
				t.Fatalf("ParseEventTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func TestParseRFC3339(t *testing.T) {
	if _, err := ParseRFC3339(""); err == nil {
		t.Fatal("expected error for empty time")
	}

	got, err := ParseRFC3339("2026-02-04T01:23:45Z")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2026, 2, 4, 1, 23, 45, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if _, err := ParseRFC3339("2026-02-04T01:23:45.123456789Z"); err != nil {
		t.Fatalf("nano precision should parse: %v", err)
	}
}
