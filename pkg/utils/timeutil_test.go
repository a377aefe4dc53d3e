package utils

import (
	"testing"
	"time"
)

func TestDayUTC(t *testing.T) {
	brt := time.FixedZone("BRT", -3*60*60)

	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"midday utc", time.Date(2024, 3, 5, 12, 30, 0, 0, time.UTC), "2024-03-05"},
		{"late evening BRT rolls over", time.Date(2024, 3, 5, 22, 0, 0, 0, brt), "2024-03-06"},
		{"already midnight", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "2024-03-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DayUTC(tt.in)
			if got.Format(DayLayout) != tt.want {
				t.Errorf("DayUTC(%v) = %s, want %s", tt.in, got.Format(DayLayout), tt.want)
			}
			if got.Hour() != 0 || got.Minute() != 0 || got.Location() != time.UTC {
				t.Errorf("DayUTC(%v) not truncated: %v", tt.in, got)
			}
		})
	}
}

func TestDayRange(t *testing.T) {
	from := time.Date(2024, 2, 27, 18, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC)

	days := DayRange(from, to)
	want := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}
	if len(days) != len(want) {
		t.Fatalf("DayRange: got %d days, want %d", len(days), len(want))
	}
	for i, d := range days {
		if FormatDay(d) != want[i] {
			t.Errorf("day %d: got %s, want %s", i, FormatDay(d), want[i])
		}
	}

	if got := DayRange(to, from); got != nil {
		t.Errorf("reversed range: got %v, want nil", got)
	}
	if got := DayRange(from, from); len(got) != 1 {
		t.Errorf("single day range: got %d days, want 1", len(got))
	}
}

func TestParseUnixSeconds(t *testing.T) {
	ts, err := ParseUnixSeconds("1704205800")
	if err != nil {
		t.Fatalf("ParseUnixSeconds: %v", err)
	}
	if FormatDay(ts) != "2024-01-02" {
		t.Errorf("got %s, want 2024-01-02", FormatDay(ts))
	}
	if _, err := ParseUnixSeconds("abc"); err == nil {
		t.Error("expected error for non-numeric timestamp")
	}
}
