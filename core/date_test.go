package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDate_WeekStart(t *testing.T) {
	sunday := NewDate(2026, time.March, 1)

	tests := []struct {
		name string
		d    Date
		want Date
	}{
		{name: "sunday anchors itself", d: sunday, want: sunday},
		{name: "monday", d: sunday.AddDays(1), want: sunday},
		{name: "saturday", d: sunday.AddDays(6), want: sunday},
		{name: "next sunday starts a new week", d: sunday.AddDays(7), want: sunday.AddDays(7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.WeekStart(); got != tt.want {
				t.Errorf("WeekStart() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDate_DaysUntil(t *testing.T) {
	d := NewDate(2026, time.March, 1)
	if got := d.DaysUntil(d.AddDays(14)); got != 14 {
		t.Errorf("DaysUntil() = %d, want 14", got)
	}
	if got := d.DaysUntil(d.AddDays(-7)); got != -7 {
		t.Errorf("DaysUntil() = %d, want -7", got)
	}
}

func TestDate_JSON(t *testing.T) {
	d := NewDate(2026, time.March, 1)

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	if string(data) != `"2026-03-01"` {
		t.Errorf("Marshal() = %s, want %q", data, "2026-03-01")
	}

	var parsed Date
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if parsed != d {
		t.Errorf("Unmarshal() = %s, want %s", parsed, d)
	}

	var zero Date
	if err := json.Unmarshal([]byte("null"), &zero); err != nil {
		t.Fatalf("Unmarshal(null) failed: %v", err)
	}
	if !zero.IsZero() {
		t.Errorf("Unmarshal(null) = %s, want zero", zero)
	}

	if err := json.Unmarshal([]byte(`"01/03/2026"`), &parsed); err == nil {
		t.Error("Unmarshal() expected an error for a non-ISO date")
	}
}

func TestDate_Scan(t *testing.T) {
	var d Date

	if err := d.Scan(time.Date(2026, time.March, 1, 13, 37, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Scan(time.Time) failed: %v", err)
	}
	if d.String() != "2026-03-01" {
		t.Errorf("Scan(time.Time) = %s, want 2026-03-01", d)
	}

	if err := d.Scan("2026-03-02"); err != nil {
		t.Fatalf("Scan(string) failed: %v", err)
	}
	if d.String() != "2026-03-02" {
		t.Errorf("Scan(string) = %s, want 2026-03-02", d)
	}

	if err := d.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if !d.IsZero() {
		t.Errorf("Scan(nil) = %s, want zero", d)
	}

	if err := d.Scan(42); err == nil {
		t.Error("Scan(int) expected an error")
	}
}
