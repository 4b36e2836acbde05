package calendar

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAge(t *testing.T) {
	today := New(2025, time.June, 15)

	tests := []struct {
		name  string
		birth Date
		want  int
	}{
		{"birthday today", New(2012, time.June, 15), 13},
		{"birthday tomorrow", New(2012, time.June, 16), 12},
		{"birthday yesterday", New(2012, time.June, 14), 13},
		{"later month", New(2012, time.July, 1), 12},
		{"earlier month", New(2012, time.May, 31), 13},
		{"born today", today, 0},
		{"born in the future", New(2026, time.January, 1), 0},
		{"zero birth date", Date{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Age(tt.birth, today); got != tt.want {
				t.Errorf("Age(%s, %s) = %d, want %d", tt.birth, today, got, tt.want)
			}
		})
	}
}

func TestAgeLeapDay(t *testing.T) {
	birth := New(2012, time.February, 29)

	if got := Age(birth, New(2025, time.February, 28)); got != 12 {
		t.Errorf("Age on Feb 28 of a non-leap year = %d, want 12", got)
	}
	if got := Age(birth, New(2025, time.March, 1)); got != 13 {
		t.Errorf("Age on Mar 1 of a non-leap year = %d, want 13", got)
	}
	if got := Age(birth, New(2024, time.February, 29)); got != 12 {
		t.Errorf("Age on Feb 29 = %d, want 12", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{"2025-01-05", New(2025, time.January, 5), false},
		{"2025-01-05T23:30:00-05:00", New(2025, time.January, 5), false},
		{"2025-01-05 08:00:00", New(2025, time.January, 5), false},
		{"", Date{}, false},
		{"05/01/2025", Date{}, true},
		{"2025-13-01", Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMonthKey(t *testing.T) {
	m, err := ParseMonth("2025-03-18")
	if err != nil {
		t.Fatalf("ParseMonth failed: %v", err)
	}
	if m.Key() != "2025-03" {
		t.Errorf("Key() = %q, want 2025-03", m.Key())
	}
	if got := New(2024, time.November, 2).BillingMonth().Key(); got != "2024-11" {
		t.Errorf("BillingMonth().Key() = %q, want 2024-11", got)
	}
	if (Month{}).Key() != "" {
		t.Error("zero month should have an empty key")
	}
	if "2024-12" >= "2025-01" {
		t.Error("month keys must sort chronologically")
	}
}

func TestCompareAndAdd(t *testing.T) {
	a := New(2025, time.January, 31)
	b := a.AddDays(1)
	if b != New(2025, time.February, 1) {
		t.Errorf("AddDays(1) = %v", b)
	}
	if !a.Before(b) || !b.After(a) || a.Compare(a) != 0 {
		t.Error("Compare ordering is wrong")
	}
	if got := New(2024, time.February, 29).AddYears(1); got != New(2025, time.February, 28) {
		t.Errorf("AddYears on leap day = %v", got)
	}
}

func TestDateJSON(t *testing.T) {
	type payload struct {
		Due Date  `json:"due"`
		Mon Month `json:"month"`
	}

	in := payload{Due: New(2025, time.April, 9), Mon: Month{Year: 2025, Month: time.April}}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"due":"2025-04-09","month":"2025-04"}` {
		t.Errorf("unexpected JSON: %s", data)
	}

	var out payload
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan("2023-10-01"); err != nil || d != New(2023, time.October, 1) {
		t.Errorf("Scan(string) = %v, %v", d, err)
	}
	if err := d.Scan(nil); err != nil || !d.IsZero() {
		t.Errorf("Scan(nil) = %v, %v", d, err)
	}
	if err := d.Scan(42); err == nil {
		t.Error("expected error scanning an int")
	}
}
