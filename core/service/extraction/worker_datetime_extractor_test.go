package extraction

import (
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
}

func TestDateTimeExtractor(t *testing.T) {
	x := NewDateTimeExtractor(fixedNow)

	tests := []struct {
		name         string
		text         string
		wantDate     string
		wantDateRule string
		wantTime     string
		wantTimeRule string
	}{
		{
			name:         "numeric date and clock time",
			text:         "Join us on 20/03/2026 at 5:30 PM in the main hall.",
			wantDate:     "20/03/2026",
			wantDateRule: "numeric",
			wantTime:     "5:30 PM",
			wantTimeRule: "clock",
		},
		{
			name:         "day month year with ordinal",
			text:         "The fest is on 5th April 2026, 10 AM onwards.",
			wantDate:     "5th April 2026",
			wantDateRule: "day-month-year",
			wantTime:     "10 AM",
			wantTimeRule: "hour-meridiem",
		},
		{
			name:         "labeled day month without year",
			text:         "Date: 12 May\nBring your ID.",
			wantDate:     "12 May",
			wantDateRule: "labeled-day-month",
			wantTime:     DefaultTime,
		},
		{
			name:         "labeled numeric without year",
			text:         "Final round on 7/4, see you there.",
			wantDate:     "7/4",
			wantDateRule: "labeled-numeric",
			wantTime:     DefaultTime,
		},
		{
			name:         "iso date",
			text:         "Scheduled for 2026-04-10. Time: 14:00",
			wantDate:     "2026-04-10",
			wantDateRule: "iso",
			wantTime:     "14:00",
			wantTimeRule: "clock",
		},
		{
			name:         "month day year",
			text:         "Talk happening March 28, 2026 from 4-6pm",
			wantDate:     "March 28, 2026",
			wantDateRule: "month-day-year",
			wantTime:     "6pm",
			wantTimeRule: "hour-meridiem",
		},
		{
			name:         "labeled hour without meridiem",
			text:         "Meet at 5 near the gate.",
			wantDate:     "15/03/2026",
			wantTime:     "5",
			wantTimeRule: "labeled",
		},
		{
			name:         "month word inside another word is ignored",
			text:         "Marketing 2026 meetup, details soon.",
			wantDate:     "15/03/2026",
			wantTime:     DefaultTime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := x.Extract(tt.text)

			if got.Date.Value != tt.wantDate {
				t.Errorf("date = %q, want %q", got.Date.Value, tt.wantDate)
			}
			if got.Date.Rule != tt.wantDateRule {
				t.Errorf("date rule = %q, want %q", got.Date.Rule, tt.wantDateRule)
			}
			if got.UsedDefaultDate() != (tt.wantDateRule == "") {
				t.Errorf("UsedDefaultDate = %v", got.UsedDefaultDate())
			}
			if got.Time.Value != tt.wantTime {
				t.Errorf("time = %q, want %q", got.Time.Value, tt.wantTime)
			}
			if got.Time.Rule != tt.wantTimeRule {
				t.Errorf("time rule = %q, want %q", got.Time.Rule, tt.wantTimeRule)
			}
		})
	}
}

func TestDateTimeExtractorDefaultsToToday(t *testing.T) {
	x := NewDateTimeExtractor(fixedNow)

	got := x.Extract("Come to our coding meetup, snacks provided!")

	if !got.UsedDefaultDate() {
		t.Fatal("expected default date")
	}
	if got.Date.Value != "15/03/2026" {
		t.Errorf("default date = %q, want today's DD/MM/YYYY", got.Date.Value)
	}
	if !got.Time.IsDefaulted() || got.Time.Value != "12:00 PM" {
		t.Errorf("time = %+v, want defaulted 12:00 PM", got.Time)
	}
}

func TestDateAndTimeAreIndependent(t *testing.T) {
	x := NewDateTimeExtractor(fixedNow)

	onlyTime := x.Extract("Doors open 6:45 pm")
	if !onlyTime.UsedDefaultDate() || onlyTime.Time.IsDefaulted() {
		t.Errorf("time without date: %+v", onlyTime)
	}

	onlyDate := x.Extract("Happening 21/09/2026")
	if onlyDate.UsedDefaultDate() || !onlyDate.Time.IsDefaulted() {
		t.Errorf("date without time: %+v", onlyDate)
	}
}

func TestRuleTableOrder(t *testing.T) {
	want := []string{"numeric", "day-month-year", "labeled-day-month", "labeled-numeric", "iso", "month-day-year"}
	got := DateRules.Names()
	if len(got) != len(want) {
		t.Fatalf("rules = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rule %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRuleTableFirstWins(t *testing.T) {
	table := RuleTable{
		{Name: "never", Match: func(string) (string, bool) { return "", false }},
		{Name: "first", Match: func(string) (string, bool) { return "a", true }},
		{Name: "second", Match: func(string) (string, bool) { return "b", true }},
	}

	v, rule, ok := table.First("anything")
	if !ok || v != "a" || rule != "first" {
		t.Errorf("First = (%q, %q, %v)", v, rule, ok)
	}

	if _, _, ok := (RuleTable{}).First("x"); ok {
		t.Error("empty table should not match")
	}
}
