package extraction

import "testing"

func TestFutureFilter(t *testing.T) {
	f := NewFutureFilter(fixedNow)

	tests := []struct {
		date string
		want bool
	}{
		{"15/03/2026", true},
		{"2026-03-15", true},
		{"16 March 2026", true},
		{"14/03/2026", false},
		{"December 31, 2025", false},
		{"2027/01/01", true},
		{"next week", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := f.IsFuture(tt.date); got != tt.want {
			t.Errorf("IsFuture(%q) = %v, want %v", tt.date, got, tt.want)
		}
	}
}
