package player

import (
	"math"
	"testing"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0:00"},
		{-3, "0:00"},
		{math.NaN(), "0:00"},
		{59.9, "0:59"},
		{61, "1:01"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{5025, "1:23:45"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.in); got != tt.want {
			t.Errorf("FormatTime(%v): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSnapRate(t *testing.T) {
	for _, r := range Rates {
		if got := SnapRate(r); got != r {
			t.Errorf("SnapRate(%v): got %v", r, got)
		}
	}
}
