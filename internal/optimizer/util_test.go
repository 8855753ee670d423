package optimizer

import (
	"math"
	"testing"
)

func TestRoundTo(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		places int32
		want   float64
	}{
		{name: "half up at two places", value: 2.675, places: 2, want: 2.68},
		{name: "one place", value: 2.46, places: 1, want: 2.5},
		{name: "nan becomes zero", value: math.NaN(), places: 2, want: 0},
		{name: "inf becomes zero", value: math.Inf(1), places: 2, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := roundTo(tt.value, tt.places); got != tt.want {
				t.Errorf("roundTo(%v, %d) = %v, want %v", tt.value, tt.places, got, tt.want)
			}
		})
	}
}

func TestToIntTruncates(t *testing.T) {
	tests := []struct {
		value float64
		want  int
	}{
		{value: 110.65, want: 110},
		{value: 110.99, want: 110},
		{value: 0.4, want: 0},
		{value: -0.9, want: 0},
		{value: -2.5, want: -2},
		{value: math.NaN(), want: 0},
		{value: math.Inf(-1), want: 0},
	}

	for _, tt := range tests {
		if got := toInt(tt.value); got != tt.want {
			t.Errorf("toInt(%v) = %d, want %d", tt.value, got, tt.want)
		}
	}
}
