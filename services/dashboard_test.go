package services

import "testing"

func TestSafeRatio(t *testing.T) {
	tests := []struct {
		name string
		num  int
		den  int
		want float64
	}{
		{"zero denominator", 5, 0, 0},
		{"zero numerator", 0, 10, 0},
		{"half", 5, 10, 0.5},
		{"whole", 10, 10, 1},
		{"third", 1, 3, 1.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := safeRatio(tt.num, tt.den); got != tt.want {
				t.Errorf("safeRatio(%d, %d) = %v, want %v", tt.num, tt.den, got, tt.want)
			}
		})
	}
}
