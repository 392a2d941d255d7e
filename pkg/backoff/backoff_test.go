package backoff

import (
	"testing"
	"time"
)

func TestExponential(t *testing.T) {
	tests := []struct {
		n    int
		want time.Duration
	}{
		{-1, 30 * time.Second},
		{0, 30 * time.Second},
		{1, time.Minute},
		{2, 2 * time.Minute},
		{3, 4 * time.Minute},
	}
	for _, tt := range tests {
		if got := Exponential(tt.n); got != tt.want {
			t.Errorf("Exponential(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}
