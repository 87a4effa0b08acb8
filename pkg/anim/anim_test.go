package anim

import (
	"testing"
	"time"
)

func TestTweenSample(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tw := &Tween{From: 0, To: 100, Start: start, Duration: time.Second}

	tests := []struct {
		name string
		at   time.Duration
		want float64
	}{
		{"before start", -time.Second, 0},
		{"at start", 0, 0},
		{"quarter", 250 * time.Millisecond, 25},
		{"half", 500 * time.Millisecond, 50},
		{"end", time.Second, 100},
		{"after end", 3 * time.Second, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tw.Sample(start.Add(tt.at)); got != tt.want {
				t.Errorf("Sample(+%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestTweenLoop(t *testing.T) {
	start := time.Unix(0, 0)
	tw := &Tween{From: 10, To: 20, Start: start, Duration: time.Second, Loop: true}
	if got := tw.Sample(start.Add(1500 * time.Millisecond)); got != 15 {
		t.Errorf("looped Sample = %v, want 15", got)
	}
	if tw.Done(start.Add(time.Hour)) {
		t.Error("looping tween reported done")
	}
}

func TestVar(t *testing.T) {
	v := NewVar(1)
	v.Set(0.25)
	if got := v.Sample(time.Time{}); got != 0.25 {
		t.Errorf("Sample() = %v, want 0.25", got)
	}
	var s Source = Constant(3)
	if s.Sample(time.Time{}) != 3 {
		t.Error("Constant sample mismatch")
	}
}

func TestRound(t *testing.T) {
	if Round(2.5) != 3 || Round(-2.5) != -3 || Round(2.49) != 2 {
		t.Error("Round mismatch")
	}
}
