package services

import (
	"math"
	"testing"
)

func TestXPForLevel(t *testing.T) {
	tests := []struct {
		level    int
		expected int
	}{
		{1, 100},
		{2, 150},
		{3, 225},
		{4, 337},
		{5, 506},
	}

	for _, tt := range tests {
		if got := XPForLevel(tt.level); got != tt.expected {
			t.Errorf("XPForLevel(%d) = %d, expected %d", tt.level, got, tt.expected)
		}
	}
}

func TestLevelFromXP(t *testing.T) {
	tests := []struct {
		name     string
		xp       int
		expected int
	}{
		{"zero xp is level 1", 0, 1},
		{"just below level 2", 99, 1},
		{"exactly level 2", 100, 2},
		{"mid level 2", 200, 2},
		{"just below level 3", 249, 2},
		{"exactly level 3", 250, 3},
		{"deep into curve", 1000, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelFromXP(tt.xp); got != tt.expected {
				t.Errorf("LevelFromXP(%d) = %d, expected %d", tt.xp, got, tt.expected)
			}
		})
	}
}

func TestProgressFromXP(t *testing.T) {
	// 120 XP: level 2 (100 spent), 20 into the 150 required for level 2
	progress := ProgressFromXP(120)
	if progress.Current != 20 {
		t.Errorf("Current = %d, expected 20", progress.Current)
	}
	if progress.Required != 150 {
		t.Errorf("Required = %d, expected 150", progress.Required)
	}
	wantPct := float64(20) / 150 * 100
	if math.Abs(progress.Percentage-wantPct) > 1e-9 {
		t.Errorf("Percentage = %f, expected %f", progress.Percentage, wantPct)
	}
}

func TestLevelNeverDecreasesWithXP(t *testing.T) {
	prev := 0
	for xp := 0; xp <= 5000; xp += 50 {
		level := LevelFromXP(xp)
		if level < prev {
			t.Fatalf("level dropped from %d to %d at %d XP", prev, level, xp)
		}
		prev = level
	}
}
