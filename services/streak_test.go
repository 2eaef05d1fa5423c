package services

import (
	"testing"
	"time"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, time.Local)
	if err != nil {
		t.Fatalf("bad test date %q: %v", value, err)
	}
	return ts
}

func TestCalculateStreaks(t *testing.T) {
	now := day(t, "2025-06-10 14:00")

	tests := []struct {
		name          string
		completed     []string
		wantCurrent   int
		wantLongest   int
		wantTotal     int
		wantToday     bool
		wantMilestone int
	}{
		{
			name:          "no history",
			completed:     nil,
			wantCurrent:   0,
			wantLongest:   0,
			wantTotal:     0,
			wantToday:     false,
			wantMilestone: 7,
		},
		{
			name:          "single session today",
			completed:     []string{"2025-06-10 09:00"},
			wantCurrent:   1,
			wantLongest:   1,
			wantTotal:     1,
			wantToday:     true,
			wantMilestone: 7,
		},
		{
			name:          "streak anchored on yesterday",
			completed:     []string{"2025-06-08 20:00", "2025-06-09 08:00"},
			wantCurrent:   2,
			wantLongest:   2,
			wantTotal:     2,
			wantToday:     false,
			wantMilestone: 7,
		},
		{
			name:          "gap before today breaks current streak",
			completed:     []string{"2025-06-05 10:00", "2025-06-06 10:00", "2025-06-08 10:00"},
			wantCurrent:   0,
			wantLongest:   2,
			wantTotal:     3,
			wantToday:     false,
			wantMilestone: 7,
		},
		{
			name: "multiple sessions per day collapse",
			completed: []string{
				"2025-06-09 08:00", "2025-06-09 21:00",
				"2025-06-10 07:00", "2025-06-10 12:00",
			},
			wantCurrent:   2,
			wantLongest:   2,
			wantTotal:     2,
			wantToday:     true,
			wantMilestone: 7,
		},
		{
			name: "longest streak in the past exceeds current",
			completed: []string{
				"2025-05-01 10:00", "2025-05-02 10:00", "2025-05-03 10:00", "2025-05-04 10:00",
				"2025-06-10 10:00",
			},
			wantCurrent:   1,
			wantLongest:   4,
			wantTotal:     5,
			wantToday:     true,
			wantMilestone: 7,
		},
		{
			name: "seven day streak reaches next milestone band",
			completed: []string{
				"2025-06-04 10:00", "2025-06-05 10:00", "2025-06-06 10:00",
				"2025-06-07 10:00", "2025-06-08 10:00", "2025-06-09 10:00",
				"2025-06-10 10:00",
			},
			wantCurrent:   7,
			wantLongest:   7,
			wantTotal:     7,
			wantToday:     true,
			wantMilestone: 14,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var timestamps []time.Time
			for _, c := range tt.completed {
				timestamps = append(timestamps, day(t, c))
			}

			got := CalculateStreaks(timestamps, now)

			if got.CurrentStreak != tt.wantCurrent {
				t.Errorf("CurrentStreak = %d, expected %d", got.CurrentStreak, tt.wantCurrent)
			}
			if got.LongestStreak != tt.wantLongest {
				t.Errorf("LongestStreak = %d, expected %d", got.LongestStreak, tt.wantLongest)
			}
			if got.TotalDays != tt.wantTotal {
				t.Errorf("TotalDays = %d, expected %d", got.TotalDays, tt.wantTotal)
			}
			if got.TodayCompleted != tt.wantToday {
				t.Errorf("TodayCompleted = %v, expected %v", got.TodayCompleted, tt.wantToday)
			}
			if got.NextMilestone != tt.wantMilestone {
				t.Errorf("NextMilestone = %d, expected %d", got.NextMilestone, tt.wantMilestone)
			}
		})
	}
}

func TestMilestoneProgress(t *testing.T) {
	tests := []struct {
		streak        int
		wantMilestone int
		wantProgress  float64
	}{
		{0, 7, 0},
		{3, 7, 3.0 / 7},
		{7, 14, 0},
		{10, 14, 3.0 / 7},
		{14, 30, 0},
		{22, 30, 8.0 / 16},
		{30, 30, 1},
		{45, 30, 1},
	}

	for _, tt := range tests {
		milestone, progress := milestoneProgress(tt.streak)
		if milestone != tt.wantMilestone {
			t.Errorf("milestoneProgress(%d) milestone = %d, expected %d", tt.streak, milestone, tt.wantMilestone)
		}
		if progress != tt.wantProgress {
			t.Errorf("milestoneProgress(%d) progress = %f, expected %f", tt.streak, progress, tt.wantProgress)
		}
	}
}
