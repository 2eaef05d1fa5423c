package services

import (
	"sort"
	"time"
)

// StreakData is derived from raw completed-session timestamps each time;
// nothing here is persisted.
type StreakData struct {
	CurrentStreak     int     `json:"current_streak"`
	LongestStreak     int     `json:"longest_streak"`
	TotalDays         int     `json:"total_days"`
	LastPracticeDate  string  `json:"last_practice_date,omitempty"`
	TodayCompleted    bool    `json:"today_completed"`
	NextMilestone     int     `json:"next_milestone"`
	MilestoneProgress float64 `json:"milestone_progress"`
}

const dateLayout = "2006-01-02"

// CalculateStreaks derives streak state from completed-session timestamps.
// Timestamps are normalized to local calendar dates; duplicates within a
// day collapse to one practice day. now anchors "today" so the walk is
// deterministic in tests.
func CalculateStreaks(completedAt []time.Time, now time.Time) StreakData {
	if len(completedAt) == 0 {
		return StreakData{NextMilestone: 7}
	}

	dateSet := make(map[string]bool)
	for _, ts := range completedAt {
		dateSet[ts.Local().Format(dateLayout)] = true
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	today := now.Local().Format(dateLayout)
	yesterday := now.Local().AddDate(0, 0, -1).Format(dateLayout)
	latest := dates[len(dates)-1]

	// Current streak: anchor on today if practiced today, else yesterday,
	// then walk backward one calendar day at a time until the first gap.
	currentStreak := 0
	if latest == today || latest == yesterday {
		check, _ := time.ParseInLocation(dateLayout, latest, now.Location())
		for dateSet[check.Format(dateLayout)] {
			currentStreak++
			check = check.AddDate(0, 0, -1)
		}
	}

	// Longest streak: scan sorted dates; a gap of exactly one day extends
	// the run, anything else resets it.
	longestStreak := 0
	tempStreak := 1
	for i := 1; i < len(dates); i++ {
		prev, _ := time.ParseInLocation(dateLayout, dates[i-1], now.Location())
		curr, _ := time.ParseInLocation(dateLayout, dates[i], now.Location())
		if prev.AddDate(0, 0, 1).Equal(curr) {
			tempStreak++
		} else {
			if tempStreak > longestStreak {
				longestStreak = tempStreak
			}
			tempStreak = 1
		}
	}
	if tempStreak > longestStreak {
		longestStreak = tempStreak
	}

	milestone, progress := milestoneProgress(currentStreak)

	return StreakData{
		CurrentStreak:     currentStreak,
		LongestStreak:     longestStreak,
		TotalDays:         len(dateSet),
		LastPracticeDate:  latest,
		TodayCompleted:    latest == today,
		NextMilestone:     milestone,
		MilestoneProgress: progress,
	}
}

// milestoneProgress computes the fraction toward the next streak milestone.
// Bands are 0-7, 7-14, and 14-30 days; each band's progress is measured
// within the band, not from zero.
func milestoneProgress(streak int) (int, float64) {
	switch {
	case streak < 7:
		return 7, float64(streak) / 7
	case streak < 14:
		return 14, float64(streak-7) / 7
	case streak < 30:
		return 30, float64(streak-14) / 16
	default:
		return 30, 1
	}
}
