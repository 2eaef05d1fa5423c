package services

import "math"

// XPProgress describes how far into the current level a user is
type XPProgress struct {
	Current    int     `json:"current"`
	Required   int     `json:"required"`
	Percentage float64 `json:"percentage"`
}

// XPForLevel returns the XP required to clear a given level. The curve is
// 100 * 1.5^(level-1), floored.
func XPForLevel(level int) int {
	return int(math.Floor(100 * math.Pow(1.5, float64(level-1))))
}

// LevelFromXP walks the level curve until the cumulative requirement
// exceeds the given XP total.
func LevelFromXP(xp int) int {
	level := 1
	totalXP := 0
	for totalXP+XPForLevel(level) <= xp {
		totalXP += XPForLevel(level)
		level++
	}
	return level
}

// ProgressFromXP returns progress within the user's current level
func ProgressFromXP(xp int) XPProgress {
	level := LevelFromXP(xp)
	totalForCurrent := 0
	for i := 1; i < level; i++ {
		totalForCurrent += XPForLevel(i)
	}
	current := xp - totalForCurrent
	required := XPForLevel(level)
	return XPProgress{
		Current:    current,
		Required:   required,
		Percentage: float64(current) / float64(required) * 100,
	}
}
