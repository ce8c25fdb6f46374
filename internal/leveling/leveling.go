// Package leveling holds the fixed XP progression curve. Levels 2 through 20
// use hand-tuned cumulative thresholds; levels 21 through 50 extend the curve
// by summing the two preceding thresholds. The table is built once at process
// start and never changes.
package leveling

// MaxLevel is a hard ceiling. No level above it exists and its threshold is
// the last defined one.
const MaxLevel = 50

var thresholds = buildThresholds()

func buildThresholds() [MaxLevel]int {
	var t [MaxLevel]int
	base := []int{
		0,      // level 1 (starting level)
		50,     // level 2
		80,     // level 3
		130,    // level 4
		210,    // level 5
		340,    // level 6
		550,    // level 7
		890,    // level 8
		1440,   // level 9
		2330,   // level 10
		3770,   // level 11
		6100,   // level 12
		9870,   // level 13
		15970,  // level 14
		25840,  // level 15
		41810,  // level 16
		67650,  // level 17
		109460, // level 18
		177110, // level 19
		286570, // level 20
	}
	copy(t[:], base)
	for i := len(base); i < MaxLevel; i++ {
		t[i] = t[i-1] + t[i-2]
	}
	return t
}

// XPThreshold returns the cumulative XP required to hold the given level.
// Levels below 1 clamp to 1 and levels above MaxLevel clamp to MaxLevel.
func XPThreshold(level int) int {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return thresholds[level-1]
}

// LevelForXP returns the largest level whose threshold totalXP meets.
// The result is always in [1, MaxLevel].
func LevelForXP(totalXP int) int {
	for level := MaxLevel; level > 1; level-- {
		if totalXP >= thresholds[level-1] {
			return level
		}
	}
	return 1
}

// XPToNext returns how much XP is still needed to reach the next level, or 0
// when the ceiling is reached.
func XPToNext(totalXP, currentLevel int) int {
	if currentLevel >= MaxLevel {
		return 0
	}
	remaining := XPThreshold(currentLevel+1) - totalXP
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ProgressPercent reports how far totalXP sits between the current level's
// threshold and the next one, in [0, 100]. At the ceiling it is 100. Values
// transiently outside the level band clamp rather than escape the range.
func ProgressPercent(totalXP, currentLevel int) float64 {
	if currentLevel >= MaxLevel {
		return 100
	}
	lower := XPThreshold(currentLevel)
	upper := XPThreshold(currentLevel + 1)
	span := upper - lower
	if span <= 0 {
		return 100
	}
	pct := float64(totalXP-lower) / float64(span) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
