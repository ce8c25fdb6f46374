package leveling

import "testing"

func TestXPThresholdKnownValues(t *testing.T) {
	cases := []struct {
		level int
		want  int
	}{
		{1, 0},
		{2, 50},
		{3, 80},
		{5, 210},
		{10, 2330},
		{20, 286570},
		{21, 463680},  // 286570 + 177110
		{22, 750250},  // 463680 + 286570
		{23, 1213930}, // 750250 + 463680
	}
	for _, c := range cases {
		if got := XPThreshold(c.level); got != c.want {
			t.Errorf("XPThreshold(%d) = %d, want %d", c.level, got, c.want)
		}
	}
}

func TestXPThresholdClampsOutOfRange(t *testing.T) {
	if got := XPThreshold(0); got != 0 {
		t.Errorf("XPThreshold(0) = %d, want 0", got)
	}
	if got := XPThreshold(-5); got != 0 {
		t.Errorf("XPThreshold(-5) = %d, want 0", got)
	}
	if got := XPThreshold(99); got != XPThreshold(MaxLevel) {
		t.Errorf("XPThreshold(99) = %d, want %d", got, XPThreshold(MaxLevel))
	}
}

func TestThresholdsStrictlyAscending(t *testing.T) {
	for level := 2; level <= MaxLevel; level++ {
		if XPThreshold(level) <= XPThreshold(level-1) {
			t.Fatalf("threshold for level %d (%d) not above level %d (%d)",
				level, XPThreshold(level), level-1, XPThreshold(level-1))
		}
	}
}

func TestLevelForXPRoundTrip(t *testing.T) {
	for level := 1; level <= MaxLevel; level++ {
		if got := LevelForXP(XPThreshold(level)); got != level {
			t.Errorf("LevelForXP(XPThreshold(%d)) = %d, want %d", level, got, level)
		}
	}
}

func TestLevelForXPBounds(t *testing.T) {
	cases := []struct {
		totalXP int
		want    int
	}{
		{0, 1},
		{49, 1},
		{50, 2},
		{55, 2},
		{79, 2},
		{80, 3},
		{286569, 19},
		{286570, 20},
		{1 << 40, MaxLevel},
	}
	for _, c := range cases {
		if got := LevelForXP(c.totalXP); got != c.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", c.totalXP, got, c.want)
		}
	}
}

func TestLevelForXPNonDecreasing(t *testing.T) {
	prev := 1
	for xp := 0; xp <= 500000; xp += 7 {
		level := LevelForXP(xp)
		if level < 1 || level > MaxLevel {
			t.Fatalf("LevelForXP(%d) = %d out of [1,%d]", xp, level, MaxLevel)
		}
		if level < prev {
			t.Fatalf("LevelForXP decreased at xp=%d: %d -> %d", xp, prev, level)
		}
		prev = level
	}
}

func TestXPToNext(t *testing.T) {
	if got := XPToNext(45, 1); got != 5 {
		t.Errorf("XPToNext(45, 1) = %d, want 5", got)
	}
	if got := XPToNext(50, 2); got != 30 {
		t.Errorf("XPToNext(50, 2) = %d, want 30", got)
	}
	if got := XPToNext(100, 1); got != 0 {
		t.Errorf("XPToNext past threshold = %d, want 0", got)
	}
	if got := XPToNext(1<<40, MaxLevel); got != 0 {
		t.Errorf("XPToNext at ceiling = %d, want 0", got)
	}
}

func TestProgressPercent(t *testing.T) {
	if got := ProgressPercent(0, 1); got != 0 {
		t.Errorf("at threshold: got %f, want 0", got)
	}
	if got := ProgressPercent(25, 1); got != 50 {
		t.Errorf("halfway through level 1: got %f, want 50", got)
	}
	if got := ProgressPercent(49, 1); got >= 100 {
		t.Errorf("just below next threshold: got %f, want < 100", got)
	}
	if got := ProgressPercent(123, MaxLevel); got != 100 {
		t.Errorf("at ceiling: got %f, want 100", got)
	}
	// Defensive clamps for values outside the level band.
	if got := ProgressPercent(10, 3); got != 0 {
		t.Errorf("below band: got %f, want 0", got)
	}
	if got := ProgressPercent(10000, 2); got != 100 {
		t.Errorf("above band: got %f, want 100", got)
	}
}

func TestProgressPercentMonotonicWithinBand(t *testing.T) {
	prev := -1.0
	for xp := 50; xp < 80; xp++ {
		pct := ProgressPercent(xp, 2)
		if pct < prev {
			t.Fatalf("progress decreased at xp=%d: %f -> %f", xp, prev, pct)
		}
		if pct < 0 || pct > 100 {
			t.Fatalf("progress out of range at xp=%d: %f", xp, pct)
		}
		prev = pct
	}
}
