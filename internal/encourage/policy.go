package encourage

import (
	"slices"
	"sync"
	"time"
)

// DefaultMinInterval is the minimum time between two successful
// encouragement requests.
const DefaultMinInterval = 300 * time.Second

// Trigger thresholds.
const (
	BigProgressCount = 50
	ComebackDays     = 3
)

// StreakMilestones are the streak lengths that fire SceneStreak.
var StreakMilestones = []int{7, 30, 100}

// Facts is what a submission reports to the policy.
type Facts struct {
	TodayCurrent int
	TodayTarget  int
	StreakDays   int
	// Count is the size of the submission.
	Count int
	// DaysSinceLast is measured before the submission was recorded.
	DaysSinceLast int
	// Unlocked is the number of achievements the submission triggered.
	Unlocked int
}

// Policy decides which scenes fire and rate-limits them. The last
// success time lives in memory only.
type Policy struct {
	mu          sync.Mutex
	minInterval time.Duration
	now         func() time.Time
	lastSuccess time.Time
}

// NewPolicy returns a Policy. A non-positive interval uses
// DefaultMinInterval and a nil clock uses time.Now.
func NewPolicy(minInterval time.Duration, now func() time.Time) *Policy {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	if now == nil {
		now = time.Now
	}
	return &Policy{minInterval: minInterval, now: now}
}

// Ready reports whether the minimum interval has passed since the last
// success.
func (p *Policy) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSuccess.IsZero() || p.now().Sub(p.lastSuccess) >= p.minInterval
}

// MarkSuccess records a successful request at the current time.
func (p *Policy) MarkSuccess() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastSuccess = p.now()
}

// Check reports whether scene fires for f, honoring the interval.
func (p *Policy) Check(scene Scene, f Facts) bool {
	return p.Ready() && Holds(scene, f)
}

// Evaluate returns the submission scenes that fire for f in priority
// order, or nil inside the minimum interval. SceneManual is never
// returned.
func (p *Policy) Evaluate(f Facts) []Scene {
	if !p.Ready() {
		return nil
	}
	var out []Scene
	for _, s := range AllScenes() {
		if s != SceneManual && Holds(s, f) {
			out = append(out, s)
		}
	}
	return out
}

// Holds reports whether the condition of scene is met, ignoring the
// interval.
func Holds(scene Scene, f Facts) bool {
	switch scene {
	case SceneDailyGoal:
		return f.TodayCurrent >= f.TodayTarget
	case SceneAchievement:
		return f.Unlocked > 0
	case SceneStreak:
		return slices.Contains(StreakMilestones, f.StreakDays)
	case SceneBigProgress:
		return f.Count >= BigProgressCount
	case SceneComeback:
		return f.DaysSinceLast >= ComebackDays
	case SceneManual:
		return true
	default:
		return false
	}
}
