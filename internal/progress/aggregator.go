// Package progress turns raw study records into the metrics the
// achievement engine and the UI display: today's progress, totals,
// streaks, levels and historical statistics.
package progress

import (
	"context"
	"time"

	"github.com/abhisek/studyhall/internal/store"
)

// Clock returns the current time.
type Clock func() time.Time

// TodayProgress is the progress towards a daily target.
type TodayProgress struct {
	Current    int `json:"current"`
	Target     int `json:"target"`
	Percentage int `json:"percentage"`
}

// Aggregator computes read-only metrics within one store session.
// Empty data yields zero values; errors come only from storage.
type Aggregator struct {
	sess *store.Session
	now  Clock
}

// New returns an Aggregator reading through sess. A nil clock uses
// time.Now.
func New(sess *store.Session, now Clock) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{sess: sess, now: now}
}

// Today returns the current local date in store.DateLayout.
func (a *Aggregator) Today() string {
	return a.now().Format(store.DateLayout)
}

// TotalCount returns the sum of total_count across active subjects.
func (a *Aggregator) TotalCount(ctx context.Context) (int, error) {
	return a.sess.Subjects().SumTotals(ctx)
}

// TodayProgress returns today's count across all subjects against the
// user's daily target.
func (a *Aggregator) TodayProgress(ctx context.Context) (TodayProgress, error) {
	current, err := a.sess.Records().SumOn(ctx, a.Today())
	if err != nil {
		return TodayProgress{}, err
	}
	user, err := a.sess.Users().Get(ctx)
	if err != nil {
		return TodayProgress{}, err
	}
	return TodayProgress{
		Current:    current,
		Target:     user.DailyTarget,
		Percentage: Percent(current, user.DailyTarget),
	}, nil
}

// SubjectTodayProgress returns today's count for one subject against its
// own daily target.
func (a *Aggregator) SubjectTodayProgress(ctx context.Context, subjectID int) (TodayProgress, error) {
	sub, err := a.sess.Subjects().Get(ctx, subjectID)
	if err != nil {
		return TodayProgress{}, err
	}
	current, err := a.sess.Records().SubjectSumOn(ctx, subjectID, a.Today())
	if err != nil {
		return TodayProgress{}, err
	}
	return TodayProgress{
		Current:    current,
		Target:     sub.DailyTarget,
		Percentage: Percent(current, sub.DailyTarget),
	}, nil
}

// StreakDays returns the current streak length. See Streak.
func (a *Aggregator) StreakDays(ctx context.Context) (int, error) {
	dates, err := a.sess.Records().DistinctDates(ctx)
	if err != nil {
		return 0, err
	}
	return Streak(dates, a.Today()), nil
}

// LevelInfo returns the level for the current total count.
func (a *Aggregator) LevelInfo(ctx context.Context) (LevelInfo, error) {
	total, err := a.TotalCount(ctx)
	if err != nil {
		return LevelInfo{}, err
	}
	return ComputeLevel(total), nil
}

// Percent returns floor(current/target*100) clamped to 100. A
// non-positive target yields 0.
func Percent(current, target int) int {
	if target <= 0 {
		return 0
	}
	return min(100, current*100/target)
}
