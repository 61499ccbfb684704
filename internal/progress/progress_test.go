package progress

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyhall/internal/store"
)

// Tuesday.
var fixedNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "progress.db"),
		store.WithClock(clock), store.WithoutDefaultSubjects())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func addRecord(t *testing.T, s *store.Store, subjectID, count int, date string) {
	t.Helper()
	err := s.InTx(context.Background(), func(tx *store.Session) error {
		_, err := tx.Records().Add(context.Background(), subjectID, count, date)
		return err
	})
	require.NoError(t, err)
}

func newSubject(t *testing.T, s *store.Store, name string) store.Subject {
	t.Helper()
	sub, err := s.Session().Subjects().Create(context.Background(), store.NewSubject{Name: name})
	require.NoError(t, err)
	return sub
}

// consecutive returns n consecutive dates ending at last, newest first.
func consecutive(last string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = ShiftDay(last, -i)
	}
	return out
}

func TestStreak(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		want  int
	}{
		{"empty", nil, 0},
		{"today only", []string{"2026-03-10"}, 1},
		{"yesterday grace", []string{"2026-03-09", "2026-03-08"}, 2},
		{"broken two days ago", []string{"2026-03-08", "2026-03-07"}, 0},
		{"hundred days then a gap", consecutive("2026-03-08", 100), 0},
		{"hundred days through yesterday", consecutive("2026-03-09", 100), 100},
		{"three consecutive", []string{"2026-03-10", "2026-03-09", "2026-03-08"}, 3},
		{"gap stops walk", []string{"2026-03-10", "2026-03-09", "2026-03-07"}, 2},
		{"month boundary", []string{"2026-03-02", "2026-03-01", "2026-02-28"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Streak(tt.dates, "2026-03-10"); got != tt.want {
				t.Errorf("Streak() = %d, want %d", got, tt.want)
			}
		})
	}

	// Crossing into March from February.
	assert.Equal(t, 3, Streak([]string{"2026-03-01", "2026-02-28", "2026-02-27"}, "2026-03-01"))
}

func TestBestStreak(t *testing.T) {
	tests := []struct {
		dates []string
		want  int
	}{
		{nil, 0},
		{[]string{"2026-03-10"}, 1},
		{[]string{"2026-03-10", "2026-03-08", "2026-03-07", "2026-03-06", "2026-03-01"}, 3},
		{[]string{"2026-03-10", "2026-03-09", "2026-03-05"}, 2},
	}
	for _, tt := range tests {
		if got := BestStreak(tt.dates); got != tt.want {
			t.Errorf("BestStreak(%v) = %d, want %d", tt.dates, got, tt.want)
		}
	}
}

func TestComputeLevel(t *testing.T) {
	tests := []struct {
		total     int
		wantLevel int
		wantTitle string
		wantNext  int
		wantPct   int
	}{
		{0, 0, "Novice", 10, 0},
		{9, 0, "Novice", 10, 90},
		{10, 1, "Apprentice", 50, 0},
		{30, 1, "Apprentice", 50, 50},
		{100, 3, "Elite", 300, 0},
		{9999, 8, "Champion", 10000, 99},
		{10000, 9, "Supreme", 10000, 100},
		{25000, 9, "Supreme", 10000, 100},
	}
	for _, tt := range tests {
		info := ComputeLevel(tt.total)
		assert.Equal(t, tt.wantLevel, info.Level, "total %d", tt.total)
		assert.Equal(t, tt.wantTitle, info.Title, "total %d", tt.total)
		assert.Equal(t, tt.wantNext, info.NextThreshold, "total %d", tt.total)
		assert.Equal(t, tt.wantPct, info.ProgressToNext, "total %d", tt.total)
	}

	assert.True(t, ComputeLevel(10000).MaxLevel)
	assert.Equal(t, 0, ComputeLevel(10000).Remaining)
	assert.Equal(t, 20, ComputeLevel(30).Remaining)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 100, Percent(150, 20))
	assert.Equal(t, 50, Percent(10, 20))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 0, Percent(5, 0))
	assert.Equal(t, 0, Percent(0, 20))
}

func TestFormatStudyTime(t *testing.T) {
	assert.Equal(t, "0m", FormatStudyTime(0))
	assert.Equal(t, "30m", FormatStudyTime(10))
	assert.Equal(t, "1h 0m", FormatStudyTime(20))
	assert.Equal(t, "2h 30m", FormatStudyTime(50))
}

func TestShiftDayAndDaysBetween(t *testing.T) {
	assert.Equal(t, "2026-02-28", ShiftDay("2026-03-01", -1))
	assert.Equal(t, "2027-01-01", ShiftDay("2026-12-31", 1))
	assert.Equal(t, "garbage", ShiftDay("garbage", 1))
	assert.Equal(t, 3, DaysBetween("2026-03-07", "2026-03-10"))
	assert.Equal(t, -1, DaysBetween("2026-03-10", "2026-03-09"))
}

func TestAggregatorEmpty(t *testing.T) {
	ctx := context.Background()
	agg := New(openStore(t).Session(), clock)

	total, err := agg.TotalCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	today, err := agg.TodayProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, TodayProgress{Current: 0, Target: store.DefaultDailyTarget, Percentage: 0}, today)

	streak, err := agg.StreakDays(ctx)
	require.NoError(t, err)
	assert.Zero(t, streak)

	days, err := agg.DaysSinceLastStudy(ctx)
	require.NoError(t, err)
	assert.Zero(t, days)

	dist, err := agg.SubjectDistribution(ctx)
	require.NoError(t, err)
	assert.Empty(t, dist)
}

func TestAggregatorMetrics(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	algo := newSubject(t, s, "Algorithms")
	math := newSubject(t, s, "Math")

	addRecord(t, s, algo.ID, 15, "2026-03-10")
	addRecord(t, s, math.ID, 10, "2026-03-10")
	addRecord(t, s, algo.ID, 20, "2026-03-09")
	addRecord(t, s, math.ID, 5, "2026-03-08")
	addRecord(t, s, algo.ID, 30, "2026-03-01")

	agg := New(s.Session(), clock)

	total, err := agg.TotalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 80, total)

	today, err := agg.TodayProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, today.Current)
	assert.Equal(t, 100, today.Percentage)

	sub, err := agg.SubjectTodayProgress(ctx, algo.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, sub.Current)
	assert.Equal(t, Percent(15, sub.Target), sub.Percentage)

	streak, err := agg.StreakDays(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, streak)

	best, err := agg.BestStreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, best)

	studied, err := agg.TotalDaysStudied(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, studied)

	level, err := agg.LevelInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Practitioner", level.Title)

	week, err := agg.WeeklyTrend(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-09", week.Start)
	require.Len(t, week.Days, 7)
	assert.Equal(t, 45, week.Total)
	assert.Equal(t, 6.4, week.AvgDaily)
	assert.True(t, week.Days[1].IsToday)

	month, err := agg.MonthlyTrend(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", month.Start)
	assert.Len(t, month.Days, 31)
	assert.Equal(t, 80, month.Total)
	assert.Equal(t, 2.6, month.AvgDaily)

	dist, err := agg.SubjectDistribution(ctx)
	require.NoError(t, err)
	require.Len(t, dist, 2)
	assert.Equal(t, "Algorithms", dist[0].Name)
	assert.Equal(t, 81, dist[0].Percentage)
	assert.Equal(t, 18, dist[1].Percentage)

	detail, err := agg.DateDetail(ctx, "2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, 25, detail.Total)
	require.Len(t, detail.Records, 2)
	assert.Equal(t, "Algorithms", detail.Records[0].SubjectName)
	assert.Equal(t, "1h 15m", detail.StudyTime)

	_, err = agg.DateDetail(ctx, "10/03/2026")
	assert.Error(t, err)
}

func TestHeatmap(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	sub := newSubject(t, s, "Algorithms")

	addRecord(t, s, sub.ID, 25, "2026-03-10")
	addRecord(t, s, sub.ID, 5, "2026-03-09")

	cells, err := New(s.Session(), clock).Heatmap(ctx, 7)
	require.NoError(t, err)
	require.Len(t, cells, 7)

	assert.Equal(t, "2026-03-04", cells[0].Date)
	assert.Equal(t, HeatNone, cells[0].Level)

	yesterday, today := cells[5], cells[6]
	assert.Equal(t, HeatStudied, yesterday.Level)
	assert.False(t, yesterday.TargetMet)
	assert.Equal(t, HeatGoalDone, today.Level)
	assert.True(t, today.TargetMet)
	assert.Equal(t, time.Tuesday, today.Weekday)
}

func TestDaysSinceLastStudy(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	sub := newSubject(t, s, "Algorithms")
	addRecord(t, s, sub.ID, 5, "2026-03-05")

	agg := New(s.Session(), clock)
	days, err := agg.DaysSinceLastStudy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, days)

	ov, err := agg.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-05", ov.LastStudied)
	assert.Zero(t, ov.Streak)
	assert.Equal(t, 1, ov.BestStreak)
	assert.Equal(t, 1, ov.SubjectCount)
}
