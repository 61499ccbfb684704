package stats

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyhall/internal/progress"
	"github.com/abhisek/studyhall/internal/screen/screentest"
)

func TestLoadAndViews(t *testing.T) {
	env := screentest.New(t)
	ctx := context.Background()
	math := env.AddSubject(t, "Math", 10)
	chem := env.AddSubject(t, "Chemistry", 10)

	_, err := env.Services.Study.AddRecord(ctx, math.ID, 30)
	require.NoError(t, err)
	env.Clock.T = env.Clock.T.Add(24 * time.Hour)
	_, err = env.Services.Study.AddRecord(ctx, chem.ID, 10)
	require.NoError(t, err)

	s := New(env.Services)
	screentest.Run(s, s.Init()(), 1)
	require.True(t, s.loaded)
	require.Empty(t, s.errMsg)

	assert.Equal(t, 40, s.data.Overview.Total)
	assert.Equal(t, 2, s.data.Overview.BestStreak)
	assert.Len(t, s.data.Week.Days, 7)
	assert.Len(t, s.data.Heatmap, heatmapWeeks*7)
	require.Len(t, s.data.Subjects, 2)
	assert.Equal(t, "Math", s.data.Subjects[0].Name)

	for _, want := range []string{"avg", "avg", "Math", "goal met"} {
		assert.Contains(t, s.View(100, 40), want, "view %s", viewNames[s.tab])
		screentest.Run(s, screentest.Key("tab"), 1)
	}
}

func TestDigitJumpsToView(t *testing.T) {
	env := screentest.New(t)
	s := New(env.Services)
	screentest.Run(s, screentest.Key("4"), 1)
	assert.Equal(t, viewHeatmap, s.tab)
	screentest.Run(s, screentest.Key("left"), 1)
	assert.Equal(t, viewSubjects, s.tab)
}

func TestRenderHeatmapPlacesCellsByWeekday(t *testing.T) {
	// 2026-03-04 is a Wednesday.
	cells := []progress.HeatCell{
		{Date: "2026-03-04", Weekday: time.Wednesday, Level: progress.HeatStudied},
		{Date: "2026-03-05", Weekday: time.Thursday, Level: progress.HeatNone},
		{Date: "2026-03-06", Weekday: time.Friday, Level: progress.HeatGoalDone},
	}
	out := RenderHeatmap(cells)
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 7)
	assert.Contains(t, lines[2], "■", "Wednesday row holds the studied cell")
	assert.Contains(t, lines[3], "·", "Thursday row holds the empty cell")
	assert.Contains(t, lines[4], "■", "Friday row holds the goal cell")
	assert.NotContains(t, lines[0], "■")
}

func TestRenderTrendScalesToPeak(t *testing.T) {
	tr := progress.Trend{
		Days:     []progress.DayCount{{Date: "2026-03-09", Count: 10}, {Date: "2026-03-10", Count: 5, IsToday: true}},
		Total:    15,
		AvgDaily: 7.5,
	}
	out := RenderTrend(tr, monthLabel, 36)
	lines := strings.Split(out, "\n")
	assert.Equal(t, 20, strings.Count(lines[0], "█"))
	assert.Equal(t, 10, strings.Count(lines[1], "█"))
	assert.Contains(t, out, "avg 7.5")
}
