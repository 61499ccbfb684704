package home

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyhall/internal/progress"
	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/screen/screentest"
	"github.com/abhisek/studyhall/internal/screens/record"
)

func TestLoadDashboard(t *testing.T) {
	env := screentest.New(t)
	ctx := context.Background()
	math := env.AddSubject(t, "Math", 10)
	env.AddSubject(t, "Chemistry", 10)

	_, err := env.Services.Study.AddRecord(ctx, math.ID, 12)
	require.NoError(t, err)

	d, err := LoadDashboard(ctx, env.Services)
	require.NoError(t, err)
	assert.Equal(t, 12, d.Total)
	assert.Equal(t, 1, d.Streak)
	assert.Equal(t, 12, d.Today.Current)
	require.Len(t, d.Subjects, 2)
	assert.Equal(t, 12, d.Subjects[0].Today.Current)
	assert.Equal(t, 100, d.Subjects[0].Today.Percentage)
	assert.Positive(t, d.Unlocked)
	assert.Positive(t, d.Achievements)
}

func TestPickMascot(t *testing.T) {
	tests := []struct {
		name string
		d    Dashboard
		want MascotVariant
	}{
		{"goal met", Dashboard{Today: progress.TodayProgress{Current: 20, Target: 20}, Streak: 3}, MascotCelebrating},
		{"streak at risk", Dashboard{Today: progress.TodayProgress{Target: 20}, Streak: 3}, MascotAlert},
		{"long break", Dashboard{Today: progress.TodayProgress{Target: 20}, DaysSinceLast: 5}, MascotSleepy},
		{"in progress", Dashboard{Today: progress.TodayProgress{Current: 5, Target: 20}, Streak: 1}, MascotIdle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PickMascot(tt.d))
		})
	}
}

func TestMenuShortcutPushesRecord(t *testing.T) {
	env := screentest.New(t)
	h := New(env.Services)
	screentest.Run(h, h.Init()(), 1)
	require.True(t, h.loaded)

	_, msgs := screentest.Run(h, screentest.Key("r"), 1)
	require.Len(t, msgs, 1)
	push, ok := msgs[0].(router.PushScreenMsg)
	require.True(t, ok, "expected PushScreenMsg, got %T", msgs[0])
	assert.IsType(t, &record.RecordScreen{}, push.Screen)
}

func TestEncouragementItemsDisabledWithoutService(t *testing.T) {
	env := screentest.New(t)
	svc := env.Services
	svc.Encourage = nil
	h := New(svc)

	_, msgs := screentest.Run(h, screentest.Key("e"), 1)
	assert.Empty(t, msgs)
	assert.True(t, h.menu.DisabledSet()[3])
}

func TestViewsRenderBothSizes(t *testing.T) {
	env := screentest.New(t)
	env.AddSubject(t, "Math", 10)
	h := New(env.Services)
	screentest.Run(h, h.Init()(), 1)

	assert.Contains(t, h.View(80, 18), "RECORD")
	assert.Contains(t, h.View(140, 40), "Math")
}

func TestRefreshPicksUpNewDay(t *testing.T) {
	env := screentest.New(t)
	math := env.AddSubject(t, "Math", 10)
	_, err := env.Services.Study.AddRecord(context.Background(), math.ID, 10)
	require.NoError(t, err)

	h := New(env.Services)
	screentest.Run(h, h.Init()(), 1)
	assert.Equal(t, 10, h.dash.Today.Current)

	env.Clock.T = env.Clock.T.Add(24 * time.Hour)
	var rf screen.Refresher = h
	screentest.Run(h, rf.Refresh()(), 1)
	assert.Equal(t, 0, h.dash.Today.Current)
	assert.Equal(t, 1, h.dash.Streak, "yesterday still anchors the streak")
	assert.Equal(t, MascotAlert, PickMascot(h.dash))
}
