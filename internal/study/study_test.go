package study

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyhall/internal/achievements"
	"github.com/abhisek/studyhall/internal/encourage"
	"github.com/abhisek/studyhall/internal/store"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newService(t *testing.T) (*Service, *store.Store, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), store.WithClock(c.now), store.WithoutDefaultSubjects())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	engine := achievements.NewEngine(st, c.now, nil)
	_, err = engine.EnsureCatalog(context.Background(), achievements.Presets())
	require.NoError(t, err)

	return New(st, engine, encourage.NewPolicy(0, c.now), c.now, nil), st, c
}

func addSubject(t *testing.T, svc *Service, name string, daily int) store.Subject {
	t.Helper()
	sub, err := svc.AddSubject(context.Background(), store.NewSubject{Name: name, DailyTarget: daily})
	require.NoError(t, err)
	return sub
}

func findUnlock(unlocks []achievements.Unlock, name string) (achievements.Unlock, bool) {
	for _, u := range unlocks {
		if u.Achievement.Name == name {
			return u, true
		}
	}
	return achievements.Unlock{}, false
}

func TestEndToEndSubmission(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	math := addSubject(t, svc, "Math", 20)
	require.NoError(t, svc.SaveGoals(ctx, map[int]int{math.ID: 20}, nil))

	first, err := svc.AddRecord(ctx, math.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, 25, first.Today.Current)
	assert.Equal(t, 20, first.Today.Target)
	assert.Equal(t, 100, first.Today.Percentage)

	squall, ok := findUnlock(first.Unlocked, "Squall")
	require.True(t, ok, "speed achievement for 20 in one submission")
	assert.True(t, squall.IsFirst)
	assert.Equal(t, 1, squall.Count)
	_, ok = findUnlock(first.Unlocked, "Daybreak")
	assert.True(t, ok)

	second, err := svc.AddRecord(ctx, math.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, 50, second.Today.Current)
	assert.Equal(t, 50, second.Record.Count)

	squall, ok = findUnlock(second.Unlocked, "Squall")
	require.True(t, ok)
	assert.False(t, squall.IsFirst)
	assert.Equal(t, 2, squall.Count)
	_, ok = findUnlock(second.Unlocked, "Daybreak")
	assert.False(t, ok, "non-repeatable achievements unlock once")

	sub, err := st.Session().Subjects().Get(ctx, math.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, sub.TotalCount)
	require.NoError(t, svc.VerifyTotals(ctx))
}

func TestAddRecordValidation(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.AddRecord(ctx, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidCount)
	_, err = svc.AddRecord(ctx, 1, -3)
	assert.ErrorIs(t, err, ErrInvalidCount)
	_, err = svc.AddRecord(ctx, 999, 5)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTotalCountConsistency(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	a := addSubject(t, svc, "A", 0)
	b := addSubject(t, svc, "B", 0)

	want := map[int]int{}
	for i, n := range []int{3, 8, 1, 13, 5, 2} {
		id := a.ID
		if i%2 == 1 {
			id = b.ID
		}
		_, err := svc.AddRecord(ctx, id, n)
		require.NoError(t, err)
		want[id] += n
	}

	total, err := svc.Aggregator().TotalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, want[a.ID]+want[b.ID], total)

	sums, err := st.Session().Records().SumsBySubject(ctx)
	require.NoError(t, err)
	recorded := 0
	for _, s := range sums {
		recorded += s.Total
		assert.Equal(t, want[s.SubjectID], s.Total)
	}
	assert.Equal(t, total, recorded)
}

func TestScenesAndEncouragementRequest(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	sub := addSubject(t, svc, "Reading", 0)

	res, err := svc.AddRecord(ctx, sub.ID, 60)
	require.NoError(t, err)
	require.NotEmpty(t, res.Unlocked)
	assert.Equal(t, []encourage.Scene{encourage.SceneAchievement, encourage.SceneDailyGoal, encourage.SceneBigProgress}, res.Scenes)

	req, ok := res.EncouragementRequest()
	require.True(t, ok)
	assert.Equal(t, encourage.SceneAchievement, req.Scene)
	assert.Equal(t, 60, req.Values["count"])
	assert.Equal(t, res.Unlocked[0].Achievement.Name, req.Values["achievement_name"])

	var empty SubmitResult
	_, ok = empty.EncouragementRequest()
	assert.False(t, ok)
}

func TestComebackMeasuredBeforeSubmission(t *testing.T) {
	svc, st, c := newService(t)
	ctx := context.Background()
	sub := addSubject(t, svc, "History", 0)

	err := st.InTx(ctx, func(tx *store.Session) error {
		_, err := tx.Records().Add(ctx, sub.ID, 2, "2026-03-05")
		return err
	})
	require.NoError(t, err)

	res, err := svc.AddRecord(ctx, sub.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, res.DaysSinceLast)
	assert.Contains(t, res.Scenes, encourage.SceneComeback)

	c.t = c.t.Add(time.Hour)
	res, err = svc.AddRecord(ctx, sub.ID, 1)
	require.NoError(t, err)
	assert.Zero(t, res.DaysSinceLast)
}

func TestSubjectManagement(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	sub := addSubject(t, svc, "  Physics ", 10)
	assert.Equal(t, "Physics", sub.Name)

	_, err := svc.AddSubject(ctx, store.NewSubject{Name: "Physics"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
	_, err = svc.AddSubject(ctx, store.NewSubject{Name: "   "})
	assert.Error(t, err)

	require.NoError(t, svc.RenameSubject(ctx, sub.ID, "Mechanics"))
	got, err := svc.SubjectByName(ctx, "Mechanics")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, got.ID)

	assert.ErrorIs(t, svc.UpdateDailyTarget(ctx, sub.ID, 0), ErrInvalidTarget)
	require.NoError(t, svc.UpdateDailyTarget(ctx, sub.ID, 15))
	require.NoError(t, svc.UpdateTotalTarget(ctx, sub.ID, 500))
	got, err = svc.Subject(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, got.DailyTarget)
	assert.Equal(t, 500, got.TotalTarget)

	_, err = svc.AddRecord(ctx, sub.ID, 4)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteSubject(ctx, sub.ID))
	assert.ErrorIs(t, svc.DeleteSubject(ctx, sub.ID), store.ErrNotFound)

	subs, err := svc.Subjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs)
	total, err := svc.Aggregator().TotalCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSaveGoals(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	a := addSubject(t, svc, "A", 10)
	b := addSubject(t, svc, "B", 10)

	require.NoError(t, svc.SaveGoals(ctx, map[int]int{a.ID: 12, b.ID: 8}, map[int]int{a.ID: 1000, b.ID: 500}))
	user, err := svc.User(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, user.DailyTarget)
	assert.Equal(t, 1500, user.TotalTarget)

	err = svc.SaveGoals(ctx, map[int]int{a.ID: 30, 999: 5}, nil)
	assert.ErrorIs(t, err, store.ErrNotFound)
	got, err := svc.Subject(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, got.DailyTarget, "failed save rolls back")

	assert.ErrorIs(t, svc.SaveGoals(ctx, map[int]int{a.ID: 0}, nil), ErrInvalidTarget)
}

func TestClearOperationsKeepCounters(t *testing.T) {
	svc, st, c := newService(t)
	ctx := context.Background()
	a := addSubject(t, svc, "A", 0)
	b := addSubject(t, svc, "B", 0)

	err := st.InTx(ctx, func(tx *store.Session) error {
		if _, err := tx.Records().Add(ctx, a.ID, 7, "2026-03-09"); err != nil {
			return err
		}
		_, err := tx.Records().Add(ctx, b.ID, 4, "2026-03-09")
		return err
	})
	require.NoError(t, err)
	_, err = svc.AddRecord(ctx, a.ID, 5)
	require.NoError(t, err)
	_, err = svc.AddRecord(ctx, b.ID, 3)
	require.NoError(t, err)

	n, err := svc.ClearToday(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	require.NoError(t, svc.VerifyTotals(ctx))
	got, err := svc.Subject(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.TotalCount)

	n, err = svc.ClearSubject(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.NoError(t, svc.VerifyTotals(ctx))
	_, err = svc.ClearSubject(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)

	c.t = c.t.Add(time.Minute)
	require.NoError(t, svc.ClearAll(ctx))
	require.NoError(t, svc.VerifyTotals(ctx))
	total, err := svc.Aggregator().TotalCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	all, err := svc.engine.List(ctx)
	require.NoError(t, err)
	for _, a := range all {
		assert.False(t, a.Unlocked, a.Name)
	}
}

func TestReconcileRepairsDrift(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	a := addSubject(t, svc, "A", 0)
	b := addSubject(t, svc, "B", 0)
	_, err := svc.AddRecord(ctx, a.ID, 9)
	require.NoError(t, err)
	_, err = svc.AddRecord(ctx, b.ID, 4)
	require.NoError(t, err)

	require.NoError(t, st.Session().Subjects().SetTotal(ctx, a.ID, 100))
	err = svc.VerifyTotals(ctx)
	assert.ErrorIs(t, err, store.ErrInvariantViolation)
	assert.Contains(t, err.Error(), "stored 100, records 9")

	drifted, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	require.Len(t, drifted, 1)
	assert.Equal(t, Drift{SubjectID: a.ID, Name: "A", Stored: 100, Recorded: 9}, drifted[0])
	require.NoError(t, svc.VerifyTotals(ctx))

	drifted, err = svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, drifted)
}

func TestImportExport(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	addSubject(t, svc, "Math", 0)

	in := "date,subject,count\n2026-03-01,Math,10\n2026-03-02, Math ,5\n2026-03-02,Chemistry,7\n"
	sum, err := svc.Import(ctx, strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Records)
	assert.Equal(t, 22, sum.Questions)
	assert.Equal(t, []string{"Chemistry"}, sum.CreatedSubjects)
	require.NoError(t, svc.VerifyTotals(ctx))

	var buf bytes.Buffer
	n, err := svc.Export(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "date,subject,count\n2026-03-01,Math,10\n2026-03-02,Chemistry,7\n2026-03-02,Math,5\n", buf.String())

	// Importing the same rows again collides on (subject, date).
	_, err = svc.Import(ctx, strings.NewReader(in))
	assert.ErrorIs(t, err, store.ErrInvariantViolation)
	total, err := svc.Aggregator().TotalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 22, total, "failed import writes nothing")
}

func TestImportSkipsByteOrderMark(t *testing.T) {
	tests := []struct{ name, in string }{
		{"before header", "\ufeffdate,subject,count\n2026-03-01,Math,5\n"},
		{"before first row", "\ufeff2026-03-01,Math,5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newService(t)
			ctx := context.Background()
			sum, err := svc.Import(ctx, strings.NewReader(tt.in))
			require.NoError(t, err)
			assert.Equal(t, 1, sum.Records)
			assert.Equal(t, 5, sum.Questions)

			math, err := svc.SubjectByName(ctx, "Math")
			require.NoError(t, err)
			assert.Equal(t, 5, math.TotalCount)
		})
	}
}

func TestImportRejectsBadRows(t *testing.T) {
	svc, _, _ := newService(t)
	tests := []struct{ name, in string }{
		{"bad date", "03/01/2026,Math,1\n"},
		{"zero count", "2026-03-01,Math,0\n"},
		{"not a number", "2026-03-01,Math,ten\n"},
		{"empty subject", "2026-03-01,,3\n"},
		{"wrong field count", "2026-03-01,Math\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Import(context.Background(), strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}
