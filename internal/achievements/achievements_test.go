package achievements

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyhall/internal/store"
)

var fixedNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func setup(t *testing.T, defs ...Definition) (*store.Store, *Engine) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "ach.db"),
		store.WithClock(clock), store.WithoutDefaultSubjects())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	e := NewEngine(st, clock, nil)
	if len(defs) > 0 {
		_, err := e.EnsureCatalog(context.Background(), defs)
		require.NoError(t, err)
	}
	return st, e
}

func record(t *testing.T, st *store.Store, subjectID, count int, date string) {
	t.Helper()
	err := st.InTx(context.Background(), func(tx *store.Session) error {
		_, err := tx.Records().Add(context.Background(), subjectID, count, date)
		return err
	})
	require.NoError(t, err)
}

func subject(t *testing.T, st *store.Store, name string) store.Subject {
	t.Helper()
	s, err := st.Session().Subjects().Create(context.Background(), store.NewSubject{Name: name})
	require.NoError(t, err)
	return s
}

func TestDecodeCondition(t *testing.T) {
	tests := []struct {
		name    string
		typ     Type
		raw     string
		want    Condition
		wantErr bool
	}{
		{"quantity", TypeQuantity, `{"total_count": 10}`, QuantityCondition{10}, false},
		{"streak", TypeStreak, `{"streak_days": 7}`, StreakCondition{7}, false},
		{"speed", TypeSpeed, `{"single_submit": 20}`, SpeedCondition{20}, false},
		{"versatile", TypeVersatile, `{"all_subjects": 50}`, VersatileCondition{50}, false},
		{"mismatched shape", TypeQuantity, `{"streak_days": 7}`, nil, true},
		{"zero threshold", TypeStreak, `{"streak_days": 0}`, nil, true},
		{"missing field", TypeSpeed, `{}`, nil, true},
		{"not json", TypeQuantity, `nope`, nil, true},
		{"unknown type", Type("LUCK"), `{"total_count": 1}`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeCondition(tt.typ, []byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPresets(t *testing.T) {
	counts := map[Type]int{}
	names := map[string]bool{}
	for _, d := range Presets() {
		counts[d.Type()]++
		assert.False(t, names[d.Name], "duplicate preset %q", d.Name)
		names[d.Name] = true
		assert.True(t, d.Rarity.Valid(), d.Name)
		assert.Positive(t, d.Condition.Threshold(), d.Name)
	}
	assert.Equal(t, 20, counts[TypeQuantity])
	assert.Equal(t, 9, counts[TypeStreak])
	assert.Equal(t, 4, counts[TypeSpeed])
	assert.Equal(t, 3, counts[TypeVersatile])

	for _, d := range Presets() {
		switch d.Type() {
		case TypeQuantity, TypeVersatile:
			assert.False(t, d.Repeatable, d.Name)
		default:
			assert.True(t, d.Repeatable, d.Name)
		}
	}
}

func TestRarityDisplay(t *testing.T) {
	assert.Equal(t, "#FFD700", RarityGold.Color())
	assert.Equal(t, "👑", RarityLegend.Icon())
	assert.Equal(t, "Diamond", RarityDiamond.DisplayName())
	assert.False(t, Rarity("MYTHIC").Valid())
}

func TestEnsureCatalogIsIdempotent(t *testing.T) {
	ctx := context.Background()
	_, e := setup(t)

	added, err := e.EnsureCatalog(ctx, Presets())
	require.NoError(t, err)
	assert.Equal(t, len(Presets()), added)

	added, err = e.EnsureCatalog(ctx, Presets())
	require.NoError(t, err)
	assert.Zero(t, added)

	all, err := e.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(Presets()))
}

func TestNonRepeatableUnlocksOnce(t *testing.T) {
	ctx := context.Background()
	st, e := setup(t, quantity("First", 1, RarityBronze, "🌱"))
	sub := subject(t, st, "Math")
	record(t, st, sub.ID, 5, "2026-03-10")

	got, err := e.CheckAchievements(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsFirst)
	assert.Equal(t, 1, got[0].Count)

	got, err = e.CheckAchievements(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	all, err := e.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, all[0].Count)
}

func TestRepeatableSpeedIncrements(t *testing.T) {
	ctx := context.Background()
	st, e := setup(t, speed("Squall", 20, RarityBronze, "⚡"))
	sub := subject(t, st, "Math")

	record(t, st, sub.ID, 25, "2026-03-10")
	first, err := e.CheckSpeedAchievement(ctx, 25)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.True(t, first[0].IsFirst)

	record(t, st, sub.ID, 30, "2026-03-10")
	second, err := e.CheckSpeedAchievement(ctx, 30)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.False(t, second[0].IsFirst)
	assert.Equal(t, 2, second[0].Count)

	none, err := e.CheckSpeedAchievement(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSweepIgnoresSpeed(t *testing.T) {
	ctx := context.Background()
	st, e := setup(t, speed("Squall", 20, RarityBronze, "⚡"))
	sub := subject(t, st, "Math")
	record(t, st, sub.ID, 100, "2026-03-10")

	got, err := e.CheckAchievements(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStreakAchievement(t *testing.T) {
	ctx := context.Background()
	st, e := setup(t, streak("Three", 3, RaritySilver, "🔥"))
	sub := subject(t, st, "Math")
	record(t, st, sub.ID, 1, "2026-03-08")
	record(t, st, sub.ID, 1, "2026-03-09")

	got, err := e.CheckAchievements(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	record(t, st, sub.ID, 1, "2026-03-10")
	got, err = e.CheckAchievements(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Three", got[0].Achievement.Name)
}

func TestVersatileHoldsWithoutSubjects(t *testing.T) {
	ctx := context.Background()
	_, e := setup(t, versatile("Rounded", 1, RarityBronze, "🧭"))

	got, err := e.CheckAchievements(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1, "every subject of an empty set meets the threshold")
	assert.Equal(t, "Rounded", got[0].Achievement.Name)
	assert.True(t, got[0].IsFirst)
}

func TestVersatileProgressWithoutSubjects(t *testing.T) {
	ctx := context.Background()
	_, e := setup(t, versatile("Rounded", 10, RarityBronze, "🧭"))

	all, err := e.List(ctx)
	require.NoError(t, err)
	p, err := e.AchievementProgress(ctx, all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, Progress{AchievementID: all[0].ID, Current: 0, Target: 10, Progress: 0, Remaining: 10}, p)
}

func TestVersatileNeedsEverySubject(t *testing.T) {
	ctx := context.Background()
	st, e := setup(t, versatile("Rounded", 10, RarityBronze, "🧭"))

	a := subject(t, st, "Algorithms")
	m := subject(t, st, "Math")
	record(t, st, a.ID, 15, "2026-03-10")
	record(t, st, m.ID, 5, "2026-03-10")

	got, err := e.CheckAchievements(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	all, err := e.List(ctx)
	require.NoError(t, err)
	p, err := e.AchievementProgress(ctx, all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, Progress{AchievementID: all[0].ID, Current: 5, Target: 10, Progress: 50, Remaining: 5}, p)

	record(t, st, m.ID, 5, "2026-03-10")
	got, err = e.CheckAchievements(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestAchievementProgress(t *testing.T) {
	ctx := context.Background()
	st, e := setup(t,
		quantity("Ten", 10, RarityBronze, "🎯"),
		quantity("Hundred", 100, RaritySilver, "⭐"),
		speed("Squall", 20, RarityBronze, "⚡"),
	)
	sub := subject(t, st, "Math")
	record(t, st, sub.ID, 30, "2026-03-10")
	_, err := e.CheckAchievements(ctx)
	require.NoError(t, err)

	all, err := e.List(ctx)
	require.NoError(t, err)
	byName := map[string]Achievement{}
	for _, a := range all {
		byName[a.Name] = a
	}

	p, err := e.AchievementProgress(ctx, byName["Ten"].ID)
	require.NoError(t, err)
	assert.True(t, p.Unlocked)
	assert.Equal(t, 100, p.Progress)
	assert.Equal(t, 10, p.Current)

	p, err = e.AchievementProgress(ctx, byName["Hundred"].ID)
	require.NoError(t, err)
	assert.Equal(t, 30, p.Current)
	assert.Equal(t, 30, p.Progress)
	assert.Equal(t, 70, p.Remaining)

	p, err = e.AchievementProgress(ctx, byName["Squall"].ID)
	require.NoError(t, err)
	assert.Zero(t, p.Progress)

	_, err = e.AchievementProgress(ctx, 9999)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	st, e := setup(t,
		quantity("One", 1, RarityBronze, "🌱"),
		quantity("Ten", 10, RarityBronze, "🎯"),
		streak("Week", 7, RaritySilver, "🌟"),
	)
	sub := subject(t, st, "Math")
	record(t, st, sub.ID, 3, "2026-03-10")
	_, err := e.CheckAchievements(ctx)
	require.NoError(t, err)

	s, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Unlocked)
	assert.Equal(t, 33, s.CompletionRate)
	assert.Equal(t, RarityStats{Rarity: RarityBronze, Total: 2, Unlocked: 1}, s.ByRarity[0])
	assert.Equal(t, RarityStats{Rarity: RaritySilver, Total: 1}, s.ByRarity[1])
}

func TestResetCatalog(t *testing.T) {
	ctx := context.Background()
	st, e := setup(t, quantity("One", 1, RarityBronze, "🌱"))
	sub := subject(t, st, "Math")
	record(t, st, sub.ID, 3, "2026-03-10")
	_, err := e.CheckAchievements(ctx)
	require.NoError(t, err)

	require.NoError(t, e.ResetCatalog(ctx, Presets()))
	all, err := e.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(Presets()))
	for _, a := range all {
		assert.False(t, a.Unlocked, a.Name)
	}
}

func TestParseCatalog(t *testing.T) {
	valid := `[
		{"name": "Ten", "type": "QUANTITY", "rarity": "BRONZE", "condition": {"total_count": 10}},
		{"name": "Week", "type": "STREAK", "rarity": "SILVER", "repeatable": true, "icon": "🔥", "condition": {"streak_days": 7}}
	]`
	defs, err := ParseCatalog([]byte(valid))
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, QuantityCondition{10}, defs[0].Condition)
	assert.Equal(t, RarityBronze.Icon(), defs[0].Icon)
	assert.True(t, defs[1].Repeatable)

	bad := map[string]string{
		"empty":          `[]`,
		"bad rarity":     `[{"name": "x", "type": "QUANTITY", "rarity": "MYTHIC", "condition": {"total_count": 1}}]`,
		"negative":       `[{"name": "x", "type": "QUANTITY", "rarity": "GOLD", "condition": {"total_count": -1}}]`,
		"wrong shape":    `[{"name": "x", "type": "STREAK", "rarity": "GOLD", "condition": {"total_count": 3}}]`,
		"two keys":       `[{"name": "x", "type": "STREAK", "rarity": "GOLD", "condition": {"streak_days": 3, "total_count": 3}}]`,
		"missing name":   `[{"type": "STREAK", "rarity": "GOLD", "condition": {"streak_days": 3}}]`,
		"extra field":    `[{"name": "x", "points": 5, "type": "STREAK", "rarity": "GOLD", "condition": {"streak_days": 3}}]`,
		"duplicate name": `[{"name": "x", "type": "STREAK", "rarity": "GOLD", "condition": {"streak_days": 3}}, {"name": "x", "type": "SPEED", "rarity": "GOLD", "condition": {"single_submit": 3}}]`,
		"not json":       `{`,
	}
	for name, doc := range bad {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name": "x", "type": "SPEED", "rarity": "GOLD", "condition": {"single_submit": 40}}]`), 0o644))

	defs, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, SpeedCondition{40}, defs[0].Condition)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
