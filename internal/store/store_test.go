package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), opts...)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createSubject(t *testing.T, s *Store, name string) Subject {
	t.Helper()
	sub, err := s.Session().Subjects().Create(context.Background(), NewSubject{Name: name})
	require.NoError(t, err)
	return sub
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"busy_timeout", "5000"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN("/tmp/x.db")
	assert.Contains(t, dsn, "/tmp/x.db?")
	assert.Contains(t, dsn, "_pragma=foreign_keys%281%29")
	assert.Contains(t, dsn, "_txlock=immediate")

	dsn = buildDSN("file:/tmp/x.db?mode=rwc")
	assert.Contains(t, dsn, "mode=rwc&")
}

func TestOpenSeedsDefaults(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seed.db")

	s, err := Open(path)
	require.NoError(t, err)

	user, err := s.Session().Users().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultDailyTarget, user.DailyTarget)
	assert.Equal(t, DefaultTotalTarget, user.TotalTarget)

	subs, err := s.Session().Subjects().ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.Equal(t, "Algorithms", subs[0].Name)
	assert.Equal(t, "Math", subs[1].Name)
	assert.Equal(t, "English Reading", subs[2].Name)

	for _, sub := range subs {
		require.NoError(t, s.Session().Subjects().Delete(ctx, sub.ID))
	}
	require.NoError(t, s.Close())

	// Reopening must neither re-seed subjects nor duplicate the user row.
	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	subs, err = s.Session().Subjects().ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs)

	var users int
	require.NoError(t, s.DB().Get(&users, "SELECT COUNT(*) FROM users"))
	assert.Equal(t, 1, users)
}

func TestWithoutDefaultSubjects(t *testing.T) {
	s := openTestStore(t, WithoutDefaultSubjects())
	subs, err := s.Session().Subjects().ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestSubjectCreateDefaults(t *testing.T) {
	s := openTestStore(t, WithoutDefaultSubjects())
	sub := createSubject(t, s, "Physics")

	assert.Equal(t, DefaultSubjectColor, sub.Color)
	assert.Equal(t, DefaultSubjectIcon, sub.Icon)
	assert.Equal(t, DefaultDailyTarget, sub.DailyTarget)
	assert.Equal(t, 0, sub.TotalCount)
	assert.True(t, sub.IsActive)
	assert.True(t, sub.CreatedAt.Equal(fixedNow), "created_at = %v", sub.CreatedAt)
}

func TestSubjectDuplicateName(t *testing.T) {
	s := openTestStore(t, WithoutDefaultSubjects())
	createSubject(t, s, "Physics")
	other := createSubject(t, s, "Chemistry")

	_, err := s.Session().Subjects().Create(context.Background(), NewSubject{Name: "Physics"})
	assert.ErrorIs(t, err, ErrDuplicate)

	err = s.Session().Subjects().Rename(context.Background(), other.ID, "Physics")
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestSubjectNotFound(t *testing.T) {
	s := openTestStore(t, WithoutDefaultSubjects())
	ctx := context.Background()
	subs := s.Session().Subjects()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"get", func() error { _, err := subs.Get(ctx, 99); return err }},
		{"rename", func() error { return subs.Rename(ctx, 99, "x") }},
		{"daily target", func() error { return subs.SetDailyTarget(ctx, 99, 5) }},
		{"total target", func() error { return subs.SetTotalTarget(ctx, 99, 5) }},
		{"add to total", func() error { return subs.AddToTotal(ctx, 99, 5) }},
		{"delete", func() error { return subs.Delete(ctx, 99) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, ErrNotFound) {
				t.Errorf("err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestRecordAddUpserts(t *testing.T) {
	s := openTestStore(t, WithoutDefaultSubjects())
	ctx := context.Background()
	sub := createSubject(t, s, "Math")

	for _, n := range []int{25, 25} {
		err := s.InTx(ctx, func(tx *Session) error {
			_, err := tx.Records().Add(ctx, sub.ID, n, "2026-03-10")
			return err
		})
		require.NoError(t, err)
	}

	rec, err := s.Session().Records().Get(ctx, sub.ID, "2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, 50, rec.Count)

	var rows int
	require.NoError(t, s.DB().Get(&rows, "SELECT COUNT(*) FROM study_records"))
	assert.Equal(t, 1, rows)

	got, err := s.Session().Subjects().Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.TotalCount)
}

func TestRecordAddUnknownSubjectRollsBack(t *testing.T) {
	s := openTestStore(t, WithoutDefaultSubjects())
	ctx := context.Background()

	err := s.InTx(ctx, func(tx *Session) error {
		_, err := tx.Records().Add(ctx, 42, 10, "2026-03-10")
		return err
	})
	require.Error(t, err)

	var rows int
	require.NoError(t, s.DB().Get(&rows, "SELECT COUNT(*) FROM study_records"))
	assert.Equal(t, 0, rows)
}

func TestRecordInsertDuplicate(t *testing.T) {
	s := openTestStore(t, WithoutDefaultSubjects())
	ctx := context.Background()
	sub := createSubject(t, s, "Math")

	_, err := s.Session().Records().Insert(ctx, sub.ID, 5, "2026-03-09")
	require.NoError(t, err)

	err = s.InTx(ctx, func(tx *Session) error {
		_, err := tx.Records().Insert(ctx, sub.ID, 5, "2026-03-09")
		return err
	})
	assert.ErrorIs(t, err, ErrInvariantViolation)

	got, err := s.Session().Subjects().Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.TotalCount, "failed insert must not touch the counter")
}

func TestInTxRollsBackOnError(t *testing.T) {
	s := openTestStore(t, WithoutDefaultSubjects())
	ctx := context.Background()
	sub := createSubject(t, s, "Math")
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx *Session) error {
		if _, err := tx.Records().Add(ctx, sub.ID, 10, "2026-03-10"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Session().Subjects().Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalCount)

	_, err = s.Session().Records().Get(ctx, sub.ID, "2026-03-10")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordQueries(t *testing.T) {
	s := openTestStore(t, WithoutDefaultSubjects())
	ctx := context.Background()
	math := createSubject(t, s, "Math")
	eng := createSubject(t, s, "English")

	add := func(subID, n int, date string) {
		t.Helper()
		require.NoError(t, s.InTx(ctx, func(tx *Session) error {
			_, err := tx.Records().Add(ctx, subID, n, date)
			return err
		}))
	}
	add(math.ID, 10, "2026-03-08")
	add(math.ID, 5, "2026-03-10")
	add(eng.ID, 7, "2026-03-10")

	recs := s.Session().Records()

	dates, err := recs.DistinctDates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-10", "2026-03-08"}, dates)

	sum, err := recs.SumOn(ctx, "2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, 12, sum)

	sum, err = recs.SumOn(ctx, "2026-03-09")
	require.NoError(t, err)
	assert.Equal(t, 0, sum)

	totals, err := recs.DailyTotals(ctx, "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.Equal(t, []DayTotal{{"2026-03-08", 10}, {"2026-03-10", 12}}, totals)

	detail, err := recs.OnDate(ctx, "2026-03-10")
	require.NoError(t, err)
	require.Len(t, detail, 2)
	assert.Equal(t, "English", detail[0].SubjectName)
	assert.Equal(t, 7, detail[0].Count)

	sums, err := recs.SumsBySubject(ctx)
	require.NoError(t, err)
	assert.Equal(t, []SubjectSum{{math.ID, 15}, {eng.ID, 7}}, sums)
}

func TestSubtractDayFloorsAtZero(t *testing.T) {
	s := openTestStore(t, WithoutDefaultSubjects())
	ctx := context.Background()
	sub := createSubject(t, s, "Math")

	require.NoError(t, s.InTx(ctx, func(tx *Session) error {
		_, err := tx.Records().Add(ctx, sub.ID, 30, "2026-03-10")
		return err
	}))
	// Simulate a drifted counter lower than today's records.
	require.NoError(t, s.Session().Subjects().SetTotal(ctx, sub.ID, 10))

	require.NoError(t, s.Session().Subjects().SubtractDay(ctx, "2026-03-10"))

	got, err := s.Session().Subjects().Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalCount)
}

func TestSubjectDeleteCascades(t *testing.T) {
	s := openTestStore(t, WithoutDefaultSubjects())
	ctx := context.Background()
	sub := createSubject(t, s, "Math")

	require.NoError(t, s.InTx(ctx, func(tx *Session) error {
		_, err := tx.Records().Add(ctx, sub.ID, 3, "2026-03-10")
		return err
	}))
	require.NoError(t, s.Session().Subjects().Delete(ctx, sub.ID))

	var rows int
	require.NoError(t, s.DB().Get(&rows, "SELECT COUNT(*) FROM study_records"))
	assert.Equal(t, 0, rows)
}

func seedAchievement(t *testing.T, s *Store, name string, repeatable bool) AchievementStatus {
	t.Helper()
	ctx := context.Background()
	_, err := s.Session().Achievements().InsertMissing(ctx, []AchievementRow{{
		Name:       name,
		Type:       "QUANTITY",
		Rarity:     "BRONZE",
		Condition:  `{"total_count":1}`,
		Repeatable: repeatable,
	}})
	require.NoError(t, err)

	all, err := s.Session().Achievements().ListWithStatus(ctx)
	require.NoError(t, err)
	for _, a := range all {
		if a.Name == name {
			return a
		}
	}
	t.Fatalf("achievement %q not seeded", name)
	return AchievementStatus{}
}

func TestUnlockProtocol(t *testing.T) {
	tests := []struct {
		name       string
		repeatable bool
		want       []UnlockResult
	}{
		{
			name:       "one-shot",
			repeatable: false,
			want: []UnlockResult{
				{Unlocked: true, Count: 1, IsFirst: true},
				{Unlocked: false, Count: 1, IsFirst: false},
				{Unlocked: false, Count: 1, IsFirst: false},
			},
		},
		{
			name:       "repeatable",
			repeatable: true,
			want: []UnlockResult{
				{Unlocked: true, Count: 1, IsFirst: true},
				{Unlocked: true, Count: 2, IsFirst: false},
				{Unlocked: true, Count: 3, IsFirst: false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openTestStore(t)
			ctx := context.Background()
			a := seedAchievement(t, s, tt.name, tt.repeatable)
			require.False(t, a.Unlocked())

			for i, want := range tt.want {
				var got UnlockResult
				err := s.InTx(ctx, func(tx *Session) error {
					var err error
					got, err = tx.Achievements().Unlock(ctx, a.ID, tt.repeatable)
					return err
				})
				require.NoError(t, err)
				if got != want {
					t.Errorf("attempt %d = %+v, want %+v", i+1, got, want)
				}
			}

			st, err := s.Session().Achievements().Get(ctx, a.ID)
			require.NoError(t, err)
			assert.True(t, st.Unlocked())
			assert.Equal(t, tt.want[len(tt.want)-1].Count, st.UnlockCount)
		})
	}
}

func TestAchievementGetNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Session().Achievements().Get(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertMissingIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rows := []AchievementRow{
		{Name: "a", Type: "QUANTITY", Rarity: "BRONZE", Condition: `{"total_count":1}`},
		{Name: "b", Type: "STREAK", Rarity: "SILVER", Condition: `{"streak_days":7}`},
	}

	n, err := s.Session().Achievements().InsertMissing(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.Session().Achievements().InsertMissing(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestReplaceCatalogDropsUnlocks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a := seedAchievement(t, s, "first", false)
	_, err := s.Session().Achievements().Unlock(ctx, a.ID, false)
	require.NoError(t, err)

	err = s.InTx(ctx, func(tx *Session) error {
		return tx.Achievements().ReplaceCatalog(ctx, []AchievementRow{
			{Name: "fresh", Type: "QUANTITY", Rarity: "GOLD", Condition: `{"total_count":5}`},
		})
	})
	require.NoError(t, err)

	all, err := s.Session().Achievements().ListWithStatus(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "fresh", all[0].Name)
	assert.False(t, all[0].Unlocked())
}

func TestSettings(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Session().Settings()

	_, ok, err := repo.Get(ctx, "ai.platform")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, "ai.platform", "deepseek"))
	require.NoError(t, repo.Set(ctx, "ai.platform", "openrouter"))

	v, ok, err := repo.Get(ctx, "ai.platform")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "openrouter", v)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Delete(ctx, "ai.platform"))
	_, ok, err = repo.Get(ctx, "ai.platform")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEncouragementHistoryKeepsNewest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Session().Encouragements()

	for _, content := range []string{"one", "two", "three", "four", "five"} {
		_, err := repo.Add(ctx, Encouragement{PersonaName: "Coach", TriggerScene: "manual_request", Content: content}, 3)
		require.NoError(t, err)
	}

	recent, err := repo.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "five", recent[0].Content)
	assert.Equal(t, "three", recent[2].Content)
}

func TestPersonaCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Session().Personas()

	sys, err := repo.Create(ctx, Persona{Name: "Coach", Kind: PersonaSystem, SystemPrompt: "be practical"})
	require.NoError(t, err)
	custom, err := repo.Create(ctx, Persona{Name: "Cat", SystemPrompt: "meow"})
	require.NoError(t, err)
	assert.Equal(t, PersonaCustom, custom.Kind)

	list, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, sys.ID, list[0].ID, "system presets sort first")

	require.NoError(t, repo.UpdatePrompt(ctx, custom.ID, "purr"))
	got, err := repo.Get(ctx, custom.ID)
	require.NoError(t, err)
	assert.Equal(t, "purr", got.SystemPrompt)

	require.NoError(t, repo.Delete(ctx, sys.ID))
	assert.ErrorIs(t, repo.Delete(ctx, sys.ID), ErrNotFound)
	assert.ErrorIs(t, repo.UpdatePrompt(ctx, sys.ID, "x"), ErrNotFound)
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Session().LLMEvents()

	events := []LLMRequestEventData{
		{Provider: "deepseek-chat", Model: "deepseek-chat", Purpose: "encouragement", InputTokens: 100, OutputTokens: 40, LatencyMs: 200, Success: true},
		{Provider: "deepseek-chat", Model: "deepseek-chat", Purpose: "encouragement", InputTokens: 50, OutputTokens: 20, LatencyMs: 100, Success: true},
		{Provider: "deepseek-chat", Model: "deepseek-chat", Purpose: "connection-test", Success: false, ErrorMessage: "401"},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "connection-test", recent[0].Purpose)
	assert.False(t, recent[0].Success)

	e, err := repo.Get(ctx, recent[1].ID)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, 50, e.InputTokens)

	missing, err := repo.Get(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byPurpose, err := repo.UsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, PurposeUsage{Purpose: "encouragement", Calls: 2, InputTokens: 150, OutputTokens: 60, AvgLatencyMs: 150}, byPurpose[0])

	byModel, err := repo.UsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 1)
	assert.Equal(t, 3, byModel[0].Calls)
}
