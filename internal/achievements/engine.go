// Package achievements evaluates the achievement catalog against study
// metrics and applies the unlock protocol.
package achievements

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/abhisek/studyhall/internal/logger"
	"github.com/abhisek/studyhall/internal/progress"
	"github.com/abhisek/studyhall/internal/store"
)

// Metrics are the aggregate values conditions are evaluated against.
type Metrics struct {
	TotalCount    int
	StreakDays    int
	SubjectTotals []int
}

// Satisfies reports whether m meets c. SPEED conditions depend on a single
// submission and are never satisfied by aggregate metrics.
func (m Metrics) Satisfies(c Condition) bool {
	switch c := c.(type) {
	case QuantityCondition:
		return m.TotalCount >= c.TotalCount
	case StreakCondition:
		return m.StreakDays >= c.StreakDays
	case VersatileCondition:
		return m.everySubjectAtLeast(c.AllSubjects)
	default:
		return false
	}
}

// everySubjectAtLeast reports whether each active subject has a total of
// at least n. It holds vacuously without subjects.
func (m Metrics) everySubjectAtLeast(n int) bool {
	for _, t := range m.SubjectTotals {
		if t < n {
			return false
		}
	}
	return true
}

// minSubjectTotal returns the smallest subject total, or 0 without
// subjects.
func (m Metrics) minSubjectTotal() int {
	if len(m.SubjectTotals) == 0 {
		return 0
	}
	low := math.MaxInt
	for _, t := range m.SubjectTotals {
		low = min(low, t)
	}
	return low
}

// Engine checks and unlocks achievements.
type Engine struct {
	st  *store.Store
	now progress.Clock
	log *logger.Logger
}

// NewEngine returns an Engine over st. A nil clock uses time.Now and a
// nil logger discards output.
func NewEngine(st *store.Store, now progress.Clock, log *logger.Logger) *Engine {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{st: st, now: now, log: log}
}

// Metrics computes the current aggregate metrics.
func (e *Engine) Metrics(ctx context.Context) (Metrics, error) {
	sess := e.st.Session()
	agg := progress.New(sess, e.now)

	total, err := agg.TotalCount(ctx)
	if err != nil {
		return Metrics{}, err
	}
	streak, err := agg.StreakDays(ctx)
	if err != nil {
		return Metrics{}, err
	}
	subs, err := sess.Subjects().ListActive(ctx)
	if err != nil {
		return Metrics{}, err
	}
	totals := make([]int, len(subs))
	for i, s := range subs {
		totals[i] = s.TotalCount
	}
	return Metrics{TotalCount: total, StreakDays: streak, SubjectTotals: totals}, nil
}

// CheckAchievements evaluates every catalog entry against the current
// metrics and unlocks the satisfied ones. It returns the achievements
// that triggered in this call.
func (e *Engine) CheckAchievements(ctx context.Context) ([]Unlock, error) {
	all, err := e.List(ctx)
	if err != nil {
		return nil, err
	}
	m, err := e.Metrics(ctx)
	if err != nil {
		return nil, err
	}

	var out []Unlock
	for _, a := range all {
		if !a.Repeatable && a.Unlocked {
			continue
		}
		if !m.Satisfies(a.Condition) {
			continue
		}
		u, ok, err := e.unlock(ctx, a)
		if err != nil {
			return out, err
		}
		if ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// CheckSpeedAchievement unlocks the SPEED achievements met by a single
// submission of count questions.
func (e *Engine) CheckSpeedAchievement(ctx context.Context, count int) ([]Unlock, error) {
	rows, err := e.st.Session().Achievements().ListByType(ctx, string(TypeSpeed))
	if err != nil {
		return nil, err
	}

	var out []Unlock
	for _, row := range rows {
		a, err := fromStatus(row)
		if err != nil {
			return out, err
		}
		if !a.Repeatable && a.Unlocked {
			continue
		}
		if count < a.Condition.Threshold() {
			continue
		}
		u, ok, err := e.unlock(ctx, a)
		if err != nil {
			return out, err
		}
		if ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (e *Engine) unlock(ctx context.Context, a Achievement) (Unlock, bool, error) {
	var res store.UnlockResult
	err := e.st.InTx(ctx, func(tx *store.Session) error {
		var err error
		res, err = tx.Achievements().Unlock(ctx, a.ID, a.Repeatable)
		return err
	})
	if err != nil {
		return Unlock{}, false, fmt.Errorf("unlock %q: %w", a.Name, err)
	}
	if !res.Unlocked {
		return Unlock{}, false, nil
	}

	now := e.now()
	a.Unlocked = true
	a.Count = res.Count
	a.LastAchievedAt = &now
	if res.IsFirst {
		a.UnlockedAt = &now
	}
	e.log.Info("achievement unlocked", "name", a.Name, "count", res.Count, "first", res.IsFirst)
	return Unlock{Achievement: a, Count: res.Count, IsFirst: res.IsFirst}, true, nil
}

// List returns every catalog entry with its unlock status.
func (e *Engine) List(ctx context.Context) ([]Achievement, error) {
	rows, err := e.st.Session().Achievements().ListWithStatus(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Achievement, 0, len(rows))
	for _, row := range rows {
		a, err := fromStatus(row)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Get returns one achievement, or store.ErrNotFound.
func (e *Engine) Get(ctx context.Context, id int) (Achievement, error) {
	row, err := e.st.Session().Achievements().Get(ctx, id)
	if err != nil {
		return Achievement{}, err
	}
	return fromStatus(row)
}

// AchievementProgress reports how close an achievement is to unlocking.
func (e *Engine) AchievementProgress(ctx context.Context, id int) (Progress, error) {
	a, err := e.Get(ctx, id)
	if err != nil {
		return Progress{}, err
	}
	target := a.Condition.Threshold()
	if a.Unlocked {
		return Progress{AchievementID: id, Current: target, Target: target, Progress: 100, Unlocked: true}, nil
	}

	m, err := e.Metrics(ctx)
	if err != nil {
		return Progress{}, err
	}
	var metric int
	switch a.Type {
	case TypeQuantity:
		metric = m.TotalCount
	case TypeStreak:
		metric = m.StreakDays
	case TypeVersatile:
		metric = m.minSubjectTotal()
	case TypeSpeed:
		metric = 0
	}

	current := min(metric, target)
	return Progress{
		AchievementID: id,
		Current:       current,
		Target:        target,
		Progress:      progress.Percent(current, target),
		Remaining:     target - current,
	}, nil
}

// Stats summarizes the catalog by rarity.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	all, err := e.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	idx := make(map[Rarity]int)
	st := Stats{}
	for i, r := range AllRarities() {
		idx[r] = i
		st.ByRarity = append(st.ByRarity, RarityStats{Rarity: r})
	}
	for _, a := range all {
		st.Total++
		i, ok := idx[a.Rarity]
		if ok {
			st.ByRarity[i].Total++
		}
		if a.Unlocked {
			st.Unlocked++
			if ok {
				st.ByRarity[i].Unlocked++
			}
		}
	}
	st.CompletionRate = progress.Percent(st.Unlocked, st.Total)
	return st, nil
}

// EnsureCatalog inserts the definitions whose names are missing and
// returns how many were added.
func (e *Engine) EnsureCatalog(ctx context.Context, defs []Definition) (int, error) {
	rs, err := rows(defs)
	if err != nil {
		return 0, err
	}
	var added int
	err = e.st.InTx(ctx, func(tx *store.Session) error {
		added, err = tx.Achievements().InsertMissing(ctx, rs)
		return err
	})
	if err != nil {
		return 0, err
	}
	if added > 0 {
		e.log.Info("achievement catalog seeded", "added", added)
	}
	return added, nil
}

// ResetCatalog replaces the catalog with defs. Every unlock record is
// lost.
func (e *Engine) ResetCatalog(ctx context.Context, defs []Definition) error {
	rs, err := rows(defs)
	if err != nil {
		return err
	}
	if err := e.st.InTx(ctx, func(tx *store.Session) error {
		return tx.Achievements().ReplaceCatalog(ctx, rs)
	}); err != nil {
		return err
	}
	e.log.Warn("achievement catalog reset", "entries", len(rs))
	return nil
}

func fromStatus(row store.AchievementStatus) (Achievement, error) {
	typ := Type(row.Type)
	cond, err := DecodeCondition(typ, []byte(row.Condition))
	if err != nil {
		return Achievement{}, fmt.Errorf("achievement %d: %w", row.ID, err)
	}
	a := Achievement{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Type:        typ,
		Rarity:      Rarity(row.Rarity),
		Condition:   cond,
		Icon:        row.Icon,
		Repeatable:  row.Repeatable,
		Unlocked:    row.Unlocked(),
		Count:       row.UnlockCount,
	}
	if row.UnlockedAt.Valid {
		t := row.UnlockedAt.Time
		a.UnlockedAt = &t
	}
	if row.LastAchievedAt.Valid {
		t := row.LastAchievedAt.Time
		a.LastAchievedAt = &t
	}
	return a, nil
}
