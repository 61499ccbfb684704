package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// AchievementRow is a catalog entry as stored. Condition holds the JSON
// payload; its shape depends on Type and is decoded by the caller.
type AchievementRow struct {
	ID          int       `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Type        string    `db:"type"`
	Rarity      string    `db:"rarity"`
	Condition   string    `db:"condition"`
	Icon        string    `db:"icon"`
	Repeatable  bool      `db:"repeatable"`
	SortOrder   int       `db:"sort_order"`
	CreatedAt   time.Time `db:"created_at"`
}

// AchievementStatus is a catalog entry joined with its unlock record.
type AchievementStatus struct {
	AchievementRow
	UnlockedAt     sql.NullTime `db:"unlocked_at"`
	UnlockCount    int          `db:"unlock_count"`
	LastAchievedAt sql.NullTime `db:"last_achieved_at"`
}

// Unlocked reports whether an unlock record exists.
func (a AchievementStatus) Unlocked() bool {
	return a.UnlockedAt.Valid
}

// UnlockResult is the outcome of one unlock attempt.
type UnlockResult struct {
	Unlocked bool
	Count    int
	IsFirst  bool
}

// AchievementRepo manages the achievement catalog and unlock records.
type AchievementRepo struct{ s *Session }

const achievementStatusQuery = `
	SELECT a.id, a.name, a.description, a.type, a.rarity, a.condition, a.icon,
	       a.repeatable, a.sort_order, a.created_at,
	       ua.unlocked_at, COALESCE(ua.count, 0) AS unlock_count, ua.last_achieved_at
	FROM achievements a
	LEFT JOIN user_achievements ua ON ua.achievement_id = a.id`

// ListWithStatus returns every catalog entry with its unlock status,
// ordered by type then catalog order.
func (r *AchievementRepo) ListWithStatus(ctx context.Context) ([]AchievementStatus, error) {
	var out []AchievementStatus
	if err := r.s.selectRaw(ctx, &out, achievementStatusQuery+" ORDER BY a.type, a.sort_order, a.id"); err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return out, nil
}

// ListByType returns the catalog entries of one type with their status.
func (r *AchievementRepo) ListByType(ctx context.Context, typ string) ([]AchievementStatus, error) {
	var out []AchievementStatus
	err := r.s.selectRaw(ctx, &out, achievementStatusQuery+" WHERE a.type = ? ORDER BY a.sort_order, a.id", typ)
	if err != nil {
		return nil, fmt.Errorf("list %s achievements: %w", typ, err)
	}
	return out, nil
}

// Get returns one catalog entry with its status, or ErrNotFound.
func (r *AchievementRepo) Get(ctx context.Context, id int) (AchievementStatus, error) {
	var st AchievementStatus
	if err := r.s.getRaw(ctx, &st, achievementStatusQuery+" WHERE a.id = ?", id); err != nil {
		return AchievementStatus{}, notFound(err, "achievement", id)
	}
	return st, nil
}

// Count returns the number of catalog entries.
func (r *AchievementRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.s.getRaw(ctx, &n, "SELECT COUNT(*) FROM achievements"); err != nil {
		return 0, fmt.Errorf("count achievements: %w", err)
	}
	return n, nil
}

// InsertMissing adds catalog rows whose name is not present yet and
// reports how many were added. Existing rows are left untouched.
func (r *AchievementRepo) InsertMissing(ctx context.Context, rows []AchievementRow) (int, error) {
	added := 0
	for _, row := range rows {
		n, err := r.s.execRaw(ctx, `
			INSERT INTO achievements (name, description, type, rarity, condition, icon, repeatable, sort_order, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(name) DO NOTHING`,
			row.Name, row.Description, row.Type, row.Rarity, row.Condition, row.Icon, row.Repeatable, row.SortOrder, r.s.now())
		if err != nil {
			return added, fmt.Errorf("insert achievement %q: %w", row.Name, err)
		}
		added += int(n)
	}
	return added, nil
}

// ReplaceCatalog deletes every catalog entry, and with them every unlock
// record, then inserts rows.
func (r *AchievementRepo) ReplaceCatalog(ctx context.Context, rows []AchievementRow) error {
	if _, err := r.s.exec(ctx, entsql.Delete("user_achievements")); err != nil {
		return fmt.Errorf("clear unlocks: %w", err)
	}
	if _, err := r.s.exec(ctx, entsql.Delete("achievements")); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}
	for _, row := range rows {
		_, err := r.s.insert(ctx, entsql.Insert("achievements").
			Columns("name", "description", "type", "rarity", "condition", "icon", "repeatable", "sort_order", "created_at").
			Values(row.Name, row.Description, row.Type, row.Rarity, row.Condition, row.Icon, row.Repeatable, row.SortOrder, r.s.now()))
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("achievement %q: %w", row.Name, ErrDuplicate)
			}
			return fmt.Errorf("insert achievement %q: %w", row.Name, err)
		}
	}
	return nil
}

// Unlock applies the unlock protocol to one achievement:
//   - existing record, not repeatable: nothing changes, Unlocked=false
//   - existing record, repeatable: count+1, last_achieved_at refreshed
//   - no record: a record with count=1 is created, IsFirst=true
//
// Call it on a transactional Session so the read and the write are atomic.
func (r *AchievementRepo) Unlock(ctx context.Context, achievementID int, repeatable bool) (UnlockResult, error) {
	var current int
	err := r.s.getRaw(ctx, &current, "SELECT count FROM user_achievements WHERE achievement_id = ?", achievementID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		now := r.s.now()
		_, err := r.s.insert(ctx, entsql.Insert("user_achievements").
			Columns("achievement_id", "unlocked_at", "count", "last_achieved_at").
			Values(achievementID, now, 1, now))
		if err != nil {
			if isUniqueViolation(err) {
				return UnlockResult{}, fmt.Errorf("unlock record for achievement %d: %w", achievementID, ErrInvariantViolation)
			}
			return UnlockResult{}, fmt.Errorf("create unlock record: %w", err)
		}
		return UnlockResult{Unlocked: true, Count: 1, IsFirst: true}, nil
	case err != nil:
		return UnlockResult{}, fmt.Errorf("get unlock record: %w", err)
	}

	if !repeatable {
		return UnlockResult{Unlocked: false, Count: current, IsFirst: false}, nil
	}

	_, err = r.s.exec(ctx, entsql.Update("user_achievements").
		Add("count", 1).
		Set("last_achieved_at", r.s.now()).
		Where(entsql.EQ("achievement_id", achievementID)))
	if err != nil {
		return UnlockResult{}, fmt.Errorf("increment unlock record: %w", err)
	}
	return UnlockResult{Unlocked: true, Count: current + 1, IsFirst: false}, nil
}

// DeleteUnlocks removes every unlock record.
func (r *AchievementRepo) DeleteUnlocks(ctx context.Context) (int64, error) {
	n, err := r.s.exec(ctx, entsql.Delete("user_achievements"))
	if err != nil {
		return 0, fmt.Errorf("delete unlocks: %w", err)
	}
	return n, nil
}
