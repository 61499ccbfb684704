package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const (
	DefaultDailyTarget = 20
	DefaultTotalTarget = 10000
)

// UserConfig is the singleton row holding aggregate targets.
type UserConfig struct {
	ID          int       `db:"id"`
	DailyTarget int       `db:"daily_target"`
	TotalTarget int       `db:"total_target"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// UserRepo reads and writes the singleton user row.
type UserRepo struct{ s *Session }

// Get returns the user configuration. A missing row yields the defaults.
func (r *UserRepo) Get(ctx context.Context) (UserConfig, error) {
	var u UserConfig
	err := r.s.get(ctx, &u, entsql.Select("*").From(entsql.Table("users")).OrderBy("id").Limit(1))
	if errors.Is(err, sql.ErrNoRows) {
		return UserConfig{DailyTarget: DefaultDailyTarget, TotalTarget: DefaultTotalTarget}, nil
	}
	if err != nil {
		return UserConfig{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Ensure creates the singleton row with default targets if it does not
// exist yet. It reports whether a row was created.
func (r *UserRepo) Ensure(ctx context.Context) (bool, error) {
	var n int
	if err := r.s.getRaw(ctx, &n, "SELECT COUNT(*) FROM users"); err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	now := r.s.now()
	_, err := r.s.insert(ctx, entsql.Insert("users").
		Columns("daily_target", "total_target", "created_at", "updated_at").
		Values(DefaultDailyTarget, DefaultTotalTarget, now, now))
	if err != nil {
		return false, fmt.Errorf("create user: %w", err)
	}
	return true, nil
}

// SetTargets updates the aggregate daily and total targets.
func (r *UserRepo) SetTargets(ctx context.Context, daily, total int) error {
	_, err := r.s.exec(ctx, entsql.Update("users").
		Set("daily_target", daily).
		Set("total_target", total).
		Set("updated_at", r.s.now()))
	if err != nil {
		return fmt.Errorf("set user targets: %w", err)
	}
	return nil
}

// SetDailyTarget updates only the aggregate daily target.
func (r *UserRepo) SetDailyTarget(ctx context.Context, daily int) error {
	_, err := r.s.exec(ctx, entsql.Update("users").
		Set("daily_target", daily).
		Set("updated_at", r.s.now()))
	if err != nil {
		return fmt.Errorf("set daily target: %w", err)
	}
	return nil
}
