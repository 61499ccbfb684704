package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const (
	DefaultSubjectColor = "#4A7FFF"
	DefaultSubjectIcon  = "📚"
)

// Subject is a named practice category with its running total.
type Subject struct {
	ID          int       `db:"id"`
	Name        string    `db:"name"`
	Color       string    `db:"color"`
	Icon        string    `db:"icon"`
	TotalCount  int       `db:"total_count"`
	DailyTarget int       `db:"daily_target"`
	TotalTarget int       `db:"total_target"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
}

// NewSubject describes a subject to create. Zero values take defaults.
type NewSubject struct {
	Name        string
	Color       string
	Icon        string
	DailyTarget int
	TotalTarget int
}

// SubjectRepo manages subjects and their denormalized total_count.
type SubjectRepo struct{ s *Session }

// Create inserts a subject. A taken name yields ErrDuplicate.
func (r *SubjectRepo) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	if ns.Color == "" {
		ns.Color = DefaultSubjectColor
	}
	if ns.Icon == "" {
		ns.Icon = DefaultSubjectIcon
	}
	if ns.DailyTarget <= 0 {
		ns.DailyTarget = DefaultDailyTarget
	}

	id, err := r.s.insert(ctx, entsql.Insert("subjects").
		Columns("name", "color", "icon", "total_count", "daily_target", "total_target", "is_active", "created_at").
		Values(ns.Name, ns.Color, ns.Icon, 0, ns.DailyTarget, ns.TotalTarget, true, r.s.now()))
	if err != nil {
		if isUniqueViolation(err) {
			return Subject{}, fmt.Errorf("subject %q: %w", ns.Name, ErrDuplicate)
		}
		return Subject{}, fmt.Errorf("create subject: %w", err)
	}
	return r.Get(ctx, id)
}

// Get returns the subject with id, or ErrNotFound.
func (r *SubjectRepo) Get(ctx context.Context, id int) (Subject, error) {
	var sub Subject
	err := r.s.get(ctx, &sub, entsql.Select("*").From(entsql.Table("subjects")).Where(entsql.EQ("id", id)))
	if err != nil {
		return Subject{}, notFound(err, "subject", id)
	}
	return sub, nil
}

// GetByName returns the subject named name, or ErrNotFound.
func (r *SubjectRepo) GetByName(ctx context.Context, name string) (Subject, error) {
	var sub Subject
	err := r.s.get(ctx, &sub, entsql.Select("*").From(entsql.Table("subjects")).Where(entsql.EQ("name", name)))
	if err != nil {
		return Subject{}, notFound(err, "subject", name)
	}
	return sub, nil
}

// ListActive returns active subjects in creation order.
func (r *SubjectRepo) ListActive(ctx context.Context) ([]Subject, error) {
	var subs []Subject
	err := r.s.selectAll(ctx, &subs, entsql.Select("*").
		From(entsql.Table("subjects")).
		Where(entsql.EQ("is_active", true)).
		OrderBy("created_at", "id"))
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subs, nil
}

// SumTotals returns the sum of total_count across active subjects.
func (r *SubjectRepo) SumTotals(ctx context.Context) (int, error) {
	var total int
	err := r.s.getRaw(ctx, &total, "SELECT COALESCE(SUM(total_count), 0) FROM subjects WHERE is_active = 1")
	if err != nil {
		return 0, fmt.Errorf("sum subject totals: %w", err)
	}
	return total, nil
}

// Rename changes a subject's name.
func (r *SubjectRepo) Rename(ctx context.Context, id int, name string) error {
	err := r.update(ctx, id, "name", name)
	if isUniqueViolation(err) {
		return fmt.Errorf("subject %q: %w", name, ErrDuplicate)
	}
	return err
}

// SetDailyTarget updates a subject's daily target.
func (r *SubjectRepo) SetDailyTarget(ctx context.Context, id, target int) error {
	return r.update(ctx, id, "daily_target", target)
}

// SetTotalTarget updates a subject's total target.
func (r *SubjectRepo) SetTotalTarget(ctx context.Context, id, target int) error {
	return r.update(ctx, id, "total_target", target)
}

// SetTotal overwrites a subject's total_count. Used by clear and
// reconcile paths only.
func (r *SubjectRepo) SetTotal(ctx context.Context, id, total int) error {
	return r.update(ctx, id, "total_count", total)
}

// AddToTotal increments a subject's total_count by delta.
func (r *SubjectRepo) AddToTotal(ctx context.Context, id, delta int) error {
	n, err := r.s.exec(ctx, entsql.Update("subjects").Add("total_count", delta).Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("add to subject total: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("subject %d: %w", id, ErrNotFound)
	}
	return nil
}

// SubtractDay lowers every subject's total_count by its counts recorded
// on date, never going below zero.
func (r *SubjectRepo) SubtractDay(ctx context.Context, date string) error {
	_, err := r.s.execRaw(ctx, `
		UPDATE subjects SET total_count = MAX(0, total_count - COALESCE(
			(SELECT SUM(r.count) FROM study_records r
			 WHERE r.subject_id = subjects.id AND r.record_date = ?), 0))`, date)
	if err != nil {
		return fmt.Errorf("subtract day from subjects: %w", err)
	}
	return nil
}

// ZeroAll resets total_count on every subject.
func (r *SubjectRepo) ZeroAll(ctx context.Context) error {
	if _, err := r.s.exec(ctx, entsql.Update("subjects").Set("total_count", 0)); err != nil {
		return fmt.Errorf("zero subject totals: %w", err)
	}
	return nil
}

// Delete hard-deletes a subject. Its study records cascade.
func (r *SubjectRepo) Delete(ctx context.Context, id int) error {
	n, err := r.s.exec(ctx, entsql.Delete("subjects").Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("subject %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SubjectRepo) update(ctx context.Context, id int, column string, v any) error {
	n, err := r.s.exec(ctx, entsql.Update("subjects").Set(column, v).Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("update subject %s: %w", column, err)
	}
	if n == 0 {
		return fmt.Errorf("subject %d: %w", id, ErrNotFound)
	}
	return nil
}
