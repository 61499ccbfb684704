package store

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/jmoiron/sqlx"
)

// DateLayout is the storage format of calendar dates.
const DateLayout = "2006-01-02"

// Session is a unit of work over either the connection pool or an open
// transaction. Repositories obtained from a Session share its scope.
// A Session must not be used after its transaction has finished.
type Session struct {
	q   sqlx.ExtContext
	now func() time.Time
}

func (s *Session) Users() *UserRepo                   { return &UserRepo{s} }
func (s *Session) Subjects() *SubjectRepo             { return &SubjectRepo{s} }
func (s *Session) Records() *RecordRepo               { return &RecordRepo{s} }
func (s *Session) Achievements() *AchievementRepo     { return &AchievementRepo{s} }
func (s *Session) Settings() *SettingRepo             { return &SettingRepo{s} }
func (s *Session) Personas() *PersonaRepo             { return &PersonaRepo{s} }
func (s *Session) Encouragements() *EncouragementRepo { return &EncouragementRepo{s} }
func (s *Session) LLMEvents() *LLMEventRepo           { return &LLMEventRepo{s} }

// Now returns the session clock.
func (s *Session) Now() time.Time {
	return s.now()
}

// exec runs a query produced by an ent SQL builder.
func (s *Session) exec(ctx context.Context, b entsql.Querier) (int64, error) {
	query, args := b.Query()
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// insert runs an insert builder and returns the new row id.
func (s *Session) insert(ctx context.Context, b entsql.Querier) (int, error) {
	query, args := b.Query()
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// selectAll scans the rows of a builder query into dest.
func (s *Session) selectAll(ctx context.Context, dest any, b entsql.Querier) error {
	query, args := b.Query()
	return sqlx.SelectContext(ctx, s.q, dest, query, args...)
}

// get scans a single row of a builder query into dest.
func (s *Session) get(ctx context.Context, dest any, b entsql.Querier) error {
	query, args := b.Query()
	return sqlx.GetContext(ctx, s.q, dest, query, args...)
}

// getRaw scans a single row of a hand-written query into dest.
func (s *Session) getRaw(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.GetContext(ctx, s.q, dest, query, args...)
}

// selectRaw scans the rows of a hand-written query into dest.
func (s *Session) selectRaw(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, s.q, dest, query, args...)
}

// execRaw runs a hand-written statement and returns the affected row count.
func (s *Session) execRaw(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
