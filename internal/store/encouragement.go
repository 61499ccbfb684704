package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// Encouragement is one stored encouragement message.
type Encouragement struct {
	ID           int       `db:"id"`
	PersonaName  string    `db:"persona_name"`
	TriggerScene string    `db:"trigger_scene"`
	Content      string    `db:"content"`
	CreatedAt    time.Time `db:"created_at"`
	RequestID    string    `db:"request_id"`
}

// EncouragementRepo stores the encouragement history.
type EncouragementRepo struct{ s *Session }

// Add stores e and prunes the history down to the newest keep rows.
func (r *EncouragementRepo) Add(ctx context.Context, e Encouragement, keep int) (Encouragement, error) {
	e.CreatedAt = r.s.now()
	id, err := r.s.insert(ctx, entsql.Insert("encouragements").
		Columns("persona_name", "trigger_scene", "content", "created_at", "request_id").
		Values(e.PersonaName, e.TriggerScene, e.Content, e.CreatedAt, e.RequestID))
	if err != nil {
		return Encouragement{}, fmt.Errorf("add encouragement: %w", err)
	}
	e.ID = id

	if keep > 0 {
		_, err := r.s.execRaw(ctx, `
			DELETE FROM encouragements WHERE id NOT IN (
				SELECT id FROM encouragements ORDER BY created_at DESC, id DESC LIMIT ?)`, keep)
		if err != nil {
			return Encouragement{}, fmt.Errorf("prune encouragements: %w", err)
		}
	}
	return e, nil
}

// Recent returns up to limit encouragements, newest first.
func (r *EncouragementRepo) Recent(ctx context.Context, limit int) ([]Encouragement, error) {
	var out []Encouragement
	sel := entsql.Select("*").From(entsql.Table("encouragements")).OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	if err := r.s.selectAll(ctx, &out, sel); err != nil {
		return nil, fmt.Errorf("recent encouragements: %w", err)
	}
	return out, nil
}
