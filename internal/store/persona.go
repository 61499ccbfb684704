package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// Persona kinds.
const (
	PersonaSystem = "system"
	PersonaCustom = "custom"
)

// Persona is a voice encouragement messages are written in.
type Persona struct {
	ID           int       `db:"id"`
	Name         string    `db:"name"`
	Kind         string    `db:"kind"`
	Description  string    `db:"description"`
	SystemPrompt string    `db:"system_prompt"`
	ToneStyle    string    `db:"tone_style"`
	Color        string    `db:"color"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
}

// PersonaRepo manages encouragement personas.
type PersonaRepo struct{ s *Session }

// Create inserts a persona and returns it with its id.
func (r *PersonaRepo) Create(ctx context.Context, p Persona) (Persona, error) {
	if p.Kind == "" {
		p.Kind = PersonaCustom
	}
	if p.Color == "" {
		p.Color = DefaultSubjectColor
	}
	p.IsActive = true
	p.CreatedAt = r.s.now()
	id, err := r.s.insert(ctx, entsql.Insert("personas").
		Columns("name", "kind", "description", "system_prompt", "tone_style", "color", "is_active", "created_at").
		Values(p.Name, p.Kind, p.Description, p.SystemPrompt, p.ToneStyle, p.Color, p.IsActive, p.CreatedAt))
	if err != nil {
		return Persona{}, fmt.Errorf("create persona: %w", err)
	}
	p.ID = id
	return p, nil
}

// Get returns the persona with id, or ErrNotFound.
func (r *PersonaRepo) Get(ctx context.Context, id int) (Persona, error) {
	var p Persona
	if err := r.s.get(ctx, &p, entsql.Select("*").From(entsql.Table("personas")).Where(entsql.EQ("id", id))); err != nil {
		return Persona{}, notFound(err, "persona", id)
	}
	return p, nil
}

// ListActive returns active personas, system presets first.
func (r *PersonaRepo) ListActive(ctx context.Context) ([]Persona, error) {
	var out []Persona
	err := r.s.selectAll(ctx, &out, entsql.Select("*").
		From(entsql.Table("personas")).
		Where(entsql.EQ("is_active", true)).
		OrderBy(entsql.Desc("kind"), "created_at", "id"))
	if err != nil {
		return nil, fmt.Errorf("list personas: %w", err)
	}
	return out, nil
}

// Count returns the number of personas, active or not.
func (r *PersonaRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.s.getRaw(ctx, &n, "SELECT COUNT(*) FROM personas"); err != nil {
		return 0, fmt.Errorf("count personas: %w", err)
	}
	return n, nil
}

// UpdatePrompt replaces a persona's system prompt.
func (r *PersonaRepo) UpdatePrompt(ctx context.Context, id int, prompt string) error {
	n, err := r.s.exec(ctx, entsql.Update("personas").Set("system_prompt", prompt).Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("update persona prompt: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("persona %d: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a persona. System presets can be deleted too.
func (r *PersonaRepo) Delete(ctx context.Context, id int) error {
	n, err := r.s.exec(ctx, entsql.Delete("personas").Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("delete persona: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("persona %d: %w", id, ErrNotFound)
	}
	return nil
}
