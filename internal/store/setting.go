package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// Setting is one key/value pair of free-form configuration.
type Setting struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

// SettingRepo is a key/value store for app configuration, including the
// external AI credentials.
type SettingRepo struct{ s *Session }

// Get returns the value for key and whether it was set.
func (r *SettingRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := r.s.get(ctx, &v, entsql.Select("value").From(entsql.Table("settings")).Where(entsql.EQ("key", key)))
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %q: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key, replacing any previous value.
func (r *SettingRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.s.execRaw(ctx, `
		INSERT INTO settings ("key", value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT("key") DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, r.s.now())
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *SettingRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.s.exec(ctx, entsql.Delete("settings").Where(entsql.EQ("key", key))); err != nil {
		return fmt.Errorf("delete setting %q: %w", key, err)
	}
	return nil
}

// All returns every setting ordered by key.
func (r *SettingRepo) All(ctx context.Context) ([]Setting, error) {
	var out []Setting
	if err := r.s.selectAll(ctx, &out, entsql.Select("*").From(entsql.Table("settings")).OrderBy("key")); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return out, nil
}
