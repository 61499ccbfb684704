package store

import (
	"context"
	"fmt"
)

// defaultSubjects are created together with the user row on first open.
var defaultSubjects = []NewSubject{
	{Name: "Algorithms", Icon: "💻", Color: "#4A7FFF"},
	{Name: "Math", Icon: "📐", Color: "#27AE60"},
	{Name: "English Reading", Icon: "📖", Color: "#E67E22"},
}

// seedDefaults runs inside the Open transaction. Subjects are seeded only
// when the user row is created, so deleting every subject later does not
// bring the defaults back.
func (s *Store) seedDefaults(tx *Session) error {
	ctx := context.Background()
	created, err := tx.Users().Ensure(ctx)
	if err != nil {
		return err
	}
	if !created || !s.seedSubjects {
		return nil
	}
	for _, ns := range defaultSubjects {
		if _, err := tx.Subjects().Create(ctx, ns); err != nil {
			return fmt.Errorf("seed subject %q: %w", ns.Name, err)
		}
	}
	return nil
}
