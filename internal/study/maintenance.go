package study

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/studyhall/internal/store"
)

// Drift is a subject whose total_count disagrees with its records.
type Drift struct {
	SubjectID int
	Name      string
	Stored    int
	Recorded  int
}

func (d Drift) String() string {
	return fmt.Sprintf("%s (#%d): stored %d, records %d", d.Name, d.SubjectID, d.Stored, d.Recorded)
}

// ClearToday removes today's records and subtracts them from the subject
// totals.
func (s *Service) ClearToday(ctx context.Context) (int64, error) {
	today := s.Aggregator().Today()
	var n int64
	err := s.st.InTx(ctx, func(tx *store.Session) error {
		if err := tx.Subjects().SubtractDay(ctx, today); err != nil {
			return err
		}
		var err error
		n, err = tx.Records().DeleteOn(ctx, today)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("cleared today", "date", today, "records", n)
	return n, nil
}

// ClearSubject removes every record of one subject and zeroes its total.
func (s *Service) ClearSubject(ctx context.Context, id int) (int64, error) {
	var n int64
	err := s.st.InTx(ctx, func(tx *store.Session) error {
		if _, err := tx.Subjects().Get(ctx, id); err != nil {
			return err
		}
		var err error
		if n, err = tx.Records().DeleteForSubject(ctx, id); err != nil {
			return err
		}
		return tx.Subjects().SetTotal(ctx, id, 0)
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("cleared subject", "subject_id", id, "records", n)
	return n, nil
}

// ClearAll removes every record and unlock and zeroes all totals.
// Subjects, settings and the achievement catalog survive.
func (s *Service) ClearAll(ctx context.Context) error {
	err := s.st.InTx(ctx, func(tx *store.Session) error {
		if _, err := tx.Records().DeleteAll(ctx); err != nil {
			return err
		}
		if err := tx.Subjects().ZeroAll(ctx); err != nil {
			return err
		}
		_, err := tx.Achievements().DeleteUnlocks(ctx)
		return err
	})
	if err == nil {
		s.log.Warn("cleared all study data")
	}
	return err
}

// Reconcile rewrites total_count from the records for every subject and
// returns the subjects that had drifted.
func (s *Service) Reconcile(ctx context.Context) ([]Drift, error) {
	var drifted []Drift
	err := s.st.InTx(ctx, func(tx *store.Session) error {
		var err error
		if drifted, err = drifts(ctx, tx); err != nil {
			return err
		}
		for _, d := range drifted {
			if err := tx.Subjects().SetTotal(ctx, d.SubjectID, d.Recorded); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, d := range drifted {
		s.log.Warn("subject total repaired", "subject", d.Name, "stored", d.Stored, "recorded", d.Recorded)
	}
	return drifted, nil
}

// VerifyTotals reports drift as store.ErrInvariantViolation without
// repairing it.
func (s *Service) VerifyTotals(ctx context.Context) error {
	drifted, err := drifts(ctx, s.st.Session())
	if err != nil {
		return err
	}
	if len(drifted) == 0 {
		return nil
	}
	parts := make([]string, len(drifted))
	for i, d := range drifted {
		parts[i] = d.String()
	}
	return fmt.Errorf("subject totals drifted: %s: %w", strings.Join(parts, "; "), store.ErrInvariantViolation)
}

func drifts(ctx context.Context, sess *store.Session) ([]Drift, error) {
	subs, err := sess.Subjects().ListActive(ctx)
	if err != nil {
		return nil, err
	}
	sums, err := sess.Records().SumsBySubject(ctx)
	if err != nil {
		return nil, err
	}
	recorded := make(map[int]int, len(sums))
	for _, sum := range sums {
		recorded[sum.SubjectID] = sum.Total
	}

	var out []Drift
	for _, sub := range subs {
		if got := recorded[sub.ID]; got != sub.TotalCount {
			out = append(out, Drift{SubjectID: sub.ID, Name: sub.Name, Stored: sub.TotalCount, Recorded: got})
		}
	}
	return out, nil
}
