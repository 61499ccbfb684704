// Package study records study events and owns the operations that mutate
// subjects and records. Every mutation of a subject counter runs inside
// one store transaction.
package study

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/studyhall/internal/achievements"
	"github.com/abhisek/studyhall/internal/encourage"
	"github.com/abhisek/studyhall/internal/logger"
	"github.com/abhisek/studyhall/internal/progress"
	"github.com/abhisek/studyhall/internal/store"
)

// ErrInvalidCount is returned for a non-positive submission.
var ErrInvalidCount = errors.New("count must be greater than zero")

// ErrInvalidTarget is returned for a non-positive daily target or a
// negative total target.
var ErrInvalidTarget = errors.New("invalid target")

// Service is the entry point for recording study events.
type Service struct {
	st     *store.Store
	engine *achievements.Engine
	policy *encourage.Policy
	now    progress.Clock
	log    *logger.Logger
}

// New returns a Service. policy may be nil, in which case no scenes are
// evaluated.
func New(st *store.Store, engine *achievements.Engine, policy *encourage.Policy, now progress.Clock, log *logger.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{st: st, engine: engine, policy: policy, now: now, log: log}
}

// Aggregator returns a progress aggregator over a fresh session.
func (s *Service) Aggregator() *progress.Aggregator {
	return progress.New(s.st.Session(), s.now)
}

// SubmitResult is everything a submission changed.
type SubmitResult struct {
	Record        store.StudyRecord
	Count         int
	Subject       store.Subject
	Today         progress.TodayProgress
	SubjectToday  progress.TodayProgress
	Level         progress.LevelInfo
	Streak        int
	DaysSinceLast int
	Unlocked      []achievements.Unlock
	Scenes        []encourage.Scene
}

// AddRecord adds count questions for subjectID today, then evaluates
// achievements and encouragement scenes.
func (s *Service) AddRecord(ctx context.Context, subjectID, count int) (*SubmitResult, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}

	agg := s.Aggregator()
	daysSince, err := agg.DaysSinceLastStudy(ctx)
	if err != nil {
		return nil, err
	}

	res := &SubmitResult{Count: count, DaysSinceLast: daysSince}
	err = s.st.InTx(ctx, func(tx *store.Session) error {
		if _, err := tx.Subjects().Get(ctx, subjectID); err != nil {
			return err
		}
		rec, err := tx.Records().Add(ctx, subjectID, count, agg.Today())
		if err != nil {
			return err
		}
		res.Record = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Subject, err = s.st.Session().Subjects().Get(ctx, subjectID); err != nil {
		return nil, err
	}
	if res.Today, err = agg.TodayProgress(ctx); err != nil {
		return nil, err
	}
	if res.SubjectToday, err = agg.SubjectTodayProgress(ctx, subjectID); err != nil {
		return nil, err
	}
	if res.Streak, err = agg.StreakDays(ctx); err != nil {
		return nil, err
	}
	if res.Level, err = agg.LevelInfo(ctx); err != nil {
		return nil, err
	}

	speed, err := s.engine.CheckSpeedAchievement(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("speed achievements: %w", err)
	}
	swept, err := s.engine.CheckAchievements(ctx)
	if err != nil {
		return nil, fmt.Errorf("achievements: %w", err)
	}
	res.Unlocked = append(speed, swept...)

	if s.policy != nil {
		res.Scenes = s.policy.Evaluate(encourage.Facts{
			TodayCurrent:  res.Today.Current,
			TodayTarget:   res.Today.Target,
			StreakDays:    res.Streak,
			Count:         count,
			DaysSinceLast: daysSince,
			Unlocked:      len(res.Unlocked),
		})
	}

	s.log.Info("study recorded",
		"subject", res.Subject.Name,
		"count", count,
		"today", res.Today.Current,
		"streak", res.Streak,
		"unlocked", len(res.Unlocked))
	return res, nil
}

// EncouragementRequest returns a request for the highest-priority scene
// the submission fired, with the template values filled in.
func (r *SubmitResult) EncouragementRequest() (encourage.Request, bool) {
	if len(r.Scenes) == 0 {
		return encourage.Request{}, false
	}
	scene := r.Scenes[0]
	values := map[string]any{
		"current":     r.Today.Current,
		"target":      r.Today.Target,
		"streak_days": r.Streak,
		"count":       r.Count,
		"days":        r.DaysSinceLast,
		"total":       r.Level.Total,
	}
	if len(r.Unlocked) > 0 {
		values["achievement_name"] = r.Unlocked[0].Achievement.Name
		values["achievement_desc"] = r.Unlocked[0].Achievement.Description
	}
	return encourage.Request{Scene: scene, Values: values}, true
}

// Subjects returns the active subjects in creation order.
func (s *Service) Subjects(ctx context.Context) ([]store.Subject, error) {
	return s.st.Session().Subjects().ListActive(ctx)
}

// Subject returns one subject, or store.ErrNotFound.
func (s *Service) Subject(ctx context.Context, id int) (store.Subject, error) {
	return s.st.Session().Subjects().Get(ctx, id)
}

// SubjectByName looks a subject up by its name.
func (s *Service) SubjectByName(ctx context.Context, name string) (store.Subject, error) {
	return s.st.Session().Subjects().GetByName(ctx, strings.TrimSpace(name))
}

// AddSubject creates a subject. A taken name is store.ErrDuplicate.
func (s *Service) AddSubject(ctx context.Context, ns store.NewSubject) (store.Subject, error) {
	ns.Name = strings.TrimSpace(ns.Name)
	if ns.Name == "" {
		return store.Subject{}, errors.New("subject name must not be empty")
	}
	if ns.DailyTarget < 0 || ns.TotalTarget < 0 {
		return store.Subject{}, ErrInvalidTarget
	}
	var sub store.Subject
	err := s.st.InTx(ctx, func(tx *store.Session) error {
		var err error
		sub, err = tx.Subjects().Create(ctx, ns)
		return err
	})
	return sub, err
}

// RenameSubject changes a subject's name.
func (s *Service) RenameSubject(ctx context.Context, id int, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("subject name must not be empty")
	}
	return s.st.InTx(ctx, func(tx *store.Session) error {
		return tx.Subjects().Rename(ctx, id, name)
	})
}

// UpdateDailyTarget sets a subject's daily target.
func (s *Service) UpdateDailyTarget(ctx context.Context, id, target int) error {
	if target <= 0 {
		return fmt.Errorf("daily target %d: %w", target, ErrInvalidTarget)
	}
	return s.st.InTx(ctx, func(tx *store.Session) error {
		return tx.Subjects().SetDailyTarget(ctx, id, target)
	})
}

// UpdateTotalTarget sets a subject's total target. Zero means none.
func (s *Service) UpdateTotalTarget(ctx context.Context, id, target int) error {
	if target < 0 {
		return fmt.Errorf("total target %d: %w", target, ErrInvalidTarget)
	}
	return s.st.InTx(ctx, func(tx *store.Session) error {
		return tx.Subjects().SetTotalTarget(ctx, id, target)
	})
}

// DeleteSubject hard-deletes a subject and its records.
func (s *Service) DeleteSubject(ctx context.Context, id int) error {
	err := s.st.InTx(ctx, func(tx *store.Session) error {
		return tx.Subjects().Delete(ctx, id)
	})
	if err == nil {
		s.log.Info("subject deleted", "subject_id", id)
	}
	return err
}

// SaveGoals updates per-subject targets and sets the user targets to
// their sums, in one transaction. Subjects missing from a map keep their
// current target.
func (s *Service) SaveGoals(ctx context.Context, daily, total map[int]int) error {
	for id, t := range daily {
		if t <= 0 {
			return fmt.Errorf("subject %d daily target %d: %w", id, t, ErrInvalidTarget)
		}
	}
	for id, t := range total {
		if t < 0 {
			return fmt.Errorf("subject %d total target %d: %w", id, t, ErrInvalidTarget)
		}
	}

	return s.st.InTx(ctx, func(tx *store.Session) error {
		for id, t := range daily {
			if err := tx.Subjects().SetDailyTarget(ctx, id, t); err != nil {
				return err
			}
		}
		for id, t := range total {
			if err := tx.Subjects().SetTotalTarget(ctx, id, t); err != nil {
				return err
			}
		}

		subs, err := tx.Subjects().ListActive(ctx)
		if err != nil {
			return err
		}
		sumDaily, sumTotal := 0, 0
		for _, sub := range subs {
			sumDaily += sub.DailyTarget
			sumTotal += sub.TotalTarget
		}
		if sumDaily <= 0 {
			sumDaily = store.DefaultDailyTarget
		}
		return tx.Users().SetTargets(ctx, sumDaily, sumTotal)
	})
}

// User returns the aggregate targets.
func (s *Service) User(ctx context.Context) (store.UserConfig, error) {
	return s.st.Session().Users().Get(ctx)
}
