// Package gamesync saves an edited list of game profiles by executing the
// reconciliation plan against the backend.
package gamesync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ionutdr23/GameMate/internal/domain"
	"github.com/ionutdr23/GameMate/internal/reconcile"
)

var (
	ErrPartialFailure = errors.New("some game profile changes failed")
	// ErrNotRefreshed is returned by Result.Retry when the profile could not
	// be refetched after the plan ran.
	ErrNotRefreshed = errors.New("profile not refreshed after sync")
)

const defaultConcurrency = 4

type Backend interface {
	CreateGameProfile(ctx context.Context, req domain.GameProfileRequest) (domain.GameProfile, error)
	UpdateGameProfile(ctx context.Context, req domain.GameProfileRequest) (domain.GameProfile, error)
	DeleteGameProfile(ctx context.Context, gameProfileID string) error
}

type Session interface {
	Ensure(ctx context.Context) (domain.Profile, error)
	Refresh(ctx context.Context) (domain.Profile, error)
}

type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Outcome is the result of one backend call of a plan.
type Outcome struct {
	Op     Op
	GameID string
	Err    error
}

type Result struct {
	Plan     reconcile.GameProfilePlan
	Outcomes []Outcome
	// Profile is the viewer profile refetched after the plan ran. It is the
	// zero value if that refetch failed, and Refreshed is false.
	Profile   domain.Profile
	Refreshed bool
}

func (r Result) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// Retry recomputes the plan for target against the refetched profile, which
// leaves only the changes that did not land. Without a refetched profile the
// remainder is unknown and Retry fails with ErrNotRefreshed.
func (r Result) Retry(target []domain.GameProfileRequest) (reconcile.GameProfilePlan, error) {
	if !r.Refreshed {
		return reconcile.GameProfilePlan{}, ErrNotRefreshed
	}
	return reconcile.GameProfiles(r.Profile.GameProfiles, target), nil
}

type Syncer struct {
	Backend     Backend
	Session     Session
	Logger      *slog.Logger
	Concurrency int
}

// Plan computes what Sync would do without calling the backend.
func (s *Syncer) Plan(ctx context.Context, target []domain.GameProfileRequest) (reconcile.GameProfilePlan, error) {
	viewer, err := s.Session.Ensure(ctx)
	if err != nil {
		return reconcile.GameProfilePlan{}, err
	}
	return reconcile.GameProfiles(viewer.GameProfiles, target), nil
}

// Sync makes the viewer's game profiles match target. Every call of the plan
// is issued and awaited; failures are collected per entity rather than
// aborting the rest. The viewer profile is refetched afterwards in all cases.
func (s *Syncer) Sync(ctx context.Context, target []domain.GameProfileRequest) (Result, error) {
	logger := s.logger()

	plan, err := s.Plan(ctx, target)
	if err != nil {
		return Result{}, err
	}
	res := Result{Plan: plan}
	if plan.Empty() {
		logger.Debug("game profiles already in sync")
		res.Profile, err = s.Session.Ensure(ctx)
		res.Refreshed = err == nil
		return res, err
	}

	res.Outcomes = s.execute(ctx, plan)

	fresh, refreshErr := s.Session.Refresh(ctx)
	if refreshErr == nil {
		res.Profile, res.Refreshed = fresh, true
	} else {
		logger.Warn("refetch after game profile sync failed", "err", refreshErr)
	}

	failed := res.Failed()
	logger.Info("game profile sync finished",
		"create", len(plan.Create), "update", len(plan.Update), "delete", len(plan.Delete),
		"failed", len(failed))

	var errs []error
	if len(failed) > 0 {
		errs = append(errs, fmt.Errorf("%w (%d of %d): %w", ErrPartialFailure, len(failed), len(res.Outcomes), failed[0].Err))
	}
	if refreshErr != nil {
		errs = append(errs, fmt.Errorf("refresh profile: %w", refreshErr))
	}
	return res, errors.Join(errs...)
}

func (s *Syncer) execute(ctx context.Context, plan reconcile.GameProfilePlan) []Outcome {
	outcomes := make([]Outcome, 0, plan.Len())
	var mu sync.Mutex
	record := func(o Outcome) {
		if o.Err != nil {
			s.logger().Warn("game profile change failed", "op", string(o.Op), "game_id", o.GameID, "err", o.Err)
		}
		mu.Lock()
		outcomes = append(outcomes, o)
		mu.Unlock()
	}

	limit := s.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	// Errors are recorded, never returned, so one failure does not cancel
	// the remaining calls.
	var g errgroup.Group
	g.SetLimit(limit)

	for _, r := range plan.Create {
		r := r
		g.Go(func() error {
			_, err := s.Backend.CreateGameProfile(ctx, r)
			record(Outcome{Op: OpCreate, GameID: r.GameID, Err: err})
			return nil
		})
	}
	for _, r := range plan.Update {
		r := r
		g.Go(func() error {
			_, err := s.Backend.UpdateGameProfile(ctx, r)
			record(Outcome{Op: OpUpdate, GameID: r.GameID, Err: err})
			return nil
		})
	}
	for _, gp := range plan.Delete {
		gp := gp
		g.Go(func() error {
			err := s.Backend.DeleteGameProfile(ctx, gp.ID)
			record(Outcome{Op: OpDelete, GameID: gp.Game.ID, Err: err})
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (s *Syncer) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
