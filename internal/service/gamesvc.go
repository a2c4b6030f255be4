package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ionutdr23/GameMate/internal/domain"
)

type GameService struct {
	Games  GamesStore
	Cache  GameCache
	Logger *slog.Logger
}

func (s *GameService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// List returns the catalog, reading through the cache when one is configured.
// Cache failures are logged and fall back to the store.
func (s *GameService) List(ctx context.Context) ([]domain.Game, error) {
	if s.Cache != nil {
		games, ok, err := s.Cache.Get(ctx)
		if err != nil {
			s.logger().Warn("games: cache read failed", "err", err)
		} else if ok {
			return games, nil
		}
	}
	games, err := s.Games.ListGames(ctx)
	if err != nil {
		return nil, err
	}
	if games == nil {
		games = []domain.Game{}
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, games); err != nil {
			s.logger().Warn("games: cache write failed", "err", err)
		}
	}
	return games, nil
}

func normalizeSkillLevels(levels []string) []string {
	out := make([]string, 0, len(levels))
	seen := make(map[string]bool, len(levels))
	for _, l := range levels {
		l = strings.TrimSpace(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

func (s *GameService) Create(ctx context.Context, name string, skillLevels []string) (domain.Game, error) {
	name = strings.TrimSpace(name)
	skillLevels = normalizeSkillLevels(skillLevels)
	fields := map[string]string{}
	if name == "" || len(name) > 100 {
		fields["name"] = "must be 1-100 characters"
	}
	if len(skillLevels) == 0 {
		fields["skillLevels"] = "at least one required"
	}
	if len(fields) > 0 {
		return domain.Game{}, domain.NewValidationError(fields)
	}
	g, err := s.Games.CreateGame(ctx, name, skillLevels)
	if err != nil {
		return domain.Game{}, err
	}
	s.invalidate(ctx)
	return g, nil
}

func (s *GameService) Delete(ctx context.Context, id string) error {
	if err := s.Games.DeleteGame(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Seed creates every game whose name is not in the catalog yet.
func (s *GameService) Seed(ctx context.Context, games []domain.Game) (int, error) {
	created := 0
	for _, g := range games {
		if _, err := s.Create(ctx, g.Name, g.SkillLevels); err != nil {
			if errors.Is(err, domain.ErrGameExists) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *GameService) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx); err != nil {
		s.logger().Warn("games: cache invalidate failed", "err", err)
	}
}
