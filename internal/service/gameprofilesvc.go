package service

import (
	"context"
	"errors"

	"github.com/ionutdr23/GameMate/internal/domain"
)

type GameProfileService struct {
	Profiles     ProfilesStore
	Games        GamesStore
	GameProfiles GameProfilesStore
}

// normalize applies domain.GameProfileRequest.Normalized and checks the
// result against the game's skill levels and the known tags.
func (s *GameProfileService) normalize(ctx context.Context, r domain.GameProfileRequest) (domain.GameProfileRequest, error) {
	r = r.Normalized()

	var (
		g     domain.Game
		found bool
	)
	if r.GameID != "" {
		var err error
		g, err = s.Games.GetGame(ctx, r.GameID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return r, err
		default:
			found = true
		}
	}
	if fields := domain.GameProfileErrors(r, g, found); fields != nil {
		return r, domain.NewValidationError(fields)
	}
	return r, nil
}

func (s *GameProfileService) Create(ctx context.Context, userID string, r domain.GameProfileRequest) (domain.GameProfile, error) {
	own, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return domain.GameProfile{}, err
	}
	r, err = s.normalize(ctx, r)
	if err != nil {
		return domain.GameProfile{}, err
	}
	return s.GameProfiles.CreateGameProfile(ctx, own.ID, r)
}

// Update replaces the caller's game profile for r.GameID.
func (s *GameProfileService) Update(ctx context.Context, userID string, r domain.GameProfileRequest) (domain.GameProfile, error) {
	own, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return domain.GameProfile{}, err
	}
	r, err = s.normalize(ctx, r)
	if err != nil {
		return domain.GameProfile{}, err
	}
	return s.GameProfiles.UpdateGameProfile(ctx, own.ID, r)
}

func (s *GameProfileService) Delete(ctx context.Context, userID, gameProfileID string) error {
	own, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return err
	}
	owner, err := s.GameProfiles.GameProfileOwner(ctx, gameProfileID)
	if err != nil {
		return err
	}
	if owner != own.ID {
		return domain.ErrForbidden
	}
	return s.GameProfiles.DeleteGameProfile(ctx, gameProfileID)
}
