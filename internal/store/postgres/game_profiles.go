package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ionutdr23/GameMate/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GameProfilesStore struct {
	pool *pgxpool.Pool
}

func NewGameProfilesStore(pool *pgxpool.Pool) *GameProfilesStore {
	return &GameProfilesStore{pool: pool}
}

const gameProfileSelect = `
	SELECT gp.id, g.id, g.name, g.skill_levels, gp.skill_level, gp.playstyles, gp.platforms
	FROM game_profiles gp
	JOIN games g ON g.id = gp.game_id
`

func scanGameProfile(row pgx.Row) (domain.GameProfile, error) {
	var (
		gp         domain.GameProfile
		idUUID     pgtype.UUID
		gameUUID   pgtype.UUID
		levels     pgtype.FlatArray[string]
		playstyles pgtype.FlatArray[string]
		platforms  pgtype.FlatArray[string]
	)
	if err := row.Scan(&idUUID, &gameUUID, &gp.Game.Name, &levels, &gp.SkillLevel, &playstyles, &platforms); err != nil {
		return domain.GameProfile{}, err
	}
	gp.ID = uuidOrEmpty(idUUID)
	gp.Game.ID = uuidOrEmpty(gameUUID)
	gp.Game.SkillLevels = textArrayOrEmpty(levels)
	gp.Playstyles = textArrayOrEmpty(playstyles)
	gp.Platforms = textArrayOrEmpty(platforms)
	return gp, nil
}

func (s *GameProfilesStore) ListGameProfiles(ctx context.Context, profileID string) ([]domain.GameProfile, error) {
	q := gameProfileSelect + ` WHERE gp.profile_id = $1 ORDER BY gp.created_at ASC, lower(g.name) ASC`

	rows, err := s.pool.Query(ctx, q, profileID)
	if err != nil {
		return nil, fmt.Errorf("list game profiles: %w", err)
	}
	defer rows.Close()

	out := []domain.GameProfile{}
	for rows.Next() {
		gp, err := scanGameProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game profile: %w", err)
		}
		out = append(out, gp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list game profiles: %w", err)
	}
	return out, nil
}

func (s *GameProfilesStore) get(ctx context.Context, id string) (domain.GameProfile, error) {
	gp, err := scanGameProfile(s.pool.QueryRow(ctx, gameProfileSelect+` WHERE gp.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.GameProfile{}, domain.ErrNotFound
		}
		return domain.GameProfile{}, fmt.Errorf("get game profile: %w", err)
	}
	return gp, nil
}

func (s *GameProfilesStore) CreateGameProfile(ctx context.Context, profileID string, r domain.GameProfileRequest) (domain.GameProfile, error) {
	const q = `
		INSERT INTO game_profiles (profile_id, game_id, skill_level, playstyles, platforms)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var idUUID pgtype.UUID
	err := s.pool.QueryRow(ctx, q, profileID, r.GameID, r.SkillLevel, r.Playstyles, r.Platforms).Scan(&idUUID)
	if err != nil {
		if c, ok := uniqueViolation(err); ok && c == "game_profiles_profile_game_uq" {
			return domain.GameProfile{}, domain.ErrGameProfileExists
		}
		if foreignKeyViolation(err) || badID(err) {
			return domain.GameProfile{}, domain.ErrNotFound
		}
		return domain.GameProfile{}, fmt.Errorf("create game profile: %w", err)
	}
	return s.get(ctx, uuidOrEmpty(idUUID))
}

// UpdateGameProfile replaces the profile's entry for r.GameID.
func (s *GameProfilesStore) UpdateGameProfile(ctx context.Context, profileID string, r domain.GameProfileRequest) (domain.GameProfile, error) {
	const q = `
		UPDATE game_profiles
		SET skill_level = $3, playstyles = $4, platforms = $5, updated_at = now()
		WHERE profile_id = $1 AND game_id = $2
		RETURNING id
	`
	var idUUID pgtype.UUID
	err := s.pool.QueryRow(ctx, q, profileID, r.GameID, r.SkillLevel, r.Playstyles, r.Platforms).Scan(&idUUID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || badID(err) {
			return domain.GameProfile{}, domain.ErrNotFound
		}
		return domain.GameProfile{}, fmt.Errorf("update game profile: %w", err)
	}
	return s.get(ctx, uuidOrEmpty(idUUID))
}

func (s *GameProfilesStore) GameProfileOwner(ctx context.Context, id string) (string, error) {
	var owner pgtype.UUID
	err := s.pool.QueryRow(ctx, `SELECT profile_id FROM game_profiles WHERE id = $1`, id).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || badID(err) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get game profile owner: %w", err)
	}
	return uuidOrEmpty(owner), nil
}

func (s *GameProfilesStore) DeleteGameProfile(ctx context.Context, id string) error {
	ct, err := s.pool.Exec(ctx, `DELETE FROM game_profiles WHERE id = $1`, id)
	if err != nil {
		if badID(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete game profile: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
