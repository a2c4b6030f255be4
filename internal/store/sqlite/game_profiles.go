package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ionutdr23/GameMate/internal/domain"
)

const gameProfileSelect = `
	SELECT gp.id, g.id, g.name, g.skill_levels, gp.skill_level, gp.playstyles, gp.platforms
	FROM game_profiles gp
	JOIN games g ON g.id = gp.game_id
`

func scanGameProfile(row scanner) (domain.GameProfile, error) {
	var (
		gp                            domain.GameProfile
		levels, playstyles, platforms string
	)
	if err := row.Scan(&gp.ID, &gp.Game.ID, &gp.Game.Name, &levels, &gp.SkillLevel, &playstyles, &platforms); err != nil {
		return domain.GameProfile{}, err
	}
	var err error
	if gp.Game.SkillLevels, err = decodeList(levels); err != nil {
		return domain.GameProfile{}, err
	}
	if gp.Playstyles, err = decodeList(playstyles); err != nil {
		return domain.GameProfile{}, err
	}
	if gp.Platforms, err = decodeList(platforms); err != nil {
		return domain.GameProfile{}, err
	}
	return gp, nil
}

func (db *DB) ListGameProfiles(ctx context.Context, profileID string) ([]domain.GameProfile, error) {
	rows, err := db.conn.QueryContext(ctx, gameProfileSelect+` WHERE gp.profile_id = ? ORDER BY gp.created_at ASC, gp.rowid ASC`, profileID)
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

func (db *DB) getGameProfile(ctx context.Context, id string) (domain.GameProfile, error) {
	gp, err := scanGameProfile(db.conn.QueryRowContext(ctx, gameProfileSelect+` WHERE gp.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.GameProfile{}, domain.ErrNotFound
		}
		return domain.GameProfile{}, fmt.Errorf("get game profile: %w", err)
	}
	return gp, nil
}

func encodeTags(r domain.GameProfileRequest) (string, string, error) {
	playstyles, err := encodeList(r.Playstyles)
	if err != nil {
		return "", "", err
	}
	platforms, err := encodeList(r.Platforms)
	if err != nil {
		return "", "", err
	}
	return playstyles, platforms, nil
}

func (db *DB) CreateGameProfile(ctx context.Context, profileID string, r domain.GameProfileRequest) (domain.GameProfile, error) {
	playstyles, platforms, err := encodeTags(r)
	if err != nil {
		return domain.GameProfile{}, err
	}
	id := newID()
	now := formatTime(db.now())
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO game_profiles (id, profile_id, game_id, skill_level, playstyles, platforms, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, profileID, r.GameID, r.SkillLevel, playstyles, platforms, now, now)
	if err != nil {
		if uniqueOn(err, "game_profiles.profile_id") {
			return domain.GameProfile{}, domain.ErrGameProfileExists
		}
		if foreignKeyViolation(err) {
			return domain.GameProfile{}, domain.ErrNotFound
		}
		return domain.GameProfile{}, fmt.Errorf("create game profile: %w", err)
	}
	return db.getGameProfile(ctx, id)
}

func (db *DB) UpdateGameProfile(ctx context.Context, profileID string, r domain.GameProfileRequest) (domain.GameProfile, error) {
	playstyles, platforms, err := encodeTags(r)
	if err != nil {
		return domain.GameProfile{}, err
	}
	var id string
	err = db.conn.QueryRowContext(ctx, `
		UPDATE game_profiles
		SET skill_level = ?, playstyles = ?, platforms = ?, updated_at = ?
		WHERE profile_id = ? AND game_id = ?
		RETURNING id`,
		r.SkillLevel, playstyles, platforms, formatTime(db.now()), profileID, r.GameID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.GameProfile{}, domain.ErrNotFound
		}
		return domain.GameProfile{}, fmt.Errorf("update game profile: %w", err)
	}
	return db.getGameProfile(ctx, id)
}

func (db *DB) GameProfileOwner(ctx context.Context, id string) (string, error) {
	var owner string
	err := db.conn.QueryRowContext(ctx, `SELECT profile_id FROM game_profiles WHERE id = ?`, id).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get game profile owner: %w", err)
	}
	return owner, nil
}

func (db *DB) DeleteGameProfile(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM game_profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete game profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
