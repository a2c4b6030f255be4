package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ionutdr23/GameMate/internal/domain"
)

const profileColumns = `id, user_id, nickname, avatar_url, bio, location, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (domain.Profile, error) {
	var (
		p                domain.Profile
		created, updated string
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.Nickname, &p.AvatarURL, &p.Bio, &p.Location, &created, &updated); err != nil {
		return domain.Profile{}, err
	}
	var err error
	if p.CreatedAt, err = parseTime(created); err != nil {
		return domain.Profile{}, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}

func mapProfileWriteError(err error) error {
	switch {
	case uniqueOn(err, "profiles.user_id"):
		return domain.ErrProfileExists
	case uniqueOn(err, "profiles.nickname"):
		return domain.ErrNicknameTaken
	}
	return fmt.Errorf("write profile: %w", err)
}

func (db *DB) CreateProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	p.ID = newID()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO profiles (`+profileColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Nickname, p.AvatarURL, p.Bio, p.Location, formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return domain.Profile{}, mapProfileWriteError(err)
	}
	return db.GetProfileByID(ctx, p.ID)
}

func (db *DB) UpdateProfile(ctx context.Context, profileID string, in domain.ProfileInput, when time.Time) (domain.Profile, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE profiles SET nickname = ?, bio = ?, location = ?, updated_at = ? WHERE id = ?`,
		in.Nickname, in.Bio, in.Location, formatTime(when), profileID)
	if err != nil {
		return domain.Profile{}, mapProfileWriteError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Profile{}, domain.ErrNotFound
	}
	return db.GetProfileByID(ctx, profileID)
}

func (db *DB) GetProfileByID(ctx context.Context, id string) (domain.Profile, error) {
	p, err := scanProfile(db.conn.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Profile{}, domain.ErrNotFound
		}
		return domain.Profile{}, fmt.Errorf("get profile by id: %w", err)
	}
	return p, nil
}

func (db *DB) GetProfileByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	p, err := scanProfile(db.conn.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Profile{}, domain.ErrNotFound
		}
		return domain.Profile{}, fmt.Errorf("get profile by user: %w", err)
	}
	return p, nil
}

func (db *DB) NicknameTaken(ctx context.Context, nickname, excludeID string) (bool, error) {
	var taken bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM profiles WHERE nickname = ? AND id <> ?)`,
		nickname, excludeID).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check nickname: %w", err)
	}
	return taken, nil
}

func (db *DB) SearchProfiles(ctx context.Context, viewerID, nickname string, limit int) ([]domain.SearchResult, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	const q = `
		SELECT p.id, p.nickname, p.avatar_url,
			EXISTS (SELECT 1 FROM friendships f WHERE f.profile_id = ? AND f.friend_id = p.id)
		FROM profiles p
		WHERE p.id <> ? AND p.nickname LIKE ? ESCAPE '\'
		ORDER BY p.nickname ASC
		LIMIT ?
	`
	rows, err := db.conn.QueryContext(ctx, q, viewerID, viewerID, "%"+likeEscaper.Replace(nickname)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	defer rows.Close()

	out := []domain.SearchResult{}
	for rows.Next() {
		var r domain.SearchResult
		if err := rows.Scan(&r.ProfileID, &r.Nickname, &r.AvatarURL, &r.IsFriend); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	return out, nil
}
