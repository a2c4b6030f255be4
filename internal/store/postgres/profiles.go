package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ionutdr23/GameMate/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfilesStore struct {
	pool *pgxpool.Pool
}

func NewProfilesStore(pool *pgxpool.Pool) *ProfilesStore {
	return &ProfilesStore{pool: pool}
}

const profileColumns = `id, user_id, nickname, avatar_url, bio, location, created_at, updated_at`

func scanProfile(row pgx.Row) (domain.Profile, error) {
	var (
		p        domain.Profile
		idUUID   pgtype.UUID
		bio      pgtype.Text
		location pgtype.Text
	)
	if err := row.Scan(&idUUID, &p.UserID, &p.Nickname, &p.AvatarURL, &bio, &location, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return domain.Profile{}, err
	}
	p.ID = uuidOrEmpty(idUUID)
	p.Bio = textOrEmpty(bio)
	p.Location = textOrEmpty(location)
	return p, nil
}

func mapProfileWriteError(err error) error {
	if name, ok := uniqueViolation(err); ok {
		switch name {
		case "profiles_user_uq":
			return domain.ErrProfileExists
		case "profiles_nickname_lower_uq":
			return domain.ErrNicknameTaken
		default:
			return fmt.Errorf("unique violation (%s): %w", name, err)
		}
	}
	return fmt.Errorf("write profile: %w", err)
}

func (s *ProfilesStore) CreateProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	const q = `
		INSERT INTO profiles (user_id, nickname, avatar_url, bio, location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + profileColumns

	out, err := scanProfile(s.pool.QueryRow(ctx, q,
		p.UserID, p.Nickname, p.AvatarURL, nullIfEmpty(p.Bio), nullIfEmpty(p.Location), p.CreatedAt, p.UpdatedAt))
	if err != nil {
		return domain.Profile{}, mapProfileWriteError(err)
	}
	return out, nil
}

func (s *ProfilesStore) UpdateProfile(ctx context.Context, profileID string, in domain.ProfileInput, when time.Time) (domain.Profile, error) {
	const q = `
		UPDATE profiles
		SET nickname = $2, bio = $3, location = $4, updated_at = $5
		WHERE id = $1
		RETURNING ` + profileColumns

	out, err := scanProfile(s.pool.QueryRow(ctx, q,
		profileID, in.Nickname, nullIfEmpty(in.Bio), nullIfEmpty(in.Location), when))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || badID(err) {
			return domain.Profile{}, domain.ErrNotFound
		}
		return domain.Profile{}, mapProfileWriteError(err)
	}
	return out, nil
}

func (s *ProfilesStore) GetProfileByID(ctx context.Context, id string) (domain.Profile, error) {
	const q = `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	p, err := scanProfile(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || badID(err) {
			return domain.Profile{}, domain.ErrNotFound
		}
		return domain.Profile{}, fmt.Errorf("get profile by id: %w", err)
	}
	return p, nil
}

func (s *ProfilesStore) GetProfileByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	const q = `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

	p, err := scanProfile(s.pool.QueryRow(ctx, q, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, domain.ErrNotFound
		}
		return domain.Profile{}, fmt.Errorf("get profile by user: %w", err)
	}
	return p, nil
}

// NicknameTaken compares case-insensitively. excludeID, when set, is ignored
// so a profile may keep its own nickname.
func (s *ProfilesStore) NicknameTaken(ctx context.Context, nickname, excludeID string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM profiles
			WHERE lower(nickname) = lower($1) AND ($2 = '' OR id::text <> $2)
		)
	`
	var taken bool
	if err := s.pool.QueryRow(ctx, q, nickname, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("check nickname: %w", err)
	}
	return taken, nil
}

func (s *ProfilesStore) SearchProfiles(ctx context.Context, viewerID, nickname string, limit int) ([]domain.SearchResult, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	const q = `
		SELECT p.id, p.nickname, p.avatar_url,
			EXISTS (SELECT 1 FROM friendships f WHERE f.profile_id = $1 AND f.friend_id = p.id)
		FROM profiles p
		WHERE p.id <> $1 AND p.nickname ILIKE $2
		ORDER BY lower(p.nickname) ASC
		LIMIT $3
	`

	rows, err := s.pool.Query(ctx, q, viewerID, containsPattern(nickname), limit)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	defer rows.Close()

	out := []domain.SearchResult{}
	for rows.Next() {
		var (
			idUUID pgtype.UUID
			r      domain.SearchResult
		)
		if err := rows.Scan(&idUUID, &r.Nickname, &r.AvatarURL, &r.IsFriend); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		r.ProfileID = uuidOrEmpty(idUUID)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	return out, nil
}
