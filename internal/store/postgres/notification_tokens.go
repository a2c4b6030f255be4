package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ionutdr23/GameMate/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationTokensStore struct {
	pool *pgxpool.Pool
}

func NewNotificationTokensStore(pool *pgxpool.Pool) *NotificationTokensStore {
	return &NotificationTokensStore{pool: pool}
}

// UpsertToken moves an existing token to profileID, since a device belongs to
// whoever signed in on it last.
func (s *NotificationTokensStore) UpsertToken(ctx context.Context, profileID, token, platform string, when time.Time) (domain.NotificationToken, error) {
	const q = `
		INSERT INTO notification_tokens (profile_id, token, platform, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (token)
		DO UPDATE SET
			profile_id = EXCLUDED.profile_id,
			platform = EXCLUDED.platform,
			updated_at = EXCLUDED.updated_at
		RETURNING id, profile_id, token, platform, created_at, updated_at
	`

	var (
		t           domain.NotificationToken
		idUUID      pgtype.UUID
		profileUUID pgtype.UUID
	)
	err := s.pool.QueryRow(ctx, q, profileID, token, platform, when).Scan(
		&idUUID, &profileUUID, &t.Token, &t.Platform, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.NotificationToken{}, fmt.Errorf("upsert notification token: %w", err)
	}
	t.ID = uuidOrEmpty(idUUID)
	t.ProfileID = uuidOrEmpty(profileUUID)
	return t, nil
}

func (s *NotificationTokensStore) DeleteToken(ctx context.Context, profileID, token string) error {
	const q = `DELETE FROM notification_tokens WHERE profile_id = $1 AND token = $2`
	if _, err := s.pool.Exec(ctx, q, profileID, token); err != nil {
		return fmt.Errorf("delete notification token: %w", err)
	}
	return nil
}

func (s *NotificationTokensStore) ListTokens(ctx context.Context, profileID string) ([]domain.NotificationToken, error) {
	const q = `
		SELECT id, profile_id, token, platform, created_at, updated_at
		FROM notification_tokens
		WHERE profile_id = $1
		ORDER BY updated_at DESC
	`

	rows, err := s.pool.Query(ctx, q, profileID)
	if err != nil {
		return nil, fmt.Errorf("list notification tokens: %w", err)
	}
	defer rows.Close()

	var out []domain.NotificationToken
	for rows.Next() {
		var (
			t           domain.NotificationToken
			idUUID      pgtype.UUID
			profileUUID pgtype.UUID
		)
		if err := rows.Scan(&idUUID, &profileUUID, &t.Token, &t.Platform, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan notification token: %w", err)
		}
		t.ID = uuidOrEmpty(idUUID)
		t.ProfileID = uuidOrEmpty(profileUUID)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notification tokens: %w", err)
	}
	return out, nil
}
