package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ionutdr23/GameMate/internal/domain"
)

func scanToken(row scanner) (domain.NotificationToken, error) {
	var (
		t                domain.NotificationToken
		created, updated string
	)
	err := row.Scan(&t.ID, &t.ProfileID, &t.Token, &t.Platform, &created, &updated)
	if err != nil {
		return domain.NotificationToken{}, err
	}
	if t.CreatedAt, err = parseTime(created); err != nil {
		return domain.NotificationToken{}, err
	}
	if t.UpdatedAt, err = parseTime(updated); err != nil {
		return domain.NotificationToken{}, err
	}
	return t, nil
}

func (db *DB) UpsertToken(ctx context.Context, profileID, token, platform string, when time.Time) (domain.NotificationToken, error) {
	ts := formatTime(when)
	t, err := scanToken(db.conn.QueryRowContext(ctx, `
		INSERT INTO notification_tokens (id, profile_id, token, platform, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (token) DO UPDATE SET
			profile_id = excluded.profile_id,
			platform = excluded.platform,
			updated_at = excluded.updated_at
		RETURNING id, profile_id, token, platform, created_at, updated_at`,
		newID(), profileID, token, platform, ts, ts))
	if err != nil {
		return domain.NotificationToken{}, fmt.Errorf("upsert notification token: %w", err)
	}
	return t, nil
}

func (db *DB) DeleteToken(ctx context.Context, profileID, token string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM notification_tokens WHERE profile_id = ? AND token = ?`, profileID, token)
	if err != nil {
		return fmt.Errorf("delete notification token: %w", err)
	}
	return nil
}

func (db *DB) ListTokens(ctx context.Context, profileID string) ([]domain.NotificationToken, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, profile_id, token, platform, created_at, updated_at
		FROM notification_tokens
		WHERE profile_id = ?
		ORDER BY updated_at DESC`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list notification tokens: %w", err)
	}
	defer rows.Close()

	var out []domain.NotificationToken
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification token: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notification tokens: %w", err)
	}
	return out, nil
}
