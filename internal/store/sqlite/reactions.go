package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ionutdr23/GameMate/internal/domain"
)

const reactionSelect = `SELECT id, post_id, profile_id, type, created_at, updated_at FROM reactions`

func scanReaction(row scanner) (domain.Reaction, error) {
	var (
		r                     domain.Reaction
		typ, created, updated string
	)
	if err := row.Scan(&r.ID, &r.PostID, &r.ProfileID, &typ, &created, &updated); err != nil {
		return domain.Reaction{}, err
	}
	r.Type = domain.ReactionType(typ)
	var err error
	if r.CreatedAt, err = parseTime(created); err != nil {
		return domain.Reaction{}, err
	}
	if r.UpdatedAt, err = parseTime(updated); err != nil {
		return domain.Reaction{}, err
	}
	return r, nil
}

// UpsertReaction inserts or retypes the reaction and, for a new row, bumps
// the post's reaction count in the same transaction.
func (db *DB) UpsertReaction(ctx context.Context, postID, profileID string, t domain.ReactionType, when time.Time) (domain.Reaction, bool, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return domain.Reaction{}, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ts := formatTime(when)
	res, err := tx.ExecContext(ctx,
		`UPDATE reactions SET type = ?, updated_at = ? WHERE post_id = ? AND profile_id = ?`,
		string(t), ts, postID, profileID)
	if err != nil {
		return domain.Reaction{}, false, fmt.Errorf("update reaction: %w", err)
	}
	created := false
	if n, _ := res.RowsAffected(); n == 0 {
		created = true
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reactions (id, post_id, profile_id, type, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			newID(), postID, profileID, string(t), ts, ts)
		if err != nil {
			if foreignKeyViolation(err) {
				return domain.Reaction{}, false, domain.ErrNotFound
			}
			return domain.Reaction{}, false, fmt.Errorf("insert reaction: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE posts SET reaction_count = reaction_count + 1 WHERE id = ?`, postID); err != nil {
			return domain.Reaction{}, false, fmt.Errorf("bump reaction count: %w", err)
		}
	}

	r, err := scanReaction(tx.QueryRowContext(ctx, reactionSelect+` WHERE post_id = ? AND profile_id = ?`, postID, profileID))
	if err != nil {
		return domain.Reaction{}, false, fmt.Errorf("get reaction: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Reaction{}, false, fmt.Errorf("commit tx: %w", err)
	}
	return r, created, nil
}

func (db *DB) GetReaction(ctx context.Context, postID, profileID string) (domain.Reaction, error) {
	r, err := scanReaction(db.conn.QueryRowContext(ctx,
		reactionSelect+` WHERE post_id = ? AND profile_id = ?`, postID, profileID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Reaction{}, domain.ErrNotFound
		}
		return domain.Reaction{}, fmt.Errorf("get reaction: %w", err)
	}
	return r, nil
}

func (db *DB) DeleteReaction(ctx context.Context, postID, profileID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM reactions WHERE post_id = ? AND profile_id = ?`, postID, profileID)
	if err != nil {
		return fmt.Errorf("delete reaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE posts SET reaction_count = max(reaction_count - 1, 0) WHERE id = ?`, postID); err != nil {
		return fmt.Errorf("lower reaction count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (db *DB) ListReactions(ctx context.Context, postID string) ([]domain.Reaction, error) {
	rows, err := db.conn.QueryContext(ctx, reactionSelect+` WHERE post_id = ? ORDER BY updated_at DESC, rowid DESC`, postID)
	if err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}
	defer rows.Close()

	out := []domain.Reaction{}
	for rows.Next() {
		r, err := scanReaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reaction: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}
	return out, nil
}
