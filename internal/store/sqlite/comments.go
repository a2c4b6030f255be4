package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ionutdr23/GameMate/internal/domain"
)

const commentSelect = `
	SELECT id, post_id, profile_id, parent_id, content, edited, created_at, updated_at
	FROM comments
`

func scanComment(row scanner) (domain.Comment, error) {
	var (
		c                domain.Comment
		parent           sql.NullString
		created, updated string
	)
	err := row.Scan(&c.ID, &c.PostID, &c.ProfileID, &parent, &c.Content, &c.Edited, &created, &updated)
	if err != nil {
		return domain.Comment{}, err
	}
	c.ParentID = parent.String
	if c.CreatedAt, err = parseTime(created); err != nil {
		return domain.Comment{}, err
	}
	if c.UpdatedAt, err = parseTime(updated); err != nil {
		return domain.Comment{}, err
	}
	return c, nil
}

// CreateComment inserts the comment and bumps the post's comment count in
// one transaction.
func (db *DB) CreateComment(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id := newID()
	var parent any
	if c.ParentID != "" {
		parent = c.ParentID
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO comments (id, post_id, profile_id, parent_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, c.PostID, c.ProfileID, parent, c.Content, formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil {
		if foreignKeyViolation(err) {
			return domain.Comment{}, domain.ErrNotFound
		}
		return domain.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE posts SET comment_count = comment_count + 1 WHERE id = ?`, c.PostID); err != nil {
		return domain.Comment{}, fmt.Errorf("bump comment count: %w", err)
	}
	created, err := scanComment(tx.QueryRowContext(ctx, commentSelect+` WHERE id = ?`, id))
	if err != nil {
		return domain.Comment{}, fmt.Errorf("get comment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Comment{}, fmt.Errorf("commit tx: %w", err)
	}
	return created, nil
}

func (db *DB) GetComment(ctx context.Context, id string) (domain.Comment, error) {
	c, err := scanComment(db.conn.QueryRowContext(ctx, commentSelect+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Comment{}, domain.ErrNotFound
		}
		return domain.Comment{}, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

func (db *DB) ListComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	rows, err := db.conn.QueryContext(ctx, commentSelect+` WHERE post_id = ? ORDER BY created_at ASC, rowid ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := []domain.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return out, nil
}

func (db *DB) UpdateComment(ctx context.Context, id, content string, when time.Time) (domain.Comment, error) {
	c, err := scanComment(db.conn.QueryRowContext(ctx, `
		UPDATE comments SET content = ?, edited = 1, updated_at = ?
		WHERE id = ?
		RETURNING id, post_id, profile_id, parent_id, content, edited, created_at, updated_at`,
		content, formatTime(when), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Comment{}, domain.ErrNotFound
		}
		return domain.Comment{}, fmt.Errorf("update comment: %w", err)
	}
	return c, nil
}

// DeleteComments counts the rows first: SQLite excludes rows removed by
// ON DELETE CASCADE from the affected-row count.
func (db *DB) DeleteComments(ctx context.Context, postID string, ids []string) error {
	if len(ids) == 0 {
		return domain.ErrNotFound
	}
	in := `(?` + strings.Repeat(", ?", len(ids)-1) + `)`
	args := []any{postID}
	for _, id := range ids {
		args = append(args, id)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM comments WHERE post_id = ? AND id IN `+in, args...).Scan(&n); err != nil {
		return fmt.Errorf("count comments: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE post_id = ? AND id IN `+in, args...); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE posts SET comment_count = max(comment_count - ?, 0) WHERE id = ?`, n, postID); err != nil {
		return fmt.Errorf("lower comment count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
