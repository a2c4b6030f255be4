package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ionutdr23/GameMate/internal/domain"
)

const postSelect = `
	SELECT id, profile_id, content, visibility, tags, comment_count, reaction_count, edited, created_at, updated_at
	FROM posts
`

func scanPost(row scanner) (domain.Post, error) {
	var (
		p                domain.Post
		visibility, tags string
		created, updated string
	)
	err := row.Scan(&p.ID, &p.ProfileID, &p.Content, &visibility, &tags,
		&p.CommentCount, &p.ReactionCount, &p.Edited, &created, &updated)
	if err != nil {
		return domain.Post{}, err
	}
	p.Visibility = domain.Visibility(visibility)
	if p.Tags, err = decodeList(tags); err != nil {
		return domain.Post{}, err
	}
	if p.CreatedAt, err = parseTime(created); err != nil {
		return domain.Post{}, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return domain.Post{}, err
	}
	return p, nil
}

func (db *DB) CreatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	tags, err := encodeList(p.Tags)
	if err != nil {
		return domain.Post{}, err
	}
	id := newID()
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO posts (id, profile_id, content, visibility, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, p.ProfileID, p.Content, string(p.Visibility), tags, formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		if foreignKeyViolation(err) {
			return domain.Post{}, domain.ErrNotFound
		}
		return domain.Post{}, fmt.Errorf("create post: %w", err)
	}
	return db.GetPost(ctx, id)
}

func (db *DB) GetPost(ctx context.Context, id string) (domain.Post, error) {
	p, err := scanPost(db.conn.QueryRowContext(ctx, postSelect+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Post{}, domain.ErrNotFound
		}
		return domain.Post{}, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

func (db *DB) ListPosts(ctx context.Context, profileID string, visible []domain.Visibility, offset, limit int) ([]domain.Post, int, error) {
	if len(visible) == 0 {
		return []domain.Post{}, 0, nil
	}
	where := ` WHERE profile_id = ? AND visibility IN (?` + strings.Repeat(", ?", len(visible)-1) + `)`
	args := []any{profileID}
	for _, v := range visible {
		args = append(args, string(v))
	}

	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM posts`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, postSelect+where+` ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	out := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return out, total, nil
}

func (db *DB) UpdatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	tags, err := encodeList(p.Tags)
	if err != nil {
		return domain.Post{}, err
	}
	res, err := db.conn.ExecContext(ctx, `
		UPDATE posts SET content = ?, visibility = ?, tags = ?, edited = ?, updated_at = ?
		WHERE id = ?`,
		p.Content, string(p.Visibility), tags, p.Edited, formatTime(p.UpdatedAt), p.ID)
	if err != nil {
		return domain.Post{}, fmt.Errorf("update post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Post{}, domain.ErrNotFound
	}
	return db.GetPost(ctx, p.ID)
}

// DeletePost relies on ON DELETE CASCADE for the post's comments and reactions.
func (db *DB) DeletePost(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
