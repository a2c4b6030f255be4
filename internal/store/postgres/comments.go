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

type CommentsStore struct {
	pool *pgxpool.Pool
}

func NewCommentsStore(pool *pgxpool.Pool) *CommentsStore {
	return &CommentsStore{pool: pool}
}

const commentSelect = `
	SELECT id, post_id, profile_id, parent_id, content, edited, created_at, updated_at
	FROM comments
`

func scanComment(row pgx.Row) (domain.Comment, error) {
	var (
		c                                   domain.Comment
		idUUID, postUUID, ownerUUID, parent pgtype.UUID
	)
	err := row.Scan(&idUUID, &postUUID, &ownerUUID, &parent, &c.Content, &c.Edited, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Comment{}, err
	}
	c.ID = uuidOrEmpty(idUUID)
	c.PostID = uuidOrEmpty(postUUID)
	c.ProfileID = uuidOrEmpty(ownerUUID)
	c.ParentID = uuidOrEmpty(parent)
	return c, nil
}

// CreateComment inserts the comment and bumps the post's comment count in
// one transaction.
func (s *CommentsStore) CreateComment(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Comment{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insert = `
		INSERT INTO comments (post_id, profile_id, parent_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var idUUID pgtype.UUID
	err = tx.QueryRow(ctx, insert, c.PostID, c.ProfileID, nullIfEmpty(c.ParentID), c.Content, c.CreatedAt, c.UpdatedAt).Scan(&idUUID)
	if err != nil {
		if foreignKeyViolation(err) || badID(err) {
			return domain.Comment{}, domain.ErrNotFound
		}
		return domain.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE posts SET comment_count = comment_count + 1 WHERE id = $1`, c.PostID); err != nil {
		return domain.Comment{}, fmt.Errorf("bump comment count: %w", err)
	}
	created, err := scanComment(tx.QueryRow(ctx, commentSelect+` WHERE id = $1`, idUUID))
	if err != nil {
		return domain.Comment{}, fmt.Errorf("get comment: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Comment{}, fmt.Errorf("commit tx: %w", err)
	}
	return created, nil
}

func (s *CommentsStore) GetComment(ctx context.Context, id string) (domain.Comment, error) {
	c, err := scanComment(s.pool.QueryRow(ctx, commentSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || badID(err) {
			return domain.Comment{}, domain.ErrNotFound
		}
		return domain.Comment{}, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

func (s *CommentsStore) ListComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	rows, err := s.pool.Query(ctx, commentSelect+` WHERE post_id = $1 ORDER BY created_at ASC, id ASC`, postID)
	if err != nil {
		if badID(err) {
			return []domain.Comment{}, nil
		}
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

func (s *CommentsStore) UpdateComment(ctx context.Context, id, content string, when time.Time) (domain.Comment, error) {
	const q = `
		UPDATE comments SET content = $2, edited = true, updated_at = $3
		WHERE id = $1
		RETURNING id, post_id, profile_id, parent_id, content, edited, created_at, updated_at
	`
	c, err := scanComment(s.pool.QueryRow(ctx, q, id, content, when))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || badID(err) {
			return domain.Comment{}, domain.ErrNotFound
		}
		return domain.Comment{}, fmt.Errorf("update comment: %w", err)
	}
	return c, nil
}

// DeleteComments removes ids from postID and lowers the post's comment count
// by the number of comments that existed, in one transaction.
func (s *CommentsStore) DeleteComments(ctx context.Context, postID string, ids []string) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var n int
	err = tx.QueryRow(ctx, `SELECT count(*) FROM comments WHERE post_id = $1 AND id = ANY($2::uuid[])`, postID, ids).Scan(&n)
	if err != nil {
		if badID(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("count comments: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE post_id = $1 AND id = ANY($2::uuid[])`, postID, ids); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	const lower = `UPDATE posts SET comment_count = GREATEST(comment_count - $2, 0) WHERE id = $1`
	if _, err := tx.Exec(ctx, lower, postID, n); err != nil {
		return fmt.Errorf("lower comment count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
