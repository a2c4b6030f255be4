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

type PostsStore struct {
	pool *pgxpool.Pool
}

func NewPostsStore(pool *pgxpool.Pool) *PostsStore {
	return &PostsStore{pool: pool}
}

const postSelect = `
	SELECT id, profile_id, content, visibility, tags, comment_count, reaction_count, edited, created_at, updated_at
	FROM posts
`

func scanPost(row pgx.Row) (domain.Post, error) {
	var (
		p                 domain.Post
		idUUID, ownerUUID pgtype.UUID
		visibility        string
		tags              pgtype.FlatArray[string]
	)
	err := row.Scan(&idUUID, &ownerUUID, &p.Content, &visibility, &tags,
		&p.CommentCount, &p.ReactionCount, &p.Edited, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Post{}, err
	}
	p.ID = uuidOrEmpty(idUUID)
	p.ProfileID = uuidOrEmpty(ownerUUID)
	p.Visibility = domain.Visibility(visibility)
	p.Tags = textArrayOrEmpty(tags)
	return p, nil
}

func (s *PostsStore) CreatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	const q = `
		INSERT INTO posts (profile_id, content, visibility, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var idUUID pgtype.UUID
	err := s.pool.QueryRow(ctx, q, p.ProfileID, p.Content, string(p.Visibility), p.Tags, p.CreatedAt, p.UpdatedAt).Scan(&idUUID)
	if err != nil {
		if foreignKeyViolation(err) || badID(err) {
			return domain.Post{}, domain.ErrNotFound
		}
		return domain.Post{}, fmt.Errorf("create post: %w", err)
	}
	return s.GetPost(ctx, uuidOrEmpty(idUUID))
}

func (s *PostsStore) GetPost(ctx context.Context, id string) (domain.Post, error) {
	p, err := scanPost(s.pool.QueryRow(ctx, postSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || badID(err) {
			return domain.Post{}, domain.ErrNotFound
		}
		return domain.Post{}, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

func (s *PostsStore) ListPosts(ctx context.Context, profileID string, visible []domain.Visibility, offset, limit int) ([]domain.Post, int, error) {
	vis := make([]string, len(visible))
	for i, v := range visible {
		vis[i] = string(v)
	}

	var total int
	const count = `SELECT count(*) FROM posts WHERE profile_id = $1 AND visibility = ANY($2)`
	if err := s.pool.QueryRow(ctx, count, profileID, vis).Scan(&total); err != nil {
		if badID(err) {
			return []domain.Post{}, 0, nil
		}
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	q := postSelect + ` WHERE profile_id = $1 AND visibility = ANY($2) ORDER BY created_at DESC, id DESC OFFSET $3 LIMIT $4`
	rows, err := s.pool.Query(ctx, q, profileID, vis, offset, limit)
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

func (s *PostsStore) UpdatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	const q = `
		UPDATE posts
		SET content = $2, visibility = $3, tags = $4, edited = $5, updated_at = $6
		WHERE id = $1
	`
	ct, err := s.pool.Exec(ctx, q, p.ID, p.Content, string(p.Visibility), p.Tags, p.Edited, p.UpdatedAt)
	if err != nil {
		if badID(err) {
			return domain.Post{}, domain.ErrNotFound
		}
		return domain.Post{}, fmt.Errorf("update post: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.Post{}, domain.ErrNotFound
	}
	return s.GetPost(ctx, p.ID)
}

// DeletePost relies on ON DELETE CASCADE for the post's comments and reactions.
func (s *PostsStore) DeletePost(ctx context.Context, id string) error {
	ct, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		if badID(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
