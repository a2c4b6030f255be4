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

type ReactionsStore struct {
	pool *pgxpool.Pool
}

func NewReactionsStore(pool *pgxpool.Pool) *ReactionsStore {
	return &ReactionsStore{pool: pool}
}

const reactionColumns = `id, post_id, profile_id, type, created_at, updated_at`

func scanReaction(row pgx.Row, extra ...any) (domain.Reaction, error) {
	var (
		r                           domain.Reaction
		idUUID, postUUID, ownerUUID pgtype.UUID
		typ                         string
	)
	dest := append([]any{&idUUID, &postUUID, &ownerUUID, &typ, &r.CreatedAt, &r.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return domain.Reaction{}, err
	}
	r.ID = uuidOrEmpty(idUUID)
	r.PostID = uuidOrEmpty(postUUID)
	r.ProfileID = uuidOrEmpty(ownerUUID)
	r.Type = domain.ReactionType(typ)
	return r, nil
}

// UpsertReaction inserts or retypes the reaction and, for a new row, bumps
// the post's reaction count in the same transaction.
func (s *ReactionsStore) UpsertReaction(ctx context.Context, postID, profileID string, t domain.ReactionType, when time.Time) (domain.Reaction, bool, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Reaction{}, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// xmax is zero only for a row this statement inserted.
	q := `
		INSERT INTO reactions (post_id, profile_id, type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT ON CONSTRAINT reactions_post_profile_uq
		DO UPDATE SET type = EXCLUDED.type, updated_at = EXCLUDED.updated_at
		RETURNING ` + reactionColumns + `, (xmax = 0)`
	var created bool
	r, err := scanReaction(tx.QueryRow(ctx, q, postID, profileID, string(t), when), &created)
	if err != nil {
		if foreignKeyViolation(err) || badID(err) {
			return domain.Reaction{}, false, domain.ErrNotFound
		}
		return domain.Reaction{}, false, fmt.Errorf("upsert reaction: %w", err)
	}
	if created {
		if _, err := tx.Exec(ctx, `UPDATE posts SET reaction_count = reaction_count + 1 WHERE id = $1`, postID); err != nil {
			return domain.Reaction{}, false, fmt.Errorf("bump reaction count: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Reaction{}, false, fmt.Errorf("commit tx: %w", err)
	}
	return r, created, nil
}

func (s *ReactionsStore) GetReaction(ctx context.Context, postID, profileID string) (domain.Reaction, error) {
	q := `SELECT ` + reactionColumns + ` FROM reactions WHERE post_id = $1 AND profile_id = $2`
	r, err := scanReaction(s.pool.QueryRow(ctx, q, postID, profileID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || badID(err) {
			return domain.Reaction{}, domain.ErrNotFound
		}
		return domain.Reaction{}, fmt.Errorf("get reaction: %w", err)
	}
	return r, nil
}

func (s *ReactionsStore) DeleteReaction(ctx context.Context, postID, profileID string) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `DELETE FROM reactions WHERE post_id = $1 AND profile_id = $2`, postID, profileID)
	if err != nil {
		if badID(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete reaction: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	const lower = `UPDATE posts SET reaction_count = GREATEST(reaction_count - 1, 0) WHERE id = $1`
	if _, err := tx.Exec(ctx, lower, postID); err != nil {
		return fmt.Errorf("lower reaction count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *ReactionsStore) ListReactions(ctx context.Context, postID string) ([]domain.Reaction, error) {
	q := `SELECT ` + reactionColumns + ` FROM reactions WHERE post_id = $1 ORDER BY updated_at DESC`
	rows, err := s.pool.Query(ctx, q, postID)
	if err != nil {
		if badID(err) {
			return []domain.Reaction{}, nil
		}
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
