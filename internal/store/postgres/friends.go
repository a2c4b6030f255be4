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

type FriendsStore struct {
	pool *pgxpool.Pool
}

func NewFriendsStore(pool *pgxpool.Pool) *FriendsStore {
	return &FriendsStore{pool: pool}
}

const friendRequestSelect = `
	SELECT fr.id, fr.created_at, s.id, s.nickname, s.avatar_url, r.id, r.nickname, r.avatar_url
	FROM friend_requests fr
	JOIN profiles s ON s.id = fr.sender_id
	JOIN profiles r ON r.id = fr.receiver_id
`

func scanFriendRequest(row pgx.Row) (domain.FriendRequest, error) {
	var (
		fr                   domain.FriendRequest
		idUUID, sUUID, rUUID pgtype.UUID
	)
	err := row.Scan(&idUUID, &fr.CreatedAt,
		&sUUID, &fr.Sender.Nickname, &fr.Sender.AvatarURL,
		&rUUID, &fr.Receiver.Nickname, &fr.Receiver.AvatarURL)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	fr.ID = uuidOrEmpty(idUUID)
	fr.Sender.ID = uuidOrEmpty(sUUID)
	fr.Receiver.ID = uuidOrEmpty(rUUID)
	return fr, nil
}

func (s *FriendsStore) listRequests(ctx context.Context, where string, profileID string) ([]domain.FriendRequest, error) {
	rows, err := s.pool.Query(ctx, friendRequestSelect+where+` ORDER BY fr.created_at DESC`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list friend requests: %w", err)
	}
	defer rows.Close()

	out := []domain.FriendRequest{}
	for rows.Next() {
		fr, err := scanFriendRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan friend request: %w", err)
		}
		out = append(out, fr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list friend requests: %w", err)
	}
	return out, nil
}

func (s *FriendsStore) ListIncoming(ctx context.Context, profileID string) ([]domain.FriendRequest, error) {
	return s.listRequests(ctx, ` WHERE fr.receiver_id = $1`, profileID)
}

func (s *FriendsStore) ListOutgoing(ctx context.Context, profileID string) ([]domain.FriendRequest, error) {
	return s.listRequests(ctx, ` WHERE fr.sender_id = $1`, profileID)
}

func (s *FriendsStore) ListFriends(ctx context.Context, profileID string) ([]domain.ProfilePreview, error) {
	const q = `
		SELECT p.id, p.nickname, p.avatar_url
		FROM friendships f
		JOIN profiles p ON p.id = f.friend_id
		WHERE f.profile_id = $1
		ORDER BY lower(p.nickname) ASC
	`

	rows, err := s.pool.Query(ctx, q, profileID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	defer rows.Close()

	out := []domain.ProfilePreview{}
	for rows.Next() {
		var (
			idUUID pgtype.UUID
			p      domain.ProfilePreview
		)
		if err := rows.Scan(&idUUID, &p.Nickname, &p.AvatarURL); err != nil {
			return nil, fmt.Errorf("scan friend: %w", err)
		}
		p.ID = uuidOrEmpty(idUUID)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return out, nil
}

func (s *FriendsStore) AreFriends(ctx context.Context, a, b string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM friendships WHERE profile_id = $1 AND friend_id = $2)`
	var ok bool
	if err := s.pool.QueryRow(ctx, q, a, b).Scan(&ok); err != nil {
		return false, fmt.Errorf("check friendship: %w", err)
	}
	return ok, nil
}

// RequestBetween reports a pending request in either direction.
func (s *FriendsStore) RequestBetween(ctx context.Context, a, b string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM friend_requests
			WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		)
	`
	var ok bool
	if err := s.pool.QueryRow(ctx, q, a, b).Scan(&ok); err != nil {
		return false, fmt.Errorf("check friend request: %w", err)
	}
	return ok, nil
}

func (s *FriendsStore) CreateRequest(ctx context.Context, senderID, receiverID string, when time.Time) (domain.FriendRequest, error) {
	const q = `
		INSERT INTO friend_requests (sender_id, receiver_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	var idUUID pgtype.UUID
	if err := s.pool.QueryRow(ctx, q, senderID, receiverID, when).Scan(&idUUID); err != nil {
		if c, ok := uniqueViolation(err); ok && c == "friend_requests_pair_uq" {
			return domain.FriendRequest{}, domain.ErrFriendRequestExists
		}
		if foreignKeyViolation(err) || badID(err) {
			return domain.FriendRequest{}, domain.ErrNotFound
		}
		return domain.FriendRequest{}, fmt.Errorf("create friend request: %w", err)
	}
	return s.GetRequest(ctx, uuidOrEmpty(idUUID))
}

func (s *FriendsStore) GetRequest(ctx context.Context, id string) (domain.FriendRequest, error) {
	fr, err := scanFriendRequest(s.pool.QueryRow(ctx, friendRequestSelect+` WHERE fr.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || badID(err) {
			return domain.FriendRequest{}, domain.ErrNotFound
		}
		return domain.FriendRequest{}, fmt.Errorf("get friend request: %w", err)
	}
	return fr, nil
}

// AcceptRequest removes the request and stores the friendship in both
// directions in one transaction.
func (s *FriendsStore) AcceptRequest(ctx context.Context, id string, when time.Time) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var sender, receiver pgtype.UUID
	err = tx.QueryRow(ctx, `DELETE FROM friend_requests WHERE id = $1 RETURNING sender_id, receiver_id`, id).Scan(&sender, &receiver)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || badID(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete friend request: %w", err)
	}

	const insertEdge = `
		INSERT INTO friendships (profile_id, friend_id, created_at)
		VALUES ($1, $2, $3), ($2, $1, $3)
		ON CONFLICT DO NOTHING
	`
	if _, err := tx.Exec(ctx, insertEdge, sender, receiver, when); err != nil {
		return fmt.Errorf("insert friendship: %w", err)
	}
	const dropReverse = `DELETE FROM friend_requests WHERE sender_id = $1 AND receiver_id = $2`
	if _, err := tx.Exec(ctx, dropReverse, receiver, sender); err != nil {
		return fmt.Errorf("delete reverse request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *FriendsStore) DeleteRequest(ctx context.Context, id string) error {
	ct, err := s.pool.Exec(ctx, `DELETE FROM friend_requests WHERE id = $1`, id)
	if err != nil {
		if badID(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete friend request: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *FriendsStore) DeleteFriendship(ctx context.Context, a, b string) error {
	const q = `
		DELETE FROM friendships
		WHERE (profile_id = $1 AND friend_id = $2) OR (profile_id = $2 AND friend_id = $1)
	`
	ct, err := s.pool.Exec(ctx, q, a, b)
	if err != nil {
		if badID(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete friendship: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
