package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ionutdr23/GameMate/internal/domain"
)

const friendRequestSelect = `
	SELECT fr.id, fr.created_at, s.id, s.nickname, s.avatar_url, r.id, r.nickname, r.avatar_url
	FROM friend_requests fr
	JOIN profiles s ON s.id = fr.sender_id
	JOIN profiles r ON r.id = fr.receiver_id
`

func scanFriendRequest(row scanner) (domain.FriendRequest, error) {
	var (
		fr      domain.FriendRequest
		created string
	)
	err := row.Scan(&fr.ID, &created,
		&fr.Sender.ID, &fr.Sender.Nickname, &fr.Sender.AvatarURL,
		&fr.Receiver.ID, &fr.Receiver.Nickname, &fr.Receiver.AvatarURL)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	if fr.CreatedAt, err = parseTime(created); err != nil {
		return domain.FriendRequest{}, err
	}
	return fr, nil
}

func (db *DB) listRequests(ctx context.Context, where, profileID string) ([]domain.FriendRequest, error) {
	rows, err := db.conn.QueryContext(ctx, friendRequestSelect+where+` ORDER BY fr.created_at DESC`, profileID)
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

func (db *DB) ListIncoming(ctx context.Context, profileID string) ([]domain.FriendRequest, error) {
	return db.listRequests(ctx, ` WHERE fr.receiver_id = ?`, profileID)
}

func (db *DB) ListOutgoing(ctx context.Context, profileID string) ([]domain.FriendRequest, error) {
	return db.listRequests(ctx, ` WHERE fr.sender_id = ?`, profileID)
}

func (db *DB) ListFriends(ctx context.Context, profileID string) ([]domain.ProfilePreview, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT p.id, p.nickname, p.avatar_url
		FROM friendships f
		JOIN profiles p ON p.id = f.friend_id
		WHERE f.profile_id = ?
		ORDER BY p.nickname ASC`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	defer rows.Close()

	out := []domain.ProfilePreview{}
	for rows.Next() {
		var p domain.ProfilePreview
		if err := rows.Scan(&p.ID, &p.Nickname, &p.AvatarURL); err != nil {
			return nil, fmt.Errorf("scan friend: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return out, nil
}

func (db *DB) AreFriends(ctx context.Context, a, b string) (bool, error) {
	var ok bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM friendships WHERE profile_id = ? AND friend_id = ?)`, a, b).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check friendship: %w", err)
	}
	return ok, nil
}

func (db *DB) RequestBetween(ctx context.Context, a, b string) (bool, error) {
	var ok bool
	err := db.conn.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM friend_requests
			WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		)`, a, b, b, a).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check friend request: %w", err)
	}
	return ok, nil
}

func (db *DB) CreateRequest(ctx context.Context, senderID, receiverID string, when time.Time) (domain.FriendRequest, error) {
	id := newID()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO friend_requests (id, sender_id, receiver_id, created_at) VALUES (?, ?, ?, ?)`,
		id, senderID, receiverID, formatTime(when))
	if err != nil {
		if uniqueOn(err, "friend_requests.sender_id") {
			return domain.FriendRequest{}, domain.ErrFriendRequestExists
		}
		if foreignKeyViolation(err) {
			return domain.FriendRequest{}, domain.ErrNotFound
		}
		return domain.FriendRequest{}, fmt.Errorf("create friend request: %w", err)
	}
	return db.GetRequest(ctx, id)
}

func (db *DB) GetRequest(ctx context.Context, id string) (domain.FriendRequest, error) {
	fr, err := scanFriendRequest(db.conn.QueryRowContext(ctx, friendRequestSelect+` WHERE fr.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.FriendRequest{}, domain.ErrNotFound
		}
		return domain.FriendRequest{}, fmt.Errorf("get friend request: %w", err)
	}
	return fr, nil
}

// AcceptRequest removes the request and stores the friendship in both
// directions in one transaction.
func (db *DB) AcceptRequest(ctx context.Context, id string, when time.Time) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var sender, receiver string
	err = tx.QueryRowContext(ctx,
		`DELETE FROM friend_requests WHERE id = ? RETURNING sender_id, receiver_id`, id).Scan(&sender, &receiver)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete friend request: %w", err)
	}

	ts := formatTime(when)
	_, err = tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO friendships (profile_id, friend_id, created_at)
		VALUES (?, ?, ?), (?, ?, ?)`,
		sender, receiver, ts, receiver, sender, ts)
	if err != nil {
		return fmt.Errorf("insert friendship: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM friend_requests WHERE sender_id = ? AND receiver_id = ?`, receiver, sender); err != nil {
		return fmt.Errorf("delete reverse request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (db *DB) DeleteRequest(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM friend_requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete friend request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (db *DB) DeleteFriendship(ctx context.Context, a, b string) error {
	res, err := db.conn.ExecContext(ctx, `
		DELETE FROM friendships
		WHERE (profile_id = ? AND friend_id = ?) OR (profile_id = ? AND friend_id = ?)`,
		a, b, b, a)
	if err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
