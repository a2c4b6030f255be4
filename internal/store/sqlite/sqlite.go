// Package sqlite implements the service stores on an embedded SQLite
// database. It backs local development and tests; production uses postgres.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ionutdr23/GameMate/internal/service"
)

// DB implements every store interface of the service package.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

var (
	_ service.ProfilesStore           = (*DB)(nil)
	_ service.GamesStore              = (*DB)(nil)
	_ service.GameProfilesStore       = (*DB)(nil)
	_ service.FriendsStore            = (*DB)(nil)
	_ service.NotificationTokensStore = (*DB)(nil)
	_ service.PostsStore              = (*DB)(nil)
	_ service.CommentsStore           = (*DB)(nil)
	_ service.ReactionsStore          = (*DB)(nil)
)

// New opens path (":memory:" for a throwaway database) and applies the schema.
func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	// One connection: SQLite has a single writer and each :memory:
	// connection would otherwise see its own empty database.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn, now: time.Now}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL UNIQUE,
			nickname   TEXT NOT NULL COLLATE NOCASE UNIQUE,
			avatar_url TEXT NOT NULL DEFAULT '',
			bio        TEXT NOT NULL DEFAULT '',
			location   TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS games (
			id           TEXT PRIMARY KEY,
			name         TEXT NOT NULL COLLATE NOCASE UNIQUE,
			skill_levels TEXT NOT NULL,
			created_at   TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS game_profiles (
			id          TEXT PRIMARY KEY,
			profile_id  TEXT NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
			game_id     TEXT NOT NULL REFERENCES games (id) ON DELETE CASCADE,
			skill_level TEXT NOT NULL,
			playstyles  TEXT NOT NULL,
			platforms   TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL,
			UNIQUE (profile_id, game_id)
		);

		CREATE TABLE IF NOT EXISTS friend_requests (
			id          TEXT PRIMARY KEY,
			sender_id   TEXT NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
			receiver_id TEXT NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
			created_at  TEXT NOT NULL,
			UNIQUE (sender_id, receiver_id),
			CHECK (sender_id <> receiver_id)
		);
		CREATE INDEX IF NOT EXISTS idx_friend_requests_receiver ON friend_requests (receiver_id);

		CREATE TABLE IF NOT EXISTS friendships (
			profile_id TEXT NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
			friend_id  TEXT NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
			created_at TEXT NOT NULL,
			PRIMARY KEY (profile_id, friend_id)
		);

		CREATE TABLE IF NOT EXISTS notification_tokens (
			id         TEXT PRIMARY KEY,
			profile_id TEXT NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
			token      TEXT NOT NULL UNIQUE,
			platform   TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_notification_tokens_profile ON notification_tokens (profile_id);

		CREATE TABLE IF NOT EXISTS posts (
			id             TEXT PRIMARY KEY,
			profile_id     TEXT NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
			content        TEXT NOT NULL,
			visibility     TEXT NOT NULL,
			tags           TEXT NOT NULL,
			comment_count  INTEGER NOT NULL DEFAULT 0,
			reaction_count INTEGER NOT NULL DEFAULT 0,
			edited         INTEGER NOT NULL DEFAULT 0,
			created_at     TEXT NOT NULL,
			updated_at     TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_posts_profile_created ON posts (profile_id, created_at);

		CREATE TABLE IF NOT EXISTS comments (
			id         TEXT PRIMARY KEY,
			post_id    TEXT NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
			profile_id TEXT NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
			parent_id  TEXT REFERENCES comments (id) ON DELETE CASCADE,
			content    TEXT NOT NULL,
			edited     INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_comments_post ON comments (post_id, created_at);

		CREATE TABLE IF NOT EXISTS reactions (
			id         TEXT PRIMARY KEY,
			post_id    TEXT NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
			profile_id TEXT NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
			type       TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE (post_id, profile_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}

// timeLayout is fixed width so that timestamps sort as text. parseTime also
// reads the shorter RFC 3339 forms.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func encodeList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}

func decodeList(s string) ([]string, error) {
	out := []string{}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return out, nil
}

// constraintFailure returns the message of a UNIQUE or PRIMARY KEY violation,
// e.g. "UNIQUE constraint failed: profiles.nickname".
func constraintFailure(err error) (string, bool) {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return "", false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return se.Error(), true
	}
	return "", false
}

func uniqueOn(err error, column string) bool {
	msg, ok := constraintFailure(err)
	return ok && strings.Contains(msg, column)
}

func foreignKeyViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
