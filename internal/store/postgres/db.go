package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/ionutdr23/GameMate/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	return nil
}

// Stores groups every postgres-backed store over one pool.
type Stores struct {
	Profiles           *ProfilesStore
	Games              *GamesStore
	GameProfiles       *GameProfilesStore
	Friends            *FriendsStore
	NotificationTokens *NotificationTokensStore
	Posts              *PostsStore
	Comments           *CommentsStore
	Reactions          *ReactionsStore
}

func NewStores(pool *pgxpool.Pool) Stores {
	return Stores{
		Profiles:           NewProfilesStore(pool),
		Games:              NewGamesStore(pool),
		GameProfiles:       NewGameProfilesStore(pool),
		Friends:            NewFriendsStore(pool),
		NotificationTokens: NewNotificationTokensStore(pool),
		Posts:              NewPostsStore(pool),
		Comments:           NewCommentsStore(pool),
		Reactions:          NewReactionsStore(pool),
	}
}

var (
	_ service.ProfilesStore           = (*ProfilesStore)(nil)
	_ service.GamesStore              = (*GamesStore)(nil)
	_ service.GameProfilesStore       = (*GameProfilesStore)(nil)
	_ service.FriendsStore            = (*FriendsStore)(nil)
	_ service.NotificationTokensStore = (*NotificationTokensStore)(nil)
	_ service.PostsStore              = (*PostsStore)(nil)
	_ service.CommentsStore           = (*CommentsStore)(nil)
	_ service.ReactionsStore          = (*ReactionsStore)(nil)
)
