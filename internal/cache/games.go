// Package cache keeps the game catalog in redis so every API instance serves
// it without a database round trip.
package cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ionutdr23/GameMate/internal/domain"
	"github.com/ionutdr23/GameMate/internal/service"
)

const (
	GamesKey   = "gamemate:games"
	DefaultTTL = 10 * time.Minute
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// GameCache stores the catalog as gzip-compressed JSON under GamesKey.
type GameCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ service.GameCache = (*GameCache)(nil)

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewGameCache(client redis.Cmdable, ttl time.Duration) *GameCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &GameCache{client: client, ttl: ttl}
}

// Get reports ok=false on a miss.
func (c *GameCache) Get(ctx context.Context) ([]domain.Game, bool, error) {
	val, err := c.client.Get(ctx, GamesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached games: %w", err)
	}
	games, err := decodeGames(val)
	if err != nil {
		return nil, false, err
	}
	return games, true, nil
}

func (c *GameCache) Set(ctx context.Context, games []domain.Game) error {
	val, err := encodeGames(games)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, GamesKey, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached games: %w", err)
	}
	return nil
}

func (c *GameCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, GamesKey).Err(); err != nil {
		return fmt.Errorf("invalidate cached games: %w", err)
	}
	return nil
}

func encodeGames(games []domain.Game) ([]byte, error) {
	if games == nil {
		games = []domain.Game{}
	}
	raw, err := json.Marshal(games)
	if err != nil {
		return nil, fmt.Errorf("encode games: %w", err)
	}
	var b bytes.Buffer
	w := gzip.NewWriter(&b)
	if _, err := w.Write(raw); err != nil {
		return nil, fmt.Errorf("compress games: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress games: %w", err)
	}
	return b.Bytes(), nil
}

func decodeGames(data []byte) ([]domain.Game, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decompress games: %w", err)
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress games: %w", err)
	}
	var games []domain.Game
	if err := json.Unmarshal(raw, &games); err != nil {
		return nil, fmt.Errorf("decode games: %w", err)
	}
	return games, nil
}
