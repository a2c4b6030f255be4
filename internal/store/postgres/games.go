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

type GamesStore struct {
	pool *pgxpool.Pool
}

func NewGamesStore(pool *pgxpool.Pool) *GamesStore {
	return &GamesStore{pool: pool}
}

func scanGame(row pgx.Row) (domain.Game, error) {
	var (
		g      domain.Game
		idUUID pgtype.UUID
		levels pgtype.FlatArray[string]
	)
	if err := row.Scan(&idUUID, &g.Name, &levels); err != nil {
		return domain.Game{}, err
	}
	g.ID = uuidOrEmpty(idUUID)
	g.SkillLevels = textArrayOrEmpty(levels)
	return g, nil
}

func (s *GamesStore) ListGames(ctx context.Context) ([]domain.Game, error) {
	const q = `SELECT id, name, skill_levels FROM games ORDER BY lower(name) ASC`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	out := []domain.Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return out, nil
}

func (s *GamesStore) GetGame(ctx context.Context, id string) (domain.Game, error) {
	const q = `SELECT id, name, skill_levels FROM games WHERE id = $1`

	g, err := scanGame(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || badID(err) {
			return domain.Game{}, domain.ErrNotFound
		}
		return domain.Game{}, fmt.Errorf("get game: %w", err)
	}
	return g, nil
}

func (s *GamesStore) CreateGame(ctx context.Context, name string, skillLevels []string) (domain.Game, error) {
	const q = `
		INSERT INTO games (name, skill_levels)
		VALUES ($1, $2)
		RETURNING id, name, skill_levels
	`

	g, err := scanGame(s.pool.QueryRow(ctx, q, name, skillLevels))
	if err != nil {
		if c, ok := uniqueViolation(err); ok && c == "games_name_lower_uq" {
			return domain.Game{}, domain.ErrGameExists
		}
		return domain.Game{}, fmt.Errorf("create game: %w", err)
	}
	return g, nil
}

func (s *GamesStore) DeleteGame(ctx context.Context, id string) error {
	ct, err := s.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		if badID(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete game: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
