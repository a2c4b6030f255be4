package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ionutdr23/GameMate/internal/domain"
)

func scanGame(row scanner) (domain.Game, error) {
	var (
		g      domain.Game
		levels string
	)
	if err := row.Scan(&g.ID, &g.Name, &levels); err != nil {
		return domain.Game{}, err
	}
	var err error
	if g.SkillLevels, err = decodeList(levels); err != nil {
		return domain.Game{}, err
	}
	return g, nil
}

func (db *DB) ListGames(ctx context.Context) ([]domain.Game, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, name, skill_levels FROM games ORDER BY name ASC`)
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

func (db *DB) GetGame(ctx context.Context, id string) (domain.Game, error) {
	g, err := scanGame(db.conn.QueryRowContext(ctx, `SELECT id, name, skill_levels FROM games WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Game{}, domain.ErrNotFound
		}
		return domain.Game{}, fmt.Errorf("get game: %w", err)
	}
	return g, nil
}

func (db *DB) CreateGame(ctx context.Context, name string, skillLevels []string) (domain.Game, error) {
	levels, err := encodeList(skillLevels)
	if err != nil {
		return domain.Game{}, err
	}
	g := domain.Game{ID: newID(), Name: name, SkillLevels: append([]string{}, skillLevels...)}
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO games (id, name, skill_levels, created_at) VALUES (?, ?, ?, ?)`,
		g.ID, g.Name, levels, formatTime(db.now()))
	if err != nil {
		if uniqueOn(err, "games.name") {
			return domain.Game{}, domain.ErrGameExists
		}
		return domain.Game{}, fmt.Errorf("create game: %w", err)
	}
	return g, nil
}

func (db *DB) DeleteGame(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
