package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pickem-league/internal/domain/game"
	qb "github.com/riskibarqy/pickem-league/internal/platform/querybuilder"
)

// upsertGamesChunk keeps one statement well under the 65535 bind parameter limit.
const upsertGamesChunk = 500

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) ListByWeek(ctx context.Context, week int) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(qb.Eq("week", week)).
		OrderBy("kickoff_at", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list games by week query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list games by week: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *GameRepository) GetByIDs(ctx context.Context, gameIDs []string) ([]game.Game, error) {
	if len(gameIDs) == 0 {
		return nil, nil
	}

	query, args, err := qb.Select("*").From("games").
		Where(qb.InStrings("public_id", gameIDs)).
		OrderBy("kickoff_at", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get games by ids query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get games by ids: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *GameRepository) Upsert(ctx context.Context, games []game.Game) error {
	if len(games) == 0 {
		return nil
	}

	games = dedupeGames(games)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert games tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for start := 0; start < len(games); start += upsertGamesChunk {
		end := min(start+upsertGamesChunk, len(games))
		models := make([]any, 0, end-start)
		for _, g := range games[start:end] {
			models = append(models, newGameInsertModel(g))
		}

		query, args, err := qb.InsertModels("games", models, `ON CONFLICT (public_id)
DO UPDATE SET
    external_id = EXCLUDED.external_id,
    home_team = EXCLUDED.home_team,
    away_team = EXCLUDED.away_team,
    kickoff_at = EXCLUDED.kickoff_at,
    week = EXCLUDED.week,
    status = EXCLUDED.status,
    winner = EXCLUDED.winner,
    updated_at = EXCLUDED.updated_at`)
		if err != nil {
			return fmt.Errorf("build upsert games query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert games: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert games tx: %w", err)
	}
	return nil
}

// ON CONFLICT cannot touch one row twice per statement; the last copy wins.
func dedupeGames(games []game.Game) []game.Game {
	index := make(map[string]int, len(games))
	out := make([]game.Game, 0, len(games))
	for _, g := range games {
		if i, ok := index[g.ID]; ok {
			out[i] = g
			continue
		}
		index[g.ID] = len(out)
		out = append(out, g)
	}
	return out
}
