package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pickem-league/internal/domain/pick"
	qb "github.com/riskibarqy/pickem-league/internal/platform/querybuilder"
)

type PickRepository struct {
	db *sqlx.DB
}

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

func (r *PickRepository) ListByLeagueWeek(ctx context.Context, leagueID string, week int) ([]pick.Pick, error) {
	return r.list(ctx, "list picks by league week",
		qb.Eq("league_public_id", leagueID),
		qb.Eq("week", week),
	)
}

func (r *PickRepository) ListByLeagueWeekUser(ctx context.Context, leagueID string, week int, userID string) ([]pick.Pick, error) {
	return r.list(ctx, "list picks by league week user",
		qb.Eq("league_public_id", leagueID),
		qb.Eq("week", week),
		qb.Eq("user_id", userID),
	)
}

func (r *PickRepository) list(ctx context.Context, op string, conditions ...qb.Condition) ([]pick.Pick, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(conditions...).
		OrderBy("user_id", "game_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PickRepository) Upsert(ctx context.Context, item pick.Pick) error {
	insertModel := pickInsertModel{
		LeagueID:  item.LeagueID,
		UserID:    item.UserID,
		GameID:    item.GameID,
		Week:      item.Week,
		Team:      item.Team,
		UpdatedAt: utcNow(item.UpdatedAt),
	}
	query, args, err := qb.InsertModel("picks", insertModel, `ON CONFLICT (user_id, game_public_id, league_public_id)
DO UPDATE SET
    week = EXCLUDED.week,
    team = EXCLUDED.team,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert pick query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert pick: %w", err)
	}
	return nil
}
