package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pickem-league/internal/domain/score"
	qb "github.com/riskibarqy/pickem-league/internal/platform/querybuilder"
)

type ScoreRepository struct {
	db *sqlx.DB
}

func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

const (
	upsertWeeklyScoreSuffix = `ON CONFLICT (user_id, league_public_id, week)
DO UPDATE SET
    points = EXCLUDED.points,
    calculated_at = EXCLUDED.calculated_at`
	upsertWeekRunSuffix = `ON CONFLICT (league_public_id, week)
DO UPDATE SET
    final_games = EXCLUDED.final_games,
    scored_users = EXCLUDED.scored_users,
    last_succeeded_at = EXCLUDED.last_succeeded_at`
)

// UpsertWeek replaces each (user, league, week) row and the week run in one
// transaction, so reruns converge and a failed run leaves the previous week intact.
func (r *ScoreRepository) UpsertWeek(ctx context.Context, rows []score.Score, run score.WeekRun) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert week scores tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, item := range rows {
		insertModel := weeklyScoreInsertModel{
			LeagueID:     item.LeagueID,
			UserID:       item.UserID,
			Week:         item.Week,
			Points:       item.Points,
			CalculatedAt: utcNow(item.CalculatedAt),
		}
		query, args, err := qb.InsertModel("weekly_scores", insertModel, upsertWeeklyScoreSuffix)
		if err != nil {
			return fmt.Errorf("build upsert weekly score query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return &score.RowError{UserID: item.UserID, Err: fmt.Errorf("upsert weekly score: %w", err)}
		}
	}

	runModel := weekRunTableModel{
		LeagueID:        run.LeagueID,
		Week:            run.Week,
		FinalGames:      run.FinalGames,
		ScoredUsers:     run.ScoredUsers,
		LastSucceededAt: utcNow(run.LastSucceededAt),
	}
	query, args, err := qb.InsertModel("score_week_runs", runModel, upsertWeekRunSuffix)
	if err != nil {
		return fmt.Errorf("build upsert score week run query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert score week run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert week scores tx: %w", err)
	}
	return nil
}

func (r *ScoreRepository) ListByLeagueWeek(ctx context.Context, leagueID string, week int) ([]score.Score, error) {
	return r.list(ctx, "list weekly scores by league week",
		qb.Eq("league_public_id", leagueID),
		qb.Eq("week", week),
	)
}

func (r *ScoreRepository) ListByLeague(ctx context.Context, leagueID string) ([]score.Score, error) {
	return r.list(ctx, "list weekly scores by league", qb.Eq("league_public_id", leagueID))
}

func (r *ScoreRepository) list(ctx context.Context, op string, conditions ...qb.Condition) ([]score.Score, error) {
	query, args, err := qb.Select("*").From("weekly_scores").
		Where(conditions...).
		OrderBy("week", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []weeklyScoreTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]score.Score, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ScoreRepository) GetWeekRun(ctx context.Context, leagueID string, week int) (score.WeekRun, bool, error) {
	query, args, err := qb.Select("league_public_id", "week", "final_games", "scored_users", "last_succeeded_at").
		From("score_week_runs").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("week", week),
		).
		ToSQL()
	if err != nil {
		return score.WeekRun{}, false, fmt.Errorf("build get score week run query: %w", err)
	}

	var row weekRunTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return score.WeekRun{}, false, nil
		}
		return score.WeekRun{}, false, fmt.Errorf("get score week run: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *ScoreRepository) ListWeekRuns(ctx context.Context, leagueID string) ([]score.WeekRun, error) {
	query, args, err := qb.Select("league_public_id", "week", "final_games", "scored_users", "last_succeeded_at").
		From("score_week_runs").
		Where(qb.Eq("league_public_id", leagueID)).
		OrderBy("week").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list score week runs query: %w", err)
	}

	var rows []weekRunTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list score week runs: %w", err)
	}

	out := make([]score.WeekRun, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
