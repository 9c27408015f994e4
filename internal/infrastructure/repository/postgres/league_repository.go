package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pickem-league/internal/domain/league"
	qb "github.com/riskibarqy/pickem-league/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(
			qb.Eq("public_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league by id query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league by id: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *LeagueRepository) ListMembers(ctx context.Context, leagueID string) ([]league.Member, error) {
	query, args, err := qb.Select("*").From("league_members").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list league members query: %w", err)
	}

	var rows []leagueMemberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list league members: %w", err)
	}

	out := make([]league.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *LeagueRepository) GetMember(ctx context.Context, leagueID, userID string) (league.Member, bool, error) {
	query, args, err := qb.Select("*").From("league_members").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("user_id", userID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return league.Member{}, false, fmt.Errorf("build get league member query: %w", err)
	}

	var row leagueMemberTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.Member{}, false, nil
		}
		return league.Member{}, false, fmt.Errorf("get league member: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *LeagueRepository) ListByMember(ctx context.Context, userID string) ([]league.League, error) {
	query, args, err := qb.Select("l.*").From("leagues l").
		Join("JOIN league_members m ON m.league_public_id = l.public_id AND m.deleted_at IS NULL").
		Where(
			qb.Eq("m.user_id", userID),
			qb.IsNull("l.deleted_at"),
		).
		OrderBy("l.public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leagues by member query: %w", err)
	}
	return r.selectLeagues(ctx, "list leagues by member", query, args)
}

func (r *LeagueRepository) ListWithMembers(ctx context.Context) ([]league.League, error) {
	query, args, err := qb.Select("l.*").From("leagues l").
		Where(
			qb.IsNull("l.deleted_at"),
			qb.Expr("EXISTS (SELECT 1 FROM league_members m WHERE m.league_public_id = l.public_id AND m.deleted_at IS NULL)"),
		).
		OrderBy("l.public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leagues with members query: %w", err)
	}
	return r.selectLeagues(ctx, "list leagues with members", query, args)
}

func (r *LeagueRepository) selectLeagues(ctx context.Context, op, query string, args []any) ([]league.League, error) {
	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
