package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pickem-league/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo league and week 1 slate into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM leagues WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count leagues for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, l := range memory.SeedLeagues() {
		if err := execNamed(ctx, tx, `
INSERT INTO leagues (public_id, name, owner_user_id, created_at)
VALUES (:public_id, :name, :owner_user_id, :created_at)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":     l.ID,
			"name":          l.Name,
			"owner_user_id": l.OwnerID,
			"created_at":    l.CreatedAt,
		}); err != nil {
			return fmt.Errorf("seed league %s: %w", l.ID, err)
		}
	}

	for _, m := range memory.SeedMembers() {
		if err := execNamed(ctx, tx, `
INSERT INTO league_members (league_public_id, user_id, username, role, joined_at)
VALUES (:league_public_id, :user_id, :username, :role, :joined_at)
ON CONFLICT (league_public_id, user_id) DO NOTHING`, map[string]any{
			"league_public_id": m.LeagueID,
			"user_id":          m.UserID,
			"username":         m.Username,
			"role":             m.Role,
			"joined_at":        m.JoinedAt,
		}); err != nil {
			return fmt.Errorf("seed league member %s/%s: %w", m.LeagueID, m.UserID, err)
		}
	}

	for _, g := range memory.SeedGames() {
		if err := execNamed(ctx, tx, `
INSERT INTO games (public_id, home_team, away_team, kickoff_at, week, status)
VALUES (:public_id, :home_team, :away_team, :kickoff_at, :week, :status)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":  g.ID,
			"home_team":  g.HomeTeam,
			"away_team":  g.AwayTeam,
			"kickoff_at": g.KickoffAt,
			"week":       g.Week,
			"status":     g.Status,
		}); err != nil {
			return fmt.Errorf("seed game %s: %w", g.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}

func execNamed(ctx context.Context, tx *sqlx.Tx, query string, arg map[string]any) error {
	sqlQuery, args, err := sqlx.Named(query, arg)
	if err != nil {
		return fmt.Errorf("bind: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(sqlQuery), args...); err != nil {
		return err
	}
	return nil
}
