package pick

import "context"

// Repository stores picks keyed by (user, game, league).
type Repository interface {
	ListByLeagueWeek(ctx context.Context, leagueID string, week int) ([]Pick, error)
	ListByLeagueWeekUser(ctx context.Context, leagueID string, week int, userID string) ([]Pick, error)
	Upsert(ctx context.Context, item Pick) error
}
