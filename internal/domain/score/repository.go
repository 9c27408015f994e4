package score

import "context"

// Repository is written only by the scoring engine.
type Repository interface {
	// UpsertWeek replaces the given rows and the week run in one atomic write.
	// A failing row is reported as *RowError and nothing is written.
	UpsertWeek(ctx context.Context, rows []Score, run WeekRun) error
	ListByLeagueWeek(ctx context.Context, leagueID string, week int) ([]Score, error)
	ListByLeague(ctx context.Context, leagueID string) ([]Score, error)

	GetWeekRun(ctx context.Context, leagueID string, week int) (WeekRun, bool, error)
	ListWeekRuns(ctx context.Context, leagueID string) ([]WeekRun, error)
}
