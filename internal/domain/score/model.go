package score

import "time"

// Score is the persisted point total of one user in one league for one week.
type Score struct {
	UserID       string
	LeagueID     string
	Week         int
	Points       int
	CalculatedAt time.Time
}

// WeekRun marks that scoring for a league week has succeeded at least once.
type WeekRun struct {
	LeagueID        string
	Week            int
	FinalGames      int
	ScoredUsers     int
	LastSucceededAt time.Time
}

// TotalsByUser sums points per user across the given rows.
func TotalsByUser(rows []Score) map[string]int {
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.UserID] += row.Points
	}
	return out
}

// RowError names the user whose row failed inside a week write.
type RowError struct {
	UserID string
	Err    error
}

func (e *RowError) Error() string {
	return "user " + e.UserID + ": " + e.Err.Error()
}

func (e *RowError) Unwrap() error {
	return e.Err
}
