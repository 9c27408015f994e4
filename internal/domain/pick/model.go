package pick

import "time"

// Pick is one user's chosen winner for one game inside one league.
type Pick struct {
	UserID    string
	LeagueID  string
	GameID    string
	Week      int
	Team      string
	UpdatedAt time.Time
}
