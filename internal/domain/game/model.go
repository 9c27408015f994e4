package game

import (
	"strings"
	"time"
)

const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusFinal      = "final"
)

const (
	MinWeek = 1
	MaxWeek = 18
)

// Game is one scheduled matchup. Rows are owned by the result sync and only read by scoring.
type Game struct {
	ID         string
	ExternalID string
	HomeTeam   string
	AwayTeam   string
	KickoffAt  time.Time
	Week       int
	Status     string
	// Winner is nil for a tie once the game is final.
	Winner    *string
	UpdatedAt time.Time
}

func (g Game) IsFinal() bool {
	return NormalizeStatus(g.Status) == StatusFinal
}

func (g Game) IsTie() bool {
	return g.IsFinal() && (g.Winner == nil || strings.TrimSpace(*g.Winner) == "")
}

func (g Game) WinnerName() string {
	if g.Winner == nil {
		return ""
	}
	return *g.Winner
}

// HasTeam reports whether team plays in this game.
func (g Game) HasTeam(team string) bool {
	team = strings.TrimSpace(team)
	return team != "" && (team == g.HomeTeam || team == g.AwayTeam)
}

func ValidWeek(week int) bool {
	return week >= MinWeek && week <= MaxWeek
}

// NormalizeStatus folds provider spellings into the three scoring states.
func NormalizeStatus(value string) string {
	status := strings.ToLower(strings.TrimSpace(value))
	switch status {
	case "", StatusScheduled, "pre", "status_scheduled", "pending":
		return StatusScheduled
	case StatusFinal, "post", "final/ot", "status_final", "completed", "finished":
		return StatusFinal
	case StatusInProgress, "in-progress", "in", "live", "status_in_progress", "halftime":
		return StatusInProgress
	default:
		return StatusScheduled
	}
}
