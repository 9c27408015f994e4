package postgres

import (
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/score"
)

type weeklyScoreTableModel struct {
	ID           int64     `db:"id"`
	LeagueID     string    `db:"league_public_id"`
	UserID       string    `db:"user_id"`
	Week         int       `db:"week"`
	Points       int       `db:"points"`
	CalculatedAt time.Time `db:"calculated_at"`
	CreatedAt    time.Time `db:"created_at"`
}

type weeklyScoreInsertModel struct {
	LeagueID     string    `db:"league_public_id"`
	UserID       string    `db:"user_id"`
	Week         int       `db:"week"`
	Points       int       `db:"points"`
	CalculatedAt time.Time `db:"calculated_at"`
}

type weekRunTableModel struct {
	LeagueID        string    `db:"league_public_id"`
	Week            int       `db:"week"`
	FinalGames      int       `db:"final_games"`
	ScoredUsers     int       `db:"scored_users"`
	LastSucceededAt time.Time `db:"last_succeeded_at"`
}

func (m weeklyScoreTableModel) toDomain() score.Score {
	return score.Score{
		UserID:       m.UserID,
		LeagueID:     m.LeagueID,
		Week:         m.Week,
		Points:       m.Points,
		CalculatedAt: m.CalculatedAt.UTC(),
	}
}

func (m weekRunTableModel) toDomain() score.WeekRun {
	return score.WeekRun{
		LeagueID:        m.LeagueID,
		Week:            m.Week,
		FinalGames:      m.FinalGames,
		ScoredUsers:     m.ScoredUsers,
		LastSucceededAt: m.LastSucceededAt.UTC(),
	}
}
