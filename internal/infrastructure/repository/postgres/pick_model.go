package postgres

import (
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/pick"
)

type pickTableModel struct {
	ID        int64     `db:"id"`
	LeagueID  string    `db:"league_public_id"`
	UserID    string    `db:"user_id"`
	GameID    string    `db:"game_public_id"`
	Week      int       `db:"week"`
	Team      string    `db:"team"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type pickInsertModel struct {
	LeagueID  string    `db:"league_public_id"`
	UserID    string    `db:"user_id"`
	GameID    string    `db:"game_public_id"`
	Week      int       `db:"week"`
	Team      string    `db:"team"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (m pickTableModel) toDomain() pick.Pick {
	return pick.Pick{
		UserID:    m.UserID,
		LeagueID:  m.LeagueID,
		GameID:    m.GameID,
		Week:      m.Week,
		Team:      m.Team,
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}
