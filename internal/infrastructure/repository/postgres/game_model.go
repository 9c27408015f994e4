package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/game"
)

type gameTableModel struct {
	ID         int64          `db:"id"`
	PublicID   string         `db:"public_id"`
	ExternalID sql.NullString `db:"external_id"`
	HomeTeam   string         `db:"home_team"`
	AwayTeam   string         `db:"away_team"`
	KickoffAt  time.Time      `db:"kickoff_at"`
	Week       int            `db:"week"`
	Status     string         `db:"status"`
	Winner     sql.NullString `db:"winner"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

type gameInsertModel struct {
	PublicID   string         `db:"public_id"`
	ExternalID sql.NullString `db:"external_id"`
	HomeTeam   string         `db:"home_team"`
	AwayTeam   string         `db:"away_team"`
	KickoffAt  time.Time      `db:"kickoff_at"`
	Week       int            `db:"week"`
	Status     string         `db:"status"`
	Winner     sql.NullString `db:"winner"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (m gameTableModel) toDomain() game.Game {
	return game.Game{
		ID:         m.PublicID,
		ExternalID: m.ExternalID.String,
		HomeTeam:   m.HomeTeam,
		AwayTeam:   m.AwayTeam,
		KickoffAt:  m.KickoffAt.UTC(),
		Week:       m.Week,
		Status:     game.NormalizeStatus(m.Status),
		Winner:     nullStringPtr(m.Winner),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}

func newGameInsertModel(g game.Game) gameInsertModel {
	return gameInsertModel{
		PublicID:   g.ID,
		ExternalID: nullIfEmpty(g.ExternalID),
		HomeTeam:   g.HomeTeam,
		AwayTeam:   g.AwayTeam,
		KickoffAt:  g.KickoffAt.UTC(),
		Week:       g.Week,
		Status:     game.NormalizeStatus(g.Status),
		Winner:     stringPtrToNull(g.Winner),
		UpdatedAt:  utcNow(g.UpdatedAt),
	}
}
