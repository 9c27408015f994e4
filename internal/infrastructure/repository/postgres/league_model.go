package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/league"
)

type leagueTableModel struct {
	ID          int64      `db:"id"`
	PublicID    string     `db:"public_id"`
	Name        string     `db:"name"`
	OwnerUserID string     `db:"owner_user_id"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

type leagueMemberTableModel struct {
	ID           int64          `db:"id"`
	LeagueID     string         `db:"league_public_id"`
	UserID       string         `db:"user_id"`
	Username     string         `db:"username"`
	ProfileImage sql.NullString `db:"profile_image"`
	Role         string         `db:"role"`
	JoinedAt     time.Time      `db:"joined_at"`
	DeletedAt    *time.Time     `db:"deleted_at"`
}

func (m leagueTableModel) toDomain() league.League {
	return league.League{
		ID:        m.PublicID,
		Name:      m.Name,
		OwnerID:   m.OwnerUserID,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func (m leagueMemberTableModel) toDomain() league.Member {
	return league.Member{
		LeagueID:     m.LeagueID,
		UserID:       m.UserID,
		Username:     m.Username,
		ProfileImage: m.ProfileImage.String,
		Role:         m.Role,
		JoinedAt:     m.JoinedAt.UTC(),
	}
}
