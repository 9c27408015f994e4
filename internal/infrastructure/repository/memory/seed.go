package memory

import (
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/game"
	"github.com/riskibarqy/pickem-league/internal/domain/league"
)

const (
	LeagueIDDemo = "demo-league"
	UserIDOwner  = "user-owner"
	UserIDMember = "user-member"
)

func SeedLeagues() []league.League {
	return []league.League{
		{
			ID:        LeagueIDDemo,
			Name:      "Sunday Night Regulars",
			OwnerID:   UserIDOwner,
			CreatedAt: time.Date(2025, time.August, 20, 0, 0, 0, 0, time.UTC),
		},
	}
}

func SeedMembers() []league.Member {
	joined := time.Date(2025, time.August, 20, 0, 0, 0, 0, time.UTC)
	return []league.Member{
		{LeagueID: LeagueIDDemo, UserID: UserIDOwner, Username: "commish", Role: league.RoleOwner, JoinedAt: joined},
		{LeagueID: LeagueIDDemo, UserID: UserIDMember, Username: "rookie", Role: league.RoleMember, JoinedAt: joined},
	}
}

// SeedGames is the 2025 week 1 slate subset used for local runs. Kickoffs are UTC.
func SeedGames() []game.Game {
	return []game.Game{
		{ID: "2025-w1-dal-phi", HomeTeam: "Eagles", AwayTeam: "Cowboys", Week: 1, Status: game.StatusScheduled, KickoffAt: time.Date(2025, time.September, 5, 0, 20, 0, 0, time.UTC)},
		{ID: "2025-w1-kc-lac", HomeTeam: "Chargers", AwayTeam: "Chiefs", Week: 1, Status: game.StatusScheduled, KickoffAt: time.Date(2025, time.September, 6, 0, 0, 0, 0, time.UTC)},
		{ID: "2025-w1-pit-nyj", HomeTeam: "Jets", AwayTeam: "Steelers", Week: 1, Status: game.StatusScheduled, KickoffAt: time.Date(2025, time.September, 7, 17, 0, 0, 0, time.UTC)},
		{ID: "2025-w1-det-gb", HomeTeam: "Packers", AwayTeam: "Lions", Week: 1, Status: game.StatusScheduled, KickoffAt: time.Date(2025, time.September, 7, 20, 25, 0, 0, time.UTC)},
		{ID: "2025-w1-bal-buf", HomeTeam: "Bills", AwayTeam: "Ravens", Week: 1, Status: game.StatusScheduled, KickoffAt: time.Date(2025, time.September, 8, 0, 20, 0, 0, time.UTC)},
		{ID: "2025-w1-min-chi", HomeTeam: "Bears", AwayTeam: "Vikings", Week: 1, Status: game.StatusScheduled, KickoffAt: time.Date(2025, time.September, 9, 0, 15, 0, 0, time.UTC)},
	}
}
