package httpapi

import (
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/game"
	"github.com/riskibarqy/pickem-league/internal/usecase"
)

type leaderboardEntryDTO struct {
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	ProfileImage string `json:"profileImage"`
	Points       int    `json:"points"`
}

type leagueStatsDTO struct {
	LeagueID        string                `json:"leagueId"`
	Week            int                   `json:"week"`
	PointsAvailable bool                  `json:"pointsAvailable"`
	ComputedAt      *time.Time            `json:"computedAt,omitempty"`
	Weekly          []leaderboardEntryDTO `json:"weekly"`
	Total           []leaderboardEntryDTO `json:"total"`
}

type pickDetailDTO struct {
	GameID   string    `json:"gameId"`
	HomeTeam string    `json:"homeTeam"`
	AwayTeam string    `json:"awayTeam"`
	Pick     string    `json:"pick"`
	Winner   *string   `json:"winner"`
	Correct  bool      `json:"correct"`
	Points   int       `json:"points"`
	Date     time.Time `json:"date"`
	Status   string    `json:"status"`
}

type submitPicksResponseDTO struct {
	Saved      int  `json:"saved"`
	Scoreable  bool `json:"scoreable"`
	Recomputed bool `json:"recomputed"`
}

type submitPicksRequest struct {
	Picks []pickItemRequest `json:"picks" validate:"required,min=1,max=32,dive"`
}

type pickItemRequest struct {
	GameID string `json:"gameId" validate:"required"`
	Team   string `json:"team" validate:"required,max=64"`
}

type recalculateRequest struct {
	LeagueID   string `json:"leagueId" validate:"omitempty,max=64"`
	Week       int    `json:"week" validate:"gte=0"`
	AllLeagues bool   `json:"allLeagues"`
}

type gameResultsRequest struct {
	Games []gameResultRequest `json:"games" validate:"required,min=1,max=500,dive"`
}

type gameResultRequest struct {
	ID         string    `json:"id" validate:"required"`
	ExternalID string    `json:"externalId"`
	HomeTeam   string    `json:"homeTeam" validate:"required"`
	AwayTeam   string    `json:"awayTeam" validate:"required"`
	KickoffAt  time.Time `json:"kickoffAt" validate:"required"`
	Week       int       `json:"week" validate:"required,min=1"`
	Status     string    `json:"status" validate:"required"`
	Winner     *string   `json:"winner"`
}

func leaderboardDTOs(entries []usecase.LeaderboardEntry) []leaderboardEntryDTO {
	out := make([]leaderboardEntryDTO, 0, len(entries))
	for _, item := range entries {
		out = append(out, leaderboardEntryDTO{
			UserID:       item.UserID,
			Username:     item.Username,
			ProfileImage: item.ProfileImage,
			Points:       item.Points,
		})
	}
	return out
}

func toLeagueStatsDTO(stats usecase.LeagueStats) leagueStatsDTO {
	return leagueStatsDTO{
		LeagueID:        stats.LeagueID,
		Week:            stats.Week,
		PointsAvailable: stats.PointsAvailable,
		ComputedAt:      stats.ComputedAt,
		Weekly:          leaderboardDTOs(stats.Weekly),
		Total:           leaderboardDTOs(stats.Total),
	}
}

func toPickDetailDTOs(items []usecase.PickDetail) []pickDetailDTO {
	out := make([]pickDetailDTO, 0, len(items))
	for _, item := range items {
		out = append(out, pickDetailDTO{
			GameID:   item.GameID,
			HomeTeam: item.HomeTeam,
			AwayTeam: item.AwayTeam,
			Pick:     item.Pick,
			Winner:   item.Winner,
			Correct:  item.Correct,
			Points:   item.Points,
			Date:     item.Date,
			Status:   item.Status,
		})
	}
	return out
}

func (r submitPicksRequest) toSubmissions() []usecase.PickSubmission {
	out := make([]usecase.PickSubmission, 0, len(r.Picks))
	for _, item := range r.Picks {
		out = append(out, usecase.PickSubmission{GameID: item.GameID, Team: item.Team})
	}
	return out
}

func (r gameResultsRequest) toGames() []game.Game {
	out := make([]game.Game, 0, len(r.Games))
	for _, item := range r.Games {
		out = append(out, game.Game{
			ID:         item.ID,
			ExternalID: item.ExternalID,
			HomeTeam:   item.HomeTeam,
			AwayTeam:   item.AwayTeam,
			KickoffAt:  item.KickoffAt,
			Week:       item.Week,
			Status:     item.Status,
			Winner:     item.Winner,
		})
	}
	return out
}
