package score

import (
	"strings"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/game"
)

// DefaultLeagueOffset is the league local time zone used to read kickoff weekdays.
const DefaultLeagueOffset = -4 * time.Hour

const (
	PointsTie            = 1
	PointsWeekday        = 1
	PointsSunday         = 2
	PointsSundayFeatured = 3
	PointsMonday         = 3
)

// Rules converts one pick on one game into points.
type Rules struct {
	LeagueOffset time.Duration
}

func DefaultRules() Rules {
	return Rules{LeagueOffset: DefaultLeagueOffset}
}

func (r Rules) Location() *time.Location {
	return time.FixedZone("league", int(r.LeagueOffset/time.Second))
}

// LocalWeekday is the kickoff weekday in the league time zone.
func (r Rules) LocalWeekday(kickoff time.Time) time.Weekday {
	return kickoff.In(r.Location()).Weekday()
}

// PointsFor returns whether the pick counts as correct and the points it earns.
// Games that are not final earn nothing. A tie pays every picker.
func (r Rules) PointsFor(g game.Game, pickedTeam string, featuredKickoff time.Time) (bool, int) {
	if !g.IsFinal() {
		return false, 0
	}
	if g.IsTie() {
		return true, PointsTie
	}
	if strings.TrimSpace(pickedTeam) != strings.TrimSpace(g.WinnerName()) {
		return false, 0
	}

	switch r.LocalWeekday(g.KickoffAt) {
	case time.Sunday:
		if !featuredKickoff.IsZero() && g.KickoffAt.Equal(featuredKickoff) {
			return true, PointsSundayFeatured
		}
		return true, PointsSunday
	case time.Monday:
		return true, PointsMonday
	default:
		return true, PointsWeekday
	}
}

// FeaturedKickoff is the latest kickoff among all games of a week.
func FeaturedKickoff(games []game.Game) time.Time {
	var latest time.Time
	for _, g := range games {
		if g.KickoffAt.After(latest) {
			latest = g.KickoffAt
		}
	}
	return latest
}
