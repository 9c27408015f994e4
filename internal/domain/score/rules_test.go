package score

import (
	"testing"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/game"
)

func strPtr(v string) *string { return &v }

func utc(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRules_PointsFor(t *testing.T) {
	rules := DefaultRules()

	// 2025 week 1: Thu Sep 4 .. Mon Sep 8 (league time).
	thursdayNight := utc("2025-09-05T00:20:00Z")
	fridayNight := utc("2025-09-06T00:15:00Z")
	saturdayAfternoon := utc("2025-09-06T17:00:00Z")
	sundayEarly := utc("2025-09-07T17:00:00Z")
	sundayNight := utc("2025-09-08T00:20:00Z")
	mondayNight := utc("2025-09-09T00:15:00Z")

	final := func(kickoff time.Time, winner *string) game.Game {
		return game.Game{ID: "g", HomeTeam: "Chiefs", AwayTeam: "Packers", KickoffAt: kickoff, Status: game.StatusFinal, Winner: winner}
	}

	tests := []struct {
		name        string
		game        game.Game
		pick        string
		featured    time.Time
		wantCorrect bool
		wantPoints  int
	}{
		{name: "tie pays home picker", game: final(sundayEarly, nil), pick: "Chiefs", featured: mondayNight, wantCorrect: true, wantPoints: 1},
		{name: "tie pays away picker", game: final(sundayEarly, nil), pick: "Packers", featured: mondayNight, wantCorrect: true, wantPoints: 1},
		{name: "tie with blank winner", game: final(sundayEarly, strPtr(" ")), pick: "Packers", featured: mondayNight, wantCorrect: true, wantPoints: 1},
		{name: "wrong pick", game: final(mondayNight, strPtr("Chiefs")), pick: "Packers", featured: mondayNight, wantPoints: 0},
		{name: "thursday night uses league day", game: final(thursdayNight, strPtr("Chiefs")), pick: "Chiefs", featured: mondayNight, wantCorrect: true, wantPoints: 1},
		{name: "friday", game: final(fridayNight, strPtr("Chiefs")), pick: "Chiefs", featured: mondayNight, wantCorrect: true, wantPoints: 1},
		{name: "saturday", game: final(saturdayAfternoon, strPtr("Chiefs")), pick: "Chiefs", featured: mondayNight, wantCorrect: true, wantPoints: 1},
		{name: "sunday not featured", game: final(sundayEarly, strPtr("Chiefs")), pick: "Chiefs", featured: sundayNight, wantCorrect: true, wantPoints: 2},
		{name: "sunday featured", game: final(sundayNight, strPtr("Chiefs")), pick: "Chiefs", featured: sundayNight, wantCorrect: true, wantPoints: 3},
		{name: "sunday night shifted off monday utc", game: final(sundayNight, strPtr("Chiefs")), pick: "Chiefs", featured: mondayNight, wantCorrect: true, wantPoints: 2},
		{name: "monday", game: final(mondayNight, strPtr("Chiefs")), pick: "Chiefs", featured: mondayNight, wantCorrect: true, wantPoints: 3},
		{
			name:       "in progress earns nothing",
			game:       game.Game{KickoffAt: sundayEarly, Status: game.StatusInProgress, Winner: strPtr("Chiefs")},
			pick:       "Chiefs",
			featured:   mondayNight,
			wantPoints: 0,
		},
		{
			name:       "scheduled without winner is not a tie",
			game:       game.Game{KickoffAt: sundayEarly, Status: game.StatusScheduled},
			pick:       "Chiefs",
			featured:   mondayNight,
			wantPoints: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			correct, points := rules.PointsFor(tc.game, tc.pick, tc.featured)
			if correct != tc.wantCorrect || points != tc.wantPoints {
				t.Fatalf("unexpected result: got=(%t,%d) want=(%t,%d)", correct, points, tc.wantCorrect, tc.wantPoints)
			}
		})
	}
}

func TestRules_LeagueOffsetIsConfigurable(t *testing.T) {
	sundayNight := utc("2025-09-08T00:20:00Z")
	g := game.Game{KickoffAt: sundayNight, Status: game.StatusFinal, Winner: strPtr("Chiefs")}

	utcRules := Rules{LeagueOffset: 0}
	if got := utcRules.LocalWeekday(sundayNight); got != time.Monday {
		t.Fatalf("unexpected utc weekday: %s", got)
	}
	if _, points := utcRules.PointsFor(g, "Chiefs", time.Time{}); points != PointsMonday {
		t.Fatalf("expected monday points under utc offset, got %d", points)
	}

	if got := DefaultRules().LocalWeekday(sundayNight); got != time.Sunday {
		t.Fatalf("unexpected league weekday: %s", got)
	}
}

func TestFeaturedKickoff(t *testing.T) {
	games := []game.Game{
		{ID: "a", KickoffAt: utc("2025-09-07T17:00:00Z")},
		{ID: "b", KickoffAt: utc("2025-09-08T00:20:00Z")},
		{ID: "c", KickoffAt: utc("2025-09-07T20:25:00Z")},
	}
	if got := FeaturedKickoff(games); !got.Equal(games[1].KickoffAt) {
		t.Fatalf("unexpected featured kickoff: %s", got)
	}
	if got := FeaturedKickoff(nil); !got.IsZero() {
		t.Fatalf("expected zero featured kickoff for empty week")
	}
}

func TestTotalsByUser(t *testing.T) {
	totals := TotalsByUser([]Score{
		{UserID: "u1", Week: 1, Points: 4},
		{UserID: "u2", Week: 1, Points: 0},
		{UserID: "u1", Week: 2, Points: 3},
	})
	if totals["u1"] != 7 || totals["u2"] != 0 || len(totals) != 2 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}
