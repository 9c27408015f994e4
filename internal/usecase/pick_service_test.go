package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/pickem-league/internal/domain/game"
	"github.com/riskibarqy/pickem-league/internal/domain/user"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPickFixture(t *testing.T, now time.Time) (*scoringFixture, *PickService) {
	t.Helper()

	f := newScoringFixture(t,
		[]game.Game{
			finalGame("thu", 1, kickoffThursday, "Eagles", "Cowboys", strPtr("Eagles")),
			scheduledGame("sun", 1, kickoffSundayEarly, "Jets", "Steelers"),
			scheduledGame("mon", 1, kickoffMondayNight, "Bears", "Vikings"),
			scheduledGame("w2", 2, kickoffSundayEarly.AddDate(0, 0, 7), "Bills", "Jets"),
		},
		nil,
		members("u1"),
	)
	service := NewPickService(f.games, f.picks, f.leagues, f.service, logging.NewNop())
	service.now = func() time.Time { return now }
	return f, service
}

func TestPickService_SubmitPicks_SavesAndRecomputes(t *testing.T) {
	t.Parallel()

	// Friday: Thursday's game is final, Sunday and Monday are open.
	f, service := newPickFixture(t, time.Date(2025, time.September, 5, 18, 0, 0, 0, time.UTC))
	ctx := context.Background()

	got, err := service.SubmitPicks(ctx, user.Principal{UserID: "u1"}, testLeagueID, 1, []PickSubmission{
		{GameID: "sun", Team: "Jets"},
		{GameID: "mon", Team: "Bears"},
		{GameID: "sun", Team: " Steelers "},
	})
	require.NoError(t, err)
	assert.Equal(t, SubmitPicksResult{Saved: 2, Scoreable: true, Recomputed: true}, got)

	picks, err := f.picks.ListByLeagueWeekUser(ctx, testLeagueID, 1, "u1")
	require.NoError(t, err)
	require.Len(t, picks, 2)
	assert.Equal(t, "Bears", picks[0].Team)
	assert.Equal(t, "Steelers", picks[1].Team, "last submission for a game wins")

	row, ok := f.scoreRow(t, "u1", 1)
	require.True(t, ok, "a member with picks on a scoreable week gets a row")
	assert.Equal(t, 0, row.Points)
}

func TestPickService_SubmitPicks_RejectsAfterKickoff(t *testing.T) {
	t.Parallel()

	f, service := newPickFixture(t, kickoffSundayEarly.Add(time.Minute))

	_, err := service.SubmitPicks(context.Background(), user.Principal{UserID: "u1"}, testLeagueID, 1, []PickSubmission{
		{GameID: "mon", Team: "Bears"},
		{GameID: "sun", Team: "Jets"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPickLocked))

	picks, err := f.picks.ListByLeagueWeekUser(context.Background(), testLeagueID, 1, "u1")
	require.NoError(t, err)
	assert.Empty(t, picks, "a locked pick rejects the whole submission")
}

func TestPickService_SubmitPicks_Validation(t *testing.T) {
	t.Parallel()

	_, service := newPickFixture(t, time.Date(2025, time.September, 5, 18, 0, 0, 0, time.UTC))
	ctx := context.Background()
	member := user.Principal{UserID: "u1"}

	cases := []struct {
		name      string
		principal user.Principal
		week      int
		items     []PickSubmission
		want      error
	}{
		{name: "no picks", principal: member, week: 1, want: ErrInvalidInput},
		{name: "blank team", principal: member, week: 1, items: []PickSubmission{{GameID: "sun"}}, want: ErrInvalidInput},
		{name: "unknown game", principal: member, week: 1, items: []PickSubmission{{GameID: "nope", Team: "Jets"}}, want: ErrNotFound},
		{name: "game from another week", principal: member, week: 1, items: []PickSubmission{{GameID: "w2", Team: "Bills"}}, want: ErrInvalidInput},
		{name: "team not in game", principal: member, week: 1, items: []PickSubmission{{GameID: "sun", Team: "Bills"}}, want: ErrInvalidInput},
		{name: "final game", principal: member, week: 1, items: []PickSubmission{{GameID: "thu", Team: "Eagles"}}, want: ErrPickLocked},
		{name: "not a member", principal: user.Principal{UserID: "u2"}, week: 1, items: []PickSubmission{{GameID: "sun", Team: "Jets"}}, want: ErrForbidden},
		{name: "admin is not a member", principal: user.Principal{UserID: "ops", IsAdmin: true}, week: 1, items: []PickSubmission{{GameID: "sun", Team: "Jets"}}, want: ErrForbidden},
		{name: "bad week", principal: member, week: 0, items: []PickSubmission{{GameID: "sun", Team: "Jets"}}, want: ErrInvalidInput},
	}
	for _, tc := range cases {
		_, err := service.SubmitPicks(ctx, tc.principal, testLeagueID, tc.week, tc.items)
		assert.True(t, errors.Is(err, tc.want), "%s: got %v", tc.name, err)
	}
}

func TestPickService_SubmitPicks_RecomputeFailureIsNotSurfaced(t *testing.T) {
	t.Parallel()

	f, _ := newPickFixture(t, time.Time{})
	scorer := &scorerStub{fn: func(string, int) (WeekComputation, error) {
		return WeekComputation{}, errors.New("boom")
	}}
	service := NewPickService(f.games, f.picks, f.leagues, scorer, logging.NewNop())
	service.now = func() time.Time { return time.Date(2025, time.September, 5, 18, 0, 0, 0, time.UTC) }

	got, err := service.SubmitPicks(context.Background(), user.Principal{UserID: "u1"}, testLeagueID, 1, []PickSubmission{{GameID: "sun", Team: "Jets"}})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Saved)
	assert.False(t, got.Recomputed)
	assert.Equal(t, 1, scorer.callCount())
}
