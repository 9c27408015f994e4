package usecase

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/pickem-league/internal/domain/game"
	"github.com/riskibarqy/pickem-league/internal/domain/league"
	"github.com/riskibarqy/pickem-league/internal/domain/pick"
	"github.com/riskibarqy/pickem-league/internal/domain/user"
	"github.com/riskibarqy/pickem-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/pickem-league/internal/platform/id"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecalculationFixture(scorer WeekScorer) *RecalculationService {
	leagues := memory.NewLeagueRepository(
		[]league.League{
			{ID: "league-a", Name: "A", OwnerID: "u1"},
			{ID: "league-b", Name: "B", OwnerID: "u1"},
			{ID: "league-c", Name: "C", OwnerID: "u9"},
		},
		[]league.Member{
			{LeagueID: "league-a", UserID: "u1", Role: league.RoleOwner},
			{LeagueID: "league-b", UserID: "u1", Role: league.RoleOwner},
			{LeagueID: "league-b", UserID: "u2", Role: league.RoleMember},
			{LeagueID: "league-c", UserID: "u9", Role: league.RoleOwner},
		},
	)
	return NewRecalculationService(scorer, leagues, id.Static("run-1"), logging.NewNop(), 2, 18)
}

func TestRecalculationService_RecalculateScores_SingleWeek(t *testing.T) {
	t.Parallel()

	scorer := &scorerStub{}
	service := newRecalculationFixture(scorer)

	got, err := service.RecalculateScores(context.Background(), user.Principal{UserID: "u2"}, RecalculateScope{LeagueID: "league-b", Week: 3})
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, ScopeSingle, got.Scope)
	require.Len(t, got.Units, 1)
	assert.Equal(t, RecalculateUnit{LeagueID: "league-b", Week: 3, Status: OutcomeComputed}, got.Units[0])
	assert.Equal(t, 1, got.ComputedCount)
}

func TestRecalculationService_RecalculateScores_RejectsNonMemberBeforeComputing(t *testing.T) {
	t.Parallel()

	scorer := &scorerStub{}
	service := newRecalculationFixture(scorer)

	_, err := service.RecalculateScores(context.Background(), user.Principal{UserID: "u2"}, RecalculateScope{LeagueID: "league-c", Week: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.Zero(t, scorer.callCount())

	_, err = service.RecalculateScores(context.Background(), user.Principal{UserID: "u2"}, RecalculateScope{LeagueID: "league-c"})
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.Zero(t, scorer.callCount())
}

func TestRecalculationService_RecalculateScores_AdminMayRecalculateAnyLeague(t *testing.T) {
	t.Parallel()

	scorer := &scorerStub{}
	service := newRecalculationFixture(scorer)

	_, err := service.RecalculateScores(context.Background(), user.Principal{UserID: "ops", IsAdmin: true}, RecalculateScope{LeagueID: "league-c", Week: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, scorer.callCount())
}

func TestRecalculationService_RecalculateScores_WholeLeagueReportsEachWeek(t *testing.T) {
	t.Parallel()

	scorer := &scorerStub{fn: func(leagueID string, week int) (WeekComputation, error) {
		switch {
		case week == 7:
			return WeekComputation{}, markPersistence(errors.New("disk full"), "upsert score league=%s week=%d user=%s", leagueID, week, "u1")
		case week > 10:
			return WeekComputation{LeagueID: leagueID, Week: week}, nil
		default:
			return WeekComputation{LeagueID: leagueID, Week: week, Scoreable: true}, nil
		}
	}}
	service := newRecalculationFixture(scorer)

	got, err := service.RecalculateScores(context.Background(), user.Principal{UserID: "u1"}, RecalculateScope{LeagueID: "league-a"})
	require.NoError(t, err, "multi-week scopes report failures per unit")
	assert.Equal(t, ScopeLeague, got.Scope)
	require.Len(t, got.Units, 18)
	for i, unit := range got.Units {
		assert.Equal(t, i+1, unit.Week)
	}
	assert.Equal(t, 9, got.ComputedCount)
	assert.Equal(t, 8, got.NotScoreableCount)
	assert.Equal(t, 1, got.FailedCount)
	assert.Contains(t, got.Units[6].Error, "user=u1")
}

func TestRecalculationService_RecalculateScores_SingleWeekSurfacesFailure(t *testing.T) {
	t.Parallel()

	scorer := &scorerStub{fn: func(leagueID string, week int) (WeekComputation, error) {
		return WeekComputation{}, markPersistence(errors.New("disk full"), "upsert score league=%s week=%d user=%s", leagueID, week, "u1")
	}}
	service := newRecalculationFixture(scorer)

	got, err := service.RecalculateScores(context.Background(), user.Principal{UserID: "u1"}, RecalculateScope{LeagueID: "league-a", Week: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPersistenceFailure))
	assert.Equal(t, 1, got.FailedCount)
}

func TestRecalculationService_RecalculateScores_AllLeaguesOfRequester(t *testing.T) {
	t.Parallel()

	scorer := &scorerStub{}
	service := newRecalculationFixture(scorer)

	got, err := service.RecalculateScores(context.Background(), user.Principal{UserID: "u1"}, RecalculateScope{AllLeagues: true})
	require.NoError(t, err)
	assert.Equal(t, ScopeAllLeagues, got.Scope)
	require.Len(t, got.Units, 36)
	assert.Equal(t, "league-a", got.Units[0].LeagueID)
	assert.Equal(t, "league-b", got.Units[35].LeagueID)
	for _, unit := range got.Units {
		assert.NotEqual(t, "league-c", unit.LeagueID)
	}
}

func TestRecalculationService_RecalculateScores_InvalidScopes(t *testing.T) {
	t.Parallel()

	scorer := &scorerStub{}
	service := newRecalculationFixture(scorer)
	principal := user.Principal{UserID: "u1"}
	ctx := context.Background()

	cases := []struct {
		name  string
		scope RecalculateScope
	}{
		{name: "empty", scope: RecalculateScope{}},
		{name: "week out of range", scope: RecalculateScope{LeagueID: "league-a", Week: 19}},
		{name: "negative week", scope: RecalculateScope{LeagueID: "league-a", Week: -2}},
		{name: "all leagues with league", scope: RecalculateScope{AllLeagues: true, LeagueID: "league-a"}},
		{name: "all leagues with week", scope: RecalculateScope{AllLeagues: true, Week: 3}},
	}
	for _, tc := range cases {
		_, err := service.RecalculateScores(ctx, principal, tc.scope)
		assert.True(t, errors.Is(err, ErrInvalidInput), tc.name)
	}

	_, err := service.RecalculateScores(ctx, user.Principal{}, RecalculateScope{LeagueID: "league-a"})
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Zero(t, scorer.callCount())
}

func TestRecalculationService_RecalculateScores_RecomputesRealScores(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t,
		[]game.Game{finalGame("a", 1, kickoffSaturday, "Chargers", "Chiefs", strPtr("Chiefs"))},
		[]pick.Pick{newPick("u1", 1, "a", "Chiefs")},
		members("u1"),
	)
	service := NewRecalculationService(f.service, f.leagues, nil, logging.NewNop(), 0, 0)

	first, err := service.RecalculateScores(context.Background(), user.Principal{UserID: "u1"}, RecalculateScope{LeagueID: testLeagueID})
	require.NoError(t, err)
	second, err := service.RecalculateScores(context.Background(), user.Principal{UserID: "u1"}, RecalculateScope{LeagueID: testLeagueID})
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Units, second.Units)
	assert.Equal(t, 1, first.ComputedCount)
	assert.Equal(t, 17, first.NotScoreableCount)

	row, ok := f.scoreRow(t, "u1", 1)
	require.True(t, ok)
	assert.Equal(t, 1, row.Points)
}
