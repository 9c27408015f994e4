package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/pickem-league/internal/domain/game"
	"github.com/riskibarqy/pickem-league/internal/domain/league"
	"github.com/riskibarqy/pickem-league/internal/domain/pick"
	"github.com/riskibarqy/pickem-league/internal/domain/user"
	"github.com/riskibarqy/pickem-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/pickem-league/internal/platform/id"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
	"github.com/riskibarqy/pickem-league/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testLeagueID = "league-1"
	testJobToken = "job-secret"
)

type stubVerifier map[string]user.Principal

func (s stubVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	principal, ok := s[token]
	if !ok {
		return user.Principal{}, usecase.ErrUnauthorized
	}
	return principal, nil
}

type recordingObserver struct {
	mu     sync.Mutex
	routes []string
	status []int
}

func (o *recordingObserver) ObserveRequest(route, _ string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes = append(o.routes, route)
	o.status = append(o.status, status)
}

type testEnvelope[T any] struct {
	APIVersion string           `json:"apiVersion"`
	Data       T                `json:"data"`
	Error      *googleErrorBody `json:"error"`
}

func newTestRouter(t *testing.T, opts RouterOptions) http.Handler {
	t.Helper()

	winner := "Chiefs"
	games := memory.NewGameRepository([]game.Game{
		{ID: "g1", HomeTeam: "Chargers", AwayTeam: "Chiefs", Week: 1, KickoffAt: time.Date(2025, time.September, 6, 17, 0, 0, 0, time.UTC), Status: game.StatusFinal, Winner: &winner},
		{ID: "g2", HomeTeam: "Bills", AwayTeam: "Jets", Week: 2, KickoffAt: time.Date(2099, time.September, 13, 17, 0, 0, 0, time.UTC), Status: game.StatusScheduled},
	})
	leagues := memory.NewLeagueRepository(
		[]league.League{{ID: testLeagueID, Name: "Office", OwnerID: "u1"}},
		[]league.Member{
			{LeagueID: testLeagueID, UserID: "u1", Username: "alice", Role: league.RoleOwner},
			{LeagueID: testLeagueID, UserID: "u2", Username: "bob", Role: league.RoleMember},
		},
	)
	picks := memory.NewPickRepository([]pick.Pick{
		{UserID: "u1", LeagueID: testLeagueID, GameID: "g1", Week: 1, Team: "Chiefs"},
	})
	scores := memory.NewScoreRepository()
	logger := logging.NewNop()

	scoring := usecase.NewScoringService(games, picks, scores, leagues, logger)
	handler := NewHandler(
		scoring,
		usecase.NewRecalculationService(scoring, leagues, id.Static("run-1"), logger, 2, game.MaxWeek),
		usecase.NewPickService(games, picks, leagues, scoring, logger),
		usecase.NewGameSyncService(games, leagues, scoring, logger, 2),
		logger,
	)
	if opts.InternalJobToken == "" {
		opts.InternalJobToken = testJobToken
	}
	verifier := stubVerifier{
		"token-u1": {UserID: "u1"},
		"token-u2": {UserID: "u2"},
		"token-u9": {UserID: "u9"},
	}
	return NewRouter(handler, verifier, logger, opts)
}

func doRequest(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope[T any](t *testing.T, rec *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()

	var out testEnvelope[T]
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	require.Equal(t, googleAPIVersion, out.APIVersion)
	return out
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})

	rec := doRequest(t, router, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope[map[string]string](t, rec)
	assert.Equal(t, "ok", body.Data["status"])
}

func TestRouter_GetLeagueStats(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})

	rec := doRequest(t, router, http.MethodGet, "/v1/leagues/league-1/weeks/1/stats", "token-u2", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeEnvelope[leagueStatsDTO](t, rec)
	assert.Equal(t, testLeagueID, body.Data.LeagueID)
	assert.Equal(t, 1, body.Data.Week)
	assert.True(t, body.Data.PointsAvailable)
	require.NotNil(t, body.Data.ComputedAt)

	weekly := make(map[string]int, len(body.Data.Weekly))
	for _, entry := range body.Data.Weekly {
		weekly[entry.UserID] = entry.Points
	}
	assert.Equal(t, map[string]int{"u1": 1, "u2": 0}, weekly)
	assert.Len(t, body.Data.Total, 2)
}

func TestRouter_GetLeagueStats_Errors(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})

	cases := []struct {
		name   string
		path   string
		token  string
		status int
		reason string
	}{
		{name: "missing token", path: "/v1/leagues/league-1/weeks/1/stats", status: http.StatusUnauthorized, reason: "unauthorized"},
		{name: "unknown token", path: "/v1/leagues/league-1/weeks/1/stats", token: "nope", status: http.StatusUnauthorized, reason: "unauthorized"},
		{name: "not a member", path: "/v1/leagues/league-1/weeks/1/stats", token: "token-u9", status: http.StatusForbidden, reason: "forbidden"},
		{name: "unknown league", path: "/v1/leagues/league-x/weeks/1/stats", token: "token-u1", status: http.StatusNotFound, reason: "notFound"},
		{name: "week not a number", path: "/v1/leagues/league-1/weeks/one/stats", token: "token-u1", status: http.StatusBadRequest, reason: "invalidInput"},
		{name: "week out of range", path: "/v1/leagues/league-1/weeks/19/stats", token: "token-u1", status: http.StatusBadRequest, reason: "invalidInput"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodGet, tc.path, tc.token, "")
			require.Equal(t, tc.status, rec.Code, rec.Body.String())

			body := decodeEnvelope[any](t, rec)
			require.NotNil(t, body.Error)
			require.Len(t, body.Error.Errors, 1)
			assert.Equal(t, tc.reason, body.Error.Errors[0].Reason)
			assert.Equal(t, errorDomain, body.Error.Errors[0].Domain)
		})
	}
}

func TestRouter_GetPicks_DefaultsToCaller(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})

	rec := doRequest(t, router, http.MethodGet, "/v1/leagues/league-1/weeks/1/picks", "token-u1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeEnvelope[[]pickDetailDTO](t, rec)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "g1", body.Data[0].GameID)
	assert.Equal(t, "Chiefs", body.Data[0].Pick)
	assert.True(t, body.Data[0].Correct)
	assert.Equal(t, 1, body.Data[0].Points)

	rec = doRequest(t, router, http.MethodGet, "/v1/leagues/league-1/weeks/1/picks?user_id=u2", "token-u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeEnvelope[[]pickDetailDTO](t, rec).Data)
}

func TestRouter_GetPicks_HidesOtherMembersOpenPicks(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})

	rec := doRequest(t, router, http.MethodPut, "/v1/leagues/league-1/weeks/2/picks", "token-u2",
		`{"picks":[{"gameId":"g2","team":"Jets"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/v1/leagues/league-1/weeks/2/picks?user_id=u2", "token-u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeEnvelope[[]pickDetailDTO](t, rec).Data, "g2 has not kicked off")

	rec = doRequest(t, router, http.MethodGet, "/v1/leagues/league-1/weeks/2/picks?user_id=u2", "token-u2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeEnvelope[[]pickDetailDTO](t, rec).Data, 1)

	rec = doRequest(t, router, http.MethodGet, "/v1/leagues/league-1/weeks/1/picks?user_id=u1", "token-u2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeEnvelope[[]pickDetailDTO](t, rec).Data, 1, "final games are visible to everyone")
}

func TestRouter_SubmitPicks(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})

	rec := doRequest(t, router, http.MethodPut, "/v1/leagues/league-1/weeks/2/picks", "token-u2",
		`{"picks":[{"gameId":"g2","team":"Jets"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeEnvelope[submitPicksResponseDTO](t, rec)
	assert.Equal(t, 1, body.Data.Saved)
	assert.False(t, body.Data.Scoreable)

	rec = doRequest(t, router, http.MethodGet, "/v1/leagues/league-1/weeks/2/picks", "token-u2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	details := decodeEnvelope[[]pickDetailDTO](t, rec).Data
	require.Len(t, details, 1)
	assert.Equal(t, "Jets", details[0].Pick)
	assert.Zero(t, details[0].Points)
}

func TestRouter_SubmitPicks_Errors(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})

	cases := []struct {
		name   string
		week   string
		body   string
		status int
	}{
		{name: "final game is locked", week: "1", body: `{"picks":[{"gameId":"g1","team":"Chiefs"}]}`, status: http.StatusConflict},
		{name: "unknown field", week: "2", body: `{"picks":[{"gameId":"g2","team":"Jets"}],"extra":true}`, status: http.StatusBadRequest},
		{name: "empty body", week: "2", body: " ", status: http.StatusBadRequest},
		{name: "no picks", week: "2", body: `{"picks":[]}`, status: http.StatusBadRequest},
		{name: "blank team", week: "2", body: `{"picks":[{"gameId":"g2","team":""}]}`, status: http.StatusBadRequest},
		{name: "team not in game", week: "2", body: `{"picks":[{"gameId":"g2","team":"Chiefs"}]}`, status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPut, "/v1/leagues/league-1/weeks/"+tc.week+"/picks", "token-u1", tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_RecalculateScores(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})

	rec := doRequest(t, router, http.MethodPost, "/v1/scores/recalculate", "token-u1", `{"leagueId":"league-1","week":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeEnvelope[usecase.RecalculateResult](t, rec)
	assert.Equal(t, "run-1", body.Data.RunID)
	assert.Equal(t, usecase.ScopeSingle, body.Data.Scope)
	require.Len(t, body.Data.Units, 1)
	assert.Equal(t, usecase.OutcomeComputed, body.Data.Units[0].Status)

	rec = doRequest(t, router, http.MethodPost, "/v1/scores/recalculate", "token-u9", `{"leagueId":"league-1","week":1}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/v1/scores/recalculate", "token-u1", `{"allLeagues":true,"week":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_RecalculateScores_RateLimitedPerUser(t *testing.T) {
	router := newTestRouter(t, RouterOptions{RecalcRatePerSecond: 0.001, RecalcRateBurst: 1})
	body := `{"leagueId":"league-1","week":1}`

	rec := doRequest(t, router, http.MethodPost, "/v1/scores/recalculate", "token-u1", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(t, router, http.MethodPost, "/v1/scores/recalculate", "token-u1", body)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RESOURCE_EXHAUSTED", decodeEnvelope[any](t, rec).Error.Status)

	rec = doRequest(t, router, http.MethodPost, "/v1/scores/recalculate", "token-u2", body)
	assert.Equal(t, http.StatusOK, rec.Code, "another user has its own bucket")
}

func TestRouter_ApplyGameResults(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})
	payload := `{"games":[{"id":"g2","homeTeam":"Bills","awayTeam":"Jets","kickoffAt":"2099-09-13T17:00:00Z","week":2,"status":"final","winner":"Jets"}]}`

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/games/results", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/internal/games/results", strings.NewReader(payload))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeEnvelope[usecase.GameSyncResult](t, rec)
	assert.Equal(t, 1, body.Data.GamesApplied)
	assert.Equal(t, []int{2}, body.Data.Weeks)
	assert.Equal(t, 1, body.Data.ComputedCount)
}

func TestRouter_InstrumentsRoutePatterns(t *testing.T) {
	observer := &recordingObserver{}
	router := newTestRouter(t, RouterOptions{
		Metrics:        observer,
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }),
	})

	doRequest(t, router, http.MethodGet, "/v1/leagues/league-1/weeks/1/stats", "token-u1", "")
	doRequest(t, router, http.MethodGet, "/v1/leagues/league-1/weeks/3/stats", "", "")
	rec := doRequest(t, router, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	observer.mu.Lock()
	defer observer.mu.Unlock()
	assert.Equal(t, []string{
		"GET /v1/leagues/{leagueID}/weeks/{week}/stats",
		"GET /v1/leagues/{leagueID}/weeks/{week}/stats",
	}, observer.routes)
	assert.Equal(t, []int{http.StatusOK, http.StatusUnauthorized}, observer.status)
}

func TestRouter_MetricsRouteAbsentWhenDisabled(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})

	rec := doRequest(t, router, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
