package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/pickem-league/internal/domain/game"
	"github.com/riskibarqy/pickem-league/internal/domain/league"
	"github.com/riskibarqy/pickem-league/internal/domain/pick"
	"github.com/riskibarqy/pickem-league/internal/domain/score"
	"github.com/riskibarqy/pickem-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testLeagueID = "league-1"

// 2025 week 1 kickoffs in UTC; league-local days noted per value.
var (
	kickoffThursday    = time.Date(2025, time.September, 5, 0, 20, 0, 0, time.UTC) // Thu 20:20
	kickoffSaturday    = time.Date(2025, time.September, 6, 17, 0, 0, 0, time.UTC) // Sat 13:00
	kickoffSundayEarly = time.Date(2025, time.September, 7, 17, 0, 0, 0, time.UTC) // Sun 13:00
	kickoffSundayLate  = time.Date(2025, time.September, 7, 20, 25, 0, 0, time.UTC)
	kickoffSundayNight = time.Date(2025, time.September, 8, 0, 20, 0, 0, time.UTC) // Sun 20:20
	kickoffMondayNight = time.Date(2025, time.September, 9, 0, 15, 0, 0, time.UTC) // Mon 20:15
	testNow            = time.Date(2025, time.September, 10, 12, 0, 0, 0, time.UTC)
)

func strPtr(v string) *string { return &v }

func finalGame(id string, week int, kickoff time.Time, home, away string, winner *string) game.Game {
	return game.Game{ID: id, HomeTeam: home, AwayTeam: away, Week: week, KickoffAt: kickoff, Status: game.StatusFinal, Winner: winner}
}

func scheduledGame(id string, week int, kickoff time.Time, home, away string) game.Game {
	return game.Game{ID: id, HomeTeam: home, AwayTeam: away, Week: week, KickoffAt: kickoff, Status: game.StatusScheduled}
}

func newPick(userID string, week int, gameID, team string) pick.Pick {
	return pick.Pick{UserID: userID, LeagueID: testLeagueID, GameID: gameID, Week: week, Team: team}
}

func members(userIDs ...string) []league.Member {
	out := make([]league.Member, 0, len(userIDs))
	for _, id := range userIDs {
		out = append(out, league.Member{LeagueID: testLeagueID, UserID: id, Username: "name-" + id, Role: league.RoleMember})
	}
	return out
}

type scoringFixture struct {
	games   *memory.GameRepository
	picks   *memory.PickRepository
	scores  *flakyScoreRepository
	leagues *memory.LeagueRepository
	logs    *observer.ObservedLogs
	metrics *recordingMetrics
	service *ScoringService
}

func newScoringFixture(t *testing.T, games []game.Game, picks []pick.Pick, memberList []league.Member) *scoringFixture {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	f := &scoringFixture{
		games:   memory.NewGameRepository(games),
		picks:   memory.NewPickRepository(picks),
		scores:  &flakyScoreRepository{ScoreRepository: memory.NewScoreRepository()},
		leagues: memory.NewLeagueRepository([]league.League{{ID: testLeagueID, Name: "Test League", OwnerID: "u1"}}, memberList),
		logs:    logs,
		metrics: &recordingMetrics{},
	}
	f.service = NewScoringService(
		f.games,
		f.picks,
		f.scores,
		f.leagues,
		logging.FromZap(zap.New(core)),
		WithScoringMetrics(f.metrics),
		WithScoringClock(func() time.Time { return testNow }),
	)
	return f
}

func (f *scoringFixture) scoreRow(t *testing.T, userID string, week int) (score.Score, bool) {
	t.Helper()

	rows, err := f.scores.ListByLeagueWeek(context.Background(), testLeagueID, week)
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	for _, row := range rows {
		if row.UserID == userID {
			return row, true
		}
	}
	return score.Score{}, false
}

// flakyScoreRepository fails week writes that include selected users.
type flakyScoreRepository struct {
	*memory.ScoreRepository

	mu      sync.Mutex
	failFor map[string]bool
}

func (r *flakyScoreRepository) failUser(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor == nil {
		r.failFor = make(map[string]bool)
	}
	r.failFor[userID] = true
}

func (r *flakyScoreRepository) heal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failFor = nil
}

func (r *flakyScoreRepository) UpsertWeek(ctx context.Context, rows []score.Score, run score.WeekRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range rows {
		if r.failFor[item.UserID] {
			return &score.RowError{UserID: item.UserID, Err: errors.New("connection reset by peer")}
		}
	}
	return r.ScoreRepository.UpsertWeek(ctx, rows, run)
}

// pausingPickRepository holds the first week read open until released,
// leaving a recompute parked between its snapshot and its write.
type pausingPickRepository struct {
	*memory.PickRepository

	once    sync.Once
	paused  chan struct{}
	release chan struct{}

	mu    sync.Mutex
	reads int
}

func newPausingPickRepository(picks *memory.PickRepository) *pausingPickRepository {
	return &pausingPickRepository{
		PickRepository: picks,
		paused:         make(chan struct{}),
		release:        make(chan struct{}),
	}
}

func (r *pausingPickRepository) ListByLeagueWeek(ctx context.Context, leagueID string, week int) ([]pick.Pick, error) {
	out, err := r.PickRepository.ListByLeagueWeek(ctx, leagueID, week)

	r.mu.Lock()
	r.reads++
	r.mu.Unlock()

	first := false
	r.once.Do(func() { first = true })
	if first {
		close(r.paused)
		<-r.release
	}
	return out, err
}

func (r *pausingPickRepository) readCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []string
	skipped  int
	written  int
}

func (m *recordingMetrics) ObserveWeekComputation(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *recordingMetrics) AddSkippedPicks(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped += count
}

func (m *recordingMetrics) AddScoresWritten(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written += count
}

// scorerStub records every unit it is asked to compute.
type scorerStub struct {
	mu    sync.Mutex
	calls []RecalculateUnit
	fn    func(leagueID string, week int) (WeekComputation, error)
}

func (s *scorerStub) ComputeWeekScores(_ context.Context, leagueID string, week int) (WeekComputation, error) {
	s.mu.Lock()
	s.calls = append(s.calls, RecalculateUnit{LeagueID: leagueID, Week: week})
	s.mu.Unlock()

	if s.fn != nil {
		return s.fn(leagueID, week)
	}
	return WeekComputation{LeagueID: leagueID, Week: week, Scoreable: true}, nil
}

func (s *scorerStub) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}
