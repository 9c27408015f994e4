package usecase

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/pickem-league/internal/domain/game"
	"github.com/riskibarqy/pickem-league/internal/domain/league"
	"github.com/riskibarqy/pickem-league/internal/domain/pick"
	"github.com/riskibarqy/pickem-league/internal/domain/score"
	"github.com/riskibarqy/pickem-league/internal/domain/user"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
	"github.com/riskibarqy/pickem-league/internal/platform/resilience"
	"go.opentelemetry.io/otel/attribute"
)

// WeekScorer recomputes the scores of one league week.
type WeekScorer interface {
	ComputeWeekScores(ctx context.Context, leagueID string, week int) (WeekComputation, error)
}

type ScoringService struct {
	gameRepo   game.Repository
	pickRepo   pick.Repository
	scoreRepo  score.Repository
	leagueRepo league.Repository
	rules      score.Rules
	logger     *logging.Logger
	metrics    ScoringMetrics
	now        func() time.Time
	weekLocks  resilience.KeyedMutex
}

type ScoringOption func(*ScoringService)

func WithScoringRules(rules score.Rules) ScoringOption {
	return func(s *ScoringService) {
		s.rules = rules
	}
}

func WithScoringMetrics(metrics ScoringMetrics) ScoringOption {
	return func(s *ScoringService) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

func WithScoringClock(now func() time.Time) ScoringOption {
	return func(s *ScoringService) {
		if now != nil {
			s.now = now
		}
	}
}

// WeekComputation reports one run of the engine for a league week.
type WeekComputation struct {
	LeagueID       string
	Week           int
	Scoreable      bool
	FinalGames     int
	FeaturedGameID string
	Scores         []score.Score
	SkippedPicks   int
}

type LeaderboardEntry struct {
	UserID       string
	Username     string
	ProfileImage string
	Points       int
}

type LeagueStats struct {
	LeagueID        string
	Week            int
	PointsAvailable bool
	ComputedAt      *time.Time
	Weekly          []LeaderboardEntry
	Total           []LeaderboardEntry
}

type PickDetail struct {
	GameID   string
	HomeTeam string
	AwayTeam string
	Pick     string
	Winner   *string
	Correct  bool
	Points   int
	Date     time.Time
	Status   string
}

func NewScoringService(
	gameRepo game.Repository,
	pickRepo pick.Repository,
	scoreRepo score.Repository,
	leagueRepo league.Repository,
	logger *logging.Logger,
	opts ...ScoringOption,
) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}
	s := &ScoringService{
		gameRepo:   gameRepo,
		pickRepo:   pickRepo,
		scoreRepo:  scoreRepo,
		leagueRepo: leagueRepo,
		rules:      score.DefaultRules(),
		logger:     logger.Named("usecase.scoring"),
		metrics:    NopScoringMetrics(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeWeekScores recomputes and upserts every member's score for one league week.
// A week without final games is left untouched and reported as not scoreable.
// Runs for the same league week are serialized, and each one reads its own snapshot
// after the previous run has written, so the last trigger always sees the latest picks.
func (s *ScoringService) ComputeWeekScores(ctx context.Context, leagueID string, week int) (WeekComputation, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ComputeWeekScores",
		attribute.String("league_id", leagueID),
		attribute.Int("week", week),
	)
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if err := validateLeagueWeek(leagueID, week); err != nil {
		return WeekComputation{}, err
	}

	unlock, err := s.weekLocks.Lock(ctx, leagueID+":"+strconv.Itoa(week))
	if err != nil {
		recordSpanError(span, err)
		return WeekComputation{}, errors.Wrapf(err, "wait for week computation league=%s week=%d", leagueID, week)
	}
	defer unlock()

	result, err := s.computeWeek(ctx, leagueID, week)
	if err != nil {
		recordSpanError(span, err)
		return WeekComputation{}, err
	}
	return result, nil
}

func (s *ScoringService) computeWeek(ctx context.Context, leagueID string, week int) (WeekComputation, error) {
	started := s.now()
	result := WeekComputation{LeagueID: leagueID, Week: week}

	games, err := s.gameRepo.ListByWeek(ctx, week)
	if err != nil {
		s.metrics.ObserveWeekComputation(OutcomeFailed, s.now().Sub(started))
		return WeekComputation{}, errors.Mark(errors.Wrapf(err, "list games week=%d", week), ErrDependencyUnavailable)
	}

	slate := newWeekSlate(games)
	result.FinalGames = slate.finalGames
	if slate.finalGames == 0 {
		s.metrics.ObserveWeekComputation(OutcomeNotScoreable, s.now().Sub(started))
		s.logger.InfoContext(ctx, "week not yet scoreable", "league_id", leagueID, "week", week)
		return result, nil
	}
	result.Scoreable = true
	result.FeaturedGameID = slate.featuredGameID

	picks, err := s.pickRepo.ListByLeagueWeek(ctx, leagueID, week)
	if err != nil {
		s.metrics.ObserveWeekComputation(OutcomeFailed, s.now().Sub(started))
		return WeekComputation{}, errors.Mark(errors.Wrapf(err, "list picks league=%s week=%d", leagueID, week), ErrDependencyUnavailable)
	}

	evaluated, skipped := s.evaluatePicks(ctx, leagueID, week, slate, picks)
	result.SkippedPicks = skipped

	totals := make(map[string]int, len(evaluated))
	for _, item := range evaluated {
		totals[item.pick.UserID] += item.points
	}
	userIDs := make([]string, 0, len(totals))
	for userID := range totals {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	calculatedAt := s.now().UTC()
	rows := make([]score.Score, 0, len(userIDs))
	for _, userID := range userIDs {
		rows = append(rows, score.Score{
			UserID:       userID,
			LeagueID:     leagueID,
			Week:         week,
			Points:       totals[userID],
			CalculatedAt: calculatedAt,
		})
	}
	run := score.WeekRun{
		LeagueID:        leagueID,
		Week:            week,
		FinalGames:      slate.finalGames,
		ScoredUsers:     len(rows),
		LastSucceededAt: calculatedAt,
	}

	// Rows and run land together; a failure keeps the last successful week intact.
	if err := s.scoreRepo.UpsertWeek(ctx, rows, run); err != nil {
		s.metrics.ObserveWeekComputation(OutcomeFailed, s.now().Sub(started))
		var rowErr *score.RowError
		if errors.As(err, &rowErr) {
			s.logger.ErrorContext(ctx, "score upsert failed",
				"league_id", leagueID,
				"week", week,
				"user_id", rowErr.UserID,
				"error", err,
			)
			return WeekComputation{}, markPersistence(err, "upsert score league=%s week=%d user=%s", leagueID, week, rowErr.UserID)
		}
		s.logger.ErrorContext(ctx, "week scores write failed", "league_id", leagueID, "week", week, "error", err)
		return WeekComputation{}, markPersistence(err, "upsert week scores league=%s week=%d", leagueID, week)
	}
	result.Scores = rows
	s.metrics.AddScoresWritten(len(rows))

	s.metrics.ObserveWeekComputation(OutcomeComputed, s.now().Sub(started))
	s.logger.InfoContext(ctx, "week scores computed",
		"league_id", leagueID,
		"week", week,
		"final_games", slate.finalGames,
		"users", len(result.Scores),
		"skipped_picks", skipped,
	)
	return result, nil
}

// GetLeagueStats refreshes the week and returns weekly and season-to-date leaderboards.
func (s *ScoringService) GetLeagueStats(ctx context.Context, leagueID string, week int) (LeagueStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.GetLeagueStats",
		attribute.String("league_id", leagueID),
		attribute.Int("week", week),
	)
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if err := validateLeagueWeek(leagueID, week); err != nil {
		return LeagueStats{}, err
	}

	_, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		recordSpanError(span, err)
		return LeagueStats{}, errors.Mark(errors.Wrapf(err, "get league=%s", leagueID), ErrDependencyUnavailable)
	}
	if !exists {
		return LeagueStats{}, errors.Wrapf(ErrNotFound, "league=%s", leagueID)
	}

	if _, err := s.ComputeWeekScores(ctx, leagueID, week); err != nil {
		s.logger.WarnContext(ctx, "week refresh failed, serving persisted scores",
			"league_id", leagueID,
			"week", week,
			"error", err,
		)
	}

	members, err := s.leagueRepo.ListMembers(ctx, leagueID)
	if err != nil {
		recordSpanError(span, err)
		return LeagueStats{}, errors.Mark(errors.Wrapf(err, "list members league=%s", leagueID), ErrDependencyUnavailable)
	}
	runs, err := s.scoreRepo.ListWeekRuns(ctx, leagueID)
	if err != nil {
		recordSpanError(span, err)
		return LeagueStats{}, errors.Mark(errors.Wrapf(err, "list week runs league=%s", leagueID), ErrDependencyUnavailable)
	}
	allRows, err := s.scoreRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		recordSpanError(span, err)
		return LeagueStats{}, errors.Mark(errors.Wrapf(err, "list scores league=%s", leagueID), ErrDependencyUnavailable)
	}

	// Only weeks with a completed run count; anything else is not yet available.
	completed := make(map[int]score.WeekRun, len(runs))
	for _, run := range runs {
		completed[run.Week] = run
	}
	run, hasRun := completed[week]

	counted := make([]score.Score, 0, len(allRows))
	weekRows := make([]score.Score, 0, len(members))
	for _, row := range allRows {
		if _, ok := completed[row.Week]; !ok {
			continue
		}
		if row.Week == week {
			weekRows = append(weekRows, row)
		}
		counted = append(counted, row)
	}

	stats := LeagueStats{
		LeagueID:        leagueID,
		Week:            week,
		PointsAvailable: hasRun,
		Weekly:          buildLeaderboard(members, score.TotalsByUser(weekRows)),
		Total:           buildLeaderboard(members, score.TotalsByUser(counted)),
	}
	if hasRun {
		computedAt := run.LastSucceededAt
		stats.ComputedAt = &computedAt
	}
	return stats, nil
}

// GetUserPicksDetails explains each pick of a user with the same point math the engine uses.
func (s *ScoringService) GetUserPicksDetails(ctx context.Context, leagueID string, week int, userID string) ([]PickDetail, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.GetUserPicksDetails",
		attribute.String("league_id", leagueID),
		attribute.Int("week", week),
	)
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	userID = strings.TrimSpace(userID)
	if err := validateLeagueWeek(leagueID, week); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, errors.Wrap(ErrInvalidInput, "user id is required")
	}

	games, err := s.gameRepo.ListByWeek(ctx, week)
	if err != nil {
		recordSpanError(span, err)
		return nil, errors.Mark(errors.Wrapf(err, "list games week=%d", week), ErrDependencyUnavailable)
	}
	picks, err := s.pickRepo.ListByLeagueWeekUser(ctx, leagueID, week, userID)
	if err != nil {
		recordSpanError(span, err)
		return nil, errors.Mark(errors.Wrapf(err, "list picks league=%s week=%d user=%s", leagueID, week, userID), ErrDependencyUnavailable)
	}

	evaluated, _ := s.evaluatePicks(ctx, leagueID, week, newWeekSlate(games), picks)
	sort.SliceStable(evaluated, func(i, j int) bool {
		if !evaluated[i].game.KickoffAt.Equal(evaluated[j].game.KickoffAt) {
			return evaluated[i].game.KickoffAt.Before(evaluated[j].game.KickoffAt)
		}
		return evaluated[i].game.ID < evaluated[j].game.ID
	})

	out := make([]PickDetail, 0, len(evaluated))
	for _, item := range evaluated {
		out = append(out, PickDetail{
			GameID:   item.game.ID,
			HomeTeam: item.game.HomeTeam,
			AwayTeam: item.game.AwayTeam,
			Pick:     item.pick.Team,
			Winner:   item.game.Winner,
			Correct:  item.correct,
			Points:   item.points,
			Date:     item.game.KickoffAt,
			Status:   item.game.Status,
		})
	}
	return out, nil
}

// GetVisiblePicksDetails is GetUserPicksDetails as the principal may see it: another
// member's picks stay hidden until their game kicks off.
func (s *ScoringService) GetVisiblePicksDetails(
	ctx context.Context,
	principal user.Principal,
	leagueID string,
	week int,
	userID string,
) ([]PickDetail, error) {
	details, err := s.GetUserPicksDetails(ctx, leagueID, week, userID)
	if err != nil || strings.TrimSpace(userID) == principal.UserID {
		return details, err
	}

	now := s.now()
	out := make([]PickDetail, 0, len(details))
	for _, item := range details {
		if game.NormalizeStatus(item.Status) != game.StatusFinal && now.Before(item.Date) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// AuthorizeLeagueRead checks that the principal can see the league's scores.
func (s *ScoringService) AuthorizeLeagueRead(ctx context.Context, principal user.Principal, leagueID string) error {
	_, err := authorizeLeague(ctx, s.leagueRepo, principal, leagueID)
	return err
}

type weekSlate struct {
	byID           map[string]game.Game
	featured       time.Time
	featuredGameID string
	finalGames     int
}

func newWeekSlate(games []game.Game) weekSlate {
	slate := weekSlate{
		byID:     make(map[string]game.Game, len(games)),
		featured: score.FeaturedKickoff(games),
	}
	for _, item := range games {
		slate.byID[item.ID] = item
		if item.IsFinal() {
			slate.finalGames++
		}
		if !slate.featured.IsZero() && item.KickoffAt.Equal(slate.featured) {
			if slate.featuredGameID == "" || item.ID < slate.featuredGameID {
				slate.featuredGameID = item.ID
			}
		}
	}
	return slate
}

type evaluatedPick struct {
	pick    pick.Pick
	game    game.Game
	correct bool
	points  int
}

// evaluatePicks scores picks against the slate. Picks whose game is not part of the
// week are skipped and logged; they never contribute points.
func (s *ScoringService) evaluatePicks(
	ctx context.Context,
	leagueID string,
	week int,
	slate weekSlate,
	picks []pick.Pick,
) ([]evaluatedPick, int) {
	out := make([]evaluatedPick, 0, len(picks))
	skipped := 0
	for _, item := range picks {
		g, ok := slate.byID[item.GameID]
		if !ok {
			skipped++
			s.logger.WarnContext(ctx, "pick references a game outside the week, skipping",
				"league_id", leagueID,
				"week", week,
				"user_id", item.UserID,
				"game_id", item.GameID,
			)
			continue
		}
		correct, points := s.rules.PointsFor(g, item.Team, slate.featured)
		out = append(out, evaluatedPick{pick: item, game: g, correct: correct, points: points})
	}
	if skipped > 0 {
		s.metrics.AddSkippedPicks(skipped)
	}
	return out, skipped
}

func buildLeaderboard(members []league.Member, points map[string]int) []LeaderboardEntry {
	seen := make(map[string]struct{}, len(members))
	out := make([]LeaderboardEntry, 0, len(members))
	for _, member := range members {
		if _, ok := seen[member.UserID]; ok {
			continue
		}
		seen[member.UserID] = struct{}{}
		out = append(out, LeaderboardEntry{
			UserID:       member.UserID,
			Username:     member.Username,
			ProfileImage: member.ProfileImage,
			Points:       points[member.UserID],
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].Username != out[j].Username {
			return out[i].Username < out[j].Username
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func validateLeagueWeek(leagueID string, week int) error {
	if leagueID == "" {
		return errors.Wrap(ErrInvalidInput, "league id is required")
	}
	if !game.ValidWeek(week) {
		return errors.Wrapf(ErrInvalidInput, "week must be between %d and %d", game.MinWeek, game.MaxWeek)
	}
	return nil
}
