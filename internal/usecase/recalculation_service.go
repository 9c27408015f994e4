package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/pickem-league/internal/domain/game"
	"github.com/riskibarqy/pickem-league/internal/domain/league"
	"github.com/riskibarqy/pickem-league/internal/domain/user"
	"github.com/riskibarqy/pickem-league/internal/platform/id"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const (
	ScopeSingle     = "single"
	ScopeLeague     = "league"
	ScopeAllLeagues = "all_leagues"

	defaultRecalculateConcurrency = 4
)

// RecalculateScope selects what to recompute. Week zero means every week of the season.
type RecalculateScope struct {
	LeagueID   string
	Week       int
	AllLeagues bool
}

func (s RecalculateScope) Kind() string {
	switch {
	case s.AllLeagues:
		return ScopeAllLeagues
	case s.Week > 0:
		return ScopeSingle
	default:
		return ScopeLeague
	}
}

type RecalculateUnit struct {
	LeagueID     string `json:"leagueId"`
	Week         int    `json:"week"`
	Status       string `json:"status"`
	ScoredUsers  int    `json:"scoredUsers"`
	SkippedPicks int    `json:"skippedPicks"`
	Error        string `json:"error,omitempty"`
}

type RecalculateResult struct {
	RunID             string            `json:"runId"`
	Scope             string            `json:"scope"`
	Units             []RecalculateUnit `json:"units"`
	ComputedCount     int               `json:"computedCount"`
	NotScoreableCount int               `json:"notScoreableCount"`
	FailedCount       int               `json:"failedCount"`
	DurationMs        int64             `json:"durationMs"`
}

type RecalculationService struct {
	scorer         WeekScorer
	leagueRepo     league.Repository
	ids            id.Generator
	logger         *logging.Logger
	maxConcurrency int
	maxWeek        int
	now            func() time.Time
}

func NewRecalculationService(
	scorer WeekScorer,
	leagueRepo league.Repository,
	ids id.Generator,
	logger *logging.Logger,
	maxConcurrency int,
	maxWeek int,
) *RecalculationService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if maxConcurrency <= 0 {
		maxConcurrency = defaultRecalculateConcurrency
	}
	if maxWeek <= 0 || maxWeek > game.MaxWeek {
		maxWeek = game.MaxWeek
	}
	return &RecalculationService{
		scorer:         scorer,
		leagueRepo:     leagueRepo,
		ids:            ids,
		logger:         logger.Named("usecase.recalculation"),
		maxConcurrency: maxConcurrency,
		maxWeek:        maxWeek,
		now:            time.Now,
	}
}

// RecalculateScores recomputes the requested league weeks on behalf of principal.
// Authorization is checked for every target league before anything is computed.
// A single-week scope returns the unit's error; wider scopes report failures per unit.
func (s *RecalculationService) RecalculateScores(ctx context.Context, principal user.Principal, scope RecalculateScope) (RecalculateResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecalculationService.RecalculateScores",
		attribute.String("scope", scope.Kind()),
		attribute.String("league_id", scope.LeagueID),
		attribute.Int("week", scope.Week),
	)
	defer span.End()

	leagueIDs, weeks, err := s.resolveTargets(ctx, principal, scope)
	if err != nil {
		recordSpanError(span, err)
		return RecalculateResult{}, err
	}

	runID, err := s.ids.NewID()
	if err != nil {
		return RecalculateResult{}, errors.Wrap(err, "generate run id")
	}

	started := s.now()
	result := RecalculateResult{RunID: runID, Scope: scope.Kind()}
	logger := s.logger.With("run_id", runID, "scope", result.Scope)
	logger.InfoContext(ctx, "recalculation started", "leagues", len(leagueIDs), "weeks", len(weeks), "user_id", principal.UserID)

	workers := pool.NewWithResults[[]unitOutcome]().WithMaxGoroutines(s.maxConcurrency)
	for _, leagueID := range leagueIDs {
		leagueID := leagueID
		workers.Go(func() []unitOutcome {
			outcomes := make([]unitOutcome, 0, len(weeks))
			for _, week := range weeks {
				outcomes = append(outcomes, s.runUnit(ctx, logger, leagueID, week))
			}
			return outcomes
		})
	}

	var firstErr error
	for _, outcomes := range workers.Wait() {
		for _, outcome := range outcomes {
			result.Units = append(result.Units, outcome.unit)
			if outcome.err != nil && firstErr == nil {
				firstErr = outcome.err
			}
		}
	}

	sort.SliceStable(result.Units, func(i, j int) bool {
		if result.Units[i].LeagueID != result.Units[j].LeagueID {
			return result.Units[i].LeagueID < result.Units[j].LeagueID
		}
		return result.Units[i].Week < result.Units[j].Week
	})

	for _, unit := range result.Units {
		switch unit.Status {
		case OutcomeComputed:
			result.ComputedCount++
		case OutcomeNotScoreable:
			result.NotScoreableCount++
		default:
			result.FailedCount++
		}
	}
	result.DurationMs = s.now().Sub(started).Milliseconds()

	logger.InfoContext(ctx, "recalculation finished",
		"computed", result.ComputedCount,
		"not_scoreable", result.NotScoreableCount,
		"failed", result.FailedCount,
		"duration_ms", result.DurationMs,
	)

	if scope.Kind() == ScopeSingle && firstErr != nil {
		recordSpanError(span, firstErr)
		return result, firstErr
	}
	return result, nil
}

type unitOutcome struct {
	unit RecalculateUnit
	err  error
}

func (s *RecalculationService) runUnit(ctx context.Context, logger *logging.Logger, leagueID string, week int) unitOutcome {
	unit := RecalculateUnit{LeagueID: leagueID, Week: week}
	computation, err := s.scorer.ComputeWeekScores(ctx, leagueID, week)
	switch {
	case err != nil:
		unit.Status = OutcomeFailed
		unit.Error = err.Error()
		logger.WarnContext(ctx, "recalculation unit failed", "league_id", leagueID, "week", week, "error", err)
	case !computation.Scoreable:
		unit.Status = OutcomeNotScoreable
	default:
		unit.Status = OutcomeComputed
		unit.ScoredUsers = len(computation.Scores)
		unit.SkippedPicks = computation.SkippedPicks
	}
	return unitOutcome{unit: unit, err: err}
}

func (s *RecalculationService) resolveTargets(ctx context.Context, principal user.Principal, scope RecalculateScope) ([]string, []int, error) {
	if strings.TrimSpace(principal.UserID) == "" {
		return nil, nil, errors.Wrap(ErrUnauthorized, "missing principal")
	}

	scope.LeagueID = strings.TrimSpace(scope.LeagueID)
	if scope.AllLeagues {
		if scope.LeagueID != "" || scope.Week != 0 {
			return nil, nil, errors.Wrap(ErrInvalidInput, "allLeagues cannot be combined with leagueId or week")
		}
		leagues, err := s.leagueRepo.ListByMember(ctx, principal.UserID)
		if err != nil {
			return nil, nil, errors.Mark(errors.Wrapf(err, "list leagues for user=%s", principal.UserID), ErrDependencyUnavailable)
		}
		leagueIDs := make([]string, 0, len(leagues))
		for _, item := range leagues {
			leagueIDs = append(leagueIDs, item.ID)
		}
		sort.Strings(leagueIDs)
		return leagueIDs, s.seasonWeeks(), nil
	}

	if scope.LeagueID == "" {
		return nil, nil, errors.Wrap(ErrInvalidInput, "leagueId is required unless allLeagues is set")
	}
	if scope.Week != 0 && (scope.Week < game.MinWeek || scope.Week > s.maxWeek) {
		return nil, nil, errors.Wrapf(ErrInvalidInput, "week must be between %d and %d", game.MinWeek, s.maxWeek)
	}
	if _, err := authorizeLeague(ctx, s.leagueRepo, principal, scope.LeagueID); err != nil {
		return nil, nil, err
	}

	if scope.Week != 0 {
		return []string{scope.LeagueID}, []int{scope.Week}, nil
	}
	return []string{scope.LeagueID}, s.seasonWeeks(), nil
}

func (s *RecalculationService) seasonWeeks() []int {
	weeks := make([]int, 0, s.maxWeek)
	for week := game.MinWeek; week <= s.maxWeek; week++ {
		weeks = append(weeks, week)
	}
	return weeks
}
