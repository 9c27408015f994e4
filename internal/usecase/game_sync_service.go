package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/pickem-league/internal/domain/game"
	"github.com/riskibarqy/pickem-league/internal/domain/league"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const defaultGameSyncWorkers = 4

type GameSyncResult struct {
	GamesApplied      int               `json:"gamesApplied"`
	Weeks             []int             `json:"weeks"`
	Units             []RecalculateUnit `json:"units"`
	ComputedCount     int               `json:"computedCount"`
	NotScoreableCount int               `json:"notScoreableCount"`
	FailedCount       int               `json:"failedCount"`
}

// GameSyncService applies game results from the data provider and rescores affected weeks.
type GameSyncService struct {
	gameRepo   game.Repository
	leagueRepo league.Repository
	scorer     WeekScorer
	logger     *logging.Logger
	workers    int
	now        func() time.Time
}

func NewGameSyncService(
	gameRepo game.Repository,
	leagueRepo league.Repository,
	scorer WeekScorer,
	logger *logging.Logger,
	workers int,
) *GameSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers <= 0 {
		workers = defaultGameSyncWorkers
	}
	return &GameSyncService{
		gameRepo:   gameRepo,
		leagueRepo: leagueRepo,
		scorer:     scorer,
		logger:     logger.Named("usecase.game_sync"),
		workers:    workers,
		now:        time.Now,
	}
}

// ApplyResults upserts the games and recomputes every league for each week that has a final game in the batch.
func (s *GameSyncService) ApplyResults(ctx context.Context, games []game.Game) (GameSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameSyncService.ApplyResults",
		attribute.Int("games", len(games)),
	)
	defer span.End()

	if len(games) == 0 {
		return GameSyncResult{}, errors.Wrap(ErrInvalidInput, "at least one game is required")
	}

	now := s.now().UTC()
	normalized := make([]game.Game, 0, len(games))
	finalWeeks := make(map[int]struct{})
	for i, item := range games {
		g, err := normalizeGame(item, now)
		if err != nil {
			return GameSyncResult{}, errors.Wrapf(err, "game[%d]", i)
		}
		normalized = append(normalized, g)
		if g.IsFinal() {
			finalWeeks[g.Week] = struct{}{}
		}
	}

	if err := s.gameRepo.Upsert(ctx, normalized); err != nil {
		recordSpanError(span, err)
		return GameSyncResult{}, markPersistence(err, "upsert %d games", len(normalized))
	}

	result := GameSyncResult{GamesApplied: len(normalized)}
	for week := range finalWeeks {
		result.Weeks = append(result.Weeks, week)
	}
	sort.Ints(result.Weeks)
	if len(result.Weeks) == 0 {
		return result, nil
	}

	leagues, err := s.leagueRepo.ListWithMembers(ctx)
	if err != nil {
		recordSpanError(span, err)
		return result, errors.Mark(errors.Wrap(err, "list leagues with members"), ErrDependencyUnavailable)
	}
	if len(leagues) == 0 {
		return result, nil
	}

	units, err := s.rescore(ctx, leagues, result.Weeks)
	if err != nil {
		recordSpanError(span, err)
		return result, err
	}
	result.Units = units
	for _, unit := range units {
		switch unit.Status {
		case OutcomeComputed:
			result.ComputedCount++
		case OutcomeNotScoreable:
			result.NotScoreableCount++
		default:
			result.FailedCount++
		}
	}

	s.logger.InfoContext(ctx, "game results applied",
		"games", result.GamesApplied,
		"weeks", len(result.Weeks),
		"leagues", len(leagues),
		"failed_units", result.FailedCount,
	)
	return result, nil
}

func (s *GameSyncService) rescore(ctx context.Context, leagues []league.League, weeks []int) ([]RecalculateUnit, error) {
	total := len(leagues) * len(weeks)
	results := make(chan RecalculateUnit, total)

	var failedCount atomic.Int32

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, item := range leagues {
		for _, week := range weeks {
			leagueID, week := item.ID, week
			workers.Add(1)
			if err := pool.Submit(func() {
				defer workers.Done()

				unit := RecalculateUnit{LeagueID: leagueID, Week: week}
				computation, err := s.scorer.ComputeWeekScores(ctx, leagueID, week)
				switch {
				case err != nil:
					failedCount.Add(1)
					unit.Status = OutcomeFailed
					unit.Error = err.Error()
					s.logger.WarnContext(ctx, "rescore after game sync failed", "league_id", leagueID, "week", week, "error", err)
				case !computation.Scoreable:
					unit.Status = OutcomeNotScoreable
				default:
					unit.Status = OutcomeComputed
					unit.ScoredUsers = len(computation.Scores)
					unit.SkippedPicks = computation.SkippedPicks
				}
				results <- unit
			}); err != nil {
				workers.Done()
				return nil, fmt.Errorf("submit task to worker pool: %w", err)
			}
		}
	}

	workers.Wait()
	close(results)

	units := make([]RecalculateUnit, 0, total)
	for unit := range results {
		units = append(units, unit)
	}
	sort.SliceStable(units, func(i, j int) bool {
		if units[i].LeagueID != units[j].LeagueID {
			return units[i].LeagueID < units[j].LeagueID
		}
		return units[i].Week < units[j].Week
	})

	if failed := failedCount.Load(); failed > 0 {
		s.logger.WarnContext(ctx, "some league weeks failed to rescore", "failed", int(failed), "total", total)
	}
	return units, nil
}

func normalizeGame(item game.Game, now time.Time) (game.Game, error) {
	item.ID = strings.TrimSpace(item.ID)
	item.ExternalID = strings.TrimSpace(item.ExternalID)
	item.HomeTeam = strings.TrimSpace(item.HomeTeam)
	item.AwayTeam = strings.TrimSpace(item.AwayTeam)
	item.Status = game.NormalizeStatus(item.Status)

	switch {
	case item.ID == "":
		return game.Game{}, errors.Wrap(ErrInvalidInput, "id is required")
	case item.HomeTeam == "" || item.AwayTeam == "":
		return game.Game{}, errors.Wrap(ErrInvalidInput, "homeTeam and awayTeam are required")
	case item.HomeTeam == item.AwayTeam:
		return game.Game{}, errors.Wrap(ErrInvalidInput, "homeTeam and awayTeam must differ")
	case !game.ValidWeek(item.Week):
		return game.Game{}, errors.Wrapf(ErrInvalidInput, "week must be between %d and %d", game.MinWeek, game.MaxWeek)
	case item.KickoffAt.IsZero():
		return game.Game{}, errors.Wrap(ErrInvalidInput, "kickoff is required")
	}
	item.KickoffAt = item.KickoffAt.UTC()

	switch {
	case !item.IsFinal() || item.Winner == nil || strings.TrimSpace(*item.Winner) == "":
		// Winner is only meaningful on a final game; a final game without one is a tie.
		item.Winner = nil
	default:
		winner := strings.TrimSpace(*item.Winner)
		if !item.HasTeam(winner) {
			return game.Game{}, errors.Wrapf(ErrInvalidInput, "winner %q does not play in the game", winner)
		}
		item.Winner = &winner
	}
	item.UpdatedAt = now
	return item, nil
}
