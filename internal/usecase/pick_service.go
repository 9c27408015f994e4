package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/pickem-league/internal/domain/game"
	"github.com/riskibarqy/pickem-league/internal/domain/league"
	"github.com/riskibarqy/pickem-league/internal/domain/pick"
	"github.com/riskibarqy/pickem-league/internal/domain/user"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type PickSubmission struct {
	GameID string
	Team   string
}

type SubmitPicksResult struct {
	Saved     int
	Scoreable bool
	// Recomputed is false when saving succeeded but the follow-up scoring run did not.
	Recomputed bool
}

type PickService struct {
	gameRepo   game.Repository
	pickRepo   pick.Repository
	leagueRepo league.Repository
	scorer     WeekScorer
	logger     *logging.Logger
	now        func() time.Time
}

func NewPickService(
	gameRepo game.Repository,
	pickRepo pick.Repository,
	leagueRepo league.Repository,
	scorer WeekScorer,
	logger *logging.Logger,
) *PickService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PickService{
		gameRepo:   gameRepo,
		pickRepo:   pickRepo,
		leagueRepo: leagueRepo,
		scorer:     scorer,
		logger:     logger.Named("usecase.pick"),
		now:        time.Now,
	}
}

// SubmitPicks saves the principal's picks for one league week and refreshes that week's scores.
// Picks on games that already kicked off are rejected as a whole.
func (s *PickService) SubmitPicks(
	ctx context.Context,
	principal user.Principal,
	leagueID string,
	week int,
	items []PickSubmission,
) (SubmitPicksResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.SubmitPicks",
		attribute.String("league_id", leagueID),
		attribute.Int("week", week),
		attribute.Int("picks", len(items)),
	)
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if err := validateLeagueWeek(leagueID, week); err != nil {
		return SubmitPicksResult{}, err
	}
	if len(items) == 0 {
		return SubmitPicksResult{}, errors.Wrap(ErrInvalidInput, "at least one pick is required")
	}
	if _, err := authorizeMember(ctx, s.leagueRepo, principal, leagueID); err != nil {
		recordSpanError(span, err)
		return SubmitPicksResult{}, err
	}

	// Last submission for a game wins, matching the upsert key.
	order := make([]string, 0, len(items))
	byGame := make(map[string]string, len(items))
	for _, item := range items {
		gameID := strings.TrimSpace(item.GameID)
		team := strings.TrimSpace(item.Team)
		if gameID == "" || team == "" {
			return SubmitPicksResult{}, errors.Wrap(ErrInvalidInput, "gameId and team are required")
		}
		if _, ok := byGame[gameID]; !ok {
			order = append(order, gameID)
		}
		byGame[gameID] = team
	}

	games, err := s.gameRepo.GetByIDs(ctx, order)
	if err != nil {
		recordSpanError(span, err)
		return SubmitPicksResult{}, errors.Mark(errors.Wrap(err, "get games"), ErrDependencyUnavailable)
	}
	gamesByID := make(map[string]game.Game, len(games))
	for _, item := range games {
		gamesByID[item.ID] = item
	}

	now := s.now().UTC()
	picks := make([]pick.Pick, 0, len(order))
	for _, gameID := range order {
		g, ok := gamesByID[gameID]
		if !ok {
			return SubmitPicksResult{}, errors.Wrapf(ErrNotFound, "game=%s", gameID)
		}
		if g.Week != week {
			return SubmitPicksResult{}, errors.Wrapf(ErrInvalidInput, "game=%s belongs to week %d", gameID, g.Week)
		}
		team := byGame[gameID]
		if !g.HasTeam(team) {
			return SubmitPicksResult{}, errors.Wrapf(ErrInvalidInput, "team %q does not play in game=%s", team, gameID)
		}
		if !now.Before(g.KickoffAt) || g.IsFinal() {
			return SubmitPicksResult{}, errors.Wrapf(ErrPickLocked, "game=%s kicked off at %s", gameID, g.KickoffAt.Format(time.RFC3339))
		}
		picks = append(picks, pick.Pick{
			UserID:    principal.UserID,
			LeagueID:  leagueID,
			GameID:    gameID,
			Week:      week,
			Team:      team,
			UpdatedAt: now,
		})
	}

	for _, item := range picks {
		if err := s.pickRepo.Upsert(ctx, item); err != nil {
			recordSpanError(span, err)
			return SubmitPicksResult{}, markPersistence(err, "upsert pick league=%s user=%s game=%s", leagueID, item.UserID, item.GameID)
		}
	}

	result := SubmitPicksResult{Saved: len(picks)}
	computation, err := s.scorer.ComputeWeekScores(ctx, leagueID, week)
	if err != nil {
		s.logger.WarnContext(ctx, "recompute after pick submission failed",
			"league_id", leagueID,
			"week", week,
			"user_id", principal.UserID,
			"error", err,
		)
		return result, nil
	}
	result.Recomputed = true
	result.Scoreable = computation.Scoreable
	return result, nil
}

// authorizeMember is stricter than authorizeLeague: picks belong to members, so admins get no bypass.
func authorizeMember(ctx context.Context, repo league.Repository, principal user.Principal, leagueID string) (league.Member, error) {
	if strings.TrimSpace(principal.UserID) == "" {
		return league.Member{}, errors.Wrap(ErrUnauthorized, "missing principal")
	}
	_, exists, err := repo.GetByID(ctx, leagueID)
	if err != nil {
		return league.Member{}, errors.Mark(errors.Wrapf(err, "get league=%s", leagueID), ErrDependencyUnavailable)
	}
	if !exists {
		return league.Member{}, errors.Wrapf(ErrNotFound, "league=%s", leagueID)
	}
	member, ok, err := repo.GetMember(ctx, leagueID, principal.UserID)
	if err != nil {
		return league.Member{}, errors.Mark(errors.Wrapf(err, "get member league=%s user=%s", leagueID, principal.UserID), ErrDependencyUnavailable)
	}
	if !ok {
		return league.Member{}, errors.Wrapf(ErrForbidden, "user=%s is not a member of league=%s", principal.UserID, leagueID)
	}
	return member, nil
}
