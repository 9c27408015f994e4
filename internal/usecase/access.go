package usecase

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/pickem-league/internal/domain/league"
	"github.com/riskibarqy/pickem-league/internal/domain/user"
)

// authorizeLeague resolves the league and checks that the principal may act on it.
// Admins pass for any existing league.
func authorizeLeague(ctx context.Context, repo league.Repository, principal user.Principal, leagueID string) (league.League, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return league.League{}, errors.Wrap(ErrInvalidInput, "league id is required")
	}
	if strings.TrimSpace(principal.UserID) == "" {
		return league.League{}, errors.Wrap(ErrUnauthorized, "missing principal")
	}

	item, exists, err := repo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, errors.Mark(errors.Wrapf(err, "get league=%s", leagueID), ErrDependencyUnavailable)
	}
	if !exists {
		return league.League{}, errors.Wrapf(ErrNotFound, "league=%s", leagueID)
	}
	if principal.IsAdmin {
		return item, nil
	}

	_, member, err := repo.GetMember(ctx, leagueID, principal.UserID)
	if err != nil {
		return league.League{}, errors.Mark(errors.Wrapf(err, "get member league=%s user=%s", leagueID, principal.UserID), ErrDependencyUnavailable)
	}
	if !member {
		return league.League{}, errors.Wrapf(ErrForbidden, "user=%s is not a member of league=%s", principal.UserID, leagueID)
	}
	return item, nil
}
