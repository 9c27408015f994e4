package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/pickem-league/internal/usecase"
)

func (h *Handler) GetLeagueStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueStats")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	if h.scoringService == nil {
		writeError(ctx, w, fmt.Errorf("%w: scoring service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	leagueID, week, err := leagueWeekFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.scoringService.AuthorizeLeagueRead(ctx, principal, leagueID); err != nil {
		writeError(ctx, w, err)
		return
	}

	stats, err := h.scoringService.GetLeagueStats(ctx, leagueID, week)
	if err != nil {
		h.logger.WarnContext(ctx, "get league stats failed",
			"league_id", leagueID,
			"week", week,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toLeagueStatsDTO(stats))
}

func (h *Handler) RecalculateScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecalculateScores")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	if h.recalculationService == nil {
		writeError(ctx, w, fmt.Errorf("%w: recalculation service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req recalculateRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.recalculationService.RecalculateScores(ctx, principal, usecase.RecalculateScope{
		LeagueID:   strings.TrimSpace(req.LeagueID),
		Week:       req.Week,
		AllLeagues: req.AllLeagues,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "recalculate scores failed",
			"user_id", principal.UserID,
			"league_id", req.LeagueID,
			"week", req.Week,
			"all_leagues", req.AllLeagues,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "recalculate scores requested",
		"user_id", principal.UserID,
		"run_id", result.RunID,
		"scope", result.Scope,
		"computed", result.ComputedCount,
		"failed", result.FailedCount,
	)
	writeSuccess(ctx, w, http.StatusOK, result)
}
