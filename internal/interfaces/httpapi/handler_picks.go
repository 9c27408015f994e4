package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/pickem-league/internal/usecase"
)

// GetPicks returns the pick breakdown for user_id, or for the caller when it is omitted.
// Another member's picks on games that have not kicked off are left out.
func (h *Handler) GetPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPicks")
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
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		userID = principal.UserID
	}

	if err := h.scoringService.AuthorizeLeagueRead(ctx, principal, leagueID); err != nil {
		writeError(ctx, w, err)
		return
	}

	details, err := h.scoringService.GetVisiblePicksDetails(ctx, principal, leagueID, week, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get pick details failed",
			"league_id", leagueID,
			"week", week,
			"user_id", userID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toPickDetailDTOs(details))
}

func (h *Handler) SubmitPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPicks")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	if h.pickService == nil {
		writeError(ctx, w, fmt.Errorf("%w: pick service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	leagueID, week, err := leagueWeekFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitPicksRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.pickService.SubmitPicks(ctx, principal, leagueID, week, req.toSubmissions())
	if err != nil {
		h.logger.WarnContext(ctx, "submit picks failed",
			"league_id", leagueID,
			"week", week,
			"user_id", principal.UserID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, submitPicksResponseDTO{
		Saved:      result.Saved,
		Scoreable:  result.Scoreable,
		Recomputed: result.Recomputed,
	})
}
