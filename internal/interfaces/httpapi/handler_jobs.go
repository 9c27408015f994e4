package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/pickem-league/internal/usecase"
)

// ApplyGameResults ingests a batch of game rows from the results feed and rescores touched weeks.
func (h *Handler) ApplyGameResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApplyGameResults")
	defer span.End()

	if h.gameSyncService == nil {
		writeError(ctx, w, fmt.Errorf("%w: game sync service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req gameResultsRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.gameSyncService.ApplyResults(ctx, req.toGames())
	if err != nil {
		h.logger.ErrorContext(ctx, "apply game results failed",
			"games", len(req.Games),
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
