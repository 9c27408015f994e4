package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
	"github.com/riskibarqy/pickem-league/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	scoringService       *usecase.ScoringService
	recalculationService *usecase.RecalculationService
	pickService          *usecase.PickService
	gameSyncService      *usecase.GameSyncService
	logger               *logging.Logger
	validator            *validator.Validate
}

func NewHandler(
	scoringService *usecase.ScoringService,
	recalculationService *usecase.RecalculationService,
	pickService *usecase.PickService,
	gameSyncService *usecase.GameSyncService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		scoringService:       scoringService,
		recalculationService: recalculationService,
		pickService:          pickService,
		gameSyncService:      gameSyncService,
		logger:               logger.Named("httpapi"),
		validator:            validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSONBody reads at most maxRequestBodyBytes into a pooled buffer and
// decodes it strictly into dst.
func decodeJSONBody(r *http.Request, dst any) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := buf.ReadFrom(io.LimitReader(r.Body, maxRequestBodyBytes+1)); err != nil {
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if buf.Len() > maxRequestBodyBytes {
		return fmt.Errorf("%w: request body exceeds %d bytes", usecase.ErrInvalidInput, maxRequestBodyBytes)
	}
	if len(bytes.TrimSpace(buf.B)) == 0 {
		return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
	}

	decoder := sonic.ConfigDefault.NewDecoder(bytes.NewReader(buf.B))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid json body: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func leagueWeekFromPath(r *http.Request) (string, int, error) {
	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	if leagueID == "" {
		return "", 0, fmt.Errorf("%w: league id is required", usecase.ErrInvalidInput)
	}

	rawWeek := strings.TrimSpace(r.PathValue("week"))
	week, err := strconv.Atoi(rawWeek)
	if err != nil {
		return "", 0, fmt.Errorf("%w: week must be a number, got %q", usecase.ErrInvalidInput, rawWeek)
	}
	return leagueID, week, nil
}
