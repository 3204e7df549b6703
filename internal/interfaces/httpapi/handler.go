package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yudhapane/fpl-oracle/internal/platform/logging"
	"github.com/yudhapane/fpl-oracle/internal/usecase"
)

type Handler struct {
	snapshotService   *usecase.SnapshotService
	predictionService *usecase.PredictionService
	transferService   *usecase.TransferService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	snapshotService *usecase.SnapshotService,
	predictionService *usecase.PredictionService,
	transferService *usecase.TransferService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		snapshotService:   snapshotService,
		predictionService: predictionService,
		transferService:   transferService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type recommendTransfersRequest struct {
	Squad          []recommendSquadPlayerRecord `json:"squad" validate:"required,len=15,dive"`
	Bank           int                          `json:"bank" validate:"gte=0"`
	Horizon        int                          `json:"horizon" validate:"gte=0,lte=15"`
	IncludeInjured bool                         `json:"includeInjured"`
	Strategy       string                       `json:"strategy" validate:"omitempty,oneof=maxPoints value safety differential"`
}

type recommendSquadPlayerRecord struct {
	PlayerID int64 `json:"playerId" validate:"required,gt=0"`
	// SellPrice is in tenths of a million; zero means "sell at current cost".
	SellPrice int `json:"sellPrice" validate:"gte=0"`
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", usecase.ErrInvalidInput, name, raw)
	}
	return id, nil
}

// parseHorizonQuery reads the optional horizon query parameter; absent reads
// as zero, which the services map to the default window.
func parseHorizonQuery(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("horizon"))
	if raw == "" {
		return 0, nil
	}
	horizon, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid horizon %q", usecase.ErrInvalidInput, raw)
	}
	return horizon, nil
}
