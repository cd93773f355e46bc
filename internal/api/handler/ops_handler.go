package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shelfcheck/item-audit/internal/check"
	"github.com/shelfcheck/item-audit/internal/domain"
	"github.com/shelfcheck/item-audit/internal/run"
	"github.com/shelfcheck/item-audit/internal/staging"
)

// OpsHandler exposes read-only operational state plus a manual sweep
// trigger for on-call use.
type OpsHandler struct {
	staging staging.Store
	runs    run.Repository
	coord   *run.Coordinator
	logger  *zap.Logger
}

func NewOpsHandler(st staging.Store, runs run.Repository, coord *run.Coordinator, logger *zap.Logger) *OpsHandler {
	return &OpsHandler{staging: st, runs: runs, coord: coord, logger: logger}
}

// ListStaged handles GET /api/v1/staged/{check}
func (h *OpsHandler) ListStaged(w http.ResponseWriter, r *http.Request) {
	checkName := chi.URLParam(r, "check")
	if checkName != check.RowTrayCheckName {
		mapError(w, domain.ErrUnknownCheck)
		return
	}

	barcodes, err := h.staging.List(r.Context(), checkName)
	if err != nil {
		h.logger.Error("list staged items", zap.Error(err))
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"check":    checkName,
		"count":    len(barcodes),
		"barcodes": barcodes,
	})
}

// ListRuns handles GET /api/v1/runs
func (h *OpsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.runs.List(r.Context())
	if err != nil {
		h.logger.Error("list runs", zap.Error(err))
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// GetRun handles GET /api/v1/runs/{id}
func (h *OpsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	rn, err := h.runs.Get(r.Context(), id)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rn)
}

// TriggerSweep handles POST /api/v1/runs/trigger
//
// Kicks off the same sweep the scheduler performs. The sweep lock makes a
// concurrent manual trigger a no-op rather than a duplicate run.
func (h *OpsHandler) TriggerSweep(w http.ResponseWriter, r *http.Request) {
	if err := h.coord.Sweep(r.Context(), check.RowTrayCheckName); err != nil {
		h.logger.Error("manual sweep failed", zap.Error(err))
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "sweep started"})
}
