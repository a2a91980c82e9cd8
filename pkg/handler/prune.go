package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/chatstack/chat-backend/pkg/customerror"
	"github.com/chatstack/chat-backend/pkg/service"
)

// PruneHandler exposes the administrative data-pruning trigger.
type PruneHandler struct {
	service *service.Service
	logger  *zap.Logger
}

// NewPruneHandler initiates a prune handler instance
func NewPruneHandler(svc *service.Service, logger *zap.Logger) *PruneHandler {
	return &PruneHandler{service: svc, logger: logger}
}

// PruneData handles POST /api/v1/prune/. The response is a bare
// boolean: callers learn nothing about which stage failed from the
// response alone; only logs carry that detail.
func (h *PruneHandler) PruneData(w http.ResponseWriter, r *http.Request) {
	var params service.PruneParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.PruneData(r.Context(), params); err != nil {
		if errors.Is(err, customerror.ErrPruneInProgress) {
			writeError(w, http.StatusConflict, "A prune run is already in progress")
			return
		}
		h.logger.Error("prune run failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error pruning data")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(true)
}

func writeError(w http.ResponseWriter, code int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
