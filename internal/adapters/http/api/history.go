package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/bankpredict/internal/domain/types"
)

// HistoryHandler lists recently served predictions.
type HistoryHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps Dependencies, maxLimit int) *HistoryHandler {
	return &HistoryHandler{deps: deps, maxLimit: maxLimit}
}

type historyResponse struct {
	Predictions []types.HistoryEntry `json:"predictions"`
}

// HandleHistory handles GET {prefix}/predictions?limit=N requests.
func (h *HistoryHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.predictions"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	limit := defaultHistoryLimit
	if limit > h.maxLimit {
		limit = h.maxLimit
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, fmt.Errorf("limit must be an integer in [1, %d]", h.maxLimit)))
			return
		}
		limit = n
	}

	entries, err := h.deps.History(r.Context(), limit)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	if entries == nil {
		entries = []types.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Predictions: entries})
}
