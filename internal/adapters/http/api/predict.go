package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/bankpredict/internal/domain/model"
	"github.com/okian/bankpredict/internal/domain/types"
)

// RequestIDHeader carries the id under which a prediction was recorded.
const RequestIDHeader = "X-Request-ID"

// PredictHandler handles single predictions.
type PredictHandler struct {
	deps Dependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandlePredict handles POST {prefix}/predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	c, err := model.DecodeCustomer(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	p, err := h.deps.Predict(r.Context(), c)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	w.Header().Set(RequestIDHeader, p.RequestID)
	writeJSON(w, http.StatusOK, p)
}

// BatchHandler handles batch predictions.
type BatchHandler struct {
	deps Dependencies
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(deps Dependencies) *BatchHandler {
	return &BatchHandler{deps: deps}
}

type batchRequest struct {
	Customers []json.RawMessage `json:"customers"`
}

type batchResponse struct {
	Predictions []types.Prediction `json:"predictions"`
}

// HandlePredictBatch handles POST {prefix}/predict/batch requests.
func (h *BatchHandler) HandlePredictBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict_batch"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req batchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	customers := make([]model.Customer, len(req.Customers))
	for i, raw := range req.Customers {
		c, err := model.DecodeCustomer(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("customer %d: %w", i, err)))
			return
		}
		customers[i] = c
	}

	out, err := h.deps.PredictBatch(r.Context(), customers)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Predictions: out})
}
