// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/bankpredict/internal/domain/model"
	"github.com/okian/bankpredict/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Predict(ctx context.Context, c model.Customer) (types.Prediction, error)
	PredictBatch(ctx context.Context, customers []model.Customer) ([]types.Prediction, error)
	ModelInfo(ctx context.Context) types.ModelInfo
	History(ctx context.Context, limit int) ([]types.HistoryEntry, error)
}

// Default route configuration.
const (
	defaultAPIPrefix       = "/api/v1"
	defaultMaxHistoryLimit = 100
	defaultHistoryLimit    = 10
	maxBodyBytes           = 1 << 20
)

// Server wires HTTP routes for the business API.
type Server struct {
	apiPrefix       string
	maxHistoryLimit int

	healthHandler    *HealthHandler
	metricsHandler   *MetricsHandler
	statsHandler     *StatsHandler
	predictHandler   *PredictHandler
	batchHandler     *BatchHandler
	modelInfoHandler *ModelInfoHandler
	historyHandler   *HistoryHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		apiPrefix:       defaultAPIPrefix,
		maxHistoryLimit: defaultMaxHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler()
	s.metricsHandler = NewMetricsHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.predictHandler = NewPredictHandler(deps)
	s.batchHandler = NewBatchHandler(deps)
	s.modelInfoHandler = NewModelInfoHandler(deps)
	s.historyHandler = NewHistoryHandler(deps, s.maxHistoryLimit)
	return s
}

// APIPrefix returns the prefix of the prediction routes.
func (s *Server) APIPrefix() string { return s.apiPrefix }

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	p := s.apiPrefix

	mux.HandleFunc("/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("/metrics", s.metricsHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc(p+"/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc(p+"/predict/batch", MetricsMiddleware(s.batchHandler.HandlePredictBatch, "predict_batch"))
	mux.HandleFunc(p+"/model-info", MetricsMiddleware(s.modelInfoHandler.HandleModelInfo, "model_info"))
	mux.HandleFunc(p+"/predictions", MetricsMiddleware(s.historyHandler.HandleHistory, "predictions"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
