// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/bankpredict/internal/adapters/mq/queue"
	"github.com/okian/bankpredict/internal/adapters/mq/worker"
	"github.com/okian/bankpredict/internal/adapters/repository"
	"github.com/okian/bankpredict/internal/domain/features"
	"github.com/okian/bankpredict/internal/domain/model"
	"github.com/okian/bankpredict/internal/domain/prediction"
	"github.com/okian/bankpredict/internal/domain/types"
	"github.com/okian/bankpredict/pkg/logger"
	"github.com/okian/bankpredict/pkg/metrics"
)

const stopTimeout = 10 * time.Second

// describer is implemented by classifiers that carry version and evaluation metadata.
type describer interface {
	Info() types.ModelInfo
}

// Service serves predictions with an immutable classifier and records
// served predictions asynchronously.
type Service struct {
	mu sync.RWMutex

	// Core components
	classifier prediction.Classifier
	builder    *features.Builder
	schema     features.Schema
	history    repository.Store
	queue      queue.Queue
	pool       *worker.Pool

	// Configuration
	policy       features.MissingPolicy
	workerCount  int
	queueSize    int
	historySize  int
	maxBatchSize int

	// State
	started    bool
	stopped    bool
	poolCancel context.CancelFunc

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		policy:       features.MissingAsZero,
		workerCount:  runtime.NumCPU(),
		queueSize:    10_000,
		historySize:  1000,
		maxBatchSize: 100,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start validates the classifier and starts the history pipeline. A stopped
// service has released its history store and cannot be started again.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.stopped {
		return ErrStopped
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.classifier == nil {
		return prediction.ErrNoClassifier
	}

	schema, err := features.NewSchema(s.classifier.FeatureNames())
	if err != nil {
		return fmt.Errorf("classifier features: %w", err)
	}
	s.schema = schema
	s.builder = features.NewBuilder(features.WithMissingPolicy(s.policy))
	metrics.UpdateModelFeatureCount(schema.Len())

	if s.history == nil {
		s.history = repository.NewMemoryStore(repository.WithCapacity(s.historySize))
	}
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.history)

	// Writers outlive the request that triggered Start.
	poolCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.poolCancel = cancel
	s.pool.Start(poolCtx)

	s.started = true
	s.logger.Info(ctx, "prediction service started",
		logger.Int("features", schema.Len()),
		logger.String("missingFieldPolicy", string(s.policy)),
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop drains pending history records and releases the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping prediction service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "history writers did not drain", logger.Error(err))
	}
	s.poolCancel()
	if err := s.history.Close(); err != nil {
		s.logger.Warn(ctx, "close history store", logger.Error(err))
	}

	s.started = false
	s.stopped = true
	s.logger.Info(ctx, "prediction service stopped")
}

// Predict scores one customer.
func (s *Service) Predict(ctx context.Context, c model.Customer) (types.Prediction, error) { //nolint:gocritic // hugeParam: Customer is a value record
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return types.Prediction{}, ErrNotStarted
	}
	return s.predict(ctx, c)
}

// PredictBatch scores customers in order and stops at the first failure.
func (s *Service) PredictBatch(ctx context.Context, customers []model.Customer) ([]types.Prediction, error) {
	if len(customers) == 0 || len(customers) > s.maxBatchSize {
		return nil, fmt.Errorf("%w: got %d customers, want 1..%d", ErrBatchSize, len(customers), s.maxBatchSize)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}

	out := make([]types.Prediction, 0, len(customers))
	for i := range customers {
		p, err := s.predict(ctx, customers[i])
		if err != nil {
			return nil, &BatchItemError{Index: i, Err: err}
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) predict(ctx context.Context, c model.Customer) (types.Prediction, error) { //nolint:gocritic // hugeParam
	start := time.Now()

	if err := c.Validate(); err != nil {
		metrics.RecordPredictionError(errorKind(err))
		return types.Prediction{}, err
	}

	v, err := s.builder.Build(s.schema, c.Raw())
	metrics.RecordFeatureBuildLatency(sinceMs(start))
	if err != nil {
		metrics.RecordPredictionError(errorKind(err))
		return types.Prediction{}, err
	}
	s.logger.Debug(ctx, "feature vector built", logger.Any("features", v.Map()))

	inferStart := time.Now()
	res, err := prediction.Predict(ctx, v, s.classifier)
	metrics.RecordInferenceLatency(sinceMs(inferStart))
	if err != nil {
		metrics.RecordPredictionError(errorKind(err))
		s.logger.Error(ctx, "inference failed", logger.Error(err))
		return types.Prediction{}, err
	}
	metrics.RecordPrediction(res.Decision, res.Probability)

	id := uuid.NewString()
	latency := sinceMs(start)
	s.logger.Debug(ctx, "prediction served",
		logger.String("request_id", id),
		logger.Bool("prediction", res.Decision),
		logger.Float64("probability", res.Probability),
	)

	rec := model.PredictionRecord{
		RequestID:   id,
		Customer:    c,
		Decision:    res.Decision,
		Probability: res.Probability,
		LatencyMs:   latency,
		CreatedAt:   time.Now().UTC(),
	}
	if !s.queue.Enqueue(context.WithoutCancel(ctx), rec) {
		s.logger.Warn(ctx, "history queue full, record dropped", logger.String("request_id", id))
	}

	return types.Prediction{Prediction: res.Decision, Probability: res.Probability, RequestID: id}, nil
}

// ModelInfo describes the loaded classifier.
func (s *Service) ModelInfo(_ context.Context) types.ModelInfo {
	if d, ok := s.classifier.(describer); ok {
		return d.Info()
	}
	var names []string
	if s.classifier != nil {
		names = s.classifier.FeatureNames()
	}
	return types.ModelInfo{Version: "unknown", Features: names}
}

// History returns up to limit served predictions, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]types.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}

	recs, err := s.history.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]types.HistoryEntry, len(recs))
	for i := range recs {
		out[i] = types.HistoryEntry{
			RequestID:   recs[i].RequestID,
			Prediction:  recs[i].Decision,
			Probability: recs[i].Probability,
			LatencyMs:   recs[i].LatencyMs,
			CreatedAt:   recs[i].CreatedAt,
			Customer:    recs[i].Customer,
		}
	}
	return out, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":            s.started,
		"workerCount":        s.workerCount,
		"queueSize":          s.queueSize,
		"maxBatchSize":       s.maxBatchSize,
		"missingFieldPolicy": string(s.policy),
	}

	if s.started {
		stats["featureCount"] = s.schema.Len()
		stats["queueLength"] = s.queue.Len(ctx)
		if n, err := s.history.Count(ctx); err == nil {
			stats["historyCount"] = n
		}
	}

	return stats
}

// errorKind labels an error for metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidCustomer):
		return "invalid_customer"
	case errors.Is(err, features.ErrMissingField):
		return "missing_field"
	case errors.Is(err, features.ErrSchemaMismatch):
		return "schema_mismatch"
	case errors.Is(err, prediction.ErrInference):
		return "inference"
	default:
		return "other"
	}
}

func sinceMs(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
