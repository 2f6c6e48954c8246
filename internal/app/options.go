package service

import (
	"github.com/okian/bankpredict/internal/adapters/repository"
	"github.com/okian/bankpredict/internal/domain/features"
	"github.com/okian/bankpredict/internal/domain/prediction"
	"github.com/okian/bankpredict/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithClassifier sets the classifier used for every prediction.
func WithClassifier(c prediction.Classifier) Option {
	return func(s *Service) {
		s.classifier = c
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMissingFieldPolicy sets how absent categorical fields are handled.
func WithMissingFieldPolicy(p features.MissingPolicy) Option {
	return func(s *Service) {
		if p != "" {
			s.policy = p
		}
	}
}

// WithHistoryStore sets where served predictions are kept. The service
// closes the store on Stop.
func WithHistoryStore(store repository.Store) Option {
	return func(s *Service) {
		s.history = store
	}
}

// WithHistorySize bounds the default in-memory history.
func WithHistorySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.historySize = size
		}
	}
}

// WithQueueSize sets the maximum size of the history queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of history writers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithMaxBatchSize caps PredictBatch.
func WithMaxBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.maxBatchSize = size
		}
	}
}
