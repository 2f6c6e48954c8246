// Package repository stores served predictions for the history endpoint.
package repository

import (
	"context"

	"github.com/okian/bankpredict/internal/domain/model"
)

// Backend names accepted by the history_backend setting.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Store provides read/write access to the prediction history.
type Store interface {
	// Save appends a record.
	Save(ctx context.Context, rec model.PredictionRecord) error

	// Recent returns up to n records, newest first.
	// Returns ErrInvalidLimit if n < 1.
	Recent(ctx context.Context, n int) ([]model.PredictionRecord, error)

	// Count returns the number of records currently retained.
	Count(ctx context.Context) (int, error)

	// Close releases underlying resources. Further calls fail with ErrClosed.
	Close() error
}
