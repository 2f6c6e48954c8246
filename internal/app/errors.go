package service

import (
	"errors"
	"fmt"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted = errors.New("service not started")
	ErrBatchSize  = errors.New("invalid batch size")
	ErrStopped    = errors.New("service stopped")
)

// BatchItemError reports which customer of a batch failed.
type BatchItemError struct {
	Index int
	Err   error
}

func (e *BatchItemError) Error() string {
	return fmt.Sprintf("customer %d: %v", e.Index, e.Err)
}

func (e *BatchItemError) Unwrap() error { return e.Err }
