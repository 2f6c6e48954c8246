package model

import "time"

// PredictionRecord is one served prediction, kept for the history endpoint.
type PredictionRecord struct {
	RequestID   string
	Customer    Customer
	Decision    bool
	Probability float64
	LatencyMs   float64
	CreatedAt   time.Time
}
