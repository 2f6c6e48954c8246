// Package loadtest drives the prediction API with generated customers and
// summarises how it behaved.
package loadtest

import (
	"time"

	"github.com/okian/bankpredict/internal/domain/model"
)

// Config holds configuration for a load test run.
type Config struct {
	BaseURL      string        // Base URL of the service
	APIPrefix    string        // Prefix of the versioned routes
	NumCustomers int           // Number of customers to generate
	Workers      int           // Number of concurrent workers
	Seed         uint64        // Seed for the customer generator
	Timeout      time.Duration // HTTP request timeout
	OutputFile   string        // Optional JSON file for samples and results
	Verbose      bool
}

// Sample is one generated customer with a client-side id.
type Sample struct {
	ID       string         `json:"id"`
	Customer model.Customer `json:"customer"`
}

// Result is the outcome of submitting one sample.
type Result struct {
	SampleID    string        `json:"sample_id"`
	RequestID   string        `json:"request_id,omitempty"`
	Status      int           `json:"status"`
	Prediction  bool          `json:"prediction"`
	Probability float64       `json:"probability"`
	Latency     time.Duration `json:"latency_ns"`
	Error       string        `json:"error,omitempty"`
}

// Stats holds run statistics.
type Stats struct {
	ModelVersion    string
	Generated       int
	Submitted       int
	Successful      int
	Failed          int
	Positive        int
	MeanProbability float64
	MeanLatency     time.Duration
	P95Latency      time.Duration
	MaxLatency      time.Duration
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
