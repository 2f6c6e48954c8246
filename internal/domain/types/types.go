// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/okian/bankpredict/internal/domain/model"
)

// Prediction is the response body of POST /predict.
type Prediction struct {
	Prediction  bool    `json:"prediction"`
	Probability float64 `json:"probability"`

	// RequestID is sent as the X-Request-ID header, not in the body.
	RequestID string `json:"-"`
}

// ModelInfo describes the loaded classifier.
type ModelInfo struct {
	Version   string   `json:"version"`
	Features  []string `json:"features"`
	Accuracy  float64  `json:"accuracy"`
	Precision float64  `json:"precision"`
	Recall    float64  `json:"recall"`
	F1Score   float64  `json:"f1_score"`
	ROCAUC    float64  `json:"roc_auc"`
}

// HistoryEntry is one row of GET /predictions.
type HistoryEntry struct {
	RequestID   string         `json:"request_id"`
	Prediction  bool           `json:"prediction"`
	Probability float64        `json:"probability"`
	LatencyMs   float64        `json:"latency_ms"`
	CreatedAt   time.Time      `json:"created_at"`
	Customer    model.Customer `json:"customer"`
}
