// Package prediction turns a feature vector into a typed decision using an
// injected classifier.
package prediction

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/bankpredict/internal/domain/features"
)

// DecisionThreshold is the probability at or above which a prediction is positive.
const DecisionThreshold = 0.5

// Classifier is a pre-trained binary classifier.
type Classifier interface {
	// FeatureNames returns the ordered schema the classifier was trained on.
	FeatureNames() []string
	// ProbabilityOfPositiveClass scores v, honoring ctx for cancellation.
	ProbabilityOfPositiveClass(ctx context.Context, v features.Vector) (float64, error)
}

// Result is the outcome of one prediction.
type Result struct {
	Decision    bool
	Probability float64
}

// Predict scores v with c. Classifier failures and probabilities outside
// [0,1] are returned as *InferenceError.
func Predict(ctx context.Context, v features.Vector, c Classifier) (Result, error) {
	if c == nil {
		return Result{}, &InferenceError{Err: ErrNoClassifier}
	}
	p, err := c.ProbabilityOfPositiveClass(ctx, v)
	if err != nil {
		return Result{}, &InferenceError{Err: err}
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return Result{}, &InferenceError{Err: fmt.Errorf("probability %v outside [0,1]", p)}
	}
	return Result{Decision: p >= DecisionThreshold, Probability: p}, nil
}
