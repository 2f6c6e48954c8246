package classifier

import (
	"fmt"
	"math"
)

// logistic is a binary logistic regression: sigmoid(bias + w·x).
type logistic struct {
	weights []float64
	bias    float64
}

func newLogistic(weights []float64, bias float64, nFeatures int) (*logistic, error) {
	if len(weights) != nFeatures {
		return nil, fmt.Errorf("logistic regression has %d weights for %d features", len(weights), nFeatures)
	}
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("weight %d is not finite", i)
		}
	}
	w := make([]float64, len(weights))
	copy(w, weights)
	return &logistic{weights: w, bias: bias}, nil
}

func (l *logistic) probability(x []float64) float64 {
	z := l.bias
	for j, v := range x {
		z += l.weights[j] * v
	}
	return sigmoid(z)
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
