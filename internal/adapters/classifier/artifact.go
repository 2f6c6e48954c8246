// Package classifier loads a pre-trained classifier artifact from disk and
// serves probabilities for feature vectors.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/okian/bankpredict/internal/domain/features"
	"github.com/okian/bankpredict/internal/domain/types"
)

// Supported model types.
const (
	TypeLogisticRegression = "logistic_regression"
	TypeDecisionTree       = "decision_tree"
	TypeRandomForest       = "random_forest"
)

// Sentinel errors.
var (
	ErrLoadArtifact    = errors.New("load classifier artifact failed")
	ErrInvalidArtifact = errors.New("invalid classifier artifact")
	ErrVectorMismatch  = errors.New("vector does not match classifier features")
)

// Artifact is the on-disk JSON layout.
type Artifact struct {
	Model            ModelSpec      `json:"model"`
	SelectedFeatures []string       `json:"selected_features"`
	Metadata         map[string]any `json:"model_metadata"`
}

// ModelSpec holds the parameters of one model type.
type ModelSpec struct {
	Type    string    `json:"type"`
	Weights []float64 `json:"weights,omitempty"`
	Bias    float64   `json:"bias,omitempty"`
	Tree    []Node    `json:"tree,omitempty"`
	Trees   [][]Node  `json:"trees,omitempty"`
}

// scorer computes P(positive) for values already in feature order.
type scorer interface {
	probability(values []float64) float64
}

// Model is a loaded classifier. It is immutable and safe for concurrent use.
type Model struct {
	kind   string
	schema features.Schema
	scorer scorer
	info   types.ModelInfo
}

// Load reads and parses the artifact at path.
func Load(_ context.Context, path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadArtifact, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse builds a Model from artifact JSON.
func Parse(data []byte) (*Model, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}
	return New(a)
}

// New validates a decoded artifact and builds a Model.
func New(a Artifact) (*Model, error) {
	schema, err := features.NewSchema(a.SelectedFeatures)
	if err != nil {
		return nil, err
	}
	n := schema.Len()

	var s scorer
	kind := strings.ToLower(strings.TrimSpace(a.Model.Type))
	switch kind {
	case TypeLogisticRegression:
		s, err = newLogistic(a.Model.Weights, a.Model.Bias, n)
	case TypeDecisionTree:
		s, err = newForest([][]Node{a.Model.Tree}, n)
	case TypeRandomForest:
		s, err = newForest(a.Model.Trees, n)
	default:
		err = fmt.Errorf("unsupported model type %q", a.Model.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}

	return &Model{
		kind:   kind,
		schema: schema,
		scorer: s,
		info:   modelInfo(schema.Names(), a.Metadata),
	}, nil
}

// Kind returns the model type, e.g. "random_forest".
func (m *Model) Kind() string { return m.kind }

// Schema returns the ordered feature schema.
func (m *Model) Schema() features.Schema { return m.schema }

// FeatureNames returns the ordered feature names.
func (m *Model) FeatureNames() []string { return m.schema.Names() }

// Info returns version, features and evaluation metrics.
func (m *Model) Info() types.ModelInfo {
	info := m.info
	info.Features = m.schema.Names()
	return info
}

// ProbabilityOfPositiveClass scores v. v must carry the model's features in order.
func (m *Model) ProbabilityOfPositiveClass(ctx context.Context, v features.Vector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if v.Len() != m.schema.Len() {
		return 0, fmt.Errorf("%w: got %d values, want %d", ErrVectorMismatch, v.Len(), m.schema.Len())
	}
	names := v.Names()
	for i, want := range m.schema.Names() {
		if names[i] != want {
			return 0, fmt.Errorf("%w: slot %d is %q, want %q", ErrVectorMismatch, i, names[i], want)
		}
	}
	return m.scorer.probability(v.Values()), nil
}
