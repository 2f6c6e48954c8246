package prediction

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInference    = errors.New("inference failed")
	ErrNoClassifier = errors.New("no classifier configured")
)

// InferenceError wraps a failure raised by the classifier.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return ErrInference.Error() + ": " + e.Err.Error()
}

// Unwrap exposes the classifier's error.
func (e *InferenceError) Unwrap() error { return e.Err }

// Is matches ErrInference.
func (e *InferenceError) Is(target error) bool { return target == ErrInference }
