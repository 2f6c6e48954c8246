package api

import (
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/bankpredict/internal/app"
	"github.com/okian/bankpredict/internal/domain/features"
	"github.com/okian/bankpredict/internal/domain/model"
	"github.com/okian/bankpredict/internal/domain/prediction"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrUnavailable = errors.New("service unavailable")
	ErrInternal    = errors.New("internal error")
)

// Error carries the failing operation and a kind that callers match with errors.Is.
type Error struct {
	Op   string
	Kind error
	Err  error
}

// WrapKind attaches op and kind to err.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// classify maps a prediction failure onto an HTTP status and error code.
func classify(err error) (int, string, error) {
	switch {
	case errors.Is(err, model.ErrInvalidCustomer),
		errors.Is(err, service.ErrBatchSize):
		return http.StatusBadRequest, "bad_request", ErrBadRequest
	case errors.Is(err, features.ErrMissingField):
		return http.StatusBadRequest, "missing_field", ErrBadRequest
	case errors.Is(err, features.ErrSchemaMismatch):
		return http.StatusInternalServerError, "schema_mismatch", ErrInternal
	case errors.Is(err, prediction.ErrInference):
		return http.StatusInternalServerError, "inference_error", ErrInternal
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable", ErrUnavailable
	default:
		return http.StatusInternalServerError, "internal_error", ErrInternal
	}
}

// writeFailure classifies err and writes the matching error response.
func writeFailure(w http.ResponseWriter, op string, err error) {
	status, code, kind := classify(err)
	writeError(w, status, code, WrapKind(op, kind, err))
}
