package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/bankpredict/internal/adapters/http/api"
	service "github.com/okian/bankpredict/internal/app"
	"github.com/okian/bankpredict/internal/domain/features"
	"github.com/okian/bankpredict/internal/domain/model"
	"github.com/okian/bankpredict/internal/domain/prediction"
	"github.com/okian/bankpredict/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDeps struct {
	predictErr error
	prob       float64
	got        []model.Customer
	history    []types.HistoryEntry
	historyN   int
}

func (m *mockDeps) Predict(_ context.Context, c model.Customer) (types.Prediction, error) { //nolint:gocritic // hugeParam
	if m.predictErr != nil {
		return types.Prediction{}, m.predictErr
	}
	m.got = append(m.got, c)
	return types.Prediction{Prediction: m.prob >= 0.5, Probability: m.prob, RequestID: fmt.Sprintf("id-%d", len(m.got))}, nil
}

func (m *mockDeps) PredictBatch(ctx context.Context, cs []model.Customer) ([]types.Prediction, error) {
	if len(cs) == 0 || len(cs) > 2 {
		return nil, service.ErrBatchSize
	}
	out := make([]types.Prediction, 0, len(cs))
	for i := range cs {
		p, err := m.Predict(ctx, cs[i])
		if err != nil {
			return nil, &service.BatchItemError{Index: i, Err: err}
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *mockDeps) ModelInfo(context.Context) types.ModelInfo {
	return types.ModelInfo{Version: "1.0.0", Features: []string{"age"}, Accuracy: 0.9, ROCAUC: 0.92}
}

func (m *mockDeps) History(_ context.Context, limit int) ([]types.HistoryEntry, error) {
	m.historyN = limit
	return m.history, nil
}

type mockStats struct{}

func (mockStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true, "queueLength": 0}
}

const customerJSON = `{"age":41,"job":"management","marital":"married","education":"tertiary",
"default":"no","balance":2343,"housing":"yes","loan":"no","contact":"unknown","day":5,
"month":"may","duration":1042,"campaign":1,"pdays":-1,"previous":0,"poutcome":"unknown"}`

func newHandler(deps *mockDeps, origins ...string) http.Handler {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStats{}, api.WithAPIPrefix("/api/v1"), api.WithMaxHistoryLimit(50)).
		Register(context.Background(), mux)
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return api.CORSMiddleware(origins, mux)
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var out map[string]string
	So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
	return out
}

func TestPredictEndpoint(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := &mockDeps{prob: 0.73}
		h := newHandler(deps)

		Convey("When posting a complete customer", func() {
			w := do(h, http.MethodPost, "/api/v1/predict", customerJSON)

			Convey("Then it returns the prediction and request id", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "id-1")
				var body map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["prediction"], ShouldEqual, true)
				So(body["probability"], ShouldEqual, 0.73)
				So(body, ShouldHaveLength, 2)
				So(deps.got[0].Age, ShouldEqual, 41)
			})
		})

		Convey("When a field is missing", func() {
			w := do(h, http.MethodPost, "/api/v1/predict", strings.Replace(customerJSON, `"age":41,`, "", 1))

			Convey("Then it is a bad request naming the field", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				e := decodeError(w)
				So(e["code"], ShouldEqual, "bad_request")
				So(e["message"], ShouldContainSubstring, "age")
			})
		})

		Convey("When the body is not JSON", func() {
			w := do(h, http.MethodPost, "/api/v1/predict", "{")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the method is wrong", func() {
			w := do(h, http.MethodGet, "/api/v1/predict", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		failures := []struct {
			name   string
			err    error
			status int
			code   string
		}{
			{"missing field", &features.MissingFieldError{Field: "poutcome", Slot: "poutcome_success"}, http.StatusBadRequest, "missing_field"},
			{"schema mismatch", &features.SchemaMismatchError{Reason: "empty schema"}, http.StatusInternalServerError, "schema_mismatch"},
			{"inference", &prediction.InferenceError{Err: errors.New("model exploded")}, http.StatusInternalServerError, "inference_error"},
			{"not started", service.ErrNotStarted, http.StatusServiceUnavailable, "unavailable"},
		}
		for _, f := range failures {
			Convey("When prediction fails with "+f.name, func() {
				deps.predictErr = f.err
				w := do(h, http.MethodPost, "/api/v1/predict", customerJSON)

				So(w.Code, ShouldEqual, f.status)
				So(decodeError(w)["code"], ShouldEqual, f.code)
			})
		}
	})
}

func TestBatchEndpoint(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := &mockDeps{prob: 0.2}
		h := newHandler(deps)

		Convey("When posting two customers", func() {
			w := do(h, http.MethodPost, "/api/v1/predict/batch", `{"customers":[`+customerJSON+`,`+customerJSON+`]}`)

			Convey("Then both predictions are returned in order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body struct {
					Predictions []types.Prediction `json:"predictions"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(len(body.Predictions), ShouldEqual, 2)
				So(body.Predictions[1].Prediction, ShouldBeFalse)
			})
		})

		Convey("When the batch is empty", func() {
			w := do(h, http.MethodPost, "/api/v1/predict/batch", `{"customers":[]}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When one customer is incomplete", func() {
			w := do(h, http.MethodPost, "/api/v1/predict/batch", `{"customers":[`+customerJSON+`,{"age":3}]}`)

			Convey("Then the error names the index", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["message"], ShouldContainSubstring, "customer 1")
			})
		})
	})
}

func TestReadEndpoints(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := &mockDeps{history: []types.HistoryEntry{{RequestID: "r1", Probability: 0.6, Prediction: true, CreatedAt: time.Unix(0, 0).UTC()}}}
		h := newHandler(deps)

		Convey("When checking health", func() {
			w := do(h, http.MethodGet, "/health", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, `{"status":"healthy"}`)
		})

		Convey("When reading model info", func() {
			w := do(h, http.MethodGet, "/api/v1/model-info", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var info types.ModelInfo
			So(json.Unmarshal(w.Body.Bytes(), &info), ShouldBeNil)
			So(info.Version, ShouldEqual, "1.0.0")
			So(info.ROCAUC, ShouldEqual, 0.92)
		})

		Convey("When reading stats", func() {
			w := do(h, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("When scraping metrics", func() {
			_ = do(h, http.MethodGet, "/health", "")
			w := do(h, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "http_requests_total")
		})

		Convey("When listing history without a limit", func() {
			w := do(h, http.MethodGet, "/api/v1/predictions", "")

			Convey("Then the default limit is used", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.historyN, ShouldEqual, 10)
				So(w.Body.String(), ShouldContainSubstring, `"request_id":"r1"`)
			})
		})

		Convey("When listing history with limits", func() {
			So(do(h, http.MethodGet, "/api/v1/predictions?limit=50", "").Code, ShouldEqual, http.StatusOK)
			So(deps.historyN, ShouldEqual, 50)
			So(do(h, http.MethodGet, "/api/v1/predictions?limit=51", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodGet, "/api/v1/predictions?limit=0", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodGet, "/api/v1/predictions?limit=x", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the history is empty", func() {
			deps.history = nil
			w := do(h, http.MethodGet, "/api/v1/predictions", "")
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, `{"predictions":[]}`)
		})
	})
}

func TestCORS(t *testing.T) {
	Convey("Given a server allowing one origin", t, func() {
		h := newHandler(&mockDeps{prob: 0.9}, "http://app.example")

		Convey("When a preflight arrives from that origin", func() {
			req := httptest.NewRequest(http.MethodOptions, "/api/v1/predict", http.NoBody)
			req.Header.Set("Origin", "http://app.example")
			req.Header.Set("Access-Control-Request-Method", "POST")
			req.Header.Set("Access-Control-Request-Headers", "content-type")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it is answered without reaching the handler", func() {
				So(w.Code, ShouldEqual, http.StatusNoContent)
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "http://app.example")
				So(w.Header().Get("Access-Control-Allow-Credentials"), ShouldEqual, "true")
				So(strings.EqualFold(w.Header().Get("Access-Control-Allow-Headers"), "content-type"), ShouldBeTrue)
				So(w.Header().Get("Access-Control-Max-Age"), ShouldEqual, "600")
				So(w.Body.Len(), ShouldEqual, 0)
			})
		})

		Convey("When a request comes from another origin", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", strings.NewReader(customerJSON))
			req.Header.Set("Origin", "http://evil.example")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then no CORS headers are added but the response varies by origin", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
				So(w.Header().Values("Vary"), ShouldContain, "Origin")
			})
		})
	})

	Convey("Given a server allowing any origin", t, func() {
		h := newHandler(&mockDeps{prob: 0.9})

		Convey("When a request carries an origin", func() {
			req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
			req.Header.Set("Origin", "http://anything.example")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then the origin is echoed with the request id exposed", func() {
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "http://anything.example")
				So(w.Header().Get("Access-Control-Allow-Credentials"), ShouldEqual, "true")
				So(strings.EqualFold(w.Header().Get("Access-Control-Expose-Headers"), api.RequestIDHeader), ShouldBeTrue)
				So(w.Header().Values("Vary"), ShouldContain, "Origin")
			})
		})

		Convey("When a request carries no origin", func() {
			w := do(h, http.MethodGet, "/health", "")

			Convey("Then the response still declares it varies by origin", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
				So(w.Header().Values("Vary"), ShouldContain, "Origin")
			})
		})
	})
}

func TestErrorKinds(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("api.test", api.ErrBadRequest, cause)

		So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "bad request: boom")
		So(api.WrapKind("op", api.ErrBadRequest, nil), ShouldBeNil)

		var apiErr *api.Error
		So(errors.As(err, &apiErr), ShouldBeTrue)
		So(apiErr.Op, ShouldEqual, "api.test")
	})
}
