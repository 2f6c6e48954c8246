package loadtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/okian/bankpredict/internal/domain/types"
	"github.com/okian/bankpredict/pkg/logger"
)

// Defaults applied by Run when the config leaves them unset.
const (
	defaultAPIPrefix     = "/api/v1"
	defaultWorkers       = 4
	defaultTimeout       = 30 * time.Second
	directoryPermission  = 0o750
	filePermission       = 0o600
	percentileP95        = 0.95
	percentageMultiplier = 100
)

// ErrNoCustomers is returned when the run has nothing to submit.
var ErrNoCustomers = errors.New("number of customers must be positive")

// Run checks the service, submits generated customers and returns the
// statistics of the run.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if cfg.NumCustomers < 1 {
		return nil, ErrNoCustomers
	}
	applyDefaults(cfg)
	log := logger.Get().Named("loadtest")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting prediction load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("customers", cfg.NumCustomers),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()))

	client := newHTTPClient(cfg.Timeout)
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	if err := client.Get(ctx, base+"/health", nil); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	var info types.ModelInfo
	if err := client.Get(ctx, base+cfg.APIPrefix+"/model-info", &info); err != nil {
		return nil, fmt.Errorf("model info: %w", err)
	}
	stats.ModelVersion = info.Version
	log.Info(ctx, "service is healthy",
		logger.String("modelVersion", info.Version),
		logger.Int("features", len(info.Features)))

	samples, err := generateCustomers(ctx, cfg.Seed, cfg.NumCustomers)
	if err != nil {
		return nil, fmt.Errorf("customer generation failed: %w", err)
	}
	stats.Generated = len(samples)

	results := submit(ctx, client, base+cfg.APIPrefix+"/predict", cfg, samples)
	summarize(stats, results)

	if cfg.OutputFile != "" {
		if err := saveResults(cfg.OutputFile, samples, results); err != nil {
			log.Warn(ctx, "failed to save results", logger.Error(err))
		} else {
			log.Info(ctx, "results saved", logger.String("file", cfg.OutputFile))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

func applyDefaults(cfg *Config) {
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = defaultAPIPrefix
	}
	if cfg.Workers < 1 {
		cfg.Workers = defaultWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
}

// submit posts every sample using cfg.Workers goroutines. Results keep the
// order of samples.
func submit(ctx context.Context, client *HTTPClient, url string, cfg *Config, samples []Sample) []Result {
	results := make([]Result, len(samples))
	jobs := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = submitOne(ctx, client, url, samples[i])
				if cfg.Verbose {
					logger.Get().Debug(ctx, "prediction submitted",
						logger.String("sampleID", results[i].SampleID),
						logger.Int("status", results[i].Status),
						logger.Float64("probability", results[i].Probability))
				}
			}
		}()
	}

	func() {
		defer close(jobs)
		for i := range samples {
			select {
			case <-ctx.Done():
				for j := i; j < len(samples); j++ {
					results[j] = Result{SampleID: samples[j].ID, Error: ctx.Err().Error()}
				}
				return
			case jobs <- i:
			}
		}
	}()

	wg.Wait()
	return results
}

func submitOne(ctx context.Context, client *HTTPClient, url string, s Sample) Result {
	res := Result{SampleID: s.ID}
	var body types.Prediction

	start := time.Now()
	resp, err := client.Post(ctx, url, s.Customer, &body)
	res.Latency = time.Since(start)
	if resp != nil {
		res.Status = resp.StatusCode
		res.RequestID = resp.Header.Get(requestIDHeader)
	}
	switch {
	case err != nil:
		res.Error = err.Error()
	case res.Status != http.StatusOK:
		res.Error = fmt.Sprintf("unexpected status %d", res.Status)
	default:
		res.Prediction = body.Prediction
		res.Probability = body.Probability
	}
	return res
}

func summarize(stats *Stats, results []Result) {
	var probSum float64
	var latSum time.Duration
	latencies := make([]time.Duration, 0, len(results))

	for _, r := range results {
		if r.Status != 0 || r.Error == "" {
			stats.Submitted++
		}
		if r.Error != "" {
			stats.Failed++
			continue
		}
		stats.Successful++
		if r.Prediction {
			stats.Positive++
		}
		probSum += r.Probability
		latSum += r.Latency
		latencies = append(latencies, r.Latency)
	}
	if stats.Successful == 0 {
		return
	}

	slices.Sort(latencies)
	stats.MeanProbability = probSum / float64(stats.Successful)
	stats.MeanLatency = latSum / time.Duration(stats.Successful)
	stats.MaxLatency = latencies[len(latencies)-1]
	stats.P95Latency = latencies[int(float64(len(latencies)-1)*percentileP95)]
}

// saveResults writes samples and their results as one JSON document.
func saveResults(filename string, samples []Sample, results []Result) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(struct {
		Samples []Sample `json:"samples"`
		Results []Result `json:"results"`
	}{samples, results}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	return os.WriteFile(filename, data, filePermission)
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, perSecond float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Successful) / float64(stats.Submitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.String("modelVersion", stats.ModelVersion),
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed),
		logger.Int("positive", stats.Positive),
		logger.Float64("meanProbability", stats.MeanProbability),
		logger.String("meanLatency", stats.MeanLatency.String()),
		logger.String("p95Latency", stats.P95Latency.String()),
		logger.String("maxLatency", stats.MaxLatency.String()),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", perSecond))
}
