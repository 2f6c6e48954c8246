package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/bankpredict/internal/adapters/classifier"
	"github.com/okian/bankpredict/internal/adapters/http/api"
	"github.com/okian/bankpredict/internal/adapters/http/swagger"
	"github.com/okian/bankpredict/internal/adapters/repository"
	app "github.com/okian/bankpredict/internal/app"
	"github.com/okian/bankpredict/internal/config"
	"github.com/okian/bankpredict/internal/domain/features"
	"github.com/okian/bankpredict/pkg/logger"
	"github.com/okian/bankpredict/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "service exited", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

// run loads configuration and the classifier, then serves until ctx is cancelled.
func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithFile(cfg.LogFile)); err != nil {
		return err
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Configure(
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithRefreshInterval(cfg.MetricsRefreshInterval),
	)

	// A missing or malformed artifact is fatal; there is no lazy reload.
	model, err := classifier.Load(ctx, cfg.ModelPath)
	if err != nil {
		return err
	}
	log.Info(ctx, "classifier loaded",
		logger.String("path", cfg.ModelPath),
		logger.String("type", model.Kind()),
		logger.Int("features", model.Schema().Len()),
		logger.String("version", model.Info().Version),
	)

	svc, err := newService(ctx, cfg, model, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("app", cfg.AppName))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newService builds the prediction service and its history store from cfg.
func newService(ctx context.Context, cfg *config.Config, model *classifier.Model, log logger.Logger) (*app.Service, error) {
	policy, ok := features.ParseMissingPolicy(cfg.MissingFieldPolicy)
	if !ok {
		return nil, fmt.Errorf("%w: missing_field_policy %q", config.ErrInvalidConfig, cfg.MissingFieldPolicy)
	}
	store, err := openHistory(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return app.New(
		app.WithClassifier(model),
		app.WithLogger(log.Named("service")),
		app.WithMissingFieldPolicy(policy),
		app.WithHistoryStore(store),
		app.WithQueueSize(cfg.QueueSize),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithMaxBatchSize(cfg.MaxBatchSize),
	), nil
}

// openHistory returns the history store selected by history_backend.
func openHistory(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.HistoryBackend {
	case repository.BackendSQLite:
		if dir := filepath.Dir(cfg.HistoryDBPath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("%w: %w", repository.ErrOpenStore, err)
			}
		}
		return repository.OpenSQLite(ctx, cfg.HistoryDBPath, repository.WithMaxRecords(cfg.HistorySize))
	default:
		return repository.NewMemoryStore(repository.WithCapacity(cfg.HistorySize)), nil
	}
}

// newHandler registers every route on a fresh mux and wraps it with CORS.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux, cfg.APIPrefix)
	api.NewServer(svc, svc,
		api.WithAPIPrefix(cfg.APIPrefix),
		api.WithMaxHistoryLimit(cfg.MaxHistoryLimit),
	).Register(ctx, mux)
	return api.CORSMiddleware(cfg.AllowedOrigins, mux)
}

// startSystemMetricsUpdater records memory and goroutine gauges every
// metrics refresh interval.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
