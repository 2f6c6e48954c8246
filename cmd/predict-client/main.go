package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/bankpredict/internal/loadtest"
	"github.com/okian/bankpredict/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumCustomers = 1000
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultSeed         = 42
	defaultTimeout      = 30 * time.Second
	defaultTestTimeout  = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:8000", "Base URL of the service")
		prefix     = flag.String("prefix", "/api/v1", "API prefix of the versioned routes")
		customers  = flag.Int("customers", defaultNumCustomers, "Number of customers to generate and submit")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		seed       = flag.Uint64("seed", defaultSeed, "Seed for the customer generator")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Optional JSON file for customers and results")
		verbose    = flag.Bool("verbose", false, "Log every prediction")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadtest.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	cfg := &loadtest.Config{
		BaseURL:      *baseURL,
		APIPrefix:    *prefix,
		NumCustomers: *customers,
		Workers:      *workers,
		Seed:         *seed,
		Timeout:      *timeout,
		OutputFile:   *outputFile,
		Verbose:      *verbose,
	}

	stats, err := loadtest.Run(ctx, cfg)
	if err != nil {
		_, _ = os.Stderr.WriteString("Load test failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
	if stats.Failed > 0 {
		cancel()
		os.Exit(2)
	}
}
