package loadtest

import "os"

// ShowHelp prints usage information for the prediction client.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Bank Marketing Prediction Client
================================

Submits generated customers to the prediction API concurrently and logs a summary.

Usage:
  go run ./cmd/predict-client [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8000")
  -prefix string
        API prefix of the versioned routes (default "/api/v1")
  -customers int
        Number of customers to generate and submit (default 1000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -seed uint
        Seed for the customer generator (default 42)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Optional JSON file for the generated customers and results
  -verbose
        Log every prediction
  -help
        Show this help message

Examples:
  go run ./cmd/predict-client -customers 5000 -workers 16
  go run ./cmd/predict-client -url http://localhost:9000 -output results.json
`)
}
