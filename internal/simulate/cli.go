package simulate

import (
	"os"

	"github.com/okian/seccard/pkg/logger"
)

// SetupLogging initializes structured logging for the tool.
func SetupLogging() error {
	return logger.Init()
}

// ShowHelp prints usage information for the simulation tool.
func ShowHelp() {
	os.Stdout.WriteString(`SEC Card Range Day Simulator
============================

Generates synthetic scoring sessions and submits them concurrently to a
running card service, then prints the resulting leaderboard and stats.

Usage:
  go run cmd/simulate/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -sessions int
        Number of sessions to generate and submit (default 200)
  -top int
        Number of leaderboard entries to fetch (default 10)
  -workers int
        Number of concurrent submitters (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Simulate a quiet range day
  go run cmd/simulate/main.go

  # Hammer a local service
  go run cmd/simulate/main.go -sessions 5000 -workers 16

  # Point at another host
  go run cmd/simulate/main.go -url http://10.0.0.5:9080 -verbose
`)
}
