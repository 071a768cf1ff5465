package loadtest

import (
	"fmt"
	"os"

	"github.com/abdulghaffar349/leaderboard-service/pkg/logger"
)

const logMaxSizeMB = 50

// SetupLogging initialises the logger, optionally teeing into logFile.
func SetupLogging(logFile string, verbose bool) error {
	var opts []logger.Option
	if logFile != "" {
		opts = append(opts, logger.WithFile(logFile, logMaxSizeMB))
	}
	if err := logger.Init(opts...); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the load tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Leaderboard Load Tool
=====================

Submits score updates for many games and users concurrently, then reads each
game's leaderboard back and checks counts, ordering and final scores.

Usage:
  go run ./cmd/loadtest [options]

Options:
  -url string        Base URL of the service (default "http://localhost:3000")
  -games int         Number of games (default 20)
  -users int         Users per game (default 150)
  -updates int       Score updates per user, last one wins (default 3)
  -max-score int     Upper bound of generated scores (default 100000)
  -top int           Leaderboard limit to verify (default 100)
  -workers int       Concurrent submitters (default CPU cores * 2)
  -timeout duration  HTTP request timeout (default 30s)
  -output string     Write generated events as JSON to this file
  -log string        Also log to this file
  -verbose           Enable verbose logging
  -help              Show this help message
`)
}
