package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/abdulghaffar349/leaderboard-service/internal/loadtest"
)

// Default configuration constants.
const (
	defaultGames          = 20
	defaultUsersPerGame   = 150
	defaultUpdatesPerUser = 3
	defaultMaxScore       = 100_000
	defaultTopN           = 100
	defaultWorkers        = 2 // multiplier for runtime.NumCPU()
	defaultTimeout        = 30 * time.Second
	defaultRunTimeout     = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:3000", "Base URL of the service")
		games      = flag.Int("games", defaultGames, "Number of games")
		users      = flag.Int("users", defaultUsersPerGame, "Users per game")
		updates    = flag.Int("updates", defaultUpdatesPerUser, "Score updates per user")
		maxScore   = flag.Int64("max-score", defaultMaxScore, "Upper bound of generated scores")
		topN       = flag.Int("top", defaultTopN, "Leaderboard limit to verify")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Write generated events as JSON to this file")
		logFile    = flag.String("log", "", "Also log to this file")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadtest.ShowHelp()
		return
	}

	if err := loadtest.SetupLogging(*logFile, *verbose); err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &loadtest.Config{
		BaseURL:        *baseURL,
		Games:          max(*games, 1),
		UsersPerGame:   max(*users, 1),
		UpdatesPerUser: max(*updates, 1),
		MaxScore:       *maxScore,
		TopN:           max(*topN, 1),
		Workers:        max(*workers, 1),
		Timeout:        *timeout,
		OutputFile:     *outputFile,
		Verbose:        *verbose,
	}

	if _, err := loadtest.Run(ctx, cfg); err != nil {
		_, _ = os.Stderr.WriteString("Load run failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1) //nolint:gocritic // cancel called explicitly above
	}
}
