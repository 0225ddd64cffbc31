package simulate

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/okian/seccard/pkg/logger"
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
)

// Run executes a complete simulated range day: generate runs, submit
// them concurrently, then read back the leaderboard and aggregate.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting range day simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("sessions", config.NumSessions),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate sessions
	sessions := generateSessions(ctx, config, stats)

	// Step 3: Submit sessions concurrently
	if err := submitSessions(ctx, config, sessions, stats); err != nil {
		return fmt.Errorf("session submission failed: %w", err)
	}

	// Step 4: Read back the leaderboard
	leaderboard, err := fetchLeaderboard(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}
	displayLeaderboard(config, leaderboard)

	// Step 5: Read back the aggregate
	agg, err := fetchAggregate(ctx, config)
	if err != nil {
		return fmt.Errorf("stats retrieval failed: %w", err)
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats, agg)

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("service unreachable at %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// displayLeaderboard prints the top runs of the day.
func displayLeaderboard(config *Config, records []Record) {
	log.Printf("top %d sessions:", config.TopN)
	for i, r := range records {
		log.Printf("  %2d. score=%3d shots=%d label=%q target=%q",
			i+1, r.Score, r.Shots, r.Label, r.TargetKey)
	}
}

// displayFinalStats prints the simulation counters.
func displayFinalStats(stats *Stats, agg Aggregate) {
	log.Printf("simulation finished in %s", stats.Duration)
	log.Printf("  generated:  %d", stats.SessionsGenerated)
	log.Printf("  submitted:  %d", stats.SessionsSubmitted)
	log.Printf("  successful: %d", stats.SessionsSuccessful)
	log.Printf("  duplicate:  %d", stats.SessionsDuplicate)
	log.Printf("  failed:     %d", stats.SessionsFailed)
	if stats.SessionsSubmitted > 0 {
		rate := float64(stats.SessionsSuccessful) / float64(stats.SessionsSubmitted) * PercentageMultiplier
		log.Printf("  success rate: %.1f%%", rate)
	}
	log.Printf("history: count=%d best=%d avg=%.1f", agg.Count, agg.Best, agg.Avg)
}
