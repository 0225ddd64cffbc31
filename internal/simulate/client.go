package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(url string) (*http.Response, error) {
	return c.client.Get(url)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitSessions submits runs concurrently using a worker pool.
func submitSessions(ctx context.Context, config *Config, sessions []Session, stats *Stats) error {
	log.Printf("submitting %d sessions with %d workers...", len(sessions), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/sessions"

	var (
		successful int64
		duplicate  int64
		failed     int64
		submitted  int64
	)

	sessionChan := make(chan Session, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for s := range sessionChan {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddInt64(&submitted, 1)

				resp, err := client.Post(url, s)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Printf("submit failed: %v", err)
					}
					continue
				}

				body, err := readResponseBody(resp)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}

				switch resp.StatusCode {
				case http.StatusCreated:
					atomic.AddInt64(&successful, 1)
					if config.Verbose {
						var sr ScoreResponse
						if json.Unmarshal(body, &sr) == nil {
							log.Printf("scored %s: %s", s.SessionID, sr.Label)
						}
					}
				case http.StatusOK:
					atomic.AddInt64(&duplicate, 1)
				default:
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Printf("submit rejected (%d): %s", resp.StatusCode, string(body))
					}
				}
			}
		}()
	}

	for _, s := range sessions {
		select {
		case <-ctx.Done():
			close(sessionChan)
			return ctx.Err()
		case sessionChan <- s:
		}
	}
	close(sessionChan)
	wg.Wait()

	stats.SessionsSubmitted = int(submitted)
	stats.SessionsSuccessful = int(successful)
	stats.SessionsDuplicate = int(duplicate)
	stats.SessionsFailed = int(failed)
	return nil
}

// fetchLeaderboard retrieves the top N history records.
func fetchLeaderboard(_ context.Context, config *Config, stats *Stats) ([]Record, error) {
	client := newHTTPClient(config.Timeout)
	url := fmt.Sprintf("%s/leaderboard?limit=%d", config.BaseURL, config.TopN)

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("leaderboard request failed (%d): %s", resp.StatusCode, string(body))
	}

	var records []Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard: %w", err)
	}
	stats.LeaderboardEntries = len(records)
	return records, nil
}

// fetchAggregate retrieves the history-wide stats.
func fetchAggregate(_ context.Context, config *Config) (Aggregate, error) {
	client := newHTTPClient(config.Timeout)

	resp, err := client.Get(config.BaseURL + "/stats")
	if err != nil {
		return Aggregate{}, fmt.Errorf("failed to fetch stats: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return Aggregate{}, fmt.Errorf("failed to read stats response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Aggregate{}, fmt.Errorf("stats request failed (%d): %s", resp.StatusCode, string(body))
	}

	var agg Aggregate
	if err := json.Unmarshal(body, &agg); err != nil {
		return Aggregate{}, fmt.Errorf("failed to decode stats: %w", err)
	}
	return agg, nil
}
