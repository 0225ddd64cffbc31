package simulate

import "time"

// Config holds configuration for a simulated range day.
type Config struct {
	BaseURL     string        // Base URL of the service
	NumSessions int           // Number of sessions to generate
	TopN        int           // Number of leaderboard entries to fetch
	Workers     int           // Number of concurrent submitters
	Timeout     time.Duration // HTTP request timeout
	Verbose     bool          // Enable verbose logging
}

// Point mirrors the wire shape of a normalized coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Session represents one run to be submitted.
type Session struct {
	SessionID string  `json:"session_id"`
	Aim       Point   `json:"aim"`
	Hits      []Point `json:"hits"`
	TargetKey string  `json:"target_key,omitempty"`
}

// ScoreResponse mirrors the response from session submission.
type ScoreResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	Token     string `json:"token"`
	Label     string `json:"label"`
}

// Record mirrors one leaderboard entry.
type Record struct {
	Score     int    `json:"score"`
	TS        int64  `json:"ts"`
	Label     string `json:"label"`
	TargetKey string `json:"targetKey"`
	Shots     int    `json:"shots"`
}

// Aggregate mirrors the history-wide stats response.
type Aggregate struct {
	Count int     `json:"count"`
	Best  int     `json:"best"`
	Avg   float64 `json:"avg"`
}

// Stats holds simulation counters.
type Stats struct {
	SessionsGenerated  int
	SessionsSubmitted  int
	SessionsSuccessful int
	SessionsDuplicate  int
	SessionsFailed     int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
