package simulate

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
	"github.com/okian/seccard/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	profileCount       = 4
)

// Shooter profile spreads, in normalized target units.
const (
	tightSpread  = 0.02
	steadySpread = 0.06
	casualSpread = 0.12
	wildSpread   = 0.25

	minShots   = 3
	shotsRange = 7
)

// Profile cases.
const (
	caseTightGroup  = 0
	caseSteadyGroup = 1
	caseCasualGroup = 2
	caseWildGroup   = 3
)

// Target templates offered to the generator.
var targetKeys = []string{"splatter-4", "splatter-8", "splatter-12", ""}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random int in [0, max) using crypto/rand.
func getRandomInt(max int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max)))
	return int(n.Int64())
}

// clamp01 keeps a coordinate inside the unit square.
func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// generateSessions creates the configured number of runs with unique
// session ids. Each run picks a shooter profile that sets its group
// spread and a bias so corrections point in every direction over a day.
func generateSessions(ctx context.Context, config *Config, stats *Stats) []Session {
	logger.Get().Info(ctx, "generating sessions", logger.Int("numSessions", config.NumSessions))

	sessions := make([]Session, config.NumSessions)
	for i := range sessions {
		aim := Point{X: 0.35 + getRandomFloat()*0.3, Y: 0.35 + getRandomFloat()*0.3}

		var spread float64
		switch getRandomInt(profileCount) {
		case caseTightGroup:
			spread = tightSpread
		case caseSteadyGroup:
			spread = steadySpread
		case caseCasualGroup:
			spread = casualSpread
		case caseWildGroup:
			spread = wildSpread
		}

		// Per-run bias models a mis-sighted scope.
		biasX := (getRandomFloat() - 0.5) * spread
		biasY := (getRandomFloat() - 0.5) * spread

		shots := minShots + getRandomInt(shotsRange)
		hits := make([]Point, shots)
		for j := range hits {
			hits[j] = Point{
				X: clamp01(aim.X + biasX + (getRandomFloat()-0.5)*spread),
				Y: clamp01(aim.Y + biasY + (getRandomFloat()-0.5)*spread),
			}
		}

		sessions[i] = Session{
			SessionID: uuid.New().String(),
			Aim:       aim,
			Hits:      hits,
			TargetKey: targetKeys[getRandomInt(len(targetKeys))],
		}
	}

	stats.SessionsGenerated = len(sessions)
	return sessions
}
