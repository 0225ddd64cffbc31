// Package storage defines the durable key-value port shared by the codec
// and the session history store, plus its in-memory and sqlite adapters.
package storage

import "context"

// Well-known durable keys.
const (
	// KeyPayload holds the most recently scored SEC payload.
	KeyPayload = "payload"
	// KeyTargetImage holds the raw bytes of the last scored target photo.
	KeyTargetImage = "target-image"
	// KeyDailyBuckets holds the map of day -> retained score list.
	KeyDailyBuckets = "daily-score-buckets"
	// KeySessionLog holds the append-only session log.
	KeySessionLog = "session-log"
	// KeyCertificatePrefix prefixes per-session rendered certificate artifacts.
	KeyCertificatePrefix = "certificate:"
)

// CertificateKey returns the durable key of a session's rendered artifact.
func CertificateKey(sessionID string) string {
	return KeyCertificatePrefix + sessionID
}

// Store provides get/set/remove over string keys. Implementations must be
// safe for concurrent use. Persistence is best effort at the call sites:
// the port reports failures and callers decide whether to swallow them.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any existing value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases any underlying resources.
	Close() error
}
