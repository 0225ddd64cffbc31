package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemorySeen)

// WithMaxSize sets the maximum number of session IDs to keep in memory.
// If maxSize > 0: bounded mode, oldest ID evicted first.
// If maxSize <= 0: unbounded mode (no eviction, no size limit).
func WithMaxSize(maxSize int) Option {
	return func(d *inMemorySeen) {
		d.maxSize = maxSize
	}
}
