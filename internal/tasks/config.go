package tasks

import "time"

// Config tunes the maintenance queue. The queue only carries housekeeping
// work (binary sweeps), so the defaults favor low concurrency over
// throughput.
type Config struct {
	// Workers is the number of concurrent task workers.
	Workers int

	// MaxRetries caps retry attempts for failed tasks.
	MaxRetries int

	// RetryDelay is the backoff between retries.
	RetryDelay time.Duration

	// TaskTimeout bounds a single task execution.
	TaskTimeout time.Duration

	// ReleaseAfter is when a stuck task is handed back to the queue.
	ReleaseAfter time.Duration

	// CleanupInterval is how often completed tasks are pruned.
	CleanupInterval time.Duration

	// RetentionDuration is how long completed tasks are kept for inspection.
	RetentionDuration time.Duration
}

// DefaultConfig returns the tuning used when nothing is configured: two
// workers, minute-scale retries, day-long retention.
func DefaultConfig() Config {
	return Config{
		Workers:           2,
		MaxRetries:        3,
		RetryDelay:        1 * time.Minute,
		TaskTimeout:       5 * time.Minute,
		ReleaseAfter:      15 * time.Minute,
		CleanupInterval:   1 * time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}
