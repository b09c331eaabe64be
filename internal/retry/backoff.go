package retry

import "time"

// MaxBackoff caps every delay returned by ExponentialBackoff.
const MaxBackoff = 5 * time.Minute

// ExponentialBackoff returns base * 2^attempt, capped at MaxBackoff.
// Negative attempts are treated as zero.
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		return MaxBackoff
	}
	d := base * (1 << attempt)
	if d <= 0 || d > MaxBackoff {
		return MaxBackoff
	}
	return d
}
