package retry

import (
	"context"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"
)

var logger *log.Entry = log.New().WithFields(log.Fields{
	"package": "retry",
})

const (
	// DEFAULT_MAX_ATTEMPTS and DEFAULT_INITIAL_DELAY implement the policy
	// applied to every external HTTP call made on behalf of a deploy
	// decision: up to 4 attempts, starting at 2s, doubling each time.
	DEFAULT_MAX_ATTEMPTS  = 4
	DEFAULT_INITIAL_DELAY = 2 * time.Second
)

// Delay returns the wait before retry number attempt (1-based): the
// initial delay doubled per prior failure, plus up to 10% jitter so
// simultaneous CI runs hitting the same rate limit do not retry in
// lockstep.
func Delay(attempt int, initial time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := initial << (attempt - 1)
	jitter := time.Duration(rand.Int63n(int64(base)/10 + 1))
	return base + jitter
}

// Do runs fn up to attempts times, sleeping a doubling delay between
// failures. It returns nil on the first success, the last error when all
// attempts fail, and the context error when ctx expires mid-wait.
func Do(ctx context.Context, attempts int, initial time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		delay := Delay(attempt, initial)
		logger.WithField("attempt", attempt).WithField("delay", delay).WithField("error", lastErr).
			Warn("Call failed, retrying")
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
