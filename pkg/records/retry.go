package records

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// Retry settings for MongoSink writes.
const (
	writeAttempts = 3
	writeDelay    = 200 * time.Millisecond
)

// retry runs fn up to attempts times. Only errors for which transient
// returns true are retried; the delay doubles after each failed attempt.
func retry(ctx context.Context, attempts int, delay time.Duration, transient func(error) bool, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !transient(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// transientMongo reports whether err is a network failure or timeout that
// may succeed on a later attempt.
func transientMongo(err error) bool {
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}
