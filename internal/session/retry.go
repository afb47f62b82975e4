package session

import (
	"context"
	"time"
)

// Retry constants.
const (
	// jitterDivisor is used to calculate jitter (10% jitter).
	jitterDivisor = 10
	// halfDivisor is used to divide values by 2.
	halfDivisor = 2
	// maxShift bounds the doubling loop to prevent overflow.
	maxShift = 30
)

// RetryDelay calculates exponential backoff for the given attempt number,
// starting at base and capped at maxDelay, with 10% jitter.
func RetryDelay(attempt int, base, maxDelay time.Duration) time.Duration {
	if base <= 0 {
		base = time.Millisecond
	}
	if maxDelay < base {
		maxDelay = base
	}
	if attempt <= 0 {
		return base
	}

	delay := base
	for i := 0; i < attempt && i < maxShift; i++ {
		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
			break
		}
	}

	// Add 10% jitter centered around the computed delay.
	jitterRange := delay / jitterDivisor
	if jitterRange > 0 {
		jitter := time.Duration(time.Now().UnixNano() % int64(jitterRange))
		delay += jitter - jitterRange/halfDivisor
	}

	return delay
}

// sleepContext waits for the given duration unless the context ends first.
// Returns the context error when interrupted.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
