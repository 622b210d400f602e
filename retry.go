package main

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 30 * time.Second
)

// withRetry runs op, retrying up to attempts more times with exponential
// backoff. attempts <= 0 means a single try and no retry machinery at all.
// The delay doubles per attempt and holds at retryMaxDelay.
func withRetry(attempts int, description string, op func() error) error {
	var opErr error
	delay := retryBaseDelay
	for attempt := 0; ; attempt++ {
		opErr = op()
		if opErr == nil || attempt >= attempts {
			return opErr
		}
		log.Warn(fmt.Sprintf("%s failed (attempt %d of %d), retrying in %s: %s",
			description, attempt+1, attempts+1, delay, opErr))
		time.Sleep(delay)
		delay *= 2
		if delay > retryMaxDelay {
			delay = retryMaxDelay
		}
	}
}
