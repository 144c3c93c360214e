package retry

import (
	"time"
)

const baseDelay = 200 * time.Millisecond

// Do runs f until it succeeds or attempts are exhausted, doubling the delay
// between attempts. Returns the last error.
func Do(f func() error, attempts int) error {
	var err error

	delay := baseDelay
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
			delay *= 2
		}
	}

	return err
}
