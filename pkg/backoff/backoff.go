package backoff

import (
	"math"
	"time"
)

// Base is the delay before the first retry.
const Base = 30 * time.Second

// Exponential returns the delay before retry number n: 30s, 60s, 120s, 240s and so on.
func Exponential(n int) time.Duration {
	if n < 0 {
		n = 0
	}

	return time.Duration(math.Pow(2, float64(n))) * Base
}
