package clock

import (
	"math/rand/v2"
	"time"
)

// Clock tells the current time.
type Clock interface {
	Now() time.Time
}

// System is the wall clock, truncated to microseconds to survive a Postgres round trip.
type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Random draws from the process-wide math/rand/v2 source.
type Random struct{}

func (Random) IntN(n int) int {
	return rand.IntN(n)
}
