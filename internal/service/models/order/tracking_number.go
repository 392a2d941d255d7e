package order

import (
	"strconv"
	"strings"
	"time"
)

const (
	trackingPrefix       = "ZYN"
	trackingRandomLength = 6
	base36Alphabet       = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// RandomSource yields uniformly distributed integers in [0, n).
type RandomSource interface {
	IntN(n int) int
}

// GenerateTrackingNumber builds "ZYN" + base36(now in millis) + 6 random base36 chars, upper case.
// Uniqueness is not checked here; storage rejects duplicates.
func GenerateTrackingNumber(now time.Time, rnd RandomSource) string {
	var b strings.Builder
	b.WriteString(trackingPrefix)
	b.WriteString(strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)))
	for range trackingRandomLength {
		b.WriteByte(base36Alphabet[rnd.IntN(len(base36Alphabet))])
	}

	return b.String()
}
