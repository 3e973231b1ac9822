package account

import (
	"os"
	"time"
)

// =============================================================================
// CLOCK - Injectable "now" for calendar-window queries
// =============================================================================

// Clock supplies the current instant. The engine itself never reads a
// clock; only the this-year/this-month posted-interest windows need one,
// and tests need to pin it.
type Clock func() time.Time

// SystemClock returns the real time, unless NOW_UTC is set to an RFC 3339
// instant, which overrides it. The override keeps demo scenarios and
// acceptance runs deterministic.
func SystemClock() time.Time {
	if fixed := os.Getenv("NOW_UTC"); fixed != "" {
		if t, err := time.Parse(time.RFC3339, fixed); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}

// FixedClock returns a Clock pinned to the given instant.
func FixedClock(at time.Time) Clock {
	return func() time.Time { return at }
}
