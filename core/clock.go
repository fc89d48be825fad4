package core

import "time"

// TickPeriod is the length of one tick, the watchdog period of the
// original 8-bit parts.
const TickPeriod = 20 * time.Millisecond

// TicksPerSecond at TickPeriod.
const TicksPerSecond = uint32(time.Second / TickPeriod)

// Clock is the only suspension primitive. Wait blocks for one tick
// period and reports whether power is still present; on hardware it
// always returns true.
type Clock interface {
	Wait() bool
}

// TicksFor converts a duration to whole ticks, rounding down.
func TicksFor(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	return uint32(d / TickPeriod)
}

// TicksToDuration converts ticks back to wall time.
func TicksToDuration(ticks uint32) time.Duration {
	return time.Duration(ticks) * TickPeriod
}
